package arch

import "fmt"

// Column is the type-erased view of one contiguous component sequence inside
// a chunk. All mutation goes through the owning Archetype so that the column
// lengths of a chunk never diverge.
type Column interface {
	// Append adds the value at the end of the column.
	Append(value any)

	// AppendZero adds the zero value of the column's component type.
	AppendZero()

	// Get returns the value at the given row.
	Get(row int) any

	// Set overwrites the value at the given row.
	Set(row int, value any)

	// SwapRemove removes the row by moving the last value into its place and
	// truncating the column by one.
	SwapRemove(row int)

	// CopyTo appends the value at the given row to the destination column.
	// The destination must be a column of the same component type.
	CopyTo(dst Column, row int)

	Len() int
}

// TypedColumn is the Column implementation for component values of type T.
// Values is exported so that iteration can run over the plain slice without
// per-entity interface round trips.
type TypedColumn[T any] struct {
	Values []T
}

func (c *TypedColumn[T]) Append(value any) {
	v, ok := value.(T)
	if !ok {
		panic(fmt.Sprintf("column of %T: appending incompatible value %T", c.Values, value))
	}

	c.Values = append(c.Values, v)
}

func (c *TypedColumn[T]) AppendZero() {
	var zero T
	c.Values = append(c.Values, zero)
}

func (c *TypedColumn[T]) Get(row int) any {
	return c.Values[row]
}

func (c *TypedColumn[T]) Set(row int, value any) {
	v, ok := value.(T)
	if !ok {
		panic(fmt.Sprintf("column of %T: setting incompatible value %T", c.Values, value))
	}

	c.Values[row] = v
}

func (c *TypedColumn[T]) SwapRemove(row int) {
	last := len(c.Values) - 1
	c.Values[row] = c.Values[last]

	// clear the vacated slot so the column does not pin old values
	var zero T
	c.Values[last] = zero
	c.Values = c.Values[:last]
}

func (c *TypedColumn[T]) CopyTo(dst Column, row int) {
	typed, ok := dst.(*TypedColumn[T])
	if !ok {
		panic(fmt.Sprintf("column of %T: copy to incompatible column %T", c.Values, dst))
	}

	typed.Values = append(typed.Values, c.Values[row])
}

func (c *TypedColumn[T]) Len() int {
	return len(c.Values)
}

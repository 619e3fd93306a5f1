package tessera

import (
	"fmt"

	"github.com/tessera-ecs/tessera/internal/arch"
)

// ChunkView is the view of one chunk handed to a ticking system. The column
// slices it exposes are valid for the duration of the current barrier; no
// structural mutation touches the chunk while systems iterate it.
type ChunkView struct {
	a *arch.Archetype
}

// Len returns the number of live entities in the chunk.
func (c *ChunkView) Len() int {
	return c.a.Len()
}

// Entities returns the handle column, parallel to every component column.
func (c *ChunkView) Entities() []Entity {
	return c.a.Entities()
}

// Contains reports whether the chunk's archetype includes the component type.
func (c *ChunkView) Contains(id ComponentID) bool {
	return c.a.Contains(id)
}

// ColumnOf returns the chunk's column for the given component type as a
// typed slice. Writes through the slice are writes to entity data; systems
// must only write columns they declared in their write set.
//
// The component must be part of the chunk's archetype, which holds for every
// component required by the system's filter.
func ColumnOf[T any](c *ChunkView, id ComponentID) []T {
	column, ok := c.a.Column(id)
	if !ok {
		panic(fmt.Sprintf("%s has no column for component id %d", c.a, id))
	}

	typed, ok := column.(*arch.TypedColumn[T])
	if !ok {
		var zero T
		panic(fmt.Sprintf("column for component id %d does not hold %T values", id, zero))
	}

	return typed.Values
}

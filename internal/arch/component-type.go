package arch

import "fmt"

// MaxComponentTypes limits the number of distinct component types that can be
// registered with one world. The limit keeps component ids small enough to
// fit a fixed-size Mask.
const MaxComponentTypes = 256

// ComponentID is the stable small integer index assigned to a component type
// at registration time.
type ComponentID uint8

// ComponentType describes one registered component type.
type ComponentType struct {
	ID   ComponentID
	Name string

	// Codec is an opaque reference to the serialization codec for this
	// component type. The storage engine never interprets it; it is carried
	// for the external codec layer.
	Codec any

	makeColumn func() Column
}

func (t *ComponentType) String() string {
	return t.Name
}

// MakeColumn creates a fresh, empty column for values of this type.
func (t *ComponentType) MakeColumn() Column {
	return t.makeColumn()
}

// Registry assigns component ids and owns the id to type mapping. A Registry
// is scoped to one world so that multiple worlds (or tests) never share
// component ids.
type Registry struct {
	types  []*ComponentType
	byName map[string]*ComponentType
}

func NewRegistry() *Registry {
	return &Registry{
		byName: map[string]*ComponentType{},
	}
}

// Register assigns the next free component id to the named type.
func (r *Registry) Register(name string, codec any, makeColumn func() Column) (*ComponentType, error) {
	if _, exists := r.byName[name]; exists {
		return nil, fmt.Errorf("component %q: %w", name, ErrDuplicateRegistration)
	}

	if len(r.types) >= MaxComponentTypes {
		return nil, fmt.Errorf("component %q: no more than %d component types can be registered", name, MaxComponentTypes)
	}

	ty := &ComponentType{
		ID:         ComponentID(len(r.types)),
		Name:       name,
		Codec:      codec,
		makeColumn: makeColumn,
	}

	r.types = append(r.types, ty)
	r.byName[name] = ty

	return ty, nil
}

// TypeOf resolves a component id to its registered type.
func (r *Registry) TypeOf(id ComponentID) (*ComponentType, error) {
	if int(id) >= len(r.types) {
		return nil, fmt.Errorf("component id %d: %w", id, ErrUnregisteredType)
	}

	return r.types[id], nil
}

// ByName resolves a component name to its registered type.
func (r *Registry) ByName(name string) (*ComponentType, bool) {
	ty, ok := r.byName[name]
	return ty, ok
}

func (r *Registry) Len() int {
	return len(r.types)
}

// ColumnOf is the typed MakeColumn implementation for component values of
// type T, to be passed to Register.
func ColumnOf[T any]() func() Column {
	return func() Column {
		return &TypedColumn[T]{}
	}
}

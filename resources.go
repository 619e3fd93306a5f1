package tessera

import (
	"fmt"
	"reflect"
)

// RegisterResource registers a singleton value scoped to the world. The value
// is copied to the heap; systems access it through a pointer, so updates are
// visible world-wide. Registering the same resource type twice fails with
// ErrDuplicateRegistration.
func (w *World) RegisterResource(resource any) error {
	ty := reflect.TypeOf(resource)
	if _, exists := w.resources[ty]; exists {
		return fmt.Errorf("resource %s: %w", ty, ErrDuplicateRegistration)
	}

	ptr := reflect.New(ty)
	ptr.Elem().Set(reflect.ValueOf(resource))
	w.resources[ty] = ptr

	return nil
}

// Resource returns a pointer to the resource of the given type, or
// ErrUnregisteredType if no such resource was registered.
func (w *World) Resource(key ResourceKey) (any, error) {
	ptr, ok := w.resources[key]
	if !ok {
		return nil, fmt.Errorf("resource %s: %w", key, ErrUnregisteredType)
	}

	return ptr.Interface(), nil
}

// ResourceOf is the typed version of World.Resource.
func ResourceOf[T any](w *World) (*T, error) {
	value, err := w.Resource(ResourceKeyFor[T]())
	if err != nil {
		return nil, err
	}

	return value.(*T), nil
}

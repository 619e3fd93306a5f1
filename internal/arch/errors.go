package arch

import "errors"

var (
	// ErrStaleHandle is returned when an entity handle's generation does not
	// match the live entity at its slot, i.e. the entity has been destroyed
	// (and its slot possibly reused) since the handle was obtained.
	ErrStaleHandle = errors.New("stale entity handle")

	// ErrMissingComponent is returned when accessing a component type that is
	// not part of the entity's archetype.
	ErrMissingComponent = errors.New("missing component")

	// ErrUnregisteredType is returned when an operation references a component
	// or resource type that was never registered with the world.
	ErrUnregisteredType = errors.New("unregistered type")

	// ErrDuplicateRegistration is returned when a component, system or
	// resource is registered twice.
	ErrDuplicateRegistration = errors.New("duplicate registration")
)

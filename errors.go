package tessera

import (
	"errors"

	"github.com/tessera-ecs/tessera/internal/arch"
)

var (
	// ErrStaleHandle is returned when an entity handle refers to an entity
	// that has been destroyed, even if its index has since been reused.
	ErrStaleHandle = arch.ErrStaleHandle

	// ErrMissingComponent is returned when accessing a component type absent
	// from the entity's archetype.
	ErrMissingComponent = arch.ErrMissingComponent

	// ErrUnregisteredType is returned when an operation references a
	// component or resource type that was never registered.
	ErrUnregisteredType = arch.ErrUnregisteredType

	// ErrDuplicateRegistration is returned when the same component, system,
	// group or resource is registered twice.
	ErrDuplicateRegistration = arch.ErrDuplicateRegistration

	// ErrCyclicDependency is returned when the declared system ordering
	// constraints admit no execution order. It is reported when the schedule
	// is built, never during a tick.
	ErrCyclicDependency = errors.New("cyclic system dependency")
)

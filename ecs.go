// Package tessera implements an archetype based entity component system.
//
// Entities are generation-checked handles into columnar chunks: all entities
// sharing one component set (archetype) live in one chunk, with one
// contiguous column per component type. Systems declare a component filter
// and a read/write access set; the scheduler orders them by their declared
// constraints, partitions each tick into barriers of non-conflicting systems
// that run in parallel, and applies deferred structural mutations between
// barriers so that no chunk is ever reshuffled under a running iteration.
package tessera

import "github.com/tessera-ecs/tessera/internal/arch"

// Entity is a generation-checked handle to an entity owned by a World.
type Entity = arch.Entity

// ComponentID is the stable small integer index of a registered component type.
type ComponentID = arch.ComponentID

// ComponentValue pairs a component id with a value, for entity creation.
type ComponentValue = arch.ComponentValue

// NoEntity is the zero handle. It never refers to a live entity.
var NoEntity = arch.NoEntity

// MaxComponentTypes is the maximum number of component types per World.
const MaxComponentTypes = arch.MaxComponentTypes

// Value builds a ComponentValue for entity creation.
func Value[T any](id ComponentID, value T) ComponentValue {
	return ComponentValue{ID: id, Value: value}
}

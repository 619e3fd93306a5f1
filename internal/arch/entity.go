package arch

import "fmt"

// Entity is a generation-checked handle to an entity. The index part is dense
// and recycled through a free-list; the version is bumped every time an index
// is freed, so a handle kept across a destroy can never silently alias the
// entity that reused its index.
type Entity struct {
	ID      uint32
	Version uint32
}

// NoEntity is the zero handle. It never refers to a live entity.
var NoEntity = Entity{}

func (e Entity) String() string {
	return fmt.Sprintf("%d#%d", e.ID, e.Version)
}

// entityMeta is one row of the index table: where the entity currently lives.
// archetype is -1 while the entity is dead; version 0 means the slot has
// never held a live entity.
type entityMeta struct {
	archetype int32
	row       int32
	version   uint32
}

const noArchetype = int32(-1)

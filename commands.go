package tessera

import (
	"go.uber.org/zap"
)

type commandKind uint8

const (
	commandCreate commandKind = iota
	commandDestroy
	commandAdd
	commandRemove
)

type command struct {
	kind       commandKind
	entity     Entity
	id         ComponentID
	value      any
	components []ComponentValue
}

// Commands is a per-system buffer of deferred structural mutations. While
// systems iterate chunks, no structural change touches the storage directly;
// it is recorded here and applied once the system's barrier has finished,
// in recording order, with exclusive storage access.
type Commands struct {
	world *World
	queue []command
}

// CreateEntity records the creation of an entity with the given component
// set. The returned handle is reserved immediately: it can be referenced by
// later commands in the same buffer and becomes live when the buffer drains.
func (c *Commands) CreateEntity(components ...ComponentValue) Entity {
	e := c.world.storage.Reserve()

	c.queue = append(c.queue, command{
		kind:       commandCreate,
		entity:     e,
		components: components,
	})

	return e
}

// DestroyEntity records the destruction of an entity.
func (c *Commands) DestroyEntity(e Entity) {
	c.queue = append(c.queue, command{kind: commandDestroy, entity: e})
}

// AddComponent records adding (or replacing) a component on an entity.
func (c *Commands) AddComponent(e Entity, id ComponentID, value any) {
	c.queue = append(c.queue, command{kind: commandAdd, entity: e, id: id, value: value})
}

// RemoveComponent records removing a component from an entity.
func (c *Commands) RemoveComponent(e Entity, id ComponentID) {
	c.queue = append(c.queue, command{kind: commandRemove, entity: e, id: id})
}

// Len returns the number of pending commands.
func (c *Commands) Len() int {
	return len(c.queue)
}

// apply drains the buffer against the storage. Individual command failures
// (e.g. a destroy racing a destroy from another buffer) do not stop the
// drain; they are logged and skipped.
func (c *Commands) apply() {
	for _, cmd := range c.queue {
		var err error

		switch cmd.kind {
		case commandCreate:
			err = c.world.storage.CreateReserved(cmd.entity, cmd.components)

		case commandDestroy:
			err = c.world.storage.Destroy(cmd.entity)

		case commandAdd:
			err = c.world.storage.AddComponent(cmd.entity, cmd.id, cmd.value)

		case commandRemove:
			err = c.world.storage.RemoveComponent(cmd.entity, cmd.id)
		}

		if err != nil {
			c.world.logger.Warn("deferred command failed",
				zap.Stringer("entity", cmd.entity),
				zap.Error(err))
		}
	}

	c.queue = c.queue[:0]
}

package tessera

import (
	"reflect"

	"github.com/tessera-ecs/tessera/internal/arch"
	"github.com/tessera-ecs/tessera/internal/set"
)

// TickContext is passed to every system invocation during a tick.
type TickContext struct {
	// World grants read access to entity data. Structural mutation during a
	// tick must go through Commands instead.
	World *World

	// Dt is the delta time of the current tick in seconds.
	Dt float64

	// Commands is the system's command buffer. Mutations recorded here are
	// applied after the system's barrier has finished.
	Commands *Commands
}

// ChunkSystem is the chunk-ticking variant: TickChunk runs once per matching
// chunk per tick.
type ChunkSystem interface {
	TickChunk(ctx *TickContext, chunk *ChunkView)
}

// EntitySystem is the entity-ticking variant: TickEntity runs once per entity
// within matching chunks. It is driven by the same chunk loop as ChunkSystem,
// not by a separate scheduler path.
type EntitySystem interface {
	TickEntity(ctx *TickContext, e Entity, chunk *ChunkView, row int)
}

// TickSystem runs once per tick, independent of any chunk. Use it for logic
// that only touches resources.
type TickSystem interface {
	Tick(ctx *TickContext)
}

// ChunkSystemFunc adapts a function to a ChunkSystem.
type ChunkSystemFunc func(ctx *TickContext, chunk *ChunkView)

func (f ChunkSystemFunc) TickChunk(ctx *TickContext, chunk *ChunkView) {
	f(ctx, chunk)
}

// EntitySystemFunc adapts a function to an EntitySystem.
type EntitySystemFunc func(ctx *TickContext, e Entity, chunk *ChunkView, row int)

func (f EntitySystemFunc) TickEntity(ctx *TickContext, e Entity, chunk *ChunkView, row int) {
	f(ctx, e, chunk, row)
}

// TickSystemFunc adapts a function to a TickSystem.
type TickSystemFunc func(ctx *TickContext)

func (f TickSystemFunc) Tick(ctx *TickContext) {
	f(ctx)
}

// SystemConfig declares a system: its logic, the chunks it runs over, the
// data it touches, and its position in the tick order.
type SystemConfig struct {
	// Name identifies the system in ordering constraints, logs and cycle
	// reports. Must be unique within the world.
	Name string

	// System must implement ChunkSystem, EntitySystem or TickSystem.
	System any

	// Filter selects the chunks the system runs over. A nil filter matches
	// every chunk. Ignored for TickSystem.
	Filter *Filter

	// Reads and Writes declare the component types the system accesses.
	// Two systems whose declared sets do not conflict may run concurrently
	// within one barrier. A system declaring nothing at all is assumed to
	// conflict with everything.
	Reads  []ComponentID
	Writes []ComponentID

	// ReadsResources and WritesResources declare resource access, with the
	// same conflict rules as component access.
	ReadsResources  []ResourceKey
	WritesResources []ResourceKey

	// Before and After name systems or groups this system must run before
	// or after.
	Before []string
	After  []string

	// Group is the optional system group this system belongs to. A system
	// with no Before/After of its own inherits its group's constraints.
	Group string

	// Priority breaks ties between systems that are otherwise free to run
	// in any order; lower runs first. Zero falls back to the group's
	// priority, then to registration order.
	Priority int
}

// GroupConfig declares a named system group. Ordering constraints naming the
// group apply to all of its members.
type GroupConfig struct {
	Name     string
	Before   []string
	After    []string
	Priority int
}

type accessSet struct {
	reads, writes       arch.Mask
	resReads, resWrites set.Set[ResourceKey]
	declared            bool
}

// conflictsWith reports whether two systems must not run concurrently: one
// writes something the other reads or writes, or either has not declared its
// access at all.
func (a *accessSet) conflictsWith(b *accessSet) bool {
	if !a.declared || !b.declared {
		return true
	}

	if a.writes.Intersects(b.writes) || a.writes.Intersects(b.reads) || b.writes.Intersects(a.reads) {
		return true
	}

	for key := range a.resWrites.Values() {
		if b.resWrites.Has(key) || b.resReads.Has(key) {
			return true
		}
	}

	for key := range b.resWrites.Values() {
		if a.resReads.Has(key) {
			return true
		}
	}

	return false
}

// registeredSystem is a system after registration: its config, the resolved
// run function, its chunk match set and its failure state.
type registeredSystem struct {
	SystemConfig

	// position in registration order, the final scheduling tie-break
	index int

	runChunk  func(ctx *TickContext, chunk *ChunkView)
	runOnce   func(ctx *TickContext)
	access    accessSet
	matches   arch.Bitset
	commands  *Commands

	timings Timings

	// consecutive panicking ticks; reset on the first clean run
	failures  int
	escalated bool
}

func (s *registeredSystem) String() string {
	return s.Name
}

// resolveVariant maps the configured System value onto the single scheduling
// contract. The entity variant is a plain row loop over the chunk variant.
func (s *registeredSystem) resolveVariant() bool {
	switch sys := s.System.(type) {
	case ChunkSystem:
		s.runChunk = sys.TickChunk

	case EntitySystem:
		s.runChunk = func(ctx *TickContext, chunk *ChunkView) {
			entities := chunk.Entities()
			for row := range entities {
				sys.TickEntity(ctx, entities[row], chunk, row)
			}
		}

	case TickSystem:
		s.runOnce = sys.Tick

	default:
		return false
	}

	return true
}

// ResourceKey identifies a resource type for access declarations.
type ResourceKey = reflect.Type

// ResourceKeyFor returns the ResourceKey of resource type T.
func ResourceKeyFor[T any]() ResourceKey {
	return reflect.TypeFor[T]()
}

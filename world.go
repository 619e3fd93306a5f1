package tessera

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/tessera-ecs/tessera/internal/arch"
	"github.com/tessera-ecs/tessera/internal/set"
)

// World owns all entity state: the chunks, the entity index table, the
// component and resource registries, and the registered systems with their
// schedule. All entity and component access is mediated through it.
//
// A World is not safe for concurrent use by its host; during a tick the
// scheduler itself partitions systems so that only non-conflicting ones run
// in parallel.
type World struct {
	registry *arch.Registry
	storage  *arch.Storage

	resources map[reflect.Type]reflect.Value

	systems  []*registeredSystem
	byName   map[string]*registeredSystem
	groups   map[string]GroupConfig
	schedule *schedule

	logger           *zap.Logger
	failureHandler   func(system string, err error)
	failureThreshold int

	inBarrier bool
	tick      uint64
}

// Option configures a World at construction time.
type Option func(*World)

// WithLogger sets the logger used for system panics and command failures.
// The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *World) {
		w.logger = logger
	}
}

// WithFailureHandler installs a hook invoked when a system has panicked for
// WithFailureThreshold consecutive ticks. It is called at most once per
// failure streak, from the drain phase between barriers.
func WithFailureHandler(fn func(system string, err error)) Option {
	return func(w *World) {
		w.failureHandler = fn
	}
}

// WithFailureThreshold sets the number of consecutive system panics after
// which the failure handler fires. The default is 3.
func WithFailureThreshold(n int) Option {
	return func(w *World) {
		w.failureThreshold = n
	}
}

// NewWorld creates an empty world.
func NewWorld(opts ...Option) *World {
	registry := arch.NewRegistry()

	w := &World{
		registry:         registry,
		storage:          arch.NewStorage(registry),
		resources:        map[reflect.Type]reflect.Value{},
		byName:           map[string]*registeredSystem{},
		groups:           map[string]GroupConfig{},
		schedule:         &schedule{},
		logger:           zap.NewNop(),
		failureThreshold: 3,
	}

	for _, opt := range opts {
		opt(w)
	}

	// keep every system's chunk match set current without re-scanning
	w.storage.OnNewArchetype(func(a *arch.Archetype) {
		for _, sys := range w.systems {
			if sys.runChunk != nil && sys.Filter.matches(a.Mask()) {
				sys.matches.Set(a.Index())
			}
		}
	})

	if err := w.RegisterResource(Time{}); err != nil {
		panic(err)
	}

	return w
}

// RegisterComponent registers a component type holding values of type T and
// returns its id.
func RegisterComponent[T any](w *World, name string) (ComponentID, error) {
	return RegisterComponentWithCodec[T](w, name, nil)
}

// RegisterComponentWithCodec registers a component type together with an
// opaque codec reference for the external serialization layer.
func RegisterComponentWithCodec[T any](w *World, name string, codec any) (ComponentID, error) {
	ty, err := w.registry.Register(name, codec, arch.ColumnOf[T]())
	if err != nil {
		return 0, err
	}

	return ty.ID, nil
}

// ComponentByName resolves a registered component name to its id.
func (w *World) ComponentByName(name string) (ComponentID, bool) {
	ty, ok := w.registry.ByName(name)
	if !ok {
		return 0, false
	}

	return ty.ID, true
}

// CreateEntity creates an entity with the given component set and returns
// its handle. It fails only if a component type is not registered.
func (w *World) CreateEntity(components ...ComponentValue) (Entity, error) {
	w.assertNotInBarrier("CreateEntity")
	return w.storage.Create(components)
}

// DestroyEntity destroys the entity, freeing its handle slot. The handle and
// all copies of it fail with ErrStaleHandle from now on.
func (w *World) DestroyEntity(e Entity) error {
	w.assertNotInBarrier("DestroyEntity")
	return w.storage.Destroy(e)
}

// Alive reports whether the handle refers to a live entity.
func (w *World) Alive(e Entity) bool {
	return w.storage.Alive(e)
}

// GetComponent returns the entity's value of the given component type.
func (w *World) GetComponent(e Entity, id ComponentID) (any, error) {
	return w.storage.Get(e, id)
}

// SetComponent overwrites the entity's value of the given component type.
func (w *World) SetComponent(e Entity, id ComponentID, value any) error {
	return w.storage.Set(e, id, value)
}

// AddComponent adds the component to the entity, migrating it to the chunk
// of its extended archetype.
func (w *World) AddComponent(e Entity, id ComponentID, value any) error {
	w.assertNotInBarrier("AddComponent")
	return w.storage.AddComponent(e, id, value)
}

// RemoveComponent removes the component from the entity, migrating it to the
// chunk of its reduced archetype. Removing an absent component is a no-op.
func (w *World) RemoveComponent(e Entity, id ComponentID) error {
	w.assertNotInBarrier("RemoveComponent")
	return w.storage.RemoveComponent(e, id)
}

// ComponentOf is a typed convenience wrapper around World.GetComponent.
func ComponentOf[T any](w *World, e Entity, id ComponentID) (T, error) {
	value, err := w.storage.Get(e, id)
	if err != nil {
		var zero T
		return zero, err
	}

	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("component id %d does not hold %T values", id, zero)
	}

	return typed, nil
}

// SetComponentOf is a typed convenience wrapper around World.SetComponent.
func SetComponentOf[T any](w *World, e Entity, id ComponentID, value T) error {
	return w.storage.Set(e, id, value)
}

// Match evaluates a filter against the entity's current archetype.
func (w *World) Match(f *Filter, e Entity) (bool, error) {
	a, _, err := w.storage.Location(e)
	if err != nil {
		return false, err
	}

	return f.matches(a.Mask()), nil
}

// AddGroup registers a named system group.
func (w *World) AddGroup(cfg GroupConfig) error {
	if _, exists := w.groups[cfg.Name]; exists {
		return fmt.Errorf("group %q: %w", cfg.Name, ErrDuplicateRegistration)
	}

	w.groups[cfg.Name] = cfg

	return nil
}

// AddSystem registers a system and re-resolves the schedule. An unsatisfiable
// ordering is reported here, as ErrCyclicDependency, before any tick runs;
// in that case the system is not registered.
func (w *World) AddSystem(cfg SystemConfig) error {
	if cfg.Name == "" {
		return fmt.Errorf("system has no name")
	}

	if _, exists := w.byName[cfg.Name]; exists {
		return fmt.Errorf("system %q: %w", cfg.Name, ErrDuplicateRegistration)
	}

	if _, exists := w.groups[cfg.Name]; exists {
		return fmt.Errorf("system %q: name collides with a group: %w", cfg.Name, ErrDuplicateRegistration)
	}

	sys := &registeredSystem{
		SystemConfig: cfg,
		index:        len(w.systems),
	}

	if !sys.resolveVariant() {
		return fmt.Errorf("system %q: %T implements none of ChunkSystem, EntitySystem, TickSystem", cfg.Name, cfg.System)
	}

	if err := w.buildAccessSet(sys); err != nil {
		return fmt.Errorf("system %q: %w", cfg.Name, err)
	}

	sys.commands = &Commands{world: w}

	// full scan only at registration time; afterwards the match set is
	// maintained incrementally
	if sys.runChunk != nil {
		for _, a := range w.storage.Archetypes() {
			if sys.Filter.matches(a.Mask()) {
				sys.matches.Set(a.Index())
			}
		}
	}

	w.systems = append(w.systems, sys)

	next, err := buildSchedule(w.systems, w.groups)
	if err != nil {
		w.systems = w.systems[:len(w.systems)-1]
		return err
	}

	w.byName[cfg.Name] = sys
	w.schedule = next

	return nil
}

// buildAccessSet validates the system's declared component and resource
// access and compiles it into masks for the conflict check.
func (w *World) buildAccessSet(sys *registeredSystem) error {
	var filterIDs set.Set[ComponentID]
	sys.Filter.componentIDs(&filterIDs)
	for id := range filterIDs.Values() {
		if _, err := w.registry.TypeOf(id); err != nil {
			return err
		}
	}

	check := func(ids []ComponentID, into *arch.Mask) error {
		for _, id := range ids {
			if _, err := w.registry.TypeOf(id); err != nil {
				return err
			}

			into.Set(id)
		}

		return nil
	}

	if err := check(sys.Reads, &sys.access.reads); err != nil {
		return err
	}

	if err := check(sys.Writes, &sys.access.writes); err != nil {
		return err
	}

	for _, key := range sys.ReadsResources {
		sys.access.resReads.Insert(key)
	}

	for _, key := range sys.WritesResources {
		sys.access.resWrites.Insert(key)
	}

	sys.access.declared = len(sys.Reads)+len(sys.Writes)+
		len(sys.ReadsResources)+len(sys.WritesResources) > 0

	return nil
}

// Systems returns the names of all registered systems in execution order.
func (w *World) Systems() []string {
	names := make([]string, 0, len(w.schedule.order))
	for _, sys := range w.schedule.order {
		names = append(names, sys.Name)
	}

	return names
}

func (w *World) assertNotInBarrier(op string) {
	if w.inBarrier {
		panic(fmt.Sprintf("%s: structural mutation during a barrier; record it into the system's Commands instead", op))
	}
}

package arch

import (
	"fmt"
	"sync"
)

// ComponentValue pairs a component id with an initial value for entity
// creation and component insertion.
type ComponentValue struct {
	ID    ComponentID
	Value any
}

// transition is the cache key for an archetype edge: the archetype an entity
// migrates out of when one component type is added or removed.
type transition struct {
	from int
	id   ComponentID
	add  bool
}

// Storage owns every chunk, the entity index table and the free-list. It is
// the single source of truth for entity state; all structural mutation runs
// through it and is only ever invoked single-threaded (from the drain phase
// between barriers, or before ticking starts).
type Storage struct {
	registry *Registry

	archetypes  []*Archetype
	byMask      map[Mask]int
	transitions map[transition]int

	metas   []entityMeta
	freeIDs []uint32
	live    int

	// handle reservation may be called from concurrently running systems
	// recording into their command buffers; it must not touch metas, which
	// other systems resolve handles against at the same time.
	mu      sync.Mutex
	nextID  uint32
	pending map[uint32]struct{}

	onNewArchetype []func(*Archetype)
}

func NewStorage(registry *Registry) *Storage {
	s := &Storage{
		registry:    registry,
		byMask:      map[Mask]int{},
		transitions: map[transition]int{},
		pending:     map[uint32]struct{}{},
	}

	// the empty archetype always exists and has chunk id 0
	s.archetypeFor(Mask{})

	return s
}

// OnNewArchetype registers a callback invoked whenever a new archetype (and
// with it a new chunk id) comes into existence. The world uses this to keep
// per-system chunk match sets up to date without re-scanning.
func (s *Storage) OnNewArchetype(fn func(*Archetype)) {
	s.onNewArchetype = append(s.onNewArchetype, fn)
}

// Archetypes returns all archetypes, indexed by their chunk id.
func (s *Storage) Archetypes() []*Archetype {
	return s.archetypes
}

// EntityCount returns the number of live entities.
func (s *Storage) EntityCount() int {
	return s.live
}

// Reserve allocates a fresh entity handle without placing the entity into
// any chunk. The handle is a valid forward reference: it can be recorded in
// commands and becomes live once CreateReserved runs for it. Reserve is safe
// to call from concurrently running systems.
func (s *Storage) Reserve() Entity {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.pending[id] = struct{}{}

	return Entity{ID: id, Version: 1}
}

// Create places a new entity with the given component set and returns its
// handle. It fails only if a component id is not registered.
func (s *Storage) Create(components []ComponentValue) (Entity, error) {
	components, mask, err := s.checkComponentSet(components)
	if err != nil {
		return NoEntity, err
	}

	e := s.allocHandle()
	s.place(e, mask, components)

	return e, nil
}

// CreateReserved places a previously reserved entity. It fails with
// ErrStaleHandle if the handle was not reserved or has been destroyed since.
func (s *Storage) CreateReserved(e Entity, components []ComponentValue) error {
	components, mask, err := s.checkComponentSet(components)
	if err != nil {
		return err
	}

	s.mu.Lock()
	_, reserved := s.pending[e.ID]
	delete(s.pending, e.ID)
	s.mu.Unlock()

	if !reserved || e.Version != 1 {
		return fmt.Errorf("create %s: %w", e, ErrStaleHandle)
	}

	s.ensureMeta(e.ID)
	s.metas[e.ID].version = 1
	s.place(e, mask, components)

	return nil
}

// Destroy removes the entity from its chunk via swap-with-last and frees its
// handle slot, bumping the generation so stale handles fail from now on.
func (s *Storage) Destroy(e Entity) error {
	meta, err := s.resolve(e)
	if err != nil {
		return fmt.Errorf("destroy %s: %w", e, err)
	}

	a := s.archetypes[meta.archetype]
	moved := a.swapRemove(int(meta.row))
	if moved != NoEntity {
		s.metas[moved.ID].row = meta.row
	}

	meta.archetype = noArchetype
	meta.version++
	s.freeIDs = append(s.freeIDs, e.ID)
	s.live--

	return nil
}

// Alive reports whether the handle refers to a live entity.
func (s *Storage) Alive(e Entity) bool {
	_, err := s.resolve(e)
	return err == nil
}

// Location resolves a handle to its current chunk and row.
func (s *Storage) Location(e Entity) (*Archetype, int, error) {
	meta, err := s.resolve(e)
	if err != nil {
		return nil, 0, err
	}

	return s.archetypes[meta.archetype], int(meta.row), nil
}

// Get returns the entity's value of the given component type.
func (s *Storage) Get(e Entity, id ComponentID) (any, error) {
	ty, err := s.registry.TypeOf(id)
	if err != nil {
		return nil, err
	}

	meta, err := s.resolve(e)
	if err != nil {
		return nil, fmt.Errorf("get %s on %s: %w", ty, e, err)
	}

	column, ok := s.archetypes[meta.archetype].Column(id)
	if !ok {
		return nil, fmt.Errorf("get %s on %s: %w", ty, e, ErrMissingComponent)
	}

	return column.Get(int(meta.row)), nil
}

// Set overwrites the entity's value of the given component type.
func (s *Storage) Set(e Entity, id ComponentID, value any) error {
	ty, err := s.registry.TypeOf(id)
	if err != nil {
		return err
	}

	meta, err := s.resolve(e)
	if err != nil {
		return fmt.Errorf("set %s on %s: %w", ty, e, err)
	}

	column, ok := s.archetypes[meta.archetype].Column(id)
	if !ok {
		return fmt.Errorf("set %s on %s: %w", ty, e, ErrMissingComponent)
	}

	column.Set(int(meta.row), value)

	return nil
}

// AddComponent adds the component to the entity, migrating it to the
// archetype with the extended component set. If the entity already has the
// component, its value is replaced in place and no migration happens.
func (s *Storage) AddComponent(e Entity, id ComponentID, value any) error {
	ty, err := s.registry.TypeOf(id)
	if err != nil {
		return err
	}

	meta, err := s.resolve(e)
	if err != nil {
		return fmt.Errorf("add %s on %s: %w", ty, e, err)
	}

	a := s.archetypes[meta.archetype]
	if column, ok := a.Column(id); ok {
		column.Set(int(meta.row), value)
		return nil
	}

	dst := s.transitionTarget(a, id, true)
	dstRow := s.migrate(meta, a, dst)

	column, _ := dst.Column(id)
	column.Set(dstRow, value)

	return nil
}

// RemoveComponent removes the component from the entity, migrating it to the
// archetype with the reduced component set. Removing a component the entity
// does not have is a no-op.
func (s *Storage) RemoveComponent(e Entity, id ComponentID) error {
	ty, err := s.registry.TypeOf(id)
	if err != nil {
		return err
	}

	meta, err := s.resolve(e)
	if err != nil {
		return fmt.Errorf("remove %s on %s: %w", ty, e, err)
	}

	a := s.archetypes[meta.archetype]
	if !a.Contains(id) {
		return nil
	}

	dst := s.transitionTarget(a, id, false)
	s.migrate(meta, a, dst)

	return nil
}

// migrate moves the entity described by meta from src to dst: the shared
// component values are copied over, then the old row is dropped via
// swap-with-last, and the index table is updated for both the migrated and
// the displaced entity within the same critical section.
func (s *Storage) migrate(meta *entityMeta, src, dst *Archetype) int {
	row := int(meta.row)
	dstRow := src.transferTo(dst, row)

	moved := src.swapRemove(row)
	if moved != NoEntity {
		s.metas[moved.ID].row = meta.row
	}

	meta.archetype = int32(dst.index)
	meta.row = int32(dstRow)

	return dstRow
}

// transitionTarget returns the archetype reached from src by adding or
// removing one component type, caching the edge for subsequent migrations.
func (s *Storage) transitionTarget(src *Archetype, id ComponentID, add bool) *Archetype {
	key := transition{from: src.index, id: id, add: add}
	if index, ok := s.transitions[key]; ok {
		return s.archetypes[index]
	}

	mask := src.Mask()
	if add {
		mask.Set(id)
	} else {
		mask.Unset(id)
	}

	dst := s.archetypeFor(mask)
	s.transitions[key] = dst.index

	return dst
}

// archetypeFor returns the unique archetype for the given mask, creating it
// on first use. Every component id in the mask must already be registered.
func (s *Storage) archetypeFor(mask Mask) *Archetype {
	if index, ok := s.byMask[mask]; ok {
		return s.archetypes[index]
	}

	var types []*ComponentType
	for id := range mask.Bits() {
		ty, err := s.registry.TypeOf(id)
		if err != nil {
			panic(fmt.Sprintf("archetype mask refers to unregistered component id %d", id))
		}

		types = append(types, ty)
	}

	a := newArchetype(len(s.archetypes), types)
	s.archetypes = append(s.archetypes, a)
	s.byMask[mask] = a.index

	for _, fn := range s.onNewArchetype {
		fn(a)
	}

	return a
}

// checkComponentSet validates that all component ids are registered and
// deduplicates the set, keeping the last value per id. Validation happens
// before any mutation so a failed create leaves no trace.
func (s *Storage) checkComponentSet(components []ComponentValue) ([]ComponentValue, Mask, error) {
	var mask Mask
	deduped := components[:0:0]

	for _, cv := range components {
		if _, err := s.registry.TypeOf(cv.ID); err != nil {
			return nil, Mask{}, err
		}

		if mask.Contains(cv.ID) {
			for i := range deduped {
				if deduped[i].ID == cv.ID {
					deduped[i] = cv
					break
				}
			}

			continue
		}

		mask.Set(cv.ID)
		deduped = append(deduped, cv)
	}

	return deduped, mask, nil
}

func (s *Storage) place(e Entity, mask Mask, components []ComponentValue) {
	a := s.archetypeFor(mask)
	row := a.push(e)

	for _, cv := range components {
		column, _ := a.Column(cv.ID)
		column.Set(row, cv.Value)
	}

	meta := &s.metas[e.ID]
	meta.archetype = int32(a.index)
	meta.row = int32(row)
	s.live++
}

func (s *Storage) allocHandle() Entity {
	if n := len(s.freeIDs); n > 0 {
		id := s.freeIDs[n-1]
		s.freeIDs = s.freeIDs[:n-1]

		return Entity{ID: id, Version: s.metas[id].version}
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.mu.Unlock()

	s.ensureMeta(id)
	s.metas[id].version = 1

	return Entity{ID: id, Version: 1}
}

// ensureMeta grows the index table to cover the given id. Gap entries stay at
// version 0, which no handle ever carries, so they resolve as stale.
func (s *Storage) ensureMeta(id uint32) {
	for uint32(len(s.metas)) <= id {
		s.metas = append(s.metas, entityMeta{archetype: noArchetype})
	}
}

func (s *Storage) resolve(e Entity) (*entityMeta, error) {
	if int(e.ID) >= len(s.metas) {
		return nil, ErrStaleHandle
	}

	meta := &s.metas[e.ID]
	if meta.version != e.Version || meta.archetype == noArchetype {
		return nil, ErrStaleHandle
	}

	return meta, nil
}

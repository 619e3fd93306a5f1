package arch

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Archetype is the columnar chunk for one unique component set: one column
// per component type plus a parallel column of entity handles. Archetypes are
// created and deduplicated by the Storage; their index is a stable chunk id.
type Archetype struct {
	index int
	mask  Mask
	hash  uint64
	types []*ComponentType

	// slot lookup: component id to column index, -1 if absent
	slots [MaxComponentTypes]int16

	entities []Entity
	columns  []Column
}

func newArchetype(index int, types []*ComponentType) *Archetype {
	a := &Archetype{
		index: index,
		types: types,
	}

	for i := range a.slots {
		a.slots[i] = -1
	}

	for i, ty := range types {
		if a.mask.Contains(ty.ID) {
			panic(fmt.Sprintf("archetype contains duplicate type: %s", ty))
		}

		a.mask.Set(ty.ID)
		a.slots[ty.ID] = int16(i)
		a.columns = append(a.columns, ty.MakeColumn())
	}

	a.hash = hashMask(a.mask)

	return a
}

// hashMask derives a stable signature hash from the archetype's mask. Unlike
// maphash it does not change between processes, which keeps archetype
// identities comparable across runs and log files.
func hashMask(m Mask) uint64 {
	var buf [32]byte
	for i, word := range m {
		binary.LittleEndian.PutUint64(buf[i*8:], word)
	}

	return xxhash.Sum64(buf[:])
}

// Index is the archetype's stable chunk id within its Storage.
func (a *Archetype) Index() int {
	return a.index
}

func (a *Archetype) Mask() Mask {
	return a.mask
}

// Hash is a stable signature hash of the archetype's component set.
func (a *Archetype) Hash() uint64 {
	return a.hash
}

func (a *Archetype) Types() []*ComponentType {
	return a.types
}

// Contains reports whether the archetype's component set includes the given
// type. This is the O(1) membership test queries evaluate against.
func (a *Archetype) Contains(id ComponentID) bool {
	return a.mask.Contains(id)
}

// Column returns the column holding values of the given component type.
func (a *Archetype) Column(id ComponentID) (Column, bool) {
	slot := a.slots[id]
	if slot < 0 {
		return nil, false
	}

	return a.columns[slot], true
}

// Entities is the handle column, parallel to every component column.
func (a *Archetype) Entities() []Entity {
	return a.entities
}

func (a *Archetype) Len() int {
	return len(a.entities)
}

func (a *Archetype) String() string {
	var sb strings.Builder

	sb.WriteString("Archetype(")
	for i, ty := range a.types {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(ty.Name)
	}

	sb.WriteString(")")

	return sb.String()
}

// push appends an entity with zero-valued components and returns its row.
// Component values are written by the caller while the same critical section
// still holds.
func (a *Archetype) push(e Entity) int {
	defer a.assertColumnLengths()

	row := len(a.entities)
	a.entities = append(a.entities, e)

	for _, column := range a.columns {
		column.AppendZero()
	}

	return row
}

// swapRemove removes the given row by moving the last entity into its place.
// It returns the handle of the entity that was moved, or NoEntity if the
// removed row was the last one.
func (a *Archetype) swapRemove(row int) Entity {
	defer a.assertColumnLengths()

	last := len(a.entities) - 1
	moved := NoEntity
	if row != last {
		moved = a.entities[last]
	}

	a.entities[row] = a.entities[last]
	a.entities = a.entities[:last]

	for _, column := range a.columns {
		column.SwapRemove(row)
	}

	return moved
}

// transferTo appends the entity at the given row to the destination
// archetype, copying every component value the two archetypes share. Columns
// only present in the destination are left zero-valued for the caller to
// fill. The source row is not removed.
func (a *Archetype) transferTo(dst *Archetype, row int) int {
	dstRow := len(dst.entities)
	dst.entities = append(dst.entities, a.entities[row])

	for i, ty := range dst.types {
		src, ok := a.Column(ty.ID)
		if !ok {
			dst.columns[i].AppendZero()
			continue
		}

		src.CopyTo(dst.columns[i], row)
	}

	dst.assertColumnLengths()

	return dstRow
}

func (a *Archetype) assertColumnLengths() {
	for _, column := range a.columns {
		if column.Len() != len(a.entities) {
			panic(fmt.Sprintf("%s: column length %d out of sync with %d entities",
				a, column.Len(), len(a.entities)))
		}
	}
}

package arch

import (
	"iter"
	"math/bits"
)

// Mask is a fixed-size bitmask over component ids. It is the identity of an
// archetype: two archetypes are the same iff their masks are equal, which
// makes deduplication a plain map lookup.
type Mask [4]uint64

func MaskOf(ids ...ComponentID) Mask {
	var m Mask
	for _, id := range ids {
		m.Set(id)
	}

	return m
}

func (m *Mask) Set(id ComponentID) {
	m[id>>6] |= 1 << (id & 63)
}

func (m *Mask) Unset(id ComponentID) {
	m[id>>6] &^= 1 << (id & 63)
}

// Contains reports whether the bit for the given component id is set.
func (m Mask) Contains(id ComponentID) bool {
	return m[id>>6]&(1<<(id&63)) != 0
}

// ContainsAll reports whether every bit of sub is also set in m.
func (m Mask) ContainsAll(sub Mask) bool {
	return m[0]&sub[0] == sub[0] &&
		m[1]&sub[1] == sub[1] &&
		m[2]&sub[2] == sub[2] &&
		m[3]&sub[3] == sub[3]
}

// Intersects reports whether m and other share at least one set bit.
func (m Mask) Intersects(other Mask) bool {
	return m[0]&other[0] != 0 ||
		m[1]&other[1] != 0 ||
		m[2]&other[2] != 0 ||
		m[3]&other[3] != 0
}

func (m Mask) IsZero() bool {
	return m == Mask{}
}

func (m Mask) Count() int {
	return bits.OnesCount64(m[0]) +
		bits.OnesCount64(m[1]) +
		bits.OnesCount64(m[2]) +
		bits.OnesCount64(m[3])
}

// Bits iterates over the set component ids in ascending order.
func (m Mask) Bits() iter.Seq[ComponentID] {
	return func(yield func(ComponentID) bool) {
		for word := 0; word < len(m); word++ {
			rest := m[word]
			for rest != 0 {
				bit := bits.TrailingZeros64(rest)
				rest &= rest - 1

				if !yield(ComponentID(word<<6 + bit)) {
					return
				}
			}
		}
	}
}

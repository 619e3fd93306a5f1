package arch

import (
	"iter"
	"math/bits"
)

// Bitset is a growable bitset over chunk ids. Each registered system owns one
// recording which chunks currently match its query.
type Bitset []uint64

func (b *Bitset) Set(i int) {
	word := i >> 6
	for len(*b) <= word {
		*b = append(*b, 0)
	}

	(*b)[word] |= 1 << (i & 63)
}

func (b Bitset) Has(i int) bool {
	word := i >> 6
	return word < len(b) && b[word]&(1<<(i&63)) != 0
}

// All iterates over the set indices in ascending order.
func (b Bitset) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for word, value := range b {
			for value != 0 {
				bit := bits.TrailingZeros64(value)
				value &= value - 1

				if !yield(word<<6 + bit) {
					return
				}
			}
		}
	}
}

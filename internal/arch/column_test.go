package arch

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypedColumn_SwapRemove(t *testing.T) {
	column := &TypedColumn[int]{}
	for i := 0; i < 4; i++ {
		column.Append(i * 10)
	}

	column.SwapRemove(1)

	require.Equal(t, []int{0, 30, 20}, column.Values)

	// removing the last row needs no swap
	column.SwapRemove(2)
	require.Equal(t, []int{0, 30}, column.Values)
}

func TestTypedColumn_CopyTo(t *testing.T) {
	src := &TypedColumn[string]{Values: []string{"a", "b", "c"}}
	dst := &TypedColumn[string]{}

	src.CopyTo(dst, 1)

	require.Equal(t, []string{"b"}, dst.Values)
	require.Equal(t, []string{"a", "b", "c"}, src.Values)
}

func TestTypedColumn_AppendIncompatiblePanics(t *testing.T) {
	column := &TypedColumn[int]{}

	require.Panics(t, func() {
		column.Append("not an int")
	})
}

func BenchmarkTypedColumn_Get(b *testing.B) {
	type vec struct{ X, Y float64 }

	column := &TypedColumn[vec]{}
	for range 1000 {
		column.Append(vec{X: rand.Float64(), Y: rand.Float64()})
	}

	b.ReportAllocs()
	b.ResetTimer()

	var dummy float64
	for b.Loop() {
		for row := range 1000 {
			dummy += column.Values[row].X
		}
	}

	_ = dummy
}

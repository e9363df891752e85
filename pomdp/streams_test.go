package pomdp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandomStreams(t *testing.T) {
	t.Run("dimensions and range", func(t *testing.T) {
		rs := NewRandomStreams(4, 8, 42)

		require.Equal(t, 4, rs.NumStreams())
		require.Equal(t, 8, rs.Length())
		for s := 0; s < rs.NumStreams(); s++ {
			for d := 0; d < rs.Length(); d++ {
				u := rs.Entry(s, d)
				require.GreaterOrEqual(t, u, 0.0)
				require.Less(t, u, 1.0)
			}
		}
	})

	t.Run("same seed reproduces the table", func(t *testing.T) {
		a := NewRandomStreams(4, 8, 42)
		b := NewRandomStreams(4, 8, 42)

		for s := 0; s < a.NumStreams(); s++ {
			for d := 0; d < a.Length(); d++ {
				require.Equal(t, a.Entry(s, d), b.Entry(s, d))
			}
		}
	})

	t.Run("different seeds diverge", func(t *testing.T) {
		a := NewRandomStreams(4, 8, 42)
		b := NewRandomStreams(4, 8, 43)

		same := true
		for d := 0; d < a.Length(); d++ {
			if a.Entry(0, d) != b.Entry(0, d) {
				same = false
			}
		}
		require.False(t, same, "Distinct seeds should produce distinct streams")
	})

	t.Run("derived seeds use stream-count offsets", func(t *testing.T) {
		rs := NewRandomStreams(4, 8, 42)

		require.Equal(t, uint64(42^4), rs.WorldSeed())
		require.Equal(t, uint64(42^5), rs.BeliefUpdateSeed())
		require.Equal(t, uint64(42^6), rs.ModelSeed())
	})

	t.Run("empty table", func(t *testing.T) {
		rs := NewRandomStreams(0, 0, 1)

		require.Equal(t, 0, rs.NumStreams())
		require.Equal(t, 0, rs.Length())
	})
}

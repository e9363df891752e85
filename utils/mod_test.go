package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindIndex(t *testing.T) {
	require.Equal(t, 1, FindIndex([]string{"a", "b", "c"}, "b"))
	require.Equal(t, -1, FindIndex([]string{"a", "b", "c"}, "d"))
	require.Equal(t, -1, FindIndex(nil, 1))
}

func TestWeightedPick(t *testing.T) {
	weights := []float64{0.2, 0.3, 0.5}

	require.Equal(t, 0, WeightedPick(0.0, weights))
	require.Equal(t, 0, WeightedPick(0.19, weights))
	require.Equal(t, 1, WeightedPick(0.2, weights))
	require.Equal(t, 2, WeightedPick(0.5, weights))
	require.Equal(t, 2, WeightedPick(0.999, weights))
}

func TestWeightedPickUnnormalized(t *testing.T) {
	// Weights need not sum to one; the draw is scaled by the total.
	weights := []float64{2, 2}

	require.Equal(t, 0, WeightedPick(0.49, weights))
	require.Equal(t, 1, WeightedPick(0.51, weights))
}

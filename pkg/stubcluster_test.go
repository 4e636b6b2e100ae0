package tools

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// vPaddle builds a vertical paddle spanning [x0, x1] in X.
func vPaddle(layer, half, paddleX int, x0, x1 float64) *Paddle {
	return &Paddle{
		Layer:       layer,
		Orientation: OrientationVertical,
		Half:        half,
		PaddleX:     paddleX,
		Origin:      Position{X: x0 + (x1-x0)/2},
		ExtentsX:    Extents{Min: x0, Max: x1},
	}
}

func TestStubClusterMergeAdjacent(t *testing.T) {
	cluster := NewStubCluster(vPaddle(2, 0, 5, 0.0, 0.2))

	merged, err := cluster.Merge(vPaddle(2, 0, 6, 0.2, 0.4))
	require.NoError(t, err)
	require.True(t, merged)

	merged, err = cluster.Merge(vPaddle(2, 0, 4, -0.2, 0.0))
	require.NoError(t, err)
	require.True(t, merged)

	require.Equal(t, 3, cluster.NumPaddles())
	require.Equal(t, Extents{Min: -0.2, Max: 0.4}, cluster.Extents())
	require.InDelta(t, 0.1, cluster.Origin().X, 1e-9)
}

func TestStubClusterMergeNotAdjacent(t *testing.T) {
	cluster := NewStubCluster(vPaddle(2, 0, 5, 0.0, 0.2))

	merged, err := cluster.Merge(vPaddle(2, 0, 8, 0.6, 0.8))
	require.NoError(t, err)
	require.False(t, merged)
	require.Equal(t, 1, cluster.NumPaddles())
}

func TestStubClusterMergeOppositeSideOverlap(t *testing.T) {
	cluster := NewStubCluster(vPaddle(2, 0, 5, 0.0, 0.2))

	// a paddle in the other MRD half sharing the same in-layer number
	// overlaps without extending the cluster ends
	merged, err := cluster.Merge(vPaddle(2, 1, 5, 0.0, 0.2))
	require.NoError(t, err)
	require.True(t, merged)
	require.Equal(t, 2, cluster.NumPaddles())

	// the end paddle numbers are untouched by an opposite-side merge,
	// so the next same-side neighbour still fits
	merged, err = cluster.Merge(vPaddle(2, 0, 6, 0.2, 0.4))
	require.NoError(t, err)
	require.True(t, merged)
}

func TestStubClusterMergeLayerMismatch(t *testing.T) {
	cluster := NewStubCluster(vPaddle(2, 0, 5, 0.0, 0.2))

	merged, err := cluster.Merge(vPaddle(3, 0, 6, 0.2, 0.4))
	require.Error(t, err)
	require.False(t, merged)
}

func TestStubClusterMergeWiderPaddle(t *testing.T) {
	cluster := NewStubCluster(vPaddle(2, 0, 5, 0.0, 0.2))

	// a paddle spanning past both cluster ends cannot be merged
	merged, err := cluster.Merge(vPaddle(2, 1, 5, -0.1, 0.3))
	require.Error(t, err)
	require.False(t, merged)
}

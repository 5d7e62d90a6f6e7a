package main

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(minX, minY, maxX, maxY float64) orb.Bound {
	return orb.Bound{Min: orb.Point{minX, minY}, Max: orb.Point{maxX, maxY}}
}

func ids(obstacles []MoveableObstacle) []string {
	out := make([]string, 0, len(obstacles))
	for _, o := range obstacles {
		out = append(out, o.ID)
	}
	return out
}

func TestObstacleIndex_QueryRegion(t *testing.T) {
	index := NewObstacleIndex(DefaultConfig().SpatialIndex)
	require.NoError(t, index.Insert(MoveableObstacle{ID: "a", Bounds: box(0, 0, 1, 1)}))
	require.NoError(t, index.Insert(MoveableObstacle{ID: "b", Bounds: box(10, 10, 11, 11)}))
	require.NoError(t, index.Insert(MoveableObstacle{ID: "c", Bounds: box(2, 2, 2, 2)}))

	assert.ElementsMatch(t, []string{"a", "c"}, ids(index.QueryRegion(box(-1, -1, 5, 5))))
	assert.ElementsMatch(t, []string{"b"}, ids(index.QueryRegion(box(9, 9, 20, 20))))
	assert.Empty(t, index.QueryRegion(box(30, 30, 40, 40)))
	assert.Equal(t, 3, index.Len())
}

func TestObstacleIndex_MoveAndRemove(t *testing.T) {
	index := NewObstacleIndex(DefaultConfig().SpatialIndex)
	require.NoError(t, index.Insert(MoveableObstacle{ID: "crate", Bounds: box(0, 0, 1, 1)}))

	require.NoError(t, index.Move("crate", box(5, 5, 6, 6)))
	assert.Empty(t, index.QueryRegion(box(-1, -1, 2, 2)))
	assert.Equal(t, []string{"crate"}, ids(index.QueryRegion(box(4, 4, 7, 7))))

	got, ok := index.Get("crate")
	require.True(t, ok)
	assert.Equal(t, box(5, 5, 6, 6), got.Bounds)

	require.NoError(t, index.Remove("crate"))
	assert.Zero(t, index.Len())
	assert.Empty(t, index.QueryRegion(box(4, 4, 7, 7)))

	assert.ErrorIs(t, index.Remove("crate"), ErrObstacleNotFound)
	assert.ErrorIs(t, index.Move("crate", box(0, 0, 1, 1)), ErrObstacleNotFound)
}

func TestObstacleIndex_RejectsInvertedBounds(t *testing.T) {
	index := NewObstacleIndex(DefaultConfig().SpatialIndex)

	err := index.Insert(MoveableObstacle{ID: "bad", Bounds: box(2, 2, 1, 1)})
	assert.ErrorIs(t, err, ErrInvalidBounds)
	assert.Zero(t, index.Len())
}

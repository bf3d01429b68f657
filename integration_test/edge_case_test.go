package integration_test

import (
	"math"
	"strings"
	"testing"

	"github.com/hupe1980/kdnn"
	"github.com/hupe1980/kdnn/index"
	"github.com/hupe1980/kdnn/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, coords []kdnn.Coord, opts ...kdnn.IndexOption) *kdnn.Index {
	t.Helper()
	points := make([]kdnn.Point, len(coords))
	for i, c := range coords {
		points[i] = kdnn.Point{X: c.X, Y: c.Y}
	}
	ps, err := kdnn.NewPointSet(points)
	require.NoError(t, err)
	idx, err := kdnn.NewIndex(ps, opts...)
	require.NoError(t, err)
	return idx
}

func TestEdgeCase_AllDuplicates(t *testing.T) {
	coords := make([]kdnn.Coord, 100)
	for i := range coords {
		coords[i] = kdnn.Coord{X: 3, Y: 4}
	}

	for _, leaf := range []int{1, 4, 64} {
		idx := build(t, coords, kdnn.WithLeafSize(leaf))

		got, err := idx.KNearest(kdnn.Coord{}, 5)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2, 3, 4}, index.Indices(got), "ties resolve to the smallest indices")
		assert.Equal(t, 5.0, got[0].Distance)

		within, err := idx.Radius(kdnn.Coord{X: 3, Y: 4}, 0)
		require.NoError(t, err)
		assert.Len(t, within, 100)

		within, err = idx.Radius(kdnn.Coord{}, 5)
		require.NoError(t, err)
		assert.Len(t, within, 100, "the boundary is inclusive")
	}
}

func TestEdgeCase_Collinear(t *testing.T) {
	rng := testutil.NewRNG(9)
	coords := make([]kdnn.Coord, 500)
	for i := range coords {
		coords[i] = kdnn.Coord{X: 1, Y: rng.Float64Range(-100, 100)}
	}
	idx := build(t, coords, kdnn.WithLeafSize(2))

	for range 20 {
		q := rng.Coord(-100, 100)
		got, err := idx.KNearest(q, 7)
		require.NoError(t, err)
		assert.Equal(t, testutil.BruteForceKNearest(coords, q, 7), got)
	}
}

func TestEdgeCase_LargeMagnitudes(t *testing.T) {
	coords := []kdnn.Coord{{X: -1e150, Y: 1e150}, {X: 1e150, Y: -1e150}, {X: 0, Y: 0}, {X: 1e-300, Y: 0}}
	idx := build(t, coords, kdnn.WithLeafSize(1))

	got, err := idx.KNearest(kdnn.Coord{}, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 0, 1}, index.Indices(got))

	// A zero radius only matches exact equality, even for subnormal offsets.
	within, err := idx.Radius(kdnn.Coord{}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, index.Indices(within))

	within, err = idx.Radius(kdnn.Coord{}, math.Inf(1))
	require.NoError(t, err)
	assert.Len(t, within, 4)
}

func TestEdgeCase_NegativeZero(t *testing.T) {
	ps, err := kdnn.Load(strings.NewReader("x,y,label\n-0,0,1\n0,-0,2\n"))
	require.NoError(t, err)
	idx, err := kdnn.NewIndex(ps)
	require.NoError(t, err)

	within, err := idx.Radius(kdnn.Coord{}, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 1}, index.Indices(within))
}

func TestEdgeCase_SinglePoint(t *testing.T) {
	idx := build(t, []kdnn.Coord{{X: 2, Y: 2}})

	got, err := idx.KNearest(kdnn.Coord{X: -5, Y: 9}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Index)

	b, ok := idx.PointSet().Bounds()
	require.True(t, ok)
	assert.Equal(t, kdnn.Coord{X: 2, Y: 2}, b.Min)
	assert.Equal(t, b.Min, b.Max)
}

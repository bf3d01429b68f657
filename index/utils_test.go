package index

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortNeighbors(t *testing.T) {
	ns := []Neighbor{
		{Index: 3, Distance: 2},
		{Index: 1, Distance: 1},
		{Index: 0, Distance: 2},
		{Index: 2, Distance: 0},
	}

	SortNeighbors(ns)

	assert.Equal(t, []int{2, 1, 0, 3}, Indices(ns))
}

func TestValidate(t *testing.T) {
	origin := Coord{}

	t.Run("KNearest", func(t *testing.T) {
		require.NoError(t, ValidateKNearest(origin, 0))
		assert.ErrorIs(t, ValidateKNearest(origin, -1), ErrInvalidK)
		assert.ErrorIs(t, ValidateKNearest(Coord{X: math.NaN()}, 1), ErrNonFiniteQuery)
		assert.ErrorIs(t, ValidateKNearest(Coord{Y: math.Inf(-1)}, 1), ErrNonFiniteQuery)
	})

	t.Run("Radius", func(t *testing.T) {
		require.NoError(t, ValidateRadius(origin, 0))
		require.NoError(t, ValidateRadius(origin, math.Inf(1)))
		assert.ErrorIs(t, ValidateRadius(origin, -5), ErrInvalidRadius)
		assert.ErrorIs(t, ValidateRadius(origin, math.NaN()), ErrInvalidRadius)
		assert.ErrorIs(t, ValidateRadius(Coord{X: math.Inf(1)}, 1), ErrNonFiniteQuery)
	})

	t.Run("ArgumentError", func(t *testing.T) {
		var ae *ArgumentError
		require.ErrorAs(t, ValidateRadius(origin, -2.5), &ae)
		assert.Equal(t, "radius", ae.Arg)
		assert.Equal(t, "-2.5", ae.Value)

		require.ErrorAs(t, ValidateKNearest(Coord{X: math.NaN(), Y: 1}, 3), &ae)
		assert.Equal(t, "query", ae.Arg)
		assert.Equal(t, "(NaN, 1)", ae.Value)
	})
}

package flat

import (
	"math"
	"testing"

	"github.com/hupe1980/kdnn/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square() []index.Coord {
	return []index.Coord{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 5, Y: 5}}
}

func TestFlat(t *testing.T) {
	t.Run("KNearest", func(t *testing.T) {
		f := New(square())

		result, err := f.KNearest(index.Coord{X: 1, Y: 1}, 2, nil)
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, 0, result[0].Index)
		assert.InDelta(t, math.Sqrt2, result[0].Distance, 1e-12)
		assert.Equal(t, 4, result[1].Index)
		assert.InDelta(t, math.Sqrt(32), result[1].Distance, 1e-12)
	})

	t.Run("KNearestTies", func(t *testing.T) {
		f := New(square())

		// All four corners are equidistant from the centre.
		result, err := f.KNearest(index.Coord{X: 5, Y: 5}, 5, nil)
		require.NoError(t, err)
		assert.Equal(t, []int{4, 0, 1, 2, 3}, index.Indices(result))
	})

	t.Run("Radius", func(t *testing.T) {
		f := New(square())

		result, err := f.Radius(index.Coord{X: 5, Y: 5}, 6, nil)
		require.NoError(t, err)
		assert.Equal(t, []int{4}, index.Indices(result))

		result, err = f.Radius(index.Coord{X: 5, Y: 5}, math.Sqrt(50), nil)
		require.NoError(t, err)
		assert.Len(t, result, 5)
	})

	t.Run("Filter", func(t *testing.T) {
		f := New(square())
		odd := func(i int) bool { return i%2 == 1 }

		result, err := f.KNearest(index.Coord{}, 5, odd)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3}, index.Indices(result))

		result, err = f.Radius(index.Coord{}, 100, odd)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3}, index.Indices(result))
	})

	t.Run("Empty", func(t *testing.T) {
		f := New(nil)

		result, err := f.KNearest(index.Coord{}, 3, nil)
		require.NoError(t, err)
		assert.Empty(t, result)

		result, err = f.Radius(index.Coord{}, 3, nil)
		require.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("InvalidArguments", func(t *testing.T) {
		f := New(square())

		_, err := f.KNearest(index.Coord{}, -1, nil)
		assert.ErrorIs(t, err, index.ErrInvalidK)

		_, err = f.Radius(index.Coord{}, -5, nil)
		assert.ErrorIs(t, err, index.ErrInvalidRadius)

		_, err = f.Radius(index.Coord{X: math.NaN()}, 1, nil)
		assert.ErrorIs(t, err, index.ErrNonFiniteQuery)
	})

	t.Run("ExtremeMagnitudes", func(t *testing.T) {
		f := New([]index.Coord{{X: 2e-200}, {X: 1e-200}, {X: 1e300}})

		result, err := f.KNearest(index.Coord{}, 2, nil)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 0}, index.Indices(result))

		result, err = f.Radius(index.Coord{}, 1e200, nil)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1}, index.Indices(result))

		result, err = f.Radius(index.Coord{}, 1e-210, nil)
		require.NoError(t, err)
		assert.Empty(t, result)
	})
}

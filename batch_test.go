package kdnn

import (
	"context"
	"math"
	"testing"

	"github.com/hupe1980/kdnn/resource"
	"github.com/hupe1980/kdnn/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomIndex(t *testing.T, n int, opts ...IndexOption) (*Index, *testutil.RNG) {
	t.Helper()
	rng := testutil.NewRNG(21)
	coords := rng.UniformCoords(n, 0, 500)
	labels := rng.Labels(n, 3)

	pts := make([]Point, n)
	for i, c := range coords {
		pts[i] = Point{X: c.X, Y: c.Y, Label: labels[i]}
	}
	ps, err := NewPointSet(pts)
	require.NoError(t, err)
	idx, err := NewIndex(ps, opts...)
	require.NoError(t, err)
	return idx, rng
}

func TestBatchMatchesSequential(t *testing.T) {
	idx, rng := randomIndex(t, 4000, WithBatchWorkers(4))
	qs := rng.UniformCoords(200, 0, 500)

	knn, err := idx.BatchKNearest(context.Background(), qs, 7, WithLabels(0, 2))
	require.NoError(t, err)
	require.Len(t, knn, len(qs))

	within, err := idx.BatchRadius(context.Background(), qs, 25)
	require.NoError(t, err)
	require.Len(t, within, len(qs))

	for i, q := range qs {
		want, err := idx.KNearest(q, 7, WithLabels(0, 2))
		require.NoError(t, err)
		assert.Equal(t, want, knn[i])

		wantR, err := idx.Radius(q, 25)
		require.NoError(t, err)
		assert.Equal(t, wantR, within[i])
	}
}

func TestBatchEmpty(t *testing.T) {
	idx, _ := randomIndex(t, 10)

	res, err := idx.BatchKNearest(context.Background(), nil, 3)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestBatchError(t *testing.T) {
	idx, _ := randomIndex(t, 100)
	qs := []Coord{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: math.NaN(), Y: 0}, {X: 3, Y: 3}}

	_, err := idx.BatchRadius(context.Background(), qs, 5)
	require.ErrorIs(t, err, ErrInvalidArgument)

	var be *BatchError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 2, be.Query)

	_, err = idx.BatchKNearest(context.Background(), qs[:2], -3)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBatchCanceled(t *testing.T) {
	idx, rng := randomIndex(t, 100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := idx.BatchKNearest(ctx, rng.UniformCoords(50, 0, 500), 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatchWorkerSlots(t *testing.T) {
	rc := resource.NewController(resource.Config{MaxWorkers: 2})
	mc := &BasicMetricsCollector{}
	idx, rng := randomIndex(t, 1000, WithResourceController(rc), WithBatchWorkers(8), WithMetricsCollector(mc))

	res, err := idx.BatchKNearest(context.Background(), rng.UniformCoords(64, 0, 500), 5)
	require.NoError(t, err)
	assert.Len(t, res, 64)

	assert.True(t, rc.TryAcquireWorker(), "slots must be returned")
	rc.ReleaseWorker()

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.BatchCount)
	assert.Equal(t, int64(64), stats.BatchQueries)
	assert.Equal(t, int64(64), stats.KNearestCount)
}

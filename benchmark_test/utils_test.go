package benchmark_test

import (
	"testing"

	"github.com/hupe1980/kdnn"
	"github.com/hupe1980/kdnn/testutil"
)

const extent = 10_000.0

// fixture builds a clustered, labeled index of n points.
func fixture(b *testing.B, n, classes int, opts ...kdnn.IndexOption) (*kdnn.Index, *testutil.RNG) {
	b.Helper()

	rng := testutil.NewRNG(1)
	coords := rng.ClusteredCoords(n, 32, 50, extent)
	labels := rng.Labels(n, classes)

	points := make([]kdnn.Point, n)
	for i, c := range coords {
		points[i] = kdnn.Point{X: c.X, Y: c.Y, Label: labels[i]}
	}

	ps, err := kdnn.NewPointSet(points)
	if err != nil {
		b.Fatal(err)
	}
	idx, err := kdnn.NewIndex(ps, opts...)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = idx.Close() })

	return idx, rng
}

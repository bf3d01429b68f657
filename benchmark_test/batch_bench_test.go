package benchmark_test

import (
	"context"
	"fmt"
	"testing"
)

func BenchmarkBatchKNearest(b *testing.B) {
	idx, rng := fixture(b, 200_000, 8)
	ctx := context.Background()
	k := 16

	for _, batchSize := range []int{16, 256, 4096} {
		queries := rng.UniformCoords(batchSize, 0, extent)

		b.Run(fmt.Sprintf("Sequential/batch=%d", batchSize), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				for _, q := range queries {
					if _, err := idx.KNearest(q, k); err != nil {
						b.Fatal(err)
					}
				}
			}
		})

		b.Run(fmt.Sprintf("Batch/batch=%d", batchSize), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := idx.BatchKNearest(ctx, queries, k); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkBatchRadius(b *testing.B) {
	idx, rng := fixture(b, 200_000, 8)
	ctx := context.Background()
	queries := rng.UniformCoords(1024, 0, extent)

	for _, r := range []float64{10, 50, 200} {
		b.Run(fmt.Sprintf("r=%g", r), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := idx.BatchRadius(ctx, queries, r); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

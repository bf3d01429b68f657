package benchmark_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/hupe1980/kdnn"
	"github.com/hupe1980/kdnn/blobstore"
	"github.com/hupe1980/kdnn/compression"
	"github.com/hupe1980/kdnn/testutil"
)

func BenchmarkLoadBlob(b *testing.B) {
	const n = 100_000

	rng := testutil.NewRNG(2)
	raw := testutil.CSV(rng.UniformCoords(n, 0, extent), rng.Labels(n, 16))
	ctx := context.Background()

	for _, typ := range []compression.Type{compression.None, compression.Gzip, compression.Zstd, compression.LZ4} {
		var buf bytes.Buffer
		w, err := compression.NewWriter(&buf, typ)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := w.Write(raw); err != nil {
			b.Fatal(err)
		}
		if err := w.Close(); err != nil {
			b.Fatal(err)
		}

		store := blobstore.NewMemoryStore()
		if err := store.Put(ctx, "points.csv", buf.Bytes()); err != nil {
			b.Fatal(err)
		}

		b.Run(typ.String(), func(b *testing.B) {
			b.SetBytes(int64(len(raw)))
			b.ReportAllocs()
			for b.Loop() {
				if _, err := kdnn.LoadBlob(ctx, store, "points.csv", kdnn.WithExpectedRows(n)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkNewIndex(b *testing.B) {
	rng := testutil.NewRNG(3)
	ps, err := kdnn.Load(bytes.NewReader(testutil.CSV(rng.UniformCoords(100_000, 0, extent), nil)))
	if err != nil {
		b.Fatal(err)
	}

	for _, leaf := range []int{1, 8, 32} {
		b.Run(fmt.Sprintf("leaf=%d", leaf), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				idx, err := kdnn.NewIndex(ps, kdnn.WithLeafSize(leaf))
				if err != nil {
					b.Fatal(err)
				}
				_ = idx.Close()
			}
		})
	}
}

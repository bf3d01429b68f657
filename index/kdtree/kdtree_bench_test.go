package kdtree_test

import (
	"fmt"
	"testing"

	"github.com/hupe1980/kdnn/index"
	"github.com/hupe1980/kdnn/index/flat"
	"github.com/hupe1980/kdnn/index/kdtree"
	"github.com/hupe1980/kdnn/testutil"
)

var sizes = []int{1_000, 10_000, 100_000}

func BenchmarkBuild(b *testing.B) {
	for _, n := range sizes {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			coords := testutil.NewRNG(0).UniformCoords(n, 0, 1000)
			b.ReportAllocs()

			for b.Loop() {
				if _, err := kdtree.New(coords); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkKNearest(b *testing.B) {
	for _, n := range sizes {
		coords := testutil.NewRNG(0).UniformCoords(n, 0, 1000)
		tree, err := kdtree.New(coords)
		if err != nil {
			b.Fatal(err)
		}
		queries := testutil.NewRNG(1).UniformCoords(1024, 0, 1000)

		for _, s := range []struct {
			name string
			idx  index.Searcher
		}{
			{"kdtree", tree},
			{"flat", flat.New(coords)},
		} {
			b.Run(fmt.Sprintf("%s/n=%d", s.name, n), func(b *testing.B) {
				b.ReportAllocs()
				i := 0
				for b.Loop() {
					if _, err := s.idx.KNearest(queries[i%len(queries)], 8, nil); err != nil {
						b.Fatal(err)
					}
					i++
				}
			})
		}
	}
}

func BenchmarkRadius(b *testing.B) {
	for _, n := range sizes {
		coords := testutil.NewRNG(0).UniformCoords(n, 0, 1000)
		tree, err := kdtree.New(coords)
		if err != nil {
			b.Fatal(err)
		}
		queries := testutil.NewRNG(1).UniformCoords(1024, 0, 1000)

		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			i := 0
			for b.Loop() {
				if _, err := tree.Radius(queries[i%len(queries)], 12, nil); err != nil {
					b.Fatal(err)
				}
				i++
			}
		})
	}
}

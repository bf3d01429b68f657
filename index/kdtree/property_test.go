package kdtree

import (
	"math"
	"reflect"
	"testing"

	"github.com/hupe1980/kdnn/index"
	"github.com/hupe1980/kdnn/testutil"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// pairs turns a flat slice of numbers into coordinates.
func pairs(vals []float64) []index.Coord {
	out := make([]index.Coord, len(vals)/2)
	for i := range out {
		out[i] = index.Coord{X: vals[2*i], Y: vals[2*i+1]}
	}
	return out
}

// TestSearchProperties uses property-based testing to verify query invariants
// on arbitrary point sets, including heavy duplication.
func TestSearchProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	if testing.Short() {
		parameters.MinSuccessfulTests = 30
	}

	properties := gopter.NewProperties(parameters)

	coordsGen := gen.SliceOf(gen.Float64Range(-50, 50))
	latticeGen := gen.SliceOf(gen.IntRange(-3, 3))

	properties.Property("k-nearest returns min(k, n) results in non-decreasing distance", prop.ForAll(
		func(vals []float64, qx, qy float64, k int, ls int) bool {
			coords := pairs(vals)
			tree, err := New(coords, leafSize(ls))
			if err != nil {
				return false
			}
			got, err := tree.KNearest(index.Coord{X: qx, Y: qy}, k, nil)
			if err != nil || len(got) != min(k, len(coords)) {
				return false
			}
			for i := 1; i < len(got); i++ {
				if got[i].Distance < got[i-1].Distance {
					return false
				}
			}
			return true
		},
		coordsGen,
		gen.Float64Range(-60, 60),
		gen.Float64Range(-60, 60),
		gen.IntRange(0, 30),
		gen.IntRange(1, 10),
	))

	properties.Property("k-nearest equals brute force on lattices with ties", prop.ForAll(
		func(vals []int, qx, qy int, k int) bool {
			fs := make([]float64, len(vals))
			for i, v := range vals {
				fs[i] = float64(v)
			}
			coords := pairs(fs)
			tree, err := New(coords, leafSize(1))
			if err != nil {
				return false
			}
			q := index.Coord{X: float64(qx), Y: float64(qy)}
			got, err := tree.KNearest(q, k, nil)
			if err != nil {
				return false
			}
			return reflect.DeepEqual(testutil.BruteForceKNearest(coords, q, k), got)
		},
		latticeGen,
		gen.IntRange(-4, 4),
		gen.IntRange(-4, 4),
		gen.IntRange(0, 12),
	))

	properties.Property("radius equals the brute-force set", prop.ForAll(
		func(vals []float64, qx, qy, r float64) bool {
			coords := pairs(vals)
			tree, err := New(coords, leafSize(2))
			if err != nil {
				return false
			}
			q := index.Coord{X: qx, Y: qy}
			got, err := tree.Radius(q, r, nil)
			if err != nil {
				return false
			}
			return reflect.DeepEqual(testutil.BruteForceRadius(coords, q, r), testutil.SortByIndex(got))
		},
		coordsGen,
		gen.Float64Range(-60, 60),
		gen.Float64Range(-60, 60),
		gen.Float64Range(0, 40),
	))

	properties.Property("zero radius returns only coincident points", prop.ForAll(
		func(vals []int, pick int) bool {
			fs := make([]float64, len(vals))
			for i, v := range vals {
				fs[i] = float64(v)
			}
			coords := pairs(fs)
			if len(coords) == 0 {
				return true
			}
			q := coords[pick%len(coords)]
			tree, err := New(coords, leafSize(1))
			if err != nil {
				return false
			}
			got, err := tree.Radius(q, 0, nil)
			if err != nil || len(got) == 0 {
				return false
			}
			for _, n := range got {
				if coords[n.Index] != q || n.Distance != 0 {
					return false
				}
			}
			return len(got) == len(testutil.BruteForceRadius(coords, q, 0))
		},
		latticeGen,
		gen.IntRange(0, 1000),
	))

	properties.Property("queries equal brute force across the float64 range", prop.ForAll(
		func(mants []float64, exps []int, qm float64, qe int, k int, re int) bool {
			n := min(len(mants), len(exps))
			vals := make([]float64, n)
			for i := range vals {
				vals[i] = math.Ldexp(mants[i], exps[i])
			}
			coords := pairs(vals)
			tree, err := New(coords, leafSize(1))
			if err != nil {
				return false
			}

			q := index.Coord{X: math.Ldexp(qm, qe), Y: -math.Ldexp(qm, qe/2)}
			got, err := tree.KNearest(q, k, nil)
			if err != nil || !reflect.DeepEqual(testutil.BruteForceKNearest(coords, q, k), got) {
				return false
			}

			r := math.Ldexp(1, re)
			within, err := tree.Radius(q, r, nil)
			return err == nil && reflect.DeepEqual(testutil.BruteForceRadius(coords, q, r), testutil.SortByIndex(within))
		},
		gen.SliceOf(gen.Float64Range(-1, 1)),
		gen.SliceOf(gen.IntRange(-1070, 1020)),
		gen.Float64Range(-1, 1),
		gen.IntRange(-1070, 1020),
		gen.IntRange(0, 12),
		gen.IntRange(-1070, 1020),
	))

	properties.Property("queries are idempotent", prop.ForAll(
		func(vals []float64, qx, qy float64, k int) bool {
			tree, err := New(pairs(vals))
			if err != nil {
				return false
			}
			q := index.Coord{X: qx, Y: qy}
			a, errA := tree.KNearest(q, k, nil)
			b, errB := tree.KNearest(q, k, nil)
			return errA == nil && errB == nil && reflect.DeepEqual(a, b)
		},
		coordsGen,
		gen.Float64Range(-60, 60),
		gen.Float64Range(-60, 60),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}

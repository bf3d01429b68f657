package testutil

import (
	"bytes"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"sync"

	"github.com/hupe1980/kdnn/index"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64Range returns a pseudo-random number in [minVal, maxVal).
func (r *RNG) Float64Range(minVal, maxVal float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return minVal + r.rand.Float64()*(maxVal-minVal)
}

// Coord returns a single coordinate uniform in [minVal, maxVal) on both axes.
func (r *RNG) Coord(minVal, maxVal float64) index.Coord {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	return index.Coord{
		X: minVal + r.rand.Float64()*span,
		Y: minVal + r.rand.Float64()*span,
	}
}

// UniformCoords generates num coordinates uniform in [minVal, maxVal) on both axes.
func (r *RNG) UniformCoords(num int, minVal, maxVal float64) []index.Coord {
	r.mu.Lock()
	defer r.mu.Unlock()

	span := maxVal - minVal
	out := make([]index.Coord, num)
	for i := range out {
		out[i] = index.Coord{
			X: minVal + r.rand.Float64()*span,
			Y: minVal + r.rand.Float64()*span,
		}
	}
	return out
}

// ClusteredCoords generates coordinates around random centres in [0, extent).
// spread is the standard deviation of each cluster.
// Clustered data is the worst case for space partitioning.
func (r *RNG) ClusteredCoords(num, clusters int, spread, extent float64) []index.Coord {
	r.mu.Lock()
	defer r.mu.Unlock()

	if clusters < 1 {
		clusters = 1
	}
	centres := make([]index.Coord, clusters)
	for i := range centres {
		centres[i] = index.Coord{X: r.rand.Float64() * extent, Y: r.rand.Float64() * extent}
	}

	out := make([]index.Coord, num)
	for i := range out {
		c := centres[r.rand.Intn(clusters)]
		out[i] = index.Coord{
			X: c.X + r.rand.NormFloat64()*spread,
			Y: c.Y + r.rand.NormFloat64()*spread,
		}
	}
	return out
}

// GridCoords generates coordinates on an integer lattice of the given side.
// With num > side*side the result contains exact duplicates, which exercises
// tie-breaking.
func (r *RNG) GridCoords(num, side int) []index.Coord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]index.Coord, num)
	for i := range out {
		out[i] = index.Coord{
			X: float64(r.rand.Intn(side)),
			Y: float64(r.rand.Intn(side)),
		}
	}
	return out
}

// Labels generates num labels in [0, classes).
func (r *RNG) Labels(num, classes int) []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]uint32, num)
	for i := range out {
		out[i] = uint32(r.rand.Intn(classes))
	}
	return out
}

type scored struct {
	index int
	dist2 index.Dist2
}

func sortScored(s []scored) {
	sort.Slice(s, func(i, j int) bool {
		if c := s[i].dist2.Compare(s[j].dist2); c != 0 {
			return c < 0
		}
		return s[i].index < s[j].index
	})
}

// BruteForceKNearest performs an exact k-nearest search by sorting all points.
func BruteForceKNearest(coords []index.Coord, q index.Coord, k int) []index.Neighbor {
	all := make([]scored, len(coords))
	for i, c := range coords {
		all[i] = scored{index: i, dist2: index.SquaredDistance(q, c)}
	}
	sortScored(all)

	k = min(k, len(all))
	out := make([]index.Neighbor, k)
	for i := range out {
		out[i] = index.Neighbor{Index: all[i].index, Distance: all[i].dist2.Sqrt()}
	}
	return out
}

// BruteForceRadius returns every point within r of q, sorted by index.
func BruteForceRadius(coords []index.Coord, q index.Coord, r float64) []index.Neighbor {
	out := []index.Neighbor{}
	r2 := index.Square(r)
	for i, c := range coords {
		if r == 0 {
			if c == q {
				out = append(out, index.Neighbor{Index: i})
			}
			continue
		}
		if d2 := index.SquaredDistance(q, c); d2.Compare(r2) <= 0 {
			out = append(out, index.Neighbor{Index: i, Distance: d2.Sqrt()})
		}
	}
	return out
}

// SortByIndex sorts neighbours by index so that unordered results compare equal.
func SortByIndex(ns []index.Neighbor) []index.Neighbor {
	sort.Slice(ns, func(i, j int) bool { return ns[i].Index < ns[j].Index })
	return ns
}

// CSV renders coordinates and labels in the loader's input format, header included.
// labels may be nil, in which case every label is zero.
func CSV(coords []index.Coord, labels []uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("p1,p2,label\n")
	for i, c := range coords {
		var label uint32
		if labels != nil {
			label = labels[i]
		}
		fmt.Fprintf(&buf, "%s,%s,%d\n",
			strconv.FormatFloat(c.X, 'g', -1, 64),
			strconv.FormatFloat(c.Y, 'g', -1, 64),
			label,
		)
	}
	return buf.Bytes()
}

// Package kdtree implements a static, pointerless 2-D k-d tree.
//
// The tree is a permutation of point indices. Every range [lo, hi) holding more
// than LeafSize points stores the median along its axis at lo+(hi-lo)/2, the
// points ordered before it on the left and the points ordered after it on the
// right. Axes alternate x, y, x, ... with depth. Ordering along an axis is the
// strict total order (coordinate, index), so equal coordinates are split by
// original index and the layout is reproducible for a given input.
package kdtree

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/kdnn/index"
)

// Compile time check to ensure Tree satisfies the searcher interface.
var _ index.Searcher = (*Tree)(nil)

var (
	// ErrInvalidLeafSize is returned when LeafSize is below one.
	ErrInvalidLeafSize = errors.New("kdtree: leaf size must be at least 1")

	// ErrNonFiniteCoord is returned when an indexed coordinate is NaN or infinite.
	ErrNonFiniteCoord = errors.New("kdtree: coordinates must be finite")

	// ErrTooManyPoints is returned when the point count does not fit the permutation.
	ErrTooManyPoints = errors.New("kdtree: too many points")
)

// Options contains configuration options for the tree.
type Options struct {
	// LeafSize is the largest range that is scanned linearly instead of split.
	LeafSize int
}

// DefaultOptions contains the default configuration options for the tree.
var DefaultOptions = Options{
	LeafSize: 8,
}

// Tree is an immutable k-d tree over a shared coordinate slice.
// It is safe for concurrent queries.
type Tree struct {
	coords   []index.Coord // shared with the owner, never written
	perm     []int32
	leafSize int
}

// New builds a tree over coords. The slice is retained, not copied, and must not
// be modified afterwards.
func New(coords []index.Coord, optFns ...func(o *Options)) (*Tree, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.LeafSize < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLeafSize, opts.LeafSize)
	}
	if int64(len(coords)) > math.MaxInt32 {
		return nil, ErrTooManyPoints
	}
	for i, c := range coords {
		if !c.IsFinite() {
			return nil, fmt.Errorf("%w: point %d is %v", ErrNonFiniteCoord, i, c)
		}
	}

	t := &Tree{
		coords:   coords,
		perm:     make([]int32, len(coords)),
		leafSize: opts.LeafSize,
	}
	for i := range t.perm {
		t.perm[i] = int32(i)
	}

	t.build(0, len(t.perm), 0)

	return t, nil
}

// Len returns the number of indexed points.
func (t *Tree) Len() int { return len(t.perm) }

// LeafSize returns the configured leaf size.
func (t *Tree) LeafSize() int { return t.leafSize }

// MemoryUsage returns the bytes owned by the tree, excluding the shared coordinates.
func (t *Tree) MemoryUsage() int64 {
	return int64(cap(t.perm)) * 4
}

func (t *Tree) isLeaf(lo, hi int) bool {
	return hi-lo <= t.leafSize
}

func (t *Tree) build(lo, hi, axis int) {
	for !t.isLeaf(lo, hi) {
		mid := lo + (hi-lo)/2
		t.selectNth(lo, hi, mid, axis)
		t.build(lo, mid, 1-axis)
		lo, axis = mid+1, 1-axis
	}
}

// less compares the points at permutation positions i and j along axis.
func (t *Tree) less(i, j, axis int) bool {
	a, b := t.perm[i], t.perm[j]
	ca, cb := t.coords[a].Axis(axis), t.coords[b].Axis(axis)
	if ca != cb {
		return ca < cb
	}
	return a < b
}

// selectNth partially orders perm[lo:hi] so that position nth holds the element
// of that rank, smaller elements before it and larger ones after it.
func (t *Tree) selectNth(lo, hi, nth, axis int) {
	p := t.perm
	for hi-lo > 1 {
		pivot := t.medianOf3(lo, lo+(hi-lo)/2, hi-1, axis)
		last := hi - 1
		p[pivot], p[last] = p[last], p[pivot]

		store := lo
		for i := lo; i < last; i++ {
			if t.less(i, last, axis) {
				p[i], p[store] = p[store], p[i]
				store++
			}
		}
		p[store], p[last] = p[last], p[store]

		switch {
		case nth == store:
			return
		case nth < store:
			hi = store
		default:
			lo = store + 1
		}
	}
}

func (t *Tree) medianOf3(a, b, c, axis int) int {
	if t.less(a, b, axis) {
		if t.less(b, c, axis) {
			return b
		}
		if t.less(a, c, axis) {
			return c
		}
		return a
	}
	if t.less(a, c, axis) {
		return a
	}
	if t.less(b, c, axis) {
		return c
	}
	return b
}

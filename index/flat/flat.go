// Package flat provides an exact linear-scan index over 2-D coordinates.
//
// Flat does no preprocessing and answers every query in O(n). It is the
// fallback for very small point sets and the reference the tree is checked
// against.
package flat

import (
	"github.com/hupe1980/kdnn/index"
	"github.com/hupe1980/kdnn/internal/queue"
)

// Compile time check to ensure Flat satisfies the searcher interface.
var _ index.Searcher = (*Flat)(nil)

// Flat scans every point for every query.
type Flat struct {
	coords []index.Coord // shared with the owner, never written
}

// New returns a flat index over coords. The slice is retained, not copied.
func New(coords []index.Coord) *Flat {
	return &Flat{coords: coords}
}

// Len returns the number of indexed points.
func (f *Flat) Len() int { return len(f.coords) }

// KNearest returns the min(k, Len()) admitted points nearest to q, ordered by
// ascending distance with ties broken by ascending index.
func (f *Flat) KNearest(q index.Coord, k int, filter index.Filter) ([]index.Neighbor, error) {
	if err := index.ValidateKNearest(q, k); err != nil {
		return nil, err
	}

	k = min(k, len(f.coords))
	if k == 0 {
		return []index.Neighbor{}, nil
	}

	best := queue.NewBounded(k)
	for i, c := range f.coords {
		if filter != nil && !filter(i) {
			continue
		}
		best.Offer(queue.Item{Index: i, Dist2: index.SquaredDistance(q, c)})
	}

	items := best.Sorted()
	out := make([]index.Neighbor, len(items))
	for i, it := range items {
		out[i] = index.Neighbor{Index: it.Index, Distance: it.Dist2.Sqrt()}
	}

	return out, nil
}

// Radius returns every admitted point within distance r of q in index order.
func (f *Flat) Radius(q index.Coord, r float64, filter index.Filter) ([]index.Neighbor, error) {
	if err := index.ValidateRadius(q, r); err != nil {
		return nil, err
	}

	r2 := index.Square(r)
	out := []index.Neighbor{}
	for i, c := range f.coords {
		if filter != nil && !filter(i) {
			continue
		}
		if d2, ok := index.WithinRadius(q, c, r2); ok {
			out = append(out, index.Neighbor{Index: i, Distance: d2.Sqrt()})
		}
	}

	return out, nil
}

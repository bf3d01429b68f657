package kdtree

import (
	"github.com/hupe1980/kdnn/index"
	"github.com/hupe1980/kdnn/internal/queue"
)

// cell tracks the per-axis squared distance from the query to the current
// region. Every point inside the region is at least sqrt(rd) away from the query.
type cell struct {
	off [2]index.Dist2
	rd  index.Dist2
}

// split returns the cell on the far side of a splitting plane along axis
// through the coordinate at.
func (c cell) split(axis int, q, at float64) cell {
	c.off[axis] = index.SquaredDiff(q, at)
	c.rd = c.off[0].Add(c.off[1])
	return c
}

// KNearest returns the min(k, Len()) admitted points nearest to q, ordered by
// ascending distance with ties broken by ascending index.
func (t *Tree) KNearest(q index.Coord, k int, filter index.Filter) ([]index.Neighbor, error) {
	if err := index.ValidateKNearest(q, k); err != nil {
		return nil, err
	}

	k = min(k, len(t.perm))
	if k == 0 {
		return []index.Neighbor{}, nil
	}

	s := knnSearch{
		tree:   t,
		q:      q,
		filter: filter,
		best:   queue.NewBounded(k),
	}
	s.visit(0, len(t.perm), 0, cell{})

	items := s.best.Sorted()
	out := make([]index.Neighbor, len(items))
	for i, it := range items {
		out[i] = index.Neighbor{Index: it.Index, Distance: it.Dist2.Sqrt()}
	}

	return out, nil
}

type knnSearch struct {
	tree   *Tree
	q      index.Coord
	filter index.Filter
	best   *queue.Bounded
}

// reachable reports whether a region at squared distance rd may still hold a
// candidate. Equal distances are not pruned: a smaller index could win the tie.
func (s *knnSearch) reachable(rd index.Dist2) bool {
	if !s.best.Full() {
		return true
	}
	worst, _ := s.best.Worst()
	return rd.Compare(worst.Dist2) <= 0
}

func (s *knnSearch) consider(i int32) {
	idx := int(i)
	if s.filter != nil && !s.filter(idx) {
		return
	}
	s.best.Offer(queue.Item{
		Index: idx,
		Dist2: index.SquaredDistance(s.q, s.tree.coords[idx]),
	})
}

func (s *knnSearch) visit(lo, hi, axis int, c cell) {
	t := s.tree
	if t.isLeaf(lo, hi) {
		for _, i := range t.perm[lo:hi] {
			s.consider(i)
		}
		return
	}

	mid := lo + (hi-lo)/2
	pivot := t.perm[mid]
	qa, pa := s.q.Axis(axis), t.coords[pivot].Axis(axis)

	nearLo, nearHi, farLo, farHi := lo, mid, mid+1, hi
	if qa >= pa {
		nearLo, nearHi, farLo, farHi = mid+1, hi, lo, mid
	}

	s.visit(nearLo, nearHi, 1-axis, c)
	s.consider(pivot)

	far := c.split(axis, qa, pa)
	if farLo < farHi && s.reachable(far.rd) {
		s.visit(farLo, farHi, 1-axis, far)
	}
}

// Radius returns every admitted point whose squared distance to q is at most
// r². A zero radius matches exactly coincident points only. Order is the
// traversal order and carries no meaning.
func (t *Tree) Radius(q index.Coord, r float64, filter index.Filter) ([]index.Neighbor, error) {
	if err := index.ValidateRadius(q, r); err != nil {
		return nil, err
	}

	s := radiusSearch{
		tree:   t,
		q:      q,
		r2:     index.Square(r),
		filter: filter,
		out:    []index.Neighbor{},
	}
	if len(t.perm) > 0 {
		s.visit(0, len(t.perm), 0, cell{})
	}

	return s.out, nil
}

type radiusSearch struct {
	tree   *Tree
	q      index.Coord
	r2     index.Dist2
	filter index.Filter
	out    []index.Neighbor
}

func (s *radiusSearch) consider(i int32) {
	idx := int(i)
	if s.filter != nil && !s.filter(idx) {
		return
	}
	if d2, ok := index.WithinRadius(s.q, s.tree.coords[idx], s.r2); ok {
		s.out = append(s.out, index.Neighbor{Index: idx, Distance: d2.Sqrt()})
	}
}

func (s *radiusSearch) visit(lo, hi, axis int, c cell) {
	t := s.tree
	if t.isLeaf(lo, hi) {
		for _, i := range t.perm[lo:hi] {
			s.consider(i)
		}
		return
	}

	mid := lo + (hi-lo)/2
	pivot := t.perm[mid]
	qa, pa := s.q.Axis(axis), t.coords[pivot].Axis(axis)

	nearLo, nearHi, farLo, farHi := lo, mid, mid+1, hi
	if qa >= pa {
		nearLo, nearHi, farLo, farHi = mid+1, hi, lo, mid
	}

	s.consider(pivot)
	s.visit(nearLo, nearHi, 1-axis, c)

	far := c.split(axis, qa, pa)
	if farLo < farHi && far.rd.Compare(s.r2) <= 0 {
		s.visit(farLo, farHi, 1-axis, far)
	}
}

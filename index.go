package kdnn

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/kdnn/index"
	"github.com/hupe1980/kdnn/index/kdtree"
	"github.com/hupe1980/kdnn/resource"
)

// Index answers neighbour queries over a PointSet.
// It is immutable and safe for concurrent use.
type Index struct {
	ps   *PointSet
	tree *kdtree.Tree

	metrics      MetricsCollector
	controller   *resource.Controller
	batchWorkers int

	reserved int64
	released atomic.Bool
}

// NewIndex builds a k-d tree over ps. The index shares the point set's
// coordinates and keeps ps alive.
func NewIndex(ps *PointSet, opts ...IndexOption) (*Index, error) {
	o := defaultIndexOptions()
	for _, fn := range opts {
		fn(&o)
	}

	start := time.Now()

	// The permutation is one int32 per point.
	reserved := int64(ps.Len()) * 4
	if !o.controller.TryAcquireMemory(reserved) {
		o.metricsCollector.RecordBuild(ps.Len(), time.Since(start), ErrMemoryLimit)
		return nil, ErrMemoryLimit
	}

	tree, err := kdtree.New(ps.coords, func(to *kdtree.Options) {
		to.LeafSize = o.leafSize
	})
	o.metricsCollector.RecordBuild(ps.Len(), time.Since(start), err)
	if err != nil {
		o.controller.ReleaseMemory(reserved)
		return nil, translateError(err)
	}

	return &Index{
		ps:           ps,
		tree:         tree,
		metrics:      o.metricsCollector,
		controller:   o.controller,
		batchWorkers: o.batchWorkers,
		reserved:     reserved,
	}, nil
}

// PointSet returns the indexed points.
func (idx *Index) PointSet() *PointSet {
	return idx.ps
}

// Len returns the number of indexed points.
func (idx *Index) Len() int {
	return idx.tree.Len()
}

// Stats describes the shape of the tree.
func (idx *Index) Stats() kdtree.Stats {
	return idx.tree.Stats()
}

// Close returns the index's memory reservation to the resource controller.
// The tree lives as long as its PointSet, so queries keep working after Close.
// Calling Close more than once is harmless.
func (idx *Index) Close() error {
	if idx.released.CompareAndSwap(false, true) {
		idx.controller.ReleaseMemory(idx.reserved)
	}
	return nil
}

func (idx *Index) filter(opts []QueryOption) index.Filter {
	if len(opts) == 0 {
		return nil
	}
	var qo queryOptions
	for _, fn := range opts {
		fn(&qo)
	}
	if len(qo.labels) == 0 {
		return nil
	}
	return idx.ps.labelFilter(qo.labels)
}

// KNearest returns the min(k, n) points closest to q ordered by ascending
// distance, ties broken by ascending index.
func (idx *Index) KNearest(q Coord, k int, opts ...QueryOption) ([]Neighbor, error) {
	return idx.kNearest(q, k, idx.filter(opts))
}

func (idx *Index) kNearest(q Coord, k int, filter index.Filter) ([]Neighbor, error) {
	start := time.Now()
	res, err := idx.tree.KNearest(q, k, filter)
	err = translateError(err)
	idx.metrics.RecordKNearest(k, len(res), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Radius returns every point within distance r of q, boundary included,
// in unspecified order. A zero radius matches only points equal to q.
func (idx *Index) Radius(q Coord, r float64, opts ...QueryOption) ([]Neighbor, error) {
	return idx.radius(q, r, idx.filter(opts))
}

func (idx *Index) radius(q Coord, r float64, filter index.Filter) ([]Neighbor, error) {
	start := time.Now()
	res, err := idx.tree.Radius(q, r, filter)
	err = translateError(err)
	idx.metrics.RecordRadius(r, len(res), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SortByDistance orders neighbours by ascending distance, then index.
func SortByDistance(ns []Neighbor) {
	index.SortNeighbors(ns)
}

// ValidateKNearest reports whether KNearest would accept q and k.
func ValidateKNearest(q Coord, k int) error {
	return translateError(index.ValidateKNearest(q, k))
}

// ValidateRadius reports whether Radius would accept q and r.
func ValidateRadius(q Coord, r float64) error {
	return translateError(index.ValidateRadius(q, r))
}

package kdnn

import (
	"runtime"

	"github.com/hupe1980/kdnn/index/kdtree"
	"github.com/hupe1980/kdnn/resource"
)

type indexOptions struct {
	leafSize         int
	batchWorkers     int
	metricsCollector MetricsCollector
	controller       *resource.Controller
}

func defaultIndexOptions() indexOptions {
	return indexOptions{
		leafSize:         kdtree.DefaultOptions.LeafSize,
		batchWorkers:     runtime.GOMAXPROCS(0),
		metricsCollector: NoopMetricsCollector{},
	}
}

// IndexOption configures NewIndex.
type IndexOption func(*indexOptions)

// WithLeafSize sets the largest tree range that is scanned linearly.
// Values below one are rejected by NewIndex.
func WithLeafSize(n int) IndexOption {
	return func(o *indexOptions) {
		o.leafSize = n
	}
}

// WithBatchWorkers caps the goroutines a single batch call uses.
// Values below one fall back to GOMAXPROCS.
func WithBatchWorkers(n int) IndexOption {
	return func(o *indexOptions) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		o.batchWorkers = n
	}
}

// WithMetricsCollector records build and query metrics.
//
// If nil is passed, metrics are discarded.
func WithMetricsCollector(mc MetricsCollector) IndexOption {
	return func(o *indexOptions) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithResourceController reserves the tree's memory from rc and draws
// batch worker slots from it.
func WithResourceController(rc *resource.Controller) IndexOption {
	return func(o *indexOptions) {
		o.controller = rc
	}
}

type queryOptions struct {
	labels []uint32
}

// QueryOption configures a single query.
type QueryOption func(*queryOptions)

// WithLabels restricts results to points carrying one of labels.
// Excluded points do not count toward k. An empty list admits every point.
func WithLabels(labels ...uint32) QueryOption {
	return func(o *queryOptions) {
		o.labels = append(o.labels, labels...)
	}
}

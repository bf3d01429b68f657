package kdnn

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implementations must be safe for concurrent use.
//
// See observability/prometheus for a Prometheus implementation.
type MetricsCollector interface {
	// RecordBuild is called once per NewIndex with the number of points.
	RecordBuild(points int, duration time.Duration, err error)

	// RecordKNearest is called after each k-nearest query.
	RecordKNearest(k, results int, duration time.Duration, err error)

	// RecordRadius is called after each radius query.
	RecordRadius(radius float64, results int, duration time.Duration, err error)

	// RecordBatch is called after each batch call with the number of queries.
	RecordBatch(queries int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, time.Duration, error)           {}
func (NoopMetricsCollector) RecordKNearest(int, int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordRadius(float64, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordBatch(int, time.Duration, error)           {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount      atomic.Int64
	BuildErrors     atomic.Int64
	BuildPoints     atomic.Int64
	KNearestCount   atomic.Int64
	KNearestErrors  atomic.Int64
	KNearestResults atomic.Int64
	KNearestNanos   atomic.Int64
	RadiusCount     atomic.Int64
	RadiusErrors    atomic.Int64
	RadiusResults   atomic.Int64
	RadiusNanos     atomic.Int64
	BatchCount      atomic.Int64
	BatchQueries    atomic.Int64
	BatchErrors     atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(points int, _ time.Duration, err error) {
	b.BuildCount.Add(1)
	if err != nil {
		b.BuildErrors.Add(1)
		return
	}
	b.BuildPoints.Add(int64(points))
}

// RecordKNearest implements MetricsCollector.
func (b *BasicMetricsCollector) RecordKNearest(_, results int, duration time.Duration, err error) {
	b.KNearestCount.Add(1)
	b.KNearestNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.KNearestErrors.Add(1)
		return
	}
	b.KNearestResults.Add(int64(results))
}

// RecordRadius implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRadius(_ float64, results int, duration time.Duration, err error) {
	b.RadiusCount.Add(1)
	b.RadiusNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RadiusErrors.Add(1)
		return
	}
	b.RadiusResults.Add(int64(results))
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(queries int, _ time.Duration, err error) {
	b.BatchCount.Add(1)
	b.BatchQueries.Add(int64(queries))
	if err != nil {
		b.BatchErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:       b.BuildCount.Load(),
		BuildErrors:      b.BuildErrors.Load(),
		BuildPoints:      b.BuildPoints.Load(),
		KNearestCount:    b.KNearestCount.Load(),
		KNearestErrors:   b.KNearestErrors.Load(),
		KNearestResults:  b.KNearestResults.Load(),
		KNearestAvgNanos: avg(b.KNearestNanos.Load(), b.KNearestCount.Load()),
		RadiusCount:      b.RadiusCount.Load(),
		RadiusErrors:     b.RadiusErrors.Load(),
		RadiusResults:    b.RadiusResults.Load(),
		RadiusAvgNanos:   avg(b.RadiusNanos.Load(), b.RadiusCount.Load()),
		BatchCount:       b.BatchCount.Load(),
		BatchQueries:     b.BatchQueries.Load(),
		BatchErrors:      b.BatchErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount       int64
	BuildErrors      int64
	BuildPoints      int64
	KNearestCount    int64
	KNearestErrors   int64
	KNearestResults  int64
	KNearestAvgNanos int64
	RadiusCount      int64
	RadiusErrors     int64
	RadiusResults    int64
	RadiusAvgNanos   int64
	BatchCount       int64
	BatchQueries     int64
	BatchErrors      int64
}

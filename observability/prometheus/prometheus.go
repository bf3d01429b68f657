// Package prometheus exports index metrics through the Prometheus client.
//
//	reg := prometheus.NewRegistry()
//	mc, err := kdnnprom.NewCollector(reg)
//	if err != nil { ... }
//	idx, err := kdnn.NewIndex(ps, kdnn.WithMetricsCollector(mc))
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prometheus

import (
	"time"

	"github.com/hupe1980/kdnn"
	"github.com/prometheus/client_golang/prometheus"
)

var _ kdnn.MetricsCollector = (*Collector)(nil)

// Collector implements kdnn.MetricsCollector with Prometheus metrics.
type Collector struct {
	latency       *prometheus.HistogramVec
	results       *prometheus.HistogramVec
	indexedPoints prometheus.Gauge
	batchQueries  prometheus.Counter
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kdnn_operation_latency_seconds",
			Help:    "Latency of index builds and queries",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"op", "status"}),
		results: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kdnn_query_results",
			Help:    "Number of neighbours returned per query",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"op"}),
		indexedPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kdnn_indexed_points",
			Help: "Points in the most recently built index",
		}),
		batchQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kdnn_batch_queries_total",
			Help: "Queries submitted through batch calls",
		}),
	}

	for _, m := range []prometheus.Collector{c.latency, c.results, c.indexedPoints, c.batchQueries} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordBuild implements kdnn.MetricsCollector.
func (c *Collector) RecordBuild(points int, d time.Duration, err error) {
	c.latency.WithLabelValues("build", status(err)).Observe(d.Seconds())
	if err == nil {
		c.indexedPoints.Set(float64(points))
	}
}

// RecordKNearest implements kdnn.MetricsCollector.
func (c *Collector) RecordKNearest(_, results int, d time.Duration, err error) {
	c.latency.WithLabelValues("knn", status(err)).Observe(d.Seconds())
	if err == nil {
		c.results.WithLabelValues("knn").Observe(float64(results))
	}
}

// RecordRadius implements kdnn.MetricsCollector.
func (c *Collector) RecordRadius(_ float64, results int, d time.Duration, err error) {
	c.latency.WithLabelValues("radius", status(err)).Observe(d.Seconds())
	if err == nil {
		c.results.WithLabelValues("radius").Observe(float64(results))
	}
}

// RecordBatch implements kdnn.MetricsCollector.
func (c *Collector) RecordBatch(queries int, d time.Duration, err error) {
	c.latency.WithLabelValues("batch", status(err)).Observe(d.Seconds())
	c.batchQueries.Add(float64(queries))
}

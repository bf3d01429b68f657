package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/hupe1980/kdnn"
	miniostore "github.com/hupe1980/kdnn/blobstore/minio"
	s3store "github.com/hupe1980/kdnn/blobstore/s3"
	"github.com/hupe1980/kdnn/compression"
	"github.com/hupe1980/kdnn/config"
	kdnnprom "github.com/hupe1980/kdnn/observability/prometheus"
	"github.com/hupe1980/kdnn/resource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// env is what a command needs to answer queries.
type env struct {
	idx        *kdnn.Index
	controller *resource.Controller
	metrics    *metricsServer
}

func (e *env) Close(ctx context.Context) error {
	return errors.Join(e.idx.Close(), e.shutdownMetrics(ctx))
}

// open starts the metrics endpoint if configured, then loads and indexes
// the configured source.
func (a *app) open(ctx context.Context) (*env, error) {
	cfg := a.cfg

	workers := cfg.Query.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   cfg.Resources.MemoryLimitBytes,
		MaxWorkers:         int64(workers),
		IOLimitBytesPerSec: cfg.Resources.IOLimitBytesPerSec,
	})

	e := &env{controller: rc}

	var mc kdnn.MetricsCollector = kdnn.NoopMetricsCollector{}
	if cfg.Metrics.Addr != "" {
		ms, err := startMetrics(cfg.Metrics.Addr, a.logger)
		if err != nil {
			return nil, err
		}
		e.metrics = ms
		mc = ms.collector
	}

	ps, err := a.load(ctx, cfg.Source, rc)
	if err != nil {
		return nil, errors.Join(err, e.shutdownMetrics(ctx))
	}

	opts := []kdnn.IndexOption{
		kdnn.WithLeafSize(cfg.Index.LeafSize),
		kdnn.WithBatchWorkers(workers),
		kdnn.WithMetricsCollector(mc),
		kdnn.WithResourceController(rc),
	}

	start := time.Now()
	idx, err := kdnn.NewIndex(ps, opts...)
	depth := 0
	if err == nil {
		depth = idx.Stats().Depth
	}
	a.logger.LogBuild(ctx, ps.Len(), depth, time.Since(start), err)
	if err != nil {
		return nil, errors.Join(err, e.shutdownMetrics(ctx))
	}
	e.idx = idx

	return e, nil
}

func (e *env) shutdownMetrics(ctx context.Context) error {
	if e.metrics == nil {
		return nil
	}
	return e.metrics.Shutdown(ctx)
}

// load reads the point file from the configured backend.
func (a *app) load(ctx context.Context, src config.SourceConfig, rc *resource.Controller) (*kdnn.PointSet, error) {
	typ, err := compression.ParseType(src.Compression)
	if err != nil {
		return nil, err
	}
	opts := []kdnn.LoadOption{
		kdnn.WithCompression(typ),
		kdnn.WithLoadController(rc),
	}

	start := time.Now()
	ps, err := a.loadFrom(ctx, src, opts)
	n := 0
	if ps != nil {
		n = ps.Len()
	}
	a.logger.LogLoad(ctx, sourceName(src), n, time.Since(start), err)

	return ps, err
}

func (a *app) loadFrom(ctx context.Context, src config.SourceConfig, opts []kdnn.LoadOption) (*kdnn.PointSet, error) {
	switch src.Backend {
	case "s3":
		s3opts := []s3store.Option{
			s3store.WithPrefix(src.Prefix),
		}
		if src.Region != "" {
			s3opts = append(s3opts, s3store.WithRegion(src.Region))
		}
		if src.Endpoint != "" {
			s3opts = append(s3opts, s3store.WithEndpoint(src.Endpoint), s3store.WithPathStyle())
		}
		if src.AccessKey != "" {
			s3opts = append(s3opts, s3store.WithCredentials(src.AccessKey, src.SecretKey))
		}

		store, err := s3store.New(ctx, src.Bucket, s3opts...)
		if err != nil {
			return nil, fmt.Errorf("s3: %w", err)
		}
		return kdnn.LoadBlob(ctx, store, src.Path, opts...)

	case "minio":
		store, err := miniostore.Dial(src.Endpoint, src.AccessKey, src.SecretKey, src.Secure, src.Bucket, src.Prefix)
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		return kdnn.LoadBlob(ctx, store, src.Path, opts...)

	default:
		return kdnn.LoadFile(ctx, src.Path, opts...)
	}
}

func sourceName(src config.SourceConfig) string {
	switch src.Backend {
	case "s3", "minio":
		return src.Backend + "://" + src.Bucket + "/" + src.Prefix + src.Path
	default:
		return src.Path
	}
}

// metricsServer serves /metrics for the lifetime of a command.
type metricsServer struct {
	srv       *http.Server
	addr      net.Addr
	collector *kdnnprom.Collector
}

func startMetrics(addr string, logger *kdnn.Logger) (*metricsServer, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mc, err := kdnnprom.NewCollector(reg)
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	ms := &metricsServer{
		srv: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		addr:      ln.Addr(),
		collector: mc,
	}

	go func() {
		if err := ms.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()

	logger.Info("serving metrics", "addr", ms.addr.String())

	return ms, nil
}

func (m *metricsServer) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return m.srv.Shutdown(ctx)
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/hupe1980/kdnn"
	"github.com/hupe1980/kdnn/config"
	"github.com/spf13/cobra"
)

// app carries the resolved configuration into the subcommands.
type app struct {
	cfgPath string
	cfg     config.Config
	flags   flagValues
	logger  *kdnn.Logger
	stderr  io.Writer
}

// flagValues mirrors the config keys that can be set on the command line.
type flagValues struct {
	source      string
	backend     string
	bucket      string
	prefix      string
	endpoint    string
	region      string
	compression string
	leafSize    int
	workers     int
	memoryLimit int64
	ioLimit     int64
	metricsAddr string
	logLevel    string
	logFormat   string
}

func newRootCmd() *cobra.Command {
	a := &app{stderr: os.Stderr}

	root := &cobra.Command{
		Use:   "kdnn",
		Short: "Query a labeled 2-D point cloud",
		Long: `kdnn loads points from a CSV file (x,y,label with a header row) and answers
k-nearest-neighbour and radius queries through a k-d tree.

Sources may be local files, S3 or MinIO objects, optionally gzip, zstd or
lz4 compressed. Settings come from --config and are overridden by flags.

Examples:
  kdnn info -s points.csv
  kdnn knn -s points.csv -k 5 12.5 40
  kdnn radius -s points.csv.zst -r 3 -- -1.5 2
  kdnn interactive -s points.csv --metrics-addr :9090`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgPath, "config", "c", "", "YAML configuration file")
	pf.StringVarP(&a.flags.source, "source", "s", "", "point file path or object name")
	pf.StringVar(&a.flags.backend, "backend", "local", "source backend (local, s3, minio)")
	pf.StringVar(&a.flags.bucket, "bucket", "", "bucket for s3 and minio sources")
	pf.StringVar(&a.flags.prefix, "prefix", "", "object key prefix")
	pf.StringVar(&a.flags.endpoint, "endpoint", "", "object store endpoint")
	pf.StringVar(&a.flags.region, "region", "", "S3 region")
	pf.StringVar(&a.flags.compression, "compression", "auto", "input compression (auto, none, gzip, zstd, lz4)")
	pf.IntVar(&a.flags.leafSize, "leaf-size", 8, "points per k-d tree leaf")
	pf.IntVar(&a.flags.workers, "workers", 0, "batch query workers (0 = GOMAXPROCS)")
	pf.Int64Var(&a.flags.memoryLimit, "memory-limit", 0, "memory budget in bytes (0 = unlimited)")
	pf.Int64Var(&a.flags.ioLimit, "io-limit", 0, "load throughput in bytes/sec (0 = unlimited)")
	pf.StringVar(&a.flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	pf.StringVar(&a.flags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&a.flags.logFormat, "log-format", "text", "log format (text, json)")

	root.AddCommand(
		newKNearestCmd(a),
		newRadiusCmd(a),
		newBatchCmd(a),
		newInfoCmd(a),
		newInteractiveCmd(a),
	)

	return root
}

// setup loads the config file, applies changed flags and validates the result.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	if a.cfgPath != "" {
		var err error
		if cfg, err = config.Load(a.cfgPath); err != nil {
			return err
		}
	}

	a.applyFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.stderr = cmd.ErrOrStderr()
	opts := &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}
	if cfg.Log.Format == "json" {
		a.logger = kdnn.NewLogger(slog.NewJSONHandler(a.stderr, opts))
	} else {
		a.logger = kdnn.NewLogger(slog.NewTextHandler(a.stderr, opts))
	}

	return nil
}

func (a *app) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	f := a.flags

	if changed("source") {
		cfg.Source.Path = f.source
	}
	if changed("backend") {
		cfg.Source.Backend = f.backend
	}
	if changed("bucket") {
		cfg.Source.Bucket = f.bucket
	}
	if changed("prefix") {
		cfg.Source.Prefix = f.prefix
	}
	if changed("endpoint") {
		cfg.Source.Endpoint = f.endpoint
	}
	if changed("region") {
		cfg.Source.Region = f.region
	}
	if changed("compression") {
		cfg.Source.Compression = f.compression
	}
	if changed("leaf-size") {
		cfg.Index.LeafSize = f.leafSize
	}
	if changed("workers") {
		cfg.Query.Workers = f.workers
	}
	if changed("memory-limit") {
		cfg.Resources.MemoryLimitBytes = f.memoryLimit
	}
	if changed("io-limit") {
		cfg.Resources.IOLimitBytesPerSec = f.ioLimit
	}
	if changed("metrics-addr") {
		cfg.Metrics.Addr = f.metricsAddr
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = f.logFormat
	}

	// Credentials stay out of flags and shell history.
	if v := os.Getenv("KDNN_ACCESS_KEY"); v != "" {
		cfg.Source.AccessKey = v
	}
	if v := os.Getenv("KDNN_SECRET_KEY"); v != "" {
		cfg.Source.SecretKey = v
	}
}

func parseCoord(xs, ys string) (kdnn.Coord, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return kdnn.Coord{}, fmt.Errorf("x: %w", err)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return kdnn.Coord{}, fmt.Errorf("y: %w", err)
	}
	return kdnn.Coord{X: x, Y: y}, nil
}

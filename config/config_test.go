package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "knn", cfg.Query.Mode)
	assert.Equal(t, 8, cfg.Query.K)
	assert.Equal(t, 12.0, cfg.Query.Radius)
	assert.Equal(t, "local", cfg.Source.Backend)

	// The only missing piece is the source path.
	cfg.Source.Path = "points.csv"
	require.NoError(t, cfg.Validate())
}

func TestParse(t *testing.T) {
	t.Run("Overlay", func(t *testing.T) {
		cfg, err := Parse([]byte(`
source:
  backend: s3
  bucket: points
  path: city.csv.zst
query:
  mode: radius
  radius: 3.5
metrics:
  addr: ":9090"
log:
  level: debug
  format: json
`))
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())

		assert.Equal(t, "s3", cfg.Source.Backend)
		assert.Equal(t, "radius", cfg.Query.Mode)
		assert.Equal(t, 3.5, cfg.Query.Radius)
		assert.Equal(t, 8, cfg.Query.K, "unset keys keep their default")
		assert.Equal(t, 8, cfg.Index.LeafSize)
		assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
	})

	t.Run("Empty", func(t *testing.T) {
		cfg, err := Parse(nil)
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		_, err := Parse([]byte("query:\n  neighbours: 3\n"))
		assert.Error(t, err)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := Parse([]byte("query: [\n"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Default()
		cfg.Source.Path = "points.csv"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		msg    string
	}{
		{"MissingPath", func(c *Config) { c.Source.Path = "" }, "source.path: field is required"},
		{"UnknownBackend", func(c *Config) { c.Source.Backend = "ftp" }, "source.backend"},
		{"S3WithoutBucket", func(c *Config) { c.Source.Backend = "s3" }, "source.bucket: field is required"},
		{"MinioWithoutEndpoint", func(c *Config) {
			c.Source.Backend = "minio"
			c.Source.Bucket = "b"
		}, "source.endpoint: field is required"},
		{"AccessKeyWithoutSecret", func(c *Config) { c.Source.AccessKey = "id" }, "source.secret_key: field is required"},
		{"BadCompression", func(c *Config) { c.Source.Compression = "brotli" }, "source.compression"},
		{"ZeroLeafSize", func(c *Config) { c.Index.LeafSize = 0 }, "index.leaf_size: must be at least 1"},
		{"NegativeK", func(c *Config) { c.Query.K = -1 }, "query.k: must be at least 0"},
		{"NegativeRadius", func(c *Config) { c.Query.Radius = -2 }, "query.radius: must be at least 0"},
		{"BadMode", func(c *Config) { c.Query.Mode = "both" }, "query.mode"},
		{"BadMetricsAddr", func(c *Config) { c.Metrics.Addr = "nowhere" }, "metrics.addr"},
		{"BadLogLevel", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	t.Run("ReportsAll", func(t *testing.T) {
		cfg := valid()
		cfg.Query.K = -1
		cfg.Query.Mode = "both"

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query.k")
		assert.Contains(t, err.Error(), "query.mode")
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kdnn.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source:\n  path: a.csv\nquery:\n  k: 3\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Query.K)
	assert.Equal(t, "a.csv", cfg.Source.Path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// Package config loads the YAML configuration of the kdnn command.
//
// Defaults reproduce the interactive tool's behaviour: k-nearest mode with
// k = 8 and a radius of 12. Command-line flags override file values; call
// Validate after applying them.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is matched by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Config is the root of the configuration file.
type Config struct {
	Source    SourceConfig   `yaml:"source"`
	Index     IndexConfig    `yaml:"index"`
	Query     QueryConfig    `yaml:"query"`
	Resources ResourceConfig `yaml:"resources"`
	Metrics   MetricsConfig  `yaml:"metrics"`
	Log       LogConfig      `yaml:"log"`
}

// SourceConfig locates the point file.
type SourceConfig struct {
	// Backend is one of local, s3 or minio.
	Backend string `yaml:"backend" validate:"oneof=local s3 minio"`
	// Path is a file path for local sources and an object name otherwise.
	Path      string `yaml:"path" validate:"required"`
	Bucket    string `yaml:"bucket" validate:"required_unless=Backend local"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint" validate:"required_if=Backend minio"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key" validate:"required_with=AccessKey"`
	Secure    bool   `yaml:"secure"`
	// Compression forces a format; empty or auto detects it.
	Compression string `yaml:"compression" validate:"omitempty,oneof=auto none gzip zstd lz4"`
}

// IndexConfig tunes the tree.
type IndexConfig struct {
	LeafSize int `yaml:"leaf_size" validate:"min=1"`
}

// QueryConfig holds the initial query state.
type QueryConfig struct {
	Mode      string  `yaml:"mode" validate:"oneof=knn radius"`
	K         int     `yaml:"k" validate:"min=0"`
	Radius    float64 `yaml:"radius" validate:"min=0"`
	CacheSize int     `yaml:"cache_size" validate:"min=0"`
	Workers   int     `yaml:"workers" validate:"min=0"`
}

// ResourceConfig bounds memory and load throughput. Zero means unlimited.
type ResourceConfig struct {
	MemoryLimitBytes   int64 `yaml:"memory_limit_bytes" validate:"min=0"`
	IOLimitBytesPerSec int64 `yaml:"io_limit_bytes_per_sec" validate:"min=0"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Source: SourceConfig{
			Backend:     "local",
			Compression: "auto",
		},
		Index: IndexConfig{
			LeafSize: 8,
		},
		Query: QueryConfig{
			Mode:      "knn",
			K:         8,
			Radius:    12,
			CacheSize: 256,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. It does not validate.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field and reports all failures.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	errs := []error{ErrInvalid}
	for _, e := range verrs {
		errs = append(errs, fieldError(e))
	}
	return errors.Join(errs...)
}

func fieldError(e validator.FieldError) error {
	_, field, _ := strings.Cut(e.Namespace(), ".")

	switch e.Tag() {
	case "required", "required_if", "required_unless", "required_with":
		return fmt.Errorf("%s: field is required", field)
	case "min":
		return fmt.Errorf("%s: must be at least %s", field, e.Param())
	case "oneof":
		return fmt.Errorf("%s: %q is not one of [%s]", field, e.Value(), e.Param())
	case "hostname_port":
		return fmt.Errorf("%s: %q is not a host:port address", field, e.Value())
	default:
		return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
	}
}

// SlogLevel maps Level to a slog level.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

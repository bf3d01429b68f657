package kdnn

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with kdnn-specific fields.
// The core types never log; sessions and the CLI do.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithK adds a k (neighbor count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithRadius adds a radius field to the logger.
func (l *Logger) WithRadius(r float64) *Logger {
	return &Logger{
		Logger: l.Logger.With("radius", r),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogLoad logs a point set load.
func (l *Logger) LogLoad(ctx context.Context, source string, points int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"source", source,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "points loaded",
			"source", source,
			"points", points,
			"duration", duration,
		)
	}
}

// LogBuild logs an index build.
func (l *Logger) LogBuild(ctx context.Context, points, depth int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index build failed",
			"points", points,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "index built",
			"points", points,
			"depth", depth,
			"duration", duration,
		)
	}
}

// LogQuery logs a neighbour query.
func (l *Logger) LogQuery(ctx context.Context, mode string, q Coord, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"mode", mode,
			"x", q.X,
			"y", q.Y,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query completed",
			"mode", mode,
			"x", q.X,
			"y", q.Y,
			"results", results,
		)
	}
}

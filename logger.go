package megamerge

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with megamerge-specific context.
// This provides structured logging with consistent field names.
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
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewJSONLoggerTo(os.Stderr, level)
}

// NewJSONLoggerTo is NewJSONLogger writing to w.
func NewJSONLoggerTo(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewTextLoggerTo(os.Stderr, level)
}

// NewTextLoggerTo is NewTextLogger writing to w.
func NewTextLoggerTo(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithSegment adds a segment index field to the logger.
func (l *Logger) WithSegment(segment int) *Logger {
	return &Logger{
		Logger: l.Logger.With("segment", segment),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogConstruct logs scanner construction.
func (l *Logger) LogConstruct(ctx context.Context, segments, data int, threshold float64, workers int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "scanner construction failed",
			"segments", segments,
			"data", data,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "scanner constructed",
			"segments", segments,
			"data", data,
			"threshold", threshold,
			"workers", workers,
		)
	}
}

// LogAdvance logs one scanned segmentation interval.
func (l *Logger) LogAdvance(ctx context.Context, segment, matched int, duration time.Duration) {
	l.DebugContext(ctx, "segment scanned",
		"segment", segment,
		"matched", matched,
		"duration", duration,
	)
}

// LogExhausted logs the first exhaustion of a scanner.
func (l *Logger) LogExhausted(ctx context.Context, batches int) {
	l.DebugContext(ctx, "scanner exhausted",
		"batches", batches,
	)
}

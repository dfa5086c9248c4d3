package megamerge

import (
	"log/slog"
)

type options struct {
	workers          int
	chunkSize        int
	sequential       bool
	memoryLimit      int64
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Scanner construction.
type Option func(*options)

// WithWorkers sets the number of goroutines in the scan pool.
//
// If workers <= 0, runtime.GOMAXPROCS(0) is used. workers == 1 disables the
// pool and scans on the calling goroutine.
func WithWorkers(workers int) Option {
	return func(o *options) {
		o.workers = workers
		o.sequential = workers == 1
	}
}

// WithChunkSize sets how many data intervals one task scans.
//
// Smaller chunks balance load better on skewed hardware, larger chunks reduce
// scheduling overhead. If chunkSize <= 0, a default of 16384 is used.
func WithChunkSize(chunkSize int) Option {
	return func(o *options) {
		o.chunkSize = chunkSize
	}
}

// WithMemoryLimit caps the bytes the scanner may hold for its own copies of
// the segmentation and data sets. Construction fails with
// ErrMemoryLimitExceeded if the copies would not fit. Zero means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &megamerge.BasicMetricsCollector{}
//	sc, _ := megamerge.New(seg, data, 0, megamerge.WithMetricsCollector(metrics))
//	// ... iterate ...
//	stats := metrics.GetStats()
//	fmt.Printf("Batches: %d, Matched: %d\n", stats.AdvanceCount, stats.MatchedPairs)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := megamerge.NewJSONLogger(slog.LevelDebug)
//	sc, _ := megamerge.New(seg, data, 0, megamerge.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}

package megamerge

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting scan metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    advanceHistogram prometheus.Histogram
//	    matchedCounter   prometheus.Counter
//	}
//
//	func (p *PrometheusCollector) RecordAdvance(segment, scanned, matched int, d time.Duration) {
//	    p.advanceHistogram.Observe(d.Seconds())
//	    p.matchedCounter.Add(float64(matched))
//	}
type MetricsCollector interface {
	// RecordAdvance is called after each segmentation interval is scanned.
	// scanned is the data set size, matched the batch size.
	RecordAdvance(segment, scanned, matched int, duration time.Duration)

	// RecordExhausted is called each time Next reports exhaustion.
	RecordExhausted()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAdvance(int, int, int, time.Duration) {}
func (NoopMetricsCollector) RecordExhausted()                           {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AdvanceCount      atomic.Int64
	AdvanceTotalNanos atomic.Int64
	ScannedPairs      atomic.Int64
	MatchedPairs      atomic.Int64
	EmptyBatches      atomic.Int64
	ExhaustedCalls    atomic.Int64
}

// RecordAdvance implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdvance(_, scanned, matched int, duration time.Duration) {
	b.AdvanceCount.Add(1)
	b.AdvanceTotalNanos.Add(duration.Nanoseconds())
	b.ScannedPairs.Add(int64(scanned))
	b.MatchedPairs.Add(int64(matched))
	if matched == 0 {
		b.EmptyBatches.Add(1)
	}
}

// RecordExhausted implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExhausted() {
	b.ExhaustedCalls.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AdvanceCount:    b.AdvanceCount.Load(),
		AdvanceAvgNanos: b.getAvgAdvanceNanos(),
		ScannedPairs:    b.ScannedPairs.Load(),
		MatchedPairs:    b.MatchedPairs.Load(),
		EmptyBatches:    b.EmptyBatches.Load(),
		ExhaustedCalls:  b.ExhaustedCalls.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgAdvanceNanos() int64 {
	count := b.AdvanceCount.Load()
	if count == 0 {
		return 0
	}
	return b.AdvanceTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AdvanceCount    int64
	AdvanceAvgNanos int64
	ScannedPairs    int64
	MatchedPairs    int64
	EmptyBatches    int64
	ExhaustedCalls  int64
}

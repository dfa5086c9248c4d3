package megamerge

import (
	"context"
	"iter"
	"time"

	"github.com/hupe1980/megamerge/internal/kernel"
	"github.com/hupe1980/megamerge/internal/resource"
	"github.com/hupe1980/megamerge/internal/workerpool"
	"github.com/hupe1980/megamerge/matrix"
	"github.com/hupe1980/megamerge/model"
)

// intervalBytes is the in-memory size of one model.Interval.
const intervalBytes = 16

// Scanner walks the segmentation intervals in order and scans the data set
// against each of them.
//
// The segmentation and data sets are private copies made at construction and
// never change afterwards. The cursor is the only mutable state; it is not
// synchronized, so a Scanner must not be advanced from several goroutines at
// once.
type Scanner struct {
	segmentation []model.Interval
	data         []model.Interval
	threshold    float64
	cursor       int

	kernel   *kernel.Kernel
	pool     *workerpool.Pool
	rc       *resource.Controller
	reserved int64

	logger          *Logger
	metrics         MetricsCollector
	exhaustedLogged bool
}

// New creates a Scanner from two n x 2 matrices. Row i of each matrix is the
// interval (from_i, to_i).
//
// Both matrices are copied. A matrix with rows but not exactly two columns is
// rejected with *ErrInvalidMatrix.
func New(segmentation, data *matrix.Dense, threshold float64, optFns ...Option) (*Scanner, error) {
	if segmentation == nil || data == nil {
		return nil, ErrNilMatrix
	}

	o := applyOptions(optFns)

	segRows, _ := segmentation.Dims()
	dataRows, _ := data.Dims()

	rc, reserved, err := reserve(o, segRows+dataRows)
	if err != nil {
		err = translateError("scanner", err)
		o.logger.LogConstruct(context.Background(), segRows, dataRows, threshold, o.workers, err)
		return nil, err
	}

	segs, err := segmentation.Intervals()
	if err != nil {
		rc.ReleaseMemory(reserved)
		err = translateError("segmentation", err)
		o.logger.LogConstruct(context.Background(), segRows, dataRows, threshold, o.workers, err)
		return nil, err
	}

	ds, err := data.Intervals()
	if err != nil {
		rc.ReleaseMemory(reserved)
		err = translateError("data", err)
		o.logger.LogConstruct(context.Background(), segRows, dataRows, threshold, o.workers, err)
		return nil, err
	}

	return newScanner(segs, ds, threshold, o, rc, reserved), nil
}

// NewFromIntervals creates a Scanner from interval slices. Both slices are
// copied.
func NewFromIntervals(segmentation, data []model.Interval, threshold float64, optFns ...Option) (*Scanner, error) {
	o := applyOptions(optFns)

	rc, reserved, err := reserve(o, len(segmentation)+len(data))
	if err != nil {
		err = translateError("scanner", err)
		o.logger.LogConstruct(context.Background(), len(segmentation), len(data), threshold, o.workers, err)
		return nil, err
	}

	return newScanner(model.CloneIntervals(segmentation), model.CloneIntervals(data), threshold, o, rc, reserved), nil
}

func reserve(o options, intervals int) (*resource.Controller, int64, error) {
	if o.memoryLimit <= 0 {
		return nil, 0, nil
	}
	rc := resource.NewController(resource.Config{MemoryLimitBytes: o.memoryLimit})
	bytes := int64(intervals) * intervalBytes
	if err := rc.AcquireMemory(bytes); err != nil {
		return nil, 0, err
	}
	return rc, bytes, nil
}

func newScanner(segs, data []model.Interval, threshold float64, o options, rc *resource.Controller, reserved int64) *Scanner {
	var pool *workerpool.Pool
	if !o.sequential {
		pool = workerpool.New(o.workers)
	}

	s := &Scanner{
		segmentation: segs,
		data:         data,
		threshold:    threshold,
		kernel:       kernel.New(pool, o.chunkSize),
		pool:         pool,
		rc:           rc,
		reserved:     reserved,
		logger:       o.logger,
		metrics:      o.metricsCollector,
	}

	workers := 1
	if pool != nil {
		workers = pool.Workers()
	}
	s.logger.LogConstruct(context.Background(), len(segs), len(data), threshold, workers, nil)

	return s
}

// Next scans the data set against the segmentation interval at the cursor and
// advances the cursor.
//
// ok is false once every segmentation interval has been scanned; the returned
// Batch is then the zero value. A batch without matches is returned as an
// empty, non-nil Results slice with ok == true.
func (s *Scanner) Next() (batch model.Batch, ok bool) {
	n := len(s.segmentation)
	if s.cursor > n {
		panic("megamerge: cursor out of range")
	}
	if s.cursor == n {
		s.metrics.RecordExhausted()
		if !s.exhaustedLogged {
			s.exhaustedLogged = true
			s.logger.LogExhausted(context.Background(), n)
		}
		return model.Batch{}, false
	}

	idx := s.cursor
	seg := s.segmentation[idx]
	s.cursor++

	start := time.Now()
	results := s.kernel.Scan(seg, s.data, s.threshold)
	elapsed := time.Since(start)

	s.metrics.RecordAdvance(idx, len(s.data), len(results), elapsed)
	s.logger.LogAdvance(context.Background(), idx, len(results), elapsed)

	return model.Batch{Segment: idx, Interval: seg, Results: results}, true
}

// All returns an iterator over the remaining batches, keyed by segment index.
// Stopping the loop early leaves the rest of the segmentation unscanned.
func (s *Scanner) All() iter.Seq2[int, model.Batch] {
	return func(yield func(int, model.Batch) bool) {
		for {
			batch, ok := s.Next()
			if !ok || !yield(batch.Segment, batch) {
				return
			}
		}
	}
}

// Cursor returns the index of the next segmentation interval to scan.
func (s *Scanner) Cursor() int {
	return s.cursor
}

// Len returns the number of segmentation intervals.
func (s *Scanner) Len() int {
	return len(s.segmentation)
}

// Remaining returns the number of batches Next will still produce.
func (s *Scanner) Remaining() int {
	return len(s.segmentation) - s.cursor
}

// Exhausted reports whether every segmentation interval has been scanned.
func (s *Scanner) Exhausted() bool {
	return s.cursor == len(s.segmentation)
}

// Threshold returns the proximity threshold.
func (s *Scanner) Threshold() float64 {
	return s.threshold
}

// Segmentation returns a copy of the segmentation set.
func (s *Scanner) Segmentation() []model.Interval {
	return model.CloneIntervals(s.segmentation)
}

// Data returns a copy of the data set.
func (s *Scanner) Data() []model.Interval {
	return model.CloneIntervals(s.data)
}

// DataLen returns the number of data intervals.
func (s *Scanner) DataLen() int {
	return len(s.data)
}

// Footprint returns the bytes reserved against the memory limit, or 0 when
// no limit is configured.
func (s *Scanner) Footprint() int64 {
	return s.reserved
}

// Close stops the worker pool and releases the memory reservation. It is
// idempotent. A closed Scanner keeps working but scans on the calling
// goroutine.
func (s *Scanner) Close() error {
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
		s.kernel = kernel.New(nil, s.kernel.ChunkSize())
	}
	if s.reserved > 0 {
		s.rc.ReleaseMemory(s.reserved)
		s.reserved = 0
	}
	return nil
}

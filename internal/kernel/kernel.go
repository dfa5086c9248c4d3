// Package kernel implements the overlap scan of one segmentation interval
// against a full data set.
//
// The data set is split into contiguous chunks that are filtered in parallel
// on a worker pool. Chunk results are concatenated in chunk order, so the
// output is always sorted by ascending data index regardless of which worker
// finishes first.
package kernel

import (
	"sync"

	"github.com/hupe1980/megamerge/internal/workerpool"
	"github.com/hupe1980/megamerge/model"
)

// DefaultChunkSize is the number of data intervals scanned per task.
const DefaultChunkSize = 16384

// Kernel scans data sets against single segmentation intervals.
// A Kernel holds no per-scan state and may be shared.
type Kernel struct {
	pool      *workerpool.Pool
	chunkSize int
}

// New creates a Kernel. A nil pool scans sequentially on the calling
// goroutine. chunkSize <= 0 selects DefaultChunkSize.
func New(pool *workerpool.Pool, chunkSize int) *Kernel {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Kernel{pool: pool, chunkSize: chunkSize}
}

// ChunkSize returns the configured chunk size.
func (k *Kernel) ChunkSize() int {
	return k.chunkSize
}

// Scan returns every data interval whose overlap with segment is strictly
// greater than threshold, ordered by data index.
//
// The returned slice is never nil. Scan blocks until all chunks are done.
func (k *Kernel) Scan(segment model.Interval, data []model.Interval, threshold float64) []model.Result {
	numChunks := (len(data) + k.chunkSize - 1) / k.chunkSize
	if k.pool == nil || numChunks <= 1 {
		return scanRange(segment, data, 0, threshold, make([]model.Result, 0))
	}

	parts := make([][]model.Result, numChunks)

	var wg sync.WaitGroup
	wg.Add(numChunks)
	for c := range numChunks {
		lo := c * k.chunkSize
		hi := min(lo+k.chunkSize, len(data))
		task := func() {
			defer wg.Done()
			parts[c] = scanRange(segment, data[lo:hi], lo, threshold, nil)
		}
		if err := k.pool.Submit(task); err != nil {
			// Pool is closed: run the chunk inline.
			task()
		}
	}
	wg.Wait()

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	out := make([]model.Result, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// scanRange filters data (whose first element has index base) into dst.
func scanRange(segment model.Interval, data []model.Interval, base int, threshold float64, dst []model.Result) []model.Result {
	for i, d := range data {
		overlap := d.Overlap(segment)
		if overlap > threshold {
			dst = append(dst, model.NewResult(base+i, overlap, d, segment))
		}
	}
	return dst
}

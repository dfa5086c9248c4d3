package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/megamerge/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Intervals returns n intervals starting uniformly in [lo, hi) with lengths
// uniform in [0, maxLen).
func (r *RNG) Intervals(n int, lo, hi, maxLen float64) []model.Interval {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Interval, n)
	for i := range out {
		from := lo + r.rand.Float64()*(hi-lo)
		out[i] = model.Interval{From: from, To: from + r.rand.Float64()*maxLen}
	}
	return out
}

// Tiling splits [lo, hi) into n contiguous intervals with random cut points.
func (r *RNG) Tiling(n int, lo, hi float64) []model.Interval {
	if n <= 0 {
		return []model.Interval{}
	}

	r.mu.Lock()
	cuts := make([]float64, n-1)
	for i := range cuts {
		cuts[i] = lo + r.rand.Float64()*(hi-lo)
	}
	r.mu.Unlock()

	sortFloats(cuts)

	out := make([]model.Interval, n)
	prev := lo
	for i, c := range cuts {
		out[i] = model.Interval{From: prev, To: c}
		prev = c
	}
	out[n-1] = model.Interval{From: prev, To: hi}
	return out
}

func sortFloats(a []float64) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j] < a[j-1]; j-- {
			a[j], a[j-1] = a[j-1], a[j]
		}
	}
}

// BruteForce computes the expected batch for every segmentation interval
// with a plain nested loop.
func BruteForce(segmentation, data []model.Interval, threshold float64) []model.Batch {
	out := make([]model.Batch, len(segmentation))
	for s, seg := range segmentation {
		results := []model.Result{}
		for i, d := range data {
			overlap := min(d.To, seg.To) - max(d.From, seg.From)
			if overlap > threshold {
				results = append(results, model.Result{
					DataIndex:         i,
					Overlap:           overlap,
					OverDataLength:    overlap / (d.To - d.From),
					OverSegmentLength: overlap / (seg.To - seg.From),
				})
			}
		}
		out[s] = model.Batch{Segment: s, Interval: seg, Results: results}
	}
	return out
}

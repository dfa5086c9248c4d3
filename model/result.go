package model

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// Result describes one data interval that overlaps a segmentation interval by
// more than the proximity threshold.
type Result struct {
	// DataIndex is the position of the data interval in the Data Set.
	DataIndex int
	// Overlap is the signed intersection length.
	Overlap float64
	// OverDataLength is Overlap divided by the data interval's length.
	OverDataLength float64
	// OverSegmentLength is Overlap divided by the segmentation interval's length.
	OverSegmentLength float64
}

// NewResult computes the derived ratios for a data interval at index that
// overlaps segment by overlap.
func NewResult(index int, overlap float64, data, segment Interval) Result {
	return Result{
		DataIndex:         index,
		Overlap:           overlap,
		OverDataLength:    overlap / data.Length(),
		OverSegmentLength: overlap / segment.Length(),
	}
}

// Batch holds the results for a single segmentation interval.
type Batch struct {
	// Segment is the index of the segmentation interval.
	Segment int
	// Interval is the segmentation interval itself.
	Interval Interval
	// Results are ordered by ascending DataIndex.
	Results []Result
}

// Len returns the number of results in the batch.
func (b Batch) Len() int {
	return len(b.Results)
}

// Columns is the position-aligned, columnar form of a Batch.
type Columns struct {
	Indices           []int     `json:"indices"`
	Overlaps          []float64 `json:"overlaps"`
	OverDataLength    []float64 `json:"overlap_over_data_length"`
	OverSegmentLength []float64 `json:"overlap_over_segment_length"`
}

// Len returns the number of rows.
func (c Columns) Len() int {
	return len(c.Indices)
}

// Columns flattens the batch into four aligned vectors.
func (b Batch) Columns() Columns {
	n := len(b.Results)
	c := Columns{
		Indices:           make([]int, n),
		Overlaps:          make([]float64, n),
		OverDataLength:    make([]float64, n),
		OverSegmentLength: make([]float64, n),
	}
	for i, r := range b.Results {
		c.Indices[i] = r.DataIndex
		c.Overlaps[i] = r.Overlap
		c.OverDataLength[i] = r.OverDataLength
		c.OverSegmentLength[i] = r.OverSegmentLength
	}
	return c
}

// Results rebuilds the row form from columns. Columns of unequal length are
// truncated to the shortest one.
func (c Columns) Results() []Result {
	n := min(len(c.Indices), len(c.Overlaps), len(c.OverDataLength), len(c.OverSegmentLength))
	out := make([]Result, n)
	for i := range n {
		out[i] = Result{
			DataIndex:         c.Indices[i],
			Overlap:           c.Overlaps[i],
			OverDataLength:    c.OverDataLength[i],
			OverSegmentLength: c.OverSegmentLength[i],
		}
	}
	return out
}

// IndexSet returns the data indices of the batch as a bitmap.
func (b Batch) IndexSet() *roaring64.Bitmap {
	rb := roaring64.New()
	for _, r := range b.Results {
		rb.Add(uint64(r.DataIndex))
	}
	return rb
}

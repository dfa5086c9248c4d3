// Package model defines the core types shared by the scanner, the kernel and
// the boundary layers.
//
// # Interval Types
//
//   - Interval: a (From, To) pair of float64 bounds
//   - Result: one data interval that overlaps a segment beyond the threshold
//   - Batch: all results for one segmentation interval
//
// # Result Emission
//
// A Batch can be flattened into Columns, four position-aligned vectors:
//
//	cols := batch.Columns()
//	for i, idx := range cols.Indices {
//	    fmt.Println(idx, cols.Overlaps[i])
//	}
package model

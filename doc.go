// Package megamerge matches a small set of segmentation intervals against a
// potentially large set of data intervals.
//
// For every segmentation interval, in order, a Scanner reports the data
// intervals whose overlap with it is strictly greater than a proximity
// threshold, together with the overlap expressed as a fraction of each
// interval's own length.
//
// # Quick Start
//
//	seg, _ := matrix.FromRows([][]float64{{0, 10}})
//	data, _ := matrix.FromRows([][]float64{{5, 15}, {20, 30}})
//
//	sc, _ := megamerge.New(seg, data, 0.0)
//	defer sc.Close()
//
//	for {
//	    batch, ok := sc.Next()
//	    if !ok {
//	        break // exhausted
//	    }
//	    cols := batch.Columns()
//	    fmt.Println(cols.Indices, cols.Overlaps)
//	}
//
// Or with a range-over-func loop:
//
//	for i, batch := range sc.All() {
//	    fmt.Println(i, batch.Len())
//	}
//
// # Scanning Model
//
// Each call to Next scans the whole data set against one segmentation
// interval. The scan is split into chunks that run on a worker pool, and Next
// returns once every chunk is done. Results within a batch are always ordered
// by ascending data index.
//
// A Scanner is a single-pass, forward-only sequence. It is not safe for
// concurrent use: calls to Next must be serialized by the caller.
//
// # Input Validation
//
// Only the matrix shape is checked (two columns). Interval bounds are not
// validated: reversed intervals produce negative lengths and are carried
// through every computation, and a negative threshold reports near misses.
package megamerge

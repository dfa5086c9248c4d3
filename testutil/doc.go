// Package testutil provides testing utilities for megamerge.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random interval sets and for computing
// exact overlap results with a straightforward nested loop.
//
// # Random Interval Generation
//
//	rng := testutil.NewRNG(seed)
//	data := rng.Intervals(10000, 0, 1e6, 500)     // span [0, 1e6), max length 500
//	segs := rng.Tiling(16, 0, 1e6)                 // contiguous segmentation
//
// # Ground Truth
//
//	batches := testutil.BruteForce(segs, data, threshold)
package testutil

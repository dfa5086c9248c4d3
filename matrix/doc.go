// Package matrix ingests dense numeric matrices and converts them into the
// interval sets owned by a scanner.
//
// A matrix used as a Segmentation Set or Data Set must have exactly two
// columns: row i is (from_i, to_i). Conversion always copies; the returned
// intervals never alias the matrix storage.
//
// Readers are provided for CSV/TSV text and for NumPy .npy files.
package matrix

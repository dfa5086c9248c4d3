package matrix

import (
	"errors"
	"fmt"

	"github.com/hupe1980/megamerge/model"
)

var (
	// ErrDataLength is returned when the backing slice does not hold rows*cols values.
	ErrDataLength = errors.New("matrix: data length does not match dimensions")

	// ErrRaggedRows is returned when input rows have different lengths.
	ErrRaggedRows = errors.New("matrix: rows have different lengths")

	// ErrNegativeDims is returned for negative row or column counts.
	ErrNegativeDims = errors.New("matrix: negative dimensions")
)

// ShapeError indicates that a matrix cannot be read as a set of intervals.
type ShapeError struct {
	Rows int
	Cols int
	Want int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("matrix: %dx%d matrix has %d columns, want %d", e.Rows, e.Cols, e.Cols, e.Want)
}

// Dense is a row-major matrix of float64 values.
type Dense struct {
	rows int
	cols int
	data []float64
}

// NewDense creates a rows x cols matrix backed by data.
// data is used as-is; it must hold exactly rows*cols values.
func NewDense(rows, cols int, data []float64) (*Dense, error) {
	if rows < 0 || cols < 0 {
		return nil, ErrNegativeDims
	}
	if data == nil {
		data = make([]float64, rows*cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %dx%d needs %d values, got %d", ErrDataLength, rows, cols, rows*cols, len(data))
	}
	return &Dense{rows: rows, cols: cols, data: data}, nil
}

// FromRows builds a matrix by copying rows. All rows must have the same length.
func FromRows(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 {
		return &Dense{}, nil
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("%w: row %d has %d values, row 0 has %d", ErrRaggedRows, i, len(r), cols)
		}
		data = append(data, r...)
	}
	return &Dense{rows: len(rows), cols: cols, data: data}, nil
}

// FromIntervals builds an n x 2 matrix from intervals.
func FromIntervals(intervals []model.Interval) *Dense {
	data := make([]float64, 0, 2*len(intervals))
	for _, iv := range intervals {
		data = append(data, iv.From, iv.To)
	}
	return &Dense{rows: len(intervals), cols: 2, data: data}
}

// Dims returns the number of rows and columns.
func (m *Dense) Dims() (rows, cols int) {
	return m.rows, m.cols
}

// At returns the value at row i, column j.
func (m *Dense) At(i, j int) float64 {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("matrix: index (%d,%d) out of range %dx%d", i, j, m.rows, m.cols))
	}
	return m.data[i*m.cols+j]
}

// Row returns a copy of row i.
func (m *Dense) Row(i int) []float64 {
	out := make([]float64, m.cols)
	copy(out, m.data[i*m.cols:(i+1)*m.cols])
	return out
}

// RawData returns the backing row-major slice.
func (m *Dense) RawData() []float64 {
	return m.data
}

// Intervals copies the matrix into an interval slice.
//
// A matrix without rows is a valid empty set regardless of its column count.
// Otherwise the matrix must have exactly two columns.
func (m *Dense) Intervals() ([]model.Interval, error) {
	if m == nil || m.rows == 0 {
		return []model.Interval{}, nil
	}
	if m.cols != 2 {
		return nil, &ShapeError{Rows: m.rows, Cols: m.cols, Want: 2}
	}
	out := make([]model.Interval, m.rows)
	for i := range out {
		out[i] = model.Interval{From: m.data[2*i], To: m.data[2*i+1]}
	}
	return out, nil
}

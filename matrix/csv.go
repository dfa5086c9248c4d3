package matrix

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSVOptions configures ReadCSV.
type CSVOptions struct {
	// Comma is the field delimiter. Defaults to ','.
	Comma rune
	// Header forces the first record to be skipped. When false, a first
	// record that does not parse as numbers is still treated as a header.
	Header bool
}

// ReadCSV reads a delimited text matrix. Lines starting with '#' are ignored.
func ReadCSV(r io.Reader, optFns ...func(o *CSVOptions)) (*Dense, error) {
	opts := CSVOptions{Comma: ','}
	for _, fn := range optFns {
		fn(&opts)
	}

	cr := csv.NewReader(r)
	cr.Comma = opts.Comma
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var (
		data []float64
		rows int
		cols = -1
		line = 0
	)

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("matrix: read csv: %w", err)
		}
		line++

		if line == 1 && opts.Header {
			continue
		}

		values, perr := parseRecord(rec)
		if perr != nil {
			if line == 1 {
				// Non-numeric first record is a header.
				continue
			}
			return nil, fmt.Errorf("matrix: record %d: %w", line, perr)
		}

		if cols == -1 {
			cols = len(values)
		} else if len(values) != cols {
			return nil, fmt.Errorf("%w: record %d has %d values, want %d", ErrRaggedRows, line, len(values), cols)
		}
		data = append(data, values...)
		rows++
	}

	if cols == -1 {
		cols = 0
	}
	return NewDense(rows, cols, data)
}

func parseRecord(rec []string) ([]float64, error) {
	out := make([]float64, len(rec))
	for i, field := range rec {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// WriteCSV writes m as delimited text using comma as the separator.
func WriteCSV(w io.Writer, m *Dense, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	rec := make([]string, m.cols)
	for i := range m.rows {
		for j := range m.cols {
			rec[j] = strconv.FormatFloat(m.data[i*m.cols+j], 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

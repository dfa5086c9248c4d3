package matrix

import (
	"bytes"
	"io"
	"path"
	"strings"
)

// Decode reads a matrix, choosing the format from the name's extension:
// ".npy" is NumPy, ".tsv" and ".tab" are tab separated, anything else is CSV.
func Decode(name string, r io.Reader) (*Dense, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".npy":
		return ReadNPY(r)
	case ".tsv", ".tab":
		return ReadCSV(r, func(o *CSVOptions) { o.Comma = '\t' })
	default:
		return ReadCSV(r)
	}
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(name string, data []byte) (*Dense, error) {
	return Decode(name, bytes.NewReader(data))
}

package matrix

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidNPY is returned for malformed or unsupported .npy input.
var ErrInvalidNPY = errors.New("matrix: invalid npy data")

var npyMagic = []byte("\x93NUMPY")

type npyHeader struct {
	descr   string
	fortran bool
	shape   []int
}

// ReadNPY reads a two-dimensional NumPy array.
//
// Supported dtypes are little-endian float64, float32, int64 and int32 in
// either C or Fortran order. Values are converted to float64.
func ReadNPY(r io.Reader) (*Dense, error) {
	br := bufio.NewReader(r)

	prefix := make([]byte, 8)
	if _, err := io.ReadFull(br, prefix); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidNPY, err)
	}
	if !bytes.Equal(prefix[:6], npyMagic) {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidNPY)
	}

	var headerLen int
	switch prefix[6] {
	case 1:
		var n uint16
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidNPY, err)
		}
		headerLen = int(n)
	case 2, 3:
		var n uint32
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidNPY, err)
		}
		headerLen = int(n)
	default:
		return nil, fmt.Errorf("%w: unsupported version %d.%d", ErrInvalidNPY, prefix[6], prefix[7])
	}

	raw := make([]byte, headerLen)
	if _, err := io.ReadFull(br, raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidNPY, err)
	}
	hdr, err := parseNPYHeader(string(raw))
	if err != nil {
		return nil, err
	}

	var rows, cols int
	switch len(hdr.shape) {
	case 1:
		if hdr.shape[0] != 0 {
			return nil, fmt.Errorf("%w: one-dimensional array of length %d", ErrInvalidNPY, hdr.shape[0])
		}
	case 2:
		rows, cols = hdr.shape[0], hdr.shape[1]
	default:
		return nil, fmt.Errorf("%w: %d-dimensional array", ErrInvalidNPY, len(hdr.shape))
	}

	n := rows * cols
	values := make([]float64, n)
	if err := readNPYValues(br, hdr.descr, values); err != nil {
		return nil, err
	}

	if hdr.fortran && n > 0 {
		rowMajor := make([]float64, n)
		for j := range cols {
			for i := range rows {
				rowMajor[i*cols+j] = values[j*rows+i]
			}
		}
		values = rowMajor
	}

	return NewDense(rows, cols, values)
}

func readNPYValues(r io.Reader, descr string, dst []float64) error {
	var size int
	switch descr {
	case "<f8", "<i8":
		size = 8
	case "<f4", "<i4":
		size = 4
	default:
		return fmt.Errorf("%w: unsupported dtype %q", ErrInvalidNPY, descr)
	}

	buf := make([]byte, len(dst)*size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("%w: short data: %w", ErrInvalidNPY, err)
	}

	for i := range dst {
		b := buf[i*size:]
		switch descr {
		case "<f8":
			dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(b))
		case "<i8":
			dst[i] = float64(int64(binary.LittleEndian.Uint64(b)))
		case "<f4":
			dst[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		case "<i4":
			dst[i] = float64(int32(binary.LittleEndian.Uint32(b)))
		}
	}
	return nil
}

// parseNPYHeader parses the Python dict literal of an npy header, e.g.
// {'descr': '<f8', 'fortran_order': False, 'shape': (3, 2), }
func parseNPYHeader(s string) (npyHeader, error) {
	var h npyHeader

	descr, ok := npyField(s, "descr")
	if !ok {
		return h, fmt.Errorf("%w: missing descr", ErrInvalidNPY)
	}
	h.descr = strings.Trim(descr, "'\"")
	// '=' is native byte order, treated as little-endian.
	h.descr = strings.Replace(h.descr, "=", "<", 1)

	fortran, ok := npyField(s, "fortran_order")
	if !ok {
		return h, fmt.Errorf("%w: missing fortran_order", ErrInvalidNPY)
	}
	h.fortran = strings.HasPrefix(fortran, "True")

	start := strings.Index(s, "'shape'")
	if start < 0 {
		return h, fmt.Errorf("%w: missing shape", ErrInvalidNPY)
	}
	open := strings.IndexByte(s[start:], '(')
	end := strings.IndexByte(s[start:], ')')
	if open < 0 || end < open {
		return h, fmt.Errorf("%w: malformed shape", ErrInvalidNPY)
	}
	for _, part := range strings.Split(s[start+open+1:start+end], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dim, err := strconv.Atoi(part)
		if err != nil || dim < 0 {
			return h, fmt.Errorf("%w: malformed shape %q", ErrInvalidNPY, part)
		}
		h.shape = append(h.shape, dim)
	}
	return h, nil
}

func npyField(s, key string) (string, bool) {
	i := strings.Index(s, "'"+key+"'")
	if i < 0 {
		return "", false
	}
	rest := s[i+len(key)+2:]
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return "", false
	}
	rest = strings.TrimSpace(rest[colon+1:])
	if comma := strings.IndexByte(rest, ','); comma >= 0 {
		rest = rest[:comma]
	}
	return strings.TrimSpace(rest), true
}

// WriteNPY writes m as a version 1.0 .npy file with dtype '<f8'.
func WriteNPY(w io.Writer, m *Dense) error {
	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%d, %d), }", m.rows, m.cols)
	// Pad so that magic(6) + version(2) + length(2) + header + '\n' is a multiple of 64.
	total := 10 + len(header) + 1
	if pad := (64 - total%64) % 64; pad > 0 {
		header += strings.Repeat(" ", pad)
	}
	header += "\n"

	var buf bytes.Buffer
	buf.Grow(10 + len(header) + 8*len(m.data))
	buf.Write(npyMagic)
	buf.Write([]byte{1, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)

	var scratch [8]byte
	for _, v := range m.data {
		binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(v))
		buf.Write(scratch[:])
	}

	_, err := w.Write(buf.Bytes())
	return err
}

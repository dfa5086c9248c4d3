package matrix

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	in := "# segments\nfrom,to\n0,10\n 5, 15\n"
	m, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, []float64{0, 10, 5, 15}, m.RawData())
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("0,1\n2,3,4\n"))
	assert.ErrorIs(t, err, ErrRaggedRows)

	_, err = ReadCSV(strings.NewReader("0,1\nx,3\n"))
	assert.Error(t, err)
}

func TestReadCSV_ForcedHeaderAndTabs(t *testing.T) {
	in := "1\t2\n3\t4\n"
	m, err := ReadCSV(strings.NewReader(in), func(o *CSVOptions) {
		o.Comma = '\t'
		o.Header = true
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, m.RawData())
}

func TestReadCSV_Empty(t *testing.T) {
	m, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	ivs, err := m.Intervals()
	require.NoError(t, err)
	assert.Empty(t, ivs)
}

func TestWriteCSV(t *testing.T) {
	m, err := FromRows([][]float64{{0, 2.5}, {-1, 1e9}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, m, ','))
	assert.Equal(t, "0,2.5\n-1,1e+09\n", buf.String())

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.RawData(), back.RawData())
}

func TestNPY_RoundTrip(t *testing.T) {
	m, err := FromRows([][]float64{{0, 10}, {5, 15}, {20, 30}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteNPY(&buf, m))
	assert.Zero(t, (buf.Len()-3*2*8)%64, "header must be 64-byte aligned")

	back, err := ReadNPY(&buf)
	require.NoError(t, err)
	r, c := back.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, m.RawData(), back.RawData())
}

func buildNPY(t *testing.T, header string, payload []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(npyMagic)
	buf.Write([]byte{1, 0})
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(len(header))))
	buf.WriteString(header)
	buf.Write(payload)
	return buf.Bytes()
}

func TestReadNPY_FortranInt32(t *testing.T) {
	// Column-major [[1, 2], [3, 4]] stored as 1, 3, 2, 4.
	payload := make([]byte, 16)
	for i, v := range []int32{1, 3, 2, 4} {
		binary.LittleEndian.PutUint32(payload[i*4:], uint32(v))
	}
	raw := buildNPY(t, "{'descr': '<i4', 'fortran_order': True, 'shape': (2, 2), }\n", payload)

	m, err := ReadNPY(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, m.RawData())
}

func TestReadNPY_Float32(t *testing.T) {
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint32(payload, math.Float32bits(0.5))
	binary.LittleEndian.PutUint32(payload[4:], math.Float32bits(1.5))
	raw := buildNPY(t, "{'descr': '<f4', 'fortran_order': False, 'shape': (1, 2), }\n", payload)

	m, err := ReadNPY(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1.5}, m.RawData())
}

func TestReadNPY_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"bad magic", []byte("NOTNUMPYxxxxxxxx")},
		{"short", []byte("\x93NU")},
		{"dtype", buildNPY(t, "{'descr': '>f8', 'fortran_order': False, 'shape': (1, 2), }\n", make([]byte, 16))},
		{"3d", buildNPY(t, "{'descr': '<f8', 'fortran_order': False, 'shape': (1, 1, 2), }\n", make([]byte, 16))},
		{"truncated", buildNPY(t, "{'descr': '<f8', 'fortran_order': False, 'shape': (4, 2), }\n", make([]byte, 16))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadNPY(bytes.NewReader(tt.raw))
			assert.ErrorIs(t, err, ErrInvalidNPY)
		})
	}
}

func TestDecode(t *testing.T) {
	m, err := DecodeBytes("seg.tsv", []byte("0\t10\n"))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 10}, m.RawData())

	m, err = DecodeBytes("seg.csv", []byte("0,10\n"))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 10}, m.RawData())

	var buf bytes.Buffer
	require.NoError(t, WriteNPY(&buf, m))
	back, err := DecodeBytes("SEG.NPY", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, m.RawData(), back.RawData())
}

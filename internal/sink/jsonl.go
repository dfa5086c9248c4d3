package sink

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/hupe1980/megamerge/codec"
	"github.com/hupe1980/megamerge/model"
)

func init() {
	Register("jsonl", func(w io.Writer, opts Options) (Sink, error) {
		return NewJSONL(w, opts.Codec), nil
	})
}

// BatchLine is one line of the jsonl format. Results are aligned column
// vectors.
type BatchLine struct {
	Segment           int     `json:"segment"`
	From              Float   `json:"from"`
	To                Float   `json:"to"`
	Indices           []int   `json:"indices"`
	Overlaps          []Float `json:"overlaps"`
	OverDataLength    []Float `json:"overlap_over_data_length"`
	OverSegmentLength []Float `json:"overlap_over_segment_length"`
}

// Float is a float64 that encodes NaN and ±Inf as JSON null. Degenerate
// intervals produce such ratios. null decodes back to NaN.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	format := byte('f')
	if abs := math.Abs(v); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	return strconv.AppendFloat(nil, v, format, -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

func floats(vs []float64) []Float {
	out := make([]Float, len(vs))
	for i, v := range vs {
		out[i] = Float(v)
	}
	return out
}

// JSONL writes one JSON object per batch.
type JSONL struct {
	bw  *bufio.Writer
	c   codec.Codec
	app codec.Appender
	buf []byte
}

// NewJSONL creates a jsonl sink. A nil codec uses codec.Default.
func NewJSONL(w io.Writer, c codec.Codec) *JSONL {
	if c == nil {
		c = codec.Default
	}
	app, _ := c.(codec.Appender)
	return &JSONL{bw: bufio.NewWriterSize(w, 64<<10), c: c, app: app}
}

// WriteBatch implements Sink.
func (j *JSONL) WriteBatch(b model.Batch) error {
	cols := b.Columns()
	line := BatchLine{
		Segment:           b.Segment,
		From:              Float(b.Interval.From),
		To:                Float(b.Interval.To),
		Indices:           cols.Indices,
		Overlaps:          floats(cols.Overlaps),
		OverDataLength:    floats(cols.OverDataLength),
		OverSegmentLength: floats(cols.OverSegmentLength),
	}
	var (
		data []byte
		err  error
	)
	if j.app != nil {
		data, err = j.app.Append(j.buf[:0], line)
	} else {
		data, err = j.c.Marshal(line)
	}
	if err != nil {
		return fmt.Errorf("jsonl: segment %d: %w", b.Segment, err)
	}
	data = append(data, '\n')
	if j.app != nil {
		j.buf = data
	}
	_, err = j.bw.Write(data)
	return err
}

// Close implements Sink.
func (j *JSONL) Close() error {
	return j.bw.Flush()
}

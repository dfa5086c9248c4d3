package sink

import (
	"bufio"
	"io"
	"strconv"

	"github.com/hupe1980/megamerge/model"
)

// TSVHeader is the first line written by the tsv format.
const TSVHeader = "segment\tdata_index\toverlap\toverlap_over_data_length\toverlap_over_segment_length"

func init() {
	Register("tsv", func(w io.Writer, _ Options) (Sink, error) {
		return NewTSV(w), nil
	})
}

// TSV writes one row per result. Empty batches produce no rows.
type TSV struct {
	bw      *bufio.Writer
	started bool
	buf     []byte
}

// NewTSV creates a TSV sink.
func NewTSV(w io.Writer) *TSV {
	return &TSV{bw: bufio.NewWriterSize(w, 64<<10)}
}

func (t *TSV) header() error {
	if t.started {
		return nil
	}
	t.started = true
	_, err := t.bw.WriteString(TSVHeader + "\n")
	return err
}

// WriteBatch implements Sink.
func (t *TSV) WriteBatch(b model.Batch) error {
	if err := t.header(); err != nil {
		return err
	}
	for _, r := range b.Results {
		buf := t.buf[:0]
		buf = strconv.AppendInt(buf, int64(b.Segment), 10)
		buf = append(buf, '\t')
		buf = strconv.AppendInt(buf, int64(r.DataIndex), 10)
		buf = append(buf, '\t')
		buf = strconv.AppendFloat(buf, r.Overlap, 'g', -1, 64)
		buf = append(buf, '\t')
		buf = strconv.AppendFloat(buf, r.OverDataLength, 'g', -1, 64)
		buf = append(buf, '\t')
		buf = strconv.AppendFloat(buf, r.OverSegmentLength, 'g', -1, 64)
		buf = append(buf, '\n')
		t.buf = buf
		if _, err := t.bw.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// Close writes the header if nothing was written yet and flushes.
func (t *TSV) Close() error {
	if err := t.header(); err != nil {
		return err
	}
	return t.bw.Flush()
}

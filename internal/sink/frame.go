package sink

import (
	"bufio"
	"io"

	"github.com/hupe1980/megamerge/codec"
	"github.com/hupe1980/megamerge/model"
)

func init() {
	Register("frame", func(w io.Writer, opts Options) (Sink, error) {
		return NewFrame(w, opts.Compression), nil
	})
}

// Frame writes binary batch frames (see codec.EncodeBatch).
type Frame struct {
	bw *bufio.Writer
	fw *codec.FrameWriter
}

// NewFrame creates a frame sink.
func NewFrame(w io.Writer, c codec.Compression) *Frame {
	bw := bufio.NewWriterSize(w, 256<<10)
	return &Frame{bw: bw, fw: codec.NewFrameWriter(bw, c)}
}

// WriteBatch implements Sink.
func (f *Frame) WriteBatch(b model.Batch) error {
	return f.fw.WriteBatch(b)
}

// Close implements Sink.
func (f *Frame) Close() error {
	return f.bw.Flush()
}

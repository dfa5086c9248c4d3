package sink

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"syscall"

	"github.com/hupe1980/megamerge/codec"
	"github.com/hupe1980/megamerge/model"
)

// Sink consumes batches in segment order.
type Sink interface {
	WriteBatch(b model.Batch) error
	// Close flushes buffered output. It does not close the underlying writer.
	Close() error
}

// Options configures sink construction.
type Options struct {
	// Compression is used by the frame format.
	Compression codec.Compression
	// Codec is used by the jsonl format. Defaults to codec.Default.
	Codec codec.Codec
}

// Factory builds a Sink over w.
type Factory func(w io.Writer, opts Options) (Sink, error)

var registry = map[string]Factory{}

// Register adds a format. Last registration wins.
func Register(format string, f Factory) { registry[format] = f }

// New builds the sink registered for format.
func New(format string, w io.Writer, opts Options) (Sink, error) {
	f, ok := registry[format]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (have %v)", format, Formats())
	}
	return f(w, opts)
}

// Formats lists the registered formats, sorted.
func Formats() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Extension returns the file extension conventionally used for format.
func Extension(format string) string {
	switch format {
	case "tsv":
		return ".tsv"
	case "jsonl":
		return ".jsonl"
	case "frame":
		return ".mmrg"
	default:
		return ""
	}
}

// IsBrokenPipe reports whether an error is a broken pipe / closed pipe.
// Consumers like `head` close stdout early.
func IsBrokenPipe(err error) bool {
	return err != nil && (errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe))
}

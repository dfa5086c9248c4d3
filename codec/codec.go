// Package codec encodes scan results for the two output families.
//
// Text output goes through a Codec. GoJSON is the Default and encodes each
// JSONL line and the run manifest. JSON (encoding/json) is selectable by name
// for byte-compatible output with other Go tools.
//
// Binary output is a stream of frames, one per batch (EncodeBatch,
// FrameWriter, FrameReader). A frame is a fixed 48-byte header followed by a
// block holding the results as four little-endian columns. The block is
// compressed with LZ4 or zstd, or stored raw when that does not shrink it,
// and checksummed with xxhash64. The compression is recorded in each header,
// so readers need no configuration.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Appender is implemented by codecs that can encode into a caller-owned
// buffer. Sinks use it to reuse one buffer across lines.
type Appender interface {
	Append(dst []byte, v any) ([]byte, error)
}

// MustMarshal is a helper for tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}

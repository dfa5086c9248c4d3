package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/OneOfOne/xxhash"

	"github.com/hupe1980/megamerge/internal/conv"
	"github.com/hupe1980/megamerge/model"
)

// Frame layout, little endian:
//
//	[0:4)   magic "MMRG"
//	[4]     version
//	[5]     compression
//	[6:8)   reserved
//	[8:16)  segment index
//	[16:24) segment from (float64 bits)
//	[24:32) segment to (float64 bits)
//	[32:36) result count
//	[36:40) block length
//	[40:48) xxhash64 of the block
//	[48:)   block (see CompressBlock)
//
// The block payload is columnar: count uint64 data indices, then count
// float64 values for overlap, overlap/data length and overlap/segment length.
const (
	FrameVersion    = 1
	frameHeaderSize = 48
	resultSize      = 32
)

var frameMagic = [4]byte{'M', 'M', 'R', 'G'}

var (
	// ErrBadMagic is returned when a frame does not start with the frame magic.
	ErrBadMagic = errors.New("codec: bad frame magic")
	// ErrChecksum is returned when a frame block fails its checksum.
	ErrChecksum = errors.New("codec: frame checksum mismatch")
)

// ErrUnsupportedVersion is returned for frames written by a newer format.
type ErrUnsupportedVersion struct {
	Version uint8
}

func (e *ErrUnsupportedVersion) Error() string {
	return fmt.Sprintf("codec: unsupported frame version %d", e.Version)
}

// FrameInfo is the decoded frame header.
type FrameInfo struct {
	Segment     int
	Interval    model.Interval
	Count       int
	Compression Compression
	BlockSize   int
}

// EncodeBatch encodes one batch as a frame.
func EncodeBatch(b model.Batch, c Compression) ([]byte, error) {
	n := len(b.Results)
	count, err := conv.IntToUint32(n)
	if err != nil {
		return nil, fmt.Errorf("codec: result count: %w", err)
	}
	segment, err := conv.IntToUint64(b.Segment)
	if err != nil {
		return nil, fmt.Errorf("codec: segment: %w", err)
	}

	payload := make([]byte, n*resultSize)
	for i, r := range b.Results {
		idx, err := conv.IntToUint64(r.DataIndex)
		if err != nil {
			return nil, fmt.Errorf("codec: data index: %w", err)
		}
		binary.LittleEndian.PutUint64(payload[i*8:], idx)
		binary.LittleEndian.PutUint64(payload[(n+i)*8:], math.Float64bits(r.Overlap))
		binary.LittleEndian.PutUint64(payload[(2*n+i)*8:], math.Float64bits(r.OverDataLength))
		binary.LittleEndian.PutUint64(payload[(3*n+i)*8:], math.Float64bits(r.OverSegmentLength))
	}

	block, err := CompressBlock(payload, c)
	if err != nil {
		return nil, err
	}

	out := make([]byte, frameHeaderSize+len(block))
	copy(out[0:4], frameMagic[:])
	out[4] = FrameVersion
	out[5] = byte(c)
	binary.LittleEndian.PutUint64(out[8:], segment)
	binary.LittleEndian.PutUint64(out[16:], math.Float64bits(b.Interval.From))
	binary.LittleEndian.PutUint64(out[24:], math.Float64bits(b.Interval.To))
	binary.LittleEndian.PutUint32(out[32:], count)
	binary.LittleEndian.PutUint32(out[36:], uint32(len(block))) //nolint:gosec // bounded by CompressBlock
	binary.LittleEndian.PutUint64(out[40:], xxhash.Checksum64(block))
	copy(out[frameHeaderSize:], block)

	return out, nil
}

func parseFrameHeader(h []byte) (FrameInfo, uint64, error) {
	if [4]byte(h[0:4]) != frameMagic {
		return FrameInfo{}, 0, ErrBadMagic
	}
	if h[4] != FrameVersion {
		return FrameInfo{}, 0, &ErrUnsupportedVersion{Version: h[4]}
	}
	segment, err := conv.Uint64ToInt(binary.LittleEndian.Uint64(h[8:]))
	if err != nil {
		return FrameInfo{}, 0, fmt.Errorf("codec: segment: %w", err)
	}
	info := FrameInfo{
		Compression: Compression(h[5]),
		Segment:     segment,
		Interval: model.Interval{
			From: math.Float64frombits(binary.LittleEndian.Uint64(h[16:])),
			To:   math.Float64frombits(binary.LittleEndian.Uint64(h[24:])),
		},
		Count:     int(binary.LittleEndian.Uint32(h[32:])),
		BlockSize: int(binary.LittleEndian.Uint32(h[36:])),
	}
	return info, binary.LittleEndian.Uint64(h[40:]), nil
}

func decodeBlock(info FrameInfo, sum uint64, block []byte) (model.Batch, error) {
	if xxhash.Checksum64(block) != sum {
		return model.Batch{}, ErrChecksum
	}

	payload, _, err := DecompressBlock(block, info.Compression)
	if err != nil {
		return model.Batch{}, err
	}

	n := info.Count
	if len(payload) != n*resultSize {
		return model.Batch{}, fmt.Errorf("codec: frame payload is %d bytes, want %d", len(payload), n*resultSize)
	}

	results := make([]model.Result, n)
	for i := range results {
		idx, err := conv.Uint64ToInt(binary.LittleEndian.Uint64(payload[i*8:]))
		if err != nil {
			return model.Batch{}, fmt.Errorf("codec: data index: %w", err)
		}
		results[i] = model.Result{
			DataIndex:         idx,
			Overlap:           math.Float64frombits(binary.LittleEndian.Uint64(payload[(n+i)*8:])),
			OverDataLength:    math.Float64frombits(binary.LittleEndian.Uint64(payload[(2*n+i)*8:])),
			OverSegmentLength: math.Float64frombits(binary.LittleEndian.Uint64(payload[(3*n+i)*8:])),
		}
	}

	return model.Batch{Segment: info.Segment, Interval: info.Interval, Results: results}, nil
}

// DecodeBatch decodes the frame at the start of data and returns the number
// of bytes consumed.
func DecodeBatch(data []byte) (model.Batch, int, error) {
	if len(data) < frameHeaderSize {
		return model.Batch{}, 0, io.ErrUnexpectedEOF
	}
	info, sum, err := parseFrameHeader(data[:frameHeaderSize])
	if err != nil {
		return model.Batch{}, 0, err
	}
	end := frameHeaderSize + info.BlockSize
	if len(data) < end {
		return model.Batch{}, 0, io.ErrUnexpectedEOF
	}
	b, err := decodeBlock(info, sum, data[frameHeaderSize:end])
	if err != nil {
		return model.Batch{}, 0, err
	}
	return b, end, nil
}

// FrameWriter writes a stream of batch frames.
type FrameWriter struct {
	w           io.Writer
	compression Compression
	frames      int
	written     int64
}

// NewFrameWriter creates a FrameWriter compressing every frame with c.
func NewFrameWriter(w io.Writer, c Compression) *FrameWriter {
	return &FrameWriter{w: w, compression: c}
}

// WriteBatch encodes and writes one frame.
func (fw *FrameWriter) WriteBatch(b model.Batch) error {
	frame, err := EncodeBatch(b, fw.compression)
	if err != nil {
		return err
	}
	n, err := fw.w.Write(frame)
	fw.written += int64(n)
	if err != nil {
		return err
	}
	fw.frames++
	return nil
}

// Frames returns the number of frames written.
func (fw *FrameWriter) Frames() int { return fw.frames }

// BytesWritten returns the number of bytes written.
func (fw *FrameWriter) BytesWritten() int64 { return fw.written }

// FrameReader reads a stream of batch frames.
type FrameReader struct {
	r    io.Reader
	hdr  [frameHeaderSize]byte
	info FrameInfo
}

// NewFrameReader creates a FrameReader over r.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: r}
}

// Next reads the next frame. It returns io.EOF at a clean end of stream and
// io.ErrUnexpectedEOF for a truncated frame.
func (fr *FrameReader) Next() (model.Batch, error) {
	if _, err := io.ReadFull(fr.r, fr.hdr[:]); err != nil {
		return model.Batch{}, err
	}

	info, sum, err := parseFrameHeader(fr.hdr[:])
	if err != nil {
		return model.Batch{}, err
	}
	fr.info = info

	block := make([]byte, info.BlockSize)
	if _, err := io.ReadFull(fr.r, block); err != nil {
		if errors.Is(err, io.EOF) {
			return model.Batch{}, io.ErrUnexpectedEOF
		}
		return model.Batch{}, err
	}

	return decodeBlock(info, sum, block)
}

// Info returns the header of the frame last returned by Next.
func (fr *FrameReader) Info() FrameInfo { return fr.info }

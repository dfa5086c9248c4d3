package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/megamerge/internal/conv"
)

// Compression selects the block compression algorithm.
type Compression uint8

const (
	// CompressionNone stores blocks uncompressed.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD block compression (better ratio).
	CompressionZSTD Compression = 2
)

var (
	// ErrShortBlock is returned when a block is smaller than its header claims.
	ErrShortBlock = errors.New("codec: block truncated")
	// ErrSizeMismatch is returned when a block does not decompress to its recorded size.
	ErrSizeMismatch = errors.New("codec: decompressed size mismatch")
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression parses "none", "lz4" or "zstd". The empty string is none.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("codec: unknown compression %q", s)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// blockHeaderSize covers [uncompressed uint32][compressed uint32].
// A compressed size of 0 marks a block stored as-is.
const blockHeaderSize = 8

// CompressBlock prefixes data with a block header and compresses it with c.
// Blocks that do not shrink below 90% of their size are stored as-is.
func CompressBlock(data []byte, c Compression) ([]byte, error) {
	var compressed []byte

	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	}

	size, err := conv.IntToUint32(len(data))
	if err != nil {
		return nil, fmt.Errorf("codec: block size: %w", err)
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		out := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(out[0:], size)
		copy(out[blockHeaderSize:], data)
		return out, nil
	}

	out := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(out[0:], size)
	binary.LittleEndian.PutUint32(out[4:], uint32(len(compressed))) //nolint:gosec // smaller than size
	copy(out[blockHeaderSize:], compressed)
	return out, nil
}

// DecompressBlock reverses CompressBlock. It returns the payload and the
// number of bytes of block consumed.
func DecompressBlock(block []byte, c Compression) ([]byte, int, error) {
	if len(block) < blockHeaderSize {
		return nil, 0, ErrShortBlock
	}

	uncompressedSize := int(binary.LittleEndian.Uint32(block[0:]))
	compressedSize := int(binary.LittleEndian.Uint32(block[4:]))

	if compressedSize == 0 {
		end := blockHeaderSize + uncompressedSize
		if len(block) < end {
			return nil, 0, ErrShortBlock
		}
		return block[blockHeaderSize:end], end, nil
	}

	end := blockHeaderSize + compressedSize
	if len(block) < end {
		return nil, 0, ErrShortBlock
	}
	src := block[blockHeaderSize:end]
	out := make([]byte, uncompressedSize)

	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(src, out)
		if err != nil {
			return nil, 0, err
		}
		if n != uncompressedSize {
			return nil, 0, ErrSizeMismatch
		}
		return out, end, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)

		decoded, err := dec.DecodeAll(src, out[:0])
		if err != nil {
			return nil, 0, err
		}
		if len(decoded) != uncompressedSize {
			return nil, 0, ErrSizeMismatch
		}
		return decoded, end, nil
	default:
		return nil, 0, fmt.Errorf("codec: compressed block with compression %s", c)
	}
}

package results

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the archive compression algorithm.
type Compression uint8

const (
	// CompressionNone stores archives as plain codec output.
	CompressionNone Compression = 0
	// CompressionLZ4 is LZ4 block compression (fast, larger archives).
	CompressionLZ4 Compression = 1
	// CompressionZstd is zstd block compression (better ratio).
	CompressionZstd Compression = 2
)

// String returns the stable name used in configuration.
func (c Compression) String() string {
	switch c {
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return "none"
	}
}

// Ext returns the archive name suffix, empty for no compression.
func (c Compression) Ext() string {
	switch c {
	case CompressionLZ4:
		return ".lz4"
	case CompressionZstd:
		return ".zst"
	default:
		return ""
	}
}

// CompressionByName maps a configuration name to a Compression.
func CompressionByName(name string) (Compression, bool) {
	switch name {
	case "", "none":
		return CompressionNone, true
	case "lz4":
		return CompressionLZ4, true
	case "zstd":
		return CompressionZstd, true
	default:
		return CompressionNone, false
	}
}

// CompressionForArchive infers the compression from an archive name suffix.
func CompressionForArchive(name string) Compression {
	switch {
	case strings.HasSuffix(name, ".zst"):
		return CompressionZstd
	case strings.HasSuffix(name, ".lz4"):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// Zstd encoder/decoder pools for efficiency.
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

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Compressed archives carry an 8-byte header:
// [UncompressedSize uint32][CompressedSize uint32][Payload...]
// A CompressedSize of zero marks an incompressible payload stored raw.
// CompressionNone archives have no header, just the codec output.
const archiveHeaderSize = 8

// compress frames and compresses an archive payload.
func compress(data []byte, compression Compression) ([]byte, error) {
	if compression == CompressionNone {
		return data, nil
	}

	var compressed []byte
	switch compression {
	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(data))
		buf := make([]byte, bound)
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("results: lz4 compress: %w", err)
		}
		if n > 0 {
			compressed = buf[:n]
		}
	case CompressionZstd:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		putZstdEncoder(enc)
	default:
		return nil, fmt.Errorf("results: unknown compression %d", compression)
	}

	// If compression doesn't help (ratio > 0.9), store the payload raw.
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		framed := make([]byte, archiveHeaderSize+len(data))
		binary.LittleEndian.PutUint32(framed[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(framed[4:], 0)
		copy(framed[archiveHeaderSize:], data)
		return framed, nil
	}

	framed := make([]byte, archiveHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(framed[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(framed[4:], uint32(len(compressed)))
	copy(framed[archiveHeaderSize:], compressed)
	return framed, nil
}

// decompress reverses compress for the given algorithm.
func decompress(data []byte, compression Compression) ([]byte, error) {
	if compression == CompressionNone {
		return data, nil
	}
	if len(data) < archiveHeaderSize {
		return nil, errors.New("results: archive too small for header")
	}

	uncompressedSize := binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])

	if compressedSize == 0 {
		if uint32(len(data)) < archiveHeaderSize+uncompressedSize {
			return nil, errors.New("results: archive data too small")
		}
		return data[archiveHeaderSize : archiveHeaderSize+uncompressedSize], nil
	}

	if uint32(len(data)) < archiveHeaderSize+compressedSize {
		return nil, errors.New("results: compressed archive data too small")
	}
	payload := data[archiveHeaderSize : archiveHeaderSize+compressedSize]

	switch compression {
	case CompressionLZ4:
		out := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("results: lz4 decompress: %w", err)
		}
		if uint32(n) != uncompressedSize {
			return nil, errors.New("results: decompressed size mismatch")
		}
		return out, nil

	case CompressionZstd:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		out, err := dec.DecodeAll(payload, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("results: zstd decompress: %w", err)
		}
		if uint32(len(out)) != uncompressedSize {
			return nil, errors.New("results: decompressed size mismatch")
		}
		return out, nil

	default:
		return nil, fmt.Errorf("results: unknown compression %d", compression)
	}
}

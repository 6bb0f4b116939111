package compress

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4WriterPool pools frame writers; each one holds block buffers worth reusing.
var lz4WriterPool = sync.Pool{
	New: func() any {
		zw := lz4.NewWriter(nil)
		if err := zw.Apply(lz4.BlockSizeOption(lz4.Block64Kb)); err != nil {
			panic(fmt.Sprintf("failed to configure lz4 writer: %v", err))
		}

		return zw
	},
}

var lz4ReaderPool = sync.Pool{
	New: func() any {
		return lz4.NewReader(nil)
	},
}

// LZ4Codec implements codec id 3 using the LZ4 frame format.
//
// Only v1 wrappers are supported. Old JVM producers compute the frame header
// checksum of v0 LZ4 wrappers incorrectly; such values fail to decompress,
// and message.Wrap refuses to build a v0 LZ4 wrapper.
type LZ4Codec struct {
	maxSize int
}

var _ Codec = (*LZ4Codec)(nil)

// NewLZ4Codec creates a new LZ4 codec.
func NewLZ4Codec(opts ...CodecOption) LZ4Codec {
	cfg := newCodecConfig(0, opts...)

	return LZ4Codec{maxSize: cfg.maxSize}
}

// Compress compresses data into a single LZ4 frame with 64KiB blocks.
func (c LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	buf.Grow(lz4.CompressBlockBound(len(data)) + 32)

	zw, _ := lz4WriterPool.Get().(*lz4.Writer)
	defer lz4WriterPool.Put(zw)

	zw.Reset(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decompress decompresses an LZ4 frame.
func (c LZ4Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	zr, _ := lz4ReaderPool.Get().(*lz4.Reader)
	defer lz4ReaderPool.Put(zr)

	zr.Reset(bytes.NewReader(data))
	out, err := readAllLimited(zr, c.maxSize)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}

	return out, nil
}

package compress

import (
	"fmt"

	"github.com/arloliu/kmsg/endian"
	"github.com/arloliu/kmsg/errs"
)

// ZstdCodec implements codec id 4 with Zstandard.
//
// The default build uses the pure Go klauspost/compress implementation.
// Building with the gozstd tag switches to the cgo binding of the reference
// library.
type ZstdCodec struct {
	level   int
	maxSize int
	zstdPools
}

var _ Codec = (*ZstdCodec)(nil)

// defaultZstdLevel matches the reference library's default level.
const defaultZstdLevel = 3

// NewZstdCodec creates a new Zstd codec. The default level is 3.
func NewZstdCodec(opts ...CodecOption) *ZstdCodec {
	cfg := newCodecConfig(defaultZstdLevel, opts...)
	if cfg.level < 1 || cfg.level > 22 {
		cfg.level = defaultZstdLevel
	}

	c := &ZstdCodec{
		level:   cfg.level,
		maxSize: cfg.maxSize,
	}
	c.initPools()

	return c
}

// zstdMagic opens every zstd frame, stored little-endian.
const zstdMagic = 0xFD2FB528

// zstdFrameContentSize returns the content size declared by the header of the
// first frame in data. The second result is false when the header omits it
// or data does not start with a complete frame header.
func zstdFrameContentSize(data []byte) (uint64, bool) {
	le := endian.GetLittleEndianEngine()
	if len(data) < 5 || le.Uint32(data) != zstdMagic {
		return 0, false
	}

	descriptor := data[4]
	singleSegment := descriptor&0x20 != 0

	pos := 5
	if !singleSegment {
		pos++ // window descriptor
	}
	pos += [4]int{0, 1, 2, 4}[descriptor&0x03] // dictionary id

	var size int
	switch descriptor >> 6 {
	case 0:
		if !singleSegment {
			return 0, false
		}
		size = 1
	case 1:
		size = 2
	case 2:
		size = 4
	default:
		size = 8
	}
	if len(data) < pos+size {
		return 0, false
	}

	field := data[pos : pos+size]
	switch size {
	case 1:
		return uint64(field[0]), true
	case 2:
		return uint64(le.Uint16(field)) + 256, true
	case 4:
		return uint64(le.Uint32(field)), true
	default:
		return le.Uint64(field), true
	}
}

// checkDeclaredSize rejects frames announcing more than maxSize bytes before
// any output buffer is allocated.
func (c *ZstdCodec) checkDeclaredSize(data []byte) error {
	if size, ok := zstdFrameContentSize(data); ok && size > uint64(c.maxSize) {
		return fmt.Errorf("%w: zstd frame declares %d bytes, limit %d", errs.ErrDecompressedTooLarge, size, c.maxSize)
	}

	return nil
}

package compress

import (
	"bytes"
	"fmt"

	"github.com/arloliu/kmsg/endian"
	"github.com/arloliu/kmsg/errs"
	"github.com/klauspost/compress/s2"
)

// xerial stream layout: 8 byte magic, int32 version, int32 min compatible
// version, then repeated int32 length-prefixed snappy blocks.
var xerialMagic = []byte{0x82, 'S', 'N', 'A', 'P', 'P', 'Y', 0x00}

const (
	xerialHeaderLen = 16
	xerialVersion   = 1
	xerialCompat    = 1
	xerialBlockSize = 32 * 1024
)

// SnappyCodec implements codec id 2. It writes Snappy-compatible blocks with
// the S2 encoder and decodes both raw blocks and the xerial chunked stream.
type SnappyCodec struct {
	maxSize int
	xerial  bool
}

var _ Codec = (*SnappyCodec)(nil)

// NewSnappyCodec creates a snappy codec.
func NewSnappyCodec(opts ...CodecOption) SnappyCodec {
	cfg := newCodecConfig(0, opts...)

	return SnappyCodec{
		maxSize: cfg.maxSize,
		xerial:  cfg.xerial,
	}
}

// Compress compresses data using Snappy block compression.
func (c SnappyCodec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if !c.xerial {
		return s2.EncodeSnappy(nil, data), nil
	}

	engine := endian.WireEngine()
	out := make([]byte, 0, xerialHeaderLen+s2.MaxEncodedLen(len(data))+4*(len(data)/xerialBlockSize+1))
	out = append(out, xerialMagic...)
	out = engine.AppendUint32(out, xerialVersion)
	out = engine.AppendUint32(out, xerialCompat)

	for len(data) > 0 {
		n := min(len(data), xerialBlockSize)
		block := s2.EncodeSnappy(nil, data[:n])
		out = engine.AppendUint32(out, uint32(len(block)))
		out = append(out, block...)
		data = data[n:]
	}

	return out, nil
}

// Decompress decompresses a raw Snappy block or an xerial stream.
func (c SnappyCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) >= xerialHeaderLen && bytes.Equal(data[:len(xerialMagic)], xerialMagic) {
		return c.decodeXerial(data[xerialHeaderLen:])
	}

	return c.decodeBlock(nil, data)
}

func (c SnappyCodec) decodeXerial(data []byte) ([]byte, error) {
	engine := endian.WireEngine()

	var out []byte
	for len(data) > 0 {
		if len(data) < 4 {
			return nil, fmt.Errorf("snappy decompression failed: truncated xerial chunk header")
		}
		size := int(engine.Uint32(data))
		data = data[4:]
		if size < 0 || size > len(data) {
			return nil, fmt.Errorf("snappy decompression failed: xerial chunk of %d bytes exceeds input", size)
		}

		var err error
		out, err = c.decodeBlock(out, data[:size])
		if err != nil {
			return nil, err
		}
		data = data[size:]
	}

	return out, nil
}

// decodeBlock decodes one snappy block and appends it to dst.
func (c SnappyCodec) decodeBlock(dst, block []byte) ([]byte, error) {
	n, err := s2.DecodedLen(block)
	if err != nil {
		return nil, fmt.Errorf("snappy decompression failed: %w", err)
	}
	if len(dst)+n > c.maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", errs.ErrDecompressedTooLarge, c.maxSize)
	}

	decoded, err := s2.Decode(nil, block)
	if err != nil {
		return nil, fmt.Errorf("snappy decompression failed: %w", err)
	}
	if dst == nil {
		return decoded, nil
	}

	return append(dst, decoded...), nil
}

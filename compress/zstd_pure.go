//go:build !gozstd

package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/arloliu/kmsg/errs"
	"github.com/klauspost/compress/zstd"
)

// zstdPools pools encoders and decoders; klauspost/compress/zstd is designed
// for reuse and runs allocation free after a warmup.
type zstdPools struct {
	encoders sync.Pool
	decoders sync.Pool
}

func (c *ZstdCodec) initPools() {
	level := zstd.EncoderLevelFromZstd(c.level)
	maxSize := uint64(c.maxSize)

	c.encoders.New = func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(level),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}

		return encoder
	}
	c.decoders.New = func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(maxSize),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	}
}

// Compress compresses the input data using Zstandard compression.
func (c *ZstdCodec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	encoder, _ := c.encoders.Get().(*zstd.Encoder)
	defer c.encoders.Put(encoder)

	// EncodeAll is stateless, safe to use with pooled encoder
	return encoder.EncodeAll(data, nil), nil
}

// Decompress decompresses Zstd-compressed data.
func (c *ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	if err := c.checkDeclaredSize(data); err != nil {
		return nil, err
	}

	decoder, _ := c.decoders.Get().(*zstd.Decoder)
	defer c.decoders.Put(decoder)

	decompressed, err := decoder.DecodeAll(data, nil)
	if err != nil {
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) {
			return nil, fmt.Errorf("%w: more than %d bytes", errs.ErrDecompressedTooLarge, c.maxSize)
		}

		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	if len(decompressed) > c.maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", errs.ErrDecompressedTooLarge, c.maxSize)
	}

	return decompressed, nil
}

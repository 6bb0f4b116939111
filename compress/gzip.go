package compress

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// GzipCodec implements codec id 1 with the klauspost gzip implementation.
type GzipCodec struct {
	level   int
	maxSize int
	writers sync.Pool
	readers sync.Pool
}

var _ Codec = (*GzipCodec)(nil)

// NewGzipCodec creates a gzip codec. The default level is gzip.DefaultCompression.
func NewGzipCodec(opts ...CodecOption) *GzipCodec {
	cfg := newCodecConfig(gzip.DefaultCompression, opts...)
	if cfg.level < gzip.HuffmanOnly || cfg.level > gzip.BestCompression {
		cfg.level = gzip.DefaultCompression
	}

	c := &GzipCodec{
		level:   cfg.level,
		maxSize: cfg.maxSize,
	}
	c.writers.New = func() any {
		zw, err := gzip.NewWriterLevel(nil, c.level)
		if err != nil {
			// level is validated above
			panic(fmt.Sprintf("failed to create gzip writer: %v", err))
		}

		return zw
	}
	c.readers.New = func() any {
		return new(gzip.Reader)
	}

	return c
}

// Compress compresses data into a single gzip member.
func (c *GzipCodec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	zw, _ := c.writers.Get().(*gzip.Writer)
	defer c.writers.Put(zw)

	zw.Reset(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decompress decompresses gzip data, including multi-member streams.
func (c *GzipCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	zr, _ := c.readers.Get().(*gzip.Reader)
	defer c.readers.Put(zr)

	if err := zr.Reset(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("gzip decompression failed: %w", err)
	}
	defer zr.Close()

	out, err := readAllLimited(zr, c.maxSize)
	if err != nil {
		return nil, fmt.Errorf("gzip decompression failed: %w", err)
	}

	return out, nil
}

//go:build gozstd

package compress

import (
	"bytes"
	"fmt"

	"github.com/valyala/gozstd"
)

// gozstd keeps its own internal context pools.
type zstdPools struct{}

func (c *ZstdCodec) initPools() {}

// Compress compresses the input data using Zstandard compression.
func (c *ZstdCodec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.CompressLevel(nil, data, c.level), nil
}

// Decompress decompresses Zstd-compressed data.
//
// gozstd.Decompress sizes its output from the declared frame size, so the
// data is streamed through a reader and cut off at the size limit instead.
func (c *ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if err := c.checkDeclaredSize(data); err != nil {
		return nil, err
	}

	zr := gozstd.NewReader(bytes.NewReader(data))
	defer zr.Release()

	out, err := readAllLimited(zr, c.maxSize)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return out, nil
}

package compress

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/arloliu/kmsg/errs"
	"github.com/arloliu/kmsg/format"
	"github.com/arloliu/kmsg/internal/options"
)

// Compressor compresses an encoded message set into a wrapper message value.
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller
	//   - Input slice is not modified
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores the encoded message set held by a wrapper message value.
//
// Implementations must be safe for concurrent use, since decoders share the
// codecs of a Registry.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original result.
	//
	// Error conditions:
	//   - Returns error if input data is corrupted or invalid
	//   - Returns errs.ErrDecompressedTooLarge if the output exceeds the codec limit
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// MaxDecompressedSize is the default upper bound of a single decompressed value.
const MaxDecompressedSize = 128 * 1024 * 1024 // 128MiB

type codecConfig struct {
	level   int
	maxSize int
	xerial  bool
}

// CodecOption configures a built-in codec.
type CodecOption = options.Option[*codecConfig]

func newCodecConfig(defaultLevel int, opts ...CodecOption) *codecConfig {
	cfg := &codecConfig{
		level:   defaultLevel,
		maxSize: MaxDecompressedSize,
	}
	_ = options.Apply(cfg, opts...)

	return cfg
}

// WithLevel sets the compression level of the gzip and zstd codecs.
// Other codecs ignore it.
func WithLevel(level int) CodecOption {
	return options.NoError(func(c *codecConfig) {
		c.level = level
	})
}

// WithMaxDecompressedSize limits the size of decompressed output. Non-positive
// values keep MaxDecompressedSize.
func WithMaxDecompressedSize(size int) CodecOption {
	return options.NoError(func(c *codecConfig) {
		if size > 0 {
			c.maxSize = size
		}
	})
}

// WithXerialFraming makes the snappy codec emit the chunked xerial stream
// format used by JVM producers. Decompression detects both formats regardless.
func WithXerialFraming() CodecOption {
	return options.NoError(func(c *codecConfig) {
		c.xerial = true
	})
}

// Stats describes the outcome of compressing a message set.
type Stats struct {
	// Codec identifies the compression codec used.
	Codec format.CodecID
	// OriginalSize is the size of input data before compression.
	OriginalSize int64
	// CompressedSize is the size of data after compression.
	CompressedSize int64
}

// CompressionRatio returns compressed size / original size, or 0 for empty input.
func (s Stats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage.
func (s Stats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

// CreateCodec creates a new built-in codec for the given codec id.
//
// Returns errs.ErrUnknownCodec for ids without a built-in implementation.
func CreateCodec(id format.CodecID, opts ...CodecOption) (Codec, error) {
	switch id {
	case format.CodecNone:
		return NewNoOpCodec(), nil
	case format.CodecGzip:
		return NewGzipCodec(opts...), nil
	case format.CodecSnappy:
		return NewSnappyCodec(opts...), nil
	case format.CodecLZ4:
		return NewLZ4Codec(opts...), nil
	case format.CodecZstd:
		return NewZstdCodec(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %d (%s)", errs.ErrUnknownCodec, id, id)
	}
}

// Registry maps codec ids to codec implementations.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	codecs map[format.CodecID]Codec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[format.CodecID]Codec)}
}

// NewBuiltinRegistry creates a registry holding the built-in codecs:
// none (0), gzip (1), snappy (2), lz4 (3) and zstd (4).
func NewBuiltinRegistry(opts ...CodecOption) *Registry {
	r := NewRegistry()
	for _, id := range []format.CodecID{
		format.CodecNone, format.CodecGzip, format.CodecSnappy, format.CodecLZ4, format.CodecZstd,
	} {
		codec, err := CreateCodec(id, opts...)
		if err != nil {
			panic(fmt.Sprintf("failed to create built-in codec %s: %v", id, err))
		}
		r.codecs[id] = codec
	}

	return r
}

// Register adds codec under id.
//
// Returns errs.ErrInvalidCodecID if id does not fit in the attributes byte and
// errs.ErrCodecAlreadyRegistered if id is taken.
func (r *Registry) Register(id format.CodecID, codec Codec) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %d", errs.ErrInvalidCodecID, id)
	}
	if codec == nil {
		return fmt.Errorf("register codec %d: nil codec", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.codecs[id]; ok {
		return fmt.Errorf("%w: %d", errs.ErrCodecAlreadyRegistered, id)
	}
	r.codecs[id] = codec

	return nil
}

// Unregister removes the codec registered under id, if any.
func (r *Registry) Unregister(id format.CodecID) {
	r.mu.Lock()
	delete(r.codecs, id)
	r.mu.Unlock()
}

// Find returns the codec registered under id, or errs.ErrUnknownCodec.
func (r *Registry) Find(id format.CodecID) (Codec, error) {
	r.mu.RLock()
	codec, ok := r.codecs[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %d", errs.ErrUnknownCodec, id)
	}

	return codec, nil
}

// IDs returns the registered codec ids in ascending order.
func (r *Registry) IDs() []format.CodecID {
	r.mu.RLock()
	ids := make([]format.CodecID, 0, len(r.codecs))
	for id := range r.codecs {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	slices.Sort(ids)

	return ids
}

var defaultRegistry = NewBuiltinRegistry()

// DefaultRegistry returns the process-wide registry of built-in codecs.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// FindCodec looks up id in the default registry.
func FindCodec(id format.CodecID) (Codec, error) {
	return defaultRegistry.Find(id)
}

// readAllLimited drains r, failing once more than limit bytes are produced.
func readAllLimited(r io.Reader, limit int) ([]byte, error) {
	var buf bytes.Buffer
	n, err := buf.ReadFrom(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, err
	}
	if n > int64(limit) {
		return nil, fmt.Errorf("%w: more than %d bytes", errs.ErrDecompressedTooLarge, limit)
	}

	return buf.Bytes(), nil
}

package message

import (
	"fmt"

	"github.com/arloliu/kmsg/compress"
	"github.com/arloliu/kmsg/errs"
	"github.com/arloliu/kmsg/format"
	"github.com/arloliu/kmsg/internal/options"
	"github.com/arloliu/kmsg/wire"
)

// Decompress decodes the message set held by a compressed message.
//
// The codec is looked up by the message codec id (WithRegistry, defaulting to
// compress.DefaultRegistry()). Members are decoded strictly; any failure
// fails the whole call with errs.ErrNestedDecode and no members are returned.
// Members that are themselves compressed are returned unchanged.
//
// Returns:
//   - errs.ErrNotCompressed if the codec id is 0
//   - errs.ErrUnknownCodec if no codec is registered for the id
//   - errs.ErrDecompressFailed if the codec rejects the value
//   - errs.ErrNestedDecode if a member fails to decode
func (m *Message) Decompress(opts ...DecodeOption) ([]*Message, error) {
	cfg, err := newDecodeConfig(opts...)
	if err != nil {
		return nil, err
	}

	return m.decompress(cfg)
}

func (m *Message) decompress(cfg *decodeConfig) ([]*Message, error) {
	if !m.Compressed() {
		return nil, fmt.Errorf("%w: offset %d", errs.ErrNotCompressed, m.offset)
	}

	codec, err := cfg.codecs.Find(m.codec)
	if err != nil {
		return nil, fmt.Errorf("decompress message at offset %d: %w", m.offset, err)
	}

	data, err := codec.Decompress(m.value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s message at offset %d: %w", errs.ErrDecompressFailed, m.codec, m.offset, err)
	}

	nested := *cfg
	nested.allowPartial = false

	set, err := decodeMessageSet(wire.NewDecoder(data), &nested)
	if err != nil {
		return nil, fmt.Errorf("%w: wrapper at offset %d: %w", errs.ErrNestedDecode, m.offset, err)
	}

	return set.Messages, nil
}

type wrapConfig struct {
	codecs       CodecLookup
	timestamp    int64
	hasTimestamp bool
	offset       int64
}

// WrapOption configures Wrap.
type WrapOption = options.Option[*wrapConfig]

// WithWrapRegistry sets the codec lookup used by Wrap.
func WithWrapRegistry(codecs CodecLookup) WrapOption {
	return options.New(func(c *wrapConfig) error {
		if codecs == nil {
			return fmt.Errorf("codec registry must not be nil")
		}
		c.codecs = codecs

		return nil
	})
}

// WithWrapTimestamp sets the wrapper timestamp in milliseconds.
func WithWrapTimestamp(ts int64) WrapOption {
	return options.NoError(func(c *wrapConfig) {
		c.timestamp = ts
		c.hasTimestamp = true
	})
}

// WithWrapOffset sets the wrapper offset. Defaults to OffsetUnassigned.
func WithWrapOffset(offset int64) WrapOption {
	return options.NoError(func(c *wrapConfig) {
		c.offset = offset
	})
}

// Wrap encodes msgs as a message set, compresses it with codec and returns the
// wrapper message holding the result.
//
// Without WithWrapTimestamp the wrapper takes the largest member timestamp and
// is v0 when no member has one. Member offsets are written as they are.
//
// Returns errs.ErrEmptyMessageSet for an empty msgs, and
// errs.ErrCodecRequiresTimestamp for an LZ4 wrapper without timestamp, since
// v0 LZ4 values are not read reliably by other clients.
func Wrap(codec format.CodecID, msgs []*Message, opts ...WrapOption) (*Message, error) {
	if !codec.Valid() {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidCodecID, codec)
	}
	if codec == format.CodecNone {
		return nil, fmt.Errorf("wrap: %w", errs.ErrNotCompressed)
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("wrap: %w", errs.ErrEmptyMessageSet)
	}

	cfg := &wrapConfig{
		codecs: compress.DefaultRegistry(),
		offset: OffsetUnassigned,
	}
	for _, m := range msgs {
		if ts, ok := m.Timestamp(); ok && (!cfg.hasTimestamp || ts > cfg.timestamp) {
			cfg.timestamp = ts
			cfg.hasTimestamp = true
		}
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if codec == format.CodecLZ4 && !cfg.hasTimestamp {
		return nil, fmt.Errorf("wrap: %s: %w", codec, errs.ErrCodecRequiresTimestamp)
	}

	c, err := cfg.codecs.Find(codec)
	if err != nil {
		return nil, fmt.Errorf("wrap: %w", err)
	}

	set := MessageSet{Messages: msgs}
	raw, err := set.Bytes()
	if err != nil {
		return nil, fmt.Errorf("wrap: %w", err)
	}

	value, err := c.Compress(raw)
	if err != nil {
		return nil, fmt.Errorf("wrap: %s compression failed: %w", codec, err)
	}

	wrapperOpts := []Option{WithCodec(codec), WithOffset(cfg.offset)}
	if cfg.hasTimestamp {
		wrapperOpts = append(wrapperOpts, WithTimestamp(cfg.timestamp))
	}

	return New(value, wrapperOpts...)
}

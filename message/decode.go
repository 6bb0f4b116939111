package message

import (
	"bytes"
	"fmt"
	"time"

	"github.com/arloliu/kmsg/compress"
	"github.com/arloliu/kmsg/errs"
	"github.com/arloliu/kmsg/format"
	"github.com/arloliu/kmsg/internal/options"
	"github.com/arloliu/kmsg/wire"
)

// CodecLookup resolves a codec id to a codec. *compress.Registry implements it.
type CodecLookup interface {
	Find(id format.CodecID) (compress.Codec, error)
}

type decodeConfig struct {
	codecs         CodecLookup
	verifyChecksum bool
	allowPartial   bool
}

// DecodeOption configures Decode, DecodeMessageSet, Decompress and Flatten.
type DecodeOption = options.Option[*decodeConfig]

func newDecodeConfig(opts ...DecodeOption) (*decodeConfig, error) {
	cfg := &decodeConfig{
		codecs:         compress.DefaultRegistry(),
		verifyChecksum: true,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithRegistry sets the codec lookup used to decompress wrapper messages.
// Defaults to compress.DefaultRegistry().
func WithRegistry(codecs CodecLookup) DecodeOption {
	return options.New(func(c *decodeConfig) error {
		if codecs == nil {
			return fmt.Errorf("codec registry must not be nil")
		}
		c.codecs = codecs

		return nil
	})
}

// WithoutChecksumVerification accepts messages whose stored CRC does not match
// their body. The stored value is still available through Message.CRC.
func WithoutChecksumVerification() DecodeOption {
	return options.NoError(func(c *decodeConfig) {
		c.verifyChecksum = false
	})
}

// WithPartialTrailing makes DecodeMessageSet tolerate a truncated last
// message, as returned by fetch responses cut at the requested byte limit.
// It does not apply to the nested sets of compressed messages.
func WithPartialTrailing() DecodeOption {
	return options.NoError(func(c *decodeConfig) {
		c.allowPartial = true
	})
}

// Decode reads one framed message from d.
//
// Returns:
//   - errs.ErrMalformedBuffer (or errs.ErrInsufficientData) for truncated or inconsistent input
//   - errs.ErrUnsupportedFormatVersion if the magic byte is not 0 or 1
//   - errs.ErrChecksumMismatch if the stored CRC does not match the body
//
// No partially populated message is ever returned. The key and value of the
// result never alias the decoder's input.
func Decode(d wire.PacketDecoder, opts ...DecodeOption) (*Message, error) {
	cfg, err := newDecodeConfig(opts...)
	if err != nil {
		return nil, err
	}

	return decodeMessage(d, cfg)
}

// Parse decodes data holding exactly one framed message.
func Parse(data []byte, opts ...DecodeOption) (*Message, error) {
	d := wire.NewDecoder(data)
	m, err := Decode(d, opts...)
	if err != nil {
		return nil, err
	}
	if d.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d bytes after message", errs.ErrMalformedBuffer, d.Remaining())
	}

	return m, nil
}

func decodeMessage(d wire.PacketDecoder, cfg *decodeConfig) (*Message, error) {
	offset, payload, err := readFrame(d)
	if err != nil {
		return nil, err
	}

	return parsePayload(offset, bytes.Clone(payload), cfg)
}

// readFrame reads the offset and the size-prefixed payload.
func readFrame(d wire.PacketDecoder) (int64, []byte, error) {
	offset, err := d.Int64()
	if err != nil {
		return 0, nil, fmt.Errorf("read offset: %w", err)
	}

	payload, err := d.Bytes()
	if err != nil {
		return 0, nil, fmt.Errorf("read message at offset %d: %w", offset, err)
	}
	if payload == nil {
		return 0, nil, fmt.Errorf("%w: message at offset %d has no payload", errs.ErrMalformedBuffer, offset)
	}

	return offset, payload, nil
}

// parsePayload decodes crc and body. The key and value alias payload.
func parsePayload(offset int64, payload []byte, cfg *decodeConfig) (*Message, error) {
	pd := wire.NewDecoder(payload)

	crc, err := pd.Int32()
	if err != nil {
		return nil, fmt.Errorf("read crc at offset %d: %w", offset, err)
	}

	rawMagic, err := pd.Int8()
	if err != nil {
		return nil, fmt.Errorf("read magic byte at offset %d: %w", offset, err)
	}
	magic := format.Magic(rawMagic)
	if !magic.Valid() {
		return nil, fmt.Errorf("%w: magic byte %d at offset %d", errs.ErrUnsupportedFormatVersion, rawMagic, offset)
	}

	attributes, err := pd.Int8()
	if err != nil {
		return nil, fmt.Errorf("read attributes at offset %d: %w", offset, err)
	}

	m := &Message{
		codec:      format.CodecFromAttributes(attributes),
		offset:     offset,
		createTime: time.Now(),
		crc:        uint32(crc),
	}

	if magic.HasTimestamp() {
		if m.timestamp, err = pd.Int64(); err != nil {
			return nil, fmt.Errorf("read timestamp at offset %d: %w", offset, err)
		}
		m.hasTimestamp = true
	}
	if m.key, err = pd.Bytes(); err != nil {
		return nil, fmt.Errorf("read key at offset %d: %w", offset, err)
	}
	if m.value, err = pd.Bytes(); err != nil {
		return nil, fmt.Errorf("read value at offset %d: %w", offset, err)
	}
	if pd.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes in message at offset %d",
			errs.ErrMalformedBuffer, pd.Remaining(), offset)
	}

	if cfg.verifyChecksum {
		if sum := Checksum(payload[CRCSize:]); sum != m.crc {
			return nil, fmt.Errorf("%w: stored %08x, computed %08x at offset %d",
				errs.ErrChecksumMismatch, m.crc, sum, offset)
		}
	}

	return m, nil
}

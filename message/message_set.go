package message

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/arloliu/kmsg/errs"
	"github.com/arloliu/kmsg/wire"
)

// MessageSet is an ordered sequence of framed messages, as carried by
// produce requests, fetch responses and the value of a compressed message.
type MessageSet struct {
	Messages []*Message
	// PartialTrailingMessage is set when a truncated last message was dropped.
	PartialTrailingMessage bool
}

// EncodedSize returns the number of bytes Encode writes.
func (ms *MessageSet) EncodedSize() int {
	size := 0
	for _, m := range ms.Messages {
		size += m.EncodedSize()
	}

	return size
}

// Encode writes the messages back to back. The set carries no size prefix of
// its own; the enclosing protocol writes it.
func (ms *MessageSet) Encode(e wire.PacketEncoder) error {
	for i, m := range ms.Messages {
		if err := m.Encode(e); err != nil {
			return fmt.Errorf("encode message %d: %w", i, err)
		}
	}

	return nil
}

// Bytes returns the encoded message set.
func (ms *MessageSet) Bytes() ([]byte, error) {
	e := wire.NewEncoderSize(ms.EncodedSize())
	if err := ms.Encode(e); err != nil {
		return nil, err
	}

	return e.Bytes(), nil
}

// DecodeMessageSet reads framed messages from d until it is exhausted.
//
// By default any error fails the whole set. With WithPartialTrailing a
// message cut short by the end of input is dropped and PartialTrailingMessage
// is set; if even the first message is cut short the error is
// errs.ErrMessageTooLarge, meaning the fetch size cannot hold one message.
//
// Compressed messages are returned as they are; see Flatten.
func DecodeMessageSet(d wire.PacketDecoder, opts ...DecodeOption) (*MessageSet, error) {
	cfg, err := newDecodeConfig(opts...)
	if err != nil {
		return nil, err
	}

	return decodeMessageSet(d, cfg)
}

// ParseMessageSet decodes data as a message set.
func ParseMessageSet(data []byte, opts ...DecodeOption) (*MessageSet, error) {
	return DecodeMessageSet(wire.NewDecoder(data), opts...)
}

func decodeMessageSet(d wire.PacketDecoder, cfg *decodeConfig) (*MessageSet, error) {
	ms := &MessageSet{}

	for d.Remaining() > 0 {
		offset, payload, err := readFrame(d)
		if err != nil {
			if cfg.allowPartial && errors.Is(err, errs.ErrInsufficientData) {
				if len(ms.Messages) == 0 {
					return nil, fmt.Errorf("%w: %w", errs.ErrMessageTooLarge, err)
				}
				ms.PartialTrailingMessage = true

				return ms, nil
			}

			return nil, fmt.Errorf("message %d: %w", len(ms.Messages), err)
		}

		m, err := parsePayload(offset, bytes.Clone(payload), cfg)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", len(ms.Messages), err)
		}
		ms.Messages = append(ms.Messages, m)
	}

	return ms, nil
}

// Flatten returns the messages of the set with every compressed message
// replaced by its decompressed members, recursively. Each nested set is fully
// decoded and validated before its members are expanded.
func (ms *MessageSet) Flatten(opts ...DecodeOption) ([]*Message, error) {
	cfg, err := newDecodeConfig(opts...)
	if err != nil {
		return nil, err
	}

	return flatten(ms.Messages, cfg)
}

func flatten(msgs []*Message, cfg *decodeConfig) ([]*Message, error) {
	out := make([]*Message, 0, len(msgs))
	for _, m := range msgs {
		if !m.Compressed() {
			out = append(out, m)
			continue
		}

		members, err := m.decompress(cfg)
		if err != nil {
			return nil, err
		}
		expanded, err := flatten(members, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}

	return out, nil
}

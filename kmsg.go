// Package kmsg encodes and decodes single records of the v0/v1 log message
// format used by Kafka-style brokers, including compressed message sets.
//
// Each framed message on the wire is
//
//	offset:int64 size:int32 crc:int32 magic:int8 attributes:int8 [timestamp:int64] key:bytes value:bytes
//
// where bytes is an int32 length followed by that many bytes, or length -1
// for an absent field. A timestamp selects format v1 (magic 1). The low three
// bits of the attributes byte carry the compression codec of the value; a
// compressed message holds a whole message set as its value.
//
// # Core Features
//
//   - Byte-exact v0/v1 encoding with CRC-32 over magic byte through value
//   - Strict decoding: truncation, bad lengths, unknown format versions and
//     checksum mismatches are reported as distinct errors
//   - Absent and empty keys and values are kept apart
//   - Pluggable compression codecs by id: gzip, snappy, lz4 and zstd built in
//   - Message sets with optional tolerance for a truncated trailing message
//
// # Basic Usage
//
// Encoding and decoding a message:
//
//	msg, _ := kmsg.NewMessage([]byte("hello"),
//	    message.WithKey([]byte("greeting")),
//	    message.WithTime(time.Now()),
//	)
//	data, _ := kmsg.Encode(msg)
//
//	decoded, err := kmsg.Decode(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("key=%s value=%s\n", decoded.Key(), decoded.Value())
//
// Compressing a batch:
//
//	wrapper, _ := kmsg.Compress(format.CodecZstd, msgs)
//	members, err := kmsg.Decompress(wrapper)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the message
// package. For custom codecs, registries and decode options use the message
// and compress packages directly.
package kmsg

import (
	"github.com/arloliu/kmsg/compress"
	"github.com/arloliu/kmsg/format"
	"github.com/arloliu/kmsg/message"
)

// NewMessage creates a message holding value.
//
// Parameters:
//   - value: The message value, nil for an absent value
//   - opts: Optional configuration (see message.Option)
//
// Available options:
//   - message.WithKey(key)
//   - message.WithTimestamp(ms) / message.WithTime(t)
//   - message.WithCodec(format.CodecID)
//   - message.WithOffset(offset)
//   - message.WithCreateTime(t)
//
// Returns errs.ErrInvalidCodecID if the codec id does not fit into the attributes byte.
func NewMessage(value []byte, opts ...message.Option) (*message.Message, error) {
	return message.New(value, opts...)
}

// Encode returns the framed wire encoding of msg.
func Encode(msg *message.Message) ([]byte, error) {
	return msg.Bytes()
}

// Decode decodes data holding exactly one framed message.
//
// Returns:
//   - *message.Message: The decoded message; its key and value do not alias data.
//   - error: errs.ErrMalformedBuffer, errs.ErrUnsupportedFormatVersion or
//     errs.ErrChecksumMismatch, wrapped with the failing field.
//
// Example:
//
//	msg, err := kmsg.Decode(data)
//	if errors.Is(err, errs.ErrChecksumMismatch) {
//	    // corrupted in transit
//	}
func Decode(data []byte, opts ...message.DecodeOption) (*message.Message, error) {
	return message.Parse(data, opts...)
}

// DecodeMessageSet decodes data as a sequence of framed messages.
//
// Pass message.WithPartialTrailing() for fetch responses, which may end in
// a truncated message.
func DecodeMessageSet(data []byte, opts ...message.DecodeOption) (*message.MessageSet, error) {
	return message.ParseMessageSet(data, opts...)
}

// Compress wraps msgs into a single message whose value is the message set
// compressed with codec.
//
// Example:
//
//	wrapper, err := kmsg.Compress(format.CodecLZ4, msgs,
//	    message.WithWrapTimestamp(time.Now().UnixMilli()),
//	)
func Compress(codec format.CodecID, msgs []*message.Message, opts ...message.WrapOption) (*message.Message, error) {
	return message.Wrap(codec, msgs, opts...)
}

// CompressWithStats is like Compress and also reports the size of the message
// set before and after compression.
func CompressWithStats(codec format.CodecID, msgs []*message.Message, opts ...message.WrapOption) (*message.Message, compress.Stats, error) {
	wrapper, err := message.Wrap(codec, msgs, opts...)
	if err != nil {
		return nil, compress.Stats{}, err
	}

	set := message.MessageSet{Messages: msgs}
	stats := compress.Stats{
		Codec:          codec,
		OriginalSize:   int64(set.EncodedSize()),
		CompressedSize: int64(len(wrapper.Value())),
	}

	return wrapper, stats, nil
}

// Decompress returns the members of a compressed message. Members that are
// compressed themselves are returned as they are; see message.MessageSet.Flatten.
func Decompress(wrapper *message.Message, opts ...message.DecodeOption) ([]*message.Message, error) {
	return wrapper.Decompress(opts...)
}

// Package wire provides the binary reader and writer the message codec is
// written against.
//
// PacketEncoder and PacketDecoder follow the primitive layout of the broker
// protocol: big-endian fixed-width integers and int32 length-prefixed byte
// fields where a length of -1 encodes an absent (nil) value. Encoder and
// Decoder are the slice-backed implementations; callers with their own
// framing can supply any type that satisfies the interfaces.
package wire

// PacketEncoder writes protocol primitives to a destination.
type PacketEncoder interface {
	PutInt8(in int8)
	PutInt32(in int32)
	PutInt64(in int64)
	// PutBytes writes a nullable length-prefixed byte field. A nil slice is
	// written as length -1, an empty non-nil slice as length 0.
	PutBytes(in []byte) error
	// PutRawBytes writes in without a length prefix.
	PutRawBytes(in []byte)
}

// PacketDecoder reads protocol primitives from a source.
type PacketDecoder interface {
	Int8() (int8, error)
	Int32() (int32, error)
	Int64() (int64, error)
	// Bytes reads a nullable length-prefixed byte field. Length -1 yields nil,
	// length 0 yields an empty non-nil slice.
	Bytes() ([]byte, error)
	// RawBytes reads exactly length bytes without a prefix.
	RawBytes(length int) ([]byte, error)
	// Remaining returns the number of unread bytes.
	Remaining() int
}

// NullLength is the length prefix of an absent byte field.
const NullLength int32 = -1

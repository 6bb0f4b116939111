// Package message implements the v0/v1 message codec of the log broker protocol.
//
// # Wire Format
//
// All integers are big-endian. A byte field is an int32 length followed by
// that many bytes; length -1 encodes an absent (nil) field.
//
//	FramedMessage := Offset:int64 Size:int32 Payload
//	Payload       := Crc:int32 Body
//	Body (v0)     := Magic:int8(=0) Attributes:int8 Key:Bytes Value:Bytes
//	Body (v1)     := Magic:int8(=1) Attributes:int8 Timestamp:int64 Key:Bytes Value:Bytes
//
// The CRC-32 covers the body only, never the offset or size. The low three
// bits of Attributes hold the compression codec id; the other bits are
// written as zero and ignored on read. The magic byte is derived from the
// message: v1 when a timestamp is present, v0 otherwise.
//
// # Compressed Messages
//
// A message with a non-zero codec id is a wrapper: its value is a complete
// message set compressed by that codec. Wrap builds one, Decompress opens one
// and MessageSet.Flatten expands every wrapper of a set recursively.
//
//	wrapper, err := message.Wrap(format.CodecZstd, msgs)
//	...
//	members, err := wrapper.Decompress()
//
// # Errors
//
// Decoding never returns a partially populated message. Failures are reported
// with the sentinels of package errs, wrapped with the offset of the message
// involved; use errors.Is to classify them.
package message

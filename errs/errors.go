// Package errs defines the sentinel errors returned by the kmsg packages.
//
// Errors are usually wrapped with context via fmt.Errorf, so callers should
// compare with errors.Is instead of ==.
package errs

import (
	"errors"
	"fmt"
)

// Decode errors.
var (
	// ErrMalformedBuffer is returned when the input is shorter than a field declares,
	// a length is negative where absence is not allowed, or bytes are left over.
	ErrMalformedBuffer = errors.New("malformed buffer")
	// ErrInsufficientData is returned when a read runs past the end of the input.
	// It wraps ErrMalformedBuffer.
	ErrInsufficientData = fmt.Errorf("%w: insufficient data", ErrMalformedBuffer)
	// ErrUnsupportedFormatVersion is returned when the magic byte is neither 0 nor 1.
	ErrUnsupportedFormatVersion = errors.New("unsupported message format version")
	// ErrChecksumMismatch is returned when the stored CRC does not match the message body.
	ErrChecksumMismatch = errors.New("message checksum mismatch")
	// ErrMessageTooLarge is returned when the first message of a partial message set is truncated.
	ErrMessageTooLarge = errors.New("message is larger than the fetched buffer")
)

// Compression errors.
var (
	// ErrUnknownCodec is returned when no codec is registered for a codec id.
	ErrUnknownCodec = errors.New("unknown compression codec")
	// ErrNotCompressed is returned when a compression operation is requested for codec id 0.
	ErrNotCompressed = errors.New("message is not compressed")
	// ErrDecompressFailed is returned when a codec fails to decompress a message value.
	ErrDecompressFailed = errors.New("decompression failed")
	// ErrDecompressedTooLarge is returned when decompressed data exceeds the size limit.
	ErrDecompressedTooLarge = errors.New("decompressed data exceeds size limit")
	// ErrNestedDecode is returned when a member of a decompressed message set fails to decode.
	ErrNestedDecode = errors.New("nested message set decode failed")
	// ErrCodecRequiresTimestamp is returned when wrapping with a codec that needs format v1
	// into a wrapper without a timestamp.
	ErrCodecRequiresTimestamp = errors.New("codec requires a v1 wrapper with timestamp")
	// ErrCodecAlreadyRegistered is returned when registering a codec id twice.
	ErrCodecAlreadyRegistered = errors.New("codec already registered")
)

// Encode errors.
var (
	// ErrInvalidCodecID is returned when a codec id does not fit into three bits.
	ErrInvalidCodecID = errors.New("invalid codec id")
	// ErrEmptyMessageSet is returned when wrapping an empty message set.
	ErrEmptyMessageSet = errors.New("message set is empty")
	// ErrBytesTooLong is returned when a byte field is longer than an int32 length can express.
	ErrBytesTooLong = errors.New("byte field too long")
)

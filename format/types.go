package format

import (
	"fmt"
	"strconv"
	"strings"
)

type (
	// CodecID identifies the compression codec that produced a message value.
	// It occupies the three least significant bits of the attributes byte.
	CodecID uint8
	// Magic is the message format version byte.
	Magic int8
)

const (
	CodecNone   CodecID = 0x0 // CodecNone represents an uncompressed message.
	CodecGzip   CodecID = 0x1 // CodecGzip represents gzip compression.
	CodecSnappy CodecID = 0x2 // CodecSnappy represents Snappy compression.
	CodecLZ4    CodecID = 0x3 // CodecLZ4 represents LZ4 frame compression.
	CodecZstd   CodecID = 0x4 // CodecZstd represents Zstandard compression.

	MagicV0 Magic = 0 // MagicV0 is the format without a timestamp field.
	MagicV1 Magic = 1 // MagicV1 is the format with an int64 timestamp after the attributes.
)

const (
	// CodecMask selects the codec id bits (bit 0-2) of the attributes byte.
	CodecMask = 0x07
	// ReservedAttributesMask covers bit 3-7 of the attributes byte, which must be zero on encode.
	ReservedAttributesMask = 0xF8
	// MaxCodecID is the largest codec id that fits into the attributes byte.
	MaxCodecID CodecID = CodecMask
)

// Valid reports whether the codec id fits into the attributes byte.
func (c CodecID) Valid() bool {
	return c <= MaxCodecID
}

func (c CodecID) String() string {
	switch c {
	case CodecNone:
		return "None"
	case CodecGzip:
		return "Gzip"
	case CodecSnappy:
		return "Snappy"
	case CodecLZ4:
		return "LZ4"
	case CodecZstd:
		return "Zstd"
	default:
		return "Unknown"
	}
}

// ParseCodecID parses a codec name as printed by CodecID.String, case-insensitively,
// or a numeric id in 0-7.
func ParseCodecID(name string) (CodecID, error) {
	name = strings.TrimSpace(name)
	switch strings.ToLower(name) {
	case "none":
		return CodecNone, nil
	case "gzip":
		return CodecGzip, nil
	case "snappy":
		return CodecSnappy, nil
	case "lz4":
		return CodecLZ4, nil
	case "zstd":
		return CodecZstd, nil
	}

	id, err := strconv.ParseUint(name, 10, 8)
	if err != nil || !CodecID(id).Valid() {
		return 0, fmt.Errorf("unknown codec %q", name)
	}

	return CodecID(id), nil
}

// Valid reports whether the magic byte is a supported format version.
func (m Magic) Valid() bool {
	return m == MagicV0 || m == MagicV1
}

// HasTimestamp reports whether messages of this version carry a timestamp field.
func (m Magic) HasTimestamp() bool {
	return m == MagicV1
}

// Attributes packs a codec id into an attributes byte with all reserved bits cleared.
func Attributes(codec CodecID) int8 {
	return int8(uint8(codec) & CodecMask)
}

// CodecFromAttributes extracts the codec id from an attributes byte, ignoring reserved bits.
func CodecFromAttributes(attributes int8) CodecID {
	return CodecID(uint8(attributes) & CodecMask)
}

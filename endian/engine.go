// Package endian provides byte order utilities for the message wire format.
//
// The protocol uses network byte order throughout, so the codec always
// runs on GetBigEndianEngine(). The EndianEngine interface combines
// binary.ByteOrder and binary.AppendByteOrder so encoders can append
// fixed-width integers without scratch buffers:
//
//	engine := endian.GetBigEndianEngine()
//	buf = engine.AppendUint32(buf, uint32(length))
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetBigEndianEngine returns the big-endian (network byte order) engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// GetLittleEndianEngine returns the little-endian engine, used for zstd frame headers.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// WireEngine returns the engine used by the message wire format.
func WireEngine() EndianEngine {
	return GetBigEndianEngine()
}

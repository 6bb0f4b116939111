package wire

import (
	"fmt"

	"github.com/arloliu/kmsg/endian"
	"github.com/arloliu/kmsg/errs"
)

// Decoder is a PacketDecoder over an in-memory byte slice.
//
// Byte fields returned by Bytes and RawBytes alias the input slice.
type Decoder struct {
	data   []byte
	off    int
	engine endian.EndianEngine
}

var _ PacketDecoder = (*Decoder)(nil)

// NewDecoder creates a decoder positioned at the start of data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{
		data:   data,
		engine: endian.WireEngine(),
	}
}

func (d *Decoder) Int8() (int8, error) {
	if err := d.need(1); err != nil {
		return 0, err
	}
	v := int8(d.data[d.off])
	d.off++

	return v, nil
}

func (d *Decoder) Int32() (int32, error) {
	if err := d.need(4); err != nil {
		return 0, err
	}
	v := int32(d.engine.Uint32(d.data[d.off:]))
	d.off += 4

	return v, nil
}

func (d *Decoder) Int64() (int64, error) {
	if err := d.need(8); err != nil {
		return 0, err
	}
	v := int64(d.engine.Uint64(d.data[d.off:]))
	d.off += 8

	return v, nil
}

func (d *Decoder) Bytes() ([]byte, error) {
	length, err := d.Int32()
	if err != nil {
		return nil, err
	}

	switch {
	case length == NullLength:
		return nil, nil
	case length < NullLength:
		return nil, fmt.Errorf("%w: invalid byte field length %d", errs.ErrMalformedBuffer, length)
	}

	return d.RawBytes(int(length))
}

func (d *Decoder) RawBytes(length int) ([]byte, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: invalid raw length %d", errs.ErrMalformedBuffer, length)
	}
	if err := d.need(length); err != nil {
		return nil, err
	}
	v := d.data[d.off : d.off+length : d.off+length]
	d.off += length

	return v, nil
}

func (d *Decoder) Remaining() int {
	return len(d.data) - d.off
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int {
	return d.off
}

func (d *Decoder) need(n int) error {
	if d.Remaining() < n {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", errs.ErrInsufficientData, n, d.off, d.Remaining())
	}

	return nil
}

package wire

import (
	"fmt"
	"math"

	"github.com/arloliu/kmsg/endian"
	"github.com/arloliu/kmsg/errs"
	"github.com/arloliu/kmsg/internal/pool"
)

// Encoder is a PacketEncoder that appends to a ByteBuffer.
type Encoder struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
}

var _ PacketEncoder = (*Encoder)(nil)

// NewEncoder creates an encoder that appends to buf.
func NewEncoder(buf *pool.ByteBuffer) *Encoder {
	return &Encoder{
		buf:    buf,
		engine: endian.WireEngine(),
	}
}

// NewEncoderSize creates an encoder over a new buffer with the given initial capacity.
func NewEncoderSize(size int) *Encoder {
	return NewEncoder(pool.NewByteBuffer(size))
}

func (e *Encoder) PutInt8(in int8) {
	e.buf.B = append(e.buf.B, byte(in))
}

func (e *Encoder) PutInt32(in int32) {
	e.buf.B = e.engine.AppendUint32(e.buf.B, uint32(in))
}

func (e *Encoder) PutInt64(in int64) {
	e.buf.B = e.engine.AppendUint64(e.buf.B, uint64(in))
}

func (e *Encoder) PutBytes(in []byte) error {
	if in == nil {
		e.PutInt32(NullLength)
		return nil
	}
	if len(in) > math.MaxInt32 {
		return fmt.Errorf("%w: %d bytes", errs.ErrBytesTooLong, len(in))
	}

	e.buf.Grow(4 + len(in))
	e.PutInt32(int32(len(in)))
	e.buf.B = append(e.buf.B, in...)

	return nil
}

func (e *Encoder) PutRawBytes(in []byte) {
	e.buf.B = append(e.buf.B, in...)
}

// Bytes returns the encoded bytes. The slice aliases the underlying buffer.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Len returns the number of encoded bytes.
func (e *Encoder) Len() int {
	return e.buf.Len()
}

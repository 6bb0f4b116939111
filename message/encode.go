package message

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/arloliu/kmsg/errs"
	"github.com/arloliu/kmsg/format"
	"github.com/arloliu/kmsg/internal/pool"
	"github.com/arloliu/kmsg/wire"
)

// Checksum returns the CRC-32 (IEEE) of a message body, the bytes from the
// magic byte through the end of the value.
func Checksum(body []byte) uint32 {
	return crc32.ChecksumIEEE(body)
}

// bodySize returns the size of the body: magic byte through value.
func (m *Message) bodySize() int {
	size := MagicSize + AttributesSize + 2*LengthSize + len(m.key) + len(m.value)
	if m.hasTimestamp {
		size += TimestampSize
	}

	return size
}

// EncodedSize returns the number of bytes Encode writes, framing included.
func (m *Message) EncodedSize() int {
	return LogOverhead + CRCSize + m.bodySize()
}

// appendBody serializes magic byte, attributes, optional timestamp, key and value.
func (m *Message) appendBody(buf *pool.ByteBuffer) error {
	buf.Grow(m.bodySize())

	e := wire.NewEncoder(buf)
	e.PutInt8(int8(m.Magic()))
	e.PutInt8(format.Attributes(m.codec))
	if m.hasTimestamp {
		e.PutInt64(m.timestamp)
	}
	if err := e.PutBytes(m.key); err != nil {
		return fmt.Errorf("encode key: %w", err)
	}
	if err := e.PutBytes(m.value); err != nil {
		return fmt.Errorf("encode value: %w", err)
	}

	return nil
}

// Body returns the checksummed body bytes of the message.
func (m *Message) Body() ([]byte, error) {
	buf := pool.GetMessageBuffer()
	defer pool.PutMessageBuffer(buf)

	if err := m.appendBody(buf); err != nil {
		return nil, err
	}

	return bytes.Clone(buf.Bytes()), nil
}

// Encode writes the framed message to e:
//
//	offset:int64 size:int32 crc:int32 magic:int8 attributes:int8 [timestamp:int64] key:bytes value:bytes
//
// The output is deterministic and the message is not modified.
func (m *Message) Encode(e wire.PacketEncoder) error {
	buf := pool.GetMessageBuffer()
	defer pool.PutMessageBuffer(buf)

	if err := m.appendBody(buf); err != nil {
		return err
	}

	body := buf.Bytes()
	if len(body) > math.MaxInt32-CRCSize {
		return fmt.Errorf("%w: message payload of %d bytes", errs.ErrBytesTooLong, CRCSize+len(body))
	}

	e.PutInt64(m.offset)
	e.PutInt32(int32(CRCSize + len(body)))
	e.PutInt32(int32(Checksum(body)))
	e.PutRawBytes(body)

	return nil
}

// Bytes returns the framed encoding of the message.
func (m *Message) Bytes() ([]byte, error) {
	e := wire.NewEncoderSize(m.EncodedSize())
	if err := m.Encode(e); err != nil {
		return nil, err
	}

	return e.Bytes(), nil
}

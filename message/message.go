package message

import (
	"bytes"
	"fmt"
	"time"

	"github.com/arloliu/kmsg/errs"
	"github.com/arloliu/kmsg/format"
	"github.com/arloliu/kmsg/internal/options"
)

// OffsetUnassigned is the offset of a message that has not been written to a log yet.
const OffsetUnassigned int64 = -1

// Field sizes of the framed message layout.
const (
	OffsetSize     = 8
	SizeFieldSize  = 4
	CRCSize        = 4
	MagicSize      = 1
	AttributesSize = 1
	TimestampSize  = 8
	LengthSize     = 4

	// LogOverhead is the size of the offset and size fields framing each message.
	LogOverhead = OffsetSize + SizeFieldSize
	// HeaderSizeV0 is the payload size of a v0 message with absent key and value.
	HeaderSizeV0 = CRCSize + MagicSize + AttributesSize + 2*LengthSize
	// HeaderSizeV1 is the payload size of a v1 message with absent key and value.
	HeaderSizeV1 = HeaderSizeV0 + TimestampSize
)

// Message is a single record of the v0/v1 message format.
//
// A Message is immutable once constructed. Key and value slices passed to New
// are retained, not copied, and must not be modified afterwards.
type Message struct {
	key          []byte
	value        []byte
	codec        format.CodecID
	offset       int64
	timestamp    int64
	hasTimestamp bool
	createTime   time.Time
	crc          uint32
}

// Option configures a Message built by New.
type Option = options.Option[*Message]

// WithKey sets the message key. A nil key is absent, an empty key is present but empty.
func WithKey(key []byte) Option {
	return options.NoError(func(m *Message) {
		m.key = key
	})
}

// WithTimestamp sets the timestamp in milliseconds, which selects format v1.
func WithTimestamp(ts int64) Option {
	return options.NoError(func(m *Message) {
		m.timestamp = ts
		m.hasTimestamp = true
	})
}

// WithTime sets the timestamp from t, truncated to milliseconds.
func WithTime(t time.Time) Option {
	return WithTimestamp(t.UnixMilli())
}

// WithCodec marks the value as produced by the given compression codec.
//
// Returns errs.ErrInvalidCodecID if codec does not fit into three bits.
func WithCodec(codec format.CodecID) Option {
	return options.New(func(m *Message) error {
		if !codec.Valid() {
			return fmt.Errorf("%w: %d", errs.ErrInvalidCodecID, codec)
		}
		m.codec = codec

		return nil
	})
}

// WithOffset sets the log offset. Defaults to OffsetUnassigned.
func WithOffset(offset int64) Option {
	return options.NoError(func(m *Message) {
		m.offset = offset
	})
}

// WithCreateTime overrides the local creation time, which defaults to time.Now().
func WithCreateTime(t time.Time) Option {
	return options.NoError(func(m *Message) {
		m.createTime = t
	})
}

// New creates a message holding value. A nil value is absent.
//
// Example:
//
//	msg, err := message.New([]byte("payload"),
//	    message.WithKey([]byte("user-42")),
//	    message.WithTimestamp(time.Now().UnixMilli()),
//	)
func New(value []byte, opts ...Option) (*Message, error) {
	m := &Message{
		value:      value,
		offset:     OffsetUnassigned,
		createTime: time.Now(),
	}
	if err := options.Apply(m, opts...); err != nil {
		return nil, err
	}

	return m, nil
}

// Key returns the key, or nil if absent.
func (m *Message) Key() []byte {
	return m.key
}

// Value returns the value, or nil if absent.
func (m *Message) Value() []byte {
	return m.value
}

// CodecID returns the compression codec of the value.
func (m *Message) CodecID() format.CodecID {
	return m.codec
}

// Offset returns the log offset, OffsetUnassigned for fresh messages.
func (m *Message) Offset() int64 {
	return m.offset
}

// Timestamp returns the timestamp in milliseconds and whether it is present.
func (m *Message) Timestamp() (int64, bool) {
	return m.timestamp, m.hasTimestamp
}

// CreateTime returns the local time the message value was created.
// It is not transmitted; decoded messages carry their decode time.
func (m *Message) CreateTime() time.Time {
	return m.createTime
}

// CRC returns the checksum read from the wire. It is zero for messages built by New.
func (m *Message) CRC() uint32 {
	return m.crc
}

// Magic returns the format version the message encodes with.
func (m *Message) Magic() format.Magic {
	if m.hasTimestamp {
		return format.MagicV1
	}

	return format.MagicV0
}

// Compressed reports whether the value holds a compressed message set.
func (m *Message) Compressed() bool {
	return m.codec != format.CodecNone
}

// ByteSize returns len(key) + len(value); absent fields count as zero.
func (m *Message) ByteSize() int {
	return len(m.key) + len(m.value)
}

// Equal reports whether m and other have the same key, value, codec, offset
// and timestamp. Absent and empty byte fields are different. Create time and
// CRC are not compared.
func (m *Message) Equal(other *Message) bool {
	if m == nil || other == nil {
		return m == other
	}

	return equalNullable(m.key, other.key) &&
		equalNullable(m.value, other.value) &&
		m.codec == other.codec &&
		m.offset == other.offset &&
		m.hasTimestamp == other.hasTimestamp &&
		(!m.hasTimestamp || m.timestamp == other.timestamp)
}

func (m *Message) String() string {
	ts := "none"
	if m.hasTimestamp {
		ts = fmt.Sprint(m.timestamp)
	}

	return fmt.Sprintf("Message{offset=%d magic=%d codec=%s timestamp=%s key=%s value=%s}",
		m.offset, m.Magic(), m.codec, ts, fieldLen(m.key), fieldLen(m.value))
}

func equalNullable(a, b []byte) bool {
	if (a == nil) != (b == nil) {
		return false
	}

	return bytes.Equal(a, b)
}

func fieldLen(b []byte) string {
	if b == nil {
		return "null"
	}

	return fmt.Sprintf("%dB", len(b))
}

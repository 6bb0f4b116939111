package pool

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(128)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, 128, bb.Cap())
}

func TestByteBuffer_WriteAndReset(t *testing.T) {
	bb := NewByteBuffer(MessageBufferDefaultSize)

	n, err := bb.Write([]byte("offset"))
	require.NoError(t, err)
	require.Equal(t, 6, n)
	_, _ = bb.Write([]byte("+payload"))
	assert.Equal(t, []byte("offset+payload"), bb.Bytes())

	capBefore := bb.Cap()
	bb.Reset()
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, capBefore, bb.Cap(), "Reset should preserve capacity")
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(16)
	_, _ = bb.Write([]byte{0, 1, 2, 3})

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(4), n)
	require.Equal(t, []byte{0, 1, 2, 3}, out.Bytes())
}

func TestByteBuffer_Grow(t *testing.T) {
	t.Run("Sufficient capacity", func(t *testing.T) {
		bb := NewByteBuffer(64)
		bb.Grow(32)
		assert.Equal(t, 64, bb.Cap())
	})

	t.Run("Small buffer grows by default size", func(t *testing.T) {
		bb := NewByteBuffer(8)
		_, _ = bb.Write(make([]byte, 8))
		bb.Grow(1)
		assert.Equal(t, 8+MessageBufferDefaultSize, bb.Cap())
	})

	t.Run("Large buffer grows by a quarter", func(t *testing.T) {
		size := 8 * MessageBufferDefaultSize
		bb := NewByteBuffer(size)
		_, _ = bb.Write(make([]byte, size))
		bb.Grow(1)
		assert.Equal(t, size+size/4, bb.Cap())
	})

	t.Run("Requirement above growth step", func(t *testing.T) {
		bb := NewByteBuffer(0)
		bb.Grow(10 * MessageBufferDefaultSize)
		assert.GreaterOrEqual(t, bb.Cap(), 10*MessageBufferDefaultSize)
	})

	t.Run("Preserves data", func(t *testing.T) {
		bb := NewByteBuffer(4)
		_, _ = bb.Write([]byte("abcd"))
		bb.Grow(100)
		assert.Equal(t, []byte("abcd"), bb.Bytes())
	})
}

func TestByteBufferPool(t *testing.T) {
	t.Run("Put nil is a no-op", func(t *testing.T) {
		PutMessageBuffer(nil)
	})

	t.Run("Returned buffers are empty", func(t *testing.T) {
		bb := GetMessageBuffer()
		_, _ = bb.Write([]byte("stale"))
		PutMessageBuffer(bb)

		again := GetMessageBuffer()
		assert.Equal(t, 0, again.Len())
		PutMessageBuffer(again)
	})

	t.Run("New buffers use the default size", func(t *testing.T) {
		p := NewByteBufferPool(4096, 0)
		bb := p.Get()
		assert.Equal(t, 4096, bb.Cap())
	})

	t.Run("Oversized buffers are discarded", func(t *testing.T) {
		p := NewByteBufferPool(16, 32)
		bb := p.Get()
		bb.Grow(1024)
		p.Put(bb)

		fresh := p.Get()
		assert.Equal(t, 16, fresh.Cap())
	})

	t.Run("Concurrent access", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := range 16 {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				for range 100 {
					bb := GetMessageBuffer()
					_, _ = bb.Write([]byte{byte(id)})
					if bb.Len() != 1 {
						t.Errorf("unexpected length %d", bb.Len())
					}
					PutMessageBuffer(bb)
				}
			}(i)
		}
		wg.Wait()
	})
}

package compress

import (
	"bytes"
	"encoding/binary"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/arloliu/kmsg/errs"
	"github.com/arloliu/kmsg/format"
	"github.com/stretchr/testify/require"
)

func randomBytes(n int, seed uint64) []byte {
	r := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(r.Uint32())
	}

	return b
}

func testInputs() map[string][]byte {
	return map[string][]byte{
		"single byte": {0x42},
		"short text":  []byte("hello, message set"),
		"repetitive":  bytes.Repeat([]byte("key=value;"), 20000),
		"random":      randomBytes(70000, 7),
	}
}

func TestBuiltinCodecs_RoundTrip(t *testing.T) {
	for _, id := range []format.CodecID{format.CodecNone, format.CodecGzip, format.CodecSnappy, format.CodecLZ4, format.CodecZstd} {
		codec, err := CreateCodec(id)
		require.NoError(t, err)

		for name, input := range testInputs() {
			t.Run(id.String()+"/"+name, func(t *testing.T) {
				compressed, err := codec.Compress(input)
				require.NoError(t, err)

				decompressed, err := codec.Decompress(compressed)
				require.NoError(t, err)
				require.Equal(t, input, decompressed)
			})
		}
	}
}

func TestBuiltinCodecs_EmptyInput(t *testing.T) {
	for _, id := range []format.CodecID{format.CodecGzip, format.CodecSnappy, format.CodecLZ4, format.CodecZstd} {
		t.Run(id.String(), func(t *testing.T) {
			codec, err := CreateCodec(id)
			require.NoError(t, err)

			compressed, err := codec.Compress(nil)
			require.NoError(t, err)
			require.Nil(t, compressed)

			decompressed, err := codec.Decompress([]byte{})
			require.NoError(t, err)
			require.Nil(t, decompressed)
		})
	}
}

func TestBuiltinCodecs_Compresses(t *testing.T) {
	input := bytes.Repeat([]byte("abcdefgh"), 4096)

	for _, id := range []format.CodecID{format.CodecGzip, format.CodecSnappy, format.CodecLZ4, format.CodecZstd} {
		t.Run(id.String(), func(t *testing.T) {
			codec, err := CreateCodec(id)
			require.NoError(t, err)

			compressed, err := codec.Compress(input)
			require.NoError(t, err)

			stats := Stats{Codec: id, OriginalSize: int64(len(input)), CompressedSize: int64(len(compressed))}
			require.Less(t, stats.CompressionRatio(), 0.5)
			require.Greater(t, stats.SpaceSavings(), 50.0)
		})
	}
}

func TestBuiltinCodecs_CorruptInput(t *testing.T) {
	garbage := []byte("definitely not a compressed stream of any kind")

	for _, id := range []format.CodecID{format.CodecGzip, format.CodecLZ4, format.CodecZstd} {
		t.Run(id.String(), func(t *testing.T) {
			codec, err := CreateCodec(id)
			require.NoError(t, err)

			_, err = codec.Decompress(garbage)
			require.Error(t, err)
		})
	}

	t.Run("Snappy", func(t *testing.T) {
		codec := NewSnappyCodec()
		// varint length header claims far more data than present
		_, err := codec.Decompress([]byte{0xFF, 0xFF, 0x03, 0x00, 0x01})
		require.Error(t, err)
	})
}

func TestBuiltinCodecs_MaxDecompressedSize(t *testing.T) {
	input := make([]byte, 8192)
	limit := WithMaxDecompressedSize(1024)

	for _, id := range []format.CodecID{format.CodecGzip, format.CodecSnappy, format.CodecLZ4} {
		t.Run(id.String(), func(t *testing.T) {
			unlimited, err := CreateCodec(id)
			require.NoError(t, err)
			limited, err := CreateCodec(id, limit)
			require.NoError(t, err)

			compressed, err := unlimited.Compress(input)
			require.NoError(t, err)

			_, err = limited.Decompress(compressed)
			require.ErrorIs(t, err, errs.ErrDecompressedTooLarge)

			out, err := limited.Decompress(mustCompress(t, unlimited, input[:1024]))
			require.NoError(t, err)
			require.Len(t, out, 1024)
		})
	}

	t.Run("Zstd", func(t *testing.T) {
		compressed, err := NewZstdCodec().Compress(input)
		require.NoError(t, err)

		_, err = NewZstdCodec(limit).Decompress(compressed)
		require.ErrorIs(t, err, errs.ErrDecompressedTooLarge)
	})

	t.Run("Zstd declared size", func(t *testing.T) {
		// 16 byte frame announcing 1GiB of content
		frame := forgedZstdFrame(1 << 30)
		require.Len(t, frame, 16)

		out, err := NewZstdCodec(WithMaxDecompressedSize(1 << 20)).Decompress(frame)
		require.ErrorIs(t, err, errs.ErrDecompressedTooLarge)
		require.Nil(t, out)
	})
}

// forgedZstdFrame builds a single-segment frame header declaring contentSize
// bytes, followed by one empty last raw block.
func forgedZstdFrame(contentSize uint64) []byte {
	frame := []byte{0x28, 0xB5, 0x2F, 0xFD, 0xE0}
	frame = binary.LittleEndian.AppendUint64(frame, contentSize)

	return append(frame, 0x01, 0x00, 0x00)
}

func TestZstdFrameContentSize(t *testing.T) {
	magic := []byte{0x28, 0xB5, 0x2F, 0xFD}
	frame := func(tail ...byte) []byte {
		return append(append([]byte(nil), magic...), tail...)
	}

	tests := []struct {
		name   string
		data   []byte
		want   uint64
		wantOK bool
	}{
		{"8 byte size", forgedZstdFrame(1 << 30), 1 << 30, true},
		{"single segment 1 byte size", frame(0x20, 0x7F), 0x7F, true},
		{"2 byte size with window", frame(0x40, 0x00, 0x10, 0x00), 0x10 + 256, true},
		{"4 byte size with dictionary id", frame(0xA1, 0x09, 0x00, 0x00, 0x01, 0x00), 1 << 16, true},
		{"no size", frame(0x00, 0x00), 0, false},
		{"truncated header", frame(0xC0, 0x00, 0x01), 0, false},
		{"not a frame", []byte("plain text"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := zstdFrameContentSize(tt.data)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.want, got)
		})
	}

	t.Run("Encoder output", func(t *testing.T) {
		input := bytes.Repeat([]byte("z"), 5000)
		compressed, err := NewZstdCodec().Compress(input)
		require.NoError(t, err)

		if size, ok := zstdFrameContentSize(compressed); ok {
			require.Equal(t, uint64(len(input)), size)
		}
	})
}

func mustCompress(t *testing.T, c Codec, data []byte) []byte {
	t.Helper()
	out, err := c.Compress(data)
	require.NoError(t, err)

	return out
}

func TestSnappyCodec_Xerial(t *testing.T) {
	input := randomBytes(3*xerialBlockSize+123, 11)

	t.Run("Framed output round trips", func(t *testing.T) {
		codec := NewSnappyCodec(WithXerialFraming())
		compressed, err := codec.Compress(input)
		require.NoError(t, err)
		require.True(t, bytes.HasPrefix(compressed, xerialMagic))

		// the plain codec detects the framing on its own
		decompressed, err := NewSnappyCodec().Decompress(compressed)
		require.NoError(t, err)
		require.Equal(t, input, decompressed)
	})

	t.Run("Raw block is not framed", func(t *testing.T) {
		compressed, err := NewSnappyCodec().Compress(input)
		require.NoError(t, err)
		require.False(t, bytes.HasPrefix(compressed, xerialMagic))
	})

	t.Run("Truncated chunk", func(t *testing.T) {
		compressed, err := NewSnappyCodec(WithXerialFraming()).Compress(input)
		require.NoError(t, err)

		_, err = NewSnappyCodec().Decompress(compressed[:len(compressed)-10])
		require.Error(t, err)

		_, err = NewSnappyCodec().Decompress(compressed[:xerialHeaderLen+2])
		require.Error(t, err)
	})

	t.Run("Size limit spans chunks", func(t *testing.T) {
		compressed, err := NewSnappyCodec(WithXerialFraming()).Compress(make([]byte, 2*xerialBlockSize))
		require.NoError(t, err)

		_, err = NewSnappyCodec(WithMaxDecompressedSize(xerialBlockSize + 1)).Decompress(compressed)
		require.ErrorIs(t, err, errs.ErrDecompressedTooLarge)
	})
}

func TestCodecLevels(t *testing.T) {
	input := bytes.Repeat([]byte("level"), 1000)

	for _, level := range []int{-100, 1, 9, 100} {
		gz := NewGzipCodec(WithLevel(level))
		out, err := gz.Decompress(mustCompress(t, gz, input))
		require.NoError(t, err)
		require.Equal(t, input, out)
	}

	for _, level := range []int{0, 1, 19, 40} {
		zc := NewZstdCodec(WithLevel(level))
		out, err := zc.Decompress(mustCompress(t, zc, input))
		require.NoError(t, err)
		require.Equal(t, input, out)
	}
}

func TestCreateCodec_Unknown(t *testing.T) {
	for _, id := range []format.CodecID{5, 6, 7, 42} {
		_, err := CreateCodec(id)
		require.ErrorIs(t, err, errs.ErrUnknownCodec)
	}
}

func TestRegistry(t *testing.T) {
	t.Run("Default registry holds built-ins", func(t *testing.T) {
		require.Equal(t,
			[]format.CodecID{format.CodecNone, format.CodecGzip, format.CodecSnappy, format.CodecLZ4, format.CodecZstd},
			DefaultRegistry().IDs())

		codec, err := FindCodec(format.CodecLZ4)
		require.NoError(t, err)
		require.IsType(t, LZ4Codec{}, codec)
	})

	t.Run("Unknown id", func(t *testing.T) {
		_, err := FindCodec(format.CodecID(6))
		require.ErrorIs(t, err, errs.ErrUnknownCodec)
	})

	t.Run("Register and unregister", func(t *testing.T) {
		r := NewRegistry()
		require.Empty(t, r.IDs())

		require.NoError(t, r.Register(format.CodecID(7), NewNoOpCodec()))
		require.ErrorIs(t, r.Register(format.CodecID(7), NewNoOpCodec()), errs.ErrCodecAlreadyRegistered)

		codec, err := r.Find(format.CodecID(7))
		require.NoError(t, err)
		require.Equal(t, NewNoOpCodec(), codec)

		r.Unregister(format.CodecID(7))
		_, err = r.Find(format.CodecID(7))
		require.ErrorIs(t, err, errs.ErrUnknownCodec)
	})

	t.Run("Rejects ids outside three bits", func(t *testing.T) {
		r := NewRegistry()
		require.ErrorIs(t, r.Register(format.CodecID(8), NewNoOpCodec()), errs.ErrInvalidCodecID)
	})

	t.Run("Rejects nil codec", func(t *testing.T) {
		require.Error(t, NewRegistry().Register(format.CodecID(5), nil))
	})

	t.Run("Concurrent lookups and registration", func(t *testing.T) {
		r := NewBuiltinRegistry()
		input := []byte("concurrent payload")

		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func(worker int) {
				defer wg.Done()
				for range 50 {
					codec, err := r.Find(format.CodecGzip)
					if err != nil {
						t.Errorf("find: %v", err)
						return
					}
					compressed, err := codec.Compress(input)
					if err != nil {
						t.Errorf("compress: %v", err)
						return
					}
					out, err := codec.Decompress(compressed)
					if err != nil || !bytes.Equal(out, input) {
						t.Errorf("round trip failed: %v", err)
						return
					}
				}
				if worker == 0 {
					_ = r.Register(format.CodecID(5), NewNoOpCodec())
				}
			}(i)
		}
		wg.Wait()

		_, err := r.Find(format.CodecID(5))
		require.NoError(t, err)
	})
}

func TestNoOpCodec(t *testing.T) {
	data := []byte("pass through")
	codec := NewNoOpCodec()

	out, err := codec.Compress(data)
	require.NoError(t, err)
	require.Equal(t, data, out)

	out, err = codec.Decompress(data)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestStats_EmptyInput(t *testing.T) {
	require.Zero(t, Stats{}.CompressionRatio())
	require.Equal(t, 100.0, Stats{}.SpaceSavings())
}

// Package compress provides the compression codecs of the message format and
// the registry that maps a codec id to its implementation.
//
// # Overview
//
// A compressed message is a wrapper whose value holds an encoded message set
// compressed by the codec named in the low three bits of its attributes byte.
// The message package looks codecs up by id and never depends on a concrete
// implementation, so applications can register their own.
//
// Built-in codecs:
//
//	id  codec   implementation
//	0   none    NoOpCodec (pass-through)
//	1   gzip    klauspost/compress/gzip
//	2   snappy  klauspost/compress/s2 in Snappy mode, raw block or xerial stream
//	3   lz4     pierrec/lz4/v4 frame format, 64KiB blocks
//	4   zstd    klauspost/compress/zstd, or valyala/gozstd with -tags gozstd
//
// Ids 5 to 7 fit the attributes byte but have no built-in codec; looking them
// up fails with errs.ErrUnknownCodec unless the application registers one.
//
// # Registry
//
//	codec, err := compress.FindCodec(format.CodecGzip)
//	if err != nil {
//	    return err
//	}
//	data, err := codec.Decompress(wrapper.Value())
//
// A custom registry can replace or extend the default one:
//
//	reg := compress.NewBuiltinRegistry(compress.WithMaxDecompressedSize(16 << 20))
//	_ = reg.Register(format.CodecID(5), myCodec)
//
// # Safety
//
// Decompressed output is bounded by MaxDecompressedSize (or the
// WithMaxDecompressedSize option) and fails with errs.ErrDecompressedTooLarge
// beyond it, so a small adversarial value cannot expand without limit.
//
// # Thread Safety
//
// Registry and all built-in codecs are safe for concurrent use. Codecs pool
// their encoder and decoder state with sync.Pool.
package compress

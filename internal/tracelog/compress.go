package tracelog

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
)

// Compression selects the algorithm applied to trace chunks. The zero value
// is not valid; use one of the named constants.
type Compression string

const (
	Uncompressed Compression = "none"
	Snappy       Compression = "snappy"
	Zstd         Compression = "zstd"
)

func (c Compression) valid() bool {
	switch c {
	case Uncompressed, Snappy, Zstd:
		return true
	}
	return false
}

// The compression codes stored in trace file headers.
const (
	codeUncompressed = 0
	codeSnappy       = 1
	codeZstd         = 2
)

func (c Compression) code() byte {
	switch c {
	case Snappy:
		return codeSnappy
	case Zstd:
		return codeZstd
	default:
		return codeUncompressed
	}
}

func compressionOf(code byte) (Compression, error) {
	switch code {
	case codeUncompressed:
		return Uncompressed, nil
	case codeSnappy:
		return Snappy, nil
	case codeZstd:
		return Zstd, nil
	}
	return "", fmt.Errorf("unknown compression code: %d", code)
}

var (
	zstdEncoderPool objectPool[*zstd.Encoder]
	zstdDecoderPool objectPool[*zstd.Decoder]
)

type objectPool[T any] struct {
	pool sync.Pool
}

func (p *objectPool[T]) get(newObject func() T) T {
	v, ok := p.pool.Get().(T)
	if ok {
		return v
	}
	return newObject()
}

func (p *objectPool[T]) put(obj T) {
	p.pool.Put(obj)
}

func compress(dst, src []byte, compression Compression) []byte {
	switch compression {
	case Snappy:
		return snappy.Encode(dst, src)
	case Zstd:
		enc := zstdEncoderPool.get(func() *zstd.Encoder {
			e, _ := zstd.NewWriter(nil,
				zstd.WithEncoderCRC(false),
				zstd.WithEncoderConcurrency(1),
				zstd.WithEncoderLevel(zstd.SpeedFastest),
			)
			return e
		})
		defer zstdEncoderPool.put(enc)
		return enc.EncodeAll(src, dst[:0])
	default:
		return append(dst[:0], src...)
	}
}

func decompress(dst, src []byte, compression Compression) ([]byte, error) {
	switch compression {
	case Snappy:
		return snappy.Decode(dst, src)
	case Zstd:
		dec := zstdDecoderPool.get(func() *zstd.Decoder {
			d, _ := zstd.NewReader(nil,
				zstd.IgnoreChecksum(true),
				zstd.WithDecoderConcurrency(1),
			)
			return d
		})
		defer zstdDecoderPool.put(dec)
		return dec.DecodeAll(src, dst[:0])
	case Uncompressed:
		return append(dst[:0], src...), nil
	default:
		return dst, fmt.Errorf("unknown compression format: %q", compression)
	}
}

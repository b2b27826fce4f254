// Package buffer pools the byte regions that calls are marshaled into.
// Message sizes are computed before encoding, so buffers are requested at
// their exact size and recycled across calls.
package buffer

import "sync"

// DefaultSize is the allocation granule. Regions are over-allocated to a
// multiple of it so recycled buffers satisfy most later requests.
const DefaultSize = 4096

type Buffer struct{ Data []byte }

type Pool struct{ pool sync.Pool }

func (p *Pool) Get(size int) *Buffer {
	b, _ := p.pool.Get().(*Buffer)
	if b != nil {
		if size <= cap(b.Data) {
			b.Data = b.Data[:size]
			return b
		}
		p.Put(b)
	}
	return New(size)
}

func (p *Pool) Put(b *Buffer) {
	if b != nil {
		p.pool.Put(b)
	}
}

func New(size int) *Buffer {
	return &Buffer{Data: make([]byte, size, Align(size, DefaultSize))}
}

func Align(size, to int) int {
	return ((size + (to - 1)) / to) * to
}

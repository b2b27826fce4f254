// Package wire implements the marshaling layer of the cryptosim protocol.
//
// Values cross the client/server boundary as flat byte images in the
// producer's native representation: native byte order, native widths, no
// alignment padding and no per-value type information. Compatibility between
// the two processes is established once per message by a small negotiation
// header (see PutHeader and GetHeader); a peer whose layout differs is
// detected and refused, never converted.
//
// All primitives operate on a Cursor over a caller-owned region. Encoding
// never grows the region: callers pre-size buffers with the matching *Needs
// computations. Every primitive is atomic. It either consumes or produces its
// full wire image, or fails leaving the cursor and the region untouched.
package wire

import "errors"

// The closed set of marshaling failures. Everything the codec can report is
// one of these, wrapped or not; callers dispatch with errors.Is.
var (
	// ErrShortBuffer means an encode did not fit in the remaining region.
	// The caller under-sized the buffer.
	ErrShortBuffer = errors.New("wire: short buffer")

	// ErrTruncated means a decode ran past the end of the message.
	ErrTruncated = errors.New("wire: truncated message")

	// ErrHeaderMismatch means the negotiation header was produced by an
	// incompatible peer (version, scalar widths, or byte order differ).
	ErrHeaderMismatch = errors.New("wire: incompatible header")

	// ErrTagMismatch means a tagged struct carried the wrong magic.
	ErrTagMismatch = errors.New("wire: tag mismatch")

	// ErrLengthMismatch means redundant length fields disagree, or a
	// received buffer does not have the length the caller expects.
	ErrLengthMismatch = errors.New("wire: length mismatch")

	// ErrTooLarge means a value exceeds the bounds the encoding can carry.
	ErrTooLarge = errors.New("wire: value too large")
)

// Cursor tracks a position within a caller-owned byte region. The same type
// drives both directions: encoders claim space ahead of the position, then
// fill it; decoders take bytes behind the message length. A Cursor holds no
// resources and is not safe for concurrent use.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor returns a cursor positioned at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Reset rewinds the cursor onto a new region.
func (c *Cursor) Reset(buf []byte) {
	c.buf, c.pos = buf, 0
}

// Position returns the number of bytes produced or consumed so far.
func (c *Cursor) Position() int {
	return c.pos
}

// Remaining returns the number of bytes left in the region.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// Bytes returns the prefix of the region up to the current position, which
// after encoding is the complete message. The slice aliases the region.
func (c *Cursor) Bytes() []byte {
	return c.buf[:c.pos]
}

// claim reserves the next n bytes for an encoder, or fails without moving
// when the region is too small.
func (c *Cursor) claim(n int) ([]byte, error) {
	if c.Remaining() < n {
		return nil, ErrShortBuffer
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// take consumes the next n bytes for a decoder, or fails without moving when
// the message ends first.
func (c *Cursor) take(n int) ([]byte, error) {
	if c.Remaining() < n {
		return nil, ErrTruncated
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

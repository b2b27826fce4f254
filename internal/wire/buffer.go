package wire

// BufferNeeds returns the encoded size of a flat buffer of n payload bytes.
func BufferNeeds(n int) int {
	return UintNeeds + n
}

// PutBuffer writes a length-prefixed flat buffer. A nil or empty buffer is
// written as length zero with no payload bytes; the wire does not distinguish
// the two.
func PutBuffer(c *Cursor, b []byte) error {
	out, err := c.claim(BufferNeeds(len(b)))
	if err != nil {
		return err
	}
	putWord(out[:UintNeeds], uint64(len(b)))
	copy(out[UintNeeds:], b)
	return nil
}

// getLength reads a flat-buffer length prefix and verifies that many payload
// bytes remain before the caller commits to anything.
func getLength(c *Cursor) (int, error) {
	b, err := c.take(UintNeeds)
	if err != nil {
		return 0, err
	}
	v := getWord(b)
	if v > uint64(c.Remaining()) {
		return 0, ErrTruncated
	}
	return int(v), nil
}

// GetBuffer reads a flat buffer into a fresh allocation owned by the caller.
// Length zero yields nil. The payload length is checked against the remaining
// message before anything is allocated.
func GetBuffer(c *Cursor) ([]byte, error) {
	d := *c
	length, err := getLength(&d)
	if err != nil {
		return nil, err
	}
	b, err := d.take(length)
	if err != nil {
		return nil, err
	}
	var out []byte
	if length > 0 {
		out = make([]byte, length)
		copy(out, b)
	}
	*c = d
	return out, nil
}

// GetBufferInto reads a flat buffer into dst, which the caller sized when it
// issued the request. A received length different from len(dst) fails with
// ErrLengthMismatch before a single byte is written.
func GetBufferInto(c *Cursor, dst []byte) error {
	d := *c
	b, err := d.take(UintNeeds)
	if err != nil {
		return err
	}
	if getWord(b) != uint64(len(dst)) {
		return ErrLengthMismatch
	}
	p, err := d.take(len(dst))
	if err != nil {
		return err
	}
	copy(dst, p)
	*c = d
	return nil
}

package wire

import "math"

// Tag is the 4-byte ASCII magic identifying a tagged struct type on the wire.
type Tag [4]byte

func (t Tag) String() string {
	return string(t[:])
}

// taggedFixed is the fixed leader of a tagged struct: the tag plus the
// redundant total length.
const taggedFixed = 4 + 4

// MaxTrailing is the largest trailing array PutTagged accepts. Capping it at
// half the uint32 range keeps the redundant total below from overflowing.
const MaxTrailing = math.MaxUint32 / 2

// TaggedNeeds returns the encoded size of a tagged struct with the given head
// size and trailing array length.
func TaggedNeeds(headSize, trailingLen int) int {
	return taggedFixed + UintNeeds + headSize + trailingLen
}

// PutTagged writes a tagged struct: the magic, a redundant total length, the
// trailing array length, the raw image of the fixed head, then the trailing
// bytes. The total covers everything after itself, so a decoder can
// cross-check it against the lengths it recomputes.
func PutTagged(c *Cursor, tag Tag, head, trailing []byte) error {
	if len(trailing) > MaxTrailing {
		return ErrTooLarge
	}
	b, err := c.claim(TaggedNeeds(len(head), len(trailing)))
	if err != nil {
		return err
	}
	copy(b, tag[:])
	nativeEndian.PutUint32(b[4:], uint32(UintNeeds+len(head)+len(trailing)))
	putWord(b[taggedFixed:taggedFixed+UintNeeds], uint64(len(trailing)))
	copy(b[taggedFixed+UintNeeds:], head)
	copy(b[taggedFixed+UintNeeds+len(head):], trailing)
	return nil
}

// GetTagged reads a tagged struct. The expected magic and head size are fixed
// by the caller: len(head) is the head size, and the head image is copied
// into it. The trailing bytes come back as a fresh allocation, nil when the
// array is empty.
//
// Validation happens strictly before allocation: the magic first, then the
// redundant total against the recomputed lengths, then the remaining message
// against the payload. A tagged struct that fails any of these consumes
// nothing.
func GetTagged(c *Cursor, tag Tag, head []byte) ([]byte, error) {
	d := *c
	b, err := d.take(taggedFixed + UintNeeds)
	if err != nil {
		return nil, err
	}
	if Tag(b[:4]) != tag {
		return nil, ErrTagMismatch
	}
	total := nativeEndian.Uint32(b[4:])
	trailingLen := getWord(b[taggedFixed:])
	if uint64(total) != uint64(UintNeeds)+uint64(len(head))+trailingLen {
		return nil, ErrLengthMismatch
	}
	// Bound the trailing length before converting it to int so a corrupt
	// value cannot wrap the arithmetic below.
	if trailingLen > uint64(d.Remaining()) || len(head) > d.Remaining()-int(trailingLen) {
		return nil, ErrTruncated
	}
	hb, err := d.take(len(head))
	if err != nil {
		return nil, err
	}
	copy(head, hb)
	tb, err := d.take(int(trailingLen))
	if err != nil {
		return nil, err
	}
	var trailing []byte
	if trailingLen > 0 {
		trailing = make([]byte, trailingLen)
		copy(trailing, tb)
	}
	*c = d
	return trailing, nil
}

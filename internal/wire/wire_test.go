package wire

import (
	"bytes"
	"testing"

	"github.com/stealthrocket/cryptosim/internal/assert"
)

func TestScalarRoundTrip(t *testing.T) {
	needs := BoolNeeds + Uint8Needs + Uint16Needs + Uint32Needs + Uint64Needs +
		Int32Needs + Int64Needs + IntNeeds + UintNeeds + UintptrNeeds
	region := make([]byte, needs)

	c := NewCursor(region)
	assert.OK(t, PutBool(c, true))
	assert.OK(t, PutUint8(c, 0xA5))
	assert.OK(t, PutUint16(c, 0xBEEF))
	assert.OK(t, PutUint32(c, 0xDEADBEEF))
	assert.OK(t, PutUint64(c, 0x0123456789ABCDEF))
	assert.OK(t, PutInt32(c, -42))
	assert.OK(t, PutInt64(c, -1))
	assert.OK(t, PutInt(c, -123456))
	assert.OK(t, PutUint(c, 987654))
	assert.OK(t, PutUintptr(c, 0x1000))
	assert.Equal(t, c.Position(), needs)
	assert.Equal(t, c.Remaining(), 0)

	d := NewCursor(c.Bytes())
	b, err := GetBool(d)
	assert.OK(t, err)
	assert.Equal(t, b, true)
	u8, err := GetUint8(d)
	assert.OK(t, err)
	assert.Equal(t, u8, 0xA5)
	u16, err := GetUint16(d)
	assert.OK(t, err)
	assert.Equal(t, u16, 0xBEEF)
	u32, err := GetUint32(d)
	assert.OK(t, err)
	assert.Equal(t, u32, 0xDEADBEEF)
	u64, err := GetUint64(d)
	assert.OK(t, err)
	assert.Equal(t, u64, 0x0123456789ABCDEF)
	i32, err := GetInt32(d)
	assert.OK(t, err)
	assert.Equal(t, i32, -42)
	i64, err := GetInt64(d)
	assert.OK(t, err)
	assert.Equal(t, i64, -1)
	i, err := GetInt(d)
	assert.OK(t, err)
	assert.Equal(t, i, -123456)
	u, err := GetUint(d)
	assert.OK(t, err)
	assert.Equal(t, u, 987654)
	p, err := GetUintptr(d)
	assert.OK(t, err)
	assert.Equal(t, p, 0x1000)
	assert.Equal(t, d.Remaining(), 0)
}

func TestScalarShortEncode(t *testing.T) {
	region := bytes.Repeat([]byte{0xAA}, Uint32Needs-1)

	c := NewCursor(region)
	assert.Error(t, PutUint32(c, 1), ErrShortBuffer)
	assert.Equal(t, c.Position(), 0)
	assert.EqualAll(t, region, bytes.Repeat([]byte{0xAA}, Uint32Needs-1))
}

func TestScalarShortDecode(t *testing.T) {
	c := NewCursor(make([]byte, Uint64Needs-1))

	_, err := GetUint64(c)
	assert.Error(t, err, ErrTruncated)
	assert.Equal(t, c.Position(), 0)
}

func TestHeaderRoundTrip(t *testing.T) {
	c := NewCursor(make([]byte, HeaderNeeds))
	assert.OK(t, PutHeader(c))
	assert.Equal(t, c.Position(), HeaderNeeds)

	d := NewCursor(c.Bytes())
	assert.OK(t, GetHeader(d))
	assert.Equal(t, d.Remaining(), 0)
}

func TestHeaderCorruption(t *testing.T) {
	c := NewCursor(make([]byte, HeaderNeeds))
	assert.OK(t, PutHeader(c))

	// A flip of any header bit makes the producer incompatible.
	for i := 0; i < HeaderNeeds; i++ {
		tampered := make([]byte, HeaderNeeds)
		copy(tampered, c.Bytes())
		tampered[i] ^= 0x10

		d := NewCursor(tampered)
		assert.Error(t, GetHeader(d), ErrHeaderMismatch)
		assert.Equal(t, d.Position(), 0)
	}
}

func TestHeaderTruncated(t *testing.T) {
	c := NewCursor(make([]byte, HeaderNeeds))
	assert.OK(t, PutHeader(c))

	d := NewCursor(c.Bytes()[:HeaderNeeds-1])
	assert.Error(t, GetHeader(d), ErrTruncated)
	assert.Equal(t, d.Position(), 0)
}

func TestBufferRoundTrip(t *testing.T) {
	payload := []byte("hello world")

	c := NewCursor(make([]byte, BufferNeeds(len(payload))))
	assert.OK(t, PutBuffer(c, payload))
	assert.Equal(t, c.Position(), BufferNeeds(len(payload)))

	d := NewCursor(c.Bytes())
	got, err := GetBuffer(d)
	assert.OK(t, err)
	assert.EqualAll(t, got, payload)
	assert.Equal(t, d.Remaining(), 0)
}

func TestBufferNullAndEmpty(t *testing.T) {
	// Null and empty share a wire image; decoding commits to nil.
	for _, payload := range [][]byte{nil, {}} {
		c := NewCursor(make([]byte, BufferNeeds(0)))
		assert.OK(t, PutBuffer(c, payload))
		assert.Equal(t, c.Position(), BufferNeeds(0))

		d := NewCursor(c.Bytes())
		got, err := GetBuffer(d)
		assert.OK(t, err)
		assert.DeepEqual(t, got, ([]byte)(nil))
	}
}

func TestBufferShortEncode(t *testing.T) {
	payload := []byte("hello world")
	region := bytes.Repeat([]byte{0xAA}, BufferNeeds(len(payload))-1)

	c := NewCursor(region)
	assert.Error(t, PutBuffer(c, payload), ErrShortBuffer)
	assert.Equal(t, c.Position(), 0)
	assert.EqualAll(t, region, bytes.Repeat([]byte{0xAA}, BufferNeeds(len(payload))-1))
}

func TestBufferShortDecode(t *testing.T) {
	payload := []byte("hello world")

	c := NewCursor(make([]byte, BufferNeeds(len(payload))))
	assert.OK(t, PutBuffer(c, payload))

	// Cut the message inside the payload: the length prefix promises more
	// bytes than remain.
	d := NewCursor(c.Bytes()[:c.Position()-3])
	_, err := GetBuffer(d)
	assert.Error(t, err, ErrTruncated)
	assert.Equal(t, d.Position(), 0)
}

func TestBufferIntoRoundTrip(t *testing.T) {
	payload := []byte("0123456789abcdef")

	c := NewCursor(make([]byte, BufferNeeds(len(payload))))
	assert.OK(t, PutBuffer(c, payload))

	dst := make([]byte, len(payload))
	d := NewCursor(c.Bytes())
	assert.OK(t, GetBufferInto(d, dst))
	assert.EqualAll(t, dst, payload)
	assert.Equal(t, d.Remaining(), 0)
}

func TestBufferIntoLengthMismatch(t *testing.T) {
	payload := []byte("01234567")

	c := NewCursor(make([]byte, BufferNeeds(len(payload))))
	assert.OK(t, PutBuffer(c, payload))

	// The caller expects 16 bytes but the reply carries 8: the decode must
	// fail before writing anything into the destination.
	dst := make([]byte, 16)
	d := NewCursor(c.Bytes())
	assert.Error(t, GetBufferInto(d, dst), ErrLengthMismatch)
	assert.Equal(t, d.Position(), 0)
	assert.EqualAll(t, dst, make([]byte, 16))
}

func TestTaggedRoundTrip(t *testing.T) {
	tag := Tag{'T', 'E', 'S', 'T'}
	head := []byte{0x01, 0x02}
	trailing := []byte("trailing data")

	c := NewCursor(make([]byte, TaggedNeeds(len(head), len(trailing))))
	assert.OK(t, PutTagged(c, tag, head, trailing))
	assert.Equal(t, c.Position(), TaggedNeeds(len(head), len(trailing)))

	gotHead := make([]byte, len(head))
	d := NewCursor(c.Bytes())
	gotTrailing, err := GetTagged(d, tag, gotHead)
	assert.OK(t, err)
	assert.EqualAll(t, gotHead, head)
	assert.EqualAll(t, gotTrailing, trailing)
	assert.Equal(t, d.Remaining(), 0)
}

func TestTaggedZeroTrailing(t *testing.T) {
	tag := Tag{'T', 'E', 'S', 'T'}
	head := []byte{0xCA, 0xFE}

	c := NewCursor(make([]byte, TaggedNeeds(len(head), 0)))
	assert.OK(t, PutTagged(c, tag, head, nil))

	gotHead := make([]byte, len(head))
	d := NewCursor(c.Bytes())
	gotTrailing, err := GetTagged(d, tag, gotHead)
	assert.OK(t, err)
	assert.EqualAll(t, gotHead, head)
	assert.DeepEqual(t, gotTrailing, ([]byte)(nil))
}

func TestTaggedMagicCorruption(t *testing.T) {
	tag := Tag{'T', 'E', 'S', 'T'}
	head := []byte{0x01, 0x02}

	c := NewCursor(make([]byte, TaggedNeeds(len(head), 4)))
	assert.OK(t, PutTagged(c, tag, head, []byte("data")))

	tampered := make([]byte, c.Position())
	copy(tampered, c.Bytes())
	tampered[0] ^= 0xFF

	d := NewCursor(tampered)
	_, err := GetTagged(d, tag, make([]byte, len(head)))
	assert.Error(t, err, ErrTagMismatch)
	assert.Equal(t, d.Position(), 0)
}

func TestTaggedTotalCorruption(t *testing.T) {
	tag := Tag{'T', 'E', 'S', 'T'}
	head := []byte{0x01, 0x02}

	c := NewCursor(make([]byte, TaggedNeeds(len(head), 4)))
	assert.OK(t, PutTagged(c, tag, head, []byte("data")))

	// Bump the redundant total: it no longer matches the recomputed sum.
	tampered := make([]byte, c.Position())
	copy(tampered, c.Bytes())
	tampered[4]++

	d := NewCursor(tampered)
	_, err := GetTagged(d, tag, make([]byte, len(head)))
	assert.Error(t, err, ErrLengthMismatch)
	assert.Equal(t, d.Position(), 0)
}

func TestTaggedTruncated(t *testing.T) {
	tag := Tag{'T', 'E', 'S', 'T'}
	head := []byte{0x01, 0x02}

	c := NewCursor(make([]byte, TaggedNeeds(len(head), 4)))
	assert.OK(t, PutTagged(c, tag, head, []byte("data")))

	d := NewCursor(c.Bytes()[:c.Position()-2])
	_, err := GetTagged(d, tag, make([]byte, len(head)))
	assert.Error(t, err, ErrTruncated)
	assert.Equal(t, d.Position(), 0)
}

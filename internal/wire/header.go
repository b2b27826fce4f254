package wire

// Version is the wire protocol version. There is no negotiation of features:
// both ends carry the same version or they do not talk.
const Version = 0

// HeaderNeeds is the encoded size of the negotiation header.
const HeaderNeeds = 8

// endianTag is a known constant written in the producer's byte order. A
// consumer with a different byte order reads it back permuted.
const endianTag uint32 = 0x01020304

// PutHeader writes the negotiation header: the protocol version, the
// producer's native scalar widths, and the endianness probe.
func PutHeader(c *Cursor) error {
	b, err := c.claim(HeaderNeeds)
	if err != nil {
		return err
	}
	b[0] = Version
	b[1] = byte(IntNeeds)
	b[2] = byte(UintNeeds)
	b[3] = byte(UintptrNeeds)
	nativeEndian.PutUint32(b[4:], endianTag)
	return nil
}

// GetHeader validates the negotiation header against this process. A peer
// with a different version, scalar width, or byte order fails with
// ErrHeaderMismatch: foreign layouts are detected, never converted.
func GetHeader(c *Cursor) error {
	d := *c
	b, err := d.take(HeaderNeeds)
	if err != nil {
		return err
	}
	if b[0] != Version ||
		b[1] != byte(IntNeeds) ||
		b[2] != byte(UintNeeds) ||
		b[3] != byte(UintptrNeeds) ||
		nativeEndian.Uint32(b[4:]) != endianTag {
		return ErrHeaderMismatch
	}
	*c = d
	return nil
}

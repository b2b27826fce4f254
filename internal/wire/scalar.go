package wire

import (
	"encoding/binary"
	"unsafe"
)

// nativeEndian is the byte order of this process. Scalars travel in whatever
// order the producer uses; the header fence guarantees both ends agree.
var nativeEndian binary.ByteOrder = func() binary.ByteOrder {
	var probe [2]byte
	*(*uint16)(unsafe.Pointer(&probe[0])) = 0x0102
	if probe[0] == 0x01 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}()

// Encoded sizes of the scalar wire images. Fixed-width types occupy exactly
// their width; int, uint and uintptr occupy their native width on this
// architecture, which is what the header fence validates.
const (
	BoolNeeds   = 1
	Uint8Needs  = 1
	Uint16Needs = 2
	Uint32Needs = 4
	Uint64Needs = 8
	Int8Needs   = 1
	Int16Needs  = 2
	Int32Needs  = 4
	Int64Needs  = 8

	IntNeeds     = int(unsafe.Sizeof(int(0)))
	UintNeeds    = int(unsafe.Sizeof(uint(0)))
	UintptrNeeds = int(unsafe.Sizeof(uintptr(0)))
)

// putWord and getWord move a native-width integer through a claimed region
// whose length selects the width.
func putWord(b []byte, v uint64) {
	if len(b) == 8 {
		nativeEndian.PutUint64(b, v)
	} else {
		nativeEndian.PutUint32(b, uint32(v))
	}
}

func getWord(b []byte) uint64 {
	if len(b) == 8 {
		return nativeEndian.Uint64(b)
	}
	return uint64(nativeEndian.Uint32(b))
}

func PutBool(c *Cursor, v bool) error {
	b, err := c.claim(BoolNeeds)
	if err != nil {
		return err
	}
	b[0] = 0
	if v {
		b[0] = 1
	}
	return nil
}

func GetBool(c *Cursor) (bool, error) {
	b, err := c.take(BoolNeeds)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func PutUint8(c *Cursor, v uint8) error {
	b, err := c.claim(Uint8Needs)
	if err != nil {
		return err
	}
	b[0] = v
	return nil
}

func GetUint8(c *Cursor) (uint8, error) {
	b, err := c.take(Uint8Needs)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func PutUint16(c *Cursor, v uint16) error {
	b, err := c.claim(Uint16Needs)
	if err != nil {
		return err
	}
	nativeEndian.PutUint16(b, v)
	return nil
}

func GetUint16(c *Cursor) (uint16, error) {
	b, err := c.take(Uint16Needs)
	if err != nil {
		return 0, err
	}
	return nativeEndian.Uint16(b), nil
}

func PutUint32(c *Cursor, v uint32) error {
	b, err := c.claim(Uint32Needs)
	if err != nil {
		return err
	}
	nativeEndian.PutUint32(b, v)
	return nil
}

func GetUint32(c *Cursor) (uint32, error) {
	b, err := c.take(Uint32Needs)
	if err != nil {
		return 0, err
	}
	return nativeEndian.Uint32(b), nil
}

func PutUint64(c *Cursor, v uint64) error {
	b, err := c.claim(Uint64Needs)
	if err != nil {
		return err
	}
	nativeEndian.PutUint64(b, v)
	return nil
}

func GetUint64(c *Cursor) (uint64, error) {
	b, err := c.take(Uint64Needs)
	if err != nil {
		return 0, err
	}
	return nativeEndian.Uint64(b), nil
}

func PutInt8(c *Cursor, v int8) error {
	return PutUint8(c, uint8(v))
}

func GetInt8(c *Cursor) (int8, error) {
	v, err := GetUint8(c)
	return int8(v), err
}

func PutInt16(c *Cursor, v int16) error {
	return PutUint16(c, uint16(v))
}

func GetInt16(c *Cursor) (int16, error) {
	v, err := GetUint16(c)
	return int16(v), err
}

func PutInt32(c *Cursor, v int32) error {
	return PutUint32(c, uint32(v))
}

func GetInt32(c *Cursor) (int32, error) {
	v, err := GetUint32(c)
	return int32(v), err
}

func PutInt64(c *Cursor, v int64) error {
	return PutUint64(c, uint64(v))
}

func GetInt64(c *Cursor) (int64, error) {
	v, err := GetUint64(c)
	return int64(v), err
}

func PutInt(c *Cursor, v int) error {
	b, err := c.claim(IntNeeds)
	if err != nil {
		return err
	}
	putWord(b, uint64(uint(v)))
	return nil
}

func GetInt(c *Cursor) (int, error) {
	b, err := c.take(IntNeeds)
	if err != nil {
		return 0, err
	}
	return int(uint(getWord(b))), nil
}

func PutUint(c *Cursor, v uint) error {
	b, err := c.claim(UintNeeds)
	if err != nil {
		return err
	}
	putWord(b, uint64(v))
	return nil
}

func GetUint(c *Cursor) (uint, error) {
	b, err := c.take(UintNeeds)
	if err != nil {
		return 0, err
	}
	return uint(getWord(b)), nil
}

func PutUintptr(c *Cursor, v uintptr) error {
	b, err := c.claim(UintptrNeeds)
	if err != nil {
		return err
	}
	putWord(b, uint64(v))
	return nil
}

func GetUintptr(c *Cursor) (uintptr, error) {
	b, err := c.take(UintptrNeeds)
	if err != nil {
		return 0, err
	}
	return uintptr(getWord(b)), nil
}

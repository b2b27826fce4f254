package cryptocall

import (
	"fmt"

	"github.com/stealthrocket/cryptosim/internal/wire"
)

// Status is the result of a service call. Zero is success, everything else
// is a failure; statuses are the one error channel of the protocol, a failed
// call never tears the connection down.
type Status int32

const (
	StatusSuccess              Status = 0
	StatusGenericError         Status = -1
	StatusNotSupported         Status = -2
	StatusInvalidArgument      Status = -3
	StatusBadState             Status = -4
	StatusInvalidHandle        Status = -5
	StatusInvalidSignature     Status = -6
	StatusInsufficientMemory   Status = -7
	StatusNotPermitted         Status = -8
	StatusDoesNotExist         Status = -9
	StatusCommunicationFailure Status = -10
)

var statusStrings = map[Status]string{
	StatusSuccess:              "Success",
	StatusGenericError:         "GenericError",
	StatusNotSupported:         "NotSupported",
	StatusInvalidArgument:      "InvalidArgument",
	StatusBadState:             "BadState",
	StatusInvalidHandle:        "InvalidHandle",
	StatusInvalidSignature:     "InvalidSignature",
	StatusInsufficientMemory:   "InsufficientMemory",
	StatusNotPermitted:         "NotPermitted",
	StatusDoesNotExist:         "DoesNotExist",
	StatusCommunicationFailure: "CommunicationFailure",
}

func (s Status) String() string {
	if name, ok := statusStrings[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int32(s))
}

// Algorithm selects a cryptographic algorithm. The high byte encodes the
// algorithm family.
type Algorithm uint32

const (
	AlgNone Algorithm = 0

	AlgSHA256 Algorithm = 0x0101
	AlgSHA384 Algorithm = 0x0102
	AlgSHA512 Algorithm = 0x0103

	AlgHMACSHA256 Algorithm = 0x0201
	AlgHMACSHA384 Algorithm = 0x0202
	AlgHMACSHA512 Algorithm = 0x0203

	AlgAESCTR Algorithm = 0x0301
)

// IsHash reports whether a is a plain hash algorithm.
func (a Algorithm) IsHash() bool { return a>>8 == 0x01 }

// IsMac reports whether a is a MAC algorithm.
func (a Algorithm) IsMac() bool { return a>>8 == 0x02 }

// IsCipher reports whether a is a symmetric cipher algorithm.
func (a Algorithm) IsCipher() bool { return a>>8 == 0x03 }

// HashOf returns the hash algorithm underlying a MAC algorithm, or AlgNone.
func (a Algorithm) HashOf() Algorithm {
	if !a.IsMac() {
		return AlgNone
	}
	return a&0xFF | 0x0100
}

var algorithmStrings = map[Algorithm]string{
	AlgNone:       "None",
	AlgSHA256:     "SHA-256",
	AlgSHA384:     "SHA-384",
	AlgSHA512:     "SHA-512",
	AlgHMACSHA256: "HMAC-SHA-256",
	AlgHMACSHA384: "HMAC-SHA-384",
	AlgHMACSHA512: "HMAC-SHA-512",
	AlgAESCTR:     "AES-CTR",
}

func (a Algorithm) String() string {
	if name, ok := algorithmStrings[a]; ok {
		return name
	}
	return fmt.Sprintf("Algorithm(%#x)", uint32(a))
}

// KeyID identifies a key held by the server. Identifiers are assigned by the
// server and never reused within its lifetime.
type KeyID uint32

// KeyType is the kind of key material.
type KeyType uint16

const (
	KeyTypeNone KeyType = 0
	KeyTypeRaw  KeyType = 0x1001
	KeyTypeHMAC KeyType = 0x1100
	KeyTypeAES  KeyType = 0x2400
)

// KeyUsage is the set of operations a key policy permits.
type KeyUsage uint32

const (
	KeyUsageExport  KeyUsage = 0x0001
	KeyUsageEncrypt KeyUsage = 0x0100
	KeyUsageDecrypt KeyUsage = 0x0200
	KeyUsageSign    KeyUsage = 0x0400
	KeyUsageVerify  KeyUsage = 0x0800
)

// KeyAttributes carries the type, size and policy of a key. It is a plain
// fixed-width value: the wire image is its fields back to back.
type KeyAttributes struct {
	Type  KeyType
	Bits  uint32
	Usage KeyUsage
	Alg   Algorithm
}

// KeyProductionParameters parameterizes key generation. The fixed head holds
// the flags; Data is method-specific trailing material. The zero value asks
// for default production.
type KeyProductionParameters struct {
	Flags uint16
	Data  []byte
}

// keyParamsTag is the wire magic of KeyProductionParameters.
var keyParamsTag = wire.Tag{'K', 'P', 'P', '0'}

// keyParamsHeadSize is the size of the fixed head (the flags field).
const keyParamsHeadSize = wire.Uint16Needs

// Encoded sizes of the aliased scalar types.
const (
	callIDNeeds    = wire.Int32Needs
	statusNeeds    = wire.Int32Needs
	handleNeeds    = wire.Uint32Needs
	algorithmNeeds = wire.Uint32Needs
	keyIDNeeds     = wire.Uint32Needs
	attrsNeeds     = wire.Uint16Needs + 3*wire.Uint32Needs
)

// The aliased-type codec: every domain type borrows the wire image of its
// base type, so encoding is a delegation and nothing more.

func PutCallID(c *wire.Cursor, id CallID) error {
	return wire.PutInt32(c, int32(id))
}

func GetCallID(c *wire.Cursor) (CallID, error) {
	v, err := wire.GetInt32(c)
	return CallID(v), err
}

func PutStatus(c *wire.Cursor, s Status) error {
	return wire.PutInt32(c, int32(s))
}

func GetStatus(c *wire.Cursor) (Status, error) {
	v, err := wire.GetInt32(c)
	return Status(v), err
}

func PutHandle(c *wire.Cursor, h Handle) error {
	return wire.PutUint32(c, uint32(h))
}

func GetHandle(c *wire.Cursor) (Handle, error) {
	v, err := wire.GetUint32(c)
	return Handle(v), err
}

func PutAlgorithm(c *wire.Cursor, a Algorithm) error {
	return wire.PutUint32(c, uint32(a))
}

func GetAlgorithm(c *wire.Cursor) (Algorithm, error) {
	v, err := wire.GetUint32(c)
	return Algorithm(v), err
}

func PutKeyID(c *wire.Cursor, k KeyID) error {
	return wire.PutUint32(c, uint32(k))
}

func GetKeyID(c *wire.Cursor) (KeyID, error) {
	v, err := wire.GetUint32(c)
	return KeyID(v), err
}

func PutKeyAttributes(c *wire.Cursor, a KeyAttributes) error {
	if err := wire.PutUint16(c, uint16(a.Type)); err != nil {
		return err
	}
	if err := wire.PutUint32(c, a.Bits); err != nil {
		return err
	}
	if err := wire.PutUint32(c, uint32(a.Usage)); err != nil {
		return err
	}
	return wire.PutUint32(c, uint32(a.Alg))
}

func GetKeyAttributes(c *wire.Cursor) (KeyAttributes, error) {
	var a KeyAttributes
	typ, err := wire.GetUint16(c)
	if err != nil {
		return a, err
	}
	bits, err := wire.GetUint32(c)
	if err != nil {
		return a, err
	}
	usage, err := wire.GetUint32(c)
	if err != nil {
		return a, err
	}
	alg, err := wire.GetUint32(c)
	if err != nil {
		return a, err
	}
	a = KeyAttributes{Type: KeyType(typ), Bits: bits, Usage: KeyUsage(usage), Alg: Algorithm(alg)}
	return a, nil
}

func keyParamsNeeds(p *KeyProductionParameters) int {
	return wire.TaggedNeeds(keyParamsHeadSize, len(p.Data))
}

func PutKeyParams(c *wire.Cursor, p *KeyProductionParameters) error {
	var head [keyParamsHeadSize]byte
	hc := wire.NewCursor(head[:])
	if err := wire.PutUint16(hc, p.Flags); err != nil {
		return err
	}
	return wire.PutTagged(c, keyParamsTag, head[:], p.Data)
}

func GetKeyParams(c *wire.Cursor) (*KeyProductionParameters, error) {
	var head [keyParamsHeadSize]byte
	data, err := wire.GetTagged(c, keyParamsTag, head[:])
	if err != nil {
		return nil, err
	}
	hc := wire.NewCursor(head[:])
	flags, err := wire.GetUint16(hc)
	if err != nil {
		return nil, err
	}
	return &KeyProductionParameters{Flags: flags, Data: data}, nil
}

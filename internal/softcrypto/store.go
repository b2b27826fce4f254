package softcrypto

import (
	"crypto/rand"
	"sync"

	"github.com/stealthrocket/cryptosim/internal/cryptocall"
)

// MaxKeyBits bounds the size of any key the store accepts.
const MaxKeyBits = 4096

// Key is a key held by the store: its material and the policy it was created
// with.
type Key struct {
	Attrs    KeyAttributes
	Material []byte
}

// Store holds the server's keys. Identifiers are issued from a counter and
// never reused within the lifetime of the store; keys survive until they are
// destroyed, they do not belong to a client session.
type Store struct {
	mutex   sync.Mutex
	keys    map[KeyID]*Key
	nextID  KeyID
	maxKeys int
}

// NewStore returns a store holding at most maxKeys keys.
func NewStore(maxKeys int) *Store {
	return &Store{keys: make(map[KeyID]*Key), nextID: 1, maxKeys: maxKeys}
}

// Generate creates a key with fresh random material.
func (s *Store) Generate(attrs KeyAttributes, params *KeyProductionParameters) (KeyID, Status) {
	if params != nil {
		// No production method of the supported key types takes flags or
		// trailing data.
		if params.Flags != 0 || len(params.Data) != 0 {
			return 0, cryptocall.StatusNotSupported
		}
	}
	if attrs.Bits == 0 {
		return 0, cryptocall.StatusInvalidArgument
	}
	if status := checkKeySize(attrs.Type, attrs.Bits); status != cryptocall.StatusSuccess {
		return 0, status
	}
	material := make([]byte, attrs.Bits/8)
	if _, err := rand.Read(material); err != nil {
		return 0, cryptocall.StatusGenericError
	}
	return s.insert(attrs, material)
}

// Import creates a key from caller-supplied material. Zero attribute bits
// infer the size from the material.
func (s *Store) Import(attrs KeyAttributes, material []byte) (KeyID, Status) {
	if len(material) == 0 {
		return 0, cryptocall.StatusInvalidArgument
	}
	bits := uint32(len(material)) * 8
	if attrs.Bits == 0 {
		attrs.Bits = bits
	} else if attrs.Bits != bits {
		return 0, cryptocall.StatusInvalidArgument
	}
	if status := checkKeySize(attrs.Type, attrs.Bits); status != cryptocall.StatusSuccess {
		return 0, status
	}
	owned := make([]byte, len(material))
	copy(owned, material)
	return s.insert(attrs, owned)
}

// Export returns a copy of the key material when the key policy permits it.
func (s *Store) Export(id KeyID) ([]byte, Status) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	key, ok := s.keys[id]
	if !ok {
		return nil, cryptocall.StatusDoesNotExist
	}
	if key.Attrs.Usage&cryptocall.KeyUsageExport == 0 {
		return nil, cryptocall.StatusNotPermitted
	}
	out := make([]byte, len(key.Material))
	copy(out, key.Material)
	return out, cryptocall.StatusSuccess
}

// Destroy removes a key and invalidates its identifier.
func (s *Store) Destroy(id KeyID) Status {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.keys[id]; !ok {
		return cryptocall.StatusDoesNotExist
	}
	delete(s.keys, id)
	return cryptocall.StatusSuccess
}

// Use resolves a key for an operation, checking that the policy grants the
// usage and that the key was created for the requested algorithm.
func (s *Store) Use(id KeyID, usage cryptocall.KeyUsage, alg Algorithm) (*Key, Status) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	key, ok := s.keys[id]
	if !ok {
		return nil, cryptocall.StatusDoesNotExist
	}
	if key.Attrs.Usage&usage == 0 {
		return nil, cryptocall.StatusNotPermitted
	}
	if key.Attrs.Alg != cryptocall.AlgNone && key.Attrs.Alg != alg {
		return nil, cryptocall.StatusNotPermitted
	}
	if status := checkKeyAlgorithm(key.Attrs.Type, alg); status != cryptocall.StatusSuccess {
		return nil, status
	}
	return key, cryptocall.StatusSuccess
}

func (s *Store) insert(attrs KeyAttributes, material []byte) (KeyID, Status) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.keys) >= s.maxKeys {
		return 0, cryptocall.StatusInsufficientMemory
	}
	id := s.nextID
	s.nextID++
	s.keys[id] = &Key{Attrs: attrs, Material: material}
	return id, cryptocall.StatusSuccess
}

// checkKeySize validates the key size against its type.
func checkKeySize(typ cryptocall.KeyType, bits uint32) Status {
	if bits%8 != 0 || bits > MaxKeyBits {
		return cryptocall.StatusInvalidArgument
	}
	switch typ {
	case cryptocall.KeyTypeAES:
		if bits != 128 && bits != 192 && bits != 256 {
			return cryptocall.StatusInvalidArgument
		}
	case cryptocall.KeyTypeHMAC, cryptocall.KeyTypeRaw:
		if bits < 64 {
			return cryptocall.StatusInvalidArgument
		}
	default:
		return cryptocall.StatusNotSupported
	}
	return cryptocall.StatusSuccess
}

// checkKeyAlgorithm validates that a key type can serve an algorithm family.
func checkKeyAlgorithm(typ cryptocall.KeyType, alg Algorithm) Status {
	switch {
	case alg.IsMac():
		if typ != cryptocall.KeyTypeHMAC && typ != cryptocall.KeyTypeRaw {
			return cryptocall.StatusInvalidArgument
		}
	case alg.IsCipher():
		if typ != cryptocall.KeyTypeAES {
			return cryptocall.StatusInvalidArgument
		}
	default:
		return cryptocall.StatusInvalidArgument
	}
	return cryptocall.StatusSuccess
}

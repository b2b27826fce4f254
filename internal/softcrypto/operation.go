package softcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/subtle"
	"encoding"
	"hash"

	"github.com/stealthrocket/cryptosim/internal/cryptocall"
)

// HashState is the server-side state of a multi-part hash. The zero value is
// idle; Setup activates it.
type HashState struct {
	alg Algorithm
	h   hash.Hash
}

func (s *HashState) Setup(alg Algorithm) Status {
	if s.h != nil {
		return cryptocall.StatusBadState
	}
	h, status := newHash(alg)
	if status != cryptocall.StatusSuccess {
		return status
	}
	s.alg, s.h = alg, h
	return cryptocall.StatusSuccess
}

func (s *HashState) Update(input []byte) Status {
	if s.h == nil {
		return cryptocall.StatusBadState
	}
	s.h.Write(input)
	return cryptocall.StatusSuccess
}

func (s *HashState) Finish() ([]byte, Status) {
	if s.h == nil {
		return nil, cryptocall.StatusBadState
	}
	return s.h.Sum(nil), cryptocall.StatusSuccess
}

func (s *HashState) Verify(expected []byte) Status {
	if s.h == nil {
		return cryptocall.StatusBadState
	}
	if subtle.ConstantTimeCompare(s.h.Sum(nil), expected) != 1 {
		return cryptocall.StatusInvalidSignature
	}
	return cryptocall.StatusSuccess
}

// CloneTo copies the running digest into dst, which must be idle. The
// standard hashes all support state serialization, which is what carries the
// digest across.
func (s *HashState) CloneTo(dst *HashState) Status {
	if s.h == nil || dst.h != nil {
		return cryptocall.StatusBadState
	}
	m, ok := s.h.(encoding.BinaryMarshaler)
	if !ok {
		return cryptocall.StatusNotSupported
	}
	state, err := m.MarshalBinary()
	if err != nil {
		return cryptocall.StatusGenericError
	}
	h, status := newHash(s.alg)
	if status != cryptocall.StatusSuccess {
		return status
	}
	if err := h.(encoding.BinaryUnmarshaler).UnmarshalBinary(state); err != nil {
		return cryptocall.StatusGenericError
	}
	dst.alg, dst.h = s.alg, h
	return cryptocall.StatusSuccess
}

// MacState is the server-side state of a multi-part MAC computation or
// verification.
type MacState struct {
	verify bool
	m      hash.Hash
}

func (s *MacState) Setup(key *Key, alg Algorithm, verify bool) Status {
	if s.m != nil {
		return cryptocall.StatusBadState
	}
	if !alg.IsMac() {
		return cryptocall.StatusInvalidArgument
	}
	f, status := hashFunc(alg.HashOf())
	if status != cryptocall.StatusSuccess {
		return status
	}
	s.m = hmac.New(f, key.Material)
	s.verify = verify
	return cryptocall.StatusSuccess
}

func (s *MacState) Update(input []byte) Status {
	if s.m == nil {
		return cryptocall.StatusBadState
	}
	s.m.Write(input)
	return cryptocall.StatusSuccess
}

func (s *MacState) SignFinish() ([]byte, Status) {
	if s.m == nil || s.verify {
		return nil, cryptocall.StatusBadState
	}
	return s.m.Sum(nil), cryptocall.StatusSuccess
}

func (s *MacState) VerifyFinish(expected []byte) Status {
	if s.m == nil || !s.verify {
		return cryptocall.StatusBadState
	}
	if !hmac.Equal(s.m.Sum(nil), expected) {
		return cryptocall.StatusInvalidSignature
	}
	return cryptocall.StatusSuccess
}

// CipherState is the server-side state of a multi-part cipher operation.
// Only counter mode is implemented, so updates are length preserving and
// Finish never has residual bytes to flush.
type CipherState struct {
	decrypt bool
	block   cipher.Block
	stream  cipher.Stream
}

func (s *CipherState) Setup(key *Key, alg Algorithm, decrypt bool) Status {
	if s.block != nil {
		return cryptocall.StatusBadState
	}
	if !alg.IsCipher() {
		return cryptocall.StatusInvalidArgument
	}
	if alg != cryptocall.AlgAESCTR {
		return cryptocall.StatusNotSupported
	}
	block, err := aes.NewCipher(key.Material)
	if err != nil {
		return cryptocall.StatusInvalidArgument
	}
	s.block, s.decrypt = block, decrypt
	return cryptocall.StatusSuccess
}

// GenerateIV draws a fresh IV and starts the keystream. Only encryption
// operations may generate their IV; decryption receives it with SetIV.
func (s *CipherState) GenerateIV() ([]byte, Status) {
	if s.block == nil || s.stream != nil || s.decrypt {
		return nil, cryptocall.StatusBadState
	}
	iv := make([]byte, s.block.BlockSize())
	if _, err := rand.Read(iv); err != nil {
		return nil, cryptocall.StatusGenericError
	}
	s.stream = cipher.NewCTR(s.block, iv)
	return iv, cryptocall.StatusSuccess
}

func (s *CipherState) SetIV(iv []byte) Status {
	if s.block == nil || s.stream != nil {
		return cryptocall.StatusBadState
	}
	if len(iv) != s.block.BlockSize() {
		return cryptocall.StatusInvalidArgument
	}
	s.stream = cipher.NewCTR(s.block, iv)
	return cryptocall.StatusSuccess
}

func (s *CipherState) Update(input []byte) ([]byte, Status) {
	if s.stream == nil {
		return nil, cryptocall.StatusBadState
	}
	output := make([]byte, len(input))
	s.stream.XORKeyStream(output, input)
	return output, cryptocall.StatusSuccess
}

func (s *CipherState) Finish() ([]byte, Status) {
	if s.stream == nil {
		return nil, cryptocall.StatusBadState
	}
	return nil, cryptocall.StatusSuccess
}

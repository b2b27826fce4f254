// Package softcrypto is the software implementation of the cryptography
// service behind a cryptosim server. It holds the key store and the concrete
// multi-part operation states that the server's handle tables point at, built
// on the standard crypto library.
//
// Nothing here knows about handles or marshaling: the package computes, the
// server wires it to the protocol.
package softcrypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"github.com/stealthrocket/cryptosim/internal/cryptocall"
)

// Local names for the protocol types this package speaks.
type (
	Algorithm               = cryptocall.Algorithm
	Status                  = cryptocall.Status
	KeyID                   = cryptocall.KeyID
	KeyAttributes           = cryptocall.KeyAttributes
	KeyProductionParameters = cryptocall.KeyProductionParameters
)

// hashFunc returns the constructor of the hash underlying alg.
func hashFunc(alg Algorithm) (func() hash.Hash, Status) {
	switch alg {
	case cryptocall.AlgSHA256:
		return sha256.New, cryptocall.StatusSuccess
	case cryptocall.AlgSHA384:
		return sha512.New384, cryptocall.StatusSuccess
	case cryptocall.AlgSHA512:
		return sha512.New, cryptocall.StatusSuccess
	default:
		return nil, cryptocall.StatusNotSupported
	}
}

func newHash(alg Algorithm) (hash.Hash, Status) {
	f, status := hashFunc(alg)
	if status != cryptocall.StatusSuccess {
		return nil, status
	}
	return f(), status
}

// ComputeHash digests input in one shot.
func ComputeHash(alg Algorithm, input []byte) ([]byte, Status) {
	h, status := newHash(alg)
	if status != cryptocall.StatusSuccess {
		return nil, status
	}
	h.Write(input)
	return h.Sum(nil), cryptocall.StatusSuccess
}

// GenerateRandom fills buf from the system entropy source.
func GenerateRandom(buf []byte) Status {
	if _, err := rand.Read(buf); err != nil {
		return cryptocall.StatusGenericError
	}
	return cryptocall.StatusSuccess
}

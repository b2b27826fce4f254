// Package cryptocall defines the call surface of the cryptosim protocol: the
// types that cross the client/server boundary, the numbering and wire layout
// of each remote call, and the client-side proxy that marshals calls through
// a transport.
//
// The server holds all key material and all multi-part operation state.
// Clients refer to in-flight operations through opaque handles embedded in
// the operation values; a zero value is an inactive operation, and setting
// one up asks the server to allocate state for it. Every call is a single
// request/reply exchange encoded with the wire package: messages begin with
// the negotiation header, requests carry the call number and the arguments in
// signature order, replies carry the resulting status followed by the output
// values when the call succeeded.
package cryptocall

import (
	"context"

	"github.com/stealthrocket/cryptosim/internal/optable"
)

// Handle identifies server-side operation state. It is the only thing a
// client ever holds of a multi-part operation.
type Handle = optable.Handle

// HashOperation is a multi-part hash in progress. The zero value is an
// inactive operation ready for HashSetup.
type HashOperation struct {
	handle Handle
}

// MacOperation is a multi-part MAC computation or verification in progress.
// The zero value is an inactive operation ready for MacSignSetup or
// MacVerifySetup.
type MacOperation struct {
	handle Handle
}

// CipherOperation is a multi-part symmetric encryption or decryption in
// progress. The zero value is an inactive operation ready for
// CipherEncryptSetup or CipherDecryptSetup.
type CipherOperation struct {
	handle Handle
}

// Service is the cryptography API proxied between client and server.
//
// Methods return a Status rather than an error: the status is part of the
// remote call's result and travels back in the reply. Failures of the
// exchange itself surface as StatusCommunicationFailure.
type Service interface {
	// GenerateRandom fills buf with random bytes. The reply payload must
	// come back with exactly len(buf) bytes or the call fails without
	// touching buf.
	GenerateRandom(ctx context.Context, buf []byte) Status

	// ComputeHash digests input in one shot and returns the digest.
	ComputeHash(ctx context.Context, alg Algorithm, input []byte) ([]byte, Status)

	// GenerateKey creates a key from the given attributes and production
	// parameters and returns its identifier. A nil params is treated as
	// the zero production parameters.
	GenerateKey(ctx context.Context, attrs KeyAttributes, params *KeyProductionParameters) (KeyID, Status)

	// ImportKey creates a key from caller-supplied material.
	ImportKey(ctx context.Context, attrs KeyAttributes, material []byte) (KeyID, Status)

	// ExportKey returns the key material, if the key policy permits it.
	ExportKey(ctx context.Context, key KeyID) ([]byte, Status)

	// DestroyKey destroys a key and invalidates its identifier.
	DestroyKey(ctx context.Context, key KeyID) Status

	HashSetup(ctx context.Context, op *HashOperation, alg Algorithm) Status
	HashUpdate(ctx context.Context, op *HashOperation, input []byte) Status
	HashFinish(ctx context.Context, op *HashOperation) ([]byte, Status)
	HashVerify(ctx context.Context, op *HashOperation, expected []byte) Status
	HashAbort(ctx context.Context, op *HashOperation) Status
	HashClone(ctx context.Context, source, target *HashOperation) Status

	MacSignSetup(ctx context.Context, op *MacOperation, key KeyID, alg Algorithm) Status
	MacVerifySetup(ctx context.Context, op *MacOperation, key KeyID, alg Algorithm) Status
	MacUpdate(ctx context.Context, op *MacOperation, input []byte) Status
	MacSignFinish(ctx context.Context, op *MacOperation) ([]byte, Status)
	MacVerifyFinish(ctx context.Context, op *MacOperation, expected []byte) Status
	MacAbort(ctx context.Context, op *MacOperation) Status

	CipherEncryptSetup(ctx context.Context, op *CipherOperation, key KeyID, alg Algorithm) Status
	CipherDecryptSetup(ctx context.Context, op *CipherOperation, key KeyID, alg Algorithm) Status
	CipherGenerateIV(ctx context.Context, op *CipherOperation) ([]byte, Status)
	CipherSetIV(ctx context.Context, op *CipherOperation, iv []byte) Status
	CipherUpdate(ctx context.Context, op *CipherOperation, input []byte) ([]byte, Status)
	CipherFinish(ctx context.Context, op *CipherOperation) ([]byte, Status)
	CipherAbort(ctx context.Context, op *CipherOperation) Status
}

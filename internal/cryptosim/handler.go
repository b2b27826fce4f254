// Package cryptosim ties the crypto service together: the request handler
// executing calls against the key store and the operation tables, the framed
// socket transport, and the client and server built on top of them.
package cryptosim

import (
	"context"
	"errors"

	"github.com/stealthrocket/cryptosim/internal/cryptocall"
	"github.com/stealthrocket/cryptosim/internal/optable"
	"github.com/stealthrocket/cryptosim/internal/softcrypto"
	"github.com/stealthrocket/cryptosim/internal/wire"
)

// Handler is the server side of the protocol. Each call to Handle unmarshals
// one request, executes it, and marshals the reply into the caller-owned rsp
// region. Statuses travel in the reply; errors returned by Handle mean the
// exchange itself broke (malformed message, incompatible peer, undersized
// reply region) and the connection cannot continue.
//
// A Handler is safe for concurrent use; operation state is owned by whoever
// holds the operation's handle.
type Handler struct {
	store  *softcrypto.Store
	hash   *optable.Table[softcrypto.HashState]
	mac    *optable.Table[softcrypto.MacState]
	cipher *optable.Table[softcrypto.CipherState]
}

func NewHandler(config *Config) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	limits := config.Limits
	if limits.MaxKeys <= 0 {
		limits.MaxKeys = defaultMaxKeys
	}
	if limits.HashOperations <= 0 {
		limits.HashOperations = defaultOperations
	}
	if limits.MacOperations <= 0 {
		limits.MacOperations = defaultOperations
	}
	if limits.CipherOperations <= 0 {
		limits.CipherOperations = defaultOperations
	}
	return &Handler{
		store:  softcrypto.NewStore(limits.MaxKeys),
		hash:   optable.NewTable[softcrypto.HashState](limits.HashOperations),
		mac:    optable.NewTable[softcrypto.MacState](limits.MacOperations),
		cipher: optable.NewTable[softcrypto.CipherState](limits.CipherOperations),
	}
}

// Reset discards every live operation across all classes, invalidating all
// outstanding handles. Keys are not affected. The server calls this when the
// last client disconnects.
func (h *Handler) Reset() {
	h.hash.Reset()
	h.mac.Reset()
	h.cipher.Reset()
}

// Handle serves one request and returns the reply, a prefix of rsp.
func (h *Handler) Handle(ctx context.Context, req, rsp []byte) ([]byte, error) {
	c := wire.NewCursor(req)
	if err := wire.GetHeader(c); err != nil {
		return nil, err
	}
	id, err := cryptocall.GetCallID(c)
	if err != nil {
		return nil, err
	}
	if id < 0 || id >= cryptocall.NumCalls {
		return nil, &cryptocall.UnknownCallError{Call: id}
	}
	r := wire.NewCursor(rsp)
	if err := wire.PutHeader(r); err != nil {
		return nil, err
	}
	if err := h.serve(ctx, id, c, r); err != nil {
		return nil, &cryptocall.CallError{Call: id, Err: err}
	}
	return r.Bytes(), nil
}

func (h *Handler) serve(ctx context.Context, id cryptocall.CallID, c, r *wire.Cursor) error {
	switch id {
	case cryptocall.CallGenerateRandom:
		n, err := wire.GetUint(c)
		if err != nil {
			return err
		}
		// The payload must fit in the reply region along with the status.
		if n > uint(r.Remaining()) || wire.Int32Needs+wire.BufferNeeds(int(n)) > r.Remaining() {
			return cryptocall.PutStatus(r, cryptocall.StatusInsufficientMemory)
		}
		out := make([]byte, n)
		return putBufferReply(r, out, softcrypto.GenerateRandom(out))

	case cryptocall.CallComputeHash:
		alg, err := cryptocall.GetAlgorithm(c)
		if err != nil {
			return err
		}
		input, err := wire.GetBuffer(c)
		if err != nil {
			return err
		}
		digest, status := softcrypto.ComputeHash(alg, input)
		return putBufferReply(r, digest, status)

	case cryptocall.CallGenerateKey:
		attrs, err := cryptocall.GetKeyAttributes(c)
		if err != nil {
			return err
		}
		params, err := cryptocall.GetKeyParams(c)
		if err != nil {
			return err
		}
		key, status := h.store.Generate(attrs, params)
		return putKeyIDReply(r, key, status)

	case cryptocall.CallImportKey:
		attrs, err := cryptocall.GetKeyAttributes(c)
		if err != nil {
			return err
		}
		material, err := wire.GetBuffer(c)
		if err != nil {
			return err
		}
		key, status := h.store.Import(attrs, material)
		return putKeyIDReply(r, key, status)

	case cryptocall.CallExportKey:
		key, err := cryptocall.GetKeyID(c)
		if err != nil {
			return err
		}
		material, status := h.store.Export(key)
		return putBufferReply(r, material, status)

	case cryptocall.CallDestroyKey:
		key, err := cryptocall.GetKeyID(c)
		if err != nil {
			return err
		}
		return cryptocall.PutStatus(r, h.store.Destroy(key))

	case cryptocall.CallHashSetup:
		handle, err := cryptocall.GetHandle(c)
		if err != nil {
			return err
		}
		alg, err := cryptocall.GetAlgorithm(c)
		if err != nil {
			return err
		}
		handle, status := setup(h.hash, handle, func(s *softcrypto.HashState) cryptocall.Status {
			return s.Setup(alg)
		})
		return putHandleReply(r, handle, status)

	case cryptocall.CallHashUpdate:
		handle, err := cryptocall.GetHandle(c)
		if err != nil {
			return err
		}
		input, err := wire.GetBuffer(c)
		if err != nil {
			return err
		}
		s, status := resolve(h.hash, handle)
		if status == cryptocall.StatusSuccess {
			status = s.Update(input)
		}
		return cryptocall.PutStatus(r, status)

	case cryptocall.CallHashFinish:
		handle, err := cryptocall.GetHandle(c)
		if err != nil {
			return err
		}
		var digest []byte
		status := finish(h.hash, handle, terminalSuccess, func(s *softcrypto.HashState) (status cryptocall.Status) {
			digest, status = s.Finish()
			return status
		})
		return putBufferReply(r, digest, status)

	case cryptocall.CallHashVerify:
		handle, err := cryptocall.GetHandle(c)
		if err != nil {
			return err
		}
		expected, err := wire.GetBuffer(c)
		if err != nil {
			return err
		}
		status := finish(h.hash, handle, terminalVerify, func(s *softcrypto.HashState) cryptocall.Status {
			return s.Verify(expected)
		})
		return cryptocall.PutStatus(r, status)

	case cryptocall.CallHashAbort:
		handle, err := cryptocall.GetHandle(c)
		if err != nil {
			return err
		}
		return cryptocall.PutStatus(r, abort(h.hash, handle))

	case cryptocall.CallHashClone:
		source, err := cryptocall.GetHandle(c)
		if err != nil {
			return err
		}
		target, err := cryptocall.GetHandle(c)
		if err != nil {
			return err
		}
		src, status := resolve(h.hash, source)
		if status != cryptocall.StatusSuccess {
			return putHandleReply(r, 0, status)
		}
		target, status = setup(h.hash, target, func(dst *softcrypto.HashState) cryptocall.Status {
			return src.CloneTo(dst)
		})
		return putHandleReply(r, target, status)

	case cryptocall.CallMacSignSetup:
		return h.macSetup(c, r, cryptocall.KeyUsageSign, false)

	case cryptocall.CallMacVerifySetup:
		return h.macSetup(c, r, cryptocall.KeyUsageVerify, true)

	case cryptocall.CallMacUpdate:
		handle, err := cryptocall.GetHandle(c)
		if err != nil {
			return err
		}
		input, err := wire.GetBuffer(c)
		if err != nil {
			return err
		}
		s, status := resolve(h.mac, handle)
		if status == cryptocall.StatusSuccess {
			status = s.Update(input)
		}
		return cryptocall.PutStatus(r, status)

	case cryptocall.CallMacSignFinish:
		handle, err := cryptocall.GetHandle(c)
		if err != nil {
			return err
		}
		var mac []byte
		status := finish(h.mac, handle, terminalSuccess, func(s *softcrypto.MacState) (status cryptocall.Status) {
			mac, status = s.SignFinish()
			return status
		})
		return putBufferReply(r, mac, status)

	case cryptocall.CallMacVerifyFinish:
		handle, err := cryptocall.GetHandle(c)
		if err != nil {
			return err
		}
		expected, err := wire.GetBuffer(c)
		if err != nil {
			return err
		}
		status := finish(h.mac, handle, terminalVerify, func(s *softcrypto.MacState) cryptocall.Status {
			return s.VerifyFinish(expected)
		})
		return cryptocall.PutStatus(r, status)

	case cryptocall.CallMacAbort:
		handle, err := cryptocall.GetHandle(c)
		if err != nil {
			return err
		}
		return cryptocall.PutStatus(r, abort(h.mac, handle))

	case cryptocall.CallCipherEncryptSetup:
		return h.cipherSetup(c, r, cryptocall.KeyUsageEncrypt, false)

	case cryptocall.CallCipherDecryptSetup:
		return h.cipherSetup(c, r, cryptocall.KeyUsageDecrypt, true)

	case cryptocall.CallCipherGenerateIV:
		handle, err := cryptocall.GetHandle(c)
		if err != nil {
			return err
		}
		var iv []byte
		s, status := resolve(h.cipher, handle)
		if status == cryptocall.StatusSuccess {
			iv, status = s.GenerateIV()
		}
		return putBufferReply(r, iv, status)

	case cryptocall.CallCipherSetIV:
		handle, err := cryptocall.GetHandle(c)
		if err != nil {
			return err
		}
		iv, err := wire.GetBuffer(c)
		if err != nil {
			return err
		}
		s, status := resolve(h.cipher, handle)
		if status == cryptocall.StatusSuccess {
			status = s.SetIV(iv)
		}
		return cryptocall.PutStatus(r, status)

	case cryptocall.CallCipherUpdate:
		handle, err := cryptocall.GetHandle(c)
		if err != nil {
			return err
		}
		input, err := wire.GetBuffer(c)
		if err != nil {
			return err
		}
		var out []byte
		s, status := resolve(h.cipher, handle)
		if status == cryptocall.StatusSuccess {
			out, status = s.Update(input)
		}
		return putBufferReply(r, out, status)

	case cryptocall.CallCipherFinish:
		handle, err := cryptocall.GetHandle(c)
		if err != nil {
			return err
		}
		var out []byte
		status := finish(h.cipher, handle, terminalSuccess, func(s *softcrypto.CipherState) (status cryptocall.Status) {
			out, status = s.Finish()
			return status
		})
		return putBufferReply(r, out, status)

	case cryptocall.CallCipherAbort:
		handle, err := cryptocall.GetHandle(c)
		if err != nil {
			return err
		}
		return cryptocall.PutStatus(r, abort(h.cipher, handle))
	}
	return &cryptocall.UnknownCallError{Call: id}
}

func (h *Handler) macSetup(c, r *wire.Cursor, usage cryptocall.KeyUsage, verify bool) error {
	handle, err := cryptocall.GetHandle(c)
	if err != nil {
		return err
	}
	key, err := cryptocall.GetKeyID(c)
	if err != nil {
		return err
	}
	alg, err := cryptocall.GetAlgorithm(c)
	if err != nil {
		return err
	}
	handle, status := setup(h.mac, handle, func(s *softcrypto.MacState) cryptocall.Status {
		k, status := h.store.Use(key, usage, alg)
		if status != cryptocall.StatusSuccess {
			return status
		}
		return s.Setup(k, alg, verify)
	})
	return putHandleReply(r, handle, status)
}

func (h *Handler) cipherSetup(c, r *wire.Cursor, usage cryptocall.KeyUsage, decrypt bool) error {
	handle, err := cryptocall.GetHandle(c)
	if err != nil {
		return err
	}
	key, err := cryptocall.GetKeyID(c)
	if err != nil {
		return err
	}
	alg, err := cryptocall.GetAlgorithm(c)
	if err != nil {
		return err
	}
	handle, status := setup(h.cipher, handle, func(s *softcrypto.CipherState) cryptocall.Status {
		k, status := h.store.Use(key, usage, alg)
		if status != cryptocall.StatusSuccess {
			return status
		}
		return s.Setup(k, alg, decrypt)
	})
	return putHandleReply(r, handle, status)
}

// setup binds the operation slot of a setup call and initializes it through
// fn. A zero request handle allocates a new slot; a nonzero one resolves an
// existing operation, which fn then rejects as already active. A freshly
// allocated slot is released again when fn fails, so failed setups do not
// leak capacity.
func setup[T any](table *optable.Table[T], h cryptocall.Handle, fn func(*T) cryptocall.Status) (cryptocall.Handle, cryptocall.Status) {
	var state *T
	allocated := false
	if h == 0 {
		handle, slot, err := table.Allocate()
		if err != nil {
			return 0, allocateStatus(err)
		}
		h, state, allocated = handle, slot, true
	} else {
		slot, err := table.Lookup(h)
		if err != nil {
			return 0, cryptocall.StatusInvalidHandle
		}
		state = slot
	}
	if status := fn(state); status != cryptocall.StatusSuccess {
		if allocated {
			table.Release(h)
		}
		return 0, status
	}
	return h, cryptocall.StatusSuccess
}

// resolve looks up the slot of a mid-operation call.
func resolve[T any](table *optable.Table[T], h cryptocall.Handle) (*T, cryptocall.Status) {
	state, err := table.Lookup(h)
	if err != nil {
		return nil, cryptocall.StatusInvalidHandle
	}
	return state, cryptocall.StatusSuccess
}

// finish runs a terminal call and releases the slot when the status says the
// operation completed, making the handle stale.
func finish[T any](table *optable.Table[T], h cryptocall.Handle, terminal func(cryptocall.Status) bool, fn func(*T) cryptocall.Status) cryptocall.Status {
	state, status := resolve(table, h)
	if status != cryptocall.StatusSuccess {
		return status
	}
	status = fn(state)
	if terminal(status) {
		table.Release(h)
	}
	return status
}

// abort releases the slot of an operation. Aborting the zero handle is a
// successful no-op: the operation was never set up.
func abort[T any](table *optable.Table[T], h cryptocall.Handle) cryptocall.Status {
	if h == 0 {
		return cryptocall.StatusSuccess
	}
	if err := table.Release(h); err != nil {
		return cryptocall.StatusInvalidHandle
	}
	return cryptocall.StatusSuccess
}

func terminalSuccess(status cryptocall.Status) bool {
	return status == cryptocall.StatusSuccess
}

// terminalVerify also consumes the operation when the comparison failed: a
// mismatch completes a verification, it does not suspend it.
func terminalVerify(status cryptocall.Status) bool {
	return status == cryptocall.StatusSuccess || status == cryptocall.StatusInvalidSignature
}

func allocateStatus(err error) cryptocall.Status {
	if errors.Is(err, optable.ErrTableFull) {
		return cryptocall.StatusInsufficientMemory
	}
	return cryptocall.StatusGenericError
}

func putBufferReply(r *wire.Cursor, out []byte, status cryptocall.Status) error {
	if err := cryptocall.PutStatus(r, status); err != nil {
		return err
	}
	if status != cryptocall.StatusSuccess {
		return nil
	}
	return wire.PutBuffer(r, out)
}

func putHandleReply(r *wire.Cursor, h cryptocall.Handle, status cryptocall.Status) error {
	if err := cryptocall.PutStatus(r, status); err != nil {
		return err
	}
	if status != cryptocall.StatusSuccess {
		return nil
	}
	return cryptocall.PutHandle(r, h)
}

func putKeyIDReply(r *wire.Cursor, key cryptocall.KeyID, status cryptocall.Status) error {
	if err := cryptocall.PutStatus(r, status); err != nil {
		return err
	}
	if status != cryptocall.StatusSuccess {
		return nil
	}
	return cryptocall.PutKeyID(r, key)
}

package cryptocall

import (
	"context"

	"github.com/stealthrocket/cryptosim/internal/buffer"
	"github.com/stealthrocket/cryptosim/internal/wire"
)

// Transport carries one marshaled request to the server and returns the
// marshaled reply. Implementations see opaque bytes only: the contract is
// "send these bytes, give me the reply bytes" and nothing more.
type Transport interface {
	RoundTrip(ctx context.Context, req []byte) ([]byte, error)
}

// Proxy is the client side of the protocol: a Service whose methods marshal
// their arguments into a pooled buffer sized by the matching needs
// computation, exchange one message through the transport, and unmarshal the
// reply. Failures of the exchange or of unmarshaling surface as
// StatusCommunicationFailure; everything else is the server's status.
//
// A Proxy is safe for concurrent use if its transport is.
type Proxy struct {
	transport Transport
	pool      buffer.Pool
}

var _ Service = (*Proxy)(nil)

func NewProxy(transport Transport) *Proxy {
	return &Proxy{transport: transport}
}

// requestNeeds is the fixed cost of every request: the negotiation header
// and the call number.
const requestNeeds = wire.HeaderNeeds + callIDNeeds

func (p *Proxy) begin(c *wire.Cursor, id CallID) error {
	if err := wire.PutHeader(c); err != nil {
		return err
	}
	return PutCallID(c, id)
}

// roundTrip sends the encoded request and returns a cursor positioned after
// the validated reply header, along with the server's status.
func (p *Proxy) roundTrip(ctx context.Context, c *wire.Cursor) (*wire.Cursor, Status, error) {
	rsp, err := p.transport.RoundTrip(ctx, c.Bytes())
	if err != nil {
		return nil, StatusCommunicationFailure, err
	}
	r := wire.NewCursor(rsp)
	if err := wire.GetHeader(r); err != nil {
		return nil, StatusCommunicationFailure, err
	}
	status, err := GetStatus(r)
	if err != nil {
		return nil, StatusCommunicationFailure, err
	}
	return r, status, nil
}

// exchange round-trips a request whose reply carries no output values.
func (p *Proxy) exchange(ctx context.Context, c *wire.Cursor) Status {
	_, status, err := p.roundTrip(ctx, c)
	if err != nil {
		return StatusCommunicationFailure
	}
	return status
}

// exchangeBuffer round-trips a request whose reply carries one flat buffer
// when it succeeds.
func (p *Proxy) exchangeBuffer(ctx context.Context, c *wire.Cursor) ([]byte, Status) {
	r, status, err := p.roundTrip(ctx, c)
	if err != nil {
		return nil, StatusCommunicationFailure
	}
	if status != StatusSuccess {
		return nil, status
	}
	out, err := wire.GetBuffer(r)
	if err != nil {
		return nil, StatusCommunicationFailure
	}
	return out, status
}

// exchangeHandle round-trips a request whose reply carries an operation
// handle when it succeeds, storing it through dst.
func (p *Proxy) exchangeHandle(ctx context.Context, c *wire.Cursor, dst *Handle) Status {
	r, status, err := p.roundTrip(ctx, c)
	if err != nil {
		return StatusCommunicationFailure
	}
	if status != StatusSuccess {
		return status
	}
	h, err := GetHandle(r)
	if err != nil {
		return StatusCommunicationFailure
	}
	*dst = h
	return status
}

// exchangeKeyID round-trips a request whose reply carries a key identifier
// when it succeeds.
func (p *Proxy) exchangeKeyID(ctx context.Context, c *wire.Cursor) (KeyID, Status) {
	r, status, err := p.roundTrip(ctx, c)
	if err != nil {
		return 0, StatusCommunicationFailure
	}
	if status != StatusSuccess {
		return 0, status
	}
	key, err := GetKeyID(r)
	if err != nil {
		return 0, StatusCommunicationFailure
	}
	return key, status
}

func (p *Proxy) GenerateRandom(ctx context.Context, buf []byte) Status {
	b := p.pool.Get(requestNeeds + wire.UintNeeds)
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, CallGenerateRandom); err != nil {
		return StatusCommunicationFailure
	}
	if err := wire.PutUint(c, uint(len(buf))); err != nil {
		return StatusCommunicationFailure
	}
	r, status, err := p.roundTrip(ctx, c)
	if err != nil {
		return StatusCommunicationFailure
	}
	if status != StatusSuccess {
		return status
	}
	// The reply must carry exactly the requested number of bytes; anything
	// else fails before touching buf.
	if err := wire.GetBufferInto(r, buf); err != nil {
		return StatusCommunicationFailure
	}
	return status
}

func (p *Proxy) ComputeHash(ctx context.Context, alg Algorithm, input []byte) ([]byte, Status) {
	b := p.pool.Get(requestNeeds + algorithmNeeds + wire.BufferNeeds(len(input)))
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, CallComputeHash); err != nil {
		return nil, StatusCommunicationFailure
	}
	if err := PutAlgorithm(c, alg); err != nil {
		return nil, StatusCommunicationFailure
	}
	if err := wire.PutBuffer(c, input); err != nil {
		return nil, StatusCommunicationFailure
	}
	return p.exchangeBuffer(ctx, c)
}

func (p *Proxy) GenerateKey(ctx context.Context, attrs KeyAttributes, params *KeyProductionParameters) (KeyID, Status) {
	if params == nil {
		params = &KeyProductionParameters{}
	}
	b := p.pool.Get(requestNeeds + attrsNeeds + keyParamsNeeds(params))
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, CallGenerateKey); err != nil {
		return 0, StatusCommunicationFailure
	}
	if err := PutKeyAttributes(c, attrs); err != nil {
		return 0, StatusCommunicationFailure
	}
	if err := PutKeyParams(c, params); err != nil {
		return 0, StatusCommunicationFailure
	}
	return p.exchangeKeyID(ctx, c)
}

func (p *Proxy) ImportKey(ctx context.Context, attrs KeyAttributes, material []byte) (KeyID, Status) {
	b := p.pool.Get(requestNeeds + attrsNeeds + wire.BufferNeeds(len(material)))
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, CallImportKey); err != nil {
		return 0, StatusCommunicationFailure
	}
	if err := PutKeyAttributes(c, attrs); err != nil {
		return 0, StatusCommunicationFailure
	}
	if err := wire.PutBuffer(c, material); err != nil {
		return 0, StatusCommunicationFailure
	}
	return p.exchangeKeyID(ctx, c)
}

func (p *Proxy) ExportKey(ctx context.Context, key KeyID) ([]byte, Status) {
	b := p.pool.Get(requestNeeds + keyIDNeeds)
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, CallExportKey); err != nil {
		return nil, StatusCommunicationFailure
	}
	if err := PutKeyID(c, key); err != nil {
		return nil, StatusCommunicationFailure
	}
	return p.exchangeBuffer(ctx, c)
}

func (p *Proxy) DestroyKey(ctx context.Context, key KeyID) Status {
	b := p.pool.Get(requestNeeds + keyIDNeeds)
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, CallDestroyKey); err != nil {
		return StatusCommunicationFailure
	}
	if err := PutKeyID(c, key); err != nil {
		return StatusCommunicationFailure
	}
	return p.exchange(ctx, c)
}

func (p *Proxy) HashSetup(ctx context.Context, op *HashOperation, alg Algorithm) Status {
	b := p.pool.Get(requestNeeds + handleNeeds + algorithmNeeds)
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, CallHashSetup); err != nil {
		return StatusCommunicationFailure
	}
	if err := PutHandle(c, op.handle); err != nil {
		return StatusCommunicationFailure
	}
	if err := PutAlgorithm(c, alg); err != nil {
		return StatusCommunicationFailure
	}
	return p.exchangeHandle(ctx, c, &op.handle)
}

func (p *Proxy) HashUpdate(ctx context.Context, op *HashOperation, input []byte) Status {
	b := p.pool.Get(requestNeeds + handleNeeds + wire.BufferNeeds(len(input)))
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, CallHashUpdate); err != nil {
		return StatusCommunicationFailure
	}
	if err := PutHandle(c, op.handle); err != nil {
		return StatusCommunicationFailure
	}
	if err := wire.PutBuffer(c, input); err != nil {
		return StatusCommunicationFailure
	}
	return p.exchange(ctx, c)
}

func (p *Proxy) HashFinish(ctx context.Context, op *HashOperation) ([]byte, Status) {
	b := p.pool.Get(requestNeeds + handleNeeds)
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, CallHashFinish); err != nil {
		return nil, StatusCommunicationFailure
	}
	if err := PutHandle(c, op.handle); err != nil {
		return nil, StatusCommunicationFailure
	}
	digest, status := p.exchangeBuffer(ctx, c)
	if status == StatusSuccess {
		op.handle = 0
	}
	return digest, status
}

func (p *Proxy) HashVerify(ctx context.Context, op *HashOperation, expected []byte) Status {
	b := p.pool.Get(requestNeeds + handleNeeds + wire.BufferNeeds(len(expected)))
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, CallHashVerify); err != nil {
		return StatusCommunicationFailure
	}
	if err := PutHandle(c, op.handle); err != nil {
		return StatusCommunicationFailure
	}
	if err := wire.PutBuffer(c, expected); err != nil {
		return StatusCommunicationFailure
	}
	status := p.exchange(ctx, c)
	if status == StatusSuccess || status == StatusInvalidSignature {
		op.handle = 0
	}
	return status
}

func (p *Proxy) HashAbort(ctx context.Context, op *HashOperation) Status {
	b := p.pool.Get(requestNeeds + handleNeeds)
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, CallHashAbort); err != nil {
		return StatusCommunicationFailure
	}
	if err := PutHandle(c, op.handle); err != nil {
		return StatusCommunicationFailure
	}
	status := p.exchange(ctx, c)
	if status == StatusSuccess {
		op.handle = 0
	}
	return status
}

func (p *Proxy) HashClone(ctx context.Context, source, target *HashOperation) Status {
	b := p.pool.Get(requestNeeds + 2*handleNeeds)
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, CallHashClone); err != nil {
		return StatusCommunicationFailure
	}
	if err := PutHandle(c, source.handle); err != nil {
		return StatusCommunicationFailure
	}
	if err := PutHandle(c, target.handle); err != nil {
		return StatusCommunicationFailure
	}
	return p.exchangeHandle(ctx, c, &target.handle)
}

func (p *Proxy) macSetup(ctx context.Context, id CallID, op *MacOperation, key KeyID, alg Algorithm) Status {
	b := p.pool.Get(requestNeeds + handleNeeds + keyIDNeeds + algorithmNeeds)
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, id); err != nil {
		return StatusCommunicationFailure
	}
	if err := PutHandle(c, op.handle); err != nil {
		return StatusCommunicationFailure
	}
	if err := PutKeyID(c, key); err != nil {
		return StatusCommunicationFailure
	}
	if err := PutAlgorithm(c, alg); err != nil {
		return StatusCommunicationFailure
	}
	return p.exchangeHandle(ctx, c, &op.handle)
}

func (p *Proxy) MacSignSetup(ctx context.Context, op *MacOperation, key KeyID, alg Algorithm) Status {
	return p.macSetup(ctx, CallMacSignSetup, op, key, alg)
}

func (p *Proxy) MacVerifySetup(ctx context.Context, op *MacOperation, key KeyID, alg Algorithm) Status {
	return p.macSetup(ctx, CallMacVerifySetup, op, key, alg)
}

func (p *Proxy) MacUpdate(ctx context.Context, op *MacOperation, input []byte) Status {
	b := p.pool.Get(requestNeeds + handleNeeds + wire.BufferNeeds(len(input)))
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, CallMacUpdate); err != nil {
		return StatusCommunicationFailure
	}
	if err := PutHandle(c, op.handle); err != nil {
		return StatusCommunicationFailure
	}
	if err := wire.PutBuffer(c, input); err != nil {
		return StatusCommunicationFailure
	}
	return p.exchange(ctx, c)
}

func (p *Proxy) MacSignFinish(ctx context.Context, op *MacOperation) ([]byte, Status) {
	b := p.pool.Get(requestNeeds + handleNeeds)
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, CallMacSignFinish); err != nil {
		return nil, StatusCommunicationFailure
	}
	if err := PutHandle(c, op.handle); err != nil {
		return nil, StatusCommunicationFailure
	}
	mac, status := p.exchangeBuffer(ctx, c)
	if status == StatusSuccess {
		op.handle = 0
	}
	return mac, status
}

func (p *Proxy) MacVerifyFinish(ctx context.Context, op *MacOperation, expected []byte) Status {
	b := p.pool.Get(requestNeeds + handleNeeds + wire.BufferNeeds(len(expected)))
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, CallMacVerifyFinish); err != nil {
		return StatusCommunicationFailure
	}
	if err := PutHandle(c, op.handle); err != nil {
		return StatusCommunicationFailure
	}
	if err := wire.PutBuffer(c, expected); err != nil {
		return StatusCommunicationFailure
	}
	status := p.exchange(ctx, c)
	if status == StatusSuccess || status == StatusInvalidSignature {
		op.handle = 0
	}
	return status
}

func (p *Proxy) MacAbort(ctx context.Context, op *MacOperation) Status {
	b := p.pool.Get(requestNeeds + handleNeeds)
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, CallMacAbort); err != nil {
		return StatusCommunicationFailure
	}
	if err := PutHandle(c, op.handle); err != nil {
		return StatusCommunicationFailure
	}
	status := p.exchange(ctx, c)
	if status == StatusSuccess {
		op.handle = 0
	}
	return status
}

func (p *Proxy) cipherSetup(ctx context.Context, id CallID, op *CipherOperation, key KeyID, alg Algorithm) Status {
	b := p.pool.Get(requestNeeds + handleNeeds + keyIDNeeds + algorithmNeeds)
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, id); err != nil {
		return StatusCommunicationFailure
	}
	if err := PutHandle(c, op.handle); err != nil {
		return StatusCommunicationFailure
	}
	if err := PutKeyID(c, key); err != nil {
		return StatusCommunicationFailure
	}
	if err := PutAlgorithm(c, alg); err != nil {
		return StatusCommunicationFailure
	}
	return p.exchangeHandle(ctx, c, &op.handle)
}

func (p *Proxy) CipherEncryptSetup(ctx context.Context, op *CipherOperation, key KeyID, alg Algorithm) Status {
	return p.cipherSetup(ctx, CallCipherEncryptSetup, op, key, alg)
}

func (p *Proxy) CipherDecryptSetup(ctx context.Context, op *CipherOperation, key KeyID, alg Algorithm) Status {
	return p.cipherSetup(ctx, CallCipherDecryptSetup, op, key, alg)
}

func (p *Proxy) CipherGenerateIV(ctx context.Context, op *CipherOperation) ([]byte, Status) {
	b := p.pool.Get(requestNeeds + handleNeeds)
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, CallCipherGenerateIV); err != nil {
		return nil, StatusCommunicationFailure
	}
	if err := PutHandle(c, op.handle); err != nil {
		return nil, StatusCommunicationFailure
	}
	return p.exchangeBuffer(ctx, c)
}

func (p *Proxy) CipherSetIV(ctx context.Context, op *CipherOperation, iv []byte) Status {
	b := p.pool.Get(requestNeeds + handleNeeds + wire.BufferNeeds(len(iv)))
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, CallCipherSetIV); err != nil {
		return StatusCommunicationFailure
	}
	if err := PutHandle(c, op.handle); err != nil {
		return StatusCommunicationFailure
	}
	if err := wire.PutBuffer(c, iv); err != nil {
		return StatusCommunicationFailure
	}
	return p.exchange(ctx, c)
}

func (p *Proxy) CipherUpdate(ctx context.Context, op *CipherOperation, input []byte) ([]byte, Status) {
	b := p.pool.Get(requestNeeds + handleNeeds + wire.BufferNeeds(len(input)))
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, CallCipherUpdate); err != nil {
		return nil, StatusCommunicationFailure
	}
	if err := PutHandle(c, op.handle); err != nil {
		return nil, StatusCommunicationFailure
	}
	if err := wire.PutBuffer(c, input); err != nil {
		return nil, StatusCommunicationFailure
	}
	return p.exchangeBuffer(ctx, c)
}

func (p *Proxy) CipherFinish(ctx context.Context, op *CipherOperation) ([]byte, Status) {
	b := p.pool.Get(requestNeeds + handleNeeds)
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, CallCipherFinish); err != nil {
		return nil, StatusCommunicationFailure
	}
	if err := PutHandle(c, op.handle); err != nil {
		return nil, StatusCommunicationFailure
	}
	out, status := p.exchangeBuffer(ctx, c)
	if status == StatusSuccess {
		op.handle = 0
	}
	return out, status
}

func (p *Proxy) CipherAbort(ctx context.Context, op *CipherOperation) Status {
	b := p.pool.Get(requestNeeds + handleNeeds)
	defer p.pool.Put(b)

	c := wire.NewCursor(b.Data)
	if err := p.begin(c, CallCipherAbort); err != nil {
		return StatusCommunicationFailure
	}
	if err := PutHandle(c, op.handle); err != nil {
		return StatusCommunicationFailure
	}
	status := p.exchange(ctx, c)
	if status == StatusSuccess {
		op.handle = 0
	}
	return status
}

package softcrypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stealthrocket/cryptosim/internal/assert"
	"github.com/stealthrocket/cryptosim/internal/cryptocall"
)

func TestComputeHashVector(t *testing.T) {
	digest, status := ComputeHash(cryptocall.AlgSHA256, []byte("abc"))
	assert.Equal(t, status, cryptocall.StatusSuccess)
	assert.Equal(t, hex.EncodeToString(digest),
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
}

func TestComputeHashUnsupported(t *testing.T) {
	_, status := ComputeHash(cryptocall.AlgAESCTR, []byte("abc"))
	assert.Equal(t, status, cryptocall.StatusNotSupported)
}

func TestHashStateMatchesOneShot(t *testing.T) {
	var s HashState
	assert.Equal(t, s.Setup(cryptocall.AlgSHA512), cryptocall.StatusSuccess)
	assert.Equal(t, s.Update([]byte("hello ")), cryptocall.StatusSuccess)
	assert.Equal(t, s.Update([]byte("world")), cryptocall.StatusSuccess)

	digest, status := s.Finish()
	assert.Equal(t, status, cryptocall.StatusSuccess)

	want, _ := ComputeHash(cryptocall.AlgSHA512, []byte("hello world"))
	assert.EqualAll(t, digest, want)
}

func TestHashStateLifecycle(t *testing.T) {
	var s HashState
	assert.Equal(t, s.Update(nil), cryptocall.StatusBadState)
	assert.Equal(t, s.Setup(cryptocall.AlgSHA256), cryptocall.StatusSuccess)
	assert.Equal(t, s.Setup(cryptocall.AlgSHA256), cryptocall.StatusBadState)
}

func TestHashStateVerify(t *testing.T) {
	want, _ := ComputeHash(cryptocall.AlgSHA256, []byte("payload"))

	var s HashState
	s.Setup(cryptocall.AlgSHA256)
	s.Update([]byte("payload"))
	assert.Equal(t, s.Verify(want), cryptocall.StatusSuccess)

	var m HashState
	m.Setup(cryptocall.AlgSHA256)
	m.Update([]byte("tampered"))
	assert.Equal(t, m.Verify(want), cryptocall.StatusInvalidSignature)
}

func TestHashStateClone(t *testing.T) {
	var source, target HashState
	source.Setup(cryptocall.AlgSHA256)
	source.Update([]byte("shared prefix|"))
	assert.Equal(t, source.CloneTo(&target), cryptocall.StatusSuccess)

	source.Update([]byte("left"))
	target.Update([]byte("right"))

	gotSource, _ := source.Finish()
	gotTarget, _ := target.Finish()
	wantSource, _ := ComputeHash(cryptocall.AlgSHA256, []byte("shared prefix|left"))
	wantTarget, _ := ComputeHash(cryptocall.AlgSHA256, []byte("shared prefix|right"))
	assert.EqualAll(t, gotSource, wantSource)
	assert.EqualAll(t, gotTarget, wantTarget)
}

func TestHashStateCloneBadState(t *testing.T) {
	var source, target HashState
	assert.Equal(t, source.CloneTo(&target), cryptocall.StatusBadState)

	source.Setup(cryptocall.AlgSHA256)
	target.Setup(cryptocall.AlgSHA256)
	assert.Equal(t, source.CloneTo(&target), cryptocall.StatusBadState)
}

func TestMacSignAndVerify(t *testing.T) {
	key := &Key{
		Attrs:    KeyAttributes{Type: cryptocall.KeyTypeHMAC, Alg: cryptocall.AlgHMACSHA256},
		Material: []byte("super secret key"),
	}

	var sign MacState
	assert.Equal(t, sign.Setup(key, cryptocall.AlgHMACSHA256, false), cryptocall.StatusSuccess)
	assert.Equal(t, sign.Update([]byte("message")), cryptocall.StatusSuccess)
	tag, status := sign.SignFinish()
	assert.Equal(t, status, cryptocall.StatusSuccess)

	m := hmac.New(sha256.New, key.Material)
	m.Write([]byte("message"))
	assert.EqualAll(t, tag, m.Sum(nil))

	var verify MacState
	assert.Equal(t, verify.Setup(key, cryptocall.AlgHMACSHA256, true), cryptocall.StatusSuccess)
	verify.Update([]byte("message"))
	assert.Equal(t, verify.VerifyFinish(tag), cryptocall.StatusSuccess)

	var bad MacState
	bad.Setup(key, cryptocall.AlgHMACSHA256, true)
	bad.Update([]byte("other message"))
	assert.Equal(t, bad.VerifyFinish(tag), cryptocall.StatusInvalidSignature)
}

func TestMacModeEnforced(t *testing.T) {
	key := &Key{Material: []byte("super secret key")}

	var sign MacState
	sign.Setup(key, cryptocall.AlgHMACSHA256, false)
	assert.Equal(t, sign.VerifyFinish(nil), cryptocall.StatusBadState)

	var verify MacState
	verify.Setup(key, cryptocall.AlgHMACSHA256, true)
	_, status := verify.SignFinish()
	assert.Equal(t, status, cryptocall.StatusBadState)
}

func TestCipherRoundTrip(t *testing.T) {
	key := &Key{Material: []byte("0123456789abcdef")}
	plaintext := []byte("attack at dawn, bring snacks")

	var enc CipherState
	assert.Equal(t, enc.Setup(key, cryptocall.AlgAESCTR, false), cryptocall.StatusSuccess)
	iv, status := enc.GenerateIV()
	assert.Equal(t, status, cryptocall.StatusSuccess)
	assert.Equal(t, len(iv), 16)
	ciphertext, status := enc.Update(plaintext)
	assert.Equal(t, status, cryptocall.StatusSuccess)
	_, status = enc.Finish()
	assert.Equal(t, status, cryptocall.StatusSuccess)

	var dec CipherState
	assert.Equal(t, dec.Setup(key, cryptocall.AlgAESCTR, true), cryptocall.StatusSuccess)
	assert.Equal(t, dec.SetIV(iv), cryptocall.StatusSuccess)
	decrypted, status := dec.Update(ciphertext)
	assert.Equal(t, status, cryptocall.StatusSuccess)
	assert.EqualAll(t, decrypted, plaintext)
}

func TestCipherStateRules(t *testing.T) {
	key := &Key{Material: []byte("0123456789abcdef")}

	var dec CipherState
	dec.Setup(key, cryptocall.AlgAESCTR, true)
	_, status := dec.GenerateIV()
	assert.Equal(t, status, cryptocall.StatusBadState)
	assert.Equal(t, dec.SetIV([]byte("short")), cryptocall.StatusInvalidArgument)
	_, status = dec.Update([]byte("data"))
	assert.Equal(t, status, cryptocall.StatusBadState)

	var enc CipherState
	badKey := &Key{Material: []byte("too short")}
	assert.Equal(t, enc.Setup(badKey, cryptocall.AlgAESCTR, false), cryptocall.StatusInvalidArgument)
}

func TestStoreGenerateAndUse(t *testing.T) {
	store := NewStore(4)

	id, status := store.Generate(KeyAttributes{
		Type:  cryptocall.KeyTypeAES,
		Bits:  128,
		Usage: cryptocall.KeyUsageEncrypt,
		Alg:   cryptocall.AlgAESCTR,
	}, nil)
	assert.Equal(t, status, cryptocall.StatusSuccess)
	assert.True(t, id != 0)

	key, status := store.Use(id, cryptocall.KeyUsageEncrypt, cryptocall.AlgAESCTR)
	assert.Equal(t, status, cryptocall.StatusSuccess)
	assert.Equal(t, len(key.Material), 16)

	_, status = store.Use(id, cryptocall.KeyUsageDecrypt, cryptocall.AlgAESCTR)
	assert.Equal(t, status, cryptocall.StatusNotPermitted)
	_, status = store.Use(id, cryptocall.KeyUsageEncrypt, cryptocall.AlgHMACSHA256)
	assert.Equal(t, status, cryptocall.StatusNotPermitted)
}

func TestStoreGenerateValidation(t *testing.T) {
	store := NewStore(4)

	attrs := KeyAttributes{Type: cryptocall.KeyTypeAES, Bits: 133}
	_, status := store.Generate(attrs, nil)
	assert.Equal(t, status, cryptocall.StatusInvalidArgument)

	attrs.Bits = 128
	_, status = store.Generate(attrs, &KeyProductionParameters{Data: []byte{1}})
	assert.Equal(t, status, cryptocall.StatusNotSupported)

	attrs.Type = cryptocall.KeyType(0x9999)
	_, status = store.Generate(attrs, nil)
	assert.Equal(t, status, cryptocall.StatusNotSupported)
}

func TestStoreImportExportDestroy(t *testing.T) {
	store := NewStore(4)
	material := []byte("exportable material")

	id, status := store.Import(KeyAttributes{
		Type:  cryptocall.KeyTypeRaw,
		Usage: cryptocall.KeyUsageExport,
	}, material)
	assert.Equal(t, status, cryptocall.StatusSuccess)

	got, status := store.Export(id)
	assert.Equal(t, status, cryptocall.StatusSuccess)
	assert.EqualAll(t, got, material)

	assert.Equal(t, store.Destroy(id), cryptocall.StatusSuccess)
	assert.Equal(t, store.Destroy(id), cryptocall.StatusDoesNotExist)
	_, status = store.Export(id)
	assert.Equal(t, status, cryptocall.StatusDoesNotExist)
}

func TestStoreImportSizeMismatch(t *testing.T) {
	store := NewStore(4)

	_, status := store.Import(KeyAttributes{Type: cryptocall.KeyTypeRaw, Bits: 256},
		[]byte("not thirty-two bytes"))
	assert.Equal(t, status, cryptocall.StatusInvalidArgument)
}

func TestStoreCapacity(t *testing.T) {
	store := NewStore(1)
	attrs := KeyAttributes{Type: cryptocall.KeyTypeRaw, Bits: 64}

	_, status := store.Generate(attrs, nil)
	assert.Equal(t, status, cryptocall.StatusSuccess)
	_, status = store.Generate(attrs, nil)
	assert.Equal(t, status, cryptocall.StatusInsufficientMemory)
}

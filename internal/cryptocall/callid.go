package cryptocall

import "fmt"

// CallID numbers the remote calls of the protocol. The number is the first
// value of every request after the header; both ends are built from this
// table and there is no runtime discovery of the call surface.
type CallID int32

const (
	CallGenerateRandom CallID = iota
	CallComputeHash
	CallGenerateKey
	CallImportKey
	CallExportKey
	CallDestroyKey
	CallHashSetup
	CallHashUpdate
	CallHashFinish
	CallHashVerify
	CallHashAbort
	CallHashClone
	CallMacSignSetup
	CallMacVerifySetup
	CallMacUpdate
	CallMacSignFinish
	CallMacVerifyFinish
	CallMacAbort
	CallCipherEncryptSetup
	CallCipherDecryptSetup
	CallCipherGenerateIV
	CallCipherSetIV
	CallCipherUpdate
	CallCipherFinish
	CallCipherAbort

	NumCalls
)

var callStrings = [NumCalls]string{
	CallGenerateRandom:     "GenerateRandom",
	CallComputeHash:        "ComputeHash",
	CallGenerateKey:        "GenerateKey",
	CallImportKey:          "ImportKey",
	CallExportKey:          "ExportKey",
	CallDestroyKey:         "DestroyKey",
	CallHashSetup:          "HashSetup",
	CallHashUpdate:         "HashUpdate",
	CallHashFinish:         "HashFinish",
	CallHashVerify:         "HashVerify",
	CallHashAbort:          "HashAbort",
	CallHashClone:          "HashClone",
	CallMacSignSetup:       "MacSignSetup",
	CallMacVerifySetup:     "MacVerifySetup",
	CallMacUpdate:          "MacUpdate",
	CallMacSignFinish:      "MacSignFinish",
	CallMacVerifyFinish:    "MacVerifyFinish",
	CallMacAbort:           "MacAbort",
	CallCipherEncryptSetup: "CipherEncryptSetup",
	CallCipherDecryptSetup: "CipherDecryptSetup",
	CallCipherGenerateIV:   "CipherGenerateIV",
	CallCipherSetIV:        "CipherSetIV",
	CallCipherUpdate:       "CipherUpdate",
	CallCipherFinish:       "CipherFinish",
	CallCipherAbort:        "CipherAbort",
}

func (c CallID) String() string {
	if c < 0 || c >= NumCalls {
		return fmt.Sprintf("CallID(%d)", int32(c))
	}
	return callStrings[c]
}

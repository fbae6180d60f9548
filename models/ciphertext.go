package models

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Ciphertext is an opaque handle to an encrypted 32-bit integer. The ledger
// never inspects the bytes; only an encryption.Scheme can combine handles and
// only the decryption oracle can open them. Serialized as 0x-prefixed hex.
type Ciphertext = hexutil.Bytes

// CiphertextEqual reports whether two handles reference the same ciphertext
// bytes. Identical handles imply identical hidden plaintexts; the converse
// does not hold for randomized schemes.
func CiphertextEqual(a, b Ciphertext) bool {
	return bytes.Equal(a, b)
}

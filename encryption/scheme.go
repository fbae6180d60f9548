package encryption

import "prefledger/models"

// Scheme is the homomorphic capability the ledger computes with. All
// operations work on opaque handles and never require (or permit) decryption;
// division is ciphertext by public constant only, never ciphertext by
// ciphertext.
//
// Subtraction underflow is defined by the backing scheme (uint32 wraparound
// for the transparent scheme, modular arithmetic for Paillier) and is
// deliberately not clamped: clamping would require comparing against zero,
// which means decrypting.
type Scheme interface {
	// Identity information
	Name() string
	KeySize() int

	// Core operations
	EncryptConstant(value uint32) (models.Ciphertext, error)
	Add(a, b models.Ciphertext) (models.Ciphertext, error)
	Subtract(a, b models.Ciphertext) (models.Ciphertext, error)
	DivideByConstant(a models.Ciphertext, divisor uint32) (models.Ciphertext, error)
}

// Decryptor opens ciphertext handles. Only the decryption oracle holds one;
// ledger services are constructed without it.
type Decryptor interface {
	Decrypt(c models.Ciphertext) (uint32, error)
}

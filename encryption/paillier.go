package encryption

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/roasbeef/go-go-gadget-paillier"

	"prefledger/models"
)

// PaillierScheme backs the Scheme interface with the additively homomorphic
// Paillier cryptosystem.
//
// Arithmetic happens in the plaintext space Z_n, so subtraction that would go
// negative wraps modulo n, and DivideByConstant (multiplication by the
// divisor's modular inverse) is exact only when the divisor divides the
// hidden plaintext. Both behaviors are inherent to computing blind; callers
// that need true integer semantics for non-divisible values should use a
// scheme with native integer division.
type PaillierScheme struct {
	keySize    int
	privateKey *paillier.PrivateKey
	publicKey  *paillier.PublicKey
}

// NewPaillierScheme generates a fresh key pair of the given size and returns
// a ready-to-use scheme.
func NewPaillierScheme(keySize int) (*PaillierScheme, error) {
	privateKey, err := paillier.GenerateKey(rand.Reader, keySize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Paillier key: %w", err)
	}

	return &PaillierScheme{
		keySize:    keySize,
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
	}, nil
}

// Name returns the name of the encryption scheme.
func (p *PaillierScheme) Name() string {
	return fmt.Sprintf("Paillier-%d", p.keySize)
}

// KeySize returns the key size in bits.
func (p *PaillierScheme) KeySize() int {
	return p.keySize
}

// EncryptConstant encrypts a public 32-bit constant.
func (p *PaillierScheme) EncryptConstant(value uint32) (models.Ciphertext, error) {
	ct, err := paillier.Encrypt(p.publicKey, new(big.Int).SetUint64(uint64(value)).Bytes())
	if err != nil {
		return nil, fmt.Errorf("paillier encryption failed: %w", err)
	}
	return ct, nil
}

// Add performs homomorphic addition of two ciphertexts.
func (p *PaillierScheme) Add(a, b models.Ciphertext) (models.Ciphertext, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, fmt.Errorf("empty ciphertext operand")
	}
	return paillier.AddCipher(p.publicKey, a, b), nil
}

// Subtract computes a - b by adding the (n-1)-multiple of b. Underflow wraps
// modulo n.
func (p *PaillierScheme) Subtract(a, b models.Ciphertext) (models.Ciphertext, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, fmt.Errorf("empty ciphertext operand")
	}

	negOne := new(big.Int).Sub(p.publicKey.N, big.NewInt(1))
	negated := paillier.Mul(p.publicKey, b, negOne.Bytes())
	return paillier.AddCipher(p.publicKey, a, negated), nil
}

// DivideByConstant multiplies by the divisor's inverse modulo n.
func (p *PaillierScheme) DivideByConstant(a models.Ciphertext, divisor uint32) (models.Ciphertext, error) {
	if len(a) == 0 {
		return nil, fmt.Errorf("empty ciphertext operand")
	}
	if divisor == 0 {
		return nil, fmt.Errorf("division by zero")
	}

	inverse := new(big.Int).ModInverse(new(big.Int).SetUint64(uint64(divisor)), p.publicKey.N)
	if inverse == nil {
		return nil, fmt.Errorf("divisor %d is not invertible modulo n", divisor)
	}
	return paillier.Mul(p.publicKey, a, inverse.Bytes()), nil
}

// Decrypt opens a ciphertext and truncates the plaintext to 32 bits.
func (p *PaillierScheme) Decrypt(c models.Ciphertext) (uint32, error) {
	if len(c) == 0 {
		return 0, fmt.Errorf("empty ciphertext")
	}

	plaintext, err := paillier.Decrypt(p.privateKey, c)
	if err != nil {
		return 0, fmt.Errorf("paillier decryption failed: %w", err)
	}

	value := new(big.Int).SetBytes(plaintext)
	value.Mod(value, new(big.Int).Lsh(big.NewInt(1), 32))
	return uint32(value.Uint64()), nil
}

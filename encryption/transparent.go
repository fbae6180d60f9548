package encryption

import (
	"encoding/binary"
	"fmt"

	"prefledger/models"
)

// transparentPrefix marks handles produced by the TransparentScheme so that
// feeding them to a real scheme fails loudly instead of decoding garbage.
var transparentPrefix = []byte{'p', 't', ':'}

// TransparentScheme is a plaintext-transparent stand-in for a real
// homomorphic backend: the "ciphertext" is just the big-endian uint32 behind
// a marker prefix. It exists so the ledger, engine and protocol can be
// exercised deterministically in tests and demo mode.
//
// Arithmetic follows uint32 semantics, so subtraction underflow wraps modulo
// 2^32 and division truncates toward zero — the integer behavior the engine's
// formulas assume.
type TransparentScheme struct{}

// NewTransparentScheme returns the stub scheme.
func NewTransparentScheme() *TransparentScheme {
	return &TransparentScheme{}
}

// Name returns the name of the encryption scheme.
func (t *TransparentScheme) Name() string {
	return "Transparent"
}

// KeySize returns 0: the stub has no keys.
func (t *TransparentScheme) KeySize() int {
	return 0
}

// EncryptConstant wraps the value in a marked handle.
func (t *TransparentScheme) EncryptConstant(value uint32) (models.Ciphertext, error) {
	buf := make([]byte, len(transparentPrefix)+4)
	copy(buf, transparentPrefix)
	binary.BigEndian.PutUint32(buf[len(transparentPrefix):], value)
	return buf, nil
}

// Add returns a handle to a+b (mod 2^32).
func (t *TransparentScheme) Add(a, b models.Ciphertext) (models.Ciphertext, error) {
	x, err := t.open(a)
	if err != nil {
		return nil, err
	}
	y, err := t.open(b)
	if err != nil {
		return nil, err
	}
	return t.EncryptConstant(x + y)
}

// Subtract returns a handle to a-b; underflow wraps mod 2^32, never clamped.
func (t *TransparentScheme) Subtract(a, b models.Ciphertext) (models.Ciphertext, error) {
	x, err := t.open(a)
	if err != nil {
		return nil, err
	}
	y, err := t.open(b)
	if err != nil {
		return nil, err
	}
	return t.EncryptConstant(x - y)
}

// DivideByConstant returns a handle to a/divisor with truncating integer
// division.
func (t *TransparentScheme) DivideByConstant(a models.Ciphertext, divisor uint32) (models.Ciphertext, error) {
	if divisor == 0 {
		return nil, fmt.Errorf("division by zero")
	}
	x, err := t.open(a)
	if err != nil {
		return nil, err
	}
	return t.EncryptConstant(x / divisor)
}

// Decrypt opens the handle.
func (t *TransparentScheme) Decrypt(c models.Ciphertext) (uint32, error) {
	return t.open(c)
}

func (t *TransparentScheme) open(c models.Ciphertext) (uint32, error) {
	if len(c) != len(transparentPrefix)+4 ||
		string(c[:len(transparentPrefix)]) != string(transparentPrefix) {
		return 0, fmt.Errorf("not a transparent ciphertext handle")
	}
	return binary.BigEndian.Uint32(c[len(transparentPrefix):]), nil
}

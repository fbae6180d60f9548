package encryption

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A small test key keeps generation fast; these tests exercise the adapter,
// not the key size.
func newTestPaillier(t *testing.T) *PaillierScheme {
	t.Helper()
	s, err := NewPaillierScheme(512)
	require.NoError(t, err)
	return s
}

func TestPaillier_EncryptDecryptRoundTrip(t *testing.T) {
	s := newTestPaillier(t)

	for _, v := range []uint32{0, 1, 40, 123456} {
		ct, err := s.EncryptConstant(v)
		require.NoError(t, err)

		got, err := s.Decrypt(ct)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestPaillier_HomomorphicAdd(t *testing.T) {
	s := newTestPaillier(t)

	a, err := s.EncryptConstant(16)
	require.NoError(t, err)
	b, err := s.EncryptConstant(4)
	require.NoError(t, err)

	sum, err := s.Add(a, b)
	require.NoError(t, err)

	got, err := s.Decrypt(sum)
	require.NoError(t, err)
	assert.Equal(t, uint32(20), got)
}

func TestPaillier_HomomorphicSubtract(t *testing.T) {
	s := newTestPaillier(t)

	a, err := s.EncryptConstant(50)
	require.NoError(t, err)
	b, err := s.EncryptConstant(20)
	require.NoError(t, err)

	diff, err := s.Subtract(a, b)
	require.NoError(t, err)

	got, err := s.Decrypt(diff)
	require.NoError(t, err)
	assert.Equal(t, uint32(30), got)
}

func TestPaillier_DivideByConstant_DivisiblePlaintext(t *testing.T) {
	s := newTestPaillier(t)

	// Exact only when the divisor divides the plaintext; that is the
	// documented contract of the modular-inverse construction.
	ct, err := s.EncryptConstant(40)
	require.NoError(t, err)

	quotient, err := s.DivideByConstant(ct, 10)
	require.NoError(t, err)

	got, err := s.Decrypt(quotient)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), got)
}

func TestPaillier_DivideByZero(t *testing.T) {
	s := newTestPaillier(t)

	ct, err := s.EncryptConstant(40)
	require.NoError(t, err)

	_, err = s.DivideByConstant(ct, 0)
	assert.Error(t, err)
}

func TestPaillier_EmptyOperands(t *testing.T) {
	s := newTestPaillier(t)

	ct, err := s.EncryptConstant(1)
	require.NoError(t, err)

	_, err = s.Add(nil, ct)
	assert.Error(t, err)
	_, err = s.Subtract(ct, nil)
	assert.Error(t, err)
	_, err = s.DivideByConstant(nil, 2)
	assert.Error(t, err)
	_, err = s.Decrypt(nil)
	assert.Error(t, err)
}

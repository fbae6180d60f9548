package encryption

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prefledger/models"
)

func enc(t *testing.T, s *TransparentScheme, v uint32) models.Ciphertext {
	t.Helper()
	ct, err := s.EncryptConstant(v)
	require.NoError(t, err)
	return ct
}

func dec(t *testing.T, s *TransparentScheme, ct models.Ciphertext) uint32 {
	t.Helper()
	v, err := s.Decrypt(ct)
	require.NoError(t, err)
	return v
}

func TestTransparent_EncryptDecrypt(t *testing.T) {
	s := NewTransparentScheme()

	for _, v := range []uint32{0, 1, 42, 1<<32 - 1} {
		assert.Equal(t, v, dec(t, s, enc(t, s, v)))
	}
}

func TestTransparent_Add(t *testing.T) {
	s := NewTransparentScheme()

	sum, err := s.Add(enc(t, s, 40), enc(t, s, 2))
	require.NoError(t, err)
	assert.Equal(t, uint32(42), dec(t, s, sum))
}

func TestTransparent_SubtractUnderflowWraps(t *testing.T) {
	s := NewTransparentScheme()

	// 3 - 5 wraps mod 2^32; the scheme never clamps at zero.
	diff, err := s.Subtract(enc(t, s, 3), enc(t, s, 5))
	require.NoError(t, err)
	assert.Equal(t, uint32(4294967294), dec(t, s, diff))
}

func TestTransparent_DivideTruncates(t *testing.T) {
	s := NewTransparentScheme()

	tests := []struct {
		value, divisor, want uint32
	}{
		{40, 10, 4},
		{45, 10, 4},
		{9, 10, 0},
		{60, 2, 30},
	}
	for _, tt := range tests {
		got, err := s.DivideByConstant(enc(t, s, tt.value), tt.divisor)
		require.NoError(t, err)
		assert.Equal(t, tt.want, dec(t, s, got))
	}
}

func TestTransparent_DivideByZero(t *testing.T) {
	s := NewTransparentScheme()

	_, err := s.DivideByConstant(enc(t, s, 10), 0)
	assert.Error(t, err)
}

func TestTransparent_RejectsForeignHandles(t *testing.T) {
	s := NewTransparentScheme()

	_, err := s.Decrypt(models.Ciphertext("garbage"))
	assert.Error(t, err)

	_, err = s.Add(models.Ciphertext{1, 2, 3}, enc(t, s, 1))
	assert.Error(t, err)
}

package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const testSecret = "0123456789abcdef0123456789abcdef"

const testAddress = "0x2ec8175015Bef5ad1C0BE1587C4A377bC083A2d8"

func TestNormalizeAddress(t *testing.T) {
	t.Run("Mixed case", func(t *testing.T) {
		addr, err := NormalizeAddress(testAddress)
		assert.NoError(t, err)
		assert.Equal(t, "0x2ec8175015bef5ad1c0be1587c4a377bc083a2d8", addr)
	})

	t.Run("Missing prefix", func(t *testing.T) {
		_, err := NormalizeAddress("2ec8175015Bef5ad1C0BE1587C4A377bC083A2d8")
		assert.ErrorIs(t, err, ErrInvalidAddress)
	})

	t.Run("Wrong length", func(t *testing.T) {
		_, err := NormalizeAddress("0xabc")
		assert.ErrorIs(t, err, ErrInvalidAddress)
	})

	t.Run("Non-hex characters", func(t *testing.T) {
		_, err := NormalizeAddress("0xZZc8175015Bef5ad1C0BE1587C4A377bC083A2d8")
		assert.ErrorIs(t, err, ErrInvalidAddress)
	})
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, 60, 60*24)

	access, err := tm.GenerateAccessToken(testAddress)
	assert.NoError(t, err)

	claims, err := tm.ValidateToken(access)
	assert.NoError(t, err)
	assert.Equal(t, "0x2ec8175015bef5ad1c0be1587c4a377bc083a2d8", claims.Address)
	assert.Equal(t, TokenTypeAccess, claims.Type)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager(testSecret, 60, 60*24)

	_, err := tm.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager(testSecret, 60, 60*24)
	other := NewTokenManager("ffffffffffffffffffffffffffffffff", 60, 60*24)

	token, err := tm.GenerateAccessToken(testAddress)
	assert.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateRejectsBadAddress(t *testing.T) {
	tm := NewTokenManager(testSecret, 60, 60*24)

	_, err := tm.GenerateAccessToken("bogus")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

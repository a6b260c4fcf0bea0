package jwtutil

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	j := NewJWTUtil(&JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	token, err := j.GenerateToken("IT01", "it01@example.com", true)
	require.NoError(t, err)

	claims, err := j.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "IT01", claims.EmpCode)
	assert.Equal(t, "it01@example.com", claims.Email)
	assert.True(t, claims.IsIT)
}

func TestValidateToken_WrongKey(t *testing.T) {
	signer := NewJWTUtil(&JWTConfig{SigningKey: "key-a", ExpirationHours: 1})
	verifier := NewJWTUtil(&JWTConfig{SigningKey: "key-b", ExpirationHours: 1})

	token, err := signer.GenerateToken("E001", "e001@example.com", false)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidateToken_Expired(t *testing.T) {
	j := NewJWTUtil(&JWTConfig{SigningKey: "test-key", ExpirationHours: -1})

	token, err := j.GenerateToken("E001", "e001@example.com", false)
	require.NoError(t, err)

	_, err = j.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestValidateToken_Issuer(t *testing.T) {
	other := NewJWTUtil(&JWTConfig{SigningKey: "test-key", ExpirationHours: 1, Issuer: "other-service"})
	j := NewJWTUtil(&JWTConfig{SigningKey: "test-key", ExpirationHours: 1, Issuer: "asset-service"})

	token, err := other.GenerateToken("E001", "e001@example.com", false)
	require.NoError(t, err)
	_, err = j.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalid)

	token, err = j.GenerateToken("E001", "e001@example.com", false)
	require.NoError(t, err)
	claims, err := j.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "asset-service", claims.Issuer)
}

func TestValidateToken_RequiresEmployeeCode(t *testing.T) {
	j := NewJWTUtil(&JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	token, err := j.GenerateToken("", "nobody@example.com", false)
	require.NoError(t, err)
	_, err = j.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidateToken_RejectsNoneAlgorithm(t *testing.T) {
	j := NewJWTUtil(&JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, UserClaims{EmpCode: "E001"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = j.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestMissingConfig(t *testing.T) {
	j := NewJWTUtil(nil)

	_, err := j.GenerateToken("E001", "e@example.com", false)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = j.ValidateToken("anything")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasherHashAndVerify(t *testing.T) {
	h := NewBcryptHasher()

	hash, err := h.Hash("correct-horse-battery-staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse-battery-staple", hash)

	require.NoError(t, h.Verify(hash, "correct-horse-battery-staple"))
	assert.Error(t, h.Verify(hash, "wrong-password"))
}

func TestNewEncryptorRejectsEmptySecret(t *testing.T) {
	_, err := NewEncryptor("")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestEncryptorRoundTrip(t *testing.T) {
	enc, err := NewEncryptor("stream-credential-secret")
	require.NoError(t, err)

	ciphertext, err := enc.Encrypt("s3cr3t-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cr3t-password", ciphertext)

	plaintext, err := enc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t-password", plaintext)
}

func TestEncryptorDecryptRejectsGarbage(t *testing.T) {
	enc, err := NewEncryptor("stream-credential-secret")
	require.NoError(t, err)

	_, err = enc.Decrypt("")
	assert.ErrorIs(t, err, ErrEmptyCiphertext)

	_, err = enc.Decrypt("bm90LWVub3VnaC1ieXRlcw==")
	assert.ErrorIs(t, err, ErrCiphertextTooShort)

	_, err = enc.Decrypt("not-valid-base64!!!")
	assert.Error(t, err)
}

func TestEncryptorWrongSecretFailsToDecrypt(t *testing.T) {
	enc, err := NewEncryptor("secret-one")
	require.NoError(t, err)
	ciphertext, err := enc.Encrypt("payload")
	require.NoError(t, err)

	other, err := NewEncryptor("secret-two")
	require.NoError(t, err)

	_, err = other.Decrypt(ciphertext)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestNewTokenServiceRejectsEmptySecret(t *testing.T) {
	_, err := NewTokenService("", time.Hour)
	assert.ErrorIs(t, err, ErrEmptySigningSecret)
}

func TestTokenServiceGenerateAndValidate(t *testing.T) {
	svc, err := NewTokenService("this-is-a-very-long-signing-secret", time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateToken(42, "admin")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenServiceRejectsExpiredToken(t *testing.T) {
	svc, err := NewTokenService("this-is-a-very-long-signing-secret", -time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateToken(1, "user")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenServiceRejectsTamperedToken(t *testing.T) {
	svc, err := NewTokenService("this-is-a-very-long-signing-secret", time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateToken(1, "user")
	require.NoError(t, err)

	other, err := NewTokenService("a-completely-different-secret-value", time.Hour)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrEmptySecret is returned when an Encryptor is constructed with an
	// empty configured secret.
	ErrEmptySecret = errors.New("security: encryption secret must not be empty")
	// ErrEmptyCiphertext is returned by Decrypt when given an empty string.
	ErrEmptyCiphertext = errors.New("security: ciphertext must not be empty")
	// ErrCiphertextTooShort is returned when the decoded ciphertext is
	// shorter than a nonce plus GCM tag, so it cannot be a value this
	// Encryptor produced.
	ErrCiphertextTooShort = errors.New("security: ciphertext too short")
	// ErrDecryptionFailed wraps any failure to authenticate or decrypt.
	ErrDecryptionFailed = errors.New("security: decryption failed")
)

// Encryptor encrypts and decrypts small values such as stored stream
// credentials, using AES-256-GCM with the nonce prepended to the
// ciphertext and the combined bytes base64-encoded.
type Encryptor struct {
	gcm cipher.AEAD
}

// NewEncryptor derives a 256-bit key from secret via SHA-256 and builds an
// AES-256-GCM Encryptor from it. The digest (rather than an HKDF
// expansion) matches the wire format external tooling decrypting these
// values expects: a direct SHA-256 hash of the configured secret.
func NewEncryptor(secret string) (*Encryptor, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("new aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return &Encryptor{gcm: gcm}, nil
}

// Encrypt seals plaintext and returns base64(nonce || ciphertext || tag).
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := e.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func (e *Encryptor) Decrypt(encoded string) (string, error) {
	if encoded == "" {
		return "", ErrEmptyCiphertext
	}

	combined, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}

	nonceSize := e.gcm.NonceSize()
	if len(combined) < nonceSize+e.gcm.Overhead() {
		return "", ErrCiphertextTooShort
	}

	nonce, ciphertext := combined[:nonceSize], combined[nonceSize:]
	plaintext, err := e.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return string(plaintext), nil
}

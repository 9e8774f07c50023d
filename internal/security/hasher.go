// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package security implements the password hasher, password encryptor, and
// token service collaborators the core consumes but does not own: user
// authentication and the HTTP layer above it are out of scope, but the
// core still defines and wires concrete implementations of these ports so
// a Subsonic-style login command can be exercised end to end.
package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultBcryptCost is the password hashing cost factor used when none is
// configured: strong enough to resist offline brute force, cheap enough for
// interactive login.
const defaultBcryptCost = 12

// PasswordHasher hashes and verifies user-chosen login passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
}

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher constructs a BcryptHasher with the default cost factor.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: defaultBcryptCost}
}

// NewBcryptHasherWithCost constructs a BcryptHasher with a configured cost
// factor; out-of-range values fall back to the default.
func NewBcryptHasherWithCost(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = defaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns a bcrypt hash of password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash. It returns nil on a match
// and a non-nil error (wrapping bcrypt's mismatch error) otherwise.
func (h *BcryptHasher) Verify(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	return nil
}

// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package user is the User aggregate: an account with access to the
// library. The aggregate stores two forms of the same password — a bcrypt
// hash for interactive login, and a reversible AES-GCM ciphertext the
// Subsonic token scheme needs the plaintext for. Hashing and encryption
// happen in the command layer; the aggregate only carries the results.
package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/harmonia-music/harmonia/internal/apperror"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

// Status is the user's lifecycle state.
type Status int32

const (
	// StatusActive is a user that has logged in at least once.
	StatusActive Status = 1
	// StatusNew is a freshly created user that has never logged in.
	StatusNew Status = 2
	// StatusDeleted is a soft-deleted user; login is rejected.
	StatusDeleted Status = 3
)

// String renders the Status for logging.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusNew:
		return "new"
	case StatusDeleted:
		return "deleted"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}

// Created is emitted when a new user aggregate is constructed.
type Created struct {
	UserID   domainvalue.UserID
	Version  int64
	Username string
	IsAdmin  bool
}

// Deleted is emitted when a user is soft-deleted.
type Deleted struct {
	UserID   domainvalue.UserID
	Version  int64
	Username string
}

// User is the aggregate root.
type User struct {
	ID       domainvalue.UserID
	Username string
	Name     string
	Email    string
	IsAdmin  bool

	// HashedPassword is the bcrypt hash checked on interactive login.
	HashedPassword string
	// EncryptedPassword is the AES-GCM-encrypted plaintext password the
	// Subsonic token handshake recovers via the encryptor.
	EncryptedPassword string

	Status  Status
	Version int64

	pendingEvents []any
}

// New constructs a User in StatusNew and queues its Created event. The name
// defaults to the username when empty.
func New(id domainvalue.UserID, username, name, email string, isAdmin bool, hashedPassword, encryptedPassword string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username must not be empty", apperror.ErrMissingParameter)
	}
	if hashedPassword == "" {
		return nil, fmt.Errorf("%w: hashed password must not be empty", apperror.ErrMissingParameter)
	}
	if name == "" {
		name = username
	}

	u := &User{
		ID:                id,
		Username:          username,
		Name:              name,
		Email:             email,
		IsAdmin:           isAdmin,
		HashedPassword:    hashedPassword,
		EncryptedPassword: encryptedPassword,
		Status:            StatusNew,
		Version:           0,
	}
	u.pendingEvents = append(u.pendingEvents, Created{
		UserID:   id,
		Version:  0,
		Username: username,
		IsAdmin:  isAdmin,
	})
	return u, nil
}

// WithVersion overrides the version, used when rehydrating from storage.
func (u *User) WithVersion(version int64) *User {
	u.Version = version
	return u
}

// ChangePassword replaces both stored forms of the password.
func (u *User) ChangePassword(hashedPassword, encryptedPassword string) error {
	if hashedPassword == "" {
		return fmt.Errorf("%w: hashed password must not be empty", apperror.ErrMissingParameter)
	}
	u.HashedPassword = hashedPassword
	u.EncryptedPassword = encryptedPassword
	u.Version++
	return nil
}

// UpdateProfile replaces the display name and/or email; nil fields are left
// unchanged.
func (u *User) UpdateProfile(name, email *string) {
	changed := false
	if name != nil && *name != u.Name {
		u.Name = *name
		changed = true
	}
	if email != nil && *email != u.Email {
		u.Email = *email
		changed = true
	}
	if changed {
		u.Version++
	}
}

// MarkActive transitions a StatusNew user to StatusActive on first login.
// It is idempotent for already-active users.
func (u *User) MarkActive() error {
	if u.Status == StatusDeleted {
		return fmt.Errorf("%w: user is deleted", apperror.ErrInvalidOperation)
	}
	if u.Status == StatusActive {
		return nil
	}
	u.Status = StatusActive
	u.Version++
	return nil
}

// MarkDeleted soft-deletes the user and queues a Deleted event. Deleting an
// already-deleted user raises no event.
func (u *User) MarkDeleted() {
	if u.Status == StatusDeleted {
		return
	}
	u.Status = StatusDeleted
	u.Version++
	u.pendingEvents = append(u.pendingEvents, Deleted{
		UserID:   u.ID,
		Version:  u.Version,
		Username: u.Username,
	})
}

// EnsureActive returns an error when the user cannot authenticate.
func (u *User) EnsureActive() error {
	if u.Status == StatusDeleted {
		return fmt.Errorf("%w: user is deleted", apperror.ErrInvalidOperation)
	}
	return nil
}

// TakeEvents drains and returns the aggregate's pending events.
func (u *User) TakeEvents() []any {
	events := u.pendingEvents
	u.pendingEvents = nil
	return events
}

// Repository is the persistence port for the User aggregate.
type Repository interface {
	Count(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id domainvalue.UserID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Save(ctx context.Context, user *User) (*User, error)
	Delete(ctx context.Context, id domainvalue.UserID) error
}

// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-music/harmonia/internal/apperror"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

func newTestUser(t *testing.T) *User {
	t.Helper()
	u, err := New(domainvalue.UserID(1), "alice", "", "alice@example.com", true, "$2a$12$hash", "enc")
	require.NoError(t, err)
	return u
}

func TestNewQueuesCreatedEvent(t *testing.T) {
	u := newTestUser(t)

	assert.Equal(t, "alice", u.Name, "name defaults to username")
	assert.Equal(t, StatusNew, u.Status)

	events := u.TakeEvents()
	require.Len(t, events, 1)
	created, ok := events[0].(Created)
	require.True(t, ok)
	assert.Equal(t, domainvalue.UserID(1), created.UserID)
	assert.True(t, created.IsAdmin)

	assert.Empty(t, u.TakeEvents(), "events drain exactly once")
}

func TestNewRejectsEmptyUsername(t *testing.T) {
	_, err := New(domainvalue.UserID(1), "  ", "", "", false, "hash", "enc")
	assert.ErrorIs(t, err, apperror.ErrMissingParameter)
}

func TestNewRejectsEmptyPassword(t *testing.T) {
	_, err := New(domainvalue.UserID(1), "alice", "", "", false, "", "enc")
	assert.ErrorIs(t, err, apperror.ErrMissingParameter)
}

func TestChangePasswordBumpsVersion(t *testing.T) {
	u := newTestUser(t)

	require.NoError(t, u.ChangePassword("$2a$12$newhash", "newenc"))
	assert.Equal(t, int64(1), u.Version)
	assert.Equal(t, "$2a$12$newhash", u.HashedPassword)
	assert.Equal(t, "newenc", u.EncryptedPassword)
}

func TestUpdateProfileOnlyBumpsVersionOnChange(t *testing.T) {
	u := newTestUser(t)

	same := u.Name
	u.UpdateProfile(&same, nil)
	assert.Equal(t, int64(0), u.Version, "no-op update does not bump version")

	name := "Alice A."
	u.UpdateProfile(&name, nil)
	assert.Equal(t, int64(1), u.Version)
	assert.Equal(t, "Alice A.", u.Name)
}

func TestMarkActiveIsIdempotent(t *testing.T) {
	u := newTestUser(t)

	require.NoError(t, u.MarkActive())
	assert.Equal(t, StatusActive, u.Status)
	assert.Equal(t, int64(1), u.Version)

	require.NoError(t, u.MarkActive())
	assert.Equal(t, int64(1), u.Version, "second activation is a no-op")
}

func TestMarkDeletedQueuesDeletedEventOnce(t *testing.T) {
	u := newTestUser(t)
	u.TakeEvents()

	u.MarkDeleted()
	u.MarkDeleted()

	assert.Equal(t, StatusDeleted, u.Status)
	assert.Equal(t, int64(1), u.Version)

	events := u.TakeEvents()
	require.Len(t, events, 1)
	_, ok := events[0].(Deleted)
	assert.True(t, ok)

	assert.ErrorIs(t, u.EnsureActive(), apperror.ErrInvalidOperation)
	assert.ErrorIs(t, u.MarkActive(), apperror.ErrInvalidOperation)
}

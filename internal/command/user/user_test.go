// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package user

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-music/harmonia/internal/appcontext"
	"github.com/harmonia-music/harmonia/internal/apperror"
	domainuser "github.com/harmonia-music/harmonia/internal/domain/user"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
	"github.com/harmonia-music/harmonia/internal/eventbus"
	"github.com/harmonia-music/harmonia/internal/security"
)

type fakeIDGenerator struct {
	mu   sync.Mutex
	next int64
}

func (g *fakeIDGenerator) NextID() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return g.next, nil
}

type fakeRepo struct {
	mu         sync.Mutex
	byID       map[domainvalue.UserID]*domainuser.User
	byUsername map[string]*domainuser.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byID:       map[domainvalue.UserID]*domainuser.User{},
		byUsername: map[string]*domainuser.User{},
	}
}

func (r *fakeRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id domainvalue.UserID) (*domainuser.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id], nil
}

func (r *fakeRepo) FindByUsername(ctx context.Context, username string) (*domainuser.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byUsername[username], nil
}

func (r *fakeRepo) Save(ctx context.Context, u *domainuser.User) (*domainuser.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[u.ID] = u
	r.byUsername[u.Username] = u
	return u, nil
}

func (r *fakeRepo) Delete(ctx context.Context, id domainvalue.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		delete(r.byUsername, u.Username)
	}
	delete(r.byID, id)
	return nil
}

// fakeHasher marks hashes with a prefix instead of running bcrypt, keeping
// these tests fast while preserving hash/verify pairing semantics.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Verify(hash, password string) error {
	if hash != "hashed:"+password {
		return fmt.Errorf("password mismatch")
	}
	return nil
}

type fakeEncryptor struct{}

func (fakeEncryptor) Encrypt(plaintext string) (string, error) { return "enc:" + plaintext, nil }

func (fakeEncryptor) Decrypt(encoded string) (string, error) {
	return strings.TrimPrefix(encoded, "enc:"), nil
}

type fakeTokens struct{}

func (fakeTokens) GenerateToken(userID int64, role string) (string, error) {
	return fmt.Sprintf("token:%d:%s", userID, role), nil
}

func (fakeTokens) ValidateToken(token string) (*security.Claims, error) {
	var userID int64
	var role string
	if _, err := fmt.Sscanf(token, "token:%d:%s", &userID, &role); err != nil {
		return nil, fmt.Errorf("malformed token")
	}
	return &security.Claims{UserID: userID, Role: role}, nil
}

func newService(repo *fakeRepo, bus *eventbus.Bus) *Service {
	return New(&fakeIDGenerator{}, repo, fakeHasher{}, fakeEncryptor{}, fakeTokens{}, bus)
}

func TestCreateAdminBootstrapsFirstAccount(t *testing.T) {
	bus := eventbus.New(eventbus.ModeSynchronous)
	var created []domainuser.Created
	eventbus.Subscribe[domainuser.Created](bus, "test", eventbus.HandlerFunc[domainuser.Created](
		func(ctx context.Context, env eventbus.EventEnvelope[domainuser.Created]) error {
			created = append(created, env.Payload)
			return nil
		}))

	svc := newService(newFakeRepo(), bus)
	u, err := svc.CreateAdmin(context.Background(), appcontext.New(), CreateAdminCmd{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)

	assert.True(t, u.IsAdmin)
	assert.Equal(t, "hashed:s3cret", u.HashedPassword)
	assert.Equal(t, "enc:s3cret", u.EncryptedPassword)

	require.Len(t, created, 1)
	assert.Equal(t, u.ID, created[0].UserID)
	assert.True(t, created[0].IsAdmin)
}

func TestCreateAdminRefusesSecondBootstrap(t *testing.T) {
	svc := newService(newFakeRepo(), eventbus.New(eventbus.ModeSynchronous))
	appCtx := appcontext.New()

	_, err := svc.CreateAdmin(context.Background(), appCtx, CreateAdminCmd{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)

	_, err = svc.CreateAdmin(context.Background(), appCtx, CreateAdminCmd{Username: "other", Password: "pw"})
	assert.ErrorIs(t, err, apperror.ErrInvalidOperation)
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	svc := newService(newFakeRepo(), eventbus.New(eventbus.ModeSynchronous))
	appCtx := appcontext.New()

	_, err := svc.CreateUser(context.Background(), appCtx, CreateUserCmd{Username: "alice", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.CreateUser(context.Background(), appCtx, CreateUserCmd{Username: "alice", Password: "pw2"})
	assert.ErrorIs(t, err, apperror.ErrInvalidOperation)
}

func TestCreateUserRejectsEmptyPassword(t *testing.T) {
	svc := newService(newFakeRepo(), eventbus.New(eventbus.ModeSynchronous))
	_, err := svc.CreateUser(context.Background(), appcontext.New(), CreateUserCmd{Username: "alice"})
	assert.ErrorIs(t, err, apperror.ErrMissingParameter)
}

func TestLoginIssuesTokenAndActivates(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, eventbus.New(eventbus.ModeSynchronous))

	u, err := svc.CreateAdmin(context.Background(), appcontext.New(), CreateAdminCmd{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, domainuser.StatusNew, u.Status)

	token, err := svc.Login(context.Background(), LoginCmd{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("token:%d:admin", u.ID), token)

	stored, err := repo.FindByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, domainuser.StatusActive, stored.Status)

	// Second login does not bump the version again.
	versionAfterFirst := stored.Version
	_, err = svc.Login(context.Background(), LoginCmd{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, versionAfterFirst, stored.Version)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newService(newFakeRepo(), eventbus.New(eventbus.ModeSynchronous))

	_, err := svc.CreateAdmin(context.Background(), appcontext.New(), CreateAdminCmd{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginCmd{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.Login(context.Background(), LoginCmd{Username: "nobody", Password: "s3cret"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestLoginRejectsDeletedUser(t *testing.T) {
	svc := newService(newFakeRepo(), eventbus.New(eventbus.ModeSynchronous))
	appCtx := appcontext.New()

	_, err := svc.CreateAdmin(context.Background(), appCtx, CreateAdminCmd{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteUser(context.Background(), appCtx, "admin"))

	_, err = svc.Login(context.Background(), LoginCmd{Username: "admin", Password: "s3cret"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestAuthenticateReissuesToken(t *testing.T) {
	svc := newService(newFakeRepo(), eventbus.New(eventbus.ModeSynchronous))

	u, err := svc.CreateAdmin(context.Background(), appcontext.New(), CreateAdminCmd{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)

	token, err := svc.Login(context.Background(), LoginCmd{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)

	refreshed, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("token:%d:admin", u.ID), refreshed)

	_, err = svc.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestChangePassword(t *testing.T) {
	svc := newService(newFakeRepo(), eventbus.New(eventbus.ModeSynchronous))

	_, err := svc.CreateAdmin(context.Background(), appcontext.New(), CreateAdminCmd{Username: "admin", Password: "old"})
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(context.Background(), ChangePasswordCmd{Username: "admin", NewPassword: "new"}))

	_, err = svc.Login(context.Background(), LoginCmd{Username: "admin", Password: "old"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.Login(context.Background(), LoginCmd{Username: "admin", Password: "new"})
	assert.NoError(t, err)
}

func TestChangePasswordUnknownUser(t *testing.T) {
	svc := newService(newFakeRepo(), eventbus.New(eventbus.ModeSynchronous))
	err := svc.ChangePassword(context.Background(), ChangePasswordCmd{Username: "ghost", NewPassword: "pw"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteUserPublishesDeletedEvent(t *testing.T) {
	bus := eventbus.New(eventbus.ModeSynchronous)
	var deleted []domainuser.Deleted
	eventbus.Subscribe[domainuser.Deleted](bus, "test", eventbus.HandlerFunc[domainuser.Deleted](
		func(ctx context.Context, env eventbus.EventEnvelope[domainuser.Deleted]) error {
			deleted = append(deleted, env.Payload)
			return nil
		}))

	svc := newService(newFakeRepo(), bus)
	appCtx := appcontext.New()

	u, err := svc.CreateAdmin(context.Background(), appCtx, CreateAdminCmd{Username: "admin", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(context.Background(), appCtx, "admin"))
	require.Len(t, deleted, 1)
	assert.Equal(t, u.ID, deleted[0].UserID)

	// Deleting again is a no-op: the aggregate raises no further event.
	require.NoError(t, svc.DeleteUser(context.Background(), appCtx, "admin"))
	assert.Len(t, deleted, 1)
}

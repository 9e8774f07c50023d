// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package user is the application service for the User aggregate: admin
// bootstrap, user creation, login, token refresh, and password changes.
// Passwords are stored twice — bcrypt-hashed for login, AES-GCM-encrypted
// for the Subsonic token handshake — and both forms are produced here, at
// the command boundary, never inside the aggregate.
package user

import (
	"context"
	"fmt"

	"github.com/harmonia-music/harmonia/internal/appcontext"
	"github.com/harmonia-music/harmonia/internal/apperror"
	"github.com/harmonia-music/harmonia/internal/command/shared"
	domainuser "github.com/harmonia-music/harmonia/internal/domain/user"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
	"github.com/harmonia-music/harmonia/internal/eventbus"
	"github.com/harmonia-music/harmonia/internal/security"
)

// PasswordEncryptor reversibly encrypts the plaintext password for storage.
type PasswordEncryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(encoded string) (string, error)
}

// TokenService issues and validates signed session tokens.
type TokenService interface {
	GenerateToken(userID int64, role string) (string, error)
	ValidateToken(token string) (*security.Claims, error)
}

// CreateAdminCmd bootstraps the first (administrator) account.
type CreateAdminCmd struct {
	Username string
	Password string
	Email    string
}

// CreateUserCmd creates an additional account.
type CreateUserCmd struct {
	Username string
	Password string
	Email    string
	IsAdmin  bool
}

// LoginCmd authenticates a username/password pair.
type LoginCmd struct {
	Username string
	Password string
}

// ChangePasswordCmd replaces a user's password.
type ChangePasswordCmd struct {
	Username    string
	NewPassword string
}

// Service is the User aggregate's application service.
type Service struct {
	idGenerator shared.IDGenerator
	repository  domainuser.Repository
	hasher      security.PasswordHasher
	encryptor   PasswordEncryptor
	tokens      TokenService
	bus         *eventbus.Bus
}

// New constructs a Service.
func New(
	idGenerator shared.IDGenerator,
	repository domainuser.Repository,
	hasher security.PasswordHasher,
	encryptor PasswordEncryptor,
	tokens TokenService,
	bus *eventbus.Bus,
) *Service {
	return &Service{
		idGenerator: idGenerator,
		repository:  repository,
		hasher:      hasher,
		encryptor:   encryptor,
		tokens:      tokens,
		bus:         bus,
	}
}

// CreateAdmin creates the initial administrator account. It refuses to run
// once any user exists: later admins are created by an existing one through
// CreateUser.
func (s *Service) CreateAdmin(ctx context.Context, appCtx appcontext.AppContext, cmd CreateAdminCmd) (*domainuser.User, error) {
	count, err := s.repository.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: an account already exists, admin bootstrap is only valid on first run", apperror.ErrInvalidOperation)
	}
	return s.create(ctx, appCtx, CreateUserCmd{
		Username: cmd.Username,
		Password: cmd.Password,
		Email:    cmd.Email,
		IsAdmin:  true,
	})
}

// CreateUser creates an account, rejecting duplicate usernames.
func (s *Service) CreateUser(ctx context.Context, appCtx appcontext.AppContext, cmd CreateUserCmd) (*domainuser.User, error) {
	existing, err := s.repository.FindByUsername(ctx, cmd.Username)
	if err != nil {
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username %q already exists", apperror.ErrInvalidOperation, cmd.Username)
	}
	return s.create(ctx, appCtx, cmd)
}

func (s *Service) create(ctx context.Context, appCtx appcontext.AppContext, cmd CreateUserCmd) (*domainuser.User, error) {
	if cmd.Password == "" {
		return nil, fmt.Errorf("%w: password must not be empty", apperror.ErrMissingParameter)
	}

	hashed, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	encrypted, err := s.encryptor.Encrypt(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("encrypt password: %w", err)
	}

	id, err := s.idGenerator.NextID()
	if err != nil {
		return nil, fmt.Errorf("generate user id: %w", err)
	}

	u, err := domainuser.New(domainvalue.UserID(id), cmd.Username, "", cmd.Email, cmd.IsAdmin, hashed, encrypted)
	if err != nil {
		return nil, err
	}
	events := u.TakeEvents()

	saved, err := s.repository.Save(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	if err := publishAll(ctx, s.bus, appCtx, saved.ID, saved.Version, events); err != nil {
		return nil, err
	}
	return saved, nil
}

// Login verifies the credentials and returns a signed session token. The
// first successful login transitions the account from new to active.
func (s *Service) Login(ctx context.Context, cmd LoginCmd) (string, error) {
	u, err := s.repository.FindByUsername(ctx, cmd.Username)
	if err != nil {
		return "", fmt.Errorf("find user by username: %w", err)
	}
	if u == nil {
		return "", apperror.ErrUnauthorized
	}
	if err := u.EnsureActive(); err != nil {
		return "", apperror.ErrUnauthorized
	}
	if err := s.hasher.Verify(u.HashedPassword, cmd.Password); err != nil {
		return "", apperror.ErrUnauthorized
	}

	if u.Status == domainuser.StatusNew {
		if err := u.MarkActive(); err != nil {
			return "", err
		}
		if _, err := s.repository.Save(ctx, u); err != nil {
			return "", fmt.Errorf("save user activation: %w", err)
		}
	}

	return s.tokens.GenerateToken(int64(u.ID), role(u))
}

// Authenticate verifies a session token and reissues a fresh one.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return "", apperror.ErrUnauthorized
	}
	u, err := s.repository.FindByID(ctx, domainvalue.UserID(claims.UserID))
	if err != nil {
		return "", fmt.Errorf("find user by id: %w", err)
	}
	if u == nil {
		return "", apperror.ErrUnauthorized
	}
	if err := u.EnsureActive(); err != nil {
		return "", apperror.ErrUnauthorized
	}
	return s.tokens.GenerateToken(int64(u.ID), role(u))
}

// ChangePassword replaces both stored forms of the user's password.
func (s *Service) ChangePassword(ctx context.Context, cmd ChangePasswordCmd) error {
	u, err := s.repository.FindByUsername(ctx, cmd.Username)
	if err != nil {
		return fmt.Errorf("find user by username: %w", err)
	}
	if u == nil {
		return apperror.NewNotFound("user", 0)
	}

	hashed, err := s.hasher.Hash(cmd.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	encrypted, err := s.encryptor.Encrypt(cmd.NewPassword)
	if err != nil {
		return fmt.Errorf("encrypt password: %w", err)
	}

	if err := u.ChangePassword(hashed, encrypted); err != nil {
		return err
	}
	if _, err := s.repository.Save(ctx, u); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// DeleteUser soft-deletes the account and publishes its Deleted event.
func (s *Service) DeleteUser(ctx context.Context, appCtx appcontext.AppContext, username string) error {
	u, err := s.repository.FindByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("find user by username: %w", err)
	}
	if u == nil {
		return apperror.NewNotFound("user", 0)
	}

	u.MarkDeleted()
	events := u.TakeEvents()
	if len(events) == 0 {
		return nil
	}

	saved, err := s.repository.Save(ctx, u)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return publishAll(ctx, s.bus, appCtx, saved.ID, saved.Version, events)
}

func role(u *domainuser.User) string {
	if u.IsAdmin {
		return "admin"
	}
	return "user"
}

func publishAll(ctx context.Context, bus *eventbus.Bus, appCtx appcontext.AppContext, id domainvalue.UserID, version int64, events []any) error {
	for _, event := range events {
		if err := publishOne(ctx, bus, appCtx, id, version, event); err != nil {
			return err
		}
	}
	return nil
}

func publishOne(ctx context.Context, bus *eventbus.Bus, appCtx appcontext.AppContext, id domainvalue.UserID, version int64, event any) error {
	switch e := event.(type) {
	case domainuser.Created:
		env := eventbus.NewEnvelope(int64(id), version, e, appCtx.CorrelationID, appCtx.CausationID)
		return eventbus.Publish(ctx, bus, env)
	case domainuser.Deleted:
		env := eventbus.NewEnvelope(int64(id), version, e, appCtx.CorrelationID, appCtx.CausationID)
		return eventbus.Publish(ctx, bus, env)
	default:
		return fmt.Errorf("user: unhandled event type %T", event)
	}
}

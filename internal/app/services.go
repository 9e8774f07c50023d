// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app assembles the user-facing command surface: the services the
// HTTP layer calls into. The ingestion pipeline (fanout handlers,
// coordinators, projectors) is wired separately — it subscribes to the bus
// and needs no caller.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/harmonia-music/harmonia/internal/appcontext"
	"github.com/harmonia-music/harmonia/internal/apperror"
	"github.com/harmonia-music/harmonia/internal/command/annotation"
	"github.com/harmonia-music/harmonia/internal/command/playqueue"
	"github.com/harmonia-music/harmonia/internal/command/shared"
	cmduser "github.com/harmonia-music/harmonia/internal/command/user"
	domainaudiofile "github.com/harmonia-music/harmonia/internal/domain/audiofile"
	domainplayqueue "github.com/harmonia-music/harmonia/internal/domain/playqueue"
	domainuser "github.com/harmonia-music/harmonia/internal/domain/user"
	"github.com/harmonia-music/harmonia/internal/eventbus"
	"github.com/harmonia-music/harmonia/internal/logging"
	"github.com/harmonia-music/harmonia/internal/security"
)

// Services is the command surface handed to the HTTP layer.
type Services struct {
	Users        *cmduser.Service
	PlayQueues   *playqueue.Service
	Annotations  *annotation.Service
	SystemConfig shared.SystemConfigStore
}

// NewServices wires the user-facing command services against their
// repositories and the shared collaborators.
func NewServices(
	idGenerator shared.IDGenerator,
	bus *eventbus.Bus,
	users domainuser.Repository,
	playQueues domainplayqueue.Repository,
	audioFiles domainaudiofile.Repository,
	systemConfig shared.SystemConfigStore,
	hasher security.PasswordHasher,
	encryptor cmduser.PasswordEncryptor,
	tokens cmduser.TokenService,
) *Services {
	return &Services{
		Users:        cmduser.New(idGenerator, users, hasher, encryptor, tokens, bus),
		PlayQueues:   playqueue.New(idGenerator, playQueues),
		Annotations:  annotation.New(audioFiles, bus),
		SystemConfig: systemConfig,
	}
}

// BootstrapAdmin creates the initial administrator account from config on
// first run. It is a no-op when credentials are not configured or when any
// account already exists.
func (s *Services) BootstrapAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	u, err := s.Users.CreateAdmin(ctx, appcontext.New(), cmduser.CreateAdminCmd{
		Username: username,
		Password: password,
	})
	// An existing account means a previous run already bootstrapped; that is
	// the normal steady state, not a startup failure.
	if errors.Is(err, apperror.ErrInvalidOperation) {
		logging.Debug().Msg("admin bootstrap skipped, an account already exists")
		return nil
	}
	if err != nil {
		return err
	}

	logging.Info().Str("username", u.Username).Msg("initial admin account created")
	return nil
}

// InstanceID returns the stable identifier minted for this deployment on
// first start and reused thereafter.
func (s *Services) InstanceID(ctx context.Context, defaultID string) (string, error) {
	id, err := s.SystemConfig.GetOrSetDefault(ctx, "instance_id", defaultID)
	if err != nil {
		return "", fmt.Errorf("resolve instance id: %w", err)
	}
	return id, nil
}

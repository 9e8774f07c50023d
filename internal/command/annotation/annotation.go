// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package annotation is the application service for playback annotations.
// A scrobble does not belong to any aggregate: after checking the audio
// file exists, the service publishes ItemScrobbled and lets the playback
// history projector materialize the row.
package annotation

import (
	"context"
	"fmt"
	"time"

	"github.com/harmonia-music/harmonia/internal/appcontext"
	"github.com/harmonia-music/harmonia/internal/apperror"
	"github.com/harmonia-music/harmonia/internal/appevent"
	domainaudiofile "github.com/harmonia-music/harmonia/internal/domain/audiofile"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
	"github.com/harmonia-music/harmonia/internal/eventbus"
)

// ScrobbleCmd records that a user played an audio file to completion.
// ScrobbledAt defaults to the current time when zero, so offline clients
// can submit the timestamp the play actually happened at.
type ScrobbleCmd struct {
	UserID      int64
	AudioFileID int64
	ScrobbledAt time.Time
}

// Service is the annotation application service.
type Service struct {
	audioFiles domainaudiofile.Repository
	bus        *eventbus.Bus
}

// New constructs a Service.
func New(audioFiles domainaudiofile.Repository, bus *eventbus.Bus) *Service {
	return &Service{audioFiles: audioFiles, bus: bus}
}

// Scrobble validates the target audio file and publishes ItemScrobbled.
func (s *Service) Scrobble(ctx context.Context, appCtx appcontext.AppContext, cmd ScrobbleCmd) error {
	if cmd.UserID == 0 {
		return fmt.Errorf("%w: user id must be set", apperror.ErrMissingParameter)
	}

	audioFileID := domainvalue.AudioFileID(cmd.AudioFileID)
	existing, err := s.audioFiles.FindByID(ctx, audioFileID)
	if err != nil {
		return fmt.Errorf("find audio file: %w", err)
	}
	if existing == nil {
		return apperror.NewNotFound("audio_file", cmd.AudioFileID)
	}

	scrobbledAt := cmd.ScrobbledAt
	if scrobbledAt.IsZero() {
		scrobbledAt = time.Now().UTC()
	}

	event := appevent.ItemScrobbled{
		UserID:      cmd.UserID,
		AudioFileID: audioFileID,
		ScrobbledAt: scrobbledAt,
	}
	env := eventbus.NewEnvelope(cmd.AudioFileID, existing.Version, event, appCtx.CorrelationID, appCtx.CausationID)
	if err := eventbus.Publish(ctx, s.bus, env); err != nil {
		return fmt.Errorf("publish item scrobbled: %w", err)
	}
	return nil
}

// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package coordinator

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/harmonia-music/harmonia/internal/appcontext"
	cmdcoverart "github.com/harmonia-music/harmonia/internal/command/coverart"
	domaincoverart "github.com/harmonia-music/harmonia/internal/domain/coverart"
	domainaudiofile "github.com/harmonia-music/harmonia/internal/domain/audiofile"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
	"github.com/harmonia-music/harmonia/internal/eventbus"
)

// BindToCoverArtCoordinator pairs an audio file that declares it has
// embedded art with the embedded CoverArt aggregate extracted from it,
// correlating the two by correlation id and binding them together as soon
// as both have registered. Like the other three coordinators in this
// package, it removes both cache entries for a correlation id the moment
// the pair matches.
type BindToCoverArtCoordinator struct {
	coverArtService *cmdcoverart.Service

	mu            sync.Mutex
	pendingAudio  map[uuid.UUID]audioRef
	pendingCover  map[uuid.UUID]coverRef
}

type audioRef struct {
	id      domainvalue.AudioFileID
	eventID uuid.UUID
}

type coverRef struct {
	id      domainvalue.CoverArtID
	eventID uuid.UUID
}

// NewBindToCoverArtCoordinator constructs a BindToCoverArtCoordinator.
func NewBindToCoverArtCoordinator(coverArtService *cmdcoverart.Service) *BindToCoverArtCoordinator {
	return &BindToCoverArtCoordinator{
		coverArtService: coverArtService,
		pendingAudio:    make(map[uuid.UUID]audioRef),
		pendingCover:    make(map[uuid.UUID]coverRef),
	}
}

// HandleAudioFileCreated implements eventbus.Handler[domainaudiofile.Created].
// Only audio files with embedded art are cached; ones without never have a
// matching CoverArt to wait for.
func (c *BindToCoverArtCoordinator) HandleAudioFileCreated(ctx context.Context, env eventbus.EventEnvelope[domainaudiofile.Created]) error {
	if !env.Payload.HasCoverArt {
		return nil
	}
	c.mu.Lock()
	c.pendingAudio[env.CorrelationID] = audioRef{id: env.Payload.AudioFileID, eventID: env.ID}
	c.mu.Unlock()
	c.checkAndBind(ctx)
	return nil
}

// HandleCoverArtCreated implements eventbus.Handler[domaincoverart.Created].
func (c *BindToCoverArtCoordinator) HandleCoverArtCreated(ctx context.Context, env eventbus.EventEnvelope[domaincoverart.Created]) error {
	if env.Payload.Source != domaincoverart.SourceEmbedded {
		return nil
	}
	c.mu.Lock()
	c.pendingCover[env.CorrelationID] = coverRef{id: env.Payload.CoverArtID, eventID: env.ID}
	c.mu.Unlock()
	c.checkAndBind(ctx)
	return nil
}

func (c *BindToCoverArtCoordinator) checkAndBind(ctx context.Context) {
	c.mu.Lock()
	type matched struct {
		correlationID uuid.UUID
		audio         audioRef
		cover         coverRef
	}
	var ready []matched
	for correlationID, audio := range c.pendingAudio {
		if cover, ok := c.pendingCover[correlationID]; ok {
			ready = append(ready, matched{correlationID: correlationID, audio: audio, cover: cover})
		}
	}
	for _, m := range ready {
		delete(c.pendingAudio, m.correlationID)
		delete(c.pendingCover, m.correlationID)
	}
	c.mu.Unlock()

	for _, m := range ready {
		appCtx := appcontext.AppContext{EventID: m.cover.eventID, CorrelationID: m.correlationID, CausationID: m.cover.eventID}
		cmd := cmdcoverart.BindCmd{AudioFileID: m.audio.id, CoverArtID: m.cover.id}
		if err := c.coverArtService.Bind(ctx, appCtx.Derive(), cmd); err != nil {
			log.Error().Err(err).Int64("audio_file_id", int64(m.audio.id)).Int64("cover_art_id", int64(m.cover.id)).Msg("coordinator: failed to bind audio file to cover art")
		}
	}
}

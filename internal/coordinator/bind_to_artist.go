// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package coordinator reacts to the Created/Found events each aggregate's
// create-on-parse fanout handler produces and, once every piece for a given
// correlation id has arrived, issues the Bind commands that wire the graph
// together (audio file to album, album to genre, artist to genre, cover art
// to audio file).
package coordinator

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/harmonia-music/harmonia/internal/appcontext"
	"github.com/harmonia-music/harmonia/internal/appevent"
	cmdartist "github.com/harmonia-music/harmonia/internal/command/artist"
	domainartist "github.com/harmonia-music/harmonia/internal/domain/artist"
	domaingenre "github.com/harmonia-music/harmonia/internal/domain/genre"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
	"github.com/harmonia-music/harmonia/internal/eventbus"
)

// BindToArtistCoordinator waits for every artist and every genre parsed out
// of one audio file to register, then binds each artist to every genre seen
// for that correlation id. This is a deliberate full cross-product: an audio
// file tagged with artists A, B and genres X, Y binds A-X, A-Y, B-X, B-Y, not
// just the pairs that actually co-occurred on a single track. That matches
// the behavior of the system this package is modeled on, which has no way to
// recover per-track genre/artist pairing once both have flattened into
// correlation-scoped accumulators.
type BindToArtistCoordinator struct {
	artistService *cmdartist.Service

	mu                sync.Mutex
	pendingGenres      map[uuid.UUID][]domainvalue.GenreID
	pendingArtists     map[uuid.UUID][]domainvalue.ArtistID
	expectedGenreCount map[uuid.UUID]int
	expectedArtistCount map[uuid.UUID]int
}

// NewBindToArtistCoordinator constructs a BindToArtistCoordinator.
func NewBindToArtistCoordinator(artistService *cmdartist.Service) *BindToArtistCoordinator {
	return &BindToArtistCoordinator{
		artistService:       artistService,
		pendingGenres:       make(map[uuid.UUID][]domainvalue.GenreID),
		pendingArtists:      make(map[uuid.UUID][]domainvalue.ArtistID),
		expectedGenreCount:  make(map[uuid.UUID]int),
		expectedArtistCount: make(map[uuid.UUID]int),
	}
}

// HandleArtistCreated implements eventbus.Handler[domainartist.Created].
func (c *BindToArtistCoordinator) HandleArtistCreated(ctx context.Context, env eventbus.EventEnvelope[domainartist.Created]) error {
	c.onArtistAvailable(ctx, env.CorrelationID, env.ID, env.Payload.ArtistID)
	return nil
}

// HandleArtistFound implements eventbus.Handler[domainartist.Found].
func (c *BindToArtistCoordinator) HandleArtistFound(ctx context.Context, env eventbus.EventEnvelope[domainartist.Found]) error {
	c.onArtistAvailable(ctx, env.CorrelationID, env.ID, env.Payload.ArtistID)
	return nil
}

// HandleGenreCreated implements eventbus.Handler[domaingenre.Created].
func (c *BindToArtistCoordinator) HandleGenreCreated(ctx context.Context, env eventbus.EventEnvelope[domaingenre.Created]) error {
	c.onGenreAvailable(ctx, env.CorrelationID, env.ID, env.Payload.GenreID)
	return nil
}

// HandleGenreFound implements eventbus.Handler[domaingenre.Found].
func (c *BindToArtistCoordinator) HandleGenreFound(ctx context.Context, env eventbus.EventEnvelope[domaingenre.Found]) error {
	c.onGenreAvailable(ctx, env.CorrelationID, env.ID, env.Payload.GenreID)
	return nil
}

// HandleAudioFileParsed implements eventbus.Handler[appevent.AudioFileParsed].
func (c *BindToArtistCoordinator) HandleAudioFileParsed(ctx context.Context, env eventbus.EventEnvelope[appevent.AudioFileParsed]) error {
	genreCount := len(env.Payload.Metadata.Genres)
	artistCount := distinctParticipantCount(env.Payload.Metadata)

	c.mu.Lock()
	c.expectedGenreCount[env.CorrelationID] = genreCount
	c.expectedArtistCount[env.CorrelationID] = artistCount
	c.mu.Unlock()

	c.checkAndBind(ctx, env.CorrelationID, env.ID)
	return nil
}

func (c *BindToArtistCoordinator) onArtistAvailable(ctx context.Context, correlationID, eventID uuid.UUID, artistID domainvalue.ArtistID) {
	c.mu.Lock()
	c.pendingArtists[correlationID] = append(c.pendingArtists[correlationID], artistID)
	c.mu.Unlock()
	c.checkAndBind(ctx, correlationID, eventID)
}

func (c *BindToArtistCoordinator) onGenreAvailable(ctx context.Context, correlationID, eventID uuid.UUID, genreID domainvalue.GenreID) {
	c.mu.Lock()
	c.pendingGenres[correlationID] = append(c.pendingGenres[correlationID], genreID)
	c.mu.Unlock()
	c.checkAndBind(ctx, correlationID, eventID)
}

func (c *BindToArtistCoordinator) checkAndBind(ctx context.Context, correlationID, eventID uuid.UUID) {
	c.mu.Lock()
	expectedGenres, haveGenreCount := c.expectedGenreCount[correlationID]
	expectedArtists, haveArtistCount := c.expectedArtistCount[correlationID]
	genres := c.pendingGenres[correlationID]
	artists := c.pendingArtists[correlationID]

	ready := haveGenreCount && haveArtistCount && len(genres) == expectedGenres && len(artists) == expectedArtists
	if !ready {
		c.mu.Unlock()
		return
	}

	genres = append([]domainvalue.GenreID(nil), genres...)
	artists = append([]domainvalue.ArtistID(nil), artists...)
	delete(c.pendingGenres, correlationID)
	delete(c.pendingArtists, correlationID)
	delete(c.expectedGenreCount, correlationID)
	delete(c.expectedArtistCount, correlationID)
	c.mu.Unlock()

	appCtx := appcontext.AppContext{EventID: eventID, CorrelationID: correlationID, CausationID: eventID}
	for _, artistID := range artists {
		cmd := cmdartist.BindCmd{ArtistID: artistID, GenreIDs: genres}
		if err := c.artistService.Bind(ctx, appCtx.Derive(), cmd); err != nil {
			log.Error().Err(err).Int64("artist_id", int64(artistID)).Msg("coordinator: failed to bind artist to genres")
		}
	}
}

func distinctParticipantCount(metadata domainvalue.AudioMetadata) int {
	return len(metadata.DistinctParticipants())
}

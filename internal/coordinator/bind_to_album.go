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
	"github.com/harmonia-music/harmonia/internal/appevent"
	cmdalbum "github.com/harmonia-music/harmonia/internal/command/album"
	domainalbum "github.com/harmonia-music/harmonia/internal/domain/album"
	domainartist "github.com/harmonia-music/harmonia/internal/domain/artist"
	domaingenre "github.com/harmonia-music/harmonia/internal/domain/genre"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
	"github.com/harmonia-music/harmonia/internal/eventbus"
)

// BindToAlbumCoordinator waits for the album, every artist, and every genre
// parsed out of one audio file to register, then credits all of them onto
// the album for that correlation id. Like BindToArtistCoordinator it binds
// the full cross-product of what arrived rather than only the artists and
// genres that actually appeared on a single track.
type BindToAlbumCoordinator struct {
	albumService *cmdalbum.Service

	mu                  sync.Mutex
	pendingAlbum        map[uuid.UUID]domainvalue.AlbumID
	pendingGenres       map[uuid.UUID][]domainvalue.GenreID
	pendingArtists      map[uuid.UUID][]domainvalue.ArtistID
	pendingParticipants map[uuid.UUID][]domainvalue.Participant
	expectedGenreCount  map[uuid.UUID]int
	expectedArtistCount map[uuid.UUID]int
}

// NewBindToAlbumCoordinator constructs a BindToAlbumCoordinator.
func NewBindToAlbumCoordinator(albumService *cmdalbum.Service) *BindToAlbumCoordinator {
	return &BindToAlbumCoordinator{
		albumService:        albumService,
		pendingAlbum:        make(map[uuid.UUID]domainvalue.AlbumID),
		pendingGenres:       make(map[uuid.UUID][]domainvalue.GenreID),
		pendingArtists:      make(map[uuid.UUID][]domainvalue.ArtistID),
		pendingParticipants: make(map[uuid.UUID][]domainvalue.Participant),
		expectedGenreCount:  make(map[uuid.UUID]int),
		expectedArtistCount: make(map[uuid.UUID]int),
	}
}

// HandleAlbumCreated implements eventbus.Handler[domainalbum.Created].
func (c *BindToAlbumCoordinator) HandleAlbumCreated(ctx context.Context, env eventbus.EventEnvelope[domainalbum.Created]) error {
	c.onAlbumAvailable(ctx, env.CorrelationID, env.ID, env.Payload.AlbumID)
	return nil
}

// HandleAlbumFound implements eventbus.Handler[domainalbum.Found].
func (c *BindToAlbumCoordinator) HandleAlbumFound(ctx context.Context, env eventbus.EventEnvelope[domainalbum.Found]) error {
	c.onAlbumAvailable(ctx, env.CorrelationID, env.ID, env.Payload.AlbumID)
	return nil
}

// HandleArtistCreated implements eventbus.Handler[domainartist.Created].
func (c *BindToAlbumCoordinator) HandleArtistCreated(ctx context.Context, env eventbus.EventEnvelope[domainartist.Created]) error {
	c.onArtistAvailable(ctx, env.CorrelationID, env.ID, env.Payload.ArtistID)
	return nil
}

// HandleArtistFound implements eventbus.Handler[domainartist.Found].
func (c *BindToAlbumCoordinator) HandleArtistFound(ctx context.Context, env eventbus.EventEnvelope[domainartist.Found]) error {
	c.onArtistAvailable(ctx, env.CorrelationID, env.ID, env.Payload.ArtistID)
	return nil
}

// HandleGenreCreated implements eventbus.Handler[domaingenre.Created].
func (c *BindToAlbumCoordinator) HandleGenreCreated(ctx context.Context, env eventbus.EventEnvelope[domaingenre.Created]) error {
	c.onGenreAvailable(ctx, env.CorrelationID, env.ID, env.Payload.GenreID)
	return nil
}

// HandleGenreFound implements eventbus.Handler[domaingenre.Found].
func (c *BindToAlbumCoordinator) HandleGenreFound(ctx context.Context, env eventbus.EventEnvelope[domaingenre.Found]) error {
	c.onGenreAvailable(ctx, env.CorrelationID, env.ID, env.Payload.GenreID)
	return nil
}

// HandleAudioFileParsed implements eventbus.Handler[appevent.AudioFileParsed].
func (c *BindToAlbumCoordinator) HandleAudioFileParsed(ctx context.Context, env eventbus.EventEnvelope[appevent.AudioFileParsed]) error {
	genreCount := len(env.Payload.Metadata.Genres)
	participants := env.Payload.Metadata.DistinctParticipants()

	c.mu.Lock()
	c.expectedGenreCount[env.CorrelationID] = genreCount
	c.expectedArtistCount[env.CorrelationID] = len(participants)
	c.pendingParticipants[env.CorrelationID] = participants
	c.mu.Unlock()

	c.checkAndBind(ctx, env.CorrelationID, env.ID)
	return nil
}

func (c *BindToAlbumCoordinator) onAlbumAvailable(ctx context.Context, correlationID, eventID uuid.UUID, albumID domainvalue.AlbumID) {
	c.mu.Lock()
	c.pendingAlbum[correlationID] = albumID
	c.mu.Unlock()
	c.checkAndBind(ctx, correlationID, eventID)
}

func (c *BindToAlbumCoordinator) onArtistAvailable(ctx context.Context, correlationID, eventID uuid.UUID, artistID domainvalue.ArtistID) {
	c.mu.Lock()
	c.pendingArtists[correlationID] = append(c.pendingArtists[correlationID], artistID)
	c.mu.Unlock()
	c.checkAndBind(ctx, correlationID, eventID)
}

func (c *BindToAlbumCoordinator) onGenreAvailable(ctx context.Context, correlationID, eventID uuid.UUID, genreID domainvalue.GenreID) {
	c.mu.Lock()
	c.pendingGenres[correlationID] = append(c.pendingGenres[correlationID], genreID)
	c.mu.Unlock()
	c.checkAndBind(ctx, correlationID, eventID)
}

func (c *BindToAlbumCoordinator) checkAndBind(ctx context.Context, correlationID, eventID uuid.UUID) {
	c.mu.Lock()
	albumID, haveAlbum := c.pendingAlbum[correlationID]
	expectedGenres, haveGenreCount := c.expectedGenreCount[correlationID]
	expectedArtists, haveArtistCount := c.expectedArtistCount[correlationID]
	genres := c.pendingGenres[correlationID]
	artists := c.pendingArtists[correlationID]
	participants := c.pendingParticipants[correlationID]

	ready := haveAlbum && haveGenreCount && haveArtistCount &&
		len(genres) == expectedGenres && len(artists) == expectedArtists
	if !ready {
		c.mu.Unlock()
		return
	}

	genres = append([]domainvalue.GenreID(nil), genres...)
	artists = append([]domainvalue.ArtistID(nil), artists...)
	participants = append([]domainvalue.Participant(nil), participants...)
	delete(c.pendingAlbum, correlationID)
	delete(c.pendingGenres, correlationID)
	delete(c.pendingArtists, correlationID)
	delete(c.pendingParticipants, correlationID)
	delete(c.expectedGenreCount, correlationID)
	delete(c.expectedArtistCount, correlationID)
	c.mu.Unlock()

	bindings := make([]cmdalbum.ArtistBinding, len(artists))
	for i, artistID := range artists {
		binding := cmdalbum.ArtistBinding{ArtistID: artistID, Role: domainalbum.RoleArtist}
		if i < len(participants) {
			binding.Role = albumParticipantRole(participants[i].Role)
			binding.SubRole = participants[i].SubRole
		}
		bindings[i] = binding
	}

	appCtx := appcontext.AppContext{EventID: eventID, CorrelationID: correlationID, CausationID: eventID}
	cmd := cmdalbum.BindCmd{AlbumID: albumID, GenreIDs: genres, Artists: bindings}
	if err := c.albumService.Bind(ctx, appCtx.Derive(), cmd); err != nil {
		log.Error().Err(err).Int64("album_id", int64(albumID)).Msg("coordinator: failed to bind album to genres and artists")
	}
}

// albumParticipantRole maps the free-form role string read off a parsed
// participant onto the album aggregate's closed role set, defaulting
// unrecognized or "artist" roles to RoleArtist.
func albumParticipantRole(role string) domainalbum.ParticipantRole {
	switch role {
	case string(domainalbum.RoleAlbumArtist):
		return domainalbum.RoleAlbumArtist
	case string(domainalbum.RoleComposer):
		return domainalbum.RoleComposer
	default:
		return domainalbum.RoleArtist
	}
}

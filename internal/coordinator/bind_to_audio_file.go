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
	cmdaudiofile "github.com/harmonia-music/harmonia/internal/command/audiofile"
	domainalbum "github.com/harmonia-music/harmonia/internal/domain/album"
	domainartist "github.com/harmonia-music/harmonia/internal/domain/artist"
	domainaudiofile "github.com/harmonia-music/harmonia/internal/domain/audiofile"
	domaingenre "github.com/harmonia-music/harmonia/internal/domain/genre"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
	"github.com/harmonia-music/harmonia/internal/eventbus"
)

// BindToAudioFileCoordinator is the terminal coordinator in the ingestion
// pipeline: it waits for the audio file aggregate itself, its album, and
// every genre and artist derived from its tags to register, then binds the
// audio file to all of them in one pass.
type BindToAudioFileCoordinator struct {
	audioFileService *cmdaudiofile.Service

	mu                  sync.Mutex
	pendingAudioFile    map[uuid.UUID]domainvalue.AudioFileID
	pendingAlbum        map[uuid.UUID]domainvalue.AlbumID
	pendingGenres       map[uuid.UUID][]domainvalue.GenreID
	pendingArtists      map[uuid.UUID][]domainvalue.ArtistID
	pendingParticipants map[uuid.UUID][]domainvalue.Participant
	expectedGenreCount  map[uuid.UUID]int
	expectedArtistCount map[uuid.UUID]int
}

// NewBindToAudioFileCoordinator constructs a BindToAudioFileCoordinator.
func NewBindToAudioFileCoordinator(audioFileService *cmdaudiofile.Service) *BindToAudioFileCoordinator {
	return &BindToAudioFileCoordinator{
		audioFileService:    audioFileService,
		pendingAudioFile:    make(map[uuid.UUID]domainvalue.AudioFileID),
		pendingAlbum:        make(map[uuid.UUID]domainvalue.AlbumID),
		pendingGenres:       make(map[uuid.UUID][]domainvalue.GenreID),
		pendingArtists:      make(map[uuid.UUID][]domainvalue.ArtistID),
		pendingParticipants: make(map[uuid.UUID][]domainvalue.Participant),
		expectedGenreCount:  make(map[uuid.UUID]int),
		expectedArtistCount: make(map[uuid.UUID]int),
	}
}

// HandleAudioFileCreated implements eventbus.Handler[domainaudiofile.Created].
func (c *BindToAudioFileCoordinator) HandleAudioFileCreated(ctx context.Context, env eventbus.EventEnvelope[domainaudiofile.Created]) error {
	c.mu.Lock()
	c.pendingAudioFile[env.CorrelationID] = env.Payload.AudioFileID
	c.mu.Unlock()
	c.checkAndBind(ctx, env.CorrelationID, env.ID)
	return nil
}

// HandleAlbumCreated implements eventbus.Handler[domainalbum.Created].
func (c *BindToAudioFileCoordinator) HandleAlbumCreated(ctx context.Context, env eventbus.EventEnvelope[domainalbum.Created]) error {
	c.onAlbumAvailable(ctx, env.CorrelationID, env.ID, env.Payload.AlbumID)
	return nil
}

// HandleAlbumFound implements eventbus.Handler[domainalbum.Found].
func (c *BindToAudioFileCoordinator) HandleAlbumFound(ctx context.Context, env eventbus.EventEnvelope[domainalbum.Found]) error {
	c.onAlbumAvailable(ctx, env.CorrelationID, env.ID, env.Payload.AlbumID)
	return nil
}

// HandleArtistCreated implements eventbus.Handler[domainartist.Created].
func (c *BindToAudioFileCoordinator) HandleArtistCreated(ctx context.Context, env eventbus.EventEnvelope[domainartist.Created]) error {
	c.onArtistAvailable(ctx, env.CorrelationID, env.ID, env.Payload.ArtistID)
	return nil
}

// HandleArtistFound implements eventbus.Handler[domainartist.Found].
func (c *BindToAudioFileCoordinator) HandleArtistFound(ctx context.Context, env eventbus.EventEnvelope[domainartist.Found]) error {
	c.onArtistAvailable(ctx, env.CorrelationID, env.ID, env.Payload.ArtistID)
	return nil
}

// HandleGenreCreated implements eventbus.Handler[domaingenre.Created].
func (c *BindToAudioFileCoordinator) HandleGenreCreated(ctx context.Context, env eventbus.EventEnvelope[domaingenre.Created]) error {
	c.onGenreAvailable(ctx, env.CorrelationID, env.ID, env.Payload.GenreID)
	return nil
}

// HandleGenreFound implements eventbus.Handler[domaingenre.Found].
func (c *BindToAudioFileCoordinator) HandleGenreFound(ctx context.Context, env eventbus.EventEnvelope[domaingenre.Found]) error {
	c.onGenreAvailable(ctx, env.CorrelationID, env.ID, env.Payload.GenreID)
	return nil
}

// HandleAudioFileParsed implements eventbus.Handler[appevent.AudioFileParsed].
func (c *BindToAudioFileCoordinator) HandleAudioFileParsed(ctx context.Context, env eventbus.EventEnvelope[appevent.AudioFileParsed]) error {
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

func (c *BindToAudioFileCoordinator) onAlbumAvailable(ctx context.Context, correlationID, eventID uuid.UUID, albumID domainvalue.AlbumID) {
	c.mu.Lock()
	c.pendingAlbum[correlationID] = albumID
	c.mu.Unlock()
	c.checkAndBind(ctx, correlationID, eventID)
}

func (c *BindToAudioFileCoordinator) onArtistAvailable(ctx context.Context, correlationID, eventID uuid.UUID, artistID domainvalue.ArtistID) {
	c.mu.Lock()
	c.pendingArtists[correlationID] = append(c.pendingArtists[correlationID], artistID)
	c.mu.Unlock()
	c.checkAndBind(ctx, correlationID, eventID)
}

func (c *BindToAudioFileCoordinator) onGenreAvailable(ctx context.Context, correlationID, eventID uuid.UUID, genreID domainvalue.GenreID) {
	c.mu.Lock()
	c.pendingGenres[correlationID] = append(c.pendingGenres[correlationID], genreID)
	c.mu.Unlock()
	c.checkAndBind(ctx, correlationID, eventID)
}

func (c *BindToAudioFileCoordinator) checkAndBind(ctx context.Context, correlationID, eventID uuid.UUID) {
	c.mu.Lock()
	audioFileID, haveAudioFile := c.pendingAudioFile[correlationID]
	albumID, haveAlbum := c.pendingAlbum[correlationID]
	expectedGenres, haveGenreCount := c.expectedGenreCount[correlationID]
	expectedArtists, haveArtistCount := c.expectedArtistCount[correlationID]
	genres := c.pendingGenres[correlationID]
	artists := c.pendingArtists[correlationID]
	participants := c.pendingParticipants[correlationID]

	ready := haveAudioFile && haveAlbum && haveGenreCount && haveArtistCount &&
		len(genres) == expectedGenres && len(artists) == expectedArtists
	if !ready {
		c.mu.Unlock()
		return
	}

	genres = append([]domainvalue.GenreID(nil), genres...)
	artists = append([]domainvalue.ArtistID(nil), artists...)
	participants = append([]domainvalue.Participant(nil), participants...)
	delete(c.pendingAudioFile, correlationID)
	delete(c.pendingAlbum, correlationID)
	delete(c.pendingGenres, correlationID)
	delete(c.pendingArtists, correlationID)
	delete(c.pendingParticipants, correlationID)
	delete(c.expectedGenreCount, correlationID)
	delete(c.expectedArtistCount, correlationID)
	c.mu.Unlock()

	// The k-th ArtistID received for this correlation pairs with the k-th
	// entry of the DistinctParticipants ordering captured at
	// HandleAudioFileParsed; the fan-out handler that created the artists
	// and this coordinator both walk that same ordering.
	bindings := make([]cmdaudiofile.ArtistBinding, len(artists))
	for i, artistID := range artists {
		binding := cmdaudiofile.ArtistBinding{ArtistID: artistID, Role: domainaudiofile.RoleArtist}
		if i < len(participants) {
			binding.Role = audioFileParticipantRole(participants[i].Role)
			binding.SubRole = participants[i].SubRole
		}
		bindings[i] = binding
	}

	appCtx := appcontext.AppContext{EventID: eventID, CorrelationID: correlationID, CausationID: eventID}
	cmd := cmdaudiofile.BindCmd{AudioFileID: audioFileID, AlbumID: albumID, GenreIDs: genres, Artists: bindings}
	if err := c.audioFileService.Bind(ctx, appCtx.Derive(), cmd); err != nil {
		log.Error().Err(err).Int64("audio_file_id", int64(audioFileID)).Msg("coordinator: failed to bind audio file to album, genres, and artists")
	}
}

// audioFileParticipantRole maps the free-form role string read off a
// parsed participant onto the audio file aggregate's closed role set,
// defaulting unrecognized or "artist" roles to RoleArtist.
func audioFileParticipantRole(role string) domainaudiofile.ParticipantRole {
	switch role {
	case string(domainaudiofile.RoleAlbumArtist):
		return domainaudiofile.RoleAlbumArtist
	case string(domainaudiofile.RoleComposer):
		return domainaudiofile.RoleComposer
	default:
		return domainaudiofile.RoleArtist
	}
}

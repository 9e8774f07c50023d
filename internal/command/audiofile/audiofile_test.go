// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package audiofile

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-music/harmonia/internal/appcontext"
	"github.com/harmonia-music/harmonia/internal/apperror"
	domainaudiofile "github.com/harmonia-music/harmonia/internal/domain/audiofile"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
	"github.com/harmonia-music/harmonia/internal/eventbus"
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
	mu     sync.Mutex
	byID   map[domainvalue.AudioFileID]*domainaudiofile.AudioFile
	byPath map[string]*domainaudiofile.AudioFile
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byID:   map[domainvalue.AudioFileID]*domainaudiofile.AudioFile{},
		byPath: map[string]*domainaudiofile.AudioFile{},
	}
}

func (r *fakeRepo) FindByID(ctx context.Context, id domainvalue.AudioFileID) (*domainaudiofile.AudioFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id], nil
}

func (r *fakeRepo) FindByPath(ctx context.Context, path domainvalue.MediaPath) (*domainaudiofile.AudioFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byPath[path.String()], nil
}

func (r *fakeRepo) Save(ctx context.Context, af *domainaudiofile.AudioFile) (*domainaudiofile.AudioFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[af.ID] = af
	r.byPath[af.Path.String()] = af
	return af, nil
}

func (r *fakeRepo) Delete(ctx context.Context, id domainvalue.AudioFileID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func testCreateCmd() CreateCmd {
	return CreateCmd{
		FileMeta: domainvalue.FileMeta{
			Path:   domainvalue.MediaPath{Protocol: "local", Path: "/music/kob/01.flac"},
			Size:   1024,
			Suffix: "flac",
		},
		AudioMetadata: domainvalue.AudioMetadata{Title: "So What", Duration: 540},
		LibraryID:     domainvalue.LibraryID(1),
	}
}

func TestCreateMintsNewAudioFile(t *testing.T) {
	svc := New(&fakeIDGenerator{}, newFakeRepo(), eventbus.New(eventbus.ModeSynchronous))
	af, err := svc.Create(context.Background(), appcontext.New(), testCreateCmd())
	require.NoError(t, err)
	assert.Equal(t, "flac", af.Suffix)
}

func TestBindReturnsTypedNotFoundForMissingAudioFile(t *testing.T) {
	svc := New(&fakeIDGenerator{}, newFakeRepo(), eventbus.New(eventbus.ModeSynchronous))
	err := svc.Bind(context.Background(), appcontext.New(), BindCmd{AudioFileID: domainvalue.AudioFileID(999)})
	require.Error(t, err)
	var notFound *apperror.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestBindAssignsAlbumGenresAndArtists(t *testing.T) {
	repo := newFakeRepo()
	svc := New(&fakeIDGenerator{}, repo, eventbus.New(eventbus.ModeSynchronous))

	af, err := svc.Create(context.Background(), appcontext.New(), testCreateCmd())
	require.NoError(t, err)

	err = svc.Bind(context.Background(), appcontext.New(), BindCmd{
		AudioFileID: af.ID,
		AlbumID:     domainvalue.AlbumID(7),
		GenreIDs:    []domainvalue.GenreID{3},
		Artists:     []ArtistBinding{{ArtistID: 1, Role: domainaudiofile.RoleArtist}},
	})
	require.NoError(t, err)

	got, err := repo.FindByID(context.Background(), af.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AlbumID)
	assert.Equal(t, domainvalue.AlbumID(7), *got.AlbumID)
	assert.Len(t, got.GenreIDs, 1)
	assert.Len(t, got.Participants, 1)
}

func TestRemoveUnwindsBindingsAndDeletes(t *testing.T) {
	repo := newFakeRepo()
	bus := eventbus.New(eventbus.ModeSynchronous)

	var unboundAlbum []domainaudiofile.UnboundFromAlbum
	eventbus.Subscribe[domainaudiofile.UnboundFromAlbum](bus, "test", eventbus.HandlerFunc[domainaudiofile.UnboundFromAlbum](
		func(ctx context.Context, env eventbus.EventEnvelope[domainaudiofile.UnboundFromAlbum]) error {
			unboundAlbum = append(unboundAlbum, env.Payload)
			return nil
		}))
	var removedParticipants []domainaudiofile.ParticipantRemoved
	eventbus.Subscribe[domainaudiofile.ParticipantRemoved](bus, "test", eventbus.HandlerFunc[domainaudiofile.ParticipantRemoved](
		func(ctx context.Context, env eventbus.EventEnvelope[domainaudiofile.ParticipantRemoved]) error {
			removedParticipants = append(removedParticipants, env.Payload)
			return nil
		}))
	var unboundGenres []domainaudiofile.UnboundFromGenre
	eventbus.Subscribe[domainaudiofile.UnboundFromGenre](bus, "test", eventbus.HandlerFunc[domainaudiofile.UnboundFromGenre](
		func(ctx context.Context, env eventbus.EventEnvelope[domainaudiofile.UnboundFromGenre]) error {
			unboundGenres = append(unboundGenres, env.Payload)
			return nil
		}))

	svc := New(&fakeIDGenerator{}, repo, bus)

	af, err := svc.Create(context.Background(), appcontext.New(), testCreateCmd())
	require.NoError(t, err)

	err = svc.Bind(context.Background(), appcontext.New(), BindCmd{
		AudioFileID: af.ID,
		AlbumID:     domainvalue.AlbumID(7),
		GenreIDs:    []domainvalue.GenreID{3},
		Artists:     []ArtistBinding{{ArtistID: 1, Role: domainaudiofile.RoleArtist}},
	})
	require.NoError(t, err)

	err = svc.Remove(context.Background(), appcontext.New(), RemoveCmd{Path: af.Path})
	require.NoError(t, err)

	require.Len(t, unboundAlbum, 1)
	assert.Equal(t, domainvalue.AlbumID(7), unboundAlbum[0].AlbumID)
	require.Len(t, removedParticipants, 1)
	assert.Equal(t, domainvalue.ArtistID(1), removedParticipants[0].Participant.ArtistID)
	require.Len(t, unboundGenres, 1)
	assert.Equal(t, domainvalue.GenreID(3), unboundGenres[0].GenreID)

	gone, err := repo.FindByID(context.Background(), af.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestRemoveUnknownPathIsNoOp(t *testing.T) {
	svc := New(&fakeIDGenerator{}, newFakeRepo(), eventbus.New(eventbus.ModeSynchronous))
	err := svc.Remove(context.Background(), appcontext.New(), RemoveCmd{
		Path: domainvalue.MediaPath{Protocol: "local", Path: "/music/never-imported.flac"},
	})
	assert.NoError(t, err)
}

func TestBindRejectsReassignmentToDifferentAlbum(t *testing.T) {
	repo := newFakeRepo()
	svc := New(&fakeIDGenerator{}, repo, eventbus.New(eventbus.ModeSynchronous))

	af, err := svc.Create(context.Background(), appcontext.New(), testCreateCmd())
	require.NoError(t, err)

	err = svc.Bind(context.Background(), appcontext.New(), BindCmd{AudioFileID: af.ID, AlbumID: domainvalue.AlbumID(7)})
	require.NoError(t, err)

	err = svc.Bind(context.Background(), appcontext.New(), BindCmd{AudioFileID: af.ID, AlbumID: domainvalue.AlbumID(8)})
	assert.Error(t, err)
}

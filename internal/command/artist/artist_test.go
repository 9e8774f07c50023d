// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package artist

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-music/harmonia/internal/appcontext"
	domainartist "github.com/harmonia-music/harmonia/internal/domain/artist"
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

type passthroughNormalizer struct{}

func (passthroughNormalizer) Normalize(name string) string { return name }

type fakeRepo struct {
	mu       sync.Mutex
	byID     map[domainvalue.ArtistID]*domainartist.Artist
	bySort   map[string]*domainartist.Artist
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[domainvalue.ArtistID]*domainartist.Artist{}, bySort: map[string]*domainartist.Artist{}}
}

func (r *fakeRepo) FindBySortName(ctx context.Context, sortName string) (*domainartist.Artist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bySort[sortName], nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id domainvalue.ArtistID) (*domainartist.Artist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id], nil
}

func (r *fakeRepo) Save(ctx context.Context, a *domainartist.Artist) (*domainartist.Artist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[a.ID] = a
	r.bySort[a.SortName] = a
	return a, nil
}

func (r *fakeRepo) Delete(ctx context.Context, id domainvalue.ArtistID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func TestCreateMintsNewArtist(t *testing.T) {
	svc := New(&fakeIDGenerator{}, newFakeRepo(), passthroughNormalizer{}, eventbus.New(eventbus.ModeSynchronous))
	a, err := svc.Create(context.Background(), appcontext.New(), CreateCmd{Name: "Miles Davis"})
	require.NoError(t, err)
	assert.Equal(t, "Miles Davis", a.Name)
}

func TestCreateFindsExistingArtistBySortName(t *testing.T) {
	repo := newFakeRepo()
	svc := New(&fakeIDGenerator{}, repo, passthroughNormalizer{}, eventbus.New(eventbus.ModeSynchronous))

	first, err := svc.Create(context.Background(), appcontext.New(), CreateCmd{Name: "Miles Davis"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), appcontext.New(), CreateCmd{Name: "Miles Davis"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestBindReturnsNotFoundForMissingArtist(t *testing.T) {
	svc := New(&fakeIDGenerator{}, newFakeRepo(), passthroughNormalizer{}, eventbus.New(eventbus.ModeSynchronous))
	err := svc.Bind(context.Background(), appcontext.New(), BindCmd{ArtistID: domainvalue.ArtistID(999)})
	assert.Error(t, err)
}

func TestBindAttachesGenres(t *testing.T) {
	repo := newFakeRepo()
	svc := New(&fakeIDGenerator{}, repo, passthroughNormalizer{}, eventbus.New(eventbus.ModeSynchronous))

	a, err := svc.Create(context.Background(), appcontext.New(), CreateCmd{Name: "Miles Davis"})
	require.NoError(t, err)

	err = svc.Bind(context.Background(), appcontext.New(), BindCmd{ArtistID: a.ID, GenreIDs: []domainvalue.GenreID{1, 2}})
	require.NoError(t, err)

	got, err := repo.FindByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Len(t, got.Genres, 2)
}

func TestBindToSameGenreTwiceIsNoopAndSkipsSave(t *testing.T) {
	repo := newFakeRepo()
	svc := New(&fakeIDGenerator{}, repo, passthroughNormalizer{}, eventbus.New(eventbus.ModeSynchronous))

	a, err := svc.Create(context.Background(), appcontext.New(), CreateCmd{Name: "Miles Davis"})
	require.NoError(t, err)

	err = svc.Bind(context.Background(), appcontext.New(), BindCmd{ArtistID: a.ID, GenreIDs: []domainvalue.GenreID{1}})
	require.NoError(t, err)

	got, err := repo.FindByID(context.Background(), a.ID)
	require.NoError(t, err)
	versionAfterFirstBind := got.Version

	// Re-binding the same genre must be a true no-op: no version bump, and
	// since TakeEvents() is empty the service must skip the repository
	// Save call entirely rather than resaving the unchanged aggregate.
	err = svc.Bind(context.Background(), appcontext.New(), BindCmd{ArtistID: a.ID, GenreIDs: []domainvalue.GenreID{1}})
	require.NoError(t, err)

	got, err = repo.FindByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, versionAfterFirstBind, got.Version)
}

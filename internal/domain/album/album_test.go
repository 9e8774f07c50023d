// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package album

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

func TestNewAlbumQueuesCreatedEvent(t *testing.T) {
	al := New(domainvalue.AlbumID(1), "Kind of Blue", "Kind of Blue")

	events := al.TakeEvents()
	require.Len(t, events, 1)
	_, ok := events[0].(Created)
	assert.True(t, ok)
}

func TestAddParticipantSetsPrimaryArtist(t *testing.T) {
	al := New(domainvalue.AlbumID(1), "Kind of Blue", "Kind of Blue")
	al.TakeEvents()

	p := Participant{ArtistID: domainvalue.ArtistID(7), Role: RoleAlbumArtist}
	require.NoError(t, al.AddParticipant(p))

	require.NotNil(t, al.Artist)
	assert.Equal(t, domainvalue.ArtistID(7), *al.Artist)
	assert.Len(t, al.Participants, 1)
}

func TestAddParticipantIsIdempotent(t *testing.T) {
	al := New(domainvalue.AlbumID(1), "Kind of Blue", "Kind of Blue")
	al.TakeEvents()

	p := Participant{ArtistID: domainvalue.ArtistID(7), Role: RoleAlbumArtist}
	require.NoError(t, al.AddParticipant(p))
	al.TakeEvents()

	require.NoError(t, al.AddParticipant(p))
	events := al.TakeEvents()
	assert.Empty(t, events)
	assert.Len(t, al.Participants, 1)
}

func TestBindToGenreTracksAllGenres(t *testing.T) {
	al := New(domainvalue.AlbumID(1), "Kind of Blue", "Kind of Blue")
	al.TakeEvents()

	require.NoError(t, al.BindToGenre(domainvalue.GenreID(1)))
	require.NoError(t, al.BindToGenre(domainvalue.GenreID(2)))

	assert.ElementsMatch(t, []domainvalue.GenreID{1, 2}, al.Genres)
	require.NotNil(t, al.Genre)
	assert.Equal(t, domainvalue.GenreID(1), *al.Genre)
}

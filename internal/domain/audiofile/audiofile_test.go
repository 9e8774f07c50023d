// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package audiofile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

func newTestAudioFile() *AudioFile {
	path := domainvalue.MediaPath{Path: "/music/kind-of-blue/01-so-what.flac"}
	return New(domainvalue.AudioFileID(1), domainvalue.LibraryID(1), path, 1024, "flac", 540_000, 900, 44100, 2, false, domainvalue.AudioMetadata{})
}

func TestNewAudioFileQueuesCreatedEvent(t *testing.T) {
	af := newTestAudioFile()
	events := af.TakeEvents()
	require.Len(t, events, 1)
	_, ok := events[0].(Created)
	assert.True(t, ok)
}

func TestBindToAlbumOnce(t *testing.T) {
	af := newTestAudioFile()
	af.TakeEvents()

	require.NoError(t, af.BindToAlbum(domainvalue.AlbumID(5)))
	require.NotNil(t, af.AlbumID)
	assert.Equal(t, domainvalue.AlbumID(5), *af.AlbumID)

	events := af.TakeEvents()
	require.Len(t, events, 1)
}

func TestBindToAlbumRejectsReassignment(t *testing.T) {
	af := newTestAudioFile()
	af.TakeEvents()
	require.NoError(t, af.BindToAlbum(domainvalue.AlbumID(5)))
	af.TakeEvents()

	err := af.BindToAlbum(domainvalue.AlbumID(6))
	assert.Error(t, err)
}

func TestBindToAlbumIdempotentForSameAlbum(t *testing.T) {
	af := newTestAudioFile()
	af.TakeEvents()
	require.NoError(t, af.BindToAlbum(domainvalue.AlbumID(5)))
	af.TakeEvents()

	require.NoError(t, af.BindToAlbum(domainvalue.AlbumID(5)))
	events := af.TakeEvents()
	assert.Empty(t, events)
}

func TestAddParticipantDeduplicates(t *testing.T) {
	af := newTestAudioFile()
	af.TakeEvents()

	p := Participant{ArtistID: domainvalue.ArtistID(1), Role: RoleArtist}
	require.NoError(t, af.AddParticipant(p))
	require.NoError(t, af.AddParticipant(p))

	assert.Len(t, af.Participants, 1)
}

func TestBindToGenreDeduplicates(t *testing.T) {
	af := newTestAudioFile()
	af.TakeEvents()

	require.NoError(t, af.BindToGenre(domainvalue.GenreID(1)))
	require.NoError(t, af.BindToGenre(domainvalue.GenreID(1)))

	assert.Len(t, af.GenreIDs, 1)
}

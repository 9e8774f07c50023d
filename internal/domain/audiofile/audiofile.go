// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audiofile is the AudioFile aggregate: a single parsed audio track
// on disk, bound to an album, zero or more genres, and one or more credited
// artists.
package audiofile

import (
	"context"
	"fmt"

	"github.com/harmonia-music/harmonia/internal/apperror"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

// ParticipantRole classifies how an artist contributed to this audio file.
type ParticipantRole string

const (
	RoleArtist      ParticipantRole = "artist"
	RoleAlbumArtist ParticipantRole = "album_artist"
	RoleComposer    ParticipantRole = "composer"
)

// Participant is an artist credited on the audio file.
type Participant struct {
	ArtistID domainvalue.ArtistID
	Role     ParticipantRole
	SubRole  string
}

// Created is emitted when a new audio file aggregate is constructed.
type Created struct {
	AudioFileID domainvalue.AudioFileID
	Version     int64
	LibraryID   domainvalue.LibraryID
	Path        domainvalue.MediaPath
	HasCoverArt bool
}

// BoundToGenre is emitted when a genre is newly bound to the audio file.
type BoundToGenre struct {
	AudioFileID domainvalue.AudioFileID
	Version     int64
	GenreID     domainvalue.GenreID
}

// UnboundFromGenre is emitted when a genre is removed from the audio file.
type UnboundFromGenre struct {
	AudioFileID domainvalue.AudioFileID
	Version     int64
	GenreID     domainvalue.GenreID
}

// ParticipantAdded is emitted when a new participant is credited on the audio
// file. Duration, Size and Path mirror the audio file's own fields at the
// time of the event so the participant_stats and artist_location projectors
// can update without re-querying the aggregate.
type ParticipantAdded struct {
	AudioFileID domainvalue.AudioFileID
	Version     int64
	Participant Participant
	Duration    int64
	Size        int64
	Path        domainvalue.MediaPath
}

// ParticipantRemoved is emitted when a participant is uncredited from the
// audio file.
type ParticipantRemoved struct {
	AudioFileID domainvalue.AudioFileID
	Version     int64
	Participant Participant
	Duration    int64
	Size        int64
	Path        domainvalue.MediaPath
}

// BoundToAlbum is emitted when the audio file is newly assigned to an album.
// Duration, Size, Path, DiscNumber and Year carry the audio file's own
// tag-derived data so the album_stats and album_location projectors can
// update without re-querying the aggregate.
type BoundToAlbum struct {
	AudioFileID domainvalue.AudioFileID
	Version     int64
	AlbumID     domainvalue.AlbumID
	Duration    int64
	Size        int64
	Path        domainvalue.MediaPath
	DiscNumber  *int32
	Year        *int32
}

// UnboundFromAlbum is emitted when the audio file's album binding is cleared.
type UnboundFromAlbum struct {
	AudioFileID domainvalue.AudioFileID
	Version     int64
	AlbumID     domainvalue.AlbumID
	Duration    int64
	Size        int64
	Path        domainvalue.MediaPath
}

// AudioFile is the aggregate root.
type AudioFile struct {
	ID          domainvalue.AudioFileID
	LibraryID   domainvalue.LibraryID
	Path        domainvalue.MediaPath
	Size        int64
	Suffix      string
	Duration    int64
	BitRate     int
	SampleRate  int
	Channels    int
	HasCoverArt bool
	Metadata    domainvalue.AudioMetadata

	AlbumID      *domainvalue.AlbumID
	GenreIDs     []domainvalue.GenreID
	Participants []Participant
	Version      int64

	pendingEvents []any
}

// New constructs an AudioFile and queues its Created event.
func New(id domainvalue.AudioFileID, libraryID domainvalue.LibraryID, path domainvalue.MediaPath, size int64, suffix string, duration int64, bitRate, sampleRate, channels int, hasCoverArt bool, metadata domainvalue.AudioMetadata) *AudioFile {
	af := &AudioFile{
		ID:          id,
		LibraryID:   libraryID,
		Path:        path,
		Size:        size,
		Suffix:      suffix,
		Duration:    duration,
		BitRate:     bitRate,
		SampleRate:  sampleRate,
		Channels:    channels,
		HasCoverArt: hasCoverArt,
		Metadata:    metadata,
	}
	af.pendingEvents = append(af.pendingEvents, Created{
		AudioFileID: id,
		Version:     0,
		LibraryID:   libraryID,
		Path:        path,
		HasCoverArt: hasCoverArt,
	})
	return af
}

// WithVersion overrides the version, used when rehydrating from storage.
func (af *AudioFile) WithVersion(version int64) *AudioFile {
	af.Version = version
	return af
}

// BindToGenre associates genreID with the audio file. Binding an
// already-bound genre is a no-op.
func (af *AudioFile) BindToGenre(genreID domainvalue.GenreID) error {
	for _, existing := range af.GenreIDs {
		if existing == genreID {
			return nil
		}
	}
	af.GenreIDs = append(af.GenreIDs, genreID)
	af.Version++
	af.pendingEvents = append(af.pendingEvents, BoundToGenre{
		AudioFileID: af.ID,
		Version:     af.Version,
		GenreID:     genreID,
	})
	return nil
}

// UnbindFromGenre removes genreID from the audio file. Unbinding a genre
// that is not bound is a no-op that raises no event.
func (af *AudioFile) UnbindFromGenre(genreID domainvalue.GenreID) error {
	idx := -1
	for i, existing := range af.GenreIDs {
		if existing == genreID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}
	af.GenreIDs = append(af.GenreIDs[:idx], af.GenreIDs[idx+1:]...)
	af.Version++
	af.pendingEvents = append(af.pendingEvents, UnboundFromGenre{
		AudioFileID: af.ID,
		Version:     af.Version,
		GenreID:     genreID,
	})
	return nil
}

// AddParticipant credits participant on the audio file. Adding an
// already-credited participant is a no-op.
func (af *AudioFile) AddParticipant(participant Participant) error {
	for _, existing := range af.Participants {
		if existing == participant {
			return nil
		}
	}
	af.Participants = append(af.Participants, participant)
	af.Version++
	af.pendingEvents = append(af.pendingEvents, ParticipantAdded{
		AudioFileID: af.ID,
		Version:     af.Version,
		Participant: participant,
		Duration:    af.Duration,
		Size:        af.Size,
		Path:        af.Path,
	})
	return nil
}

// RemoveParticipant uncredits participant from the audio file. Removing a
// participant that is not credited is a no-op that raises no event.
func (af *AudioFile) RemoveParticipant(participant Participant) error {
	idx := -1
	for i, existing := range af.Participants {
		if existing == participant {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}
	af.Participants = append(af.Participants[:idx], af.Participants[idx+1:]...)
	af.Version++
	af.pendingEvents = append(af.pendingEvents, ParticipantRemoved{
		AudioFileID: af.ID,
		Version:     af.Version,
		Participant: participant,
		Duration:    af.Duration,
		Size:        af.Size,
		Path:        af.Path,
	})
	return nil
}

// BindToAlbum assigns the audio file to an album. Rebinding to a different
// album than the one already set is rejected as an invalid operation; the
// original implementation this is grounded on has no such guard and silently
// allows it, but a track changing albums after parse indicates a bug
// upstream, so this aggregate surfaces it instead of hiding it.
func (af *AudioFile) BindToAlbum(albumID domainvalue.AlbumID) error {
	if af.AlbumID != nil && *af.AlbumID != albumID {
		return fmt.Errorf("%w: audio file %d already bound to album %d", apperror.ErrInvalidOperation, af.ID, *af.AlbumID)
	}
	if af.AlbumID != nil {
		return nil
	}
	af.AlbumID = &albumID
	af.Version++
	af.pendingEvents = append(af.pendingEvents, BoundToAlbum{
		AudioFileID: af.ID,
		Version:     af.Version,
		AlbumID:     albumID,
		Duration:    af.Duration,
		Size:        af.Size,
		Path:        af.Path,
		DiscNumber:  optionalInt32(af.Metadata.DiscNumber),
		Year:        optionalInt32(af.Metadata.Year),
	})
	return nil
}

// UnbindFromAlbum clears the audio file's album binding. Unbinding when no
// album is set is a no-op that raises no event.
func (af *AudioFile) UnbindFromAlbum() error {
	if af.AlbumID == nil {
		return nil
	}
	albumID := *af.AlbumID
	af.AlbumID = nil
	af.Version++
	af.pendingEvents = append(af.pendingEvents, UnboundFromAlbum{
		AudioFileID: af.ID,
		Version:     af.Version,
		AlbumID:     albumID,
		Duration:    af.Duration,
		Size:        af.Size,
		Path:        af.Path,
	})
	return nil
}

// optionalInt32 returns nil for the tag library's zero-value sentinel
// (meaning "absent") and a pointer to v otherwise.
func optionalInt32(v int) *int32 {
	if v == 0 {
		return nil
	}
	out := int32(v)
	return &out
}

// TakeEvents drains and returns the aggregate's pending events.
func (af *AudioFile) TakeEvents() []any {
	events := af.pendingEvents
	af.pendingEvents = nil
	return events
}

// Repository is the persistence port for the AudioFile aggregate.
type Repository interface {
	FindByID(ctx context.Context, id domainvalue.AudioFileID) (*AudioFile, error)
	FindByPath(ctx context.Context, path domainvalue.MediaPath) (*AudioFile, error)
	Save(ctx context.Context, audioFile *AudioFile) (*AudioFile, error)
	Delete(ctx context.Context, id domainvalue.AudioFileID) error
}

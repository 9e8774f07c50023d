// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package album is the Album aggregate: a collection of audio files sharing
// a title, bound to artists (as participants) and genres.
package album

import (
	"context"

	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

// ParticipantRole classifies how an artist contributed to an album or audio file.
type ParticipantRole string

const (
	RoleArtist      ParticipantRole = "artist"
	RoleAlbumArtist ParticipantRole = "album_artist"
	RoleComposer    ParticipantRole = "composer"
)

// Participant is an artist credited on the album, with an optional sub-role
// (e.g. "featured", "remixer").
type Participant struct {
	ArtistID domainvalue.ArtistID
	Role     ParticipantRole
	SubRole  string
}

// Created is emitted when a new album aggregate is constructed.
type Created struct {
	AlbumID  domainvalue.AlbumID
	Version  int64
	Name     string
	SortName string
	Genre    *domainvalue.GenreID
	Genres   []string
}

// Found is emitted when a create-or-find command resolves to an existing album.
type Found struct {
	AlbumID  domainvalue.AlbumID
	Version  int64
	Name     string
	SortName string
	Genres   []string
}

// ParticipantAdded is emitted when a new participant is credited on the album.
type ParticipantAdded struct {
	AlbumID         domainvalue.AlbumID
	Version         int64
	Name            string
	SortName        string
	Participant     Participant
	AllParticipants []Participant
}

// BoundToGenre is emitted when a genre is newly bound to the album.
type BoundToGenre struct {
	AlbumID  domainvalue.AlbumID
	Version  int64
	Name     string
	SortName string
	GenreID  domainvalue.GenreID
}

// ParticipantRemoved is emitted when a participant is uncredited from the
// album.
type ParticipantRemoved struct {
	AlbumID     domainvalue.AlbumID
	Version     int64
	Participant Participant
}

// UnboundFromGenre is emitted when a genre is removed from the album.
type UnboundFromGenre struct {
	AlbumID domainvalue.AlbumID
	Version int64
	GenreID domainvalue.GenreID
}

// Album is the aggregate root.
type Album struct {
	ID           domainvalue.AlbumID
	Name         string
	SortName     string
	Path         domainvalue.MediaPath
	Artist       *domainvalue.ArtistID
	Participants []Participant
	Genre        *domainvalue.GenreID
	Genres       []domainvalue.GenreID
	Compilation  bool
	Version      int64

	pendingEvents []any
}

// New constructs an Album and queues its Created event.
func New(id domainvalue.AlbumID, name, sortName string) *Album {
	al := &Album{
		ID:       id,
		Name:     name,
		SortName: sortName,
	}
	al.pendingEvents = append(al.pendingEvents, Created{
		AlbumID:  id,
		Version:  0,
		Name:     name,
		SortName: sortName,
	})
	return al
}

// WithVersion overrides the version, used when rehydrating from storage.
func (al *Album) WithVersion(version int64) *Album {
	al.Version = version
	return al
}

// AddParticipant credits participant on the album. The first participant
// added becomes the album's primary artist. Adding an already-credited
// participant is a no-op that raises no event.
func (al *Album) AddParticipant(participant Participant) error {
	if al.Artist == nil {
		artistID := participant.ArtistID
		al.Artist = &artistID
	}
	for _, existing := range al.Participants {
		if existing == participant {
			return nil
		}
	}
	al.Participants = append(al.Participants, participant)
	al.Version++
	al.pendingEvents = append(al.pendingEvents, ParticipantAdded{
		AlbumID:         al.ID,
		Version:         al.Version,
		Name:            al.Name,
		SortName:        al.SortName,
		Participant:     participant,
		AllParticipants: append([]Participant(nil), al.Participants...),
	})
	return nil
}

// BindToGenre associates genreID with the album, setting it as the primary
// genre if none is set yet. Binding an already-bound genre is a no-op.
func (al *Album) BindToGenre(genreID domainvalue.GenreID) error {
	if al.Genre == nil {
		g := genreID
		al.Genre = &g
	}
	for _, existing := range al.Genres {
		if existing == genreID {
			return nil
		}
	}
	al.Genres = append(al.Genres, genreID)
	al.Version++
	al.pendingEvents = append(al.pendingEvents, BoundToGenre{
		AlbumID:  al.ID,
		Version:  al.Version,
		Name:     al.Name,
		SortName: al.SortName,
		GenreID:  genreID,
	})
	return nil
}

// RemoveParticipant uncredits participant from the album. Removing a
// participant that is not credited is a no-op that raises no event.
func (al *Album) RemoveParticipant(participant Participant) error {
	idx := -1
	for i, existing := range al.Participants {
		if existing == participant {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}
	al.Participants = append(al.Participants[:idx], al.Participants[idx+1:]...)
	al.Version++
	al.pendingEvents = append(al.pendingEvents, ParticipantRemoved{
		AlbumID:     al.ID,
		Version:     al.Version,
		Participant: participant,
	})
	return nil
}

// UnbindFromGenre removes genreID from the album. Unbinding a genre that is
// not bound is a no-op that raises no event.
func (al *Album) UnbindFromGenre(genreID domainvalue.GenreID) error {
	idx := -1
	for i, existing := range al.Genres {
		if existing == genreID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}
	al.Genres = append(al.Genres[:idx], al.Genres[idx+1:]...)
	if al.Genre != nil && *al.Genre == genreID {
		al.Genre = nil
	}
	al.Version++
	al.pendingEvents = append(al.pendingEvents, UnboundFromGenre{
		AlbumID: al.ID,
		Version: al.Version,
		GenreID: genreID,
	})
	return nil
}

// TakeEvents drains and returns the aggregate's pending events.
func (al *Album) TakeEvents() []any {
	events := al.pendingEvents
	al.pendingEvents = nil
	return events
}

// Repository is the persistence port for the Album aggregate.
type Repository interface {
	FindBySortName(ctx context.Context, sortName string) (*Album, error)
	FindByID(ctx context.Context, id domainvalue.AlbumID) (*Album, error)
	Save(ctx context.Context, album *Album) (*Album, error)
	Delete(ctx context.Context, id domainvalue.AlbumID) error
}

// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package artist is the Artist aggregate: a performer or contributor bound
// to albums, audio files, and genres.
package artist

import (
	"context"

	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

// Created is emitted when a new artist aggregate is constructed.
type Created struct {
	ArtistID domainvalue.ArtistID
	Version  int64
	Name     string
	SortName string
}

// Found is emitted when a create-or-find command resolves to an existing
// artist instead of minting a new one.
type Found struct {
	ArtistID domainvalue.ArtistID
	Version  int64
	Name     string
	SortName string
}

// GenreUpdated is emitted when a genre is newly bound to the artist.
type GenreUpdated struct {
	ArtistID domainvalue.ArtistID
	Version  int64
	Name     string
	SortName string
	Genres   []domainvalue.GenreID
}

// Removed is emitted when an artist aggregate is deleted.
type Removed struct {
	ArtistID domainvalue.ArtistID
	Version  int64
	Name     string
	SortName string
}

// Artist is the aggregate root.
type Artist struct {
	ID           domainvalue.ArtistID
	Name         string
	SortName     string
	MusicBrainzID string
	Biography    string
	Version      int64
	Genre        *domainvalue.GenreID
	Genres       []domainvalue.GenreID

	pendingEvents []any
}

// New constructs an Artist and queues its Created event.
func New(id domainvalue.ArtistID, name, sortName string) *Artist {
	a := &Artist{
		ID:       id,
		Name:     name,
		SortName: sortName,
	}
	a.pendingEvents = append(a.pendingEvents, Created{
		ArtistID: id,
		Version:  0,
		Name:     name,
		SortName: sortName,
	})
	return a
}

// WithVersion overrides the version, used when rehydrating from storage.
func (a *Artist) WithVersion(version int64) *Artist {
	a.Version = version
	return a
}

// BindToGenre associates genreID with the artist, setting it as the primary
// genre if none is set yet. It is idempotent: binding an already-bound genre
// raises no event.
func (a *Artist) BindToGenre(genreID domainvalue.GenreID) error {
	if a.Genre == nil {
		g := genreID
		a.Genre = &g
	}
	for _, existing := range a.Genres {
		if existing == genreID {
			return nil
		}
	}
	a.Genres = append(a.Genres, genreID)
	a.Version++
	a.pendingEvents = append(a.pendingEvents, GenreUpdated{
		ArtistID: a.ID,
		Version:  a.Version,
		Name:     a.Name,
		SortName: a.SortName,
		Genres:   append([]domainvalue.GenreID(nil), a.Genres...),
	})
	return nil
}

// TakeEvents drains and returns the aggregate's pending events.
func (a *Artist) TakeEvents() []any {
	events := a.pendingEvents
	a.pendingEvents = nil
	return events
}

// Repository is the persistence port for the Artist aggregate.
type Repository interface {
	FindBySortName(ctx context.Context, sortName string) (*Artist, error)
	FindByID(ctx context.Context, id domainvalue.ArtistID) (*Artist, error)
	Save(ctx context.Context, artist *Artist) (*Artist, error)
	Delete(ctx context.Context, id domainvalue.ArtistID) error
}

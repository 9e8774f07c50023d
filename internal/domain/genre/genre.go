// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package genre is the Genre aggregate: a named tag bound to albums and
// audio files. It is intentionally the simplest aggregate in the system and
// a good template for reading the pending-events pattern every other
// aggregate in this module follows.
package genre

import (
	"context"
	"fmt"
	"strings"

	"github.com/harmonia-music/harmonia/internal/apperror"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

// MaxNameLength bounds genre names to keep projections and indexes small.
const MaxNameLength = 50

// Created is emitted the moment a genre aggregate is constructed.
type Created struct {
	GenreID domainvalue.GenreID
	Version int64
}

// Found is emitted when a create-or-find command resolves to an existing
// genre instead of minting a new one.
type Found struct {
	GenreID domainvalue.GenreID
	Version int64
}

// Name is a validated genre name: non-empty, at most MaxNameLength runes.
type Name struct {
	value string
}

// NewName validates and constructs a Name.
func NewName(raw string) (Name, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Name{}, fmt.Errorf("%w: genre name must not be empty", apperror.ErrMissingParameter)
	}
	if len([]rune(trimmed)) > MaxNameLength {
		return Name{}, fmt.Errorf("%w: genre name exceeds %d characters", apperror.ErrInvalidOperation, MaxNameLength)
	}
	return Name{value: trimmed}, nil
}

// String returns the underlying name.
func (n Name) String() string { return n.value }

// Genre is the aggregate root.
type Genre struct {
	ID      domainvalue.GenreID
	Name    Name
	Version int64

	pendingEvents []any
}

// New constructs a Genre and queues its Created event.
func New(id domainvalue.GenreID, name Name) *Genre {
	g := &Genre{
		ID:      id,
		Name:    name,
		Version: 0,
	}
	g.pendingEvents = append(g.pendingEvents, Created{GenreID: id, Version: 0})
	return g
}

// WithVersion overrides the version, used when rehydrating from storage.
func (g *Genre) WithVersion(version int64) *Genre {
	g.Version = version
	return g
}

// TakeEvents drains and returns the aggregate's pending events.
func (g *Genre) TakeEvents() []any {
	events := g.pendingEvents
	g.pendingEvents = nil
	return events
}

// Repository is the persistence port for the Genre aggregate.
type Repository interface {
	FindByID(ctx context.Context, id domainvalue.GenreID) (*Genre, error)
	FindByName(ctx context.Context, name Name) (*Genre, error)
	Save(ctx context.Context, genre *Genre) (*Genre, error)
	Delete(ctx context.Context, id domainvalue.GenreID) error
}

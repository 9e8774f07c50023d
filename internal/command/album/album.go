// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package album is the application service for the Album aggregate:
// create-or-find-by-normalized-name, and binding an existing album to
// genres and credited artists.
package album

import (
	"context"
	"fmt"

	"github.com/harmonia-music/harmonia/internal/appcontext"
	"github.com/harmonia-music/harmonia/internal/apperror"
	"github.com/harmonia-music/harmonia/internal/command/shared"
	domainalbum "github.com/harmonia-music/harmonia/internal/domain/album"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
	"github.com/harmonia-music/harmonia/internal/eventbus"
)

// CreateCmd requests an album be created, or found by normalized name.
type CreateCmd struct {
	Name string
}

// ArtistBinding credits an artist on the album being bound.
type ArtistBinding struct {
	ArtistID domainvalue.ArtistID
	Role     domainalbum.ParticipantRole
	SubRole  string
}

// BindCmd binds an existing album to the given genres and artists.
type BindCmd struct {
	AlbumID  domainvalue.AlbumID
	GenreIDs []domainvalue.GenreID
	Artists  []ArtistBinding
}

// Service is the Album aggregate's application service.
type Service struct {
	idGenerator shared.IDGenerator
	repository  domainalbum.Repository
	normalizer  shared.Normalizer
	bus         *eventbus.Bus
}

// New constructs a Service.
func New(idGenerator shared.IDGenerator, repository domainalbum.Repository, normalizer shared.Normalizer, bus *eventbus.Bus) *Service {
	return &Service{idGenerator: idGenerator, repository: repository, normalizer: normalizer, bus: bus}
}

// Create resolves cmd.Name to an album by normalized sort name: if one
// already exists, a Found event is published and it is returned; otherwise
// a new album is created, persisted, and its Created event published.
func (s *Service) Create(ctx context.Context, appCtx appcontext.AppContext, cmd CreateCmd) (*domainalbum.Album, error) {
	sortName := s.normalizer.Normalize(cmd.Name)

	existing, err := s.repository.FindBySortName(ctx, sortName)
	if err != nil {
		return nil, fmt.Errorf("find album by sort name: %w", err)
	}
	if existing != nil {
		genreNames := make([]string, len(existing.Genres))
		for i, g := range existing.Genres {
			genreNames[i] = fmt.Sprintf("%d", g)
		}
		found := domainalbum.Found{
			AlbumID:  existing.ID,
			Version:  existing.Version,
			Name:     existing.Name,
			SortName: existing.SortName,
			Genres:   genreNames,
		}
		env := eventbus.NewEnvelope(int64(existing.ID), existing.Version, found, appCtx.CorrelationID, appCtx.CausationID)
		if err := eventbus.Publish(ctx, s.bus, env); err != nil {
			return nil, fmt.Errorf("publish album found: %w", err)
		}
		return existing, nil
	}

	id, err := s.idGenerator.NextID()
	if err != nil {
		return nil, fmt.Errorf("generate album id: %w", err)
	}

	al := domainalbum.New(domainvalue.AlbumID(id), cmd.Name, sortName)
	events := al.TakeEvents()

	saved, err := s.repository.Save(ctx, al)
	if err != nil {
		return nil, fmt.Errorf("save album: %w", err)
	}

	if err := publishAll(ctx, s.bus, appCtx, saved.ID, saved.Version, events); err != nil {
		return nil, err
	}
	return saved, nil
}

// Bind loads the album, binds each genre and credited artist, and
// publishes the resulting events.
func (s *Service) Bind(ctx context.Context, appCtx appcontext.AppContext, cmd BindCmd) error {
	al, err := s.repository.FindByID(ctx, cmd.AlbumID)
	if err != nil {
		return fmt.Errorf("find album: %w", err)
	}
	if al == nil {
		return apperror.NewNotFound("Album", int64(cmd.AlbumID))
	}

	for _, genreID := range cmd.GenreIDs {
		if err := al.BindToGenre(genreID); err != nil {
			return err
		}
	}

	for _, ab := range cmd.Artists {
		participant := domainalbum.Participant{ArtistID: ab.ArtistID, Role: ab.Role, SubRole: ab.SubRole}
		if err := al.AddParticipant(participant); err != nil {
			return err
		}
	}

	events := al.TakeEvents()
	if len(events) == 0 {
		return nil
	}

	saved, err := s.repository.Save(ctx, al)
	if err != nil {
		return fmt.Errorf("save album: %w", err)
	}

	return publishAll(ctx, s.bus, appCtx.Derive(), saved.ID, saved.Version, events)
}

func publishAll(ctx context.Context, bus *eventbus.Bus, appCtx appcontext.AppContext, id domainvalue.AlbumID, version int64, events []any) error {
	for _, event := range events {
		if err := publishOne(ctx, bus, appCtx, id, version, event); err != nil {
			return err
		}
	}
	return nil
}

func publishOne(ctx context.Context, bus *eventbus.Bus, appCtx appcontext.AppContext, id domainvalue.AlbumID, version int64, event any) error {
	switch e := event.(type) {
	case domainalbum.Created:
		return eventbus.Publish(ctx, bus, eventbus.NewEnvelope(int64(id), version, e, appCtx.CorrelationID, appCtx.CausationID))
	case domainalbum.Found:
		return eventbus.Publish(ctx, bus, eventbus.NewEnvelope(int64(id), version, e, appCtx.CorrelationID, appCtx.CausationID))
	case domainalbum.ParticipantAdded:
		return eventbus.Publish(ctx, bus, eventbus.NewEnvelope(int64(id), version, e, appCtx.CorrelationID, appCtx.CausationID))
	case domainalbum.BoundToGenre:
		return eventbus.Publish(ctx, bus, eventbus.NewEnvelope(int64(id), version, e, appCtx.CorrelationID, appCtx.CausationID))
	default:
		return fmt.Errorf("album: unhandled event type %T", event)
	}
}

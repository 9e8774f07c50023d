// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package artist is the application service for the Artist aggregate:
// create-or-find-by-normalized-name, and binding an existing artist to
// genres.
package artist

import (
	"context"
	"fmt"

	"github.com/harmonia-music/harmonia/internal/appcontext"
	"github.com/harmonia-music/harmonia/internal/apperror"
	"github.com/harmonia-music/harmonia/internal/command/shared"
	domainartist "github.com/harmonia-music/harmonia/internal/domain/artist"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
	"github.com/harmonia-music/harmonia/internal/eventbus"
)

// CreateCmd requests an artist be created, or found by normalized name.
type CreateCmd struct {
	Name string
}

// BindCmd binds an existing artist to the given genres.
type BindCmd struct {
	ArtistID domainvalue.ArtistID
	GenreIDs []domainvalue.GenreID
}

// Service is the Artist aggregate's application service.
type Service struct {
	idGenerator shared.IDGenerator
	repository  domainartist.Repository
	normalizer  shared.Normalizer
	bus         *eventbus.Bus
}

// New constructs a Service.
func New(idGenerator shared.IDGenerator, repository domainartist.Repository, normalizer shared.Normalizer, bus *eventbus.Bus) *Service {
	return &Service{idGenerator: idGenerator, repository: repository, normalizer: normalizer, bus: bus}
}

// Create resolves cmd.Name to an artist by normalized sort name: if one
// already exists, a Found event is published and it is returned; otherwise
// a new artist is created, persisted, and its Created event published.
func (s *Service) Create(ctx context.Context, appCtx appcontext.AppContext, cmd CreateCmd) (*domainartist.Artist, error) {
	sortName := s.normalizer.Normalize(cmd.Name)

	existing, err := s.repository.FindBySortName(ctx, sortName)
	if err != nil {
		return nil, fmt.Errorf("find artist by sort name: %w", err)
	}
	if existing != nil {
		found := domainartist.Found{
			ArtistID: existing.ID,
			Version:  existing.Version,
			Name:     existing.Name,
			SortName: existing.SortName,
		}
		env := eventbus.NewEnvelope(int64(existing.ID), existing.Version, found, appCtx.CorrelationID, appCtx.CausationID)
		if err := eventbus.Publish(ctx, s.bus, env); err != nil {
			return nil, fmt.Errorf("publish artist found: %w", err)
		}
		return existing, nil
	}

	id, err := s.idGenerator.NextID()
	if err != nil {
		return nil, fmt.Errorf("generate artist id: %w", err)
	}

	a := domainartist.New(domainvalue.ArtistID(id), cmd.Name, sortName)
	events := a.TakeEvents()

	saved, err := s.repository.Save(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("save artist: %w", err)
	}

	if err := publishAll(ctx, s.bus, appCtx, saved.ID, saved.Version, events); err != nil {
		return nil, err
	}
	return saved, nil
}

// Bind loads the artist, binds each genre, and publishes the resulting events.
func (s *Service) Bind(ctx context.Context, appCtx appcontext.AppContext, cmd BindCmd) error {
	a, err := s.repository.FindByID(ctx, cmd.ArtistID)
	if err != nil {
		return fmt.Errorf("find artist: %w", err)
	}
	if a == nil {
		return apperror.NewNotFound("Artist", int64(cmd.ArtistID))
	}

	for _, genreID := range cmd.GenreIDs {
		if err := a.BindToGenre(genreID); err != nil {
			return err
		}
	}

	events := a.TakeEvents()
	if len(events) == 0 {
		return nil
	}

	saved, err := s.repository.Save(ctx, a)
	if err != nil {
		return fmt.Errorf("save artist: %w", err)
	}

	return publishAll(ctx, s.bus, appCtx.Derive(), saved.ID, saved.Version, events)
}

func publishAll(ctx context.Context, bus *eventbus.Bus, appCtx appcontext.AppContext, id domainvalue.ArtistID, version int64, events []any) error {
	for _, event := range events {
		if err := publishOne(ctx, bus, appCtx, id, version, event); err != nil {
			return err
		}
	}
	return nil
}

func publishOne(ctx context.Context, bus *eventbus.Bus, appCtx appcontext.AppContext, id domainvalue.ArtistID, version int64, event any) error {
	switch e := event.(type) {
	case domainartist.Created:
		return eventbus.Publish(ctx, bus, eventbus.NewEnvelope(int64(id), version, e, appCtx.CorrelationID, appCtx.CausationID))
	case domainartist.Found:
		return eventbus.Publish(ctx, bus, eventbus.NewEnvelope(int64(id), version, e, appCtx.CorrelationID, appCtx.CausationID))
	case domainartist.GenreUpdated:
		return eventbus.Publish(ctx, bus, eventbus.NewEnvelope(int64(id), version, e, appCtx.CorrelationID, appCtx.CausationID))
	case domainartist.Removed:
		return eventbus.Publish(ctx, bus, eventbus.NewEnvelope(int64(id), version, e, appCtx.CorrelationID, appCtx.CausationID))
	default:
		return fmt.Errorf("artist: unhandled event type %T", event)
	}
}

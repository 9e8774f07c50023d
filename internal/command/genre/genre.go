// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package genre is the application service for the Genre aggregate:
// create-or-find-by-name, publishing the resulting domain events.
package genre

import (
	"context"
	"fmt"

	"github.com/harmonia-music/harmonia/internal/appcontext"
	"github.com/harmonia-music/harmonia/internal/command/shared"
	domaingenre "github.com/harmonia-music/harmonia/internal/domain/genre"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
	"github.com/harmonia-music/harmonia/internal/eventbus"
)

// CreateCmd requests a genre be created, or found if one with the same name
// already exists.
type CreateCmd struct {
	Name string
}

// Service is the Genre aggregate's application service.
type Service struct {
	idGenerator shared.IDGenerator
	repository  domaingenre.Repository
	bus         *eventbus.Bus
}

// New constructs a Service.
func New(idGenerator shared.IDGenerator, repository domaingenre.Repository, bus *eventbus.Bus) *Service {
	return &Service{idGenerator: idGenerator, repository: repository, bus: bus}
}

// Create resolves cmd.Name to a genre: if one already exists with that
// name, a Found event is published and the existing genre returned;
// otherwise a new genre is created, persisted, and its Created event published.
func (s *Service) Create(ctx context.Context, appCtx appcontext.AppContext, cmd CreateCmd) (*domaingenre.Genre, error) {
	name, err := domaingenre.NewName(cmd.Name)
	if err != nil {
		return nil, err
	}

	existing, err := s.repository.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find genre by name: %w", err)
	}
	if existing != nil {
		found := domaingenre.Found{GenreID: existing.ID, Version: existing.Version}
		env := eventbus.NewEnvelope(int64(existing.ID), existing.Version, found, appCtx.CorrelationID, appCtx.CausationID)
		if err := eventbus.Publish(ctx, s.bus, env); err != nil {
			return nil, fmt.Errorf("publish genre found: %w", err)
		}
		return existing, nil
	}

	id, err := s.idGenerator.NextID()
	if err != nil {
		return nil, fmt.Errorf("generate genre id: %w", err)
	}

	g := domaingenre.New(domainvalue.GenreID(id), name)
	events := g.TakeEvents()

	saved, err := s.repository.Save(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("save genre: %w", err)
	}

	if err := publishAll(ctx, s.bus, appCtx, saved.ID, saved.Version, events); err != nil {
		return nil, err
	}
	return saved, nil
}

func publishAll(ctx context.Context, bus *eventbus.Bus, appCtx appcontext.AppContext, id domainvalue.GenreID, version int64, events []any) error {
	for _, event := range events {
		if err := publishOne(ctx, bus, appCtx, id, version, event); err != nil {
			return err
		}
	}
	return nil
}

func publishOne(ctx context.Context, bus *eventbus.Bus, appCtx appcontext.AppContext, id domainvalue.GenreID, version int64, event any) error {
	switch e := event.(type) {
	case domaingenre.Created:
		env := eventbus.NewEnvelope(int64(id), version, e, appCtx.CorrelationID, appCtx.CausationID)
		return eventbus.Publish(ctx, bus, env)
	case domaingenre.Found:
		env := eventbus.NewEnvelope(int64(id), version, e, appCtx.CorrelationID, appCtx.CausationID)
		return eventbus.Publish(ctx, bus, env)
	default:
		return fmt.Errorf("genre: unhandled event type %T", event)
	}
}

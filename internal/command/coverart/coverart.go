// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package coverart is the application service for the CoverArt aggregate:
// recording a discovered or embedded image, and binding it to the audio
// file it illustrates.
package coverart

import (
	"context"
	"fmt"

	"github.com/harmonia-music/harmonia/internal/appcontext"
	"github.com/harmonia-music/harmonia/internal/command/shared"
	domaincoverart "github.com/harmonia-music/harmonia/internal/domain/coverart"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
	"github.com/harmonia-music/harmonia/internal/eventbus"
)

// CreateCmd requests a cover art aggregate be created for a discovered image.
type CreateCmd struct {
	FileMeta domainvalue.FileMeta
	Source   domaincoverart.SourceType
}

// BindCmd binds an existing cover art to the audio file it illustrates.
type BindCmd struct {
	AudioFileID domainvalue.AudioFileID
	CoverArtID  domainvalue.CoverArtID
}

// Service is the CoverArt aggregate's application service.
type Service struct {
	idGenerator shared.IDGenerator
	repository  domaincoverart.Repository
	bus         *eventbus.Bus
}

// New constructs a Service.
func New(idGenerator shared.IDGenerator, repository domaincoverart.Repository, bus *eventbus.Bus) *Service {
	return &Service{idGenerator: idGenerator, repository: repository, bus: bus}
}

// Create persists a new cover art aggregate and publishes its Created event.
func (s *Service) Create(ctx context.Context, appCtx appcontext.AppContext, cmd CreateCmd) (*domaincoverart.CoverArt, error) {
	id, err := s.idGenerator.NextID()
	if err != nil {
		return nil, fmt.Errorf("generate cover art id: %w", err)
	}

	ca := domaincoverart.New(domainvalue.CoverArtID(id), cmd.FileMeta.Path, cmd.FileMeta.Size, cmd.Source)
	events := ca.TakeEvents()

	saved, err := s.repository.Save(ctx, ca)
	if err != nil {
		return nil, fmt.Errorf("save cover art: %w", err)
	}

	return saved, publishAll(ctx, s.bus, appCtx, saved.ID, saved.Version, events)
}

// Bind loads the cover art and links it to the given audio file. A missing
// cover art is treated as already-handled rather than an error: the
// original implementation this is grounded on silently no-ops here too,
// since a coordinator racing a delete is an expected, harmless outcome.
func (s *Service) Bind(ctx context.Context, appCtx appcontext.AppContext, cmd BindCmd) error {
	ca, err := s.repository.FindByID(ctx, cmd.CoverArtID)
	if err != nil {
		return fmt.Errorf("find cover art: %w", err)
	}
	if ca == nil {
		return nil
	}

	ca.BindToAudioFile(cmd.AudioFileID)
	events := ca.TakeEvents()
	if len(events) == 0 {
		return nil
	}

	saved, err := s.repository.Save(ctx, ca)
	if err != nil {
		return fmt.Errorf("save cover art: %w", err)
	}

	return publishAll(ctx, s.bus, appCtx.Derive(), saved.ID, saved.Version, events)
}

func publishAll(ctx context.Context, bus *eventbus.Bus, appCtx appcontext.AppContext, id domainvalue.CoverArtID, version int64, events []any) error {
	for _, event := range events {
		if err := publishOne(ctx, bus, appCtx, id, version, event); err != nil {
			return err
		}
	}
	return nil
}

func publishOne(ctx context.Context, bus *eventbus.Bus, appCtx appcontext.AppContext, id domainvalue.CoverArtID, version int64, event any) error {
	switch e := event.(type) {
	case domaincoverart.Created:
		return eventbus.Publish(ctx, bus, eventbus.NewEnvelope(int64(id), version, e, appCtx.CorrelationID, appCtx.CausationID))
	case domaincoverart.BoundToAudioFile:
		return eventbus.Publish(ctx, bus, eventbus.NewEnvelope(int64(id), version, e, appCtx.CorrelationID, appCtx.CausationID))
	default:
		return fmt.Errorf("coverart: unhandled event type %T", event)
	}
}

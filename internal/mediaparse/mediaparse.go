// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mediaparse is the app-level "parsed" event pipeline (spec §4.3,
// §4.8): given a discovered file, it resolves a storage client, reads
// whatever tags the file carries, runs them through the metadata
// normalization rule engine, and emits AudioFileParsed/ImageFileParsed for
// the fanout handlers to pick up.
package mediaparse

import (
	"context"
	"fmt"

	"github.com/harmonia-music/harmonia/internal/appcontext"
	"github.com/harmonia-music/harmonia/internal/appevent"
	domaincoverart "github.com/harmonia-music/harmonia/internal/domain/coverart"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
	"github.com/harmonia-music/harmonia/internal/eventbus"
)

// ParseMediaFileCmd requests that one discovered file be read and its
// contents turned into the appropriate AppEvent.
type ParseMediaFileCmd struct {
	LibraryID domainvalue.LibraryID
	FileMeta  domainvalue.FileMeta
	FileType  domainvalue.FileType
}

// Service is the media-parse application service.
type Service struct {
	storageClients *StorageClientFactory
	metadataReader MetadataReader
	rules          *RuleEngine
	bus            *eventbus.Bus
}

// New constructs a Service.
func New(storageClients *StorageClientFactory, metadataReader MetadataReader, rules *RuleEngine, bus *eventbus.Bus) *Service {
	return &Service{storageClients: storageClients, metadataReader: metadataReader, rules: rules, bus: bus}
}

// Parse resolves cmd.FileMeta's storage client, dispatches by file type, and
// publishes the resulting AppEvent(s). Every event this parse emits gets its
// own appCtx.Derive() context, which mints a fresh event id but keeps
// appCtx's correlation id, so the coordinators can later rendezvous
// everything one file produced under a single id, per spec §4.4.
func (s *Service) Parse(ctx context.Context, appCtx appcontext.AppContext, cmd ParseMediaFileCmd) error {
	switch cmd.FileType {
	case domainvalue.FileTypeAudio:
		return s.parseAudio(ctx, appCtx, cmd)
	case domainvalue.FileTypeImage:
		return s.publishImageFileParsed(ctx, appCtx.Derive(), cmd.LibraryID, cmd.FileMeta, domaincoverart.SourceStandalone)
	default:
		return nil
	}
}

func (s *Service) parseAudio(ctx context.Context, appCtx appcontext.AppContext, cmd ParseMediaFileCmd) error {
	client, err := s.storageClients.Resolve(cmd.FileMeta.Path.Protocol)
	if err != nil {
		return fmt.Errorf("resolve storage client: %w", err)
	}

	f, err := client.Open(ctx, cmd.FileMeta.Path)
	if err != nil {
		return fmt.Errorf("open %q: %w", cmd.FileMeta.Path.String(), err)
	}
	defer f.Close()

	result, err := s.metadataReader.Read(f, cmd.FileMeta.Suffix)
	if err != nil {
		return fmt.Errorf("read metadata for %q: %w", cmd.FileMeta.Path.String(), err)
	}

	s.rules.Apply(&result.Metadata)

	parsedCtx := appCtx.Derive()
	if err := eventbus.Publish(ctx, s.bus, eventbus.NewEnvelope(
		int64(cmd.LibraryID), 0,
		appevent.AudioFileParsed{LibraryID: cmd.LibraryID, Metadata: result.Metadata, FileInfo: cmd.FileMeta},
		parsedCtx.CorrelationID, parsedCtx.CausationID,
	)); err != nil {
		return fmt.Errorf("publish audio file parsed: %w", err)
	}

	if result.HasPicture {
		if err := s.publishImageFileParsed(ctx, appCtx.Derive(), cmd.LibraryID, cmd.FileMeta, domaincoverart.SourceEmbedded); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) publishImageFileParsed(ctx context.Context, appCtx appcontext.AppContext, libraryID domainvalue.LibraryID, fileMeta domainvalue.FileMeta, source domaincoverart.SourceType) error {
	return eventbus.Publish(ctx, s.bus, eventbus.NewEnvelope(
		int64(libraryID), 0,
		appevent.ImageFileParsed{LibraryID: libraryID, FileInfo: fileMeta, Source: source},
		appCtx.CorrelationID, appCtx.CausationID,
	))
}

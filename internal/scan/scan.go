// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scan is the library scan service (spec §4.7): it walks each
// configured library root, diffs the result against the library
// aggregate's last known item set, and emits the FileAdded/FileRemoved
// events that drive the rest of the ingestion pipeline.
package scan

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/harmonia-music/harmonia/internal/appcontext"
	"github.com/harmonia-music/harmonia/internal/appevent"
	domainlibrary "github.com/harmonia-music/harmonia/internal/domain/library"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
	"github.com/harmonia-music/harmonia/internal/eventbus"
	"github.com/harmonia-music/harmonia/internal/metrics"
)

// LibraryTarget is one configured library root the scan service operates
// on, resolved from config.LibraryConfig at startup.
type LibraryTarget struct {
	ID   domainvalue.LibraryID
	Name string
	Path domainvalue.MediaPath
}

// Service is the library scan application service. It is not itself a
// command service: library scan results are cross-cutting AppEvents
// (FileAdded/FileRemoved/ScanStarted/ScanEnded) rather than domain events
// owned by a single aggregate's command surface.
type Service struct {
	repository domainlibrary.Repository
	walkers    map[string]Walker
	bus        *eventbus.Bus
}

// New constructs a Service. The local protocol is registered with a
// LocalWalker by default; callers may RegisterWalker for other protocols (e.g.
// "smb") with their own Walker.
func New(repository domainlibrary.Repository, bus *eventbus.Bus) *Service {
	local := NewLocalWalker()
	return &Service{
		repository: repository,
		walkers:    map[string]Walker{"": local, "local": local},
		bus:        bus,
	}
}

// RegisterWalker adds or replaces the Walker used for protocol.
func (s *Service) RegisterWalker(protocol string, walker Walker) {
	s.walkers[protocol] = walker
}

// ScanLibrary runs one scan pass for target: enumerate, diff against the
// library's last known item set, emit FileAdded/FileRemoved per changed
// file, persist the new item set, and emit ScanStarted/ScanEnded around the
// whole pass. An incremental pass emits FileAdded for new paths and for
// paths whose size or mtime changed; with fullScan set, FileAdded is emitted
// for every discovered file even if unchanged, re-driving the whole
// ingestion pipeline (the recovery path for lost projection deltas).
func (s *Service) ScanLibrary(ctx context.Context, target LibraryTarget, trigger string, fullScan bool) error {
	start := time.Now()

	lib, err := s.loadOrCreateLibrary(ctx, target)
	if err != nil {
		return err
	}

	walker, ok := s.walkers[target.Path.Protocol]
	if !ok {
		return fmt.Errorf("no walker registered for protocol %q", target.Path.Protocol)
	}

	discovered, err := walker.Walk(ctx, target.Path)
	if err != nil {
		return fmt.Errorf("walk library %d: %w", target.ID, err)
	}

	if err := lib.StartScan(); err != nil {
		return err
	}
	if _, err := s.repository.Save(ctx, lib); err != nil {
		return fmt.Errorf("save library %d: %w", target.ID, err)
	}

	scanCtx := appcontext.New()
	if err := eventbus.Publish(ctx, s.bus, eventbus.NewEnvelope(
		int64(target.ID), lib.Version,
		appevent.ScanStarted{LibraryID: target.ID, TotalFiles: int64(len(discovered))},
		scanCtx.CorrelationID, scanCtx.CausationID,
	)); err != nil {
		log.Error().Err(err).Int64("library_id", int64(target.ID)).Msg("scan: failed to publish ScanStarted")
	}

	added, removed := lib.ApplyScanResult(discovered, fullScan)

	for _, item := range added {
		fileCtx := appcontext.New()
		if err := eventbus.Publish(ctx, s.bus, eventbus.NewEnvelope(
			int64(target.ID), lib.Version,
			appevent.FileAdded{LibraryID: target.ID, FileInfo: toFileMeta(item), FileType: item.Type},
			fileCtx.CorrelationID, fileCtx.CausationID,
		)); err != nil {
			log.Error().Err(err).Str("path", item.Path.String()).Msg("scan: failed to publish FileAdded")
		}
	}
	for _, item := range removed {
		fileCtx := appcontext.New()
		if err := eventbus.Publish(ctx, s.bus, eventbus.NewEnvelope(
			int64(target.ID), lib.Version,
			appevent.FileRemoved{LibraryID: target.ID, FileInfo: toFileMeta(item)},
			fileCtx.CorrelationID, fileCtx.CausationID,
		)); err != nil {
			log.Error().Err(err).Str("path", item.Path.String()).Msg("scan: failed to publish FileRemoved")
		}
	}

	lib.EndScan(time.Now())
	if _, err := s.repository.Save(ctx, lib); err != nil {
		return fmt.Errorf("save library %d: %w", target.ID, err)
	}

	endCtx := scanCtx.Derive()
	if err := eventbus.Publish(ctx, s.bus, eventbus.NewEnvelope(
		int64(target.ID), lib.Version,
		appevent.ScanEnded{LibraryID: target.ID},
		endCtx.CorrelationID, endCtx.CausationID,
	)); err != nil {
		log.Error().Err(err).Int64("library_id", int64(target.ID)).Msg("scan: failed to publish ScanEnded")
	}

	metrics.RecordScanRun(strconv.FormatInt(int64(target.ID), 10), trigger, time.Since(start), len(added), len(removed))
	return nil
}

func (s *Service) loadOrCreateLibrary(ctx context.Context, target LibraryTarget) (*domainlibrary.Library, error) {
	lib, err := s.repository.FindByID(ctx, target.ID)
	if err != nil {
		return nil, fmt.Errorf("find library %d: %w", target.ID, err)
	}
	if lib != nil {
		return lib, nil
	}

	lib = domainlibrary.New(target.ID, target.Name, target.Path)
	saved, err := s.repository.Save(ctx, lib)
	if err != nil {
		return nil, fmt.Errorf("create library %d: %w", target.ID, err)
	}
	return saved, nil
}

func toFileMeta(item domainlibrary.Item) domainvalue.FileMeta {
	return domainvalue.FileMeta{
		Path:    item.Path,
		Size:    item.Size,
		Suffix:  item.Suffix,
		ModTime: item.ModTime,
	}
}

// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package library is the Library aggregate: one configured storage root,
// the set of audio/image/nfo files last seen under it, and the scan state
// machine described in spec §4.7 and §4.10.
package library

import (
	"context"
	"fmt"
	"time"

	"github.com/harmonia-music/harmonia/internal/apperror"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

// ScanState is the library's scan lifecycle state (spec §4.7: Idle →
// Scanning → Idle).
type ScanState string

const (
	// ScanStateIdle means no scan is currently running.
	ScanStateIdle ScanState = "idle"
	// ScanStateScanning means a scan pass is in progress.
	ScanStateScanning ScanState = "scanning"
)

// Item is a single file the last scan found under the library's root,
// keyed by its path for the add/remove diff in ApplyScanResult.
type Item struct {
	Path    domainvalue.MediaPath
	Size    int64
	Suffix  string
	ModTime int64
	Type    domainvalue.FileType
}

// Created is emitted when a new library aggregate is constructed.
type Created struct {
	LibraryID domainvalue.LibraryID
	Version   int64
	Name      string
	Path      domainvalue.MediaPath
}

// Library is the aggregate root. Unlike the other aggregates, it is not
// created on first sighting during ingestion: one Library is created per
// configured storage root at startup and lives for the life of the process.
type Library struct {
	ID         domainvalue.LibraryID
	Name       string
	Path       domainvalue.MediaPath
	Items      map[string]Item
	ScanState  ScanState
	LastScanAt time.Time
	Version    int64

	pendingEvents []any
}

// New constructs a Library with an empty item set and queues its Created event.
func New(id domainvalue.LibraryID, name string, path domainvalue.MediaPath) *Library {
	l := &Library{
		ID:        id,
		Name:      name,
		Path:      path,
		Items:     make(map[string]Item),
		ScanState: ScanStateIdle,
	}
	l.pendingEvents = append(l.pendingEvents, Created{
		LibraryID: id,
		Version:   0,
		Name:      name,
		Path:      path,
	})
	return l
}

// WithVersion overrides the version, used when rehydrating from storage.
func (l *Library) WithVersion(version int64) *Library {
	l.Version = version
	return l
}

// StartScan transitions Idle → Scanning. It rejects starting a scan that is
// already running rather than allowing two concurrent passes to race on the
// same item set.
func (l *Library) StartScan() error {
	if l.ScanState == ScanStateScanning {
		return fmt.Errorf("%w: library %d scan already in progress", apperror.ErrInvalidOperation, l.ID)
	}
	l.ScanState = ScanStateScanning
	return nil
}

// EndScan transitions Scanning → Idle and records the scan's completion time.
func (l *Library) EndScan(at time.Time) {
	l.ScanState = ScanStateIdle
	l.LastScanAt = at
}

// ApplyScanResult replaces the library's item set with newItems and reports
// the items to re-ingest and the items that disappeared. In an incremental
// pass, added holds paths absent from the previous set plus paths whose size
// or mtime changed since they were last seen (a retagged or rewritten file
// must be re-parsed). With fullScan set, added holds every discovered item
// regardless of whether it changed. removed always holds the previous items
// whose paths are gone. The version is bumped exactly once regardless of how
// many individual items changed.
func (l *Library) ApplyScanResult(newItems map[string]Item, fullScan bool) (added, removed []Item) {
	for path, item := range newItems {
		previous, existed := l.Items[path]
		if fullScan || !existed || previous.Size != item.Size || previous.ModTime != item.ModTime {
			added = append(added, item)
		}
	}
	for path, item := range l.Items {
		if _, stillPresent := newItems[path]; !stillPresent {
			removed = append(removed, item)
		}
	}
	l.Items = newItems
	l.Version++
	return added, removed
}

// TakeEvents drains and returns the aggregate's pending events.
func (l *Library) TakeEvents() []any {
	events := l.pendingEvents
	l.pendingEvents = nil
	return events
}

// Repository is the persistence port for the Library aggregate.
type Repository interface {
	FindByID(ctx context.Context, id domainvalue.LibraryID) (*Library, error)
	Save(ctx context.Context, library *Library) (*Library, error)
}

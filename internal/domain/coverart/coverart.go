// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package coverart is the CoverArt aggregate: an image extracted from an
// audio file's embedded tag or discovered alongside it on disk (e.g.
// cover.jpg), later bound to the audio file and/or album it illustrates.
package coverart

import (
	"context"

	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

// SourceType describes where a cover art image came from.
type SourceType string

const (
	// SourceEmbedded means the image was extracted from an audio file's tag.
	SourceEmbedded SourceType = "embedded"
	// SourceStandalone means the image was a sibling file on disk (folder.jpg, etc).
	SourceStandalone SourceType = "standalone"
)

// Created is emitted when a new cover art aggregate is constructed.
type Created struct {
	CoverArtID domainvalue.CoverArtID
	Version    int64
	Path       domainvalue.MediaPath
	Source     SourceType
}

// BoundToAudioFile is emitted when the cover art is newly linked to an audio file.
type BoundToAudioFile struct {
	CoverArtID  domainvalue.CoverArtID
	Version     int64
	AudioFileID domainvalue.AudioFileID
}

// CoverArt is the aggregate root.
type CoverArt struct {
	ID          domainvalue.CoverArtID
	Path        domainvalue.MediaPath
	FileSize    int64
	Source      SourceType
	AudioFileID *domainvalue.AudioFileID
	AlbumID     *domainvalue.AlbumID
	Version     int64

	pendingEvents []any
}

// New constructs a CoverArt and queues its Created event.
func New(id domainvalue.CoverArtID, path domainvalue.MediaPath, fileSize int64, source SourceType) *CoverArt {
	ca := &CoverArt{
		ID:       id,
		Path:     path,
		FileSize: fileSize,
		Source:   source,
	}
	ca.pendingEvents = append(ca.pendingEvents, Created{
		CoverArtID: id,
		Version:    0,
		Path:       path,
		Source:     source,
	})
	return ca
}

// WithVersion overrides the version, used when rehydrating from storage.
func (ca *CoverArt) WithVersion(version int64) *CoverArt {
	ca.Version = version
	return ca
}

// BindToAudioFile links the cover art to an audio file. Rebinding to the
// same audio file is a no-op.
func (ca *CoverArt) BindToAudioFile(audioFileID domainvalue.AudioFileID) {
	if ca.AudioFileID != nil && *ca.AudioFileID == audioFileID {
		return
	}
	ca.AudioFileID = &audioFileID
	ca.Version++
	ca.pendingEvents = append(ca.pendingEvents, BoundToAudioFile{
		CoverArtID:  ca.ID,
		Version:     ca.Version,
		AudioFileID: audioFileID,
	})
}

// TakeEvents drains and returns the aggregate's pending events.
func (ca *CoverArt) TakeEvents() []any {
	events := ca.pendingEvents
	ca.pendingEvents = nil
	return events
}

// Repository is the persistence port for the CoverArt aggregate.
type Repository interface {
	FindByID(ctx context.Context, id domainvalue.CoverArtID) (*CoverArt, error)
	Save(ctx context.Context, coverArt *CoverArt) (*CoverArt, error)
	Delete(ctx context.Context, id domainvalue.CoverArtID) error
}

// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package projection holds the read-side rows that projectors maintain and
// the repository ports that persist them. Every Adjust* method here is a
// signed delta: callers may pass positive values to increment or negative
// values to decrement, and implementations must treat the call as additive,
// never a replace, so that memtable-buffered batches stay mergeable.
package projection

import (
	"context"
	"time"

	"github.com/harmonia-music/harmonia/internal/domain/album"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

// GenreStats tracks how many songs and albums carry a given genre.
type GenreStats struct {
	GenreID    domainvalue.GenreID
	SongCount  int32
	AlbumCount int32
}

// GenreStatsRepository adjusts genre statistics.
type GenreStatsRepository interface {
	AdjustStats(ctx context.Context, entry GenreStats) error
}

// AlbumStatsAdjustment is a signed delta applied to one album's stats row.
// DiscNumber, when non-nil, is appended to the row's disc set. Year, when
// non-nil, is set only if the row does not already carry a year.
type AlbumStatsAdjustment struct {
	AlbumID        domainvalue.AlbumID
	DurationDelta  int64
	SizeDelta      int64
	SongCountDelta int32
	DiscNumber     *int32
	Year           *int32
}

// AlbumStats is the read-side row an AlbumStatsAdjustment accumulates into.
type AlbumStats struct {
	AlbumID     domainvalue.AlbumID
	Duration    int64
	Size        int64
	SongCount   int32
	DiscNumbers []int32
	Year        *int32
}

// AlbumStatsRepository adjusts and retrieves album statistics.
type AlbumStatsRepository interface {
	AdjustStats(ctx context.Context, adjustment AlbumStatsAdjustment) error
	FindByAlbumID(ctx context.Context, albumID domainvalue.AlbumID) (*AlbumStats, error)
	Delete(ctx context.Context, albumID domainvalue.AlbumID) error
}

// ParticipantStats tracks one artist's contribution volume under one role.
type ParticipantStats struct {
	ArtistID   domainvalue.ArtistID
	Role       album.ParticipantRole
	Duration   int64
	Size       int64
	SongCount  int32
	AlbumCount int32
}

// ParticipantStatsRepository adjusts participant statistics.
type ParticipantStatsRepository interface {
	AdjustStats(ctx context.Context, delta ParticipantStats) error
}

// AlbumLocation tracks how many of an album's tracks live under one
// directory, keyed by (album, protocol, path).
type AlbumLocation struct {
	AlbumID    domainvalue.AlbumID
	Location   domainvalue.MediaPath
	Total      int32
	UpdateTime time.Time
}

// AlbumLocationRepository adjusts per-directory album track counts.
type AlbumLocationRepository interface {
	AdjustCount(ctx context.Context, entry AlbumLocation) error
}

// ArtistLocation tracks how many of an artist's tracks live under one
// directory, keyed by (artist, protocol, path).
type ArtistLocation struct {
	ArtistID   domainvalue.ArtistID
	Location   domainvalue.MediaPath
	Total      int32
	UpdateTime time.Time
}

// ArtistLocationRepository adjusts per-directory artist track counts.
type ArtistLocationRepository interface {
	AdjustCount(ctx context.Context, entry ArtistLocation) error
}

// ScanStatus is the live state of one library's most recent or in-progress
// scan.
type ScanStatus struct {
	LibraryID      domainvalue.LibraryID
	Scanning       bool
	TotalFiles     int64
	ProcessedFiles int64
	ErrorCount     int64
}

// ProgressPercentage returns the scan's completion percentage, or 0 if
// TotalFiles is not yet known.
func (s ScanStatus) ProgressPercentage() float64 {
	if s.TotalFiles == 0 {
		return 0
	}
	return float64(s.ProcessedFiles) / float64(s.TotalFiles) * 100
}

// ScanStatusRepository persists and retrieves scan status rows.
type ScanStatusRepository interface {
	Get(ctx context.Context, libraryID domainvalue.LibraryID) (*ScanStatus, error)
	GetAll(ctx context.Context) (map[domainvalue.LibraryID]ScanStatus, error)
	Save(ctx context.Context, status ScanStatus) error
}

// PlaybackHistoryEntry records a single scrobble.
type PlaybackHistoryEntry struct {
	UserID      int64
	AudioFileID domainvalue.AudioFileID
	ScrobbledAt time.Time
}

// PlaybackHistoryRepository appends scrobble rows.
type PlaybackHistoryRepository interface {
	Save(ctx context.Context, entry PlaybackHistoryEntry) error
}

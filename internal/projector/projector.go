// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package projector translates domain events into signed-delta writes
// against the projection repositories. Each method here is a pure function
// of (event, repository port): it does not touch the bus itself, so it can
// be tested without any event plumbing. Register (register.go) wires
// these methods onto the bus.
package projector

import (
	"context"
	"path"
	"time"

	domainalbum "github.com/harmonia-music/harmonia/internal/domain/album"
	domainaudiofile "github.com/harmonia-music/harmonia/internal/domain/audiofile"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
	"github.com/harmonia-music/harmonia/internal/projection"
)

// parentLocation reduces a media path to the directory it lives in, which
// is the granularity album_location and artist_location tally at.
func parentLocation(p domainvalue.MediaPath) domainvalue.MediaPath {
	return domainvalue.MediaPath{Protocol: p.Protocol, Path: path.Dir(p.Path)}
}

// toAlbumRole maps an audio-file-scoped participant role onto the
// album-scoped role vocabulary participant_stats is keyed by.
func toAlbumRole(role domainaudiofile.ParticipantRole) domainalbum.ParticipantRole {
	switch role {
	case domainaudiofile.RoleAlbumArtist:
		return domainalbum.RoleAlbumArtist
	case domainaudiofile.RoleComposer:
		return domainalbum.RoleComposer
	default:
		return domainalbum.RoleArtist
	}
}

// GenreStats projects genre binding/unbinding events from both the audio
// file and album aggregates into genre_stats deltas.
type GenreStats struct {
	Repo projection.GenreStatsRepository
}

func (p *GenreStats) OnAudioFileBoundToGenre(ctx context.Context, e domainaudiofile.BoundToGenre) error {
	return p.Repo.AdjustStats(ctx, projection.GenreStats{GenreID: e.GenreID, SongCount: 1})
}

func (p *GenreStats) OnAudioFileUnboundFromGenre(ctx context.Context, e domainaudiofile.UnboundFromGenre) error {
	return p.Repo.AdjustStats(ctx, projection.GenreStats{GenreID: e.GenreID, SongCount: -1})
}

func (p *GenreStats) OnAlbumBoundToGenre(ctx context.Context, e domainalbum.BoundToGenre) error {
	return p.Repo.AdjustStats(ctx, projection.GenreStats{GenreID: e.GenreID, AlbumCount: 1})
}

func (p *GenreStats) OnAlbumUnboundFromGenre(ctx context.Context, e domainalbum.UnboundFromGenre) error {
	return p.Repo.AdjustStats(ctx, projection.GenreStats{GenreID: e.GenreID, AlbumCount: -1})
}

// AlbumStats projects an audio file's album binding into the album_stats
// and album_location tables.
type AlbumStats struct {
	StatsRepo    projection.AlbumStatsRepository
	LocationRepo projection.AlbumLocationRepository
}

func (p *AlbumStats) OnAudioFileBoundToAlbum(ctx context.Context, e domainaudiofile.BoundToAlbum) error {
	if err := p.StatsRepo.AdjustStats(ctx, projection.AlbumStatsAdjustment{
		AlbumID:        e.AlbumID,
		DurationDelta:  e.Duration,
		SizeDelta:      e.Size,
		SongCountDelta: 1,
		DiscNumber:     e.DiscNumber,
		Year:           e.Year,
	}); err != nil {
		return err
	}
	return p.LocationRepo.AdjustCount(ctx, projection.AlbumLocation{
		AlbumID:    e.AlbumID,
		Location:   parentLocation(e.Path),
		Total:      1,
		UpdateTime: time.Now(),
	})
}

func (p *AlbumStats) OnAudioFileUnboundFromAlbum(ctx context.Context, e domainaudiofile.UnboundFromAlbum) error {
	if err := p.StatsRepo.AdjustStats(ctx, projection.AlbumStatsAdjustment{
		AlbumID:        e.AlbumID,
		DurationDelta:  -e.Duration,
		SizeDelta:      -e.Size,
		SongCountDelta: -1,
	}); err != nil {
		return err
	}
	return p.LocationRepo.AdjustCount(ctx, projection.AlbumLocation{
		AlbumID:    e.AlbumID,
		Location:   parentLocation(e.Path),
		Total:      -1,
		UpdateTime: time.Now(),
	})
}

// ParticipantStats projects an audio file's participant credits into the
// participant_stats and artist_location tables, and an album's participant
// credits into participant_stats' album tally.
type ParticipantStats struct {
	StatsRepo    projection.ParticipantStatsRepository
	LocationRepo projection.ArtistLocationRepository
}

func (p *ParticipantStats) OnAudioFileParticipantAdded(ctx context.Context, e domainaudiofile.ParticipantAdded) error {
	if err := p.StatsRepo.AdjustStats(ctx, projection.ParticipantStats{
		ArtistID:  e.Participant.ArtistID,
		Role:      toAlbumRole(e.Participant.Role),
		Duration:  e.Duration,
		Size:      e.Size,
		SongCount: 1,
	}); err != nil {
		return err
	}
	return p.LocationRepo.AdjustCount(ctx, projection.ArtistLocation{
		ArtistID:   e.Participant.ArtistID,
		Location:   parentLocation(e.Path),
		Total:      1,
		UpdateTime: time.Now(),
	})
}

func (p *ParticipantStats) OnAudioFileParticipantRemoved(ctx context.Context, e domainaudiofile.ParticipantRemoved) error {
	if err := p.StatsRepo.AdjustStats(ctx, projection.ParticipantStats{
		ArtistID:  e.Participant.ArtistID,
		Role:      toAlbumRole(e.Participant.Role),
		Duration:  -e.Duration,
		Size:      -e.Size,
		SongCount: -1,
	}); err != nil {
		return err
	}
	return p.LocationRepo.AdjustCount(ctx, projection.ArtistLocation{
		ArtistID:   e.Participant.ArtistID,
		Location:   parentLocation(e.Path),
		Total:      -1,
		UpdateTime: time.Now(),
	})
}

func (p *ParticipantStats) OnAlbumParticipantAdded(ctx context.Context, e domainalbum.ParticipantAdded) error {
	return p.StatsRepo.AdjustStats(ctx, projection.ParticipantStats{
		ArtistID:   e.Participant.ArtistID,
		Role:       e.Participant.Role,
		AlbumCount: 1,
	})
}

func (p *ParticipantStats) OnAlbumParticipantRemoved(ctx context.Context, e domainalbum.ParticipantRemoved) error {
	return p.StatsRepo.AdjustStats(ctx, projection.ParticipantStats{
		ArtistID:   e.Participant.ArtistID,
		Role:       e.Participant.Role,
		AlbumCount: -1,
	})
}

// ScanStatus projects audio file ingestion and library scan lifecycle
// events into each library's live scan status row.
type ScanStatus struct {
	Repo projection.ScanStatusRepository
}

func (p *ScanStatus) OnAudioFileCreated(ctx context.Context, libraryID domainvalue.LibraryID) error {
	status, err := p.Repo.Get(ctx, libraryID)
	if err != nil {
		return err
	}
	if status == nil {
		status = &projection.ScanStatus{LibraryID: libraryID}
	}
	status.ProcessedFiles++
	return p.Repo.Save(ctx, *status)
}

func (p *ScanStatus) OnScanStarted(ctx context.Context, libraryID domainvalue.LibraryID, totalFiles int64) error {
	return p.Repo.Save(ctx, projection.ScanStatus{
		LibraryID:  libraryID,
		Scanning:   true,
		TotalFiles: totalFiles,
	})
}

func (p *ScanStatus) OnScanEnded(ctx context.Context, libraryID domainvalue.LibraryID) error {
	status, err := p.Repo.Get(ctx, libraryID)
	if err != nil {
		return err
	}
	if status == nil {
		status = &projection.ScanStatus{LibraryID: libraryID}
	}
	status.Scanning = false
	return p.Repo.Save(ctx, *status)
}

// PlaybackHistory projects scrobble events into the playback_history log.
type PlaybackHistory struct {
	Repo projection.PlaybackHistoryRepository
}

func (p *PlaybackHistory) OnItemScrobbled(ctx context.Context, userID int64, audioFileID domainvalue.AudioFileID, scrobbledAt time.Time) error {
	return p.Repo.Save(ctx, projection.PlaybackHistoryEntry{
		UserID:      userID,
		AudioFileID: audioFileID,
		ScrobbledAt: scrobbledAt,
	})
}

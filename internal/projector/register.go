// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package projector

import (
	"context"

	"github.com/harmonia-music/harmonia/internal/appevent"
	domainalbum "github.com/harmonia-music/harmonia/internal/domain/album"
	domainaudiofile "github.com/harmonia-music/harmonia/internal/domain/audiofile"
	"github.com/harmonia-music/harmonia/internal/eventbus"
	"github.com/harmonia-music/harmonia/internal/projection"
)

// Register wires every projector's methods onto bus as event handlers. It
// owns the projector instances so callers only need to supply the
// repository ports.
func Register(
	bus *eventbus.Bus,
	genreStats projection.GenreStatsRepository,
	albumStats projection.AlbumStatsRepository,
	albumLocation projection.AlbumLocationRepository,
	participantStats projection.ParticipantStatsRepository,
	artistLocation projection.ArtistLocationRepository,
	scanStatus projection.ScanStatusRepository,
	playbackHistory projection.PlaybackHistoryRepository,
) {
	genre := &GenreStats{Repo: genreStats}
	eventbus.Subscribe[domainaudiofile.BoundToGenre](bus, "projector_genre_stats", eventbus.HandlerFunc[domainaudiofile.BoundToGenre](
		func(ctx context.Context, env eventbus.EventEnvelope[domainaudiofile.BoundToGenre]) error {
			return genre.OnAudioFileBoundToGenre(ctx, env.Payload)
		}))
	eventbus.Subscribe[domainaudiofile.UnboundFromGenre](bus, "projector_genre_stats", eventbus.HandlerFunc[domainaudiofile.UnboundFromGenre](
		func(ctx context.Context, env eventbus.EventEnvelope[domainaudiofile.UnboundFromGenre]) error {
			return genre.OnAudioFileUnboundFromGenre(ctx, env.Payload)
		}))
	eventbus.Subscribe[domainalbum.BoundToGenre](bus, "projector_genre_stats", eventbus.HandlerFunc[domainalbum.BoundToGenre](
		func(ctx context.Context, env eventbus.EventEnvelope[domainalbum.BoundToGenre]) error {
			return genre.OnAlbumBoundToGenre(ctx, env.Payload)
		}))
	eventbus.Subscribe[domainalbum.UnboundFromGenre](bus, "projector_genre_stats", eventbus.HandlerFunc[domainalbum.UnboundFromGenre](
		func(ctx context.Context, env eventbus.EventEnvelope[domainalbum.UnboundFromGenre]) error {
			return genre.OnAlbumUnboundFromGenre(ctx, env.Payload)
		}))

	album := &AlbumStats{StatsRepo: albumStats, LocationRepo: albumLocation}
	eventbus.Subscribe[domainaudiofile.BoundToAlbum](bus, "projector_album_stats", eventbus.HandlerFunc[domainaudiofile.BoundToAlbum](
		func(ctx context.Context, env eventbus.EventEnvelope[domainaudiofile.BoundToAlbum]) error {
			return album.OnAudioFileBoundToAlbum(ctx, env.Payload)
		}))
	eventbus.Subscribe[domainaudiofile.UnboundFromAlbum](bus, "projector_album_stats", eventbus.HandlerFunc[domainaudiofile.UnboundFromAlbum](
		func(ctx context.Context, env eventbus.EventEnvelope[domainaudiofile.UnboundFromAlbum]) error {
			return album.OnAudioFileUnboundFromAlbum(ctx, env.Payload)
		}))

	participant := &ParticipantStats{StatsRepo: participantStats, LocationRepo: artistLocation}
	eventbus.Subscribe[domainaudiofile.ParticipantAdded](bus, "projector_participant_stats", eventbus.HandlerFunc[domainaudiofile.ParticipantAdded](
		func(ctx context.Context, env eventbus.EventEnvelope[domainaudiofile.ParticipantAdded]) error {
			return participant.OnAudioFileParticipantAdded(ctx, env.Payload)
		}))
	eventbus.Subscribe[domainaudiofile.ParticipantRemoved](bus, "projector_participant_stats", eventbus.HandlerFunc[domainaudiofile.ParticipantRemoved](
		func(ctx context.Context, env eventbus.EventEnvelope[domainaudiofile.ParticipantRemoved]) error {
			return participant.OnAudioFileParticipantRemoved(ctx, env.Payload)
		}))
	eventbus.Subscribe[domainalbum.ParticipantAdded](bus, "projector_participant_stats", eventbus.HandlerFunc[domainalbum.ParticipantAdded](
		func(ctx context.Context, env eventbus.EventEnvelope[domainalbum.ParticipantAdded]) error {
			return participant.OnAlbumParticipantAdded(ctx, env.Payload)
		}))
	eventbus.Subscribe[domainalbum.ParticipantRemoved](bus, "projector_participant_stats", eventbus.HandlerFunc[domainalbum.ParticipantRemoved](
		func(ctx context.Context, env eventbus.EventEnvelope[domainalbum.ParticipantRemoved]) error {
			return participant.OnAlbumParticipantRemoved(ctx, env.Payload)
		}))

	scan := &ScanStatus{Repo: scanStatus}
	eventbus.Subscribe[domainaudiofile.Created](bus, "projector_scan_status", eventbus.HandlerFunc[domainaudiofile.Created](
		func(ctx context.Context, env eventbus.EventEnvelope[domainaudiofile.Created]) error {
			return scan.OnAudioFileCreated(ctx, env.Payload.LibraryID)
		}))
	eventbus.Subscribe[appevent.ScanStarted](bus, "projector_scan_status", eventbus.HandlerFunc[appevent.ScanStarted](
		func(ctx context.Context, env eventbus.EventEnvelope[appevent.ScanStarted]) error {
			return scan.OnScanStarted(ctx, env.Payload.LibraryID, env.Payload.TotalFiles)
		}))
	eventbus.Subscribe[appevent.ScanEnded](bus, "projector_scan_status", eventbus.HandlerFunc[appevent.ScanEnded](
		func(ctx context.Context, env eventbus.EventEnvelope[appevent.ScanEnded]) error {
			return scan.OnScanEnded(ctx, env.Payload.LibraryID)
		}))

	playback := &PlaybackHistory{Repo: playbackHistory}
	eventbus.Subscribe[appevent.ItemScrobbled](bus, "projector_playback_history", eventbus.HandlerFunc[appevent.ItemScrobbled](
		func(ctx context.Context, env eventbus.EventEnvelope[appevent.ItemScrobbled]) error {
			return playback.OnItemScrobbled(ctx, env.Payload.UserID, env.Payload.AudioFileID, env.Payload.ScrobbledAt)
		}))
}

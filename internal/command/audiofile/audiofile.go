// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audiofile is the application service for the AudioFile aggregate:
// creating an audio file record from parsed metadata, and binding it to its
// album, genres, and credited artists.
package audiofile

import (
	"context"
	"fmt"

	"github.com/harmonia-music/harmonia/internal/appcontext"
	"github.com/harmonia-music/harmonia/internal/apperror"
	"github.com/harmonia-music/harmonia/internal/command/shared"
	domainaudiofile "github.com/harmonia-music/harmonia/internal/domain/audiofile"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
	"github.com/harmonia-music/harmonia/internal/eventbus"
)

// CreateCmd requests an audio file aggregate be created from scanned
// filesystem and parsed tag metadata.
type CreateCmd struct {
	FileMeta      domainvalue.FileMeta
	AudioMetadata domainvalue.AudioMetadata
	LibraryID     domainvalue.LibraryID
}

// ArtistBinding credits an artist on the audio file being bound.
type ArtistBinding struct {
	ArtistID domainvalue.ArtistID
	Role     domainaudiofile.ParticipantRole
	SubRole  string
}

// BindCmd binds an existing audio file to its album, genres, and credited artists.
type BindCmd struct {
	AudioFileID domainvalue.AudioFileID
	AlbumID     domainvalue.AlbumID
	GenreIDs    []domainvalue.GenreID
	Artists     []ArtistBinding
}

// Service is the AudioFile aggregate's application service.
type Service struct {
	idGenerator shared.IDGenerator
	repository  domainaudiofile.Repository
	bus         *eventbus.Bus
}

// New constructs a Service.
func New(idGenerator shared.IDGenerator, repository domainaudiofile.Repository, bus *eventbus.Bus) *Service {
	return &Service{idGenerator: idGenerator, repository: repository, bus: bus}
}

// Create builds a new audio file aggregate from the scanned file and its
// parsed tags, persists it, and publishes its Created event. Audio files
// are never deduplicated by path at this layer: the scanner is responsible
// for not re-emitting a CreateCmd for a path it has already imported.
func (s *Service) Create(ctx context.Context, appCtx appcontext.AppContext, cmd CreateCmd) (*domainaudiofile.AudioFile, error) {
	id, err := s.idGenerator.NextID()
	if err != nil {
		return nil, fmt.Errorf("generate audio file id: %w", err)
	}

	af := domainaudiofile.New(
		domainvalue.AudioFileID(id),
		cmd.LibraryID,
		cmd.FileMeta.Path,
		cmd.FileMeta.Size,
		cmd.FileMeta.Suffix,
		cmd.AudioMetadata.Duration,
		cmd.AudioMetadata.BitRate,
		cmd.AudioMetadata.SampleRate,
		cmd.AudioMetadata.Channels,
		cmd.AudioMetadata.HasEmbeddedArt,
		cmd.AudioMetadata,
	)
	events := af.TakeEvents()

	saved, err := s.repository.Save(ctx, af)
	if err != nil {
		return nil, fmt.Errorf("save audio file: %w", err)
	}

	if err := publishAll(ctx, s.bus, appCtx, saved.ID, saved.Version, events); err != nil {
		return nil, err
	}
	return saved, nil
}

// Bind loads the audio file, binds its genres, credited artists, and album,
// and publishes the resulting events. It returns a typed apperror.NotFoundError
// rather than panicking when the audio file cannot be located.
func (s *Service) Bind(ctx context.Context, appCtx appcontext.AppContext, cmd BindCmd) error {
	af, err := s.repository.FindByID(ctx, cmd.AudioFileID)
	if err != nil {
		return fmt.Errorf("find audio file: %w", err)
	}
	if af == nil {
		return apperror.NewNotFound("AudioFile", int64(cmd.AudioFileID))
	}

	for _, genreID := range cmd.GenreIDs {
		if err := af.BindToGenre(genreID); err != nil {
			return err
		}
	}

	for _, ab := range cmd.Artists {
		participant := domainaudiofile.Participant{ArtistID: ab.ArtistID, Role: ab.Role, SubRole: ab.SubRole}
		if err := af.AddParticipant(participant); err != nil {
			return err
		}
	}

	if err := af.BindToAlbum(cmd.AlbumID); err != nil {
		return err
	}

	events := af.TakeEvents()
	if len(events) == 0 {
		return nil
	}

	saved, err := s.repository.Save(ctx, af)
	if err != nil {
		return fmt.Errorf("save audio file: %w", err)
	}

	return publishAll(ctx, s.bus, appCtx.Derive(), saved.ID, saved.Version, events)
}

// RemoveCmd removes the audio file at a path that has disappeared from disk.
type RemoveCmd struct {
	Path domainvalue.MediaPath
}

// Remove unwinds a vanished file: every genre, participant, and album
// binding is released — emitting the inverse events the stats projectors
// subtract from — before the aggregate row is deleted. A path that was
// never imported is a no-op.
func (s *Service) Remove(ctx context.Context, appCtx appcontext.AppContext, cmd RemoveCmd) error {
	af, err := s.repository.FindByPath(ctx, cmd.Path)
	if err != nil {
		return fmt.Errorf("find audio file by path: %w", err)
	}
	if af == nil {
		return nil
	}

	for _, genreID := range append([]domainvalue.GenreID(nil), af.GenreIDs...) {
		if err := af.UnbindFromGenre(genreID); err != nil {
			return err
		}
	}
	for _, participant := range append([]domainaudiofile.Participant(nil), af.Participants...) {
		if err := af.RemoveParticipant(participant); err != nil {
			return err
		}
	}
	if err := af.UnbindFromAlbum(); err != nil {
		return err
	}

	events := af.TakeEvents()
	if len(events) > 0 {
		saved, err := s.repository.Save(ctx, af)
		if err != nil {
			return fmt.Errorf("save audio file: %w", err)
		}
		if err := publishAll(ctx, s.bus, appCtx.Derive(), saved.ID, saved.Version, events); err != nil {
			return err
		}
	}

	if err := s.repository.Delete(ctx, af.ID); err != nil {
		return fmt.Errorf("delete audio file: %w", err)
	}
	return nil
}

func publishAll(ctx context.Context, bus *eventbus.Bus, appCtx appcontext.AppContext, id domainvalue.AudioFileID, version int64, events []any) error {
	for _, event := range events {
		if err := publishOne(ctx, bus, appCtx, id, version, event); err != nil {
			return err
		}
	}
	return nil
}

func publishOne(ctx context.Context, bus *eventbus.Bus, appCtx appcontext.AppContext, id domainvalue.AudioFileID, version int64, event any) error {
	switch e := event.(type) {
	case domainaudiofile.Created:
		return eventbus.Publish(ctx, bus, eventbus.NewEnvelope(int64(id), version, e, appCtx.CorrelationID, appCtx.CausationID))
	case domainaudiofile.BoundToGenre:
		return eventbus.Publish(ctx, bus, eventbus.NewEnvelope(int64(id), version, e, appCtx.CorrelationID, appCtx.CausationID))
	case domainaudiofile.ParticipantAdded:
		return eventbus.Publish(ctx, bus, eventbus.NewEnvelope(int64(id), version, e, appCtx.CorrelationID, appCtx.CausationID))
	case domainaudiofile.BoundToAlbum:
		return eventbus.Publish(ctx, bus, eventbus.NewEnvelope(int64(id), version, e, appCtx.CorrelationID, appCtx.CausationID))
	case domainaudiofile.UnboundFromGenre:
		return eventbus.Publish(ctx, bus, eventbus.NewEnvelope(int64(id), version, e, appCtx.CorrelationID, appCtx.CausationID))
	case domainaudiofile.ParticipantRemoved:
		return eventbus.Publish(ctx, bus, eventbus.NewEnvelope(int64(id), version, e, appCtx.CorrelationID, appCtx.CausationID))
	case domainaudiofile.UnboundFromAlbum:
		return eventbus.Publish(ctx, bus, eventbus.NewEnvelope(int64(id), version, e, appCtx.CorrelationID, appCtx.CausationID))
	default:
		return fmt.Errorf("audiofile: unhandled event type %T", event)
	}
}

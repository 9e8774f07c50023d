// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package fanout

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/harmonia-music/harmonia/internal/appcontext"
	"github.com/harmonia-music/harmonia/internal/appevent"
	cmdaudiofile "github.com/harmonia-music/harmonia/internal/command/audiofile"
	"github.com/harmonia-music/harmonia/internal/eventbus"
)

// AudioFileOnAudioFileParsed creates the audio file aggregate itself from the
// scanned file and its parsed tags. This is the one handler whose Created
// event the bind coordinators wait on before they can bind the track to its
// album, genres, and artists.
type AudioFileOnAudioFileParsed struct {
	audioFileService *cmdaudiofile.Service
}

// NewAudioFileOnAudioFileParsed constructs an AudioFileOnAudioFileParsed handler.
func NewAudioFileOnAudioFileParsed(audioFileService *cmdaudiofile.Service) *AudioFileOnAudioFileParsed {
	return &AudioFileOnAudioFileParsed{audioFileService: audioFileService}
}

// Handle implements eventbus.Handler[appevent.AudioFileParsed].
func (h *AudioFileOnAudioFileParsed) Handle(ctx context.Context, env eventbus.EventEnvelope[appevent.AudioFileParsed]) error {
	appCtx := appcontext.AppContext{EventID: env.ID, CorrelationID: env.CorrelationID, CausationID: env.CausationID}
	cmd := cmdaudiofile.CreateCmd{
		FileMeta:      env.Payload.FileInfo,
		AudioMetadata: env.Payload.Metadata,
		LibraryID:     env.Payload.LibraryID,
	}
	if _, err := h.audioFileService.Create(ctx, appCtx.Derive(), cmd); err != nil {
		log.Error().Err(err).Str("path", env.Payload.FileInfo.Path.String()).Msg("fanout: failed to create audio file from parsed tags")
	}
	return nil
}

// AudioFileOnFileRemoved unwinds an audio file whose path the scanner no
// longer sees: the removal command releases its album, genre, and
// participant bindings so the stats projectors subtract what the import
// once added, then deletes the aggregate.
type AudioFileOnFileRemoved struct {
	audioFileService *cmdaudiofile.Service
}

// NewAudioFileOnFileRemoved constructs an AudioFileOnFileRemoved handler.
func NewAudioFileOnFileRemoved(audioFileService *cmdaudiofile.Service) *AudioFileOnFileRemoved {
	return &AudioFileOnFileRemoved{audioFileService: audioFileService}
}

// Handle implements eventbus.Handler[appevent.FileRemoved].
func (h *AudioFileOnFileRemoved) Handle(ctx context.Context, env eventbus.EventEnvelope[appevent.FileRemoved]) error {
	appCtx := appcontext.AppContext{EventID: env.ID, CorrelationID: env.CorrelationID, CausationID: env.CausationID}
	cmd := cmdaudiofile.RemoveCmd{Path: env.Payload.FileInfo.Path}
	if err := h.audioFileService.Remove(ctx, appCtx.Derive(), cmd); err != nil {
		log.Error().Err(err).Str("path", env.Payload.FileInfo.Path.String()).Msg("fanout: failed to remove vanished audio file")
	}
	return nil
}

// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package fanout

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/harmonia-music/harmonia/internal/appcontext"
	"github.com/harmonia-music/harmonia/internal/appevent"
	cmdalbum "github.com/harmonia-music/harmonia/internal/command/album"
	"github.com/harmonia-music/harmonia/internal/eventbus"
)

// AlbumOnAudioFileParsed creates an album aggregate for the album tag on a
// newly parsed audio file. A blank album tag is skipped: singles and loose
// tracks are not grouped under an empty-named album.
type AlbumOnAudioFileParsed struct {
	albumService *cmdalbum.Service
}

// NewAlbumOnAudioFileParsed constructs an AlbumOnAudioFileParsed handler.
func NewAlbumOnAudioFileParsed(albumService *cmdalbum.Service) *AlbumOnAudioFileParsed {
	return &AlbumOnAudioFileParsed{albumService: albumService}
}

// Handle implements eventbus.Handler[appevent.AudioFileParsed].
func (h *AlbumOnAudioFileParsed) Handle(ctx context.Context, env eventbus.EventEnvelope[appevent.AudioFileParsed]) error {
	if env.Payload.Metadata.Album == "" {
		return nil
	}
	appCtx := appcontext.AppContext{EventID: env.ID, CorrelationID: env.CorrelationID, CausationID: env.CausationID}
	if _, err := h.albumService.Create(ctx, appCtx.Derive(), cmdalbum.CreateCmd{Name: env.Payload.Metadata.Album}); err != nil {
		log.Error().Err(err).Str("album", env.Payload.Metadata.Album).Msg("fanout: failed to create album from parsed audio file")
	}
	return nil
}

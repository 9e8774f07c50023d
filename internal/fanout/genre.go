// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package fanout holds the handlers that react to a parsed audio file by
// issuing a create-or-find command on every aggregate derivable from its
// tags. Each handler owns exactly one aggregate's service and ignores
// everything it does not need from the event.
package fanout

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/harmonia-music/harmonia/internal/appcontext"
	"github.com/harmonia-music/harmonia/internal/appevent"
	cmdgenre "github.com/harmonia-music/harmonia/internal/command/genre"
	"github.com/harmonia-music/harmonia/internal/eventbus"
)

// GenreOnAudioFileParsed creates a genre aggregate for every genre tag found
// on a newly parsed audio file.
type GenreOnAudioFileParsed struct {
	genreService *cmdgenre.Service
}

// NewGenreOnAudioFileParsed constructs a GenreOnAudioFileParsed handler.
func NewGenreOnAudioFileParsed(genreService *cmdgenre.Service) *GenreOnAudioFileParsed {
	return &GenreOnAudioFileParsed{genreService: genreService}
}

// Handle implements eventbus.Handler[appevent.AudioFileParsed].
func (h *GenreOnAudioFileParsed) Handle(ctx context.Context, env eventbus.EventEnvelope[appevent.AudioFileParsed]) error {
	appCtx := appcontext.AppContext{EventID: env.ID, CorrelationID: env.CorrelationID, CausationID: env.CausationID}
	for _, name := range env.Payload.Metadata.Genres {
		if _, err := h.genreService.Create(ctx, appCtx.Derive(), cmdgenre.CreateCmd{Name: name}); err != nil {
			log.Error().Err(err).Str("genre", name).Msg("fanout: failed to create genre from parsed audio file")
		}
	}
	return nil
}

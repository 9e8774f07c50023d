// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package fanout

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/harmonia-music/harmonia/internal/appcontext"
	"github.com/harmonia-music/harmonia/internal/appevent"
	"github.com/harmonia-music/harmonia/internal/eventbus"
	"github.com/harmonia-music/harmonia/internal/mediaparse"
)

// MediaParseOnFileAdded triggers the media-parse pipeline for every file
// the scan service discovers. This is the bridge between the library scan
// loop and the rest of the ingestion pipeline described in spec §4.3: a
// bare filesystem event becomes a ParseMediaFileCmd.
type MediaParseOnFileAdded struct {
	mediaParseService *mediaparse.Service
}

// NewMediaParseOnFileAdded constructs a MediaParseOnFileAdded handler.
func NewMediaParseOnFileAdded(mediaParseService *mediaparse.Service) *MediaParseOnFileAdded {
	return &MediaParseOnFileAdded{mediaParseService: mediaParseService}
}

// Handle implements eventbus.Handler[appevent.FileAdded].
func (h *MediaParseOnFileAdded) Handle(ctx context.Context, env eventbus.EventEnvelope[appevent.FileAdded]) error {
	appCtx := appcontext.AppContext{EventID: env.ID, CorrelationID: env.CorrelationID, CausationID: env.CausationID}
	cmd := mediaparse.ParseMediaFileCmd{
		LibraryID: env.Payload.LibraryID,
		FileMeta:  env.Payload.FileInfo,
		FileType:  env.Payload.FileType,
	}
	if err := h.mediaParseService.Parse(ctx, appCtx.Derive(), cmd); err != nil {
		log.Error().Err(err).Str("path", env.Payload.FileInfo.Path.String()).Msg("fanout: failed to parse discovered file")
	}
	return nil
}

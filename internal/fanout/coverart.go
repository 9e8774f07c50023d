// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package fanout

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/harmonia-music/harmonia/internal/appcontext"
	"github.com/harmonia-music/harmonia/internal/appevent"
	cmdcoverart "github.com/harmonia-music/harmonia/internal/command/coverart"
	"github.com/harmonia-music/harmonia/internal/eventbus"
)

// CoverArtOnImageFileParsed creates a cover art aggregate for every
// discovered or embedded image file.
type CoverArtOnImageFileParsed struct {
	coverArtService *cmdcoverart.Service
}

// NewCoverArtOnImageFileParsed constructs a CoverArtOnImageFileParsed handler.
func NewCoverArtOnImageFileParsed(coverArtService *cmdcoverart.Service) *CoverArtOnImageFileParsed {
	return &CoverArtOnImageFileParsed{coverArtService: coverArtService}
}

// Handle implements eventbus.Handler[appevent.ImageFileParsed].
func (h *CoverArtOnImageFileParsed) Handle(ctx context.Context, env eventbus.EventEnvelope[appevent.ImageFileParsed]) error {
	appCtx := appcontext.AppContext{EventID: env.ID, CorrelationID: env.CorrelationID, CausationID: env.CausationID}
	cmd := cmdcoverart.CreateCmd{FileMeta: env.Payload.FileInfo, Source: env.Payload.Source}
	if _, err := h.coverArtService.Create(ctx, appCtx.Derive(), cmd); err != nil {
		log.Error().Err(err).Str("path", env.Payload.FileInfo.Path.String()).Msg("fanout: failed to create cover art from parsed image file")
	}
	return nil
}

// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package fanout

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/harmonia-music/harmonia/internal/appcontext"
	"github.com/harmonia-music/harmonia/internal/appevent"
	cmdartist "github.com/harmonia-music/harmonia/internal/command/artist"
	"github.com/harmonia-music/harmonia/internal/eventbus"
)

// ArtistOnAudioFileParsed creates an artist aggregate for every distinct
// contributor credited on a newly parsed audio file.
type ArtistOnAudioFileParsed struct {
	artistService *cmdartist.Service
}

// NewArtistOnAudioFileParsed constructs an ArtistOnAudioFileParsed handler.
func NewArtistOnAudioFileParsed(artistService *cmdartist.Service) *ArtistOnAudioFileParsed {
	return &ArtistOnAudioFileParsed{artistService: artistService}
}

// Handle implements eventbus.Handler[appevent.AudioFileParsed].
func (h *ArtistOnAudioFileParsed) Handle(ctx context.Context, env eventbus.EventEnvelope[appevent.AudioFileParsed]) error {
	appCtx := appcontext.AppContext{EventID: env.ID, CorrelationID: env.CorrelationID, CausationID: env.CausationID}

	// Order matters: BindToAudioFileCoordinator and BindToAlbumCoordinator
	// pair the ArtistID events this produces positionally against this same
	// DistinctParticipants ordering to recover each artist's role.
	for _, p := range env.Payload.Metadata.DistinctParticipants() {
		if _, err := h.artistService.Create(ctx, appCtx.Derive(), cmdartist.CreateCmd{Name: p.Name}); err != nil {
			log.Error().Err(err).Str("artist", p.Name).Msg("fanout: failed to create artist from parsed audio file")
		}
	}
	return nil
}

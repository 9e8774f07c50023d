// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package coordinator

import (
	"github.com/harmonia-music/harmonia/internal/appevent"
	cmdalbum "github.com/harmonia-music/harmonia/internal/command/album"
	cmdartist "github.com/harmonia-music/harmonia/internal/command/artist"
	cmdaudiofile "github.com/harmonia-music/harmonia/internal/command/audiofile"
	cmdcoverart "github.com/harmonia-music/harmonia/internal/command/coverart"
	domainalbum "github.com/harmonia-music/harmonia/internal/domain/album"
	domainartist "github.com/harmonia-music/harmonia/internal/domain/artist"
	domainaudiofile "github.com/harmonia-music/harmonia/internal/domain/audiofile"
	domaincoverart "github.com/harmonia-music/harmonia/internal/domain/coverart"
	domaingenre "github.com/harmonia-music/harmonia/internal/domain/genre"
	"github.com/harmonia-music/harmonia/internal/eventbus"
)

// Register wires all four coordinators onto bus, subscribing each to every
// event type it needs to correlate before it can issue its Bind commands.
func Register(
	bus *eventbus.Bus,
	albumService *cmdalbum.Service,
	artistService *cmdartist.Service,
	audioFileService *cmdaudiofile.Service,
	coverArtService *cmdcoverart.Service,
) {
	bindToArtist := NewBindToArtistCoordinator(artistService)
	eventbus.Subscribe[domainartist.Created](bus, "bind_to_artist", eventbus.HandlerFunc[domainartist.Created](bindToArtist.HandleArtistCreated))
	eventbus.Subscribe[domainartist.Found](bus, "bind_to_artist", eventbus.HandlerFunc[domainartist.Found](bindToArtist.HandleArtistFound))
	eventbus.Subscribe[domaingenre.Created](bus, "bind_to_artist", eventbus.HandlerFunc[domaingenre.Created](bindToArtist.HandleGenreCreated))
	eventbus.Subscribe[domaingenre.Found](bus, "bind_to_artist", eventbus.HandlerFunc[domaingenre.Found](bindToArtist.HandleGenreFound))
	eventbus.Subscribe[appevent.AudioFileParsed](bus, "bind_to_artist", eventbus.HandlerFunc[appevent.AudioFileParsed](bindToArtist.HandleAudioFileParsed))

	bindToAlbum := NewBindToAlbumCoordinator(albumService)
	eventbus.Subscribe[domainalbum.Created](bus, "bind_to_album", eventbus.HandlerFunc[domainalbum.Created](bindToAlbum.HandleAlbumCreated))
	eventbus.Subscribe[domainalbum.Found](bus, "bind_to_album", eventbus.HandlerFunc[domainalbum.Found](bindToAlbum.HandleAlbumFound))
	eventbus.Subscribe[domainartist.Created](bus, "bind_to_album", eventbus.HandlerFunc[domainartist.Created](bindToAlbum.HandleArtistCreated))
	eventbus.Subscribe[domainartist.Found](bus, "bind_to_album", eventbus.HandlerFunc[domainartist.Found](bindToAlbum.HandleArtistFound))
	eventbus.Subscribe[domaingenre.Created](bus, "bind_to_album", eventbus.HandlerFunc[domaingenre.Created](bindToAlbum.HandleGenreCreated))
	eventbus.Subscribe[domaingenre.Found](bus, "bind_to_album", eventbus.HandlerFunc[domaingenre.Found](bindToAlbum.HandleGenreFound))
	eventbus.Subscribe[appevent.AudioFileParsed](bus, "bind_to_album", eventbus.HandlerFunc[appevent.AudioFileParsed](bindToAlbum.HandleAudioFileParsed))

	bindToAudioFile := NewBindToAudioFileCoordinator(audioFileService)
	eventbus.Subscribe[domainaudiofile.Created](bus, "bind_to_audio_file", eventbus.HandlerFunc[domainaudiofile.Created](bindToAudioFile.HandleAudioFileCreated))
	eventbus.Subscribe[domainalbum.Created](bus, "bind_to_audio_file", eventbus.HandlerFunc[domainalbum.Created](bindToAudioFile.HandleAlbumCreated))
	eventbus.Subscribe[domainalbum.Found](bus, "bind_to_audio_file", eventbus.HandlerFunc[domainalbum.Found](bindToAudioFile.HandleAlbumFound))
	eventbus.Subscribe[domainartist.Created](bus, "bind_to_audio_file", eventbus.HandlerFunc[domainartist.Created](bindToAudioFile.HandleArtistCreated))
	eventbus.Subscribe[domainartist.Found](bus, "bind_to_audio_file", eventbus.HandlerFunc[domainartist.Found](bindToAudioFile.HandleArtistFound))
	eventbus.Subscribe[domaingenre.Created](bus, "bind_to_audio_file", eventbus.HandlerFunc[domaingenre.Created](bindToAudioFile.HandleGenreCreated))
	eventbus.Subscribe[domaingenre.Found](bus, "bind_to_audio_file", eventbus.HandlerFunc[domaingenre.Found](bindToAudioFile.HandleGenreFound))
	eventbus.Subscribe[appevent.AudioFileParsed](bus, "bind_to_audio_file", eventbus.HandlerFunc[appevent.AudioFileParsed](bindToAudioFile.HandleAudioFileParsed))

	bindToCoverArt := NewBindToCoverArtCoordinator(coverArtService)
	eventbus.Subscribe[domainaudiofile.Created](bus, "bind_to_cover_art", eventbus.HandlerFunc[domainaudiofile.Created](bindToCoverArt.HandleAudioFileCreated))
	eventbus.Subscribe[domaincoverart.Created](bus, "bind_to_cover_art", eventbus.HandlerFunc[domaincoverart.Created](bindToCoverArt.HandleCoverArtCreated))
}

// RegisterFanout wires the parsed-file fanout handlers onto bus: every
// aggregate derivable from a tag issues its own create-or-find command when
// a file finishes parsing.
func RegisterFanout(
	bus *eventbus.Bus,
	genreHandler eventbus.Handler[appevent.AudioFileParsed],
	artistHandler eventbus.Handler[appevent.AudioFileParsed],
	albumHandler eventbus.Handler[appevent.AudioFileParsed],
	audioFileHandler eventbus.Handler[appevent.AudioFileParsed],
	coverArtHandler eventbus.Handler[appevent.ImageFileParsed],
) {
	eventbus.Subscribe[appevent.AudioFileParsed](bus, "fanout_genre", genreHandler)
	eventbus.Subscribe[appevent.AudioFileParsed](bus, "fanout_artist", artistHandler)
	eventbus.Subscribe[appevent.AudioFileParsed](bus, "fanout_album", albumHandler)
	eventbus.Subscribe[appevent.AudioFileParsed](bus, "fanout_audio_file", audioFileHandler)
	eventbus.Subscribe[appevent.ImageFileParsed](bus, "fanout_cover_art", coverArtHandler)
}

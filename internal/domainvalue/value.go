// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package domainvalue holds the small, immutable value types shared across
// every aggregate and projection: typed identifiers, storage locations, and
// the metadata extracted from an audio file on disk.
package domainvalue

import (
	"fmt"
	"strings"
)

// LibraryID identifies a configured library root.
type LibraryID int64

// AlbumID identifies an album aggregate.
type AlbumID int64

// ArtistID identifies an artist aggregate.
type ArtistID int64

// GenreID identifies a genre aggregate.
type GenreID int64

// AudioFileID identifies an audio file aggregate.
type AudioFileID int64

// CoverArtID identifies a cover art aggregate.
type CoverArtID int64

// UserID identifies a user aggregate.
type UserID int64

// PlaylistID identifies a playlist.
type PlaylistID int64

// PlayQueueID identifies a user's saved play queue.
type PlayQueueID int64

// PlayerID identifies a registered playback client.
type PlayerID int64

// TranscodingID identifies a configured transcoding profile.
type TranscodingID int64

// MediaPath locates a file behind a storage protocol (e.g. "local", "smb").
// An empty Protocol means the local filesystem.
type MediaPath struct {
	Protocol string
	Path     string
}

// String renders the path as protocol://path, or a bare path for the local protocol.
func (p MediaPath) String() string {
	if p.Protocol == "" || p.Protocol == "local" {
		return p.Path
	}
	return fmt.Sprintf("%s://%s", p.Protocol, p.Path)
}

// ParseMediaPath parses a configured path string in "<protocol>://<path>"
// form (e.g. "file:///music") into a MediaPath. A string with no "://"
// separator is treated as a bare local path. The "file" protocol is
// normalized to "local", the protocol every local collaborator registers
// itself under.
func ParseMediaPath(s string) MediaPath {
	if idx := strings.Index(s, "://"); idx >= 0 {
		protocol := s[:idx]
		if protocol == "file" {
			protocol = "local"
		}
		return MediaPath{Protocol: protocol, Path: s[idx+3:]}
	}
	return MediaPath{Path: s}
}

// Participant is a credited contributor to an audio file (artist, album artist,
// composer, etc.) prior to being resolved against the artist aggregate.
type Participant struct {
	Name    string
	Role    string
	SubRole string
}

// AudioMetadata is the set of tags read from an audio file, before any of its
// artist/album/genre references have been resolved to aggregate IDs.
type AudioMetadata struct {
	Title           string
	Album           string
	Artists         []Participant
	AlbumArtists    []Participant
	Genres          []string
	Composer        string
	TrackNumber     int
	DiscNumber      int
	DiscSubtitle    string
	Year            int
	Compilation     bool
	BPM             int
	Duration        int64
	BitRate         int
	Channels        int
	SampleRate      int
	HasEmbeddedArt  bool
	MusicBrainzID   string
}

// DistinctParticipants flattens Artists, AlbumArtists, and Composer into a
// single ordered list, one entry per distinct name in order of first
// appearance (Artists first, then AlbumArtists, then Composer). The role and
// sub-role carried on each entry are those of the participant's first
// occurrence. Coordinators pair this list positionally against the
// ArtistID events a correlation id accumulates, so this ordering must match
// exactly the order in which the artist fan-out handler issues create-or-find
// commands for the same metadata.
func (m AudioMetadata) DistinctParticipants() []Participant {
	seen := make(map[string]bool)
	result := make([]Participant, 0, len(m.Artists)+len(m.AlbumArtists)+1)
	add := func(p Participant) {
		if p.Name == "" || seen[p.Name] {
			return
		}
		seen[p.Name] = true
		result = append(result, p)
	}
	for _, p := range m.Artists {
		add(p)
	}
	for _, p := range m.AlbumArtists {
		add(p)
	}
	if m.Composer != "" {
		add(Participant{Name: m.Composer, Role: "composer"})
	}
	return result
}

// FileMeta is filesystem-level metadata about a scanned file, independent of
// its audio tags.
type FileMeta struct {
	Path      MediaPath
	Size      int64
	Suffix    string
	ModTime   int64
}

// FileType classifies a scanned file by its extension, ahead of any attempt
// to read its contents.
type FileType int

const (
	// FileTypeOther is any extension not recognized as audio, image, or NFO.
	FileTypeOther FileType = iota
	// FileTypeAudio is a recognized audio container extension.
	FileTypeAudio
	// FileTypeImage is a recognized image extension.
	FileTypeImage
	// FileTypeNfo is a ".nfo" sidecar metadata file.
	FileTypeNfo
)

// String renders the FileType for logging.
func (t FileType) String() string {
	switch t {
	case FileTypeAudio:
		return "audio"
	case FileTypeImage:
		return "image"
	case FileTypeNfo:
		return "nfo"
	default:
		return "other"
	}
}

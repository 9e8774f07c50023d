// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package mediaparse

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/dhowden/tag"

	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

// ReadResult is everything the metadata reader extracted from one audio
// file: its tags plus whether an embedded picture was found (the picture's
// bytes themselves are never kept — only its presence matters, since the
// embedded cover art is modeled as the audio file's own path with
// Source=Embedded, not a stored image).
type ReadResult struct {
	Metadata   domainvalue.AudioMetadata
	HasPicture bool
}

// MetadataReader is the audio tag reader port (spec §4.8's "tag-library
// external collaborator"). Implementations read format-specific tags from a
// seekable stream and return them in the AudioMetadata shape every rule in
// the normalization pipeline operates on.
type MetadataReader interface {
	Read(r io.ReadSeeker, suffix string) (ReadResult, error)
}

// TagMetadataReader reads ID3/FLAC/MP4/OGG tags via dhowden/tag and,
// for FLAC files, also recovers sample rate, bit depth, and duration from
// the STREAMINFO block — dhowden/tag exposes text tags only, not stream
// parameters.
type TagMetadataReader struct{}

// NewTagMetadataReader constructs a TagMetadataReader.
func NewTagMetadataReader() *TagMetadataReader {
	return &TagMetadataReader{}
}

// Read implements MetadataReader.
func (TagMetadataReader) Read(r io.ReadSeeker, suffix string) (ReadResult, error) {
	m, err := tag.ReadFrom(r)
	if err != nil {
		return ReadResult{}, fmt.Errorf("read tags: %w", err)
	}

	trackNum, _ := m.Track()
	discNum, _ := m.Disc()

	metadata := domainvalue.AudioMetadata{
		Title:       m.Title(),
		Album:       m.Album(),
		Composer:    m.Composer(),
		TrackNumber: trackNum,
		DiscNumber:  discNum,
		Year:        m.Year(),
	}

	if artist := m.Artist(); artist != "" {
		metadata.Artists = []domainvalue.Participant{{Name: artist, Role: "artist"}}
	}
	if albumArtist := m.AlbumArtist(); albumArtist != "" {
		metadata.AlbumArtists = []domainvalue.Participant{{Name: albumArtist, Role: "album_artist"}}
	}
	if genre := m.Genre(); genre != "" {
		metadata.Genres = []string{genre}
	}

	hasPicture := false
	if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
		hasPicture = true
		metadata.HasEmbeddedArt = true
	}

	bitDepth, sampleRate, durationMs := readFLACStreamInfo(r, strings.ToLower(suffix))
	metadata.SampleRate = sampleRate
	metadata.Duration = durationMs
	if bitDepth > 0 {
		// AudioMetadata has no dedicated bit-depth field; BitRate is the
		// closest stand-in available from this reader for FLAC's lossless
		// streams, where a true bit rate figure would require decoding.
		metadata.BitRate = bitDepth
	}
	metadata.Channels = 2

	return ReadResult{Metadata: metadata, HasPicture: hasPicture}, nil
}

// readFLACStreamInfo reads the FLAC STREAMINFO block for bit depth, sample
// rate, and duration. Returns zeros for non-FLAC files or unparseable
// headers — stream parameters for other formats are left to the transcoder
// collaborator, out of scope here.
func readFLACStreamInfo(r io.ReadSeeker, suffix string) (bitDepth, sampleRate int, durationMs int64) {
	suffix = strings.TrimPrefix(suffix, ".")
	if suffix != "flac" {
		return
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return
	}
	// 4-byte "fLaC" marker + 4-byte block header + 34-byte STREAMINFO = 42 bytes.
	buf := make([]byte, 42)
	if _, err := io.ReadFull(r, buf); err != nil {
		return
	}
	if string(buf[0:4]) != "fLaC" || buf[4]&0x7F != 0 {
		return
	}
	if binary.BigEndian.Uint32([]byte{0, buf[5], buf[6], buf[7]}) != 34 {
		return
	}
	si := buf[8:] // 34-byte STREAMINFO payload
	sampleRate = int(uint32(si[10])<<12 | uint32(si[11])<<4 | uint32(si[12])>>4)
	bitDepth = int((si[12]&0x01)<<4|si[13]>>4) + 1
	totalSamples := int64(si[13]&0x0F)<<32 |
		int64(si[14])<<24 | int64(si[15])<<16 |
		int64(si[16])<<8 | int64(si[17])
	if sampleRate > 0 && totalSamples > 0 {
		durationMs = totalSamples * 1000 / int64(sampleRate)
	}
	return
}


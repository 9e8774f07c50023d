// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package appevent holds the cross-cutting events that do not belong to any
// single aggregate: they originate in the media parsing pipeline and fan out
// to every aggregate's create-on-parse handler.
package appevent

import (
	"time"

	domaincoverart "github.com/harmonia-music/harmonia/internal/domain/coverart"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

// AudioFileParsed is published once per audio file read off disk, carrying
// its filesystem metadata and the tags extracted from it. Every aggregate
// that can be derived from a tag (artist, genre, album, audio file) listens
// for this event and issues its own create-or-find command in response.
type AudioFileParsed struct {
	LibraryID domainvalue.LibraryID
	Metadata  domainvalue.AudioMetadata
	FileInfo  domainvalue.FileMeta
}

// ImageFileParsed is published once per standalone cover art image
// discovered alongside an audio file (folder.jpg, cover.png, etc), with
// Source=Standalone, and once per audio file that carries an embedded
// picture, with Source=Embedded and FileInfo naming the audio file.
type ImageFileParsed struct {
	LibraryID domainvalue.LibraryID
	FileInfo  domainvalue.FileMeta
	Source    domaincoverart.SourceType
}

// ScanStarted is published when a library scan begins.
type ScanStarted struct {
	LibraryID  domainvalue.LibraryID
	TotalFiles int64
}

// ScanEnded is published when a library scan finishes, successfully or not.
type ScanEnded struct {
	LibraryID domainvalue.LibraryID
}

// ItemScrobbled is published when a user plays an audio file to completion.
// It is not tied to any aggregate's own lifecycle, so it lives alongside the
// other cross-cutting events rather than inside a dedicated aggregate.
type ItemScrobbled struct {
	UserID      int64
	AudioFileID domainvalue.AudioFileID
	ScrobbledAt time.Time
}

// FileAdded is published by the library scan service for every path present
// on disk that was absent from the library's last known item set. A fresh
// correlation id is minted for each FileAdded: everything the media-parse
// pipeline and the bind coordinators do in response to one discovered file
// shares that id, per the contract in spec §4.4 ("one correlation_id is used
// for exactly one imported file").
type FileAdded struct {
	LibraryID domainvalue.LibraryID
	FileInfo  domainvalue.FileMeta
	FileType  domainvalue.FileType
}

// FileRemoved is published by the library scan service for every path that
// was present in the library's last known item set but is now absent.
type FileRemoved struct {
	LibraryID domainvalue.LibraryID
	FileInfo  domainvalue.FileMeta
}

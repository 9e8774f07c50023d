// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package scan

import (
	"strings"

	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

// audioExtensions are the audio container suffixes the scanner recognizes,
// grounded on the same extension set alexander-bruun-Orb's ingest walker
// filters on.
var audioExtensions = map[string]bool{
	".flac": true,
	".wav":  true,
	".mp3":  true,
	".aiff": true,
	".aif":  true,
	".m4a":  true,
	".ogg":  true,
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// DetectFileType classifies suffix (as returned by filepath.Ext, including
// the leading dot) into the FileType the library diff algorithm retains.
func DetectFileType(suffix string) domainvalue.FileType {
	lower := strings.ToLower(suffix)
	switch {
	case audioExtensions[lower]:
		return domainvalue.FileTypeAudio
	case imageExtensions[lower]:
		return domainvalue.FileTypeImage
	case lower == ".nfo":
		return domainvalue.FileTypeNfo
	default:
		return domainvalue.FileTypeOther
	}
}

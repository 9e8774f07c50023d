// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	domainlibrary "github.com/harmonia-music/harmonia/internal/domain/library"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

// Walker enumerates every retained file under a library root, grounded on
// alexander-bruun-Orb's ingest walk (cmd/ingest/main.go's scan/isAudioFile):
// a recursive directory walk that skips files of a type the library diff
// doesn't track.
type Walker interface {
	Walk(ctx context.Context, root domainvalue.MediaPath) (map[string]domainlibrary.Item, error)
}

// LocalWalker walks a local filesystem root. Only Audio, Image, and Nfo
// files are retained in the result (spec §4.7 step 3); everything else is
// skipped without being logged, since an arbitrary music folder is expected
// to contain files this system has no interest in.
type LocalWalker struct{}

// NewLocalWalker constructs a LocalWalker.
func NewLocalWalker() *LocalWalker {
	return &LocalWalker{}
}

// Walk implements Walker.
func (w *LocalWalker) Walk(ctx context.Context, root domainvalue.MediaPath) (map[string]domainlibrary.Item, error) {
	items := make(map[string]domainlibrary.Item)

	err := filepath.WalkDir(root.Path, func(path string, d os.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if walkErr != nil {
			log.Warn().Err(walkErr).Str("path", path).Msg("scan: walk error")
			return nil
		}
		if d.IsDir() {
			return nil
		}

		fileType := DetectFileType(filepath.Ext(path))
		if fileType == domainvalue.FileTypeOther {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("scan: stat error")
			return nil
		}

		mediaPath := domainvalue.MediaPath{Protocol: root.Protocol, Path: path}
		items[mediaPath.String()] = domainlibrary.Item{
			Path:    mediaPath,
			Size:    fi.Size(),
			Suffix:  filepath.Ext(path),
			ModTime: fi.ModTime().Unix(),
			Type:    fileType,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", root.Path, err)
	}
	return items, nil
}

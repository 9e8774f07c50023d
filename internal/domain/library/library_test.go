// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-music/harmonia/internal/apperror"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

func newTestLibrary() *Library {
	l := New(domainvalue.LibraryID(1), "music", domainvalue.MediaPath{Protocol: "local", Path: "/music"})
	l.TakeEvents()
	return l
}

func item(path string, size, modTime int64) Item {
	return Item{
		Path:    domainvalue.MediaPath{Protocol: "local", Path: path},
		Size:    size,
		Suffix:  "mp3",
		ModTime: modTime,
		Type:    domainvalue.FileTypeAudio,
	}
}

func paths(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Path.Path)
	}
	return out
}

func TestApplyScanResultIncrementalDiff(t *testing.T) {
	l := newTestLibrary()

	first := map[string]Item{
		"/music/a.mp3": item("/music/a.mp3", 100, 1),
		"/music/b.mp3": item("/music/b.mp3", 200, 1),
	}
	added, removed := l.ApplyScanResult(first, false)
	assert.ElementsMatch(t, []string{"/music/a.mp3", "/music/b.mp3"}, paths(added))
	assert.Empty(t, removed)
	assert.Equal(t, int64(1), l.Version)

	// a.mp3 unchanged, b.mp3 gone, c.mp3 new.
	second := map[string]Item{
		"/music/a.mp3": item("/music/a.mp3", 100, 1),
		"/music/c.mp3": item("/music/c.mp3", 300, 2),
	}
	added, removed = l.ApplyScanResult(second, false)
	assert.ElementsMatch(t, []string{"/music/c.mp3"}, paths(added), "unchanged files are not re-emitted")
	assert.ElementsMatch(t, []string{"/music/b.mp3"}, paths(removed))
	assert.Equal(t, int64(2), l.Version, "version bumps once per pass")
}

func TestApplyScanResultReEmitsChangedFiles(t *testing.T) {
	l := newTestLibrary()
	l.ApplyScanResult(map[string]Item{
		"/music/a.mp3": item("/music/a.mp3", 100, 1),
		"/music/b.mp3": item("/music/b.mp3", 200, 1),
	}, false)

	// a.mp3 was rewritten (new mtime), b.mp3 retagged in place (new size).
	added, removed := l.ApplyScanResult(map[string]Item{
		"/music/a.mp3": item("/music/a.mp3", 100, 9),
		"/music/b.mp3": item("/music/b.mp3", 250, 1),
	}, false)
	assert.ElementsMatch(t, []string{"/music/a.mp3", "/music/b.mp3"}, paths(added))
	assert.Empty(t, removed)
}

func TestApplyScanResultFullScanReEmitsEverything(t *testing.T) {
	l := newTestLibrary()
	l.ApplyScanResult(map[string]Item{
		"/music/a.mp3": item("/music/a.mp3", 100, 1),
		"/music/b.mp3": item("/music/b.mp3", 200, 1),
	}, false)

	// Nothing changed on disk except b.mp3 disappearing; a full scan still
	// re-emits every discovered file.
	added, removed := l.ApplyScanResult(map[string]Item{
		"/music/a.mp3": item("/music/a.mp3", 100, 1),
	}, true)
	assert.ElementsMatch(t, []string{"/music/a.mp3"}, paths(added))
	assert.ElementsMatch(t, []string{"/music/b.mp3"}, paths(removed))
}

func TestScanStateMachine(t *testing.T) {
	l := newTestLibrary()
	require.Equal(t, ScanStateIdle, l.ScanState)

	require.NoError(t, l.StartScan())
	assert.Equal(t, ScanStateScanning, l.ScanState)

	err := l.StartScan()
	assert.ErrorIs(t, err, apperror.ErrInvalidOperation)

	at := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	l.EndScan(at)
	assert.Equal(t, ScanStateIdle, l.ScanState)
	assert.Equal(t, at, l.LastScanAt)

	require.NoError(t, l.StartScan(), "a finished scan can be restarted")
}

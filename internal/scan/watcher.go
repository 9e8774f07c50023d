// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher is the optional fsnotify-driven live-scan trigger supplementing
// the poll-based Poller (spec §4.7 is poll-only; this is recovered from the
// original Rust implementation's watch mode — see DESIGN.md). It does not
// process individual filesystem events itself: any Create/Write/Remove/
// Rename under the library root simply triggers the same diff-based
// ScanLibrary pass the poller runs, coalesced so a burst of events (e.g. an
// album being copied in) produces one rescan rather than one per file.
type Watcher struct {
	service  *Service
	target   LibraryTarget
	coalesce time.Duration
}

// NewWatcher constructs a Watcher for target, coalescing bursts of
// filesystem events within the given window into a single rescan.
func NewWatcher(service *Service, target LibraryTarget, coalesce time.Duration) *Watcher {
	if coalesce <= 0 {
		coalesce = 2 * time.Second
	}
	return &Watcher{service: service, target: target, coalesce: coalesce}
}

// Serve implements suture.Service.
func (w *Watcher) Serve(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	if err := addDirsRecursively(fsw, w.target.Path.Path); err != nil {
		return fmt.Errorf("watch %q: %w", w.target.Path.Path, err)
	}

	var pending *time.Timer
	rescan := make(chan struct{}, 1)
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				// A newly created directory (e.g. a new album folder) needs
				// its own watch registered before events under it will fire.
				_ = fsw.Add(ev.Name)
			}
			if pending == nil {
				pending = time.AfterFunc(w.coalesce, func() {
					select {
					case rescan <- struct{}{}:
					default:
					}
				})
			} else {
				pending.Reset(w.coalesce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Str("library_path", w.target.Path.Path).Msg("scan: watcher error")

		case <-rescan:
			// Watch-triggered passes are always incremental: a Write event
			// bumps the file's mtime, so the diff re-emits it without a
			// full-scan sweep.
			if err := w.service.ScanLibrary(ctx, w.target, "watch", false); err != nil {
				log.Error().Err(err).Int64("library_id", int64(w.target.ID)).Msg("scan: watch-triggered scan failed")
			}
		}
	}
}

// String implements fmt.Stringer for suture's logging.
func (w *Watcher) String() string {
	return "library-watch-" + w.target.Path.Path
}

func addDirsRecursively(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}

// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package badger provides BadgerDB-backed persistence for the projection
// read models: the memtable-buffered delta tables (genre stats, album and
// artist location/stats, participant stats) and the two repositories that
// are written directly rather than through a buffer (scan status, playback
// history).
package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Open opens (creating if necessary) a BadgerDB at path with logging
// suppressed, matching the embedded-store convention used elsewhere in this
// codebase for auxiliary durable state.
func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db at %s: %w", path, err)
	}
	return db, nil
}

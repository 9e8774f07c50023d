// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/harmonia-music/harmonia/internal/projection"
)

const playbackHistoryKeyPrefix = "playback_history:"

// playbackHistoryKey orders entries by scrobble time, so a prefix scan over
// playbackHistoryKeyPrefix comes back oldest-first. The user id follows the
// timestamp, so entries of all users interleave and there is no per-user prefix.
func playbackHistoryKey(entry projection.PlaybackHistoryEntry) []byte {
	return []byte(fmt.Sprintf("%s%020d:%d:%d", playbackHistoryKeyPrefix, entry.ScrobbledAt.UnixNano(), entry.UserID, entry.AudioFileID))
}

// PlaybackHistoryRepository appends scrobble rows directly to BadgerDB.
// Scrobbles are immutable once written, so there is nothing for a memtable
// to merge.
type PlaybackHistoryRepository struct {
	db *badger.DB
}

// NewPlaybackHistoryRepository constructs a badger-backed playback history
// repository.
func NewPlaybackHistoryRepository(db *badger.DB) *PlaybackHistoryRepository {
	return &PlaybackHistoryRepository{db: db}
}

// Save appends one scrobble row.
func (r *PlaybackHistoryRepository) Save(ctx context.Context, entry projection.PlaybackHistoryEntry) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, playbackHistoryKey(entry), entry)
	})
}

// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/harmonia-music/harmonia/internal/domainvalue"
	"github.com/harmonia-music/harmonia/internal/memtable"
	"github.com/harmonia-music/harmonia/internal/projection"
)

const albumStatsKeyPrefix = "album_stats:"

func albumStatsKey(id domainvalue.AlbumID) []byte {
	return []byte(fmt.Sprintf("%s%d", albumStatsKeyPrefix, id))
}

// albumStatsPersister drains flushed album stats rows into badger. The
// memtable holds one merged row per album (AdjustStats folds every
// adjustment in place); Persist adds that row's deltas to the stored row,
// merges its disc numbers, and sets Year only if the stored row has none.
type albumStatsPersister struct {
	db *badger.DB
}

func (p *albumStatsPersister) Persist(ctx context.Context, key domainvalue.AlbumID, value projection.AlbumStats) error {
	return p.db.Update(func(txn *badger.Txn) error {
		var current projection.AlbumStats
		err := getJSON(txn, albumStatsKey(key), &current)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		current.AlbumID = key
		current.Duration += value.Duration
		current.Size += value.Size
		current.SongCount += value.SongCount
		current.DiscNumbers = mergeDiscNumbers(current.DiscNumbers, value.DiscNumbers)
		if current.Year == nil {
			current.Year = value.Year
		}
		return setJSON(txn, albumStatsKey(key), current)
	})
}

func (p *albumStatsPersister) Remove(ctx context.Context, key domainvalue.AlbumID) error {
	return p.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(albumStatsKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

func mergeDiscNumbers(existing, added []int32) []int32 {
	seen := make(map[int32]bool, len(existing))
	for _, d := range existing {
		seen[d] = true
	}
	for _, d := range added {
		if !seen[d] {
			seen[d] = true
			existing = append(existing, d)
		}
	}
	return existing
}

// AlbumStatsRepository buffers album stats adjustments in a memtable and
// flushes the accumulated rows into BadgerDB.
type AlbumStatsRepository struct {
	buffer *memtable.Context[domainvalue.AlbumID, projection.AlbumStats]
	db     *badger.DB
}

// NewAlbumStatsRepository constructs a badger-backed, memtable-buffered
// album stats repository.
func NewAlbumStatsRepository(db *badger.DB, threshold int, flushInterval time.Duration) *AlbumStatsRepository {
	return &AlbumStatsRepository{
		buffer: memtable.NewContext[domainvalue.AlbumID, projection.AlbumStats]("album_stats", threshold, flushInterval, &albumStatsPersister{db: db}),
		db:     db,
	}
}

// AdjustStats applies a signed delta against the album's stats row,
// appending adjustment.DiscNumber to the disc set and setting Year only if
// the row does not already carry one.
func (r *AlbumStatsRepository) AdjustStats(ctx context.Context, adjustment projection.AlbumStatsAdjustment) error {
	return r.buffer.UpdateOrInsert(ctx, adjustment.AlbumID, func(current projection.AlbumStats, exists bool) projection.AlbumStats {
		if !exists {
			current.AlbumID = adjustment.AlbumID
		}
		current.Duration += adjustment.DurationDelta
		current.Size += adjustment.SizeDelta
		current.SongCount += adjustment.SongCountDelta
		if adjustment.DiscNumber != nil {
			current.DiscNumbers = mergeDiscNumbers(current.DiscNumbers, []int32{*adjustment.DiscNumber})
		}
		if current.Year == nil {
			current.Year = adjustment.Year
		}
		return current
	})
}

// FindByAlbumID reads the durably persisted stats row for an album. It does
// not see adjustments still sitting in the memtable buffer.
func (r *AlbumStatsRepository) FindByAlbumID(ctx context.Context, albumID domainvalue.AlbumID) (*projection.AlbumStats, error) {
	var out projection.AlbumStats
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, albumStatsKey(albumID), &out)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the durable stats row for an album.
func (r *AlbumStatsRepository) Delete(ctx context.Context, albumID domainvalue.AlbumID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(albumStatsKey(albumID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// ShutdownGracefully flushes any buffered adjustments and waits up to wait
// for them to land in badger.
func (r *AlbumStatsRepository) ShutdownGracefully(ctx context.Context, wait time.Duration) int {
	return r.buffer.ShutdownGracefully(ctx, wait)
}

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

const genreStatsKeyPrefix = "genre_stats:"

func genreStatsKey(id domainvalue.GenreID) []byte {
	return []byte(fmt.Sprintf("%s%d", genreStatsKeyPrefix, id))
}

// genreStatsPersister drains flushed genre stats deltas into badger,
// accumulating onto whatever row is already stored.
type genreStatsPersister struct {
	db *badger.DB
}

func (p *genreStatsPersister) Persist(ctx context.Context, key domainvalue.GenreID, value projection.GenreStats) error {
	return p.db.Update(func(txn *badger.Txn) error {
		var current projection.GenreStats
		err := getJSON(txn, genreStatsKey(key), &current)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		current.GenreID = key
		current.SongCount += value.SongCount
		current.AlbumCount += value.AlbumCount
		return setJSON(txn, genreStatsKey(key), current)
	})
}

func (p *genreStatsPersister) Remove(ctx context.Context, key domainvalue.GenreID) error {
	return p.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(genreStatsKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// GenreStatsRepository buffers genre stats deltas in a memtable and flushes
// them into BadgerDB, implementing projection.GenreStatsRepository.
type GenreStatsRepository struct {
	buffer *memtable.Context[domainvalue.GenreID, projection.GenreStats]
	db     *badger.DB
}

// NewGenreStatsRepository constructs a badger-backed, memtable-buffered
// genre stats repository.
func NewGenreStatsRepository(db *badger.DB, threshold int, flushInterval time.Duration) *GenreStatsRepository {
	return &GenreStatsRepository{
		buffer: memtable.NewContext[domainvalue.GenreID, projection.GenreStats]("genre_stats", threshold, flushInterval, &genreStatsPersister{db: db}),
		db:     db,
	}
}

// AdjustStats applies entry as a signed delta against the genre's stats row.
func (r *GenreStatsRepository) AdjustStats(ctx context.Context, entry projection.GenreStats) error {
	return r.buffer.UpdateOrInsert(ctx, entry.GenreID, func(current projection.GenreStats, exists bool) projection.GenreStats {
		if !exists {
			current.GenreID = entry.GenreID
		}
		current.SongCount += entry.SongCount
		current.AlbumCount += entry.AlbumCount
		return current
	})
}

// FindByID reads the durably persisted stats row for a genre. It does not
// see deltas still sitting in the memtable buffer.
func (r *GenreStatsRepository) FindByID(ctx context.Context, genreID domainvalue.GenreID) (*projection.GenreStats, error) {
	var out projection.GenreStats
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, genreStatsKey(genreID), &out)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ShutdownGracefully flushes any buffered deltas and waits up to wait for
// them to land in badger.
func (r *GenreStatsRepository) ShutdownGracefully(ctx context.Context, wait time.Duration) int {
	return r.buffer.ShutdownGracefully(ctx, wait)
}

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

const albumLocationKeyPrefix = "album_location:"

type albumLocationKey struct {
	AlbumID  domainvalue.AlbumID
	Location string
}

func albumLocationBadgerKey(k albumLocationKey) []byte {
	return []byte(fmt.Sprintf("%s%d:%s", albumLocationKeyPrefix, k.AlbumID, k.Location))
}

type albumLocationPersister struct {
	db *badger.DB
}

func (p *albumLocationPersister) Persist(ctx context.Context, key albumLocationKey, value projection.AlbumLocation) error {
	return p.db.Update(func(txn *badger.Txn) error {
		var current projection.AlbumLocation
		err := getJSON(txn, albumLocationBadgerKey(key), &current)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		current.AlbumID = value.AlbumID
		current.Location = value.Location
		current.Total += value.Total
		current.UpdateTime = value.UpdateTime
		return setJSON(txn, albumLocationBadgerKey(key), current)
	})
}

func (p *albumLocationPersister) Remove(ctx context.Context, key albumLocationKey) error {
	return p.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(albumLocationBadgerKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// AlbumLocationRepository buffers per-directory album track count deltas in
// a memtable and flushes them into BadgerDB.
type AlbumLocationRepository struct {
	buffer *memtable.Context[albumLocationKey, projection.AlbumLocation]
	db     *badger.DB
}

// NewAlbumLocationRepository constructs a badger-backed, memtable-buffered
// album location repository.
func NewAlbumLocationRepository(db *badger.DB, threshold int, flushInterval time.Duration) *AlbumLocationRepository {
	return &AlbumLocationRepository{
		buffer: memtable.NewContext[albumLocationKey, projection.AlbumLocation]("album_location", threshold, flushInterval, &albumLocationPersister{db: db}),
		db:     db,
	}
}

// AdjustCount applies entry.Total as a signed delta against the track count
// for (entry.AlbumID, entry.Location).
func (r *AlbumLocationRepository) AdjustCount(ctx context.Context, entry projection.AlbumLocation) error {
	key := albumLocationKey{AlbumID: entry.AlbumID, Location: entry.Location.String()}
	return r.buffer.UpdateOrInsert(ctx, key, func(current projection.AlbumLocation, exists bool) projection.AlbumLocation {
		if !exists {
			current.AlbumID = entry.AlbumID
			current.Location = entry.Location
		}
		current.Total += entry.Total
		current.UpdateTime = entry.UpdateTime
		return current
	})
}

// ShutdownGracefully flushes any buffered deltas and waits up to wait for
// them to land in badger.
func (r *AlbumLocationRepository) ShutdownGracefully(ctx context.Context, wait time.Duration) int {
	return r.buffer.ShutdownGracefully(ctx, wait)
}

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

const artistLocationKeyPrefix = "artist_location:"

type artistLocationKey struct {
	ArtistID domainvalue.ArtistID
	Location string
}

func artistLocationBadgerKey(k artistLocationKey) []byte {
	return []byte(fmt.Sprintf("%s%d:%s", artistLocationKeyPrefix, k.ArtistID, k.Location))
}

type artistLocationPersister struct {
	db *badger.DB
}

func (p *artistLocationPersister) Persist(ctx context.Context, key artistLocationKey, value projection.ArtistLocation) error {
	return p.db.Update(func(txn *badger.Txn) error {
		var current projection.ArtistLocation
		err := getJSON(txn, artistLocationBadgerKey(key), &current)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		current.ArtistID = value.ArtistID
		current.Location = value.Location
		current.Total += value.Total
		current.UpdateTime = value.UpdateTime
		return setJSON(txn, artistLocationBadgerKey(key), current)
	})
}

func (p *artistLocationPersister) Remove(ctx context.Context, key artistLocationKey) error {
	return p.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(artistLocationBadgerKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// ArtistLocationRepository buffers per-directory artist track count deltas
// in a memtable and flushes them into BadgerDB.
type ArtistLocationRepository struct {
	buffer *memtable.Context[artistLocationKey, projection.ArtistLocation]
	db     *badger.DB
}

// NewArtistLocationRepository constructs a badger-backed, memtable-buffered
// artist location repository.
func NewArtistLocationRepository(db *badger.DB, threshold int, flushInterval time.Duration) *ArtistLocationRepository {
	return &ArtistLocationRepository{
		buffer: memtable.NewContext[artistLocationKey, projection.ArtistLocation]("artist_location", threshold, flushInterval, &artistLocationPersister{db: db}),
		db:     db,
	}
}

// AdjustCount applies entry.Total as a signed delta against the track count
// for (entry.ArtistID, entry.Location).
func (r *ArtistLocationRepository) AdjustCount(ctx context.Context, entry projection.ArtistLocation) error {
	key := artistLocationKey{ArtistID: entry.ArtistID, Location: entry.Location.String()}
	return r.buffer.UpdateOrInsert(ctx, key, func(current projection.ArtistLocation, exists bool) projection.ArtistLocation {
		if !exists {
			current.ArtistID = entry.ArtistID
			current.Location = entry.Location
		}
		current.Total += entry.Total
		current.UpdateTime = entry.UpdateTime
		return current
	})
}

// ShutdownGracefully flushes any buffered deltas and waits up to wait for
// them to land in badger.
func (r *ArtistLocationRepository) ShutdownGracefully(ctx context.Context, wait time.Duration) int {
	return r.buffer.ShutdownGracefully(ctx, wait)
}

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

	"github.com/harmonia-music/harmonia/internal/domain/album"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
	"github.com/harmonia-music/harmonia/internal/memtable"
	"github.com/harmonia-music/harmonia/internal/projection"
)

const participantStatsKeyPrefix = "participant_stats:"

// participantStatsKey is the memtable key: one row per (artist, role) pair,
// since an artist's song/album/duration tallies are tracked separately per
// contribution role.
type participantStatsKey struct {
	ArtistID domainvalue.ArtistID
	Role     album.ParticipantRole
}

func participantStatsBadgerKey(k participantStatsKey) []byte {
	return []byte(fmt.Sprintf("%s%d:%s", participantStatsKeyPrefix, k.ArtistID, k.Role))
}

type participantStatsPersister struct {
	db *badger.DB
}

func (p *participantStatsPersister) Persist(ctx context.Context, key participantStatsKey, value projection.ParticipantStats) error {
	return p.db.Update(func(txn *badger.Txn) error {
		var current projection.ParticipantStats
		err := getJSON(txn, participantStatsBadgerKey(key), &current)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		current.ArtistID = key.ArtistID
		current.Role = key.Role
		current.Duration += value.Duration
		current.Size += value.Size
		current.SongCount += value.SongCount
		current.AlbumCount += value.AlbumCount
		return setJSON(txn, participantStatsBadgerKey(key), current)
	})
}

func (p *participantStatsPersister) Remove(ctx context.Context, key participantStatsKey) error {
	return p.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(participantStatsBadgerKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// ParticipantStatsRepository buffers participant stats deltas in a memtable
// and flushes them into BadgerDB.
type ParticipantStatsRepository struct {
	buffer *memtable.Context[participantStatsKey, projection.ParticipantStats]
	db     *badger.DB
}

// NewParticipantStatsRepository constructs a badger-backed,
// memtable-buffered participant stats repository.
func NewParticipantStatsRepository(db *badger.DB, threshold int, flushInterval time.Duration) *ParticipantStatsRepository {
	return &ParticipantStatsRepository{
		buffer: memtable.NewContext[participantStatsKey, projection.ParticipantStats]("participant_stats", threshold, flushInterval, &participantStatsPersister{db: db}),
		db:     db,
	}
}

// AdjustStats applies delta as a signed adjustment against the artist's
// stats row for delta.Role.
func (r *ParticipantStatsRepository) AdjustStats(ctx context.Context, delta projection.ParticipantStats) error {
	key := participantStatsKey{ArtistID: delta.ArtistID, Role: delta.Role}
	return r.buffer.UpdateOrInsert(ctx, key, func(current projection.ParticipantStats, exists bool) projection.ParticipantStats {
		if !exists {
			current.ArtistID = delta.ArtistID
			current.Role = delta.Role
		}
		current.Duration += delta.Duration
		current.Size += delta.Size
		current.SongCount += delta.SongCount
		current.AlbumCount += delta.AlbumCount
		return current
	})
}

// FindByArtistAndRole reads the durably persisted stats row for an artist's
// contribution under one role. It does not see deltas still sitting in the
// memtable buffer.
func (r *ParticipantStatsRepository) FindByArtistAndRole(ctx context.Context, artistID domainvalue.ArtistID, role album.ParticipantRole) (*projection.ParticipantStats, error) {
	var out projection.ParticipantStats
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, participantStatsBadgerKey(participantStatsKey{ArtistID: artistID, Role: role}), &out)
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
func (r *ParticipantStatsRepository) ShutdownGracefully(ctx context.Context, wait time.Duration) int {
	return r.buffer.ShutdownGracefully(ctx, wait)
}

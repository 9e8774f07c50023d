// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/harmonia-music/harmonia/internal/domainvalue"
	"github.com/harmonia-music/harmonia/internal/projection"
)

const scanStatusKeyPrefix = "scan_status:"

func scanStatusKey(id domainvalue.LibraryID) []byte {
	return []byte(fmt.Sprintf("%s%d", scanStatusKeyPrefix, id))
}

// ScanStatusRepository persists scan status rows directly, bypassing the
// memtable buffer: a scan's progress counters are updated too sparsely (a
// handful of times per library per scan) to warrant batching, and readers
// of scan progress expect to see the latest write immediately.
type ScanStatusRepository struct {
	db *badger.DB
}

// NewScanStatusRepository constructs a badger-backed scan status repository.
func NewScanStatusRepository(db *badger.DB) *ScanStatusRepository {
	return &ScanStatusRepository{db: db}
}

// Get returns the status row for a library, or nil if none has been saved.
func (r *ScanStatusRepository) Get(ctx context.Context, libraryID domainvalue.LibraryID) (*projection.ScanStatus, error) {
	var out projection.ScanStatus
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, scanStatusKey(libraryID), &out)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAll returns every library's status row.
func (r *ScanStatusRepository) GetAll(ctx context.Context) (map[domainvalue.LibraryID]projection.ScanStatus, error) {
	out := make(map[domainvalue.LibraryID]projection.ScanStatus)
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(scanStatusKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var status projection.ScanStatus
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &status)
			})
			if err != nil {
				return err
			}
			out[status.LibraryID] = status
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list scan status: %w", err)
	}
	return out, nil
}

// Save writes a library's status row, replacing whatever was there before.
func (r *ScanStatusRepository) Save(ctx context.Context, status projection.ScanStatus) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, scanStatusKey(status.LibraryID), status)
	})
}

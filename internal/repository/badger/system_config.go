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
)

// systemConfigRow carries the timestamps alongside the value so operators
// can tell when a setting was last touched.
type systemConfigRow struct {
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func systemConfigKey(key string) []byte {
	return []byte("system_config:" + key)
}

// SystemConfigStore is a BadgerDB-backed implementation of
// shared.SystemConfigStore.
type SystemConfigStore struct {
	db *badger.DB
}

// NewSystemConfigStore constructs a SystemConfigStore.
func NewSystemConfigStore(db *badger.DB) *SystemConfigStore {
	return &SystemConfigStore{db: db}
}

// GetString implements shared.SystemConfigStore.
func (s *SystemConfigStore) GetString(ctx context.Context, key string) (string, bool, error) {
	var row systemConfigRow
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, systemConfigKey(key), &row)
	})
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get system config %q: %w", key, err)
	}
	return row.Value, true, nil
}

// SetString implements shared.SystemConfigStore, preserving CreatedAt across
// overwrites.
func (s *SystemConfigStore) SetString(ctx context.Context, key, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		now := time.Now().UTC()
		row := systemConfigRow{Value: value, CreatedAt: now, UpdatedAt: now}

		var existing systemConfigRow
		if err := getJSON(txn, systemConfigKey(key), &existing); err == nil {
			row.CreatedAt = existing.CreatedAt
		}
		return setJSON(txn, systemConfigKey(key), row)
	})
	if err != nil {
		return fmt.Errorf("set system config %q: %w", key, err)
	}
	return nil
}

// GetOrSetDefault implements shared.SystemConfigStore atomically: the read
// and the conditional write share one transaction.
func (s *SystemConfigStore) GetOrSetDefault(ctx context.Context, key, defaultValue string) (string, error) {
	value := defaultValue
	err := s.db.Update(func(txn *badger.Txn) error {
		var existing systemConfigRow
		err := getJSON(txn, systemConfigKey(key), &existing)
		if err == nil {
			value = existing.Value
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		now := time.Now().UTC()
		return setJSON(txn, systemConfigKey(key), systemConfigRow{Value: defaultValue, CreatedAt: now, UpdatedAt: now})
	})
	if err != nil {
		return "", fmt.Errorf("get-or-set system config %q: %w", key, err)
	}
	return value, nil
}

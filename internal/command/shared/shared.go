// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package shared holds the small ports every command service depends on:
// id generation, name normalization, and the system config store.
package shared

import "context"

// IDGenerator mints new aggregate identifiers. Implemented by
// internal/idgen.Generator in production and stubbed with a counter in
// tests.
type IDGenerator interface {
	NextID() (int64, error)
}

// Normalizer reduces a display name to a comparable key used to detect an
// existing aggregate with the "same" name: diacritics stripped, leading
// articles removed, lowercased.
type Normalizer interface {
	Normalize(name string) string
}

// SystemConfigStore is the durable key/value store for small operational
// settings that outlive a process restart (instance id, schema markers).
// GetString reports ok=false when the key has never been set.
type SystemConfigStore interface {
	GetString(ctx context.Context, key string) (value string, ok bool, err error)
	SetString(ctx context.Context, key, value string) error
	// GetOrSetDefault returns the stored value for key, storing and
	// returning defaultValue when the key is absent.
	GetOrSetDefault(ctx context.Context, key, defaultValue string) (string, error)
}

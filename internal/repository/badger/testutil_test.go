// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package badger

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
)

// newTestDB opens an in-memory BadgerDB for the duration of the test,
// matching the teacher's own badger test fixtures.
func newTestDB(t *testing.T) *badger.DB {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("open in-memory badger: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

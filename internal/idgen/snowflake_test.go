// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsOutOfRangeNodeID(t *testing.T) {
	_, err := New(maxNodeID + 1)
	assert.Error(t, err)

	_, err = New(-1)
	assert.Error(t, err)
}

func TestNextIDIsUnique(t *testing.T) {
	gen, err := New(1)
	require.NoError(t, err)

	seen := make(map[int64]bool, 1000)
	for i := 0; i < 1000; i++ {
		id, err := gen.NextID()
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id generated: %d", id)
		seen[id] = true
	}
}

func TestNextIDForBusinessIsolatesSequences(t *testing.T) {
	gen, err := New(1)
	require.NoError(t, err)

	genreID, err := gen.NextIDForBusiness("genre")
	require.NoError(t, err)
	albumID, err := gen.NextIDForBusiness("album")
	require.NoError(t, err)

	assert.NotEqual(t, genreID, albumID)

	seen := make(map[int64]bool, 100)
	for i := 0; i < 100; i++ {
		id, err := gen.NextIDForBusiness("genre")
		require.NoError(t, err)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package playqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-music/harmonia/internal/apperror"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

func TestFromSavedState(t *testing.T) {
	items := []domainvalue.AudioFileID{10, 11, 12}
	current := domainvalue.AudioFileID(11)

	q, err := FromSavedState(domainvalue.PlayQueueID(1), domainvalue.UserID(5), items, &current, 42_000, "harmonia-web")
	require.NoError(t, err)

	assert.Equal(t, items, q.Items)
	assert.Equal(t, current, *q.Current)
	assert.Equal(t, int64(42_000), q.PositionMillis)
	assert.Equal(t, "harmonia-web", q.ChangedBy)
	assert.False(t, q.ChangedAt.IsZero())
}

func TestFromSavedStateCopiesItems(t *testing.T) {
	items := []domainvalue.AudioFileID{10, 11}
	q, err := FromSavedState(domainvalue.PlayQueueID(1), domainvalue.UserID(5), items, nil, 0, "client")
	require.NoError(t, err)

	items[0] = 99
	assert.Equal(t, domainvalue.AudioFileID(10), q.Items[0])
}

func TestFromSavedStateValidation(t *testing.T) {
	stranger := domainvalue.AudioFileID(99)

	tests := []struct {
		name     string
		items    []domainvalue.AudioFileID
		current  *domainvalue.AudioFileID
		position int64
		wantErr  error
	}{
		{name: "empty queue", items: nil, position: 0, wantErr: apperror.ErrMissingParameter},
		{name: "negative position", items: []domainvalue.AudioFileID{1}, position: -1, wantErr: apperror.ErrInvalidOperation},
		{name: "current not queued", items: []domainvalue.AudioFileID{1, 2}, current: &stranger, wantErr: apperror.ErrInvalidOperation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromSavedState(domainvalue.PlayQueueID(1), domainvalue.UserID(5), tt.items, tt.current, tt.position, "client")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

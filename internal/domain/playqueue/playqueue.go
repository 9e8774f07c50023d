// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package playqueue is the PlayQueue aggregate: one user's saved playback
// position, replaced wholesale on each save rather than mutated in place.
// A user has at most one queue, so the repository is keyed by user.
package playqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/harmonia-music/harmonia/internal/apperror"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

// PlayQueue is the aggregate root.
type PlayQueue struct {
	ID     domainvalue.PlayQueueID
	UserID domainvalue.UserID

	// Items is the ordered list of queued audio files.
	Items []domainvalue.AudioFileID
	// Current is the audio file the client was playing when the queue was
	// saved, nil when nothing was playing.
	Current *domainvalue.AudioFileID
	// PositionMillis is the playback offset within Current.
	PositionMillis int64

	// ChangedBy is the client name that saved this state.
	ChangedBy string
	ChangedAt time.Time

	Version int64
}

// FromSavedState builds the queue a client just reported. The current item,
// when set, must be one of the queued items.
func FromSavedState(
	id domainvalue.PlayQueueID,
	userID domainvalue.UserID,
	items []domainvalue.AudioFileID,
	current *domainvalue.AudioFileID,
	positionMillis int64,
	changedBy string,
) (*PlayQueue, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: play queue must not be empty", apperror.ErrMissingParameter)
	}
	if positionMillis < 0 {
		return nil, fmt.Errorf("%w: position must not be negative", apperror.ErrInvalidOperation)
	}
	if current != nil {
		found := false
		for _, item := range items {
			if item == *current {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: current item %d is not in the queue", apperror.ErrInvalidOperation, *current)
		}
	}

	return &PlayQueue{
		ID:             id,
		UserID:         userID,
		Items:          append([]domainvalue.AudioFileID(nil), items...),
		Current:        current,
		PositionMillis: positionMillis,
		ChangedBy:      changedBy,
		ChangedAt:      time.Now().UTC(),
		Version:        0,
	}, nil
}

// WithVersion overrides the version, used when replacing a previously saved
// queue or rehydrating from storage.
func (q *PlayQueue) WithVersion(version int64) *PlayQueue {
	q.Version = version
	return q
}

// Repository is the persistence port for the PlayQueue aggregate.
type Repository interface {
	FindByUserID(ctx context.Context, userID domainvalue.UserID) (*PlayQueue, error)
	Save(ctx context.Context, queue *PlayQueue) (*PlayQueue, error)
	DeleteByUserID(ctx context.Context, userID domainvalue.UserID) error
}

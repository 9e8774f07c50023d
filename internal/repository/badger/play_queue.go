// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/harmonia-music/harmonia/internal/apperror"
	domainplayqueue "github.com/harmonia-music/harmonia/internal/domain/playqueue"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

// playQueueKey stores the queue under its owning user: a user has at most
// one saved queue, so no separate id index is needed.
func playQueueKey(userID domainvalue.UserID) []byte {
	return []byte(fmt.Sprintf("play_queue:%d", userID))
}

// PlayQueueRepository is a BadgerDB-backed implementation of
// domainplayqueue.Repository.
type PlayQueueRepository struct {
	db *badger.DB
}

// NewPlayQueueRepository constructs a PlayQueueRepository.
func NewPlayQueueRepository(db *badger.DB) *PlayQueueRepository {
	return &PlayQueueRepository{db: db}
}

// FindByUserID implements domainplayqueue.Repository.
func (r *PlayQueueRepository) FindByUserID(ctx context.Context, userID domainvalue.UserID) (*domainplayqueue.PlayQueue, error) {
	var queue domainplayqueue.PlayQueue
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, playQueueKey(userID), &queue)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &queue, nil
}

// Save implements domainplayqueue.Repository with the same
// optimistic-concurrency check every aggregate repository applies.
func (r *PlayQueueRepository) Save(ctx context.Context, queue *domainplayqueue.PlayQueue) (*domainplayqueue.PlayQueue, error) {
	err := r.db.Update(func(txn *badger.Txn) error {
		var existing domainplayqueue.PlayQueue
		err := getJSON(txn, playQueueKey(queue.UserID), &existing)
		switch {
		case errors.Is(err, ErrNotFound):
			if queue.Version != 0 {
				return apperror.NewVersionConflict(queue.Version)
			}
		case err != nil:
			return err
		default:
			if existing.Version != queue.Version-1 {
				return apperror.NewVersionConflict(queue.Version)
			}
		}
		return setJSON(txn, playQueueKey(queue.UserID), queue)
	})
	if errors.Is(err, badger.ErrConflict) {
		err = apperror.NewVersionConflict(queue.Version)
	}
	if err != nil {
		return nil, fmt.Errorf("save play queue for user %d: %w", queue.UserID, err)
	}
	return queue, nil
}

// DeleteByUserID implements domainplayqueue.Repository. Deleting an absent
// queue is a no-op.
func (r *PlayQueueRepository) DeleteByUserID(ctx context.Context, userID domainvalue.UserID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(playQueueKey(userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

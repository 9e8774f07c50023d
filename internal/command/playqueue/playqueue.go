// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package playqueue is the application service for a user's saved play
// queue. Each save replaces the previous queue wholesale; saving an empty
// queue clears it.
package playqueue

import (
	"context"
	"fmt"

	"github.com/harmonia-music/harmonia/internal/command/shared"
	domainplayqueue "github.com/harmonia-music/harmonia/internal/domain/playqueue"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

// SaveCmd replaces the user's saved play queue with the given state. An
// empty SongIDs list clears the queue entirely.
type SaveCmd struct {
	UserID    int64
	SongIDs   []int64
	CurrentID *int64
	// PositionMillis is the playback offset within the current song.
	PositionMillis int64
	// ChangedBy is the client name reporting this state.
	ChangedBy string
}

// Service is the PlayQueue aggregate's application service.
type Service struct {
	idGenerator shared.IDGenerator
	repository  domainplayqueue.Repository
}

// New constructs a Service.
func New(idGenerator shared.IDGenerator, repository domainplayqueue.Repository) *Service {
	return &Service{idGenerator: idGenerator, repository: repository}
}

// Save persists the queue state a client just reported, reusing the user's
// existing queue id (and continuing its version sequence) when one exists.
func (s *Service) Save(ctx context.Context, cmd SaveCmd) error {
	userID := domainvalue.UserID(cmd.UserID)

	if len(cmd.SongIDs) == 0 {
		if err := s.repository.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("clear play queue: %w", err)
		}
		return nil
	}

	existing, err := s.repository.FindByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find play queue: %w", err)
	}

	var queueID domainvalue.PlayQueueID
	if existing != nil {
		queueID = existing.ID
	} else {
		id, err := s.idGenerator.NextID()
		if err != nil {
			return fmt.Errorf("generate play queue id: %w", err)
		}
		queueID = domainvalue.PlayQueueID(id)
	}

	items := make([]domainvalue.AudioFileID, 0, len(cmd.SongIDs))
	for _, id := range cmd.SongIDs {
		items = append(items, domainvalue.AudioFileID(id))
	}
	var current *domainvalue.AudioFileID
	if cmd.CurrentID != nil {
		c := domainvalue.AudioFileID(*cmd.CurrentID)
		current = &c
	}

	queue, err := domainplayqueue.FromSavedState(queueID, userID, items, current, cmd.PositionMillis, cmd.ChangedBy)
	if err != nil {
		return err
	}
	if existing != nil {
		queue.WithVersion(existing.Version + 1)
	}

	if _, err := s.repository.Save(ctx, queue); err != nil {
		return fmt.Errorf("save play queue: %w", err)
	}
	return nil
}

// Get returns the user's saved queue, or nil when none is saved.
func (s *Service) Get(ctx context.Context, userID int64) (*domainplayqueue.PlayQueue, error) {
	queue, err := s.repository.FindByUserID(ctx, domainvalue.UserID(userID))
	if err != nil {
		return nil, fmt.Errorf("find play queue: %w", err)
	}
	return queue, nil
}

// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package playqueue

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-music/harmonia/internal/apperror"
	domainplayqueue "github.com/harmonia-music/harmonia/internal/domain/playqueue"
	"github.com/harmonia-music/harmonia/internal/domainvalue"
)

type fakeIDGenerator struct {
	mu   sync.Mutex
	next int64
}

func (g *fakeIDGenerator) NextID() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return g.next, nil
}

type fakeRepo struct {
	mu       sync.Mutex
	byUserID map[domainvalue.UserID]*domainplayqueue.PlayQueue
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byUserID: map[domainvalue.UserID]*domainplayqueue.PlayQueue{}}
}

func (r *fakeRepo) FindByUserID(ctx context.Context, userID domainvalue.UserID) (*domainplayqueue.PlayQueue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byUserID[userID], nil
}

func (r *fakeRepo) Save(ctx context.Context, queue *domainplayqueue.PlayQueue) (*domainplayqueue.PlayQueue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUserID[queue.UserID] = queue
	return queue, nil
}

func (r *fakeRepo) DeleteByUserID(ctx context.Context, userID domainvalue.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byUserID, userID)
	return nil
}

func TestSaveCreatesQueue(t *testing.T) {
	repo := newFakeRepo()
	svc := New(&fakeIDGenerator{}, repo)

	current := int64(11)
	err := svc.Save(context.Background(), SaveCmd{
		UserID:         5,
		SongIDs:        []int64{10, 11, 12},
		CurrentID:      &current,
		PositionMillis: 42_000,
		ChangedBy:      "harmonia-web",
	})
	require.NoError(t, err)

	queue, err := svc.Get(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, queue)
	assert.Equal(t, []domainvalue.AudioFileID{10, 11, 12}, queue.Items)
	assert.Equal(t, domainvalue.AudioFileID(11), *queue.Current)
	assert.Equal(t, int64(42_000), queue.PositionMillis)
	assert.Equal(t, int64(0), queue.Version)
}

func TestSaveReplacesQueueKeepingIDAndVersionSequence(t *testing.T) {
	repo := newFakeRepo()
	svc := New(&fakeIDGenerator{}, repo)

	require.NoError(t, svc.Save(context.Background(), SaveCmd{UserID: 5, SongIDs: []int64{10}, ChangedBy: "a"}))
	first, err := svc.Get(context.Background(), 5)
	require.NoError(t, err)

	require.NoError(t, svc.Save(context.Background(), SaveCmd{UserID: 5, SongIDs: []int64{20, 21}, ChangedBy: "b"}))
	second, err := svc.Get(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "existing queue id is reused")
	assert.Equal(t, first.Version+1, second.Version)
	assert.Equal(t, []domainvalue.AudioFileID{20, 21}, second.Items)
	assert.Equal(t, "b", second.ChangedBy)
}

func TestSaveEmptyClearsQueue(t *testing.T) {
	repo := newFakeRepo()
	svc := New(&fakeIDGenerator{}, repo)

	require.NoError(t, svc.Save(context.Background(), SaveCmd{UserID: 5, SongIDs: []int64{10}, ChangedBy: "a"}))
	require.NoError(t, svc.Save(context.Background(), SaveCmd{UserID: 5, ChangedBy: "a"}))

	queue, err := svc.Get(context.Background(), 5)
	require.NoError(t, err)
	assert.Nil(t, queue)
}

func TestSaveRejectsCurrentNotInQueue(t *testing.T) {
	svc := New(&fakeIDGenerator{}, newFakeRepo())

	current := int64(99)
	err := svc.Save(context.Background(), SaveCmd{UserID: 5, SongIDs: []int64{10}, CurrentID: &current})
	assert.ErrorIs(t, err, apperror.ErrInvalidOperation)
}

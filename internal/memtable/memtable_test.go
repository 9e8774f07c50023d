// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package memtable

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPersister struct {
	mu        sync.Mutex
	persisted map[int]int
	removed   []int
}

func newRecordingPersister() *recordingPersister {
	return &recordingPersister{persisted: make(map[int]int)}
}

func (p *recordingPersister) Persist(ctx context.Context, key int, value int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.persisted[key] += value
	return nil
}

func (p *recordingPersister) Remove(ctx context.Context, key int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removed = append(p.removed, key)
	return nil
}

func (p *recordingPersister) snapshot() map[int]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[int]int, len(p.persisted))
	for k, v := range p.persisted {
		out[k] = v
	}
	return out
}

func TestUpdateOrInsertAccumulatesBeforeFlush(t *testing.T) {
	persister := newRecordingPersister()
	ctx := NewContext[int, int]("test", 1000, time.Hour, persister)
	defer ctx.ShutdownGracefully(context.Background(), time.Second)

	merge := func(current int, exists bool) int { return current + 1 }
	for i := 0; i < 5; i++ {
		require.NoError(t, ctx.UpdateOrInsert(context.Background(), 7, merge))
	}

	flushed := ctx.ShutdownGracefully(context.Background(), time.Second)
	assert.Equal(t, 1, flushed)
	assert.Equal(t, 5, persister.snapshot()[7])
}

func TestSizeThresholdTriggersFlush(t *testing.T) {
	persister := newRecordingPersister()
	ctx := NewContext[int, int]("test", 2, time.Hour, persister)
	defer ctx.ShutdownGracefully(context.Background(), time.Second)

	merge := func(current int, exists bool) int { return current + 1 }
	require.NoError(t, ctx.UpdateOrInsert(context.Background(), 1, merge))
	require.NoError(t, ctx.UpdateOrInsert(context.Background(), 2, merge))

	require.Eventually(t, func() bool {
		return len(persister.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestShutdownGracefullyFlushesRemainder(t *testing.T) {
	persister := newRecordingPersister()
	ctx := NewContext[int, int]("test", 1000, time.Hour, persister)

	merge := func(current int, exists bool) int { return current + 3 }
	require.NoError(t, ctx.UpdateOrInsert(context.Background(), 9, merge))

	flushed := ctx.ShutdownGracefully(context.Background(), time.Second)
	assert.Equal(t, 1, flushed)
	assert.Equal(t, 3, persister.snapshot()[9])
}

// TestConcurrentUpdateOrInsertAndFlushPreservesEverySum races writers against
// a low size threshold so flushes are constantly swapping the active
// generation out from under them. Run with -race: if the swap ever let a
// writer land in a map a persist goroutine was concurrently ranging over,
// this would crash with "concurrent map iteration and map write" instead of
// just failing the final sum assertion below.
func TestConcurrentUpdateOrInsertAndFlushPreservesEverySum(t *testing.T) {
	persister := newRecordingPersister()
	ctx := NewContext[int, int]("test", 3, time.Millisecond, persister)

	const writers = 20
	const perWriter = 200
	merge := func(current int, exists bool) int { return current + 1 }

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				require.NoError(t, ctx.UpdateOrInsert(context.Background(), 0, merge))
			}
		}()
	}
	wg.Wait()

	ctx.ShutdownGracefully(context.Background(), time.Second)
	assert.Equal(t, writers*perWriter, persister.snapshot()[0])
}

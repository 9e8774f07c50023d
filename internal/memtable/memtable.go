// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package memtable buffers the signed-delta projection writes (song/album
// counts, location tallies) that one audio file ingest or a bulk scan can
// produce in bursts of dozens to thousands. Instead of one round-trip to the
// backing store per delta, updates accumulate in an in-memory table that is
// periodically swapped out and flushed asynchronously.
//
// The accumulation table itself carries no indexes: the repository this is
// modeled on defined an index hook on every buffered value but every
// concrete usage returned an empty index list, so this port keeps the plain
// key/value table and drops the unused indexing machinery.
package memtable

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Persister drains a flushed batch of key/value pairs into permanent
// storage. Persist must accumulate (add the batch's deltas to whatever is
// already stored), not replace, because the same key can reach Persist again
// in a later batch once the active table has been swapped out.
type Persister[K comparable, V any] interface {
	Persist(ctx context.Context, key K, value V) error
	Remove(ctx context.Context, key K) error
}

// Context owns the active table, the size and time flush triggers, and the
// persister. One Context exists per projection kind (genre stats, album
// location, ...).
//
// A single mutex guards the active map directly: the read-modify-write done
// by UpdateOrInsert and the swap-out done by a flush are both performed
// while holding it, so the decision "this update crossed the threshold" and
// the detachment of the old map from c.active happen as one atomic step. A
// map handed to a persist goroutine is never written to again afterwards,
// since c.active is repointed at a brand new map under the same lock before
// the old one is released to the goroutine — there is no window where a
// late writer can still reach a map a persist goroutine is concurrently
// ranging over.
type Context[K comparable, V any] struct {
	name          string
	threshold     int
	flushInterval time.Duration
	persister     Persister[K, V]

	mu     sync.Mutex
	active map[K]V

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewContext constructs a Context and starts its background flush timer.
// Callers must call Close (or ShutdownGracefully) to stop the timer.
func NewContext[K comparable, V any](name string, threshold int, flushInterval time.Duration, persister Persister[K, V]) *Context[K, V] {
	c := &Context[K, V]{
		name:          name,
		threshold:     threshold,
		flushInterval: flushInterval,
		persister:     persister,
		active:        make(map[K]V),
		stopCh:        make(chan struct{}),
	}
	go c.runFlushTimer()
	return c
}

func (c *Context[K, V]) runFlushTimer() {
	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.flushIfNonEmpty(context.Background())
		case <-c.stopCh:
			return
		}
	}
}

// UpdateOrInsert applies merge to the current value for key (the zero value
// and false if key is absent). The read, the merge, and the size-triggered
// swap-out all happen under the same lock, so a writer can never land in a
// map generation that has already been detached for persisting.
func (c *Context[K, V]) UpdateOrInsert(ctx context.Context, key K, merge func(current V, exists bool) V) error {
	c.mu.Lock()
	current, exists := c.active[key]
	c.active[key] = merge(current, exists)

	var batch map[K]V
	if len(c.active) >= c.threshold {
		batch = c.active
		c.active = make(map[K]V)
	}
	c.mu.Unlock()

	if batch != nil {
		c.spawnPersist(ctx, batch)
	}
	return nil
}

// flushIfNonEmpty swaps the active map for an empty one and persists the old
// generation in the background, unless it is already empty.
func (c *Context[K, V]) flushIfNonEmpty(ctx context.Context) int {
	c.mu.Lock()
	if len(c.active) == 0 {
		c.mu.Unlock()
		return 0
	}
	batch := c.active
	c.active = make(map[K]V)
	c.mu.Unlock()

	c.spawnPersist(ctx, batch)
	return len(batch)
}

// spawnPersist hands a detached map generation to a background goroutine.
// The caller must not retain or mutate batch after calling this: ownership
// transfers entirely to the goroutine, which is what makes the unsynchronized
// range below safe.
func (c *Context[K, V]) spawnPersist(ctx context.Context, batch map[K]V) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for key, value := range batch {
			if err := c.persister.Persist(ctx, key, value); err != nil {
				log.Error().Err(err).Str("memtable", c.name).Msg("memtable: failed to persist flushed batch entry")
			}
		}
	}()
}

// ShutdownGracefully stops the flush timer, performs one final flush, and
// waits up to wait for any in-flight persist goroutines (including the one
// this call just started) to finish. It returns the number of entries the
// final flush handed off, or 0 if there was nothing pending.
func (c *Context[K, V]) ShutdownGracefully(ctx context.Context, wait time.Duration) int {
	c.stopOnce.Do(func() { close(c.stopCh) })

	flushed := c.flushIfNonEmpty(ctx)

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(wait):
		log.Warn().Str("memtable", c.name).Dur("waited", wait).Msg("memtable: shutdown wait elapsed before all flushes completed")
	}
	return flushed
}

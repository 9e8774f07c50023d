// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package idgen generates globally unique, roughly time-sortable int64
// aggregate identifiers using a Snowflake-style layout: 41 bits of
// millisecond timestamp since a custom epoch, 10 bits of node id, and 12
// bits of per-millisecond sequence.
package idgen

import (
	"fmt"
	"sync"
	"time"
)

const (
	nodeIDBits     = 10
	sequenceBits   = 12
	maxNodeID      = (1 << nodeIDBits) - 1
	maxSequence    = (1 << sequenceBits) - 1
	timestampShift = nodeIDBits + sequenceBits
	nodeIDShift    = sequenceBits
	// epochMillis is 2021-01-01T00:00:00Z, matched to the original
	// implementation so ids generated by either system sort consistently.
	epochMillis = 1609459200000
)

// Generator produces unique int64 ids, optionally namespaced by a business
// key so unrelated id sequences (e.g. "album" vs "genre") never collide on
// sequence rollover even when generated in the same millisecond.
type Generator struct {
	nodeID int64

	mu            sync.Mutex
	lastTimestamp int64
	sequence      int64

	businessMu sync.Mutex
	business   map[string]businessState
}

type businessState struct {
	lastTimestamp int64
	sequence      int64
}

// New constructs a Generator for the given node id. nodeID must fit in 10
// bits (0-1023); it should be unique per running process when multiple
// processes generate ids concurrently.
func New(nodeID int64) (*Generator, error) {
	if nodeID < 0 || nodeID > maxNodeID {
		return nil, fmt.Errorf("idgen: node id must be between 0 and %d, got %d", maxNodeID, nodeID)
	}
	return &Generator{
		nodeID:   nodeID,
		business: make(map[string]businessState),
	}, nil
}

func currentMillis() int64 {
	return time.Now().UnixMilli()
}

func assemble(timestamp, nodeID, sequence int64) int64 {
	return ((timestamp - epochMillis) << timestampShift) | (nodeID << nodeIDShift) | sequence
}

// NextID generates the next id from the generator's default sequence.
func (g *Generator) NextID() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	timestamp := currentMillis()
	if timestamp < g.lastTimestamp {
		return 0, fmt.Errorf("idgen: clock moved backwards, refusing to generate id")
	}

	if timestamp == g.lastTimestamp {
		g.sequence = (g.sequence + 1) & maxSequence
		if g.sequence == 0 {
			timestamp = waitNextMillis(g.lastTimestamp)
		}
	} else {
		g.sequence = 0
	}

	g.lastTimestamp = timestamp
	return assemble(timestamp, g.nodeID, g.sequence), nil
}

// NextIDForBusiness generates the next id within the named sequence,
// isolating its rollover bookkeeping from NextID and every other business key.
func (g *Generator) NextIDForBusiness(businessKey string) (int64, error) {
	g.businessMu.Lock()
	defer g.businessMu.Unlock()

	timestamp := currentMillis()
	state := g.business[businessKey]

	if timestamp < state.lastTimestamp {
		return 0, fmt.Errorf("idgen: clock moved backwards, refusing to generate id")
	}

	if timestamp == state.lastTimestamp {
		state.sequence = (state.sequence + 1) & maxSequence
		if state.sequence == 0 {
			timestamp = waitNextMillis(state.lastTimestamp)
		}
	} else {
		state.sequence = 0
	}

	state.lastTimestamp = timestamp
	g.business[businessKey] = state
	return assemble(timestamp, g.nodeID, state.sequence), nil
}

func waitNextMillis(last int64) int64 {
	timestamp := currentMillis()
	for timestamp <= last {
		time.Sleep(100 * time.Microsecond)
		timestamp = currentMillis()
	}
	return timestamp
}

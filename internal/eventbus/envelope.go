// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package eventbus is the in-process publish/subscribe mechanism that wires
// domain events raised by aggregates to coordinators and projectors.
// Handlers are registered per Go type: Subscribe[E] attaches a typed
// Handler[E], and Publish dispatches an EventEnvelope[E] to every handler
// registered for that E.
package eventbus

import (
	"time"

	"github.com/google/uuid"
)

// EventEnvelope carries a domain event payload plus the metadata needed to
// trace it back through a causal chain of events.
type EventEnvelope[T any] struct {
	ID            uuid.UUID
	AggregateID   int64
	Version       int64
	Timestamp     time.Time
	Payload       T
	CorrelationID uuid.UUID
	CausationID   uuid.UUID
}

// NewEnvelope wraps a domain event payload with a fresh event id and the
// given aggregate id, version, and causal metadata. Event payload structs
// carry their own AggregateID/Version as plain fields (Go cannot give a
// struct both a Version field and a Version() method), so callers pass them
// explicitly rather than through an interface.
func NewEnvelope[T any](aggregateID, version int64, payload T, correlationID, causationID uuid.UUID) EventEnvelope[T] {
	return EventEnvelope[T]{
		ID:            uuid.New(),
		AggregateID:   aggregateID,
		Version:       version,
		Timestamp:     time.Now().UTC(),
		Payload:       payload,
		CorrelationID: correlationID,
		CausationID:   causationID,
	}
}

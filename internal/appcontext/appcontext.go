// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package appcontext carries the event/correlation/causation identifiers
// that tie a chain of derived events back to the request (or scan tick)
// that started it, independent of Go's context.Context (which carries
// deadlines and cancellation, not domain identity).
package appcontext

import "github.com/google/uuid"

// AppContext identifies the event currently being processed, the
// correlation id shared by every event descended from the same originating
// action, and the id of the event that directly caused this one.
type AppContext struct {
	EventID       uuid.UUID
	CorrelationID uuid.UUID
	CausationID   uuid.UUID
}

// New starts a fresh causal chain: a new event id, a new correlation id, and
// a causation id equal to its own event id (it has no parent).
func New() AppContext {
	eventID := uuid.New()
	return AppContext{
		EventID:       eventID,
		CorrelationID: uuid.New(),
		CausationID:   eventID,
	}
}

// Derive produces the AppContext for an event caused by the current one: a
// new event id, the same correlation id (the chain continues), and a
// causation id equal to the parent's event id.
func (c AppContext) Derive() AppContext {
	return AppContext{
		EventID:       uuid.New(),
		CorrelationID: c.CorrelationID,
		CausationID:   c.EventID,
	}
}

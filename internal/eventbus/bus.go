// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package eventbus

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/harmonia-music/harmonia/internal/metrics"
)

// Handler processes every event of type E published to the bus.
type Handler[E any] interface {
	Handle(ctx context.Context, env EventEnvelope[E]) error
}

// HandlerFunc adapts a plain function to the Handler[E] interface.
type HandlerFunc[E any] func(ctx context.Context, env EventEnvelope[E]) error

// Handle implements Handler[E].
func (f HandlerFunc[E]) Handle(ctx context.Context, env EventEnvelope[E]) error {
	return f(ctx, env)
}

// erasedHandler is what the bus actually stores: a handler with its event
// type erased to interface{}, bridging back to the typed Handler[E] via a
// closure captured at Subscribe time.
type erasedHandler struct {
	name   string
	invoke func(ctx context.Context, env any) error
}

// Mode controls whether Publish waits for handlers to finish.
type Mode int

const (
	// ModeSynchronous waits for every handler to return before Publish returns.
	ModeSynchronous Mode = iota
	// ModeFireAndForget dispatches to handlers in a background goroutine and
	// returns immediately.
	ModeFireAndForget
)

// Bus is the in-memory event bus. It is safe for concurrent use: handlers
// may be registered while events are being published.
type Bus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type][]erasedHandler
	mode     Mode
}

// New constructs a Bus in the given dispatch mode.
func New(mode Mode) *Bus {
	return &Bus{
		handlers: make(map[reflect.Type][]erasedHandler),
		mode:     mode,
	}
}

// Subscribe registers a typed handler for event type E. It is a package
// function rather than a Bus method because Go methods cannot introduce
// their own type parameters.
func Subscribe[E any](b *Bus, name string, handler Handler[E]) {
	var zero E
	t := reflect.TypeOf(zero)

	wrapped := erasedHandler{
		name: name,
		invoke: func(ctx context.Context, env any) error {
			typed, ok := env.(EventEnvelope[E])
			if !ok {
				return nil
			}
			return handler.Handle(ctx, typed)
		},
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], wrapped)
}

// Publish dispatches env to every handler registered for type E. In
// ModeSynchronous it waits for all handlers to return and returns the first
// error (after invoking the rest). In ModeFireAndForget it returns nil
// immediately and runs handlers in a background goroutine, logging any error.
func Publish[E any](ctx context.Context, b *Bus, env EventEnvelope[E]) error {
	var zero E
	t := reflect.TypeOf(zero)
	eventType := t.String()

	b.mu.RLock()
	handlers := append([]erasedHandler(nil), b.handlers[t]...)
	b.mu.RUnlock()

	metrics.RecordEventPublished(eventType)

	if len(handlers) == 0 {
		return nil
	}

	dispatch := func() error {
		var firstErr error
		for _, h := range handlers {
			start := time.Now()
			err := h.invoke(ctx, env)
			metrics.RecordEventHandled(eventType, h.name, time.Since(start))
			if err != nil {
				metrics.RecordHandlerError(eventType, h.name)
				log.Error().Err(err).Str("event_type", eventType).Str("handler", h.name).Msg("event handler failed")
				if firstErr == nil {
					firstErr = err
				}
			}
		}
		return firstErr
	}

	if b.mode == ModeFireAndForget {
		go func() {
			if err := dispatch(); err != nil {
				log.Error().Err(err).Str("event_type", eventType).Msg("fire-and-forget dispatch failed")
			}
		}()
		return nil
	}

	return dispatch()
}

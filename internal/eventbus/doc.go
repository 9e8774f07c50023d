// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package eventbus implements an in-process, type-keyed publish/subscribe bus.

# Overview

Handlers are registered per Go type with Subscribe[E], and Publish[E]
dispatches an EventEnvelope[E] to every handler registered for that E. Events
are matched by reflect.Type rather than a string topic name, so a typo in an
event name cannot silently create an unreachable subscription.

# Dispatch Modes

	bus := eventbus.New(eventbus.ModeSynchronous)   // Publish blocks until all handlers return
	bus := eventbus.New(eventbus.ModeFireAndForget) // Publish returns immediately

The coordinators in internal/coordinator accumulate events per correlation
id and bind once every piece has arrived, in whatever order, so they work
under either mode; ModeFireAndForget returns control to the producer sooner.

# Usage Example

	bus := eventbus.New(eventbus.ModeSynchronous)

	eventbus.Subscribe[AlbumCreated](bus, "album-stats-projector", eventbus.HandlerFunc[AlbumCreated](
	    func(ctx context.Context, env eventbus.EventEnvelope[AlbumCreated]) error {
	        return projectAlbumStats(ctx, env.Payload)
	    },
	))

	err := eventbus.Publish(ctx, bus, eventbus.NewEnvelope(albumID, version, AlbumCreated{...}, correlationID, causationID))

# Thread Safety

Bus is safe for concurrent Subscribe and Publish calls from any goroutine.
*/
package eventbus

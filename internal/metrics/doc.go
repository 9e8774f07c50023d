// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package metrics provides Prometheus metrics collection and export for
observability of the ingestion and projection engine.

# Overview

The package instruments:
  - Event bus throughput (published, handled, handler errors, handler duration)
  - Coordinator binding activity and pending correlation cache size
  - Memtable buffer depth and flush latency, per projection
  - Library scan pass duration and file discovery/removal counts

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format by
whichever process registers promhttp.Handler():

	curl http://localhost:9090/metrics

# Usage Example

	func (b *Bus) Publish(ctx context.Context, env Envelope) error {
	    metrics.RecordEventPublished(env.EventType())
	    return b.dispatch(ctx, env)
	}

	func (h *albumProjector) Handle(ctx context.Context, env Envelope) error {
	    start := time.Now()
	    err := h.handle(ctx, env)
	    metrics.RecordEventHandled(env.EventType(), "album_projector", time.Since(start))
	    if err != nil {
	        metrics.RecordHandlerError(env.EventType(), "album_projector")
	    }
	    return err
	}

# Thread Safety

All metric recording functions are thread-safe; the underlying Prometheus
client library handles synchronization internally.

# Cardinality Management

Event types and handler names are drawn from a small fixed set of
constants defined alongside each aggregate and projector, so none of
these metrics have unbounded label cardinality.
*/
package metrics

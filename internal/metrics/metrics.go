// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ingestion and projection engine:
// - event bus throughput and handler errors
// - coordinator binding activity
// - memtable buffer depth and flush latency
// - scan service activity

var (
	// Event Bus Metrics
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harmonia_events_published_total",
			Help: "Total number of events published to the bus, by event type",
		},
		[]string{"event_type"},
	)

	EventsHandledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harmonia_events_handled_total",
			Help: "Total number of event handler invocations, by event type and handler",
		},
		[]string{"event_type", "handler"},
	)

	HandlerErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harmonia_handler_errors_total",
			Help: "Total number of event handler errors, by event type and handler",
		},
		[]string{"event_type", "handler"},
	)

	HandlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "harmonia_handler_duration_seconds",
			Help:    "Duration of event handler invocations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"event_type", "handler"},
	)

	// Coordinator Metrics
	CoordinatorBindingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harmonia_coordinator_bindings_total",
			Help: "Total number of bindings fired by a coordinator",
		},
		[]string{"coordinator"},
	)

	CoordinatorCacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "harmonia_coordinator_cache_entries",
			Help: "Current number of pending correlation entries held by a coordinator",
		},
		[]string{"coordinator"},
	)

	// Memtable Metrics
	MemtableBufferDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "harmonia_memtable_buffer_depth",
			Help: "Current number of buffered entries in a memtable, by projection",
		},
		[]string{"projection"},
	)

	MemtableFlushDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "harmonia_memtable_flush_duration_seconds",
			Help:    "Duration of memtable flush operations in seconds, by projection",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"projection"},
	)

	MemtableFlushesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harmonia_memtable_flushes_total",
			Help: "Total number of memtable flushes, by projection and trigger",
		},
		[]string{"projection", "trigger"}, // trigger: "size", "interval", "shutdown"
	)

	// Scan Service Metrics
	ScanRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harmonia_scan_runs_total",
			Help: "Total number of library scan passes, by library and trigger",
		},
		[]string{"library", "trigger"}, // trigger: "poll", "watch"
	)

	ScanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "harmonia_scan_duration_seconds",
			Help:    "Duration of a library scan pass in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"library"},
	)

	ScanFilesDiscoveredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harmonia_scan_files_discovered_total",
			Help: "Total number of new files discovered during a scan, by library",
		},
		[]string{"library"},
	)

	ScanFilesRemovedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harmonia_scan_files_removed_total",
			Help: "Total number of files removed during a scan, by library",
		},
		[]string{"library"},
	)
)

// RecordEventPublished increments the published-event counter for eventType.
func RecordEventPublished(eventType string) {
	EventsPublishedTotal.WithLabelValues(eventType).Inc()
}

// RecordEventHandled increments the handled-event counter and observes the
// handler's duration for eventType/handler.
func RecordEventHandled(eventType, handler string, duration time.Duration) {
	EventsHandledTotal.WithLabelValues(eventType, handler).Inc()
	HandlerDuration.WithLabelValues(eventType, handler).Observe(duration.Seconds())
}

// RecordHandlerError increments the handler error counter for eventType/handler.
func RecordHandlerError(eventType, handler string) {
	HandlerErrorsTotal.WithLabelValues(eventType, handler).Inc()
}

// RecordCoordinatorBinding increments the binding counter for a coordinator.
func RecordCoordinatorBinding(coordinator string) {
	CoordinatorBindingsTotal.WithLabelValues(coordinator).Inc()
}

// SetCoordinatorCacheEntries reports the current pending-entry count for a coordinator.
func SetCoordinatorCacheEntries(coordinator string, count int) {
	CoordinatorCacheEntries.WithLabelValues(coordinator).Set(float64(count))
}

// SetMemtableBufferDepth reports the current buffered-entry count for a projection's memtable.
func SetMemtableBufferDepth(projection string, depth int) {
	MemtableBufferDepth.WithLabelValues(projection).Set(float64(depth))
}

// RecordMemtableFlush records a completed flush's duration and trigger for a projection.
func RecordMemtableFlush(projection, trigger string, duration time.Duration) {
	MemtableFlushesTotal.WithLabelValues(projection, trigger).Inc()
	MemtableFlushDuration.WithLabelValues(projection).Observe(duration.Seconds())
}

// RecordScanRun records a completed scan pass for a library.
func RecordScanRun(library, trigger string, duration time.Duration, discovered, removed int) {
	ScanRunsTotal.WithLabelValues(library, trigger).Inc()
	ScanDuration.WithLabelValues(library).Observe(duration.Seconds())
	if discovered > 0 {
		ScanFilesDiscoveredTotal.WithLabelValues(library).Add(float64(discovered))
	}
	if removed > 0 {
		ScanFilesRemovedTotal.WithLabelValues(library).Add(float64(removed))
	}
}

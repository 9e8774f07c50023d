// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package supervisor provides process supervision for the ingestion and
projection engine using suture v4.

This package implements a hierarchical supervisor tree that manages the
lifecycle of all long-running services in the engine. It provides
Erlang/OTP-style supervision with automatic restart, failure isolation,
and graceful shutdown.

# Overview

The supervisor tree carries the services that own a long-running loop:

	RootSupervisor ("harmonia")
	└── DataSupervisor ("data-layer")
	    ├── ScanPoller (poll loop over every configured library)
	    └── Watcher (fsnotify live trigger, one per watched library)

Event bus consumers — coordinators, projectors, and fanout handlers — are
plain subscriptions with no loop of their own, so they have nothing to
supervise: a failing handler logs and returns, and the memtables manage
their own flush goroutines.

This hierarchy ensures that:
  - A crashed scan or watch loop is restarted with backoff
  - A child supervisor failure doesn't take down the root

# Key Features

Automatic Restart:
  - Crashed services are automatically restarted
  - A fixed FailureBackoff pause past the threshold prevents restart storms
  - Configurable failure thresholds and decay rates

Failure Isolation:
  - Child supervisor failures don't propagate upward
  - The data layer has its own failure counting, separate from the root

Graceful Shutdown:
  - Context cancellation triggers orderly shutdown
  - Configurable shutdown timeout per service
  - UnstoppedServiceReport for debugging hangs

Structured Logging:
  - Integration with slog for structured events
  - Logs service starts, stops, failures, and restarts
  - Event hooks via sutureslog adapter

# Usage Example

Basic setup in main.go:

	import (
	    "log/slog"
	    "github.com/harmonia-music/harmonia/internal/supervisor"
	)

	func main() {
	    logger := slog.Default()
	    config := supervisor.DefaultTreeConfig()

	    tree, err := supervisor.NewSupervisorTree(logger, config)
	    if err != nil {
	        log.Fatal(err)
	    }

	    tree.AddDataService(scanPoller)
	    tree.AddDataService(libraryWatcher)

	    ctx := context.Background()
	    if err := tree.Serve(ctx); err != nil {
	        log.Printf("supervisor stopped: %v", err)
	    }
	}

Background operation:

	errChan := tree.ServeBackground(ctx)
	// ... other setup ...
	if err := <-errChan; err != nil {
	    log.Printf("supervisor error: %v", err)
	}

# Configuration

The TreeConfig controls restart behavior:

	config := supervisor.TreeConfig{
	    FailureThreshold: 5.0,
	    FailureDecay:     30.0,
	    FailureBackoff:   15 * time.Second,
	    ShutdownTimeout:  10 * time.Second,
	}

Default values match suture's production-ready defaults.

# Failure Handling

The supervisor uses a failure counter with exponential decay:

 1. Each service failure increments the counter
 2. Counter decays exponentially over time (FailureDecay seconds)
 3. When counter exceeds FailureThreshold, supervisor enters backoff
 4. During backoff, restarts are delayed by FailureBackoff duration

# Service Interface

All services must implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return behavior:
  - Return nil: service stopped cleanly, will not be restarted
  - Return error: service crashed, will be restarted
  - Context canceled: shutdown requested, return promptly

# Debugging Shutdown Issues

If services don't stop within the timeout:

	report, err := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    log.Printf("service didn't stop: %v", svc)
	}

# Thread Safety

The SupervisorTree is safe for concurrent use: services can be added
from any goroutine, and multiple services can crash simultaneously.

# See Also

  - github.com/thejerf/suture/v4: Underlying library
*/
package supervisor

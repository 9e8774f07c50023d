// Harmonia - music library ingestion and projection engine
// Copyright 2026 The Harmonia Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package scan

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Poller is the suture.Service that drives the scan Service on a fixed
// interval, scanning up to concurrency libraries at once. It is added to
// the supervisor tree's data layer alongside any per-library Watchers.
type Poller struct {
	service     *Service
	targets     []LibraryTarget
	interval    time.Duration
	concurrency int
	fullScan    bool
}

// NewPoller constructs a Poller over targets, polling every interval with
// at most concurrency libraries scanned in parallel. With fullScan set,
// every pass re-emits FileAdded for every discovered file rather than only
// new or changed ones.
func NewPoller(service *Service, targets []LibraryTarget, interval time.Duration, concurrency int, fullScan bool) *Poller {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Poller{service: service, targets: targets, interval: interval, concurrency: concurrency, fullScan: fullScan}
}

// Serve implements suture.Service: it scans every target immediately, then
// again on every tick, until ctx is canceled.
func (p *Poller) Serve(ctx context.Context) error {
	p.runOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

// String implements fmt.Stringer for suture's logging.
func (p *Poller) String() string {
	return "library-scan-poller"
}

func (p *Poller) runOnce(ctx context.Context) {
	sem := make(chan struct{}, p.concurrency)
	done := make(chan struct{}, len(p.targets))

	for _, target := range p.targets {
		target := target
		sem <- struct{}{}
		go func() {
			defer func() { <-sem; done <- struct{}{} }()
			if err := p.service.ScanLibrary(ctx, target, "poll", p.fullScan); err != nil {
				log.Error().Err(err).Int64("library_id", int64(target.ID)).Msg("scan: poll pass failed")
			}
		}()
	}

	for range p.targets {
		<-done
	}
}

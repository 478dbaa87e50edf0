// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package tracker

import (
	"context"
	"time"

	"github.com/veilscan/veilscan/internal/logging"
	"github.com/veilscan/veilscan/internal/metrics"
)

// EvictionLoop periodically removes expired observations from a Store so
// that stale clients do not occupy capacity between requests. It runs as a
// supervised service.
type EvictionLoop struct {
	store    *Store
	interval time.Duration
}

// NewEvictionLoop builds an eviction loop. A non-positive interval defaults
// to one minute.
func NewEvictionLoop(store *Store, interval time.Duration) *EvictionLoop {
	if interval <= 0 {
		interval = time.Minute
	}
	return &EvictionLoop{store: store, interval: interval}
}

// String identifies the service in supervisor logs.
func (l *EvictionLoop) String() string {
	return "tracker-eviction"
}

// Serve runs the loop until ctx is canceled.
func (l *EvictionLoop) Serve(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			evicted := l.store.EvictExpired()
			metrics.TrackerEvictions.Add(float64(evicted))
			metrics.TrackerSize.Set(float64(l.store.Len()))
			if evicted > 0 {
				logging.Debug().
					Int("evicted", evicted).
					Int("remaining", l.store.Len()).
					Msg("Evicted expired client observations")
			}
		}
	}
}

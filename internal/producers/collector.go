// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package producers

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/veilscan/veilscan/internal/evidence"
	"github.com/veilscan/veilscan/internal/logging"
	"github.com/veilscan/veilscan/internal/metrics"
)

// Collector runs all five evidence producers concurrently and assembles one
// bundle per detection run. Every producer is individually fallible: a
// failure or timeout substitutes the neutral sentinel for that category and
// the run continues. Collect never fails.
type Collector struct {
	ip          IPResolver
	webrtc      WebRTCAnalyzer
	fingerprint FingerprintAnalyzer
	location    LocationChecker
	bot         BotDetector

	timeout time.Duration
}

// NewCollector assembles the orchestrator. Any producer may be nil; its
// evidence category then stays at the neutral sentinel.
func NewCollector(
	ip IPResolver,
	webrtc WebRTCAnalyzer,
	fingerprint FingerprintAnalyzer,
	location LocationChecker,
	bot BotDetector,
	timeout time.Duration,
) *Collector {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Collector{
		ip:          ip,
		webrtc:      webrtc,
		fingerprint: fingerprint,
		location:    location,
		bot:         bot,
		timeout:     timeout,
	}
}

// Collect starts all producers simultaneously and waits until every one has
// settled. Each goroutine writes a distinct bundle field, so no locking is
// needed.
func (c *Collector) Collect(ctx context.Context, req Request) evidence.Bundle {
	bundle := evidence.NeutralBundle()

	var g errgroup.Group

	if c.ip != nil {
		g.Go(func() error {
			bundle.IPAnalysis = runProducer(ctx, "ip", c.timeout, bundle.IPAnalysis,
				func(ctx context.Context) (evidence.IPAnalysis, error) {
					return c.ip.Resolve(ctx, req.ClientIP)
				})
			return nil
		})
	}
	if c.webrtc != nil {
		g.Go(func() error {
			bundle.WebRTCLeak = runProducer(ctx, "webrtc", c.timeout, bundle.WebRTCLeak,
				func(ctx context.Context) (evidence.WebRTCLeak, error) {
					return c.webrtc.Analyze(ctx, req)
				})
			return nil
		})
	}
	if c.fingerprint != nil {
		g.Go(func() error {
			bundle.Fingerprint = runProducer(ctx, "fingerprint", c.timeout, bundle.Fingerprint,
				func(ctx context.Context) (evidence.Fingerprint, error) {
					return c.fingerprint.Analyze(ctx, req)
				})
			return nil
		})
	}
	if c.location != nil {
		g.Go(func() error {
			bundle.LocationMismatch = runProducer(ctx, "location", c.timeout, bundle.LocationMismatch,
				func(ctx context.Context) (evidence.LocationMismatch, error) {
					return c.location.Check(ctx, req)
				})
			return nil
		})
	}
	if c.bot != nil {
		g.Go(func() error {
			bundle.BotDetection = runProducer(ctx, "bot", c.timeout, bundle.BotDetection,
				func(ctx context.Context) (evidence.BotDetection, error) {
					return c.bot.Detect(ctx, req)
				})
			return nil
		})
	}

	_ = g.Wait()

	return bundle
}

// runProducer invokes one producer with its own bounded timeout. On error,
// timeout, or panic the neutral value is returned and the failure is
// recorded; nothing propagates to the caller.
func runProducer[T any](
	ctx context.Context,
	name string,
	timeout time.Duration,
	neutral T,
	fn func(context.Context) (T, error),
) T {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	type outcome struct {
		value T
		err   error
	}
	ch := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("producer panic: %v", r)}
			}
		}()
		v, err := fn(ctx)
		ch <- outcome{value: v, err: err}
	}()

	select {
	case <-ctx.Done():
		metrics.RecordProducer(name, time.Since(start), ctx.Err())
		logging.Warn().
			Str("producer", name).
			Dur("timeout", timeout).
			Msg("Evidence producer timed out, using neutral evidence")
		return neutral
	case out := <-ch:
		metrics.RecordProducer(name, time.Since(start), out.err)
		if out.err != nil {
			logging.Warn().
				Err(out.err).
				Str("producer", name).
				Msg("Evidence producer failed, using neutral evidence")
			return neutral
		}
		return out.value
	}
}

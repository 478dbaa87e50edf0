// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

// Package detection orchestrates a single detection run: collect evidence
// from the producers, score it, hand the record to the asynchronous verdict
// sink, and broadcast the outcome to websocket subscribers.
//
// The sink and broadcaster are both fire-and-forget: a slow or failing
// storage layer never delays the HTTP response.
package detection

import (
	"context"
	"time"

	"github.com/veilscan/veilscan/internal/evidence"
	"github.com/veilscan/veilscan/internal/metrics"
	"github.com/veilscan/veilscan/internal/producers"
	"github.com/veilscan/veilscan/internal/scoring"
	"github.com/veilscan/veilscan/internal/verdictlog"
)

// Sink receives completed detection records for persistence. Write must
// never block the caller.
type Sink interface {
	Write(rec verdictlog.Record)
}

// Broadcaster pushes completed verdicts to live subscribers. BroadcastVerdict
// must never block the caller.
type Broadcaster interface {
	BroadcastVerdict(data interface{})
}

// Result is the outcome of one detection run.
type Result struct {
	Verdict    scoring.Verdict `json:"verdict"`
	Bundle     evidence.Bundle `json:"evidence"`
	DurationMs int64           `json:"duration_ms"`
}

// Service runs detections end to end.
type Service struct {
	collector   *producers.Collector
	engine      *scoring.Engine
	sink        Sink
	broadcaster Broadcaster
}

// NewService builds a detection service. The sink and broadcaster may be nil,
// in which case verdicts are neither persisted nor broadcast.
func NewService(collector *producers.Collector, engine *scoring.Engine, sink Sink, broadcaster Broadcaster) *Service {
	return &Service{
		collector:   collector,
		engine:      engine,
		sink:        sink,
		broadcaster: broadcaster,
	}
}

// Detect collects evidence for the request, scores it, and returns the
// verdict together with the evidence it was computed from. Detect always
// returns a usable result: producers that fail or time out contribute
// neutral evidence rather than an error.
func (s *Service) Detect(ctx context.Context, req producers.Request) Result {
	start := time.Now()

	bundle := s.collector.Collect(ctx, req)
	verdict := s.engine.Score(bundle)
	elapsed := time.Since(start)

	result := Result{
		Verdict:    verdict,
		Bundle:     bundle,
		DurationMs: elapsed.Milliseconds(),
	}

	if s.sink != nil {
		s.sink.Write(verdictlog.Record{
			Verdict:    verdict,
			Bundle:     bundle,
			DurationMs: result.DurationMs,
			UserAgent:  req.UserAgent,
			ClientIP:   req.ClientIP,
		})
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastVerdict(result)
	}

	metrics.RecordDetection(verdict.IsVPNDetected, verdict.ConfidenceScore, elapsed)

	return result
}

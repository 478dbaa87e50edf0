// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package verdictlog

import (
	"context"

	"github.com/veilscan/veilscan/internal/logging"
	"github.com/veilscan/veilscan/internal/metrics"
)

// writeQueueSize bounds the pending-write queue. Detection latency must
// never depend on storage, so a full queue drops the record instead of
// blocking.
const writeQueueSize = 1024

// AsyncWriter decouples the detection path from verdict persistence.
// Write enqueues and returns immediately; a single worker goroutine drains
// the queue. Persistence failures are counted and logged locally, never
// surfaced to the detection caller.
//
// It implements suture.Service via Serve.
type AsyncWriter struct {
	store *Store
	queue chan Record
}

// NewAsyncWriter creates a writer over the given store.
func NewAsyncWriter(store *Store) *AsyncWriter {
	return &AsyncWriter{
		store: store,
		queue: make(chan Record, writeQueueSize),
	}
}

// String identifies the service in supervisor logs.
func (w *AsyncWriter) String() string {
	return "verdict-writer"
}

// Write enqueues a record without blocking. The record is dropped when the
// queue is full.
func (w *AsyncWriter) Write(rec Record) {
	select {
	case w.queue <- rec:
	default:
		metrics.VerdictLogErrors.Inc()
		logging.Warn().Str("client_ip", rec.ClientIP).Msg("Verdict log queue full, record dropped")
	}
}

// Serve drains the queue until the context is canceled, then flushes
// whatever is still pending.
func (w *AsyncWriter) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case rec := <-w.queue:
			w.persist(rec)
		}
	}
}

func (w *AsyncWriter) drain() {
	for {
		select {
		case rec := <-w.queue:
			w.persist(rec)
		default:
			return
		}
	}
}

func (w *AsyncWriter) persist(rec Record) {
	if err := w.store.Append(&rec); err != nil {
		metrics.VerdictLogErrors.Inc()
		logging.Error().Err(err).Msg("Failed to persist verdict record")
		return
	}
	metrics.VerdictLogWrites.Inc()
}

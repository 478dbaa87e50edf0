// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

// Package metrics provides Prometheus instrumentation for:
// - Detection throughput, outcomes, and confidence distribution
// - Evidence producer and IP resolver failures
// - API endpoint latency and rate limiting
// - Verdict log writes
// - WebSocket connections
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Detection Metrics
	DetectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "detections_total",
			Help: "Total number of completed detection runs",
		},
		[]string{"outcome"}, // "detected", "clean"
	)

	DetectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "detection_duration_seconds",
			Help:    "End-to-end detection run duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	ConfidenceScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "detection_confidence_score",
			Help:    "Distribution of detection confidence scores",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	// Evidence Producer Metrics
	ProducerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evidence_producer_failures_total",
			Help: "Total number of evidence producer failures (neutral sentinel substituted)",
		},
		[]string{"producer"}, // "ip", "webrtc", "fingerprint", "location", "bot"
	)

	ProducerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "evidence_producer_duration_seconds",
			Help:    "Duration of individual evidence producer calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"producer"},
	)

	// IP Resolver Metrics
	ResolverFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ip_resolver_failures_total",
			Help: "Total number of IP resolver source failures",
		},
		[]string{"source"},
	)

	ResolverBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ip_resolver_breaker_state",
			Help: "Circuit breaker state per IP resolver source (0=closed, 1=half-open, 2=open)",
		},
		[]string{"source"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Verdict Log Metrics
	VerdictLogWrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "verdict_log_writes_total",
			Help: "Total number of verdict records persisted",
		},
	)

	VerdictLogErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "verdict_log_errors_total",
			Help: "Total number of swallowed verdict log write failures",
		},
	)

	// Tracker Metrics
	TrackerSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracker_entries",
			Help: "Current number of tracked clients",
		},
	)

	TrackerEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_evictions_total",
			Help: "Total number of tracker entries evicted by TTL expiry",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)
)

// RecordDetection records one completed detection run.
func RecordDetection(detected bool, confidence int, duration time.Duration) {
	outcome := "clean"
	if detected {
		outcome = "detected"
	}
	DetectionsTotal.WithLabelValues(outcome).Inc()
	ConfidenceScore.Observe(float64(confidence))
	DetectionDuration.Observe(duration.Seconds())
}

// RecordProducer records one evidence producer call.
func RecordProducer(producer string, duration time.Duration, err error) {
	ProducerDuration.WithLabelValues(producer).Observe(duration.Seconds())
	if err != nil {
		ProducerFailures.WithLabelValues(producer).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

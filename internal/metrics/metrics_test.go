// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDetection(t *testing.T) {
	detectedBefore := testutil.ToFloat64(DetectionsTotal.WithLabelValues("detected"))
	cleanBefore := testutil.ToFloat64(DetectionsTotal.WithLabelValues("clean"))

	RecordDetection(true, 85, 40*time.Millisecond)
	RecordDetection(false, 10, 20*time.Millisecond)

	if got := testutil.ToFloat64(DetectionsTotal.WithLabelValues("detected")); got != detectedBefore+1 {
		t.Errorf("detected counter = %v, want %v", got, detectedBefore+1)
	}
	if got := testutil.ToFloat64(DetectionsTotal.WithLabelValues("clean")); got != cleanBefore+1 {
		t.Errorf("clean counter = %v, want %v", got, cleanBefore+1)
	}
}

func TestRecordProducer(t *testing.T) {
	before := testutil.ToFloat64(ProducerFailures.WithLabelValues("webrtc"))

	RecordProducer("webrtc", 5*time.Millisecond, nil)
	if got := testutil.ToFloat64(ProducerFailures.WithLabelValues("webrtc")); got != before {
		t.Errorf("failure counter moved on success: %v", got)
	}

	RecordProducer("webrtc", 5*time.Millisecond, errors.New("boom"))
	if got := testutil.ToFloat64(ProducerFailures.WithLabelValues("webrtc")); got != before+1 {
		t.Errorf("failure counter = %v, want %v", got, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active requests = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active requests = %v, want %v", got, before)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/detect", "200"))

	RecordAPIRequest("POST", "/api/v1/detect", "200", 12*time.Millisecond)

	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/detect", "200")); got != before+1 {
		t.Errorf("request counter = %v, want %v", got, before+1)
	}
}

func TestMetricsLint(t *testing.T) {
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, p := range problems {
		t.Errorf("metric %s: %s", p.Metric, p.Text)
	}
}

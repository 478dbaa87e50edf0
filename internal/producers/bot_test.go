// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package producers

import (
	"context"
	"testing"
	"time"

	"github.com/veilscan/veilscan/internal/tracker"
)

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/126.0 Safari/537.36"

func TestBotDetectorOrdinaryBrowser(t *testing.T) {
	t.Parallel()

	d := NewHeuristicBotDetector(nil)

	got, err := d.Detect(context.Background(), Request{
		ClientIP:  "203.0.113.1",
		UserAgent: browserUA,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.IsBot || got.BotScore != 0 {
		t.Errorf("ordinary browser flagged: %+v", got)
	}
}

func TestBotDetectorAutomationMarkers(t *testing.T) {
	t.Parallel()

	d := NewHeuristicBotDetector(nil)

	tests := []struct {
		name string
		ua   string
	}{
		{"curl", "curl/8.5.0"},
		{"python", "python-requests/2.31"},
		{"selenium", "Mozilla/5.0 selenium"},
		{"crawler", "ExampleBot/1.0 (+https://example.com/bot)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := d.Detect(context.Background(), Request{UserAgent: tt.ua})
			if err != nil {
				t.Fatal(err)
			}
			if !got.AutomationDetected {
				t.Errorf("AutomationDetected = false for %q", tt.ua)
			}
			if !got.IsBot {
				t.Errorf("IsBot = false for %q (score %v)", tt.ua, got.BotScore)
			}
		})
	}
}

func TestBotDetectorHeadless(t *testing.T) {
	t.Parallel()

	d := NewHeuristicBotDetector(nil)

	got, err := d.Detect(context.Background(), Request{
		UserAgent: "Mozilla/5.0 HeadlessChrome/126.0",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !got.HeadlessDetected {
		t.Error("HeadlessDetected should be set")
	}
}

func TestBotDetectorWebdriver(t *testing.T) {
	t.Parallel()

	d := NewHeuristicBotDetector(nil)

	got, err := d.Detect(context.Background(), Request{
		UserAgent:  browserUA,
		Attributes: ClientAttributes{Webdriver: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !got.AutomationDetected || !got.IsBot {
		t.Errorf("webdriver flag should imply automation, got %+v", got)
	}
}

func TestBotDetectorRapidRepeatRequests(t *testing.T) {
	t.Parallel()

	store := tracker.NewStore(tracker.DefaultConfig())
	d := NewHeuristicBotDetector(store)

	req := Request{ClientIP: "203.0.113.77", UserAgent: browserUA}

	first, err := d.Detect(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if first.IsBot {
		t.Errorf("first request should not be flagged: %+v", first)
	}

	// Immediate repeat: sub-second interval.
	second, err := d.Detect(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if second.BotScore < 30 {
		t.Errorf("sub-second repeat should add timing score, got %v", second.BotScore)
	}
}

func TestBotDetectorSustainedRate(t *testing.T) {
	t.Parallel()

	store := tracker.NewStore(tracker.Config{
		Capacity:   100,
		TTL:        time.Hour,
		RateWindow: time.Minute,
	})
	d := NewHeuristicBotDetector(store)

	req := Request{ClientIP: "203.0.113.78", UserAgent: browserUA}

	var last float64
	for i := 0; i < 40; i++ {
		got, err := d.Detect(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		last = got.BotScore
	}
	// 40 hits in the window: both the interval and the rate heuristics fire.
	if last < 60 {
		t.Errorf("sustained rate should flag, score = %v", last)
	}
}

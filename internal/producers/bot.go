// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package producers

import (
	"context"
	"strings"
	"time"

	"github.com/veilscan/veilscan/internal/evidence"
	"github.com/veilscan/veilscan/internal/tracker"
)

// automationMarkers are User-Agent substrings of scripted HTTP clients and
// browser automation frameworks.
var automationMarkers = []string{
	"selenium",
	"webdriver",
	"puppeteer",
	"playwright",
	"phantomjs",
	"curl/",
	"wget/",
	"python-requests",
	"python-urllib",
	"go-http-client",
	"okhttp",
	"scrapy",
	"bot",
	"spider",
	"crawl",
}

// Timing heuristics. Sub-second repeats and sustained high request rates
// are machine behavior; humans re-submitting a detection check do neither.
const (
	minHumanInterval = time.Second
	maxHumanRate     = 30 // requests per rate window
)

// botThreshold is the score at or above which IsBot is set.
const botThreshold = 50.0

// HeuristicBotDetector combines User-Agent automation markers with
// request-timing heuristics backed by the injected tracker store. The
// store is a constructor argument, never package state, so tests can reset
// timing history between runs.
type HeuristicBotDetector struct {
	store *tracker.Store
}

// NewHeuristicBotDetector creates a bot detector. store may be nil, in
// which case only User-Agent heuristics apply.
func NewHeuristicBotDetector(store *tracker.Store) *HeuristicBotDetector {
	return &HeuristicBotDetector{store: store}
}

// Detect scores the request for automation signals.
func (d *HeuristicBotDetector) Detect(_ context.Context, req Request) (evidence.BotDetection, error) {
	bot := evidence.UnknownBotDetection()

	score := 0.0

	ua := strings.ToLower(req.UserAgent)
	if ua == "" {
		score += 20
	}
	for _, marker := range automationMarkers {
		if strings.Contains(ua, marker) {
			bot.AutomationDetected = true
			score += 50
			break
		}
	}
	if strings.Contains(ua, "headless") {
		bot.HeadlessDetected = true
		score += 40
	}
	if req.Attributes.Webdriver {
		bot.AutomationDetected = true
		score += 50
	}

	if d.store != nil && req.ClientIP != "" {
		obs := d.store.Touch(req.ClientIP)
		if obs.Seen && time.Since(obs.LastSeen) < minHumanInterval {
			score += 30
		}
		if obs.RecentHits > maxHumanRate {
			score += 30
		}
	}

	if score > 100 {
		score = 100
	}
	bot.BotScore = score
	bot.IsBot = score >= botThreshold

	return bot, nil
}

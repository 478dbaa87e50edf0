// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package producers

import (
	"context"
	"strings"

	"github.com/veilscan/veilscan/internal/evidence"
)

// headlessMarkers are User-Agent substrings typical of headless or
// automated browsers.
var headlessMarkers = []string{
	"headlesschrome",
	"phantomjs",
	"slimerjs",
	"electron",
}

// AttributeAnalyzer scores browser fingerprint attributes for signs of
// headless or automated environments. The suspicion score is 0-100; the
// individual weights below are heuristics tuned so that a single benign
// oddity (an exotic screen size, no plugins) stays well under the level
// the scoring engine labels as suspicious.
type AttributeAnalyzer struct{}

// NewAttributeAnalyzer creates a fingerprint analyzer.
func NewAttributeAnalyzer() *AttributeAnalyzer {
	return &AttributeAnalyzer{}
}

// Analyze computes the fingerprint evidence from client attributes.
func (a *AttributeAnalyzer) Analyze(_ context.Context, req Request) (evidence.Fingerprint, error) {
	attrs := req.Attributes

	fp := evidence.UnknownFingerprint()
	fp.CanvasHash = attrs.CanvasHash
	fp.WebGLHash = attrs.WebGLHash
	fp.UserAgent = req.UserAgent
	if attrs.Timezone != "" {
		fp.Timezone = attrs.Timezone
	}
	if len(attrs.Languages) > 0 {
		fp.Languages = attrs.Languages
	}

	score := 0.0

	if attrs.Webdriver {
		score += 40
	}

	ua := strings.ToLower(req.UserAgent)
	for _, marker := range headlessMarkers {
		if strings.Contains(ua, marker) {
			score += 30
			break
		}
	}

	if len(attrs.Languages) == 0 {
		score += 15
	}
	if attrs.CanvasHash == "" {
		score += 10
	}
	if attrs.WebGLHash == "" {
		score += 10
	}
	if attrs.PluginCount == 0 && !isMobilePlatform(attrs.Platform) {
		score += 10
	}
	if attrs.ScreenWidth <= 0 || attrs.ScreenHeight <= 0 {
		score += 15
	}
	if attrs.HardwareConcurrency <= 0 {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	fp.SuspicionScore = score

	return fp, nil
}

// isMobilePlatform reports whether the platform string names a mobile OS,
// where zero browser plugins is normal.
func isMobilePlatform(platform string) bool {
	p := strings.ToLower(platform)
	return strings.Contains(p, "iphone") ||
		strings.Contains(p, "ipad") ||
		strings.Contains(p, "android") ||
		strings.Contains(p, "arm") && strings.Contains(p, "linux")
}

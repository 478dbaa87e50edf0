// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

// Package scoring implements the aggregation engine: a pure, deterministic
// transform from an evidence bundle to a verdict.
//
// The design is additive and explainable rather than statistically optimal:
// every point of the confidence score traces back to a named flag, so a
// verdict can always be audited signal by signal. The engine performs no
// I/O, holds no state between calls, and evaluates its scoring table in a
// fixed order, which keeps the detected-type ordering reproducible.
package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/veilscan/veilscan/internal/evidence"
	"github.com/veilscan/veilscan/internal/geo"
)

// Engine scores evidence bundles against a weight table.
type Engine struct {
	weights Weights
}

// NewEngine creates a scoring engine with the given weights.
// Use DefaultWeights() unless the deployment tunes the policy.
func NewEngine(weights Weights) *Engine {
	return &Engine{weights: weights}
}

// Weights returns the engine's weight table.
func (e *Engine) Weights() Weights {
	return e.weights
}

// Score evaluates the bundle and produces a verdict.
//
// Evaluation is strictly table-ordered. Boolean signals add their weight and
// append a label/risk-factor pair only when they hold; continuous
// contributions (IP risk score, fingerprint suspicion) always add their
// scaled delta. Missing or unresolvable evidence contributes nothing: it is
// never treated as a match or a mismatch.
//
// The summed score is clamped to [0,100] after evaluation, and detection is
// decided purely by the threshold. Malformed numeric inputs are coerced
// rather than rejected; Score never fails.
func (e *Engine) Score(bundle evidence.Bundle) Verdict {
	var score float64
	types := []string{}
	factors := []string{}

	add := func(delta float64, label, factor string) {
		score += delta
		types = append(types, label)
		factors = append(factors, factor)
	}

	ip := bundle.IPAnalysis
	if ip.IsDatacenter {
		add(e.weights.DatacenterIP, LabelDatacenterIP,
			"IP address belongs to a datacenter range")
	}
	if ip.IsHosting {
		add(e.weights.HostingProvider, LabelHostingProvider,
			"IP address belongs to a hosting provider")
	}
	if ip.IsTor {
		add(e.weights.TorExitNode, LabelTorExitNode,
			"IP address is a known Tor exit node")
	}
	if ip.VPNDetected {
		add(e.weights.VPNServer, LabelVPNServer,
			"IP address is flagged as a VPN server by a reputation source")
	}
	if ip.Blacklisted {
		add(e.weights.BlacklistedIP, LabelBlacklistedIP,
			"IP address appears on a blacklist")
	}

	// Continuous reputation contribution; no label.
	score += clampPercent(ip.RiskScore) * e.weights.RiskScoreFactor

	rtc := bundle.WebRTCLeak
	if rtc.HasLeak {
		add(e.weights.WebRTCLeak, LabelWebRTCLeak,
			"WebRTC exposes addresses the browser should not reveal")
	}
	if rtc.HasLeak && rtc.CountryMismatch {
		add(e.weights.WebRTCMismatch, LabelWebRTCMismatch,
			fmt.Sprintf("WebRTC-leaked address locates to %s but the public IP locates to %s",
				orUnknown(rtc.LeakedIPCountry), orUnknown(rtc.PublicIPCountry)))
	}

	fp := bundle.Fingerprint
	fpZoneKnown := evidence.IsKnown(fp.Timezone)
	ipZoneKnown := evidence.IsKnown(ip.Timezone)
	if fpZoneKnown && ipZoneKnown && fp.Timezone != ip.Timezone {
		add(e.weights.TimezoneMismatch, LabelTimezoneMismatch,
			fmt.Sprintf("browser timezone %s differs from IP timezone %s", fp.Timezone, ip.Timezone))
	}

	if ipContinent, fpContinent, ok := e.continents(ip, fp); ok && ipContinent != fpContinent {
		add(e.weights.ContinentMismatch, LabelContinentMismatch,
			fmt.Sprintf("browser clock is on %s but the IP locates to %s", fpContinent, ipContinent))
	}

	// Continuous suspicion contribution; labeled only above the threshold.
	suspicion := clampPercent(fp.SuspicionScore)
	score += suspicion * e.weights.SuspicionFactor
	if suspicion > e.weights.SuspicionLabelMin {
		types = append(types, LabelSuspiciousFP)
		factors = append(factors,
			fmt.Sprintf("fingerprint suspicion score %d indicates automation artifacts", int(math.Round(suspicion))))
	}

	loc := bundle.LocationMismatch
	if loc.HasMismatch {
		factor := loc.Message
		if factor == "" {
			factor = "GPS position and IP geolocation disagree"
		}
		add(e.weights.LocationMismatch, LabelLocationMismatch, factor)
	}

	if bundle.BotDetection.IsBot {
		add(e.weights.BotAutomation, LabelBotAutomation,
			"request exhibits bot or automation characteristics")
	}

	confidence := int(math.Min(100, math.Round(math.Max(0, score))))

	return Verdict{
		IsVPNDetected:   confidence >= e.weights.DetectionThreshold,
		ConfidenceScore: confidence,
		DetectedTypes:   types,
		RiskFactors:     factors,
		Timestamp:       time.Now().UTC(),
	}
}

// continents resolves the IP-side continent (via the free-text country field)
// and the fingerprint-side continent (via the browser timezone). Any failed
// resolution reports ok=false and the mismatch check is skipped.
func (e *Engine) continents(ip evidence.IPAnalysis, fp evidence.Fingerprint) (string, string, bool) {
	code, ok := geo.CountryCode(ip.Country)
	if !ok {
		return "", "", false
	}
	ipContinent, ok := geo.ContinentForCountry(code)
	if !ok {
		return "", "", false
	}
	fpContinent, ok := geo.ContinentForTimezone(fp.Timezone)
	if !ok {
		return "", "", false
	}
	return ipContinent, fpContinent, true
}

// clampPercent coerces a possibly-malformed 0-100 input into range.
// NaN coerces to 0 so a corrupt producer value cannot poison the sum.
func clampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func orUnknown(s string) string {
	if s == "" {
		return evidence.Unknown
	}
	return s
}

// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package evidence

import "testing"

func TestMergeIPAnalysisPrefersFirstKnownValue(t *testing.T) {
	t.Parallel()

	dst := UnknownIPAnalysis()
	first := UnknownIPAnalysis()
	first.Country = "United States US"
	first.Timezone = "America/New_York"

	second := UnknownIPAnalysis()
	second.Country = "Germany DE" // must not override first
	second.City = "Frankfurt"
	second.ISP = "Deutsche Telekom"

	MergeIPAnalysis(&dst, first)
	MergeIPAnalysis(&dst, second)

	if dst.Country != "United States US" {
		t.Errorf("expected first source's country to win, got %q", dst.Country)
	}
	if dst.City != "Frankfurt" {
		t.Errorf("expected second source to fill missing city, got %q", dst.City)
	}
	if dst.Timezone != "America/New_York" {
		t.Errorf("expected first source's timezone, got %q", dst.Timezone)
	}
	if dst.ISP != "Deutsche Telekom" {
		t.Errorf("expected second source to fill missing ISP, got %q", dst.ISP)
	}
}

func TestMergeIPAnalysisORsReputationFlags(t *testing.T) {
	t.Parallel()

	dst := UnknownIPAnalysis()

	src1 := UnknownIPAnalysis()
	src1.IsDatacenter = true

	src2 := UnknownIPAnalysis()
	src2.IsTor = true
	src2.IsDatacenter = false // must not clear the earlier flag

	MergeIPAnalysis(&dst, src1)
	MergeIPAnalysis(&dst, src2)

	if !dst.IsDatacenter {
		t.Error("expected datacenter flag to survive a later false")
	}
	if !dst.IsTor {
		t.Error("expected tor flag from second source")
	}
	if dst.VPNDetected || dst.Blacklisted || dst.IsHosting || dst.IsProxy {
		t.Error("unasserted flags must stay false")
	}
}

func TestMergeIPAnalysisCoordinatesAndRisk(t *testing.T) {
	t.Parallel()

	dst := UnknownIPAnalysis()

	src := UnknownIPAnalysis()
	src.Latitude = 51.5074
	src.Longitude = -0.1278
	src.RiskScore = 42

	MergeIPAnalysis(&dst, src)

	if dst.Latitude != 51.5074 || dst.Longitude != -0.1278 {
		t.Errorf("expected coordinates to merge, got (%f, %f)", dst.Latitude, dst.Longitude)
	}
	if dst.RiskScore != 42 {
		t.Errorf("expected risk score 42, got %f", dst.RiskScore)
	}

	// A later source must not overwrite resolved coordinates or risk.
	later := UnknownIPAnalysis()
	later.Latitude = 40.0
	later.Longitude = -70.0
	later.RiskScore = 99

	MergeIPAnalysis(&dst, later)

	if dst.Latitude != 51.5074 {
		t.Errorf("expected first coordinates to win, got %f", dst.Latitude)
	}
	if dst.RiskScore != 42 {
		t.Errorf("expected first risk score to win, got %f", dst.RiskScore)
	}
}

func TestNeutralBundleIsFullyNeutral(t *testing.T) {
	t.Parallel()

	b := NeutralBundle()

	if b.IPAnalysis.Country != Unknown || b.IPAnalysis.Timezone != Unknown {
		t.Error("expected IP analysis sentinel fields to be Unknown")
	}
	if b.IPAnalysis.IsDatacenter || b.IPAnalysis.VPNDetected || b.IPAnalysis.RiskScore != 0 {
		t.Error("expected neutral reputation values")
	}
	if b.WebRTCLeak.HasLeak || len(b.WebRTCLeak.LocalIPs) != 0 {
		t.Error("expected neutral WebRTC sentinel")
	}
	if b.LocationMismatch.HasMismatch || b.LocationMismatch.MatchLevel != MatchUnknown {
		t.Error("expected neutral location sentinel")
	}
	if b.BotDetection.IsBot || b.BotDetection.BotScore != 0 {
		t.Error("expected neutral bot sentinel")
	}
}

func TestIsUnknownLocation(t *testing.T) {
	t.Parallel()

	if !IsUnknownLocation(0, 0) {
		t.Error("(0,0) must be unknown")
	}
	if !IsUnknownLocation(1e-9, -1e-9) {
		t.Error("sub-epsilon coordinates must be unknown")
	}
	if IsUnknownLocation(51.5, -0.12) {
		t.Error("real coordinates must not be unknown")
	}
}

// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package scoring

import (
	"reflect"
	"testing"

	"github.com/veilscan/veilscan/internal/evidence"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultWeights())
}

func TestScoreNeutralBundle(t *testing.T) {
	t.Parallel()

	v := newTestEngine().Score(evidence.NeutralBundle())

	if v.ConfidenceScore != 0 {
		t.Errorf("expected score 0 for neutral bundle, got %d", v.ConfidenceScore)
	}
	if v.IsVPNDetected {
		t.Error("neutral bundle must not be a detection")
	}
	if len(v.DetectedTypes) != 0 {
		t.Errorf("expected no detected types, got %v", v.DetectedTypes)
	}
	if len(v.RiskFactors) != 0 {
		t.Errorf("expected no risk factors, got %v", v.RiskFactors)
	}
}

func TestScoreDatacenterOnly(t *testing.T) {
	t.Parallel()

	b := evidence.NeutralBundle()
	b.IPAnalysis.IsDatacenter = true

	v := newTestEngine().Score(b)

	if v.ConfidenceScore != 30 {
		t.Errorf("expected score 30, got %d", v.ConfidenceScore)
	}
	if v.IsVPNDetected {
		t.Error("30 is below the detection threshold")
	}
	if !reflect.DeepEqual(v.DetectedTypes, []string{LabelDatacenterIP}) {
		t.Errorf("expected [%s], got %v", LabelDatacenterIP, v.DetectedTypes)
	}
	if len(v.RiskFactors) != 1 {
		t.Errorf("expected one risk factor, got %v", v.RiskFactors)
	}
}

func TestScoreClampsAtHundred(t *testing.T) {
	t.Parallel()

	b := evidence.NeutralBundle()
	b.IPAnalysis.IsDatacenter = true
	b.IPAnalysis.IsHosting = true
	b.IPAnalysis.IsTor = true
	b.IPAnalysis.VPNDetected = true
	b.IPAnalysis.Blacklisted = true // raw sum 175
	b.WebRTCLeak.HasLeak = true     // raw sum 210

	v := newTestEngine().Score(b)

	if v.ConfidenceScore != 100 {
		t.Errorf("expected clamped score 100, got %d", v.ConfidenceScore)
	}
	if !v.IsVPNDetected {
		t.Error("expected detection at clamped 100")
	}

	wantTypes := []string{
		LabelDatacenterIP,
		LabelHostingProvider,
		LabelTorExitNode,
		LabelVPNServer,
		LabelBlacklistedIP,
		LabelWebRTCLeak,
	}
	if !reflect.DeepEqual(v.DetectedTypes, wantTypes) {
		t.Errorf("expected types in evaluation order %v, got %v", wantTypes, v.DetectedTypes)
	}
	if len(v.RiskFactors) != len(v.DetectedTypes) {
		t.Errorf("risk factors (%d) must parallel detected types (%d)",
			len(v.RiskFactors), len(v.DetectedTypes))
	}
}

func TestScoreLocationMismatchAloneStaysBelowThreshold(t *testing.T) {
	t.Parallel()

	b := evidence.NeutralBundle()
	b.LocationMismatch.HasMismatch = true
	b.LocationMismatch.MatchLevel = evidence.MatchMismatch
	b.LocationMismatch.Message = "GPS location is 4,200 km from IP location"

	v := newTestEngine().Score(b)

	if v.ConfidenceScore != 40 {
		t.Errorf("expected score 40, got %d", v.ConfidenceScore)
	}
	if v.IsVPNDetected {
		t.Error("single location mismatch must not force a detection")
	}
	if len(v.RiskFactors) != 1 || v.RiskFactors[0] != "GPS location is 4,200 km from IP location" {
		t.Errorf("expected producer message as risk factor, got %v", v.RiskFactors)
	}
}

func TestScoreTimezoneMismatch(t *testing.T) {
	t.Parallel()

	b := evidence.NeutralBundle()
	b.Fingerprint.Timezone = "America/New_York"
	b.IPAnalysis.Timezone = "Europe/London"

	v := newTestEngine().Score(b)

	if v.ConfidenceScore != 20 {
		t.Errorf("expected score 20, got %d", v.ConfidenceScore)
	}

	count := 0
	for _, typ := range v.DetectedTypes {
		if typ == LabelTimezoneMismatch {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected timezone mismatch to fire exactly once, fired %d times: %v",
			count, v.DetectedTypes)
	}
}

func TestScoreContinentMismatch(t *testing.T) {
	t.Parallel()

	b := evidence.NeutralBundle()
	b.IPAnalysis.Country = "United States US"
	b.Fingerprint.Timezone = "Asia/Tokyo"

	v := newTestEngine().Score(b)

	if v.ConfidenceScore != 20 {
		t.Errorf("expected score 20, got %d", v.ConfidenceScore)
	}
	if !reflect.DeepEqual(v.DetectedTypes, []string{LabelContinentMismatch}) {
		t.Errorf("expected [%s], got %v", LabelContinentMismatch, v.DetectedTypes)
	}
}

func TestScoreContinentCheckAbstainsOnUnresolvableCountry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		country string
		zone    string
	}{
		{"no country code", "Somewhere", "Asia/Tokyo"},
		{"unknown country sentinel", evidence.Unknown, "Asia/Tokyo"},
		{"unmapped country code", "Atlantis XZ", "Asia/Tokyo"},
		{"unknown browser zone", "United States US", evidence.Unknown},
		{"ambiguous america zone", "United States US", "America/Atikokan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := evidence.NeutralBundle()
			b.IPAnalysis.Country = tt.country
			b.Fingerprint.Timezone = tt.zone

			v := newTestEngine().Score(b)

			for _, typ := range v.DetectedTypes {
				if typ == LabelContinentMismatch {
					t.Errorf("continent mismatch must abstain, got %v", v.DetectedTypes)
				}
			}
		})
	}
}

func TestScoreDetectionBoundaryExactness(t *testing.T) {
	t.Parallel()

	// riskScore contributes score*0.3 with no label; craft exact boundary hits.
	tests := []struct {
		name      string
		riskScore float64
		datacenter bool
		wantScore  int
		wantFlag   bool
	}{
		// 30 (datacenter) + 19.8 -> round 50: detection.
		{"exactly fifty", 66, true, 50, true},
		// 30 + 19.2 -> round 49: no detection.
		{"forty nine", 64, true, 49, false},
		{"zero", 0, false, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := evidence.NeutralBundle()
			b.IPAnalysis.IsDatacenter = tt.datacenter
			b.IPAnalysis.RiskScore = tt.riskScore

			v := newTestEngine().Score(b)

			if v.ConfidenceScore != tt.wantScore {
				t.Errorf("expected score %d, got %d", tt.wantScore, v.ConfidenceScore)
			}
			if v.IsVPNDetected != tt.wantFlag {
				t.Errorf("expected detection=%v at score %d", tt.wantFlag, v.ConfidenceScore)
			}
		})
	}
}

func TestScoreIdempotent(t *testing.T) {
	t.Parallel()

	b := evidence.NeutralBundle()
	b.IPAnalysis.IsDatacenter = true
	b.IPAnalysis.Country = "Japan JP"
	b.IPAnalysis.Timezone = "Asia/Tokyo"
	b.IPAnalysis.RiskScore = 33
	b.Fingerprint.Timezone = "Europe/Berlin"
	b.Fingerprint.SuspicionScore = 80
	b.WebRTCLeak.HasLeak = true
	b.BotDetection.IsBot = true

	e := newTestEngine()
	v1 := e.Score(b)
	v2 := e.Score(b)

	if v1.ConfidenceScore != v2.ConfidenceScore ||
		v1.IsVPNDetected != v2.IsVPNDetected ||
		!reflect.DeepEqual(v1.DetectedTypes, v2.DetectedTypes) ||
		!reflect.DeepEqual(v1.RiskFactors, v2.RiskFactors) {
		t.Errorf("scoring is not idempotent:\n%+v\n%+v", v1, v2)
	}
}

func TestScoreMonotonicity(t *testing.T) {
	t.Parallel()

	base := evidence.NeutralBundle()
	base.IPAnalysis.RiskScore = 20
	base.Fingerprint.SuspicionScore = 10

	e := newTestEngine()
	baseScore := e.Score(base).ConfidenceScore

	mutations := []struct {
		name string
		set  func(*evidence.Bundle)
	}{
		{"datacenter", func(b *evidence.Bundle) { b.IPAnalysis.IsDatacenter = true }},
		{"hosting", func(b *evidence.Bundle) { b.IPAnalysis.IsHosting = true }},
		{"tor", func(b *evidence.Bundle) { b.IPAnalysis.IsTor = true }},
		{"vpn", func(b *evidence.Bundle) { b.IPAnalysis.VPNDetected = true }},
		{"blacklisted", func(b *evidence.Bundle) { b.IPAnalysis.Blacklisted = true }},
		{"webrtc leak", func(b *evidence.Bundle) { b.WebRTCLeak.HasLeak = true }},
		{"location mismatch", func(b *evidence.Bundle) { b.LocationMismatch.HasMismatch = true }},
		{"bot", func(b *evidence.Bundle) { b.BotDetection.IsBot = true }},
	}

	for _, m := range mutations {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()

			b := base
			m.set(&b)

			if got := e.Score(b).ConfidenceScore; got < baseScore {
				t.Errorf("adding %s decreased score: %d < %d", m.name, got, baseScore)
			}
		})
	}
}

func TestScoreSuspicionLabelThreshold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		suspicion float64
		wantLabel bool
		wantScore int
	}{
		{"below threshold contributes without label", 70, false, 28},
		{"above threshold labeled", 71, true, 28}, // 28.4 rounds to 28
		{"max suspicion", 100, true, 40},
		{"negative coerced to zero", -50, false, 0},
		{"overflow coerced to hundred", 250, true, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := evidence.NeutralBundle()
			b.Fingerprint.SuspicionScore = tt.suspicion

			v := newTestEngine().Score(b)

			hasLabel := false
			for _, typ := range v.DetectedTypes {
				if typ == LabelSuspiciousFP {
					hasLabel = true
				}
			}
			if hasLabel != tt.wantLabel {
				t.Errorf("suspicion %.0f: label present=%v, want %v", tt.suspicion, hasLabel, tt.wantLabel)
			}
			if v.ConfidenceScore != tt.wantScore {
				t.Errorf("suspicion %.0f: score %d, want %d", tt.suspicion, v.ConfidenceScore, tt.wantScore)
			}
		})
	}
}

func TestScoreWebRTCCountryMismatchRequiresLeak(t *testing.T) {
	t.Parallel()

	b := evidence.NeutralBundle()
	b.WebRTCLeak.CountryMismatch = true // no leak flag set

	v := newTestEngine().Score(b)

	if v.ConfidenceScore != 0 {
		t.Errorf("country mismatch without a leak must not score, got %d", v.ConfidenceScore)
	}

	b.WebRTCLeak.HasLeak = true
	b.WebRTCLeak.LeakedIPCountry = "Germany DE"
	b.WebRTCLeak.PublicIPCountry = "United States US"

	v = newTestEngine().Score(b)

	if v.ConfidenceScore != 75 { // 35 leak + 40 mismatch
		t.Errorf("expected 75, got %d", v.ConfidenceScore)
	}
	wantTypes := []string{LabelWebRTCLeak, LabelWebRTCMismatch}
	if !reflect.DeepEqual(v.DetectedTypes, wantTypes) {
		t.Errorf("expected %v, got %v", wantTypes, v.DetectedTypes)
	}
}

func TestScoreMalformedRiskScoreCoerced(t *testing.T) {
	t.Parallel()

	b := evidence.NeutralBundle()
	b.IPAnalysis.RiskScore = -200

	v := newTestEngine().Score(b)
	if v.ConfidenceScore != 0 {
		t.Errorf("negative risk score must coerce to zero contribution, got %d", v.ConfidenceScore)
	}

	b.IPAnalysis.RiskScore = 100000
	v = newTestEngine().Score(b)
	if v.ConfidenceScore != 30 { // clamped input 100 * 0.3
		t.Errorf("oversized risk score must clamp to 100 before scaling, got %d", v.ConfidenceScore)
	}
}

func TestScoreBoundsAlwaysHold(t *testing.T) {
	t.Parallel()

	// Saturate every signal at once; the clamp must still hold.
	b := evidence.NeutralBundle()
	b.IPAnalysis.IsDatacenter = true
	b.IPAnalysis.IsHosting = true
	b.IPAnalysis.IsTor = true
	b.IPAnalysis.VPNDetected = true
	b.IPAnalysis.Blacklisted = true
	b.IPAnalysis.RiskScore = 100
	b.IPAnalysis.Country = "Germany DE"
	b.IPAnalysis.Timezone = "Europe/Berlin"
	b.WebRTCLeak.HasLeak = true
	b.WebRTCLeak.CountryMismatch = true
	b.Fingerprint.Timezone = "Asia/Tokyo"
	b.Fingerprint.SuspicionScore = 100
	b.LocationMismatch.HasMismatch = true
	b.BotDetection.IsBot = true

	v := newTestEngine().Score(b)

	if v.ConfidenceScore < 0 || v.ConfidenceScore > 100 {
		t.Errorf("confidence score out of bounds: %d", v.ConfidenceScore)
	}
	if v.ConfidenceScore != 100 {
		t.Errorf("expected saturation at 100, got %d", v.ConfidenceScore)
	}
	if len(v.DetectedTypes) != len(v.RiskFactors) {
		t.Error("detected types and risk factors must stay parallel")
	}
}

func TestScoreCustomWeights(t *testing.T) {
	t.Parallel()

	w := DefaultWeights()
	w.DatacenterIP = 5
	w.DetectionThreshold = 4

	b := evidence.NeutralBundle()
	b.IPAnalysis.IsDatacenter = true

	v := NewEngine(w).Score(b)

	if v.ConfidenceScore != 5 {
		t.Errorf("expected substituted weight 5, got %d", v.ConfidenceScore)
	}
	if !v.IsVPNDetected {
		t.Error("expected detection with lowered threshold")
	}
}

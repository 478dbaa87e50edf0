// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

// Package evidence defines the structured signals consumed by the scoring
// engine. One Bundle is assembled per detection run from the concurrently
// resolved producers and is immutable once handed to scoring.
//
// Evidence that could not be gathered is always represented by the neutral
// sentinel for its category (Unknown* constructors), never by a nil field:
// downstream scoring never special-cases "missing", and neutral values
// contribute zero score by construction.
package evidence

import "math"

// Unknown is the sentinel for string fields whose value could not be resolved.
const Unknown = "Unknown"

// coordinateEpsilon is the threshold for treating coordinates as the unknown
// (0, 0) sentinel. Direct float equality is unreliable under IEEE 754;
// 1e-7 degrees is about 1.1cm at the equator, well below GPS accuracy.
const coordinateEpsilon = 1e-7

// IsUnknownLocation reports whether coordinates represent an unknown location.
func IsUnknownLocation(lat, lon float64) bool {
	return math.Abs(lat) < coordinateEpsilon && math.Abs(lon) < coordinateEpsilon
}

// IPAnalysis holds reputation and geolocation data for the client's public IP.
// Fields left at their neutral defaults must never be treated as positive
// evidence.
type IPAnalysis struct {
	PublicIP     string `json:"public_ip"`
	Country      string `json:"country"` // free text; may embed a trailing 2-letter code
	City         string `json:"city"`
	ISP          string `json:"isp"`
	Organization string `json:"organization"`
	ASN          string `json:"asn"`

	IsDatacenter bool `json:"is_datacenter"`
	IsHosting    bool `json:"is_hosting"`
	IsTor        bool `json:"is_tor"`
	IsProxy      bool `json:"is_proxy"`
	VPNDetected  bool `json:"vpn_detected"`
	Blacklisted  bool `json:"blacklisted"`

	// RiskScore is the reputation source's own 0-100 estimate.
	RiskScore float64 `json:"risk_score"`

	Timezone       string  `json:"timezone"` // IANA name or "Unknown"
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	ConnectionType string  `json:"connection_type"`
}

// UnknownIPAnalysis returns the fully-unknown IP evidence sentinel.
// This is still a valid, scoreable value, not an error.
func UnknownIPAnalysis() IPAnalysis {
	return IPAnalysis{
		PublicIP:       Unknown,
		Country:        Unknown,
		City:           Unknown,
		ISP:            Unknown,
		Organization:   Unknown,
		ASN:            Unknown,
		Timezone:       Unknown,
		ConnectionType: Unknown,
	}
}

// Candidate types discovered via WebRTC ICE gathering.
const (
	CandidateHost  = "host"  // local interface address
	CandidateSrflx = "srflx" // server-reflexive (public via STUN)
	CandidateRelay = "relay" // relayed via TURN
)

// WebRTCLeak holds addresses exposed through WebRTC ICE candidates.
//
// CountryMismatch is precomputed by the producer (it requires a geolocation
// lookup of the leaked address) so the scoring engine can stay a pure
// function of the bundle.
type WebRTCLeak struct {
	HasLeak        bool     `json:"has_leak"`
	LocalIPs       []string `json:"local_ips"`
	LocalIPv6s     []string `json:"local_ipv6s"`
	PublicIPs      []string `json:"public_ips"`
	CandidateTypes []string `json:"candidate_types"`

	PublicIPCountry string `json:"public_ip_country,omitempty"`
	LeakedIPCountry string `json:"leaked_ip_country,omitempty"`
	CountryMismatch bool   `json:"country_mismatch"`
}

// UnknownWebRTCLeak returns the neutral WebRTC evidence sentinel.
func UnknownWebRTCLeak() WebRTCLeak {
	return WebRTCLeak{
		LocalIPs:       []string{},
		LocalIPv6s:     []string{},
		PublicIPs:      []string{},
		CandidateTypes: []string{},
	}
}

// HasCandidateType reports whether the given ICE candidate type was observed.
func (w WebRTCLeak) HasCandidateType(typ string) bool {
	for _, t := range w.CandidateTypes {
		if t == typ {
			return true
		}
	}
	return false
}

// Fingerprint holds browser fingerprint attributes relevant to detection.
type Fingerprint struct {
	// Timezone is the IANA zone reported by the client clock.
	Timezone string `json:"timezone"`

	// SuspicionScore is 0-100, computed by the fingerprint producer from
	// headless/automation heuristics.
	SuspicionScore float64 `json:"suspicion_score"`

	Languages  []string `json:"languages"`
	CanvasHash string   `json:"canvas_hash"`
	WebGLHash  string   `json:"webgl_hash"`
	UserAgent  string   `json:"user_agent"`
}

// UnknownFingerprint returns the neutral fingerprint evidence sentinel.
func UnknownFingerprint() Fingerprint {
	return Fingerprint{
		Timezone:  Unknown,
		Languages: []string{},
	}
}

// Location match levels for the GPS-vs-IP check.
const (
	MatchGood     = "good"     // within 100km
	MatchFair     = "fair"     // within 1000km
	MatchMismatch = "mismatch" // beyond 1000km or explicit country mismatch
	MatchUnknown  = "unknown"  // GPS or IP location unavailable
)

// LocationMismatch holds the GPS-vs-IP cross-check result.
type LocationMismatch struct {
	HasMismatch  bool     `json:"has_mismatch"`
	MatchLevel   string   `json:"match_level"`
	DistanceKm   *float64 `json:"distance_km,omitempty"`
	Message      string   `json:"message"`
	GPSAvailable bool     `json:"gps_available"`
}

// UnknownLocationMismatch returns the neutral location evidence sentinel.
func UnknownLocationMismatch() LocationMismatch {
	return LocationMismatch{MatchLevel: MatchUnknown}
}

// BotDetection holds automation and headless-browser heuristics.
type BotDetection struct {
	IsBot              bool    `json:"is_bot"`
	BotScore           float64 `json:"bot_score"`
	HeadlessDetected   bool    `json:"headless_detected"`
	AutomationDetected bool    `json:"automation_detected"`
}

// UnknownBotDetection returns the neutral bot evidence sentinel.
func UnknownBotDetection() BotDetection {
	return BotDetection{}
}

// Bundle aggregates all producers' outputs for one detection run.
// It is constructed once, passed by value into scoring, and discarded after
// the verdict is produced.
type Bundle struct {
	IPAnalysis       IPAnalysis       `json:"ip_analysis"`
	WebRTCLeak       WebRTCLeak       `json:"webrtc_leak"`
	Fingerprint      Fingerprint      `json:"fingerprint"`
	LocationMismatch LocationMismatch `json:"location_mismatch"`
	BotDetection     BotDetection     `json:"bot_detection"`
}

// NeutralBundle returns a bundle with every category at its neutral sentinel.
// Scoring a neutral bundle yields score 0 and no detected types.
func NeutralBundle() Bundle {
	return Bundle{
		IPAnalysis:       UnknownIPAnalysis(),
		WebRTCLeak:       UnknownWebRTCLeak(),
		Fingerprint:      UnknownFingerprint(),
		LocationMismatch: UnknownLocationMismatch(),
		BotDetection:     UnknownBotDetection(),
	}
}

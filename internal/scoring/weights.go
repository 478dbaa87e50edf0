// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package scoring

// Weights is the scoring policy: one coherent table of point values for every
// signal the engine evaluates. The defaults are load-bearing for
// compatibility with recorded verdicts; deployments that tune them should
// treat the whole table as a unit rather than adjusting single rows.
//
// All weights must be non-negative. The engine's monotonicity guarantee
// (adding a true flag never lowers the score) depends on it.
type Weights struct {
	DatacenterIP      float64 `json:"datacenter_ip" koanf:"datacenter_ip"`
	HostingProvider   float64 `json:"hosting_provider" koanf:"hosting_provider"`
	TorExitNode       float64 `json:"tor_exit_node" koanf:"tor_exit_node"`
	VPNServer         float64 `json:"vpn_server" koanf:"vpn_server"`
	BlacklistedIP     float64 `json:"blacklisted_ip" koanf:"blacklisted_ip"`
	RiskScoreFactor   float64 `json:"risk_score_factor" koanf:"risk_score_factor"`
	WebRTCLeak        float64 `json:"webrtc_leak" koanf:"webrtc_leak"`
	WebRTCMismatch    float64 `json:"webrtc_mismatch" koanf:"webrtc_mismatch"`
	TimezoneMismatch  float64 `json:"timezone_mismatch" koanf:"timezone_mismatch"`
	ContinentMismatch float64 `json:"continent_mismatch" koanf:"continent_mismatch"`
	SuspicionFactor   float64 `json:"suspicion_factor" koanf:"suspicion_factor"`
	SuspicionLabelMin float64 `json:"suspicion_label_min" koanf:"suspicion_label_min"`
	LocationMismatch  float64 `json:"location_mismatch" koanf:"location_mismatch"`
	BotAutomation     float64 `json:"bot_automation" koanf:"bot_automation"`

	// DetectionThreshold is the single decision boundary: a verdict is a
	// detection iff the clamped confidence score reaches it.
	DetectionThreshold int `json:"detection_threshold" koanf:"detection_threshold"`
}

// DefaultWeights returns the standard scoring table.
func DefaultWeights() Weights {
	return Weights{
		DatacenterIP:       30,
		HostingProvider:    25,
		TorExitNode:        40,
		VPNServer:          50,
		BlacklistedIP:      30,
		RiskScoreFactor:    0.3,
		WebRTCLeak:         35,
		WebRTCMismatch:     40,
		TimezoneMismatch:   20,
		ContinentMismatch:  20,
		SuspicionFactor:    0.4,
		SuspicionLabelMin:  70,
		LocationMismatch:   40,
		BotAutomation:      35,
		DetectionThreshold: 50,
	}
}

// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package scoring

import "time"

// Signal labels, in the order the engine evaluates them. Each label has a
// matching human-readable risk factor at the same index in the verdict.
const (
	LabelDatacenterIP      = "Datacenter IP"
	LabelHostingProvider   = "Hosting Provider"
	LabelTorExitNode       = "Tor Exit Node"
	LabelVPNServer         = "VPN Server Detected"
	LabelBlacklistedIP     = "Blacklisted IP"
	LabelWebRTCLeak        = "WebRTC Leak"
	LabelWebRTCMismatch    = "WebRTC Local IP Country Mismatch"
	LabelTimezoneMismatch  = "Fingerprint Timezone Mismatch"
	LabelContinentMismatch = "Fingerprint Continent Mismatch"
	LabelSuspiciousFP      = "Suspicious Fingerprint"
	LabelLocationMismatch  = "Location Mismatch"
	LabelBotAutomation     = "Bot/Automation"
)

// Verdict is the final scored decision for one detection run.
// It is immutable once produced.
type Verdict struct {
	// IsVPNDetected is true iff ConfidenceScore >= the detection threshold.
	IsVPNDetected bool `json:"is_vpn_detected"`

	// ConfidenceScore summarizes total weighted evidence, clamped to [0,100].
	ConfidenceScore int `json:"confidence_score"`

	// DetectedTypes lists the signal labels that fired, in evaluation order.
	// Labels are never deduplicated; order is part of the contract.
	DetectedTypes []string `json:"detected_types"`

	// RiskFactors holds a human-readable explanation per detected type,
	// parallel to DetectedTypes.
	RiskFactors []string `json:"risk_factors"`

	Timestamp time.Time `json:"timestamp"`
}

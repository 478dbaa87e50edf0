// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package evidence

// IsKnown reports whether a string field carries a resolved value
// (neither empty nor the Unknown sentinel).
func IsKnown(s string) bool {
	return s != "" && s != Unknown
}

// MergeIPAnalysis folds src into dst field by field, preferring the value
// already present in dst when it is known. Callers merge resolver responses
// in fixed priority order, so the first source to supply a field wins; a
// slow or broken service never blanks out fields another service resolved.
//
// Boolean reputation flags are OR-merged: false is the neutral default, so
// any source asserting a flag is preserved.
func MergeIPAnalysis(dst *IPAnalysis, src IPAnalysis) {
	if !IsKnown(dst.PublicIP) && IsKnown(src.PublicIP) {
		dst.PublicIP = src.PublicIP
	}
	if !IsKnown(dst.Country) && IsKnown(src.Country) {
		dst.Country = src.Country
	}
	if !IsKnown(dst.City) && IsKnown(src.City) {
		dst.City = src.City
	}
	if !IsKnown(dst.ISP) && IsKnown(src.ISP) {
		dst.ISP = src.ISP
	}
	if !IsKnown(dst.Organization) && IsKnown(src.Organization) {
		dst.Organization = src.Organization
	}
	if !IsKnown(dst.ASN) && IsKnown(src.ASN) {
		dst.ASN = src.ASN
	}
	if !IsKnown(dst.Timezone) && IsKnown(src.Timezone) {
		dst.Timezone = src.Timezone
	}
	if !IsKnown(dst.ConnectionType) && IsKnown(src.ConnectionType) {
		dst.ConnectionType = src.ConnectionType
	}

	dst.IsDatacenter = dst.IsDatacenter || src.IsDatacenter
	dst.IsHosting = dst.IsHosting || src.IsHosting
	dst.IsTor = dst.IsTor || src.IsTor
	dst.IsProxy = dst.IsProxy || src.IsProxy
	dst.VPNDetected = dst.VPNDetected || src.VPNDetected
	dst.Blacklisted = dst.Blacklisted || src.Blacklisted

	if dst.RiskScore == 0 && src.RiskScore > 0 {
		dst.RiskScore = src.RiskScore
	}
	if IsUnknownLocation(dst.Latitude, dst.Longitude) && !IsUnknownLocation(src.Latitude, src.Longitude) {
		dst.Latitude = src.Latitude
		dst.Longitude = src.Longitude
	}
}

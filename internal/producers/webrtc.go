// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package producers

import (
	"context"
	"net/netip"

	"github.com/veilscan/veilscan/internal/evidence"
)

// ICEAnalyzer derives WebRTC leak evidence from client-submitted ICE
// candidates. A VPN typically masks the HTTP path but not WebRTC's STUN
// path, so a server-reflexive candidate that disagrees with the connecting
// address exposes the client's real network.
//
// The country mismatch is resolved here, not in scoring: it needs a
// geolocation lookup of the leaked address. The locator may be nil, in
// which case the country comparison abstains.
type ICEAnalyzer struct {
	locator Geolocator
}

// NewICEAnalyzer creates a WebRTC analyzer. locator may be nil.
func NewICEAnalyzer(locator Geolocator) *ICEAnalyzer {
	return &ICEAnalyzer{locator: locator}
}

// Analyze classifies the submitted candidates and flags leaks.
func (a *ICEAnalyzer) Analyze(_ context.Context, req Request) (evidence.WebRTCLeak, error) {
	leak := evidence.UnknownWebRTCLeak()

	var leakedPublic string
	for _, cand := range req.ICECandidates {
		addr, err := netip.ParseAddr(cand.Address)
		if err != nil {
			continue
		}
		addr = addr.Unmap()

		if isPrivateAddr(addr) {
			if addr.Is4() {
				leak.LocalIPs = append(leak.LocalIPs, addr.String())
			} else {
				leak.LocalIPv6s = append(leak.LocalIPv6s, addr.String())
			}
		} else {
			s := addr.String()
			leak.PublicIPs = append(leak.PublicIPs, s)
			if s != req.ClientIP {
				leakedPublic = s
			}
		}

		switch cand.Type {
		case evidence.CandidateHost, evidence.CandidateSrflx, evidence.CandidateRelay:
			if !leak.HasCandidateType(cand.Type) {
				leak.CandidateTypes = append(leak.CandidateTypes, cand.Type)
			}
		}
	}

	leak.HasLeak = len(leak.LocalIPs) > 0 || len(leak.LocalIPv6s) > 0 || leakedPublic != ""

	if leak.HasLeak && leakedPublic != "" && a.locator != nil {
		leak.LeakedIPCountry = a.country(leakedPublic)
		leak.PublicIPCountry = a.country(req.ClientIP)
		leak.CountryMismatch = leak.LeakedIPCountry != "" &&
			leak.PublicIPCountry != "" &&
			leak.LeakedIPCountry != leak.PublicIPCountry
	}

	return leak, nil
}

func (a *ICEAnalyzer) country(ip string) string {
	info, err := a.locator.Locate(ip)
	if err != nil {
		return ""
	}
	return info.CountryCode
}

// isPrivateAddr reports whether the address is non-routable: RFC 1918/4193
// private space, loopback, or link-local.
func isPrivateAddr(addr netip.Addr) bool {
	return addr.IsPrivate() ||
		addr.IsLoopback() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast()
}

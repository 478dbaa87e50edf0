// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package intel

import (
	"net/netip"
	"testing"
)

func TestLookupEmpty(t *testing.T) {
	t.Parallel()

	l := NewLookup()

	got := l.Check("203.0.113.7")
	if got != (Result{}) {
		t.Errorf("Check on empty database = %+v, want zero Result", got)
	}
	if l.Contains("203.0.113.7") {
		t.Error("Contains on empty database should be false")
	}
}

func TestLookupInvalidIP(t *testing.T) {
	t.Parallel()

	l := NewLookup()
	l.ReplaceAddrs(CategoryTor, []netip.Addr{netip.MustParseAddr("198.51.100.1")})

	tests := []string{"", "not-an-ip", "300.1.1.1", "1.2.3"}
	for _, ip := range tests {
		if got := l.Check(ip); got != (Result{}) {
			t.Errorf("Check(%q) = %+v, want zero Result", ip, got)
		}
	}
}

func TestLookupVPNServers(t *testing.T) {
	t.Parallel()

	l := NewLookup()
	l.ReplaceVPN([]VPNServer{
		{Provider: "nordvpn", Country: "Netherlands", IPs: []string{"203.0.113.10", "203.0.113.11"}},
		{Provider: "mullvad", Country: "Sweden", IPs: []string{"2001:db8::1"}},
	})

	got := l.Check("203.0.113.10")
	if !got.VPNDetected {
		t.Error("expected VPNDetected for known server IP")
	}
	if got.Provider != "nordvpn" {
		t.Errorf("Provider = %q, want nordvpn", got.Provider)
	}
	if got.ServerCountry != "Netherlands" {
		t.Errorf("ServerCountry = %q, want Netherlands", got.ServerCountry)
	}

	got6 := l.Check("2001:db8::1")
	if !got6.VPNDetected || got6.Provider != "mullvad" {
		t.Errorf("IPv6 lookup = %+v, want mullvad VPN hit", got6)
	}

	stats := l.Stats()
	if stats.VPNProviders != 2 {
		t.Errorf("VPNProviders = %d, want 2", stats.VPNProviders)
	}
	if stats.VPNAddresses != 3 {
		t.Errorf("VPNAddresses = %d, want 3", stats.VPNAddresses)
	}
	if stats.IPv4Count != 2 || stats.IPv6Count != 1 {
		t.Errorf("address family split = %d/%d, want 2/1", stats.IPv4Count, stats.IPv6Count)
	}
}

func TestLookupCategoriesMerge(t *testing.T) {
	t.Parallel()

	l := NewLookup()
	l.ReplaceVPN([]VPNServer{{Provider: "protonvpn", Country: "Switzerland", IPs: []string{"198.51.100.5"}}})
	l.ReplaceAddrs(CategoryTor, []netip.Addr{netip.MustParseAddr("198.51.100.5")})
	l.ReplaceAddrs(CategoryBlacklist, []netip.Addr{netip.MustParseAddr("198.51.100.5")})

	got := l.Check("198.51.100.5")
	if !got.VPNDetected || !got.IsTor || !got.Blacklisted {
		t.Errorf("merged record = %+v, want all three flags set", got)
	}
}

func TestLookupReplaceClearsCategory(t *testing.T) {
	t.Parallel()

	l := NewLookup()
	l.ReplaceAddrs(CategoryTor, []netip.Addr{
		netip.MustParseAddr("198.51.100.1"),
		netip.MustParseAddr("198.51.100.2"),
	})
	l.ReplaceAddrs(CategoryTor, []netip.Addr{netip.MustParseAddr("198.51.100.3")})

	if l.Check("198.51.100.1").IsTor {
		t.Error("old Tor entry should have been replaced")
	}
	if !l.Check("198.51.100.3").IsTor {
		t.Error("new Tor entry should be present")
	}
	if got := l.Stats().TorAddresses; got != 1 {
		t.Errorf("TorAddresses = %d, want 1", got)
	}
}

func TestLookupReplacePreservesOtherCategories(t *testing.T) {
	t.Parallel()

	l := NewLookup()
	l.ReplaceAddrs(CategoryBlacklist, []netip.Addr{netip.MustParseAddr("198.51.100.9")})
	l.ReplaceAddrs(CategoryTor, []netip.Addr{netip.MustParseAddr("198.51.100.9")})

	// Replacing the Tor set must not drop the blacklist flag.
	l.ReplaceAddrs(CategoryTor, nil)

	got := l.Check("198.51.100.9")
	if got.IsTor {
		t.Error("Tor flag should be cleared after replacement")
	}
	if !got.Blacklisted {
		t.Error("blacklist flag should survive Tor replacement")
	}
}

func TestLookupUnmapsMappedAddrs(t *testing.T) {
	t.Parallel()

	l := NewLookup()
	l.ReplaceAddrs(CategoryBlacklist, []netip.Addr{netip.MustParseAddr("::ffff:192.0.2.8")})

	if !l.Check("192.0.2.8").Blacklisted {
		t.Error("IPv4-mapped feed entry should match plain IPv4 lookup")
	}
}

func TestLookupClear(t *testing.T) {
	t.Parallel()

	l := NewLookup()
	l.ReplaceAddrs(CategoryTor, []netip.Addr{netip.MustParseAddr("198.51.100.1")})
	l.Clear()

	if l.Contains("198.51.100.1") {
		t.Error("Clear should remove all entries")
	}
	if got := l.Stats(); got.IPv4Count != 0 || got.TorAddresses != 0 {
		t.Errorf("Stats after Clear = %+v, want empty", got)
	}
}

// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package intel

import (
	"net/netip"
	"sync"
	"time"
)

// record carries the per-address facts accumulated across feeds.
type record struct {
	vpn           bool
	provider      string
	serverCountry string
	tor           bool
	blacklisted   bool
}

// Lookup is the in-memory IP intelligence database. A single map per
// address family holds the merged view across categories, so one lookup
// answers all three questions.
type Lookup struct {
	mu sync.RWMutex

	ipv4 map[netip.Addr]*record
	ipv6 map[netip.Addr]*record

	providers map[string]struct{}
	counts    map[Category]int
	updated   time.Time
}

// NewLookup creates an empty intelligence database.
func NewLookup() *Lookup {
	return &Lookup{
		ipv4:      make(map[netip.Addr]*record),
		ipv6:      make(map[netip.Addr]*record),
		providers: make(map[string]struct{}),
		counts:    make(map[Category]int),
	}
}

// Check reports what the database knows about an IP address. Unparseable
// input and unknown addresses both yield the zero Result.
func (l *Lookup) Check(ip string) Result {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return Result{}
	}
	addr = addr.Unmap()

	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, found := l.lookup(addr)
	if !found {
		return Result{}
	}

	return Result{
		VPNDetected:   rec.vpn,
		Provider:      rec.provider,
		IsTor:         rec.tor,
		Blacklisted:   rec.blacklisted,
		ServerCountry: rec.serverCountry,
	}
}

// Contains reports whether the address appears in any feed.
func (l *Lookup) Contains(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	l.mu.RLock()
	defer l.mu.RUnlock()

	_, found := l.lookup(addr)
	return found
}

func (l *Lookup) lookup(addr netip.Addr) (*record, bool) {
	if addr.Is4() {
		rec, found := l.ipv4[addr]
		return rec, found
	}
	rec, found := l.ipv6[addr]
	return rec, found
}

// ReplaceVPN atomically swaps the VPN server set. Addresses keyed by
// provider are merged over whatever the Tor and blacklist feeds contributed.
func (l *Lookup) ReplaceVPN(servers []VPNServer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.clearCategoryLocked(CategoryVPN)
	l.providers = make(map[string]struct{})

	count := 0
	for i := range servers {
		srv := &servers[i]
		for _, ipStr := range srv.IPs {
			addr, err := netip.ParseAddr(ipStr)
			if err != nil {
				continue
			}
			rec := l.ensure(addr.Unmap())
			rec.vpn = true
			rec.provider = srv.Provider
			rec.serverCountry = srv.Country
			count++
		}
		if srv.Provider != "" {
			l.providers[srv.Provider] = struct{}{}
		}
	}

	l.counts[CategoryVPN] = count
	l.updated = time.Now()
}

// ReplaceAddrs atomically swaps the Tor or blacklist address set.
func (l *Lookup) ReplaceAddrs(category Category, addrs []netip.Addr) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.clearCategoryLocked(category)

	count := 0
	for _, addr := range addrs {
		rec := l.ensure(addr.Unmap())
		switch category {
		case CategoryTor:
			rec.tor = true
		case CategoryBlacklist:
			rec.blacklisted = true
		default:
			continue
		}
		count++
	}

	l.counts[category] = count
	l.updated = time.Now()
}

// ensure returns the record for addr, creating it if absent.
// Caller must hold the write lock.
func (l *Lookup) ensure(addr netip.Addr) *record {
	m := l.ipv6
	if addr.Is4() {
		m = l.ipv4
	}
	rec, found := m[addr]
	if !found {
		rec = &record{}
		m[addr] = rec
	}
	return rec
}

// clearCategoryLocked unsets one category's flags on every record and
// reaps records that no longer carry any flag.
func (l *Lookup) clearCategoryLocked(category Category) {
	for _, m := range []map[netip.Addr]*record{l.ipv4, l.ipv6} {
		for addr, rec := range m {
			switch category {
			case CategoryVPN:
				rec.vpn = false
				rec.provider = ""
				rec.serverCountry = ""
			case CategoryTor:
				rec.tor = false
			case CategoryBlacklist:
				rec.blacklisted = false
			}
			if !rec.vpn && !rec.tor && !rec.blacklisted {
				delete(m, addr)
			}
		}
	}
	l.counts[category] = 0
}

// Stats returns the current database statistics.
func (l *Lookup) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return Stats{
		VPNProviders:       len(l.providers),
		VPNAddresses:       l.counts[CategoryVPN],
		TorAddresses:       l.counts[CategoryTor],
		BlacklistAddresses: l.counts[CategoryBlacklist],
		IPv4Count:          len(l.ipv4),
		IPv6Count:          len(l.ipv6),
		LastUpdated:        l.updated,
	}
}

// Clear empties the database.
func (l *Lookup) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ipv4 = make(map[netip.Addr]*record)
	l.ipv6 = make(map[netip.Addr]*record)
	l.providers = make(map[string]struct{})
	l.counts = make(map[Category]int)
}

// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

// Package intel maintains the IP threat-intelligence database: known VPN
// server addresses, Tor exit nodes, and blacklisted IPs loaded from local
// files or remote feeds.
//
// Lookups use exact-match netip maps, O(1) per address for both IPv4 and
// IPv6. Feed contents are replaced atomically per category so a partially
// parsed feed never leaves the database in a mixed state.
//
// Data sources:
//   - VPN servers: github.com/qdm12/gluetun servers.json
//     Format: {provider: {version, timestamp, servers: [{country, city, ips[], ...}]}}
//   - Tor exits and blacklists: plaintext, one address per line, # comments
package intel

import (
	"time"
)

// Category identifies which feed an IP address came from.
type Category string

const (
	// CategoryVPN marks addresses of known VPN provider servers.
	CategoryVPN Category = "vpn"

	// CategoryTor marks known Tor exit node addresses.
	CategoryTor Category = "tor"

	// CategoryBlacklist marks addresses from abuse blacklists.
	CategoryBlacklist Category = "blacklist"
)

// Result is the outcome of a database lookup for a single IP.
type Result struct {
	// VPNDetected is true when the IP is a known VPN server address.
	VPNDetected bool `json:"vpn_detected"`

	// Provider is the VPN provider name (empty unless VPNDetected).
	Provider string `json:"provider,omitempty"`

	// IsTor is true when the IP is a known Tor exit node.
	IsTor bool `json:"is_tor"`

	// Blacklisted is true when the IP appears on an abuse blacklist.
	Blacklisted bool `json:"blacklisted"`

	// ServerCountry is the VPN server's country from the feed, if known.
	ServerCountry string `json:"server_country,omitempty"`
}

// Source is the capability the detection pipeline consumes. The concrete
// *Lookup satisfies it; tests substitute fixed-answer fakes.
type Source interface {
	Check(ip string) Result
}

// Stats describes the current contents of the database.
type Stats struct {
	// VPNProviders is the number of distinct VPN providers loaded.
	VPNProviders int `json:"vpn_providers"`

	// VPNAddresses is the number of known VPN server addresses.
	VPNAddresses int `json:"vpn_addresses"`

	// TorAddresses is the number of known Tor exit addresses.
	TorAddresses int `json:"tor_addresses"`

	// BlacklistAddresses is the number of blacklisted addresses.
	BlacklistAddresses int `json:"blacklist_addresses"`

	// IPv4Count and IPv6Count split the total by address family.
	IPv4Count int `json:"ipv4_count"`
	IPv6Count int `json:"ipv6_count"`

	// LastUpdated is when any feed last changed the database.
	LastUpdated time.Time `json:"last_updated"`
}

// FeedConfig describes one remote or local feed.
type FeedConfig struct {
	// Category selects how the feed contents are interpreted.
	Category Category `koanf:"category" json:"category"`

	// URL is the remote feed location. Mutually exclusive with Path.
	URL string `koanf:"url" json:"url,omitempty"`

	// Path is a local file to load instead of fetching. Useful for
	// air-gapped deployments and tests.
	Path string `koanf:"path" json:"path,omitempty"`
}

// Config holds intel subsystem configuration.
type Config struct {
	// Enabled controls whether intel lookups are consulted at all.
	Enabled bool `koanf:"enabled" json:"enabled"`

	// Feeds lists the data sources to load.
	Feeds []FeedConfig `koanf:"feeds" json:"feeds"`

	// UpdateInterval is how often remote feeds are refreshed.
	UpdateInterval time.Duration `koanf:"update_interval" json:"update_interval"`

	// HTTPTimeout bounds each feed fetch.
	HTTPTimeout time.Duration `koanf:"http_timeout" json:"http_timeout"`

	// RetryAttempts is the number of retries per fetch.
	RetryAttempts int `koanf:"retry_attempts" json:"retry_attempts"`

	// RetryDelay is the initial retry delay (doubles each attempt).
	RetryDelay time.Duration `koanf:"retry_delay" json:"retry_delay"`

	// FetchesPerMinute paces feed downloads so a long feed list does not
	// hammer upstream mirrors on startup.
	FetchesPerMinute int `koanf:"fetches_per_minute" json:"fetches_per_minute"`
}

// DefaultConfig returns sensible intel defaults. Remote updates are
// opt-in: with no feeds configured the database stays empty and all
// lookups return a negative result.
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		UpdateInterval:   24 * time.Hour,
		HTTPTimeout:      60 * time.Second,
		RetryAttempts:    3,
		RetryDelay:       5 * time.Second,
		FetchesPerMinute: 10,
	}
}

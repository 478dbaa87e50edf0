// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package intel

import (
	"bufio"
	"bytes"
	"fmt"
	"net/netip"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/veilscan/veilscan/internal/logging"
)

// VPNServer is one server entry from a VPN provider feed.
type VPNServer struct {
	Provider string   `json:"provider"`
	Country  string   `json:"country"`
	City     string   `json:"city,omitempty"`
	Hostname string   `json:"hostname,omitempty"`
	IPs      []string `json:"ips"`
}

// gluetunProvider mirrors one provider object in gluetun's servers.json.
type gluetunProvider struct {
	Version   int   `json:"version"`
	Timestamp int64 `json:"timestamp"`
	Servers   []struct {
		Country  string   `json:"country"`
		City     string   `json:"city,omitempty"`
		Hostname string   `json:"hostname,omitempty"`
		IPs      []string `json:"ips"`
	} `json:"servers"`
}

// ParseVPNFeed parses gluetun-format JSON into server entries.
func ParseVPNFeed(data []byte) ([]VPNServer, error) {
	// RawMessage handles mixed types: the root "version" field is an int,
	// providers are objects.
	var rawData map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawData); err != nil {
		return nil, fmt.Errorf("failed to parse VPN feed JSON: %w", err)
	}

	var servers []VPNServer
	for providerName, rawProvider := range rawData {
		if providerName == "version" {
			continue
		}

		var providerData gluetunProvider
		if err := json.Unmarshal(rawProvider, &providerData); err != nil {
			// Skip entries that don't match provider format
			continue
		}

		for idx := range providerData.Servers {
			srv := &providerData.Servers[idx]
			servers = append(servers, VPNServer{
				Provider: providerName,
				Country:  srv.Country,
				City:     srv.City,
				Hostname: srv.Hostname,
				IPs:      srv.IPs,
			})
		}
	}

	return servers, nil
}

// ParseAddrList parses a plaintext feed (one address per line, # comments)
// as used by Tor exit lists and IP blacklists. Invalid lines are skipped.
func ParseAddrList(data []byte) []netip.Addr {
	var addrs []netip.Addr

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// dan.me.uk-style lists may suffix a port or flags after whitespace.
		if idx := strings.IndexAny(line, " \t"); idx > 0 {
			line = line[:idx]
		}
		addr, err := netip.ParseAddr(line)
		if err != nil {
			continue
		}
		addrs = append(addrs, addr)
	}

	return addrs
}

// ApplyFeed parses raw feed bytes per the category and installs the result
// into the lookup database.
func ApplyFeed(lookup *Lookup, category Category, data []byte) error {
	switch category {
	case CategoryVPN:
		servers, err := ParseVPNFeed(data)
		if err != nil {
			return err
		}
		lookup.ReplaceVPN(servers)
	case CategoryTor, CategoryBlacklist:
		lookup.ReplaceAddrs(category, ParseAddrList(data))
	default:
		return fmt.Errorf("unknown feed category: %q", category)
	}
	return nil
}

// LoadFile loads one feed from a local file.
func LoadFile(lookup *Lookup, feed FeedConfig) error {
	data, err := os.ReadFile(feed.Path) //nolint:gosec // G304: path is trusted input from configuration
	if err != nil {
		return fmt.Errorf("failed to read feed file: %w", err)
	}

	if err := ApplyFeed(lookup, feed.Category, data); err != nil {
		return err
	}

	logging.Info().
		Str("path", feed.Path).
		Str("category", string(feed.Category)).
		Msg("Loaded intel feed from file")

	return nil
}

// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package producers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/veilscan/veilscan/internal/evidence"
	"github.com/veilscan/veilscan/internal/intel"
)

// maxSourceResponseBytes caps a single reputation API response.
const maxSourceResponseBytes = 1 << 20

// RemoteSource queries an HTTP reputation/geolocation API. The URL template
// carries an {ip} placeholder. The response decoder accepts the common
// field names of ip-api.com-style services plus the usual reputation flag
// spellings; absent fields stay at their zero values and are ignored by
// the merge.
type RemoteSource struct {
	name        string
	urlTemplate string
	client      *http.Client
}

// NewRemoteSource creates a remote IP source. The source name is derived
// from the endpoint host.
func NewRemoteSource(urlTemplate string, client *http.Client) (*RemoteSource, error) {
	if !strings.Contains(urlTemplate, "{ip}") {
		return nil, fmt.Errorf("source url %q missing {ip} placeholder", urlTemplate)
	}
	probe := strings.ReplaceAll(urlTemplate, "{ip}", "0.0.0.0")
	parsed, err := url.Parse(probe)
	if err != nil {
		return nil, fmt.Errorf("invalid source url: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &RemoteSource{
		name:        parsed.Hostname(),
		urlTemplate: urlTemplate,
		client:      client,
	}, nil
}

// Name identifies the source in logs and metrics.
func (s *RemoteSource) Name() string { return s.name }

// remotePayload is the superset of fields the supported services return.
type remotePayload struct {
	Status      string  `json:"status,omitempty"`
	Query       string  `json:"query,omitempty"`
	Country     string  `json:"country,omitempty"`
	CountryCode string  `json:"countryCode,omitempty"`
	City        string  `json:"city,omitempty"`
	ISP         string  `json:"isp,omitempty"`
	Org         string  `json:"org,omitempty"`
	AS          string  `json:"as,omitempty"`
	Timezone    string  `json:"timezone,omitempty"`
	Lat         float64 `json:"lat,omitempty"`
	Lon         float64 `json:"lon,omitempty"`

	Proxy       bool    `json:"proxy,omitempty"`
	Hosting     bool    `json:"hosting,omitempty"`
	Datacenter  bool    `json:"datacenter,omitempty"`
	VPN         bool    `json:"vpn,omitempty"`
	Tor         bool    `json:"tor,omitempty"`
	Blacklisted bool    `json:"blacklisted,omitempty"`
	RiskScore   float64 `json:"risk_score,omitempty"`

	Mobile bool `json:"mobile,omitempty"`
}

// Lookup queries the remote service for one address.
func (s *RemoteSource) Lookup(ctx context.Context, ip string) (evidence.IPAnalysis, error) {
	endpoint := strings.ReplaceAll(s.urlTemplate, "{ip}", url.PathEscape(ip))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return evidence.IPAnalysis{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return evidence.IPAnalysis{}, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return evidence.IPAnalysis{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceResponseBytes))
	if err != nil {
		return evidence.IPAnalysis{}, fmt.Errorf("failed to read response: %w", err)
	}

	var payload remotePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return evidence.IPAnalysis{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if payload.Status != "" && payload.Status != "success" {
		return evidence.IPAnalysis{}, fmt.Errorf("source reported status %q", payload.Status)
	}

	analysis := evidence.IPAnalysis{
		PublicIP:     payload.Query,
		City:         payload.City,
		ISP:          payload.ISP,
		Organization: payload.Org,
		ASN:          asNumber(payload.AS),
		IsDatacenter: payload.Datacenter,
		IsHosting:    payload.Hosting,
		IsTor:        payload.Tor,
		IsProxy:      payload.Proxy,
		VPNDetected:  payload.VPN,
		Blacklisted:  payload.Blacklisted,
		RiskScore:    payload.RiskScore,
		Timezone:     payload.Timezone,
		Latitude:     payload.Lat,
		Longitude:    payload.Lon,
	}
	switch {
	case payload.Country != "" && payload.CountryCode != "":
		analysis.Country = payload.Country + " " + payload.CountryCode
	case payload.Country != "":
		analysis.Country = payload.Country
	case payload.CountryCode != "":
		analysis.Country = payload.CountryCode
	}
	if payload.Mobile {
		analysis.ConnectionType = "mobile"
	}

	return analysis, nil
}

// asNumber strips the trailing organization name from an "AS15169 Google
// LLC" style field.
func asNumber(as string) string {
	if as == "" {
		return ""
	}
	if idx := strings.IndexByte(as, ' '); idx > 0 {
		return as[:idx]
	}
	return as
}

// IntelSource answers reputation flags from the local intelligence
// database. It carries no geolocation data and cannot fail.
type IntelSource struct {
	src intel.Source
}

// NewIntelSource wraps an intel source as an IP source.
func NewIntelSource(src intel.Source) *IntelSource {
	return &IntelSource{src: src}
}

// Name identifies the source in logs and metrics.
func (s *IntelSource) Name() string { return "intel" }

// Lookup answers the reputation flags for one address.
func (s *IntelSource) Lookup(_ context.Context, ip string) (evidence.IPAnalysis, error) {
	res := s.src.Check(ip)

	analysis := evidence.IPAnalysis{
		VPNDetected: res.VPNDetected,
		IsTor:       res.IsTor,
		Blacklisted: res.Blacklisted,
	}
	if res.Provider != "" {
		analysis.Organization = res.Provider
	}

	return analysis, nil
}

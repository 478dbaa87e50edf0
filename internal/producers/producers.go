// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

// Package producers implements the five evidence producers and the
// orchestrator that runs them concurrently per detection run.
//
// Producers are independent: none consumes another's output, each is
// individually fallible, and each failure is absorbed by substituting the
// neutral sentinel for its evidence category. Producers that need
// geolocation (WebRTC, location check) hold their own Geolocator rather
// than waiting on the IP resolver.
package producers

import (
	"context"
	"time"

	"github.com/veilscan/veilscan/internal/evidence"
)

// Request carries the client-submitted material one detection run works on.
type Request struct {
	// ClientIP is the connecting public address as seen by the server.
	ClientIP string

	// UserAgent is the client's User-Agent header.
	UserAgent string

	// ICECandidates are WebRTC ICE candidates gathered in the browser.
	ICECandidates []ICECandidate

	// Attributes are browser fingerprint attributes collected client-side.
	Attributes ClientAttributes

	// GPS is the client-reported geolocation, nil when permission was
	// denied or the device has no fix.
	GPS *GPSCoordinates
}

// ICECandidate is one WebRTC ICE candidate as submitted by the client.
type ICECandidate struct {
	// Type is the candidate type: host, srflx, or relay.
	Type string `json:"type" koanf:"type"`

	// Address is the candidate IP address.
	Address string `json:"address" koanf:"address"`
}

// ClientAttributes are the raw browser fingerprint attributes.
type ClientAttributes struct {
	Timezone            string   `json:"timezone"`
	Languages           []string `json:"languages"`
	CanvasHash          string   `json:"canvas_hash"`
	WebGLHash           string   `json:"webgl_hash"`
	Platform            string   `json:"platform"`
	Webdriver           bool     `json:"webdriver"`
	PluginCount         int      `json:"plugin_count"`
	ScreenWidth         int      `json:"screen_width"`
	ScreenHeight        int      `json:"screen_height"`
	HardwareConcurrency int      `json:"hardware_concurrency"`
}

// GPSCoordinates is a client-reported device location.
type GPSCoordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// AccuracyMeters is the reported fix accuracy.
	AccuracyMeters float64 `json:"accuracy_meters"`

	// CountryCode is the client-side reverse-geocoded ISO country code,
	// empty when unavailable.
	CountryCode string `json:"country_code,omitempty"`
}

// IPResolver produces IP reputation and geolocation evidence.
type IPResolver interface {
	Resolve(ctx context.Context, ip string) (evidence.IPAnalysis, error)
}

// WebRTCAnalyzer produces WebRTC leak evidence from ICE candidates.
type WebRTCAnalyzer interface {
	Analyze(ctx context.Context, req Request) (evidence.WebRTCLeak, error)
}

// FingerprintAnalyzer produces fingerprint suspicion evidence.
type FingerprintAnalyzer interface {
	Analyze(ctx context.Context, req Request) (evidence.Fingerprint, error)
}

// LocationChecker produces GPS-vs-IP mismatch evidence.
type LocationChecker interface {
	Check(ctx context.Context, req Request) (evidence.LocationMismatch, error)
}

// BotDetector produces automation/headless evidence.
type BotDetector interface {
	Detect(ctx context.Context, req Request) (evidence.BotDetection, error)
}

// GeoInfo is a geolocation answer for a single IP address.
type GeoInfo struct {
	CountryCode  string
	CountryName  string
	City         string
	Latitude     float64
	Longitude    float64
	Timezone     string
	ASN          uint
	Organization string
}

// Geolocator answers geolocation queries for individual addresses. The
// MaxMind-backed implementation is in geoip.go; tests substitute fakes.
type Geolocator interface {
	Locate(ip string) (GeoInfo, error)
}

// Config bounds the producers and names their external sources.
type Config struct {
	// Timeout bounds each producer call individually. A producer that
	// exceeds it yields neutral evidence for its category.
	Timeout time.Duration `koanf:"timeout"`

	// IPSourceURLs are remote IP reputation/geolocation endpoints, in
	// merge priority order. Each URL must contain the placeholder {ip}.
	IPSourceURLs []string `koanf:"ip_source_urls"`

	// GeoIPCityPath and GeoIPASNPath locate local MaxMind databases.
	// Empty paths disable the local resolver.
	GeoIPCityPath string `koanf:"geoip_city_path"`
	GeoIPASNPath  string `koanf:"geoip_asn_path"`
}

// DefaultConfig returns the default producer bounds.
func DefaultConfig() Config {
	return Config{
		Timeout: 5 * time.Second,
	}
}

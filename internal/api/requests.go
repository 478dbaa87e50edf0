// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package api

import (
	"net"
	"net/http"
	"strconv"

	"github.com/veilscan/veilscan/internal/producers"
)

// DetectRequest is the POST /api/v1/detect payload. All fields are optional:
// a missing client IP falls back to the connection address, and missing
// browser evidence yields neutral sentinels downstream.
type DetectRequest struct {
	// ClientIP overrides the connection address, for deployments where the
	// caller proxies on behalf of the end client.
	ClientIP string `json:"client_ip" validate:"omitempty,ip"`

	ICECandidates []producers.ICECandidate   `json:"ice_candidates" validate:"omitempty,dive"`
	Attributes    producers.ClientAttributes `json:"attributes"`
	GPS           *GPSPayload                `json:"gps"`
}

// GPSPayload carries browser geolocation evidence.
type GPSPayload struct {
	Latitude       float64 `json:"latitude" validate:"latitude"`
	Longitude      float64 `json:"longitude" validate:"longitude"`
	AccuracyMeters float64 `json:"accuracy_meters" validate:"omitempty,gte=0"`
	CountryCode    string  `json:"country_code" validate:"omitempty,len=2"`
}

// ToProducerRequest maps the API payload to a producer request, resolving
// the client IP from the payload or the connection and the user agent from
// the request header.
func (d *DetectRequest) ToProducerRequest(r *http.Request) producers.Request {
	clientIP := d.ClientIP
	if clientIP == "" {
		clientIP = remoteIP(r)
	}

	req := producers.Request{
		ClientIP:      clientIP,
		UserAgent:     r.UserAgent(),
		ICECandidates: d.ICECandidates,
		Attributes:    d.Attributes,
	}
	if d.GPS != nil {
		req.GPS = &producers.GPSCoordinates{
			Latitude:       d.GPS.Latitude,
			Longitude:      d.GPS.Longitude,
			AccuracyMeters: d.GPS.AccuracyMeters,
			CountryCode:    d.GPS.CountryCode,
		}
	}
	return req
}

// remoteIP extracts the client address from the request. chi's RealIP
// middleware has already rewritten RemoteAddr from proxy headers when
// applicable.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// listLimit parses the ?limit query parameter, clamped to [1, max].
func listLimit(r *http.Request, fallback, max int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	if n > max {
		return max
	}
	return n
}

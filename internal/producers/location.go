// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package producers

import (
	"context"
	"fmt"
	"math"

	"github.com/veilscan/veilscan/internal/evidence"
)

// Distance thresholds for the GPS-vs-IP cross-check, in kilometers.
// Within goodMatchKm the IP geolocation corroborates the device fix;
// beyond mismatchKm the two cannot plausibly describe the same client.
const (
	goodMatchKm = 100.0
	mismatchKm  = 1000.0
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// GPSChecker cross-checks the client-reported GPS fix against the IP's
// geolocation. It abstains (MatchUnknown) whenever either side is missing.
type GPSChecker struct {
	locator Geolocator
}

// NewGPSChecker creates a location checker. locator may be nil, in which
// case every check abstains.
func NewGPSChecker(locator Geolocator) *GPSChecker {
	return &GPSChecker{locator: locator}
}

// Check compares the device fix to the IP location.
func (c *GPSChecker) Check(_ context.Context, req Request) (evidence.LocationMismatch, error) {
	result := evidence.UnknownLocationMismatch()

	if req.GPS == nil {
		result.Message = "GPS location unavailable"
		return result, nil
	}
	result.GPSAvailable = true

	if c.locator == nil {
		result.Message = "IP location unavailable"
		return result, nil
	}

	info, err := c.locator.Locate(req.ClientIP)
	if err != nil {
		result.Message = "IP location unavailable"
		return result, nil
	}

	// Explicit country mismatch overrides distance: a client-side reverse
	// geocode that disagrees with the IP's country is a mismatch even when
	// the raw coordinates are close (border regions aside, this means the
	// IP location is not where the device is).
	if req.GPS.CountryCode != "" && info.CountryCode != "" && req.GPS.CountryCode != info.CountryCode {
		result.HasMismatch = true
		result.MatchLevel = evidence.MatchMismatch
		result.Message = fmt.Sprintf("GPS country %s does not match IP country %s",
			req.GPS.CountryCode, info.CountryCode)
		if !evidence.IsUnknownLocation(info.Latitude, info.Longitude) {
			d := haversineKm(req.GPS.Latitude, req.GPS.Longitude, info.Latitude, info.Longitude)
			result.DistanceKm = &d
		}
		return result, nil
	}

	if evidence.IsUnknownLocation(info.Latitude, info.Longitude) {
		result.Message = "IP location unavailable"
		return result, nil
	}

	d := haversineKm(req.GPS.Latitude, req.GPS.Longitude, info.Latitude, info.Longitude)
	result.DistanceKm = &d

	switch {
	case d < goodMatchKm:
		result.MatchLevel = evidence.MatchGood
		result.Message = fmt.Sprintf("GPS and IP locations agree (%.0f km apart)", d)
	case d < mismatchKm:
		result.MatchLevel = evidence.MatchFair
		result.Message = fmt.Sprintf("GPS and IP locations roughly agree (%.0f km apart)", d)
	default:
		result.HasMismatch = true
		result.MatchLevel = evidence.MatchMismatch
		result.Message = fmt.Sprintf("GPS location is %.0f km from IP location", d)
	}

	return result, nil
}

// haversineKm returns the great-circle distance between two coordinates.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180

	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

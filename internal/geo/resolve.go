// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package geo

import "strings"

// CountryCode extracts an ISO 3166-1 alpha-2 country code from a free-text
// country field. Geolocation services commonly return strings like
// "United States US" or "Germany DE"; the convention is that the trailing
// all-uppercase 2-letter token is the code. A bare 2-letter uppercase string
// ("US") also resolves. Returns ok=false when no code can be extracted.
func CountryCode(freeText string) (string, bool) {
	trimmed := strings.TrimSpace(freeText)
	if trimmed == "" || strings.EqualFold(trimmed, "Unknown") {
		return "", false
	}

	fields := strings.Fields(trimmed)
	last := fields[len(fields)-1]
	if len(last) != 2 {
		return "", false
	}
	if last != strings.ToUpper(last) {
		return "", false
	}
	for _, r := range last {
		if r < 'A' || r > 'Z' {
			return "", false
		}
	}
	return last, true
}

// ContinentForCountry returns the continent for an ISO country code.
func ContinentForCountry(code string) (string, bool) {
	continent, ok := countryContinent[strings.ToUpper(code)]
	return continent, ok
}

// TimezoneForCountry returns a representative IANA timezone for a country.
// The zone is approximate for countries spanning multiple zones; it is only
// ever used as a fallback feeding a mismatch heuristic.
func TimezoneForCountry(code string) (string, bool) {
	zone, ok := countryTimezone[strings.ToUpper(code)]
	return zone, ok
}

// ContinentForTimezone returns the continent an IANA timezone belongs to.
// Resolution order: the zone index (covers every representative zone plus
// common secondary-city zones), then an IANA-prefix fallback. The "America/"
// prefix never falls back because it spans two continents; unknown American
// zones return ok=false so mismatch checks abstain rather than guess.
func ContinentForTimezone(zone string) (string, bool) {
	if zone == "" || strings.EqualFold(zone, "Unknown") {
		return "", false
	}

	if continent, ok := timezoneContinent[zone]; ok {
		return continent, true
	}

	prefix, _, found := strings.Cut(zone, "/")
	if !found {
		return "", false
	}

	switch prefix {
	case "Europe":
		return ContinentEurope, true
	case "Asia":
		return ContinentAsia, true
	case "Africa":
		return ContinentAfrica, true
	case "Australia", "Pacific":
		return ContinentOceania, true
	case "Antarctica":
		return ContinentAntarctica, true
	default:
		return "", false
	}
}

// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package geo

import "testing"

func TestCountryCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"trailing code", "United States US", "US", true},
		{"bare code", "DE", "DE", true},
		{"multi word country", "United Kingdom GB", "GB", true},
		{"lowercase tail rejected", "United States us", "", false},
		{"mixed case tail rejected", "France Fr", "", false},
		{"no code", "United States", "", false},
		{"unknown sentinel", "Unknown", "", false},
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
		{"digits rejected", "Somewhere 42", "", false},
		{"trailing spaces", "Japan JP  ", "JP", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := CountryCode(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("CountryCode(%q) = (%q, %v), want (%q, %v)",
					tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestContinentForCountry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code   string
		want   string
		wantOK bool
	}{
		{"US", ContinentNorthAmerica, true},
		{"us", ContinentNorthAmerica, true},
		{"BR", ContinentSouthAmerica, true},
		{"GB", ContinentEurope, true},
		{"JP", ContinentAsia, true},
		{"ZA", ContinentAfrica, true},
		{"AU", ContinentOceania, true},
		{"AQ", ContinentAntarctica, true},
		{"XX", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ContinentForCountry(tt.code)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ContinentForCountry(%q) = (%q, %v), want (%q, %v)",
				tt.code, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestTimezoneForCountry(t *testing.T) {
	t.Parallel()

	zone, ok := TimezoneForCountry("US")
	if !ok || zone != "America/New_York" {
		t.Errorf("TimezoneForCountry(US) = (%q, %v), want (America/New_York, true)", zone, ok)
	}

	if _, ok := TimezoneForCountry("XX"); ok {
		t.Error("expected unknown country code to miss")
	}
}

func TestContinentForTimezone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		zone   string
		want   string
		wantOK bool
	}{
		{"America/New_York", ContinentNorthAmerica, true},
		{"America/Los_Angeles", ContinentNorthAmerica, true},
		{"America/Sao_Paulo", ContinentSouthAmerica, true},
		{"America/Argentina/Buenos_Aires", ContinentSouthAmerica, true},
		{"Europe/London", ContinentEurope, true},
		{"Asia/Tokyo", ContinentAsia, true},
		{"Africa/Lagos", ContinentAfrica, true},
		{"Australia/Sydney", ContinentOceania, true},
		{"Pacific/Auckland", ContinentOceania, true},
		{"Antarctica/McMurdo", ContinentAntarctica, true},
		// Prefix fallback for zones missing from the index.
		{"Europe/Isle_of_Man", ContinentEurope, true},
		{"Asia/Thimphu", ContinentAsia, true},
		// Ambiguous America/* zones not in the index must abstain.
		{"America/Atikokan", "", false},
		{"Unknown", "", false},
		{"", "", false},
		{"UTC", "", false},
	}

	for _, tt := range tests {
		got, ok := ContinentForTimezone(tt.zone)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ContinentForTimezone(%q) = (%q, %v), want (%q, %v)",
				tt.zone, got, ok, tt.want, tt.wantOK)
		}
	}
}

// Every entry in countryTimezone must resolve to the same continent as its
// country, otherwise the timezone index would contradict the country table.
func TestTablesAreConsistent(t *testing.T) {
	t.Parallel()

	for code, zone := range countryTimezone {
		wantContinent, ok := countryContinent[code]
		if !ok {
			t.Errorf("country %s has a timezone but no continent entry", code)
			continue
		}
		// Cross-continent representative zones are legitimate for a handful
		// of transcontinental countries (TR, CY, RU); skip those.
		if code == "TR" || code == "CY" || code == "RU" {
			continue
		}
		got, ok := ContinentForTimezone(zone)
		if !ok {
			t.Errorf("representative zone %s for %s does not resolve", zone, code)
			continue
		}
		if got != wantContinent {
			t.Errorf("zone %s resolves to %s, but country %s is in %s",
				zone, got, code, wantContinent)
		}
	}
}

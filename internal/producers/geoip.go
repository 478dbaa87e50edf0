// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package producers

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// MaxMindLocator answers geolocation queries from local MaxMind databases.
// The ASN reader is optional.
type MaxMindLocator struct {
	cityReader *geoip2.Reader
	asnReader  *geoip2.Reader
}

// NewMaxMindLocator opens the given .mmdb files. asnDBPath may be empty.
func NewMaxMindLocator(cityDBPath, asnDBPath string) (*MaxMindLocator, error) {
	cityReader, err := geoip2.Open(cityDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open city database: %w", err)
	}

	var asnReader *geoip2.Reader
	if asnDBPath != "" {
		asnReader, err = geoip2.Open(asnDBPath)
		if err != nil {
			cityReader.Close()
			return nil, fmt.Errorf("failed to open ASN database: %w", err)
		}
	}

	return &MaxMindLocator{
		cityReader: cityReader,
		asnReader:  asnReader,
	}, nil
}

// Close releases the underlying database handles.
func (m *MaxMindLocator) Close() error {
	var firstErr error
	if m.cityReader != nil {
		firstErr = m.cityReader.Close()
	}
	if m.asnReader != nil {
		if err := m.asnReader.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Locate returns geolocation data for the given address.
func (m *MaxMindLocator) Locate(ipStr string) (GeoInfo, error) {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return GeoInfo{}, fmt.Errorf("invalid ip address: %s", ipStr)
	}

	record, err := m.cityReader.City(ip)
	if err != nil {
		return GeoInfo{}, fmt.Errorf("city lookup failed: %w", err)
	}

	info := GeoInfo{
		CountryCode: record.Country.IsoCode,
		CountryName: record.Country.Names["en"],
		City:        record.City.Names["en"],
		Latitude:    record.Location.Latitude,
		Longitude:   record.Location.Longitude,
		Timezone:    record.Location.TimeZone,
	}

	if m.asnReader != nil {
		asn, asnErr := m.asnReader.ASN(ip)
		if asnErr == nil {
			info.ASN = asn.AutonomousSystemNumber
			info.Organization = asn.AutonomousSystemOrganization
		}
	}

	return info, nil
}

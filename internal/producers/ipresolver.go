// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package producers

import (
	"context"
	"fmt"
	"net/netip"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"

	"github.com/veilscan/veilscan/internal/evidence"
	"github.com/veilscan/veilscan/internal/geo"
	"github.com/veilscan/veilscan/internal/logging"
	"github.com/veilscan/veilscan/internal/metrics"
)

// IPSource is one IP reputation/geolocation backend. Each returns a
// partial IPAnalysis; zero-value fields are treated as unknown by the merge.
type IPSource interface {
	Name() string
	Lookup(ctx context.Context, ip string) (evidence.IPAnalysis, error)
}

// MultiResolver queries all sources concurrently and folds their answers
// field by field in source priority order: for each field the first known
// value wins, so one slow or broken service never blanks out fields another
// supplied correctly.
//
// Each source sits behind its own circuit breaker so a persistently failing
// backend is skipped instead of being waited on every run.
type MultiResolver struct {
	sources  []IPSource
	breakers []*gobreaker.CircuitBreaker[evidence.IPAnalysis]
}

// NewMultiResolver creates a resolver over the given sources, highest
// priority first.
func NewMultiResolver(sources ...IPSource) *MultiResolver {
	r := &MultiResolver{
		sources:  sources,
		breakers: make([]*gobreaker.CircuitBreaker[evidence.IPAnalysis], len(sources)),
	}
	for i, src := range sources {
		r.breakers[i] = newSourceBreaker(src.Name())
	}
	return r
}

// newSourceBreaker creates a circuit breaker for one IP source.
// Uses the gobreaker v2 generic API.
func newSourceBreaker(name string) *gobreaker.CircuitBreaker[evidence.IPAnalysis] {
	settings := gobreaker.Settings{
		Name: name,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.ResolverBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			logging.Warn().
				Str("source", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("IP resolver breaker state changed")
		},
	}
	return gobreaker.NewCircuitBreaker[evidence.IPAnalysis](settings)
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// Resolve queries every source and merges the answers. It never fails on
// source errors alone: when every source fails the result is the
// fully-unknown sentinel with the queried address echoed back, still a
// valid, scoreable answer. An error is returned only for unparseable input.
func (r *MultiResolver) Resolve(ctx context.Context, ip string) (evidence.IPAnalysis, error) {
	results := make([]evidence.IPAnalysis, len(r.sources))
	succeeded := make([]bool, len(r.sources))

	var g errgroup.Group
	for i := range r.sources {
		g.Go(func() error {
			res, err := r.breakers[i].Execute(func() (evidence.IPAnalysis, error) {
				return r.sources[i].Lookup(ctx, ip)
			})
			if err != nil {
				metrics.ResolverFailures.WithLabelValues(r.sources[i].Name()).Inc()
				logging.Debug().
					Err(err).
					Str("source", r.sources[i].Name()).
					Msg("IP source lookup failed")
				return nil
			}
			results[i] = res
			succeeded[i] = true
			return nil
		})
	}
	_ = g.Wait()

	merged := evidence.UnknownIPAnalysis()
	anySuccess := false
	for i := range results {
		if succeeded[i] {
			evidence.MergeIPAnalysis(&merged, results[i])
			anySuccess = true
		}
	}

	// Timezone backfill: approximate zone from the country when no source
	// supplied one. Feeds a mismatch heuristic only, never a hard fact.
	if !evidence.IsKnown(merged.Timezone) {
		if code, ok := geo.CountryCode(merged.Country); ok {
			if zone, ok := geo.TimezoneForCountry(code); ok {
				merged.Timezone = zone
			}
		}
	}

	// Last-resort public-IP echo so the caller at least sees the address
	// the run was about.
	if !evidence.IsKnown(merged.PublicIP) {
		if _, err := netip.ParseAddr(ip); err != nil {
			if !anySuccess {
				return merged, fmt.Errorf("invalid ip address: %s", ip)
			}
		} else {
			merged.PublicIP = ip
		}
	}

	return merged, nil
}

// MaxMindSource answers geolocation from a local MaxMind database.
type MaxMindSource struct {
	locator Geolocator
}

// NewMaxMindSource wraps a Geolocator as an IP source.
func NewMaxMindSource(locator Geolocator) *MaxMindSource {
	return &MaxMindSource{locator: locator}
}

// Name identifies the source in logs and metrics.
func (s *MaxMindSource) Name() string { return "maxmind" }

// Lookup resolves geolocation fields for the address.
func (s *MaxMindSource) Lookup(_ context.Context, ip string) (evidence.IPAnalysis, error) {
	info, err := s.locator.Locate(ip)
	if err != nil {
		return evidence.IPAnalysis{}, err
	}

	analysis := evidence.IPAnalysis{
		PublicIP:  ip,
		City:      info.City,
		Timezone:  info.Timezone,
		Latitude:  info.Latitude,
		Longitude: info.Longitude,
	}
	// Free-text country with the ISO code as the trailing token, the
	// convention the scoring engine's country resolution expects.
	if info.CountryName != "" && info.CountryCode != "" {
		analysis.Country = info.CountryName + " " + info.CountryCode
	} else if info.CountryCode != "" {
		analysis.Country = info.CountryCode
	}
	if info.ASN != 0 {
		analysis.ASN = fmt.Sprintf("AS%d", info.ASN)
		analysis.Organization = info.Organization
	}

	return analysis, nil
}

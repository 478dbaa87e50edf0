// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

// Package main is the entry point for the VeilScan detection server.
//
// VeilScan scores web clients for VPN, proxy, Tor, and automation use from
// five independent evidence producers: IP reputation, WebRTC leak analysis,
// browser fingerprinting, GPS-vs-IP location checks, and bot heuristics.
//
// Startup order:
//
//  1. Configuration: koanf v2 layered load (defaults, YAML file, VEILSCAN_ env)
//  2. Logging: zerolog per the logging section
//  3. Stores: verdict log (BadgerDB), client tracker, intel lookup
//  4. Producers: IP resolver fan-out, WebRTC, fingerprint, location, bot
//  5. Supervision tree: verdict writer, eviction loop, intel updater,
//     websocket hub, HTTP server
//
// Shutdown is graceful on SIGINT/SIGTERM: the supervision tree cancels every
// service, the HTTP server drains in-flight requests, and the verdict writer
// flushes its queue before the stores close.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/veilscan/veilscan/internal/api"
	"github.com/veilscan/veilscan/internal/config"
	"github.com/veilscan/veilscan/internal/detection"
	"github.com/veilscan/veilscan/internal/intel"
	"github.com/veilscan/veilscan/internal/logging"
	"github.com/veilscan/veilscan/internal/producers"
	"github.com/veilscan/veilscan/internal/scoring"
	"github.com/veilscan/veilscan/internal/supervisor"
	"github.com/veilscan/veilscan/internal/tracker"
	"github.com/veilscan/veilscan/internal/verdictlog"
	ws "github.com/veilscan/veilscan/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging)
	logging.Info().
		Str("addr", cfg.Server.ListenAddr()).
		Int("detection_threshold", cfg.Scoring.DetectionThreshold).
		Bool("intel_enabled", cfg.Intel.Enabled).
		Msg("Starting VeilScan")

	// Verdict log store. An empty path runs Badger in memory, which is only
	// useful for local experiments.
	store, err := verdictlog.Open(cfg.VerdictLog)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.VerdictLog.Path).Msg("Failed to open verdict log")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing verdict log")
		}
	}()

	clientTracker := tracker.NewStore(cfg.Tracker)
	lookup := intel.NewLookup()

	collector, locatorClose := buildCollector(cfg, lookup, clientTracker)
	if locatorClose != nil {
		defer locatorClose()
	}

	writer := verdictlog.NewAsyncWriter(store)
	hub := ws.NewHub()
	detector := detection.NewService(collector, scoring.NewEngine(cfg.Scoring), writer, hub)

	var updater *intel.Updater
	if cfg.Intel.Enabled && len(cfg.Intel.Feeds) > 0 {
		updater = intel.NewUpdater(lookup, cfg.Intel)
	}

	handler := api.NewHandler(detector, store, hub, intelStatus(updater), cfg.Security.CORSOrigins)
	router := api.NewRouter(handler, api.RouterConfig{
		CORSOrigins:     cfg.Security.CORSOrigins,
		DetectRateLimit: cfg.Security.DetectRateLimit,
		ReadRateLimit:   cfg.Security.ReadRateLimit,
	})

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddWorker(writer)
	tree.AddWorker(tracker.NewEvictionLoop(clientTracker, cfg.Tracker.RateWindow))
	if updater != nil {
		tree.AddWorker(updater)
	}
	tree.AddMessaging(hub)
	tree.AddAPI(api.NewServer(
		cfg.Server.ListenAddr(),
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		cfg.Server.ShutdownTimeout,
	))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = tree.Serve(ctx)
	if err != nil && err != context.Canceled {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
		os.Exit(1)
	}
	logging.Info().Msg("VeilScan stopped")
}

// buildCollector wires the five producers from configuration. The returned
// close function releases the MaxMind readers when present.
func buildCollector(cfg *config.Config, lookup *intel.Lookup, clientTracker *tracker.Store) (*producers.Collector, func()) {
	var locator producers.Geolocator
	var locatorClose func()
	if cfg.Producers.GeoIPCityPath != "" {
		maxmind, err := producers.NewMaxMindLocator(cfg.Producers.GeoIPCityPath, cfg.Producers.GeoIPASNPath)
		if err != nil {
			logging.Fatal().Err(err).
				Str("city_db", cfg.Producers.GeoIPCityPath).
				Msg("Failed to open MaxMind database")
		}
		locator = maxmind
		locatorClose = func() {
			if err := maxmind.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing MaxMind readers")
			}
		}
	} else {
		logging.Warn().Msg("No MaxMind database configured; local IP geolocation disabled")
	}

	httpClient := &http.Client{Timeout: cfg.Producers.Timeout}
	sources := make([]producers.IPSource, 0, len(cfg.Producers.IPSourceURLs)+2)
	for _, urlTemplate := range cfg.Producers.IPSourceURLs {
		src, err := producers.NewRemoteSource(urlTemplate, httpClient)
		if err != nil {
			logging.Fatal().Err(err).Str("url", urlTemplate).Msg("Invalid IP source URL")
		}
		sources = append(sources, src)
	}
	if locator != nil {
		sources = append(sources, producers.NewMaxMindSource(locator))
	}
	sources = append(sources, producers.NewIntelSource(lookup))

	return producers.NewCollector(
		producers.NewMultiResolver(sources...),
		producers.NewICEAnalyzer(locator),
		producers.NewAttributeAnalyzer(),
		producers.NewGPSChecker(locator),
		producers.NewHeuristicBotDetector(clientTracker),
		cfg.Producers.Timeout,
	), locatorClose
}

// intelStatus adapts a possibly-nil updater to the API's status interface.
func intelStatus(updater *intel.Updater) api.IntelStatus {
	if updater == nil {
		return nil
	}
	return updater
}

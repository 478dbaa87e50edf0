// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

// Package config loads the layered application configuration using koanf v2.
// Precedence, lowest to highest: built-in defaults, optional YAML config
// file, environment variables (VEILSCAN_ prefix).
package config

import (
	"fmt"
	"time"

	"github.com/veilscan/veilscan/internal/intel"
	"github.com/veilscan/veilscan/internal/logging"
	"github.com/veilscan/veilscan/internal/producers"
	"github.com/veilscan/veilscan/internal/scoring"
	"github.com/veilscan/veilscan/internal/tracker"
	"github.com/veilscan/veilscan/internal/verdictlog"
)

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig      `koanf:"server"`
	Logging    logging.Config    `koanf:"logging"`
	Scoring    scoring.Weights   `koanf:"scoring"`
	Producers  producers.Config  `koanf:"producers"`
	Tracker    tracker.Config    `koanf:"tracker"`
	Intel      intel.Config      `koanf:"intel"`
	VerdictLog verdictlog.Config `koanf:"verdict_log"`
	Security   SecurityConfig    `koanf:"security"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// ReadTimeout and WriteTimeout bound each HTTP request.
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown on SIGTERM.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// ListenAddr returns the host:port address to bind.
func (s ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig configures CORS and per-endpoint rate limits.
type SecurityConfig struct {
	// CORSOrigins lists allowed cross-origin hosts. Empty rejects all
	// cross-origin requests.
	CORSOrigins []string `koanf:"cors_origins"`

	// DetectRateLimit is requests per client IP per minute on the detect
	// endpoint. Zero disables the limit.
	DetectRateLimit int `koanf:"detect_rate_limit"`

	// ReadRateLimit applies to verdict listing and other read endpoints.
	ReadRateLimit int `koanf:"read_rate_limit"`
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging:    logging.DefaultConfig(),
		Scoring:    scoring.DefaultWeights(),
		Producers:  producers.DefaultConfig(),
		Tracker:    tracker.DefaultConfig(),
		Intel:      intel.DefaultConfig(),
		VerdictLog: verdictlog.DefaultConfig(),
		Security: SecurityConfig{
			CORSOrigins:     []string{},
			DetectRateLimit: 60,
			ReadRateLimit:   300,
		},
	}
}

// Validate checks the configuration for values that cannot work at runtime.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Scoring.DetectionThreshold < 0 || c.Scoring.DetectionThreshold > 100 {
		return fmt.Errorf("scoring.detection_threshold %d out of range [0,100]", c.Scoring.DetectionThreshold)
	}
	if c.Producers.Timeout <= 0 {
		return fmt.Errorf("producers.timeout must be positive, got %s", c.Producers.Timeout)
	}
	if c.Tracker.Capacity <= 0 {
		return fmt.Errorf("tracker.capacity must be positive, got %d", c.Tracker.Capacity)
	}
	if c.Security.DetectRateLimit < 0 {
		return fmt.Errorf("security.detect_rate_limit must not be negative, got %d", c.Security.DetectRateLimit)
	}
	for i, feed := range c.Intel.Feeds {
		if feed.URL == "" && feed.Path == "" {
			return fmt.Errorf("intel.feeds[%d]: either url or path is required", i)
		}
		switch feed.Category {
		case intel.CategoryVPN, intel.CategoryTor, intel.CategoryBlacklist:
		default:
			return fmt.Errorf("intel.feeds[%d]: unknown category %q", i, feed.Category)
		}
	}
	return nil
}

// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package intel

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/veilscan/veilscan/internal/logging"
)

// maxFeedBytes caps feed downloads to protect memory. Gluetun's
// servers.json is ~20MB; plaintext lists are far smaller.
const maxFeedBytes = 50 * 1024 * 1024

// UpdateStatus tracks the outcome of feed refreshes.
type UpdateStatus struct {
	// LastUpdateAttempt is when a refresh cycle last started.
	LastUpdateAttempt time.Time `json:"last_update_attempt"`

	// LastSuccessfulUpdate is when a cycle last completed without error.
	LastSuccessfulUpdate time.Time `json:"last_successful_update"`

	// LastError is the last error encountered (empty if none).
	LastError string `json:"last_error,omitempty"`

	// FeedHashes maps feed URL to the SHA256 of its last imported payload.
	FeedHashes map[string]string `json:"feed_hashes,omitempty"`

	// NextScheduledUpdate is when the next automatic refresh runs.
	NextScheduledUpdate time.Time `json:"next_scheduled_update,omitempty"`

	// IsUpdating indicates a refresh cycle is in progress.
	IsUpdating bool `json:"is_updating"`
}

// Updater refreshes remote intel feeds on a schedule. It implements
// suture.Service via Serve so the supervisor owns its lifecycle.
type Updater struct {
	cfg     Config
	lookup  *Lookup
	client  *http.Client
	limiter *rate.Limiter

	mu     sync.RWMutex
	status UpdateStatus
}

// NewUpdater creates a feed updater for the given lookup database.
func NewUpdater(lookup *Lookup, cfg Config) *Updater {
	perMinute := cfg.FetchesPerMinute
	if perMinute <= 0 {
		perMinute = 10
	}

	return &Updater{
		cfg:    cfg,
		lookup: lookup,
		client: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		status: UpdateStatus{
			FeedHashes: make(map[string]string),
		},
	}
}

// String identifies the service in supervisor logs.
func (u *Updater) String() string {
	return "intel-updater"
}

// Serve runs the periodic refresh loop until the context is canceled.
func (u *Updater) Serve(ctx context.Context) error {
	interval := u.cfg.UpdateInterval
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	logging.Info().Dur("interval", interval).Msg("Starting intel feed updates")

	if err := u.UpdateNow(ctx); err != nil {
		logging.Warn().Err(err).Msg("Initial intel feed update failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		u.mu.Lock()
		u.status.NextScheduledUpdate = time.Now().Add(interval)
		u.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := u.UpdateNow(ctx); err != nil {
				logging.Warn().Err(err).Msg("Scheduled intel feed update failed")
			}
		}
	}
}

// UpdateNow refreshes every configured feed once. Local file feeds are
// re-read; remote feeds are fetched, skipped when their content hash is
// unchanged, and imported otherwise. Per-feed failures are collected so
// one broken mirror does not stop the rest.
func (u *Updater) UpdateNow(ctx context.Context) error {
	u.mu.Lock()
	if u.status.IsUpdating {
		u.mu.Unlock()
		return fmt.Errorf("update already in progress")
	}
	u.status.IsUpdating = true
	u.status.LastUpdateAttempt = time.Now()
	u.mu.Unlock()

	defer func() {
		u.mu.Lock()
		u.status.IsUpdating = false
		u.mu.Unlock()
	}()

	var firstErr error
	for _, feed := range u.cfg.Feeds {
		var err error
		switch {
		case feed.Path != "":
			err = LoadFile(u.lookup, feed)
		case feed.URL != "":
			err = u.updateFromURL(ctx, feed)
		default:
			err = fmt.Errorf("feed %q has neither url nor path", feed.Category)
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if err != nil {
			logging.Warn().
				Err(err).
				Str("category", string(feed.Category)).
				Str("url", feed.URL).
				Msg("Intel feed update failed")
		}
	}

	u.mu.Lock()
	if firstErr != nil {
		u.status.LastError = firstErr.Error()
	} else {
		u.status.LastSuccessfulUpdate = time.Now()
		u.status.LastError = ""
	}
	u.mu.Unlock()

	return firstErr
}

// updateFromURL fetches one feed and imports it if its content changed.
func (u *Updater) updateFromURL(ctx context.Context, feed FeedConfig) error {
	if err := u.limiter.Wait(ctx); err != nil {
		return err
	}

	data, err := u.fetchWithRetry(ctx, feed.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	hash := sha256.Sum256(data)
	hashStr := hex.EncodeToString(hash[:])

	u.mu.RLock()
	previousHash := u.status.FeedHashes[feed.URL]
	u.mu.RUnlock()

	if hashStr == previousHash {
		logging.Debug().
			Str("category", string(feed.Category)).
			Str("hash", hashStr[:16]).
			Msg("Intel feed unchanged")
		return nil
	}

	if err := ApplyFeed(u.lookup, feed.Category, data); err != nil {
		return fmt.Errorf("failed to import feed: %w", err)
	}

	u.mu.Lock()
	u.status.FeedHashes[feed.URL] = hashStr
	u.mu.Unlock()

	stats := u.lookup.Stats()
	logging.Info().
		Str("category", string(feed.Category)).
		Str("hash", hashStr[:16]).
		Int("vpn_addresses", stats.VPNAddresses).
		Int("tor_addresses", stats.TorAddresses).
		Int("blacklist_addresses", stats.BlacklistAddresses).
		Msg("Intel feed updated")

	return nil
}

// fetchWithRetry fetches a URL with exponential backoff retries.
func (u *Updater) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	delay := u.cfg.RetryDelay
	if delay <= 0 {
		delay = 5 * time.Second
	}

	for attempt := 0; attempt <= u.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		data, err := u.fetch(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
		logging.Warn().Err(err).Int("attempt", attempt+1).Str("url", url).Msg("Intel feed fetch attempt failed")
	}

	return nil, fmt.Errorf("all %d attempts failed: %w", u.cfg.RetryAttempts+1, lastErr)
}

// fetch performs a single HTTP GET request.
func (u *Updater) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "VeilScan-Intel-Updater/1.0")

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	limitedReader := io.LimitReader(resp.Body, maxFeedBytes)
	data, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return data, nil
}

// Status returns a copy of the current update status.
func (u *Updater) Status() UpdateStatus {
	u.mu.RLock()
	defer u.mu.RUnlock()

	status := u.status
	status.FeedHashes = make(map[string]string, len(u.status.FeedHashes))
	for k, v := range u.status.FeedHashes {
		status.FeedHashes[k] = v
	}
	return status
}

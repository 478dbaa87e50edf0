// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

// Package verdictlog is the logging sink for completed detections. It
// persists verdict records in BadgerDB under time-ordered keys and serves
// recent-history queries for the API.
//
// Writes go through the AsyncWriter and are fire-and-forget: a storage
// failure is counted and logged but never reaches the detection caller.
package verdictlog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/veilscan/veilscan/internal/evidence"
	"github.com/veilscan/veilscan/internal/scoring"
)

// verdictKeyPrefix namespaces verdict records in the shared database.
const verdictKeyPrefix = "verdict:"

// Record is one persisted detection outcome.
type Record struct {
	// ID is a unique record identifier.
	ID string `json:"id"`

	// Verdict is the scored decision returned to the caller.
	Verdict scoring.Verdict `json:"verdict"`

	// Bundle is the evidence the verdict was computed from. The sink
	// receives its own copy, never a shared reference.
	Bundle evidence.Bundle `json:"bundle"`

	// DurationMs is the wall time of the whole detection run.
	DurationMs int64 `json:"duration_ms"`

	// UserAgent and ClientIP are ambient client metadata.
	UserAgent string `json:"user_agent"`
	ClientIP  string `json:"client_ip"`

	// Timestamp is when the detection completed.
	Timestamp time.Time `json:"timestamp"`
}

// Config bounds the verdict log.
type Config struct {
	// Path is the BadgerDB directory. Empty selects an in-memory store.
	Path string `koanf:"path"`

	// Retention is how long records are kept before TTL expiry.
	Retention time.Duration `koanf:"retention"`
}

// DefaultConfig returns the default verdict log bounds.
func DefaultConfig() Config {
	return Config{
		Retention: 7 * 24 * time.Hour,
	}
}

// Store persists verdict records. Keys embed a fixed-width nanosecond
// timestamp so lexicographic key order is chronological order and listing
// the most recent records is a reverse prefix scan.
type Store struct {
	db        *badger.DB
	retention time.Duration
	ownsDB    bool
}

// Open creates a store with its own database handle per the config.
func Open(cfg Config) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path).WithLogger(nil)
	if cfg.Path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open verdict log: %w", err)
	}

	s := NewStore(db, cfg.Retention)
	s.ownsDB = true
	return s, nil
}

// NewStore wraps an existing database handle.
func NewStore(db *badger.DB, retention time.Duration) *Store {
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	return &Store{db: db, retention: retention}
}

// Close releases the database if the store owns it.
func (s *Store) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

// Append persists one record. A missing ID or timestamp is filled in.
func (s *Store) Append(rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal verdict record: %w", err)
	}

	key := recordKey(rec.Timestamp, rec.ID)
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, data).WithTTL(s.retention)
		if err := txn.SetEntry(entry); err != nil {
			return fmt.Errorf("set verdict record: %w", err)
		}
		return nil
	})
}

// Get retrieves one record by ID. This is a prefix scan; the API uses it
// rarely enough that a secondary index is not worth its write cost.
func (s *Store) Get(id string) (*Record, error) {
	var rec *Record

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(verdictKeyPrefix)
		suffix := ":" + id
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			if !strings.HasSuffix(string(item.Key()), suffix) {
				continue
			}
			return item.Value(func(val []byte) error {
				var r Record
				if err := json.Unmarshal(val, &r); err != nil {
					return err
				}
				rec = &r
				return nil
			})
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ErrNotFound is returned when no record matches.
var ErrNotFound = errors.New("verdict record not found")

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}

	records := make([]Record, 0, limit)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(verdictKeyPrefix)
		// In reverse mode the seek key must sort after every record key.
		seek := append([]byte{}, prefix...)
		seek = append(seek, 0xFF)

		for it.Seek(seek); it.ValidForPrefix(prefix) && len(records) < limit; it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var r Record
				if err := json.Unmarshal(val, &r); err != nil {
					return err
				}
				records = append(records, r)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Count returns the number of live records.
func (s *Store) Count() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(verdictKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// recordKey builds a chronologically sortable key.
func recordKey(ts time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", verdictKeyPrefix, ts.UnixNano(), id))
}

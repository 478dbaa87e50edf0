// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

// Package tracker provides the bounded per-client request-timing store backing
// the timing-based bot heuristics. It is an explicit injected component, never
// a package-level global, so detectors can be unit-tested and reset between
// runs.
package tracker

import (
	"sync"
	"time"
)

// Observation is what the bot heuristics see for a client on each request.
type Observation struct {
	// Seen is true when the client was tracked before this request.
	Seen bool

	// LastSeen is the previous request time (zero when Seen is false).
	LastSeen time.Time

	// RecentHits counts this client's requests inside the rate window,
	// including the current one.
	RecentHits int64
}

// entry is a node in the store's doubly-linked LRU list.
type entry struct {
	key       string
	lastSeen  time.Time
	window    *SlidingWindowCounter
	prev      *entry
	next      *entry
	expiresAt time.Time
}

// Store is a thread-safe, capacity-bounded last-seen tracker with TTL
// eviction. Lookups and inserts are O(1): a hashmap for access and a
// doubly-linked list for LRU order, evicting from the tail when full.
type Store struct {
	mu sync.Mutex

	capacity   int
	ttl        time.Duration
	rateWindow time.Duration
	rateBucket int

	items map[string]*entry

	// head.next is the most recently used, tail.prev the least.
	head *entry
	tail *entry
}

// Config bounds the store.
type Config struct {
	// Capacity is the maximum number of tracked clients.
	Capacity int `koanf:"capacity"`

	// TTL is how long an idle client stays tracked.
	TTL time.Duration `koanf:"ttl"`

	// RateWindow is the span of the per-client request-rate counter.
	RateWindow time.Duration `koanf:"rate_window"`
}

// DefaultConfig returns sensible tracker bounds.
func DefaultConfig() Config {
	return Config{
		Capacity:   50000,
		TTL:        30 * time.Minute,
		RateWindow: time.Minute,
	}
}

// NewStore creates a tracker store with the given bounds.
func NewStore(cfg Config) *Store {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 50000
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = time.Minute
	}

	s := &Store{
		capacity:   cfg.Capacity,
		ttl:        cfg.TTL,
		rateWindow: cfg.RateWindow,
		rateBucket: 6,
		items:      make(map[string]*entry, cfg.Capacity),
		head:       &entry{},
		tail:       &entry{},
	}
	s.head.next = s.tail
	s.tail.prev = s.head

	return s
}

// Touch records a request from the client and returns what was known about it
// beforehand. Expired entries are treated as unseen.
func (s *Store) Touch(key string) Observation {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	if e, exists := s.items[key]; exists {
		if now.After(e.expiresAt) {
			s.removeEntry(e)
		} else {
			obs := Observation{Seen: true, LastSeen: e.lastSeen}
			e.lastSeen = now
			e.expiresAt = now.Add(s.ttl)
			e.window.Increment()
			obs.RecentHits = e.window.Count()
			s.moveToFront(e)
			return obs
		}
	}

	e := &entry{
		key:       key,
		lastSeen:  now,
		window:    NewSlidingWindowCounter(s.rateWindow, s.rateBucket),
		expiresAt: now.Add(s.ttl),
	}
	e.window.Increment()
	s.addToFront(e)
	s.items[key] = e

	for len(s.items) > s.capacity {
		s.evictOldest()
	}

	return Observation{RecentHits: 1}
}

// Len returns the current number of tracked clients.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Reset removes all tracked clients. Intended for tests.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]*entry, s.capacity)
	s.head.next = s.tail
	s.tail.prev = s.head
}

// EvictExpired removes all expired entries and returns how many were removed.
// The supervisor runs this periodically so idle clients do not pin memory
// until capacity pressure evicts them.
func (s *Store) EvictExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0

	// Walk from the tail (oldest) toward the head.
	for e := s.tail.prev; e != s.head; {
		prev := e.prev
		if now.After(e.expiresAt) {
			s.removeEntry(e)
			removed++
		}
		e = prev
	}

	return removed
}

// Internal methods; must be called with the lock held.

func (s *Store) addToFront(e *entry) {
	e.prev = s.head
	e.next = s.head.next
	s.head.next.prev = e
	s.head.next = e
}

func (s *Store) moveToFront(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	s.addToFront(e)
}

func (s *Store) removeEntry(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(s.items, e.key)
}

func (s *Store) evictOldest() {
	oldest := s.tail.prev
	if oldest == s.head {
		return
	}
	s.removeEntry(oldest)
}

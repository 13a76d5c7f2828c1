package store

import (
	"context"
	"sync"
	"time"

	"github.com/i474232898/weather-forecast/internal/forecast"
)

type memoryEntry struct {
	value     any
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is a concurrency-safe in-memory implementation of forecast.Store.
// Values are kept as-is; expired entries are never returned.
type MemoryStore struct {
	mu sync.RWMutex

	// key: cache key, value: entry with expiry
	data map[string]memoryEntry

	maxEntries int // 0 = unlimited
	now        forecast.Clock
}

// NewMemoryStore creates a new MemoryStore.
// If maxEntries is <= 0, it is treated as unlimited. A nil clock uses time.Now.
func NewMemoryStore(maxEntries int, clock forecast.Clock) *MemoryStore {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryStore{
		data:       make(map[string]memoryEntry),
		maxEntries: maxEntries,
		now:        clock,
	}
}

// Get returns the live value for key.
func (s *MemoryStore) Get(_ context.Context, key string) (any, bool, error) {
	now := s.now()

	s.mu.RLock()
	entry, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if entry.expired(now) {
		s.mu.Lock()
		if current, ok := s.data[key]; ok && current.expired(now) {
			delete(s.data, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set stores value under key for ttl (ttl <= 0 never expires) and enforces
// the entry limit.
func (s *MemoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	now := s.now()

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Enforce retention by age.
	for k, e := range s.data {
		if e.expired(now) {
			delete(s.data, k)
		}
	}

	// Enforce retention by count.
	if _, exists := s.data[key]; !exists && s.maxEntries > 0 && len(s.data) >= s.maxEntries {
		s.evictSoonestExpiring()
	}

	s.data[key] = entry
	return nil
}

// Len returns the number of stored entries, including ones not yet purged.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Name identifies the store in health reports.
func (s *MemoryStore) Name() string { return "cache:memory" }

// Check always succeeds for the in-memory store.
func (s *MemoryStore) Check(context.Context) error { return nil }

// evictSoonestExpiring must be called with the lock held. Entries without an
// expiry are evicted only when nothing else is left.
func (s *MemoryStore) evictSoonestExpiring() {
	var (
		victim    string
		victimExp time.Time
		found     bool
	)
	for k, e := range s.data {
		switch {
		case !found:
			victim, victimExp, found = k, e.expiresAt, true
		case victimExp.IsZero() && !e.expiresAt.IsZero():
			victim, victimExp = k, e.expiresAt
		case !e.expiresAt.IsZero() && e.expiresAt.Before(victimExp):
			victim, victimExp = k, e.expiresAt
		}
	}
	if found {
		delete(s.data, victim)
	}
}

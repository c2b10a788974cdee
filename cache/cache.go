package cache

import (
	"strings"
	"sync"
	"time"

	"EchoFM/logger"

	"golang.org/x/sync/singleflight"
)

// entry is a stored value with its expiry deadline. A zero deadline means
// the entry never expires.
type entry struct {
	value     interface{}
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Stats reports cache counters. Hits and misses are monotonic since process
// start; flushing the cache does not reset them.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Keys   int   `json:"keys"`
}

// Store is an in-process read-through key-value cache with per-key TTL,
// wildcard invalidation and hit/miss accounting. Expired entries are treated
// as absent immediately; a background janitor sweeps them out periodically.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	hits    int64
	misses  int64

	flight singleflight.Group

	done      chan struct{}
	closeOnce sync.Once
}

// DefaultSweepInterval is how often the janitor removes expired entries.
const DefaultSweepInterval = time.Minute

// New creates a Store and starts its janitor.
func New() *Store {
	return NewWithSweepInterval(DefaultSweepInterval)
}

// NewWithSweepInterval creates a Store sweeping at the given interval.
// A non-positive interval disables the janitor.
func NewWithSweepInterval(interval time.Duration) *Store {
	s := &Store{
		entries: make(map[string]entry),
		done:    make(chan struct{}),
	}
	if interval > 0 {
		go s.janitor(interval)
	}
	return s
}

// Close stops the janitor. The store itself stays usable.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *Store) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.done:
			return
		}
	}
}

// sweep physically removes expired entries.
func (s *Store) sweep() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	if removed > 0 {
		logger.Debug("cache sweep removed expired entries", logger.Int("removed", removed))
	}
}

// Get returns the value stored under key, or false when the key is absent
// or expired.
func (s *Store) Get(key string) (interface{}, bool) {
	now := time.Now()

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || e.expired(now) {
		s.mu.Lock()
		s.misses++
		s.mu.Unlock()
		return nil, false
	}

	s.mu.Lock()
	s.hits++
	s.mu.Unlock()
	return e.value, true
}

// Set stores value under key for the given TTL. A non-positive TTL stores
// the value without expiry.
func (s *Store) Set(key string, value interface{}, ttl time.Duration) {
	var deadline time.Time
	if ttl > 0 {
		deadline = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry{value: value, expiresAt: deadline}
	s.mu.Unlock()
}

// GetOrSet returns the cached value for key, or invokes compute, stores a
// non-nil result under key with the given TTL, and returns it. Concurrent
// misses for the same key are coalesced into a single compute call; a
// compute failure propagates to every waiter and caches nothing.
func (s *Store) GetOrSet(key string, ttl time.Duration, compute func() (interface{}, error)) (interface{}, error) {
	if v, ok := s.Get(key); ok {
		return v, nil
	}

	v, err, _ := s.flight.Do(key, func() (interface{}, error) {
		// Another caller may have populated the key while we waited
		// for the flight slot.
		now := time.Now()
		s.mu.RLock()
		e, ok := s.entries[key]
		s.mu.RUnlock()
		if ok && !e.expired(now) {
			return e.value, nil
		}

		value, err := compute()
		if err != nil {
			return nil, err
		}
		if value != nil {
			s.Set(key, value, ttl)
		}
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Del deletes a key. A key ending in "*" deletes every stored key with the
// prefix before the marker. Returns the number of keys removed.
func (s *Store) Del(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.HasSuffix(key, "*") {
		prefix := strings.TrimSuffix(key, "*")
		removed := 0
		for k := range s.entries {
			if strings.HasPrefix(k, prefix) {
				delete(s.entries, k)
				removed++
			}
		}
		return removed
	}

	if _, ok := s.entries[key]; ok {
		delete(s.entries, key)
		return 1
	}
	return 0
}

// Flush removes every entry. Counters are kept.
func (s *Store) Flush() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
	logger.Debug("cache flushed")
}

// Invalidate clears cached data for an entity category. Unknown categories
// are treated as a literal key to delete.
func (s *Store) Invalidate(category string) {
	switch category {
	case "tracks":
		s.Del(KeyTracksList + "*")
		s.Del(KeySearch + "*")
	case "podcasts":
		s.Del(KeyPodcastsList + "*")
	case "all":
		s.Flush()
	default:
		s.Del(category)
	}
}

// Stats returns current cache counters.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Count only live keys; expired-but-unswept entries are already
	// invisible to readers.
	now := time.Now()
	keys := 0
	for _, e := range s.entries {
		if !e.expired(now) {
			keys++
		}
	}

	return Stats{
		Hits:   s.hits,
		Misses: s.misses,
		Keys:   keys,
	}
}

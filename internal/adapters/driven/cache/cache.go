// Package cache provides the bounded in-memory cache behind recall and
// ranking. Values are serialised on the way in and deserialised on the way
// out, so cached entries are isolated from caller mutation.
package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.Cache = (*Store)(nil)

// entryOverhead approximates per-entry bookkeeping beyond the payload.
const entryOverhead = 64

type entry struct {
	data       []byte
	size       int64
	lastAccess time.Time
	expiresAt  time.Time
}

// Store is a bounded cache with byte and item ceilings. When either ceiling
// is exceeded the least recently used entry is evicted; entries tied on
// access time are evicted larger-first.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry

	maxBytes int64
	maxItems int
	ttl      time.Duration

	bytes     int64
	hits      uint64
	misses    uint64
	evictions uint64

	now func() time.Time
}

// New creates a cache with the given budgets.
func New(settings domain.CacheSettings) *Store {
	return &Store{
		entries:  make(map[string]*entry),
		maxBytes: settings.MaxBytes,
		maxItems: settings.MaxItems,
		ttl:      settings.TTL,
		now:      time.Now,
	}
}

// Put stores value under key. The value is serialised immediately; a value
// whose encoded size exceeds the memory ceiling is rejected outright.
func (s *Store) Put(key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding cache value: %w", err)
	}
	size := int64(len(key)+len(data)) + entryOverhead
	if size > s.maxBytes {
		return fmt.Errorf("value of %d bytes exceeds cache budget: %w", size, domain.ErrInvalidInput)
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepExpiredLocked(now)

	if old, ok := s.entries[key]; ok {
		s.bytes -= old.size
		delete(s.entries, key)
	}

	s.entries[key] = &entry{
		data:       data,
		size:       size,
		lastAccess: now,
		expiresAt:  now.Add(ttl),
	}
	s.bytes += size

	for s.bytes > s.maxBytes || len(s.entries) > s.maxItems {
		if !s.evictLocked() {
			break
		}
	}
	return nil
}

// Get loads the value stored under key into out, which must be a pointer.
// Expired entries are removed on access and counted as misses.
func (s *Store) Get(key string, out any) bool {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.misses++
		s.mu.Unlock()
		return false
	}
	now := s.now()
	if now.After(e.expiresAt) {
		s.bytes -= e.size
		delete(s.entries, key)
		s.misses++
		s.mu.Unlock()
		return false
	}
	e.lastAccess = now
	s.hits++
	data := e.data
	s.mu.Unlock()

	// Entry payloads are immutable once stored, so decoding can happen
	// outside the lock.
	return json.Unmarshal(data, out) == nil
}

// Delete removes a single key. Removing an absent key is a no-op.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		s.bytes -= e.size
		delete(s.entries, key)
	}
}

// Flush removes every entry whose key starts with prefix. An empty prefix
// clears the whole cache.
func (s *Store) Flush(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prefix == "" {
		s.entries = make(map[string]*entry)
		s.bytes = 0
		return
	}
	for k, e := range s.entries {
		if strings.HasPrefix(k, prefix) {
			s.bytes -= e.size
			delete(s.entries, k)
		}
	}
}

// Stats returns current counters.
func (s *Store) Stats() driven.CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return driven.CacheStats{
		Hits:      s.hits,
		Misses:    s.misses,
		Items:     len(s.entries),
		Bytes:     s.bytes,
		Evictions: s.evictions,
	}
}

// evictLocked removes the least recently used entry, preferring the larger
// entry when access times tie. Reports whether anything was removed.
func (s *Store) evictLocked() bool {
	var victim string
	var ve *entry
	for k, e := range s.entries {
		if ve == nil {
			victim, ve = k, e
			continue
		}
		if e.lastAccess.Before(ve.lastAccess) ||
			(e.lastAccess.Equal(ve.lastAccess) && e.size > ve.size) {
			victim, ve = k, e
		}
	}
	if ve == nil {
		return false
	}
	s.bytes -= ve.size
	delete(s.entries, victim)
	s.evictions++
	return true
}

// sweepExpiredLocked drops entries past their deadline so stale space is
// reclaimed before eviction kicks in.
func (s *Store) sweepExpiredLocked(now time.Time) {
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			s.bytes -= e.size
			delete(s.entries, k)
		}
	}
}

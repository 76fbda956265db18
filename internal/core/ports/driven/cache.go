package driven

import "time"

// Cache is a bounded in-memory store for expensive-to-recompute values.
// Values are stored and returned by copy, so callers can mutate what they
// get back without affecting other readers.
type Cache interface {
	// Put stores a value under key with the given ttl. A non-positive ttl
	// selects the cache's default. Values too large for the cache's memory
	// ceiling are rejected with domain.ErrInvalidInput.
	Put(key string, value any, ttl time.Duration) error

	// Get loads the value stored under key into out, which must be a
	// pointer. Returns false when the key is absent or expired.
	Get(key string, out any) bool

	// Delete removes a single key. Removing an absent key is a no-op.
	Delete(key string)

	// Flush removes every key with the given prefix. An empty prefix
	// clears the whole cache.
	Flush(prefix string)

	// Stats returns current counters. Cheap to call from hot paths.
	Stats() CacheStats
}

// CacheStats is a point-in-time snapshot of cache counters.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Items     int
	Bytes     int64
	Evictions uint64
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

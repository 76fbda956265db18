package cache

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
)

func testSettings() domain.CacheSettings {
	return domain.CacheSettings{
		MaxBytes: 1 << 20,
		MaxItems: 16,
		TTL:      time.Minute,
	}
}

func TestNew(t *testing.T) {
	s := New(testSettings())
	require.NotNil(t, s)

	stats := s.Stats()
	assert.Equal(t, 0, stats.Items)
	assert.Equal(t, int64(0), stats.Bytes)
}

func TestStore_PutGet_RoundTrip(t *testing.T) {
	s := New(testSettings())

	type payload struct {
		Title string   `json:"title"`
		Tags  []string `json:"tags"`
	}

	err := s.Put("conv:1", payload{Title: "fix flaky test", Tags: []string{"go", "ci"}}, 0)
	require.NoError(t, err)

	var got payload
	require.True(t, s.Get("conv:1", &got))
	assert.Equal(t, "fix flaky test", got.Title)
	assert.Equal(t, []string{"go", "ci"}, got.Tags)
}

func TestStore_Get_ReturnsCopies(t *testing.T) {
	s := New(testSettings())

	type payload struct {
		Tags []string `json:"tags"`
	}

	require.NoError(t, s.Put("k", payload{Tags: []string{"a", "b"}}, 0))

	var first payload
	require.True(t, s.Get("k", &first))
	first.Tags[0] = "mutated"

	var second payload
	require.True(t, s.Get("k", &second))
	assert.Equal(t, []string{"a", "b"}, second.Tags, "stored value must not observe caller mutation")
}

func TestStore_Get_Missing(t *testing.T) {
	s := New(testSettings())

	var out string
	assert.False(t, s.Get("absent", &out))

	stats := s.Stats()
	assert.Equal(t, uint64(0), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestStore_TTL_Expiry(t *testing.T) {
	s := New(testSettings())

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	require.NoError(t, s.Put("k", "value", 30*time.Second))

	var out string
	require.True(t, s.Get("k", &out))

	// Jump past the deadline: the entry is gone and counted as a miss.
	current = current.Add(31 * time.Second)
	assert.False(t, s.Get("k", &out))

	stats := s.Stats()
	assert.Equal(t, 0, stats.Items)
	assert.Equal(t, int64(0), stats.Bytes)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestStore_Put_DefaultTTL(t *testing.T) {
	settings := testSettings()
	settings.TTL = 10 * time.Second
	s := New(settings)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	require.NoError(t, s.Put("k", "value", 0))

	current = current.Add(9 * time.Second)
	var out string
	assert.True(t, s.Get("k", &out))

	current = current.Add(2 * time.Second)
	assert.False(t, s.Get("k", &out))
}

func TestStore_Eviction_OldestAccessFirst(t *testing.T) {
	settings := testSettings()
	settings.MaxItems = 2
	s := New(settings)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	require.NoError(t, s.Put("a", "one", 0))
	current = current.Add(time.Second)
	require.NoError(t, s.Put("b", "two", 0))
	current = current.Add(time.Second)

	// Touch "a" so "b" becomes the least recently used entry.
	var out string
	require.True(t, s.Get("a", &out))
	current = current.Add(time.Second)

	require.NoError(t, s.Put("c", "three", 0))

	assert.True(t, s.Get("a", &out))
	assert.False(t, s.Get("b", &out), "least recently used entry should be evicted")
	assert.True(t, s.Get("c", &out))
	assert.Equal(t, uint64(1), s.Stats().Evictions)
}

func TestStore_Eviction_ByteCeiling(t *testing.T) {
	settings := testSettings()
	settings.MaxBytes = 1024
	s := New(settings)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	big := strings.Repeat("x", 300)
	require.NoError(t, s.Put("k1", big, 0))
	current = current.Add(time.Second)
	require.NoError(t, s.Put("k2", big, 0))
	current = current.Add(time.Second)
	require.NoError(t, s.Put("k3", big, 0))

	var out string
	assert.False(t, s.Get("k1", &out), "oldest entry should be evicted to fit the byte ceiling")
	assert.True(t, s.Get("k2", &out))
	assert.True(t, s.Get("k3", &out))
	assert.LessOrEqual(t, s.Stats().Bytes, int64(1024))
}

func TestStore_Eviction_TieBreaksOnSize(t *testing.T) {
	settings := testSettings()
	settings.MaxItems = 2
	s := New(settings)

	// Freeze the clock so both resident entries share an access time.
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	require.NoError(t, s.Put("small", "x", 0))
	require.NoError(t, s.Put("large", strings.Repeat("y", 200), 0))
	require.NoError(t, s.Put("medium", strings.Repeat("z", 50), 0))

	var out string
	assert.True(t, s.Get("small", &out))
	assert.False(t, s.Get("large", &out), "larger entry should lose the tie")
	assert.True(t, s.Get("medium", &out))
}

func TestStore_Put_RejectsOversizeValue(t *testing.T) {
	settings := testSettings()
	settings.MaxBytes = 256
	s := New(settings)

	err := s.Put("huge", strings.Repeat("x", 1000), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Equal(t, 0, s.Stats().Items)
}

func TestStore_Put_ReplacesExistingKey(t *testing.T) {
	s := New(testSettings())

	require.NoError(t, s.Put("k", "first", 0))
	require.NoError(t, s.Put("k", "second", 0))

	var out string
	require.True(t, s.Get("k", &out))
	assert.Equal(t, "second", out)
	assert.Equal(t, 1, s.Stats().Items)
}

func TestStore_Delete(t *testing.T) {
	s := New(testSettings())

	require.NoError(t, s.Put("k", "value", 0))
	s.Delete("k")
	s.Delete("k") // absent key is a no-op

	var out string
	assert.False(t, s.Get("k", &out))
	assert.Equal(t, int64(0), s.Stats().Bytes)
}

func TestStore_Flush_Prefix(t *testing.T) {
	s := New(testSettings())

	require.NoError(t, s.Put("claude:conv:1", "a", 0))
	require.NoError(t, s.Put("claude:conv:2", "b", 0))
	require.NoError(t, s.Put("cursor:conv:1", "c", 0))

	s.Flush("claude:")

	var out string
	assert.False(t, s.Get("claude:conv:1", &out))
	assert.False(t, s.Get("claude:conv:2", &out))
	assert.True(t, s.Get("cursor:conv:1", &out))
}

func TestStore_Flush_All(t *testing.T) {
	s := New(testSettings())

	require.NoError(t, s.Put("a", "1", 0))
	require.NoError(t, s.Put("b", "2", 0))

	s.Flush("")

	stats := s.Stats()
	assert.Equal(t, 0, stats.Items)
	assert.Equal(t, int64(0), stats.Bytes)
}

func TestStore_Stats_HitRate(t *testing.T) {
	s := New(testSettings())

	require.NoError(t, s.Put("k", "value", 0))

	var out string
	s.Get("k", &out)
	s.Get("k", &out)
	s.Get("absent", &out)

	stats := s.Stats()
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.InDelta(t, 0.667, stats.HitRate(), 0.01)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New(testSettings())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n%4))
			for j := 0; j < 50; j++ {
				_ = s.Put(key, strings.Repeat("v", n+1), 0)
				var out string
				s.Get(key, &out)
			}
		}(i)
	}
	wg.Wait()

	stats := s.Stats()
	assert.LessOrEqual(t, stats.Items, 16)
	// Test passes if no race conditions.
}

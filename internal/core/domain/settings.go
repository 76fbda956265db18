package domain

import (
	"fmt"
	"time"
)

// PoolSettings holds connection pool configuration.
type PoolSettings struct {
	// MaxPerPath bounds live handles per distinct database path.
	MaxPerPath int

	// AcquireTimeout bounds how long Acquire blocks at capacity.
	AcquireTimeout time.Duration

	// ReadOnly opens databases read-only. Tool databases belong to other
	// applications, so this defaults to true.
	ReadOnly bool
}

// CacheSettings holds the budgets for one cache instance.
type CacheSettings struct {
	// MaxBytes is the memory ceiling for estimated entry sizes.
	MaxBytes int64

	// MaxItems is the entry-count ceiling.
	MaxItems int

	// TTL is the default time-to-live for entries stored without one.
	TTL time.Duration
}

// AdapterSettings holds per-adapter orchestration budgets.
type AdapterSettings struct {
	// Timeout is the hard deadline for one adapter invocation. A slow
	// adapter is abandoned, contributing whatever it produced so far.
	Timeout time.Duration
}

// GitSettings holds version-control signal configuration.
type GitSettings struct {
	// CommandTimeout bounds a single git invocation.
	CommandTimeout time.Duration

	// RatePerSecond throttles git invocations across concurrent rankings.
	RatePerSecond float64

	// LookbackDays is how far commit activity is read.
	LookbackDays int
}

// FileSettings holds file-ranking configuration.
type FileSettings struct {
	// IgnoreGlobs are doublestar patterns excluded from ranking walks.
	IgnoreGlobs []string
}

// Settings aggregates all runtime configuration with documented defaults.
type Settings struct {
	Pool PoolSettings

	// ConversationCache holds parsed conversation batches: few, large
	// values with a longer TTL.
	ConversationCache CacheSettings

	// MetadataCache holds keyword sets and directory listings: many,
	// small values with a short TTL. Its budgets are separate from the
	// conversation cache's.
	MetadataCache CacheSettings

	Adapter AdapterSettings
	Git     GitSettings
	Files   FileSettings
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		Pool: PoolSettings{
			MaxPerPath:     2,
			AcquireTimeout: 2 * time.Second,
			ReadOnly:       true,
		},
		ConversationCache: CacheSettings{
			MaxBytes: 50 << 20, // 50 MiB
			MaxItems: 256,
			TTL:      5 * time.Minute,
		},
		MetadataCache: CacheSettings{
			MaxBytes: 8 << 20, // 8 MiB
			MaxItems: 2048,
			TTL:      60 * time.Second,
		},
		Adapter: AdapterSettings{
			Timeout: 5 * time.Second,
		},
		Git: GitSettings{
			CommandTimeout: 3 * time.Second,
			RatePerSecond:  4,
			LookbackDays:   30,
		},
		Files: FileSettings{
			IgnoreGlobs: []string{
				"**/.git/**",
				"**/node_modules/**",
				"**/vendor/**",
				"**/dist/**",
				"**/build/**",
				"**/__pycache__/**",
				"**/*.min.js",
			},
		},
	}
}

// Validate checks the settings for values that would break the runtime.
func (s Settings) Validate() error {
	if s.Pool.MaxPerPath < 1 {
		return fmt.Errorf("pool max per path must be at least 1: %w", ErrInvalidInput)
	}
	if s.Pool.AcquireTimeout <= 0 {
		return fmt.Errorf("pool acquire timeout must be positive: %w", ErrInvalidInput)
	}
	if s.ConversationCache.MaxBytes <= 0 || s.ConversationCache.MaxItems <= 0 {
		return fmt.Errorf("conversation cache budgets must be positive: %w", ErrInvalidInput)
	}
	if s.MetadataCache.MaxBytes <= 0 || s.MetadataCache.MaxItems <= 0 {
		return fmt.Errorf("metadata cache budgets must be positive: %w", ErrInvalidInput)
	}
	if s.Adapter.Timeout <= 0 {
		return fmt.Errorf("adapter timeout must be positive: %w", ErrInvalidInput)
	}
	return nil
}

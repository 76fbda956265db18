package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/hindsight-cli/internal/core/domain"
	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driven"
	"github.com/custodia-labs/hindsight-cli/internal/core/ports/driving"
	"github.com/custodia-labs/hindsight-cli/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyPoolMaxPerPath     = "pool.max_per_path"
	keyPoolAcquireTimeout = "pool.acquire_timeout"
	keyPoolReadOnly       = "pool.read_only"

	keyConvCacheMaxBytes = "cache.conversations.max_bytes"
	keyConvCacheMaxItems = "cache.conversations.max_items"
	keyConvCacheTTL      = "cache.conversations.ttl"

	keyMetaCacheMaxBytes = "cache.metadata.max_bytes"
	keyMetaCacheMaxItems = "cache.metadata.max_items"
	keyMetaCacheTTL      = "cache.metadata.ttl"

	keyAdapterTimeout = "adapter.timeout"

	keyGitCommandTimeout = "git.command_timeout"
	keyGitRatePerSecond  = "git.rate_per_second"
	keyGitLookbackDays   = "git.lookback_days"

	keyFilesIgnore = "files.ignore"
)

// SettingsService loads runtime settings, overlaying configured values onto
// the documented defaults. Environment variables win over the config file:
// a key like pool.max_per_path maps to HINDSIGHT_POOL_MAX_PER_PATH, so a
// .env file or the shell can tune a single run without editing the config.
// Settings are read once at composition time; nothing in the runtime
// re-reads configuration mid-flight.
type SettingsService struct {
	configStore driven.ConfigStore

	// lookupEnv is the environment accessor; injectable so tests do not
	// leak variables into each other.
	lookupEnv func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// Load returns the effective settings. Values the config file does not set
// keep their defaults; a file that sets invalid values fails loudly here
// rather than surfacing as odd runtime behaviour later.
func (s *SettingsService) Load() (domain.Settings, error) {
	settings := domain.DefaultSettings()

	settings.Pool.MaxPerPath = s.getInt(keyPoolMaxPerPath, settings.Pool.MaxPerPath)
	settings.Pool.AcquireTimeout = s.getDuration(keyPoolAcquireTimeout, settings.Pool.AcquireTimeout)
	settings.Pool.ReadOnly = s.getBool(keyPoolReadOnly, settings.Pool.ReadOnly)

	settings.ConversationCache.MaxBytes = s.getInt64(keyConvCacheMaxBytes, settings.ConversationCache.MaxBytes)
	settings.ConversationCache.MaxItems = s.getInt(keyConvCacheMaxItems, settings.ConversationCache.MaxItems)
	settings.ConversationCache.TTL = s.getDuration(keyConvCacheTTL, settings.ConversationCache.TTL)

	settings.MetadataCache.MaxBytes = s.getInt64(keyMetaCacheMaxBytes, settings.MetadataCache.MaxBytes)
	settings.MetadataCache.MaxItems = s.getInt(keyMetaCacheMaxItems, settings.MetadataCache.MaxItems)
	settings.MetadataCache.TTL = s.getDuration(keyMetaCacheTTL, settings.MetadataCache.TTL)

	settings.Adapter.Timeout = s.getDuration(keyAdapterTimeout, settings.Adapter.Timeout)

	settings.Git.CommandTimeout = s.getDuration(keyGitCommandTimeout, settings.Git.CommandTimeout)
	settings.Git.RatePerSecond = s.getFloat(keyGitRatePerSecond, settings.Git.RatePerSecond)
	settings.Git.LookbackDays = s.getInt(keyGitLookbackDays, settings.Git.LookbackDays)

	if globs := s.getStringSlice(keyFilesIgnore); len(globs) > 0 {
		settings.Files.IgnoreGlobs = globs
	}

	if err := settings.Validate(); err != nil {
		return domain.Settings{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return settings, nil
}

// Helper methods for reading one key as environment, then config file,
// then default.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if raw, ok := s.env(key); ok {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
		logger.Warn("Ignoring invalid integer for %s: %q", envName(key), raw)
	}
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getInt64(key string, defaultVal int64) int64 {
	if raw, ok := s.env(key); ok {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return v
		}
		logger.Warn("Ignoring invalid integer for %s: %q", envName(key), raw)
	}
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return int64(s.configStore.GetInt(key))
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if raw, ok := s.env(key); ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
		logger.Warn("Ignoring invalid number for %s: %q", envName(key), raw)
	}
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if raw, ok := s.env(key); ok {
		if v, err := strconv.ParseBool(raw); err == nil {
			return v
		}
		logger.Warn("Ignoring invalid boolean for %s: %q", envName(key), raw)
	}
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

// getDuration reads a duration string like "45s" or "5m". A value that
// does not parse keeps the default, with a warning, so a typo in the
// environment or config file degrades instead of breaking startup.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val, fromEnv := s.env(key)
	if !fromEnv {
		val = s.configStore.GetString(key)
	}
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		logger.Warn("Ignoring invalid duration for %s: %q", key, val)
		return defaultVal
	}
	return d
}

// getStringSlice reads a list value; the environment form is
// comma-separated.
func (s *SettingsService) getStringSlice(key string) []string {
	if raw, ok := s.env(key); ok {
		var out []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return s.configStore.GetStringSlice(key)
}

func (s *SettingsService) env(key string) (string, bool) {
	val, ok := s.lookupEnv(envName(key))
	if !ok || strings.TrimSpace(val) == "" {
		return "", false
	}
	return strings.TrimSpace(val), true
}

// envName maps a config key onto its environment variable:
// pool.max_per_path becomes HINDSIGHT_POOL_MAX_PER_PATH.
func envName(key string) string {
	return "HINDSIGHT_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

package driving

import "github.com/custodia-labs/hindsight-cli/internal/core/domain"

// SettingsService resolves the effective runtime settings.
type SettingsService interface {
	// Load returns the documented defaults overlaid with the config file
	// and HINDSIGHT_* environment variables, validated.
	Load() (domain.Settings, error)
}

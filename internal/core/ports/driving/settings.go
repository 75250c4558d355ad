package driving

import "github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings, filling unset keys with defaults.
	Get() (*domain.Settings, error)

	// Set updates a single configuration key and persists it.
	Set(key string, value any) error

	// Values returns every configured key with its value.
	Values() map[string]any

	// Reload re-reads the configuration file.
	Reload() error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}

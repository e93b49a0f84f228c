package driving

import "github.com/custodia-labs/livepreview/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings, falling back to defaults per key.
	Get() (*domain.PreviewSettings, error)

	// Save persists settings.
	Save(settings *domain.PreviewSettings) error

	// Set updates a single setting by its config key.
	Set(key, value string) error

	// Value returns the resolved value of one key, formatted for display.
	Value(key string) (string, error)

	// Keys returns every recognised config key in display order.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.PreviewSettings
}

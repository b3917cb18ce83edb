package driving

import "github.com/pilah-labs/pilah/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the effective settings: defaults, then the config file,
	// then environment overrides.
	Get() (*domain.Settings, error)

	// Set parses raw for the given key and persists it.
	// Returns domain.ErrInvalidInput for unknown keys or unparsable values.
	Set(key, raw string) error

	// Keys lists every settable key in display order.
	Keys() []string

	// Validate checks the effective settings.
	Validate() error

	// GetDefaults returns the built-in defaults.
	GetDefaults() domain.Settings

	// ValidateEmbeddingConfig pings the configured embedding provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig pings the configured LLM provider.
	ValidateLLMConfig() error
}

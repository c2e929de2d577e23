package driven

import "github.com/custodia-labs/figsync/internal/core/domain"

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and apply
// environment overrides on load.
type ConfigStore interface {
	// Load reads the configuration over domain.DefaultConfig and validates it.
	// A missing file is not an error.
	Load() (domain.Config, error)

	// Save persists cfg to storage.
	Save(cfg domain.Config) error

	// Path returns the configuration file path.
	Path() string
}

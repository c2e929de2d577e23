package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/figsync/internal/core/domain"
	"github.com/custodia-labs/figsync/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigFile is the default configuration file name.
const ConfigFile = "config.toml"

// Environment variables that override file values.
const (
	EnvAccessToken    = "FIGMA_ACCESS_TOKEN"
	EnvStorageBackend = "FIGSYNC_STORAGE_BACKEND"
	EnvBucket         = "FIGSYNC_BUCKET"
	EnvRegion         = "AWS_REGION"
	EnvRedisAddr      = "FIGSYNC_REDIS_ADDR"
	EnvServerAddr     = "FIGSYNC_SERVER_ADDR"
)

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
type ConfigStore struct {
	mu       sync.Mutex
	filePath string
	getenv   func(string) string
}

// NewConfigStore creates a TOML config store reading filePath.
// If filePath is empty, defaults to ~/.figsync/config.toml.
func NewConfigStore(filePath string) (*ConfigStore, error) {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		filePath = filepath.Join(home, ".figsync", ConfigFile)
	}

	return &ConfigStore{
		filePath: filePath,
		getenv:   os.Getenv,
	}, nil
}

// Load reads configuration from the TOML file over the defaults, applies
// environment overrides and validates the result.
func (s *ConfigStore) Load() (domain.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := domain.DefaultConfig()

	data, err := os.ReadFile(s.filePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No config file yet - run on defaults and environment
	case err != nil:
		return domain.Config{}, fmt.Errorf("failed to read config %s: %w", s.filePath, err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return domain.Config{}, fmt.Errorf("failed to parse config %s: %w", s.filePath, err)
		}
	}

	s.applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// applyEnv overwrites file values with non-empty environment variables.
func (s *ConfigStore) applyEnv(cfg *domain.Config) {
	set := func(dst *string, key string) {
		if v := s.getenv(key); v != "" {
			*dst = v
		}
	}

	set(&cfg.Figma.AccessToken, EnvAccessToken)
	set(&cfg.Storage.Bucket, EnvBucket)
	set(&cfg.Storage.Region, EnvRegion)
	set(&cfg.Dispatch.RedisAddr, EnvRedisAddr)
	set(&cfg.Server.Addr, EnvServerAddr)

	if v := s.getenv(EnvStorageBackend); v != "" {
		cfg.Storage.Backend = domain.StorageBackend(v)
	}
}

// Save persists cfg to the TOML file, creating its directory if needed.
func (s *ConfigStore) Save(cfg domain.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Write with restricted permissions; the file may hold an access token
	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

package domain

import (
	"errors"
	"fmt"
	"time"
)

// StorageBackend selects the blob store implementation.
type StorageBackend string

// Available storage backends.
const (
	StorageMemory StorageBackend = "memory"
	StorageSQLite StorageBackend = "sqlite"
	StorageS3     StorageBackend = "s3"
	StorageGCS    StorageBackend = "gcs"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageMemory, StorageSQLite, StorageS3, StorageGCS:
		return true
	default:
		return false
	}
}

// IsRemote returns true for backends that need a bucket.
func (b StorageBackend) IsRemote() bool {
	return b == StorageS3 || b == StorageGCS
}

// DispatchMode selects how worker jobs leave the request path.
type DispatchMode string

// Available dispatch modes.
const (
	// DispatchInProcess runs each job on a detached goroutine.
	DispatchInProcess DispatchMode = "inprocess"

	// DispatchRedis pushes jobs onto a Redis list consumed by `figsync worker`.
	DispatchRedis DispatchMode = "redis"
)

// IsValid returns true if the mode is recognised.
func (m DispatchMode) IsValid() bool {
	return m == DispatchInProcess || m == DispatchRedis
}

// AuthMethod is how requests to the design API are authenticated.
type AuthMethod string

// Available auth methods.
const (
	// AuthToken sends a personal access token in the X-Figma-Token header.
	AuthToken AuthMethod = "token"

	// AuthOAuth sends an OAuth access token as a bearer token.
	AuthOAuth AuthMethod = "oauth"
)

// IsValid returns true if the method is recognised.
func (m AuthMethod) IsValid() bool {
	return m == AuthToken || m == AuthOAuth
}

// Config is the full application configuration.
type Config struct {
	Figma    FigmaConfig    `toml:"figma"`
	Storage  StorageConfig  `toml:"storage"`
	Dispatch DispatchConfig `toml:"dispatch"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
	Tracing  TracingConfig  `toml:"tracing"`
	Watch    []WatchConfig  `toml:"watch"`
}

// FigmaConfig configures the document client.
type FigmaConfig struct {
	AccessToken       string     `toml:"access_token"`
	AuthMethod        AuthMethod `toml:"auth_method"`
	APIBase           string     `toml:"api_base"`
	ImageFormat       string     `toml:"image_format"`
	ImageScale        float64    `toml:"image_scale"`
	BatchSize         int        `toml:"batch_size"`
	RequestsPerSecond float64    `toml:"requests_per_second"`
	Timeout           string     `toml:"timeout"`
}

// StorageConfig configures the blob store.
type StorageConfig struct {
	Backend       StorageBackend `toml:"backend"`
	Bucket        string         `toml:"bucket"`
	Region        string         `toml:"region"`
	Endpoint      string         `toml:"endpoint"`
	Prefix        string         `toml:"prefix"`
	Path          string         `toml:"path"`
	PublicBaseURL string         `toml:"public_base_url"`
}

// DispatchConfig configures the job dispatcher.
type DispatchConfig struct {
	Mode          DispatchMode `toml:"mode"`
	MaxConcurrent int          `toml:"max_concurrent"`
	JobTimeout    string       `toml:"job_timeout"`
	RedisAddr     string       `toml:"redis_addr"`
	RedisPassword string       `toml:"redis_password"`
	RedisDB       int          `toml:"redis_db"`
	RedisQueue    string       `toml:"redis_queue"`
}

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Verbose    bool   `toml:"verbose"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// TracingConfig configures OpenTelemetry export. An empty endpoint disables it.
type TracingConfig struct {
	Endpoint    string  `toml:"endpoint"`
	Insecure    bool    `toml:"insecure"`
	ServiceName string  `toml:"service_name"`
	SampleRatio float64 `toml:"sample_ratio"`
}

// WatchConfig declares a file whose pages are synced on a schedule.
type WatchConfig struct {
	FileID   string   `toml:"file_id"`
	PageIDs  []string `toml:"page_ids"`
	Interval string   `toml:"interval"`
}

// DefaultConfig returns sensible defaults for a local setup.
func DefaultConfig() Config {
	return Config{
		Figma: FigmaConfig{
			AuthMethod:        AuthToken,
			APIBase:           "https://api.figma.com/v1",
			ImageFormat:       "png",
			ImageScale:        2,
			BatchSize:         MaxImageBatch,
			RequestsPerSecond: 2,
			Timeout:           "30s",
		},
		Storage: StorageConfig{
			Backend: StorageSQLite,
		},
		Dispatch: DispatchConfig{
			Mode:          DispatchInProcess,
			MaxConcurrent: 4,
			JobTimeout:    "15m",
			RedisAddr:     "localhost:6379",
			RedisQueue:    "figsync:jobs",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Tracing: TracingConfig{
			ServiceName: "figsync",
			SampleRatio: 1,
		},
	}
}

// Validate checks the configuration for values the application cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if !c.Figma.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("figma.auth_method %q is not one of token, oauth", c.Figma.AuthMethod))
	}
	if c.Figma.BatchSize < 1 || c.Figma.BatchSize > MaxImageBatch {
		errs = append(errs, fmt.Errorf("figma.batch_size must be between 1 and %d", MaxImageBatch))
	}
	if c.Figma.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("figma.requests_per_second must be positive"))
	}
	if _, err := ParseDuration(c.Figma.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("figma.timeout: %w", err))
	}

	if !c.Storage.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("storage.backend %q is not one of memory, sqlite, s3, gcs", c.Storage.Backend))
	}
	if c.Storage.Backend.IsRemote() && c.Storage.Bucket == "" {
		errs = append(errs, fmt.Errorf("storage.bucket is required for the %s backend", c.Storage.Backend))
	}

	if !c.Dispatch.Mode.IsValid() {
		errs = append(errs, fmt.Errorf("dispatch.mode %q is not one of inprocess, redis", c.Dispatch.Mode))
	}
	if c.Dispatch.MaxConcurrent < 1 {
		errs = append(errs, errors.New("dispatch.max_concurrent must be at least 1"))
	}
	if _, err := ParseDuration(c.Dispatch.JobTimeout); err != nil {
		errs = append(errs, fmt.Errorf("dispatch.job_timeout: %w", err))
	}

	for i, w := range c.Watch {
		if w.FileID == "" || len(w.PageIDs) == 0 {
			errs = append(errs, fmt.Errorf("watch[%d]: file_id and page_ids are required", i))
		}
		if d, err := ParseDuration(w.Interval); err != nil || d == 0 {
			errs = append(errs, fmt.Errorf("watch[%d].interval must be a positive duration", i))
		}
	}

	if len(errs) > 0 {
		return errors.Join(ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

// ParseDuration parses a config duration. An empty string means zero.
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}

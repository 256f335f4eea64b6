package config

import "time"

// Config is the main configuration struct.
type Config struct {
	Backend   BackendConfig   `yaml:"backend"`
	Cache     CacheConfig     `yaml:"cache"`
	Sync      SyncConfig      `yaml:"sync"`
	Retention RetentionConfig `yaml:"retention"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// BackendConfig holds REST backend settings.
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout is a duration string; empty means the 15s default. The
	// upstream API contract leaves the timeout unspecified, so the
	// default is chosen here and documented rather than inherited.
	Timeout string `yaml:"timeout"`
}

// CacheConfig holds the local pebble cache settings.
type CacheConfig struct {
	DBPath string `yaml:"db_path"`
}

// SyncConfig holds polling and paging behavior.
type SyncConfig struct {
	PollInterval       string `yaml:"poll_interval"`
	RefreshMinInterval string `yaml:"refresh_min_interval"`
	PageSize           int    `yaml:"page_size"`
	Sentinel           string `yaml:"sentinel"`
}

// RetentionConfig holds configuration for the cache purge runner.
type RetentionConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
	Period  string `yaml:"period"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

const (
	DefaultTimeout            = 15 * time.Second
	DefaultPollInterval       = 10 * time.Second
	DefaultRefreshMinInterval = 5 * time.Second
	DefaultPageSize           = 50
	DefaultSentinel           = "[Message Deleted]"
	DefaultRetentionPeriod    = 30 * 24 * time.Hour
)

// RequestTimeout returns the parsed backend timeout or the default.
func (c *Config) RequestTimeout() time.Duration {
	return parseDuration(c.Backend.Timeout, DefaultTimeout)
}

// PollInterval returns the parsed poll interval or the default.
func (c *Config) PollInterval() time.Duration {
	return parseDuration(c.Sync.PollInterval, DefaultPollInterval)
}

// RefreshMinInterval returns the parsed refresh debounce floor or the default.
func (c *Config) RefreshMinInterval() time.Duration {
	return parseDuration(c.Sync.RefreshMinInterval, DefaultRefreshMinInterval)
}

// PageSize returns the configured page size or the default.
func (c *Config) PageSize() int {
	if c.Sync.PageSize > 0 {
		return c.Sync.PageSize
	}
	return DefaultPageSize
}

// Sentinel returns the soft-clear sentinel string or the default.
func (c *Config) Sentinel() string {
	if c.Sync.Sentinel != "" {
		return c.Sync.Sentinel
	}
	return DefaultSentinel
}

// RetentionPeriod returns the parsed cache retention period or the default.
func (c *Config) RetentionPeriod() time.Duration {
	return parseDuration(c.Retention.Period, DefaultRetentionPeriod)
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

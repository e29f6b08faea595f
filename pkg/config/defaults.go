package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default values for configuration.
const (
	DefaultReportFormat   = "text"
	DefaultWebhookTimeout = 10 * time.Second
)

// Environment variable names.
const (
	EnvSources = "TALKLOG_SOURCES"
	EnvLocale  = "TALKLOG_LOCALE"
	EnvDB      = "TALKLOG_DB"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Sources: []string{},
		Report: ReportConfig{
			Format: DefaultReportFormat,
		},
		Store: StoreConfig{
			Path: DefaultStorePath(),
		},
	}
}

// DefaultStorePath resolves the default sqlite index location under
// the user's home directory.
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "talklog.db"
	}
	return filepath.Join(home, ".talklog", "talklog.db")
}

// applyEnvironmentOverrides applies environment variable overrides to
// the config.
func (c *Config) applyEnvironmentOverrides() {
	if sources := os.Getenv(EnvSources); sources != "" {
		c.Sources = strings.Split(sources, ",")
	}
	if lc := os.Getenv(EnvLocale); lc != "" {
		c.Locale = lc
	}
	if db := os.Getenv(EnvDB); db != "" {
		c.Store.Path = db
	}
}

// Package config provides configuration loading and validation for
// talklog.
package config

import "time"

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// Sources lists export files or glob patterns to analyze.
	Sources []string `yaml:"sources"`

	// Locale forces a locale ("en" or "ko") instead of detecting it
	// from the export header. Empty or "auto" means detect.
	Locale string `yaml:"locale,omitempty"`

	Report   ReportConfig    `yaml:"report,omitempty"`
	Store    StoreConfig     `yaml:"store,omitempty"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// ReportConfig controls report rendering.
type ReportConfig struct {
	// Format is the output format (text or json).
	Format string `yaml:"format,omitempty"`

	// TopParticipants caps the participant table. Zero shows all.
	TopParticipants int `yaml:"top_participants,omitempty"`
}

// StoreConfig controls the sqlite chat index.
type StoreConfig struct {
	// Path is the database file location.
	Path string `yaml:"path,omitempty"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerAlways fires after every analysis (default).
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerOnSkipped fires only when the parse skipped
	// lines, signalling a possible export-version drift.
	WebhookTriggerOnSkipped WebhookTrigger = "on_skipped"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "always" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

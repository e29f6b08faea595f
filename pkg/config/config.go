package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/talklog/talklog/pkg/locale"
)

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors.
func Validate(cfg *Config) error {
	if len(cfg.Sources) == 0 {
		return errors.New("sources: at least one export file or glob is required")
	}

	if err := validateLocale(cfg.Locale); err != nil {
		return fmt.Errorf("locale: %w", err)
	}

	switch cfg.Report.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("report.format: invalid format %q (use text or json)", cfg.Report.Format)
	}

	if cfg.Report.TopParticipants < 0 {
		return errors.New("report.top_participants: must be >= 0")
	}

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validateLocale(lc string) error {
	if lc == "" || lc == "auto" {
		return nil
	}
	if locale.Lookup(locale.DefaultTables(), locale.ID(lc)) == nil {
		return fmt.Errorf("unsupported locale %q", lc)
	}
	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	// Expand environment variables in token
	wh.Token = expandEnvVar(wh.Token)

	if wh.Trigger != "" {
		switch wh.Trigger {
		case WebhookTriggerAlways, WebhookTriggerOnSkipped, WebhookTriggerNever:
			// Valid
		default:
			return fmt.Errorf("invalid trigger %q (must be always, on_skipped, or never)", wh.Trigger)
		}
	} else {
		wh.Trigger = WebhookTriggerAlways
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		varName := s[2 : len(s)-1]
		return os.Getenv(varName)
	}

	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		varName := s[1:]
		return os.Getenv(varName)
	}

	return s
}

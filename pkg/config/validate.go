package config

import (
	"fmt"
	"net"
	"strings"
)

// Validate checks the configuration for values that would fail at runtime.
// It is called by Load after defaults and overrides are applied.
func Validate(cfg *Config) error {
	if _, _, err := net.SplitHostPort(cfg.Server.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen_address %q: %w", cfg.Server.ListenAddress, err)
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level %q (expected debug, info, warn, or error)",
			cfg.Telemetry.Logging.Level)
	}

	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging format %q (expected json or text)",
			cfg.Telemetry.Logging.Format)
	}

	if url := cfg.Providers.SelfHosted.BaseURL; url != "" &&
		!strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("invalid selfhosted base_url %q: must start with http:// or https://", url)
	}
	if url := cfg.Providers.Cloud.BaseURL; url != "" &&
		!strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("invalid cloud base_url %q: must start with http:// or https://", url)
	}

	if cfg.Usage.Enabled && cfg.Usage.RetentionDays < 0 {
		return fmt.Errorf("invalid usage retention_days %d: must be non-negative", cfg.Usage.RetentionDays)
	}

	return nil
}

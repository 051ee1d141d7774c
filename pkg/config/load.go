package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file, applies defaults and
// environment variable overrides, and validates the result. A missing file
// is not an error: the defaults (plus env overrides) apply, so the relay
// runs with zero configuration against a local self-hosted backend.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies RELAY_* environment variables on top of the
// file configuration. Environment always wins over the file, which is how
// the cloud API key is normally supplied.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("RELAY_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("RELAY_CLOUD_API_KEY"); val != "" {
		cfg.Providers.Cloud.APIKey = val
	}
	if val := os.Getenv("RELAY_CLOUD_BASE_URL"); val != "" {
		cfg.Providers.Cloud.BaseURL = val
	}
	if val := os.Getenv("RELAY_SELFHOSTED_BASE_URL"); val != "" {
		cfg.Providers.SelfHosted.BaseURL = val
	}
	if val := os.Getenv("RELAY_PROVIDER_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Providers.Timeout = d
		}
	}
	if val := os.Getenv("RELAY_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("RELAY_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("RELAY_USAGE_DB_PATH"); val != "" {
		cfg.Usage.DBPath = val
	}
}

// Package config loads and validates the relay's YAML configuration, with
// environment variable overrides and an optional fsnotify-based file
// watcher for picking up edits at runtime.
package config

import "time"

// Config is the root configuration structure for the relay.
type Config struct {
	// Server contains HTTP server configuration: listen address,
	// timeouts, and CORS.
	Server ServerConfig `yaml:"server"`

	// Providers contains the process-wide provider defaults that
	// requests fall back to when they carry no explicit credentials.
	Providers ProvidersConfig `yaml:"providers"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Usage contains configuration for per-request usage accounting.
	Usage UsageConfig `yaml:"usage"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire
	// request, including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of
	// the response. Streaming responses run under this budget, so it is
	// deliberately generous.
	// Default: 10m
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxUploadBytes limits the size of an uploaded image attachment.
	// Default: 20971520 (20MB)
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS configuration for browser callers.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins lists the allowed origins. ["*"] allows all.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ProvidersConfig contains the process-wide provider defaults.
type ProvidersConfig struct {
	// Cloud configures the cloud provider fallback credentials.
	Cloud CloudConfig `yaml:"cloud"`

	// SelfHosted configures the self-hosted provider fallback endpoint.
	SelfHosted SelfHostedConfig `yaml:"selfhosted"`

	// Timeout is the outbound request timeout applied to provider
	// calls. Zero disables the client-side timeout (streams can be
	// long-lived).
	// Default: 0
	Timeout time.Duration `yaml:"timeout"`
}

// CloudConfig configures the cloud provider.
type CloudConfig struct {
	// APIKey is the fallback API key, used when a request supplies
	// none. Typically set via RELAY_CLOUD_API_KEY.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `yaml:"base_url"`
}

// SelfHostedConfig configures the self-hosted provider.
type SelfHostedConfig struct {
	// BaseURL is the fallback endpoint, used when a request supplies
	// none.
	// Default: "http://localhost:11434"
	BaseURL string `yaml:"base_url"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json" or "text").
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "relay"
	Namespace string `yaml:"namespace"`

	// Path is the HTTP path the metrics are exposed on.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

// UsageConfig configures per-request usage accounting. Only request
// metadata is recorded (provider, model, latency, status), never message
// content.
type UsageConfig struct {
	// Enabled controls whether usage accounting runs at all.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// DBPath is the SQLite database file path.
	// Default: "relay-usage.db"
	DBPath string `yaml:"db_path"`

	// RetentionDays is how long usage records are kept.
	// Default: 30
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for retention pruning.
	// Empty disables scheduled pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`
}

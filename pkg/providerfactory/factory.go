// Package providerfactory constructs provider instances per request.
//
// A provider is created fresh for every incoming request and discarded when
// the request completes; there is no caching and no shared instances. The
// factory's other job is credential resolution: an explicit per-request
// value wins, otherwise the process-wide default applies, and if neither is
// present the request fails with a configuration error naming the missing
// credential.
package providerfactory

import (
	"log/slog"
	"time"

	"bridgehq/relay/pkg/providers"
	"bridgehq/relay/pkg/providers/cloud"
	"bridgehq/relay/pkg/providers/selfhosted"
)

// Provider type tags accepted by New.
const (
	TypeCloud      = "cloud"
	TypeSelfHosted = "selfhosted"
)

// Defaults carries the process-wide credential and endpoint fallbacks,
// resolved once from configuration at the boundary. It is passed explicitly
// rather than read from ambient state so that tests and callers control it.
type Defaults struct {
	// CloudAPIKey is the fallback API key for the cloud provider.
	CloudAPIKey string

	// CloudBaseURL overrides the cloud provider's default endpoint.
	CloudBaseURL string

	// SelfHostedBaseURL is the fallback endpoint for the self-hosted
	// provider.
	SelfHostedBaseURL string

	// Timeout is the per-request timeout applied to outbound calls.
	// Zero leaves timeout management entirely to the caller's context.
	Timeout time.Duration
}

// New creates a provider for one request. creds supplies the caller's
// explicit credential material; empty fields fall back to defaults.
//
// Returns a *providers.ConfigError for an unknown provider type or a
// missing credential.
func New(providerType string, creds providers.Credentials, defaults Defaults) (providers.Provider, error) {
	slog.Debug("creating provider", "type", providerType)

	switch providerType {
	case TypeCloud:
		apiKey := creds.APIKey
		if apiKey == "" {
			apiKey = defaults.CloudAPIKey
		}
		if apiKey == "" {
			return nil, &providers.ConfigError{
				Provider: TypeCloud,
				Field:    "api_key",
				Message:  "no API key supplied and no default configured",
			}
		}
		baseURL := creds.BaseURL
		if baseURL == "" {
			baseURL = defaults.CloudBaseURL
		}
		return cloud.New(providers.ClientConfig{
			APIKey:  apiKey,
			BaseURL: baseURL,
			Timeout: defaults.Timeout,
		})

	case TypeSelfHosted:
		baseURL := creds.BaseURL
		if baseURL == "" {
			baseURL = defaults.SelfHostedBaseURL
		}
		if baseURL == "" {
			return nil, &providers.ConfigError{
				Provider: TypeSelfHosted,
				Field:    "base_url",
				Message:  "no base URL supplied and no default configured",
			}
		}
		return selfhosted.New(providers.ClientConfig{
			BaseURL: baseURL,
			Timeout: defaults.Timeout,
		})

	default:
		return nil, &providers.ConfigError{
			Provider: providerType,
			Field:    "type",
			Message:  "unknown provider type (supported: cloud, selfhosted)",
		}
	}
}

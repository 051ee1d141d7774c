package metrics

import (
	"errors"

	"bridgehq/relay/pkg/providers"
)

// errorType maps an error to a low-cardinality label value.
func errorType(err error) string {
	var (
		providerErr   *providers.ProviderError
		configErr     *providers.ConfigError
		parseErr      *providers.ParseError
		streamErr     *providers.StreamError
		validationErr *providers.ValidationError
	)
	switch {
	case errors.As(err, &providerErr):
		return "http"
	case errors.As(err, &configErr):
		return "config"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &streamErr):
		return "stream"
	case errors.As(err, &validationErr):
		return "validation"
	default:
		return "network"
	}
}

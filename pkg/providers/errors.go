package providers

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ProviderError represents a failed HTTP call to a backend.
// StatusCode is always non-zero, which distinguishes it from network-level
// errors (plain wrapped errors with no status). Message carries the parsed
// error message when the backend returned a structured error body, or the
// raw body otherwise.
type ProviderError struct {
	// Provider is the name of the provider that returned the error
	Provider string

	// StatusCode is the HTTP status code of the failed response
	StatusCode int

	// Message is the parsed-or-raw response body
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %q error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// ConfigError represents a provider configuration error: a missing
// credential, a missing endpoint, or an unknown provider type. Configuration
// errors are surfaced immediately and never retried.
type ConfigError struct {
	// Provider is the provider type the configuration was resolved for
	Provider string

	// Field is the configuration field that is missing or invalid
	Field string

	// Message describes the configuration error
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q configuration error for field %q: %s",
		e.Provider, e.Field, e.Message)
}

// ParseError represents a malformed bulk response from a backend.
type ParseError struct {
	// Provider is the name of the provider that returned the malformed response
	Provider string

	// RawResponse is the raw response body that failed to parse
	RawResponse string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q response parse error: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// StreamError represents a failure while reading a streaming response body.
// By the time it occurs the stream has already started, so it is logged and
// the sink's OnDone fires; it cannot become a clean error response.
type StreamError struct {
	// Provider is the name of the provider where the error occurred
	Provider string

	// Message is the error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %q stream error: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider %q stream error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *StreamError) Unwrap() error {
	return e.Cause
}

// ValidationError represents a request validation failure caught before the
// request is sent to a backend.
type ValidationError struct {
	// Field is the name of the invalid field
	Field string

	// Message describes what is invalid about the field
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %q: %s", e.Field, e.Message)
}

// HTTPStatus returns the status code carried by err if it is a
// ProviderError, and 0 otherwise.
func HTTPStatus(err error) int {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.StatusCode
	}
	return 0
}

// extractErrorMessage pulls a human-readable message out of a backend error
// body. Both backends wrap errors as {"error": ...} where the value is
// either a string or an object with a "message" field; anything else falls
// back to the raw body.
func extractErrorMessage(body []byte) string {
	var wrapper struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil && len(wrapper.Error) > 0 {
		var s string
		if err := json.Unmarshal(wrapper.Error, &s); err == nil {
			return s
		}
		var obj struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(wrapper.Error, &obj); err == nil && obj.Message != "" {
			return obj.Message
		}
	}
	return string(body)
}

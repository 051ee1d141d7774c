package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ClientConfig configures the HTTP client base shared by all adapters.
type ClientConfig struct {
	// Name is the provider identifier used in errors and logs
	// (e.g. "cloud", "selfhosted").
	Name string

	// BaseURL is the backend's API endpoint base URL.
	BaseURL string

	// APIKey is the authentication key, where the backend requires one.
	APIKey string

	// Timeout is the per-request timeout. Zero means no client-side timeout.
	Timeout time.Duration

	// MaxIdleConns is the maximum number of idle connections in the pool.
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool.
	IdleConnTimeout time.Duration
}

// Client is the HTTP base every adapter embeds. It owns the pooled
// http.Client and the shared request/response handling: a non-2xx response
// becomes a *ProviderError carrying status and body, a network failure
// surfaces as a plain wrapped error with no status.
//
// Client performs no automatic retries. The only retry in the system is the
// self-hosted adapter's unsupported-feature retry, which owns that decision
// itself.
type Client struct {
	config ClientConfig
	http   *http.Client
}

// NewClient creates a new HTTP client base with connection pooling.
func NewClient(config ClientConfig) *Client {
	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		config: config,
		http: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return c.config.Name
}

// BaseURL returns the backend's base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// APIKey returns the configured authentication key.
func (c *Client) APIKey() string {
	return c.config.APIKey
}

// DoRequest performs an HTTP request against the backend. On a 2xx response
// the caller owns resp.Body and must close it. On any other status the body
// is consumed and the call returns a *ProviderError.
func (c *Client) DoRequest(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.Debug("sending request to provider",
		"provider", c.config.Name,
		"method", method,
		"url", url,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider %q request failed: %w", c.config.Name, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	errorBody, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	return nil, &ProviderError{
		Provider:   c.config.Name,
		StatusCode: resp.StatusCode,
		Message:    extractErrorMessage(errorBody),
	}
}

// DoJSONRequest performs a JSON request and decodes the response into
// respBody (which may be nil to discard it).
func (c *Client) DoJSONRequest(ctx context.Context, method, url string, reqBody, respBody interface{}, headers map[string]string) error {
	var bodyBytes []byte
	var err error
	if reqBody != nil {
		bodyBytes, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	resp, err := c.DoRequest(ctx, method, url, bodyBytes, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ParseError{
			Provider: c.config.Name,
			Cause:    fmt.Errorf("failed to read response: %w", err),
		}
	}

	if respBody != nil && len(responseBytes) > 0 {
		if err := json.Unmarshal(responseBytes, respBody); err != nil {
			return &ParseError{
				Provider:    c.config.Name,
				RawResponse: string(responseBytes),
				Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
			}
		}
	}

	return nil
}

// Close releases idle connections held by the pool.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

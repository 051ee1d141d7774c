package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"bridgehq/relay/pkg/providers"
)

const providerName = "cloud"

// DefaultBaseURL is the cloud backend's endpoint when none is configured.
const DefaultBaseURL = "https://api.openai.com"

// Provider is the cloud API adapter. It implements providers.Provider over
// the backend's bearer-authenticated HTTP endpoints.
type Provider struct {
	*providers.Client
}

// New creates a cloud provider instance. The API key is required; the base
// URL defaults to DefaultBaseURL.
func New(config providers.ClientConfig) (*Provider, error) {
	if config.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: providerName,
			Field:    "api_key",
			Message:  "API key is required for the cloud provider",
		}
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.Name = providerName

	p := &Provider{Client: providers.NewClient(config)}

	slog.Debug("cloud provider initialized",
		"base_url", config.BaseURL,
		"api_key", providers.RedactKey(config.APIKey),
	)

	return p, nil
}

// headers returns the common request headers.
func (p *Provider) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + p.APIKey(),
		"Content-Type":  "application/json",
	}
}

// FetchModels lists the backend's models via GET /v1/models.
func (p *Provider) FetchModels(ctx context.Context) ([]providers.ModelInfo, error) {
	var list modelList
	url := fmt.Sprintf("%s/v1/models", p.BaseURL())
	if err := p.DoJSONRequest(ctx, "GET", url, nil, &list, p.headers()); err != nil {
		return nil, err
	}

	models := make([]providers.ModelInfo, len(list.Data))
	for i, m := range list.Data {
		models[i] = providers.ModelInfo{ID: m.ID, Name: m.ID}
	}
	return models, nil
}

// GenerateResponse sends a bulk chat request and returns the reply text.
func (p *Provider) GenerateResponse(ctx context.Context, req *providers.ChatRequest) (string, error) {
	if err := providers.ValidateRequest(req); err != nil {
		return "", err
	}

	payload := buildPayload(req)
	payload.Stream = false

	var resp chatResponse
	url := fmt.Sprintf("%s/v1/chat/completions", p.BaseURL())
	if err := p.DoJSONRequest(ctx, "POST", url, payload, &resp, p.headers()); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", &providers.ParseError{
			Provider: providerName,
			Cause:    fmt.Errorf("no choices in response"),
		}
	}
	return resp.Choices[0].Message.Content, nil
}

// StreamResponse sends a streaming chat request and reduces the SSE-style
// body into the sink. On a pre-stream failure (marshal, transport, non-2xx)
// the error returns without touching the sink; once the body is open the
// sink's OnDone is guaranteed.
func (p *Provider) StreamResponse(ctx context.Context, req *providers.ChatRequest, sink providers.Sink) error {
	if err := providers.ValidateRequest(req); err != nil {
		return err
	}

	payload := buildPayload(req)
	payload.Stream = true

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/chat/completions", p.BaseURL())
	headers := p.headers()
	headers["Accept"] = "text/event-stream"

	resp, err := p.DoRequest(ctx, "POST", url, body, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return providers.ReduceStream(resp.Body, ParseLine, sink)
}

package selfhosted

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"bridgehq/relay/pkg/providers"
)

const providerName = "selfhosted"

// thinkUnsupportedMarker is the substring of the backend's error body that
// identifies a model without a thinking channel. Matching it triggers the
// single retry with think disabled.
const thinkUnsupportedMarker = "does not support thinking"

// Provider is the self-hosted API adapter. It implements providers.Provider
// over the backend's unauthenticated HTTP endpoints.
type Provider struct {
	*providers.Client
}

// New creates a self-hosted provider instance. The base URL is required;
// the backend takes no API key.
func New(config providers.ClientConfig) (*Provider, error) {
	if config.BaseURL == "" {
		return nil, &providers.ConfigError{
			Provider: providerName,
			Field:    "base_url",
			Message:  "base URL is required for the self-hosted provider",
		}
	}
	config.Name = providerName
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")

	p := &Provider{Client: providers.NewClient(config)}

	slog.Debug("self-hosted provider initialized", "base_url", config.BaseURL)

	return p, nil
}

// FetchModels lists the backend's models via GET /api/tags.
func (p *Provider) FetchModels(ctx context.Context) ([]providers.ModelInfo, error) {
	var list tagList
	url := fmt.Sprintf("%s/api/tags", p.BaseURL())
	if err := p.DoJSONRequest(ctx, "GET", url, nil, &list, nil); err != nil {
		return nil, err
	}

	models := make([]providers.ModelInfo, len(list.Models))
	for i, m := range list.Models {
		models[i] = providers.ModelInfo{ID: m.Name, Name: m.Name}
	}
	return models, nil
}

// GenerateResponse sends a bulk chat request and returns the reply text.
// A think-enabled request that fails because the model has no thinking
// channel is resent once with think disabled; the retry's outcome is final.
func (p *Provider) GenerateResponse(ctx context.Context, req *providers.ChatRequest) (string, error) {
	if err := providers.ValidateRequest(req); err != nil {
		return "", err
	}

	payload := buildPayload(req)
	payload.Stream = false

	resp, err := p.generate(ctx, payload)
	if err != nil && payload.Think && isThinkUnsupported(err) {
		slog.Info("model does not support thinking, retrying without",
			"provider", providerName,
			"model", req.Model,
		)
		payload.Think = false
		resp, err = p.generate(ctx, payload)
	}
	if err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

// generate performs one bulk chat call.
func (p *Provider) generate(ctx context.Context, payload *chatPayload) (*chatResponse, error) {
	var resp chatResponse
	url := fmt.Sprintf("%s/api/chat", p.BaseURL())
	if err := p.DoJSONRequest(ctx, "POST", url, payload, &resp, nil); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StreamResponse sends a streaming chat request and reduces the NDJSON body
// into the sink. The think retry applies exactly as in GenerateResponse:
// only a pre-stream "does not support thinking" failure is retried, and only
// once. Once the body is open the sink's OnDone is guaranteed.
func (p *Provider) StreamResponse(ctx context.Context, req *providers.ChatRequest, sink providers.Sink) error {
	if err := providers.ValidateRequest(req); err != nil {
		return err
	}

	payload := buildPayload(req)
	payload.Stream = true

	resp, err := p.openStream(ctx, payload)
	if err != nil && payload.Think && isThinkUnsupported(err) {
		slog.Info("model does not support thinking, retrying without",
			"provider", providerName,
			"model", req.Model,
		)
		payload.Think = false
		resp, err = p.openStream(ctx, payload)
	}
	if err != nil {
		return err
	}
	defer resp.Close()

	return providers.ReduceStream(resp, ParseLine, sink)
}

// openStream performs one streaming chat call and returns the open body.
func (p *Provider) openStream(ctx context.Context, payload *chatPayload) (io.ReadCloser, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", p.BaseURL())
	resp, err := p.DoRequest(ctx, "POST", url, body, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// isThinkUnsupported reports whether err is the backend's rejection of a
// think-enabled request against a model without a thinking channel. Only
// HTTP-level errors qualify; network failures never match.
func isThinkUnsupported(err error) bool {
	var pe *providers.ProviderError
	if !errors.As(err, &pe) {
		return false
	}
	return strings.Contains(strings.ToLower(pe.Message), thinkUnsupportedMarker)
}

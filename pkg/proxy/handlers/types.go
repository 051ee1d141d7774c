package handlers

import "bridgehq/relay/pkg/providers"

// ChatRequest is the front door's wire format for POST /api/chat. It may
// arrive as a plain JSON body, or as the "request" part of a multipart form
// with an optional "image" file that gets merged into the last user
// message.
type ChatRequest struct {
	// Provider selects the backend ("cloud" or "selfhosted").
	Provider string `json:"provider"`

	// Model is the backend model identifier.
	Model string `json:"model"`

	// Messages is the conversation history, oldest first.
	Messages []providers.Message `json:"messages"`

	// Temperature controls sampling randomness.
	Temperature float64 `json:"temperature,omitempty"`

	// MaxTokens caps the generated token count.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Think requests the backend's reasoning channel.
	Think bool `json:"think,omitempty"`

	// Stream selects incremental NDJSON delivery.
	Stream bool `json:"stream,omitempty"`

	// APIKey optionally overrides the configured cloud API key for this
	// request.
	APIKey string `json:"api_key,omitempty"`

	// BaseURL optionally overrides the configured backend endpoint for
	// this request.
	BaseURL string `json:"base_url,omitempty"`
}

// ChatResponse is the bulk-mode reply body.
type ChatResponse struct {
	Content string `json:"content"`
}

// StreamLine is one line of the streaming NDJSON reply.
type StreamLine struct {
	Content  string `json:"content,omitempty"`
	Thinking string `json:"thinking,omitempty"`
	Done     bool   `json:"done,omitempty"`
}

// ModelsResponse is the reply body for GET /api/models.
type ModelsResponse struct {
	Models []providers.ModelInfo `json:"models"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

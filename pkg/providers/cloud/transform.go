package cloud

import "bridgehq/relay/pkg/providers"

// Cloud API request/response types

// chatPayload is the backend's native chat completion request.
type chatPayload struct {
	Model       string              `json:"model"`
	Messages    []providers.Message `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Stream      bool                `json:"stream,omitempty"`
}

// chatResponse is the backend's bulk response envelope.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// streamChunk is one JSON value from the SSE-style stream.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// modelList is the /v1/models response envelope.
type modelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// buildPayload transforms a normalized request into the backend's native
// shape. Messages pass through unchanged: the backend accepts the
// normalized multi-part content encoding as-is.
func buildPayload(req *providers.ChatRequest) *chatPayload {
	return &chatPayload{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      req.Stream,
	}
}

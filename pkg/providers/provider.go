package providers

import "context"

// Provider is the contract every backend adapter implements. It hides
// per-backend request shapes, image-attachment encodings, and streaming wire
// formats behind three operations.
//
// All methods accept a context.Context for cancellation and timeout control;
// timeouts themselves are owned by the transport the provider is built on.
//
// Example usage:
//
//	p, err := providerfactory.New("selfhosted", creds, defaults)
//	if err != nil {
//	    return err
//	}
//
//	text, err := p.GenerateResponse(ctx, &providers.ChatRequest{
//	    Model: "llama3",
//	    Messages: []providers.Message{
//	        {Role: providers.RoleUser, Content: "Hello!"},
//	    },
//	})
type Provider interface {
	// FetchModels lists the models the backend currently offers.
	FetchModels(ctx context.Context) ([]ModelInfo, error)

	// GenerateResponse sends a bulk (non-streaming) chat request and
	// returns the complete reply text.
	GenerateResponse(ctx context.Context, req *ChatRequest) (string, error)

	// StreamResponse sends a streaming chat request and delivers
	// increments to the sink in source order. A failure before the
	// stream opens returns without touching the sink; once the body is
	// open, OnDone fires exactly once before StreamResponse returns.
	StreamResponse(ctx context.Context, req *ChatRequest, sink Sink) error
}

// ValidateRequest checks the invariants shared by all providers before a
// request is transformed into a backend payload.
func ValidateRequest(req *ChatRequest) error {
	if req == nil {
		return &ValidationError{Field: "request", Message: "request cannot be nil"}
	}
	if req.Model == "" {
		return &ValidationError{Field: "model", Message: "model is required"}
	}
	if len(req.Messages) == 0 {
		return &ValidationError{Field: "messages", Message: "at least one message is required"}
	}
	return nil
}

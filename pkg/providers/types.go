package providers

import (
	"encoding/json"
	"fmt"
)

// Message role constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Content part type constants
const (
	PartTypeText  = "text"
	PartTypeImage = "image"
)

// ContentPart is one element of a multimodal message body.
// Type selects which of the remaining fields are meaningful:
// PartTypeText carries Text, PartTypeImage carries Data and MimeType.
type ContentPart struct {
	// Type is the part kind ("text" or "image").
	Type string `json:"type"`

	// Text is the text content for text parts.
	Text string `json:"text,omitempty"`

	// Data is the base64-encoded image payload for image parts.
	// It may carry a "data:<mime>;base64," prefix; adapters strip it
	// where the backend expects raw base64.
	Data string `json:"data,omitempty"`

	// MimeType is the declared media type for image parts (e.g. "image/png").
	MimeType string `json:"mimeType,omitempty"`
}

// Message represents a single message in a conversation.
// Content holds the text of a plain message; Parts is set instead when an
// image is attached, in which case Content is ignored. On the wire the two
// shapes collapse into a single "content" field that is either a string or
// an array of parts.
type Message struct {
	// Role identifies the message sender (system, user, assistant).
	Role string `json:"role"`

	// Content is the message text for plain text messages.
	Content string `json:"content"`

	// Parts is the multimodal message body. Non-empty Parts takes
	// precedence over Content.
	Parts []ContentPart `json:"-"`
}

// Multimodal reports whether the message carries content parts rather than
// plain text.
func (m Message) Multimodal() bool {
	return len(m.Parts) > 0
}

// MarshalJSON emits "content" as a string for plain messages and as a part
// array for multimodal messages.
func (m Message) MarshalJSON() ([]byte, error) {
	if m.Multimodal() {
		return json.Marshal(struct {
			Role    string        `json:"role"`
			Content []ContentPart `json:"content"`
		}{Role: m.Role, Content: m.Parts})
	}
	return json.Marshal(struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}{Role: m.Role, Content: m.Content})
}

// UnmarshalJSON accepts both content shapes.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Role = raw.Role
	m.Content = ""
	m.Parts = nil

	if len(raw.Content) == 0 || string(raw.Content) == "null" {
		return nil
	}
	switch raw.Content[0] {
	case '[':
		return json.Unmarshal(raw.Content, &m.Parts)
	case '"':
		return json.Unmarshal(raw.Content, &m.Content)
	default:
		return fmt.Errorf("message content must be a string or an array of parts")
	}
}

// ChatRequest is a provider-agnostic chat completion request.
// Adapters transform it into their backend's native payload; the request
// itself is never mutated by a provider.
type ChatRequest struct {
	// Model is the backend model identifier (e.g. "gpt-4o", "llama3").
	Model string `json:"model"`

	// Messages is the conversation history, oldest first. Must be
	// non-empty when handed to a provider.
	Messages []Message `json:"messages"`

	// Temperature controls sampling randomness.
	Temperature float64 `json:"temperature,omitempty"`

	// MaxTokens caps the number of generated tokens.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Think requests the backend's reasoning channel where supported.
	Think bool `json:"think,omitempty"`

	// Stream selects incremental delivery over a bulk response.
	Stream bool `json:"stream,omitempty"`
}

// ModelInfo describes one model offered by a backend.
type ModelInfo struct {
	// ID is the backend's canonical model identifier.
	ID string `json:"id"`

	// Name is display text; it may equal ID.
	Name string `json:"name"`
}

// Increment is the decoded result of parsing one line of a streaming
// response body: a content fragment, a thinking fragment, or the
// end-of-stream signal. The zero value means "no content, not done" and is
// what line parsers return for unparseable input.
type Increment struct {
	// Done signals end-of-stream. Once true, no further increments from
	// the stream are processed.
	Done bool

	// Reason is the backend's stated finish reason, set only with Done.
	Reason string

	// Content is a fragment of the reply text.
	Content string

	// Thinking is a fragment of the backend's reasoning channel.
	Thinking string
}

// Credentials carries the per-request credential material a caller may
// supply explicitly. Empty fields fall back to process-wide configuration
// inside the factory. Values are resolved once per request and never
// persisted.
type Credentials struct {
	// APIKey authenticates against the cloud backend.
	APIKey string

	// BaseURL locates the self-hosted backend.
	BaseURL string
}

// RedactKey shortens a credential for log output. Keys are never logged in
// full.
func RedactKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

package selfhosted

import (
	"strings"

	"bridgehq/relay/pkg/providers"
)

// Self-hosted API request/response types

// chatMessage is the backend's message shape: plain text content plus an
// optional message-level list of raw base64 images.
type chatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

// chatPayload is the backend's native chat request. Sampling parameters
// nest under options; think sits at the top level. Stream is always
// emitted explicitly because the backend defaults it to true.
type chatPayload struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Think    bool          `json:"think,omitempty"`
	Options  *chatOptions  `json:"options,omitempty"`
}

// chatOptions carries the backend's nested sampling parameters.
type chatOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// chatResponse is the bulk response envelope.
type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// streamChunk is one NDJSON line of the streaming response.
type streamChunk struct {
	Message struct {
		Content  string `json:"content"`
		Thinking string `json:"thinking"`
	} `json:"message"`
	Done       bool   `json:"done"`
	DoneReason string `json:"done_reason"`
}

// tagList is the /api/tags response envelope.
type tagList struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// buildPayload transforms a normalized request into the backend's native
// shape, running messages through the image adapter.
func buildPayload(req *providers.ChatRequest) *chatPayload {
	payload := &chatPayload{
		Model:    req.Model,
		Messages: adaptMessages(req.Messages),
		Stream:   req.Stream,
		Think:    req.Think,
	}
	if req.Temperature != 0 || req.MaxTokens != 0 {
		payload.Options = &chatOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		}
	}
	return payload
}

// adaptMessages converts normalized messages to the backend shape. A user
// message with content parts collapses to a single text field (text parts
// space-joined and trimmed) plus a message-level image list with any
// "data:<mime>;base64," prefixes stripped. A part list with no images
// produces a plain message with no images key: the backend rejects empty
// image lists. Plain-text and non-user messages pass through unchanged.
func adaptMessages(messages []providers.Message) []chatMessage {
	adapted := make([]chatMessage, len(messages))
	for i, msg := range messages {
		if msg.Role != providers.RoleUser || !msg.Multimodal() {
			adapted[i] = chatMessage{Role: msg.Role, Content: msg.Content}
			continue
		}

		var texts []string
		var images []string
		for _, part := range msg.Parts {
			switch part.Type {
			case providers.PartTypeText:
				texts = append(texts, part.Text)
			case providers.PartTypeImage:
				images = append(images, stripDataURLPrefix(part.Data))
			}
		}

		adapted[i] = chatMessage{
			Role:    msg.Role,
			Content: strings.TrimSpace(strings.Join(texts, " ")),
			Images:  images,
		}
	}
	return adapted
}

// stripDataURLPrefix reduces a "data:<mime>;base64,<payload>" string to the
// raw base64 payload. Data already in raw form passes through.
func stripDataURLPrefix(data string) string {
	if !strings.HasPrefix(data, "data:") {
		return data
	}
	if idx := strings.Index(data, "base64,"); idx >= 0 {
		return data[idx+len("base64,"):]
	}
	return data
}

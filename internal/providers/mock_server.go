// Package providers contains test doubles shared by the provider
// adapter and handler tests: a configurable mock backend that can speak
// both the cloud SSE dialect and the self-hosted NDJSON dialect, plus
// fixture builders for the two wire formats.
package providers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockServer is a mock HTTP backend for testing provider adapters.
type MockServer struct {
	server       *httptest.Server
	responses    map[string]MockResponse
	requestCount int
	lastBody     []byte
	mu           sync.Mutex
}

// MockResponse defines a canned response for one path.
type MockResponse struct {
	StatusCode int
	Body       interface{}
	Delay      time.Duration
	Headers    map[string]string

	// SSELines are written as "data: <line>\n\n" events followed by the
	// terminal "data: [DONE]" sentinel. Lines are written raw, so a test
	// can inject malformed JSON.
	SSELines []string

	// NDJSONLines are written one per line with no framing. The caller is
	// responsible for including a final done line.
	NDJSONLines []string
}

// NewMockServer starts a mock backend. Callers must Close it.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string]MockResponse),
	}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))
	return ms
}

// URL returns the mock server's base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close shuts the mock server down.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse registers the response served for a path.
func (ms *MockServer) SetResponse(path string, response MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.responses[path] = response
}

// RequestCount returns the number of requests received so far.
func (ms *MockServer) RequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.requestCount
}

// LastBody returns the most recent request body received.
func (ms *MockServer) LastBody() []byte {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.lastBody
}

func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	ms.mu.Lock()
	ms.requestCount++
	ms.lastBody = body
	response, ok := ms.responses[r.URL.Path]
	ms.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if response.Delay > 0 {
		time.Sleep(response.Delay)
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}

	switch {
	case len(response.SSELines) > 0:
		ms.writeSSE(w, response.SSELines)
	case len(response.NDJSONLines) > 0:
		ms.writeNDJSON(w, response.NDJSONLines)
	default:
		status := response.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		if response.Body != nil {
			switch v := response.Body.(type) {
			case string:
				_, _ = w.Write([]byte(v))
			case []byte:
				_, _ = w.Write(v)
			default:
				_ = json.NewEncoder(w).Encode(response.Body)
			}
		}
	}
}

func (ms *MockServer) writeSSE(w http.ResponseWriter, lines []string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	for _, line := range lines {
		fmt.Fprintf(w, "data: %s\n\n", line)
		flusher.Flush()
	}
	fmt.Fprintf(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func (ms *MockServer) writeNDJSON(w http.ResponseWriter, lines []string) {
	w.Header().Set("Content-Type", "application/x-ndjson")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	for _, line := range lines {
		fmt.Fprintf(w, "%s\n", line)
		flusher.Flush()
	}
}

// CloudBulkResponse builds a cloud chat completion body.
func CloudBulkResponse(content, model string) map[string]interface{} {
	return map[string]interface{}{
		"id":      "chatcmpl-123",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   model,
		"choices": []map[string]interface{}{
			{
				"index": 0,
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
	}
}

// CloudStreamChunk builds a single cloud streaming delta line (the JSON
// payload only, without the "data: " prefix).
func CloudStreamChunk(delta string) string {
	chunk := map[string]interface{}{
		"id":      "chatcmpl-123",
		"object":  "chat.completion.chunk",
		"created": time.Now().Unix(),
		"model":   "gpt-4o",
		"choices": []map[string]interface{}{
			{
				"index": 0,
				"delta": map[string]interface{}{
					"content": delta,
				},
			},
		},
	}
	b, _ := json.Marshal(chunk)
	return string(b)
}

// CloudModelList builds a cloud /v1/models body.
func CloudModelList(ids ...string) map[string]interface{} {
	data := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		data = append(data, map[string]interface{}{"id": id, "object": "model"})
	}
	return map[string]interface{}{"object": "list", "data": data}
}

// SelfHostedBulkResponse builds a self-hosted /api/chat bulk body.
func SelfHostedBulkResponse(content, model string) map[string]interface{} {
	return map[string]interface{}{
		"model":       model,
		"created_at":  time.Now().Format(time.RFC3339),
		"message":     map[string]interface{}{"role": "assistant", "content": content},
		"done":        true,
		"done_reason": "stop",
	}
}

// SelfHostedStreamLine builds one NDJSON content line.
func SelfHostedStreamLine(content, thinking string) string {
	msg := map[string]interface{}{"role": "assistant", "content": content}
	if thinking != "" {
		msg["thinking"] = thinking
	}
	line := map[string]interface{}{
		"model":   "llama3",
		"message": msg,
		"done":    false,
	}
	b, _ := json.Marshal(line)
	return string(b)
}

// SelfHostedDoneLine builds the terminal NDJSON line.
func SelfHostedDoneLine(reason string) string {
	line := map[string]interface{}{
		"model":       "llama3",
		"message":     map[string]interface{}{"role": "assistant", "content": ""},
		"done":        true,
		"done_reason": reason,
	}
	b, _ := json.Marshal(line)
	return string(b)
}

// SelfHostedTagList builds a self-hosted /api/tags body.
func SelfHostedTagList(names ...string) map[string]interface{} {
	models := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		models = append(models, map[string]interface{}{"name": name})
	}
	return map[string]interface{}{"models": models}
}

// ErrorBody builds the nested error object both backends use.
func ErrorBody(message string) map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"message": message,
			"type":    "invalid_request_error",
		},
	}
}

// FlatErrorBody builds the flat error string shape some backends use.
func FlatErrorBody(message string) map[string]interface{} {
	return map[string]interface{}{"error": message}
}

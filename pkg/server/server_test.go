package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mock "bridgehq/relay/internal/providers"
	"bridgehq/relay/pkg/config"
	"bridgehq/relay/pkg/proxy/handlers"
	"bridgehq/relay/pkg/proxy/middleware"
	"bridgehq/relay/pkg/telemetry/metrics"
)

// newTestServer wires the full middleware chain and routes against a mock
// backend, served from httptest.
func newTestServer(t *testing.T, backendURL string) *httptest.Server {
	t.Helper()

	content := fmt.Sprintf(`
providers:
  selfhosted:
    base_url: %q
`, backendURL)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	store, err := config.NewStore(path)
	if err != nil {
		t.Fatalf("failed to create config store: %v", err)
	}

	m := metrics.New(store.Current().Telemetry.Metrics)
	h := handlers.New(store, m, nil)
	srv := New(store, h, m)

	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return ts
}

func TestRoutesEndToEnd(t *testing.T) {
	backend := mock.NewMockServer()
	defer backend.Close()
	backend.SetResponse("/api/chat", mock.MockResponse{
		Body: mock.SelfHostedBulkResponse("routed", "llama3"),
	})
	backend.SetResponse("/api/tags", mock.MockResponse{
		Body: mock.SelfHostedTagList("llama3"),
	})

	ts := newTestServer(t, backend.URL())

	// Chat through the full chain.
	resp, err := http.Post(ts.URL+"/api/chat", "application/json", strings.NewReader(`{
		"provider": "selfhosted",
		"model": "llama3",
		"messages": [{"role": "user", "content": "hi"}]
	}`))
	if err != nil {
		t.Fatalf("chat request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("chat status = %d", resp.StatusCode)
	}
	if resp.Header.Get(middleware.RequestIDHeader) == "" {
		t.Fatal("response missing request ID header")
	}
	var chat struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		t.Fatalf("invalid chat body: %v", err)
	}
	if chat.Content != "routed" {
		t.Fatalf("Content = %q", chat.Content)
	}

	// Models and health.
	for _, path := range []string{"/api/models?provider=selfhosted", "/health", "/metrics"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d", path, resp.StatusCode)
		}
	}
}

func TestRoutesMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, "http://unused.invalid")

	resp, err := http.Get(ts.URL + "/api/chat")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}

func TestStreamingThroughMiddleware(t *testing.T) {
	backend := mock.NewMockServer()
	defer backend.Close()
	backend.SetResponse("/api/chat", mock.MockResponse{
		NDJSONLines: []string{
			mock.SelfHostedStreamLine("chunk", ""),
			mock.SelfHostedDoneLine("stop"),
		},
	})

	ts := newTestServer(t, backend.URL())

	resp, err := http.Post(ts.URL+"/api/chat", "application/json", strings.NewReader(`{
		"provider": "selfhosted",
		"model": "llama3",
		"stream": true,
		"messages": [{"role": "user", "content": "hi"}]
	}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/x-ndjson" {
		t.Fatalf("Content-Type = %q", ct)
	}

	var lines []string
	dec := json.NewDecoder(resp.Body)
	for dec.More() {
		var line map[string]interface{}
		if err := dec.Decode(&line); err != nil {
			t.Fatalf("invalid stream line: %v", err)
		}
		b, _ := json.Marshal(line)
		lines = append(lines, string(b))
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[len(lines)-1], `"done":true`) {
		t.Fatalf("final line is not done: %q", lines[len(lines)-1])
	}
}

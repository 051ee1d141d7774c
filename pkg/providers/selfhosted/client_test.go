package selfhosted

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	mock "bridgehq/relay/internal/providers"
	"bridgehq/relay/pkg/providers"
)

func newTestProvider(t *testing.T, baseURL string) *Provider {
	t.Helper()
	p, err := New(providers.ClientConfig{
		BaseURL: baseURL,
		Timeout: mock.TestTimeout,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	return p
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(providers.ClientConfig{})

	var cfgErr *providers.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %T: %v", err, err)
	}
	if cfgErr.Field != "base_url" {
		t.Fatalf("Field = %q, want %q", cfgErr.Field, "base_url")
	}
}

func TestNewTrimsTrailingSlash(t *testing.T) {
	p, err := New(providers.ClientConfig{BaseURL: "http://localhost:11434/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.BaseURL() != "http://localhost:11434" {
		t.Fatalf("BaseURL = %q", p.BaseURL())
	}
}

func TestFetchModels(t *testing.T) {
	server := mock.NewMockServer()
	defer server.Close()
	server.SetResponse("/api/tags", mock.MockResponse{
		Body: mock.SelfHostedTagList("llama3", "mistral"),
	})

	p := newTestProvider(t, server.URL())
	models, err := p.FetchModels(context.Background())
	mock.AssertNoError(t, err)

	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(models))
	}
	mock.AssertEqual(t, models[0].ID, "llama3")
	mock.AssertEqual(t, models[1].Name, "mistral")
}

func TestGenerateResponse(t *testing.T) {
	server := mock.NewMockServer()
	defer server.Close()
	server.SetResponse("/api/chat", mock.MockResponse{
		Body: mock.SelfHostedBulkResponse("Hello!", "llama3"),
	})

	p := newTestProvider(t, server.URL())
	text, err := p.GenerateResponse(context.Background(),
		mock.TestChatRequest("llama3", mock.UserMessage("hello")))
	mock.AssertNoError(t, err)
	mock.AssertEqual(t, text, "Hello!")

	var sent map[string]interface{}
	if err := json.Unmarshal(server.LastBody(), &sent); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if stream, ok := sent["stream"].(bool); !ok || stream {
		t.Fatalf("bulk request must carry stream:false, got %v", sent["stream"])
	}
}

func TestStreamResponse(t *testing.T) {
	server := mock.NewMockServer()
	defer server.Close()
	server.SetResponse("/api/chat", mock.MockResponse{
		NDJSONLines: []string{
			mock.SelfHostedStreamLine("Hel", ""),
			mock.SelfHostedStreamLine("lo", "because greeting"),
			mock.SelfHostedStreamLine("!", ""),
			mock.SelfHostedDoneLine("stop"),
		},
	})

	p := newTestProvider(t, server.URL())
	sink := &mock.RecordingSink{}
	err := p.StreamResponse(context.Background(),
		mock.TestStreamRequest("llama3", mock.UserMessage("hello")), sink)
	mock.AssertNoError(t, err)

	mock.AssertEqual(t, sink.Content(), "Hello!")
	mock.AssertEqual(t, sink.Thinking(), "because greeting")
	sink.AssertDoneOnce(t)
}

// thinkRejectingServer rejects think-enabled requests the way the backend
// does, and serves normal responses once think is off. It counts requests
// so tests can assert the retry happened exactly once.
func thinkRejectingServer(t *testing.T, streaming bool) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var requests atomic.Int32

	handler := func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		var payload struct {
			Think  bool `json:"think"`
			Stream bool `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("bad request body: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if payload.Think {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"registry.ollama.ai/library/llama3 does not support thinking"}`)
			return
		}

		if streaming {
			w.Header().Set("Content-Type", "application/x-ndjson")
			fmt.Fprintln(w, `{"message":{"content":"plain"},"done":false}`)
			fmt.Fprintln(w, `{"message":{"content":""},"done":true,"done_reason":"stop"}`)
			return
		}
		fmt.Fprint(w, `{"message":{"role":"assistant","content":"plain"},"done":true}`)
	}

	return httptest.NewServer(http.HandlerFunc(handler)), &requests
}

func TestGenerateResponseThinkRetry(t *testing.T) {
	server, requests := thinkRejectingServer(t, false)
	defer server.Close()

	p := newTestProvider(t, server.URL)
	req := mock.TestChatRequest("llama3", mock.UserMessage("hello"))
	req.Think = true

	text, err := p.GenerateResponse(context.Background(), req)
	mock.AssertNoError(t, err)
	mock.AssertEqual(t, text, "plain")

	if got := requests.Load(); got != 2 {
		t.Fatalf("expected 2 requests (original + retry), got %d", got)
	}
	// The caller's request is never mutated by the retry.
	if !req.Think {
		t.Fatal("request was mutated by the retry")
	}
}

func TestStreamResponseThinkRetry(t *testing.T) {
	server, requests := thinkRejectingServer(t, true)
	defer server.Close()

	p := newTestProvider(t, server.URL)
	req := mock.TestStreamRequest("llama3", mock.UserMessage("hello"))
	req.Think = true

	sink := &mock.RecordingSink{}
	err := p.StreamResponse(context.Background(), req, sink)
	mock.AssertNoError(t, err)

	mock.AssertEqual(t, sink.Content(), "plain")
	sink.AssertDoneOnce(t)
	if got := requests.Load(); got != 2 {
		t.Fatalf("expected 2 requests (original + retry), got %d", got)
	}
}

func TestThinkRetryOnlyOnce(t *testing.T) {
	// A backend that rejects thinking even with think off: the retry's
	// failure is final, no third request.
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"model does not support thinking"}`)
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL)
	req := mock.TestChatRequest("llama3", mock.UserMessage("hello"))
	req.Think = true

	_, err := p.GenerateResponse(context.Background(), req)
	mock.AssertError(t, err)
	if got := requests.Load(); got != 2 {
		t.Fatalf("expected exactly 2 requests, got %d", got)
	}
}

func TestNoThinkRetryWithoutThink(t *testing.T) {
	// The marker in the error body does not trigger a retry when the
	// request never asked for thinking.
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"model does not support thinking"}`)
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL)
	_, err := p.GenerateResponse(context.Background(),
		mock.TestChatRequest("llama3", mock.UserMessage("hello")))

	mock.AssertError(t, err)
	if got := requests.Load(); got != 1 {
		t.Fatalf("expected 1 request, got %d", got)
	}
}

func TestNoThinkRetryOnOtherErrors(t *testing.T) {
	server := mock.NewMockServer()
	defer server.Close()
	server.SetResponse("/api/chat", mock.MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       mock.FlatErrorBody(`model "nope" not found`),
	})

	p := newTestProvider(t, server.URL())
	req := mock.TestChatRequest("nope", mock.UserMessage("hello"))
	req.Think = true

	_, err := p.GenerateResponse(context.Background(), req)
	mock.AssertError(t, err)
	if got := server.RequestCount(); got != 1 {
		t.Fatalf("expected 1 request, got %d", got)
	}
}

func TestIsThinkUnsupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "marker in provider error",
			err:  &providers.ProviderError{Provider: providerName, StatusCode: 400, Message: `llama3 does not support thinking`},
			want: true,
		},
		{
			name: "marker case-insensitive",
			err:  &providers.ProviderError{Provider: providerName, StatusCode: 400, Message: `Llama3 DOES NOT SUPPORT THINKING`},
			want: true,
		},
		{
			name: "other provider error",
			err:  &providers.ProviderError{Provider: providerName, StatusCode: 404, Message: "model not found"},
			want: false,
		},
		{
			name: "network error carrying the words",
			err:  errors.New("dial tcp: does not support thinking"),
			want: false,
		},
		{
			name: "nil",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isThinkUnsupported(tt.err); got != tt.want {
				t.Fatalf("isThinkUnsupported = %v, want %v", got, tt.want)
			}
		})
	}
}

package providers

import (
	"strings"
	"sync"
	"testing"
	"time"

	"bridgehq/relay/pkg/providers"
)

// TestChatRequest builds a bulk chat request for tests.
func TestChatRequest(model string, messages ...providers.Message) *providers.ChatRequest {
	return &providers.ChatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   100,
	}
}

// TestStreamRequest builds a streaming chat request for tests.
func TestStreamRequest(model string, messages ...providers.Message) *providers.ChatRequest {
	req := TestChatRequest(model, messages...)
	req.Stream = true
	return req
}

// UserMessage builds a plain-text user message.
func UserMessage(content string) providers.Message {
	return providers.Message{Role: providers.RoleUser, Content: content}
}

// TestCredentials returns credentials pointing at a mock server.
func TestCredentials(baseURL string) providers.Credentials {
	return providers.Credentials{APIKey: "test-key", BaseURL: baseURL}
}

// TestTimeout is the per-request timeout used by adapter tests.
const TestTimeout = 5 * time.Second

// RecordingSink records every callback it receives, in order. It is
// safe for concurrent use.
type RecordingSink struct {
	mu        sync.Mutex
	Events    []SinkEvent
	DoneCount int
}

// SinkEvent is one recorded sink callback.
type SinkEvent struct {
	Kind string // "content", "thinking" or "done"
	Text string // delta text; empty for done
}

func (s *RecordingSink) OnContent(delta string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, SinkEvent{Kind: "content", Text: delta})
}

func (s *RecordingSink) OnThinking(delta string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, SinkEvent{Kind: "thinking", Text: delta})
}

func (s *RecordingSink) OnDone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DoneCount++
	s.Events = append(s.Events, SinkEvent{Kind: "done"})
}

// Content concatenates all recorded content deltas.
func (s *RecordingSink) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	for _, ev := range s.Events {
		if ev.Kind == "content" {
			b.WriteString(ev.Text)
		}
	}
	return b.String()
}

// Thinking concatenates all recorded thinking deltas.
func (s *RecordingSink) Thinking() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	for _, ev := range s.Events {
		if ev.Kind == "thinking" {
			b.WriteString(ev.Text)
		}
	}
	return b.String()
}

// AssertDoneOnce fails unless OnDone fired exactly once and was the
// final recorded event.
func (s *RecordingSink) AssertDoneOnce(t *testing.T) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DoneCount != 1 {
		t.Fatalf("OnDone fired %d times, want exactly 1", s.DoneCount)
	}
	if len(s.Events) == 0 || s.Events[len(s.Events)-1].Kind != "done" {
		t.Fatalf("OnDone was not the final event: %v", s.Events)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertEqual fails the test if got != expected.
func AssertEqual(t *testing.T, got, expected interface{}) {
	t.Helper()
	if got != expected {
		t.Fatalf("expected %v, got %v", expected, got)
	}
}

// AssertContains fails the test if haystack doesn't contain needle.
func AssertContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q to contain %q", haystack, needle)
	}
}

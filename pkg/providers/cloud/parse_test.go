package cloud

import (
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantDone    bool
		wantContent string
	}{
		{
			name:        "content delta",
			line:        `data: {"choices":[{"delta":{"content":"Hello"}}]}`,
			wantContent: "Hello",
		},
		{
			name:     "done sentinel",
			line:     "data: [DONE]",
			wantDone: true,
		},
		{
			name: "empty delta",
			line: `data: {"choices":[{"delta":{}}]}`,
		},
		{
			name: "no choices",
			line: `data: {"choices":[]}`,
		},
		{
			name: "missing data prefix",
			line: `{"choices":[{"delta":{"content":"lost"}}]}`,
		},
		{
			name: "sse comment line",
			line: ": keep-alive",
		},
		{
			name: "event name line",
			line: "event: message",
		},
		{
			name: "malformed json after prefix",
			line: `data: {"choices":[{"delta":`,
		},
		{
			name: "empty line",
			line: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inc := ParseLine(tt.line)
			if inc.Done != tt.wantDone {
				t.Fatalf("Done = %v, want %v", inc.Done, tt.wantDone)
			}
			if inc.Content != tt.wantContent {
				t.Fatalf("Content = %q, want %q", inc.Content, tt.wantContent)
			}
			if inc.Thinking != "" {
				t.Fatalf("unexpected thinking fragment %q", inc.Thinking)
			}
		})
	}
}

func TestParseLineDoneReason(t *testing.T) {
	inc := ParseLine("data: [DONE]")
	if !inc.Done {
		t.Fatal("expected Done")
	}
	if inc.Reason != "stop" {
		t.Fatalf("Reason = %q, want %q", inc.Reason, "stop")
	}
}

package selfhosted

import (
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name         string
		line         string
		wantDone     bool
		wantReason   string
		wantContent  string
		wantThinking string
	}{
		{
			name:        "content line",
			line:        `{"message":{"role":"assistant","content":"Hi"},"done":false}`,
			wantContent: "Hi",
		},
		{
			name:         "thinking line",
			line:         `{"message":{"role":"assistant","content":"","thinking":"hmm"},"done":false}`,
			wantThinking: "hmm",
		},
		{
			name:         "content and thinking together",
			line:         `{"message":{"content":"a","thinking":"b"},"done":false}`,
			wantContent:  "a",
			wantThinking: "b",
		},
		{
			name:       "done with reason",
			line:       `{"message":{"content":""},"done":true,"done_reason":"length"}`,
			wantDone:   true,
			wantReason: "length",
		},
		{
			name:       "done without reason defaults to stop",
			line:       `{"message":{"content":""},"done":true}`,
			wantDone:   true,
			wantReason: "stop",
		},
		{
			name: "malformed json",
			line: `{"message":{"content":`,
		},
		{
			name: "unrelated json",
			line: `{"status":"loading model"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inc := ParseLine(tt.line)
			if inc.Done != tt.wantDone {
				t.Fatalf("Done = %v, want %v", inc.Done, tt.wantDone)
			}
			if inc.Reason != tt.wantReason {
				t.Fatalf("Reason = %q, want %q", inc.Reason, tt.wantReason)
			}
			if inc.Content != tt.wantContent {
				t.Fatalf("Content = %q, want %q", inc.Content, tt.wantContent)
			}
			if inc.Thinking != tt.wantThinking {
				t.Fatalf("Thinking = %q, want %q", inc.Thinking, tt.wantThinking)
			}
		})
	}
}

package providers

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// collectSink records callbacks in order for assertions.
type collectSink struct {
	events    []string
	doneCount int
}

func (s *collectSink) OnContent(text string)  { s.events = append(s.events, "c:"+text) }
func (s *collectSink) OnThinking(text string) { s.events = append(s.events, "t:"+text) }
func (s *collectSink) OnDone()                { s.doneCount++; s.events = append(s.events, "done") }

// testParse is a minimal line parser for reducer tests. Lines are
// "c <text>", "t <text>", "done", or anything else (ignored).
func testParse(line string) Increment {
	switch {
	case line == "done":
		return Increment{Done: true, Reason: "stop"}
	case strings.HasPrefix(line, "c "):
		return Increment{Content: strings.TrimPrefix(line, "c ")}
	case strings.HasPrefix(line, "t "):
		return Increment{Thinking: strings.TrimPrefix(line, "t ")}
	default:
		return Increment{}
	}
}

// chunkReader yields the underlying data in fixed-size chunks so tests can
// exercise lines split across read boundaries.
type chunkReader struct {
	data []byte
	size int
	pos  int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	end := r.pos + r.size
	if end > len(r.data) {
		end = len(r.data)
	}
	n := copy(p, r.data[r.pos:end])
	r.pos += n
	return n, nil
}

// failingReader returns some data and then a read error.
type failingReader struct {
	data []byte
	err  error
	read bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.read {
		r.read = true
		return copy(p, r.data), nil
	}
	return 0, r.err
}

func TestReduceStreamOrdering(t *testing.T) {
	body := "c hello\nt hmm\nc world\ndone\n"
	sink := &collectSink{}

	if err := ReduceStream(strings.NewReader(body), testParse, sink); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"c:hello", "t:hmm", "c:world", "done"}
	assertEvents(t, sink.events, want)
}

func TestReduceStreamChunkBoundaryInvariance(t *testing.T) {
	body := "c hello\nt thinking hard\nc world\nc !\ndone\n"

	// Reference run: single read.
	ref := &collectSink{}
	if err := ReduceStream(strings.NewReader(body), testParse, ref); err != nil {
		t.Fatalf("reference run failed: %v", err)
	}

	for _, size := range []int{1, 2, 3, 5, 7, 11, len(body)} {
		sink := &collectSink{}
		r := &chunkReader{data: []byte(body), size: size}
		if err := ReduceStream(r, testParse, sink); err != nil {
			t.Fatalf("chunk size %d: unexpected error: %v", size, err)
		}
		if len(sink.events) != len(ref.events) {
			t.Fatalf("chunk size %d: got %v, want %v", size, sink.events, ref.events)
		}
		for i := range sink.events {
			if sink.events[i] != ref.events[i] {
				t.Fatalf("chunk size %d: got %v, want %v", size, sink.events, ref.events)
			}
		}
	}
}

func TestReduceStreamDoneExactlyOnce(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"done signal", "c hi\ndone\n"},
		{"eof without done", "c hi\nc there\n"},
		{"empty body", ""},
		{"only blank lines", "\n\n  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &collectSink{}
			if err := ReduceStream(strings.NewReader(tt.body), testParse, sink); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sink.doneCount != 1 {
				t.Fatalf("OnDone fired %d times, want 1", sink.doneCount)
			}
			if sink.events[len(sink.events)-1] != "done" {
				t.Fatalf("OnDone was not the final event: %v", sink.events)
			}
		})
	}
}

func TestReduceStreamDoneOnReadError(t *testing.T) {
	readErr := errors.New("connection reset")
	r := &failingReader{data: []byte("c partial\n"), err: readErr}
	sink := &collectSink{}

	err := ReduceStream(r, testParse, sink)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var streamErr *StreamError
	if !errors.As(err, &streamErr) {
		t.Fatalf("expected StreamError, got %T: %v", err, err)
	}
	if !errors.Is(err, readErr) {
		t.Fatalf("StreamError does not wrap the read error: %v", err)
	}
	if sink.doneCount != 1 {
		t.Fatalf("OnDone fired %d times, want 1", sink.doneCount)
	}
	assertEvents(t, sink.events, []string{"c:partial", "done"})
}

func TestReduceStreamStopsAtDone(t *testing.T) {
	// Content after the done signal must never reach the sink.
	body := "c before\ndone\nc after\n"
	sink := &collectSink{}

	if err := ReduceStream(strings.NewReader(body), testParse, sink); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEvents(t, sink.events, []string{"c:before", "done"})
}

func TestReduceStreamFlushesTrailingLine(t *testing.T) {
	// A final line with no trailing newline is still parsed.
	body := "c first\nc last"
	sink := &collectSink{}

	if err := ReduceStream(strings.NewReader(body), testParse, sink); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEvents(t, sink.events, []string{"c:first", "c:last", "done"})
}

func TestReduceStreamSkipsUnparseableLines(t *testing.T) {
	body := "garbage line\nc kept\n{broken json\ndone\n"
	sink := &collectSink{}

	if err := ReduceStream(strings.NewReader(body), testParse, sink); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEvents(t, sink.events, []string{"c:kept", "done"})
}

func assertEvents(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("events mismatch:\ngot:  %v\nwant: %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("events mismatch at %d:\ngot:  %v\nwant: %v", i, got, want)
		}
	}
}

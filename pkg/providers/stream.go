package providers

import (
	"bufio"
	"io"
	"log/slog"
	"strings"
)

// LineParser parses one textual line of a streaming response body into an
// Increment. Implementations are pure functions: they never perform I/O and
// never fail. Unparseable input is logged by the implementation and comes
// back as the zero Increment, which the reducer treats as "no content, not
// done".
type LineParser func(line string) Increment

// maxStreamLineBytes bounds a single stream line. Backends emit one JSON
// value per line, so lines past this size indicate a broken stream.
const maxStreamLineBytes = 1 << 20

// ReduceStream consumes a streaming response body line by line and drives
// the sink. It buffers partial lines across chunk boundaries, trims and
// skips blank lines, and hands every complete line to parse. The first Done
// increment terminates the reduction immediately; remaining bytes are
// abandoned. If the body ends without a done signal, a trailing
// unterminated line is still flushed through the parser.
//
// Sink.OnDone is invoked exactly once on every path out of this function,
// including read errors, so a caller holding the HTTP response open can
// always release it from OnDone. Increments reach the sink in the order
// their lines appeared in the body.
func ReduceStream(body io.Reader, parse LineParser, sink Sink) error {
	doneSignaled := false
	signalDone := func() {
		if !doneSignaled {
			doneSignaled = true
			sink.OnDone()
		}
	}
	defer signalDone()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLineBytes)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		inc := parse(line)
		if inc.Done {
			return nil
		}
		if inc.Content != "" {
			sink.OnContent(inc.Content)
		}
		if inc.Thinking != "" {
			sink.OnThinking(inc.Thinking)
		}
	}

	if err := scanner.Err(); err != nil {
		slog.Error("stream reduction failed", "error", err)
		return &StreamError{
			Message: "failed to read stream",
			Cause:   err,
		}
	}

	return nil
}

package cloud

import (
	"encoding/json"
	"log/slog"
	"strings"

	"bridgehq/relay/pkg/providers"
)

const (
	// dataPrefix marks payload lines in the SSE-style stream.
	dataPrefix = "data: "

	// doneSentinel is the literal payload of the terminal stream line.
	doneSentinel = "[DONE]"
)

// ParseLine parses one line of the cloud streaming wire format. Lines
// without the "data: " prefix (comments, event names, keep-alives) yield an
// empty increment, as does malformed JSON after the prefix; neither aborts
// the stream.
func ParseLine(line string) providers.Increment {
	if !strings.HasPrefix(line, dataPrefix) {
		return providers.Increment{}
	}

	data := strings.TrimPrefix(line, dataPrefix)
	if data == doneSentinel {
		return providers.Increment{Done: true, Reason: "stop"}
	}

	var chunk streamChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		slog.Warn("discarding malformed stream line",
			"provider", providerName,
			"error", err,
		)
		return providers.Increment{}
	}

	if len(chunk.Choices) == 0 {
		return providers.Increment{}
	}
	return providers.Increment{Content: chunk.Choices[0].Delta.Content}
}

package selfhosted

import (
	"encoding/json"
	"log/slog"

	"bridgehq/relay/pkg/providers"
)

// ParseLine parses one NDJSON line of the self-hosted streaming wire
// format. Malformed JSON is logged and yields an empty increment; the
// stream continues.
func ParseLine(line string) providers.Increment {
	var chunk streamChunk
	if err := json.Unmarshal([]byte(line), &chunk); err != nil {
		slog.Warn("discarding malformed stream line",
			"provider", providerName,
			"error", err,
		)
		return providers.Increment{}
	}

	if chunk.Done {
		reason := chunk.DoneReason
		if reason == "" {
			reason = "stop"
		}
		return providers.Increment{Done: true, Reason: reason}
	}

	return providers.Increment{
		Content:  chunk.Message.Content,
		Thinking: chunk.Message.Thinking,
	}
}

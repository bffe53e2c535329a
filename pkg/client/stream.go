package client

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/plauder-dev/plauder/pkg/api"
	"github.com/plauder-dev/plauder/pkg/wire"
)

// maxLineSize bounds a single NDJSON line. Completion chunks carrying
// large tool call arguments can exceed bufio's default 64K.
const maxLineSize = 1 << 20

// readLines consumes the NDJSON body line by line: trim, skip blanks,
// attempt decode, hand the chunk to fn. A malformed line is logged and
// skipped. Reading stops at the completion chunk, a cancelled context,
// or EOF.
func readLines(ctx context.Context, body io.Reader, fn func(*wire.ChatChunk) error) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		// Check for cancellation between reads.
		if ctx.Err() != nil {
			return nil
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		chunk, err := wire.DecodeChunk(line)
		if err != nil {
			slog.Warn("skipping malformed stream line",
				"error", err.Error(),
				"data", truncate(string(line), 200),
			)
			continue
		}

		if err := fn(chunk); err != nil {
			return err
		}

		// The completion flag terminates the stream.
		if chunk.Done {
			return nil
		}
	}

	// Scanner error (e.g. connection dropped mid-stream).
	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return api.NewTransportError("stream read error: " + err.Error())
	}
	return nil
}

// truncate limits a string to maxLen characters for log output.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

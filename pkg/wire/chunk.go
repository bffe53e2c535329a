package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeChunk parses one line of the response stream into a ChatChunk.
//
// A cheap pre-filter rejects lines that cannot be a complete JSON
// object (not starting with '{' or not ending with '}') before paying
// for a full parse; truncated lines from a dropped connection fail here.
// Any decode failure is returned to the caller, which skips the chunk;
// a malformed line never aborts the stream.
func DecodeChunk(line []byte) (*ChatChunk, error) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty line")
	}
	if trimmed[0] != '{' || trimmed[len(trimmed)-1] != '}' {
		return nil, fmt.Errorf("not a JSON object")
	}

	var chunk ChatChunk
	if err := json.Unmarshal(trimmed, &chunk); err != nil {
		return nil, fmt.Errorf("decoding chunk: %w", err)
	}
	return &chunk, nil
}

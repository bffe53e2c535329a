package wire

import (
	"encoding/json"
	"time"

	"github.com/plauder-dev/plauder/pkg/api"
)

// ChatRequest is the backend-facing request payload for one model turn.
type ChatRequest struct {
	Model    string               `json:"model"`
	Messages []api.Message        `json:"messages"`
	Stream   bool                 `json:"stream"`
	Think    bool                 `json:"think,omitempty"`
	Tools    []api.ToolDefinition `json:"tools,omitempty"`
	Format   json.RawMessage      `json:"format,omitempty"`
	Options  map[string]any       `json:"options,omitempty"`
}

// ChatChunk is one decoded JSON object from the response stream. In
// non-streaming mode the whole response body is a single chunk.
type ChatChunk struct {
	Model     string       `json:"model"`
	CreatedAt string       `json:"created_at"`
	Message   ChunkMessage `json:"message"`

	// Done marks that no further chunks will arrive for this response.
	Done       bool   `json:"done"`
	DoneReason string `json:"done_reason,omitempty"`

	// Advisory performance counters, present on the completion chunk.
	// Durations are nanoseconds on the wire.
	TotalDuration      int64 `json:"total_duration,omitempty"`
	LoadDuration       int64 `json:"load_duration,omitempty"`
	PromptEvalCount    int   `json:"prompt_eval_count,omitempty"`
	PromptEvalDuration int64 `json:"prompt_eval_duration,omitempty"`
	EvalCount          int   `json:"eval_count,omitempty"`
	EvalDuration       int64 `json:"eval_duration,omitempty"`
}

// ChunkMessage is the per-chunk message delta. Content and Thinking are
// incremental text; ToolCalls appear on the completion chunk.
type ChunkMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Thinking  string         `json:"thinking"`
	ToolCalls []api.ToolCall `json:"tool_calls"`
}

// Stats converts the chunk's wire-level performance counters into the
// api representation.
func (c *ChatChunk) Stats() api.Stats {
	return api.Stats{
		TotalDuration:      time.Duration(c.TotalDuration),
		LoadDuration:       time.Duration(c.LoadDuration),
		PromptEvalCount:    c.PromptEvalCount,
		PromptEvalDuration: time.Duration(c.PromptEvalDuration),
		EvalCount:          c.EvalCount,
		EvalDuration:       time.Duration(c.EvalDuration),
	}
}

package engine

import (
	"github.com/plauder-dev/plauder/pkg/api"
	"github.com/plauder-dev/plauder/pkg/wire"
)

// Status is the terminal state of a turn.
type Status string

const (
	// StatusCompleted marks a turn that ran to its natural end.
	StatusCompleted Status = "completed"

	// StatusCancelled marks a turn interrupted by context cancellation.
	// The response keeps whatever text arrived before the cut.
	StatusCancelled Status = "cancelled"
)

// Response accumulates the model's reply across stream chunks. Content
// and Thinking grow cumulatively; NewContent and NewThinking hold
// exactly the text added by the most recent fold, so renderers never
// need to diff.
type Response struct {
	Model    string
	Content  string
	Thinking string

	// NewContent and NewThinking are the deltas from the latest chunk.
	NewContent  string
	NewThinking string

	// Done latches true on the completion chunk and never reverts.
	Done       bool
	DoneReason string

	// ToolCalls are taken only from the completion chunk. Calls on
	// earlier chunks are partial and ignored.
	ToolCalls []api.ToolCall

	Stats  api.Stats
	Status Status

	started   bool
	justBegan bool
	justDone  bool
}

func newResponse(model string) *Response {
	return &Response{Model: model}
}

// fold merges one chunk into the response.
func (r *Response) fold(c *wire.ChatChunk) {
	r.justBegan = !r.started
	r.started = true
	r.justDone = false

	if c.Model != "" {
		r.Model = c.Model
	}

	r.NewContent = c.Message.Content
	r.NewThinking = c.Message.Thinking
	r.Content += c.Message.Content
	r.Thinking += c.Message.Thinking

	if c.Done && !r.Done {
		r.Done = true
		r.justDone = true
		r.DoneReason = c.DoneReason
		r.Stats = c.Stats()
		if len(c.Message.ToolCalls) > 0 {
			r.ToolCalls = append(r.ToolCalls[:0], c.Message.ToolCalls...)
			for i := range r.ToolCalls {
				if r.ToolCalls[i].ID == "" {
					r.ToolCalls[i].ID = api.NewCallID()
				}
			}
		}
	}
}

// markCancelled finalizes an interrupted reply. Done latches so the
// partial response reads as terminal to callers checking the flag.
func (r *Response) markCancelled() {
	r.Status = StatusCancelled
	r.Done = true
}

func (r *Response) markCompleted() {
	r.Status = StatusCompleted
}

// HasToolCalls reports whether the completed reply requests tool
// execution.
func (r *Response) HasToolCalls() bool {
	return r.Done && len(r.ToolCalls) > 0
}

// assistantMessage converts the accumulated reply into the assistant
// message appended to the conversation before tool replies.
func (r *Response) assistantMessage() api.Message {
	return api.Message{
		Role:      api.RoleAssistant,
		Content:   r.Content,
		Thinking:  r.Thinking,
		ToolCalls: r.ToolCalls,
	}
}

package tools

import (
	"context"

	"github.com/plauder-dev/plauder/pkg/api"
)

// Executor executes a batch of tool calls and returns tool reply
// messages. Implementations must answer every call; failures are
// encoded in reply content with the api.ToolErrorPrefix rather than
// returned as errors. The engine additionally normalizes replies with
// NormalizeReplies, so a misbehaving executor cannot leave a call
// unanswered or inject extra replies.
type Executor interface {
	Execute(ctx context.Context, calls []api.ToolCall) []api.Message
}

// NormalizeReplies returns exactly one reply per call, in call order.
// Replies are matched by tool call ID first; replies without a usable
// ID are consumed positionally. Calls left unanswered get a synthesized
// error reply, and surplus replies are dropped.
func NormalizeReplies(calls []api.ToolCall, replies []api.Message) []api.Message {
	byID := make(map[string]*api.Message, len(replies))
	var unmatched []*api.Message
	used := make(map[*api.Message]bool, len(replies))

	for i := range replies {
		r := &replies[i]
		if r.ToolCallID != "" {
			if _, dup := byID[r.ToolCallID]; !dup {
				byID[r.ToolCallID] = r
				continue
			}
		}
		unmatched = append(unmatched, r)
	}

	takeUnmatched := func() *api.Message {
		for _, r := range unmatched {
			if !used[r] {
				used[r] = true
				return r
			}
		}
		return nil
	}

	out := make([]api.Message, 0, len(calls))
	for _, call := range calls {
		if call.ID != "" {
			if r, ok := byID[call.ID]; ok && !used[r] {
				used[r] = true
				out = append(out, *r)
				continue
			}
		}
		if r := takeUnmatched(); r != nil {
			reply := *r
			// Backfill the correlation fields so the model can match
			// the reply to its call.
			reply.ToolCallID = call.ID
			if reply.ToolName == "" {
				reply.ToolName = call.Function.Name
			}
			out = append(out, reply)
			continue
		}
		out = append(out, api.NewToolErrorReply(call, "tool "+call.Function.Name+" returned no result"))
	}
	return out
}

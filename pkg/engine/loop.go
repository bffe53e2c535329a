package engine

import (
	"context"
	"errors"

	"github.com/plauder-dev/plauder/pkg/api"
	"github.com/plauder-dev/plauder/pkg/debug"
	"github.com/plauder-dev/plauder/pkg/observability"
	"github.com/plauder-dev/plauder/pkg/tools"
)

// ErrTooManyToolRounds is returned with the last response when the
// model keeps requesting tools past the configured round cap.
var ErrTooManyToolRounds = errors.New("tool continuation rounds exceeded limit")

// continueIfNeeded runs the tool continuation loop for one completed
// round. A response without tool calls, or an engine without a tool
// source, is terminal and returned as-is.
func (e *Engine) continueIfNeeded(ctx context.Context, conv *api.Conversation, resp *Response, round int) (*Response, error) {
	if !resp.HasToolCalls() || e.tools == nil {
		return resp, nil
	}
	if round >= e.cfg.maxRounds() {
		debug.Log("engine", "tool round cap hit",
			"model", e.cfg.Model, "rounds", round, "cap", e.cfg.maxRounds())
		return resp, ErrTooManyToolRounds
	}

	debug.Log("engine", "tool round",
		"model", e.cfg.Model, "round", round+1, "calls", len(resp.ToolCalls))
	observability.ToolRoundsTotal.WithLabelValues(e.cfg.Model).Inc()

	// The assistant message carrying the calls comes before its replies.
	conv.Append(resp.assistantMessage())

	replies := tools.NormalizeReplies(resp.ToolCalls, e.tools.Execute(ctx, resp.ToolCalls))
	for _, reply := range replies {
		e.observer.OnToolMessage(reply)
		conv.Append(reply)
	}

	if ctx.Err() != nil {
		resp.markCancelled()
		return resp, nil
	}
	return e.send(ctx, conv, round+1)
}

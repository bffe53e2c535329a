package engine

import (
	"strings"
	"testing"

	"github.com/plauder-dev/plauder/pkg/api"
	"github.com/plauder-dev/plauder/pkg/wire"
)

func contentChunk(text string) *wire.ChatChunk {
	return &wire.ChatChunk{
		Model:   "llama3.1",
		Message: wire.ChunkMessage{Role: "assistant", Content: text},
	}
}

func thinkingChunk(text string) *wire.ChatChunk {
	return &wire.ChatChunk{
		Model:   "llama3.1",
		Message: wire.ChunkMessage{Role: "assistant", Thinking: text},
	}
}

func completionChunk(reason string, calls ...api.ToolCall) *wire.ChatChunk {
	return &wire.ChatChunk{
		Model:           "llama3.1",
		Message:         wire.ChunkMessage{Role: "assistant", ToolCalls: calls},
		Done:            true,
		DoneReason:      reason,
		PromptEvalCount: 12,
		EvalCount:       34,
	}
}

func TestResponseFoldAccumulates(t *testing.T) {
	r := newResponse("llama3.1")

	r.fold(contentChunk("Hel"))
	if r.Content != "Hel" || r.NewContent != "Hel" {
		t.Errorf("after first fold: content=%q new=%q", r.Content, r.NewContent)
	}
	if !r.justBegan {
		t.Error("first fold did not mark stream start")
	}

	r.fold(contentChunk("lo"))
	if r.Content != "Hello" {
		t.Errorf("content = %q, want Hello", r.Content)
	}
	if r.NewContent != "lo" {
		t.Errorf("new content = %q, want lo", r.NewContent)
	}
	if r.justBegan {
		t.Error("second fold still marked as stream start")
	}
	if r.Done {
		t.Error("done before completion chunk")
	}
}

func TestResponseFoldThinkingSeparate(t *testing.T) {
	r := newResponse("llama3.1")
	r.fold(thinkingChunk("hmm, "))
	r.fold(thinkingChunk("let me add"))
	r.fold(contentChunk("4"))

	if r.Thinking != "hmm, let me add" {
		t.Errorf("thinking = %q", r.Thinking)
	}
	if r.Content != "4" {
		t.Errorf("content = %q", r.Content)
	}
	// The content fold must not report a thinking delta.
	if r.NewThinking != "" {
		t.Errorf("new thinking = %q after content fold", r.NewThinking)
	}
}

func TestResponseDoneLatches(t *testing.T) {
	r := newResponse("llama3.1")
	r.fold(contentChunk("done"))
	r.fold(completionChunk("stop"))

	if !r.Done || !r.justDone {
		t.Fatal("completion chunk did not mark done")
	}
	if r.DoneReason != "stop" {
		t.Errorf("done reason = %q", r.DoneReason)
	}
	if r.Stats.PromptEvalCount != 12 || r.Stats.EvalCount != 34 {
		t.Errorf("stats = %+v", r.Stats)
	}

	// A straggler chunk after completion never resets done.
	r.fold(contentChunk("extra"))
	if !r.Done {
		t.Error("done flag reverted")
	}
	if r.justDone {
		t.Error("justDone stayed set past the completion fold")
	}
}

func TestResponseCancelledIsTerminal(t *testing.T) {
	r := newResponse("llama3.1")
	r.fold(contentChunk("par"))
	r.markCancelled()

	if r.Status != StatusCancelled {
		t.Errorf("status = %q", r.Status)
	}
	if !r.Done {
		t.Error("interrupted response not marked done")
	}
	if r.HasToolCalls() {
		t.Error("interrupted response claims tool calls")
	}
}

func TestResponseToolCallsOnlyFromCompletion(t *testing.T) {
	partial := contentChunk("")
	partial.Message.ToolCalls = []api.ToolCall{{Function: api.FunctionCall{Name: "early"}}}

	r := newResponse("llama3.1")
	r.fold(partial)
	if len(r.ToolCalls) != 0 {
		t.Fatalf("tool calls accepted from non-completion chunk: %v", r.ToolCalls)
	}

	r.fold(completionChunk("tool_calls", api.ToolCall{Function: api.FunctionCall{Name: "add"}}))
	if len(r.ToolCalls) != 1 || r.ToolCalls[0].Function.Name != "add" {
		t.Fatalf("tool calls = %v", r.ToolCalls)
	}
	if !r.HasToolCalls() {
		t.Error("HasToolCalls = false after completion with calls")
	}
}

func TestResponseBackfillsCallIDs(t *testing.T) {
	r := newResponse("llama3.1")
	r.fold(completionChunk("tool_calls",
		api.ToolCall{ID: "call_existing", Function: api.FunctionCall{Name: "a"}},
		api.ToolCall{Function: api.FunctionCall{Name: "b"}},
	))

	if r.ToolCalls[0].ID != "call_existing" {
		t.Errorf("existing ID rewritten to %q", r.ToolCalls[0].ID)
	}
	if !strings.HasPrefix(r.ToolCalls[1].ID, "call_") {
		t.Errorf("missing ID not backfilled: %q", r.ToolCalls[1].ID)
	}
}

func TestResponseAssistantMessage(t *testing.T) {
	r := newResponse("llama3.1")
	r.fold(thinkingChunk("considering"))
	r.fold(contentChunk("checking"))
	r.fold(completionChunk("tool_calls", api.ToolCall{ID: "c1", Function: api.FunctionCall{Name: "add"}}))

	msg := r.assistantMessage()
	if msg.Role != api.RoleAssistant {
		t.Errorf("role = %q", msg.Role)
	}
	if msg.Content != "checking" || msg.Thinking != "considering" {
		t.Errorf("message = %+v", msg)
	}
	if len(msg.ToolCalls) != 1 {
		t.Errorf("tool calls = %v", msg.ToolCalls)
	}
}

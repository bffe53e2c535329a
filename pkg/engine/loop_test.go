package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/plauder-dev/plauder/pkg/api"
	"github.com/plauder-dev/plauder/pkg/tools"
	"github.com/plauder-dev/plauder/pkg/wire"
)

func toolCallTurn(name, args string) []*wire.ChatChunk {
	return []*wire.ChatChunk{completionChunk("tool_calls", api.ToolCall{
		ID:       api.NewCallID(),
		Function: api.FunctionCall{Name: name, Arguments: json.RawMessage(args)},
	})}
}

func answerTurn(text string) []*wire.ChatChunk {
	c := completionChunk("stop")
	c.Message.Content = text
	return []*wire.ChatChunk{c}
}

func TestToolContinuationSingleRound(t *testing.T) {
	registry := tools.NewRegistry()
	var gotArgs string
	_ = registry.Register(api.NewToolDefinition("add", "adds two numbers", nil),
		func(_ context.Context, args json.RawMessage) (string, error) {
			gotArgs = string(args)
			return "4", nil
		})

	client := &scriptedClient{turns: [][]*wire.ChatChunk{
		toolCallTurn("add", `{"a":2,"b":2}`),
		answerTurn("2+2 is 4"),
	}}
	obs := &recordingObserver{}
	e := New(client, registry, obs, Config{Model: "llama3.1"})

	conv := userConv("What is 2+2?")
	resp, err := e.Send(context.Background(), conv)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.Content != "2+2 is 4" {
		t.Errorf("content = %q", resp.Content)
	}
	if len(client.requests) != 2 {
		t.Fatalf("network calls = %d, want 2", len(client.requests))
	}
	if gotArgs != `{"a":2,"b":2}` {
		t.Errorf("handler args = %q", gotArgs)
	}

	// user, assistant w/ calls, tool reply; final assistant text stays
	// in the response only.
	if conv.Len() != 3 {
		t.Fatalf("conversation = %d messages: %+v", conv.Len(), conv.Messages)
	}
	assistant := conv.Messages[1]
	if assistant.Role != api.RoleAssistant || len(assistant.ToolCalls) != 1 {
		t.Errorf("assistant message = %+v", assistant)
	}
	reply := conv.Messages[2]
	if reply.Role != api.RoleTool || reply.Content != "4" {
		t.Errorf("tool reply = %+v", reply)
	}
	if reply.ToolCallID != assistant.ToolCalls[0].ID {
		t.Errorf("reply call id %q does not match call %q", reply.ToolCallID, assistant.ToolCalls[0].ID)
	}

	if len(obs.toolMsgs) != 1 || obs.toolMsgs[0].Content != "4" {
		t.Errorf("tool message events = %+v", obs.toolMsgs)
	}

	// The resubmission carries the grown conversation.
	if len(client.requests[1].Messages) != 3 {
		t.Errorf("resubmitted messages = %d", len(client.requests[1].Messages))
	}
}

func TestToolContinuationMultipleCalls(t *testing.T) {
	registry := tools.NewRegistry()
	_ = registry.Register(api.NewToolDefinition("weather", "", nil),
		func(context.Context, json.RawMessage) (string, error) { return "sunny", nil })
	_ = registry.Register(api.NewToolDefinition("time", "", nil),
		func(context.Context, json.RawMessage) (string, error) { return "12:00", nil })

	client := &scriptedClient{turns: [][]*wire.ChatChunk{
		{completionChunk("tool_calls",
			api.ToolCall{ID: "c1", Function: api.FunctionCall{Name: "weather"}},
			api.ToolCall{ID: "c2", Function: api.FunctionCall{Name: "time"}},
		)},
		answerTurn("sunny at noon"),
	}}
	e := New(client, registry, nil, Config{Model: "llama3.1"})

	conv := userConv("weather and time?")
	resp, err := e.Send(context.Background(), conv)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.Content != "sunny at noon" {
		t.Errorf("content = %q", resp.Content)
	}
	// One reply per call, in call order.
	if conv.Len() != 4 {
		t.Fatalf("conversation = %d messages", conv.Len())
	}
	if conv.Messages[2].ToolCallID != "c1" || conv.Messages[3].ToolCallID != "c2" {
		t.Errorf("reply order: %q, %q", conv.Messages[2].ToolCallID, conv.Messages[3].ToolCallID)
	}
}

func TestToolContinuationRoundCap(t *testing.T) {
	registry := tools.NewRegistry()
	_ = registry.Register(api.NewToolDefinition("loop", "", nil),
		func(context.Context, json.RawMessage) (string, error) { return "again", nil })

	// The model never stops asking for tools.
	client := &scriptedClient{turns: [][]*wire.ChatChunk{
		toolCallTurn("loop", `{}`),
		toolCallTurn("loop", `{}`),
		toolCallTurn("loop", `{}`),
		toolCallTurn("loop", `{}`),
	}}
	e := New(client, registry, nil, Config{Model: "llama3.1", MaxToolRounds: 2})

	resp, err := e.Send(context.Background(), userConv("go"))
	if !errors.Is(err, ErrTooManyToolRounds) {
		t.Fatalf("err = %v, want ErrTooManyToolRounds", err)
	}
	if resp == nil {
		t.Fatal("response dropped on round cap")
	}
	// Initial call plus two permitted continuation rounds.
	if len(client.requests) != 3 {
		t.Errorf("network calls = %d, want 3", len(client.requests))
	}
}

func TestToolCallsReturnedWhenNoSource(t *testing.T) {
	client := &scriptedClient{turns: [][]*wire.ChatChunk{
		toolCallTurn("add", `{}`),
	}}
	e := New(client, nil, nil, Config{Model: "llama3.1"})

	conv := userConv("go")
	resp, err := e.Send(context.Background(), conv)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("tool calls = %v", resp.ToolCalls)
	}
	if len(client.requests) != 1 {
		t.Errorf("network calls = %d, want 1 without a tool source", len(client.requests))
	}
	if conv.Len() != 1 {
		t.Errorf("conversation grew without execution: %d messages", conv.Len())
	}
}

func TestToolErrorFedBackAsData(t *testing.T) {
	registry := tools.NewRegistry()
	_ = registry.Register(api.NewToolDefinition("flaky", "", nil),
		func(context.Context, json.RawMessage) (string, error) {
			return "", errors.New("backend down")
		})

	client := &scriptedClient{turns: [][]*wire.ChatChunk{
		toolCallTurn("flaky", `{}`),
		answerTurn("the tool failed"),
	}}
	e := New(client, registry, nil, Config{Model: "llama3.1"})

	conv := userConv("go")
	resp, err := e.Send(context.Background(), conv)
	if err != nil {
		t.Fatalf("tool failure escalated to engine error: %v", err)
	}
	if resp.Content != "the tool failed" {
		t.Errorf("content = %q", resp.Content)
	}
	if conv.Messages[2].Content != "ERROR: backend down" {
		t.Errorf("tool reply = %q", conv.Messages[2].Content)
	}
}

func TestCancellationDuringToolRound(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	source := &staticSource{reply: func(call api.ToolCall) api.Message {
		cancel()
		return api.NewToolReply(call, "done anyway")
	}}

	client := &scriptedClient{turns: [][]*wire.ChatChunk{
		toolCallTurn("slow", `{}`),
		answerTurn("never reached"),
	}}
	e := New(client, source, nil, Config{Model: "llama3.1"})

	resp, err := e.Send(ctx, userConv("go"))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.Status != StatusCancelled {
		t.Errorf("status = %q", resp.Status)
	}
	if len(client.requests) != 1 {
		t.Errorf("resubmitted after cancellation: %d calls", len(client.requests))
	}
}

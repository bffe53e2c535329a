package engine

import (
	"context"
	"time"

	"github.com/plauder-dev/plauder/pkg/api"
	"github.com/plauder-dev/plauder/pkg/debug"
	"github.com/plauder-dev/plauder/pkg/observability"
	"github.com/plauder-dev/plauder/pkg/wire"
)

// ChatClient performs backend model turns. *client.Client satisfies it;
// tests substitute scripted fakes.
type ChatClient interface {
	Complete(ctx context.Context, req *wire.ChatRequest) (*wire.ChatChunk, error)
	Stream(ctx context.Context, req *wire.ChatRequest, fn func(*wire.ChatChunk) error) error
}

// ToolSource supplies tool definitions for the request and executes the
// calls the model makes against them. tools.Registry and the MCP
// source both satisfy it.
type ToolSource interface {
	Definitions() []api.ToolDefinition
	Execute(ctx context.Context, calls []api.ToolCall) []api.Message
}

// Engine drives complete conversational turns against one backend.
type Engine struct {
	client   ChatClient
	tools    ToolSource
	observer Observer
	cfg      Config
}

// New creates an engine. tools and observer may be nil; a nil tool
// source disables the continuation loop and a nil observer drops all
// events.
func New(client ChatClient, toolSource ToolSource, observer Observer, cfg Config) *Engine {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Engine{
		client:   client,
		tools:    toolSource,
		observer: observer,
		cfg:      cfg,
	}
}

// Send runs one full conversational turn: submit the conversation,
// accumulate the reply, and if the model calls tools, execute them and
// resubmit until it answers in text. The conversation is extended in
// place with the assistant and tool messages of intermediate rounds.
//
// A cancelled context is not an error: Send returns the partial
// response with StatusCancelled and a nil error. Exceeding the tool
// round cap returns the last response together with
// ErrTooManyToolRounds.
func (e *Engine) Send(ctx context.Context, conv *api.Conversation) (*Response, error) {
	if conv == nil || conv.Len() == 0 {
		return nil, api.NewInvalidArgumentError("conversation", "conversation must contain at least one message")
	}
	if e.cfg.Model == "" {
		return nil, api.NewInvalidArgumentError("model", "model name is required")
	}
	return e.send(ctx, conv, 0)
}

// send performs one network round and hands completed tool-call replies
// to the continuation loop. round counts completed tool rounds.
func (e *Engine) send(ctx context.Context, conv *api.Conversation, round int) (*Response, error) {
	req := wire.EncodeChat(conv, e.encodeParams())
	resp := newResponse(e.cfg.Model)

	mode := "single"
	if e.cfg.Stream {
		mode = "stream"
	}
	start := time.Now()

	debug.Log("engine", "model turn",
		"model", e.cfg.Model, "mode", mode, "round", round, "messages", conv.Len())

	var err error
	if e.cfg.Stream {
		observability.ActiveStreams.Inc()
		err = e.client.Stream(ctx, req, func(chunk *wire.ChatChunk) error {
			e.foldAndNotify(resp, chunk)
			return nil
		})
		observability.ActiveStreams.Dec()
	} else {
		var chunk *wire.ChatChunk
		chunk, err = e.client.Complete(ctx, req)
		if err == nil {
			e.foldAndNotify(resp, chunk)
		}
	}

	observability.TurnDuration.WithLabelValues(mode, e.cfg.Model).Observe(time.Since(start).Seconds())

	if ctx.Err() != nil {
		resp.markCancelled()
		observability.TurnsTotal.WithLabelValues(mode, e.cfg.Model, "cancelled").Inc()
		debug.Log("engine", "turn cancelled", "model", e.cfg.Model, "round", round)
		return resp, nil
	}
	if err != nil {
		observability.TurnsTotal.WithLabelValues(mode, e.cfg.Model, "error").Inc()
		return nil, err
	}

	observability.TurnsTotal.WithLabelValues(mode, e.cfg.Model, "success").Inc()
	if resp.Done {
		observability.TokensTotal.WithLabelValues(e.cfg.Model, "input").Add(float64(resp.Stats.PromptEvalCount))
		observability.TokensTotal.WithLabelValues(e.cfg.Model, "output").Add(float64(resp.Stats.EvalCount))
	}
	resp.markCompleted()

	return e.continueIfNeeded(ctx, conv, resp, round)
}

// foldAndNotify merges one chunk and emits the observer events it
// warrants: stream start on the first chunk, a chunk event per fold
// that added text, and one final chunk event for a silent completion.
func (e *Engine) foldAndNotify(resp *Response, chunk *wire.ChatChunk) {
	resp.fold(chunk)
	observability.ChunksTotal.WithLabelValues(resp.Model).Inc()

	if resp.justBegan {
		e.observer.OnStreamStarted()
	}
	if resp.NewThinking != "" {
		e.observer.OnChunk(resp.NewThinking, true, resp)
	}
	if resp.NewContent != "" {
		e.observer.OnChunk(resp.NewContent, false, resp)
	}
	if resp.justDone && resp.NewContent == "" && resp.NewThinking == "" {
		e.observer.OnChunk("", false, resp)
	}
}

func (e *Engine) encodeParams() wire.EncodeParams {
	var defs []api.ToolDefinition
	if e.tools != nil {
		defs = e.tools.Definitions()
	}
	return wire.EncodeParams{
		Model:       e.cfg.Model,
		Options:     e.cfg.Options,
		Tools:       defs,
		ToolCapable: e.cfg.toolCapable(),
		Stream:      e.cfg.Stream,
		Think:       e.cfg.Think,
		Format:      e.cfg.Format,
		Schema:      e.cfg.Schema,
	}
}

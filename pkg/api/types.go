package api

import (
	"encoding/json"
	"time"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is a single entry in a conversation. Assistant messages may
// carry ToolCalls; tool reply messages reference the originating call
// via ToolCallID and ToolName.
type Message struct {
	Role     Role   `json:"role"`
	Content  string `json:"content"`
	Thinking string `json:"thinking,omitempty"`

	// ToolCalls is set on assistant messages that request tool invocations.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID and ToolName identify the call a tool reply answers.
	ToolCallID string `json:"tool_call_id,omitempty"`
	ToolName   string `json:"tool_name,omitempty"`
}

// ToolCall is a model-issued request to invoke a named capability.
type ToolCall struct {
	ID       string       `json:"id,omitempty"`
	Function FunctionCall `json:"function"`
}

// FunctionCall holds the function name and JSON-encoded arguments of a
// tool call.
type FunctionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ToolErrorPrefix marks a tool reply whose payload is a failure report.
// Tool failures are data fed back to the model, never engine errors.
const ToolErrorPrefix = "ERROR: "

// NewToolReply builds a tool reply message answering the given call.
func NewToolReply(call ToolCall, output string) Message {
	return Message{
		Role:       RoleTool,
		Content:    output,
		ToolCallID: call.ID,
		ToolName:   call.Function.Name,
	}
}

// NewToolErrorReply builds a tool reply carrying a failure as content.
func NewToolErrorReply(call ToolCall, reason string) Message {
	return NewToolReply(call, ToolErrorPrefix+reason)
}

// Conversation is an ordered message sequence forming the model's
// context. Insertion order is significant. The conversation is owned
// by the caller; the engine appends assistant and tool messages as
// turns complete but never reorders or removes entries.
type Conversation struct {
	Messages []Message `json:"messages"`
}

// NewConversation creates a conversation seeded with the given messages.
func NewConversation(msgs ...Message) *Conversation {
	return &Conversation{Messages: msgs}
}

// Append adds messages to the end of the conversation.
func (c *Conversation) Append(msgs ...Message) {
	c.Messages = append(c.Messages, msgs...)
}

// AddSystem appends a system message.
func (c *Conversation) AddSystem(text string) {
	c.Append(Message{Role: RoleSystem, Content: text})
}

// AddUser appends a user message.
func (c *Conversation) AddUser(text string) {
	c.Append(Message{Role: RoleUser, Content: text})
}

// Len returns the number of messages in the conversation.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// ToolDefinition describes a tool offered to the model.
type ToolDefinition struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition holds a function tool's name, description, and
// JSON schema for its parameters.
type FunctionDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// NewToolDefinition builds a function tool definition.
func NewToolDefinition(name, description string, parameters json.RawMessage) ToolDefinition {
	return ToolDefinition{
		Type: "function",
		Function: FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

// Unset is the sentinel for numeric options that have not been
// configured. Options at their sentinel are omitted from the wire
// request rather than sent as defaults.
const Unset = -1

// Options holds generation parameters. Zero values are NOT defaults;
// use DefaultOptions to get a fully-unset Options value.
type Options struct {
	Temperature   float64 `yaml:"temperature"`
	TopP          float64 `yaml:"top_p"`
	TopK          int     `yaml:"top_k"`
	RepeatPenalty float64 `yaml:"repeat_penalty"`
	Seed          int     `yaml:"seed"`
	ContextWindow int     `yaml:"context_window"`
	MaxTokens     int     `yaml:"max_tokens"`
	Stop          string  `yaml:"stop"`
}

// DefaultOptions returns Options with every field at its unset sentinel.
func DefaultOptions() Options {
	return Options{
		Temperature:   Unset,
		TopP:          Unset,
		TopK:          Unset,
		RepeatPenalty: Unset,
		Seed:          Unset,
		ContextWindow: Unset,
		MaxTokens:     Unset,
	}
}

// Stats carries advisory performance counters reported by the backend
// on the completion chunk. All values are pass-through metadata and
// meaningful only once a response is done.
type Stats struct {
	TotalDuration      time.Duration `json:"total_duration"`
	LoadDuration       time.Duration `json:"load_duration"`
	PromptEvalCount    int           `json:"prompt_eval_count"`
	PromptEvalDuration time.Duration `json:"prompt_eval_duration"`
	EvalCount          int           `json:"eval_count"`
	EvalDuration       time.Duration `json:"eval_duration"`
}

// TokensPerSecond returns the output generation rate, or 0 if unknown.
func (s Stats) TokensPerSecond() float64 {
	if s.EvalDuration <= 0 {
		return 0
	}
	return float64(s.EvalCount) / s.EvalDuration.Seconds()
}

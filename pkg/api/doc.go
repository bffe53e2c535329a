// Package api defines the core data model of the plauder chat engine:
// conversations, messages, tool calls, generation options, and the
// typed error taxonomy shared by the transport and engine layers.
//
// A Conversation is owned by the caller and lives for the session. The
// engine only ever appends to it. Messages are immutable once appended,
// with the single exception of the assistant message currently being
// streamed, which is owned by the engine until the turn completes.
package api

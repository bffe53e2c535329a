// Package tools defines the tool execution capability consumed by the
// engine's continuation loop, plus a Registry of named function tools.
//
// The engine sees exactly one interface: a batch Executor that turns a
// slice of tool calls into tool reply messages. Implementations may fan
// out per call internally, but the contract is strict: one reply per
// call, and tool failures are reported as "ERROR: ..." reply content,
// never as engine errors. A round is never resubmitted to the model
// with an unanswered tool call.
package tools

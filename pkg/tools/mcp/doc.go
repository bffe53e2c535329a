// Package mcp connects the chat engine to external MCP (Model Context
// Protocol) servers. It discovers the tools each server offers,
// converts them to the engine's tool definition format, and executes
// tool calls over the session.
//
// The package wraps the official MCP Go SDK
// (github.com/modelcontextprotocol/go-sdk) and implements the
// tools.Executor interface, so MCP tools plug into the tool
// continuation loop alongside locally registered function tools.
package mcp

// Command mcp-test-server runs an MCP server exposing the same tool
// shapes the chat engine exercises: "add" (the tool the mock backend
// calls for) and "reverse". Point a plauder MCP server entry at
// http://localhost:8080/mcp to drive a full discover-and-execute round
// against a real streamable-http transport.
//
// Configuration:
//
//	MCP_PORT - Listen port (default: 8080)
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type addInput struct {
	A int `json:"a" jsonschema_description:"First addend"`
	B int `json:"b" jsonschema_description:"Second addend"`
}

type reverseInput struct {
	Text string `json:"text" jsonschema_description:"Text to reverse"`
}

func newServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "plauder-test-mcp", Version: "v1.0.0"},
		nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add",
		Description: "Adds two integers and returns the sum",
	}, func(_ context.Context, _ *mcp.CallToolRequest, in addInput) (*mcp.CallToolResult, struct{}, error) {
		return textResult(fmt.Sprintf("%d", in.A+in.B)), struct{}{}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reverse",
		Description: "Reverses the provided text",
	}, func(_ context.Context, _ *mcp.CallToolRequest, in reverseInput) (*mcp.CallToolResult, struct{}, error) {
		runes := []rune(in.Text)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return textResult(string(runes)), struct{}{}, nil
	})

	return server
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func main() {
	port := os.Getenv("MCP_PORT")
	if port == "" {
		port = "8080"
	}

	server := newServer()
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("MCP test server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("MCP test server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("MCP test server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

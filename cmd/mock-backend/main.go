// Command mock-backend runs a deterministic chat backend for manual
// testing. It speaks the native chat protocol on POST /api/chat and
// answers based on request content: prompts mentioning "add" trigger a
// tool call round when tools are offered, everything else gets a fixed
// text reply.
//
// Configuration:
//
//	MOCK_PORT - Listen port (default: 11434)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "11434"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", handleChat)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock backend starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock backend failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

// --- Request types ---

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Tools    []any         `json:"tools,omitempty"`
	Stream   bool          `json:"stream"`
	Think    bool          `json:"think,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// --- Response types ---

type chunkMessage struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Thinking  string     `json:"thinking,omitempty"`
	ToolCalls []toolCall `json:"tool_calls,omitempty"`
}

type toolCall struct {
	ID       string   `json:"id,omitempty"`
	Function funcCall `json:"function"`
}

type funcCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

type chatChunk struct {
	Model           string       `json:"model"`
	CreatedAt       string       `json:"created_at"`
	Message         chunkMessage `json:"message"`
	Done            bool         `json:"done"`
	DoneReason      string       `json:"done_reason,omitempty"`
	PromptEvalCount int          `json:"prompt_eval_count,omitempty"`
	EvalCount       int          `json:"eval_count,omitempty"`
	EvalDuration    int64        `json:"eval_duration,omitempty"`
}

// --- Handler ---

func handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request"}`, http.StatusBadRequest)
		return
	}

	model := req.Model
	if model == "" {
		http.Error(w, `{"error":"model is required"}`, http.StatusBadRequest)
		return
	}

	if req.Stream {
		handleStreaming(w, &req)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(classifyAndRespond(&req))
}

// classifyAndRespond picks the scripted reply for a request. A prompt
// mentioning "add" with tools on offer triggers a tool call; a tool
// reply already in the conversation means the round is complete.
func classifyAndRespond(req *chatRequest) chatChunk {
	if hasToolReply(req) {
		return textChunk(req, "The tool says: "+lastToolReply(req))
	}
	if len(req.Tools) > 0 && strings.Contains(strings.ToLower(lastUserMessage(req)), "add") {
		return toolCallChunk(req)
	}
	return textChunk(req, scriptedText(req))
}

func scriptedText(req *chatRequest) string {
	lastMsg := strings.ToLower(lastUserMessage(req))
	if strings.Contains(lastMsg, "count from 1 to 5") {
		return "1, 2, 3, 4, 5"
	}
	return "Hello, nice day!"
}

func textChunk(req *chatRequest, text string) chatChunk {
	return chatChunk{
		Model:           req.Model,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339Nano),
		Message:         chunkMessage{Role: "assistant", Content: text},
		Done:            true,
		DoneReason:      "stop",
		PromptEvalCount: 10,
		EvalCount:       len(strings.Fields(text)),
		EvalDuration:    int64(50 * time.Millisecond),
	}
}

func toolCallChunk(req *chatRequest) chatChunk {
	return chatChunk{
		Model:     req.Model,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Message: chunkMessage{
			Role: "assistant",
			ToolCalls: []toolCall{{
				ID: "call_mock_1",
				Function: funcCall{
					Name:      "add",
					Arguments: json.RawMessage(`{"a":2,"b":2}`),
				},
			}},
		},
		Done:            true,
		DoneReason:      "tool_calls",
		PromptEvalCount: 20,
		EvalCount:       15,
	}
}

// --- Streaming ---

func handleStreaming(w http.ResponseWriter, req *chatRequest) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")

	final := classifyAndRespond(req)

	// Tool call replies stream as a single completion line.
	if len(final.Message.ToolCalls) == 0 {
		if req.Think {
			writeChunk(w, chatChunk{
				Model:     req.Model,
				CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
				Message:   chunkMessage{Role: "assistant", Thinking: "thinking about it... "},
			})
			flusher.Flush()
		}

		text := final.Message.Content
		final.Message.Content = ""
		for _, token := range tokenize(text) {
			writeChunk(w, chatChunk{
				Model:     req.Model,
				CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
				Message:   chunkMessage{Role: "assistant", Content: token},
			})
			flusher.Flush()
		}
	}

	writeChunk(w, final)
	flusher.Flush()
}

func writeChunk(w http.ResponseWriter, chunk chatChunk) {
	data, _ := json.Marshal(chunk)
	fmt.Fprintf(w, "%s\n", data)
}

// tokenize splits text into word-sized stream chunks, keeping spaces
// attached.
func tokenize(text string) []string {
	words := strings.SplitAfter(text, " ")
	out := make([]string, 0, len(words))
	for _, word := range words {
		if word != "" {
			out = append(out, word)
		}
	}
	return out
}

// --- Helpers ---

func lastUserMessage(req *chatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			return req.Messages[i].Content
		}
	}
	return ""
}

func hasToolReply(req *chatRequest) bool {
	for _, msg := range req.Messages {
		if msg.Role == "tool" {
			return true
		}
	}
	return false
}

func lastToolReply(req *chatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "tool" {
			return req.Messages[i].Content
		}
	}
	return ""
}

// Command plauder runs an interactive chat session against a local
// model backend.
//
// Configuration is layered: config file (see -config), then PLAUDER_*
// environment variables. Debug logging is controlled with
// PLAUDER_DEBUG (categories) and PLAUDER_LOG_LEVEL.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/plauder-dev/plauder/pkg/api"
	"github.com/plauder-dev/plauder/pkg/auth"
	"github.com/plauder-dev/plauder/pkg/client"
	"github.com/plauder-dev/plauder/pkg/config"
	"github.com/plauder-dev/plauder/pkg/debug"
	"github.com/plauder-dev/plauder/pkg/engine"
	"github.com/plauder-dev/plauder/pkg/storage"
	"github.com/plauder-dev/plauder/pkg/storage/memory"
	"github.com/plauder-dev/plauder/pkg/storage/postgres"
	"github.com/plauder-dev/plauder/pkg/tools"
	"github.com/plauder-dev/plauder/pkg/tools/mcp"
)

func main() {
	if err := run(); err != nil {
		slog.Error("plauder failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	model := flag.String("model", "", "model name (overrides config)")
	resume := flag.String("resume", "", "conversation ID to resume")
	list := flag.Bool("list", false, "list stored conversations and exit")
	system := flag.String("system", "", "system prompt for new conversations")
	flag.Parse()

	debug.Init("", "")

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *model != "" {
		cfg.Chat.Model = *model
	}

	ctx := context.Background()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if *list {
		return listConversations(ctx, store)
	}

	tokens, err := buildTokenSource(cfg)
	if err != nil {
		return err
	}

	backend := client.New(client.Config{
		BaseURL: cfg.Backend.URL,
		Tokens:  tokens,
		Timeout: cfg.Backend.Timeout,
	})
	defer backend.Close()

	toolSource, closeTools, err := buildToolSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeTools()

	if cfg.Observability.Metrics.Enabled {
		startMetricsServer(cfg.Observability.Metrics)
	}

	eng := engine.New(backend, toolSource, &consoleObserver{}, engine.Config{
		Model:         cfg.Chat.Model,
		Options:       cfg.Chat.Options,
		Stream:        cfg.Chat.Stream,
		Think:         cfg.Chat.Think,
		Format:        cfg.Chat.Format,
		Schema:        cfg.Chat.Schema,
		MaxToolRounds: cfg.Chat.MaxToolRounds,
	})

	rec, err := openConversation(ctx, store, *resume, *system, cfg.Chat.Model)
	if err != nil {
		return err
	}

	fmt.Printf("plauder: %s against %s (conversation %s)\n",
		cfg.Chat.Model, cfg.Backend.URL, rec.ID)
	fmt.Println(`type a message, "/quit" to exit; Ctrl-C interrupts the current turn`)

	return repl(ctx, eng, store, rec)
}

// repl reads user lines and runs turns until EOF or /quit. SIGINT
// cancels the in-flight turn only.
func repl(ctx context.Context, eng *engine.Engine, store storage.ConversationStore, rec *storage.Record) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)
	defer signal.Stop(sigCh)

	conv := api.NewConversation(rec.Messages...)
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return nil
		}

		conv.AddUser(line)
		if rec.Title == "" {
			rec.Title = deriveTitle(line)
		}

		turnCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-done:
			}
		}()

		resp, err := eng.Send(turnCtx, conv)
		close(done)
		cancel()

		switch {
		case err != nil:
			fmt.Fprintf(os.Stderr, "\nerror: %v\n", err)
		case resp.Status == engine.StatusCancelled:
			fmt.Println("\n[interrupted]")
			if resp.Content != "" {
				conv.Append(api.Message{Role: api.RoleAssistant, Content: resp.Content, Thinking: resp.Thinking})
			}
		default:
			fmt.Println()
			conv.Append(api.Message{Role: api.RoleAssistant, Content: resp.Content, Thinking: resp.Thinking})
			if rate := resp.Stats.TokensPerSecond(); rate > 0 {
				debug.Log("cli", "turn stats",
					"tokens", resp.Stats.EvalCount, "tokens_per_second", fmt.Sprintf("%.1f", rate))
			}
		}

		rec.Messages = conv.Messages
		if err := store.Save(ctx, rec); err != nil {
			slog.Warn("saving conversation failed", "id", rec.ID, "error", err)
		}
	}
}

// consoleObserver renders stream events to the terminal. Thinking text
// goes to stderr so the answer stays pipeable.
type consoleObserver struct{}

func (consoleObserver) OnStreamStarted() {}

func (consoleObserver) OnChunk(text string, thinking bool, _ *engine.Response) {
	if thinking {
		fmt.Fprint(os.Stderr, text)
		return
	}
	fmt.Print(text)
}

func (consoleObserver) OnToolMessage(msg api.Message) {
	fmt.Fprintf(os.Stderr, "[tool %s] %s\n", msg.ToolName, msg.Content)
}

func buildTokenSource(cfg *config.Config) (auth.TokenSource, error) {
	if cfg.Backend.JWT.Secret != "" {
		return auth.NewJWTSigner(auth.JWTConfig{
			Secret:   cfg.Backend.JWT.Secret,
			Issuer:   cfg.Backend.JWT.Issuer,
			Audience: cfg.Backend.JWT.Audience,
			Subject:  cfg.Backend.JWT.Subject,
			TTL:      cfg.Backend.JWT.TTL,
		})
	}
	if cfg.Backend.Token != "" {
		return auth.StaticTokenSource(cfg.Backend.Token), nil
	}
	return nil, nil
}

func openStore(ctx context.Context, cfg *config.Config) (storage.ConversationStore, error) {
	switch cfg.Storage.Type {
	case "postgres":
		store, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return store, nil
	default:
		return memory.New(cfg.Storage.MaxSize), nil
	}
}

// buildToolSource assembles the local registry and any configured MCP
// servers into one source. A failing MCP server is logged and skipped
// rather than blocking startup.
func buildToolSource(ctx context.Context, cfg *config.Config) (engine.ToolSource, func(), error) {
	registry := tools.NewRegistry()
	if err := registerBuiltins(registry); err != nil {
		return nil, nil, err
	}

	var clients []*mcp.Client
	servers := make(map[string]*mcp.Client)
	for _, serverCfg := range cfg.MCP.Servers {
		mc := mcp.NewClient(serverCfg)
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := mc.Connect(connectCtx)
		cancel()
		if err != nil {
			slog.Warn("MCP server unavailable", "server", serverCfg.Name, "error", err)
			continue
		}
		servers[serverCfg.Name] = mc
		clients = append(clients, mc)
	}

	closeAll := func() {
		for _, mc := range clients {
			_ = mc.Close()
		}
	}

	if len(servers) == 0 {
		return registry, closeAll, nil
	}
	return tools.NewMulti(registry, mcp.NewSource(servers)), closeAll, nil
}

// registerBuiltins adds the tools every session gets.
func registerBuiltins(registry *tools.Registry) error {
	return registry.Register(
		api.NewToolDefinition("current_time", "Returns the current UTC time in RFC 3339 format",
			json.RawMessage(`{"type":"object","properties":{}}`)),
		func(context.Context, json.RawMessage) (string, error) {
			return time.Now().UTC().Format(time.RFC3339), nil
		},
	)
}

func openConversation(ctx context.Context, store storage.ConversationStore, resume, system, model string) (*storage.Record, error) {
	if resume != "" {
		rec, err := store.Get(ctx, resume)
		if err != nil {
			return nil, fmt.Errorf("resuming %s: %w", resume, err)
		}
		return rec, nil
	}

	rec := &storage.Record{
		ID:    api.NewConversationID(),
		Model: model,
	}
	if system != "" {
		rec.Messages = []api.Message{{Role: api.RoleSystem, Content: system}}
	}
	return rec, nil
}

func listConversations(ctx context.Context, store storage.ConversationStore) error {
	recs, err := store.List(ctx, storage.ListOptions{Limit: 50})
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("no stored conversations")
		return nil
	}
	for _, rec := range recs {
		fmt.Printf("%s  %s  %-30q  %d messages\n",
			rec.ID, rec.UpdatedAt.Format("2006-01-02 15:04"), rec.Title, len(rec.Messages))
	}
	return nil
}

func startMetricsServer(cfg config.MetricsConfig) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())
	go func() {
		slog.Info("metrics endpoint", "addr", cfg.Addr, "path", cfg.Path)
		if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
			slog.Warn("metrics server failed", "error", err)
		}
	}()
}

func deriveTitle(line string) string {
	const maxTitle = 60
	runes := []rune(line)
	if len(runes) <= maxTitle {
		return line
	}
	return string(runes[:maxTitle]) + "…"
}

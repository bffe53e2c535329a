// Package observability provides Prometheus metrics for the plauder
// chat engine.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// TurnsTotal counts model turns by mode (streaming/single-shot),
	// model, and outcome (success/error/cancelled).
	TurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plauder_turns_total",
			Help: "Model turns",
		},
		[]string{"mode", "model", "status"},
	)

	// TurnDuration records per-turn backend latency in seconds.
	TurnDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plauder_turn_duration_seconds",
			Help:    "Turn duration",
			Buckets: LLMBuckets,
		},
		[]string{"mode", "model"},
	)

	// ActiveStreams tracks the number of in-flight streaming turns.
	ActiveStreams = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "plauder_active_streams",
			Help: "Active streaming turns",
		},
	)

	// ChunksTotal counts folded stream chunks by model.
	ChunksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plauder_chunks_total",
			Help: "Folded stream chunks",
		},
		[]string{"model"},
	)

	// TokensTotal counts tokens reported by the backend by direction
	// (input/output).
	TokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plauder_tokens_total",
			Help: "Token count",
		},
		[]string{"model", "direction"},
	)

	// ToolExecutionsTotal counts tool executions by name and outcome.
	ToolExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plauder_tool_executions_total",
			Help: "Tool executions",
		},
		[]string{"tool_name", "status"},
	)

	// ToolRoundsTotal counts completed tool continuation rounds by model.
	ToolRoundsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plauder_tool_rounds_total",
			Help: "Tool continuation rounds",
		},
		[]string{"model"},
	)
)

func init() {
	prometheus.MustRegister(
		TurnsTotal,
		TurnDuration,
		ActiveStreams,
		ChunksTotal,
		TokensTotal,
		ToolExecutionsTotal,
		ToolRoundsTotal,
	)
}

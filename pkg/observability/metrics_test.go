package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// TestMetricsRegistered verifies that all metrics are registered in the
// default registry and become visible after a first observation.
func TestMetricsRegistered(t *testing.T) {
	// Seed every metric so it appears in the gather output. Counters
	// and histograms are invisible until first observed.
	TurnsTotal.WithLabelValues("streaming", "test", "success").Inc()
	TurnDuration.WithLabelValues("streaming", "test").Observe(0.1)
	ActiveStreams.Set(0)
	ChunksTotal.WithLabelValues("test").Inc()
	TokensTotal.WithLabelValues("test", "input").Add(10)
	ToolExecutionsTotal.WithLabelValues("test_tool", "success").Inc()
	ToolRoundsTotal.WithLabelValues("test").Inc()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("unexpected gather error: %v", err)
	}

	expected := map[string]bool{
		"plauder_turns_total":           false,
		"plauder_turn_duration_seconds": false,
		"plauder_active_streams":        false,
		"plauder_chunks_total":          false,
		"plauder_tokens_total":          false,
		"plauder_tool_executions_total": false,
		"plauder_tool_rounds_total":     false,
	}

	for _, mf := range families {
		if _, ok := expected[mf.GetName()]; ok {
			expected[mf.GetName()] = true
		}
	}

	for name, seen := range expected {
		if !seen {
			t.Errorf("metric %s not registered", name)
		}
	}
}

// TestTokenCounterAccumulates checks counter semantics on the token metric.
func TestTokenCounterAccumulates(t *testing.T) {
	c := TokensTotal.WithLabelValues("accumulate-model", "output")
	c.Add(5)
	c.Add(7)

	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := m.GetCounter().GetValue(); got != 12 {
		t.Errorf("counter = %v, want 12", got)
	}
}

package debug

import (
	"log/slog"
	"testing"
)

func TestParseCategories(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]bool
	}{
		{"empty", "", map[string]bool{}},
		{"single", "client", map[string]bool{"client": true}},
		{"multiple", "client,engine", map[string]bool{"client": true, "engine": true}},
		{"all", "all", map[string]bool{"all": true}},
		{"with spaces", " client , engine ", map[string]bool{"client": true, "engine": true}},
		{"uppercase normalized", "CLIENT,Engine", map[string]bool{"client": true, "engine": true}},
		{"empty segments", "client,,engine", map[string]bool{"client": true, "engine": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCategories(tt.input)
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("got[%q] = %v, want %v", k, got[k], v)
				}
			}
			if len(got) != len(tt.want) {
				t.Errorf("len(got) = %d, want %d", len(got), len(tt.want))
			}
		})
	}
}

func TestEnabled(t *testing.T) {
	orig := categories
	defer func() { categories = orig }()

	categories = parseCategories("client,engine")

	if !Enabled("client") {
		t.Error("client should be enabled")
	}
	if !Enabled("engine") {
		t.Error("engine should be enabled")
	}
	if Enabled("mcp") {
		t.Error("mcp should not be enabled")
	}
}

func TestEnabledAll(t *testing.T) {
	orig := categories
	defer func() { categories = orig }()

	categories = parseCategories("all")
	if !Enabled("anything") {
		t.Error("all should enable every category")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"TRACE", LevelTrace},
		{"trace", LevelTrace},
		{"DEBUG", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

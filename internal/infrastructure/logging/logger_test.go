package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/nerrad567/gray-data-core/internal/infrastructure/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LoggingConfig
	}{
		{
			name: "json to stdout",
			cfg:  config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
		},
		{
			name: "text to stderr",
			cfg:  config.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"},
		},
		{
			name: "unknown format falls back to json",
			cfg:  config.LoggingConfig{Level: "info", Format: "xml", Output: "stdout"},
		},
		{
			name: "empty config",
			cfg:  config.LoggingConfig{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if logger := New(tt.cfg, "0.1.0"); logger == nil {
				t.Fatal("expected non-nil logger")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"ERROR", slog.LevelError},
	}

	for _, tt := range tests {
		name := tt.input
		if name == "" {
			name = "empty"
		}
		t.Run(name, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	child := logger.With("component", "auditlog")
	if child == logger {
		t.Fatal("With() should return a new logger, not the receiver")
	}

	child.Info("rotation complete", "generation", 1)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if entry["component"] != "auditlog" {
		t.Errorf("component = %v, want auditlog", entry["component"])
	}
	if entry["generation"] != float64(1) {
		t.Errorf("generation = %v, want 1", entry["generation"])
	}
}

func TestDefault(t *testing.T) {
	if logger := Default(); logger == nil {
		t.Fatal("expected non-nil default logger")
	}
}

func TestLogger_DefaultFields(t *testing.T) {
	var buf bytes.Buffer

	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}).
		WithAttrs([]slog.Attr{
			slog.String("service", "graydata"),
			slog.String("version", "0.1.0"),
		})

	logger := &Logger{Logger: slog.New(handler)}
	logger.Info("database connected", "driver", "sqlite")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if entry["service"] != "graydata" {
		t.Errorf("service = %v, want graydata", entry["service"])
	}
	if entry["version"] != "0.1.0" {
		t.Errorf("version = %v, want 0.1.0", entry["version"])
	}
	if entry["msg"] != "database connected" {
		t.Errorf("msg = %v, want 'database connected'", entry["msg"])
	}
	if entry["driver"] != "sqlite" {
		t.Errorf("driver = %v, want sqlite", entry["driver"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{Logger: slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))}

	logger.Debug("operation started")
	logger.Info("operation complete")
	if buf.Len() != 0 {
		t.Errorf("debug/info should be filtered at warn level, got %q", buf.String())
	}

	logger.Warn("audit record failed")
	if buf.Len() == 0 {
		t.Error("warn should pass the warn-level filter")
	}
}

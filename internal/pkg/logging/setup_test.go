package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/akazantsev/surebet/internal/pkg/config"
)

func TestSetupLogger_FileSinkFanOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scanner.log")

	logger, err := SetupLogger(&config.LoggingConfig{
		Level:  "info",
		Format: "text",
		File:   path,
	}, "scanner")
	if err != nil {
		t.Fatalf("SetupLogger() error = %v", err)
	}

	logger.Info("cycle finished", "quotes", 42)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("file sink is not JSON: %v (content: %s)", err, data)
	}
	if record["msg"] != "cycle finished" {
		t.Errorf("msg = %v, want %q", record["msg"], "cycle finished")
	}
	if record["service"] != "scanner" {
		t.Errorf("service = %v, want %q", record["service"], "scanner")
	}
	if record["quotes"] != float64(42) {
		t.Errorf("quotes = %v, want 42", record["quotes"])
	}
}

func TestSetupLogger_DebugBelowLevelIsDropped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scanner.log")

	logger, err := SetupLogger(&config.LoggingConfig{
		Level: "warn",
		File:  path,
	}, "scanner")
	if err != nil {
		t.Fatalf("SetupLogger() error = %v", err)
	}

	logger.Debug("noise")
	logger.Info("still noise")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty file below warn level, got: %s", data)
	}
}

func TestSetupLogger_BadFilePath(t *testing.T) {
	_, err := SetupLogger(&config.LoggingConfig{
		File: filepath.Join(t.TempDir(), "missing", "dir", "scanner.log"),
	}, "scanner")
	if err == nil {
		t.Fatal("expected error for unwritable log file path")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"CHAINBURST_TIE_BREAK", "CHAINBURST_MAX_ITEMS", "CHAINBURST_HISTORY",
		"CHAINBURST_SQLITE_PATH", "CHAINBURST_PORT", "CHAINBURST_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.TieBreak != "last" {
		t.Errorf("TieBreak = %q, want last", cfg.TieBreak)
	}
	if cfg.MaxItems != 2000 {
		t.Errorf("MaxItems = %d, want 2000", cfg.MaxItems)
	}
	if cfg.History != HistorySQLite {
		t.Errorf("History = %q, want %q", cfg.History, HistorySQLite)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want INFO", cfg.LogLevel)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CHAINBURST_TIE_BREAK", "first")
	t.Setenv("CHAINBURST_MAX_ITEMS", "50")
	t.Setenv("CHAINBURST_HISTORY", "SurrealDB")
	t.Setenv("CHAINBURST_LOG_LEVEL", "debug")

	cfg := Load()
	if cfg.TieBreak != "first" {
		t.Errorf("TieBreak = %q, want first", cfg.TieBreak)
	}
	if cfg.MaxItems != 50 {
		t.Errorf("MaxItems = %d, want 50", cfg.MaxItems)
	}
	if cfg.History != HistorySurrealDB {
		t.Errorf("History = %q, want %q", cfg.History, HistorySurrealDB)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want DEBUG", cfg.LogLevel)
	}
}

func TestLoad_BadMaxItemsFallsBack(t *testing.T) {
	t.Setenv("CHAINBURST_MAX_ITEMS", "lots")
	if got := Load().MaxItems; got != 2000 {
		t.Errorf("MaxItems = %d, want 2000", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"Warning", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("solved", "n", 3, "energy", 36)

	if strings.Contains(stderr.String(), "hidden") {
		t.Errorf("debug record should be filtered at INFO")
	}
	if !strings.Contains(stderr.String(), "msg=solved") {
		t.Errorf("stderr missing text record: %q", stderr.String())
	}

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(file.Bytes()), &rec); err != nil {
		t.Fatalf("file record is not JSON: %v (%q)", err, file.String())
	}
	if rec["msg"] != "solved" || rec["energy"] != float64(36) {
		t.Errorf("unexpected JSON record: %v", rec)
	}
}

func TestSetupLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chainburst.log")
	logger, cleanup := SetupLogger(path, slog.LevelInfo)
	logger.Info("hello")
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup() error = %v", err)
	}

	logger, cleanup = SetupLogger(filepath.Join(t.TempDir(), "missing", "dir", "x.log"), slog.LevelInfo)
	if logger == nil {
		t.Fatal("SetupLogger() should fall back to stderr")
	}
	if err := cleanup(); err != nil {
		t.Errorf("fallback cleanup() error = %v", err)
	}
}

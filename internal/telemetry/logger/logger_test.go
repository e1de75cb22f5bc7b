package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newJSON(t *testing.T, level string) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := New(Config{Level: level, Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l, &buf
}

func TestNew(t *testing.T) {
	for _, cfg := range []Config{
		DefaultConfig(),
		{Level: "debug", Format: "text"},
		{Level: "info", Format: "json"},
	} {
		l, err := New(cfg)
		if err != nil {
			t.Fatalf("New(%+v) error = %v", cfg, err)
		}
		if l == nil {
			t.Fatal("New() returned nil logger")
		}
	}
}

func TestLogger_Levels(t *testing.T) {
	l, buf := newJSON(t, "debug")

	tests := []struct {
		level   string
		logFunc func(string, ...any)
	}{
		{"DEBUG", l.Debug},
		{"INFO", l.Info},
		{"WARN", l.Warn},
		{"ERROR", l.Error},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.logFunc("stage reached", "command", "swap")

			var logEntry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				t.Fatalf("Failed to parse JSON log: %v", err)
			}
			if logEntry["level"] != tt.level {
				t.Errorf("level = %v, want %s", logEntry["level"], tt.level)
			}
			if logEntry["command"] != "swap" {
				t.Errorf("command = %v, want swap", logEntry["command"])
			}
		})
	}
}

func TestLogger_With(t *testing.T) {
	l, buf := newJSON(t, "info")

	l.With("cluster", "devnet").Info("cluster resolved")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if logEntry["cluster"] != "devnet" {
		t.Errorf("cluster = %v, want devnet", logEntry["cluster"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newJSON(t, "warn")

	l.Debug("debug message")
	l.Info("info message")
	if buf.Len() > 0 {
		t.Error("Debug/Info messages should be filtered when level is warn")
	}

	l.Warn("warn message")
	if buf.Len() == 0 {
		t.Error("Warn message should be logged")
	}
}

func TestLogger_IndependentLevels(t *testing.T) {
	quiet, quietBuf := newJSON(t, "error")
	loud, loudBuf := newJSON(t, "debug")

	quiet.Info("filtered")
	loud.Debug("kept")

	if quietBuf.Len() > 0 {
		t.Error("info should be filtered at error level")
	}
	if loudBuf.Len() == 0 {
		t.Error("a second logger must not change the first one's level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"DEBUG", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"", slog.LevelWarn, false},
		{"ERROR", slog.LevelError, false},
		{"verbose", slog.LevelWarn, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	for _, cfg := range []Config{
		{Level: "loud", Format: FormatText},
		{Level: "info", Format: "xml"},
	} {
		if _, err := New(cfg); err == nil {
			t.Errorf("New(%+v) should fail", cfg)
		}
	}
}

func TestDefault(t *testing.T) {
	if Default() == nil {
		t.Fatal("Default() returned nil")
	}
}

func TestLogger_WithContext(t *testing.T) {
	l, buf := newJSON(t, "info")
	l.WithContext(context.Background()).Info("test message")
	if buf.Len() == 0 {
		t.Error("Expected log output")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "warn" {
		t.Errorf("DefaultConfig().Level = %q, want %q", cfg.Level, "warn")
	}
	if cfg.Format != "text" {
		t.Errorf("DefaultConfig().Format = %q, want %q", cfg.Format, "text")
	}
	if cfg.Output == nil {
		t.Error("DefaultConfig().Output should not be nil")
	}
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "text", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("cluster resolved", "cluster", "testnet")

	output := buf.String()
	if !strings.Contains(output, "cluster resolved") {
		t.Errorf("Text output should contain message, got: %s", output)
	}
	if !strings.Contains(output, "cluster=testnet") {
		t.Errorf("Text output should contain cluster=testnet, got: %s", output)
	}
}

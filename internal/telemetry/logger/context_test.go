package logger

import (
	"context"
	"encoding/json"
	"testing"
)

func TestWithLogger_FromContext(t *testing.T) {
	l, buf := newJSON(t, "info")

	ctx := WithLogger(context.Background(), l)
	FromContext(ctx).Info("test message")

	if buf.Len() == 0 {
		t.Error("Logger from context should produce output")
	}
}

func TestFromContext_Default(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Error("FromContext should return default logger, got nil")
	}
}

func TestRequestID(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("RequestIDFromContext() = %q, want empty string", got)
	}

	ctx := WithRequestID(context.Background(), "01J9Z3Q7ZK4V8R2M5N6P7Q8R9S")
	if got := RequestIDFromContext(ctx); got != "01J9Z3Q7ZK4V8R2M5N6P7Q8R9S" {
		t.Errorf("RequestIDFromContext() = %q", got)
	}
}

func TestL_WithRequestID(t *testing.T) {
	l, buf := newJSON(t, "info")

	ctx := WithLogger(context.Background(), l)
	ctx = WithRequestID(ctx, "req-12345")
	L(ctx).Info("test message")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if logEntry["request_id"] != "req-12345" {
		t.Errorf("Expected request_id='req-12345', got %v", logEntry["request_id"])
	}
}

func TestL_WithoutRequestID(t *testing.T) {
	l, buf := newJSON(t, "info")

	L(WithLogger(context.Background(), l)).Info("test message")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if _, ok := logEntry["request_id"]; ok {
		t.Error("request_id should be absent")
	}
}

func TestL_WithCommand(t *testing.T) {
	l, buf := newJSON(t, "info")

	ctx := WithCommand(WithRequestID(WithLogger(context.Background(), l), "req-1"), "swap")
	if CommandFromContext(ctx) != "swap" {
		t.Errorf("CommandFromContext() = %q", CommandFromContext(ctx))
	}
	L(ctx).Info("stage reached")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if logEntry["command"] != "swap" || logEntry["request_id"] != "req-1" {
		t.Errorf("entry = %v", logEntry)
	}
	if CommandFromContext(context.Background()) != "" {
		t.Error("command should be empty outside a command")
	}
}

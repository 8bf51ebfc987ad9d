package types

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req_123")
	if got := GetRequestID(ctx); got != "req_123" {
		t.Errorf("GetRequestID() = %q, want req_123", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() on empty context = %q, want empty", got)
	}
}

func TestClientIPRoundTrip(t *testing.T) {
	ctx := WithClientIP(context.Background(), "203.0.113.9")
	if got := GetClientIP(ctx); got != "203.0.113.9" {
		t.Errorf("GetClientIP() = %q", got)
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	fallback := slog.Default()
	scoped := slog.New(slog.NewTextHandler(&buf, nil))

	if LoggerFromContext(context.Background(), fallback) != fallback {
		t.Error("expected fallback logger when none is stored")
	}

	ctx := WithLogger(context.Background(), scoped)
	LoggerFromContext(ctx, fallback).Info("hello")
	if buf.Len() == 0 {
		t.Error("expected the scoped logger to be returned")
	}
}

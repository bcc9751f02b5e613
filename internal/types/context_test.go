package types

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestWithRequestID_GetRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-abc-123")
	if got := GetRequestID(ctx); got != "req-abc-123" {
		t.Errorf("GetRequestID() = %q, want %q", got, "req-abc-123")
	}

	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() on empty context = %q, want empty", got)
	}
}

func TestWithLogger_LoggerFromContext(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := LoggerFromContext(context.Background(), fallback); got != fallback {
		t.Error("LoggerFromContext() on empty context should return the fallback")
	}

	var buf bytes.Buffer
	scoped := slog.New(slog.NewTextHandler(&buf, nil)).With("request_id", "req-9")
	ctx := WithLogger(context.Background(), scoped)
	LoggerFromContext(ctx, fallback).Info("hello")

	if !strings.Contains(buf.String(), "request_id=req-9") {
		t.Errorf("log output = %q, want request_id attribute", buf.String())
	}
}

func TestContextValues_DoNotInterfere(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithLogger(ctx, slog.Default())
	// A plain string key must not collide with the private key type.
	ctx = context.WithValue(ctx, "request_id", "shadow") //nolint:staticcheck

	if got := GetRequestID(ctx); got != "req-1" {
		t.Errorf("GetRequestID() = %q, want %q", got, "req-1")
	}
}

func TestRiskLevel_RaisesAlert(t *testing.T) {
	tests := map[RiskLevel]bool{
		RiskLevelLow:    false,
		RiskLevelMedium: true,
		RiskLevelHigh:   true,
	}
	for level, want := range tests {
		if got := level.RaisesAlert(); got != want {
			t.Errorf("%s.RaisesAlert() = %v, want %v", level, got, want)
		}
	}
}

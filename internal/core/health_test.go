package core

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func runHealth(t *testing.T, probes ...HealthProbe) (*httptest.ResponseRecorder, healthResponse) {
	t.Helper()
	srv := newTestServer(t)
	srv.HealthProbes = probes

	rec := httptest.NewRecorder()
	srv.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid health body: %v", err)
	}
	return rec, resp
}

func okProbe(name string) HealthProbe {
	return ProbeFunc{ProbeName: name, Fn: func(context.Context) error { return nil }}
}

func TestHandleHealth_NoProbes(t *testing.T) {
	rec, resp := runHealth(t)
	if rec.Code != http.StatusOK || resp.Status != "healthy" || resp.Components != nil {
		t.Fatalf("unexpected response %d %+v", rec.Code, resp)
	}
}

func TestHandleHealth_AllHealthy(t *testing.T) {
	rec, resp := runHealth(t, okProbe("database"), okProbe("weather_provider"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp.Components["database"].Status != "healthy" || resp.Components["weather_provider"].Status != "healthy" {
		t.Errorf("unexpected components %+v", resp.Components)
	}
}

func TestHandleHealth_FailingProbe(t *testing.T) {
	failing := ProbeFunc{ProbeName: "database", Fn: func(context.Context) error {
		return errors.New("connection refused")
	}}

	rec, resp := runHealth(t, failing, okProbe("other"))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("expected unhealthy, got %s", resp.Status)
	}
	if got := resp.Components["database"]; got.Status != "unhealthy" || got.Message != "connection refused" {
		t.Errorf("unexpected database component %+v", got)
	}
	if resp.Components["other"].Status != "healthy" {
		t.Errorf("other probe should be healthy")
	}
}

func TestHandleHealth_PanickingProbe(t *testing.T) {
	panicking := ProbeFunc{ProbeName: "database", Fn: func(context.Context) error { panic("nil pool") }}

	rec, resp := runHealth(t, panicking)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if resp.Components["database"].Message != "probe panicked: nil pool" {
		t.Errorf("unexpected message %q", resp.Components["database"].Message)
	}
}

func TestHandleHealth_Timeout(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the health deadline")
	}
	slow := ProbeFunc{ProbeName: "database", Fn: func(ctx context.Context) error {
		select {
		case <-time.After(10 * time.Second):
			return nil
		case <-ctx.Done():
			time.Sleep(100 * time.Millisecond)
			return ctx.Err()
		}
	}}

	rec, resp := runHealth(t, slow)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if resp.Components["database"].Message != "health check timed out" {
		t.Errorf("unexpected message %q", resp.Components["database"].Message)
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"disasterwatch/internal/core"
	"disasterwatch/internal/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// serve routes req through a chi router built by register.
func serve(t *testing.T, register func(chi.Router), method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Use(core.RequestIDMiddleware)
	r.Route("/api", register)

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, rd))
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) core.ErrorDetail {
	t.Helper()
	var env core.APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error
}

type memAlertRepo struct {
	alerts   []*types.Alert
	err      error
	gotLimit int
}

func (m *memAlertRepo) Create(_ context.Context, a *types.Alert) error {
	m.alerts = append(m.alerts, a)
	return m.err
}

func (m *memAlertRepo) ListActive(_ context.Context, limit int) ([]*types.Alert, error) {
	m.gotLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.alerts, nil
}

type memStatusRepo struct {
	mu       sync.Mutex
	checks   []*types.StatusCheck
	err      error
	gotLimit int
}

func (m *memStatusRepo) Create(_ context.Context, s *types.StatusCheck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.checks = append(m.checks, s)
	return nil
}

func (m *memStatusRepo) List(_ context.Context, limit int) ([]*types.StatusCheck, error) {
	m.gotLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.checks, nil
}

var dbErr = types.NewAppError(types.ErrCodeInternalDB, "failed to list records", nil)

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equalf(t, want, rec.Code, "body: %s", rec.Body.String())
}

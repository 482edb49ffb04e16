package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/tickfewer/internal/ticktick/fake"
	"github.com/teemow/tickfewer/internal/unified/unifiedtest"
)

func newTestContext(t *testing.T, initialize bool) *ServerContext {
	t.Helper()
	b := fake.New()
	api := unifiedtest.New(b)
	sc := NewServerContext(context.Background(), api, WithReadOnly(false))
	if initialize {
		require.NoError(t, sc.Initialize(context.Background()))
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestLivenessAlwaysOK(t *testing.T) {
	h := NewHealthChecker(newTestContext(t, false))
	h.SetReady(false)

	rec, body := get(t, h.LivenessHandler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		initialize bool
		notReady   bool
		shutdown   bool
		wantCode   int
		wantChecks map[string]any
	}{
		{
			name:       "ready",
			initialize: true,
			wantCode:   http.StatusOK,
			wantChecks: map[string]any{"ready": "ok", "upstreams": "ok", "shutdown": "ok"},
		},
		{
			name:       "api not initialized",
			wantCode:   http.StatusServiceUnavailable,
			wantChecks: map[string]any{"ready": "ok", "upstreams": "uninitialized", "shutdown": "ok"},
		},
		{
			name:       "marked not ready",
			initialize: true,
			notReady:   true,
			wantCode:   http.StatusServiceUnavailable,
			wantChecks: map[string]any{"ready": "not ready", "upstreams": "ok", "shutdown": "ok"},
		},
		{
			name:       "shutting down",
			initialize: true,
			shutdown:   true,
			wantCode:   http.StatusServiceUnavailable,
			wantChecks: map[string]any{"ready": "ok", "upstreams": "closed", "shutdown": "shutting down"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newTestContext(t, tt.initialize)
			h := NewHealthChecker(sc)
			if tt.notReady {
				h.SetReady(false)
			}
			if tt.shutdown {
				require.NoError(t, sc.Shutdown())
			}

			rec, body := get(t, h.ReadinessHandler(), "/readyz")
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantChecks, body["checks"])
		})
	}
}

func TestReadinessWithoutServerContext(t *testing.T) {
	h := NewHealthChecker(nil)

	rec, body := get(t, h.ReadinessHandler(), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, body["checks"], "upstreams")
}

func TestDetailedHealth(t *testing.T) {
	sc := newTestContext(t, true)
	h := NewHealthChecker(sc)

	rec, body := get(t, h.DetailedHealthHandler(), "/healthz/detailed")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ready", body["api"])
	assert.Equal(t, true, body["inbox_known"])
	assert.Equal(t, false, body["read_only"])
	assert.NotEmpty(t, body["uptime"])

	require.NoError(t, sc.Shutdown())
	rec, body = get(t, h.DetailedHealthHandler(), "/healthz/detailed")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "closed", body["api"])
}

func TestRegisterHealthEndpoints(t *testing.T) {
	h := NewHealthChecker(newTestContext(t, true))
	mux := http.NewServeMux()
	h.RegisterHealthEndpoints(mux)

	for _, path := range []string{"/healthz", "/readyz", "/healthz/detailed"} {
		rec, _ := get(t, mux, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestSetReady(t *testing.T) {
	h := NewHealthChecker(nil)
	assert.True(t, h.IsReady())

	h.SetReady(false)
	assert.False(t, h.IsReady())
	rec, _ := get(t, h.ReadinessHandler(), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

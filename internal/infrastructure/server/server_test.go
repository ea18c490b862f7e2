package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ari-dashboard/backend/internal/infrastructure/config"
	"github.com/ari-dashboard/backend/internal/infrastructure/logging"
)

const briefingYAML = `name: briefing
displayName: Morning Briefing
isDefault: true
widgets:
  - type: weather
    title: Weather
    data:
      location: Austin
      zipCode: "78701"
  - type: text
    title: Agenda
    data:
      content: "Standup at 9"
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	presetsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(presetsDir, "briefing.yaml"), []byte(briefingYAML), 0o644))

	cfg := config.Default()
	cfg.Storage.DataDir = t.TempDir()
	cfg.Storage.PresetsDir = presetsDir
	cfg.RateLimit.Enabled = false
	return cfg
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func widgetCount(t *testing.T, h http.Handler) int {
	t.Helper()
	w := get(t, h, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Widgets int `json:"widgets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Widgets
}

func TestNewServerSeedsPresets(t *testing.T) {
	cfg := testConfig(t)

	srv, err := NewServer(cfg, WithLogger(logging.NewNop()))
	require.NoError(t, err)
	defer srv.Close()

	assert.Equal(t, 1, widgetCount(t, srv.Handler()))

	w := get(t, srv.Handler(), "/api/presets/default")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"briefing"`)
}

func TestActivateDefaultOnStart(t *testing.T) {
	cfg := testConfig(t)
	cfg.Dashboard.ActivateDefaultOnStart = true

	srv, err := NewServer(cfg, WithLogger(logging.NewNop()))
	require.NoError(t, err)
	assert.Equal(t, 2, widgetCount(t, srv.Handler()))
	require.NoError(t, srv.Close())

	// The activated layout survives a restart
	cfg.Dashboard.ActivateDefaultOnStart = false
	restarted, err := NewServer(cfg, WithLogger(logging.NewNop()))
	require.NoError(t, err)
	defer restarted.Close()
	assert.Equal(t, 2, widgetCount(t, restarted.Handler()))
}

func TestMetricsEndpoint(t *testing.T) {
	srv, err := NewServer(testConfig(t), WithLogger(logging.NewNop()))
	require.NoError(t, err)
	defer srv.Close()

	get(t, srv.Handler(), "/api/widgets")

	w := get(t, srv.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ari_widgets 1")
	assert.Contains(t, w.Body.String(), `ari_http_requests_total{method="GET",path="/api/widgets",status="200"} 1`)
}

func TestCORSHeaders(t *testing.T) {
	srv, err := NewServer(testConfig(t), WithLogger(logging.NewNop()))
	require.NoError(t, err)
	defer srv.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewServerRejectsBadLogLevel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Logging.Level = "chatty"

	_, err := NewServer(cfg)
	assert.Error(t, err)
}

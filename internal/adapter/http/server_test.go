package http_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/aemet-climate-etl/internal/adapter/http"
	"github.com/couchcryptid/aemet-climate-etl/internal/pipeline"
)

func newTestServer(p pipeline.FetchProgress) *httpadapter.Server {
	return httpadapter.NewServer(":0", httpadapter.ProgressFunc(func() any { return p }), slog.Default())
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(pipeline.FetchProgress{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestProgressReturnsSnapshot(t *testing.T) {
	srv := newTestServer(pipeline.FetchProgress{Year: 2024, Windows: 25, Done: 7, Failed: 1, Records: 6200, Running: true})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/progress", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body pipeline.FetchProgress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 25, body.Windows)
	assert.Equal(t, 7, body.Done)
	assert.Equal(t, 1, body.Failed)
	assert.Equal(t, 6200, body.Records)
	assert.True(t, body.Running)
}

func TestProgressRejectsPost(t *testing.T) {
	srv := newTestServer(pipeline.FetchProgress{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/progress", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(pipeline.FetchProgress{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

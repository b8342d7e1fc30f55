package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	cfg.Host, cfg.Port = "localhost", "0"
	cfg.Logger = zerolog.Nop()
	srv, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return srv
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_rootRedirects(t *testing.T) {
	srv := newTestServer(t, Config{})

	rec := get(t, srv, "/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/map", rec.Header().Get("Location"))
}

func TestServer_mapPageOpensSession(t *testing.T) {
	srv := newTestServer(t, Config{})

	rec := get(t, srv, "/map")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, 1, srv.Sessions().Len())
}

func TestServer_featuresGeoJSON(t *testing.T) {
	srv := newTestServer(t, Config{})

	rec := get(t, srv, "/data/features.geojson")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))

	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Len(t, fc.Features, 52)
}

func TestServer_apiAndMetrics(t *testing.T) {
	srv := newTestServer(t, Config{})

	rec := get(t, srv, "/api/v1/info")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"db":true`)
	assert.NotEmpty(t, rec.Header().Values("Link"))

	rec = get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `choropleth_http_requests_total{method="GET",path="GET /api/v1/info",status="200"} 1`)
}

func TestServer_queryCannotReadFiles(t *testing.T) {
	srv := newTestServer(t, Config{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query",
		strings.NewReader(`{"query":"SELECT * FROM read_text('/etc/passwd')"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/query",
		strings.NewReader(`{"query":"SELECT count(*) AS n FROM features"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"n":52`)
}

func TestServer_openAPI(t *testing.T) {
	srv := newTestServer(t, Config{})

	spec := srv.OpenAPI()
	require.NotNil(t, spec)
	for _, path := range []string{
		"/health",
		"/api/v1/features",
		"/api/v1/features/{id}",
		"/api/v1/scale",
		"/api/v1/legend",
		"/api/v1/map/{session}/enter",
		"/api/v1/query",
	} {
		assert.Contains(t, spec.Paths, path)
	}
}

func TestServer_badInputs(t *testing.T) {
	_, err := New(Config{Dataset: filepath.Join(t.TempDir(), "missing.geojson"), Logger: zerolog.Nop()})
	assert.Error(t, err)

	mapCfg := filepath.Join(t.TempDir(), "map.yaml")
	require.NoError(t, os.WriteFile(mapCfg, []byte("zoom: 40\n"), 0o644))
	_, err = New(Config{MapConfig: mapCfg, Logger: zerolog.Nop()})
	assert.Error(t, err)
}

func TestServer_templatesDir(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join("..", "templates", "fragments")
	entries, err := os.ReadDir(src)
	require.NoError(t, err)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(src, e.Name()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, e.Name()), data, 0o644))
	}

	srv := newTestServer(t, Config{TemplatesDir: dir})
	require.Equal(t, http.StatusOK, get(t, srv, "/map").Code)

	page := filepath.Join(dir, "map.html")
	data, err := os.ReadFile(page)
	require.NoError(t, err)
	edited := strings.Replace(string(data), "<title>{{.Title}}</title>", "<title>edited {{.Title}}</title>", 1)
	require.NoError(t, os.WriteFile(page, []byte(edited), 0o644))

	rec := get(t, srv, "/map")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>edited US Population Density</title>")
}

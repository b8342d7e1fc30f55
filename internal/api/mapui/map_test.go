package mapui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-choropleth/internal/config"
	"github.com/joeblew999/plat-choropleth/internal/metrics"
	"github.com/joeblew999/plat-choropleth/internal/service"
	"github.com/joeblew999/plat-choropleth/internal/templates"
)

type harness struct {
	mux      *http.ServeMux
	sessions *service.SessionService
	handler  *MapHandler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ds, err := service.NewDatasetService("")
	require.NoError(t, err)

	renderer := templates.Default()
	m := metrics.New()
	sessions := service.NewSessionService(ds, config.Default(), renderer, service.SessionOptions{
		Log:     zerolog.Nop(),
		Metrics: m,
	})

	mux := http.NewServeMux()
	api := humago.New(mux, huma.DefaultConfig("test", "1.0.0"))
	h := NewMapHandler(sessions, renderer, m, zerolog.Nop())
	h.RegisterRoutes(api)
	mux.HandleFunc("GET /map", h.ServePage)

	return &harness{mux: mux, sessions: sessions, handler: h}
}

func (h *harness) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	return rec
}

func TestMount(t *testing.T) {
	h := newHarness(t)
	sess := h.sessions.Open()

	rec := h.do(http.MethodGet, "/api/v1/map/"+sess.ID+"/mount", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "event: datastar-patch-elements")
	assert.Contains(t, body, "event: datastar-patch-signals")
	assert.Contains(t, body, "#legend")
	assert.Contains(t, body, "#info")
	assert.Contains(t, body, "Hover over a state")
	assert.Contains(t, body, "#FFEDA0")
}

func TestEnterLeaveClick(t *testing.T) {
	h := newHarness(t)
	sess := h.sessions.Open()
	base := "/api/v1/map/" + sess.ID

	rec := h.do(http.MethodPost, base+"/enter", `{"feature":"06"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "datastar-patch-signals")
	assert.Contains(t, body, "California")
	assert.Contains(t, body, `"front":"06"`)

	hovered, ok := sess.View.Hovered()
	assert.True(t, ok)
	assert.Equal(t, "06", hovered)

	rec = h.do(http.MethodPost, base+"/click", `{"feature":"06"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"seq":1`)

	rec = h.do(http.MethodPost, base+"/leave", `{"feature":"06"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hover over a state")

	_, ok = sess.View.Hovered()
	assert.False(t, ok)
}

func TestUnknownFeatureIsIgnored(t *testing.T) {
	h := newHarness(t)
	sess := h.sessions.Open()

	rec := h.do(http.MethodPost, "/api/v1/map/"+sess.ID+"/enter", `{"feature":"nope"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "datastar-patch")
}

func TestUnknownSession(t *testing.T) {
	h := newHarness(t)

	for _, rec := range []*httptest.ResponseRecorder{
		h.do(http.MethodPost, "/api/v1/map/missing/enter", `{"feature":"06"}`),
		h.do(http.MethodGet, "/api/v1/map/missing/mount", ""),
	} {
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "event: datastar-patch-signals")
		assert.Contains(t, body, `"error":"This map has expired. Reload the page."`)
	}
}

func TestSequencedEvents(t *testing.T) {
	h := newHarness(t)
	sess := h.sessions.Open()
	base := "/api/v1/map/" + sess.ID

	require.Equal(t, http.StatusOK, h.do(http.MethodPost, base+"/enter", `{"feature":"06","seq":1}`).Code)

	rec := h.do(http.MethodPost, base+"/enter", `{"feature":"48","seq":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "datastar-patch")

	rec = h.do(http.MethodPost, base+"/leave", `{"feature":"06","seq":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Texas")
	assert.Contains(t, rec.Body.String(), `"front":"48"`)

	hovered, ok := sess.View.Hovered()
	require.True(t, ok)
	assert.Equal(t, "48", hovered)
}

func TestBadSignals(t *testing.T) {
	h := newHarness(t)
	sess := h.sessions.Open()

	rec := h.do(http.MethodPost, "/api/v1/map/"+sess.ID+"/enter", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClose(t *testing.T) {
	h := newHarness(t)
	sess := h.sessions.Open()

	rec := h.do(http.MethodPost, "/api/v1/map/"+sess.ID+"/close", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, h.sessions.Len())
	assert.True(t, sess.View.Closed())

	rec = h.do(http.MethodPost, "/api/v1/map/"+sess.ID+"/close", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServePage(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/map", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, h.sessions.Len())

	body := rec.Body.String()
	assert.Contains(t, body, "<title>US Population Density</title>")
	assert.Contains(t, body, "/api/v1/map/")
	assert.Contains(t, body, "/mount")
	assert.Contains(t, body, "leaflet")
}

// Package mapui contains the Datastar SSE handlers behind the map page.
// Pointer events arrive as Datastar actions; each answer streams the style,
// paint order, viewport and info box changes back as SSE patches.
package mapui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-choropleth/internal/humastar"
	"github.com/joeblew999/plat-choropleth/internal/mapview"
	"github.com/joeblew999/plat-choropleth/internal/metrics"
	"github.com/joeblew999/plat-choropleth/internal/service"
	"github.com/joeblew999/plat-choropleth/internal/templates"
)

// Element IDs the page mounts its controls under.
const (
	InfoSelector   = "#info"
	LegendSelector = "#legend"
)

// DataURL is where the page fetches feature geometry from.
const DataURL = "/data/features.geojson"

// ErrSessionGone is shown by the page when its session has expired.
const ErrSessionGone = "This map has expired. Reload the page."

// MapHandler serves the map page and its SSE endpoints.
type MapHandler struct {
	humastar.Handler
	sessions *service.SessionService
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewMapHandler creates a map handler.
func NewMapHandler(sessions *service.SessionService, renderer *templates.Renderer, m *metrics.Metrics, log zerolog.Logger) *MapHandler {
	return &MapHandler{
		Handler:  humastar.Handler{Renderer: renderer},
		sessions: sessions,
		metrics:  m,
		log:      log,
	}
}

// RegisterRoutes registers the map SSE routes with Huma.
func (h *MapHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/map/{session}/mount", h.Mount, huma.OperationTags("map"))
	huma.Post(api, "/api/v1/map/{session}/enter", h.handle(mapview.Enter), huma.OperationTags("map"),
		func(o *huma.Operation) { o.OperationID = "map-enter" })
	huma.Post(api, "/api/v1/map/{session}/leave", h.handle(mapview.Leave), huma.OperationTags("map"),
		func(o *huma.Operation) { o.OperationID = "map-leave" })
	huma.Post(api, "/api/v1/map/{session}/click", h.handle(mapview.Click), huma.OperationTags("map"),
		func(o *huma.Operation) { o.OperationID = "map-click" })
	huma.Post(api, "/api/v1/map/{session}/close", h.Close, huma.OperationTags("map"))
}

// SessionInput addresses one map session.
type SessionInput struct {
	Session string `path:"session" doc:"Map session ID"`
}

// EventInput is a pointer event posted by the page with its Datastar
// signals: feature (the feature id) and seq (the page's event counter).
type EventInput struct {
	Session string `path:"session" doc:"Map session ID"`
	RawBody []byte
}

// Mount streams the controls and every feature's current style. An unknown
// session gets an error signal.
func (h *MapHandler) Mount(ctx context.Context, input *SessionInput) (*huma.StreamResponse, error) {
	sess, ok := h.sessions.Get(input.Session)
	if !ok {
		return h.gone(), nil
	}
	snap := sess.View.Snapshot()
	legend := sess.View.Legend().HTML()

	return h.Stream(func(sse humastar.SSE) {
		sse.Patch(legend, LegendSelector)
		writePatch(sse, snap)
	}), nil
}

// handle returns the Huma handler for one pointer event kind.
func (h *MapHandler) handle(kind mapview.EventKind) func(context.Context, *EventInput) (*huma.StreamResponse, error) {
	return func(ctx context.Context, input *EventInput) (*huma.StreamResponse, error) {
		signals, err := (&humastar.SignalsInput{RawBody: input.RawBody}).MustParse()
		if err != nil {
			return nil, err
		}
		sess, ok := h.sessions.Get(input.Session)
		if !ok {
			return h.gone(), nil
		}

		ev := mapview.Event{Kind: kind, FeatureID: signals.String("feature")}
		if signals.Has("seq") {
			ev.Seq = signals.Uint("seq")
		}
		p := sess.View.Dispatch(ev)
		switch {
		case p.Held:
			h.log.Debug().Str("session", sess.ID).Str("event", string(kind)).Uint64("seq", ev.Seq).Msg("event held")
		case !p.Applied:
			h.metrics.ObserveInteraction(string(kind), false)
			h.log.Debug().Str("session", sess.ID).Str("event", string(kind)).Str("feature", ev.FeatureID).Msg("event ignored")
		default:
			h.metrics.ObserveInteraction(string(kind), true)
		}

		return h.Stream(func(sse humastar.SSE) {
			writePatch(sse, p)
		}), nil
	}
}

// Close unmounts the session's controls and drops it.
func (h *MapHandler) Close(ctx context.Context, input *SessionInput) (*struct{}, error) {
	if !h.sessions.Close(input.Session) {
		return nil, huma.Error404NotFound("map session not found")
	}
	return &struct{}{}, nil
}

func (h *MapHandler) gone() *huma.StreamResponse {
	return h.Stream(func(sse humastar.SSE) {
		sse.Error(ErrSessionGone)
	})
}

func writePatch(sse humastar.SSE, p mapview.Patch) {
	sse.Signals(p.Signals())
	if p.InfoChanged {
		sse.Patch(p.Info, InfoSelector)
	}
}

// pageConfig is what the page script needs to build the base map.
type pageConfig struct {
	Center          [2]float64 `json:"center"`
	Zoom            int        `json:"zoom"`
	ScrollWheelZoom bool       `json:"scrollWheelZoom"`
	TileURL         string     `json:"tileURL"`
	Attribution     string     `json:"attribution"`
	DataURL         string     `json:"dataURL"`
}

// PageData feeds the "map-page" template.
type PageData struct {
	Title    string
	Height   string
	Signals  string
	Config   pageConfig
	MountURL string
	EnterURL string
	LeaveURL string
	ClickURL string
	CloseURL string
}

// ServePage opens a session and renders the map page bound to it.
func (h *MapHandler) ServePage(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Open()
	cfg := sess.View.Config()

	signals, _ := json.Marshal(map[string]any{
		"feature": "",
		"seq":     0,
		"styles":  map[string]any{},
		"front":   "",
		"fit":     map[string]any{},
		"error":   "",
	})
	base := fmt.Sprintf("/api/v1/map/%s", sess.ID)
	data := PageData{
		Title:   cfg.Title,
		Height:  cfg.Height,
		Signals: string(signals),
		Config: pageConfig{
			Center:          cfg.Center,
			Zoom:            cfg.Zoom,
			ScrollWheelZoom: cfg.ScrollWheelZoom,
			TileURL:         cfg.TileURL,
			Attribution:     cfg.Attribution,
			DataURL:         DataURL,
		},
		MountURL: base + "/mount",
		EnterURL: base + "/enter",
		LeaveURL: base + "/leave",
		ClickURL: base + "/click",
		CloseURL: base + "/close",
	}

	html, err := h.Renderer.Render("map-page", data)
	if err != nil {
		h.sessions.Close(sess.ID)
		h.log.Error().Err(err).Msg("rendering map page")
		http.Error(w, "failed to render map", http.StatusInternalServerError)
		return
	}

	h.log.Info().Str("session", sess.ID).Str("remote", r.RemoteAddr).Msg("map opened")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

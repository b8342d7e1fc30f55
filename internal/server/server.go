package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-choropleth/internal/api"
	"github.com/joeblew999/plat-choropleth/internal/api/mapui"
	"github.com/joeblew999/plat-choropleth/internal/config"
	"github.com/joeblew999/plat-choropleth/internal/db"
	"github.com/joeblew999/plat-choropleth/internal/metrics"
	"github.com/joeblew999/plat-choropleth/internal/service"
	"github.com/joeblew999/plat-choropleth/internal/templates"
)

// Config holds the server configuration.
type Config struct {
	Host         string
	Port         string
	Dataset      string // GeoJSON file, empty for the bundled states
	MapConfig    string // YAML map settings, empty for defaults
	DataDir      string // DuckDB directory, empty keeps it in memory
	TemplatesDir string // re-read page templates from here on every page load
	SessionTTL   time.Duration
	Logger       zerolog.Logger
}

// Server is the choropleth HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	handler  http.Handler
	humaAPI  huma.API
	db       *sql.DB
	services *api.Services
	renderer *templates.Renderer
	metrics  *metrics.Metrics
	mapUI    *mapui.MapHandler
	log      zerolog.Logger
}

// New creates a new choropleth server.
func New(cfg Config) (*Server, error) {
	log := cfg.Logger

	dataset, err := service.NewDatasetService(cfg.Dataset)
	if err != nil {
		return nil, err
	}
	mapCfg, err := config.Load(cfg.MapConfig)
	if err != nil {
		return nil, err
	}

	renderer := templates.Default()
	if cfg.TemplatesDir != "" {
		renderer, err = templates.New(os.DirFS(cfg.TemplatesDir), "*.html")
		if err != nil {
			return nil, fmt.Errorf("loading templates from %s: %w", cfg.TemplatesDir, err)
		}
		log.Info().Str("dir", cfg.TemplatesDir).Msg("templates reload on page load")
	}

	m := metrics.New()
	sessions := service.NewSessionService(dataset, mapCfg, renderer, service.SessionOptions{
		TTL:     cfg.SessionTTL,
		Log:     log,
		Metrics: m,
	})

	mux := http.NewServeMux()

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("plat-choropleth API", "1.0.0")
	humaConfig.Info.Description = "Population density choropleth: features, color scale, legend and the interactive map."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	s := &Server{
		config:   cfg,
		mux:      mux,
		humaAPI:  humago.New(mux, humaConfig),
		services: &api.Services{Dataset: dataset, Sessions: sessions},
		renderer: renderer,
		metrics:  m,
		log:      log,
	}
	s.mapUI = mapui.NewMapHandler(sessions, renderer, m, log)

	conn, err := db.Open(db.Config{DataDir: cfg.DataDir, DBName: "choropleth"})
	if err != nil {
		log.Warn().Err(err).Msg("duckdb unavailable, sql routes disabled")
	} else if err := loadAndSeal(conn, dataset); err != nil {
		log.Warn().Err(err).Msg("preparing duckdb, sql routes disabled")
		conn.Close()
	} else {
		s.db = conn
	}

	s.routes()
	s.handler = middleware.RequestID(middleware.Recoverer(s.accessLog(mux)))

	log.Info().
		Str("dataset", dataset.Source()).
		Int("features", len(dataset.Features())).
		Bool("db", s.db != nil).
		Msg("server ready")
	return s, nil
}

// loadAndSeal fills the features table, then locks the database so the SQL
// routes only ever see that table.
func loadAndSeal(conn *sql.DB, dataset *service.DatasetService) error {
	ctx := context.Background()
	if err := db.LoadFeatures(ctx, conn, dataset.Summaries()); err != nil {
		return err
	}
	return db.Seal(ctx, conn)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Sessions returns the map session service.
func (s *Server) Sessions() *service.SessionService {
	return s.services.Sessions
}

// Run expires idle map sessions until ctx is done.
func (s *Server) Run(ctx context.Context) {
	s.services.Sessions.Run(ctx)
}

// Close closes server resources.
func (s *Server) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Server) routes() {
	// Register Huma REST API routes (OpenAPI-documented JSON endpoints)
	api.RegisterRoutes(s.humaAPI, s.services)
	api.NewInfoHandler(s.services, s.db != nil).RegisterRoutes(s.humaAPI)
	api.NewDBHandler(s.db).RegisterRoutes(s.humaAPI)

	// Map SSE routes using Huma + Datastar SDK
	s.mapUI.RegisterRoutes(s.humaAPI)

	s.mux.HandleFunc("GET "+mapui.DataURL, s.handleFeatures)
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	// Page routes
	s.mux.HandleFunc("GET /map", s.handleMap)
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(s.services.Dataset.GeoJSON())
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	if dir := s.config.TemplatesDir; dir != "" {
		if err := s.renderer.Reload(os.DirFS(dir), "*.html"); err != nil {
			s.log.Error().Err(err).Str("dir", dir).Msg("reloading templates")
		}
	}
	s.mapUI.ServePage(w, r)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/map", http.StatusFound)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		elapsed := time.Since(start)
		s.metrics.ObserveHTTPRequest(r.Method, pattern, status, elapsed)

		s.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Int64("duration_ms", elapsed.Milliseconds()).
			Msg("http_request")
	})
}

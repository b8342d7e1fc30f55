// Package metrics exposes Prometheus metrics for the map server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes application metrics that are safe to scrape via Prometheus.
type Metrics struct {
	registry            *prometheus.Registry
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	interactions        *prometheus.CounterVec
	sessionsActive      prometheus.Gauge
	sessionsExpired     prometheus.Counter
}

// New creates a fresh Metrics registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "choropleth",
		Name:      "http_requests_total",
		Help:      "Count of HTTP requests processed by the map server",
	}, []string{"method", "path", "status"})

	httpRequestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "choropleth",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests served by the map server",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	interactions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "choropleth",
		Name:      "interactions_total",
		Help:      "Pointer events dispatched to map sessions",
	}, []string{"kind", "outcome"})

	sessionsActive := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "choropleth",
		Name:      "sessions_active",
		Help:      "Number of open map sessions",
	})

	sessionsExpired := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "choropleth",
		Name:      "sessions_expired_total",
		Help:      "Map sessions closed by the idle sweeper",
	})

	registry.MustRegister(
		httpRequests,
		httpRequestDuration,
		interactions,
		sessionsActive,
		sessionsExpired,
	)

	return &Metrics{
		registry:            registry,
		httpRequests:        httpRequests,
		httpRequestDuration: httpRequestDuration,
		interactions:        interactions,
		sessionsActive:      sessionsActive,
		sessionsExpired:     sessionsExpired,
	}
}

// ObserveHTTPRequest records a single HTTP request/response cycle.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}
	m.httpRequests.With(labels).Inc()
	m.httpRequestDuration.With(labels).Observe(duration.Seconds())
}

// ObserveInteraction counts one pointer event. applied is false when the
// event was ignored.
func (m *Metrics) ObserveInteraction(kind string, applied bool) {
	if m == nil {
		return
	}
	outcome := "applied"
	if !applied {
		outcome = "ignored"
	}
	m.interactions.WithLabelValues(kind, outcome).Inc()
}

// SetActiveSessions records the number of open sessions.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.sessionsActive.Set(float64(n))
}

// AddExpiredSessions counts sessions closed by the sweeper.
func (m *Metrics) AddExpiredSessions(n int) {
	if m == nil {
		return
	}
	m.sessionsExpired.Add(float64(n))
}

// Handler exposes the Prometheus registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("metrics unavailable"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

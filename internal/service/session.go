package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-choropleth/internal/choropleth"
	"github.com/joeblew999/plat-choropleth/internal/config"
	"github.com/joeblew999/plat-choropleth/internal/mapview"
	"github.com/joeblew999/plat-choropleth/internal/metrics"
)

// DefaultSessionTTL is how long an idle map session lives.
const DefaultSessionTTL = 30 * time.Minute

// Session is one browser page's map.
type Session struct {
	ID      string
	View    *mapview.MapView
	Created time.Time

	lastSeen time.Time
}

// SessionOptions tunes a SessionService. Zero values pick defaults.
type SessionOptions struct {
	TTL     time.Duration
	Clock   clockwork.Clock
	Log     zerolog.Logger
	Metrics *metrics.Metrics
}

// SessionService owns the open map sessions.
type SessionService struct {
	dataset  *DatasetService
	config   config.Map
	renderer choropleth.Renderer

	ttl     time.Duration
	clock   clockwork.Clock
	log     zerolog.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionService creates a session service over a loaded dataset.
func NewSessionService(dataset *DatasetService, cfg config.Map, r choropleth.Renderer, opts SessionOptions) *SessionService {
	if opts.TTL <= 0 {
		opts.TTL = DefaultSessionTTL
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &SessionService{
		dataset:  dataset,
		config:   cfg,
		renderer: r,
		ttl:      opts.TTL,
		clock:    opts.Clock,
		log:      opts.Log,
		metrics:  opts.Metrics,
		sessions: make(map[string]*Session),
	}
}

// Open creates a session with a freshly painted map.
func (s *SessionService) Open() *Session {
	now := s.clock.Now()
	sess := &Session{
		ID:       uuid.NewString(),
		View:     mapview.New(s.dataset.Features(), s.config, s.renderer),
		Created:  now,
		lastSeen: now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SetActiveSessions(n)
	s.log.Debug().Str("session", sess.ID).Int("active", n).Msg("session opened")
	return sess
}

// Get returns an open session and marks it as seen.
func (s *SessionService) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = s.clock.Now()
	return sess, true
}

// Close unmounts and forgets a session. Returns false if it was not open.
func (s *SessionService) Close(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	n := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return false
	}
	sess.View.Close()
	s.metrics.SetActiveSessions(n)
	s.log.Debug().Str("session", id).Int("active", n).Msg("session closed")
	return true
}

// Len returns the number of open sessions.
func (s *SessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many
// were closed.
func (s *SessionService) Sweep() int {
	cutoff := s.clock.Now().Add(-s.ttl)

	s.mu.Lock()
	var expired []*Session
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range expired {
		sess.View.Close()
	}
	if len(expired) > 0 {
		s.metrics.SetActiveSessions(n)
		s.metrics.AddExpiredSessions(len(expired))
		s.log.Info().Int("expired", len(expired)).Int("active", n).Msg("swept idle sessions")
	}
	return len(expired)
}

// Run sweeps on a ticker until ctx is done.
func (s *SessionService) Run(ctx context.Context) {
	ticker := s.clock.NewTicker(s.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.Sweep()
		}
	}
}

// Package api serves the HTTP health and stats endpoints beside the game listener
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"connect4-lobby/pkg/logger"
)

// Stats is the view of the game server reported on /stats
type Stats interface {
	ActiveConnections() int
	Lobbies() int
	LobbyCodes() []string
}

// StatsResponse is the /stats body
type StatsResponse struct {
	ActiveConnections int      `json:"active_connections"`
	Lobbies           int      `json:"lobbies"`
	LobbyCodes        []string `json:"lobby_codes"`
	UptimeSeconds     int64    `json:"uptime_seconds"`
}

// HealthServer answers liveness, readiness and stats probes over HTTP
type HealthServer struct {
	server  *http.Server
	stats   Stats
	log     *logger.Logger
	started time.Time
	ready   atomic.Bool
}

// NewHealthServer builds the routes; nothing listens until Start
func NewHealthServer(addr string, stats Stats, log *logger.Logger) *HealthServer {
	if log == nil {
		log = logger.Server
	}
	mux := http.NewServeMux()
	hs := &HealthServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		stats:   stats,
		log:     log.With("health"),
		started: time.Now(),
	}

	mux.HandleFunc("GET /health", hs.handleHealth)
	mux.HandleFunc("GET /ready", hs.handleReady)
	mux.HandleFunc("GET /stats", hs.handleStats)

	return hs
}

// Handler exposes the routes without a listener
func (s *HealthServer) Handler() http.Handler {
	return s.server.Handler
}

// Start serves in the background. Listen errors are logged.
func (s *HealthServer) Start() {
	go func() {
		s.log.Info("Health server listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Health server error: %v", err)
		}
	}()
}

// Stop marks the server not ready and shuts it down gracefully
func (s *HealthServer) Stop(ctx context.Context) error {
	s.SetReady(false)
	return s.server.Shutdown(ctx)
}

// SetReady flips /ready; the game server marks itself ready once it is accepting
func (s *HealthServer) SetReady(ready bool) {
	s.ready.Store(ready)
}

func (s *HealthServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *HealthServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready.Load() {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready"))
	}
}

func (s *HealthServer) handleStats(w http.ResponseWriter, r *http.Request) {
	codes := s.stats.LobbyCodes()
	if codes == nil {
		codes = []string{}
	}
	resp := StatsResponse{
		ActiveConnections: s.stats.ActiveConnections(),
		Lobbies:           s.stats.Lobbies(),
		LobbyCodes:        codes,
		UptimeSeconds:     int64(time.Since(s.started).Seconds()),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Warn("Failed to write stats: %v", err)
	}
}

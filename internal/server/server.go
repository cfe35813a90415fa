// Package server implements the TCP acceptor and per-connection sessions for the lobby server
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"connect4-lobby/internal/lobby"
	"connect4-lobby/pkg/logger"
)

// Options tunes the acceptor and its sessions
type Options struct {
	// WriteTimeout bounds each outbound frame; zero means no deadline
	WriteTimeout time.Duration
	// MaxPayload bounds inbound frames; zero selects the codec default
	MaxPayload int
	Logger     *logger.Logger
}

// Server accepts connections and runs one Session per connection
type Server struct {
	address  string
	listener net.Listener
	registry *lobby.Registry
	opts     Options
	logger   *logger.Logger

	sessions map[string]*Session
	mu       sync.RWMutex
	active   atomic.Int64

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning atomic.Bool
}

// NewServer creates a server for address backed by registry
func NewServer(address string, registry *lobby.Registry, opts Options) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	log := opts.Logger
	if log == nil {
		log = logger.Server
		opts.Logger = log
	}
	return &Server{
		address:  address,
		registry: registry,
		opts:     opts,
		logger:   log,
		sessions: make(map[string]*Session),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Listen binds the listening socket without accepting yet
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener
	s.isRunning.Store(true)
	s.logger.Info("Server listening on %s", listener.Addr())
	return nil
}

// Start listens and accepts connections until Stop is called
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Serve accepts connections on the bound listener. It returns nil after Stop.
func (s *Server) Serve() error {
	if s.listener == nil {
		return errors.New("server is not listening")
	}

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.isRunning.Load() {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.logger.Error("Failed to accept connection: %v", err)
			continue
		}

		s.wg.Add(1)
		go s.handleClient(conn)
	}
}

// handleClient runs a session and keeps the connection count current
func (s *Server) handleClient(conn net.Conn) {
	defer s.wg.Done()

	session := NewSession(conn, s.registry, s.opts)

	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()
	// Stop may have swept the session map before this session was added
	if s.ctx.Err() != nil {
		session.Close()
	}
	active := s.active.Add(1)
	s.logger.Info("New client connected: %s from %s (%d active)", session.ID(), conn.RemoteAddr(), active)

	if err := session.Run(s.ctx); err != nil {
		s.logger.Error("Session %s ended with error: %v", session.ID(), err)
	}

	s.mu.Lock()
	delete(s.sessions, session.ID())
	s.mu.Unlock()
	active = s.active.Add(-1)
	s.logger.Info("Client disconnected: %s (%d active)", session.ID(), active)
}

// Stop closes the listener and every session, then waits for them to finish
func (s *Server) Stop() error {
	if !s.isRunning.Swap(false) {
		return nil
	}
	s.cancel()

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}

	s.mu.RLock()
	for _, session := range s.sessions {
		session.Close()
	}
	s.mu.RUnlock()

	s.wg.Wait()
	s.logger.Info("Server stopped")
	return err
}

// Addr returns the bound address, or nil before Listen
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ActiveConnections returns the number of connected clients
func (s *Server) ActiveConnections() int {
	return int(s.active.Load())
}

// Lobbies returns the number of open lobbies
func (s *Server) Lobbies() int {
	return s.registry.Len()
}

// Registry returns the lobby registry shared by all sessions
func (s *Server) Registry() *lobby.Registry {
	return s.registry
}

// LobbyCodes returns the codes of the open lobbies
func (s *Server) LobbyCodes() []string {
	return s.registry.Codes()
}

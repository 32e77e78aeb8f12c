// Package http serves the chat endpoint used by the hospital web front end.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"

	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driving"
	"github.com/merkuze-health/merkuze/internal/logger"
)

// DefaultMaxBodyBytes bounds the size of a chat request body.
const DefaultMaxBodyBytes = 64 << 10

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("http: chat service is required")

// Ports aggregates the driving ports the endpoint uses.
type Ports struct {
	// Chat answers messages. Required.
	Chat driving.ChatService

	// Index reports collection statistics for /api/health. Optional.
	Index driving.IndexService

	// Document lists admin documents for /api/documents. Optional.
	Document driving.DocumentService
}

// Config holds server settings.
type Config struct {
	// Addr is the listen address, e.g. ":3001".
	Addr string

	// AllowedOrigins lists CORS origins. Empty allows all.
	AllowedOrigins []string

	// FallbackMessage is returned when a request cannot be decoded.
	FallbackMessage string

	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes int64
}

// Server is the chat HTTP endpoint.
type Server struct {
	ports   *Ports
	cfg     Config
	handler http.Handler

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewServer creates a server. It does not listen until Start or Run.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if ports == nil || ports.Chat == nil {
		return nil, ErrMissingChatService
	}
	if cfg.FallbackMessage == "" {
		cfg.FallbackMessage = domain.DefaultFallbackMessage
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	s := &Server{ports: ports, cfg: cfg}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/documents", s.handleDocuments)

	s.handler = cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(mux)

	return s, nil
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves in the background.
// Use Addr to find the bound address when the port is 0.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("chat server stopped: %v", err)
		}
	}()

	logger.Info("Chat endpoint listening on %s", listener.Addr())
	return nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Stop()
}

// Stop shuts down the server, waiting up to 5 seconds for open requests.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Addr returns the bound listen address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Addr
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to write response: %v", err)
	}
}

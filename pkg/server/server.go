// Package server exposes the conversation loop and the session store over
// HTTP and WebSocket.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/Troyboy911/tyson/pkg/agent"
	"github.com/Troyboy911/tyson/pkg/domain"
	"github.com/Troyboy911/tyson/pkg/model"
	"github.com/Troyboy911/tyson/pkg/store"
	"github.com/Troyboy911/tyson/pkg/tool"
)

// Store is the combined persistence dependency. It may be nil, in which case
// chat still works and the session endpoints report the store as unavailable.
type Store interface {
	store.MessageStore
	store.SessionStore
}

// sessionAgent pairs one conversation loop with a lock serializing its
// turns. Concurrent turns on the same history are undefined, so the server
// runs at most one at a time per session.
type sessionAgent struct {
	mu sync.Mutex
	ag *agent.Agent
}

// Server owns the session-keyed map of conversation loops. There is no
// ambient global state; every agent and its tool registry belong to exactly
// one session entry here.
type Server struct {
	provider      model.Provider
	modelName     string
	maxIterations int
	db            Store
	newRegistry   func() *tool.Registry
	toolDefs      []domain.ToolDefinition

	mu     sync.Mutex
	agents map[string]*sessionAgent

	srv *http.Server
}

// New creates a Server. newRegistry is invoked once per session so that each
// conversation loop owns its own tool registry. db may be nil.
func New(provider model.Provider, modelName string, maxIterations int, db Store, newRegistry func() *tool.Registry) *Server {
	return &Server{
		provider:      provider,
		modelName:     modelName,
		maxIterations: maxIterations,
		db:            db,
		newRegistry:   newRegistry,
		toolDefs:      newRegistry().Definitions(),
		agents:        make(map[string]*sessionAgent),
	}
}

// agentFor returns the session's conversation loop, creating it on first
// use.
func (s *Server) agentFor(sessionID string) *sessionAgent {
	s.mu.Lock()
	defer s.mu.Unlock()

	sa, ok := s.agents[sessionID]
	if !ok {
		var opts []agent.Option
		if s.maxIterations > 0 {
			opts = append(opts, agent.WithMaxIterations(s.maxIterations))
		}
		sa = &sessionAgent{
			ag: agent.New(s.provider, s.newRegistry(), s.modelName, opts...),
		}
		s.agents[sessionID] = sa
	}
	return sa
}

// dropAgent discards the session's in-memory conversation loop.
func (s *Server) dropAgent(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.agents, sessionID)
}

// Handler returns the configured route handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/chat/ws", s.handleChatWebSocket)

	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("POST /api/clear", s.handleClear)

	mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	mux.HandleFunc("GET /api/sessions/{id}/history", s.handleSessionHistory)
	mux.HandleFunc("POST /api/sessions/{id}/clear", s.handleClearSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)

	mux.HandleFunc("GET /api/tools", s.handleListTools)

	return s.corsMiddleware(mux)
}

// Start starts the HTTP server.
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	slog.Info("Starting API server", "addr", addr, "model", s.modelName, "tools", len(s.toolDefs), "database", s.db != nil)
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, err error) {
	slog.Error("API Error", "error", err)
	s.jsonResponse(w, status, map[string]any{"error": err.Error(), "success": false})
}

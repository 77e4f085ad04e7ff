package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/Troyboy911/tyson/pkg/domain"
)

// defaultSession is used by the in-memory history endpoints when the caller
// does not name a session.
const defaultSession = "default"

var errDatabaseUnavailable = fmt.Errorf("database not available")

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	database := "disabled"
	if s.db != nil {
		database = "enabled"
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"name":     "Tyson Agent API",
		"version":  "2.0.0",
		"status":   "running",
		"model":    s.modelName,
		"tools":    len(s.toolDefs),
		"database": database,
		"endpoints": map[string]string{
			"/":                           "API information (this page)",
			"/health":                     "Health check",
			"/api/chat":                   "POST - Send message to agent",
			"/api/chat/ws":                "WebSocket chat",
			"/api/history":                "GET - In-memory conversation history",
			"/api/clear":                  "POST - Clear in-memory conversation history",
			"/api/sessions":               "GET - List all sessions",
			"/api/sessions/{id}/history":  "GET - Session conversation history",
			"/api/sessions/{id}/clear":    "POST - Clear session history",
			"/api/sessions/{id} (DELETE)": "Delete a session",
			"/api/tools":                  "GET - Available tools",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	database := "disconnected"
	if s.db != nil {
		database = "connected"
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"agent":    "ready",
		"database": database,
	})
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	Stream    bool   `json:"stream"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	if req.Message == "" {
		s.errorResponse(w, http.StatusBadRequest, fmt.Errorf("missing message in request body"))
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	if s.db != nil {
		if err := s.db.SaveMessage(r.Context(), req.SessionID, string(domain.RoleUser), req.Message); err != nil {
			s.errorResponse(w, http.StatusInternalServerError, err)
			return
		}
	}

	sa := s.agentFor(req.SessionID)
	sa.mu.Lock()
	// Transport failures are rendered into the response text; the turn is
	// still a turn.
	response, _ := sa.ag.Converse(r.Context(), req.Message, req.Stream)
	sa.mu.Unlock()

	if s.db != nil {
		if err := s.db.SaveMessage(r.Context(), req.SessionID, string(domain.RoleAssistant), response); err != nil {
			s.errorResponse(w, http.StatusInternalServerError, err)
			return
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"response":   response,
		"session_id": req.SessionID,
		"success":    true,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = defaultSession
	}
	sa := s.agentFor(sessionID)
	sa.mu.Lock()
	history := sa.ag.History()
	sa.mu.Unlock()

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"history": history,
		"count":   len(history),
		"success": true,
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = defaultSession
	}
	sa := s.agentFor(sessionID)
	sa.mu.Lock()
	sa.ag.ClearHistory()
	sa.mu.Unlock()

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"message": "In-memory conversation history cleared",
		"success": true,
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, errDatabaseUnavailable)
		return
	}
	sessions, err := s.db.ListSessions(r.Context(), queryLimit(r, 100))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
		"success":  true,
	})
}

func (s *Server) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, errDatabaseUnavailable)
		return
	}
	sessionID := r.PathValue("id")
	history, err := s.db.GetHistory(r.Context(), sessionID, queryLimit(r, 50))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"history":    history,
		"count":      len(history),
		"success":    true,
	})
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, errDatabaseUnavailable)
		return
	}
	sessionID := r.PathValue("id")
	if err := s.db.ClearHistory(r.Context(), sessionID); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}

	// The in-memory loop and the persisted log are independent views; keep
	// them in sync on an explicit clear.
	sa := s.agentFor(sessionID)
	sa.mu.Lock()
	sa.ag.ClearHistory()
	sa.mu.Unlock()

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Session %s history cleared", sessionID),
		"success": true,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, errDatabaseUnavailable)
		return
	}
	sessionID := r.PathValue("id")
	if err := s.db.DeleteSession(r.Context(), sessionID); err != nil {
		s.errorResponse(w, http.StatusNotFound, err)
		return
	}
	s.dropAgent(sessionID)

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
		"success": true,
	})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	tools := make([]map[string]string, 0, len(s.toolDefs))
	for _, def := range s.toolDefs {
		tools = append(tools, map[string]string{
			"name":        def.Function.Name,
			"description": def.Function.Description,
		})
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"tools":   tools,
		"success": true,
	})
}

func queryLimit(r *http.Request, fallback int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

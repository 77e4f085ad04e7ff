package server

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Troyboy911/tyson/pkg/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsRequest is one inbound chat frame.
type wsRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	Stream    bool   `json:"stream"`
}

// wsReply is one outbound frame. Type is "delta" for streamed fragments,
// "response" for a completed turn, or "error".
type wsReply struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	SessionID string `json:"session_id,omitempty"`
}

func (s *Server) handleChatWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade websocket", "error", err)
		return
	}
	defer ws.Close()

	for {
		var req wsRequest
		if err := ws.ReadJSON(&req); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			slog.Error("WebSocket read error", "error", err)
			return
		}
		if req.Message == "" {
			ws.WriteJSON(wsReply{Type: "error", Content: "missing message"})
			continue
		}
		if req.SessionID == "" {
			req.SessionID = uuid.New().String()
		}

		if s.db != nil {
			if err := s.db.SaveMessage(r.Context(), req.SessionID, string(domain.RoleUser), req.Message); err != nil {
				slog.Error("Failed to persist user message", "sessionID", req.SessionID, "error", err)
			}
		}

		sa := s.agentFor(req.SessionID)
		sa.mu.Lock()
		var response string
		if req.Stream {
			response, _ = sa.ag.ConverseStream(r.Context(), req.Message, func(delta string) {
				ws.WriteJSON(wsReply{Type: "delta", Content: delta})
			})
		} else {
			response, _ = sa.ag.Converse(r.Context(), req.Message, false)
		}
		sa.mu.Unlock()

		if s.db != nil {
			if err := s.db.SaveMessage(r.Context(), req.SessionID, string(domain.RoleAssistant), response); err != nil {
				slog.Error("Failed to persist assistant message", "sessionID", req.SessionID, "error", err)
			}
		}

		if err := ws.WriteJSON(wsReply{Type: "response", Content: response, SessionID: req.SessionID}); err != nil {
			slog.Error("WebSocket write error", "error", err)
			return
		}
	}
}

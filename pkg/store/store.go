// Package store defines the persistence boundary for conversation
// transcripts. The conversation loop never depends on it; absence of a store
// degrades to in-memory-only operation.
package store

import (
	"context"

	"github.com/Troyboy911/tyson/pkg/domain"
)

// MessageStore persists role-tagged messages keyed by session.
type MessageStore interface {
	// SaveMessage appends one message to the session's durable log, creating
	// the session row on first save and bumping its updated_at on every
	// subsequent one.
	SaveMessage(ctx context.Context, sessionID, role, content string) error

	// GetHistory returns the session's messages in chronological order. If
	// limit > 0, at most that many of the earliest messages are returned.
	GetHistory(ctx context.Context, sessionID string, limit int) ([]domain.StoredMessage, error)

	// ClearHistory removes all messages for the session. Other sessions are
	// unaffected.
	ClearHistory(ctx context.Context, sessionID string) error
}

// SessionStore manages the session rows themselves.
type SessionStore interface {
	// ListSessions returns up to limit sessions, most recently updated
	// first, each with its message count.
	ListSessions(ctx context.Context, limit int) ([]domain.SessionInfo, error)

	// DeleteSession removes a session and all of its messages.
	DeleteSession(ctx context.Context, sessionID string) error
}

package model

import (
	"context"

	"github.com/Troyboy911/tyson/pkg/domain"
)

// Provider represents a remote chat-completion service.
//
// Complete and Stream are deliberately separate: tool calling is only
// supported on the non-streaming path, and streaming requests never carry a
// tool schema. The conversation loop picks exactly one of the two per
// request.
type Provider interface {
	// Name returns the provider's identifier (e.g. "perplexity").
	Name() string

	// Complete sends the conversation and tool schemas to the model and
	// returns the complete assistant message. A nil or empty tools slice
	// omits tools from the request entirely.
	Complete(ctx context.Context, modelName string, messages []domain.Message, tools []domain.ToolDefinition) (*domain.Message, error)

	// Stream sends the conversation and consumes the server-sent event
	// stream, invoking onDelta for each content fragment in arrival order.
	// It returns the accumulated text once the stream ends. onDelta may be
	// nil.
	Stream(ctx context.Context, modelName string, messages []domain.Message, onDelta func(string)) (string, error)
}

// Package agent drives the bounded tool-calling conversation loop against a
// remote chat-completion model.
package agent

import (
	"context"
	"log/slog"

	"github.com/Troyboy911/tyson/pkg/domain"
	"github.com/Troyboy911/tyson/pkg/model"
	"github.com/Troyboy911/tyson/pkg/tool"
)

// DefaultMaxIterations bounds the number of request/tool-execution rounds in
// a single turn. It is a safety valve against a model that never stops
// requesting tools.
const DefaultMaxIterations = 10

// MaxIterationsMessage is the sentinel result returned when a turn exhausts
// its iteration budget. It is a defined terminal state, not an error.
const MaxIterationsMessage = "Max iterations reached. Ending conversation turn."

// Agent owns one conversation: its ordered message history, its tool
// registry, and the model it talks to. It is not safe for concurrent turns
// on the same instance; independent Agents may run in parallel.
type Agent struct {
	provider      model.Provider
	registry      *tool.Registry
	modelName     string
	maxIterations int
	history       []domain.Message
}

// Option configures an Agent.
type Option func(*Agent)

// WithMaxIterations overrides the iteration bound.
func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

// New creates an Agent talking to the given model through provider, with
// tools drawn from registry. registry may be empty; then requests carry no
// tool schema.
func New(provider model.Provider, registry *tool.Registry, modelName string, opts ...Option) *Agent {
	if registry == nil {
		registry = tool.NewRegistry()
	}
	a := &Agent{
		provider:      provider,
		registry:      registry,
		modelName:     modelName,
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Model returns the configured model identifier.
func (a *Agent) Model() string { return a.modelName }

// Registry returns the agent's tool registry.
func (a *Agent) Registry() *tool.Registry { return a.registry }

// History returns a copy of the conversation history.
func (a *Agent) History() []domain.Message {
	out := make([]domain.Message, len(a.history))
	copy(out, a.history)
	return out
}

// ClearHistory discards the in-memory conversation history. Persisted
// sessions are unaffected.
func (a *Agent) ClearHistory() {
	a.history = nil
}

// Converse runs one user turn: it appends the user message, then either
// consumes a streamed response or drives the bounded tool-calling loop, and
// returns the turn's final text.
//
// Streaming and tool calling are mutually exclusive: a streaming turn never
// dispatches tools and omits the tool schema from the request.
//
// A transport failure is rendered into the returned text (the conversation
// surface treats every failure as a turn result) and also returned as the
// error so programmatic callers can tell the two apart.
func (a *Agent) Converse(ctx context.Context, userText string, streaming bool) (string, error) {
	if userText != "" {
		a.history = append(a.history, domain.Message{
			Role:    domain.RoleUser,
			Content: userText,
		})
	}

	if streaming {
		return a.converseStreaming(ctx, nil)
	}
	return a.converseToolLoop(ctx)
}

// ConverseStream behaves like Converse with streaming enabled, additionally
// invoking onDelta for each content fragment as it arrives.
func (a *Agent) ConverseStream(ctx context.Context, userText string, onDelta func(string)) (string, error) {
	if userText != "" {
		a.history = append(a.history, domain.Message{
			Role:    domain.RoleUser,
			Content: userText,
		})
	}
	return a.converseStreaming(ctx, onDelta)
}

func (a *Agent) converseStreaming(ctx context.Context, onDelta func(string)) (string, error) {
	text, err := a.provider.Stream(ctx, a.modelName, a.history, onDelta)
	if err != nil {
		slog.Error("Model stream failed", "model", a.modelName, "error", err)
		return err.Error(), err
	}
	if text != "" {
		a.history = append(a.history, domain.Message{
			Role:    domain.RoleAssistant,
			Content: text,
		})
	}
	return text, nil
}

// converseToolLoop is the non-streaming path: request, dispatch any tool
// calls in emission order, and continue until the model answers with plain
// text or the iteration budget runs out.
func (a *Agent) converseToolLoop(ctx context.Context) (string, error) {
	var tools []domain.ToolDefinition
	if a.registry.Len() > 0 {
		tools = a.registry.Definitions()
	}

	for i := 0; i < a.maxIterations; i++ {
		msg, err := a.provider.Complete(ctx, a.modelName, a.history, tools)
		if err != nil {
			slog.Error("Model call failed", "model", a.modelName, "error", err)
			return err.Error(), err
		}

		if len(msg.ToolCalls) == 0 {
			a.history = append(a.history, *msg)
			return msg.Content, nil
		}

		// The assistant message carrying the tool calls must precede the
		// tool replies in the history.
		a.history = append(a.history, *msg)
		for _, call := range msg.ToolCalls {
			slog.Info("Executing tool", "tool", call.Function.Name, "id", call.ID)
			result := a.registry.Dispatch(ctx, call)
			a.history = append(a.history, domain.Message{
				Role:       domain.RoleTool,
				Content:    result,
				ToolCallID: call.ID,
				Name:       call.Function.Name,
			})
		}
	}

	slog.Warn("Iteration limit reached", "model", a.modelName, "limit", a.maxIterations)
	return MaxIterationsMessage, nil
}

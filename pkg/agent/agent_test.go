package agent

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Troyboy911/tyson/pkg/domain"
	"github.com/Troyboy911/tyson/pkg/tool"
)

// fakeProvider returns scripted responses and records what it was asked.
type fakeProvider struct {
	responses []*domain.Message
	calls     int
	gotTools  [][]domain.ToolDefinition

	streamText  string
	streamErr   error
	streamCalls int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, modelName string, messages []domain.Message, tools []domain.ToolDefinition) (*domain.Message, error) {
	f.gotTools = append(f.gotTools, tools)
	if f.calls >= len(f.responses) {
		// Out of script: repeat the last response.
		f.calls++
		return f.responses[len(f.responses)-1], nil
	}
	resp := f.responses[f.calls]
	f.calls++
	return resp, nil
}

func (f *fakeProvider) Stream(ctx context.Context, modelName string, messages []domain.Message, onDelta func(string)) (string, error) {
	f.streamCalls++
	if f.streamErr != nil {
		return "", f.streamErr
	}
	if onDelta != nil {
		onDelta(f.streamText)
	}
	return f.streamText, nil
}

// recordingTool appends its name to a shared slice on every execution.
type recordingTool struct {
	name  string
	out   string
	calls *[]string
}

func (t recordingTool) Name() string               { return t.name }
func (t recordingTool) Description() string        { return "records invocations" }
func (t recordingTool) Parameters() map[string]any { return map[string]any{"type": "object"} }
func (t recordingTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	*t.calls = append(*t.calls, t.name)
	return t.out, nil
}

func textResponse(content string) *domain.Message {
	return &domain.Message{Role: domain.RoleAssistant, Content: content}
}

func toolCallResponse(calls ...domain.ToolCall) *domain.Message {
	return &domain.Message{Role: domain.RoleAssistant, ToolCalls: calls}
}

func call(id, name, args string) domain.ToolCall {
	return domain.ToolCall{
		ID:       id,
		Type:     "function",
		Function: domain.FunctionCall{Name: name, Arguments: args},
	}
}

func TestConversePlainText(t *testing.T) {
	provider := &fakeProvider{responses: []*domain.Message{textResponse("hello there")}}
	ag := New(provider, nil, "test-model")

	got, err := ag.Converse(context.Background(), "hi", false)
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}
	if got != "hello there" {
		t.Errorf("result = %q, want %q", got, "hello there")
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}

	history := ag.History()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Role != domain.RoleUser || history[0].Content != "hi" {
		t.Errorf("history[0] = %+v, want user message %q", history[0], "hi")
	}
	if history[1].Role != domain.RoleAssistant || history[1].Content != "hello there" {
		t.Errorf("history[1] = %+v, want assistant message", history[1])
	}
}

func TestConverseEmptyRegistryOmitsTools(t *testing.T) {
	provider := &fakeProvider{responses: []*domain.Message{textResponse("ok")}}
	ag := New(provider, tool.NewRegistry(), "test-model")

	if _, err := ag.Converse(context.Background(), "hi", false); err != nil {
		t.Fatalf("Converse: %v", err)
	}
	if provider.gotTools[0] != nil {
		t.Errorf("tools sent = %v, want nil for empty registry", provider.gotTools[0])
	}
}

func TestConverseToolCallsInOrder(t *testing.T) {
	var executed []string
	registry := tool.NewRegistry()
	registry.Register(recordingTool{name: "alpha", out: "alpha result", calls: &executed})
	registry.Register(recordingTool{name: "beta", out: "beta result", calls: &executed})

	provider := &fakeProvider{responses: []*domain.Message{
		toolCallResponse(
			call("call-1", "beta", `{}`),
			call("call-2", "alpha", `{}`),
		),
		textResponse("done"),
	}}
	ag := New(provider, registry, "test-model")

	got, err := ag.Converse(context.Background(), "do things", false)
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}
	if got != "done" {
		t.Errorf("result = %q, want %q", got, "done")
	}

	// Execution order follows the model's emission order, not registration.
	if len(executed) != 2 || executed[0] != "beta" || executed[1] != "alpha" {
		t.Errorf("executed = %v, want [beta alpha]", executed)
	}

	history := ag.History()
	// user, assistant(tool_calls), tool, tool, assistant
	if len(history) != 5 {
		t.Fatalf("history length = %d, want 5", len(history))
	}
	if history[2].Role != domain.RoleTool || history[2].ToolCallID != "call-1" || history[2].Name != "beta" {
		t.Errorf("history[2] = %+v, want tool reply for call-1/beta", history[2])
	}
	if history[2].Content != "beta result" {
		t.Errorf("history[2].Content = %q, want %q", history[2].Content, "beta result")
	}
	if history[3].ToolCallID != "call-2" || history[3].Name != "alpha" {
		t.Errorf("history[3] = %+v, want tool reply for call-2/alpha", history[3])
	}
}

func TestConverseUnknownTool(t *testing.T) {
	var executed []string
	registry := tool.NewRegistry()
	registry.Register(recordingTool{name: "known", out: "x", calls: &executed})

	provider := &fakeProvider{responses: []*domain.Message{
		toolCallResponse(call("call-1", "missing_tool", `{}`)),
		textResponse("recovered"),
	}}
	ag := New(provider, registry, "test-model")

	got, err := ag.Converse(context.Background(), "hi", false)
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}
	if got != "recovered" {
		t.Errorf("result = %q, want %q", got, "recovered")
	}
	if len(executed) != 0 {
		t.Errorf("executed = %v, want no invocations", executed)
	}

	history := ag.History()
	reply := history[2]
	if reply.Role != domain.RoleTool || reply.ToolCallID != "call-1" {
		t.Fatalf("history[2] = %+v, want tool reply for call-1", reply)
	}
	want := "Tool 'missing_tool' not found"
	if reply.Content != want {
		t.Errorf("reply content = %q, want %q", reply.Content, want)
	}
}

func TestConverseBadArgumentsRecovered(t *testing.T) {
	var executed []string
	registry := tool.NewRegistry()
	registry.Register(recordingTool{name: "alpha", out: "x", calls: &executed})

	provider := &fakeProvider{responses: []*domain.Message{
		toolCallResponse(call("call-1", "alpha", `{not json`)),
		textResponse("recovered"),
	}}
	ag := New(provider, registry, "test-model")

	got, err := ag.Converse(context.Background(), "hi", false)
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}
	if got != "recovered" {
		t.Errorf("result = %q, want %q", got, "recovered")
	}
	if len(executed) != 0 {
		t.Errorf("tool executed despite undecodable arguments")
	}

	reply := ag.History()[2]
	if reply.Role != domain.RoleTool || reply.ToolCallID != "call-1" {
		t.Fatalf("history[2] = %+v, want tool reply", reply)
	}
	if want := "invalid arguments"; !strings.Contains(reply.Content, want) {
		t.Errorf("reply content = %q, want it to mention %q", reply.Content, want)
	}
}

func TestConverseIterationLimit(t *testing.T) {
	var executed []string
	registry := tool.NewRegistry()
	registry.Register(recordingTool{name: "alpha", out: "x", calls: &executed})

	// The model never stops asking for tools.
	provider := &fakeProvider{responses: []*domain.Message{
		toolCallResponse(call("call-1", "alpha", `{}`)),
	}}
	ag := New(provider, registry, "test-model", WithMaxIterations(3))

	got, err := ag.Converse(context.Background(), "hi", false)
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}
	if got != MaxIterationsMessage {
		t.Errorf("result = %q, want sentinel %q", got, MaxIterationsMessage)
	}
	if provider.calls != 3 {
		t.Errorf("provider calls = %d, want 3", provider.calls)
	}
	// 1 user + 3 * (assistant + tool reply)
	if n := len(ag.History()); n != 7 {
		t.Errorf("history length = %d, want 7", n)
	}
}

func TestConverseStreaming(t *testing.T) {
	provider := &fakeProvider{streamText: "streamed answer"}
	ag := New(provider, nil, "test-model")

	got, err := ag.Converse(context.Background(), "hi", true)
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}
	if got != "streamed answer" {
		t.Errorf("result = %q, want %q", got, "streamed answer")
	}
	if provider.calls != 0 {
		t.Errorf("Complete calls = %d, want 0 in streaming mode", provider.calls)
	}
	if provider.streamCalls != 1 {
		t.Errorf("Stream calls = %d, want 1", provider.streamCalls)
	}

	history := ag.History()
	if len(history) != 2 || history[1].Role != domain.RoleAssistant || history[1].Content != "streamed answer" {
		t.Errorf("history = %+v, want user + assistant", history)
	}
}

func TestConverseTransportError(t *testing.T) {
	provider := &fakeProvider{streamErr: fmt.Errorf("API Error: 500 - boom")}
	ag := New(provider, nil, "test-model")

	got, err := ag.Converse(context.Background(), "hi", true)
	if err == nil {
		t.Fatal("expected error")
	}
	if got != err.Error() {
		t.Errorf("result = %q, want the error text %q", got, err.Error())
	}
	// The user message stays in history even when the turn fails.
	if n := len(ag.History()); n != 1 {
		t.Errorf("history length = %d, want 1", n)
	}
}

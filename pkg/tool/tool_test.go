package tool

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Troyboy911/tyson/pkg/domain"
)

type stubTool struct {
	name string
	out  string
	err  error
}

func (t stubTool) Name() string               { return t.name }
func (t stubTool) Description() string        { return "stub " + t.name }
func (t stubTool) Parameters() map[string]any { return map[string]any{"type": "object"} }
func (t stubTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	return t.out, t.err
}

func functionCall(name, args string) domain.ToolCall {
	return domain.ToolCall{
		ID:       "call-1",
		Type:     "function",
		Function: domain.FunctionCall{Name: name, Arguments: args},
	}
}

func TestRegisterDuplicateReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register(stubTool{name: "echo", out: "first"})
	r.Register(stubTool{name: "echo", out: "second"})

	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
	got := r.Dispatch(context.Background(), functionCall("echo", `{}`))
	if got != "second" {
		t.Errorf("Dispatch = %q, want the replacement entry", got)
	}
}

func TestDefinitionsSortedByName(t *testing.T) {
	r := NewRegistry()
	r.Register(stubTool{name: "zeta"})
	r.Register(stubTool{name: "alpha"})
	r.Register(stubTool{name: "mid"})

	defs := r.Definitions()
	if len(defs) != 3 {
		t.Fatalf("Definitions len = %d, want 3", len(defs))
	}
	var names []string
	for _, d := range defs {
		if d.Type != "function" {
			t.Errorf("definition type = %q, want function", d.Type)
		}
		names = append(names, d.Function.Name)
	}
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	r := NewRegistry()
	got := r.Dispatch(context.Background(), functionCall("missing", `{}`))
	if got != "Tool 'missing' not found" {
		t.Errorf("Dispatch = %q, want not-found text", got)
	}
}

func TestDispatchBadArguments(t *testing.T) {
	r := NewRegistry()
	r.Register(stubTool{name: "echo", out: "ok"})

	got := r.Dispatch(context.Background(), functionCall("echo", `{broken`))
	if !strings.Contains(got, "invalid arguments") {
		t.Errorf("Dispatch = %q, want invalid-arguments text", got)
	}
}

func TestDispatchEmptyArguments(t *testing.T) {
	r := NewRegistry()
	r.Register(stubTool{name: "echo", out: "ok"})

	if got := r.Dispatch(context.Background(), functionCall("echo", "")); got != "ok" {
		t.Errorf("Dispatch = %q, want %q", got, "ok")
	}
}

func TestDispatchExecutionError(t *testing.T) {
	r := NewRegistry()
	r.Register(stubTool{name: "broken", err: fmt.Errorf("disk on fire")})

	got := r.Dispatch(context.Background(), functionCall("broken", `{}`))
	if got != "Error: disk on fire" {
		t.Errorf("Dispatch = %q, want rendered error text", got)
	}
}

package builtin

import (
	"context"
	"time"

	"github.com/Troyboy911/tyson/pkg/tool"
)

// CurrentTime reports the current local date and time. Purely observational,
// no inputs.
type CurrentTime struct{}

var _ tool.Tool = CurrentTime{}

func (CurrentTime) Name() string { return "get_current_time" }

func (CurrentTime) Description() string {
	return "Get the current date and time"
}

func (CurrentTime) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
		"required":   []string{},
	}
}

func (CurrentTime) Execute(ctx context.Context, args map[string]any) (string, error) {
	return "Current date and time: " + time.Now().Format("2006-01-02 15:04:05"), nil
}

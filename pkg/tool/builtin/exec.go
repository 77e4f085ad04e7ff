package builtin

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// execTimeout bounds a single code-execution subprocess. This is the only
// wall-clock bound in the system; the conversation loop itself is bounded by
// iterations, not time.
const execTimeout = 10 * time.Second

// ExecuteCode runs a one-shot snippet in a subprocess and returns its
// combined output. There is no persistent interpreter state between calls.
type ExecuteCode struct{}

func (ExecuteCode) Name() string { return "execute_code" }

func (ExecuteCode) Description() string {
	return "Execute a code snippet and return its output"
}

func (ExecuteCode) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"code": map[string]any{
				"type":        "string",
				"description": "Code to execute",
			},
			"language": map[string]any{
				"type":        "string",
				"description": "Programming language (python, javascript, bash)",
				"default":     "python",
			},
		},
		"required": []string{"code"},
	}
}

func (ExecuteCode) Execute(ctx context.Context, args map[string]any) (string, error) {
	code, _ := args["code"].(string)
	if code == "" {
		return "", fmt.Errorf("'code' parameter is required")
	}
	language, _ := args["language"].(string)
	if language == "" {
		language = "python"
	}

	ctx, cancel := context.WithTimeout(ctx, execTimeout)
	defer cancel()

	var cmd *exec.Cmd
	switch language {
	case "python":
		cmd = exec.CommandContext(ctx, "python3", "-c", code)
	case "javascript":
		cmd = exec.CommandContext(ctx, "node", "-e", code)
	case "bash":
		cmd = exec.CommandContext(ctx, "bash", "-c", code)
	default:
		return fmt.Sprintf("Error: unsupported language '%s'", language), nil
	}

	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Sprintf("Error: execution timed out after %s", execTimeout), nil
	}
	if err != nil {
		return fmt.Sprintf("Execution failed: %v\n%s", err, out), nil
	}
	if len(out) == 0 {
		return "Code executed successfully (no output)", nil
	}
	return fmt.Sprintf("Execution successful:\n%s", out), nil
}

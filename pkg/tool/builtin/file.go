package builtin

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// FileOperations reads, writes, or lists files on the local filesystem.
type FileOperations struct{}

func (FileOperations) Name() string { return "file_operations" }

func (FileOperations) Description() string {
	return "Read, write, or list files"
}

func (FileOperations) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"operation": map[string]any{
				"type":        "string",
				"enum":        []string{"read", "write", "list"},
				"description": "File operation to perform",
			},
			"path": map[string]any{
				"type":        "string",
				"description": "File or directory path",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "Content to write (for write operation)",
			},
		},
		"required": []string{"operation", "path"},
	}
}

func (FileOperations) Execute(ctx context.Context, args map[string]any) (string, error) {
	operation, _ := args["operation"].(string)
	path, _ := args["path"].(string)
	if operation == "" || path == "" {
		return "", fmt.Errorf("'operation' and 'path' parameters are required")
	}

	switch operation {
	case "read":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Sprintf("Error reading file: %v", err), nil
		}
		return string(data), nil

	case "write":
		content, _ := args["content"].(string)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Sprintf("Error writing file: %v", err), nil
		}
		return fmt.Sprintf("Wrote %d bytes to %s", len(content), path), nil

	case "list":
		entries, err := os.ReadDir(path)
		if err != nil {
			return fmt.Sprintf("Error listing directory: %v", err), nil
		}
		var names []string
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() {
				name += "/"
			}
			names = append(names, name)
		}
		if len(names) == 0 {
			return "(empty directory)", nil
		}
		return strings.Join(names, "\n"), nil

	default:
		return fmt.Sprintf("Error: unknown operation '%s'", operation), nil
	}
}

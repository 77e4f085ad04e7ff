package builtin

import (
	"context"
	"fmt"
)

// SearchWeb is a stub: actual web search is delegated to the remote model's
// own online mode, so the tool only acknowledges the query.
type SearchWeb struct{}

func (SearchWeb) Name() string { return "search_web" }

func (SearchWeb) Description() string {
	return "Search the web for information using the model's online capabilities"
}

func (SearchWeb) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query",
			},
		},
		"required": []string{"query"},
	}
}

func (SearchWeb) Execute(ctx context.Context, args map[string]any) (string, error) {
	query, _ := args["query"].(string)
	return fmt.Sprintf("Searching web for: %s (handled by the model's online search)", query), nil
}

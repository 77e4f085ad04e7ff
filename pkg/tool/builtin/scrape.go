package builtin

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// maxScrapeLen caps the text returned to the model from one page.
const maxScrapeLen = 8000

// WebScrape fetches a page and extracts its text, optionally narrowed by a
// CSS selector.
type WebScrape struct{}

func (WebScrape) Name() string { return "web_scrape" }

func (WebScrape) Description() string {
	return "Scrape content from a web page"
}

func (WebScrape) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "URL to scrape",
			},
			"selector": map[string]any{
				"type":        "string",
				"description": "CSS selector (optional)",
			},
		},
		"required": []string{"url"},
	}
}

func (WebScrape) Execute(ctx context.Context, args map[string]any) (string, error) {
	url, _ := args["url"].(string)
	if url == "" {
		return "", fmt.Errorf("'url' parameter is required")
	}
	selector, _ := args["selector"].(string)

	client := &http.Client{Timeout: 30 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Sprintf("Error scraping: %v", err), nil
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Sprintf("Error scraping: %v", err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Error scraping: status %d", resp.StatusCode), nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Sprintf("Error parsing page: %v", err), nil
	}

	var text string
	if selector != "" {
		text = doc.Find(selector).Text()
	} else {
		doc.Find("script, style").Remove()
		text = doc.Find("body").Text()
	}

	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "(no matching content)", nil
	}
	if len(text) > maxScrapeLen {
		text = text[:maxScrapeLen] + "..."
	}
	return text, nil
}

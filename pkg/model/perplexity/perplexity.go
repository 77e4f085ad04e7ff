// Package perplexity implements the model.Provider interface against any
// OpenAI-compatible chat-completions endpoint, including Perplexity's.
package perplexity

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Troyboy911/tyson/pkg/domain"
	"github.com/Troyboy911/tyson/pkg/model"
)

// DefaultBaseURL is the Perplexity API endpoint.
const DefaultBaseURL = "https://api.perplexity.ai"

// Client speaks the OpenAI-compatible chat-completions protocol over HTTP.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ model.Provider = (*Client)(nil)

// New creates a Client. baseURL may be empty, in which case DefaultBaseURL
// is used.
func New(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *Client) Name() string { return "perplexity" }

// chatRequest is the wire shape of a chat-completions request.
type chatRequest struct {
	Model    string                  `json:"model"`
	Messages []domain.Message        `json:"messages"`
	Stream   bool                    `json:"stream"`
	Tools    []domain.ToolDefinition `json:"tools,omitempty"`
}

// chatResponse is the wire shape of a non-streaming completion.
type chatResponse struct {
	Choices []struct {
		Message      domain.Message `json:"message"`
		FinishReason string         `json:"finish_reason"`
	} `json:"choices"`
}

// streamChunk is one SSE fragment of a streaming completion.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Complete implements model.Provider.
func (c *Client) Complete(ctx context.Context, modelName string, messages []domain.Message, tools []domain.ToolDefinition) (*domain.Message, error) {
	resp, err := c.post(ctx, chatRequest{
		Model:    modelName,
		Messages: messages,
		Stream:   false,
		Tools:    tools,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	msg := decoded.Choices[0].Message
	if msg.Role == "" {
		msg.Role = domain.RoleAssistant
	}
	return &msg, nil
}

// Stream implements model.Provider. Lines that are not valid `data: ` JSON
// fragments, and fragments without a content delta, are skipped rather than
// treated as errors.
func (c *Client) Stream(ctx context.Context, modelName string, messages []domain.Message, onDelta func(string)) (string, error) {
	resp, err := c.post(ctx, chatRequest{
		Model:    modelName,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return DecodeStream(resp.Body, onDelta)
}

// DecodeStream consumes a server-sent-event body, accumulating the content
// fragments in arrival order until `data: [DONE]` or EOF.
func DecodeStream(r io.Reader, onDelta func(string)) (string, error) {
	var full strings.Builder

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		if data == "[DONE]" {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Malformed fragments are skipped silently.
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		content := chunk.Choices[0].Delta.Content
		if content == "" {
			continue
		}
		full.WriteString(content)
		if onDelta != nil {
			onDelta(content)
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), fmt.Errorf("reading stream: %w", err)
	}
	return full.String(), nil
}

func (c *Client) post(ctx context.Context, req chatRequest) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	slog.Debug("Calling chat completions", "model", req.Model, "messages", len(req.Messages), "stream", req.Stream, "tools", len(req.Tools))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("API Error: %d - %s", resp.StatusCode, string(errBody))
	}
	return resp, nil
}

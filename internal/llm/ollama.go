package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OllamaClient calls a local Ollama server's /api/chat with streaming off.
type OllamaClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
	spec       PromptSpec
}

func NewOllamaClient(baseURL, model string, spec PromptSpec, httpClient *http.Client) *OllamaClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &OllamaClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		spec:       spec,
	}
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message message `json:"message"`
	Done    bool    `json:"done"`
}

func (c *OllamaClient) chatURL() string { return c.baseURL + "/api/chat" }

func (c *OllamaClient) options() map[string]any {
	opts := map[string]any{}
	if c.spec.Style.Temperature > 0 {
		opts["temperature"] = c.spec.Style.Temperature
	}
	if c.spec.Style.MaxTokens > 0 {
		opts["num_predict"] = c.spec.Style.MaxTokens
	}
	if len(opts) == 0 {
		return nil
	}
	return opts
}

func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	b, err := json.Marshal(ollamaChatRequest{
		Model:    c.model,
		Messages: c.spec.messages(prompt),
		Stream:   false,
		Options:  c.options(),
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chatURL(), bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", wrapTransport(c.chatURL(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bb, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("ollama chat failed: %d: %s", resp.StatusCode, strings.TrimSpace(string(bb)))
	}
	var out ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	return out.Message.Content, nil
}

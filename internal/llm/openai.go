package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to any OpenAI-compatible chat completions API,
// including Ollama's /v1 surface.
type OpenAIClient struct {
	client  *openai.Client
	baseURL string
	model   string
	spec    PromptSpec
}

// NewOpenAIClient builds a client. An empty baseURL means api.openai.com.
func NewOpenAIClient(apiKey, baseURL, model string, spec PromptSpec) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client:  openai.NewClientWithConfig(cfg),
		baseURL: cfg.BaseURL,
		model:   model,
		spec:    spec,
	}
}

func (c *OpenAIClient) BaseURL() string { return c.baseURL }

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	msgs := c.spec.messages(prompt)
	chat := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		chat = append(chat, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    chat,
		Temperature: c.spec.Style.Temperature,
		MaxTokens:   c.spec.Style.MaxTokens,
	})
	if err != nil {
		return "", wrapTransport(c.baseURL, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Package llm holds the model backends the relay forwards prompts to.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/VARUNx96/AI-CHATBOT/internal/config"
)

// Completer turns a single prompt into a single reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrUnavailable means the model backend could not be reached at all.
var ErrUnavailable = errors.New("llm: backend unavailable")

// UnavailableError carries the address that refused the connection. It
// matches ErrUnavailable.
type UnavailableError struct {
	URL string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("llm: could not connect to %s: %v", e.URL, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

// wrapTransport marks dial failures as unavailable and leaves other errors
// untouched.
func wrapTransport(url string, err error) error {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return &UnavailableError{URL: url, Err: err}
	}
	return err
}

// New builds the backend selected by cfg.Provider.
func New(cfg config.Config, logger *zap.Logger) (Completer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	spec, err := LoadPromptSpec(cfg.PromptFile)
	if err != nil {
		return nil, fmt.Errorf("load prompt spec: %w", err)
	}
	switch cfg.Provider {
	case config.ProviderOllama, "":
		logger.Info("using ollama backend", zap.String("url", cfg.OllamaURL), zap.String("model", cfg.Model))
		return NewOllamaClient(cfg.OllamaURL, cfg.Model, spec, nil), nil
	case config.ProviderOpenAI:
		c := NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model, spec)
		logger.Info("using openai-compatible backend", zap.String("url", c.BaseURL()), zap.String("model", cfg.Model))
		return c, nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.Provider)
	}
}

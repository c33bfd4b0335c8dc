// Package endpoint talks to the remote chat endpoint: one JSON POST carrying
// a prompt, one JSON reply carrying the response text.
package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/VARUNx96/AI-CHATBOT/internal/types"
)

var (
	// ErrTransport means the request could not complete.
	ErrTransport = errors.New("endpoint: transport failure")
	// ErrStatus means the endpoint answered with a non-2xx status.
	ErrStatus = errors.New("endpoint: unexpected status")
	// ErrMalformed means a 2xx reply did not carry a usable response.
	ErrMalformed = errors.New("endpoint: malformed response")
)

// StatusError reports a non-2xx reply. It matches ErrStatus.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("endpoint: server returned %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("endpoint: server returned %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

func (e *StatusError) Is(target error) bool { return target == ErrStatus }

// maxErrorBody caps how much of an error reply is kept for diagnostics.
const maxErrorBody = 4 << 10

// Client posts prompts to a single chat endpoint URL.
type Client struct {
	httpClient *http.Client
	url        string
}

// NewClient returns a client for url. A nil httpClient uses a fresh
// http.Client; deadlines come from the caller's context.
func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{httpClient: httpClient, url: url}
}

func (c *Client) URL() string { return c.url }

// Send posts prompt and returns the endpoint's response text.
func (c *Client) Send(ctx context.Context, prompt string) (string, error) {
	b, err := json.Marshal(types.ChatRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %w", ErrTransport, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bb, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(bb))}
	}

	var out struct {
		Response *string `json:"response"`
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return "", fmt.Errorf("%w: trailing data after JSON body", ErrMalformed)
	}
	if out.Response == nil {
		return "", fmt.Errorf("%w: missing %q field", ErrMalformed, "response")
	}
	return *out.Response, nil
}

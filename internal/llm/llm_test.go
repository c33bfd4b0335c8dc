package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/VARUNx96/AI-CHATBOT/internal/config"
)

func writeSpec(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadPromptSpec(t *testing.T) {
	spec, err := LoadPromptSpec("")
	require.NoError(t, err)
	assert.Empty(t, spec.System)

	path := writeSpec(t, "system: Be brief.\nstyle:\n  temperature: 0.2\n  max_tokens: 64\n")
	spec, err = LoadPromptSpec(path)
	require.NoError(t, err)
	assert.Equal(t, "Be brief.", spec.System)
	assert.InDelta(t, 0.2, spec.Style.Temperature, 1e-6)
	assert.Equal(t, 64, spec.Style.MaxTokens)

	_, err = LoadPromptSpec(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadPromptSpec(writeSpec(t, "system: [unterminated"))
	assert.Error(t, err)
}

func TestPromptSpec_Messages(t *testing.T) {
	var spec PromptSpec
	assert.Equal(t, []message{{Role: "user", Content: "hi"}}, spec.messages("hi"))

	spec.System = "sys"
	assert.Equal(t, []message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "hi"},
	}, spec.messages("hi"))
}

func TestOllamaClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "phi3:mini", body["model"])
		assert.Equal(t, false, body["stream"])
		assert.Equal(t, []any{
			map[string]any{"role": "system", "content": "Be brief."},
			map[string]any{"role": "user", "content": "Hello"},
		}, body["messages"])
		assert.Equal(t, map[string]any{"num_predict": float64(64)}, body["options"])

		_, _ = w.Write([]byte(`{"model":"phi3:mini","message":{"role":"assistant","content":"Hi there!"},"done":true}`))
	}))
	defer srv.Close()

	var spec PromptSpec
	spec.System = "Be brief."
	spec.Style.MaxTokens = 64

	got, err := NewOllamaClient(srv.URL+"/", "phi3:mini", spec, nil).Complete(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi there!", got)
}

func TestOllamaClient_NoOptionsWhenStyleUnset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, present := body["options"]
		assert.False(t, present)
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"ok"},"done":true}`))
	}))
	defer srv.Close()

	_, err := NewOllamaClient(srv.URL, "m", PromptSpec{}, nil).Complete(context.Background(), "Hello")
	require.NoError(t, err)
}

func TestOllamaClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'phi3:mini' not found"}`))
	}))
	defer srv.Close()

	_, err := NewOllamaClient(srv.URL, "phi3:mini", PromptSpec{}, nil).Complete(context.Background(), "Hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestOllamaClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewOllamaClient(url, "phi3:mini", PromptSpec{}, nil).Complete(context.Background(), "Hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)

	var ue *UnavailableError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, url+"/api/chat", ue.URL)
}

func TestOpenAIClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model    string    `json:"model"`
			Messages []message `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body.Model)
		assert.Equal(t, []message{{Role: "user", Content: "Hello"}}, body.Messages)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hi there!"}, "finish_reason": "stop"}]
		}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", srv.URL+"/v1", "gpt-4o-mini", PromptSpec{})
	assert.Equal(t, srv.URL+"/v1", c.BaseURL())

	got, err := c.Complete(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi there!", got)
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIClient("k", srv.URL+"/v1", "m", PromptSpec{}).Complete(context.Background(), "Hello")
	assert.Error(t, err)
}

func TestOpenAIClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL + "/v1"
	srv.Close()

	_, err := NewOpenAIClient("k", url, "m", PromptSpec{}).Complete(context.Background(), "Hello")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNew_SelectsProvider(t *testing.T) {
	log := zap.NewNop()

	c, err := New(config.Config{Provider: config.ProviderOllama, OllamaURL: "http://localhost:11434", Model: "m"}, log)
	require.NoError(t, err)
	assert.IsType(t, &OllamaClient{}, c)

	c, err = New(config.Config{Provider: config.ProviderOpenAI, OpenAIAPIKey: "k", Model: "m"}, log)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	_, err = New(config.Config{Provider: "carrier-pigeon"}, log)
	assert.Error(t, err)

	_, err = New(config.Config{Provider: config.ProviderOllama, PromptFile: filepath.Join(t.TempDir(), "nope.yaml")}, log)
	assert.Error(t, err)
}

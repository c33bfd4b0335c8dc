package llm

import (
	"os"

	"gopkg.in/yaml.v3"
)

// PromptSpec shapes every model call: an optional system prompt and
// sampling style. It is read from a YAML file such as
//
//	system: You are a concise, friendly assistant.
//	style:
//	  temperature: 0.7
//	  max_tokens: 512
type PromptSpec struct {
	System string `yaml:"system"`
	Style  struct {
		Temperature float32 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"style"`
}

// LoadPromptSpec reads path. An empty path yields the zero spec.
func LoadPromptSpec(path string) (PromptSpec, error) {
	var spec PromptSpec
	if path == "" {
		return spec, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return spec, err
	}
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return spec, err
	}
	return spec, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messages lays out the conversation sent for one prompt.
func (s PromptSpec) messages(prompt string) []message {
	out := make([]message, 0, 2)
	if s.System != "" {
		out = append(out, message{Role: "system", Content: s.System})
	}
	return append(out, message{Role: "user", Content: prompt})
}

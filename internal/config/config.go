package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

type Config struct {
	Port          string
	AllowedOrigin []string
	LogLevel      string
	// Model backend
	Provider      string
	Model         string
	OllamaURL     string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	PromptFile    string
	ModelTimeout  time.Duration
	// Per-client rate limit on /api/chat; zero RPS disables it
	RateLimitRPS   float64
	RateLimitBurst int
	// Honor X-Forwarded-For and friends; only behind a proxy that sets them
	TrustProxy bool
	// Interactive client
	EndpointURL   string
	ClientTimeout time.Duration
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:           getEnvDefault("PORT", "5001"),
		AllowedOrigin:  getEnvListDefault("ALLOWED_ORIGIN", []string{"*"}),
		LogLevel:       getEnvDefault("LOG_LEVEL", "info"),
		Provider:       strings.ToLower(getEnvDefault("LLM_PROVIDER", ProviderOllama)),
		Model:          getEnvDefault("MODEL", "phi3:mini"),
		OllamaURL:      strings.TrimRight(getEnvDefault("OLLAMA_URL", "http://localhost:11434"), "/"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		PromptFile:     os.Getenv("PROMPT_FILE"),
		ModelTimeout:   getEnvDurationDefault("MODEL_TIMEOUT", 120*time.Second),
		RateLimitRPS:   getEnvFloatDefault("RATE_LIMIT_RPS", 0),
		RateLimitBurst: getEnvIntDefault("RATE_LIMIT_BURST", 5),
		TrustProxy:     getEnvBoolDefault("TRUST_PROXY", false),
		ClientTimeout:  getEnvDurationDefault("CHAT_CLIENT_TIMEOUT", 60*time.Second),
	}
	cfg.EndpointURL = getEnvDefault("CHAT_ENDPOINT_URL", "http://localhost:"+cfg.Port+"/api/chat")
	if cfg.Provider == ProviderOpenAI && cfg.OpenAIAPIKey == "" && cfg.OpenAIBaseURL == "" {
		log.Println("warning: LLM_PROVIDER=openai but OPENAI_API_KEY is not set; model calls will fail until provided")
	}
	return cfg
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvListDefault(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			s := strings.TrimSpace(p)
			if s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}

func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			return d
		}
		log.Printf("warning: invalid duration %s=%q, using %s", key, v, def)
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
		log.Printf("warning: invalid integer %s=%q, using %d", key, v, def)
	}
	return def
}

func getEnvFloatDefault(key string, def float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return f
		}
		log.Printf("warning: invalid number %s=%q, using %g", key, v, def)
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("warning: invalid boolean %s=%q, using %t", key, v, def)
	}
	return def
}

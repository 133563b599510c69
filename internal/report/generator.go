package report

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/metalagman/taskcanvas/internal/config"
)

const (
	// ProviderOpenAI selects the OpenAI responses API.
	ProviderOpenAI = "openai"
	// ProviderGemini selects the Gemini API.
	ProviderGemini = "gemini"

	defaultTimeout = 60 * time.Second
)

// Generator produces report text from a prompt.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// NewGenerator builds the backend selected in cfg. httpClient may be nil.
func NewGenerator(ctx context.Context, cfg config.ReportConfig, httpClient *http.Client) (Generator, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("report model is required")
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderOpenAI:
		key, err := apiKey(cfg.APIKeyEnv, "OPENAI_API_KEY")
		if err != nil {
			return nil, err
		}
		return NewOpenAI(model, key, cfg.BaseURL, timeout, httpClient), nil
	case ProviderGemini:
		key, err := apiKey(cfg.APIKeyEnv, "GEMINI_API_KEY")
		if err != nil {
			return nil, err
		}
		return NewGemini(ctx, model, key, cfg.BaseURL, timeout, httpClient)
	default:
		return nil, fmt.Errorf("unknown report provider %q", cfg.Provider)
	}
}

func apiKey(envName, fallback string) (string, error) {
	envName = strings.TrimSpace(envName)
	if envName == "" {
		envName = fallback
	}
	key := strings.TrimSpace(os.Getenv(envName))
	if key == "" {
		return "", fmt.Errorf("report api key is required (set %s)", envName)
	}
	return key, nil
}

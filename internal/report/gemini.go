package report

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Gemini generates reports with the Gemini API.
type Gemini struct {
	model   string
	timeout time.Duration
	client  *genai.Client
}

// NewGemini creates a Gemini backend. An empty baseURL uses the public API.
func NewGemini(ctx context.Context, model, apiKey, baseURL string, timeout time.Duration, httpClient *http.Client) (*Gemini, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: strings.TrimSpace(baseURL),
		},
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{model: model, timeout: timeout, client: client}, nil
}

// Generate sends one generateContent request.
func (g *Gemini) Generate(ctx context.Context, p Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(p.Input), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(p.Instructions, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", fmt.Errorf("gemini response did not contain output text")
	}
	return out, nil
}

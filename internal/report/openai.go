package report

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAI generates reports with the OpenAI responses API.
type OpenAI struct {
	model  string
	client openai.Client
}

// NewOpenAI creates an OpenAI backend. An empty baseURL uses the public API.
func NewOpenAI(model, apiKey, baseURL string, timeout time.Duration, httpClient *http.Client) *OpenAI {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithRequestTimeout(timeout),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &OpenAI{model: model, client: openai.NewClient(opts...)}
}

// Generate sends one responses request.
func (o *OpenAI) Generate(ctx context.Context, p Prompt) (string, error) {
	resp, err := o.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:        o.model,
		Instructions: openai.String(p.Instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(p.Input),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai responses.create: %w", err)
	}
	if msg := strings.TrimSpace(resp.Error.Message); msg != "" {
		return "", fmt.Errorf("openai response failed: %s", msg)
	}
	out := strings.TrimSpace(resp.OutputText())
	if out == "" {
		return "", fmt.Errorf("openai response did not contain output text")
	}
	return out, nil
}

// Package ollama generates answers with a local Ollama server.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	embollama "github.com/quillmind/quillmind/server/internal/embeddings/ollama"
)

// Generator implements llm.Generator over /api/generate.
type Generator struct {
	client *resty.Client
	model  string
}

// New creates a generator for model served at baseURL. timeout bounds a
// single generation.
func New(baseURL, model string, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	c := resty.New().
		SetBaseURL(embollama.NormalizeURL(baseURL)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Generator{client: c, model: model}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

// Generate returns the full, non-streamed completion for prompt.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(generateRequest{Model: g.model, Prompt: prompt, Stream: false}).
		Post("/api/generate")
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	var out generateResponse
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &out); err != nil && resp.StatusCode() == http.StatusOK {
			return "", fmt.Errorf("decode response: %w", err)
		}
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("ollama generate status %d: %s", resp.StatusCode(), out.Error)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama generate error: %s", out.Error)
	}
	return strings.TrimSpace(out.Response), nil
}

// HealthPing implements health.HealthPinger.
func (g *Generator) HealthPing(ctx context.Context) error {
	return embollama.ModelAvailable(ctx, g.client, g.model)
}

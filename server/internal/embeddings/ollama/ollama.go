// Package ollama calls a local Ollama server for embeddings.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Provider implements embeddings.EmbeddingProvider.
type Provider struct {
	client *resty.Client
	model  string
}

// New creates a provider for model served at baseURL.
func New(baseURL, model string) *Provider {
	c := resty.New().
		SetBaseURL(NormalizeURL(baseURL)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(5 * time.Minute)
	return &Provider{client: c, model: model}
}

// NormalizeURL adds a scheme when missing and trims trailing slashes.
func NormalizeURL(base string) string {
	if base == "" {
		base = "http://localhost:11434"
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return strings.TrimRight(base, "/")
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
	Error     string    `json:"error"`
}

// Embed generates a dense vector for text. A non-200 answer triggers one
// best-effort model pull and a single retry.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}

	out, status, err := p.embedOnce(ctx, text)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		p.pullModel(ctx)
		out, status, err = p.embedOnce(ctx, text)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("ollama embeddings status %d: %s (after pull attempt)", status, out.Error)
		}
	}
	if out.Error != "" {
		return nil, fmt.Errorf("ollama embeddings error: %s", out.Error)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned an empty embedding")
	}

	vec := make([]float32, len(out.Embedding))
	for i, v := range out.Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

func (p *Provider) embedOnce(ctx context.Context, text string) (embedResponse, int, error) {
	var out embedResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(embedRequest{Model: p.model, Prompt: text}).
		Post("/api/embeddings")
	if err != nil {
		return out, 0, fmt.Errorf("ollama request: %w", err)
	}
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &out); err != nil && resp.StatusCode() == http.StatusOK {
			return out, 0, fmt.Errorf("decode response: %w", err)
		}
	}
	return out, resp.StatusCode(), nil
}

// pullModel asks Ollama to fetch the model; failures are ignored.
func (p *Provider) pullModel(ctx context.Context) {
	_, _ = p.client.R().SetContext(ctx).SetBody(map[string]any{"name": p.model, "stream": false}).Post("/api/pull")
}

// HealthPing implements health.HealthPinger by checking /api/tags for the
// configured model.
func (p *Provider) HealthPing(ctx context.Context) error {
	return ModelAvailable(ctx, p.client, p.model)
}

// ModelAvailable reports an error unless model is listed by /api/tags.
func ModelAvailable(ctx context.Context, client *resty.Client, model string) error {
	var data struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	resp, err := client.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("ollama status %d", resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return fmt.Errorf("decode tags: %w", err)
	}
	want := baseModelName(model)
	for _, m := range data.Models {
		if baseModelName(m.Name) == want {
			return nil
		}
	}
	return fmt.Errorf("model %s not found", model)
}

func baseModelName(name string) string {
	return strings.Split(name, ":")[0]
}

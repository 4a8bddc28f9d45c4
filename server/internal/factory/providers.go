package factory

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/quillmind/quillmind/server/internal/config"
	emb "github.com/quillmind/quillmind/server/internal/embeddings"
	embollama "github.com/quillmind/quillmind/server/internal/embeddings/ollama"
	"github.com/quillmind/quillmind/server/internal/llm"
	llmollama "github.com/quillmind/quillmind/server/internal/llm/ollama"
)

// NewEmbeddingProvider creates the Ollama embedding provider.
// Launches an async warmup; returns the provider immediately for fast startup.
func NewEmbeddingProvider(ctx context.Context, cfg *config.Config, log zerolog.Logger) emb.EmbeddingProvider {
	var provider emb.EmbeddingProvider = embollama.New(cfg.OllamaURL, cfg.EmbedModel)
	if ttl := cfg.EmbedCacheTTL(); ttl > 0 {
		provider = emb.NewCachedProvider(provider, ttl)
	}

	go func() {
		warmupTimeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
		warmupCtx, cancel := context.WithTimeout(ctx, warmupTimeout)
		defer cancel()

		if vec, err := provider.Embed(warmupCtx, "factory-warmup-check"); err != nil || len(vec) == 0 {
			log.Warn().Err(err).Int("vec_len", len(vec)).
				Str("model", cfg.EmbedModel).
				Msg("embedding provider warmup failed")
		} else {
			log.Debug().Str("model", cfg.EmbedModel).Int("dims", len(vec)).
				Msg("embedding provider warmup completed")
		}
	}()

	return provider
}

// NewGenerator creates the Ollama answer generator.
func NewGenerator(cfg *config.Config) llm.Generator {
	return llmollama.New(cfg.OllamaURL, cfg.LLMModel, cfg.LLMTimeout())
}

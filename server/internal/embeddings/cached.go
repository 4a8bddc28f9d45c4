package embeddings

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/quillmind/quillmind/server/internal/health"
)

// CachedProvider memoises embeddings by input text. Repeated questions and
// unchanged notes skip the provider round trip.
type CachedProvider struct {
	inner EmbeddingProvider
	cache *cache.Cache
}

// NewCachedProvider wraps inner with a cache whose entries live for ttl.
func NewCachedProvider(inner EmbeddingProvider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{inner: inner, cache: cache.New(ttl, 2*ttl)}
}

func (c *CachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		return v.([]float32), nil
	}
	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Set(text, vec, cache.DefaultExpiration)
	return vec, nil
}

// HealthPing forwards to the wrapped provider when it has one.
func (c *CachedProvider) HealthPing(ctx context.Context) error {
	if p, ok := c.inner.(health.HealthPinger); ok {
		return p.HealthPing(ctx)
	}
	_, err := c.inner.Embed(ctx, "health-check")
	return err
}

// Len reports the number of cached vectors.
func (c *CachedProvider) Len() int { return c.cache.ItemCount() }

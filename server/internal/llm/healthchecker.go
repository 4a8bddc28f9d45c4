package llm

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/quillmind/quillmind/server/internal/health"
)

// GeneratorHealthChecker monitors a generator that exposes HealthPing.
// Generators without one are reported healthy; probing by generation is too
// slow to run on a ticker.
type GeneratorHealthChecker struct {
	gen          Generator
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

func NewGeneratorHealthChecker(g Generator, log zerolog.Logger, probeTimeout time.Duration) *GeneratorHealthChecker {
	hc := &GeneratorHealthChecker{gen: g, log: log, probeTimeout: probeTimeout}
	hc.healthy.Store(0)
	return hc
}

func (c *GeneratorHealthChecker) Name() string    { return "llm" }
func (c *GeneratorHealthChecker) IsHealthy() bool { return c.healthy.Load() == 1 }

func (c *GeneratorHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.check(ctx)
		}
	}
}

func (c *GeneratorHealthChecker) check(ctx context.Context) {
	p, ok := c.gen.(health.HealthPinger)
	if !ok {
		c.healthy.Store(1)
		return
	}
	to := c.probeTimeout
	if to <= 0 {
		to = 2 * time.Second
	}
	checkCtx, cancel := context.WithTimeout(ctx, to)
	defer cancel()

	if err := p.HealthPing(checkCtx); err != nil {
		c.healthy.Store(0)
		c.log.Error().Stack().Str("checker", c.Name()).Err(err).Msg("llm health check failed")
		return
	}
	c.healthy.Store(1)
}

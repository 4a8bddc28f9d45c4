// Package notesservice assembles and runs the notes backend.
package notesservice

import (
	"context"
	"io"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/quillmind/quillmind/server/internal/api"
	"github.com/quillmind/quillmind/server/internal/config"
	emb "github.com/quillmind/quillmind/server/internal/embeddings"
	"github.com/quillmind/quillmind/server/internal/factory"
	"github.com/quillmind/quillmind/server/internal/health"
	"github.com/quillmind/quillmind/server/internal/llm"
	"github.com/quillmind/quillmind/server/internal/logger"
	"github.com/quillmind/quillmind/server/internal/services"
	"github.com/quillmind/quillmind/server/internal/store"
)

// Overrides are command-line values applied on top of the environment.
type Overrides struct {
	HTTPPort   int
	DBDriver   string
	SQLitePath string
}

// Run starts the notes service HTTP server and blocks until shutdown or error.
func Run(ov Overrides) error {
	log := logger.New("notes-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	if err := applyOverrides(cfg, ov); err != nil {
		log.Error().Err(err).Msg("Invalid command-line override")
		return err
	}
	if cfg.LogFile != "" {
		log = logger.NewWithFile("notes-service", cfg.LogFile)
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("ollama_url", cfg.OllamaURL).
		Str("embed_model", cfg.EmbedModel).
		Str("llm_model", cfg.LLMModel).
		Msg("Notes service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	st, closer, embProvider, gen, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	svcHealth := startHealthCheckers(ctx, cfg, log, st, embProvider, gen)
	router := buildRouter(st, embProvider, gen, cfg, log, svcHealth.IsHealthy)

	if cfg.SkipStartupHealthWait {
		log.Warn().Msg("skipping startup health wait")
	} else if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

func applyOverrides(cfg *config.Config, ov Overrides) error {
	if ov.HTTPPort > 0 {
		cfg.HTTPPort = ov.HTTPPort
	}
	if ov.DBDriver != "" {
		cfg.DBDriver = ov.DBDriver
	}
	if ov.SQLitePath != "" {
		cfg.SQLitePath = ov.SQLitePath
	}
	return cfg.ResolveDefaults()
}

// initDependencies constructs required components and enforces fail-fast on missing deps.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, io.Closer, emb.EmbeddingProvider, llm.Generator, error) {
	st, closer, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return nil, nil, nil, nil, err
	}
	return st, closer, factory.NewEmbeddingProvider(ctx, cfg, log), factory.NewGenerator(cfg), nil
}

// buildRouter wires HTTP routes to handlers.
func buildRouter(st store.Store, embProvider emb.EmbeddingProvider, gen llm.Generator, cfg *config.Config, log zerolog.Logger, isHealthy func() bool) *mux.Router {
	svc := services.NewNoteService(st, embProvider, gen,
		services.WithEmbedInput(cfg.EmbedInput),
		services.WithTopK(cfg.TopK),
		services.WithLogger(log),
	)
	return api.NewRouter(svc, api.RouterConfig{
		APIKey:    cfg.APIKey,
		IsHealthy: isHealthy,
		Logger:    log,
	})
}

// startHealthCheckers starts component checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, embProvider emb.EmbeddingProvider, gen llm.Generator) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	checkers := []health.HealthChecker{
		store.NewStoreHealthChecker(st, log, probeTimeout),
		emb.NewProviderHealthChecker(embProvider, log, probeTimeout),
		llm.NewGeneratorHealthChecker(gen, log, probeTimeout),
	}
	for _, c := range checkers {
		go c.Start(ctx, interval)
	}

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// Generation can take minutes on a local model.
		WriteTimeout: cfg.LLMTimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout: the
// bootstrap timeout, but never less than two health intervals.
func calculateStartupHealthTimeout(cfg *config.Config) time.Duration {
	timeout := cfg.BootstrapTimeoutSeconds
	if floor := cfg.HealthIntervalSeconds * 2; timeout < floor {
		timeout = floor
	}
	return time.Duration(timeout) * time.Second
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	return health.WaitUntilHealthy(ctx, svcHealth, calculateStartupHealthTimeout(cfg))
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Embed input modes for embedandsave.
const (
	EmbedInputNote    = "note"
	EmbedInputContext = "context"
)

// Config holds the configuration for the notes service.
// Environment variables are parsed from the NOTES_BACKEND_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int    `envconfig:"HTTP_PORT" default:"8080"`
	APIKey   string `envconfig:"API_KEY" default:""`

	// Storage: sqlite (default) or postgres
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	DataDir     string `envconfig:"DATA_DIR" default:"./data"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:""`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Ollama serves both embeddings and generation
	OllamaURL  string `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
	EmbedModel string `envconfig:"EMBED_MODEL" default:"nomic-embed-text"`
	LLMModel   string `envconfig:"LLM_MODEL" default:"llama3.2:3b"`

	// EmbedInput selects what embedandsave embeds: the note itself or the
	// client-supplied context string.
	EmbedInput string `envconfig:"EMBED_INPUT" default:"note"`
	TopK       int    `envconfig:"TOP_K" default:"10"`

	// EmbedCacheTTLSeconds keeps computed embeddings in memory; 0 disables.
	EmbedCacheTTLSeconds int `envconfig:"EMBED_CACHE_TTL_SECONDS" default:"600"`

	// LogFile additionally writes logs to a rotated file when set.
	LogFile string `envconfig:"LOG_FILE" default:""`

	LLMTimeoutSeconds         int  `envconfig:"LLM_TIMEOUT_SECONDS" default:"300"`
	HealthIntervalSeconds     int  `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int  `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
	BootstrapTimeoutSeconds   int  `envconfig:"BOOTSTRAP_TIMEOUT_SECONDS" default:"30"`
	SkipStartupHealthWait     bool `envconfig:"SKIP_STARTUP_HEALTH_WAIT" default:"false"`
}

// ResolveDefaults validates the driver and derived settings.
func (c *Config) ResolveDefaults() error {
	switch c.DBDriver {
	case "", "sqlite":
		c.DBDriver = "sqlite"
		if c.SQLitePath == "" {
			c.SQLitePath = filepath.Join(c.DataDir, "notes.db")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("NOTES_BACKEND_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	switch c.EmbedInput {
	case "":
		c.EmbedInput = EmbedInputNote
	case EmbedInputNote, EmbedInputContext:
	default:
		return fmt.Errorf("unsupported EMBED_INPUT: %s", c.EmbedInput)
	}

	if c.EmbedCacheTTLSeconds < 0 {
		return fmt.Errorf("EMBED_CACHE_TTL_SECONDS must be >= 0, got %d", c.EmbedCacheTTLSeconds)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("TOP_K must be > 0, got %d", c.TopK)
	}
	return nil
}

// New creates a new Config by parsing environment variables
// prefixed with NOTES_BACKEND_, e.g. NOTES_BACKEND_HTTP_PORT.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("NOTES_BACKEND", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("ollama_url", cfg.OllamaURL).
		Str("embed_model", cfg.EmbedModel).
		Str("llm_model", cfg.LLMModel).
		Str("embed_input", cfg.EmbedInput).
		Int("top_k", cfg.TopK).
		Bool("api_key_set", cfg.APIKey != "").
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Environment:               EnvTesting,
		HTTPPort:                  8080,
		DBDriver:                  "sqlite",
		OllamaURL:                 "http://localhost:11434",
		EmbedModel:                "nomic-embed-text",
		LLMModel:                  "llama3.2:3b",
		EmbedInput:                EmbedInputNote,
		TopK:                      10,
		LLMTimeoutSeconds:         300,
		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
		BootstrapTimeoutSeconds:   1,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool { return c.Environment == EnvTesting }

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool { return c.Environment == EnvProduction }

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string { return fmt.Sprintf(":%d", c.HTTPPort) }

// EmbedCacheTTL is how long a computed embedding is reused.
func (c *Config) EmbedCacheTTL() time.Duration {
	return time.Duration(c.EmbedCacheTTLSeconds) * time.Second
}

// LLMTimeout bounds one generation call.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

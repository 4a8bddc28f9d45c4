package client

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the settings a front-end needs to reach the backend. Values
// come from environment variables with the prefix "NOTES_CLIENT_".
type Config struct {
	BaseURL        string        `envconfig:"BASE_URL"        default:"http://localhost:8080"`
	APIKey         string        `envconfig:"API_KEY"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	AskTimeout     time.Duration `envconfig:"ASK_TIMEOUT"     default:"2m"`

	// LoadAttempts bounds the initial fetch; DeleteAttempts bounds each
	// queued backend deletion.
	LoadAttempts   int `envconfig:"LOAD_ATTEMPTS"   default:"3"`
	DeleteAttempts int `envconfig:"DELETE_ATTEMPTS" default:"3"`

	Debug bool `envconfig:"DEBUG" default:"false"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var c Config
	if err := envconfig.Process("NOTES_CLIENT", &c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Options converts the transport-related settings into client options.
func (c Config) Options() []Option {
	var opts []Option
	if c.RequestTimeout > 0 {
		opts = append(opts, WithRequestTimeout(c.RequestTimeout))
	}
	if c.AskTimeout > 0 {
		opts = append(opts, WithAskTimeout(c.AskTimeout))
	}
	if c.APIKey != "" {
		opts = append(opts, WithAPIKey(c.APIKey))
	}
	if c.Debug {
		opts = append(opts, WithDebugLogging(true))
	}
	return opts
}

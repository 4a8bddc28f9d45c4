// Package client is the Go SDK for the quillmind notes backend. It exposes the
// four backend operations (list, delete, embed-and-save, ask) over HTTP with
// per-operation deadlines, optional bearer authentication and classified
// errors.
package client

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quillmind/quillmind/client/internal/api"
)

const (
	defaultRequestTimeout = 10 * time.Second
	defaultAskTimeout     = 2 * time.Minute
)

// Client talks to a single notes backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	apiKey  string
	logger  zerolog.Logger

	requestTimeout time.Duration
	askTimeout     time.Duration

	closedOnce uint32
}

// New constructs a Client for baseURL. Options are applied in order.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrEmptyBaseURL
	}

	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &http.Client{Timeout: 5 * time.Minute},
		logger:         zerolog.Nop(),
		requestTimeout: defaultRequestTimeout,
		askTimeout:     defaultAskTimeout,
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.wrapTransport()
	return c, nil
}

// wrapTransport installs the header transport on top of whatever the options
// configured, so every request carries a request id and, when set, the key.
func (c *Client) wrapTransport() {
	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.http.Transport = &headerTransport{base: base, apiKey: c.apiKey}
}

// headerTransport adds the Authorization and X-Request-ID headers.
type headerTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	if t.apiKey != "" {
		cloned.Header.Set("Authorization", "Bearer "+t.apiKey)
	}
	if cloned.Header.Get("X-Request-ID") == "" {
		cloned.Header.Set("X-Request-ID", uuid.NewString())
	}
	return t.base.RoundTrip(cloned)
}

// Close releases idle connections. Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	c.http.CloseIdleConnections()
	return nil
}

// BaseURL returns the normalised backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// --------------------------------------------------------------------
// Note operations - delegated to internal/api
// --------------------------------------------------------------------

// GetAllNotes returns every persisted note.
func (c *Client) GetAllNotes(ctx context.Context) ([]Note, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	start := time.Now()
	notes, err := api.GetAllNotes(ctx, c.http, c.baseURL)
	c.observe("getallnotes", start, err)
	return notes, err
}

// DeleteNote removes a persisted note. Deleting an unknown id succeeds.
func (c *Client) DeleteNote(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	start := time.Now()
	err := api.DeleteNote(ctx, c.http, c.baseURL, id)
	c.observe("deletenote", start, err)
	return err
}

// EmbedAndSave persists a note with its embedding and returns the canonical
// record, whose id replaces any provisional one.
func (c *Client) EmbedAndSave(ctx context.Context, req EmbedAndSaveRequest) (*Note, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	start := time.Now()
	note, err := api.EmbedAndSave(ctx, c.http, c.baseURL, req)
	c.observe("embedandsave", start, err)
	return note, err
}

// Ask sends a question with the caller's note context and returns the answer.
func (c *Client) Ask(ctx context.Context, question, notesContext string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.askTimeout)
	defer cancel()

	start := time.Now()
	answer, err := api.Ask(ctx, c.http, c.baseURL, AskRequest{Question: question, NotesContext: notesContext})
	c.observe("llm_req", start, err)
	return answer, err
}

func (c *Client) observe(op string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case IsTimeout(err):
		outcome = "timeout"
	default:
		outcome = "error"
	}
	requestsTotal.WithLabelValues(op, outcome).Inc()
	requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Debug().Err(err).Str("op", op).Dur("elapsed", time.Since(start)).Msg("backend call failed")
	}
}

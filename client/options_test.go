package client

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestWithHTTPTimeoutAndDebugLogging(t *testing.T) {
	c := &Client{http: &http.Client{}}
	if err := WithHTTPTimeout(5 * time.Second)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.http.Timeout != 5*time.Second {
		t.Fatalf("http timeout not set")
	}
	if err := WithHTTPTimeout(0)(c); err == nil {
		t.Fatalf("expected error for zero timeout")
	}

	var called bool
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		called = true
		return &http.Response{StatusCode: 200, Body: http.NoBody, Header: make(http.Header)}, nil
	})
	c2, err := New("http://example.com", WithHTTPClient(&http.Client{Transport: rt}), WithDebugLogging(true))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://example.com", strings.NewReader(""))
	if _, err := c2.http.Do(req); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if !called {
		t.Fatalf("base transport not invoked")
	}
}

func TestNew_RejectsEmptyBaseURL(t *testing.T) {
	if _, err := New("  "); err != ErrEmptyBaseURL {
		t.Fatalf("expected ErrEmptyBaseURL, got %v", err)
	}
}

func TestNew_OptionErrorPropagates(t *testing.T) {
	if _, err := New("http://example.com", WithAskTimeout(-time.Second)); err == nil {
		t.Fatalf("expected option error")
	}
}

func TestNew_AutoEnableDebugViaEnv(t *testing.T) {
	t.Setenv("NOTES_DEBUG", "true")
	c, err := New("http://example.com")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ht, ok := c.http.Transport.(*headerTransport)
	if !ok {
		t.Fatalf("expected headerTransport on top, got %T", c.http.Transport)
	}
	if _, ok := ht.base.(*debugTransport); !ok {
		t.Fatalf("expected debugTransport underneath when NOTES_DEBUG=true, got %T", ht.base)
	}
}

func TestDebugTransport_ErrorPath(t *testing.T) {
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, context.DeadlineExceeded
	})
	c, err := New("http://example.com", WithHTTPClient(&http.Client{Transport: rt}), WithDebugLogging(true))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://example.com", http.NoBody)
	if _, err := c.http.Do(req); err == nil {
		t.Fatalf("expected error from underlying transport")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("NOTES_CLIENT_BASE_URL", "http://notes:9000")
	t.Setenv("NOTES_CLIENT_ASK_TIMEOUT", "30s")
	t.Setenv("NOTES_CLIENT_API_KEY", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BaseURL != "http://notes:9000" || cfg.AskTimeout != 30*time.Second || cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.LoadAttempts != 3 || cfg.DeleteAttempts != 3 {
		t.Fatalf("unexpected attempts: %+v", cfg)
	}

	c, err := New(cfg.BaseURL, cfg.Options()...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.askTimeout != 30*time.Second || c.apiKey != "secret" {
		t.Fatalf("options not applied: ask=%v key=%q", c.askTimeout, c.apiKey)
	}
}

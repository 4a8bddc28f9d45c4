package embeddings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type stubProvider struct{ err error }

func (s stubProvider) Embed(context.Context, string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float32{1, 2}, nil
}

type pingProvider struct {
	stubProvider
	pingErr error
}

func (p pingProvider) HealthPing(context.Context) error { return p.pingErr }

func TestProviderHealthChecker(t *testing.T) {
	cases := []struct {
		name string
		p    EmbeddingProvider
		want bool
	}{
		{"embed ok", stubProvider{}, true},
		{"embed fails", stubProvider{err: errors.New("down")}, false},
		{"ping preferred", pingProvider{stubProvider: stubProvider{err: errors.New("unused")}}, true},
		{"ping fails", pingProvider{pingErr: errors.New("model missing")}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hc := NewProviderHealthChecker(tc.p, zerolog.Nop(), time.Second)
			hc.check(context.Background())
			if hc.IsHealthy() != tc.want {
				t.Fatalf("IsHealthy = %v, want %v", hc.IsHealthy(), tc.want)
			}
		})
	}
}

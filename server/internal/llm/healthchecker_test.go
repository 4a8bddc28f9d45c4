package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type plainGen struct{}

func (plainGen) Generate(context.Context, string) (string, error) { return "", nil }

type pingGen struct {
	plainGen
	err error
}

func (p *pingGen) HealthPing(context.Context) error { return p.err }

func TestGeneratorHealthChecker(t *testing.T) {
	ctx := context.Background()

	c := NewGeneratorHealthChecker(plainGen{}, zerolog.Nop(), time.Second)
	c.check(ctx)
	if !c.IsHealthy() {
		t.Fatal("generator without HealthPing should be healthy")
	}

	pg := &pingGen{err: errors.New("model not pulled")}
	c = NewGeneratorHealthChecker(pg, zerolog.Nop(), time.Second)
	c.check(ctx)
	if c.IsHealthy() {
		t.Fatal("expected unhealthy")
	}
	pg.err = nil
	c.check(ctx)
	if !c.IsHealthy() {
		t.Fatal("expected healthy after recovery")
	}
	if c.Name() != "llm" {
		t.Fatalf("name = %q", c.Name())
	}
}

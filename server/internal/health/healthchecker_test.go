package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeChecker struct {
	name    string
	healthy atomic.Int32
}

func (f *fakeChecker) Name() string                               { return f.name }
func (f *fakeChecker) IsHealthy() bool                            { return f.healthy.Load() == 1 }
func (f *fakeChecker) Start(ctx context.Context, _ time.Duration) {}

func TestServiceHealthChecker_Transitions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := &fakeChecker{name: "store"}
	b := &fakeChecker{name: "embedder"}
	a.healthy.Store(1)
	b.healthy.Store(1)

	svc := NewServiceHealthChecker(zerolog.Nop(), a, b)
	go svc.Start(ctx, 10*time.Millisecond)

	waitTrue(t, func() bool { return svc.IsHealthy() })

	b.healthy.Store(0)
	waitTrue(t, func() bool { return !svc.IsHealthy() })
	if down := svc.Unhealthy(); len(down) != 1 || down[0] != "embedder" {
		t.Fatalf("unexpected unhealthy list: %v", down)
	}

	b.healthy.Store(1)
	waitTrue(t, func() bool { return svc.IsHealthy() })
}

func TestWaitUntilHealthy_Timeout(t *testing.T) {
	a := &fakeChecker{name: "store"}
	svc := NewServiceHealthChecker(zerolog.Nop(), a)

	err := WaitUntilHealthy(context.Background(), svc, 50*time.Millisecond)
	var se *StartupError
	if !errors.As(err, &se) {
		t.Fatalf("expected StartupError, got %v", err)
	}
	if len(se.Down) != 1 || se.Down[0] != "store" {
		t.Fatalf("unexpected down list: %v", se.Down)
	}
}

func TestWaitUntilHealthy_Succeeds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a := &fakeChecker{name: "store"}
	a.healthy.Store(1)
	svc := NewServiceHealthChecker(zerolog.Nop(), a)
	go svc.Start(ctx, 10*time.Millisecond)

	if err := WaitUntilHealthy(ctx, svc, time.Second); err != nil {
		t.Fatalf("WaitUntilHealthy: %v", err)
	}
}

func waitTrue(t *testing.T, pred func() bool) {
	t.Helper()
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if pred() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before timeout")
}

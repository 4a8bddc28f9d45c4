package shardqueue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	clerrors "github.com/quillmind/quillmind/client/internal/errors"
)

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for job")
	}
}

func TestExecutor_FIFOPerKey(t *testing.T) {
	t.Parallel()
	ex := New(Config{Shards: 4, QueueSize: 16})
	defer ex.Stop()

	var (
		mu    sync.Mutex
		order []int
	)
	for i := 0; i < 8; i++ {
		v := i
		if err := ex.Submit(context.Background(), "slot-1", JobFunc(func(context.Context) error {
			mu.Lock()
			order = append(order, v)
			mu.Unlock()
			return nil
		})); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ex.Barrier(ctx, "slot-1"); err != nil {
		t.Fatalf("barrier: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		if i != v {
			t.Fatalf("expected FIFO order, got %v", order)
		}
	}
}

func TestExecutor_DifferentKeysDoNotBlock(t *testing.T) {
	t.Parallel()
	ex := New(Config{Shards: 2, QueueSize: 4})
	defer ex.Stop()

	keyA := "a"
	keyB := "b"
	for i := 0; i < 100 && ex.shardFor(keyB) == ex.shardFor(keyA); i++ {
		keyB += "b"
	}

	release := make(chan struct{})
	defer close(release)
	_ = ex.Submit(context.Background(), keyA, JobFunc(func(context.Context) error {
		<-release
		return nil
	}))

	ran := make(chan struct{})
	_ = ex.Submit(context.Background(), keyB, JobFunc(func(context.Context) error {
		close(ran)
		return nil
	}))
	waitFor(t, ran)
}

func TestExecutor_QueueFull(t *testing.T) {
	t.Parallel()
	ex := New(Config{Shards: 1, QueueSize: 1, EnqueueTimeout: 10 * time.Millisecond})
	defer ex.Stop()

	release := make(chan struct{})
	started := make(chan struct{})
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	waitFor(t, started)

	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error { return nil }))
	err := ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error { return nil }))
	close(release)

	var qf *QueueFullError
	if !errors.As(err, &qf) || !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected queue full error, got %v", err)
	}
	if qf.Capacity != 1 {
		t.Fatalf("unexpected capacity: %+v", qf)
	}
}

func TestExecutor_RetriesRecoverable(t *testing.T) {
	t.Parallel()
	ex := New(Config{Shards: 1, MaxAttempts: 3, BaseBackoff: time.Millisecond})
	defer ex.Stop()

	var attempts int32
	done := make(chan struct{})
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}))
	waitFor(t, done)
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Fatalf("attempts = %d, want 3", got)
	}
}

func TestExecutor_IrrecoverableNotRetried(t *testing.T) {
	t.Parallel()
	handled := make(chan error, 1)
	ex := New(Config{Shards: 1, MaxAttempts: 5, BaseBackoff: time.Millisecond, ErrorHandler: func(err error) { handled <- err }})
	defer ex.Stop()

	var attempts int32
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		atomic.AddInt32(&attempts, 1)
		return clerrors.Permanent(errors.New("bad request"))
	}))

	select {
	case err := <-handled:
		if !clerrors.IsIrrecoverable(err) {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("error handler not called")
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Fatalf("attempts = %d, want 1", got)
	}
}

func TestExecutor_SkipsCanceledJob(t *testing.T) {
	t.Parallel()
	handled := make(chan error, 1)
	ex := New(Config{Shards: 1, QueueSize: 4, ErrorHandler: func(err error) { handled <- err }})
	defer ex.Stop()

	release := make(chan struct{})
	started := make(chan struct{})
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	waitFor(t, started)

	jobCtx, cancelJob := context.WithCancel(context.Background())
	var ran int32
	_ = ex.Submit(jobCtx, "k", JobFunc(func(context.Context) error {
		atomic.StoreInt32(&ran, 1)
		return nil
	}))
	cancelJob()
	close(release)

	select {
	case err := <-handled:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("error handler not called for canceled job")
	}
	if atomic.LoadInt32(&ran) != 0 {
		t.Fatal("canceled job must not run")
	}
}

func TestExecutor_PanicKeepsWorkerAlive(t *testing.T) {
	t.Parallel()
	ex := New(Config{Shards: 1})
	defer ex.Stop()

	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error { panic("boom") }))

	ran := make(chan struct{})
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		close(ran)
		return nil
	}))
	waitFor(t, ran)
}

func TestExecutor_StopDrainsAndRejects(t *testing.T) {
	t.Parallel()
	ex := New(Config{Shards: 1, QueueSize: 8})

	var count int32
	for i := 0; i < 5; i++ {
		_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
			atomic.AddInt32(&count, 1)
			return nil
		}))
	}
	ex.Stop()
	ex.Stop()

	if got := atomic.LoadInt32(&count); got != 5 {
		t.Fatalf("drained %d jobs, want 5", got)
	}
	if err := ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error { return nil })); !errors.Is(err, ErrExecutorClosed) {
		t.Fatalf("expected ErrExecutorClosed, got %v", err)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SQ_SHARDS", "8")
	t.Setenv("SQ_QUEUE_SIZE", "256")
	t.Setenv("SQ_MAX_ATTEMPTS", "3")
	t.Setenv("SQ_BASE_BACKOFF", "250ms")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Shards != 8 || cfg.QueueSize != 256 || cfg.MaxAttempts != 3 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.BaseBackoff != 250*time.Millisecond || cfg.EnqueueTimeout != 100*time.Millisecond {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
}

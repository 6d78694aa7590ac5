package workpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rowkeeper/internal/platform/config"
	perr "rowkeeper/internal/platform/errors"
	kit "rowkeeper/internal/platform/testkit"
)

func TestRunsSubmittedTasks(t *testing.T) {
	p := New(Config{Workers: 2, Queue: 8})
	var n atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		if err := p.Submit("count", func(context.Context) { n.Add(1); wg.Done() }); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	wg.Wait()
	if n.Load() != 8 {
		t.Fatalf("ran %d tasks", n.Load())
	}
	if err := p.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestFullQueueIsUnavailable(t *testing.T) {
	p := New(Config{Workers: 1, Queue: 1})
	release := make(chan struct{})
	started := make(chan struct{})

	if err := p.Submit("block", func(context.Context) { close(started); <-release }); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	<-started
	if err := p.Submit("queued", func(context.Context) {}); err != nil {
		t.Fatalf("second Submit should queue: %v", err)
	}
	err := p.Submit("overflow", func(context.Context) {})
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("overflow err = %v", err)
	}
	if p.Queued() != 1 || p.Running() != 1 {
		t.Fatalf("queued=%d running=%d", p.Queued(), p.Running())
	}
	close(release)
	_ = p.Close(context.Background())
}

func TestPanicDoesNotKillWorker(t *testing.T) {
	p := New(Config{Workers: 1, Queue: 4})
	done := make(chan struct{})
	_ = p.Submit("boom", func(context.Context) { panic("boom") })
	_ = p.Submit("after", func(context.Context) { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive the panic")
	}
	_ = p.Close(context.Background())
}

func TestCloseDrainsThenRejects(t *testing.T) {
	p := New(Config{Workers: 1, Queue: 4})
	var n atomic.Int32
	for i := 0; i < 4; i++ {
		_ = p.Submit("slow", func(context.Context) { time.Sleep(5 * time.Millisecond); n.Add(1) })
	}
	if err := p.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n.Load() != 4 {
		t.Fatalf("drained %d of 4", n.Load())
	}
	if err := p.Submit("late", func(context.Context) {}); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("submit after close = %v", err)
	}
	kit.MustNotPanic(t, func() { _ = p.Close(context.Background()) })
}

func TestCloseDeadlineCancelsBase(t *testing.T) {
	p := New(Config{Workers: 1, Queue: 1})
	cancelled := make(chan struct{})
	_ = p.Submit("wait", func(ctx context.Context) {
		<-ctx.Done()
		close(cancelled)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := p.Close(ctx); err != context.DeadlineExceeded {
		t.Fatalf("Close = %v", err)
	}
	select {
	case <-cancelled:
	default:
		t.Fatal("task should have observed cancellation")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("WP_WORKERS", "7")
	cfg := ConfigFromEnv(config.New().Prefix("WP_"))
	if cfg.Workers != 7 || cfg.Queue != 64 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	kit "rowkeeper/internal/platform/testkit"
)

func recorder(name string, got *sync.Map) Observer[int] {
	return ObserverFunc[int]{Label: name, Fn: func(_ context.Context, ev int) error {
		got.Store(name, ev)
		return nil
	}}
}

func TestPublishReachesEveryObserver(t *testing.T) {
	n := New[int](0)
	var got sync.Map
	n.Subscribe(recorder("a", &got))
	n.Subscribe(recorder("b", &got))

	n.Publish(context.Background(), 42)
	if err := n.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	for _, k := range []string{"a", "b"} {
		if v, ok := got.Load(k); !ok || v.(int) != 42 {
			t.Fatalf("observer %s got %v", k, v)
		}
	}
}

func TestFailingObserversAreIsolated(t *testing.T) {
	n := New[int](0)
	var got sync.Map
	n.Subscribe(ObserverFunc[int]{Label: "panics", Fn: func(context.Context, int) error { panic("nope") }})
	n.Subscribe(ObserverFunc[int]{Label: "errors", Fn: func(context.Context, int) error { return errors.New("down") }})
	n.Subscribe(recorder("ok", &got))

	kit.MustNotPanic(t, func() { n.Publish(context.Background(), 7) })
	_ = n.Close(context.Background())

	if _, ok := got.Load("ok"); !ok {
		t.Fatalf("healthy observer should still run")
	}
	if n.Failed() != 2 {
		t.Fatalf("Failed = %d", n.Failed())
	}
}

func TestPublishDoesNotWait(t *testing.T) {
	n := New[int](0)
	release := make(chan struct{})
	n.Subscribe(ObserverFunc[int]{Label: "slow", Fn: func(context.Context, int) error { <-release; return nil }})

	start := time.Now()
	n.Publish(context.Background(), 1)
	if time.Since(start) > time.Second {
		t.Fatalf("Publish blocked on observer")
	}
	close(release)
	_ = n.Close(context.Background())
}

func TestSaturationDrops(t *testing.T) {
	n := New[int](1)
	release := make(chan struct{})
	var calls atomic.Int32
	n.Subscribe(ObserverFunc[int]{Label: "slow", Fn: func(context.Context, int) error {
		calls.Add(1)
		<-release
		return nil
	}})

	n.Publish(context.Background(), 1)
	n.Publish(context.Background(), 2)
	if n.Dropped() != 1 {
		t.Fatalf("Dropped = %d", n.Dropped())
	}
	close(release)
	_ = n.Close(context.Background())
	if calls.Load() != 1 {
		t.Fatalf("calls = %d", calls.Load())
	}
}

func TestObserverOutlivesRequestContext(t *testing.T) {
	n := New[int](0)
	var sawCancel atomic.Bool
	gate := make(chan struct{})
	n.Subscribe(ObserverFunc[int]{Label: "ctx", Fn: func(ctx context.Context, _ int) error {
		<-gate
		sawCancel.Store(ctx.Err() != nil)
		return nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	n.Publish(ctx, 1)
	cancel()
	close(gate)
	_ = n.Close(context.Background())
	if sawCancel.Load() {
		t.Fatalf("observer context should not inherit request cancellation")
	}
}

func TestCloseHonoursDeadline(t *testing.T) {
	n := New[int](0)
	release := make(chan struct{})
	defer close(release)
	n.Subscribe(ObserverFunc[int]{Label: "stuck", Fn: func(context.Context, int) error { <-release; return nil }})
	n.Publish(context.Background(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := n.Close(ctx); err != context.DeadlineExceeded {
		t.Fatalf("Close = %v", err)
	}
	n.Publish(context.Background(), 2) // discarded after close
}

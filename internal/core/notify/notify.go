// Package notify fans events out to observers without making the publisher wait
//
// Every observer runs on its own goroutine. A panic or error inside one is recovered
// and logged at this boundary; neither the publisher nor the other observers see it.
// In-flight deliveries are capped; once the cap is reached further deliveries are
// dropped and counted rather than queued.
package notify

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"rowkeeper/internal/platform/logger"
)

// Observer reacts to a published event
type Observer[E any] interface {
	Name() string
	Observe(ctx context.Context, ev E) error
}

// ObserverFunc adapts a function into an Observer
type ObserverFunc[E any] struct {
	Label string
	Fn    func(ctx context.Context, ev E) error
}

// Name implements Observer
func (f ObserverFunc[E]) Name() string { return f.Label }

// Observe implements Observer
func (f ObserverFunc[E]) Observe(ctx context.Context, ev E) error { return f.Fn(ctx, ev) }

// DefaultMaxInFlight caps concurrent observer goroutines
const DefaultMaxInFlight = 256

// Notifier dispatches events of type E
type Notifier[E any] struct {
	mu        sync.RWMutex
	observers []Observer[E]
	closed    bool

	sem     chan struct{}
	wg      sync.WaitGroup
	dropped atomic.Int64
	failed  atomic.Int64
}

// New builds a Notifier allowing maxInFlight concurrent deliveries
func New[E any](maxInFlight int) *Notifier[E] {
	if maxInFlight <= 0 {
		maxInFlight = DefaultMaxInFlight
	}
	return &Notifier[E]{sem: make(chan struct{}, maxInFlight)}
}

// Subscribe registers o for subsequent events
func (n *Notifier[E]) Subscribe(o Observer[E]) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.observers = append(n.observers, o)
}

// Publish hands ev to every observer and returns immediately. Observers get a context
// that keeps ctx's values but not its cancellation
func (n *Notifier[E]) Publish(ctx context.Context, ev E) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		logger.C(ctx).Warn().Msg("notifier closed; event discarded")
		return
	}

	detached := context.WithoutCancel(ctx)
	for _, o := range n.observers {
		select {
		case n.sem <- struct{}{}:
		default:
			n.dropped.Add(1)
			logger.C(ctx).Warn().Str("observer", o.Name()).Msg("observer saturated; event dropped")
			continue
		}
		n.wg.Add(1)
		go n.deliver(detached, o, ev)
	}
}

func (n *Notifier[E]) deliver(ctx context.Context, o Observer[E], ev E) {
	defer n.wg.Done()
	defer func() { <-n.sem }()
	defer func() {
		if r := recover(); r != nil {
			n.failed.Add(1)
			logger.C(ctx).Error().
				Str("observer", o.Name()).
				Err(fmt.Errorf("panic: %v", r)).
				Bytes("stack", debug.Stack()).
				Msg("observer panicked")
		}
	}()
	if err := o.Observe(ctx, ev); err != nil {
		n.failed.Add(1)
		logger.C(ctx).Error().Err(err).Str("observer", o.Name()).Msg("observer failed")
	}
}

// Dropped counts deliveries skipped because the in-flight cap was reached
func (n *Notifier[E]) Dropped() int64 { return n.dropped.Load() }

// Failed counts deliveries that returned an error or panicked
func (n *Notifier[E]) Failed() int64 { return n.failed.Load() }

// Close stops accepting events and waits for in-flight observers or ctx, whichever ends first
func (n *Notifier[E]) Close(ctx context.Context) error {
	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

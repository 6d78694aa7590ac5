// Package workpool runs tasks on a fixed set of goroutines fed by a bounded queue
package workpool

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"rowkeeper/internal/platform/config"
	perr "rowkeeper/internal/platform/errors"
	"rowkeeper/internal/platform/logger"
)

// Task receives the pool's base context, which is cancelled when Close gives up waiting
type Task func(ctx context.Context)

// Config sizes the pool
type Config struct {
	Workers int
	Queue   int
}

// ConfigFromEnv reads WORKERS (default 4) and QUEUE (default 64) under cfg's prefix
func ConfigFromEnv(cfg config.Conf) Config {
	return Config{
		Workers: cfg.MayInt("WORKERS", 4),
		Queue:   cfg.MayInt("QUEUE", 64),
	}
}

type job struct {
	name string
	run  Task
}

// Pool is a fixed worker pool
type Pool struct {
	queue  chan job
	base   context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	running atomic.Int64
}

// New starts cfg.Workers goroutines; zero values fall back to 4 workers and a queue of 64
func New(cfg Config) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Queue < 0 {
		cfg.Queue = 0
	}
	base, cancel := context.WithCancel(context.Background())
	p := &Pool{
		queue:  make(chan job, cfg.Queue),
		base:   base,
		cancel: cancel,
	}
	for i := 0; i < cfg.Workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
	return p
}

// Submit enqueues t without blocking. A full queue or a closed pool yields ErrorCodeUnavailable
func (p *Pool) Submit(name string, t Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return perr.Unavailablef("worker pool is shutting down")
	}
	select {
	case p.queue <- job{name: name, run: t}:
		return nil
	default:
		return perr.Unavailablef("worker queue is full")
	}
}

// Queued is the number of tasks waiting for a worker
func (p *Pool) Queued() int { return len(p.queue) }

// Running is the number of tasks currently executing
func (p *Pool) Running() int { return int(p.running.Load()) }

// Close stops intake and drains queued tasks. When ctx ends first the base context is
// cancelled so in-flight tasks can bail out, and ctx's error is returned
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		return ctx.Err()
	}
}

func (p *Pool) work() {
	defer p.wg.Done()
	for j := range p.queue {
		p.exec(j)
	}
}

func (p *Pool) exec(j job) {
	p.running.Add(1)
	defer p.running.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			logger.Named("workpool").Error().
				Str("task", j.name).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("task panicked")
		}
	}()
	j.run(p.base)
}

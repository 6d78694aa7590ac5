// Package ratelimit implements per client token buckets with continuous refill
//
// Buckets live in a fixed size LRU; a client evicted from it starts again with a
// full bucket. Each bucket has its own lock so distinct clients never contend.
package ratelimit

import (
	"sync"
	"time"

	"rowkeeper/internal/platform/config"

	lru "github.com/hashicorp/golang-lru"
)

// Options configures a Limiter
type Options struct {
	// Capacity is the burst size
	Capacity float64
	// RefillTokens are added every RefillPeriod, spread continuously
	RefillTokens float64
	RefillPeriod time.Duration
	// MaxClients bounds the bucket store
	MaxClients int
	// Now is the time source, time.Now when nil
	Now func() time.Time
}

// DefaultOptions allow a burst of 10 refilled at 10 tokens per 10 seconds
func DefaultOptions() Options {
	return Options{Capacity: 10, RefillTokens: 10, RefillPeriod: 10 * time.Second, MaxClients: 10000}
}

// FromConfig reads CAPACITY, REFILL_TOKENS, REFILL_PERIOD and MAX_CLIENTS under cfg's prefix
func FromConfig(cfg config.Conf) Options {
	d := DefaultOptions()
	return Options{
		Capacity:     cfg.MayFloat64("CAPACITY", d.Capacity),
		RefillTokens: cfg.MayFloat64("REFILL_TOKENS", d.RefillTokens),
		RefillPeriod: cfg.MayDuration("REFILL_PERIOD", d.RefillPeriod),
		MaxClients:   cfg.MayInt("MAX_CLIENTS", d.MaxClients),
	}
}

// Bucket is one client's token state
type Bucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	rate       float64 // tokens per second
	lastRefill time.Time
}

// Tokens reports the tokens currently held, without refilling
func (b *Bucket) Tokens() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tokens
}

func (b *Bucket) take(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if elapsed := now.Sub(b.lastRefill).Seconds(); elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed*b.rate)
		b.lastRefill = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Limiter admits or rejects requests per client key
type Limiter struct {
	opt     Options
	rate    float64
	buckets *lru.Cache
	now     func() time.Time
}

// New validates o, filling zero fields from DefaultOptions
func New(o Options) (*Limiter, error) {
	d := DefaultOptions()
	if o.Capacity <= 0 {
		o.Capacity = d.Capacity
	}
	if o.RefillTokens <= 0 {
		o.RefillTokens = d.RefillTokens
	}
	if o.RefillPeriod <= 0 {
		o.RefillPeriod = d.RefillPeriod
	}
	if o.MaxClients <= 0 {
		o.MaxClients = d.MaxClients
	}
	now := o.Now
	if now == nil {
		now = time.Now
	}
	cache, err := lru.New(o.MaxClients)
	if err != nil {
		return nil, err
	}
	return &Limiter{
		opt:     o,
		rate:    o.RefillTokens / o.RefillPeriod.Seconds(),
		buckets: cache,
		now:     now,
	}, nil
}

// Admit takes one token from key's bucket, creating a full bucket on first sight
func (l *Limiter) Admit(key string) bool {
	now := l.now()
	return l.bucket(key, now).take(now)
}

// Bucket returns key's bucket if it is still tracked
func (l *Limiter) Bucket(key string) (*Bucket, bool) {
	v, ok := l.buckets.Peek(key)
	if !ok {
		return nil, false
	}
	return v.(*Bucket), true
}

// Len is the number of tracked clients
func (l *Limiter) Len() int { return l.buckets.Len() }

func (l *Limiter) bucket(key string, now time.Time) *Bucket {
	if v, ok := l.buckets.Get(key); ok {
		return v.(*Bucket)
	}
	fresh := &Bucket{capacity: l.opt.Capacity, tokens: l.opt.Capacity, rate: l.rate, lastRefill: now}
	// a concurrent first request may have won the race, use its bucket
	if prev, found, _ := l.buckets.PeekOrAdd(key, fresh); found {
		return prev.(*Bucket)
	}
	return fresh
}

package service

import (
	"context"
	"sync"

	"rowkeeper/internal/services/ingest/domain"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultJobHistory bounds how many bulk jobs stay queryable
const DefaultJobHistory = 1024

// Pending is a submitted bulk job; Wait blocks until the writer returns
type Pending struct {
	JobID    string
	Strategy domain.Strategy
	Count    int

	done    chan struct{}
	once    sync.Once
	outcome domain.Outcome
	err     error
}

func newPending(id string, s domain.Strategy, n int) *Pending {
	return &Pending{JobID: id, Strategy: s, Count: n, done: make(chan struct{})}
}

// finish records the result once and releases waiters
func (p *Pending) finish(out domain.Outcome, err error) {
	p.once.Do(func() {
		p.outcome, p.err = out, err
		close(p.done)
	})
}

// Done is closed when the job has finished
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait returns the outcome, or ctx.Err() if ctx ends first
func (p *Pending) Wait(ctx context.Context) (domain.Outcome, error) {
	select {
	case <-p.done:
		return p.outcome, p.err
	case <-ctx.Done():
		return domain.Outcome{}, ctx.Err()
	}
}

// View snapshots the job for the status endpoint
func (p *Pending) View() domain.JobView {
	v := domain.JobView{JobID: p.JobID, Status: domain.JobProcessing, Strategy: p.Strategy, Count: p.Count}
	select {
	case <-p.done:
	default:
		return v
	}
	if p.err != nil {
		v.Status = domain.JobFailed
		v.Error = p.err.Error()
		return v
	}
	v.Status = domain.JobCompleted
	v.Rows = p.outcome.Rows
	return v
}

// Jobs is a fixed size registry of recent bulk jobs, least recently used first out
type Jobs struct {
	cache *lru.Cache
}

// NewJobs creates a registry holding at most size jobs
func NewJobs(size int) (*Jobs, error) {
	if size <= 0 {
		size = DefaultJobHistory
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Jobs{cache: c}, nil
}

func (j *Jobs) put(p *Pending) { j.cache.Add(p.JobID, p) }

func (j *Jobs) remove(id string) { j.cache.Remove(id) }

// Get returns the job if it has not been evicted
func (j *Jobs) Get(id string) (*Pending, bool) {
	v, ok := j.cache.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*Pending), true
}

// Len is the number of jobs retained
func (j *Jobs) Len() int { return j.cache.Len() }

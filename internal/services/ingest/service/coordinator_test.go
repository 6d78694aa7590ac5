package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"rowkeeper/internal/core/workpool"
	perr "rowkeeper/internal/platform/errors"
	"rowkeeper/internal/platform/metrics"
	kit "rowkeeper/internal/platform/testkit"
	"rowkeeper/internal/services/ingest/domain"
	rows "rowkeeper/internal/services/rows/domain"
	"rowkeeper/internal/services/rows/repo"
	"rowkeeper/internal/services/rows/rowstest"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newPool(t *testing.T, workers, queue int) *workpool.Pool {
	t.Helper()
	p := workpool.New(workpool.Config{Workers: workers, Queue: queue})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = p.Close(ctx)
	})
	return p
}

func newJobs(t *testing.T, size int) *Jobs {
	t.Helper()
	j, err := NewJobs(size)
	if err != nil {
		t.Fatal(err)
	}
	return j
}

func wait(t *testing.T, p *Pending) (domain.Outcome, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return p.Wait(ctx)
}

func TestSixtyRowsUseBatchAndAreStored(t *testing.T) {
	st := rowstest.Open(t)
	m := metrics.New()
	c := NewCoordinator(newPool(t, 2, 8),
		NewSequentialWriter(st.SQL, repo.New()),
		NewBatchWriter(st.SQL, repo.New(), 50),
		newJobs(t, 16), m, Options{})

	before := rowstest.Count(t, st)
	p, err := c.SubmitBulk(context.Background(), reqs(60))
	if err != nil {
		t.Fatal(err)
	}
	if p.Strategy != domain.StrategyOptimizedBatch || p.Count != 60 || p.JobID == "" {
		t.Fatalf("pending = %+v", p)
	}

	out, err := wait(t, p)
	if err != nil {
		t.Fatal(err)
	}
	checkOrder(t, out.Rows, 60)
	if out.Count != 60 || out.Strategy != domain.StrategyOptimizedBatch {
		t.Fatalf("outcome = %+v", out)
	}
	if got := rowstest.Count(t, st) - before; got != 60 {
		t.Fatalf("stored delta = %d", got)
	}
	if got := testutil.ToFloat64(m.Ingested().WithLabelValues("optimized_batch")); got != 60 {
		t.Fatalf("ingested metric = %v", got)
	}

	v, err := c.Job(context.Background(), p.JobID)
	if err != nil || v.Status != domain.JobCompleted || len(v.Rows) != 60 {
		t.Fatalf("job view = %+v, %v", v, err)
	}
}

func TestSmallRequestIsSequential(t *testing.T) {
	st := rowstest.Open(t)
	c := NewCoordinator(newPool(t, 1, 4),
		NewSequentialWriter(st.SQL, repo.New()),
		NewBatchWriter(st.SQL, repo.New(), 50),
		newJobs(t, 16), nil, Options{})

	body, err := c.Accept(context.Background(), reqs(49))
	if err != nil {
		t.Fatal(err)
	}
	if body.Status != "processing" || body.Message != "Bulk creation started" || body.Count != 49 || body.Strategy != domain.StrategySequential {
		t.Fatalf("accepted = %+v", body)
	}
	p, _ := c.jobs.Get(body.JobID)
	if _, err := wait(t, p); err != nil {
		t.Fatal(err)
	}
	if n := rowstest.Count(t, st); n != 49 {
		t.Fatalf("stored = %d", n)
	}
}

func TestStrategyBySize(t *testing.T) {
	c := NewCoordinator(newPool(t, 1, 0), domain.WriterFunc(nil), domain.WriterFunc(nil), newJobs(t, 1), nil, Options{})

	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	props := gopter.NewProperties(params)
	props.Property("threshold splits the strategies", prop.ForAll(
		func(n int) bool {
			s := c.Strategy(n)
			if n >= DefaultThreshold {
				return s == domain.StrategyOptimizedBatch
			}
			return s == domain.StrategySequential
		},
		gen.IntRange(0, 500),
	))
	props.TestingRun(t)
}

func TestSubmitRejectsBadSizes(t *testing.T) {
	c := NewCoordinator(newPool(t, 1, 1), domain.WriterFunc(nil), domain.WriterFunc(nil), newJobs(t, 4), nil, Options{MaxBulk: 3})

	if _, err := c.SubmitBulk(context.Background(), nil); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("empty: %v", err)
	}
	if _, err := c.SubmitBulk(context.Background(), reqs(4)); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("too many: %v", err)
	}
	if c.jobs.Len() != 0 {
		t.Fatalf("rejected requests must not register jobs")
	}
}

func TestSubmitRejectsTextLongAfterSanitizing(t *testing.T) {
	c := NewCoordinator(newPool(t, 1, 1), domain.WriterFunc(nil), domain.WriterFunc(nil), newJobs(t, 4), nil, Options{})

	in := reqs(3)
	in[1].TypeFreeText = expandsUnderNFC
	_, err := c.SubmitBulk(context.Background(), in)
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("err = %v", err)
	}
	if got := perr.WireFrom(err).Message; got != "[1] typeFreeText must be at most 1000 characters after sanitizing" {
		t.Fatalf("message = %q", got)
	}
	if c.jobs.Len() != 0 {
		t.Fatalf("rejected requests must not register jobs")
	}
}

func TestFullQueueIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	var once sync.Once
	t.Cleanup(func() { once.Do(func() { close(release) }) })

	blocking := domain.WriterFunc(func(ctx context.Context, in []rows.CreateRowRequest) ([]rows.Row, error) {
		<-release
		return make([]rows.Row, len(in)), nil
	})
	pool := newPool(t, 1, 1)
	c := NewCoordinator(pool, blocking, blocking, newJobs(t, 8), nil, Options{})

	first, err := c.SubmitBulk(context.Background(), reqs(1))
	if err != nil {
		t.Fatal(err)
	}
	kit.Eventually(t, 2*time.Second, func() bool { return pool.Running() == 1 }, "worker picks up the first job")
	if _, err := c.SubmitBulk(context.Background(), reqs(1)); err != nil {
		t.Fatalf("second job should queue: %v", err)
	}
	_, err = c.SubmitBulk(context.Background(), reqs(1))
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) || perr.HTTPStatus(err) != 503 {
		t.Fatalf("third job = %v", err)
	}
	if c.jobs.Len() != 2 {
		t.Fatalf("jobs = %d, want 2", c.jobs.Len())
	}

	if v, _ := c.Job(context.Background(), first.JobID); v.Status != domain.JobProcessing {
		t.Fatalf("status while blocked = %s", v.Status)
	}
	once.Do(func() { close(release) })
	if _, err := wait(t, first); err != nil {
		t.Fatal(err)
	}
}

func TestWriterFailureIsRecordedOnTheJob(t *testing.T) {
	m := metrics.New()
	failing := domain.WriterFunc(func(context.Context, []rows.CreateRowRequest) ([]rows.Row, error) {
		return nil, perr.Newf(perr.ErrorCodeWriteFailure, "disk on fire")
	})
	panicking := domain.WriterFunc(func(context.Context, []rows.CreateRowRequest) ([]rows.Row, error) {
		panic("boom")
	})
	c := NewCoordinator(newPool(t, 1, 4), failing, panicking, newJobs(t, 8), m, Options{Threshold: 2})

	p1, err := c.SubmitBulk(context.Background(), reqs(1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wait(t, p1); !perr.IsCode(err, perr.ErrorCodeWriteFailure) {
		t.Fatalf("failing writer = %v", err)
	}
	v, _ := c.Job(context.Background(), p1.JobID)
	if v.Status != domain.JobFailed || v.Error == "" || v.Rows != nil {
		t.Fatalf("view = %+v", v)
	}

	p2, err := c.SubmitBulk(context.Background(), reqs(2))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wait(t, p2); !perr.IsCode(err, perr.ErrorCodeWriteFailure) {
		t.Fatalf("panicking writer = %v", err)
	}

	// the pool survives both
	p3, err := c.SubmitBulk(context.Background(), reqs(1))
	if err != nil {
		t.Fatal(err)
	}
	_, _ = wait(t, p3)
	if n := testutil.CollectAndCount(m.IngestDurations()); n != 2 {
		t.Fatalf("duration series = %d, want 2", n)
	}
}

func TestUnknownJobIsNotFound(t *testing.T) {
	c := NewCoordinator(newPool(t, 1, 1), domain.WriterFunc(nil), domain.WriterFunc(nil), newJobs(t, 1), nil, Options{})
	if _, err := c.Job(context.Background(), "nope"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestJobRegistryEvictsOldest(t *testing.T) {
	j := newJobs(t, 2)
	for _, id := range []string{"a", "b", "c"} {
		j.put(newPending(id, domain.StrategySequential, 1))
	}
	if _, ok := j.Get("a"); ok {
		t.Fatal("a should have been evicted")
	}
	if _, ok := j.Get("c"); !ok {
		t.Fatal("c should be retained")
	}
}

func TestPendingWaitHonoursContext(t *testing.T) {
	p := newPending("x", domain.StrategySequential, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Wait(ctx); err != context.Canceled {
		t.Fatalf("err = %v", err)
	}
	select {
	case <-p.Done():
		t.Fatal("Done closed before finish")
	default:
	}
	p.finish(domain.Outcome{Count: 1}, nil)
	p.finish(domain.Outcome{Count: 2}, nil)
	select {
	case <-p.Done():
	default:
		t.Fatal("Done still open after finish")
	}
	out, err := p.Wait(context.Background())
	if err != nil || out.Count != 1 {
		t.Fatalf("finish must be first write wins: %+v %v", out, err)
	}
}

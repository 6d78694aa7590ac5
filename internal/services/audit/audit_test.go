package audit

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"rowkeeper/internal/core/notify"
	"rowkeeper/internal/platform/store"
	rows "rowkeeper/internal/services/rows/domain"
)

type fakeCH struct {
	mu      sync.Mutex
	execs   []string
	inserts map[string][][]any
	failAt  string
}

func (f *fakeCH) Insert(_ context.Context, table string, rs [][]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAt == "insert" {
		return errors.New("clickhouse down")
	}
	if f.inserts == nil {
		f.inserts = map[string][][]any{}
	}
	f.inserts[table] = append(f.inserts[table], rs...)
	return nil
}

func (f *fakeCH) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }

func (f *fakeCH) Exec(_ context.Context, sql string, _ ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAt == "exec" {
		return errors.New("no such database")
	}
	f.execs = append(f.execs, sql)
	return nil
}

func (f *fakeCH) Close() error { return nil }

func (f *fakeCH) inserted() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserts[Table])
}

func row() rows.Row {
	return rows.Row{ID: 42, TypeNumber: 3, TypeSelector: "sel", TypeFreeText: "t", CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func TestAuditorWritesRow(t *testing.T) {
	ch := &fakeCH{}
	a := NewAuditor(ch)
	a.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 6, 0, time.UTC) }

	if err := a.Observe(context.Background(), row()); err != nil {
		t.Fatal(err)
	}
	got := ch.inserts[Table]
	if len(got) != 1 || got[0][0] != int64(42) || got[0][3] != "created" {
		t.Fatalf("inserted = %#v", got)
	}
}

func TestObserversWithoutSink(t *testing.T) {
	if err := NewAuditor(nil).Observe(context.Background(), row()); err != nil {
		t.Fatal(err)
	}
	if err := Notification().Observe(context.Background(), row()); err != nil {
		t.Fatal(err)
	}
	if Notification().Name() != "notification" || NewAuditor(nil).Name() != "audit" {
		t.Fatal("observer names")
	}
}

func TestAttachBootstrapsAndSubscribes(t *testing.T) {
	ch := &fakeCH{}
	n := notify.New[rows.Row](4)
	if err := Attach(context.Background(), n, ch); err != nil {
		t.Fatal(err)
	}
	if len(ch.execs) != 1 || !strings.Contains(ch.execs[0], "CREATE TABLE IF NOT EXISTS row_audit") {
		t.Fatalf("execs = %v", ch.execs)
	}

	n.Publish(context.Background(), row())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := n.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if ch.inserted() != 1 {
		t.Fatalf("audit rows = %d", ch.inserted())
	}
}

func TestAttachFailsWhenBootstrapFails(t *testing.T) {
	n := notify.New[rows.Row](1)
	if err := Attach(context.Background(), n, &fakeCH{failAt: "exec"}); err == nil {
		t.Fatal("expected bootstrap error")
	}
	if err := Attach(context.Background(), n, nil); err != nil {
		t.Fatalf("no sink: %v", err)
	}
}

func TestSinkFailureStaysInsideNotifier(t *testing.T) {
	ch := &fakeCH{failAt: "insert"}
	n := notify.New[rows.Row](4)
	n.Subscribe(NewAuditor(ch))
	n.Publish(context.Background(), row())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := n.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if n.Failed() != 1 {
		t.Fatalf("failed = %d", n.Failed())
	}
}

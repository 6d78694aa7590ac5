package repokit

import (
	"context"
	"errors"
	"testing"
	"time"

	"rowkeeper/internal/platform/store"
	kit "rowkeeper/internal/platform/testkit"
)

type recordingTx struct {
	execs     []string
	committed bool
}

type tag int64

func (t tag) RowsAffected() int64 { return int64(t) }

func (r *recordingTx) Exec(_ context.Context, sql string, _ ...any) (CommandTag, error) {
	r.execs = append(r.execs, sql)
	return tag(0), nil
}
func (r *recordingTx) Query(context.Context, string, ...any) (Rows, error) { return nil, nil }
func (r *recordingTx) QueryRow(context.Context, string, ...any) Row       { return nil }
func (r *recordingTx) Tx(ctx context.Context, fn func(Queryer) error) error {
	if err := fn(r); err != nil {
		return err
	}
	r.committed = true
	return nil
}

var _ store.TxRunner = (*recordingTx)(nil)

func TestBeginHooksRunFirst(t *testing.T) {
	inner := &recordingTx{}
	tx := WithBeginHooks(inner, StatementTimeout(1500*time.Millisecond))

	err := tx.Tx(context.Background(), func(q Queryer) error {
		_, err := q.Exec(context.Background(), "INSERT")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(inner.execs) != 2 || inner.execs[0] != "SET LOCAL statement_timeout = 1500" || inner.execs[1] != "INSERT" {
		t.Fatalf("execs = %v", inner.execs)
	}
}

func TestBeginHookErrorAborts(t *testing.T) {
	inner := &recordingTx{}
	boom := errors.New("denied")
	tx := WithBeginHooks(inner, func(context.Context, Queryer) error { return boom })

	called := false
	err := tx.Tx(context.Background(), func(Queryer) error { called = true; return nil })
	if !errors.Is(err, boom) || called || inner.committed {
		t.Fatalf("err=%v called=%v committed=%v", err, called, inner.committed)
	}
}

func TestWithoutHooksReturnsInner(t *testing.T) {
	inner := &recordingTx{}
	if WithBeginHooks(inner) != TxRunner(inner) {
		t.Fatalf("no hooks should not wrap")
	}
}

func TestMustBind(t *testing.T) {
	b := BindFunc[string](func(Queryer) string { return "bound" })
	kit.MustPanic(t, func() { MustBind[string](b, nil) })
	if got := MustBind[string](b, &recordingTx{}); got != "bound" {
		t.Fatalf("MustBind = %q", got)
	}
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestMustPing(t *testing.T) {
	kit.MustNotPanic(t, func() { MustPing(context.Background(), "sql", pinger{}) })
	kit.MustPanic(t, func() { MustPing(context.Background(), "sql", pinger{err: errors.New("down")}) })
	kit.MustPanic(t, func() { MustPing(context.Background(), "sql", nil) })
}

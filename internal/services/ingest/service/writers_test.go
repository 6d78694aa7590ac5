package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	perr "rowkeeper/internal/platform/errors"
	"rowkeeper/internal/services/rows/domain"
	"rowkeeper/internal/services/rows/repo"
	"rowkeeper/internal/services/rows/rowstest"
)

func reqs(n int) []domain.CreateRowRequest {
	out := make([]domain.CreateRowRequest, n)
	for i := range out {
		num := int64(i + 1)
		out[i] = domain.CreateRowRequest{
			TypeNumber:   &num,
			TypeSelector: fmt.Sprintf("sel-%d", i),
			TypeFreeText: fmt.Sprintf("<b>text %d</b>", i),
		}
	}
	return out
}

func checkOrder(t *testing.T, got []domain.Row, n int) {
	t.Helper()
	if len(got) != n {
		t.Fatalf("len = %d, want %d", len(got), n)
	}
	for i, r := range got {
		if r.TypeNumber != int32(i+1) || r.TypeSelector != fmt.Sprintf("sel-%d", i) {
			t.Fatalf("row %d out of order: %+v", i, r)
		}
		if r.TypeFreeText != fmt.Sprintf("text %d", i) {
			t.Fatalf("row %d free text not sanitized: %q", i, r.TypeFreeText)
		}
		if i > 0 && r.ID <= got[i-1].ID {
			t.Fatalf("ids not ascending at %d: %d <= %d", i, r.ID, got[i-1].ID)
		}
	}
}

func TestSequentialWriterKeepsOrder(t *testing.T) {
	st := rowstest.Open(t)
	w := NewSequentialWriter(st.SQL, repo.New())

	got, err := w.Write(context.Background(), reqs(7))
	if err != nil {
		t.Fatal(err)
	}
	checkOrder(t, got, 7)
	if n := rowstest.Count(t, st); n != 7 {
		t.Fatalf("stored = %d", n)
	}
}

func TestSequentialWriterKeepsEarlierRowsOnFailure(t *testing.T) {
	st := rowstest.Open(t)
	w := NewSequentialWriter(st.SQL, repo.New())

	in := reqs(4)
	zero := int64(0)
	in[2].TypeNumber = &zero

	got, err := w.Write(context.Background(), in)
	if err == nil {
		t.Fatal("expected a write failure")
	}
	if len(got) != 2 {
		t.Fatalf("returned %d rows, want 2", len(got))
	}
	if n := rowstest.Count(t, st); n != 2 {
		t.Fatalf("stored = %d, want 2", n)
	}
}

func TestBatchWriterFlushesWindowsInOrder(t *testing.T) {
	st := rowstest.Open(t)
	w := NewBatchWriter(st.SQL, repo.New(), 50)

	got, err := w.Write(context.Background(), reqs(123))
	if err != nil {
		t.Fatal(err)
	}
	checkOrder(t, got, 123)
	if n := rowstest.Count(t, st); n != 123 {
		t.Fatalf("stored = %d", n)
	}
}

func TestBatchWriterIsAllOrNothing(t *testing.T) {
	st := rowstest.Open(t)
	w := NewBatchWriter(st.SQL, repo.New(), 10)

	in := reqs(35)
	zero := int64(0)
	in[31].TypeNumber = &zero

	if _, err := w.Write(context.Background(), in); err == nil {
		t.Fatal("expected a write failure")
	}
	if n := rowstest.Count(t, st); n != 0 {
		t.Fatalf("stored = %d, want rollback to 0", n)
	}
}

// U+0958 decomposes to two runes under NFC
var expandsUnderNFC = strings.Repeat("\u0958", 1000)

func TestWritersRejectTextLongAfterSanitizing(t *testing.T) {
	t.Run("sequential", func(t *testing.T) {
		st := rowstest.Open(t)
		in := reqs(4)
		in[2].TypeFreeText = expandsUnderNFC

		got, err := NewSequentialWriter(st.SQL, repo.New()).Write(context.Background(), in)
		if !perr.IsCode(err, perr.ErrorCodeValidation) {
			t.Fatalf("err = %v", err)
		}
		if !strings.HasPrefix(perr.WireFrom(err).Message, "[2] typeFreeText") {
			t.Fatalf("message = %q", perr.WireFrom(err).Message)
		}
		if len(got) != 2 || rowstest.Count(t, st) != 2 {
			t.Fatalf("rows before the bad item should stay, got %d", len(got))
		}
	})
	t.Run("batch", func(t *testing.T) {
		st := rowstest.Open(t)
		in := reqs(60)
		in[41].TypeFreeText = expandsUnderNFC

		if _, err := NewBatchWriter(st.SQL, repo.New(), 10).Write(context.Background(), in); !perr.IsCode(err, perr.ErrorCodeValidation) {
			t.Fatalf("err = %v", err)
		}
		if n := rowstest.Count(t, st); n != 0 {
			t.Fatalf("stored = %d, want 0", n)
		}
	})
}

func TestBatchWriterEmpty(t *testing.T) {
	st := rowstest.Open(t)
	got, err := NewBatchWriter(st.SQL, repo.New(), 0).Write(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v, %v", got, err)
	}
}

package logger

import (
	"bytes"
	"context"
	"testing"

	kit "rowkeeper/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"":        zerolog.InfoLevel,
		" huh ":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{
		Level:   "debug",
		Format:  "json",
		Service: "svc-a",
		Writer:  &buf,
		Fields:  map[string]string{"build": "test"},
	})
	l.Info().Int64("row_id", 7).Msg("Row created event")

	out := buf.String()
	kit.MustContain(t, out, `"service":"svc-a"`)
	kit.MustContain(t, out, `"build":"test"`)
	kit.MustContain(t, out, `"row_id":7`)
	kit.MustContain(t, out, "Row created event")
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "warn", Format: "json", Writer: &buf})
	l.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info line should be filtered at warn: %q", buf.String())
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("LOG_SERVICE", "svc-b")
	t.Setenv("LOG_CALLER", "yes")

	opt := FromEnv()
	if opt.Level != "warn" || opt.Format != "json" || opt.Service != "svc-b" || !opt.WithCaller {
		t.Fatalf("FromEnv mismatch: %+v", opt)
	}
}

func TestContextChildren(t *testing.T) {
	ctx := WithJob(WithRequest(context.Background(), "req-1"), "job-9")
	if v, _ := ctx.Value(keyRequestID).(string); v != "req-1" {
		t.Fatalf("request id not stored")
	}
	if v, _ := ctx.Value(keyJobID).(string); v != "job-9" {
		t.Fatalf("job id not stored")
	}
	if WithRequest(context.Background(), "") != context.Background() {
		t.Fatalf("empty request id should not wrap ctx")
	}
	kit.MustNotPanic(t, func() {
		C(ctx).Debug().Msg("ctx child")
		Named("ingest").Debug().Msg("named child")
	})
}

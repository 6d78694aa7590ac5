package http

import (
	"context"
	"io"
	"net"
	stdhttp "net/http"
	"testing"
	"time"

	"rowkeeper/internal/platform/config"

	"github.com/go-chi/chi/v5"
)

func TestServerServeAndShutdown(t *testing.T) {
	t.Setenv("SRVTEST_PORT", "127.0.0.1:0")
	s := NewServer(config.New().Prefix("SRVTEST_"), func(m *chi.Mux) {
		m.Get("/ping", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { _, _ = io.WriteString(w, "pong") })
	})
	if s.Addr() != "127.0.0.1:0" {
		t.Fatalf("Addr = %q", s.Addr())
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- s.Serve(context.Background(), ln) }()

	resp, err := stdhttp.Get("http://" + ln.Addr().String() + "/ping")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != "pong" {
		t.Fatalf("body = %q", body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("serve returned %v", err)
	}
}

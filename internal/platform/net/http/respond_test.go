package http

import (
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "rowkeeper/internal/platform/errors"
	pnet "rowkeeper/internal/platform/net"
)

func serve(t *testing.T, h Handler, req *stdhttp.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestEnvelopeOK(t *testing.T) {
	req := httptest.NewRequest(stdhttp.MethodGet, "/", nil)
	req = req.WithContext(pnet.WithRequest(req.Context(), "rid-1"))
	rr := serve(t, Handle(func(*stdhttp.Request) Response { return OK(map[string]int{"n": 1}) }), req)

	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var env struct {
		StatusCode int            `json:"status_code"`
		RequestID  string         `json:"request_id"`
		Data       map[string]int `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.StatusCode != 200 || env.RequestID != "rid-1" || env.Data["n"] != 1 {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestBareBody(t *testing.T) {
	req := httptest.NewRequest(stdhttp.MethodPost, "/", nil)
	rr := serve(t, Handle(func(*stdhttp.Request) Response {
		return Bare(stdhttp.StatusAccepted, map[string]string{"status": "processing"})
	}), req)

	if rr.Code != stdhttp.StatusAccepted {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != `{"status":"processing"}` {
		t.Fatalf("body = %s", got)
	}
}

func TestErrorBodyUsesEnvelope(t *testing.T) {
	req := httptest.NewRequest(stdhttp.MethodGet, "/", nil)
	rr := serve(t, Handle(func(*stdhttp.Request) Response {
		return Error(perr.UnsupportedFormat("yaml"))
	}), req)

	if rr.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	var env Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error != "Unsupported export format: yaml" || env.Code != perr.ErrorCodeUnsupportedFormat {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestNoContent(t *testing.T) {
	req := httptest.NewRequest(stdhttp.MethodDelete, "/", nil)
	rr := serve(t, Handle(func(*stdhttp.Request) Response { return NoContent() }), req)
	if rr.Code != stdhttp.StatusNoContent || rr.Body.Len() != 0 {
		t.Fatalf("status = %d body = %q", rr.Code, rr.Body.String())
	}
}

func TestAttachment(t *testing.T) {
	req := httptest.NewRequest(stdhttp.MethodGet, "/", nil)
	rr := serve(t, Handle(func(*stdhttp.Request) Response {
		return Attachment("text/csv", "export_1.csv", []byte("a,b\n"))
	}), req)

	if rr.Body.String() != "a,b\n" {
		t.Fatalf("body = %q", rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("content type = %q", ct)
	}
	want := `form-data; name="attachment"; filename="export_1.csv"`
	if cd := rr.Header().Get("Content-Disposition"); cd != want {
		t.Fatalf("disposition = %q", cd)
	}
}

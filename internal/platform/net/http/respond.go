// Package http provides the router seam, the server and response helpers
package http

import (
	"encoding/json"
	"fmt"
	stdhttp "net/http"

	perr "rowkeeper/internal/platform/errors"
	"rowkeeper/internal/platform/logger"
	pnet "rowkeeper/internal/platform/net"
)

// Envelope is the platform body for errors and meta endpoints
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// JSON writes v as application/json with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Named("http").Debug().Err(err).Msg("encode response")
	}
}

// ErrorEnvelope maps err into an envelope and its status
func ErrorEnvelope(r *stdhttp.Request, err error) (int, Envelope) {
	status := perr.HTTPStatus(err)
	wr := perr.WireFrom(err)
	return status, Envelope{
		StatusCode: status,
		Status:     stdhttp.StatusText(status),
		Code:       wr.Code,
		Error:      wr.Message,
		RequestID:  pnet.RequestID(r.Context()),
	}
}

// RespondError writes err as an envelope
func RespondError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	status, env := ErrorEnvelope(r, err)
	if status >= stdhttp.StatusInternalServerError {
		logger.C(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	JSON(w, status, env)
}

// Response is a functional response object for return-style handlers
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header

	// Bare writes Body without the envelope
	Bare bool
	// Raw, when set, is written verbatim; Content-Type must be in Header
	Raw []byte
}

// Handle adapts a Response-returning handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}

	if err, ok := resp.Body.(error); ok && err != nil {
		RespondError(w, r, err)
		return
	}

	status := resp.Status
	if status == 0 {
		status = stdhttp.StatusOK
	}

	switch {
	case status == stdhttp.StatusNoContent:
		w.WriteHeader(status)
	case resp.Raw != nil:
		w.Header().Set("Content-Length", fmt.Sprint(len(resp.Raw)))
		w.WriteHeader(status)
		_, _ = w.Write(resp.Raw)
	case resp.Bare:
		JSON(w, status, resp.Body)
	default:
		JSON(w, status, Envelope{
			StatusCode: status,
			Status:     stdhttp.StatusText(status),
			RequestID:  pnet.RequestID(r.Context()),
			Data:       resp.Body,
		})
	}
}

// OK returns an enveloped 200
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// NoContent returns a 204
func NoContent() Response { return Response{Status: stdhttp.StatusNoContent} }

// Error returns a response that maps err to status and envelope
func Error(err error) Response { return Response{Body: err} }

// Bare returns v as the whole JSON body
func Bare(status int, v any) Response { return Response{Status: status, Body: v, Bare: true} }

// Attachment returns payload as a downloadable file
func Attachment(contentType, filename string, payload []byte) Response {
	h := stdhttp.Header{}
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", fmt.Sprintf("form-data; name=%q; filename=%q", "attachment", filename))
	if payload == nil {
		payload = []byte{}
	}
	return Response{Status: stdhttp.StatusOK, Header: h, Raw: payload}
}

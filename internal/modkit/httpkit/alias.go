// Package httpkit re-exports the platform http seam for modules
// modules import this instead of internal/platform/net/http
package httpkit

import (
	"net/http"

	phttp "rowkeeper/internal/platform/net/http"
)

type (
	// Envelope is the platform error and meta body
	Envelope = phttp.Envelope

	// Response is the return-style handler result
	Response = phttp.Response

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is the platform router seam
	Router = phttp.Router
)

// OK returns an enveloped 200
func OK(data any) Response { return phttp.OK(data) }

// NoContent returns a 204
func NoContent() Response { return phttp.NoContent() }

// Error maps err to its status and envelope
func Error(err error) Response { return phttp.Error(err) }

// Bare returns v unwrapped with status
func Bare(status int, v any) Response { return phttp.Bare(status, v) }

// Attachment returns payload as a downloadable file
func Attachment(contentType, filename string, payload []byte) Response {
	return phttp.Attachment(contentType, filename, payload)
}

// Handle adapts a Response-returning function
func Handle(fn func(*http.Request) Response) Handler { return phttp.Handle(fn) }

// URLParam reads a chi path parameter
func URLParam(r *http.Request, name string) string { return phttp.URLParam(r, name) }

// Call adapts a body-less handler, writing its result bare with status
// a returned Response is written as is
func Call(status int, fn func(*http.Request) (any, error)) Handler {
	return phttp.Handle(func(r *http.Request) Response {
		out, err := fn(r)
		if err != nil {
			return phttp.Error(err)
		}
		if resp, ok := out.(phttp.Response); ok {
			return resp
		}
		return phttp.Bare(status, out)
	})
}

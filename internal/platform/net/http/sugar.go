package http

import (
	"net/http"

	"rowkeeper/internal/platform/net/http/bind"
)

// GetEnvelope mounts an enveloped GET handler
func GetEnvelope(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, EnvelopeHandler(h))
}

// PostJSON mounts a bare JSON POST handler
func PostJSON[T any](r Router, path string, status int, h func(*http.Request, T) (any, error)) {
	r.Post(path, JSONHandler(status, h))
}

// PostJSONSlice mounts a bare JSON POST handler taking an array body
func PostJSONSlice[T any](r Router, path string, status int, h func(*http.Request, []T) (any, error), opts ...bind.JSONOptions) {
	r.Post(path, JSONSliceHandler(status, h, opts...))
}

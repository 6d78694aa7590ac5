package httpkit

import (
	"net/http"

	phttp "rowkeeper/internal/platform/net/http"
	"rowkeeper/internal/platform/net/http/bind"
)

// Get mounts a body-less GET handler whose result is written bare with 200
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Call(http.StatusOK, h))
}

// GetEnvelope mounts a GET handler whose result is wrapped in the platform envelope
func GetEnvelope(r Router, path string, h func(*http.Request) (any, error)) {
	phttp.GetEnvelope(r, path, h)
}

// Post mounts a body-less POST handler written bare with status
func Post(r Router, path string, status int, h func(*http.Request) (any, error)) {
	r.Post(path, Call(status, h))
}

// Delete mounts a body-less DELETE handler written bare with status
func Delete(r Router, path string, status int, h func(*http.Request) (any, error)) {
	r.Delete(path, Call(status, h))
}

// PostJSON binds and validates T then writes the result bare with status
func PostJSON[T any](r Router, path string, status int, h func(*http.Request, T) (any, error)) {
	phttp.PostJSON(r, path, status, h)
}

// BodyLimit is the decode cap for array bodies
type BodyLimit = bind.JSONOptions

// PostJSONSlice binds and validates every element of a JSON array body
func PostJSONSlice[T any](r Router, path string, status int, h func(*http.Request, []T) (any, error), limit ...BodyLimit) {
	phttp.PostJSONSlice(r, path, status, h, limit...)
}

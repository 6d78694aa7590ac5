package http

import (
	"net/http"

	"rowkeeper/internal/platform/net/http/bind"
)

// JSONHandler binds T, calls fn and writes the result with the given status, bare
func JSONHandler[T any](status int, fn func(*http.Request, T) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return Error(err)
		}
		out, err := fn(r, in)
		if err != nil {
			return Error(err)
		}
		return Bare(status, out)
	})
}

// JSONSliceHandler is JSONHandler for array bodies; opts override the 1MB body cap
func JSONSliceHandler[T any](status int, fn func(*http.Request, []T) (any, error), opts ...bind.JSONOptions) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSONSlice[T](r, opts...)
		if err != nil {
			return Error(err)
		}
		out, err := fn(r, in)
		if err != nil {
			return Error(err)
		}
		return Bare(status, out)
	})
}

// EnvelopeHandler calls fn without a body and wraps the result in the envelope
func EnvelopeHandler(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		out, err := fn(r)
		if err != nil {
			return Error(err)
		}
		return OK(out)
	})
}

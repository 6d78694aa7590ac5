// Package net holds request scoped context values shared by transports
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const keyClientKey ctxKey = "client_key"

// WithRequest stores reqID where chimw.GetReqID can find it
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, reqID)
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// WithClientKey stores the admission control key the request was charged against
func WithClientKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, keyClientKey, key)
}

// ClientKey returns the admission control key, empty for requests that were not charged
func ClientKey(ctx context.Context) string {
	v, _ := ctx.Value(keyClientKey).(string)
	return v
}

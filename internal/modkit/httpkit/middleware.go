package httpkit

import (
	"compress/flate"
	"net/http"
	"strings"
	"time"

	"rowkeeper/internal/platform/config"
	"rowkeeper/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	// Limiter gates write requests, nil disables admission control
	Limiter middleware.Admitter
	// TrustedProxies are CIDRs allowed to set X-Forwarded-For
	TrustedProxies []string
	// OnReject runs for every rejected write
	OnReject func(*http.Request)

	CORSOrigins []string
	Timeout     time.Duration
	SlowRequest time.Duration
}

// StackOptionsFromConfig reads CORS_ORIGINS, REQUEST_TIMEOUT and SLOW_REQUEST from api and
// TRUSTED_PROXIES from rl
func StackOptionsFromConfig(api, rl config.Conf) StackOptions {
	return StackOptions{
		TrustedProxies: rl.MayCSV("TRUSTED_PROXIES", nil),
		CORSOrigins:    api.MayCSV("CORS_ORIGINS", middleware.DefaultCORSOrigins),
		Timeout:        api.MayDuration("REQUEST_TIMEOUT", 60*time.Second),
		SlowRequest:    api.MayDuration("SLOW_REQUEST", time.Second),
	}
}

// CommonStack is the middleware chain for /api/v1
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = 60 * time.Second
	}
	return []func(http.Handler) http.Handler{
		// correlation first so every later log line carries the id
		middleware.RequestID(),
		middleware.RecoverJSON,
		middleware.AccessLog(middleware.AccessLogOptions{
			Slow: o.SlowRequest,
			Skip: func(p string) bool { return strings.HasSuffix(p, "/meta/health") },
		}),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins}),
		middleware.RateLimit(middleware.RateLimitOptions{
			Limiter:  o.Limiter,
			Key:      middleware.ForwardedClientKey(o.TrustedProxies),
			OnReject: o.OnReject,
		}),
		middleware.NoCache(),
		middleware.Compress(flate.BestSpeed, "application/json", "text/csv", "application/xml"),
		middleware.Timeout(o.Timeout),
	}
}

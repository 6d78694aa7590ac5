package middleware

import (
	"net"
	"net/http"
	"strings"

	"rowkeeper/internal/platform/logger"
	pnet "rowkeeper/internal/platform/net"
)

// RejectBody is written verbatim with every 429
const RejectBody = `{"error":"Too many requests. Please slow down."}`

// Admitter decides whether the client identified by key may proceed
type Admitter interface {
	Admit(key string) bool
}

// ClientKeyFunc derives the admission key for a request
type ClientKeyFunc func(*http.Request) string

// RateLimitOptions configures RateLimit
type RateLimitOptions struct {
	Limiter Admitter
	// Key defaults to ForwardedClientKey(nil)
	Key ClientKeyFunc
	// OnReject runs once per rejected request, e.g. to count it
	OnReject func(*http.Request)
}

// RateLimit charges write requests (POST, PUT, PATCH, DELETE) against the limiter
// reads pass through uncharged
func RateLimit(o RateLimitOptions) func(http.Handler) http.Handler {
	key := o.Key
	if key == nil {
		key = ForwardedClientKey(nil)
	}
	return func(next http.Handler) http.Handler {
		if o.Limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isWrite(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			k := key(r)
			if !o.Limiter.Admit(k) {
				logger.C(r.Context()).Warn().Str("client", k).Str("path", r.URL.Path).Msg("rate limit exceeded")
				if o.OnReject != nil {
					o.OnReject(r)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(RejectBody))
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithClientKey(r.Context(), k)))
		})
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// ForwardedClientKey builds the key function
//
// With no trusted proxies the X-Forwarded-For header is used verbatim when present,
// else the peer IP. Clients can spoof that header, so deployments behind a proxy
// should pass its CIDRs: the header is then honored only when the direct peer is
// trusted, and only its first hop is used.
func ForwardedClientKey(trusted []string) ClientKeyFunc {
	nets := parseTrusted(trusted)
	if len(nets) == 0 {
		return func(r *http.Request) string {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				return xff
			}
			return peerIP(r.RemoteAddr)
		}
	}
	return func(r *http.Request) string {
		peer := peerIP(r.RemoteAddr)
		if !contains(nets, net.ParseIP(peer)) {
			return peer
		}
		first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
		return peer
	}
}

// parseTrusted accepts CIDRs or bare IPs; invalid entries are logged and skipped
func parseTrusted(in []string) []*net.IPNet {
	var out []*net.IPNet
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, n, err := net.ParseCIDR(s); err == nil {
			out = append(out, n)
			continue
		}
		ip := net.ParseIP(s)
		if ip == nil {
			logger.Named("ratelimit").Warn().Str("cidr", s).Msg("invalid trusted proxy, skipping")
			continue
		}
		bits := 128
		if ip.To4() != nil {
			ip, bits = ip.To4(), 32
		}
		out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return out
}

func contains(nets []*net.IPNet, ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func peerIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}

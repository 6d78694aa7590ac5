package middleware

import (
	stdhttp "net/http"
	"runtime/debug"

	perr "rowkeeper/internal/platform/errors"
	"rowkeeper/internal/platform/logger"
	phttp "rowkeeper/internal/platform/net/http"
)

// RecoverJSON converts panics into an enveloped 500 and logs the stack
func RecoverJSON(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == stdhttp.ErrAbortHandler {
				panic(v)
			}
			logger.C(r.Context()).Error().
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			_, env := phttp.ErrorEnvelope(r, perr.PanicErrf("panic recovered"))
			if env.RequestID != "" {
				w.Header().Set("X-Request-ID", env.RequestID)
			}
			phttp.JSON(w, stdhttp.StatusInternalServerError, env)
		}()
		next.ServeHTTP(w, r)
	})
}

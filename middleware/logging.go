package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// RequestLogger attaches logger to each request and writes one access log line.
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	chain := func(next http.Handler) http.Handler {
		next = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			event := hlog.FromRequest(r).Info()
			if status >= http.StatusInternalServerError {
				event = hlog.FromRequest(r).Error()
			}
			event.
				Str("method", r.Method).
				Stringer("url", r.URL).
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Str("userId", r.Header.Get(UserIDHeader)).
				Msg("request")
		})(next)
		next = hlog.RequestIDHandler("requestId", "X-Request-ID")(next)
		next = hlog.RemoteAddrHandler("ip")(next)
		return hlog.NewHandler(logger)(next)
	}
	return chain
}

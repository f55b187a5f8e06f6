package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimitAuth limits credential submissions per client IP.
func RateLimitAuth(limit int, window time.Duration) func(http.HandlerFunc) http.HandlerFunc {
	limiter := httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			slog.Warn("rate limit exceeded",
				"ip", getClientIP(r),
				"path", r.URL.Path,
			)
			http.Error(w, "Too many requests. Please try again later.", http.StatusTooManyRequests)
		}),
	)

	return func(next http.HandlerFunc) http.HandlerFunc {
		return limiter(next).ServeHTTP
	}
}

// getClientIP extracts real client IP from request, for logging
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

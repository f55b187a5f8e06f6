package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "greenflash_http_requests_total",
		Help: "HTTP requests by method, section and status.",
	}, []string{"method", "section", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "greenflash_http_request_duration_seconds",
		Help:    "HTTP request latency by method and section.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "section"})
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Paths to skip logging and metrics
var skipLoggingPaths = []string{
	"/assets/",
	"/static/",
	"/metrics",
	"/favicon.ico",
}

// section reduces a path to its first segment so ids do not explode the
// label set: /logs/12/edit -> /logs.
func section(path string) string {
	first, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	switch first {
	case "", "home", "signup", "login", "logout", "users", "search", "places", "logs", "maintenance":
		return "/" + first
	default:
		return "other"
	}
}

// RequestLogging logs HTTP requests with method, path, status, and duration,
// and records them in the request metrics.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range skipLoggingPaths {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		sec := section(r.URL.Path)
		httpRequests.WithLabelValues(r.Method, sec, strconv.Itoa(rw.statusCode)).Inc()
		httpDuration.WithLabelValues(r.Method, sec).Observe(duration.Seconds())

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"remote_addr", r.RemoteAddr,
		)
	})
}

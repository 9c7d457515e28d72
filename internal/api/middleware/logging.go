package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/kiranshivaraju/unionhome/internal/gateway"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush lets streaming responses (the upstream page proxy) pass through.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// RequestObserver records request counts and latency.
type RequestObserver interface {
	ObserveRequest(method string, status int, d time.Duration)
}

// Logger logs one line per request and reports it to obs, which may be nil.
func Logger(obs RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			if obs != nil {
				obs.ObserveRequest(r.Method, rec.status, elapsed)
			}
			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", elapsed.Milliseconds(),
				"remote_addr", r.RemoteAddr,
			}
			if slug := r.Header.Get(gateway.HeaderSlug); slug != "" {
				attrs = append(attrs, "tenant_slug", slug)
			}
			slog.Info("request", attrs...)
		})
	}
}

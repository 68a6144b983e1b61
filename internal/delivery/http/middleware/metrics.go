package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/user/legaldoc-crawler/pkg/metrics"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Metrics records request count and duration per route. The path label is
// the matched mux pattern, not the raw URL, so parameterized routes like the
// session lookup stay a single series instead of one per id.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(rw.statusCode)
		elapsed := time.Since(start).Seconds()

		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route, status).Observe(elapsed)
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}

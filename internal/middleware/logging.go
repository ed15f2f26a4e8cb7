package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mmynk/highlowbuffalo/internal/metrics"
)

// RequestLogger logs every request and records it in the HTTP metrics.
// It logs the route, user ID, status, duration and request ID.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		// The user ID is only known after RequireAuth ran further down the
		// chain, so capture it through a holder the inner handler fills.
		holder := &userHolder{}
		next.ServeHTTP(ww, r.WithContext(withHolder(r.Context(), holder)))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		duration := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(duration.Seconds())

		attrs := []any{
			"method", r.Method,
			"route", route,
			"status", status,
			"user_id", holder.userID,
			"request_id", chimw.GetReqID(r.Context()),
			"duration_ms", duration.Milliseconds(),
		}
		switch {
		case status >= 500:
			slog.Error("HTTP error", attrs...)
		case status >= 400:
			slog.Warn("HTTP error", attrs...)
		default:
			slog.Info("HTTP ok", attrs...)
		}
	})
}

// routePattern returns the matched chi pattern so metrics are not labelled
// by raw IDs.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

package web

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// requestLogger logs each request once it completes, at a level chosen by status code
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip health and static assets
			if r.URL.Path == "/health" || strings.HasPrefix(r.URL.Path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				// hijacked (websocket) or nothing written
				status = http.StatusOK
			}

			attrs := []any{
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
			}

			switch {
			case status >= 500:
				logger.Error("request failed", attrs...)
			case status >= 400:
				logger.Warn("request error", attrs...)
			default:
				logger.Debug("request completed", attrs...)
			}
		})
	}
}

// securityHeaders adds a content security policy and the usual hardening headers
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// giveaway images come from anywhere; icons come from cdnjs
		csp := "default-src 'self'; " +
			"img-src * data:; " +
			"style-src 'self' https://cdnjs.cloudflare.com; " +
			"font-src https://cdnjs.cloudflare.com; " +
			"script-src 'self'; " +
			"connect-src 'self'"
		w.Header().Set("Content-Security-Policy", csp)
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

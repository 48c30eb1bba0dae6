package middleware

import (
	"context"
	"net/http"
	"time"
)

// RequestTimeout bounds the caller-visible request duration. The store's
// critical sections are in-memory only, so a request that has entered one
// still runs to completion; the deadline is observed between sections.
func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

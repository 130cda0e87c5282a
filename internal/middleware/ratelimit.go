package middleware

import (
	"net/http"
	"strconv"

	"golang.org/x/time/rate"

	"todo-tracker/internal/httpx"
)

// RateLimit applies a process-wide token bucket. A nil limiter disables
// the middleware entirely.
func RateLimit(l *rate.Limiter) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.Allow() {
				next.ServeHTTP(w, r)
				return
			}
			retry := 1.0
			if l.Limit() > 0 {
				retry = 1.0 / float64(l.Limit())
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(retry)))
			httpx.Error(w, http.StatusTooManyRequests, "too many requests")
		})
	}
}

// NewLimiter builds a limiter from config; rps <= 0 disables limiting.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

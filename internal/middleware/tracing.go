package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Tracing opens one span per request and echoes the trace id back in a
// response header for cross-referencing with logs.
func Tracing(next http.Handler) http.Handler {
	tr := otel.Tracer("todo-tracker/http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		reqID := chimw.GetReqID(ctx)

		sw := &statusWriter{ResponseWriter: w}
		start := time.Now()

		ctx, span := tr.Start(ctx, r.Method+" "+r.URL.Path)
		defer span.End()

		next.ServeHTTP(sw, r.WithContext(ctx))

		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.Path),
			attribute.Int("http.status_code", sw.status),
			attribute.String("request.id", reqID),
			attribute.Int64("http.duration_ms", time.Since(start).Milliseconds()),
		)
		if sc := span.SpanContext(); sc.IsValid() {
			w.Header().Set("Trace-Id", sc.TraceID().String())
		}
	})
}

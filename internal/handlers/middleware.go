package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	gorillahandlers "github.com/gorilla/handlers"

	"dwelling-dashboard/pkg/logging"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

// RequestID propagates the caller's X-Request-ID, or a fresh UUID, into the
// request context and the response headers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

// recoveryLogger routes panics caught by the recovery handler to the structured logger
type recoveryLogger struct {
	logger *logging.StructuredLogger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error(context.Background(), "[API_PANIC] Recovered from handler panic", logging.Fields{}, fmt.Errorf("%s", fmt.Sprint(v...)))
}

// accessLog writes one structured entry per request
func accessLog(logger *logging.StructuredLogger) gorillahandlers.LogFormatter {
	return func(_ io.Writer, p gorillahandlers.LogFormatterParams) {
		logger.Info(p.Request.Context(), "[API_REQUEST] Request served", logging.Fields{
			"method":      p.Request.Method,
			"path":        p.URL.Path,
			"status":      p.StatusCode,
			"size":        p.Size,
			"duration_ms": time.Since(p.TimeStamp).Milliseconds(),
		})
	}
}

// Middleware wraps the router with request IDs, access logging, panic
// recovery, gzip compression and CORS for the given origins.
func Middleware(router http.Handler, allowedOrigins []string, logger *logging.StructuredLogger) http.Handler {
	h := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(allowedOrigins),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", RequestIDHeader}),
		gorillahandlers.ExposedHeaders([]string{RequestIDHeader}),
	)(router)
	h = gorillahandlers.CompressHandler(h)
	h = gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(recoveryLogger{logger: logger}),
	)(h)
	h = gorillahandlers.CustomLoggingHandler(io.Discard, h, accessLog(logger))
	return RequestID(h)
}

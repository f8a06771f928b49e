package logging

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
	"github.com/google/uuid"
)

type contextKey string

const loggerKey contextKey = "logger"

// Init configures the process-wide apex logger.
// Unknown levels fall back to info.
func Init(w io.Writer, level, format string) {
	switch format {
	case "json":
		log.SetHandler(json.New(w))
	default:
		log.SetHandler(text.New(w))
	}

	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// FromContext returns the request-scoped logger, or the default one
func FromContext(ctx context.Context) log.Interface {
	if l, ok := ctx.Value(loggerKey).(log.Interface); ok {
		return l
	}
	return log.Log
}

// WithLogger attaches a logger to ctx
func WithLogger(ctx context.Context, l log.Interface) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// RequestLogger tags every request with an id and logs its outcome.
// Static assets and health checks are not logged.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || strings.HasPrefix(r.URL.Path, "/static/") {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		requestID := uuid.NewString()
		entry := log.WithFields(log.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
		})

		w.Header().Set("X-Request-ID", requestID)
		wrapped := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r.WithContext(WithLogger(r.Context(), entry)))

		done := entry.WithFields(log.Fields{
			"status":      wrapped.statusCode,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		switch {
		case wrapped.statusCode >= 500:
			done.Error("request failed")
		case wrapped.statusCode >= 400:
			done.Warn("request error")
		default:
			done.Debug("request completed")
		}
	})
}

type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

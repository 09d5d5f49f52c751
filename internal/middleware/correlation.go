package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/aashari/go-content-dashboard/internal/logger"
	"github.com/aashari/go-content-dashboard/internal/utils"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = utils.HeaderRequestID

// RequestCorrelationMiddleware propagates a client X-Request-ID or
// generates one, echoes it in the response, and stores it with the client's
// user agent and ip in the request context for every log entry. Completed
// requests are logged; health checks only when they fail.
func RequestCorrelationMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(utils.HeaderRequestID)
			if requestID == "" {
				requestID = utils.GenerateRequestID()
			}
			w.Header().Set(RequestIDHeader, requestID)

			ctx := logger.WithRequestID(r.Context(), requestID)
			ctx = logger.WithClient(ctx, r.Header.Get(utils.HeaderUserAgent), ClientIP(r))

			wrapper := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapper, r.WithContext(ctx))

			duration := time.Since(start)
			metadata := logger.Metadata{
				"method":     r.Method,
				"path":       r.URL.Path,
				"statusCode": wrapper.statusCode,
				"duration":   logger.FormatDuration(duration),
			}

			switch {
			case r.URL.Path == "/health" && wrapper.statusCode < 400:
			case wrapper.statusCode >= 500:
				log.Error(ctx, "Request failed", logger.ComponentNames.Middleware, metadata, nil)
			case wrapper.statusCode >= 400:
				log.Warn(ctx, "Request rejected", logger.ComponentNames.Middleware, metadata)
			default:
				log.Info(ctx, "Request completed", logger.ComponentNames.Middleware, metadata)
			}
		})
	}
}

// ClientIP extracts the client ip: X-Forwarded-For, then X-Real-IP, then RemoteAddr
func ClientIP(r *http.Request) string {
	if forwardedFor := r.Header.Get(utils.HeaderXForwardedFor); forwardedFor != "" {
		return strings.TrimSpace(strings.Split(forwardedFor, ",")[0])
	}
	if realIP := r.Header.Get(utils.HeaderXRealIP); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}

// statusRecorder captures the status code without buffering the body
type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.statusCode = statusCode
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(p)
}

// Flush implements http.Flusher interface for streaming support
func (w *statusRecorder) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

package middleware

import (
	"fmt"
	"net/http"

	apperrors "github.com/aashari/go-content-dashboard/internal/errors"
	"github.com/aashari/go-content-dashboard/internal/logger"
)

// RecoveryMiddleware turns a handler panic into a FATAL log entry and a 500 response
func RecoveryMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Fatal(r.Context(), "Uncaught Error", logger.ComponentNames.GlobalHandler, logger.Metadata{
					"method":  r.Method,
					"path":    r.URL.Path,
					"message": fmt.Sprint(rec),
				}, fmt.Errorf("panic: %v", rec))
				apperrors.WriteStatus(r.Context(), log, w, http.StatusInternalServerError, apperrors.MsgInternal)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Chain applies middlewares so the first one listed is the outermost
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

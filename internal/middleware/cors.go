package middleware

import (
	"net/http"
	"strings"

	"github.com/aashari/go-content-dashboard/internal/utils"
)

// CORSOptions lists the allowed origins, methods and headers. Empty lists
// fall back to the permissive defaults.
type CORSOptions struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// CORSMiddleware adds CORS headers to allow cross-origin requests
func CORSMiddleware(opts CORSOptions) func(http.Handler) http.Handler {
	methods := joinOr(opts.AllowedMethods, utils.CORSAllowMethodsAll)
	headers := joinOr(opts.AllowedHeaders, utils.CORSAllowHeadersStd)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := allowOrigin(opts.AllowedOrigins, r.Header.Get("Origin")); origin != "" {
				w.Header().Set(utils.HeaderAccessControlAllowOrigin, origin)
			}
			w.Header().Set(utils.HeaderAccessControlAllowMethods, methods)
			w.Header().Set(utils.HeaderAccessControlAllowHeaders, headers)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func allowOrigin(allowed []string, origin string) string {
	if len(allowed) == 0 {
		return utils.CORSAllowOriginAll
	}
	for _, a := range allowed {
		if a == utils.CORSAllowOriginAll {
			return utils.CORSAllowOriginAll
		}
		if origin != "" && strings.EqualFold(a, origin) {
			return origin
		}
	}
	return ""
}

func joinOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, ", ")
}

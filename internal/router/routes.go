package router

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/aashari/go-content-dashboard/docs"
	"github.com/aashari/go-content-dashboard/internal/auth"
	"github.com/aashari/go-content-dashboard/internal/handlers"
	"github.com/aashari/go-content-dashboard/internal/health"
	"github.com/aashari/go-content-dashboard/internal/logger"
	"github.com/aashari/go-content-dashboard/internal/middleware"
	"github.com/aashari/go-content-dashboard/internal/monitoring"
)

// Dependencies are the collaborators mounted by SetupRoutes
type Dependencies struct {
	Handlers    *handlers.APIHandlers
	Health      *health.HealthChecker
	Metrics     *monitoring.Metrics
	Logger      *logger.Logger
	CORS        middleware.CORSOptions
	EnablePprof bool

	// Sessions resolves the caller of guarded routes; nil trusts the
	// identity headers of the fronting proxy
	Sessions auth.SessionProvider

	// RateLimiter throttles the auth and log ingestion routes; nil disables it
	RateLimiter *middleware.RateLimiter
}

// SetupRoutes configures all routes for the application
func SetupRoutes(deps Dependencies) http.Handler {
	log := deps.Logger
	if log == nil {
		log = logger.Default()
	}
	sessions := deps.Sessions
	if sessions == nil {
		sessions = auth.HeaderSessionProvider{}
	}
	h := deps.Handlers
	guard := func(next http.HandlerFunc) http.HandlerFunc {
		return auth.RequireSession(sessions, log, next)
	}
	throttle := func(next http.HandlerFunc) http.HandlerFunc {
		if deps.RateLimiter == nil {
			return next
		}
		return deps.RateLimiter.Limit(next)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", health.HealthHandler(deps.Health))

	mux.HandleFunc("GET /api/content", guard(h.ListContent))
	mux.HandleFunc("POST /api/content", guard(h.CreateContent))
	mux.HandleFunc("GET /api/content/{id}", guard(h.GetContent))
	mux.HandleFunc("PUT /api/content/{id}", guard(h.UpdateContent))
	mux.HandleFunc("DELETE /api/content/{id}", guard(h.DeleteContent))
	mux.HandleFunc("PATCH /api/content/{id}/favorite", guard(h.ToggleFavorite))
	mux.HandleFunc("GET /api/favorites", guard(h.ListFavorites))

	mux.HandleFunc("POST /api/auth/register", throttle(h.Register))
	mux.HandleFunc("POST /api/auth/login", throttle(h.Login))
	mux.HandleFunc("POST /api/auth/logout", h.Logout)

	mux.HandleFunc("GET /api/user/profile", guard(h.GetProfile))
	mux.HandleFunc("PUT /api/user/profile", guard(h.UpdateProfile))
	mux.HandleFunc("GET /api/settings", guard(h.GetSettings))
	mux.HandleFunc("PUT /api/settings", guard(h.UpdateSettings))

	mux.HandleFunc("POST /api/logs", throttle(h.IngestLogs))

	mux.Handle("GET /metrics", deps.Metrics.Handler())

	if deps.EnablePprof {
		monitoring.SetupPprofRoutes(mux)
	}

	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	// metrics sits next to the mux so it sees the matched pattern
	return middleware.Chain(mux,
		middleware.RecoveryMiddleware(log),
		middleware.RequestCorrelationMiddleware(log),
		middleware.CORSMiddleware(deps.CORS),
		deps.Metrics.MetricsMiddleware,
	)
}

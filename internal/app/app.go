package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/aashari/go-content-dashboard/internal/auth"
	"github.com/aashari/go-content-dashboard/internal/config"
	"github.com/aashari/go-content-dashboard/internal/database"
	"github.com/aashari/go-content-dashboard/internal/handlers"
	"github.com/aashari/go-content-dashboard/internal/health"
	"github.com/aashari/go-content-dashboard/internal/logger"
	"github.com/aashari/go-content-dashboard/internal/middleware"
	"github.com/aashari/go-content-dashboard/internal/monitoring"
	"github.com/aashari/go-content-dashboard/internal/reliability"
	"github.com/aashari/go-content-dashboard/internal/router"
)

// Version is stamped by the build
var Version = "dev"

// Stores are the persistence collaborators of the HTTP handlers
type Stores struct {
	Content handlers.ContentStore
	Users   handlers.UserStore
	Logs    logger.Sink
	Ping    func(ctx context.Context) error // health probe; nil skips the check
}

// App centralizes the application's dependencies and configuration
type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	Metrics  *monitoring.Metrics
	Breakers *reliability.BreakerRegistry
	Handler  http.Handler
	Server   *http.Server

	db *database.Connection
}

// NewApp connects to MongoDB and wires the server around it. The returned
// App owns the connection; Close releases it.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	metrics := monitoring.New()

	bootCfg := cfg.LoggerConfig()
	bootCfg.EnableRemote = false
	bootstrap := logger.New(bootCfg)
	conn, err := database.Connect(ctx, cfg.DatabaseConfig(), cfg.RetryConfig(), bootstrap)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	repo := database.NewRepository(conn)

	var sink logger.Sink
	if cfg.Logging.Remote {
		sink = database.NewLogSink(repo.Logs)
	}
	log := NewLogger(cfg, metrics, sink)

	a := Assemble(cfg, log, metrics, Stores{
		Content: repo.Content,
		Users:   repo.Users,
		Logs:    database.NewLogSink(repo.Logs),
		Ping:    conn.HealthCheck,
	})
	a.db = conn
	return a, nil
}

// NewLogger builds the structured logger from cfg. Remote sends are counted
// by metrics. A nil sink falls back to the configured remote endpoint.
func NewLogger(cfg *config.Config, metrics *monitoring.Metrics, sink logger.Sink) *logger.Logger {
	opts := []logger.Option{logger.WithSendObserver(metrics.ObserveLogSend)}
	if sink != nil {
		opts = append(opts, logger.WithSink(sink))
	}
	return logger.New(cfg.LoggerConfig(), opts...)
}

// Assemble wires the breaker registry, handlers, router and HTTP server
// around already opened stores
func Assemble(cfg *config.Config, log *logger.Logger, metrics *monitoring.Metrics, stores Stores) *App {
	logger.SetDefault(log)

	breakerCfg := cfg.BreakerConfig()
	breakerCfg.Logger = log
	breakerCfg.OnStateChange = metrics.ObserveStateChange
	breakers := reliability.NewBreakerRegistry(breakerCfg)
	reliability.SetDefaultRegistry(breakers)

	var sessions auth.SessionProvider = auth.HeaderSessionProvider{}
	handlerOpts := []handlers.Option{handlers.WithLogger(log)}
	if sc := cfg.Security.Session; sc.Secret != "" {
		tokens := auth.NewTokenManager(sc.Secret, sc.TTL, sc.RememberTTL)
		sessions = auth.FirstOf{tokens, auth.HeaderSessionProvider{}}
		handlerOpts = append(handlerOpts, handlers.WithSessionTokens(tokens, cfg.IsProduction()))
	}

	apiHandlers := handlers.NewAPIHandlers(stores.Content, stores.Users, stores.Logs, handlerOpts...)
	checker := health.CreateStandardHealthChecks(health.Dependencies{
		DatabasePing: stores.Ping,
		Breakers:     breakers,
		Version:      Version,
	}, log)

	handler := router.SetupRoutes(router.Dependencies{
		Handlers: apiHandlers,
		Health:   checker,
		Metrics:  metrics,
		Logger:   log,
		Sessions: sessions,
		CORS: middleware.CORSOptions{
			AllowedOrigins: cfg.Security.CORS.AllowedOrigins,
			AllowedMethods: cfg.Security.CORS.AllowedMethods,
			AllowedHeaders: cfg.Security.CORS.AllowedHeaders,
		},
		EnablePprof: !cfg.IsProduction(),
		RateLimiter: middleware.NewRateLimiter(cfg.Security.RateLimit.RequestsPerSecond, cfg.Security.RateLimit.Burst, log),
	})

	return &App{
		Config:   cfg,
		Logger:   log,
		Metrics:  metrics,
		Breakers: breakers,
		Handler:  handler,
		Server: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
			ErrorLog:     log.StdLogger(logger.ComponentNames.Server),
		},
	}
}

// Run serves until ctx is cancelled, then shuts the server down gracefully
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run over an existing listener
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	component := logger.ComponentNames.Server
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info(ctx, "Server starting", component, logger.Metadata{
			"address":     ln.Addr().String(),
			"environment": a.Config.Environment,
			"version":     Version,
		})
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()

		a.Logger.Info(shutdownCtx, "Server shutting down", component, nil)
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Close flushes the logger and disconnects from the database
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Logger.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush logs: %w", err))
	}
	if a.db != nil {
		if err := a.db.Disconnect(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

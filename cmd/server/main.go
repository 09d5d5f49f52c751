package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aashari/go-content-dashboard/internal/app"
	"github.com/aashari/go-content-dashboard/internal/config"
	"github.com/aashari/go-content-dashboard/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// the logger is configured from cfg, so fall back to stderr
		_, _ = os.Stderr.WriteString("FATAL: Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		logger.Default().Fatal(ctx, "Failed to initialize application", logger.ComponentNames.Server, nil, err)
		os.Exit(1)
	}

	a.Logger.Info(ctx, "Configuration loaded", logger.ComponentNames.Config, cfg.Logging.ToMap())
	a.Logger.Info(ctx, "Swagger documentation available", logger.ComponentNames.Server, logger.Metadata{
		"url": "http://localhost" + cfg.Server.Addr + "/swagger/index.html",
	})

	runErr := a.Run(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Close(closeCtx); err != nil {
		a.Logger.Error(closeCtx, "Failed to close application", logger.ComponentNames.Server, nil, err)
	}

	if runErr != nil {
		a.Logger.Fatal(closeCtx, "Server failed", logger.ComponentNames.Server, nil, runErr)
		os.Exit(1)
	}
}

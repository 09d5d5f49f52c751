package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"

	"github.com/aashari/go-content-dashboard/internal/apiclient"
	"github.com/aashari/go-content-dashboard/internal/client"
	"github.com/aashari/go-content-dashboard/internal/config"
	"github.com/aashari/go-content-dashboard/internal/httpclient"
	"github.com/aashari/go-content-dashboard/internal/logger"
	"github.com/aashari/go-content-dashboard/internal/monitoring"
	"github.com/aashari/go-content-dashboard/internal/reliability"
	"github.com/aashari/go-content-dashboard/internal/types"
)

func main() {
	var (
		envFile  = flag.String("env", ".env", "optional env file")
		name     = flag.String("name", "Demo User", "demo account name")
		email    = flag.String("email", "demo@example.com", "demo account email")
		password = flag.String("password", "password123", "demo account password")
		reset    = flag.Bool("reset", false, "delete existing content first")
		quiet    = flag.Bool("quiet", false, "disable the progress spinner")
	)
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "FATAL: Failed to load configuration:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := monitoring.New()
	httpClient := httpclient.NewFactory(httpclient.Options{Timeout: cfg.API.Timeout}).CreateDefaultClient()

	logOpts := []logger.Option{logger.WithSendObserver(metrics.ObserveLogSend)}
	if cfg.Logging.RemoteEndpoint != "" {
		logOpts = append(logOpts, logger.WithSink(logger.NewHTTPSink(cfg.Logging.RemoteEndpoint, httpClient)))
	}
	log := logger.New(cfg.LoggerConfig(), logOpts...)
	logger.SetDefault(log)

	breakerCfg := cfg.BreakerConfig()
	breakerCfg.Logger = log
	breakerCfg.OnStateChange = metrics.ObserveStateChange

	exec := apiclient.NewExecutor(httpClient,
		apiclient.WithRetryConfig(cfg.RetryConfig()),
		apiclient.WithBreakers(reliability.NewBreakerRegistry(breakerCfg)),
		apiclient.WithLogger(log),
		apiclient.WithObserver(metrics),
	)
	api := client.New(exec, client.Config{
		BaseURL:           cfg.API.BaseURL,
		UseCircuitBreaker: cfg.API.UseCircuitBreaker,
	}, client.WithLogger(log))

	var progress Progress = noProgress{}
	if !*quiet {
		progress = newSpinner(spinner.WithWriter(os.Stderr))
	}

	s := &seeder{api: api, log: log, progress: progress, reset: *reset}
	res, err := s.run(ctx, types.RegistrationData{Name: *name, Email: *email, Password: *password}, sampleContent)

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if cerr := log.Close(closeCtx); cerr != nil {
		fmt.Fprintln(os.Stderr, "Failed to flush logs:", cerr)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Seeding failed:", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded %d items (%d favorites, %d deleted first); demo user created: %t\n",
		res.Created, res.Favorited, res.Deleted, res.UserCreated)
}

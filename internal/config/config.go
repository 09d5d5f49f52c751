package config

import (
	"strings"

	"github.com/aashari/go-content-dashboard/internal/database"
	"github.com/aashari/go-content-dashboard/internal/reliability"
	"github.com/aashari/go-content-dashboard/internal/utils"
)

// Load reads an optional .env file and then the process environment on top
// of DefaultConfig. The result is validated before it is returned.
func Load(envFilePath ...string) (*Config, error) {
	if len(envFilePath) > 0 {
		if err := LoadEnvFile(envFilePath...); err != nil {
			return nil, err
		}
	} else if err := LoadEnvFromMultiplePaths(); err != nil {
		return nil, err
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a configuration from environment variables without validating it
func FromEnv() *Config {
	cfg := DefaultConfig()

	cfg.Environment = utils.GetEnvString("ENVIRONMENT", cfg.Environment)
	cfg.ServiceName = utils.GetEnvString("SERVICE_NAME", cfg.ServiceName)

	logging := GetLoggingConfigForEnvironment(cfg.Environment)
	cfg.Logging = LoggingConfig{
		Level:          strings.ToUpper(utils.GetEnvString("LOG_LEVEL", logging.Level)),
		Format:         strings.ToLower(utils.GetEnvString("LOG_FORMAT", logging.Format)),
		Console:        utils.GetEnvBool("LOG_CONSOLE", logging.Console),
		Remote:         utils.GetEnvBool("LOG_REMOTE", logging.Remote),
		RemoteEndpoint: utils.GetEnvString("LOG_REMOTE_ENDPOINT", logging.RemoteEndpoint),
		MaxSize:        utils.GetEnvInt("LOG_MAX_SIZE", logging.MaxSize),
		BufferSize:     utils.GetEnvInt("LOG_BUFFER_SIZE", logging.BufferSize),
	}

	cfg.Server.Addr = utils.GetEnvString("SERVER_ADDR", cfg.Server.Addr)

	cfg.API.BaseURL = utils.GetEnvString("API_BASE_URL", cfg.API.BaseURL)
	cfg.API.MaxRetries = utils.GetEnvInt("API_MAX_RETRIES", cfg.API.MaxRetries)
	cfg.API.BaseDelay = utils.GetEnvMillis("API_BASE_DELAY_MS", cfg.API.BaseDelay)
	cfg.API.MaxDelay = utils.GetEnvMillis("API_MAX_DELAY_MS", cfg.API.MaxDelay)
	cfg.API.BackoffFactor = utils.GetEnvFloat64("API_BACKOFF_FACTOR", cfg.API.BackoffFactor)
	cfg.API.Jitter = utils.GetEnvFloat64("API_RETRY_JITTER", cfg.API.Jitter)
	cfg.API.UseCircuitBreaker = utils.GetEnvBool("API_USE_CIRCUIT_BREAKER", cfg.API.UseCircuitBreaker)
	cfg.API.Timeout = utils.GetEnvDuration("HTTP_TIMEOUT_SECONDS", cfg.API.Timeout)

	cfg.Breaker.Threshold = utils.GetEnvInt("BREAKER_THRESHOLD", cfg.Breaker.Threshold)
	cfg.Breaker.Timeout = utils.GetEnvMillis("BREAKER_TIMEOUT_MS", cfg.Breaker.Timeout)

	cfg.Database.URI = utils.GetEnvString("MONGODB_URI", "")

	if origins := utils.GetEnvString("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		cfg.Security.CORS.AllowedOrigins = splitList(origins)
	}
	cfg.Security.Session.Secret = utils.GetEnvString("AUTH_SESSION_SECRET", "")
	cfg.Security.Session.TTL = utils.GetEnvDuration("AUTH_SESSION_TTL_SECONDS", cfg.Security.Session.TTL)
	cfg.Security.Session.RememberTTL = utils.GetEnvDuration("AUTH_REMEMBER_TTL_SECONDS", cfg.Security.Session.RememberTTL)
	cfg.Security.RateLimit.RequestsPerSecond = utils.GetEnvFloat64("RATE_LIMIT_RPS", cfg.Security.RateLimit.RequestsPerSecond)
	cfg.Security.RateLimit.Burst = utils.GetEnvInt("RATE_LIMIT_BURST", cfg.Security.RateLimit.Burst)

	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction reports whether the configured environment is production
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.Environment) {
	case "production", "prod":
		return true
	}
	return false
}

// RetryConfig converts the API settings into the executor's retry policy
func (c *Config) RetryConfig() reliability.RetryConfig {
	rc := reliability.DefaultRetryConfig()
	rc.MaxRetries = c.API.MaxRetries
	rc.BaseDelay = c.API.BaseDelay
	rc.MaxDelay = c.API.MaxDelay
	rc.BackoffFactor = c.API.BackoffFactor
	rc.Jitter = c.API.Jitter
	return rc
}

// BreakerConfig converts the breaker settings into the registry's config
func (c *Config) BreakerConfig() reliability.CircuitBreakerConfig {
	bc := reliability.DefaultCircuitBreakerConfig()
	bc.Threshold = c.Breaker.Threshold
	bc.Timeout = c.Breaker.Timeout
	return bc
}

// DatabaseConfig derives the document store settings. An empty URI falls
// back to a local server.
func (c *Config) DatabaseConfig() *database.DatabaseConfig {
	return database.NewDatabaseConfig(c.Database.URI, c.Environment, c.ServiceName)
}

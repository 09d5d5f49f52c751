package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Environment string         `json:"environment" validate:"required"`
	ServiceName string         `json:"service_name" validate:"required"`
	Server      ServerConfig   `json:"server"`
	Logging     LoggingConfig  `json:"logging"`
	API         APIConfig      `json:"api"`
	Breaker     BreakerConfig  `json:"breaker"`
	Database    DatabaseConfig `json:"database"`
	Security    SecurityConfig `json:"security"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Addr            string        `json:"addr" validate:"required"`
	ReadTimeout     time.Duration `json:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `json:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `json:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" validate:"gt=0"`
}

// APIConfig controls the outbound dashboard API client
type APIConfig struct {
	BaseURL           string        `json:"base_url" validate:"required"`
	MaxRetries        int           `json:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay         time.Duration `json:"base_delay" validate:"gte=0"`
	MaxDelay          time.Duration `json:"max_delay" validate:"gte=0"`
	BackoffFactor     float64       `json:"backoff_factor" validate:"gte=1"`
	Jitter            float64       `json:"jitter" validate:"gte=0,lte=1"`
	UseCircuitBreaker bool          `json:"use_circuit_breaker"`
	Timeout           time.Duration `json:"timeout" validate:"gt=0"`
}

// BreakerConfig controls the per-endpoint circuit breakers
type BreakerConfig struct {
	Threshold int           `json:"threshold" validate:"gte=1"`
	Timeout   time.Duration `json:"timeout" validate:"gt=0"`
}

// DatabaseConfig locates the document store
type DatabaseConfig struct {
	URI string `json:"-"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORS      CORSConfig      `json:"cors"`
	Session   SessionConfig   `json:"session"`
	RateLimit RateLimitConfig `json:"rate_limit"`
}

// SessionConfig controls the signed session cookies issued at login. An
// empty secret disables them and only the proxy identity headers count.
type SessionConfig struct {
	Secret      string        `json:"-"`
	TTL         time.Duration `json:"ttl" validate:"gt=0"`
	RememberTTL time.Duration `json:"remember_ttl" validate:"gtefield=TTL"`
}

// RateLimitConfig bounds the per-client request rate of the auth and log
// ingestion routes. Zero requests per second disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `json:"requests_per_second" validate:"gte=0"`
	Burst             int     `json:"burst" validate:"gte=0"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string `json:"allowed_origins"`
	AllowedMethods []string `json:"allowed_methods"`
	AllowedHeaders []string `json:"allowed_headers"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		ServiceName: "content-dashboard",
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "DEBUG",
			Format:     "json",
			Console:    true,
			Remote:     false,
			MaxSize:    1000,
			BufferSize: 50,
		},
		API: APIConfig{
			BaseURL:       "http://localhost:8080/api",
			MaxRetries:    3,
			BaseDelay:     time.Second,
			MaxDelay:      10 * time.Second,
			BackoffFactor: 2,
			Timeout:       30 * time.Second,
		},
		Breaker: BreakerConfig{
			Threshold: 5,
			Timeout:   60 * time.Second,
		},
		Security: SecurityConfig{
			CORS: CORSConfig{
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "OPTIONS", "PUT", "PATCH", "DELETE"},
				AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "X-Request-ID", "X-User-ID", "X-User-Email"},
			},
			Session: SessionConfig{
				TTL:         24 * time.Hour,
				RememberTTL: 30 * 24 * time.Hour,
			},
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 5,
				Burst:             20,
			},
		},
	}
}

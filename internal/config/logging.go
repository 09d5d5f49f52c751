package config

import (
	"strings"

	"github.com/aashari/go-content-dashboard/internal/logger"
)

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level          string `json:"level" validate:"required,oneof=DEBUG INFO WARN ERROR FATAL"`
	Format         string `json:"format" validate:"required,oneof=json text pretty"`
	Console        bool   `json:"console"`
	Remote         bool   `json:"remote"`
	RemoteEndpoint string `json:"remote_endpoint" validate:"omitempty,url"`
	MaxSize        int    `json:"max_size" validate:"gte=1"`
	BufferSize     int    `json:"buffer_size" validate:"gte=1,ltefield=MaxSize"`
}

// GetLoggingConfigForEnvironment returns the logging defaults of env.
// Production logs WARN and above and ships entries to the remote sink.
func GetLoggingConfigForEnvironment(env string) LoggingConfig {
	cfg := DefaultConfig().Logging
	switch strings.ToLower(env) {
	case "production", "prod":
		cfg.Level = "WARN"
		cfg.Remote = true
		cfg.RemoteEndpoint = "http://localhost:8080/api/logs"
	case "development", "dev":
		cfg.Format = "text"
	}
	return cfg
}

// LoggerConfig converts the settings into the structured logger's config
func (c *Config) LoggerConfig() logger.Config {
	lc := logger.DefaultConfig(c.IsProduction())
	if level, err := logger.ParseLevel(c.Logging.Level); err == nil {
		lc.Level = level
	}
	lc.Format = c.Logging.Format
	lc.EnableConsole = c.Logging.Console
	lc.EnableRemote = c.Logging.Remote
	lc.RemoteEndpoint = c.Logging.RemoteEndpoint
	lc.MaxLogSize = c.Logging.MaxSize
	lc.BufferSize = c.Logging.BufferSize
	lc.ServiceName = c.ServiceName
	lc.Environment = c.Environment
	return lc
}

// ToMap returns the logging settings as log metadata
func (c LoggingConfig) ToMap() map[string]any {
	return map[string]any{
		"level":           c.Level,
		"format":          c.Format,
		"console":         c.Console,
		"remote":          c.Remote,
		"remote_endpoint": c.RemoteEndpoint,
		"max_size":        c.MaxSize,
		"buffer_size":     c.BufferSize,
	}
}

package database

import (
	"fmt"
	"strings"

	"github.com/aashari/go-content-dashboard/internal/utils"
)

// DefaultURI is used when no MongoDB URI is configured
const DefaultURI = "mongodb://localhost:27017"

// DatabaseConfig holds MongoDB connection configuration
type DatabaseConfig struct {
	// MongoDB connection URI (includes all connection details including auth)
	URI string
	// The normalized environment (local, development, production, or test)
	Environment string
	// Database name derived from environment and service name
	DatabaseName string
	// Application name reported to the server
	AppName string
}

// NewDatabaseConfig derives the database name as {env-prefix}-{service-name}
func NewDatabaseConfig(uri, environment, serviceName string) *DatabaseConfig {
	environment = strings.ToLower(environment)
	if serviceName == "" {
		serviceName = "content-dashboard"
	}
	if uri == "" {
		uri = DefaultURI
	}

	var envPrefix string
	switch environment {
	case "production", "prod":
		envPrefix = "prod"
		environment = "production"
	case "local":
		envPrefix = "loc"
	case "test":
		envPrefix = "test"
	default:
		envPrefix = "dev"
		environment = "development"
	}

	dbServiceName := strings.ReplaceAll(serviceName, "_", "-")
	dbServiceName = strings.TrimPrefix(dbServiceName, "go-")

	return &DatabaseConfig{
		URI:          uri,
		Environment:  environment,
		DatabaseName: fmt.Sprintf("%s-%s", envPrefix, dbServiceName),
		AppName:      serviceName,
	}
}

// GetDatabaseConfig reads MONGODB_URI, ENVIRONMENT and SERVICE_NAME
func GetDatabaseConfig() *DatabaseConfig {
	return NewDatabaseConfig(
		utils.GetEnvString("MONGODB_URI", ""),
		utils.GetEnvString("ENVIRONMENT", "development"),
		utils.GetEnvString("SERVICE_NAME", ""),
	)
}

// MaskSensitiveData returns a copy of the config with URI credentials masked for logging
func (c *DatabaseConfig) MaskSensitiveData() *DatabaseConfig {
	masked := *c
	at := strings.LastIndex(masked.URI, "@")
	scheme := strings.Index(masked.URI, "//")
	if at > 0 && scheme >= 0 && scheme < at {
		masked.URI = masked.URI[:scheme+2] + "***:***" + masked.URI[at:]
	}
	return &masked
}

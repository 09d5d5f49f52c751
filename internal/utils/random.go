package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDGenerator provides centralized ID generation functionality
type IDGenerator struct {
	now func() time.Time
}

// NewIDGenerator creates a new ID generator
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// GenerateRequestID generates an outbound request ID in the form req_<unix-millis>_<random>
func (g *IDGenerator) GenerateRequestID() string {
	return fmt.Sprintf("req_%d_%s", g.now().UnixMilli(), g.randomSuffix())
}

// GenerateSessionID generates a logger session ID in the form session_<unix-millis>_<random>
func (g *IDGenerator) GenerateSessionID() string {
	return fmt.Sprintf("session_%d_%s", g.now().UnixMilli(), g.randomSuffix())
}

// GenerateCorrelationID generates a UUID for correlation tracking
func (g *IDGenerator) GenerateCorrelationID() string {
	return uuid.New().String()
}

// randomSuffix returns 9 lowercase alphanumeric characters taken from a random UUID
func (g *IDGenerator) randomSuffix() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:9]
}

// Global ID generator instance
var globalIDGenerator = NewIDGenerator()

// GenerateRequestID generates a request ID using the global generator
func GenerateRequestID() string {
	return globalIDGenerator.GenerateRequestID()
}

// GenerateSessionID generates a session ID using the global generator
func GenerateSessionID() string {
	return globalIDGenerator.GenerateSessionID()
}

// GenerateCorrelationID generates a correlation ID using the global generator
func GenerateCorrelationID() string {
	return globalIDGenerator.GenerateCorrelationID()
}

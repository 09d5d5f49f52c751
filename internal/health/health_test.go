package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aashari/go-content-dashboard/internal/logger"
	"github.com/aashari/go-content-dashboard/internal/reliability"
)

func quietLogger() *logger.Logger {
	cfg := logger.DefaultConfig(false)
	cfg.EnableConsole = false
	return logger.New(cfg)
}

func TestStandardHealthChecks_AllHealthy(t *testing.T) {
	breakers := reliability.NewBreakerRegistry(reliability.CircuitBreakerConfig{Threshold: 1, Logger: quietLogger()})
	breakers.Get("/api/content")

	hc := CreateStandardHealthChecks(Dependencies{
		DatabasePing: func(ctx context.Context) error { return nil },
		Breakers:     breakers,
		Version:      "test",
	}, quietLogger())

	status, results := hc.GetOverallHealth(t.Context())
	assert.Equal(t, StatusHealthy, status)
	assert.Len(t, results, 3)
	assert.Equal(t, StatusHealthy, results["database"].Status)
	assert.Equal(t, "All circuits closed", results["circuit_breakers"].Message)
}

func TestStandardHealthChecks_DatabaseDownIsUnhealthy(t *testing.T) {
	hc := CreateStandardHealthChecks(Dependencies{
		DatabasePing: func(ctx context.Context) error { return errors.New("connection refused") },
	}, quietLogger())

	status, results := hc.GetOverallHealth(t.Context())
	assert.Equal(t, StatusUnhealthy, status)
	assert.Equal(t, "connection refused", results["database"].Error)
}

func TestStandardHealthChecks_OpenBreakerDegrades(t *testing.T) {
	breakers := reliability.NewBreakerRegistry(reliability.CircuitBreakerConfig{Threshold: 1, Logger: quietLogger()})
	breakers.Get("/api/settings").RecordFailure()
	breakers.Get("/api/content")

	hc := CreateStandardHealthChecks(Dependencies{Breakers: breakers}, quietLogger())
	status, results := hc.GetOverallHealth(t.Context())

	assert.Equal(t, StatusDegraded, status)
	assert.Equal(t, []string{"/api/settings"}, results["circuit_breakers"].Details["notClosed"])
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		ping       error
		query      string
		wantStatus int
	}{
		{name: "healthy", wantStatus: http.StatusOK},
		{name: "database down", ping: errors.New("down"), wantStatus: http.StatusServiceUnavailable},
		{name: "single check", query: "?check=application", wantStatus: http.StatusOK},
		{name: "unknown check", query: "?check=nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := CreateStandardHealthChecks(Dependencies{
				DatabasePing: func(ctx context.Context) error { return tt.ping },
			}, quietLogger())

			rec := httptest.NewRecorder()
			HealthHandler(hc)(rec, httptest.NewRequest(http.MethodGet, "/health"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.query == "" {
				assert.Contains(t, body, "checks")
			}
		})
	}
}

func TestCheckTimeout(t *testing.T) {
	hc := NewHealthChecker(quietLogger())
	hc.RegisterCheck(&HealthCheck{
		Name:     "slow",
		Critical: true,
		Timeout:  10 * time.Millisecond,
		Check: func(ctx context.Context) HealthCheckResult {
			<-ctx.Done()
			return HealthCheckResult{Status: StatusUnhealthy, Error: ctx.Err().Error()}
		},
	})

	result, err := hc.ExecuteCheck(t.Context(), "slow")
	require.NoError(t, err)
	assert.Equal(t, context.DeadlineExceeded.Error(), result.Error)
}

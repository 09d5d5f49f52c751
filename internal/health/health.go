package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/aashari/go-content-dashboard/internal/logger"
	"github.com/aashari/go-content-dashboard/internal/reliability"
	"github.com/aashari/go-content-dashboard/internal/utils"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// HealthCheck represents a single health check
type HealthCheck struct {
	Name        string
	Description string
	Check       func(ctx context.Context) HealthCheckResult
	Timeout     time.Duration
	Critical    bool // If true, failure affects overall system health
}

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status     HealthStatus   `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	DurationMs int64          `json:"durationMs"`
	Error      string         `json:"error,omitempty"`
}

// HealthChecker manages and executes health checks
type HealthChecker struct {
	checks map[string]*HealthCheck
	mutex  sync.RWMutex
	log    *logger.Logger
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(log *logger.Logger) *HealthChecker {
	if log == nil {
		log = logger.Default()
	}
	return &HealthChecker{
		checks: make(map[string]*HealthCheck),
		log:    log,
	}
}

// RegisterCheck registers a new health check
func (hc *HealthChecker) RegisterCheck(check *HealthCheck) {
	hc.mutex.Lock()
	defer hc.mutex.Unlock()

	if check.Timeout == 0 {
		check.Timeout = 5 * time.Second
	}
	hc.checks[check.Name] = check
}

// ExecuteCheck executes a single health check
func (hc *HealthChecker) ExecuteCheck(ctx context.Context, name string) (*HealthCheckResult, error) {
	hc.mutex.RLock()
	check, exists := hc.checks[name]
	hc.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("health check %s not found", name)
	}
	result := hc.executeCheck(ctx, check)
	return &result, nil
}

// ExecuteAllChecks executes all registered health checks concurrently
func (hc *HealthChecker) ExecuteAllChecks(ctx context.Context) map[string]HealthCheckResult {
	hc.mutex.RLock()
	checks := make([]*HealthCheck, 0, len(hc.checks))
	for _, check := range hc.checks {
		checks = append(checks, check)
	}
	hc.mutex.RUnlock()

	results := make(map[string]HealthCheckResult, len(checks))
	var wg sync.WaitGroup
	var resultMutex sync.Mutex

	for _, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := hc.executeCheck(ctx, check)

			resultMutex.Lock()
			results[check.Name] = result
			resultMutex.Unlock()
		}()
	}

	wg.Wait()
	return results
}

func (hc *HealthChecker) executeCheck(ctx context.Context, check *HealthCheck) HealthCheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, check.Timeout)
	defer cancel()

	start := time.Now()
	result := check.Check(checkCtx)
	result.Timestamp = start.UTC()
	result.DurationMs = time.Since(start).Milliseconds()

	hc.log.Debug(ctx, "Health check executed", logger.ComponentNames.Monitoring, logger.Metadata{
		"name":       check.Name,
		"status":     string(result.Status),
		"durationMs": result.DurationMs,
		"message":    result.Message,
	})
	return result
}

// GetOverallHealth determines the overall system health. A failing
// critical check makes the system unhealthy; anything else only degrades it.
func (hc *HealthChecker) GetOverallHealth(ctx context.Context) (HealthStatus, map[string]HealthCheckResult) {
	results := hc.ExecuteAllChecks(ctx)

	overallStatus := StatusHealthy
	hc.mutex.RLock()
	defer hc.mutex.RUnlock()

	for name, result := range results {
		switch result.Status {
		case StatusUnhealthy:
			if hc.checks[name].Critical {
				overallStatus = StatusUnhealthy
			} else if overallStatus == StatusHealthy {
				overallStatus = StatusDegraded
			}
		case StatusDegraded:
			if overallStatus == StatusHealthy {
				overallStatus = StatusDegraded
			}
		}
	}
	return overallStatus, results
}

// Dependencies are the collaborators probed by the standard checks. Nil
// members are skipped.
type Dependencies struct {
	DatabasePing func(ctx context.Context) error
	Breakers     *reliability.BreakerRegistry
	Version      string
}

// CreateStandardHealthChecks registers the application, database and
// circuit breaker checks
func CreateStandardHealthChecks(deps Dependencies, log *logger.Logger) *HealthChecker {
	hc := NewHealthChecker(log)
	startTime := time.Now()

	hc.RegisterCheck(&HealthCheck{
		Name:        "application",
		Description: "Basic application health",
		Critical:    true,
		Timeout:     2 * time.Second,
		Check: func(ctx context.Context) HealthCheckResult {
			return HealthCheckResult{
				Status:  StatusHealthy,
				Message: "Application is running",
				Details: map[string]any{
					"service":       utils.ServiceName,
					"version":       deps.Version,
					"uptimeSeconds": int64(time.Since(startTime).Seconds()),
					"goroutines":    runtime.NumGoroutine(),
				},
			}
		},
	})

	if deps.DatabasePing != nil {
		hc.RegisterCheck(&HealthCheck{
			Name:        "database",
			Description: "MongoDB connectivity",
			Critical:    true,
			Timeout:     3 * time.Second,
			Check: func(ctx context.Context) HealthCheckResult {
				if err := deps.DatabasePing(ctx); err != nil {
					return HealthCheckResult{Status: StatusUnhealthy, Message: "Database unreachable", Error: err.Error()}
				}
				return HealthCheckResult{Status: StatusHealthy, Message: "Database reachable"}
			},
		})
	}

	if deps.Breakers != nil {
		hc.RegisterCheck(&HealthCheck{
			Name:        "circuit_breakers",
			Description: "Outbound endpoint circuit breakers",
			Timeout:     time.Second,
			Check: func(ctx context.Context) HealthCheckResult {
				return breakerResult(deps.Breakers.Stats())
			},
		})
	}

	return hc
}

func breakerResult(stats []reliability.BreakerStats) HealthCheckResult {
	var open []string
	states := make(map[string]any, len(stats))
	for _, s := range stats {
		states[s.Endpoint] = s.State
		if s.State != reliability.StateClosed.String() {
			open = append(open, s.Endpoint)
		}
	}
	sort.Strings(open)

	if len(open) > 0 {
		return HealthCheckResult{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("%d circuit(s) not closed", len(open)),
			Details: map[string]any{"breakers": states, "notClosed": open},
		}
	}
	return HealthCheckResult{
		Status:  StatusHealthy,
		Message: "All circuits closed",
		Details: map[string]any{"breakers": states},
	}
}

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Status    HealthStatus                 `json:"status"`
	Timestamp string                       `json:"timestamp"`
	Checks    map[string]HealthCheckResult `json:"checks"`
}

// HealthHandler serves all checks, or one with ?check=name
// @Summary      Health check endpoint
// @Description  Returns the status of the application, database and circuit breakers
// @Tags         health
// @Produce      json
// @Param        check  query     string  false  "Run only the named check"
// @Success      200    {object}  health.HealthResponse
// @Failure      503    {object}  health.HealthResponse
// @Router       /health [get]
func HealthHandler(hc *HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if checkName := r.URL.Query().Get("check"); checkName != "" {
			result, err := hc.ExecuteCheck(ctx, checkName)
			if err != nil {
				writeJSONResponse(w, http.StatusNotFound, map[string]any{
					"success": false,
					"error":   fmt.Sprintf("Health check not found: %s", checkName),
				})
				return
			}
			writeJSONResponse(w, statusCode(result.Status), result)
			return
		}

		overallStatus, results := hc.GetOverallHealth(ctx)
		writeJSONResponse(w, statusCode(overallStatus), HealthResponse{
			Status:    overallStatus,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    results,
		})
	}
}

// statusCode maps a status to HTTP; degraded still answers 200 so load
// balancers keep routing
func statusCode(s HealthStatus) int {
	if s == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func writeJSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set(utils.HeaderContentType, utils.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

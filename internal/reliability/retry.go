package reliability

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/aashari/go-content-dashboard/internal/logger"
)

// RetryConfig defines the backoff policy for outbound calls
type RetryConfig struct {
	MaxRetries           int // total attempts, including the first
	BaseDelay            time.Duration
	MaxDelay             time.Duration
	BackoffFactor        float64
	RetryableStatusCodes []int
	// Jitter in [0,1] shaves up to that fraction off each delay. Zero keeps
	// delays deterministic.
	Jitter float64
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:           3,
		BaseDelay:            time.Second,
		MaxDelay:             10 * time.Second,
		BackoffFactor:        2,
		RetryableStatusCodes: []int{408, 429, 500, 502, 503, 504},
	}
}

// Validate reports configuration values that cannot work
func (c RetryConfig) Validate() error {
	switch {
	case c.MaxRetries < 1:
		return fmt.Errorf("max retries must be at least 1, got %d", c.MaxRetries)
	case c.BaseDelay < 0:
		return fmt.Errorf("base delay must not be negative, got %s", c.BaseDelay)
	case c.MaxDelay < c.BaseDelay:
		return fmt.Errorf("max delay %s is below base delay %s", c.MaxDelay, c.BaseDelay)
	case c.BackoffFactor < 1:
		return fmt.Errorf("backoff factor must be at least 1, got %g", c.BackoffFactor)
	case c.Jitter < 0 || c.Jitter > 1:
		return fmt.Errorf("jitter must be within [0,1], got %g", c.Jitter)
	}
	return nil
}

// IsRetryableStatus reports whether status is in the retryable set
func (c RetryConfig) IsRetryableStatus(status int) bool {
	return slices.Contains(c.RetryableStatusCodes, status)
}

// ShouldRetryStatus reports whether a response with status on attempt
// (starting at 1) gets another attempt
func (c RetryConfig) ShouldRetryStatus(status, attempt int) bool {
	return attempt < c.MaxRetries && c.IsRetryableStatus(status)
}

// ShouldRetryNetwork reports whether a transport failure on attempt gets another attempt
func (c RetryConfig) ShouldRetryNetwork(attempt int) bool {
	return attempt < c.MaxRetries
}

// Backoff returns min(BaseDelay * BackoffFactor^(attempt-1), MaxDelay)
func (c RetryConfig) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(c.BaseDelay) * math.Pow(c.BackoffFactor, float64(attempt-1))
	if delay > float64(c.MaxDelay) {
		return c.MaxDelay
	}
	return time.Duration(delay)
}

// Delay is Backoff with jitter applied. rnd returns values in [0,1); nil uses math/rand.
func (c RetryConfig) Delay(attempt int, rnd func() float64) time.Duration {
	d := c.Backoff(attempt)
	if c.Jitter <= 0 || d <= 0 {
		return d
	}
	if rnd == nil {
		rnd = rand.Float64
	}
	return d - time.Duration(float64(d)*c.Jitter*rnd())
}

// Sleep waits for d or until ctx is done, whichever comes first
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RetryExecutor retries a generic operation with the backoff policy. It is
// used for infrastructure calls (database connect, ping) rather than HTTP.
type RetryExecutor struct {
	config    RetryConfig
	retryable func(error) bool
	sleep     func(context.Context, time.Duration) error
	log       *logger.Logger
	component string
}

// NewRetryExecutor creates a new retry executor. A nil retryable retries
// every error that IsTransientError accepts.
func NewRetryExecutor(config RetryConfig, retryable func(error) bool, log *logger.Logger, component string) *RetryExecutor {
	if retryable == nil {
		retryable = IsTransientError
	}
	return &RetryExecutor{
		config:    config,
		retryable: retryable,
		sleep:     Sleep,
		log:       log,
		component: component,
	}
}

// ExecuteWithRetry executes an operation with retry logic
func (r *RetryExecutor) ExecuteWithRetry(ctx context.Context, operation func(ctx context.Context) error) error {
	log := r.log
	if log == nil {
		log = logger.Default()
	}

	var lastErr error
	for attempt := 1; attempt <= r.config.MaxRetries; attempt++ {
		err := operation(ctx)
		if err == nil {
			if attempt > 1 {
				log.Info(ctx, "Operation succeeded after retry", r.component, logger.Metadata{"attempt": attempt})
			}
			return nil
		}
		lastErr = err

		if !r.retryable(err) || ctx.Err() != nil {
			return err
		}
		if attempt >= r.config.MaxRetries {
			break
		}

		delay := r.config.Delay(attempt, nil)
		log.Warn(ctx, "Operation failed, retrying", r.component, logger.Metadata{
			"attempt":    attempt,
			"error":      err.Error(),
			"retryAfter": fmt.Sprintf("%dms", delay.Milliseconds()),
		})
		if err := r.sleep(ctx, delay); err != nil {
			return err
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", r.config.MaxRetries, lastErr)
}

var transientPatterns = []string{
	"connection refused",
	"connection reset",
	"timeout",
	"temporary failure",
	"network is unreachable",
	"no such host",
	"i/o timeout",
	"broken pipe",
	"server selection error",
}

// IsTransientError reports whether err looks like a recoverable network
// failure. Context cancellation is never transient.
func IsTransientError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

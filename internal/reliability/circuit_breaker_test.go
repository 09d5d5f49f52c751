package reliability

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aashari/go-content-dashboard/internal/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func quietLogger() *logger.Logger {
	cfg := logger.DefaultConfig(false)
	cfg.EnableConsole = false
	return logger.New(cfg)
}

func newTestBreaker(clock *fakeClock, log *logger.Logger) *CircuitBreaker {
	return NewCircuitBreaker("/api/content", CircuitBreakerConfig{
		Threshold: 5,
		Timeout:   60 * time.Second,
		Now:       clock.Now,
		Logger:    log,
	})
}

func TestCircuitBreakerOpensAtThreshold(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	cb := newTestBreaker(clock, quietLogger())

	for i := 0; i < 4; i++ {
		cb.RecordFailure()
		assert.False(t, cb.IsOpen(), "failure %d", i+1)
	}

	cb.RecordFailure()
	assert.True(t, cb.IsOpen())
	assert.Equal(t, StateOpen, cb.State())
	assert.Equal(t, 5, cb.FailureCount())
}

func TestCircuitBreakerSuccessResetsCount(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	cb := newTestBreaker(clock, quietLogger())

	for i := 0; i < 4; i++ {
		cb.RecordFailure()
	}
	cb.RecordSuccess()
	assert.Equal(t, 0, cb.FailureCount())

	for i := 0; i < 4; i++ {
		cb.RecordFailure()
	}
	assert.False(t, cb.IsOpen())
}

func TestCircuitBreakerHalfOpenLifecycle(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	log := quietLogger()
	cb := newTestBreaker(clock, log)

	for i := 0; i < 5; i++ {
		cb.RecordFailure()
	}
	require.True(t, cb.IsOpen())

	clock.Advance(60 * time.Second)
	assert.True(t, cb.IsOpen(), "timeout must be strictly exceeded")

	clock.Advance(time.Millisecond)
	assert.False(t, cb.IsOpen(), "first query after timeout lets a trial call through")
	assert.Equal(t, StateHalfOpen, cb.State())
	assert.True(t, cb.IsOpen(), "only one trial call before an outcome is recorded")

	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 0, cb.FailureCount())

	for i := 0; i < 4; i++ {
		cb.RecordFailure()
		assert.False(t, cb.IsOpen())
	}
	cb.RecordFailure()
	assert.True(t, cb.IsOpen())

	var msgs []string
	for _, e := range log.Logs() {
		msgs = append(msgs, e.Message)
	}
	assert.Equal(t, []string{
		"Circuit Breaker Opened",
		"Circuit Breaker Half-Open",
		"Circuit Breaker Closed",
		"Circuit Breaker Opened",
	}, msgs)
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	var transitions []string
	cb := NewCircuitBreaker("/x", CircuitBreakerConfig{
		Threshold: 2,
		Timeout:   time.Second,
		Now:       clock.Now,
		Logger:    quietLogger(),
		OnStateChange: func(endpoint string, from, to CircuitState) {
			transitions = append(transitions, fmt.Sprintf("%s:%s->%s", endpoint, from, to))
		},
	})

	cb.RecordFailure()
	cb.RecordFailure()
	clock.Advance(2 * time.Second)
	require.False(t, cb.IsOpen())

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
	assert.True(t, cb.IsOpen(), "timeout is re-armed by the failed trial")

	clock.Advance(2 * time.Second)
	assert.False(t, cb.IsOpen())

	assert.Equal(t, []string{
		"/x:closed->open",
		"/x:open->half-open",
		"/x:half-open->open",
		"/x:open->half-open",
	}, transitions)
}

func TestCircuitBreakerDefaults(t *testing.T) {
	cb := NewCircuitBreaker("/x", CircuitBreakerConfig{Logger: quietLogger()})
	assert.Equal(t, 5, cb.config.Threshold)
	assert.Equal(t, 60*time.Second, cb.config.Timeout)
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
}

func TestBreakerRegistry(t *testing.T) {
	registry := NewBreakerRegistry(CircuitBreakerConfig{Logger: quietLogger()})

	a := registry.Get("/api/a")
	assert.Same(t, a, registry.Get("/api/a"))
	b := registry.Get("/api/b")
	assert.NotSame(t, a, b)

	a.RecordFailure()

	stats := registry.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, "/api/a", stats[0].Endpoint)
	assert.Equal(t, 1, stats[0].Failures)
	assert.Equal(t, 0, stats[1].Failures)
	assert.Equal(t, 2, registry.Len())
}

func TestBreakerRegistryConcurrentGet(t *testing.T) {
	registry := NewBreakerRegistry(CircuitBreakerConfig{Logger: quietLogger()})

	var wg sync.WaitGroup
	results := make([]*CircuitBreaker, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cb := registry.Get("/shared")
			cb.RecordFailure()
			results[i] = cb
		}(i)
	}
	wg.Wait()

	for _, cb := range results {
		assert.Same(t, results[0], cb)
	}
	assert.Equal(t, 50, results[0].FailureCount())
}

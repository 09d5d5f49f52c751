package reliability

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aashari/go-content-dashboard/internal/logger"
)

// CircuitState represents the state of a circuit breaker
type CircuitState int

const (
	// StateClosed - calls flow normally
	StateClosed CircuitState = iota
	// StateOpen - calls are refused without touching the network
	StateOpen
	// StateHalfOpen - one trial call has been let through
	StateHalfOpen
)

// String returns the string representation of the circuit state
func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig defines configuration for circuit breaker behavior
type CircuitBreakerConfig struct {
	Threshold int           // consecutive failures that open the circuit
	Timeout   time.Duration // time since the last failure before a trial call
	Now       func() time.Time
	Logger    *logger.Logger
	// OnStateChange is called after every transition, outside the breaker lock
	OnStateChange func(endpoint string, from, to CircuitState)
}

// DefaultCircuitBreakerConfig returns the default configuration
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Threshold: 5,
		Timeout:   60 * time.Second,
	}
}

func (c CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	def := DefaultCircuitBreakerConfig()
	if c.Threshold <= 0 {
		c.Threshold = def.Threshold
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// CircuitBreaker is a per-endpoint failure counting state machine. The
// open to half-open transition is evaluated lazily by IsOpen; there is no
// background timer.
type CircuitBreaker struct {
	endpoint        string
	config          CircuitBreakerConfig
	state           CircuitState
	failureCount    int
	lastFailureTime time.Time
	mutex           sync.Mutex
}

// NewCircuitBreaker creates a closed circuit breaker for endpoint
func NewCircuitBreaker(endpoint string, config CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		endpoint: endpoint,
		config:   config.withDefaults(),
		state:    StateClosed,
	}
}

type transition struct {
	from, to CircuitState
	failures int
}

// IsOpen reports whether calls must be refused. When the circuit is open
// and the timeout has elapsed since the last failure, it moves to half-open
// and returns false exactly once so a single trial call can run.
func (cb *CircuitBreaker) IsOpen() bool {
	cb.mutex.Lock()
	var t *transition
	open := true
	switch cb.state {
	case StateClosed:
		open = false
	case StateOpen:
		if cb.config.Now().Sub(cb.lastFailureTime) > cb.config.Timeout {
			cb.state = StateHalfOpen
			t = &transition{from: StateOpen, to: StateHalfOpen, failures: cb.failureCount}
			open = false
		}
	case StateHalfOpen:
		// the trial call is still outstanding
	}
	cb.mutex.Unlock()

	cb.report(t)
	return open
}

// RecordSuccess resets the failure count and closes a half-open circuit
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mutex.Lock()
	var t *transition
	cb.failureCount = 0
	if cb.state != StateClosed {
		t = &transition{from: cb.state, to: StateClosed}
		cb.state = StateClosed
	}
	cb.mutex.Unlock()

	cb.report(t)
}

// RecordFailure counts a failure. The circuit opens once the count reaches
// the threshold. A failed trial call reopens it and re-arms the timeout.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mutex.Lock()
	var t *transition
	cb.failureCount++
	cb.lastFailureTime = cb.config.Now()

	switch cb.state {
	case StateClosed:
		if cb.failureCount >= cb.config.Threshold {
			cb.state = StateOpen
			t = &transition{from: StateClosed, to: StateOpen, failures: cb.failureCount}
		}
	case StateHalfOpen:
		cb.state = StateOpen
		t = &transition{from: StateHalfOpen, to: StateOpen, failures: cb.failureCount}
	}
	cb.mutex.Unlock()

	cb.report(t)
}

// FailureCount returns the consecutive failure count
func (cb *CircuitBreaker) FailureCount() int {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.failureCount
}

// State returns the current state without evaluating the timeout
func (cb *CircuitBreaker) State() CircuitState {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}

// Endpoint returns the key the breaker guards
func (cb *CircuitBreaker) Endpoint() string {
	return cb.endpoint
}

// BreakerStats is a point-in-time view of one breaker
type BreakerStats struct {
	Endpoint    string    `json:"endpoint"`
	State       string    `json:"state"`
	Failures    int       `json:"failures"`
	LastFailure time.Time `json:"lastFailure,omitempty"`
}

// Stats returns statistics about the circuit breaker
func (cb *CircuitBreaker) Stats() BreakerStats {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return BreakerStats{
		Endpoint:    cb.endpoint,
		State:       cb.state.String(),
		Failures:    cb.failureCount,
		LastFailure: cb.lastFailureTime,
	}
}

func (cb *CircuitBreaker) report(t *transition) {
	if t == nil {
		return
	}

	log := cb.config.Logger
	if log == nil {
		log = logger.Default()
	}
	ctx := context.Background()
	component := logger.ComponentNames.CircuitBreaker

	switch t.to {
	case StateOpen:
		log.Warn(ctx, "Circuit Breaker Opened", component, logger.Metadata{
			"endpoint": cb.endpoint,
			"state":    t.to.String(),
			"failures": t.failures,
		})
	case StateHalfOpen:
		log.Info(ctx, "Circuit Breaker Half-Open", component, logger.Metadata{
			"endpoint": cb.endpoint,
			"state":    t.to.String(),
		})
	case StateClosed:
		log.Info(ctx, "Circuit Breaker Closed", component, logger.Metadata{
			"endpoint": cb.endpoint,
			"state":    t.to.String(),
		})
	}

	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.endpoint, t.from, t.to)
	}
}

// BreakerRegistry lazily creates one breaker per endpoint. Breakers live for
// the lifetime of the registry; there is no eviction.
type BreakerRegistry struct {
	config   CircuitBreakerConfig
	breakers map[string]*CircuitBreaker
	mutex    sync.RWMutex
}

// NewBreakerRegistry creates a registry whose breakers share config
func NewBreakerRegistry(config CircuitBreakerConfig) *BreakerRegistry {
	return &BreakerRegistry{
		config:   config,
		breakers: make(map[string]*CircuitBreaker),
	}
}

// Get returns the breaker for endpoint, creating it on first use
func (r *BreakerRegistry) Get(endpoint string) *CircuitBreaker {
	r.mutex.RLock()
	cb, ok := r.breakers[endpoint]
	r.mutex.RUnlock()
	if ok {
		return cb
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if cb, ok := r.breakers[endpoint]; ok {
		return cb
	}
	cb = NewCircuitBreaker(endpoint, r.config)
	r.breakers[endpoint] = cb
	return cb
}

// Len returns the number of breakers created so far
func (r *BreakerRegistry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.breakers)
}

// Stats returns statistics for all breakers ordered by endpoint
func (r *BreakerRegistry) Stats() []BreakerStats {
	r.mutex.RLock()
	breakers := make([]*CircuitBreaker, 0, len(r.breakers))
	for _, cb := range r.breakers {
		breakers = append(breakers, cb)
	}
	r.mutex.RUnlock()

	stats := make([]BreakerStats, 0, len(breakers))
	for _, cb := range breakers {
		stats = append(stats, cb.Stats())
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Endpoint < stats[j].Endpoint })
	return stats
}

var (
	defaultRegistryMu sync.Mutex
	defaultRegistry   = NewBreakerRegistry(DefaultCircuitBreakerConfig())
)

// DefaultRegistry returns the process-wide registry
func DefaultRegistry() *BreakerRegistry {
	defaultRegistryMu.Lock()
	defer defaultRegistryMu.Unlock()
	return defaultRegistry
}

// SetDefaultRegistry replaces the process-wide registry
func SetDefaultRegistry(r *BreakerRegistry) {
	defaultRegistryMu.Lock()
	defer defaultRegistryMu.Unlock()
	defaultRegistry = r
}

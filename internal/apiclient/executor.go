package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/aashari/go-content-dashboard/internal/errors"
	"github.com/aashari/go-content-dashboard/internal/logger"
	"github.com/aashari/go-content-dashboard/internal/reliability"
	"github.com/aashari/go-content-dashboard/internal/utils"
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Request describes one logical outbound call
type Request struct {
	Method  string
	Headers map[string]string
	// Body is JSON encoded. []byte and json.RawMessage are sent as is.
	Body any
}

// CallContext identifies one logical call across all of its attempts
type CallContext struct {
	Endpoint  string
	Method    string
	RequestID string
	UserID    string
	Timestamp string
	UserAgent string
	IP        string
}

// Details renders the context as a detail bag for errors and log metadata
func (c CallContext) Details() map[string]any {
	d := map[string]any{
		"endpoint":  c.Endpoint,
		"method":    c.Method,
		"requestId": c.RequestID,
		"timestamp": c.Timestamp,
	}
	if c.UserID != "" {
		d["userId"] = c.UserID
	}
	if c.UserAgent != "" {
		d["userAgent"] = c.UserAgent
	}
	if c.IP != "" {
		d["ip"] = c.IP
	}
	return d
}

func (c CallContext) metadata(extra logger.Metadata) logger.Metadata {
	md := logger.Metadata(c.Details())
	for k, v := range extra {
		md[k] = v
	}
	return md
}

// Observer receives call outcomes, typically to feed metrics
type Observer interface {
	ObserveAttempt(endpoint string, status int, err error)
	ObserveRetry(endpoint, reason string)
	ObserveRequest(endpoint string, success bool, duration time.Duration)
	ObserveCircuitRejected(endpoint string)
}

// Executor runs outbound calls with retry, error classification, an
// optional per-endpoint circuit breaker, and structured logging
type Executor struct {
	client    Doer
	retry     reliability.RetryConfig
	breakers  *reliability.BreakerRegistry
	log       *logger.Logger
	sleep     func(ctx context.Context, d time.Duration) error
	random    func() float64
	newID     func() string
	now       func() time.Time
	userAgent string
	observer  Observer
}

// Option customizes an Executor
type Option func(*Executor)

func WithRetryConfig(cfg reliability.RetryConfig) Option {
	return func(e *Executor) { e.retry = cfg }
}

func WithBreakers(r *reliability.BreakerRegistry) Option {
	return func(e *Executor) { e.breakers = r }
}

func WithLogger(l *logger.Logger) Option {
	return func(e *Executor) { e.log = l }
}

// WithSleeper replaces the backoff wait, mainly for tests
func WithSleeper(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Executor) { e.sleep = fn }
}

// WithRandom sets the jitter source
func WithRandom(fn func() float64) Option {
	return func(e *Executor) { e.random = fn }
}

func WithRequestIDGenerator(fn func() string) Option {
	return func(e *Executor) { e.newID = fn }
}

func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

func WithUserAgent(ua string) Option {
	return func(e *Executor) { e.userAgent = ua }
}

func WithObserver(o Observer) Option {
	return func(e *Executor) { e.observer = o }
}

// NewExecutor creates an executor. A nil client uses http.DefaultClient.
func NewExecutor(client Doer, opts ...Option) *Executor {
	if client == nil {
		client = http.DefaultClient
	}
	e := &Executor{
		client:    client,
		retry:     reliability.DefaultRetryConfig(),
		sleep:     reliability.Sleep,
		newID:     utils.GenerateRequestID,
		now:       time.Now,
		userAgent: utils.UserAgent,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.breakers == nil {
		e.breakers = reliability.DefaultRegistry()
	}
	if e.log == nil {
		e.log = logger.Default()
	}
	return e
}

// Breakers returns the registry consulted by FetchWithCircuitBreaker
func (e *Executor) Breakers() *reliability.BreakerRegistry {
	return e.breakers
}

const component = "ApiErrorHandler"

// Fetch performs one logical call to url and decodes a successful JSON body
// into out (which may be nil). partial overrides fields of the generated
// call context. Every failure is returned as an *errors.AppError carrying
// the call context in its details.
func (e *Executor) Fetch(ctx context.Context, url string, req Request, partial *CallContext, out any) error {
	cc := e.callContext(url, req, partial)
	ctx = logger.WithRequestID(ctx, cc.RequestID)

	e.log.Debug(ctx, "API Request Started", component, cc.metadata(logger.Metadata{
		"headers": req.Headers,
	}))

	start := e.now()
	err := e.executeWithRetry(ctx, url, req, cc, out)
	elapsed := e.now().Sub(start)
	duration := logger.FormatDuration(elapsed)

	if e.observer != nil {
		e.observer.ObserveRequest(url, err == nil, elapsed)
	}

	if err == nil {
		e.log.Info(ctx, "API Request Successful", component, cc.metadata(logger.Metadata{
			"duration": duration,
			"success":  true,
		}))
		return nil
	}

	e.log.Error(ctx, "API Request Failed", component, cc.metadata(logger.Metadata{
		"duration": duration,
		"success":  false,
		"error":    err.Error(),
	}), err)

	return apperrors.Enhance(err, cc.Details())
}

// FetchWithCircuitBreaker is Fetch guarded by the endpoint's breaker. An
// open breaker fails fast with a 503 circuit-open error and no network I/O.
// Caller cancellation or an expired caller deadline is not counted
// against the endpoint.
func (e *Executor) FetchWithCircuitBreaker(ctx context.Context, url string, req Request, partial *CallContext, out any) error {
	cb := e.breakers.Get(url)

	if cb.IsOpen() {
		failures := cb.FailureCount()
		e.log.Warn(ctx, "Circuit Breaker Open", component, logger.Metadata{
			"endpoint": url,
			"state":    "open",
			"failures": failures,
		})
		if e.observer != nil {
			e.observer.ObserveCircuitRejected(url)
		}
		return apperrors.NewCircuitOpenError(url, failures)
	}

	err := e.Fetch(ctx, url, req, partial, out)
	switch {
	case err == nil:
		cb.RecordSuccess()
	case ctx.Err() != nil:
		// the caller gave up or ran out of time; nothing is known about the endpoint
	default:
		cb.RecordFailure()
	}
	return err
}

func (e *Executor) callContext(url string, req Request, partial *CallContext) CallContext {
	cc := CallContext{
		Endpoint:  url,
		Method:    methodOf(req),
		RequestID: e.newID(),
		Timestamp: e.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		UserAgent: e.userAgent,
	}
	if partial == nil {
		return cc
	}
	if partial.Endpoint != "" {
		cc.Endpoint = partial.Endpoint
	}
	if partial.Method != "" {
		cc.Method = partial.Method
	}
	if partial.RequestID != "" {
		cc.RequestID = partial.RequestID
	}
	if partial.UserID != "" {
		cc.UserID = partial.UserID
	}
	if partial.Timestamp != "" {
		cc.Timestamp = partial.Timestamp
	}
	if partial.UserAgent != "" {
		cc.UserAgent = partial.UserAgent
	}
	if partial.IP != "" {
		cc.IP = partial.IP
	}
	return cc
}

func methodOf(req Request) string {
	if req.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(req.Method)
}

// executeWithRetry runs sequential attempts until one succeeds, a
// non-retryable outcome is reached, or attempts run out
func (e *Executor) executeWithRetry(ctx context.Context, url string, req Request, cc CallContext, out any) error {
	body, err := encodeBody(req.Body)
	if err != nil {
		return apperrors.New(fmt.Sprintf("failed to encode request body: %v", err), http.StatusBadRequest, true, nil)
	}

	for attempt := 1; ; attempt++ {
		status, errBody, err := e.attempt(ctx, url, req, body, cc, out)
		if e.observer != nil {
			e.observer.ObserveAttempt(url, status, err)
		}

		if err != nil {
			if apperrors.IsAppError(err) || ctx.Err() != nil {
				return err
			}
			if !e.retry.ShouldRetryNetwork(attempt) {
				return err
			}

			delay := e.retry.Delay(attempt, e.random)
			e.log.Warn(ctx, "Network Error - Retrying", component, cc.metadata(logger.Metadata{
				"attempt":    attempt,
				"error":      err.Error(),
				"retryAfter": fmt.Sprintf("%dms", delay.Milliseconds()),
			}))
			if e.observer != nil {
				e.observer.ObserveRetry(url, "network")
			}
			if err := e.sleep(ctx, delay); err != nil {
				return err
			}
			continue
		}

		if status >= 200 && status < 300 {
			return nil
		}

		if !e.retry.ShouldRetryStatus(status, attempt) {
			return apperrors.FromResponse(status, errBody, cc.Details())
		}

		delay := e.retry.Delay(attempt, e.random)
		e.log.Warn(ctx, "API Request Failed - Retrying", component, cc.metadata(logger.Metadata{
			"attempt":    attempt,
			"status":     status,
			"retryAfter": fmt.Sprintf("%dms", delay.Milliseconds()),
		}))
		if e.observer != nil {
			e.observer.ObserveRetry(url, "status")
		}
		if err := e.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// attempt performs a single request. A non-2xx status comes back with its
// parsed error body (nil when absent or not JSON) and a nil error. A
// transport failure or an undecodable success body is returned as err.
func (e *Executor) attempt(ctx context.Context, url string, req Request, body []byte, cc CallContext, out any) (int, *apperrors.APIError, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, cc.Method, url, reader)
	if err != nil {
		return 0, nil, apperrors.New(fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest, true, nil)
	}
	httpReq.Header.Set(utils.HeaderContentType, utils.ContentTypeJSON)
	httpReq.Header.Set(utils.HeaderRequestID, cc.RequestID)
	if cc.UserAgent != "" {
		httpReq.Header.Set(utils.HeaderUserAgent, cc.UserAgent)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, parseErrorBody(resp.Header.Get(utils.HeaderContentType), payload), nil
	}

	if out != nil && len(bytes.TrimSpace(payload)) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return resp.StatusCode, nil, fmt.Errorf("failed to decode response body: %w", err)
		}
	}
	return resp.StatusCode, nil, nil
}

// parseErrorBody decodes a JSON error body. Anything unparseable is absent.
func parseErrorBody(contentType string, payload []byte) *apperrors.APIError {
	if !strings.Contains(contentType, "application/json") || len(payload) == 0 {
		return nil
	}
	var body apperrors.APIError
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil
	}
	return &body
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		return json.Marshal(b)
	}
}

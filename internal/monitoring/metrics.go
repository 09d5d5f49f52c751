package monitoring

import (
	"net/http"
	"net/http/pprof"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aashari/go-content-dashboard/internal/reliability"
)

const namespace = "dashboard"

// Metrics holds the Prometheus collectors of the service. Each instance owns
// its registry so tests never share state.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	apiAttempts     *prometheus.CounterVec
	apiRetries      *prometheus.CounterVec
	apiRequests     *prometheus.CounterVec
	apiDuration     *prometheus.HistogramVec
	circuitRejected *prometheus.CounterVec
	circuitState    *prometheus.GaugeVec
	circuitChanges  *prometheus.CounterVec

	logSends *prometheus.CounterVec
}

// New registers every collector on a fresh registry, plus the Go runtime
// and process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Inbound HTTP requests by route and status code",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Inbound HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_attempts_total",
			Help:      "Outbound API attempts by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		apiRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_retries_total",
			Help:      "Outbound API retries by endpoint and reason",
		}, []string{"endpoint", "reason"}),
		apiRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Logical outbound API calls by endpoint and result",
		}, []string{"endpoint", "result"}),
		apiDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Logical outbound API call latency including retries",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"endpoint"}),
		circuitRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_rejected_total",
			Help:      "Calls failed fast by an open circuit breaker",
		}, []string{"endpoint"}),
		circuitState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_state",
			Help:      "Circuit breaker state: 0 closed, 1 open, 2 half-open",
		}, []string{"endpoint"}),
		circuitChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_transitions_total",
			Help:      "Circuit breaker transitions by target state",
		}, []string{"endpoint", "to"}),
		logSends: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_remote_sends_total",
			Help:      "Log entries shipped to the remote sink by result",
		}, []string{"result"}),
	}
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveAttempt counts one outbound attempt. A transport failure has no status.
func (m *Metrics) ObserveAttempt(endpoint string, status int, err error) {
	outcome := strconv.Itoa(status)
	if status == 0 {
		outcome = "network_error"
		if err == nil {
			outcome = "unknown"
		}
	}
	m.apiAttempts.WithLabelValues(EndpointLabel(endpoint), outcome).Inc()
}

// ObserveRetry counts one scheduled retry
func (m *Metrics) ObserveRetry(endpoint, reason string) {
	m.apiRetries.WithLabelValues(EndpointLabel(endpoint), reason).Inc()
}

// ObserveRequest records the outcome and latency of a logical call
func (m *Metrics) ObserveRequest(endpoint string, success bool, duration time.Duration) {
	label := EndpointLabel(endpoint)
	result := "success"
	if !success {
		result = "failure"
	}
	m.apiRequests.WithLabelValues(label, result).Inc()
	m.apiDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// ObserveCircuitRejected counts a fail-fast rejection
func (m *Metrics) ObserveCircuitRejected(endpoint string) {
	m.circuitRejected.WithLabelValues(EndpointLabel(endpoint)).Inc()
}

// ObserveStateChange matches reliability.CircuitBreakerConfig.OnStateChange
func (m *Metrics) ObserveStateChange(endpoint string, _, to reliability.CircuitState) {
	label := EndpointLabel(endpoint)
	m.circuitState.WithLabelValues(label).Set(float64(to))
	m.circuitChanges.WithLabelValues(label, to.String()).Inc()
}

// ObserveLogSend matches the logger's send observer
func (m *Metrics) ObserveLogSend(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.logSends.WithLabelValues(result).Inc()
}

func (m *Metrics) observeHTTP(method, route string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

var idSegment = regexp.MustCompile(`^([0-9a-fA-F]{24}|[0-9]+|[0-9a-fA-F-]{36})$`)

// EndpointLabel reduces a URL to a bounded label: the query is dropped and
// id-like path segments become ":id"
func EndpointLabel(endpoint string) string {
	if i := strings.IndexAny(endpoint, "?#"); i >= 0 {
		endpoint = endpoint[:i]
	}
	if i := strings.Index(endpoint, "://"); i >= 0 {
		if j := strings.IndexByte(endpoint[i+3:], '/'); j >= 0 {
			endpoint = endpoint[i+3+j:]
		} else {
			endpoint = "/"
		}
	}
	segments := strings.Split(endpoint, "/")
	for i, s := range segments {
		if idSegment.MatchString(s) {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}

// MetricsMiddleware wraps HTTP handlers to collect request metrics. The
// route label is the matched ServeMux pattern.
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.observeHTTP(r.Method, route, wrapper.statusCode, time.Since(start))
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.statusCode = statusCode
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWrapper) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// SetupPprofRoutes adds pprof endpoints to the router
func SetupPprofRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
}

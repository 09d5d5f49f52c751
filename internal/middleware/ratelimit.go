package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/aashari/go-content-dashboard/internal/errors"
	"github.com/aashari/go-content-dashboard/internal/logger"
)

// MsgTooManyRequests is answered when a client exceeds its rate
const MsgTooManyRequests = "Too many requests, please try again later"

// idleLimiterTTL is how long an unused client limiter is kept
const idleLimiterTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client ip. Buckets idle for
// longer than idleLimiterTTL are swept on access.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	log   *logger.Logger
	now   func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

// NewRateLimiter allows rps requests per second per client with burst.
// A non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst int, log *logger.Logger) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	if log == nil {
		log = logger.Default()
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		log:     log,
		now:     time.Now,
		clients: make(map[string]*clientLimiter),
	}
}

// Allow reports whether the client at ip may proceed now
func (l *RateLimiter) Allow(ip string) bool {
	if l.rps <= 0 {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > idleLimiterTTL {
		for key, c := range l.clients {
			if now.Sub(c.lastSeen) > idleLimiterTTL {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// Len returns the number of tracked clients
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Limit wraps next so over-rate clients get 429
func (l *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)
		if !l.Allow(ip) {
			l.log.Warn(r.Context(), "Rate limit exceeded", logger.ComponentNames.Middleware, logger.Metadata{
				"ip":     ip,
				"method": r.Method,
				"path":   r.URL.Path,
			})
			w.Header().Set("Retry-After", strconv.Itoa(l.retryAfterSeconds()))
			apperrors.WriteStatus(r.Context(), l.log, w, http.StatusTooManyRequests, MsgTooManyRequests)
			return
		}
		next(w, r)
	}
}

func (l *RateLimiter) retryAfterSeconds() int {
	if secs := int(1 / float64(l.rps)); secs > 1 {
		return secs
	}
	return 1
}

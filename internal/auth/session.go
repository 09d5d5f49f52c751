package auth

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/aashari/go-content-dashboard/internal/errors"
	"github.com/aashari/go-content-dashboard/internal/logger"
	"github.com/aashari/go-content-dashboard/internal/utils"
)

// MsgUnauthorized is the error of requests without a session
const MsgUnauthorized = "Unauthorized"

// Session identifies the signed-in user of a request
type Session struct {
	UserID string
	Email  string
}

// SessionProvider resolves the current session of a request, if any
type SessionProvider interface {
	Session(r *http.Request) (*Session, bool)
}

// SessionProviderFunc adapts a function to SessionProvider
type SessionProviderFunc func(r *http.Request) (*Session, bool)

func (f SessionProviderFunc) Session(r *http.Request) (*Session, bool) {
	return f(r)
}

// HeaderSessionProvider trusts the identity headers set by the fronting
// authentication proxy. A session requires an email.
type HeaderSessionProvider struct{}

func (HeaderSessionProvider) Session(r *http.Request) (*Session, bool) {
	email := strings.TrimSpace(r.Header.Get(utils.HeaderUserEmail))
	if email == "" {
		return nil, false
	}
	return &Session{
		UserID: strings.TrimSpace(r.Header.Get(utils.HeaderUserID)),
		Email:  strings.ToLower(email),
	}, true
}

type sessionKey struct{}

// WithSession stores s in ctx
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored by RequireSession
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}

// RequireSession answers 401 unless provider resolves a session, which is
// then available to next through FromContext
func RequireSession(provider SessionProvider, log *logger.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := provider.Session(r)
		if !ok {
			log.Warn(r.Context(), "Unauthorized request", logger.ComponentNames.Auth, logger.Metadata{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			apperrors.WriteStatus(r.Context(), log, w, http.StatusUnauthorized, MsgUnauthorized)
			return
		}
		next(w, r.WithContext(WithSession(r.Context(), session)))
	}
}

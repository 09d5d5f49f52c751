package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aashari/go-content-dashboard/internal/logger"
	"github.com/aashari/go-content-dashboard/internal/utils"
)

func quietLogger() *logger.Logger {
	cfg := logger.DefaultConfig(false)
	cfg.EnableConsole = false
	return logger.New(cfg)
}

func TestHeaderSessionProvider(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := HeaderSessionProvider{}.Session(req)
	assert.False(t, ok)

	req.Header.Set(utils.HeaderUserEmail, " Jane@Example.com ")
	req.Header.Set(utils.HeaderUserID, "u1")
	s, ok := HeaderSessionProvider{}.Session(req)
	require.True(t, ok)
	assert.Equal(t, "jane@example.com", s.Email)
	assert.Equal(t, "u1", s.UserID)
}

func TestRequireSession(t *testing.T) {
	log := quietLogger()
	var seen *Session
	handler := RequireSession(HeaderSessionProvider{}, log, func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("no session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/api/settings", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, map[string]any{"success": false, "error": "Unauthorized"}, body)

		logs := log.Logs()
		require.NotEmpty(t, logs)
		assert.Equal(t, "Unauthorized request", logs[len(logs)-1].Message)
	})

	t.Run("with session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
		req.Header.Set(utils.HeaderUserEmail, "jane@example.com")
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "jane@example.com", seen.Email)
	})
}

func TestSessionProviderFunc(t *testing.T) {
	p := SessionProviderFunc(func(r *http.Request) (*Session, bool) {
		return &Session{Email: "fixed@example.com"}, true
	})
	s, ok := p.Session(httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, ok)
	assert.Equal(t, "fixed@example.com", s.Email)
}

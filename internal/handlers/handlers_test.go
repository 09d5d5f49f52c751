package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/aashari/go-content-dashboard/internal/auth"
	"github.com/aashari/go-content-dashboard/internal/database"
	"github.com/aashari/go-content-dashboard/internal/logger"
	"github.com/aashari/go-content-dashboard/internal/types"
)

type memContent struct {
	mu   sync.Mutex
	docs map[string]*database.ContentDocument
	fail error
}

func newMemContent() *memContent {
	return &memContent{docs: make(map[string]*database.ContentDocument)}
}

func (m *memContent) add(title string, favorite bool) *database.ContentDocument {
	doc := database.NewContentDocument(types.ContentCreateData{
		Title:   title,
		Summary: "summary",
		Source:  types.ContentSource{Name: "Go Blog", Type: types.SourceArticle},
	}, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	doc.ID = primitive.NewObjectID()
	doc.Favorite = favorite
	m.docs[doc.ID.Hex()] = &doc
	return &doc
}

func (m *memContent) List(ctx context.Context) ([]database.ContentDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	out := make([]database.ContentDocument, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, *d)
	}
	return out, nil
}

func (m *memContent) Favorites(ctx context.Context) ([]database.ContentDocument, error) {
	all, err := m.List(ctx)
	var out []database.ContentDocument
	for _, d := range all {
		if d.Favorite {
			out = append(out, d)
		}
	}
	return out, err
}

func (m *memContent) FindByID(ctx context.Context, id string) (*database.ContentDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memContent) Create(ctx context.Context, data types.ContentCreateData) (*database.ContentDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := database.NewContentDocument(data, time.Now())
	doc.ID = primitive.NewObjectID()
	m.docs[doc.ID.Hex()] = &doc
	return &doc, nil
}

func (m *memContent) Update(ctx context.Context, id string, data types.ContentUpdateData) (*database.ContentDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	if data.Title != nil {
		d.Title = *data.Title
	}
	cp := *d
	return &cp, nil
}

func (m *memContent) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *memContent) ToggleFavorite(ctx context.Context, id string) (*database.ContentDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	d.Favorite = !d.Favorite
	cp := *d
	return &cp, nil
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*database.UserDocument
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*database.UserDocument)}
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*database.UserDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(ctx context.Context, name, email, hash string) (*database.UserDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[email]; ok {
		return nil, database.ErrDuplicate
	}
	u := &database.UserDocument{ID: primitive.NewObjectID(), Name: name, Email: email, Password: hash}
	m.users[email] = u
	cp := *u
	return &cp, nil
}

func (m *memUsers) UpdateProfile(ctx context.Context, email string, update types.ProfileUpdate) (*database.UserDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, database.ErrNotFound
	}
	u.Name = update.Name
	cp := *u
	return &cp, nil
}

func (m *memUsers) UpdateSettings(ctx context.Context, email string, settings types.Settings) (*database.UserDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, database.ErrNotFound
	}
	u.Settings = &settings
	cp := *u
	return &cp, nil
}

func quietLogger() *logger.Logger {
	cfg := logger.DefaultConfig(false)
	cfg.EnableConsole = false
	return logger.New(cfg)
}

func newTestHandlers() (*APIHandlers, *memContent, *memUsers, *logger.MemorySink) {
	content, users, sink := newMemContent(), newMemUsers(), logger.NewMemorySink()
	h := NewAPIHandlers(content, users, sink, WithLogger(quietLogger()), WithBcryptCost(bcrypt.MinCost))
	return h, content, users, sink
}

func serve(handler http.HandlerFunc, method, target, body string, pathID string, session *auth.Session) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if pathID != "" {
		req.SetPathValue("id", pathID)
	}
	if session != nil {
		req = req.WithContext(auth.WithSession(req.Context(), session))
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) types.Envelope[T] {
	t.Helper()
	var env types.Envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

type errorBody struct {
	Success          bool   `json:"success"`
	Error            string `json:"error"`
	StatusCode       int    `json:"statusCode"`
	ValidationErrors []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"validationErrors"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestListContent(t *testing.T) {
	h, content, _, _ := newTestHandlers()
	content.add("one", false)
	content.add("two", true)

	rec := serve(h.ListContent, http.MethodGet, "/api/content", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[[]types.Content](t, rec)
	assert.True(t, env.Success)
	assert.Len(t, env.Data, 2)

	rec = serve(h.ListFavorites, http.MethodGet, "/api/favorites", "", "", nil)
	favs := decode[[]types.Content](t, rec)
	require.Len(t, favs.Data, 1)
	assert.Equal(t, "two", favs.Data[0].Title)
}

func TestListContent_StoreFailure(t *testing.T) {
	h, content, _, _ := newTestHandlers()
	content.fail = errors.New("socket closed")

	rec := serve(h.ListContent, http.MethodGet, "/api/content", "", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, "Failed to fetch content", body.Error)
}

func TestCreateContent_ErrorLoggedToHandlerLogger(t *testing.T) {
	log := quietLogger()
	h := NewAPIHandlers(newMemContent(), newMemUsers(), logger.NewMemorySink(), WithLogger(log))

	prev := logger.Default()
	other := quietLogger()
	logger.SetDefault(other)
	t.Cleanup(func() { logger.SetDefault(prev) })

	rec := serve(h.CreateContent, http.MethodPost, "/api/content", `{"title":""}`, "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	require.NotEmpty(t, log.Logs())
	assert.Equal(t, "API Error", log.Logs()[len(log.Logs())-1].Message)
	assert.Empty(t, other.Logs())
}

func TestGetContent_NotFound(t *testing.T) {
	h, _, _, _ := newTestHandlers()

	rec := serve(h.GetContent, http.MethodGet, "/api/content/x", "", "665f1c2e9b1e8a0012345678", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, MsgContentNotFound, decodeError(t, rec).Error)
}

func TestCreateContent(t *testing.T) {
	h, _, _, _ := newTestHandlers()

	t.Run("valid", func(t *testing.T) {
		rec := serve(h.CreateContent, http.MethodPost, "/api/content", `{
			"title": "Context cancellation",
			"summary": "How to stop work",
			"tags": ["go"],
			"source": {"name": "Go Blog", "type": "article"},
			"originalUrl": "https://go.dev/blog/context"
		}`, "", nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		env := decode[types.Content](t, rec)
		assert.Equal(t, MsgContentCreated, env.Message)
		assert.Equal(t, "Context cancellation", env.Data.Title)
		assert.Equal(t, types.DefaultReadTime, env.Data.ReadTime)
		assert.NotEmpty(t, env.Data.ID)
	})

	t.Run("invalid", func(t *testing.T) {
		rec := serve(h.CreateContent, http.MethodPost, "/api/content", `{"summary":"x","source":{"name":"a","type":"podcast"},"originalUrl":"nope"}`, "", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeError(t, rec)
		fields := make([]string, 0, len(body.ValidationErrors))
		for _, fe := range body.ValidationErrors {
			fields = append(fields, fe.Field)
		}
		assert.ElementsMatch(t, []string{"title", "source.type", "originalUrl"}, fields)
	})

	t.Run("malformed json", func(t *testing.T) {
		rec := serve(h.CreateContent, http.MethodPost, "/api/content", `{"title":`, "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, MsgInvalidBody, decodeError(t, rec).Error)
	})
}

func TestUpdateAndDeleteContent(t *testing.T) {
	h, content, _, _ := newTestHandlers()
	doc := content.add("old", false)
	id := doc.ID.Hex()

	rec := serve(h.UpdateContent, http.MethodPut, "/api/content/"+id, `{"title":"new"}`, id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new", decode[types.Content](t, rec).Data.Title)

	rec = serve(h.DeleteContent, http.MethodDelete, "/api/content/"+id, "", id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[json.RawMessage](t, rec)
	assert.True(t, env.Success)
	assert.Nil(t, env.Data)

	rec = serve(h.DeleteContent, http.MethodDelete, "/api/content/"+id, "", id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToggleFavorite(t *testing.T) {
	h, content, _, _ := newTestHandlers()
	id := content.add("item", false).ID.Hex()

	rec := serve(h.ToggleFavorite, http.MethodPatch, "/api/content/"+id+"/favorite", "", id, nil)
	env := decode[types.Content](t, rec)
	assert.True(t, env.Data.Favorite)
	assert.Equal(t, MsgFavoriteAdded, env.Message)

	rec = serve(h.ToggleFavorite, http.MethodPatch, "/api/content/"+id+"/favorite", "", id, nil)
	env = decode[types.Content](t, rec)
	assert.False(t, env.Data.Favorite)
	assert.Equal(t, MsgFavoriteRemoved, env.Message)
}

func TestRegisterAndLogin(t *testing.T) {
	h, _, users, _ := newTestHandlers()

	rec := serve(h.Register, http.MethodPost, "/api/auth/register", `{"name":"Jane","email":"Jane@Example.com","password":"secret123"}`, "", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env := decode[types.PublicUser](t, rec)
	assert.Equal(t, "jane@example.com", env.Data.Email)
	assert.NotContains(t, rec.Body.String(), "secret123")

	stored, err := users.FindByEmail(t.Context(), "jane@example.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret123")))

	rec = serve(h.Register, http.MethodPost, "/api/auth/register", `{"name":"Jane","email":"jane@example.com","password":"secret123"}`, "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, MsgUserExists, decodeError(t, rec).Error)

	rec = serve(h.Login, http.MethodPost, "/api/auth/login", `{"email":"jane@example.com","password":"secret123"}`, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, MsgLoginSuccess, decode[types.PublicUser](t, rec).Message)

	rec = serve(h.Login, http.MethodPost, "/api/auth/login", `{"email":"jane@example.com","password":"wrongpass"}`, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, MsgInvalidCredentials, decodeError(t, rec).Error)

	rec = serve(h.Login, http.MethodPost, "/api/auth/login", `{"email":"nobody@example.com","password":"secret123"}`, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegister_Validation(t *testing.T) {
	h, _, _, _ := newTestHandlers()

	rec := serve(h.Register, http.MethodPost, "/api/auth/register", `{"name":"","email":"bad","password":"123"}`, "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Len(t, body.ValidationErrors, 3)
}

func TestProfileAndSettings(t *testing.T) {
	h, _, users, _ := newTestHandlers()
	_, err := users.Create(t.Context(), "Jane", "jane@example.com", "hash")
	require.NoError(t, err)
	session := &auth.Session{Email: "jane@example.com"}

	rec := serve(h.GetProfile, http.MethodGet, "/api/user/profile", "", "", session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Jane", decode[types.PublicUser](t, rec).Data.Name)

	rec = serve(h.UpdateProfile, http.MethodPut, "/api/user/profile", `{"name":"Janet"}`, "", session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Janet", decode[types.PublicUser](t, rec).Data.Name)

	rec = serve(h.GetSettings, http.MethodGet, "/api/settings", "", "", session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, types.DefaultSettings(), decode[types.Settings](t, rec).Data)

	rec = serve(h.UpdateSettings, http.MethodPut, "/api/settings", `{"theme":"neon","notifications":{},"preferences":{"defaultView":"all","itemsPerPage":20}}`, "", session)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h.UpdateSettings, http.MethodPut, "/api/settings", `{"theme":"dark","notifications":{"email":false},"preferences":{"defaultView":"favorites","itemsPerPage":50}}`, "", session)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[types.Settings](t, rec).Data
	assert.Equal(t, "dark", got.Theme)
	assert.Equal(t, 50, got.Preferences.ItemsPerPage)

	rec = serve(h.GetProfile, http.MethodGet, "/api/user/profile", "", "", &auth.Session{Email: "ghost@example.com"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, MsgUserNotFound, decodeError(t, rec).Error)
}

func TestIngestLogs(t *testing.T) {
	h, _, _, sink := newTestHandlers()

	rec := serve(h.IngestLogs, http.MethodPost, "/api/logs", `{"timestamp":"2024-06-01T10:00:00.000Z","level":"ERROR","message":"boom","sessionId":"s1"}`, "", nil)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, LogsAccepted{Received: 1, Stored: 1}, decode[LogsAccepted](t, rec).Data)

	rec = serve(h.IngestLogs, http.MethodPost, "/api/logs", `[{"level":1,"message":"a","sessionId":"s2"},{"level":"WARN","message":"b","sessionId":"s2"}]`, "", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 2, decode[LogsAccepted](t, rec).Data.Received)

	entries := sink.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, logger.LevelError, entries[0].Level)
	assert.Equal(t, logger.LevelInfo, entries[1].Level)
	assert.NotEmpty(t, entries[1].Timestamp)

	rec = serve(h.IngestLogs, http.MethodPost, "/api/logs", `{"level":"LOUD","message":"x"}`, "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestLogs_SinkFailure(t *testing.T) {
	h, _, _, sink := newTestHandlers()
	sink.FailWith(errors.New("disk full"))

	rec := serve(h.IngestLogs, http.MethodPost, "/api/logs", `{"level":"INFO","message":"x","sessionId":"s"}`, "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLogin_IssuesSessionCookie(t *testing.T) {
	tokens := auth.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour, 24*time.Hour)
	users := newMemUsers()
	h := NewAPIHandlers(newMemContent(), users, logger.NewMemorySink(),
		WithLogger(quietLogger()), WithBcryptCost(bcrypt.MinCost), WithSessionTokens(tokens, true))

	rec := serve(h.Register, http.MethodPost, "/api/auth/register", `{"name":"Jane","email":"jane@example.com","password":"secret123"}`, "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(h.Login, http.MethodPost, "/api/auth/login", `{"email":"jane@example.com","password":"secret123","rememberMe":true}`, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)

	session, err := tokens.Parse(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", session.Email)

	rec = serve(h.Logout, http.MethodPost, "/api/auth/logout", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)
}

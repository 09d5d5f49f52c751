package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aashari/go-content-dashboard/internal/apiclient"
	"github.com/aashari/go-content-dashboard/internal/client"
	apperrors "github.com/aashari/go-content-dashboard/internal/errors"
	"github.com/aashari/go-content-dashboard/internal/logger"
	"github.com/aashari/go-content-dashboard/internal/types"
	"github.com/aashari/go-content-dashboard/internal/utils"
)

// fakeAPI is a minimal in-memory dashboard backend
type fakeAPI struct {
	mu         sync.Mutex
	registered bool
	items      map[string]types.Content
	nextID     int
	failCreate bool
	emails     []string
}

func newFakeAPI(registered bool) *fakeAPI {
	return &fakeAPI{registered: registered, items: map[string]types.Content{}}
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	reply := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set(utils.HeaderContentType, utils.ContentTypeJSON)
		w.WriteHeader(status)
		require.NoError(t, json.NewEncoder(w).Encode(v))
	}
	user := types.PublicUser{ID: "u1", Name: "Demo User", Email: "demo@example.com"}
	log := quietLogger()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.registered {
			apperrors.WriteJSON(r.Context(), log, w, apperrors.NewConflictError("A user with this email already exists"))
			return
		}
		f.registered = true
		reply(w, http.StatusCreated, types.OK(user, "User created successfully"))
	})
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, types.OK(user, "Login successful"))
	})
	mux.HandleFunc("GET /api/content", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		out := make([]types.Content, 0, len(f.items))
		for _, item := range f.items {
			out = append(out, item)
		}
		reply(w, http.StatusOK, types.OK(out, ""))
	})
	mux.HandleFunc("POST /api/content", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.emails = append(f.emails, r.Header.Get(utils.HeaderUserEmail))
		if f.failCreate {
			apperrors.WriteJSON(r.Context(), log, w, apperrors.NewValidationError("Validation failed", nil, 0))
			return
		}
		var data types.ContentCreateData
		require.NoError(t, json.NewDecoder(r.Body).Decode(&data))
		f.nextID++
		item := types.Content{
			ID:          strconv.Itoa(f.nextID),
			Title:       data.Title,
			Summary:     data.Summary,
			Tags:        data.Tags,
			Source:      data.Source,
			OriginalURL: data.OriginalURL,
		}
		f.items[item.ID] = item
		reply(w, http.StatusCreated, types.OK(item, "Content created successfully"))
	})
	mux.HandleFunc("DELETE /api/content/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.items, r.PathValue("id"))
		reply(w, http.StatusOK, types.OK[any](nil, "Content deleted successfully"))
	})
	mux.HandleFunc("PATCH /api/content/{id}/favorite", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		item := f.items[r.PathValue("id")]
		item.Favorite = !item.Favorite
		f.items[item.ID] = item
		reply(w, http.StatusOK, types.OK(item, ""))
	})
	return mux
}

func (f *fakeAPI) favorites() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, item := range f.items {
		if item.Favorite {
			n++
		}
	}
	return n
}

func quietLogger() *logger.Logger {
	cfg := logger.DefaultConfig(false)
	cfg.EnableConsole = false
	return logger.New(cfg)
}

type recordingProgress struct {
	started, stopped bool
	suffixes         []string
}

func (p *recordingProgress) Start()                     { p.started = true }
func (p *recordingProgress) Stop()                      { p.stopped = true }
func (p *recordingProgress) UpdateSuffix(suffix string) { p.suffixes = append(p.suffixes, suffix) }

func newTestSeeder(t *testing.T, api *fakeAPI, reset bool) (*seeder, *recordingProgress) {
	t.Helper()
	server := httptest.NewServer(api.handler(t))
	t.Cleanup(server.Close)

	log := quietLogger()

	exec := apiclient.NewExecutor(server.Client(), apiclient.WithLogger(log))
	progress := &recordingProgress{}
	return &seeder{
		api:      client.New(exec, client.Config{BaseURL: server.URL + "/api"}, client.WithLogger(log)),
		log:      log,
		progress: progress,
		reset:    reset,
	}, progress
}

var demoUser = types.RegistrationData{Name: "Demo User", Email: "demo@example.com", Password: "password123"}

func TestSeed_FreshAccount(t *testing.T) {
	api := newFakeAPI(false)
	s, progress := newTestSeeder(t, api, false)

	res, err := s.run(t.Context(), demoUser, sampleContent)
	require.NoError(t, err)

	assert.True(t, res.UserCreated)
	assert.Equal(t, len(sampleContent), res.Created)
	assert.Equal(t, 2, res.Favorited)
	assert.Equal(t, 2, api.favorites())
	assert.True(t, progress.started)
	assert.True(t, progress.stopped)
	assert.NotEmpty(t, progress.suffixes)
	for _, email := range api.emails {
		assert.Equal(t, "demo@example.com", email)
	}
}

func TestSeed_ExistingUserIsKept(t *testing.T) {
	api := newFakeAPI(true)
	s, _ := newTestSeeder(t, api, false)

	res, err := s.run(t.Context(), demoUser, sampleContent[:1])
	require.NoError(t, err)
	assert.False(t, res.UserCreated)
	assert.Equal(t, 1, res.Created)
}

func TestSeed_ResetDeletesExisting(t *testing.T) {
	api := newFakeAPI(true)
	api.items["old"] = types.Content{ID: "old", Title: "Stale"}
	s, _ := newTestSeeder(t, api, true)

	res, err := s.run(t.Context(), demoUser, sampleContent[:2])
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 2, res.Created)

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.NotContains(t, api.items, "old")
	assert.Len(t, api.items, 2)
}

func TestSeed_CreateFailureStops(t *testing.T) {
	api := newFakeAPI(false)
	api.failCreate = true
	s, progress := newTestSeeder(t, api, false)

	res, err := s.run(t.Context(), demoUser, sampleContent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), sampleContent[0].Title)
	assert.Zero(t, res.Created)
	assert.True(t, progress.stopped)
}

func TestSampleContent_Valid(t *testing.T) {
	favorites := 0
	for _, item := range sampleContent {
		assert.NotEmpty(t, item.Title)
		assert.NotEmpty(t, item.OriginalURL)
		if item.Favorite {
			favorites++
		}
	}
	assert.Equal(t, 2, favorites)
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aashari/go-content-dashboard/internal/auth"
	"github.com/aashari/go-content-dashboard/internal/database"
	apperrors "github.com/aashari/go-content-dashboard/internal/errors"
	"github.com/aashari/go-content-dashboard/internal/logger"
	"github.com/aashari/go-content-dashboard/internal/types"
	"github.com/aashari/go-content-dashboard/internal/utils"
)

// MaxBodyBytes bounds every JSON request body
const MaxBodyBytes = 1 << 20

// MsgInvalidBody is answered when a body is not the expected JSON
const MsgInvalidBody = "Invalid request body"

// ContentStore is the persistence the content handlers need
type ContentStore interface {
	List(ctx context.Context) ([]database.ContentDocument, error)
	Favorites(ctx context.Context) ([]database.ContentDocument, error)
	FindByID(ctx context.Context, id string) (*database.ContentDocument, error)
	Create(ctx context.Context, data types.ContentCreateData) (*database.ContentDocument, error)
	Update(ctx context.Context, id string, data types.ContentUpdateData) (*database.ContentDocument, error)
	Delete(ctx context.Context, id string) error
	ToggleFavorite(ctx context.Context, id string) (*database.ContentDocument, error)
}

// UserStore is the persistence the account handlers need
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*database.UserDocument, error)
	Create(ctx context.Context, name, email, passwordHash string) (*database.UserDocument, error)
	UpdateProfile(ctx context.Context, email string, update types.ProfileUpdate) (*database.UserDocument, error)
	UpdateSettings(ctx context.Context, email string, settings types.Settings) (*database.UserDocument, error)
}

// APIHandlers contains the dependencies needed for API handlers
type APIHandlers struct {
	Content ContentStore
	Users   UserStore
	Logs    logger.Sink // receives entries shipped to POST /api/logs

	log          *logger.Logger
	bcryptCost   int
	tokens       *auth.TokenManager
	secureCookie bool
}

// Option customizes APIHandlers
type Option func(*APIHandlers)

// WithLogger sets the logger used by the handlers
func WithLogger(log *logger.Logger) Option {
	return func(h *APIHandlers) { h.log = log }
}

// WithBcryptCost overrides the password hashing cost
func WithBcryptCost(cost int) Option {
	return func(h *APIHandlers) { h.bcryptCost = cost }
}

// WithSessionTokens makes login issue a signed session cookie. secure marks
// the cookie HTTPS-only.
func WithSessionTokens(tokens *auth.TokenManager, secure bool) Option {
	return func(h *APIHandlers) {
		h.tokens = tokens
		h.secureCookie = secure
	}
}

// NewAPIHandlers creates a new APIHandlers instance
func NewAPIHandlers(content ContentStore, users UserStore, logs logger.Sink, opts ...Option) *APIHandlers {
	h := &APIHandlers{
		Content:    content,
		Users:      users,
		Logs:       logs,
		log:        logger.Default(),
		bcryptCost: DefaultBcryptCost,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func writeJSON[T any](w http.ResponseWriter, status int, body types.Envelope[T]) {
	w.Header().Set(utils.HeaderContentType, utils.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON reads a bounded JSON body into dst and validates nothing
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewValidationError("Request body is required", nil, 0)
		}
		return apperrors.NewValidationError(MsgInvalidBody, []apperrors.FieldError{{Field: "body", Message: err.Error()}}, 0)
	}
	return nil
}

// storeError maps repository failures onto the error responses. Unexpected
// failures are logged with their cause and answered with failMsg.
func (h *APIHandlers) storeError(ctx context.Context, w http.ResponseWriter, err error, notFoundMsg, failMsg string, md logger.Metadata) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		h.log.Warn(ctx, notFoundMsg, logger.ComponentNames.Handler, md)
		apperrors.WriteJSON(ctx, h.log, w, apperrors.NewNotFoundError(notFoundMsg))
	case errors.Is(err, database.ErrDuplicate):
		apperrors.WriteJSON(ctx, h.log, w, apperrors.NewConflictError(""))
	default:
		h.log.Error(ctx, failMsg, logger.ComponentNames.Handler, md, err)
		apperrors.WriteJSON(ctx, h.log, w, apperrors.New(failMsg, http.StatusInternalServerError, true, nil))
	}
}

func toPublic(docs []database.ContentDocument) []types.Content {
	out := make([]types.Content, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ToPublic())
	}
	return out
}

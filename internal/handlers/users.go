package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/aashari/go-content-dashboard/internal/auth"
	"github.com/aashari/go-content-dashboard/internal/database"
	apperrors "github.com/aashari/go-content-dashboard/internal/errors"
	"github.com/aashari/go-content-dashboard/internal/logger"
	"github.com/aashari/go-content-dashboard/internal/types"
	"github.com/aashari/go-content-dashboard/internal/validator"
)

// DefaultBcryptCost is the hashing cost of stored passwords
const DefaultBcryptCost = 10

const (
	MsgUserCreated        = "Account created successfully"
	MsgUserUpdated        = "Profile updated successfully"
	MsgSettingsUpdated    = "Settings updated successfully"
	MsgLoginSuccess       = "Logged in successfully"
	MsgLogoutSuccess      = "Logged out successfully"
	MsgUserExists         = "A user with this email already exists"
	MsgInvalidCredentials = "Invalid email or password"
	MsgUserNotFound       = "User not found"
	msgRegisterFailed     = "Failed to create account"
	msgLoginFailed        = "Failed to log in"
	msgProfileFailed      = "Failed to fetch profile"
	msgSettingsFailed     = "Failed to fetch settings"
	msgUserUpdateFailed   = "Failed to update user"
)

// Register creates an account
// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      types.RegistrationData  true  "Account details"
// @Success      201      {object}  types.Envelope[types.PublicUser]
// @Failure      400      {object}  errors.ErrorResponse
// @Failure      409      {object}  errors.ErrorResponse
// @Router       /api/auth/register [post]
func (h *APIHandlers) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var data types.RegistrationData
	if err := decodeJSON(w, r, &data); err != nil {
		apperrors.WriteJSON(ctx, h.log, w, err)
		return
	}
	data.Email = strings.ToLower(strings.TrimSpace(data.Email))
	if err := validator.Struct(data); err != nil {
		apperrors.WriteJSON(ctx, h.log, w, err)
		return
	}

	// the unique index also rejects concurrent duplicates below
	if _, err := h.Users.FindByEmail(ctx, data.Email); err == nil {
		apperrors.WriteJSON(ctx, h.log, w, apperrors.NewConflictError(MsgUserExists))
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		h.storeError(ctx, w, err, MsgUserNotFound, msgRegisterFailed, nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), h.bcryptCost)
	if err != nil {
		h.storeError(ctx, w, err, MsgUserNotFound, msgRegisterFailed, nil)
		return
	}

	user, err := h.Users.Create(ctx, data.Name, data.Email, string(hash))
	if errors.Is(err, database.ErrDuplicate) {
		apperrors.WriteJSON(ctx, h.log, w, apperrors.NewConflictError(MsgUserExists))
		return
	}
	if err != nil {
		h.storeError(ctx, w, err, MsgUserNotFound, msgRegisterFailed, nil)
		return
	}

	h.log.Info(ctx, "User registered", logger.ComponentNames.Auth, logger.Metadata{"userId": user.ID.Hex()})
	writeJSON(w, http.StatusCreated, types.OK(user.ToPublic(), MsgUserCreated))
}

// Login checks credentials
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      types.LoginData  true  "Credentials"
// @Success      200      {object}  types.Envelope[types.PublicUser]
// @Failure      401      {object}  errors.ErrorResponse
// @Router       /api/auth/login [post]
func (h *APIHandlers) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var data types.LoginData
	if err := decodeJSON(w, r, &data); err != nil {
		apperrors.WriteJSON(ctx, h.log, w, err)
		return
	}
	data.Email = strings.ToLower(strings.TrimSpace(data.Email))
	if err := validator.Struct(data); err != nil {
		apperrors.WriteJSON(ctx, h.log, w, err)
		return
	}

	user, err := h.Users.FindByEmail(ctx, data.Email)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		h.storeError(ctx, w, err, MsgUserNotFound, msgLoginFailed, nil)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(data.Password)) != nil {
		h.log.Warn(ctx, "Login rejected", logger.ComponentNames.Auth, nil)
		apperrors.WriteJSON(ctx, h.log, w, apperrors.NewAuthenticationError(MsgInvalidCredentials))
		return
	}

	if h.tokens != nil {
		token, expires, err := h.tokens.Issue(auth.Session{UserID: user.ID.Hex(), Email: user.Email}, data.RememberMe)
		if err != nil {
			h.storeError(ctx, w, err, MsgUserNotFound, msgLoginFailed, nil)
			return
		}
		auth.SetCookie(w, token, expires, h.secureCookie)
	}

	h.log.Info(ctx, "User logged in", logger.ComponentNames.Auth, logger.Metadata{"userId": user.ID.Hex()})
	writeJSON(w, http.StatusOK, types.OK(user.ToPublic(), MsgLoginSuccess))
}

// Logout clears the session cookie
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  types.Envelope[any]
// @Router       /api/auth/logout [post]
func (h *APIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearCookie(w, h.secureCookie)
	writeJSON(w, http.StatusOK, types.OK[any](nil, MsgLogoutSuccess))
}

func sessionEmail(ctx context.Context) string {
	if s, ok := auth.FromContext(ctx); ok {
		return s.Email
	}
	return ""
}

// GetProfile returns the signed-in account
// @Summary      Get profile
// @Tags         user
// @Produce      json
// @Success      200  {object}  types.Envelope[types.PublicUser]
// @Failure      401  {object}  errors.ErrorResponse
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /api/user/profile [get]
func (h *APIHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.Users.FindByEmail(ctx, sessionEmail(ctx))
	if err != nil {
		h.storeError(ctx, w, err, MsgUserNotFound, msgProfileFailed, nil)
		return
	}
	writeJSON(w, http.StatusOK, types.OK(user.ToPublic(), ""))
}

// UpdateProfile changes the name and email of the signed-in account
// @Summary      Update profile
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request  body      types.ProfileUpdate  true  "Profile fields"
// @Success      200      {object}  types.Envelope[types.PublicUser]
// @Failure      400      {object}  errors.ErrorResponse
// @Failure      409      {object}  errors.ErrorResponse
// @Router       /api/user/profile [put]
func (h *APIHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var data types.ProfileUpdate
	if err := decodeJSON(w, r, &data); err != nil {
		apperrors.WriteJSON(ctx, h.log, w, err)
		return
	}
	data.Email = strings.ToLower(strings.TrimSpace(data.Email))
	if err := validator.Struct(data); err != nil {
		apperrors.WriteJSON(ctx, h.log, w, err)
		return
	}

	user, err := h.Users.UpdateProfile(ctx, sessionEmail(ctx), data)
	if errors.Is(err, database.ErrDuplicate) {
		apperrors.WriteJSON(ctx, h.log, w, apperrors.NewConflictError(MsgUserExists))
		return
	}
	if err != nil {
		h.storeError(ctx, w, err, MsgUserNotFound, msgUserUpdateFailed, nil)
		return
	}
	writeJSON(w, http.StatusOK, types.OK(user.ToPublic(), MsgUserUpdated))
}

// GetSettings returns the stored settings, or the defaults when none were saved
// @Summary      Get settings
// @Tags         settings
// @Produce      json
// @Success      200  {object}  types.Envelope[types.Settings]
// @Failure      401  {object}  errors.ErrorResponse
// @Router       /api/settings [get]
func (h *APIHandlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.Users.FindByEmail(ctx, sessionEmail(ctx))
	if err != nil {
		h.storeError(ctx, w, err, MsgUserNotFound, msgSettingsFailed, nil)
		return
	}
	writeJSON(w, http.StatusOK, types.OK(user.EffectiveSettings(), ""))
}

// UpdateSettings replaces the settings of the signed-in account
// @Summary      Update settings
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request  body      types.Settings  true  "Settings"
// @Success      200      {object}  types.Envelope[types.Settings]
// @Failure      400      {object}  errors.ErrorResponse
// @Router       /api/settings [put]
func (h *APIHandlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var data types.Settings
	if err := decodeJSON(w, r, &data); err != nil {
		apperrors.WriteJSON(ctx, h.log, w, err)
		return
	}
	if err := validator.Struct(data); err != nil {
		apperrors.WriteJSON(ctx, h.log, w, err)
		return
	}

	user, err := h.Users.UpdateSettings(ctx, sessionEmail(ctx), data)
	if err != nil {
		h.storeError(ctx, w, err, MsgUserNotFound, msgUserUpdateFailed, nil)
		return
	}
	writeJSON(w, http.StatusOK, types.OK(user.EffectiveSettings(), MsgSettingsUpdated))
}

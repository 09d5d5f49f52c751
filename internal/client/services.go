package client

import (
	"context"
	"net/http"

	"github.com/aashari/go-content-dashboard/internal/types"
	"github.com/aashari/go-content-dashboard/internal/validator"
)

// ContentService calls the content endpoints
type ContentService struct{ c *Client }

// List returns the whole feed
func (s *ContentService) List(ctx context.Context) ([]types.Content, error) {
	var out []types.Content
	err := s.c.call(ctx, http.MethodGet, "/content", nil, &out)
	return out, err
}

// Favorites returns the favorited feed items
func (s *ContentService) Favorites(ctx context.Context) ([]types.Content, error) {
	var out []types.Content
	err := s.c.call(ctx, http.MethodGet, "/favorites", nil, &out)
	return out, err
}

// Get returns one item by id
func (s *ContentService) Get(ctx context.Context, id string) (*types.Content, error) {
	var out types.Content
	if err := s.c.call(ctx, http.MethodGet, "/content/"+escape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create validates data locally and stores a new item
func (s *ContentService) Create(ctx context.Context, data types.ContentCreateData) (*types.Content, error) {
	if err := validator.Struct(data); err != nil {
		return nil, err
	}
	var out types.Content
	if err := s.c.call(ctx, http.MethodPost, "/content", data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update applies a partial update to an item
func (s *ContentService) Update(ctx context.Context, id string, data types.ContentUpdateData) (*types.Content, error) {
	if err := validator.Struct(data); err != nil {
		return nil, err
	}
	var out types.Content
	if err := s.c.call(ctx, http.MethodPut, "/content/"+escape(id), data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes an item
func (s *ContentService) Delete(ctx context.Context, id string) error {
	return s.c.call(ctx, http.MethodDelete, "/content/"+escape(id), nil, nil)
}

// ToggleFavorite flips the favorite flag of an item
func (s *ContentService) ToggleFavorite(ctx context.Context, id string) (*types.Content, error) {
	var out types.Content
	if err := s.c.call(ctx, http.MethodPatch, "/content/"+escape(id)+"/favorite", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuthService calls the account endpoints
type AuthService struct{ c *Client }

// Register creates an account
func (s *AuthService) Register(ctx context.Context, data types.RegistrationData) (*types.PublicUser, error) {
	if err := validator.Struct(data); err != nil {
		return nil, err
	}
	var out types.PublicUser
	if err := s.c.call(ctx, http.MethodPost, "/auth/register", data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login checks credentials and returns the account
func (s *AuthService) Login(ctx context.Context, data types.LoginData) (*types.PublicUser, error) {
	if err := validator.Struct(data); err != nil {
		return nil, err
	}
	var out types.PublicUser
	if err := s.c.call(ctx, http.MethodPost, "/auth/login", data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserService calls the profile endpoints
type UserService struct{ c *Client }

// Profile returns the signed-in user
func (s *UserService) Profile(ctx context.Context) (*types.PublicUser, error) {
	var out types.PublicUser
	if err := s.c.call(ctx, http.MethodGet, "/user/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile changes the signed-in user's profile
func (s *UserService) UpdateProfile(ctx context.Context, data types.ProfileUpdate) (*types.PublicUser, error) {
	var out types.PublicUser
	if err := s.c.call(ctx, http.MethodPut, "/user/profile", data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SettingsService calls the settings endpoints
type SettingsService struct{ c *Client }

// Get returns the signed-in user's settings
func (s *SettingsService) Get(ctx context.Context) (*types.Settings, error) {
	var out types.Settings
	if err := s.c.call(ctx, http.MethodGet, "/settings", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the signed-in user's settings
func (s *SettingsService) Update(ctx context.Context, settings types.Settings) (*types.Settings, error) {
	var out types.Settings
	if err := s.c.call(ctx, http.MethodPut, "/settings", settings, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

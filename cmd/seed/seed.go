package main

import (
	"context"
	"fmt"

	"github.com/aashari/go-content-dashboard/internal/client"
	apperrors "github.com/aashari/go-content-dashboard/internal/errors"
	"github.com/aashari/go-content-dashboard/internal/logger"
	"github.com/aashari/go-content-dashboard/internal/types"
)

// Progress reports seeding steps on the terminal
type Progress interface {
	Start()
	Stop()
	UpdateSuffix(suffix string)
}

type noProgress struct{}

func (noProgress) Start()              {}
func (noProgress) Stop()               {}
func (noProgress) UpdateSuffix(string) {}

// Result summarizes a seeding run
type Result struct {
	UserCreated bool
	Deleted     int
	Created     int
	Favorited   int
}

type seeder struct {
	api      *client.Client
	log      *logger.Logger
	progress Progress
	reset    bool
}

// run registers the demo account (an existing one is kept), optionally
// clears the feed, then creates every sample through the API
func (s *seeder) run(ctx context.Context, user types.RegistrationData, items []sample) (Result, error) {
	var res Result
	component := logger.ComponentNames.Seed

	s.progress.Start()
	defer s.progress.Stop()

	s.progress.UpdateSuffix(" registering " + user.Email)
	registered, err := s.api.Auth.Register(ctx, user)
	switch {
	case err == nil:
		res.UserCreated = true
		s.log.Info(ctx, "Demo user created", component, logger.Metadata{"userId": registered.ID})
	case apperrors.IsType(err, apperrors.ErrorTypeConflict):
		s.log.Info(ctx, "Demo user already exists", component, logger.Metadata{"email": user.Email})
	default:
		return res, fmt.Errorf("failed to register demo user: %w", err)
	}

	account, err := s.api.Auth.Login(ctx, types.LoginData{Email: user.Email, Password: user.Password})
	if err != nil {
		return res, fmt.Errorf("failed to log in as demo user: %w", err)
	}
	api := s.api.WithIdentity(client.Identity{UserID: account.ID, Email: account.Email})

	if s.reset {
		s.progress.UpdateSuffix(" clearing existing content")
		existing, err := api.Content.List(ctx)
		if err != nil {
			return res, fmt.Errorf("failed to list content: %w", err)
		}
		for _, item := range existing {
			if err := api.Content.Delete(ctx, item.ID); err != nil {
				return res, fmt.Errorf("failed to delete %s: %w", item.ID, err)
			}
			res.Deleted++
		}
		s.log.Info(ctx, "Cleared existing content", component, logger.Metadata{"deleted": res.Deleted})
	}

	for i, item := range items {
		s.progress.UpdateSuffix(fmt.Sprintf(" creating %d/%d: %s", i+1, len(items), item.Title))
		created, err := api.Content.Create(ctx, item.ContentCreateData)
		if err != nil {
			return res, fmt.Errorf("failed to create %q: %w", item.Title, err)
		}
		res.Created++

		if item.Favorite && !created.Favorite {
			if _, err := api.Content.ToggleFavorite(ctx, created.ID); err != nil {
				return res, fmt.Errorf("failed to favorite %q: %w", item.Title, err)
			}
			res.Favorited++
		}
		s.log.Debug(ctx, "Content seeded", component, logger.Metadata{
			"id":     created.ID,
			"title":  created.Title,
			"source": string(created.Source.Type),
		})
	}

	s.log.Info(ctx, "Content seeding completed", component, logger.Metadata{
		"created":   res.Created,
		"favorited": res.Favorited,
	})
	return res, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/spinforge/backend/internal/apperror"
	"github.com/anonto42/spinforge/backend/internal/models"
	"github.com/anonto42/spinforge/backend/internal/repositories"
	"gorm.io/gorm"
)

type ProfileService struct {
	users    repositories.UserRepository
	profiles repositories.ProfileRepository
}

func NewProfileService(users repositories.UserRepository, profiles repositories.ProfileRepository) *ProfileService {
	return &ProfileService{users: users, profiles: profiles}
}

// GetProfile returns the user's profile, creating the default one if it is missing.
func (s *ProfileService) GetProfile(ctx context.Context, userID uint) (*models.User, *models.Profile, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperror.NotFoundMessage("User not found.")
	}
	if err != nil {
		return nil, nil, err
	}
	profile, err := s.profiles.GetOrCreate(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("loading profile: %w", err)
	}
	return user, profile, nil
}

func (s *ProfileService) GetPublicProfile(ctx context.Context, username string) (*models.User, *models.Profile, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperror.NotFoundMessage("User not found.")
	}
	if err != nil {
		return nil, nil, err
	}
	profile, err := s.profiles.GetOrCreate(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("loading profile: %w", err)
	}
	return user, profile, nil
}

// UpdateProfile applies the non-nil fields of req. A blank display name
// falls back to the username.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint, req models.UpdateProfileRequest) (*models.User, *models.Profile, error) {
	user, profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if req.DisplayName != nil {
		profile.DisplayName = strings.TrimSpace(*req.DisplayName)
		if profile.DisplayName == "" {
			profile.DisplayName = user.Username
		}
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.PlayingLevel != nil {
		profile.PlayingLevel = *req.PlayingLevel
	}
	if req.ForehandRating != nil {
		profile.ForehandRating = *req.ForehandRating
	}
	if req.BackhandRating != nil {
		profile.BackhandRating = *req.BackhandRating
	}
	if req.ServeRating != nil {
		profile.ServeRating = *req.ServeRating
	}
	if req.FootworkRating != nil {
		profile.FootworkRating = *req.FootworkRating
	}
	if req.Avatar != nil {
		profile.Avatar = *req.Avatar
	}
	if req.Location != nil {
		profile.Location = *req.Location
	}
	if req.Website != nil {
		profile.Website = *req.Website
	}

	if err := s.profiles.UpdateProfile(ctx, profile); err != nil {
		return nil, nil, fmt.Errorf("updating profile: %w", err)
	}
	user.Profile = profile
	return user, profile, nil
}

package service

import (
	"context"
	"strings"

	"github.com/tourshop/internal/logger"
	"github.com/tourshop/internal/models"
	"github.com/tourshop/internal/repository"

	"github.com/samber/lo"
)

// ProfileService admin profile management.
type ProfileService struct {
	repo repository.ProfileRepository
}

// NewProfileService creates the service.
func NewProfileService(repo repository.ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

// List pages through profiles.
func (s *ProfileService) List(filter repository.ProfileListFilter) ([]models.Profile, int64, error) {
	return s.repo.List(filter)
}

// Update applies a normalized patch; absent fields stay unchanged.
func (s *ProfileService) Update(ctx context.Context, id uint, patch ProfilePatch) (*models.Profile, error) {
	profile, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	if patch.FullName != nil {
		profile.FullName = strings.TrimSpace(*patch.FullName)
	}
	if patch.Phone != nil {
		profile.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.Locale != nil {
		locale := strings.ToLower(strings.TrimSpace(*patch.Locale))
		if !lo.Contains(contentLocales, locale) {
			return nil, ErrProfileInvalid
		}
		profile.Locale = locale
	}
	promoted := false
	if patch.IsAdmin != nil {
		promoted = *patch.IsAdmin != profile.IsAdmin
		profile.IsAdmin = *patch.IsAdmin
	}
	if err := s.repo.Save(profile); err != nil {
		return nil, err
	}
	if promoted {
		logger.Infow("profile_admin_flag_changed", "profile_id", profile.ID, "is_admin", profile.IsAdmin)
	}
	return profile, nil
}

package repository

import (
	"errors"
	"strings"

	"github.com/tourshop/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository customer profile storage
type ProfileRepository interface {
	GetByID(id uint) (*models.Profile, error)
	GetByEmail(email string) (*models.Profile, error)
	List(filter ProfileListFilter) ([]models.Profile, int64, error)
	Save(profile *models.Profile) error
}

// GormProfileRepository GORM implementation
type GormProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates the repository.
func NewProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// GetByID returns nil when the profile does not exist.
func (r *GormProfileRepository) GetByID(id uint) (*models.Profile, error) {
	if id == 0 {
		return nil, nil
	}
	var profile models.Profile
	if err := r.db.First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetByEmail matches case-insensitively.
func (r *GormProfileRepository) GetByEmail(email string) (*models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	var profile models.Profile
	if err := r.db.Where("LOWER(email) = ?", email).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *GormProfileRepository) List(filter ProfileListFilter) ([]models.Profile, int64, error) {
	query := r.db.Model(&models.Profile{})
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?", like, like)
	}
	if filter.OnlyAdmin {
		query = query.Where("is_admin = ?", true)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Profile
	if err := applyPagination(query, filter.Page, filter.PageSize).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *GormProfileRepository) Save(profile *models.Profile) error {
	return r.db.Save(profile).Error
}

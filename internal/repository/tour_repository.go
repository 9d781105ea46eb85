package repository

import (
	"errors"
	"strings"

	"github.com/tourshop/internal/models"

	"gorm.io/gorm"
)

// TourRepository tour storage
type TourRepository interface {
	GetByID(id uint) (*models.Tour, error)
	GetBySlug(slug string) (*models.Tour, error)
	List(filter TourListFilter) ([]models.Tour, int64, error)
	Create(tour *models.Tour) error
	Update(tour *models.Tour) error
	Delete(id uint) error
}

// GormTourRepository GORM implementation
type GormTourRepository struct {
	db *gorm.DB
}

// NewTourRepository creates the repository.
func NewTourRepository(db *gorm.DB) *GormTourRepository {
	return &GormTourRepository{db: db}
}

// GetByID returns nil when the tour does not exist.
func (r *GormTourRepository) GetByID(id uint) (*models.Tour, error) {
	if id == 0 {
		return nil, nil
	}
	var tour models.Tour
	if err := r.db.First(&tour, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tour, nil
}

// GetBySlug returns nil when the tour does not exist.
func (r *GormTourRepository) GetBySlug(slug string) (*models.Tour, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	var tour models.Tour
	if err := r.db.Where("slug = ?", slug).First(&tour).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tour, nil
}

// List orders by sort_order then id.
func (r *GormTourRepository) List(filter TourListFilter) ([]models.Tour, int64, error) {
	query := r.db.Model(&models.Tour{})
	if city := strings.TrimSpace(filter.City); city != "" {
		query = query.Where("city = ?", city)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, argCount := buildLocalizedLikeCondition(r.db, []string{"slug", "city"}, []string{"title_json"})
		query = query.Where(condition, repeatLikeArgs("%"+search+"%", argCount)...)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var tours []models.Tour
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Order("sort_order ASC, id ASC").
		Find(&tours).Error; err != nil {
		return nil, 0, err
	}
	return tours, total, nil
}

// Create inserts the tour; an inactive flag is written explicitly since the column defaults to true.
func (r *GormTourRepository) Create(tour *models.Tour) error {
	active := tour.IsActive
	if err := r.db.Create(tour).Error; err != nil {
		return err
	}
	if !active {
		tour.IsActive = false
		return r.db.Model(tour).Update("is_active", false).Error
	}
	return nil
}

func (r *GormTourRepository) Update(tour *models.Tour) error {
	return r.db.Save(tour).Error
}

// Delete soft deletes the tour.
func (r *GormTourRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.Tour{}, id).Error
}

package repository

import (
	"github.com/tourshop/internal/models"

	"gorm.io/gorm"
)

// CatalogSyncRunRepository sync run history
type CatalogSyncRunRepository interface {
	Create(run *models.CatalogSyncRun) error
	Update(run *models.CatalogSyncRun) error
	ListRecent(limit int) ([]models.CatalogSyncRun, error)
}

// GormCatalogSyncRunRepository GORM implementation
type GormCatalogSyncRunRepository struct {
	db *gorm.DB
}

// NewCatalogSyncRunRepository creates the repository.
func NewCatalogSyncRunRepository(db *gorm.DB) *GormCatalogSyncRunRepository {
	return &GormCatalogSyncRunRepository{db: db}
}

func (r *GormCatalogSyncRunRepository) Create(run *models.CatalogSyncRun) error {
	return r.db.Create(run).Error
}

func (r *GormCatalogSyncRunRepository) Update(run *models.CatalogSyncRun) error {
	return r.db.Save(run).Error
}

// ListRecent newest first, capped at 100.
func (r *GormCatalogSyncRunRepository) ListRecent(limit int) ([]models.CatalogSyncRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	runs := make([]models.CatalogSyncRun, 0, limit)
	err := r.db.Order("id DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

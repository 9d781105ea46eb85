package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/tourshop/internal/constants"
	"github.com/tourshop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSessionAlreadyAttached is returned when a pending record already points at a session.
var ErrSessionAlreadyAttached = errors.New("pending record already has a checkout session")

// PendingBookingRepository pending booking storage
type PendingBookingRepository interface {
	Create(pending *models.PendingBooking) error
	GetByID(id string) (*models.PendingBooking, error)
	GetBySessionID(sessionID string) (*models.PendingBooking, error)
	GetForUpdate(id string) (*models.PendingBooking, error)
	AttachSession(id, sessionID string) error
	UpdateStatus(id, fromStatus, toStatus string) (bool, error)
	ExpireBefore(cutoff time.Time) (int64, error)
	List(filter PendingBookingListFilter) ([]models.PendingBooking, int64, error)
	WithTx(tx *gorm.DB) *GormPendingBookingRepository
}

// GormPendingBookingRepository GORM implementation
type GormPendingBookingRepository struct {
	db *gorm.DB
}

// NewPendingBookingRepository creates the repository.
func NewPendingBookingRepository(db *gorm.DB) *GormPendingBookingRepository {
	return &GormPendingBookingRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormPendingBookingRepository) WithTx(tx *gorm.DB) *GormPendingBookingRepository {
	if tx == nil {
		return r
	}
	return &GormPendingBookingRepository{db: tx}
}

func (r *GormPendingBookingRepository) Create(pending *models.PendingBooking) error {
	if pending == nil || strings.TrimSpace(pending.ID) == "" {
		return errors.New("pending booking id is required")
	}
	return r.db.Create(pending).Error
}

// GetByID returns nil when the record does not exist.
func (r *GormPendingBookingRepository) GetByID(id string) (*models.PendingBooking, error) {
	return r.first(r.db.Where("id = ?", strings.TrimSpace(id)), id)
}

// GetBySessionID returns nil when no record points at the session.
func (r *GormPendingBookingRepository) GetBySessionID(sessionID string) (*models.PendingBooking, error) {
	return r.first(r.db.Where("session_id = ?", strings.TrimSpace(sessionID)), sessionID)
}

// GetForUpdate locks the row for the rest of the transaction.
func (r *GormPendingBookingRepository) GetForUpdate(id string) (*models.PendingBooking, error) {
	query := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", strings.TrimSpace(id))
	return r.first(query, id)
}

func (r *GormPendingBookingRepository) first(query *gorm.DB, key string) (*models.PendingBooking, error) {
	if strings.TrimSpace(key) == "" {
		return nil, nil
	}
	var pending models.PendingBooking
	if err := query.First(&pending).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pending, nil
}

// AttachSession sets the session id once; a second attach with a different id fails.
func (r *GormPendingBookingRepository) AttachSession(id, sessionID string) error {
	result := r.db.Model(&models.PendingBooking{}).
		Where("id = ? AND (session_id IS NULL OR session_id = ?)", id, sessionID).
		Updates(map[string]interface{}{
			"session_id": sessionID,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionAlreadyAttached
	}
	return nil
}

// UpdateStatus performs a compare-and-set transition and reports whether it applied.
func (r *GormPendingBookingRepository) UpdateStatus(id, fromStatus, toStatus string) (bool, error) {
	result := r.db.Model(&models.PendingBooking{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(map[string]interface{}{
			"status":     toStatus,
			"updated_at": time.Now(),
		})
	return result.RowsAffected > 0, result.Error
}

// ExpireBefore marks pending records past their expiry as expired.
func (r *GormPendingBookingRepository) ExpireBefore(cutoff time.Time) (int64, error) {
	result := r.db.Model(&models.PendingBooking{}).
		Where("status = ? AND expires_at < ?", constants.PendingStatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":     constants.PendingStatusExpired,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// List newest first.
func (r *GormPendingBookingRepository) List(filter PendingBookingListFilter) ([]models.PendingBooking, int64, error) {
	query := r.db.Model(&models.PendingBooking{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.TourID > 0 {
		query = query.Where("tour_id = ?", filter.TourID)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.PendingBooking
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

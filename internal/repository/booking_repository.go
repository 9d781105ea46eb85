package repository

import (
	"errors"
	"strings"

	"github.com/tourshop/internal/constants"
	"github.com/tourshop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingRepository confirmed booking storage
type BookingRepository interface {
	Create(booking *models.Booking) error
	Update(booking *models.Booking) error
	GetByID(id uint) (*models.Booking, error)
	GetBySessionID(sessionID string) (*models.Booking, error)
	FindLocalStoriesSlot(tourID uint, tourDatetime, email string) (*models.Booking, error)
	List(filter BookingListFilter) ([]models.Booking, int64, error)
	WithTx(tx *gorm.DB) *GormBookingRepository
}

// GormBookingRepository GORM implementation
type GormBookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates the repository.
func NewBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormBookingRepository) WithTx(tx *gorm.DB) *GormBookingRepository {
	if tx == nil {
		return r
	}
	return &GormBookingRepository{db: tx}
}

func (r *GormBookingRepository) Create(booking *models.Booking) error {
	return r.db.Create(booking).Error
}

func (r *GormBookingRepository) Update(booking *models.Booking) error {
	return r.db.Save(booking).Error
}

// GetByID returns nil when the booking does not exist.
func (r *GormBookingRepository) GetByID(id uint) (*models.Booking, error) {
	if id == 0 {
		return nil, nil
	}
	var booking models.Booking
	if err := r.db.First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// GetBySessionID returns nil when no booking was promoted from the session.
func (r *GormBookingRepository) GetBySessionID(sessionID string) (*models.Booking, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, nil
	}
	var booking models.Booking
	if err := r.db.Where("session_id = ?", sessionID).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// FindLocalStoriesSlot locks an existing non-cancelled booking for the same
// tour slot and customer, so a repeat purchase extends it instead of
// creating a duplicate.
func (r *GormBookingRepository) FindLocalStoriesSlot(tourID uint, tourDatetime, email string) (*models.Booking, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if tourID == 0 || tourDatetime == "" || email == "" {
		return nil, nil
	}
	var booking models.Booking
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tour_id = ? AND tour_datetime = ? AND LOWER(customer_email) = ? AND status <> ?",
			tourID, tourDatetime, email, constants.BookingStatusCancelled).
		Order("id ASC").
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// List orders by tour datetime, undated bookings last.
func (r *GormBookingRepository) List(filter BookingListFilter) ([]models.Booking, int64, error) {
	query := r.db.Model(&models.Booking{})
	if filter.TourID > 0 {
		query = query.Where("tour_id = ?", filter.TourID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if email := strings.ToLower(strings.TrimSpace(filter.Email)); email != "" {
		query = query.Where("LOWER(customer_email) LIKE ?", "%"+email+"%")
	}
	if filter.From != "" {
		query = query.Where("tour_datetime >= ?", filter.From)
	}
	if filter.To != "" {
		query = query.Where("tour_datetime <= ?", filter.To)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Booking
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Order("tour_datetime IS NULL, tour_datetime ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

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

// WebshopItemRepository webshop catalog storage
type WebshopItemRepository interface {
	GetByUUID(uuid string) (*models.WebshopItem, error)
	ListByUUIDs(uuids []string) ([]models.WebshopItem, error)
	List(filter WebshopItemListFilter) ([]models.WebshopItem, int64, error)
	Upsert(item *models.WebshopItem) error
	Update(item *models.WebshopItem) error
	Delete(uuid string) error
}

// GormWebshopItemRepository GORM implementation
type GormWebshopItemRepository struct {
	db *gorm.DB
}

// NewWebshopItemRepository creates the repository.
func NewWebshopItemRepository(db *gorm.DB) *GormWebshopItemRepository {
	return &GormWebshopItemRepository{db: db}
}

// GetByUUID returns nil when the item does not exist.
func (r *GormWebshopItemRepository) GetByUUID(uuid string) (*models.WebshopItem, error) {
	uuid = strings.TrimSpace(uuid)
	if uuid == "" {
		return nil, nil
	}
	var item models.WebshopItem
	if err := r.db.Where("uuid = ?", uuid).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *GormWebshopItemRepository) ListByUUIDs(uuids []string) ([]models.WebshopItem, error) {
	items := make([]models.WebshopItem, 0, len(uuids))
	if len(uuids) == 0 {
		return items, nil
	}
	err := r.db.Where("uuid IN ?", uuids).Find(&items).Error
	return items, err
}

// List orders by category then name.
func (r *GormWebshopItemRepository) List(filter WebshopItemListFilter) ([]models.WebshopItem, int64, error) {
	query := r.db.Model(&models.WebshopItem{})
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []models.WebshopItem
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Order("category ASC, name ASC").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Upsert inserts or updates by uuid, leaving the stored payment processor ids untouched.
func (r *GormWebshopItemRepository) Upsert(item *models.WebshopItem) error {
	if item == nil || strings.TrimSpace(item.UUID) == "" {
		return errors.New("webshop item uuid is required")
	}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uuid"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "category", "price", "description", "additional_info", "updated_at"}),
	}).Create(item).Error; err != nil {
		return err
	}
	var stored models.WebshopItem
	if err := r.db.Where("uuid = ?", item.UUID).First(&stored).Error; err != nil {
		return err
	}
	*item = stored
	return nil
}

func (r *GormWebshopItemRepository) Update(item *models.WebshopItem) error {
	return r.db.Save(item).Error
}

// Delete soft deletes the item.
func (r *GormWebshopItemRepository) Delete(uuid string) error {
	return r.db.Where("uuid = ?", uuid).Delete(&models.WebshopItem{}).Error
}

// WebshopOrderRepository webshop order storage
type WebshopOrderRepository interface {
	Create(order *models.WebshopOrder) error
	GetByID(id string) (*models.WebshopOrder, error)
	GetBySessionID(sessionID string) (*models.WebshopOrder, error)
	AttachSession(id, sessionID string) error
	MarkCompleted(id string, at time.Time) (bool, error)
	ExpireBefore(cutoff time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormWebshopOrderRepository
}

// GormWebshopOrderRepository GORM implementation
type GormWebshopOrderRepository struct {
	db *gorm.DB
}

// NewWebshopOrderRepository creates the repository.
func NewWebshopOrderRepository(db *gorm.DB) *GormWebshopOrderRepository {
	return &GormWebshopOrderRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormWebshopOrderRepository) WithTx(tx *gorm.DB) *GormWebshopOrderRepository {
	if tx == nil {
		return r
	}
	return &GormWebshopOrderRepository{db: tx}
}

func (r *GormWebshopOrderRepository) Create(order *models.WebshopOrder) error {
	if order == nil || strings.TrimSpace(order.ID) == "" {
		return errors.New("webshop order id is required")
	}
	return r.db.Create(order).Error
}

// GetByID returns nil when the order does not exist.
func (r *GormWebshopOrderRepository) GetByID(id string) (*models.WebshopOrder, error) {
	return r.first("id = ?", id)
}

// GetBySessionID returns nil when no order points at the session.
func (r *GormWebshopOrderRepository) GetBySessionID(sessionID string) (*models.WebshopOrder, error) {
	return r.first("session_id = ?", sessionID)
}

func (r *GormWebshopOrderRepository) first(cond, value string) (*models.WebshopOrder, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	var order models.WebshopOrder
	if err := r.db.Where(cond, value).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// AttachSession sets the session id once.
func (r *GormWebshopOrderRepository) AttachSession(id, sessionID string) error {
	result := r.db.Model(&models.WebshopOrder{}).
		Where("id = ? AND (session_id IS NULL OR session_id = ?)", id, sessionID).
		Updates(map[string]interface{}{"session_id": sessionID, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionAlreadyAttached
	}
	return nil
}

// MarkCompleted reports false when the order was not pending anymore.
func (r *GormWebshopOrderRepository) MarkCompleted(id string, at time.Time) (bool, error) {
	result := r.db.Model(&models.WebshopOrder{}).
		Where("id = ? AND status = ?", id, constants.PendingStatusPending).
		Updates(map[string]interface{}{
			"status":       constants.PendingStatusCompleted,
			"completed_at": at,
			"updated_at":   at,
		})
	return result.RowsAffected > 0, result.Error
}

// ExpireBefore marks pending orders past their expiry as expired.
func (r *GormWebshopOrderRepository) ExpireBefore(cutoff time.Time) (int64, error) {
	result := r.db.Model(&models.WebshopOrder{}).
		Where("status = ? AND expires_at < ?", constants.PendingStatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":     constants.PendingStatusExpired,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

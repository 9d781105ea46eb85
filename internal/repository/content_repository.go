package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/tourshop/internal/constants"
	"github.com/tourshop/internal/models"

	"gorm.io/gorm"
)

// ErrUnknownContentKind is returned for kinds other than faq and press.
var ErrUnknownContentKind = errors.New("unknown content kind")

// ContentRepository FAQ and press wall storage
type ContentRepository interface {
	ListFAQ(onlyActive bool) ([]models.FAQItem, error)
	GetFAQ(id uint) (*models.FAQItem, error)
	SaveFAQ(item *models.FAQItem) error
	DeleteFAQ(id uint) error
	ListPress(onlyActive bool) ([]models.PressItem, error)
	GetPress(id uint) (*models.PressItem, error)
	SavePress(item *models.PressItem) error
	DeletePress(id uint) error
	NextSortOrder(kind string) (int, error)
	OrderedIDs(kind string) ([]uint, error)
	ApplyOrder(kind string, ids []uint) error
}

// GormContentRepository GORM implementation
type GormContentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates the repository.
func NewContentRepository(db *gorm.DB) *GormContentRepository {
	return &GormContentRepository{db: db}
}

func (r *GormContentRepository) ListFAQ(onlyActive bool) ([]models.FAQItem, error) {
	items := make([]models.FAQItem, 0)
	query := r.db.Model(&models.FAQItem{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("sort_order ASC, id ASC").Find(&items).Error
	return items, err
}

// GetFAQ returns nil when the item does not exist.
func (r *GormContentRepository) GetFAQ(id uint) (*models.FAQItem, error) {
	var item models.FAQItem
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *GormContentRepository) SaveFAQ(item *models.FAQItem) error {
	if item.ID != 0 {
		return r.db.Save(item).Error
	}
	active := item.IsActive
	if err := r.db.Create(item).Error; err != nil {
		return err
	}
	if !active {
		item.IsActive = false
		return r.db.Model(item).Update("is_active", false).Error
	}
	return nil
}

func (r *GormContentRepository) DeleteFAQ(id uint) error {
	return r.db.Delete(&models.FAQItem{}, id).Error
}

func (r *GormContentRepository) ListPress(onlyActive bool) ([]models.PressItem, error) {
	items := make([]models.PressItem, 0)
	query := r.db.Model(&models.PressItem{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("sort_order ASC, id ASC").Find(&items).Error
	return items, err
}

// GetPress returns nil when the item does not exist.
func (r *GormContentRepository) GetPress(id uint) (*models.PressItem, error) {
	var item models.PressItem
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *GormContentRepository) SavePress(item *models.PressItem) error {
	if item.ID != 0 {
		return r.db.Save(item).Error
	}
	active := item.IsActive
	if err := r.db.Create(item).Error; err != nil {
		return err
	}
	if !active {
		item.IsActive = false
		return r.db.Model(item).Update("is_active", false).Error
	}
	return nil
}

func (r *GormContentRepository) DeletePress(id uint) error {
	return r.db.Delete(&models.PressItem{}, id).Error
}

// NextSortOrder returns one past the current maximum.
func (r *GormContentRepository) NextSortOrder(kind string) (int, error) {
	model, err := contentModel(kind)
	if err != nil {
		return 0, err
	}
	var max *int
	if err := r.db.Model(model).Select("MAX(sort_order)").Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

// OrderedIDs returns the ids in display order.
func (r *GormContentRepository) OrderedIDs(kind string) ([]uint, error) {
	model, err := contentModel(kind)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0)
	err = r.db.Model(model).Order("sort_order ASC, id ASC").Pluck("id", &ids).Error
	return ids, err
}

// ApplyOrder rewrites sort_order to the position of each id, atomically.
func (r *GormContentRepository) ApplyOrder(kind string, ids []uint) error {
	model, err := contentModel(kind)
	if err != nil {
		return err
	}
	now := time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		for idx, id := range ids {
			result := tx.Model(model).Where("id = ?", id).Updates(map[string]interface{}{
				"sort_order": idx,
				"updated_at": now,
			})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%s item %d vanished during reorder", kind, id)
			}
		}
		return nil
	})
}

func contentModel(kind string) (interface{}, error) {
	switch kind {
	case constants.ContentKindFAQ:
		return &models.FAQItem{}, nil
	case constants.ContentKindPress:
		return &models.PressItem{}, nil
	default:
		return nil, ErrUnknownContentKind
	}
}

package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/tourshop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GiftCardRepository gift card and ledger storage
type GiftCardRepository interface {
	Create(card *models.GiftCard) error
	GetByID(id uint) (*models.GiftCard, error)
	GetByCodeKey(codeKey string) (*models.GiftCard, error)
	GetByCodeKeyForUpdate(codeKey string) (*models.GiftCard, error)
	CodeKeyExists(codeKey string) (bool, error)
	List(filter GiftCardListFilter) ([]models.GiftCard, int64, error)
	Update(card *models.GiftCard) error
	CompareAndSetBalance(id uint, expected, next models.Money, status string, usedAt time.Time) (bool, error)
	Delete(id uint) error
	CreateTransaction(txn *models.GiftCardTransaction) error
	ListTransactions(cardID uint) ([]models.GiftCardTransaction, error)
	WithTx(tx *gorm.DB) *GormGiftCardRepository
}

// GormGiftCardRepository GORM implementation
type GormGiftCardRepository struct {
	db *gorm.DB
}

// NewGiftCardRepository creates the repository.
func NewGiftCardRepository(db *gorm.DB) *GormGiftCardRepository {
	return &GormGiftCardRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormGiftCardRepository) WithTx(tx *gorm.DB) *GormGiftCardRepository {
	if tx == nil {
		return r
	}
	return &GormGiftCardRepository{db: tx}
}

func (r *GormGiftCardRepository) Create(card *models.GiftCard) error {
	if card == nil {
		return errors.New("invalid gift card")
	}
	return r.db.Create(card).Error
}

// GetByID returns nil when the card does not exist.
func (r *GormGiftCardRepository) GetByID(id uint) (*models.GiftCard, error) {
	if id == 0 {
		return nil, nil
	}
	var card models.GiftCard
	if err := r.db.First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// GetByCodeKey looks a card up by its dashless code.
func (r *GormGiftCardRepository) GetByCodeKey(codeKey string) (*models.GiftCard, error) {
	return r.byCodeKey(r.db, codeKey)
}

// GetByCodeKeyForUpdate locks the row for the rest of the transaction.
func (r *GormGiftCardRepository) GetByCodeKeyForUpdate(codeKey string) (*models.GiftCard, error) {
	return r.byCodeKey(r.db.Clauses(clause.Locking{Strength: "UPDATE"}), codeKey)
}

func (r *GormGiftCardRepository) byCodeKey(query *gorm.DB, codeKey string) (*models.GiftCard, error) {
	codeKey = strings.TrimSpace(codeKey)
	if codeKey == "" {
		return nil, nil
	}
	var card models.GiftCard
	if err := query.Where("code_key = ?", codeKey).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// CodeKeyExists includes soft deleted cards so a code is never reissued.
func (r *GormGiftCardRepository) CodeKeyExists(codeKey string) (bool, error) {
	var count int64
	err := r.db.Unscoped().Model(&models.GiftCard{}).Where("code_key = ?", codeKey).Count(&count).Error
	return count > 0, err
}

// List newest first.
func (r *GormGiftCardRepository) List(filter GiftCardListFilter) ([]models.GiftCard, int64, error) {
	query := r.db.Model(&models.GiftCard{})
	if code := strings.ToUpper(strings.TrimSpace(filter.Code)); code != "" {
		query = query.Where("code_key LIKE ?", "%"+strings.ReplaceAll(code, "-", "")+"%")
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if email := strings.ToLower(strings.TrimSpace(filter.Email)); email != "" {
		query = query.Where("LOWER(recipient_email) = ? OR LOWER(purchaser_email) = ?", email, email)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var cards []models.GiftCard
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Order("id DESC").
		Find(&cards).Error; err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

func (r *GormGiftCardRepository) Update(card *models.GiftCard) error {
	if card == nil {
		return errors.New("invalid gift card")
	}
	return r.db.Save(card).Error
}

// CompareAndSetBalance moves the balance only if it still equals expected.
func (r *GormGiftCardRepository) CompareAndSetBalance(id uint, expected, next models.Money, status string, usedAt time.Time) (bool, error) {
	result := r.db.Model(&models.GiftCard{}).
		Where("id = ? AND current_balance = ?", id, expected).
		Updates(map[string]interface{}{
			"current_balance": next,
			"status":          status,
			"last_used_at":    usedAt,
			"updated_at":      usedAt,
		})
	return result.RowsAffected > 0, result.Error
}

// Delete soft deletes the card.
func (r *GormGiftCardRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.GiftCard{}, id).Error
}

func (r *GormGiftCardRepository) CreateTransaction(txn *models.GiftCardTransaction) error {
	if txn == nil {
		return errors.New("invalid gift card transaction")
	}
	return r.db.Create(txn).Error
}

// ListTransactions newest first.
func (r *GormGiftCardRepository) ListTransactions(cardID uint) ([]models.GiftCardTransaction, error) {
	txns := make([]models.GiftCardTransaction, 0)
	err := r.db.Where("gift_card_id = ?", cardID).Order("id DESC").Find(&txns).Error
	return txns, err
}

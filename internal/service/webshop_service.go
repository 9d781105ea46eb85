package service

import (
	"context"
	"strings"

	"github.com/tourshop/internal/constants"
	"github.com/tourshop/internal/logger"
	"github.com/tourshop/internal/models"
	"github.com/tourshop/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var webshopCategories = []string{
	constants.WebshopCategoryBook,
	constants.WebshopCategoryMerchandise,
	constants.WebshopCategoryGame,
}

// WebshopItemInput admin create and update payload.
type WebshopItemInput struct {
	Name            string       `json:"name"`
	Category        string       `json:"category"`
	Price           models.Money `json:"price"`
	Description     string       `json:"description"`
	AdditionalInfo  string       `json:"additional_info"`
	StripeProductID string       `json:"stripe_product_id"`
	StripePriceID   string       `json:"stripe_price_id"`
	IsActive        *bool        `json:"is_active"`
}

// WebshopService webshop catalog reads and admin writes.
type WebshopService struct {
	repo repository.WebshopItemRepository
}

// NewWebshopService creates the service.
func NewWebshopService(repo repository.WebshopItemRepository) *WebshopService {
	return &WebshopService{repo: repo}
}

// List pages through items.
func (s *WebshopService) List(filter repository.WebshopItemListFilter) ([]models.WebshopItem, int64, error) {
	return s.repo.List(filter)
}

// Get returns ErrWebshopItemNotFound for unknown uuids.
func (s *WebshopService) Get(itemUUID string) (*models.WebshopItem, error) {
	item, err := s.repo.GetByUUID(strings.TrimSpace(itemUUID))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrWebshopItemNotFound
	}
	return item, nil
}

// Create stores a new item under a generated uuid.
func (s *WebshopService) Create(ctx context.Context, input WebshopItemInput) (*models.WebshopItem, error) {
	item := &models.WebshopItem{UUID: uuid.NewString(), IsActive: true}
	if err := applyWebshopInput(item, input); err != nil {
		return nil, err
	}
	active := item.IsActive
	if err := s.repo.Upsert(item); err != nil {
		return nil, err
	}
	// the column default turns a false flag into true on insert
	if !active {
		item.IsActive = false
		if err := s.repo.Update(item); err != nil {
			return nil, err
		}
	}
	logger.Infow("webshop_item_created", "uuid", item.UUID, "category", item.Category)
	return item, nil
}

// Update replaces the editable fields.
func (s *WebshopService) Update(ctx context.Context, itemUUID string, input WebshopItemInput) (*models.WebshopItem, error) {
	item, err := s.Get(itemUUID)
	if err != nil {
		return nil, err
	}
	if err := applyWebshopInput(item, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete soft deletes the item; carts drop it from their view.
func (s *WebshopService) Delete(ctx context.Context, itemUUID string) error {
	item, err := s.Get(itemUUID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(item.UUID); err != nil {
		return err
	}
	logger.Infow("webshop_item_deleted", "uuid", item.UUID)
	return nil
}

func applyWebshopInput(item *models.WebshopItem, input WebshopItemInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" || !input.Price.IsPositive() {
		return ErrWebshopItemInvalid
	}
	category, ok := lo.Find(webshopCategories, func(c string) bool {
		return strings.EqualFold(c, strings.TrimSpace(input.Category))
	})
	if !ok {
		return ErrWebshopItemInvalid
	}
	item.Name = name
	item.Category = category
	item.Price = models.NewMoneyFromDecimal(input.Price.Decimal)
	item.Description = strings.TrimSpace(input.Description)
	item.AdditionalInfo = strings.TrimSpace(input.AdditionalInfo)
	if v := strings.TrimSpace(input.StripeProductID); v != "" {
		item.StripeProductID = v
	}
	if v := strings.TrimSpace(input.StripePriceID); v != "" {
		item.StripePriceID = v
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}
	return nil
}

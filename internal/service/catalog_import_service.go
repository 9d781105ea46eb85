package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tourshop/internal/constants"
	"github.com/tourshop/internal/logger"
	"github.com/tourshop/internal/models"
	"github.com/tourshop/internal/payment/stripe"
	"github.com/tourshop/internal/repository"
)

// CatalogEntry one row of the webshop catalog as maintained by the shop owner.
type CatalogEntry struct {
	UUID           string
	Name           string
	Category       string
	Price          string // "Price (EUR)", comma or dot decimals
	Description    string
	AdditionalInfo string
}

// CatalogPriceClient payment processor catalog writes used by the import.
type CatalogPriceClient interface {
	CreateProduct(ctx context.Context, input stripe.ProductInput) (*stripe.Product, error)
	UpdateProduct(ctx context.Context, id string, input stripe.ProductInput) (*stripe.Product, error)
	GetPrice(ctx context.Context, id string) (*stripe.Price, error)
	CreatePrice(ctx context.Context, input stripe.PriceInput) (*stripe.Price, error)
}

// ImportOptions import switches.
type ImportOptions struct {
	DryRun bool
}

// ImportFailure an entry that could not be imported.
type ImportFailure struct {
	UUID  string `json:"uuid"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// ImportReport import counters.
type ImportReport struct {
	Total    int             `json:"total"`
	Created  int             `json:"created"`
	Updated  int             `json:"updated"`
	Skipped  int             `json:"skipped"`
	Errors   int             `json:"errors"`
	Failures []ImportFailure `json:"failures"`
	DryRun   bool            `json:"dry_run"`
}

// CatalogImportService seeds webshop items and mirrors them as processor products.
type CatalogImportService struct {
	itemRepo repository.WebshopItemRepository
	prices   CatalogPriceClient
	currency string
}

// NewCatalogImportService creates the service.
func NewCatalogImportService(itemRepo repository.WebshopItemRepository, prices CatalogPriceClient, currency string) *CatalogImportService {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = strings.ToLower(constants.DefaultCurrency)
	}
	return &CatalogImportService{itemRepo: itemRepo, prices: prices, currency: currency}
}

// Import upserts every entry by uuid and creates or refreshes its processor
// product and price. Entry failures are counted and never abort the import.
func (s *CatalogImportService) Import(ctx context.Context, entries []CatalogEntry, opts ImportOptions) (*ImportReport, error) {
	report := &ImportReport{Total: len(entries), DryRun: opts.DryRun, Failures: []ImportFailure{}}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		price, ok := parseCatalogPrice(entry.Price)
		if !ok {
			logger.Warnw("catalog_import_skipped", "uuid", entry.UUID, "name", entry.Name, "price", entry.Price)
			report.Skipped++
			continue
		}
		created, err := s.importEntry(ctx, entry, price, opts.DryRun)
		if err != nil {
			logger.Errorw("catalog_import_failed", "uuid", entry.UUID, "name", entry.Name, "error", err)
			report.Errors++
			report.Failures = append(report.Failures, ImportFailure{UUID: entry.UUID, Name: entry.Name, Error: err.Error()})
			continue
		}
		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}
	logger.Infow("catalog_import_finished",
		"total", report.Total,
		"created", report.Created,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"errors", report.Errors,
		"dry_run", report.DryRun,
	)
	return report, nil
}

// importEntry reports whether a new processor product was created.
func (s *CatalogImportService) importEntry(ctx context.Context, entry CatalogEntry, price models.Money, dryRun bool) (bool, error) {
	existing, err := s.itemRepo.GetByUUID(entry.UUID)
	if err != nil {
		return false, fmt.Errorf("lookup item: %w", err)
	}
	hasProduct := existing != nil && existing.StripeProductID != ""
	if dryRun {
		logger.Infow("catalog_import_dry_run", "uuid", entry.UUID, "name", entry.Name, "price", price.String(), "update", hasProduct)
		return !hasProduct, nil
	}

	item := &models.WebshopItem{
		UUID:           entry.UUID,
		Name:           strings.TrimSpace(entry.Name),
		Category:       entry.Category,
		Price:          price,
		Description:    entry.Description,
		AdditionalInfo: entry.AdditionalInfo,
		IsActive:       true,
	}
	if err := s.itemRepo.Upsert(item); err != nil {
		return false, fmt.Errorf("upsert item: %w", err)
	}

	metadata := map[string]string{"webshop_uuid": item.UUID, "category": item.Category}
	if item.StripeProductID != "" {
		return false, s.refreshProduct(ctx, item, price, metadata)
	}

	product, err := s.prices.CreateProduct(ctx, stripe.ProductInput{
		Name:        item.Name,
		Description: item.Description,
		Metadata:    metadata,
	})
	if err != nil {
		return false, fmt.Errorf("create product: %w", err)
	}
	item.StripeProductID = product.ID
	// a rerun after a failed price step refreshes instead of duplicating
	if err := s.itemRepo.Update(item); err != nil {
		return false, fmt.Errorf("store product id: %w", err)
	}
	if err := s.attachNewPrice(ctx, item, price); err != nil {
		return false, err
	}
	logger.Infow("catalog_import_created", "uuid", item.UUID, "product_id", item.StripeProductID, "price_id", item.StripePriceID)
	return true, nil
}

// refreshProduct updates the product and rolls a new default price when the
// amount changed.
func (s *CatalogImportService) refreshProduct(ctx context.Context, item *models.WebshopItem, price models.Money, metadata map[string]string) error {
	if _, err := s.prices.UpdateProduct(ctx, item.StripeProductID, stripe.ProductInput{
		Name:        item.Name,
		Description: item.Description,
		Metadata:    metadata,
	}); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if item.StripePriceID != "" {
		current, err := s.prices.GetPrice(ctx, item.StripePriceID)
		if err != nil {
			return fmt.Errorf("get price: %w", err)
		}
		if current.UnitAmount == price.MinorUnits() {
			logger.Infow("catalog_import_unchanged", "uuid", item.UUID, "product_id", item.StripeProductID)
			return nil
		}
	}
	if err := s.attachNewPrice(ctx, item, price); err != nil {
		return err
	}
	logger.Infow("catalog_import_repriced", "uuid", item.UUID, "product_id", item.StripeProductID, "price_id", item.StripePriceID)
	return nil
}

func (s *CatalogImportService) attachNewPrice(ctx context.Context, item *models.WebshopItem, price models.Money) error {
	created, err := s.prices.CreatePrice(ctx, stripe.PriceInput{
		ProductID:  item.StripeProductID,
		Currency:   s.currency,
		UnitAmount: price.MinorUnits(),
		Metadata:   map[string]string{"webshop_uuid": item.UUID},
	})
	if err != nil {
		return fmt.Errorf("create price: %w", err)
	}
	if _, err := s.prices.UpdateProduct(ctx, item.StripeProductID, stripe.ProductInput{DefaultPriceID: created.ID}); err != nil {
		return fmt.Errorf("set default price: %w", err)
	}
	item.StripePriceID = created.ID
	if err := s.itemRepo.Update(item); err != nil {
		return fmt.Errorf("store processor ids: %w", err)
	}
	return nil
}

func parseCatalogPrice(raw string) (models.Money, bool) {
	price, err := models.ParseMoney(raw)
	if err != nil || !price.IsPositive() {
		return models.Money{}, false
	}
	return price, true
}

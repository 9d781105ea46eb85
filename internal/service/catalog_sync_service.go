package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/tourshop/internal/constants"
	"github.com/tourshop/internal/inventory"
	"github.com/tourshop/internal/logger"
	"github.com/tourshop/internal/metrics"
	"github.com/tourshop/internal/models"
	"github.com/tourshop/internal/payment/stripe"
	"github.com/tourshop/internal/queue"
	"github.com/tourshop/internal/repository"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/singleflight"
)

const (
	syncRunStatusRunning  = "running"
	syncRunStatusFinished = "finished"
	syncRunStatusFailed   = "failed"

	syncSKUMaxLength       = 50
	syncSKUMinLength       = 3
	syncNameMaxLength      = 100
	syncDefaultProductName = "Unnamed Product"
	syncProductType        = "basic"

	syncMinRateLimitWait = 5 * time.Second
	syncMinCheckDelay    = time.Second
	syncDefaultBaseDelay = 3 * time.Second
	syncDefaultMaxWait   = 30 * time.Second
)

var skuInvalidChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// InventoryGateway inventory platform operations used by catalog sync.
type InventoryGateway interface {
	GetCompany(ctx context.Context) (*inventory.Company, error)
	FindProductBySKU(ctx context.Context, sku string) (*inventory.Product, error)
	CreateProduct(ctx context.Context, input inventory.ProductInput) (string, error)
	UpdateProduct(ctx context.Context, id string, input inventory.ProductUpdate) error
	SetCustomFields(ctx context.Context, id string, fields []inventory.CustomField) error
}

// ProductCatalog payment processor catalog reads used by catalog sync.
type ProductCatalog interface {
	ListAllProducts(ctx context.Context, active *bool) ([]stripe.Product, error)
	GetProduct(ctx context.Context, id string) (*stripe.Product, error)
	GetPrice(ctx context.Context, id string) (*stripe.Price, error)
}

// CatalogSyncSettings pacing and brand selection.
type CatalogSyncSettings struct {
	ShopID        string
	BrandID       string // used when the company lookup yields no brand
	TestProductID string
	BaseDelay     time.Duration
	MaxWait       time.Duration
}

// SyncInput selects what one run mirrors.
type SyncInput struct {
	ProductIDs []string `json:"productIds"`
	Trigger    string   `json:"trigger"`
	BrandID    string   `json:"brandId"` // operator override
	TestMode   bool     `json:"testMode"`
}

// SyncSummary run totals.
type SyncSummary struct {
	Total       int    `json:"total"`
	Successful  int    `json:"successful"`
	Failed      int    `json:"failed"`
	SuccessRate string `json:"success_rate"`
}

// SyncResult outcome of one run.
type SyncResult struct {
	RunID   uint               `json:"runId"`
	BrandID string             `json:"brandId"`
	Success int                `json:"success"`
	Failed  int                `json:"failed"`
	Errors  []models.SyncError `json:"errors"`
	Summary SyncSummary        `json:"summary"`
	Message string             `json:"message"`
}

// SyncTrigger result of an admin trigger: either queued or run inline.
type SyncTrigger struct {
	Queued bool        `json:"queued"`
	TaskID string      `json:"taskId,omitempty"`
	Result *SyncResult `json:"result,omitempty"`
}

// CatalogSyncService mirrors processor products into the inventory platform.
type CatalogSyncService struct {
	inventory   InventoryGateway
	catalog     ProductCatalog
	runRepo     repository.CatalogSyncRunRepository
	queueClient *queue.Client
	settings    CatalogSyncSettings
	sleep       func(ctx context.Context, d time.Duration) error
	now         func() time.Time
	group       singleflight.Group
}

// NewCatalogSyncService creates the service. inventoryGateway may be nil when
// the platform is not configured; runs then fail with ErrSyncNotConfigured.
func NewCatalogSyncService(inventoryGateway InventoryGateway, catalog ProductCatalog, runRepo repository.CatalogSyncRunRepository, queueClient *queue.Client, settings CatalogSyncSettings) *CatalogSyncService {
	if settings.BaseDelay <= 0 {
		settings.BaseDelay = syncDefaultBaseDelay
	}
	if settings.MaxWait <= 0 {
		settings.MaxWait = syncDefaultMaxWait
	}
	return &CatalogSyncService{
		inventory:   inventoryGateway,
		catalog:     catalog,
		runRepo:     runRepo,
		queueClient: queueClient,
		settings:    settings,
		sleep:       sleepContext,
		now:         time.Now,
	}
}

// Configured reports whether an inventory platform is wired.
func (s *CatalogSyncService) Configured() bool {
	return s != nil && s.inventory != nil
}

// Trigger enqueues a run when the queue is enabled, otherwise runs inline.
// Concurrent inline triggers share one run.
func (s *CatalogSyncService) Trigger(ctx context.Context, input SyncInput) (*SyncTrigger, error) {
	if s.inventory == nil {
		return nil, ErrSyncNotConfigured
	}
	if input.Trigger == "" {
		input.Trigger = constants.SyncTriggerAdmin
	}
	if s.queueClient != nil && s.queueClient.Enabled() {
		taskID, err := s.queueClient.EnqueueCatalogSync(queue.CatalogSyncPayload{
			ProductIDs: input.ProductIDs,
			Trigger:    input.Trigger,
			BrandID:    input.BrandID,
		})
		if errors.Is(err, asynq.ErrDuplicateTask) {
			return nil, ErrSyncRunning
		}
		if err != nil {
			return nil, err
		}
		logger.Infow("catalog_sync_enqueued", "task_id", taskID, "trigger", input.Trigger)
		return &SyncTrigger{Queued: true, TaskID: taskID}, nil
	}

	value, err, shared := s.group.Do("catalog-sync", func() (interface{}, error) {
		return s.Run(ctx, input)
	})
	if shared {
		logger.Infow("catalog_sync_trigger_shared", "trigger", input.Trigger)
	}
	result, _ := value.(*SyncResult)
	return &SyncTrigger{Result: result}, err
}

// ListRuns returns the most recent runs.
func (s *CatalogSyncService) ListRuns(limit int) ([]models.CatalogSyncRun, error) {
	return s.runRepo.ListRecent(limit)
}

// Run mirrors the selected products. Every product is visited; failures are
// collected per product and never abort the run.
func (s *CatalogSyncService) Run(ctx context.Context, input SyncInput) (*SyncResult, error) {
	if s.inventory == nil || s.catalog == nil {
		return nil, ErrSyncNotConfigured
	}
	started := s.now()
	run := &models.CatalogSyncRun{
		Trigger:   input.Trigger,
		Status:    syncRunStatusRunning,
		StartedAt: started,
	}
	if run.Trigger == "" {
		run.Trigger = constants.SyncTriggerAdmin
	}
	if err := s.runRepo.Create(run); err != nil {
		return nil, err
	}
	defer func() {
		metrics.CatalogSyncDuration.Observe(s.now().Sub(started).Seconds())
	}()

	brandID, err := s.resolveBrand(ctx, input.BrandID)
	if err != nil {
		s.failRun(run, err)
		return nil, err
	}
	run.BrandID = brandID

	products, loadFailures, err := s.loadProducts(ctx, input)
	if err != nil {
		err = fmt.Errorf("load products: %w", upstreamFailure(err))
		s.failRun(run, err)
		return nil, err
	}
	total := len(products) + len(loadFailures)

	result := &SyncResult{RunID: run.ID, BrandID: brandID, Errors: []models.SyncError{}}
	result.Failed = len(loadFailures)
	result.Errors = append(result.Errors, loadFailures...)
	logger.Infow("catalog_sync_started", "run_id", run.ID, "products", total, "brand_id", brandID)
	pacer := &syncPacer{base: s.settings.BaseDelay, max: s.settings.MaxWait}
	var runErr error
	for idx, product := range products {
		remaining := idx < len(products)-1
		if err := s.syncProduct(ctx, product, brandID, pacer, remaining); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				runErr = ctxErr
				break
			}
			result.Failed++
			result.Errors = append(result.Errors, models.SyncError{ProductID: productIDOrUnknown(product), Error: syncErrorMessage(err)})
			metrics.CatalogSyncProducts.WithLabelValues("failed").Inc()
			logger.Warnw("catalog_sync_product_failed", "run_id", run.ID, "product_id", product.ID, "error", err)
		} else {
			result.Success++
			pacer.reset()
			metrics.CatalogSyncProducts.WithLabelValues("success").Inc()
		}
		if remaining {
			if err := s.sleep(ctx, pacer.betweenProducts()); err != nil {
				runErr = err
				break
			}
		}
	}

	result.Summary = summarize(total, result.Success, result.Failed)
	result.Message = fmt.Sprintf("Synced %d products, %d failed", result.Success, result.Failed)

	run.Total = total
	run.Succeeded = result.Success
	run.Failed = result.Failed
	run.Errors = models.SyncErrorList(result.Errors)
	finished := s.now()
	run.FinishedAt = &finished
	run.Status = syncRunStatusFinished
	run.Message = result.Message
	if runErr != nil {
		run.Status = syncRunStatusFailed
		run.Message = "interrupted: " + runErr.Error()
	}
	if err := s.runRepo.Update(run); err != nil {
		logger.Errorw("catalog_sync_run_persist_failed", "run_id", run.ID, "error", err)
	}
	logger.Infow("catalog_sync_finished",
		"run_id", run.ID,
		"total", result.Summary.Total,
		"successful", result.Summary.Successful,
		"failed", result.Summary.Failed,
		"success_rate", result.Summary.SuccessRate,
	)
	return result, runErr
}

// syncProduct looks the SKU up, updates or creates the product, then writes
// the processor ids as custom fields.
func (s *CatalogSyncService) syncProduct(ctx context.Context, product stripe.Product, brandID string, pacer *syncPacer, remaining bool) error {
	if strings.TrimSpace(product.ID) == "" {
		return errors.New("Invalid product object - missing id")
	}
	price := s.defaultPrice(ctx, product)
	sku := GenerateSKU(product.ID, s.now())
	name := truncateRunes(product.Name, syncNameMaxLength)
	if strings.TrimSpace(name) == "" {
		name = syncDefaultProductName
	}
	description := strings.TrimSpace(product.Description)
	var retailPrice *float64
	if price != nil {
		value := float64(price.UnitAmount) / 100
		retailPrice = &value
	}

	existingID := ""
	existing, err := s.inventory.FindProductBySKU(ctx, sku)
	switch {
	case err == nil && existing != nil:
		existingID = existing.ID
	case errors.Is(err, inventory.ErrRateLimited):
		metrics.CatalogSyncRateLimited.Inc()
		if err := s.sleep(ctx, pacer.rateLimited()); err != nil {
			return err
		}
	case err != nil:
		// lookup failures fall through to creation
		logger.Debugw("catalog_sync_lookup_failed", "sku", sku, "error", err)
	}
	if remaining {
		if err := s.sleep(ctx, pacer.afterCheck()); err != nil {
			return err
		}
	}

	inventoryID := existingID
	if existingID != "" {
		err = s.inventory.UpdateProduct(ctx, existingID, inventory.ProductUpdate{
			Name:        name,
			Description: description,
			RetailPrice: retailPrice,
		})
	} else {
		inventoryID, err = s.inventory.CreateProduct(ctx, inventory.ProductInput{
			Type:        syncProductType,
			SKU:         sku,
			Name:        name,
			Description: description,
			RetailPrice: retailPrice,
			BrandID:     brandID,
		})
	}
	if err != nil {
		if errors.Is(err, inventory.ErrRateLimited) {
			metrics.CatalogSyncRateLimited.Inc()
			if sleepErr := s.sleep(ctx, pacer.rateLimited()); sleepErr != nil {
				return sleepErr
			}
		}
		return err
	}

	fields := []inventory.CustomField{{Key: "stripe_product_id", Value: product.ID}}
	if price != nil {
		fields = append(fields, inventory.CustomField{Key: "stripe_price_id", Value: price.ID})
	}
	if err := s.inventory.SetCustomFields(ctx, inventoryID, fields); err != nil {
		logger.Warnw("catalog_sync_custom_fields_failed", "product_id", product.ID, "inventory_id", inventoryID, "error", err)
	}
	return nil
}

// defaultPrice returns the expanded default price or retrieves it; a failed
// retrieval is treated as no price.
func (s *CatalogSyncService) defaultPrice(ctx context.Context, product stripe.Product) *stripe.Price {
	if product.DefaultPrice != nil {
		return product.DefaultPrice
	}
	if product.DefaultPriceID == "" {
		return nil
	}
	price, err := s.catalog.GetPrice(ctx, product.DefaultPriceID)
	if err != nil {
		logger.Warnw("catalog_sync_price_lookup_failed", "product_id", product.ID, "price_id", product.DefaultPriceID, "error", err)
		return nil
	}
	return price
}

// resolveBrand: operator override, then the brand owning the configured
// shop, then the first brand, then the configured fallback brand.
func (s *CatalogSyncService) resolveBrand(ctx context.Context, override string) (string, error) {
	if brandID := strings.TrimSpace(override); brandID != "" {
		return brandID, nil
	}
	company, err := s.inventory.GetCompany(ctx)
	if err != nil {
		logger.Warnw("catalog_sync_company_lookup_failed", "error", err)
	}
	if brandID := SelectBrand(company, s.settings.ShopID); brandID != "" {
		return brandID, nil
	}
	if brandID := strings.TrimSpace(s.settings.BrandID); brandID != "" {
		return brandID, nil
	}
	return "", ErrSyncBrandMissing
}

// SelectBrand picks the brand whose shops include shopID, else the first brand.
func SelectBrand(company *inventory.Company, shopID string) string {
	if company == nil || len(company.Brands) == 0 {
		return ""
	}
	shopID = strings.TrimSpace(shopID)
	if shopID != "" {
		for _, brand := range company.Brands {
			for _, shop := range brand.Shops {
				if shop.ID == shopID {
					return brand.ID
				}
			}
		}
	}
	return company.Brands[0].ID
}

// loadProducts lists the active catalog, or fetches the named ids one by one.
// An id that cannot be fetched is reported as a failure and skipped.
func (s *CatalogSyncService) loadProducts(ctx context.Context, input SyncInput) ([]stripe.Product, []models.SyncError, error) {
	ids := input.ProductIDs
	if input.TestMode && s.settings.TestProductID != "" {
		ids = []string{s.settings.TestProductID}
	}
	if len(ids) == 0 {
		active := true
		products, err := s.catalog.ListAllProducts(ctx, &active)
		return products, nil, err
	}
	products := make([]stripe.Product, 0, len(ids))
	var failures []models.SyncError
	for _, id := range ids {
		id = strings.TrimSpace(id)
		product, err := s.catalog.GetProduct(ctx, id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, nil, ctxErr
			}
			metrics.CatalogSyncProducts.WithLabelValues("failed").Inc()
			logger.Warnw("catalog_sync_product_fetch_failed", "product_id", id, "error", err)
			failures = append(failures, models.SyncError{ProductID: id, Error: syncErrorMessage(err)})
			continue
		}
		products = append(products, *product)
	}
	return products, failures, nil
}

func (s *CatalogSyncService) failRun(run *models.CatalogSyncRun, cause error) {
	finished := s.now()
	run.Status = syncRunStatusFailed
	run.Message = cause.Error()
	run.FinishedAt = &finished
	if err := s.runRepo.Update(run); err != nil {
		logger.Errorw("catalog_sync_run_persist_failed", "run_id", run.ID, "error", err)
	}
	logger.Errorw("catalog_sync_failed", "run_id", run.ID, "error", cause)
}

// GenerateSKU strips non-alphanumerics from the product id, caps it at 50
// and pads short values with STR. An empty id falls back to a timestamp.
func GenerateSKU(productID string, now time.Time) string {
	if strings.TrimSpace(productID) == "" {
		stamp := fmt.Sprintf("%d", now.UnixMilli())
		if len(stamp) > 10 {
			stamp = stamp[len(stamp)-10:]
		}
		return "STR" + stamp
	}
	sku := skuInvalidChars.ReplaceAllString(productID, "")
	if len(sku) > syncSKUMaxLength {
		sku = sku[:syncSKUMaxLength]
	}
	if len(sku) < syncSKUMinLength {
		sku = "STR" + sku
	}
	sku = strings.ReplaceAll(sku, "::", "-")
	return strings.ReplaceAll(sku, "||", "-")
}

func syncErrorMessage(err error) string {
	var httpErr *inventory.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Error()
	}
	return err.Error()
}

func productIDOrUnknown(product stripe.Product) string {
	if product.ID == "" {
		return "unknown"
	}
	return product.ID
}

func summarize(total, success, failed int) SyncSummary {
	rate := "0%"
	if total > 0 {
		rate = fmt.Sprintf("%.1f%%", float64(success)/float64(total)*100)
	}
	return SyncSummary{Total: total, Successful: success, Failed: failed, SuccessRate: rate}
}

// syncPacer tracks consecutive rate limit responses and derives waits.
type syncPacer struct {
	base        time.Duration
	max         time.Duration
	consecutive int
}

func (p *syncPacer) reset() {
	p.consecutive = 0
}

// rateLimited registers a 429 and returns min(max(5s, base*2^n), max).
func (p *syncPacer) rateLimited() time.Duration {
	p.consecutive++
	return minDuration(maxDuration(syncMinRateLimitWait, p.exponential()), p.max)
}

// afterCheck is max(1s, base/2).
func (p *syncPacer) afterCheck() time.Duration {
	return maxDuration(syncMinCheckDelay, p.base/2)
}

// betweenProducts is base, or min(max(2*base, base*2^n), max) after 429s.
func (p *syncPacer) betweenProducts() time.Duration {
	if p.consecutive == 0 {
		return p.base
	}
	return minDuration(maxDuration(2*p.base, p.exponential()), p.max)
}

func (p *syncPacer) exponential() time.Duration {
	factor := math.Pow(2, float64(p.consecutive))
	wait := float64(p.base) * factor
	if wait > float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(wait)
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

// sleepContext waits d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

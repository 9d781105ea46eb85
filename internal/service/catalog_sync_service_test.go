package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tourshop/internal/inventory"
	"github.com/tourshop/internal/models"
	"github.com/tourshop/internal/payment/stripe"
	"github.com/tourshop/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeInventory struct {
	mu         sync.Mutex
	company    *inventory.Company
	companyErr error
	existing   map[string]string
	lookupErrs []error
	createErrs map[string][]error
	fieldsErr  error
	created    []inventory.ProductInput
	updated    map[string]inventory.ProductUpdate
	fields     map[string][]inventory.CustomField
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{
		company: &inventory.Company{Brands: []inventory.Brand{
			{ID: "brand-first", Shops: []inventory.Shop{{ID: "shop-a"}}},
			{ID: "brand-shop", Shops: []inventory.Shop{{ID: "shop-b"}}},
		}},
		existing:   map[string]string{},
		createErrs: map[string][]error{},
		updated:    map[string]inventory.ProductUpdate{},
		fields:     map[string][]inventory.CustomField{},
	}
}

func (f *fakeInventory) GetCompany(ctx context.Context) (*inventory.Company, error) {
	return f.company, f.companyErr
}

func (f *fakeInventory) FindProductBySKU(ctx context.Context, sku string) (*inventory.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.lookupErrs) > 0 {
		err := f.lookupErrs[0]
		f.lookupErrs = f.lookupErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if id, ok := f.existing[sku]; ok {
		return &inventory.Product{ID: id, SKU: sku}, nil
	}
	return nil, nil
}

func (f *fakeInventory) CreateProduct(ctx context.Context, input inventory.ProductInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if errs := f.createErrs[input.SKU]; len(errs) > 0 {
		f.createErrs[input.SKU] = errs[1:]
		return "", errs[0]
	}
	f.created = append(f.created, input)
	return "inv-" + input.SKU, nil
}

func (f *fakeInventory) UpdateProduct(ctx context.Context, id string, input inventory.ProductUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated[id] = input
	return nil
}

func (f *fakeInventory) SetCustomFields(ctx context.Context, id string, fields []inventory.CustomField) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields[id] = fields
	return f.fieldsErr
}

type fakeCatalog struct {
	products []stripe.Product
	prices   map[string]*stripe.Price
	listErr  error
}

func (c *fakeCatalog) ListAllProducts(ctx context.Context, active *bool) ([]stripe.Product, error) {
	return c.products, c.listErr
}

func (c *fakeCatalog) GetProduct(ctx context.Context, id string) (*stripe.Product, error) {
	for i := range c.products {
		if c.products[i].ID == id {
			return &c.products[i], nil
		}
	}
	return nil, errors.New("no such product")
}

func (c *fakeCatalog) GetPrice(ctx context.Context, id string) (*stripe.Price, error) {
	if price, ok := c.prices[id]; ok {
		return price, nil
	}
	return nil, errors.New("no such price")
}

type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func setupCatalogSyncTest(t *testing.T, inv *fakeInventory, catalog *fakeCatalog, settings CatalogSyncSettings) (*CatalogSyncService, *recordingSleeper, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:catalog_sync_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	svc := NewCatalogSyncService(inv, catalog, repository.NewCatalogSyncRunRepository(db), nil, settings)
	sleeper := &recordingSleeper{}
	svc.sleep = sleeper.sleep
	return svc, sleeper, db
}

func TestGenerateSKU(t *testing.T) {
	now := time.UnixMilli(1767225600123)
	cases := []struct {
		in   string
		want string
	}{
		{"prod_Q1w2E3r4", "prodQ1w2E3r4"},
		{"a_b", "STRab"},
		{"__", "STR"},
		{"prod_0123456789012345678901234567890123456789012345678901234567", "prod0123456789012345678901234567890123456789012345"},
		{"", "STR7225600123"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, GenerateSKU(tc.in, now), tc.in)
	}
	assert.Len(t, GenerateSKU(strings.Repeat("a", 80), now), 50)
}

func TestSyncPacerBackoff(t *testing.T) {
	p := &syncPacer{base: 3 * time.Second, max: 30 * time.Second}
	assert.Equal(t, 3*time.Second, p.betweenProducts())
	assert.Equal(t, 1500*time.Millisecond, p.afterCheck())

	assert.Equal(t, 6*time.Second, p.rateLimited())
	assert.Equal(t, 6*time.Second, p.betweenProducts())
	assert.Equal(t, 12*time.Second, p.rateLimited())
	assert.Equal(t, 24*time.Second, p.rateLimited())
	assert.Equal(t, 30*time.Second, p.rateLimited())
	assert.Equal(t, 30*time.Second, p.betweenProducts())

	p.reset()
	assert.Equal(t, 3*time.Second, p.betweenProducts())

	fast := &syncPacer{base: time.Second, max: 30 * time.Second}
	assert.Equal(t, 5*time.Second, fast.rateLimited(), "rate limit waits never drop below five seconds")
	assert.Equal(t, time.Second, fast.afterCheck())
	assert.Equal(t, 2*time.Second, fast.betweenProducts())
}

func TestSelectBrand(t *testing.T) {
	company := newFakeInventory().company
	assert.Equal(t, "brand-shop", SelectBrand(company, "shop-b"))
	assert.Equal(t, "brand-first", SelectBrand(company, "shop-unknown"))
	assert.Equal(t, "brand-first", SelectBrand(company, ""))
	assert.Equal(t, "", SelectBrand(nil, "shop-b"))
	assert.Equal(t, "", SelectBrand(&inventory.Company{}, "shop-b"))
}

func TestCatalogSyncCreatesAndUpdates(t *testing.T) {
	inv := newFakeInventory()
	inv.existing["prodexisting"] = "inv-old"
	catalog := &fakeCatalog{
		products: []stripe.Product{
			{ID: "prod_new", Name: "Atomium guided walk", Description: "  Two hours  ", DefaultPriceID: "price_new"},
			{ID: "prod_existing", Name: "", DefaultPrice: &stripe.Price{ID: "price_inline", UnitAmount: 1250}},
			{ID: "prod_noprice", Name: "Brussels comic book"},
		},
		prices: map[string]*stripe.Price{"price_new": {ID: "price_new", UnitAmount: 2500}},
	}
	svc, sleeper, db := setupCatalogSyncTest(t, inv, catalog, CatalogSyncSettings{ShopID: "shop-b", BaseDelay: 3 * time.Second})

	result, err := svc.Run(context.Background(), SyncInput{})
	require.NoError(t, err)
	assert.Equal(t, "brand-shop", result.BrandID)
	assert.Equal(t, 3, result.Success)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, SyncSummary{Total: 3, Successful: 3, Failed: 0, SuccessRate: "100.0%"}, result.Summary)

	require.Len(t, inv.created, 2)
	assert.Equal(t, "prodnew", inv.created[0].SKU)
	assert.Equal(t, "basic", inv.created[0].Type)
	assert.Equal(t, "Two hours", inv.created[0].Description)
	assert.Equal(t, "brand-shop", inv.created[0].BrandID)
	require.NotNil(t, inv.created[0].RetailPrice)
	assert.Equal(t, 25.0, *inv.created[0].RetailPrice)
	assert.Nil(t, inv.created[1].RetailPrice)

	update, ok := inv.updated["inv-old"]
	require.True(t, ok)
	assert.Equal(t, "Unnamed Product", update.Name)
	require.NotNil(t, update.RetailPrice)
	assert.Equal(t, 12.5, *update.RetailPrice)

	assert.Equal(t, []inventory.CustomField{
		{Key: "stripe_product_id", Value: "prod_new"},
		{Key: "stripe_price_id", Value: "price_new"},
	}, inv.fields["inv-prodnew"])
	assert.Len(t, inv.fields["inv-prodnoprice"], 1)

	// check delay plus between delay for the first two products, none after the last
	assert.Equal(t, []time.Duration{
		1500 * time.Millisecond, 3 * time.Second,
		1500 * time.Millisecond, 3 * time.Second,
	}, sleeper.waits)

	var run models.CatalogSyncRun
	require.NoError(t, db.First(&run, result.RunID).Error)
	assert.Equal(t, "finished", run.Status)
	assert.Equal(t, 3, run.Total)
	assert.Equal(t, "brand-shop", run.BrandID)
	assert.NotNil(t, run.FinishedAt)
}

func TestCatalogSyncCollectsFailuresAndBacksOff(t *testing.T) {
	inv := newFakeInventory()
	inv.fieldsErr = errors.New("custom fields down")
	limited := &inventory.HTTPError{StatusCode: http.StatusTooManyRequests, Message: "Too Many Requests"}
	inv.lookupErrs = []error{limited}
	inv.createErrs["prodbroken"] = []error{&inventory.HTTPError{StatusCode: http.StatusUnprocessableEntity, Message: "sku invalid"}}
	catalog := &fakeCatalog{
		products: []stripe.Product{
			{ID: "prod_limited", Name: "Chocolate tasting"},
			{ID: "prod_broken", Name: "Beer walk"},
			{ID: "", Name: "Ghost"},
			{ID: "prod_last", Name: "Manneken Pis"},
		},
	}
	svc, sleeper, db := setupCatalogSyncTest(t, inv, catalog, CatalogSyncSettings{BrandID: "brand-env", BaseDelay: 3 * time.Second})
	inv.company = nil

	result, err := svc.Run(context.Background(), SyncInput{})
	require.NoError(t, err)
	assert.Equal(t, "brand-env", result.BrandID)
	assert.Equal(t, 2, result.Success, "custom field failures do not fail the product")
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, "50.0%", result.Summary.SuccessRate)
	assert.Equal(t, []models.SyncError{
		{ProductID: "prod_broken", Error: "HTTP 422: sku invalid"},
		{ProductID: "unknown", Error: "Invalid product object - missing id"},
	}, result.Errors)

	// rate limit wait, check delay, between delay; then steady pacing after the success reset
	require.GreaterOrEqual(t, len(sleeper.waits), 3)
	assert.Equal(t, 6*time.Second, sleeper.waits[0])
	assert.Equal(t, 1500*time.Millisecond, sleeper.waits[1])
	assert.Equal(t, 3*time.Second, sleeper.waits[2])

	var run models.CatalogSyncRun
	require.NoError(t, db.First(&run, result.RunID).Error)
	assert.Equal(t, 2, run.Failed)
	assert.Len(t, run.Errors, 2)
}

func TestCatalogSyncBrandResolution(t *testing.T) {
	inv := newFakeInventory()
	catalog := &fakeCatalog{}
	svc, _, _ := setupCatalogSyncTest(t, inv, catalog, CatalogSyncSettings{ShopID: "shop-b", BrandID: "brand-env"})

	result, err := svc.Run(context.Background(), SyncInput{BrandID: "brand-override"})
	require.NoError(t, err)
	assert.Equal(t, "brand-override", result.BrandID)
	assert.Equal(t, "0%", result.Summary.SuccessRate)

	result, err = svc.Run(context.Background(), SyncInput{})
	require.NoError(t, err)
	assert.Equal(t, "brand-shop", result.BrandID, "the fetched brand wins over the configured fallback")

	inv.company = nil
	inv.companyErr = errors.New("boom")
	svc.settings.BrandID = ""
	_, err = svc.Run(context.Background(), SyncInput{})
	assert.ErrorIs(t, err, ErrSyncBrandMissing)
}

func TestCatalogSyncSelectedAndTestProducts(t *testing.T) {
	inv := newFakeInventory()
	catalog := &fakeCatalog{products: []stripe.Product{
		{ID: "prod_one", Name: "One"},
		{ID: "prod_two", Name: "Two"},
		{ID: "prod_three", Name: "Three"},
	}}
	svc, _, _ := setupCatalogSyncTest(t, inv, catalog, CatalogSyncSettings{TestProductID: "prod_three"})

	result, err := svc.Run(context.Background(), SyncInput{ProductIDs: []string{"prod_two"}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.Total)

	result, err = svc.Run(context.Background(), SyncInput{TestMode: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.Total)
	assert.Equal(t, "prodthree", inv.created[len(inv.created)-1].SKU)

	before := len(inv.created)
	result, err = svc.Run(context.Background(), SyncInput{ProductIDs: []string{"prod_one", "prod_missing", "prod_two"}})
	require.NoError(t, err, "an unknown id does not abort the run")
	assert.Equal(t, SyncSummary{Total: 3, Successful: 2, Failed: 1, SuccessRate: "66.7%"}, result.Summary)
	assert.Equal(t, []models.SyncError{{ProductID: "prod_missing", Error: "no such product"}}, result.Errors)
	require.Len(t, inv.created, before+2)
	assert.Equal(t, "prodone", inv.created[before].SKU)
	assert.Equal(t, "prodtwo", inv.created[before+1].SKU)
}

func TestCatalogSyncRateLimitedListIsDistinct(t *testing.T) {
	inv := newFakeInventory()
	catalog := &fakeCatalog{listErr: fmt.Errorf("list products: %w", stripe.ErrRateLimited)}
	svc, _, db := setupCatalogSyncTest(t, inv, catalog, CatalogSyncSettings{BrandID: "brand-env"})

	_, err := svc.Run(context.Background(), SyncInput{})
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.ErrorIs(t, err, ErrUpstream)

	var run models.CatalogSyncRun
	require.NoError(t, db.Order("id desc").First(&run).Error)
	assert.Equal(t, "failed", run.Status)
}

func TestCatalogSyncEscalatesConsecutiveRateLimits(t *testing.T) {
	inv := newFakeInventory()
	limited := &inventory.HTTPError{StatusCode: http.StatusTooManyRequests, Message: "Too Many Requests"}
	inv.lookupErrs = []error{limited, limited}
	inv.createErrs["prodatomium"] = []error{limited}
	inv.createErrs["prodgrandplace"] = []error{limited}
	catalog := &fakeCatalog{products: []stripe.Product{
		{ID: "prod_atomium", Name: "Atomium"},
		{ID: "prod_grandplace", Name: "Grand Place"},
		{ID: "prod_sablon", Name: "Sablon"},
		{ID: "prod_marolles", Name: "Marolles"},
	}}
	svc, sleeper, _ := setupCatalogSyncTest(t, inv, catalog, CatalogSyncSettings{BrandID: "brand-env", BaseDelay: 3 * time.Second, MaxWait: 30 * time.Second})

	result, err := svc.Run(context.Background(), SyncInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "prod_atomium", result.Errors[0].ProductID)
	assert.Equal(t, "prod_grandplace", result.Errors[1].ProductID)

	assert.Equal(t, []time.Duration{
		// atomium: lookup 429, check, create 429, between
		6 * time.Second, 1500 * time.Millisecond, 12 * time.Second, 12 * time.Second,
		// grand place: lookup 429, check, create 429 at the cap, between at the cap
		24 * time.Second, 1500 * time.Millisecond, 30 * time.Second, 30 * time.Second,
		// sablon succeeds and resets the pacing
		1500 * time.Millisecond, 3 * time.Second,
	}, sleeper.waits)

	require.Len(t, inv.created, 2)
	assert.Equal(t, "prodsablon", inv.created[0].SKU)
	assert.Equal(t, "prodmarolles", inv.created[1].SKU)
}

func TestCatalogSyncStopsOnCancel(t *testing.T) {
	inv := newFakeInventory()
	catalog := &fakeCatalog{products: []stripe.Product{{ID: "prod_one"}, {ID: "prod_two"}}}
	svc, _, db := setupCatalogSyncTest(t, inv, catalog, CatalogSyncSettings{BrandID: "brand-env"})
	ctx, cancel := context.WithCancel(context.Background())
	svc.sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}

	result, err := svc.Run(ctx, SyncInput{})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)

	var run models.CatalogSyncRun
	require.NoError(t, db.First(&run, result.RunID).Error)
	assert.Equal(t, "failed", run.Status)
}

func TestCatalogSyncRequiresInventory(t *testing.T) {
	svc := NewCatalogSyncService(nil, &fakeCatalog{}, nil, nil, CatalogSyncSettings{})
	_, err := svc.Run(context.Background(), SyncInput{})
	assert.ErrorIs(t, err, ErrSyncNotConfigured)
	_, err = svc.Trigger(context.Background(), SyncInput{})
	assert.ErrorIs(t, err, ErrSyncNotConfigured)
}

func TestCatalogSyncTriggerRunsInline(t *testing.T) {
	inv := newFakeInventory()
	svc, _, _ := setupCatalogSyncTest(t, inv, &fakeCatalog{products: []stripe.Product{{ID: "prod_one", Name: "One"}}}, CatalogSyncSettings{})
	trigger, err := svc.Trigger(context.Background(), SyncInput{})
	require.NoError(t, err)
	assert.False(t, trigger.Queued)
	require.NotNil(t, trigger.Result)
	assert.Equal(t, 1, trigger.Result.Success)

	runs, err := svc.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "admin", runs[0].Trigger)
}

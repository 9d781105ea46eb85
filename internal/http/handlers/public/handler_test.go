package public

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/tourshop/internal/cache"
	"github.com/tourshop/internal/models"
	"github.com/tourshop/internal/payment/stripe"
	"github.com/tourshop/internal/provider"
	"github.com/tourshop/internal/repository"
	"github.com/tourshop/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubGateway struct {
	sessionErr error
}

func (g *stubGateway) CreateCheckoutSession(ctx context.Context, input stripe.CheckoutSessionInput) (*stripe.CheckoutSession, error) {
	if g.sessionErr != nil {
		return nil, g.sessionErr
	}
	return &stripe.CheckoutSession{ID: "cs_test_public", URL: "https://checkout.stripe.test/cs_test_public"}, nil
}

func (g *stubGateway) CreateCoupon(ctx context.Context, input stripe.CouponInput) (*stripe.Coupon, error) {
	return &stripe.Coupon{ID: "coupon_public", AmountOff: input.AmountOff}, nil
}

func (g *stubGateway) DeleteCoupon(ctx context.Context, couponID string) error {
	return nil
}

type publicFixture struct {
	db      *gorm.DB
	gateway *stubGateway
	router  *gin.Engine
}

const testWebhookSecret = "whsec_public_test"

func setupPublicHandlerTest(t *testing.T) *publicFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:public_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	models.DB = db

	tourRepo := repository.NewTourRepository(db)
	pendingRepo := repository.NewPendingBookingRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	itemRepo := repository.NewWebshopItemRepository(db)
	orderRepo := repository.NewWebshopOrderRepository(db)
	giftCardSvc := service.NewGiftCardService(repository.NewGiftCardRepository(db), "EUR")
	bookingSvc := service.NewBookingService(pendingRepo, bookingRepo, orderRepo, giftCardSvc, nil, 0)
	gateway := &stubGateway{}
	composer := service.NewPricingComposer(service.PricingSettings{
		PersonalGuideFee: decimal.NewFromInt(125),
		ExtraHourFee:     decimal.NewFromInt(150),
		WeekendFee:       decimal.NewFromInt(25),
		EveningFee:       decimal.NewFromInt(25),
		DomesticShipping: decimal.RequireFromString("7.50"),
		IntlShipping:     decimal.RequireFromString("14.99"),
		FreeShippingFrom: decimal.NewFromInt(150),
	})

	container := &provider.Container{
		StripeClient:    stripe.NewClient(stripe.Config{SecretKey: "sk_test_public", WebhookSecret: testWebhookSecret}),
		TourService:     service.NewTourService(tourRepo),
		GiftCardService: giftCardSvc,
		BookingService:  bookingSvc,
		CheckoutService: service.NewCheckoutService(tourRepo, pendingRepo, itemRepo, orderRepo, bookingSvc, giftCardSvc, composer, gateway, service.CheckoutSettings{SiteOrigin: "https://tours.example.be"}),
		CartService:     service.NewCartService(cache.NewMemoryCartStore(), itemRepo, 0),
		WebshopService:  service.NewWebshopService(itemRepo),
		ContentService:  service.NewContentService(repository.NewContentRepository(db)),
	}
	h := New(container)

	router := gin.New()
	router.GET("/tours/:id", h.GetTour)
	router.POST("/checkout/tour", h.CreateTourCheckout)
	router.POST("/gift-cards/validate", h.ValidateGiftCard)
	router.GET("/cart", h.GetCart)
	router.POST("/stripe/webhook", h.StripeWebhook)
	return &publicFixture{db: db, gateway: gateway, router: router}
}

func (f *publicFixture) seedTour(t *testing.T, price *models.Money) *models.Tour {
	t.Helper()
	tour := &models.Tour{
		Slug:      fmt.Sprintf("grote-markt-%d", time.Now().UnixNano()),
		TitleJSON: models.JSON{"nl": "Grote Markt", "en": "Grand Place"},
		Price:     price,
		IsActive:  true,
	}
	if err := f.db.Create(tour).Error; err != nil {
		t.Fatalf("create tour failed: %v", err)
	}
	return tour
}

func (f *publicFixture) do(t *testing.T, method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	var decoded map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response failed: %v body=%s", err, w.Body.String())
	}
	return w, decoded
}

func checkoutBody(tourID uint) map[string]interface{} {
	return map[string]interface{}{
		"tourId":         tourID,
		"customerName":   "Lotte Peeters",
		"customerEmail":  "lotte@example.be",
		"bookingDate":    "2026-08-14",
		"bookingTime":    "14:00",
		"numberOfPeople": 2,
		"language":       "nl",
	}
}

func TestCreateTourCheckoutStatuses(t *testing.T) {
	f := setupPublicHandlerTest(t)
	price := models.NewMoneyFromMinor(2500)
	priced := f.seedTour(t, &price)
	unpriced := f.seedTour(t, nil)

	w, body := f.do(t, http.MethodPost, "/checkout/tour", checkoutBody(priced.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	data := body["data"].(map[string]interface{})
	if data["sessionId"] != "cs_test_public" || data["amountTotal"] != "50.00" {
		t.Fatalf("unexpected checkout result: %v", data)
	}

	w, body = f.do(t, http.MethodPost, "/checkout/tour", checkoutBody(9999), nil)
	if w.Code != http.StatusNotFound || body["status_code"] != float64(404) {
		t.Fatalf("expected 404 for unknown tour, got %d body=%s", w.Code, w.Body.String())
	}

	w, _ = f.do(t, http.MethodPost, "/checkout/tour", checkoutBody(unpriced.ID), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing price, got %d", w.Code)
	}

	f.gateway.sessionErr = &stripe.APIError{StatusCode: http.StatusInternalServerError, Message: "boom"}
	w, body = f.do(t, http.MethodPost, "/checkout/tour", checkoutBody(priced.ID), nil)
	if w.Code != http.StatusBadGateway || body["status_code"] != float64(502) {
		t.Fatalf("expected 502 for processor failure, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestCreateTourCheckoutRejectsMalformedBody(t *testing.T) {
	f := setupPublicHandlerTest(t)
	w, _ := f.do(t, http.MethodPost, "/checkout/tour", []byte(`{"tourId":"abc"`), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCheckoutAndGiftCardStoreFailuresAre502(t *testing.T) {
	f := setupPublicHandlerTest(t)
	price := models.NewMoneyFromMinor(2500)
	tour := f.seedTour(t, &price)
	if err := f.db.Migrator().DropTable(&models.Tour{}, &models.GiftCard{}); err != nil {
		t.Fatalf("drop tables failed: %v", err)
	}

	w, body := f.do(t, http.MethodPost, "/checkout/tour", checkoutBody(tour.ID), nil)
	if w.Code != http.StatusBadGateway || body["status_code"] != float64(502) {
		t.Fatalf("expected 502 when the tour lookup fails, got %d body=%s", w.Code, w.Body.String())
	}

	w, _ = f.do(t, http.MethodPost, "/gift-cards/validate", map[string]interface{}{"code": "ABCD-EFGH-JKLM-NPQR"}, nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 when the gift card lookup fails, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestGetTourBySlugAndID(t *testing.T) {
	f := setupPublicHandlerTest(t)
	price := models.NewMoneyFromMinor(1800)
	tour := f.seedTour(t, &price)

	for _, key := range []string{tour.Slug, strconv.FormatUint(uint64(tour.ID), 10)} {
		w, body := f.do(t, http.MethodGet, "/tours/"+key, nil, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("GET /tours/%s = %d", key, w.Code)
		}
		data := body["data"].(map[string]interface{})
		if data["slug"] != tour.Slug {
			t.Fatalf("unexpected tour: %v", data)
		}
	}
	w, _ := f.do(t, http.MethodGet, "/tours/onbekend", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestValidateGiftCardStatuses(t *testing.T) {
	f := setupPublicHandlerTest(t)
	active := &models.GiftCard{
		Code:           "ABCD-EFGH-JKLM-NPQR",
		CodeKey:        "ABCDEFGHJKLMNPQR",
		InitialAmount:  models.NewMoneyFromMinor(5000),
		CurrentBalance: models.NewMoneyFromMinor(5000),
		Currency:       "EUR",
		Status:         "active",
		PurchasedAt:    time.Now(),
	}
	redeemed := &models.GiftCard{
		Code:           "ZZZZ-YYYY-XXXX-WWWW",
		CodeKey:        "ZZZZYYYYXXXXWWWW",
		InitialAmount:  models.NewMoneyFromMinor(5000),
		CurrentBalance: models.NewMoneyFromMinor(0),
		Currency:       "EUR",
		Status:         "redeemed",
		PurchasedAt:    time.Now(),
	}
	if err := f.db.Create(active).Error; err != nil {
		t.Fatalf("create gift card failed: %v", err)
	}
	if err := f.db.Create(redeemed).Error; err != nil {
		t.Fatalf("create gift card failed: %v", err)
	}

	w, body := f.do(t, http.MethodPost, "/gift-cards/validate", map[string]interface{}{"code": "abcd efgh jklm npqr", "orderTotal": "30"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	if applicable := body["data"].(map[string]interface{})["applicable_amount"]; applicable != "30.00" {
		t.Fatalf("applicable_amount = %v", applicable)
	}

	w, _ = f.do(t, http.MethodPost, "/gift-cards/validate", map[string]interface{}{"code": "NOPE-NOPE-NOPE-NOPE"}, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w, body = f.do(t, http.MethodPost, "/gift-cards/validate", map[string]interface{}{"code": redeemed.Code}, map[string]string{"Accept-Language": "en"})
	if w.Code != http.StatusBadRequest || body["msg"] != "Gift card is redeemed" {
		t.Fatalf("expected 400 'Gift card is redeemed', got %d %v", w.Code, body["msg"])
	}
}

func TestGetCartRequiresSession(t *testing.T) {
	f := setupPublicHandlerTest(t)
	w, _ := f.do(t, http.MethodGet, "/cart", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without header, got %d", w.Code)
	}
	w, _ = f.do(t, http.MethodGet, "/cart", nil, map[string]string{cartSessionHeader: "unknown-session"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", w.Code)
	}
}

func TestStripeWebhookSignature(t *testing.T) {
	f := setupPublicHandlerTest(t)
	payload := []byte(`{"id":"evt_1","type":"customer.created","data":{"object":{"object":"customer","id":"cus_1"}}}`)

	w, _ := f.do(t, http.MethodPost, "/stripe/webhook", payload, map[string]string{"Stripe-Signature": "t=1,v1=deadbeef"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad signature, got %d", w.Code)
	}

	ts := time.Now().Unix()
	sig := fmt.Sprintf("t=%d,v1=%s", ts, stripe.ComputeSignature(testWebhookSecret, ts, payload))
	w, body := f.do(t, http.MethodPost, "/stripe/webhook", payload, map[string]string{"Stripe-Signature": sig})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	if ignored := body["data"].(map[string]interface{})["ignored"]; ignored != true {
		t.Fatalf("expected ignored event, got %v", body["data"])
	}
}

func TestRespondGiftCardErrorFallsBackToInternal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	respondGiftCardError(c, errors.New("database is locked"))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

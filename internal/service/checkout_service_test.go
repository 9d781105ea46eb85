package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/tourshop/internal/constants"
	"github.com/tourshop/internal/models"
	"github.com/tourshop/internal/payment/stripe"
	"github.com/tourshop/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGateway struct {
	mu         sync.Mutex
	sessions   []stripe.CheckoutSessionInput
	coupons    []stripe.CouponInput
	sessionErr error
	couponErr  error
	deleted    []string
	sessionID  string
	onSession  func(input stripe.CheckoutSessionInput)
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, input stripe.CheckoutSessionInput) (*stripe.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions = append(g.sessions, input)
	if g.onSession != nil {
		g.onSession(input)
	}
	if g.sessionErr != nil {
		return nil, g.sessionErr
	}
	id := g.sessionID
	if id == "" {
		id = fmt.Sprintf("cs_test_%d", len(g.sessions))
	}
	return &stripe.CheckoutSession{ID: id, URL: "https://checkout.stripe.test/" + id}, nil
}

func (g *fakeGateway) CreateCoupon(ctx context.Context, input stripe.CouponInput) (*stripe.Coupon, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.coupons = append(g.coupons, input)
	if g.couponErr != nil {
		return nil, g.couponErr
	}
	return &stripe.Coupon{ID: fmt.Sprintf("coupon_%d", len(g.coupons)), AmountOff: input.AmountOff}, nil
}

func (g *fakeGateway) DeleteCoupon(ctx context.Context, couponID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleted = append(g.deleted, couponID)
	return nil
}

type checkoutFixture struct {
	db       *gorm.DB
	gateway  *fakeGateway
	checkout *CheckoutService
	bookings *BookingService
	giftCard *GiftCardService
}

func setupCheckoutTest(t *testing.T) *checkoutFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:checkout_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	models.DB = db

	giftCardSvc := NewGiftCardService(repository.NewGiftCardRepository(db), "EUR")
	bookingSvc := NewBookingService(
		repository.NewPendingBookingRepository(db),
		repository.NewBookingRepository(db),
		repository.NewWebshopOrderRepository(db),
		giftCardSvc,
		nil,
		0,
	)
	gateway := &fakeGateway{}
	checkoutSvc := NewCheckoutService(
		repository.NewTourRepository(db),
		repository.NewPendingBookingRepository(db),
		repository.NewWebshopItemRepository(db),
		repository.NewWebshopOrderRepository(db),
		bookingSvc,
		giftCardSvc,
		NewPricingComposer(testPricingSettings()),
		gateway,
		CheckoutSettings{SiteOrigin: "https://tours.example.be/"},
	)
	return &checkoutFixture{db: db, gateway: gateway, checkout: checkoutSvc, bookings: bookingSvc, giftCard: giftCardSvc}
}

func (f *checkoutFixture) seedTour(t *testing.T, price string, opts ...func(*models.Tour)) *models.Tour {
	t.Helper()
	tour := testTour(price, opts...)
	tour.ID = 0
	tour.Slug = fmt.Sprintf("tour-%d", time.Now().UnixNano())
	tour.IsActive = true
	require.NoError(t, f.db.Create(tour).Error)
	return tour
}

func (f *checkoutFixture) pending(t *testing.T, id string) *models.PendingBooking {
	t.Helper()
	pending, err := repository.NewPendingBookingRepository(f.db).GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, pending)
	return pending
}

func baseTourInput(tourID uint) TourCheckoutInput {
	return TourCheckoutInput{
		TourID:         tourID,
		CustomerName:   "Sofie Janssens",
		CustomerEmail:  "Sofie@Example.be",
		Datetime:       DatetimeInput{Date: "2026-07-08", Time: "10:00"},
		NumberOfPeople: 3,
		Language:       "nl",
		Locale:         "nl",
	}
}

func TestCreateTourCheckoutWritesPendingBeforeSession(t *testing.T) {
	f := setupCheckoutTest(t)
	tour := f.seedTour(t, "25")

	var seenDuringSession *models.PendingBooking
	f.gateway.onSession = func(input stripe.CheckoutSessionInput) {
		pending, err := repository.NewPendingBookingRepository(f.db).GetByID(input.ClientReferenceID)
		if err == nil {
			seenDuringSession = pending
		}
	}

	result, err := f.checkout.CreateTourCheckout(context.Background(), baseTourInput(tour.ID))
	require.NoError(t, err)
	require.NotNil(t, seenDuringSession, "pending row must exist before the session is created")
	assert.Nil(t, seenDuringSession.SessionID)

	require.Len(t, f.gateway.sessions, 1)
	input := f.gateway.sessions[0]
	assert.Equal(t, result.PendingID, input.ClientReferenceID)
	assert.Equal(t, result.PendingID, input.Metadata["pendingBookingId"])
	assert.Equal(t, "https://tours.example.be/nl/booking/success?session_id={CHECKOUT_SESSION_ID}", input.SuccessURL)
	assert.Equal(t, "https://tours.example.be/nl/booking/cancelled", input.CancelURL)
	assert.Equal(t, "2026-07-08", input.Metadata["bookingDate"])
	assert.Equal(t, "10:00", input.Metadata["bookingTime"])
	assert.Equal(t, "3", input.Metadata["numberOfPeople"])
	assert.Equal(t, "sofie@example.be", input.CustomerEmail)
	assert.True(t, input.AllowPromotionCodes)
	require.Len(t, input.LineItems, 1)
	assert.Equal(t, int64(7500), input.LineItems[0].UnitAmount)

	pending := f.pending(t, result.PendingID)
	require.NotNil(t, pending.SessionID)
	assert.Equal(t, result.SessionID, *pending.SessionID)
	assert.Equal(t, constants.PendingStatusPending, pending.Status)
	assert.Equal(t, "75.00", pending.AmountTotal.String())
	require.NotNil(t, pending.Payload.TourDatetime)
	assert.Equal(t, "2026-07-08T10:00:00", *pending.Payload.TourDatetime)
	assert.Equal(t, "2026-07-08T12:00:00", *pending.Payload.TourEndDatetime)
}

func TestCreateTourCheckoutErrorClasses(t *testing.T) {
	f := setupCheckoutTest(t)
	ctx := context.Background()

	_, err := f.checkout.CreateTourCheckout(ctx, baseTourInput(424242))
	assert.ErrorIs(t, err, ErrNotFound)

	unpriced := f.seedTour(t, "25")
	require.NoError(t, f.db.Model(&models.Tour{}).Where("id = ?", unpriced.ID).Update("price", nil).Error)
	_, err = f.checkout.CreateTourCheckout(ctx, baseTourInput(unpriced.ID))
	assert.ErrorIs(t, err, ErrInvalidState)

	tour := f.seedTour(t, "25")
	undated := baseTourInput(tour.ID)
	undated.Datetime = DatetimeInput{}
	_, err = f.checkout.CreateTourCheckout(ctx, undated)
	assert.ErrorIs(t, err, ErrBookingDateRequired)

	f.gateway.sessionErr = errors.New("stripe down")
	_, err = f.checkout.CreateTourCheckout(ctx, baseTourInput(tour.ID))
	assert.ErrorIs(t, err, ErrUpstream)
	assert.False(t, errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidState))

	// the orphan stays pending without a session until cleanup expires it
	require.Len(t, f.gateway.sessions, 1)
	orphan := f.pending(t, f.gateway.sessions[0].ClientReferenceID)
	assert.Nil(t, orphan.SessionID)
	assert.Equal(t, constants.PendingStatusPending, orphan.Status)
}

func TestCreateTourCheckoutAttachFailureIsUpstream(t *testing.T) {
	f := setupCheckoutTest(t)
	tour := f.seedTour(t, "25")
	f.gateway.sessionID = "cs_test_same"

	_, err := f.checkout.CreateTourCheckout(context.Background(), baseTourInput(tour.ID))
	require.NoError(t, err)

	_, err = f.checkout.CreateTourCheckout(context.Background(), baseTourInput(tour.ID))
	assert.ErrorIs(t, err, ErrCheckoutInconsistent)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.NotErrorIs(t, err, ErrCheckoutPersistFailed)
}

func TestCreateTourCheckoutStoreFailureIsUpstream(t *testing.T) {
	f := setupCheckoutTest(t)
	tour := f.seedTour(t, "25")
	require.NoError(t, f.db.Migrator().DropTable(&models.Tour{}))

	_, err := f.checkout.CreateTourCheckout(context.Background(), baseTourInput(tour.ID))
	assert.ErrorIs(t, err, ErrUpstream)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.gateway.sessions)
}

func TestCreateTourCheckoutReleasesCouponWhenPendingWriteFails(t *testing.T) {
	f := setupCheckoutTest(t)
	tour := f.seedTour(t, "25")
	card, err := f.giftCard.Create(context.Background(), CreateGiftCardInput{Amount: models.NewMoneyFromMinor(2000)})
	require.NoError(t, err)
	require.NoError(t, f.db.Migrator().DropTable(&models.PendingBooking{}))

	input := baseTourInput(tour.ID)
	input.GiftCardCode = card.Code
	_, err = f.checkout.CreateTourCheckout(context.Background(), input)
	assert.ErrorIs(t, err, ErrCheckoutPersistFailed)
	require.Len(t, f.gateway.coupons, 1)
	assert.Equal(t, []string{"coupon_1"}, f.gateway.deleted)
	assert.Empty(t, f.gateway.sessions)
}

func TestCreateTourCheckoutRateLimitedSession(t *testing.T) {
	f := setupCheckoutTest(t)
	tour := f.seedTour(t, "25")
	f.gateway.sessionErr = fmt.Errorf("create session: %w", stripe.ErrRateLimited)

	_, err := f.checkout.CreateTourCheckout(context.Background(), baseTourInput(tour.ID))
	assert.ErrorIs(t, err, ErrCheckoutFailed)
	assert.ErrorIs(t, err, ErrRateLimited)

	f.gateway.sessionErr = errors.New("stripe down")
	_, err = f.checkout.CreateTourCheckout(context.Background(), baseTourInput(tour.ID))
	assert.ErrorIs(t, err, ErrCheckoutFailed)
	assert.NotErrorIs(t, err, ErrRateLimited)
}

func TestCreateTourCheckoutGiftCardCoupon(t *testing.T) {
	f := setupCheckoutTest(t)
	tour := f.seedTour(t, "25")
	card, err := f.giftCard.Create(context.Background(), CreateGiftCardInput{Amount: models.NewMoneyFromMinor(3000)})
	require.NoError(t, err)

	input := baseTourInput(tour.ID)
	input.GiftCardCode = card.Code
	input.GiftCardDiscount = models.NewMoneyFromMinor(5000)
	result, err := f.checkout.CreateTourCheckout(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, f.gateway.coupons, 1)
	assert.Equal(t, int64(3000), f.gateway.coupons[0].AmountOff, "discount is capped at the card balance")
	assert.Equal(t, "once", f.gateway.coupons[0].Duration)
	session := f.gateway.sessions[0]
	assert.Equal(t, "coupon_1", session.CouponID)
	assert.False(t, session.AllowPromotionCodes)
	assert.Equal(t, "30.00", session.Metadata["giftCardDiscount"])
	assert.Equal(t, "45.00", result.AmountTotal.String())

	pending := f.pending(t, result.PendingID)
	assert.Equal(t, "coupon_1", pending.Payload.CouponID)
	require.NotNil(t, pending.Payload.GiftCardAmount)
	assert.Equal(t, "30.00", pending.Payload.GiftCardAmount.String())
}

func TestCreateTourCheckoutCouponFailureScalesLines(t *testing.T) {
	f := setupCheckoutTest(t)
	tour := f.seedTour(t, "33.33")
	card, err := f.giftCard.Create(context.Background(), CreateGiftCardInput{Amount: models.NewMoneyFromMinor(1001)})
	require.NoError(t, err)
	f.gateway.couponErr = errors.New("coupon rejected")

	input := baseTourInput(tour.ID)
	input.PersonalGuide = true
	input.Upsells = []UpsellItem{{Name: "Chocolade", UnitPrice: models.NewMoneyFromMinor(1250), Quantity: 3}}
	input.GiftCardCode = card.Code
	result, err := f.checkout.CreateTourCheckout(context.Background(), input)
	require.NoError(t, err)

	session := f.gateway.sessions[0]
	assert.Empty(t, session.CouponID)
	assert.False(t, session.AllowPromotionCodes)
	sum := int64(0)
	for _, line := range session.LineItems {
		sum += line.UnitAmount * line.Quantity
	}
	assert.Equal(t, result.AmountTotal.MinorUnits(), sum)
	assert.Equal(t, int64(9999+12500+3750-1001), sum)
}

func TestCreateWebshopCheckoutShippingAndOrder(t *testing.T) {
	f := setupCheckoutTest(t)
	book := &models.WebshopItem{UUID: "b0000000-0000-0000-0000-000000000001", Name: "Brussel in 100 verhalen", Category: constants.WebshopCategoryBook, Price: models.NewMoneyFromMinor(2495), StripePriceID: "price_book", IsActive: true}
	game := &models.WebshopItem{UUID: "b0000000-0000-0000-0000-000000000002", Name: "Brussels kwartet", Category: constants.WebshopCategoryGame, Price: models.NewMoneyFromMinor(1500), IsActive: true}
	require.NoError(t, f.db.Create(book).Error)
	require.NoError(t, f.db.Create(game).Error)

	result, err := f.checkout.CreateWebshopCheckout(context.Background(), WebshopCheckoutInput{
		Lines: []WebshopCheckoutLine{
			{ItemUUID: book.UUID, Quantity: 1},
			{ItemUUID: game.UUID, Quantity: 1},
			{ItemUUID: book.UUID, Quantity: 1},
		},
		CustomerEmail:   "koper@example.be",
		ShippingAddress: &models.Address{Line1: "Grote Markt 1", PostalCode: "1000", City: "Brussel", Country: "België"},
		Locale:          "fr",
	})
	require.NoError(t, err)

	session := f.gateway.sessions[0]
	require.Len(t, session.LineItems, 3)
	assert.Equal(t, "price_book", session.LineItems[0].PriceID)
	assert.Equal(t, int64(2), session.LineItems[0].Quantity)
	assert.Equal(t, "Verzendkosten (België)", session.LineItems[2].Name)
	assert.Equal(t, int64(750), session.LineItems[2].UnitAmount)
	assert.Equal(t, constants.OrderTypeWebshop, session.Metadata["order_type"])
	assert.Equal(t, result.PendingID, session.Metadata["orderId"])
	assert.Equal(t, "https://tours.example.be/fr/order/success?session_id={CHECKOUT_SESSION_ID}", session.SuccessURL)
	assert.Equal(t, []string{"BE", "NL", "FR", "DE", "LU"}, session.ShippingCountries)
	assert.Equal(t, "72.40", result.AmountTotal.String())

	order, err := repository.NewWebshopOrderRepository(f.db).GetByID(result.PendingID)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, result.SessionID, *order.SessionID)
	assert.Equal(t, "64.90", order.Subtotal.String())
	assert.Equal(t, "7.50", order.Shipping.String())
	require.Len(t, order.Items, 2)

	_, err = f.checkout.CreateWebshopCheckout(context.Background(), WebshopCheckoutInput{
		Lines:           []WebshopCheckoutLine{{ItemUUID: book.UUID, Quantity: 1}},
		CustomerEmail:   "koper@example.be",
		ShippingAddress: &models.Address{Country: "US"},
	})
	assert.ErrorIs(t, err, ErrShippingCountry)

	_, err = f.checkout.CreateWebshopCheckout(context.Background(), WebshopCheckoutInput{
		Lines:         []WebshopCheckoutLine{{ItemUUID: "missing", Quantity: 1}},
		CustomerEmail: "koper@example.be",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateWebshopCheckoutClampsLineQuantity(t *testing.T) {
	f := setupCheckoutTest(t)
	book := &models.WebshopItem{UUID: "b0000000-0000-0000-0000-000000000003", Name: "Brussel in 100 verhalen", Category: constants.WebshopCategoryBook, Price: models.NewMoneyFromMinor(2495), StripePriceID: "price_book", IsActive: true}
	require.NoError(t, f.db.Create(book).Error)

	_, err := f.checkout.CreateWebshopCheckout(context.Background(), WebshopCheckoutInput{
		Lines: []WebshopCheckoutLine{
			{ItemUUID: book.UUID, Quantity: math.MaxInt},
			{ItemUUID: book.UUID, Quantity: math.MaxInt},
		},
		CustomerEmail: "koper@example.be",
	})
	require.NoError(t, err)

	session := f.gateway.sessions[0]
	require.NotEmpty(t, session.LineItems)
	assert.Equal(t, int64(maxCartLineQuantity), session.LineItems[0].Quantity)
}

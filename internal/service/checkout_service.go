package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tourshop/internal/constants"
	"github.com/tourshop/internal/logger"
	"github.com/tourshop/internal/metrics"
	"github.com/tourshop/internal/models"
	"github.com/tourshop/internal/payment/stripe"
	"github.com/tourshop/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	checkoutStageCoupon  = "coupon"
	checkoutStagePersist = "persist"
	checkoutStageSession = "session"
	checkoutStageAttach  = "attach"

	stripeMetadataValueLimit = 500
)

var stripeLocales = map[string]struct{}{"nl": {}, "en": {}, "fr": {}, "de": {}}

// PaymentGateway hosted checkout operations used by the storefront.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, input stripe.CheckoutSessionInput) (*stripe.CheckoutSession, error)
	CreateCoupon(ctx context.Context, input stripe.CouponInput) (*stripe.Coupon, error)
	DeleteCoupon(ctx context.Context, couponID string) error
}

// CheckoutSettings redirect and shipping settings.
type CheckoutSettings struct {
	SiteOrigin        string
	DefaultLocale     string
	ShippingCountries []string
}

// CheckoutService prices requests, writes the pending record and opens a
// hosted checkout session.
type CheckoutService struct {
	tourRepo    repository.TourRepository
	pendingRepo repository.PendingBookingRepository
	itemRepo    repository.WebshopItemRepository
	orderRepo   repository.WebshopOrderRepository
	bookingSvc  *BookingService
	giftCardSvc *GiftCardService
	composer    *PricingComposer
	gateway     PaymentGateway
	settings    CheckoutSettings
	newID       func() string
}

// TourCheckoutInput a storefront booking request after boundary normalization.
type TourCheckoutInput struct {
	TourID           uint
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	Datetime         DatetimeInput
	NumberOfPeople   int
	Language         string
	SpecialRequests  string
	UserID           string
	Locale           string
	Origin           string
	PersonalGuide    bool
	ExtraHour        bool
	Answers          map[string]interface{}
	Weekend          *bool
	Evening          *bool
	DurationMinutes  *int
	Upsells          []UpsellItem
	GiftCardCode     string
	GiftCardDiscount models.Money
	ShippingAddress  *models.Address
}

// WebshopCheckoutLine one requested item.
type WebshopCheckoutLine struct {
	ItemUUID string
	Quantity int
}

// WebshopCheckoutInput a webshop order request.
type WebshopCheckoutInput struct {
	Lines            []WebshopCheckoutLine
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	UserID           string
	ShippingAddress  *models.Address
	Locale           string
	Origin           string
	GiftCardCode     string
	GiftCardDiscount models.Money
}

// CheckoutResult the session the customer is redirected to.
type CheckoutResult struct {
	SessionID   string       `json:"sessionId"`
	URL         string       `json:"url"`
	PendingID   string       `json:"pendingId"`
	AmountTotal models.Money `json:"amountTotal"`
	CouponID    string       `json:"couponId,omitempty"`
}

// NewCheckoutService creates the service.
func NewCheckoutService(
	tourRepo repository.TourRepository,
	pendingRepo repository.PendingBookingRepository,
	itemRepo repository.WebshopItemRepository,
	orderRepo repository.WebshopOrderRepository,
	bookingSvc *BookingService,
	giftCardSvc *GiftCardService,
	composer *PricingComposer,
	gateway PaymentGateway,
	settings CheckoutSettings,
) *CheckoutService {
	settings.SiteOrigin = strings.TrimRight(strings.TrimSpace(settings.SiteOrigin), "/")
	if settings.DefaultLocale == "" {
		settings.DefaultLocale = "nl"
	}
	if len(settings.ShippingCountries) == 0 {
		settings.ShippingCountries = []string{"BE", "NL", "FR", "DE", "LU"}
	}
	return &CheckoutService{
		tourRepo:    tourRepo,
		pendingRepo: pendingRepo,
		itemRepo:    itemRepo,
		orderRepo:   orderRepo,
		bookingSvc:  bookingSvc,
		giftCardSvc: giftCardSvc,
		composer:    composer,
		gateway:     gateway,
		settings:    settings,
		newID:       uuid.NewString,
	}
}

// CreateTourCheckout prices a booking and opens a checkout session. The
// pending record is written before the session and linked to it afterwards.
func (s *CheckoutService) CreateTourCheckout(ctx context.Context, input TourCheckoutInput) (*CheckoutResult, error) {
	if strings.TrimSpace(input.CustomerEmail) == "" {
		return nil, fmt.Errorf("%w: customer email is required", ErrBookingInvalid)
	}
	tour, err := s.tourRepo.GetByID(input.TourID)
	if err != nil {
		return nil, storeFailure(err)
	}
	if tour == nil {
		return nil, ErrTourNotFound
	}
	if !tour.IsActive {
		return nil, ErrTourInactive
	}

	pricing := TourPricingInput{
		People:          input.NumberOfPeople,
		Datetime:        input.Datetime,
		DurationMinutes: input.DurationMinutes,
		ExtraHour:       input.ExtraHour,
		Answers:         input.Answers,
		PersonalGuide:   input.PersonalGuide,
		Weekend:         input.Weekend,
		Evening:         input.Evening,
		Upsells:         input.Upsells,
	}
	quote, err := s.composer.ComposeTour(tour, pricing)
	if err != nil {
		return nil, err
	}
	if code := strings.TrimSpace(input.GiftCardCode); code != "" {
		discount, err := s.confirmGiftCard(ctx, code, input.GiftCardDiscount, quote.SubtotalMinor)
		if err != nil {
			return nil, err
		}
		pricing.GiftCardCode = code
		pricing.GiftCardDiscount = discount
		if quote, err = s.composer.ComposeTour(tour, pricing); err != nil {
			return nil, err
		}
	}

	pendingID := s.newID()
	lineItems, couponID := s.applyGiftCard(ctx, constants.OrderTypeTour, pendingID, quote.LineItems, quote.GiftCardCode, quote.GiftCardDiscountMinor)

	pending := s.bookingSvc.BuildPendingBooking(pendingID, tour, input, quote)
	pending.Payload.CouponID = couponID
	if err := s.pendingRepo.Create(pending); err != nil {
		metrics.CheckoutFailures.WithLabelValues(constants.OrderTypeTour, checkoutStagePersist).Inc()
		logger.Errorw("pending_booking_create_failed", "pending_booking_id", pendingID, "error", err)
		s.releaseCoupon(ctx, constants.OrderTypeTour, pendingID, couponID)
		return nil, fmt.Errorf("%w: %v", ErrCheckoutPersistFailed, err)
	}

	locale := s.locale(input.Locale)
	origin := s.origin(input.Origin)
	metadata := tourMetadata(tour, input, quote, pendingID, couponID)
	sessionInput := stripe.CheckoutSessionInput{
		LineItems:           toStripeLineItems(lineItems),
		SuccessURL:          fmt.Sprintf("%s/%s/booking/success?session_id={CHECKOUT_SESSION_ID}", origin, locale),
		CancelURL:           fmt.Sprintf("%s/%s/booking/cancelled", origin, locale),
		CustomerEmail:       normalizeEmail(input.CustomerEmail),
		ClientReferenceID:   pendingID,
		Locale:              stripeLocale(locale),
		CouponID:            couponID,
		AllowPromotionCodes: quote.GiftCardDiscountMinor == 0,
		Metadata:            metadata,
	}
	if len(quote.Upsells) > 0 && input.ShippingAddress == nil {
		sessionInput.ShippingCountries = s.settings.ShippingCountries
	}
	return s.openSession(ctx, constants.OrderTypeTour, pendingID, models.NewMoneyFromMinor(quote.TotalMinor), couponID, sessionInput, s.pendingRepo.AttachSession)
}

// CreateWebshopCheckout prices webshop lines with shipping and opens a
// checkout session behind a pending webshop order.
func (s *CheckoutService) CreateWebshopCheckout(ctx context.Context, input WebshopCheckoutInput) (*CheckoutResult, error) {
	if strings.TrimSpace(input.CustomerEmail) == "" {
		return nil, fmt.Errorf("%w: customer email is required", ErrBookingInvalid)
	}
	country := ""
	if input.ShippingAddress != nil {
		country = input.ShippingAddress.Country
		if !s.shippingAllowed(country) {
			return nil, ErrShippingCountry
		}
	}

	lines, err := s.resolveWebshopLines(input.Lines)
	if err != nil {
		return nil, err
	}
	quote, err := s.composer.ComposeWebshop(lines, country, "", models.Money{})
	if err != nil {
		return nil, err
	}
	if code := strings.TrimSpace(input.GiftCardCode); code != "" {
		discount, err := s.confirmGiftCard(ctx, code, input.GiftCardDiscount, quote.TotalMinor)
		if err != nil {
			return nil, err
		}
		if quote, err = s.composer.ComposeWebshop(lines, country, code, discount); err != nil {
			return nil, err
		}
	}

	orderID := s.newID()
	lineItems, couponID := s.applyGiftCard(ctx, constants.OrderTypeWebshop, orderID, quote.LineItems, quote.GiftCardCode, quote.GiftCardDiscountMinor)

	order := &models.WebshopOrder{
		ID:              orderID,
		Status:          constants.PendingStatusPending,
		CustomerName:    strings.TrimSpace(input.CustomerName),
		CustomerEmail:   normalizeEmail(input.CustomerEmail),
		Items:           models.OrderLineList(quote.Lines),
		ShippingAddress: input.ShippingAddress,
		Subtotal:        quote.Subtotal,
		Shipping:        quote.Shipping,
		Discount:        models.NewMoneyFromMinor(quote.GiftCardDiscountMinor),
		Total:           models.NewMoneyFromMinor(quote.TotalMinor),
		GiftCardCode:    quote.GiftCardCode,
		ExpiresAt:       time.Now().Add(s.bookingSvc.PendingTTL()),
	}
	if err := s.orderRepo.Create(order); err != nil {
		metrics.CheckoutFailures.WithLabelValues(constants.OrderTypeWebshop, checkoutStagePersist).Inc()
		logger.Errorw("webshop_order_create_failed", "order_id", orderID, "error", err)
		s.releaseCoupon(ctx, constants.OrderTypeWebshop, orderID, couponID)
		return nil, fmt.Errorf("%w: %v", ErrCheckoutPersistFailed, err)
	}

	locale := s.locale(input.Locale)
	origin := s.origin(input.Origin)
	metadata := map[string]string{
		"order_type":    constants.OrderTypeWebshop,
		"orderId":       orderID,
		"customerName":  strings.TrimSpace(input.CustomerName),
		"customerEmail": normalizeEmail(input.CustomerEmail),
		"customerPhone": strings.TrimSpace(input.CustomerPhone),
		"userId":        strings.TrimSpace(input.UserID),
	}
	if quote.GiftCardDiscountMinor > 0 {
		metadata["giftCardCode"] = quote.GiftCardCode
		metadata["giftCardDiscount"] = models.NewMoneyFromMinor(quote.GiftCardDiscountMinor).String()
		metadata["couponId"] = couponID
	}
	sessionInput := stripe.CheckoutSessionInput{
		LineItems:           toStripeLineItems(lineItems),
		SuccessURL:          fmt.Sprintf("%s/%s/order/success?session_id={CHECKOUT_SESSION_ID}", origin, locale),
		CancelURL:           fmt.Sprintf("%s/%s/order/cancelled", origin, locale),
		CustomerEmail:       normalizeEmail(input.CustomerEmail),
		ClientReferenceID:   orderID,
		Locale:              stripeLocale(locale),
		CouponID:            couponID,
		AllowPromotionCodes: quote.GiftCardDiscountMinor == 0,
		ShippingCountries:   s.settings.ShippingCountries,
		Metadata:            metadata,
	}
	return s.openSession(ctx, constants.OrderTypeWebshop, orderID, models.NewMoneyFromMinor(quote.TotalMinor), couponID, sessionInput, s.orderRepo.AttachSession)
}

// openSession creates the session and links it to the already written record.
func (s *CheckoutService) openSession(ctx context.Context, orderType, recordID string, total models.Money, couponID string, input stripe.CheckoutSessionInput, attach func(id, sessionID string) error) (*CheckoutResult, error) {
	session, err := s.gateway.CreateCheckoutSession(ctx, input)
	if err != nil {
		metrics.CheckoutFailures.WithLabelValues(orderType, checkoutStageSession).Inc()
		logger.Errorw("checkout_session_create_failed", "order_type", orderType, "record_id", recordID, "error", err)
		if errors.Is(err, stripe.ErrRateLimited) {
			return nil, fmt.Errorf("%w: %w: %v", ErrCheckoutFailed, ErrRateLimited, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}
	if err := attach(recordID, session.ID); err != nil {
		metrics.CheckoutFailures.WithLabelValues(orderType, checkoutStageAttach).Inc()
		logger.Errorw("checkout_session_attach_failed",
			"order_type", orderType,
			"record_id", recordID,
			"session_id", session.ID,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", ErrCheckoutInconsistent, err)
	}
	metrics.CheckoutSessionsCreated.WithLabelValues(orderType).Inc()
	logger.Infow("checkout_session_created",
		"order_type", orderType,
		"record_id", recordID,
		"session_id", session.ID,
		"amount_total", total.String(),
	)
	return &CheckoutResult{
		SessionID:   session.ID,
		URL:         session.URL,
		PendingID:   recordID,
		AmountTotal: total,
		CouponID:    couponID,
	}, nil
}

// confirmGiftCard re-validates the code against the order total and caps the
// client-supplied discount at what the card can cover.
func (s *CheckoutService) confirmGiftCard(ctx context.Context, code string, requested models.Money, totalMinor int64) (models.Money, error) {
	if s.giftCardSvc == nil {
		return models.Money{}, ErrGiftCardNotFound
	}
	validation, err := s.giftCardSvc.Validate(ctx, code, models.NewMoneyFromMinor(totalMinor))
	if err != nil {
		return models.Money{}, err
	}
	applicable := validation.ApplicableAmount
	if requested.IsPositive() && requested.LessThan(applicable.Decimal) {
		return requested, nil
	}
	return applicable, nil
}

// applyGiftCard creates a one-time coupon for the discount. When that fails
// the lines themselves are scaled down so the total still matches.
func (s *CheckoutService) applyGiftCard(ctx context.Context, orderType, recordID string, items []LineItem, code string, discountMinor int64) ([]LineItem, string) {
	if discountMinor <= 0 {
		return items, ""
	}
	coupon, err := s.gateway.CreateCoupon(ctx, stripe.CouponInput{
		Name:      "Cadeaubon " + code,
		AmountOff: discountMinor,
		Currency:  "eur",
		Duration:  "once",
	})
	if err == nil && coupon != nil && coupon.ID != "" {
		return items, coupon.ID
	}
	metrics.CheckoutFailures.WithLabelValues(orderType, checkoutStageCoupon).Inc()
	metrics.GiftCardCouponFallbacks.Inc()
	logger.Warnw("gift_card_coupon_failed",
		"order_type", orderType,
		"record_id", recordID,
		"discount_minor", discountMinor,
		"error", err,
	)
	return ScaleLineItems(items, discountMinor), ""
}

// releaseCoupon deletes a coupon whose record could not be written. A failed
// delete leaves an unused single-redemption coupon, which is only logged.
func (s *CheckoutService) releaseCoupon(ctx context.Context, orderType, recordID, couponID string) {
	if couponID == "" {
		return
	}
	if err := s.gateway.DeleteCoupon(ctx, couponID); err != nil {
		logger.Warnw("gift_card_coupon_release_failed",
			"order_type", orderType,
			"record_id", recordID,
			"coupon_id", couponID,
			"error", err,
		)
	}
}

func (s *CheckoutService) resolveWebshopLines(requested []WebshopCheckoutLine) ([]WebshopLineInput, error) {
	quantities := make(map[string]int)
	order := make([]string, 0, len(requested))
	for _, line := range requested {
		id := strings.TrimSpace(line.ItemUUID)
		if id == "" || line.Quantity <= 0 {
			continue
		}
		if _, seen := quantities[id]; !seen {
			order = append(order, id)
		}
		quantities[id] = min(quantities[id]+min(line.Quantity, maxCartLineQuantity), maxCartLineQuantity)
	}
	if len(order) == 0 {
		return nil, ErrCartEmpty
	}
	items, err := s.itemRepo.ListByUUIDs(order)
	if err != nil {
		return nil, storeFailure(err)
	}
	byUUID := lo.KeyBy(items, func(item models.WebshopItem) string { return item.UUID })
	lines := make([]WebshopLineInput, 0, len(order))
	for _, id := range order {
		item, ok := byUUID[id]
		if !ok || !item.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrWebshopItemNotFound, id)
		}
		lines = append(lines, WebshopLineInput{Item: &item, Quantity: quantities[id]})
	}
	return lines, nil
}

func (s *CheckoutService) shippingAllowed(country string) bool {
	country = strings.TrimSpace(country)
	if country == "" || IsBelgium(country) {
		return true
	}
	return lo.ContainsBy(s.settings.ShippingCountries, func(code string) bool {
		return strings.EqualFold(code, country)
	})
}

func (s *CheckoutService) locale(raw string) string {
	locale := strings.ToLower(strings.TrimSpace(raw))
	if locale == "" {
		return s.settings.DefaultLocale
	}
	return locale
}

func (s *CheckoutService) origin(raw string) string {
	origin := strings.TrimRight(strings.TrimSpace(raw), "/")
	if origin == "" {
		return s.settings.SiteOrigin
	}
	return origin
}

func stripeLocale(locale string) string {
	if _, ok := stripeLocales[locale]; ok {
		return locale
	}
	return "auto"
}

func tourMetadata(tour *models.Tour, input TourCheckoutInput, quote *TourQuote, pendingID, couponID string) map[string]string {
	bookingDate, bookingTime := "", ""
	if quote.TourDatetime != nil {
		local := *quote.TourDatetime
		bookingDate = local[:10]
		bookingTime = local[11:16]
	}
	metadata := map[string]string{
		"order_type":       constants.OrderTypeTour,
		"tourId":           strconv.FormatUint(uint64(tour.ID), 10),
		"customerName":     strings.TrimSpace(input.CustomerName),
		"customerEmail":    normalizeEmail(input.CustomerEmail),
		"customerPhone":    strings.TrimSpace(input.CustomerPhone),
		"bookingDate":      bookingDate,
		"bookingTime":      bookingTime,
		"numberOfPeople":   strconv.Itoa(quote.People),
		"language":         strings.TrimSpace(input.Language),
		"specialRequests":  truncateRunes(strings.TrimSpace(input.SpecialRequests), stripeMetadataValueLimit),
		"requestTanguy":    strconv.FormatBool(quote.PersonalGuide),
		"userId":           strings.TrimSpace(input.UserID),
		"opMaat":           strconv.FormatBool(quote.TourType == constants.TourTypeOpMaat),
		"pendingBookingId": pendingID,
	}
	if quote.GiftCardDiscountMinor > 0 {
		metadata["giftCardCode"] = quote.GiftCardCode
		metadata["giftCardDiscount"] = models.NewMoneyFromMinor(quote.GiftCardDiscountMinor).String()
		metadata["couponId"] = couponID
	}
	return metadata
}

func toStripeLineItems(items []LineItem) []stripe.LineItem {
	return lo.Map(items, func(item LineItem, _ int) stripe.LineItem {
		return stripe.LineItem{
			Name:        item.Name,
			Description: item.Description,
			UnitAmount:  item.UnitAmount,
			Quantity:    item.Quantity,
			Currency:    "eur",
			PriceID:     item.PriceID,
		}
	})
}

func truncateRunes(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	return string([]rune(value)[:limit])
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tourshop/internal/constants"
	"github.com/tourshop/internal/logger"
	"github.com/tourshop/internal/metrics"
	"github.com/tourshop/internal/models"
	"github.com/tourshop/internal/payment/stripe"
	"github.com/tourshop/internal/queue"
	"github.com/tourshop/internal/repository"

	"gorm.io/gorm"
)

const defaultPendingTTL = 24 * time.Hour

// Stripe events the webhook acts on
const (
	EventCheckoutCompleted      = "checkout.session.completed"
	EventCheckoutAsyncSucceeded = "checkout.session.async_payment_succeeded"
	EventCheckoutExpired        = "checkout.session.expired"
)

// BookingService materializes pending records and promotes them once paid.
type BookingService struct {
	pendingRepo repository.PendingBookingRepository
	bookingRepo repository.BookingRepository
	orderRepo   repository.WebshopOrderRepository
	giftCardSvc *GiftCardService
	queueClient *queue.Client
	notifier    *NotificationService
	pendingTTL  time.Duration
	now         func() time.Time
}

// PromotionResult outcome of a webhook promotion.
type PromotionResult struct {
	OrderType        string
	Booking          *models.Booking
	WebshopOrder     *models.WebshopOrder
	AlreadyProcessed bool
	MergedIntoSlot   bool
	Ignored          bool
}

// ExpireResult counts of records expired by one cleanup pass.
type ExpireResult struct {
	PendingBookings int64
	WebshopOrders   int64
}

// NewBookingService creates the service. A non-positive ttl means 24 hours.
func NewBookingService(pendingRepo repository.PendingBookingRepository, bookingRepo repository.BookingRepository, orderRepo repository.WebshopOrderRepository, giftCardSvc *GiftCardService, queueClient *queue.Client, pendingTTL time.Duration) *BookingService {
	if pendingTTL <= 0 {
		pendingTTL = defaultPendingTTL
	}
	return &BookingService{
		pendingRepo: pendingRepo,
		bookingRepo: bookingRepo,
		orderRepo:   orderRepo,
		giftCardSvc: giftCardSvc,
		queueClient: queueClient,
		pendingTTL:  pendingTTL,
		now:         time.Now,
	}
}

// SetNotifier delivers confirmations in-process when the queue is disabled.
func (s *BookingService) SetNotifier(notifier *NotificationService) {
	s.notifier = notifier
}

// PendingTTL how long an unpaid record stays pending.
func (s *BookingService) PendingTTL() time.Duration {
	return s.pendingTTL
}

// BuildPendingBooking turns a priced request into the pending row written
// before the checkout session exists.
func (s *BookingService) BuildPendingBooking(id string, tour *models.Tour, input TourCheckoutInput, quote *TourQuote) *models.PendingBooking {
	now := s.now()
	payload := models.PendingPayload{
		TourDatetime:    quote.TourDatetime,
		TourEndDatetime: quote.TourEndDatetime,
		DurationMinutes: quote.DurationMinutes,
		NumberOfPeople:  quote.People,
		Language:        strings.TrimSpace(input.Language),
		CustomerPhone:   strings.TrimSpace(input.CustomerPhone),
		SpecialRequests: strings.TrimSpace(input.SpecialRequests),
		UserID:          strings.TrimSpace(input.UserID),
		Locale:          strings.TrimSpace(input.Locale),
		PersonalGuide:   quote.PersonalGuide,
		ExtraHour:       quote.ExtraHour,
		WeekendFee:      quote.Weekend,
		EveningFee:      quote.Evening,
		Amounts:         quote.Amounts,
		ShippingAddress: input.ShippingAddress,
	}
	for _, upsell := range quote.Upsells {
		payload.Upsells = append(payload.Upsells, models.UpsellSnapshot{
			Name:      upsell.Name,
			UnitPrice: upsell.UnitPrice,
			Quantity:  upsell.Quantity,
		})
	}
	if quote.GiftCardDiscountMinor > 0 {
		amount := models.NewMoneyFromMinor(quote.GiftCardDiscountMinor)
		payload.GiftCardCode = quote.GiftCardCode
		payload.GiftCardAmount = &amount
	}
	if quote.TourType == constants.TourTypeLocalStories {
		payload.Invitees = []models.Invitee{{
			Name:   strings.TrimSpace(input.CustomerName),
			Email:  normalizeEmail(input.CustomerEmail),
			People: quote.People,
		}}
	}
	return &models.PendingBooking{
		ID:            id,
		TourID:        tour.ID,
		TourType:      quote.TourType,
		Status:        constants.PendingStatusPending,
		CustomerName:  strings.TrimSpace(input.CustomerName),
		CustomerEmail: normalizeEmail(input.CustomerEmail),
		AmountTotal:   models.NewMoneyFromMinor(quote.TotalMinor),
		Payload:       payload,
		ExpiresAt:     now.Add(s.pendingTTL),
	}
}

// HandleEvent dispatches a verified processor event.
func (s *BookingService) HandleEvent(ctx context.Context, event *stripe.Event) (*PromotionResult, error) {
	if event == nil || event.Session == nil {
		return &PromotionResult{Ignored: true}, nil
	}
	switch event.Type {
	case EventCheckoutCompleted, EventCheckoutAsyncSucceeded:
		return s.PromoteFromSession(ctx, event.Session)
	case EventCheckoutExpired:
		return s.expireSession(event.Session)
	default:
		return &PromotionResult{Ignored: true}, nil
	}
}

// PromoteFromSession confirms the record behind a paid session. A second
// delivery of the same session is a no-op.
func (s *BookingService) PromoteFromSession(ctx context.Context, session *stripe.CheckoutSession) (*PromotionResult, error) {
	if session == nil || strings.TrimSpace(session.ID) == "" {
		return nil, ErrCheckoutInconsistent
	}
	if session.PaymentStatus != "paid" {
		logger.Infow("checkout_session_not_paid", "session_id", session.ID, "payment_status", session.PaymentStatus)
		return &PromotionResult{Ignored: true}, nil
	}
	if session.Metadata["order_type"] == constants.OrderTypeWebshop {
		return s.promoteWebshopOrder(ctx, session)
	}
	return s.promoteBooking(ctx, session)
}

func (s *BookingService) promoteBooking(ctx context.Context, session *stripe.CheckoutSession) (*PromotionResult, error) {
	result := &PromotionResult{OrderType: constants.OrderTypeTour}
	err := models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pendingRepo := s.pendingRepo.WithTx(tx)
		bookingRepo := s.bookingRepo.WithTx(tx)

		pending, err := s.resolvePending(pendingRepo, session)
		if err != nil {
			return err
		}
		if pending.Status == constants.PendingStatusCompleted {
			result.AlreadyProcessed = true
			result.Booking, err = bookingRepo.GetBySessionID(session.ID)
			return err
		}
		applied, err := pendingRepo.UpdateStatus(pending.ID, pending.Status, constants.PendingStatusCompleted)
		if err != nil {
			return err
		}
		if !applied {
			result.AlreadyProcessed = true
			return nil
		}

		booking, merged, err := s.materializeBooking(bookingRepo, pending, session)
		if err != nil {
			return err
		}
		result.Booking = booking
		result.MergedIntoSlot = merged

		return s.redeemGiftCard(tx, pending.Payload.GiftCardCode, pending.Payload.GiftCardAmount, pending.ID, session.ID)
	})
	if err != nil {
		logger.Errorw("booking_promotion_failed", "session_id", session.ID, "error", err)
		return nil, err
	}
	if result.AlreadyProcessed {
		logger.Infow("booking_promotion_duplicate", "session_id", session.ID)
		return result, nil
	}
	metrics.BookingsPromoted.WithLabelValues(constants.OrderTypeTour).Inc()
	logger.Infow("booking_promoted",
		"session_id", session.ID,
		"booking_id", result.Booking.ID,
		"merged_into_slot", result.MergedIntoSlot,
	)
	s.enqueueConfirmed(queue.BookingConfirmedPayload{
		OrderType: constants.OrderTypeTour,
		BookingID: result.Booking.ID,
		SessionID: session.ID,
	})
	return result, nil
}

// resolvePending finds the pending row by session id, falling back to the
// pendingBookingId metadata when the attach step never completed.
func (s *BookingService) resolvePending(repo *repository.GormPendingBookingRepository, session *stripe.CheckoutSession) (*models.PendingBooking, error) {
	pending, err := repo.GetBySessionID(session.ID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return repo.GetForUpdate(pending.ID)
	}
	id := strings.TrimSpace(session.Metadata["pendingBookingId"])
	if id == "" {
		id = strings.TrimSpace(session.ClientReferenceID)
	}
	pending, err = repo.GetForUpdate(id)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return nil, ErrPendingNotFound
	}
	if err := repo.AttachSession(pending.ID, session.ID); err != nil {
		if errors.Is(err, repository.ErrSessionAlreadyAttached) {
			return nil, ErrCheckoutInconsistent
		}
		return nil, err
	}
	logger.Warnw("pending_booking_attached_from_webhook", "pending_booking_id", pending.ID, "session_id", session.ID)
	return pending, nil
}

// materializeBooking creates the confirmed booking. A local stories purchase
// for a slot the customer already holds extends that booking instead.
func (s *BookingService) materializeBooking(repo *repository.GormBookingRepository, pending *models.PendingBooking, session *stripe.CheckoutSession) (*models.Booking, bool, error) {
	payload := pending.Payload
	email := pending.CustomerEmail
	if email == "" {
		email = normalizeEmail(session.CustomerEmail)
	}
	amount := pending.AmountTotal
	if session.AmountTotal > 0 {
		amount = models.NewMoneyFromMinor(session.AmountTotal)
	}

	if pending.TourType == constants.TourTypeLocalStories && payload.TourDatetime != nil {
		slot, err := repo.FindLocalStoriesSlot(pending.TourID, *payload.TourDatetime, email)
		if err != nil {
			return nil, false, err
		}
		if slot != nil {
			slot.Invitees = mergeInvitees(slot.Invitees, payload.Invitees)
			slot.NumberOfPeople += payload.NumberOfPeople
			slot.AmountTotal = models.NewMoneyFromDecimal(slot.AmountTotal.Add(amount.Decimal))
			slot.Upsells = append(slot.Upsells, payload.Upsells...)
			if err := repo.Update(slot); err != nil {
				return nil, false, err
			}
			return slot, true, nil
		}
	}

	booking := &models.Booking{
		PendingBookingID: pending.ID,
		SessionID:        session.ID,
		TourID:           pending.TourID,
		TourType:         pending.TourType,
		Status:           constants.BookingStatusConfirmed,
		CustomerName:     pending.CustomerName,
		CustomerEmail:    email,
		CustomerPhone:    payload.CustomerPhone,
		TourDatetime:     payload.TourDatetime,
		TourEndDatetime:  payload.TourEndDatetime,
		DurationMinutes:  payload.DurationMinutes,
		NumberOfPeople:   payload.NumberOfPeople,
		Language:         payload.Language,
		SpecialRequests:  payload.SpecialRequests,
		AmountTotal:      amount,
		Invitees:         models.InviteeList(payload.Invitees),
		Upsells:          models.UpsellList(payload.Upsells),
		GiftCardCode:     payload.GiftCardCode,
	}
	if err := repo.Create(booking); err != nil {
		return nil, false, err
	}
	return booking, false, nil
}

// mergeInvitees adds new invitees; an email already present gets its people summed.
func mergeInvitees(existing models.InviteeList, incoming []models.Invitee) models.InviteeList {
	merged := append(models.InviteeList{}, existing...)
	for _, invitee := range incoming {
		found := false
		for i := range merged {
			if invitee.Email != "" && strings.EqualFold(merged[i].Email, invitee.Email) {
				merged[i].People += invitee.People
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, invitee)
		}
	}
	return merged
}

func (s *BookingService) promoteWebshopOrder(ctx context.Context, session *stripe.CheckoutSession) (*PromotionResult, error) {
	result := &PromotionResult{OrderType: constants.OrderTypeWebshop}
	err := models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		order, err := repo.GetBySessionID(session.ID)
		if err != nil {
			return err
		}
		if order == nil {
			order, err = repo.GetByID(session.Metadata["orderId"])
			if err != nil {
				return err
			}
			if order == nil {
				return ErrPendingNotFound
			}
			if err := repo.AttachSession(order.ID, session.ID); err != nil {
				if errors.Is(err, repository.ErrSessionAlreadyAttached) {
					return ErrCheckoutInconsistent
				}
				return err
			}
		}
		result.WebshopOrder = order
		completedAt := s.now()
		applied, err := repo.MarkCompleted(order.ID, completedAt)
		if err != nil {
			return err
		}
		if !applied {
			result.AlreadyProcessed = true
			return nil
		}
		order.Status = constants.PendingStatusCompleted
		order.CompletedAt = &completedAt

		var discount *models.Money
		if order.Discount.IsPositive() {
			discount = &order.Discount
		}
		return s.redeemGiftCard(tx, order.GiftCardCode, discount, order.ID, session.ID)
	})
	if err != nil {
		logger.Errorw("webshop_order_promotion_failed", "session_id", session.ID, "error", err)
		return nil, err
	}
	if result.AlreadyProcessed {
		return result, nil
	}
	metrics.BookingsPromoted.WithLabelValues(constants.OrderTypeWebshop).Inc()
	logger.Infow("webshop_order_completed", "session_id", session.ID, "order_id", result.WebshopOrder.ID)
	s.enqueueConfirmed(queue.BookingConfirmedPayload{
		OrderType:      constants.OrderTypeWebshop,
		WebshopOrderID: result.WebshopOrder.ID,
		SessionID:      session.ID,
	})
	return result, nil
}

// redeemGiftCard debits the card used at checkout. A rejected card is logged
// and skipped since the payment already went through; a balance conflict
// rolls back so the processor redelivers the event.
func (s *BookingService) redeemGiftCard(tx *gorm.DB, code string, amount *models.Money, orderID, sessionID string) error {
	if s.giftCardSvc == nil || strings.TrimSpace(code) == "" || amount == nil || !amount.IsPositive() {
		return nil
	}
	_, err := s.giftCardSvc.RedeemInTx(tx, RedeemGiftCardInput{
		Code:            code,
		Amount:          *amount,
		OrderID:         orderID,
		StripeSessionID: sessionID,
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrGiftCardConflict):
		return err
	case IsGiftCardError(err):
		logger.Errorw("gift_card_redeem_rejected", "order_id", orderID, "session_id", sessionID, "error", err)
		return nil
	default:
		return err
	}
}

func (s *BookingService) expireSession(session *stripe.CheckoutSession) (*PromotionResult, error) {
	if session.Metadata["order_type"] == constants.OrderTypeWebshop {
		return &PromotionResult{OrderType: constants.OrderTypeWebshop, Ignored: true}, nil
	}
	pending, err := s.pendingRepo.GetBySessionID(session.ID)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return &PromotionResult{OrderType: constants.OrderTypeTour, Ignored: true}, nil
	}
	if _, err := s.pendingRepo.UpdateStatus(pending.ID, constants.PendingStatusPending, constants.PendingStatusExpired); err != nil {
		return nil, err
	}
	logger.Infow("pending_booking_session_expired", "pending_booking_id", pending.ID, "session_id", session.ID)
	return &PromotionResult{OrderType: constants.OrderTypeTour}, nil
}

// ExpireOrphans marks unpaid pending bookings and webshop orders past their
// expiry as expired.
func (s *BookingService) ExpireOrphans(ctx context.Context, now time.Time) (*ExpireResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bookings, err := s.pendingRepo.ExpireBefore(now)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.ExpireBefore(now)
	if err != nil {
		return nil, err
	}
	if bookings > 0 || orders > 0 {
		metrics.PendingExpired.WithLabelValues(constants.OrderTypeTour).Add(float64(bookings))
		metrics.PendingExpired.WithLabelValues(constants.OrderTypeWebshop).Add(float64(orders))
		logger.Infow("pending_records_expired", "pending_bookings", bookings, "webshop_orders", orders)
	}
	return &ExpireResult{PendingBookings: bookings, WebshopOrders: orders}, nil
}

// ListPending admin listing of pending bookings.
func (s *BookingService) ListPending(filter repository.PendingBookingListFilter) ([]models.PendingBooking, int64, error) {
	return s.pendingRepo.List(filter)
}

// ListBookings admin listing of confirmed bookings.
func (s *BookingService) ListBookings(filter repository.BookingListFilter) ([]models.Booking, int64, error) {
	return s.bookingRepo.List(filter)
}

// GetBooking returns one confirmed booking.
func (s *BookingService) GetBooking(id uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

func (s *BookingService) enqueueConfirmed(payload queue.BookingConfirmedPayload) {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		if s.notifier.Enabled() {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				defer cancel()
				_ = s.notifier.Dispatch(ctx, payload)
			}()
		}
		return
	}
	if err := s.queueClient.EnqueueBookingConfirmed(payload); err != nil {
		logger.Warnw("booking_confirmed_enqueue_failed", "session_id", payload.SessionID, "error", err)
	}
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

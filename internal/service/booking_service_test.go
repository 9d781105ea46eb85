package service

import (
	"context"
	"testing"
	"time"

	"github.com/tourshop/internal/constants"
	"github.com/tourshop/internal/models"
	"github.com/tourshop/internal/payment/stripe"
	"github.com/tourshop/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paidSession(id string, metadata map[string]string) *stripe.CheckoutSession {
	return &stripe.CheckoutSession{
		ID:            id,
		Status:        "complete",
		PaymentStatus: "paid",
		Metadata:      metadata,
	}
}

func TestPromoteFromSessionIsIdempotent(t *testing.T) {
	f := setupCheckoutTest(t)
	tour := f.seedTour(t, "25")
	result, err := f.checkout.CreateTourCheckout(context.Background(), baseTourInput(tour.ID))
	require.NoError(t, err)

	session := paidSession(result.SessionID, f.gateway.sessions[0].Metadata)
	session.AmountTotal = 7500
	first, err := f.bookings.PromoteFromSession(context.Background(), session)
	require.NoError(t, err)
	require.NotNil(t, first.Booking)
	assert.False(t, first.AlreadyProcessed)
	assert.Equal(t, constants.BookingStatusConfirmed, first.Booking.Status)
	assert.Equal(t, "sofie@example.be", first.Booking.CustomerEmail)
	assert.Equal(t, 3, first.Booking.NumberOfPeople)
	assert.Equal(t, "75.00", first.Booking.AmountTotal.String())

	second, err := f.bookings.PromoteFromSession(context.Background(), session)
	require.NoError(t, err)
	assert.True(t, second.AlreadyProcessed)
	require.NotNil(t, second.Booking)
	assert.Equal(t, first.Booking.ID, second.Booking.ID)

	var count int64
	require.NoError(t, f.db.Model(&models.Booking{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, constants.PendingStatusCompleted, f.pending(t, result.PendingID).Status)
}

func TestPromoteFromSessionFallsBackToMetadata(t *testing.T) {
	f := setupCheckoutTest(t)
	tour := f.seedTour(t, "25")
	pendingRepo := repository.NewPendingBookingRepository(f.db)
	quote, err := NewPricingComposer(testPricingSettings()).ComposeTour(tour, TourPricingInput{People: 2, Datetime: weekdayMorning})
	require.NoError(t, err)
	pending := f.bookings.BuildPendingBooking("4b1c7a52-0000-4000-8000-000000000001", tour, baseTourInput(tour.ID), quote)
	require.NoError(t, pendingRepo.Create(pending))

	// the attach step never ran
	session := paidSession("cs_test_unlinked", map[string]string{"pendingBookingId": pending.ID})
	result, err := f.bookings.PromoteFromSession(context.Background(), session)
	require.NoError(t, err)
	require.NotNil(t, result.Booking)
	assert.Equal(t, pending.ID, result.Booking.PendingBookingID)

	stored := f.pending(t, pending.ID)
	require.NotNil(t, stored.SessionID)
	assert.Equal(t, "cs_test_unlinked", *stored.SessionID)

	_, err = f.bookings.PromoteFromSession(context.Background(), paidSession("cs_test_unknown", nil))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPromoteFromSessionIgnoresUnpaid(t *testing.T) {
	f := setupCheckoutTest(t)
	session := paidSession("cs_test_unpaid", nil)
	session.PaymentStatus = "unpaid"
	result, err := f.bookings.PromoteFromSession(context.Background(), session)
	require.NoError(t, err)
	assert.True(t, result.Ignored)
}

func TestPromoteLocalStoriesReusesSlot(t *testing.T) {
	f := setupCheckoutTest(t)
	tour := f.seedTour(t, "15", localStories)

	var bookingIDs []uint
	for i, people := range []int{2, 1} {
		input := baseTourInput(tour.ID)
		input.NumberOfPeople = people
		checkout, err := f.checkout.CreateTourCheckout(context.Background(), input)
		require.NoError(t, err)
		result, err := f.bookings.PromoteFromSession(context.Background(), paidSession(checkout.SessionID, f.gateway.sessions[i].Metadata))
		require.NoError(t, err)
		assert.Equal(t, i == 1, result.MergedIntoSlot)
		bookingIDs = append(bookingIDs, result.Booking.ID)
	}
	assert.Equal(t, bookingIDs[0], bookingIDs[1])

	booking, err := f.bookings.GetBooking(bookingIDs[0])
	require.NoError(t, err)
	assert.Equal(t, 3, booking.NumberOfPeople)
	require.Len(t, booking.Invitees, 1)
	assert.Equal(t, 3, booking.Invitees[0].People)
	assert.Equal(t, "45.00", booking.AmountTotal.String())
	assert.Equal(t, 120, booking.DurationMinutes)
}

func TestPromoteRedeemsGiftCardOnce(t *testing.T) {
	f := setupCheckoutTest(t)
	tour := f.seedTour(t, "25")
	card, err := f.giftCard.Create(context.Background(), CreateGiftCardInput{Amount: models.NewMoneyFromMinor(5000)})
	require.NoError(t, err)

	input := baseTourInput(tour.ID)
	input.GiftCardCode = card.Code
	checkout, err := f.checkout.CreateTourCheckout(context.Background(), input)
	require.NoError(t, err)

	session := paidSession(checkout.SessionID, f.gateway.sessions[0].Metadata)
	for i := 0; i < 2; i++ {
		_, err := f.bookings.PromoteFromSession(context.Background(), session)
		require.NoError(t, err)
	}

	stored, err := f.giftCard.Get(context.Background(), card.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.00", stored.CurrentBalance.String())
	assert.Equal(t, constants.GiftCardStatusRedeemed, stored.Status)
	require.Len(t, stored.Transactions, 1)
	assert.Equal(t, checkout.PendingID, stored.Transactions[0].OrderID)
	assert.Equal(t, checkout.SessionID, stored.Transactions[0].StripeSessionID)
}

func TestPromoteWebshopOrder(t *testing.T) {
	f := setupCheckoutTest(t)
	item := &models.WebshopItem{UUID: "c0000000-0000-0000-0000-000000000001", Name: "Tote bag", Category: constants.WebshopCategoryMerchandise, Price: models.NewMoneyFromMinor(1500), IsActive: true}
	require.NoError(t, f.db.Create(item).Error)
	checkout, err := f.checkout.CreateWebshopCheckout(context.Background(), WebshopCheckoutInput{
		Lines:         []WebshopCheckoutLine{{ItemUUID: item.UUID, Quantity: 1}},
		CustomerEmail: "koper@example.be",
	})
	require.NoError(t, err)

	session := paidSession(checkout.SessionID, f.gateway.sessions[0].Metadata)
	event := &stripe.Event{ID: "evt_1", Type: EventCheckoutCompleted, Session: session}
	result, err := f.bookings.HandleEvent(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, constants.OrderTypeWebshop, result.OrderType)
	require.NotNil(t, result.WebshopOrder)

	again, err := f.bookings.HandleEvent(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, again.AlreadyProcessed)

	order, err := repository.NewWebshopOrderRepository(f.db).GetByID(checkout.PendingID)
	require.NoError(t, err)
	assert.Equal(t, constants.PendingStatusCompleted, order.Status)
	assert.NotNil(t, order.CompletedAt)
}

func TestExpireOrphans(t *testing.T) {
	f := setupCheckoutTest(t)
	tour := f.seedTour(t, "25")
	f.gateway.sessionErr = assert.AnError
	_, err := f.checkout.CreateTourCheckout(context.Background(), baseTourInput(tour.ID))
	require.Error(t, err)
	orphanID := f.gateway.sessions[0].ClientReferenceID

	result, err := f.bookings.ExpireOrphans(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.PendingBookings, "fresh orphans are kept until the ttl passes")

	result, err = f.bookings.ExpireOrphans(context.Background(), time.Now().Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.PendingBookings)
	assert.Equal(t, constants.PendingStatusExpired, f.pending(t, orphanID).Status)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.bookings.ExpireOrphans(ctx, time.Now())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHandleEventExpiresSession(t *testing.T) {
	f := setupCheckoutTest(t)
	tour := f.seedTour(t, "25")
	checkout, err := f.checkout.CreateTourCheckout(context.Background(), baseTourInput(tour.ID))
	require.NoError(t, err)

	_, err = f.bookings.HandleEvent(context.Background(), &stripe.Event{
		Type:    EventCheckoutExpired,
		Session: &stripe.CheckoutSession{ID: checkout.SessionID},
	})
	require.NoError(t, err)
	assert.Equal(t, constants.PendingStatusExpired, f.pending(t, checkout.PendingID).Status)

	ignored, err := f.bookings.HandleEvent(context.Background(), &stripe.Event{Type: "invoice.paid", Session: &stripe.CheckoutSession{ID: "cs_x"}})
	require.NoError(t, err)
	assert.True(t, ignored.Ignored)
}

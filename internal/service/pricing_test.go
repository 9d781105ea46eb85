package service

import (
	"math/rand"
	"testing"

	"github.com/tourshop/internal/constants"
	"github.com/tourshop/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPricingSettings() PricingSettings {
	return PricingSettings{
		PersonalGuideFee: decimal.NewFromInt(125),
		ExtraHourFee:     decimal.NewFromInt(150),
		WeekendFee:       decimal.NewFromInt(25),
		EveningFee:       decimal.NewFromInt(25),
		EveningStartHour: 18,
		DomesticShipping: decimal.RequireFromString("7.50"),
		IntlShipping:     decimal.RequireFromString("14.99"),
		FreeShippingFrom: decimal.NewFromInt(150),
	}
}

func testTour(price string, opts ...func(*models.Tour)) *models.Tour {
	tour := &models.Tour{
		ID:        7,
		Slug:      "brussels-highlights",
		TitleJSON: models.JSON{"nl": "Brussel Hoogtepunten", "en": "Brussels Highlights"},
		IsActive:  true,
	}
	if price != "" {
		p := models.NewMoneyFromDecimal(decimal.RequireFromString(price))
		tour.Price = &p
	}
	for _, opt := range opts {
		opt(tour)
	}
	return tour
}

func opMaat(t *models.Tour)       { t.OpMaat = true }
func localStories(t *models.Tour) { t.LocalStories = true }

func withDuration(minutes int) func(*models.Tour) {
	return func(t *models.Tour) { t.DurationMinutes = &minutes }
}

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

// Wednesday morning, no surcharges derived.
var weekdayMorning = DatetimeInput{Date: "2026-07-08", Time: "10:00"}

func TestComposeStandardBookingWithoutAddOns(t *testing.T) {
	composer := NewPricingComposer(testPricingSettings())
	quote, err := composer.ComposeTour(testTour("100.00"), TourPricingInput{People: 2, Datetime: weekdayMorning})
	require.NoError(t, err)

	require.Len(t, quote.LineItems, 1)
	line := quote.LineItems[0]
	assert.Equal(t, int64(20000), line.UnitAmount)
	assert.Equal(t, int64(1), line.Quantity)
	assert.Equal(t, "Brussel Hoogtepunten", line.Name)
	assert.Equal(t, "2 person(s) - 2026-07-08 10:00", line.Description)
	assert.Equal(t, int64(20000), quote.TotalMinor)
	assert.Equal(t, "200.00", quote.Amounts.Total.String())
	assert.Equal(t, "0.00", quote.Amounts.Discount.String())
	assert.Equal(t, constants.TourTypeStandard, quote.TourType)
	assert.Equal(t, 120, quote.DurationMinutes)
	assert.Equal(t, "2026-07-08T10:00:00", *quote.TourDatetime)
	assert.Equal(t, "2026-07-08T12:00:00", *quote.TourEndDatetime)
}

func TestComposeOpMaatEveningFee(t *testing.T) {
	composer := NewPricingComposer(testPricingSettings())
	quote, err := composer.ComposeTour(testTour("300.00", opMaat), TourPricingInput{
		People:   6,
		Datetime: DatetimeInput{Date: "2026-07-08", Time: "19:30"},
		Evening:  boolPtr(true),
		Weekend:  boolPtr(false),
	})
	require.NoError(t, err)

	require.Len(t, quote.LineItems, 2)
	assert.Equal(t, int64(30000), quote.LineItems[0].UnitAmount, "op maat is priced once, not per person")
	assert.Equal(t, "Op Maat Tour", quote.LineItems[0].Description)
	evening := quote.LineItems[1]
	assert.Equal(t, LineKindEvening, evening.Kind)
	assert.Equal(t, "Avondtoeslag", evening.Name)
	assert.Equal(t, int64(2500), evening.UnitAmount)
	for _, line := range quote.LineItems {
		assert.NotEqual(t, LineKindWeekend, line.Kind)
	}
}

func TestEveningFeeOnlyForOpMaat(t *testing.T) {
	composer := NewPricingComposer(testPricingSettings())
	quote, err := composer.ComposeTour(testTour("40.00"), TourPricingInput{
		People:   1,
		Datetime: DatetimeInput{Date: "2026-07-08", Time: "20:00"},
		Evening:  boolPtr(true),
	})
	require.NoError(t, err)
	assert.False(t, quote.Evening)
	assert.Len(t, quote.LineItems, 1)
}

func TestSurchargesDerivedWhenFlagsOmitted(t *testing.T) {
	composer := NewPricingComposer(testPricingSettings())
	quote, err := composer.ComposeTour(testTour("250.00", opMaat), TourPricingInput{
		People:   4,
		Datetime: DatetimeInput{Date: "2026-07-11", Time: "18:00"},
	})
	require.NoError(t, err)
	assert.True(t, quote.Weekend)
	assert.True(t, quote.Evening)
	assert.Equal(t, int64(25000+2500+2500), quote.TotalMinor)
}

func TestLocalStoriesAlwaysTwoHours(t *testing.T) {
	composer := NewPricingComposer(testPricingSettings())
	for _, extra := range []bool{false, true} {
		quote, err := composer.ComposeTour(testTour("25.00", localStories, withDuration(90)), TourPricingInput{
			People:          3,
			Datetime:        DatetimeInput{Date: "2026-07-11", Time: "14:00"},
			ExtraHour:       extra,
			Answers:         map[string]interface{}{"extraHour": true},
			DurationMinutes: intPtr(240),
			Weekend:         boolPtr(false),
		})
		require.NoError(t, err)
		assert.Equal(t, 120, quote.DurationMinutes)
		assert.False(t, quote.ExtraHour)
		assert.Equal(t, "2026-07-11T16:00:00", *quote.TourEndDatetime)
		assert.Len(t, quote.LineItems, 1)
	}
}

func TestExtraHourFromAnswersAddsDurationAndFee(t *testing.T) {
	composer := NewPricingComposer(testPricingSettings())
	quote, err := composer.ComposeTour(testTour("50.00", withDuration(150)), TourPricingInput{
		People:   2,
		Datetime: weekdayMorning,
		Answers:  map[string]interface{}{"extraHour": "true"},
	})
	require.NoError(t, err)
	assert.Equal(t, 210, quote.DurationMinutes)
	require.Len(t, quote.LineItems, 2)
	assert.Equal(t, int64(15000), quote.LineItems[1].UnitAmount)
	assert.Equal(t, "150.00", quote.Amounts.ExtraHour.String())
}

func TestCallerDurationHonouredForNonLocalStories(t *testing.T) {
	assert.Equal(t, 180, ResolveDuration(testTour("10.00"), false, intPtr(180)))
	assert.Equal(t, 180, ResolveDuration(testTour("10.00", withDuration(150)), true, intPtr(180)), "a caller duration is not extended by the extra hour")
	assert.Equal(t, 120, ResolveDuration(testTour("10.00"), false, nil))
	assert.Equal(t, 180, ResolveDuration(testTour("10.00"), true, nil))
	assert.Equal(t, 120, ResolveDuration(testTour("10.00", localStories), true, intPtr(180)))
}

func TestComposeValidationErrors(t *testing.T) {
	composer := NewPricingComposer(testPricingSettings())

	_, err := composer.ComposeTour(nil, TourPricingInput{People: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = composer.ComposeTour(testTour(""), TourPricingInput{People: 1, Datetime: weekdayMorning})
	assert.ErrorIs(t, err, ErrTourPriceMissing)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = composer.ComposeTour(testTour("10.00"), TourPricingInput{People: 0, Datetime: weekdayMorning})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = composer.ComposeTour(testTour("10.00"), TourPricingInput{People: 2})
	assert.ErrorIs(t, err, ErrBookingDateRequired)

	quote, err := composer.ComposeTour(testTour("200.00", opMaat), TourPricingInput{People: 2})
	require.NoError(t, err)
	assert.Nil(t, quote.TourDatetime)
	assert.Nil(t, quote.TourEndDatetime)
}

func TestUpsellsAndFreeShippingLine(t *testing.T) {
	composer := NewPricingComposer(testPricingSettings())
	quote, err := composer.ComposeTour(testTour("30.00"), TourPricingInput{
		People:        2,
		Datetime:      weekdayMorning,
		PersonalGuide: true,
		Upsells: []UpsellItem{
			{Name: "Brussel in 100 verhalen", UnitPrice: models.NewMoneyFromMinor(2495), Quantity: 2},
			{Name: "Gratis", UnitPrice: models.NewMoneyFromMinor(0), Quantity: 1},
			{Name: "Negatief", UnitPrice: models.NewMoneyFromMinor(500), Quantity: -1},
		},
	})
	require.NoError(t, err)

	kinds := make([]string, 0, len(quote.LineItems))
	for _, line := range quote.LineItems {
		kinds = append(kinds, line.Kind)
	}
	assert.Equal(t, []string{LineKindTour, LineKindPersonalGuide, LineKindUpsell, LineKindShipping}, kinds)
	shipping := quote.LineItems[3]
	assert.Equal(t, int64(0), shipping.UnitAmount)
	assert.Equal(t, int64(6000+12500+4990), quote.TotalMinor)
	assert.Equal(t, "49.90", quote.Amounts.Upsells.String())
}

func TestOversizedUpsellCannotOverflowTotal(t *testing.T) {
	composer := NewPricingComposer(testPricingSettings())
	quote, err := composer.ComposeTour(testTour("30.00"), TourPricingInput{
		People:   1,
		Datetime: weekdayMorning,
		Upsells: []UpsellItem{
			{Name: "Book", UnitPrice: models.NewMoneyFromMinor(10000), Quantity: 100_000_000_000_000_000},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3000), quote.TotalMinor)
	assert.True(t, quote.Amounts.Upsells.IsZero())
	for _, line := range quote.LineItems {
		assert.NotEqual(t, LineKindUpsell, line.Kind)
	}
}

func TestGiftCardDiscountCappedAtTotal(t *testing.T) {
	composer := NewPricingComposer(testPricingSettings())
	quote, err := composer.ComposeTour(testTour("25.00"), TourPricingInput{
		People:           2,
		Datetime:         weekdayMorning,
		GiftCardCode:     "ABCD-EFGH-JKLM-NPQR",
		GiftCardDiscount: models.NewMoneyFromMinor(8000),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), quote.GiftCardDiscountMinor)
	assert.Equal(t, int64(0), quote.TotalMinor)

	noCode, err := composer.ComposeTour(testTour("25.00"), TourPricingInput{
		People:           2,
		Datetime:         weekdayMorning,
		GiftCardDiscount: models.NewMoneyFromMinor(1000),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), noCode.GiftCardDiscountMinor)
}

func TestScaleLineItemsReconcilesExactly(t *testing.T) {
	items := []LineItem{
		{Name: "a", UnitAmount: 3333, Quantity: 1},
		{Name: "b", UnitAmount: 3333, Quantity: 1},
		{Name: "c", UnitAmount: 3334, Quantity: 1},
	}
	scaled := ScaleLineItems(items, 1000)
	assert.Equal(t, int64(9000), SumLineItems(scaled))
	assert.Equal(t, int64(3333), items[0].UnitAmount, "input must not be mutated")
}

func TestScaleLineItemsSplitsMultiQuantityLine(t *testing.T) {
	items := []LineItem{{Name: "boek", UnitAmount: 999, Quantity: 3, PriceID: "price_1"}}
	scaled := ScaleLineItems(items, 1)
	assert.Equal(t, int64(2996), SumLineItems(scaled))
	for _, line := range scaled {
		assert.Empty(t, line.PriceID, "scaled lines must use inline prices")
	}
}

func TestScaleLineItemsRandomised(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		n := 1 + rng.Intn(6)
		items := make([]LineItem, n)
		for j := range items {
			items[j] = LineItem{UnitAmount: int64(rng.Intn(50000)), Quantity: int64(1 + rng.Intn(4))}
		}
		total := SumLineItems(items)
		if total == 0 {
			continue
		}
		discount := 1 + rng.Int63n(total)
		scaled := ScaleLineItems(items, discount)
		require.Equal(t, total-discount, SumLineItems(scaled), "items=%v discount=%d", items, discount)
		for _, line := range scaled {
			require.GreaterOrEqual(t, line.UnitAmount, int64(0))
		}
	}
}

func TestWebshopShippingRule(t *testing.T) {
	composer := NewPricingComposer(testPricingSettings())
	cases := []struct {
		subtotal string
		country  string
		amount   int64
		name     string
	}{
		{"100.00", "BE", 750, "Verzendkosten (België)"},
		{"100.00", "Belgique", 750, "Verzendkosten (België)"},
		{"100.00", "belgië", 750, "Verzendkosten (België)"},
		{"100.00", "NL", 1499, "Verzendkosten (Internationaal)"},
		{"100.00", "", 1499, "Verzendkosten (Internationaal)"},
		{"150.00", "BE", 0, "Verzendkosten (GRATIS - bestelling boven €150)"},
		{"149.99", "DE", 1499, "Verzendkosten (Internationaal)"},
	}
	for _, tc := range cases {
		line := composer.ShippingLine(decimal.RequireFromString(tc.subtotal), tc.country)
		assert.Equal(t, tc.amount, line.UnitAmount, "%s %s", tc.subtotal, tc.country)
		assert.Equal(t, tc.name, line.Name)
	}
}

func TestComposeWebshopUsesStoredPriceIDs(t *testing.T) {
	composer := NewPricingComposer(testPricingSettings())
	book := &models.WebshopItem{UUID: "u1", Name: "Boek", Price: models.NewMoneyFromMinor(2495), StripePriceID: "price_book"}
	game := &models.WebshopItem{UUID: "u2", Name: "Spel", Price: models.NewMoneyFromMinor(3500)}
	quote, err := composer.ComposeWebshop([]WebshopLineInput{{Item: book, Quantity: 2}, {Item: game, Quantity: 1}}, "BE", "", models.Money{})
	require.NoError(t, err)
	require.Len(t, quote.LineItems, 3)
	assert.Equal(t, "price_book", quote.LineItems[0].PriceID)
	assert.Empty(t, quote.LineItems[1].PriceID)
	assert.Equal(t, "84.90", quote.Subtotal.String())
	assert.Equal(t, "7.50", quote.Shipping.String())
	assert.Equal(t, int64(9240), quote.TotalMinor)

	_, err = composer.ComposeWebshop(nil, "BE", "", models.Money{})
	assert.ErrorIs(t, err, ErrCartEmpty)
}

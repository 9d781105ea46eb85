package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tourshop/internal/config"
	"github.com/tourshop/internal/constants"
	"github.com/tourshop/internal/models"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	defaultTourDurationMinutes = 120
	localStoriesDuration       = 120
	extraHourMinutes           = 60
)

// Line item kinds
const (
	LineKindTour          = "tour"
	LineKindPersonalGuide = "personal_guide"
	LineKindExtraHour     = "extra_hour"
	LineKindWeekend       = "weekend"
	LineKindEvening       = "evening"
	LineKindUpsell        = "upsell"
	LineKindWebshopItem   = "webshop_item"
	LineKindShipping      = "shipping"
)

const (
	shippingFreeTourName      = "Verzendkosten (GRATIS bij tourboeking)"
	shippingFreeWebshopName   = "Verzendkosten (GRATIS - bestelling boven €150)"
	shippingDomesticName      = "Verzendkosten (België)"
	shippingInternationalName = "Verzendkosten (Internationaal)"
)

var belgiumAliases = map[string]struct{}{
	"be":       {},
	"belgië":   {},
	"belgie":   {},
	"belgium":  {},
	"belgique": {},
	"belgien":  {},
}

// LineItem one priced checkout line in minor units.
type LineItem struct {
	Kind        string
	Name        string
	Description string
	UnitAmount  int64
	Quantity    int64
	PriceID     string
}

// Total unit amount times quantity.
func (l LineItem) Total() int64 {
	return l.UnitAmount * l.Quantity
}

// SumLineItems totals a list of lines.
func SumLineItems(items []LineItem) int64 {
	return lo.SumBy(items, func(item LineItem) int64 { return item.Total() })
}

// PricingSettings fixed fees and the shipping rule.
type PricingSettings struct {
	PersonalGuideFee decimal.Decimal
	ExtraHourFee     decimal.Decimal
	WeekendFee       decimal.Decimal
	EveningFee       decimal.Decimal
	EveningStartHour int
	DomesticShipping decimal.Decimal
	IntlShipping     decimal.Decimal
	FreeShippingFrom decimal.Decimal
}

// PricingSettingsFromConfig converts the checkout config section.
func PricingSettingsFromConfig(cfg config.CheckoutConfig) PricingSettings {
	return PricingSettings{
		PersonalGuideFee: decimal.NewFromFloat(cfg.PersonalGuideFee),
		ExtraHourFee:     decimal.NewFromFloat(cfg.ExtraHourFee),
		WeekendFee:       decimal.NewFromFloat(cfg.WeekendFee),
		EveningFee:       decimal.NewFromFloat(cfg.EveningFee),
		EveningStartHour: cfg.EveningStartHour,
		DomesticShipping: decimal.NewFromFloat(cfg.Shipping.DomesticFee),
		IntlShipping:     decimal.NewFromFloat(cfg.Shipping.InternationalFee),
		FreeShippingFrom: decimal.NewFromFloat(cfg.Shipping.FreeThreshold),
	}
}

// PricingComposer turns a booking request into checkout lines.
type PricingComposer struct {
	settings PricingSettings
}

// NewPricingComposer creates a composer.
func NewPricingComposer(settings PricingSettings) *PricingComposer {
	if settings.EveningStartHour <= 0 {
		settings.EveningStartHour = 18
	}
	return &PricingComposer{settings: settings}
}

// TourPricingInput the pricing-relevant part of a booking request.
// Weekend and Evening are derived from the start time when nil.
type TourPricingInput struct {
	People           int
	Datetime         DatetimeInput
	DurationMinutes  *int
	ExtraHour        bool
	Answers          map[string]interface{}
	PersonalGuide    bool
	Weekend          *bool
	Evening          *bool
	Upsells          []UpsellItem
	GiftCardCode     string
	GiftCardDiscount models.Money
}

// TourQuote the resolved booking: flags, times, lines and totals.
type TourQuote struct {
	TourType              string
	DurationMinutes       int
	Start                 *time.Time
	TourDatetime          *string
	TourEndDatetime       *string
	People                int
	PersonalGuide         bool
	ExtraHour             bool
	Weekend               bool
	Evening               bool
	Upsells               []UpsellItem
	LineItems             []LineItem
	Amounts               models.AmountsBreakdown
	SubtotalMinor         int64
	GiftCardCode          string
	GiftCardDiscountMinor int64
	TotalMinor            int64
}

// ResolveDuration: local_stories is fixed at 120. Otherwise a positive caller
// duration is used as is, without the extra hour. Without one the tour
// duration (or 120) applies, plus 60 for the extra hour.
func ResolveDuration(tour *models.Tour, extraHour bool, callerMinutes *int) int {
	if tour != nil && tour.LocalStories {
		return localStoriesDuration
	}
	if callerMinutes != nil && *callerMinutes > 0 {
		return *callerMinutes
	}
	base := defaultTourDurationMinutes
	if tour != nil && tour.DurationMinutes != nil && *tour.DurationMinutes > 0 {
		base = *tour.DurationMinutes
	}
	if extraHour {
		base += extraHourMinutes
	}
	return base
}

// ExtraHourRequested reads the top-level flag or the extraHour answer.
func ExtraHourRequested(flag bool, answers map[string]interface{}) bool {
	if flag {
		return true
	}
	for _, key := range []string{"extraHour", "extra_hour"} {
		if v, ok := answers[key]; ok {
			if parsed, ok := toBool(v); ok && parsed {
				return true
			}
		}
	}
	return false
}

// ComposeTour validates the tour and builds the quote.
func (c *PricingComposer) ComposeTour(tour *models.Tour, in TourPricingInput) (*TourQuote, error) {
	if tour == nil {
		return nil, ErrTourNotFound
	}
	if tour.Price == nil || !tour.Price.GreaterThan(decimal.Zero) {
		return nil, ErrTourPriceMissing
	}
	if in.People <= 0 {
		return nil, fmt.Errorf("%w: number of people must be positive", ErrBookingInvalid)
	}

	quote := &TourQuote{
		TourType: tour.TourType(),
		People:   in.People,
	}
	opMaat := quote.TourType == constants.TourTypeOpMaat
	localStories := quote.TourType == constants.TourTypeLocalStories

	quote.ExtraHour = !localStories && ExtraHourRequested(in.ExtraHour, in.Answers)
	quote.DurationMinutes = ResolveDuration(tour, quote.ExtraHour, in.DurationMinutes)

	if start, ok := ResolveTourDatetime(in.Datetime); ok {
		quote.Start = &start
		startLocal := FormatBrusselsLocal(start)
		endLocal := AddMinutesBrussels(start, quote.DurationMinutes)
		quote.TourDatetime = &startLocal
		quote.TourEndDatetime = &endLocal
	} else if !opMaat {
		return nil, ErrBookingDateRequired
	}

	quote.PersonalGuide = in.PersonalGuide
	quote.Weekend = c.resolveWeekend(in.Weekend, quote.Start)
	quote.Evening = opMaat && c.resolveEvening(in.Evening, quote.Start)

	multiplier := int64(in.People)
	if opMaat {
		multiplier = 1
	}
	tourLine := LineItem{
		Kind:        LineKindTour,
		Name:        tour.DisplayTitle(),
		Description: tourLineDescription(opMaat, in.People, quote.Start),
		UnitAmount:  tour.Price.MinorUnits() * multiplier,
		Quantity:    1,
	}
	discountMinor := c.tourDiscountMinor(tour, in)
	tourLine.UnitAmount -= discountMinor
	quote.LineItems = append(quote.LineItems, tourLine)

	quote.Amounts.TourSubtotal = models.NewMoneyFromMinor(tourLine.UnitAmount + discountMinor)
	quote.Amounts.Discount = models.NewMoneyFromMinor(discountMinor)

	if quote.PersonalGuide {
		line := feeLine(LineKindPersonalGuide, "Persoonlijke gids", c.settings.PersonalGuideFee)
		quote.LineItems = append(quote.LineItems, line)
		quote.Amounts.PersonalGuide = models.NewMoneyFromMinor(line.Total())
	}
	if quote.ExtraHour {
		line := feeLine(LineKindExtraHour, "Extra uur", c.settings.ExtraHourFee)
		quote.LineItems = append(quote.LineItems, line)
		quote.Amounts.ExtraHour = models.NewMoneyFromMinor(line.Total())
	}
	if quote.Weekend {
		line := feeLine(LineKindWeekend, "Weekendtoeslag", c.settings.WeekendFee)
		quote.LineItems = append(quote.LineItems, line)
		quote.Amounts.Weekend = models.NewMoneyFromMinor(line.Total())
	}
	if quote.Evening {
		line := feeLine(LineKindEvening, "Avondtoeslag", c.settings.EveningFee)
		quote.LineItems = append(quote.LineItems, line)
		quote.Amounts.Evening = models.NewMoneyFromMinor(line.Total())
	}

	quote.Upsells = ValidUpsells(in.Upsells)
	upsellTotal := int64(0)
	for _, upsell := range quote.Upsells {
		line := LineItem{
			Kind:       LineKindUpsell,
			Name:       upsellName(upsell.Name),
			UnitAmount: upsell.UnitPrice.MinorUnits(),
			Quantity:   int64(upsell.Quantity),
		}
		upsellTotal += line.Total()
		quote.LineItems = append(quote.LineItems, line)
	}
	quote.Amounts.Upsells = models.NewMoneyFromMinor(upsellTotal)
	if len(quote.Upsells) > 0 {
		quote.LineItems = append(quote.LineItems, LineItem{
			Kind:     LineKindShipping,
			Name:     shippingFreeTourName,
			Quantity: 1,
		})
	}
	quote.Amounts.Shipping = models.NewMoneyFromMinor(0)

	quote.SubtotalMinor = SumLineItems(quote.LineItems)
	quote.GiftCardCode, quote.GiftCardDiscountMinor = applicableGiftCard(in.GiftCardCode, in.GiftCardDiscount, quote.SubtotalMinor)
	quote.TotalMinor = quote.SubtotalMinor - quote.GiftCardDiscountMinor
	quote.Amounts.GiftCard = models.NewMoneyFromMinor(quote.GiftCardDiscountMinor)
	quote.Amounts.Total = models.NewMoneyFromMinor(quote.TotalMinor)
	return quote, nil
}

// tourDiscountMinor is the hook for systematic tour discounts. None apply today.
func (c *PricingComposer) tourDiscountMinor(_ *models.Tour, _ TourPricingInput) int64 {
	return 0
}

func (c *PricingComposer) resolveWeekend(flag *bool, start *time.Time) bool {
	if flag != nil {
		return *flag
	}
	return start != nil && IsWeekendBrussels(*start)
}

func (c *PricingComposer) resolveEvening(flag *bool, start *time.Time) bool {
	if flag != nil {
		return *flag
	}
	return start != nil && HourBrussels(*start) >= c.settings.EveningStartHour
}

func tourLineDescription(opMaat bool, people int, start *time.Time) string {
	if opMaat {
		return "Op Maat Tour"
	}
	date := "Date to be determined"
	if start != nil {
		date = start.In(brusselsLocation).Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("%d person(s) - %s", people, date)
}

func feeLine(kind, name string, amount decimal.Decimal) LineItem {
	return LineItem{
		Kind:       kind,
		Name:       name,
		UnitAmount: models.NewMoneyFromDecimal(amount).MinorUnits(),
		Quantity:   1,
	}
}

func upsellName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Extra"
	}
	return name
}

// applicableGiftCard caps the discount at the order total; no code means no discount.
func applicableGiftCard(code string, discount models.Money, totalMinor int64) (string, int64) {
	code = strings.TrimSpace(code)
	amount := discount.MinorUnits()
	if code == "" || amount <= 0 || totalMinor <= 0 {
		return "", 0
	}
	if amount > totalMinor {
		amount = totalMinor
	}
	return code, amount
}

// ScaleLineItems spreads a discount over the lines proportionally and then
// reconciles rounding drift so the result sums to exactly total - discount.
// Residual cents go to the largest lines first.
func ScaleLineItems(items []LineItem, discountMinor int64) []LineItem {
	scaled := make([]LineItem, len(items))
	copy(scaled, items)
	total := SumLineItems(items)
	if discountMinor <= 0 || total <= 0 {
		return scaled
	}
	if discountMinor > total {
		discountMinor = total
	}
	target := total - discountMinor
	ratio := decimal.NewFromInt(target).Div(decimal.NewFromInt(total))
	for i := range scaled {
		scaled[i].PriceID = ""
		scaled[i].UnitAmount = decimal.NewFromInt(scaled[i].UnitAmount).Mul(ratio).Round(0).IntPart()
	}
	return reconcileLineItems(scaled, target)
}

func reconcileLineItems(items []LineItem, target int64) []LineItem {
	for residual := target - SumLineItems(items); residual != 0; residual = target - SumLineItems(items) {
		step := int64(1)
		if residual < 0 {
			step = -1
		}
		order := largestFirst(items)
		adjusted := false
		for _, idx := range order {
			if residual == 0 {
				break
			}
			item := &items[idx]
			if item.Quantity != 1 || item.UnitAmount+step < 0 {
				continue
			}
			item.UnitAmount += step
			residual -= step
			adjusted = true
		}
		if adjusted {
			continue
		}
		// Only multi-quantity lines left: split one unit off the largest so it can absorb cents.
		split := -1
		for _, idx := range order {
			if items[idx].Quantity > 1 && items[idx].UnitAmount+step >= 0 {
				split = idx
				break
			}
		}
		if split < 0 {
			return items
		}
		single := items[split]
		single.Quantity = 1
		items[split].Quantity--
		items = append(items, single)
	}
	return items
}

func largestFirst(items []LineItem) []int {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return items[order[a]].Total() > items[order[b]].Total()
	})
	return order
}

// IsBelgium matches the accepted spellings of Belgium.
func IsBelgium(country string) bool {
	_, ok := belgiumAliases[strings.ToLower(strings.TrimSpace(country))]
	return ok
}

// ShippingLine returns the webshop shipping line for a subtotal and destination.
// No country counts as international.
func (c *PricingComposer) ShippingLine(subtotal decimal.Decimal, country string) LineItem {
	if c.settings.FreeShippingFrom.GreaterThan(decimal.Zero) && subtotal.GreaterThanOrEqual(c.settings.FreeShippingFrom) {
		return LineItem{Kind: LineKindShipping, Name: shippingFreeWebshopName, Quantity: 1}
	}
	if IsBelgium(country) {
		return feeLine(LineKindShipping, shippingDomesticName, c.settings.DomesticShipping)
	}
	return feeLine(LineKindShipping, shippingInternationalName, c.settings.IntlShipping)
}

// WebshopLineInput one resolved cart line.
type WebshopLineInput struct {
	Item     *models.WebshopItem
	Quantity int
}

// WebshopQuote priced webshop order.
type WebshopQuote struct {
	LineItems             []LineItem
	Lines                 []models.OrderLine
	Subtotal              models.Money
	Shipping              models.Money
	GiftCardCode          string
	GiftCardDiscountMinor int64
	TotalMinor            int64
}

// ComposeWebshop prices cart lines and adds shipping.
func (c *PricingComposer) ComposeWebshop(lines []WebshopLineInput, country string, giftCardCode string, giftCardDiscount models.Money) (*WebshopQuote, error) {
	quote := &WebshopQuote{}
	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Item == nil || line.Quantity <= 0 {
			continue
		}
		if !line.Item.Price.GreaterThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: %s has no price", ErrWebshopItemInvalid, line.Item.Name)
		}
		subtotal = subtotal.Add(line.Item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		quote.LineItems = append(quote.LineItems, LineItem{
			Kind:       LineKindWebshopItem,
			Name:       line.Item.Name,
			UnitAmount: line.Item.Price.MinorUnits(),
			Quantity:   int64(line.Quantity),
			PriceID:    line.Item.StripePriceID,
		})
		quote.Lines = append(quote.Lines, models.OrderLine{
			ItemUUID:  line.Item.UUID,
			Name:      line.Item.Name,
			UnitPrice: line.Item.Price,
			Quantity:  line.Quantity,
		})
	}
	if len(quote.LineItems) == 0 {
		return nil, ErrCartEmpty
	}
	shipping := c.ShippingLine(subtotal, country)
	quote.LineItems = append(quote.LineItems, shipping)
	quote.Subtotal = models.NewMoneyFromDecimal(subtotal)
	quote.Shipping = models.NewMoneyFromMinor(shipping.Total())

	gross := SumLineItems(quote.LineItems)
	quote.GiftCardCode, quote.GiftCardDiscountMinor = applicableGiftCard(giftCardCode, giftCardDiscount, gross)
	quote.TotalMinor = gross - quote.GiftCardDiscountMinor
	return quote, nil
}

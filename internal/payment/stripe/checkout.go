package stripe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// LineItem one checkout line; PriceID wins over inline price data.
type LineItem struct {
	Name        string
	Description string
	UnitAmount  int64
	Quantity    int64
	Currency    string
	PriceID     string
}

// CheckoutSessionInput hosted checkout parameters.
type CheckoutSessionInput struct {
	LineItems           []LineItem
	SuccessURL          string
	CancelURL           string
	CustomerEmail       string
	ClientReferenceID   string
	Locale              string
	CouponID            string
	AllowPromotionCodes bool
	PaymentMethodTypes  []string
	ShippingCountries   []string
	Metadata            map[string]string
}

// CheckoutSession the subset of the session object the shop reads.
type CheckoutSession struct {
	ID                string
	URL               string
	Mode              string
	Status            string
	PaymentStatus     string
	ClientReferenceID string
	CustomerEmail     string
	Currency          string
	AmountTotal       int64
	PaymentIntentID   string
	Metadata          map[string]string
}

// CouponInput one-off amount coupon.
type CouponInput struct {
	Name      string
	AmountOff int64
	Currency  string
	Duration  string
}

// Coupon created coupon.
type Coupon struct {
	ID        string
	AmountOff int64
	Currency  string
}

// CreateCheckoutSession creates a payment-mode checkout session.
func (c *Client) CreateCheckoutSession(ctx context.Context, input CheckoutSessionInput) (*CheckoutSession, error) {
	if len(input.LineItems) == 0 {
		return nil, fmt.Errorf("%w: line_items is empty", ErrConfigInvalid)
	}
	if strings.TrimSpace(input.SuccessURL) == "" || strings.TrimSpace(input.CancelURL) == "" {
		return nil, fmt.Errorf("%w: success_url and cancel_url are required", ErrConfigInvalid)
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", input.SuccessURL)
	form.Set("cancel_url", input.CancelURL)
	if ref := strings.TrimSpace(input.ClientReferenceID); ref != "" {
		form.Set("client_reference_id", ref)
	}
	if email := strings.TrimSpace(input.CustomerEmail); email != "" {
		form.Set("customer_email", email)
	}
	if locale := strings.TrimSpace(input.Locale); locale != "" {
		form.Set("locale", locale)
	}
	for idx, item := range input.LineItems {
		prefix := "line_items[" + strconv.Itoa(idx) + "]"
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		form.Set(prefix+"[quantity]", strconv.FormatInt(quantity, 10))
		if item.PriceID != "" {
			form.Set(prefix+"[price]", item.PriceID)
			continue
		}
		currency := strings.ToLower(strings.TrimSpace(item.Currency))
		if currency == "" {
			currency = "eur"
		}
		form.Set(prefix+"[price_data][currency]", currency)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		if desc := strings.TrimSpace(item.Description); desc != "" {
			form.Set(prefix+"[price_data][product_data][description]", desc)
		}
	}
	if input.CouponID != "" {
		form.Set("discounts[0][coupon]", input.CouponID)
	} else if input.AllowPromotionCodes {
		form.Set("allow_promotion_codes", "true")
	}
	methods := input.PaymentMethodTypes
	if len(methods) == 0 {
		methods = c.cfg.PaymentMethodTypes
	}
	for _, pmType := range methods {
		form.Add("payment_method_types[]", pmType)
	}
	for _, country := range input.ShippingCountries {
		form.Add("shipping_address_collection[allowed_countries][]", strings.ToUpper(country))
	}
	setMetadata(form, "metadata", input.Metadata)
	setMetadata(form, "payment_intent_data[metadata]", input.Metadata)

	raw, err := c.doFormRequest(ctx, http.MethodPost, "/v1/checkout/sessions", form)
	if err != nil {
		return nil, err
	}
	session := parseCheckoutSession(raw)
	if session.ID == "" || session.URL == "" {
		return nil, fmt.Errorf("%w: missing session id or url", ErrResponseInvalid)
	}
	return session, nil
}

// GetCheckoutSession retrieves a session by id.
func (c *Client) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrConfigInvalid)
	}
	raw, err := c.doFormRequest(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, err
	}
	return parseCheckoutSession(raw), nil
}

// CreateCoupon creates a coupon limited to a single redemption.
func (c *Client) CreateCoupon(ctx context.Context, input CouponInput) (*Coupon, error) {
	if input.AmountOff <= 0 {
		return nil, fmt.Errorf("%w: amount_off must be positive", ErrConfigInvalid)
	}
	duration := input.Duration
	if duration == "" {
		duration = "once"
	}
	currency := strings.ToLower(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "eur"
	}
	form := url.Values{}
	form.Set("amount_off", strconv.FormatInt(input.AmountOff, 10))
	form.Set("currency", currency)
	form.Set("duration", duration)
	form.Set("max_redemptions", "1")
	if name := strings.TrimSpace(input.Name); name != "" {
		form.Set("name", name)
	}
	raw, err := c.doFormRequest(ctx, http.MethodPost, "/v1/coupons", form)
	if err != nil {
		return nil, err
	}
	coupon := &Coupon{
		ID:        readString(raw, "id"),
		AmountOff: readInt64(raw, "amount_off"),
		Currency:  readString(raw, "currency"),
	}
	if coupon.ID == "" {
		return nil, fmt.Errorf("%w: missing coupon id", ErrResponseInvalid)
	}
	return coupon, nil
}

// DeleteCoupon removes a coupon that was never attached to a session.
func (c *Client) DeleteCoupon(ctx context.Context, couponID string) error {
	couponID = strings.TrimSpace(couponID)
	if couponID == "" {
		return fmt.Errorf("%w: coupon id is required", ErrConfigInvalid)
	}
	_, err := c.doFormRequest(ctx, http.MethodDelete, "/v1/coupons/"+url.PathEscape(couponID), nil)
	return err
}

func parseCheckoutSession(raw map[string]interface{}) *CheckoutSession {
	session := &CheckoutSession{
		ID:                readString(raw, "id"),
		URL:               readString(raw, "url"),
		Mode:              readString(raw, "mode"),
		Status:            readString(raw, "status"),
		PaymentStatus:     readString(raw, "payment_status"),
		ClientReferenceID: readString(raw, "client_reference_id"),
		CustomerEmail:     readString(raw, "customer_email"),
		Currency:          strings.ToUpper(readString(raw, "currency")),
		AmountTotal:       readInt64(raw, "amount_total"),
		Metadata:          readStringMap(raw, "metadata"),
	}
	session.PaymentIntentID, _ = readExpandable(raw, "payment_intent")
	if session.CustomerEmail == "" {
		session.CustomerEmail = readString(readMap(raw, "customer_details"), "email")
	}
	return session
}

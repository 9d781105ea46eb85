package service

import (
	"errors"
	"fmt"

	"github.com/tourshop/internal/inventory"
	"github.com/tourshop/internal/payment/stripe"
)

// Error classes. Every domain error wraps exactly one of these so the HTTP
// layer can map it with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrUpstream     = errors.New("upstream failure")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = fmt.Errorf("%w: rate limited", ErrUpstream)
)

// storeFailure lifts a repository error into the upstream class so a failed
// database call surfaces as 502 instead of falling through to 500.
func storeFailure(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

// upstreamFailure classifies a processor or inventory error, keeping rate
// limits distinguishable.
func upstreamFailure(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, stripe.ErrRateLimited) || errors.Is(err, inventory.ErrRateLimited) {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

// Admin auth
var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrAdminNotFound      = fmt.Errorf("%w: admin", ErrNotFound)
	ErrPasswordWeak       = fmt.Errorf("%w: password does not meet policy", ErrInvalidState)
	ErrPasswordMismatch   = fmt.Errorf("%w: old password mismatch", ErrInvalidState)
	ErrTokenInvalid       = fmt.Errorf("%w: token invalid", ErrUnauthorized)
)

// Tours and checkout
var (
	ErrTourNotFound          = fmt.Errorf("%w: tour", ErrNotFound)
	ErrTourPriceMissing      = fmt.Errorf("%w: price not available", ErrInvalidState)
	ErrTourInactive          = fmt.Errorf("%w: tour is not bookable", ErrInvalidState)
	ErrTourSlugTaken         = fmt.Errorf("%w: tour slug already used", ErrConflict)
	ErrTourInvalid           = fmt.Errorf("%w: tour fields", ErrInvalidState)
	ErrBookingInvalid        = fmt.Errorf("%w: malformed booking request", ErrInvalidState)
	ErrBookingDateRequired   = fmt.Errorf("%w: booking date required", ErrInvalidState)
	ErrBookingNotFound       = fmt.Errorf("%w: booking", ErrNotFound)
	ErrPendingNotFound       = fmt.Errorf("%w: pending booking", ErrNotFound)
	ErrCheckoutFailed        = fmt.Errorf("%w: checkout session", ErrUpstream)
	ErrCheckoutInconsistent  = fmt.Errorf("%w: checkout session not linked to pending record", ErrUpstream)
	ErrCheckoutPersistFailed = fmt.Errorf("%w: pending record write", ErrUpstream)
	ErrShippingCountry       = fmt.Errorf("%w: shipping country not supported", ErrInvalidState)
)

// Webshop and cart
var (
	ErrWebshopItemNotFound = fmt.Errorf("%w: webshop item", ErrNotFound)
	ErrWebshopItemInvalid  = fmt.Errorf("%w: webshop item", ErrInvalidState)
	ErrCartEmpty           = fmt.Errorf("%w: cart is empty", ErrInvalidState)
	ErrCartSessionMissing  = fmt.Errorf("%w: cart session", ErrNotFound)
)

// Gift cards
var (
	ErrGiftCardNotFound      = fmt.Errorf("%w: gift card", ErrNotFound)
	ErrGiftCardInactive      = fmt.Errorf("%w: gift card is not active", ErrInvalidState)
	ErrGiftCardEmpty         = fmt.Errorf("%w: gift card has no balance", ErrInvalidState)
	ErrGiftCardExpired       = fmt.Errorf("%w: gift card expired", ErrInvalidState)
	ErrGiftCardAmountInvalid = fmt.Errorf("%w: gift card amount", ErrInvalidState)
	ErrGiftCardConflict      = fmt.Errorf("%w: gift card balance changed concurrently", ErrConflict)
	ErrGiftCardCodeExhausted = fmt.Errorf("%w: could not generate a unique gift card code", ErrInvalidState)
)

// Catalog sync, content and profiles
var (
	ErrSyncNotConfigured = fmt.Errorf("%w: inventory platform not configured", ErrInvalidState)
	ErrSyncBrandMissing  = fmt.Errorf("%w: no inventory brand available", ErrInvalidState)
	ErrSyncRunning       = fmt.Errorf("%w: catalog sync already running", ErrConflict)
	ErrContentNotFound   = fmt.Errorf("%w: content item", ErrNotFound)
	ErrContentInvalid    = fmt.Errorf("%w: content item", ErrInvalidState)
	ErrReorderInvalid    = fmt.Errorf("%w: reorder command", ErrInvalidState)
	ErrProfileNotFound   = fmt.Errorf("%w: profile", ErrNotFound)
	ErrProfileInvalid    = fmt.Errorf("%w: profile", ErrInvalidState)
	ErrWebhookSignature  = fmt.Errorf("%w: webhook signature", ErrUnauthorized)
)

// GiftCardStatusError carries the offending status for messages like "gift card is redeemed".
type GiftCardStatusError struct {
	Status string
}

func (e *GiftCardStatusError) Error() string {
	return "gift card is " + e.Status
}

// Unwrap keeps the status error inside the inactive class.
func (e *GiftCardStatusError) Unwrap() error {
	return ErrGiftCardInactive
}

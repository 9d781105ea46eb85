package public

import (
	"errors"

	handlershared "github.com/tourshop/internal/http/handlers/shared"
	"github.com/tourshop/internal/http/response"
	"github.com/tourshop/internal/i18n"
	"github.com/tourshop/internal/service"

	"github.com/gin-gonic/gin"
)

type mappedHandlerError = handlershared.MappedError

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var giftCardErrorRules = []mappedHandlerError{
	{Target: service.ErrGiftCardNotFound, Code: response.CodeNotFound, Key: "error.gift_card_not_found"},
	{Target: service.ErrGiftCardEmpty, Code: response.CodeBadRequest, Key: "error.gift_card_empty"},
	{Target: service.ErrGiftCardExpired, Code: response.CodeBadRequest, Key: "error.gift_card_expired"},
	{Target: service.ErrGiftCardConflict, Code: response.CodeConflict, Key: "error.gift_card_conflict"},
}

var tourCheckoutErrorRules = []mappedHandlerError{
	{Target: service.ErrTourNotFound, Code: response.CodeNotFound, Key: "error.tour_not_found"},
	{Target: service.ErrTourPriceMissing, Code: response.CodeBadRequest, Key: "error.tour_price_missing"},
	{Target: service.ErrTourInactive, Code: response.CodeBadRequest, Key: "error.tour_inactive"},
	{Target: service.ErrBookingDateRequired, Code: response.CodeBadRequest, Key: "error.booking_date_required"},
	{Target: service.ErrBookingInvalid, Code: response.CodeBadRequest, Key: "error.booking_invalid"},
}

var webshopCheckoutErrorRules = []mappedHandlerError{
	{Target: service.ErrWebshopItemNotFound, Code: response.CodeNotFound, Key: "error.webshop_item_not_found"},
	{Target: service.ErrCartEmpty, Code: response.CodeBadRequest, Key: "error.cart_empty"},
	{Target: service.ErrCartSessionMissing, Code: response.CodeNotFound, Key: "error.cart_session_missing"},
	{Target: service.ErrShippingCountry, Code: response.CodeBadRequest, Key: "error.shipping_country"},
}

var checkoutUpstreamErrorRules = []mappedHandlerError{
	{Target: service.ErrCheckoutInconsistent, Code: response.CodeUpstream, Key: "error.checkout_inconsistent"},
	{Target: service.ErrCheckoutFailed, Code: response.CodeUpstream, Key: "error.checkout_failed"},
}

var cartErrorRules = []mappedHandlerError{
	{Target: service.ErrCartSessionMissing, Code: response.CodeNotFound, Key: "error.cart_session_missing"},
	{Target: service.ErrWebshopItemNotFound, Code: response.CodeNotFound, Key: "error.webshop_item_not_found"},
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	handlershared.RespondMappedError(c, err, rules, fallbackCode, fallbackKey)
}

// respondGiftCardError renders "gift card is {status}" for inactive cards.
func respondGiftCardError(c *gin.Context, err error) {
	var statusErr *service.GiftCardStatusError
	if errors.As(err, &statusErr) {
		msg := i18n.Sprintf(i18n.ResolveLocale(c), "error.gift_card_status", statusErr.Status)
		handlershared.RespondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
		return
	}
	respondWithMappedError(c, err, giftCardErrorRules, response.CodeInternal, "error.internal_error")
}

func respondTourCheckoutError(c *gin.Context, err error) {
	var statusErr *service.GiftCardStatusError
	if errors.As(err, &statusErr) {
		respondGiftCardError(c, err)
		return
	}
	rules := concatMappedHandlerErrors(tourCheckoutErrorRules, giftCardErrorRules, checkoutUpstreamErrorRules)
	respondWithMappedError(c, err, rules, response.CodeInternal, "error.checkout_failed")
}

func respondWebshopCheckoutError(c *gin.Context, err error) {
	var statusErr *service.GiftCardStatusError
	if errors.As(err, &statusErr) {
		respondGiftCardError(c, err)
		return
	}
	rules := concatMappedHandlerErrors(webshopCheckoutErrorRules, giftCardErrorRules, checkoutUpstreamErrorRules)
	respondWithMappedError(c, err, rules, response.CodeInternal, "error.checkout_failed")
}

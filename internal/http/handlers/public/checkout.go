package public

import (
	"strings"

	"github.com/tourshop/internal/http/response"
	"github.com/tourshop/internal/models"
	"github.com/tourshop/internal/service"

	"github.com/gin-gonic/gin"
)

const cartSessionHeader = "X-Cart-Session"

// TourCheckoutRequest booking form as posted by the storefront.
type TourCheckoutRequest struct {
	TourID           uint                   `json:"tourId" binding:"required"`
	CustomerName     string                 `json:"customerName"`
	CustomerEmail    string                 `json:"customerEmail" binding:"required"`
	CustomerPhone    string                 `json:"customerPhone"`
	TourDatetime     string                 `json:"tourDatetime"`
	BookingDate      string                 `json:"bookingDate"`
	BookingTime      string                 `json:"bookingTime"`
	NumberOfPeople   int                    `json:"numberOfPeople"`
	Language         string                 `json:"language"`
	SpecialRequests  string                 `json:"specialRequests"`
	UserID           string                 `json:"userId"`
	Locale           string                 `json:"locale"`
	RequestTanguy    bool                   `json:"requestTanguy"`
	ExtraHour        bool                   `json:"extraHour"`
	Answers          map[string]interface{} `json:"answers"`
	Weekend          *bool                  `json:"weekend"`
	Evening          *bool                  `json:"evening"`
	DurationMinutes  *int                   `json:"durationMinutes"`
	Upsells          []service.UpsellItem   `json:"upsells"`
	GiftCardCode     string                 `json:"giftCardCode"`
	GiftCardDiscount models.Money           `json:"giftCardDiscount"`
	ShippingAddress  *models.Address        `json:"shippingAddress"`
}

// WebshopCheckoutItem one requested line.
type WebshopCheckoutItem struct {
	UUID     string `json:"uuid" binding:"required"`
	Quantity int    `json:"quantity"`
}

// WebshopCheckoutRequest webshop order form. Items may be omitted when the
// X-Cart-Session header names a cart.
type WebshopCheckoutRequest struct {
	Items            []WebshopCheckoutItem `json:"items"`
	CustomerName     string                `json:"customerName"`
	CustomerEmail    string                `json:"customerEmail" binding:"required"`
	CustomerPhone    string                `json:"customerPhone"`
	UserID           string                `json:"userId"`
	Locale           string                `json:"locale"`
	GiftCardCode     string                `json:"giftCardCode"`
	GiftCardDiscount models.Money          `json:"giftCardDiscount"`
	ShippingAddress  *models.Address       `json:"shippingAddress"`
}

// CreateTourCheckout opens a hosted checkout session for a tour booking.
func (h *Handler) CreateTourCheckout(c *gin.Context) {
	var req TourCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.CheckoutService.CreateTourCheckout(c.Request.Context(), service.TourCheckoutInput{
		TourID:        req.TourID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Datetime: service.DatetimeInput{
			Combined: req.TourDatetime,
			Date:     req.BookingDate,
			Time:     req.BookingTime,
		},
		NumberOfPeople:   req.NumberOfPeople,
		Language:         strings.TrimSpace(req.Language),
		SpecialRequests:  strings.TrimSpace(req.SpecialRequests),
		UserID:           strings.TrimSpace(req.UserID),
		Locale:           req.Locale,
		Origin:           c.GetHeader("Origin"),
		PersonalGuide:    req.RequestTanguy,
		ExtraHour:        req.ExtraHour,
		Answers:          req.Answers,
		Weekend:          req.Weekend,
		Evening:          req.Evening,
		DurationMinutes:  req.DurationMinutes,
		Upsells:          req.Upsells,
		GiftCardCode:     req.GiftCardCode,
		GiftCardDiscount: req.GiftCardDiscount,
		ShippingAddress:  req.ShippingAddress,
	})
	if err != nil {
		respondTourCheckoutError(c, err)
		return
	}
	response.Success(c, result)
}

// CreateWebshopCheckout opens a hosted checkout session for webshop items.
func (h *Handler) CreateWebshopCheckout(c *gin.Context) {
	var req WebshopCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	ctx := c.Request.Context()
	lines := make([]service.WebshopCheckoutLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, service.WebshopCheckoutLine{ItemUUID: item.UUID, Quantity: item.Quantity})
	}
	cartSession := strings.TrimSpace(c.GetHeader(cartSessionHeader))
	if len(lines) == 0 && cartSession != "" {
		cartLines, err := h.CartService.CheckoutLines(ctx, cartSession)
		if err != nil {
			respondWebshopCheckoutError(c, err)
			return
		}
		lines = cartLines
	}
	if len(lines) == 0 {
		respondError(c, response.CodeBadRequest, "error.cart_empty", nil)
		return
	}

	result, err := h.CheckoutService.CreateWebshopCheckout(ctx, service.WebshopCheckoutInput{
		Lines:            lines,
		CustomerName:     strings.TrimSpace(req.CustomerName),
		CustomerEmail:    req.CustomerEmail,
		CustomerPhone:    strings.TrimSpace(req.CustomerPhone),
		UserID:           strings.TrimSpace(req.UserID),
		ShippingAddress:  req.ShippingAddress,
		Locale:           req.Locale,
		Origin:           c.GetHeader("Origin"),
		GiftCardCode:     req.GiftCardCode,
		GiftCardDiscount: req.GiftCardDiscount,
	})
	if err != nil {
		respondWebshopCheckoutError(c, err)
		return
	}
	response.Success(c, result)
}

package public

import (
	"github.com/tourshop/internal/http/response"
	"github.com/tourshop/internal/models"

	"github.com/gin-gonic/gin"
)

// GiftCardLookupRequest code plus the optional order total for validation.
type GiftCardLookupRequest struct {
	Code       string       `json:"code" binding:"required"`
	OrderTotal models.Money `json:"orderTotal"`
}

// ValidateGiftCard checks a code and reports the amount applicable to the order.
func (h *Handler) ValidateGiftCard(c *gin.Context) {
	var req GiftCardLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	validation, err := h.GiftCardService.Validate(c.Request.Context(), req.Code, req.OrderTotal)
	if err != nil {
		respondGiftCardError(c, err)
		return
	}
	response.Success(c, validation)
}

// GetGiftCardBalance public balance lookup.
func (h *Handler) GetGiftCardBalance(c *gin.Context) {
	var req GiftCardLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	balance, err := h.GiftCardService.Balance(c.Request.Context(), req.Code)
	if err != nil {
		respondGiftCardError(c, err)
		return
	}
	response.Success(c, balance)
}

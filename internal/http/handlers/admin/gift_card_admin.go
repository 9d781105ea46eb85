package admin

import (
	"strings"
	"time"

	handlershared "github.com/tourshop/internal/http/handlers/shared"
	"github.com/tourshop/internal/http/response"
	"github.com/tourshop/internal/models"
	"github.com/tourshop/internal/repository"
	"github.com/tourshop/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateGiftCardRequest manual issue of a gift card.
type CreateGiftCardRequest struct {
	Amount          models.Money `json:"amount"`
	RecipientName   string       `json:"recipient_name"`
	RecipientEmail  string       `json:"recipient_email"`
	PurchaserName   string       `json:"purchaser_name"`
	PurchaserEmail  string       `json:"purchaser_email"`
	PersonalMessage string       `json:"personal_message"`
	ExpiresAt       string       `json:"expires_at"`
}

// UpdateGiftCardRequest partial update; an empty expires_at clears the expiry.
type UpdateGiftCardRequest struct {
	Status          *string `json:"status"`
	ExpiresAt       *string `json:"expires_at"`
	RecipientName   *string `json:"recipient_name"`
	RecipientEmail  *string `json:"recipient_email"`
	PersonalMessage *string `json:"personal_message"`
}

// AdjustGiftCardRequest balance correction.
type AdjustGiftCardRequest struct {
	Delta models.Money `json:"delta"`
	Note  string       `json:"note"`
}

type adminGiftCardItem struct {
	models.GiftCard
	IsExpired bool `json:"is_expired"`
}

var giftCardAdminErrorRules = []handlershared.MappedError{
	{Target: service.ErrGiftCardNotFound, Code: response.CodeNotFound, Key: "error.gift_card_not_found"},
	{Target: service.ErrGiftCardAmountInvalid, Code: response.CodeBadRequest, Key: "error.gift_card_amount_invalid"},
	{Target: service.ErrGiftCardConflict, Code: response.CodeConflict, Key: "error.gift_card_conflict"},
	{Target: service.ErrGiftCardCodeExhausted, Code: response.CodeInternal, Key: "error.gift_card_code_exhausted"},
	{Target: service.ErrGiftCardInactive, Code: response.CodeBadRequest, Key: "error.gift_card_invalid"},
}

// ListGiftCards pages through gift cards.
func (h *Handler) ListGiftCards(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)

	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	cards, total, err := h.GiftCardService.List(c.Request.Context(), repository.GiftCardListFilter{
		Page:        page,
		PageSize:    pageSize,
		Code:        strings.TrimSpace(c.Query("code")),
		Status:      strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Email:       strings.TrimSpace(c.Query("email")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}

	now := time.Now()
	items := make([]adminGiftCardItem, 0, len(cards))
	for _, card := range cards {
		items = append(items, adminGiftCardItem{
			GiftCard:  card,
			IsExpired: card.ExpiresAt != nil && card.ExpiresAt.Before(now),
		})
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// GetGiftCard returns one card with its ledger.
func (h *Handler) GetGiftCard(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	card, err := h.GiftCardService.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, giftCardAdminErrorRules...)
		return
	}
	response.Success(c, card)
}

// CreateGiftCard issues a card with a generated code.
func (h *Handler) CreateGiftCard(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req CreateGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	expiresAt, err := parseTimeNullable(req.ExpiresAt)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	card, err := h.GiftCardService.Create(c.Request.Context(), service.CreateGiftCardInput{
		Amount:          req.Amount,
		RecipientName:   req.RecipientName,
		RecipientEmail:  req.RecipientEmail,
		PurchaserName:   req.PurchaserName,
		PurchaserEmail:  req.PurchaserEmail,
		PersonalMessage: req.PersonalMessage,
		ExpiresAt:       expiresAt,
		CreatedBy:       &adminID,
	})
	if err != nil {
		respondServiceError(c, err, giftCardAdminErrorRules...)
		return
	}
	response.Success(c, card)
}

// UpdateGiftCard changes status, expiry or recipient fields.
func (h *Handler) UpdateGiftCard(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req UpdateGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input := service.UpdateGiftCardInput{
		Status:          req.Status,
		RecipientName:   req.RecipientName,
		RecipientEmail:  req.RecipientEmail,
		PersonalMessage: req.PersonalMessage,
	}
	if req.ExpiresAt != nil {
		if strings.TrimSpace(*req.ExpiresAt) == "" {
			input.ClearExpiresAt = true
		} else {
			parsed, err := parseTimeNullable(*req.ExpiresAt)
			if err != nil {
				respondError(c, response.CodeBadRequest, "error.bad_request", err)
				return
			}
			input.ExpiresAt = parsed
		}
	}

	card, err := h.GiftCardService.Update(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err, giftCardAdminErrorRules...)
		return
	}
	response.Success(c, card)
}

// AdjustGiftCard books a manual balance correction on the ledger.
func (h *Handler) AdjustGiftCard(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req AdjustGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	card, err := h.GiftCardService.Adjust(c.Request.Context(), id, service.AdjustGiftCardInput{
		Delta:     req.Delta,
		Note:      strings.TrimSpace(req.Note),
		CreatedBy: &adminID,
	})
	if err != nil {
		respondServiceError(c, err, giftCardAdminErrorRules...)
		return
	}
	requestLog(c).Infow("admin_gift_card_adjusted",
		"gift_card_id", id,
		"delta", req.Delta.String(),
		"admin_id", adminID,
	)
	response.Success(c, card)
}

// DeleteGiftCard soft-deletes a card.
func (h *Handler) DeleteGiftCard(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.GiftCardService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, giftCardAdminErrorRules...)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

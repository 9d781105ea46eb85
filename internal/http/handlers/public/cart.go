package public

import (
	"strings"

	"github.com/tourshop/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CartItemRequest adds quantity of one webshop item.
type CartItemRequest struct {
	ItemUUID string `json:"item_uuid" binding:"required"`
	Quantity int    `json:"quantity"`
}

func cartSessionID(c *gin.Context) (string, bool) {
	sessionID := strings.TrimSpace(c.GetHeader(cartSessionHeader))
	if sessionID == "" {
		respondError(c, response.CodeBadRequest, "error.cart_session_missing", nil)
		return "", false
	}
	return sessionID, true
}

// OpenCart starts a new cart session; the id goes into X-Cart-Session afterwards.
func (h *Handler) OpenCart(c *gin.Context) {
	view, err := h.CartService.Open(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	c.Header(cartSessionHeader, view.SessionID)
	response.Success(c, view)
}

// GetCart returns the cart named by X-Cart-Session.
func (h *Handler) GetCart(c *gin.Context) {
	sessionID, ok := cartSessionID(c)
	if !ok {
		return
	}
	view, err := h.CartService.Get(c.Request.Context(), sessionID)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.internal_error")
		return
	}
	response.Success(c, view)
}

// AddCartItem increments a line.
func (h *Handler) AddCartItem(c *gin.Context) {
	sessionID, ok := cartSessionID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	view, err := h.CartService.AddItem(c.Request.Context(), sessionID, req.ItemUUID, req.Quantity)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.internal_error")
		return
	}
	response.Success(c, view)
}

// RemoveCartItem drops a line.
func (h *Handler) RemoveCartItem(c *gin.Context) {
	sessionID, ok := cartSessionID(c)
	if !ok {
		return
	}
	view, err := h.CartService.RemoveItem(c.Request.Context(), sessionID, c.Param("uuid"))
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.internal_error")
		return
	}
	response.Success(c, view)
}

// ToggleCartFavorite flips the favorite flag of an item.
func (h *Handler) ToggleCartFavorite(c *gin.Context) {
	sessionID, ok := cartSessionID(c)
	if !ok {
		return
	}
	favorite, err := h.CartService.ToggleFavorite(c.Request.Context(), sessionID, c.Param("uuid"))
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.internal_error")
		return
	}
	response.Success(c, gin.H{"item_uuid": c.Param("uuid"), "favorite": favorite})
}

// CloseCart removes the session, e.g. on logout.
func (h *Handler) CloseCart(c *gin.Context) {
	sessionID, ok := cartSessionID(c)
	if !ok {
		return
	}
	if err := h.CartService.Close(c.Request.Context(), sessionID); err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, gin.H{"closed": true})
}

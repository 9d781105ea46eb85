package admin

import (
	"strings"

	handlershared "github.com/tourshop/internal/http/handlers/shared"
	"github.com/tourshop/internal/http/response"
	"github.com/tourshop/internal/repository"
	"github.com/tourshop/internal/service"

	"github.com/gin-gonic/gin"
)

var webshopAdminErrorRules = []handlershared.MappedError{
	{Target: service.ErrWebshopItemNotFound, Code: response.CodeNotFound, Key: "error.webshop_item_not_found"},
	{Target: service.ErrWebshopItemInvalid, Code: response.CodeBadRequest, Key: "error.webshop_item_invalid"},
}

// ListWebshopItems pages through items, inactive ones included.
func (h *Handler) ListWebshopItems(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	items, total, err := h.WebshopService.List(repository.WebshopItemListFilter{
		Page:     page,
		PageSize: pageSize,
		Category: strings.TrimSpace(c.Query("category")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// GetWebshopItem returns one item by uuid.
func (h *Handler) GetWebshopItem(c *gin.Context) {
	item, err := h.WebshopService.Get(c.Param("uuid"))
	if err != nil {
		respondServiceError(c, err, webshopAdminErrorRules...)
		return
	}
	response.Success(c, item)
}

// CreateWebshopItem adds an item.
func (h *Handler) CreateWebshopItem(c *gin.Context) {
	var req service.WebshopItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := h.WebshopService.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, webshopAdminErrorRules...)
		return
	}
	response.Success(c, item)
}

// UpdateWebshopItem replaces the editable fields of an item.
func (h *Handler) UpdateWebshopItem(c *gin.Context) {
	var req service.WebshopItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := h.WebshopService.Update(c.Request.Context(), c.Param("uuid"), req)
	if err != nil {
		respondServiceError(c, err, webshopAdminErrorRules...)
		return
	}
	response.Success(c, item)
}

// DeleteWebshopItem removes an item.
func (h *Handler) DeleteWebshopItem(c *gin.Context) {
	if err := h.WebshopService.Delete(c.Request.Context(), c.Param("uuid")); err != nil {
		respondServiceError(c, err, webshopAdminErrorRules...)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

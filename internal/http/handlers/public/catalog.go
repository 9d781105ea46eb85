package public

import (
	"strings"

	handlershared "github.com/tourshop/internal/http/handlers/shared"
	"github.com/tourshop/internal/http/response"
	"github.com/tourshop/internal/repository"
	"github.com/tourshop/internal/service"

	"github.com/gin-gonic/gin"
)

var catalogErrorRules = []mappedHandlerError{
	{Target: service.ErrTourNotFound, Code: response.CodeNotFound, Key: "error.tour_not_found"},
	{Target: service.ErrWebshopItemNotFound, Code: response.CodeNotFound, Key: "error.webshop_item_not_found"},
}

// ListTours active tours in display order.
func (h *Handler) ListTours(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	tours, total, err := h.TourService.List(repository.TourListFilter{
		Page:       page,
		PageSize:   pageSize,
		City:       strings.TrimSpace(c.Query("city")),
		Search:     strings.TrimSpace(c.Query("search")),
		OnlyActive: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.SuccessWithPage(c, tours, response.BuildPagination(page, pageSize, total))
}

// GetTour resolves a tour by slug or numeric id.
func (h *Handler) GetTour(c *gin.Context) {
	tour, err := h.TourService.GetPublic(c.Param("id"))
	if err != nil {
		respondWithMappedError(c, err, catalogErrorRules, response.CodeInternal, "error.internal_error")
		return
	}
	response.Success(c, tour)
}

// ListWebshopItems active webshop items, optionally filtered by category.
func (h *Handler) ListWebshopItems(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	items, total, err := h.WebshopService.List(repository.WebshopItemListFilter{
		Page:       page,
		PageSize:   pageSize,
		Category:   strings.TrimSpace(c.Query("category")),
		OnlyActive: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// GetWebshopItem one active item by uuid.
func (h *Handler) GetWebshopItem(c *gin.Context) {
	item, err := h.WebshopService.Get(c.Param("uuid"))
	if err == nil && !item.IsActive {
		err = service.ErrWebshopItemNotFound
	}
	if err != nil {
		respondWithMappedError(c, err, catalogErrorRules, response.CodeInternal, "error.internal_error")
		return
	}
	response.Success(c, item)
}

// ListFAQ active FAQ items.
func (h *Handler) ListFAQ(c *gin.Context) {
	items, err := h.ContentService.ListFAQ(true)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, items)
}

// ListPress active press items.
func (h *Handler) ListPress(c *gin.Context) {
	items, err := h.ContentService.ListPress(true)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, items)
}

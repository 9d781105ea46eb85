package admin

import (
	handlershared "github.com/tourshop/internal/http/handlers/shared"
	"github.com/tourshop/internal/http/response"
	"github.com/tourshop/internal/i18n"
	"github.com/tourshop/internal/service"

	"github.com/gin-gonic/gin"
)

var contentAdminErrorRules = []handlershared.MappedError{
	{Target: service.ErrContentNotFound, Code: response.CodeNotFound, Key: "error.content_not_found"},
	{Target: service.ErrContentInvalid, Code: response.CodeBadRequest, Key: "error.content_invalid"},
	{Target: service.ErrReorderInvalid, Code: response.CodeBadRequest, Key: "error.reorder_invalid"},
}

// ListFAQ lists every FAQ entry in display order.
func (h *Handler) ListFAQ(c *gin.Context) {
	items, err := h.ContentService.ListFAQ(false)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, items)
}

// CreateFAQ appends an FAQ entry.
func (h *Handler) CreateFAQ(c *gin.Context) {
	var req service.FAQInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := h.ContentService.CreateFAQ(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, contentAdminErrorRules...)
		return
	}
	response.Success(c, item)
}

// UpdateFAQ edits an FAQ entry.
func (h *Handler) UpdateFAQ(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req service.FAQInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := h.ContentService.UpdateFAQ(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, contentAdminErrorRules...)
		return
	}
	response.Success(c, item)
}

// DeleteFAQ removes an FAQ entry.
func (h *Handler) DeleteFAQ(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.ContentService.DeleteFAQ(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, contentAdminErrorRules...)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// ListPress lists every press wall entry in display order.
func (h *Handler) ListPress(c *gin.Context) {
	items, err := h.ContentService.ListPress(false)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, items)
}

// CreatePress appends a press entry.
func (h *Handler) CreatePress(c *gin.Context) {
	var req service.PressInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := h.ContentService.CreatePress(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, contentAdminErrorRules...)
		return
	}
	response.Success(c, item)
}

// UpdatePress edits a press entry.
func (h *Handler) UpdatePress(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req service.PressInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := h.ContentService.UpdatePress(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, contentAdminErrorRules...)
		return
	}
	response.Success(c, item)
}

// DeletePress removes a press entry.
func (h *Handler) DeletePress(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.ContentService.DeletePress(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, contentAdminErrorRules...)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// ReorderContent moves one FAQ or press entry. A failed write answers with the
// unchanged server order so the caller can roll its optimistic view back.
func (h *Handler) ReorderContent(c *gin.Context) {
	var req service.ReorderCommand
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.ReorderService.Execute(c.Request.Context(), req)
	if err != nil {
		if result != nil && result.Status == service.ReorderReverted {
			requestLog(c).Errorw("admin_content_reorder_reverted", "kind", req.Kind, "error", err)
			msg := i18n.T(i18n.ResolveLocale(c), "error.internal_error")
			response.ErrorWithData(c, response.CodeInternal, msg, result)
			return
		}
		respondServiceError(c, err, contentAdminErrorRules...)
		return
	}
	response.Success(c, result)
}

package admin

import (
	"strings"

	handlershared "github.com/tourshop/internal/http/handlers/shared"
	"github.com/tourshop/internal/http/response"
	"github.com/tourshop/internal/repository"
	"github.com/tourshop/internal/service"

	"github.com/gin-gonic/gin"
)

var tourAdminErrorRules = []handlershared.MappedError{
	{Target: service.ErrTourNotFound, Code: response.CodeNotFound, Key: "error.tour_not_found"},
	{Target: service.ErrTourSlugTaken, Code: response.CodeConflict, Key: "error.tour_slug_taken"},
	{Target: service.ErrTourInvalid, Code: response.CodeBadRequest, Key: "error.tour_invalid"},
}

// ListTours pages through every tour, inactive ones included.
func (h *Handler) ListTours(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	tours, total, err := h.TourService.List(repository.TourListFilter{
		Page:     page,
		PageSize: pageSize,
		City:     strings.TrimSpace(c.Query("city")),
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.SuccessWithPage(c, tours, response.BuildPagination(page, pageSize, total))
}

// GetTour returns one tour by id.
func (h *Handler) GetTour(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	tour, err := h.TourService.Get(id)
	if err != nil {
		respondServiceError(c, err, tourAdminErrorRules...)
		return
	}
	response.Success(c, tour)
}

// CreateTour adds a tour.
func (h *Handler) CreateTour(c *gin.Context) {
	var req service.TourInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	tour, err := h.TourService.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, tourAdminErrorRules...)
		return
	}
	response.Success(c, tour)
}

// UpdateTour replaces the editable fields of a tour.
func (h *Handler) UpdateTour(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req service.TourInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	tour, err := h.TourService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, tourAdminErrorRules...)
		return
	}
	response.Success(c, tour)
}

// DeleteTour soft-deletes a tour.
func (h *Handler) DeleteTour(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.TourService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, tourAdminErrorRules...)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

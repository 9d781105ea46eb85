package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/tourshop/internal/http/handlers/shared"
	"github.com/tourshop/internal/http/response"
	"github.com/tourshop/internal/repository"
	"github.com/tourshop/internal/service"

	"github.com/gin-gonic/gin"
)

func queryTourID(c *gin.Context) (uint, bool) {
	raw := strings.TrimSpace(c.Query("tour_id"))
	if raw == "" {
		return 0, true
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return 0, false
	}
	return uint(parsed), true
}

// ListPendingBookings pages through checkout attempts that await payment.
func (h *Handler) ListPendingBookings(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	tourID, ok := queryTourID(c)
	if !ok {
		return
	}
	rows, total, err := h.BookingService.ListPending(repository.PendingBookingListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		TourID:   tourID,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// ListBookings pages through confirmed bookings. from and to are Brussels
// local timestamps compared against the tour start.
func (h *Handler) ListBookings(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	tourID, ok := queryTourID(c)
	if !ok {
		return
	}
	rows, total, err := h.BookingService.ListBookings(repository.BookingListFilter{
		Page:     page,
		PageSize: pageSize,
		TourID:   tourID,
		Status:   strings.TrimSpace(c.Query("status")),
		Email:    strings.TrimSpace(c.Query("email")),
		From:     strings.TrimSpace(c.Query("from")),
		To:       strings.TrimSpace(c.Query("to")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetBooking returns one confirmed booking.
func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	booking, err := h.BookingService.GetBooking(id)
	if err != nil {
		respondServiceError(c, err,
			handlershared.MappedError{Target: service.ErrBookingNotFound, Code: response.CodeNotFound, Key: "error.booking_not_found"},
		)
		return
	}
	response.Success(c, booking)
}

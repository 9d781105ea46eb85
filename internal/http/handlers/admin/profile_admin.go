package admin

import (
	"strings"

	handlershared "github.com/tourshop/internal/http/handlers/shared"
	"github.com/tourshop/internal/http/response"
	"github.com/tourshop/internal/repository"
	"github.com/tourshop/internal/service"

	"github.com/gin-gonic/gin"
)

var profileAdminErrorRules = []handlershared.MappedError{
	{Target: service.ErrProfileNotFound, Code: response.CodeNotFound, Key: "error.profile_not_found"},
	{Target: service.ErrProfileInvalid, Code: response.CodeBadRequest, Key: "error.profile_invalid"},
}

// ListProfiles pages through customer profiles.
func (h *Handler) ListProfiles(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	profiles, total, err := h.ProfileService.List(repository.ProfileListFilter{
		Page:      page,
		PageSize:  pageSize,
		Search:    strings.TrimSpace(c.Query("search")),
		OnlyAdmin: c.Query("admin") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.SuccessWithPage(c, profiles, response.BuildPagination(page, pageSize, total))
}

// UpdateProfile patches name, phone, locale or the admin flag.
func (h *Handler) UpdateProfile(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req service.ProfilePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	profile, err := h.ProfileService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, profileAdminErrorRules...)
		return
	}
	response.Success(c, profile)
}

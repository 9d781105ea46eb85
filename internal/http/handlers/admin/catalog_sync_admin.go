package admin

import (
	"strconv"
	"strings"

	"github.com/tourshop/internal/constants"
	handlershared "github.com/tourshop/internal/http/handlers/shared"
	"github.com/tourshop/internal/http/response"
	"github.com/tourshop/internal/service"

	"github.com/gin-gonic/gin"
)

var catalogSyncErrorRules = []handlershared.MappedError{
	{Target: service.ErrSyncNotConfigured, Code: response.CodeBadRequest, Key: "error.sync_not_configured"},
	{Target: service.ErrSyncBrandMissing, Code: response.CodeBadRequest, Key: "error.sync_brand_missing"},
	{Target: service.ErrSyncRunning, Code: response.CodeConflict, Key: "error.sync_running"},
}

// TriggerCatalogSync pushes tours to the inventory platform. With the queue
// enabled the run is enqueued, otherwise it runs inline.
func (h *Handler) TriggerCatalogSync(c *gin.Context) {
	var req service.SyncInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
	}
	req.Trigger = constants.SyncTriggerAdmin

	trigger, err := h.CatalogSyncService.Trigger(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, catalogSyncErrorRules...)
		return
	}
	requestLog(c).Infow("admin_catalog_sync_triggered",
		"username", currentUsername(c),
		"queued", trigger.Queued,
		"product_count", len(req.ProductIDs),
	)
	response.Success(c, trigger)
}

// ListCatalogSyncRuns returns the most recent runs, newest first.
func (h *Handler) ListCatalogSyncRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(strings.TrimSpace(c.DefaultQuery("limit", "20")))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	runs, err := h.CatalogSyncService.ListRuns(limit)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, runs)
}

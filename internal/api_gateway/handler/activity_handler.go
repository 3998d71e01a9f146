package handler

import (
	"log/slog"

	"github.com/bookkeeping-ledger/internal/api_gateway/service"
	"github.com/gin-gonic/gin"
)

// ActivityHandler exposes the audit trail
type ActivityHandler struct {
	activityService service.ActivityService
	logger          *slog.Logger
}

func NewActivityHandler(logger *slog.Logger, activityService service.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		logger:          logger,
	}
}

// List handles GET /logs?page&per_page, newest first
func (h *ActivityHandler) List(c *gin.Context) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	logs, total, err := h.activityService.List(c.Request.Context(), pagination.Page, pagination.PerPage)
	if err != nil {
		respondError(c, h.logger, "List activity logs", err)
		return
	}

	out := make([]ActivityLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, newActivityLogResponse(l))
	}
	RespondWithPaginatedData(c, out, pagination.Page, pagination.PerPage, total)
}

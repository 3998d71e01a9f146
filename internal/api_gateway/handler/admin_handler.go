package handler

import (
	"log/slog"
	"time"

	"github.com/bookkeeping-ledger/internal/api_gateway/service"
	"github.com/gin-gonic/gin"
)

// AdminHandler groups the system maintenance endpoints
type AdminHandler struct {
	maintenanceService service.MaintenanceService
	backupService      service.BackupService
	dashboardService   service.DashboardService
	logger             *slog.Logger
	now                func() time.Time
}

func NewAdminHandler(logger *slog.Logger, maintenanceService service.MaintenanceService, backupService service.BackupService, dashboardService service.DashboardService) *AdminHandler {
	return &AdminHandler{
		maintenanceService: maintenanceService,
		backupService:      backupService,
		dashboardService:   dashboardService,
		logger:             logger,
		now:                func() time.Time { return time.Now().UTC() },
	}
}

// CleanupExpiredUsers handles POST /maintenance/cleanup-expired-users
func (h *AdminHandler) CleanupExpiredUsers(c *gin.Context) {
	result, err := h.maintenanceService.CleanupExpiredUsers(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, h.logger, "Cleanup expired users", err)
		return
	}

	deleted := result.DeletedUsers
	if deleted == nil {
		deleted = []string{}
	}
	RespondOK(c, CleanupResponse{
		DeletedCount: result.DeletedCount,
		DeletedUsers: deleted,
		CleanupTime:  h.now().Format(time.RFC3339),
	})
}

// Backup handles GET /backup/database
func (h *AdminHandler) Backup(c *gin.Context) {
	snapshot, err := h.backupService.Backup(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, h.logger, "Database backup", err)
		return
	}
	RespondOK(c, snapshot)
}

// DashboardStats handles GET /dashboard/stats
func (h *AdminHandler) DashboardStats(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Dashboard stats", err)
		return
	}
	RespondOK(c, newDashboardResponse(stats))
}

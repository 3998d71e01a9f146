package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/bookkeeping-ledger/internal/api_gateway/handler"
	"github.com/bookkeeping-ledger/internal/api_gateway/middleware"
	"github.com/bookkeeping-ledger/internal/domain/access"
	"github.com/gin-gonic/gin"
)

// handlers bundles everything setupRouter mounts
type handlers struct {
	report      *handler.ReportHandler
	transaction *handler.TransactionHandler
	user        *handler.UserHandler
	activity    *handler.ActivityHandler
	export      *handler.ExportHandler
	admin       *handler.AdminHandler
	category    *handler.CategoryHandler
}

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, resolver middleware.UserResolver, h handlers) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	can := middleware.RequireCapability

	v1 := r.Group("/api/v1")
	v1.GET("/categories", h.category.List)

	authed := v1.Group("", middleware.Identity(logger, resolver))
	{
		reports := authed.Group("/reports")
		{
			reports.GET("/profit-loss", can(access.CapFinancialReports), h.report.ProfitLoss)
			reports.GET("/balance-sheet", can(access.CapFinancialReports), h.report.BalanceSheet)
			reports.GET("/cash-flow", can(access.CapFinancialReports), h.report.CashFlow)
			reports.GET("/trends", can(access.CapTrendReport), h.report.Trends)
		}

		transactions := authed.Group("/transactions")
		{
			transactions.POST("", can(access.CapWriteTransactions), h.transaction.Create)
			transactions.GET("", can(access.CapReadTransactions), h.transaction.List)
			transactions.GET("/:id", can(access.CapReadTransactions), h.transaction.GetByID)
			transactions.PUT("/:id", can(access.CapWriteTransactions), h.transaction.Update)
			transactions.DELETE("/:id", can(access.CapDeleteTransactions), h.transaction.Delete)
		}

		users := authed.Group("/users")
		{
			users.GET("", can(access.CapReadUsers), h.user.List)
			users.POST("", can(access.CapManageUsers), h.user.Create)
			users.DELETE("/:id", can(access.CapManageUsers), h.user.Delete)
		}

		authed.GET("/auth/me", h.user.Me)
		authed.GET("/logs", can(access.CapReadActivity), h.activity.List)
		authed.GET("/export/transactions", can(access.CapExportData), h.export.Transactions)
		authed.POST("/maintenance/cleanup-expired-users", can(access.CapMaintenance), h.admin.CleanupExpiredUsers)
		authed.GET("/backup/database", can(access.CapBackup), h.admin.Backup)
		authed.GET("/dashboard/stats", can(access.CapReadDashboard), h.admin.DashboardStats)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}

package handler

import (
	"log/slog"

	"github.com/bookkeeping-ledger/internal/api_gateway/service"
	"github.com/bookkeeping-ledger/internal/reporting"
	"github.com/gin-gonic/gin"
)

// ReportHandler serves the financial reports
type ReportHandler struct {
	reportService service.ReportService
	logger        *slog.Logger
}

func NewReportHandler(logger *slog.Logger, reportService service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// ProfitLoss handles GET /reports/profit-loss?start_date&end_date
func (h *ReportHandler) ProfitLoss(c *gin.Context) {
	start, err := optionalDate(c, "start_date")
	if err != nil {
		RespondBadRequest(c, "Invalid start_date: "+err.Error())
		return
	}
	end, err := optionalDate(c, "end_date")
	if err != nil {
		RespondBadRequest(c, "Invalid end_date: "+err.Error())
		return
	}
	if start != nil && end != nil && start.After(*end) {
		RespondBadRequest(c, reporting.ErrInvalidRange.Error())
		return
	}

	report, err := h.reportService.ProfitLoss(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, h.logger, "Profit and loss report", err)
		return
	}
	RespondOK(c, newProfitLossResponse(report))
}

// BalanceSheet handles GET /reports/balance-sheet
func (h *ReportHandler) BalanceSheet(c *gin.Context) {
	report, err := h.reportService.BalanceSheet(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Balance sheet report", err)
		return
	}
	RespondOK(c, newBalanceSheetResponse(report))
}

// CashFlow handles GET /reports/cash-flow?period. The period defaults to monthly.
func (h *ReportHandler) CashFlow(c *gin.Context) {
	granularity, err := reporting.ParseGranularity(c.DefaultQuery("period", string(reporting.Monthly)))
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	report, err := h.reportService.CashFlow(c.Request.Context(), granularity)
	if err != nil {
		respondError(c, h.logger, "Cash flow report", err)
		return
	}
	RespondOK(c, newCashFlowResponse(report))
}

// Trends handles GET /reports/trends
func (h *ReportHandler) Trends(c *gin.Context) {
	report, err := h.reportService.Trends(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Trends report", err)
		return
	}
	RespondOK(c, newTrendsResponse(report))
}

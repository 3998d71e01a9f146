package handler

import (
	"log/slog"

	"github.com/bookkeeping-ledger/internal/api_gateway/service"
	"github.com/bookkeeping-ledger/internal/domain/transaction"
	"github.com/gin-gonic/gin"
)

// TransactionHandler handles HTTP requests for income and expense records
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// bindDetails decodes and checks a TransactionRequest body
func (h *TransactionHandler) bindDetails(c *gin.Context) (transaction.Details, bool) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return transaction.Details{}, false
	}
	if req.Amount == nil {
		RespondBadRequest(c, "Invalid request body: amount is required")
		return transaction.Details{}, false
	}

	occurredAt, err := parseDate(req.Date)
	if err != nil {
		RespondBadRequest(c, "Invalid date: "+err.Error())
		return transaction.Details{}, false
	}

	return transaction.Details{
		Kind:        transaction.Kind(req.Type),
		Amount:      *req.Amount,
		Category:    req.Category,
		Description: req.Description,
		OccurredAt:  occurredAt,
	}, true
}

// Create handles POST /transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	details, ok := h.bindDetails(c)
	if !ok {
		return
	}

	tx, err := h.transactionService.Create(c.Request.Context(), actorFrom(c), details)
	if err != nil {
		respondError(c, h.logger, "Create transaction", err)
		return
	}
	RespondCreated(c, newTransactionResponse(tx))
}

// GetByID handles GET /transactions/:id
func (h *TransactionHandler) GetByID(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	tx, err := h.transactionService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "Get transaction", err)
		return
	}
	RespondOK(c, newTransactionResponse(tx))
}

// List handles GET /transactions?page&per_page, newest first
func (h *TransactionHandler) List(c *gin.Context) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	txs, total, err := h.transactionService.List(c.Request.Context(), pagination.Page, pagination.PerPage)
	if err != nil {
		respondError(c, h.logger, "List transactions", err)
		return
	}

	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, newTransactionResponse(tx))
	}
	RespondWithPaginatedData(c, out, pagination.Page, pagination.PerPage, total)
}

// Update handles PUT /transactions/:id
func (h *TransactionHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	details, ok := h.bindDetails(c)
	if !ok {
		return
	}

	tx, err := h.transactionService.Update(c.Request.Context(), actorFrom(c), id, details)
	if err != nil {
		respondError(c, h.logger, "Update transaction", err)
		return
	}
	RespondOK(c, newTransactionResponse(tx))
}

// Delete handles DELETE /transactions/:id
func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.transactionService.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, h.logger, "Delete transaction", err)
		return
	}
	RespondNoContent(c)
}

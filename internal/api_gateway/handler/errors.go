package handler

import (
	"errors"
	"log/slog"

	"github.com/bookkeeping-ledger/internal/api_gateway/middleware"
	"github.com/bookkeeping-ledger/internal/api_gateway/service"
	"github.com/bookkeeping-ledger/internal/domain/transaction"
	"github.com/bookkeeping-ledger/internal/domain/user"
	"github.com/bookkeeping-ledger/internal/reporting"
	"github.com/gin-gonic/gin"
)

// invalidInput lists the errors caused by what the caller sent
var invalidInput = []error{
	reporting.ErrInvalidRange,
	reporting.ErrInvalidGranularity,
	transaction.ErrInvalidKind,
	transaction.ErrNegativeAmount,
	transaction.ErrMissingOccurredAt,
	transaction.ErrEmptyCategoryLabel,
	user.ErrEmptyUsername,
	user.ErrInvalidEmail,
	user.ErrEmptyFullName,
	user.ErrInvalidRole,
	service.ErrSelfDeletion,
	service.ErrUnsupportedFormat,
}

// respondError maps a service error onto the envelope. Anything it does not
// recognise is logged and reported as a 500.
func respondError(c *gin.Context, logger *slog.Logger, op string, err error) {
	for _, target := range invalidInput {
		if errors.Is(err, target) {
			RespondBadRequest(c, err.Error())
			return
		}
	}

	var txNotFound transaction.ErrTransactionNotFound
	if errors.As(err, &txNotFound) {
		RespondNotFound(c, "Transaction not found")
		return
	}
	var userNotFound user.ErrUserNotFound
	if errors.As(err, &userNotFound) {
		RespondNotFound(c, "User not found")
		return
	}
	var duplicate user.ErrDuplicateUser
	if errors.As(err, &duplicate) {
		RespondConflict(c, "Username or email already registered")
		return
	}

	logger.Error(op+" failed",
		"error", err,
		"correlation_id", middleware.GetCorrelationID(c),
		"store_unavailable", errors.Is(err, service.ErrStoreUnavailable),
	)
	RespondInternalError(c)
}

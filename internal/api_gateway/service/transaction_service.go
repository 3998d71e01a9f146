package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bookkeeping-ledger/internal/domain/activity"
	"github.com/bookkeeping-ledger/internal/domain/transaction"
	"github.com/google/uuid"
)

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	txRepo   transaction.Repository
	activity ActivityService
	logger   *slog.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(logger *slog.Logger, txRepo transaction.Repository, activitySvc ActivityService) TransactionService {
	return &TransactionServiceImpl{
		txRepo:   txRepo,
		activity: activitySvc,
		logger:   logger,
	}
}

func (s *TransactionServiceImpl) Create(ctx context.Context, actor Actor, details transaction.Details) (*transaction.Transaction, error) {
	tx, err := transaction.New(details, actor.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, storeError("create transaction", err)
	}

	s.logger.Info("Transaction created",
		"transaction_id", tx.ID,
		"kind", tx.Kind,
		"amount", tx.Amount.String(),
		"created_by", actor.UserID,
	)
	s.activity.Record(ctx, actor, activity.ActionTransactionCreated, describe(tx))
	return tx, nil
}

func (s *TransactionServiceImpl) Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	tx, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound{}) {
			return nil, err
		}
		return nil, storeError("get transaction", err)
	}
	return tx, nil
}

func (s *TransactionServiceImpl) List(ctx context.Context, page, perPage int) ([]*transaction.Transaction, int64, error) {
	txs, err := s.txRepo.List(ctx, transaction.Filter{}, transaction.Page{Limit: perPage, Offset: offset(page, perPage)})
	if err != nil {
		return nil, 0, storeError("list transactions", err)
	}

	total, err := s.txRepo.Count(ctx, transaction.Filter{})
	if err != nil {
		return nil, 0, storeError("count transactions", err)
	}
	return txs, total, nil
}

func (s *TransactionServiceImpl) Update(ctx context.Context, actor Actor, id uuid.UUID, details transaction.Details) (*transaction.Transaction, error) {
	tx, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Replace(details); err != nil {
		return nil, err
	}

	if err := s.txRepo.Update(ctx, tx); err != nil {
		// deleted between the read and the write
		if errors.Is(err, transaction.ErrTransactionNotFound{}) {
			return nil, err
		}
		return nil, storeError("update transaction", err)
	}

	s.logger.Info("Transaction updated", "transaction_id", id, "updated_by", actor.UserID)
	s.activity.Record(ctx, actor, activity.ActionTransactionUpdated, describe(tx))
	return tx, nil
}

func (s *TransactionServiceImpl) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := s.txRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound{}) {
			return err
		}
		return storeError("delete transaction", err)
	}

	s.logger.Info("Transaction deleted", "transaction_id", id, "deleted_by", actor.UserID)
	s.activity.Record(ctx, actor, activity.ActionTransactionDeleted, "deleted transaction "+id.String())
	return nil
}

func describe(tx *transaction.Transaction) string {
	return fmt.Sprintf("%s %s %s (%s)", tx.ID, tx.Kind, tx.Amount.StringFixed(2), tx.Category)
}

package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bookkeeping-ledger/internal/domain/transaction"
)

const (
	// TransactionCollectionName is the name of the transaction collection in MongoDB
	TransactionCollectionName = "transactions"

	defaultBatchSize int32 = 500
)

// transactionDocument is the stored shape of a transaction. Amounts are kept
// as Decimal128 so no precision is lost on the way through the driver.
type transactionDocument struct {
	ID          string               `bson:"_id"`
	Kind        string               `bson:"kind"`
	Amount      primitive.Decimal128 `bson:"amount"`
	Category    string               `bson:"category"`
	Description string               `bson:"description"`
	OccurredAt  time.Time            `bson:"occurred_at"`
	CreatedBy   string               `bson:"created_by"`
	RecordedAt  time.Time            `bson:"recorded_at"`
}

func newTransactionDocument(tx *transaction.Transaction) (*transactionDocument, error) {
	amount, err := primitive.ParseDecimal128(tx.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("amount %s does not fit Decimal128: %w", tx.Amount.String(), err)
	}

	return &transactionDocument{
		ID:          tx.ID.String(),
		Kind:        string(tx.Kind),
		Amount:      amount,
		Category:    tx.Category,
		Description: tx.Description,
		OccurredAt:  tx.OccurredAt,
		CreatedBy:   tx.CreatedBy.String(),
		RecordedAt:  tx.RecordedAt,
	}, nil
}

func (d *transactionDocument) toDomain() (*transaction.Transaction, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction id %q: %w", d.ID, err)
	}
	createdBy, err := uuid.Parse(d.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("invalid created_by %q on transaction %s: %w", d.CreatedBy, d.ID, err)
	}
	amount, err := decimal.NewFromString(d.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("invalid amount on transaction %s: %w", d.ID, err)
	}

	return &transaction.Transaction{
		ID:          id,
		Kind:        transaction.Kind(d.Kind),
		Amount:      amount,
		Category:    d.Category,
		Description: d.Description,
		OccurredAt:  d.OccurredAt.UTC(),
		CreatedBy:   createdBy,
		RecordedAt:  d.RecordedAt.UTC(),
	}, nil
}

// rangeFilter builds the occurred_at bounds of f
func rangeFilter(f transaction.Filter) bson.M {
	filter := bson.M{}
	bounds := bson.M{}
	if f.From != nil {
		bounds["$gte"] = *f.From
	}
	if f.To != nil {
		bounds["$lte"] = *f.To
	}
	if len(bounds) > 0 {
		filter["occurred_at"] = bounds
	}
	return filter
}

// sortOrder returns the occurred_at ordering of f. _id breaks ties so paging is stable.
func sortOrder(f transaction.Filter) bson.D {
	direction := -1
	if f.SortAscending {
		direction = 1
	}
	return bson.D{{Key: "occurred_at", Value: direction}, {Key: "_id", Value: direction}}
}

// TransactionRepository implements the transaction.Repository interface for MongoDB
type TransactionRepository struct {
	db        *mongo.Database
	logger    *slog.Logger
	batchSize int32
}

// NewTransactionRepository creates a new MongoDB transaction repository.
// batchSize bounds how many documents each cursor round trip fetches.
func NewTransactionRepository(logger *slog.Logger, db *mongo.Database, batchSize int32) *TransactionRepository {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &TransactionRepository{
		db:        db,
		logger:    logger,
		batchSize: batchSize,
	}
}

var _ transaction.Repository = (*TransactionRepository)(nil)

func (r *TransactionRepository) collection() *mongo.Collection {
	return r.db.Collection(TransactionCollectionName)
}

// EnsureIndexes creates the occurred_at index used by range scans and sorts
func (r *TransactionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "occurred_at", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_by", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create transaction indexes: %w", err)
	}
	return nil
}

// Create stores a new transaction
func (r *TransactionRepository) Create(ctx context.Context, tx *transaction.Transaction) error {
	doc, err := newTransactionDocument(tx)
	if err != nil {
		return err
	}

	if _, err := r.collection().InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to create transaction",
			"transaction_id", tx.ID.String(),
			"error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction. Returns ErrTransactionNotFound if absent.
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	var doc transactionDocument
	err := r.collection().FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, transaction.ErrTransactionNotFound{ID: id}
		}
		r.logger.Error("Failed to get transaction",
			"transaction_id", id.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return doc.toDomain()
}

// Update replaces the stored transaction with tx
func (r *TransactionRepository) Update(ctx context.Context, tx *transaction.Transaction) error {
	doc, err := newTransactionDocument(tx)
	if err != nil {
		return err
	}

	result, err := r.collection().ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		r.logger.Error("Failed to update transaction",
			"transaction_id", tx.ID.String(),
			"error", err)
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	if result.MatchedCount == 0 {
		return transaction.ErrTransactionNotFound{ID: tx.ID}
	}

	return nil
}

// Delete removes a transaction
func (r *TransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		r.logger.Error("Failed to delete transaction",
			"transaction_id", id.String(),
			"error", err)
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	if result.DeletedCount == 0 {
		return transaction.ErrTransactionNotFound{ID: id}
	}

	return nil
}

// List returns one page of transactions, newest first unless the filter asks
// for ascending order
func (r *TransactionRepository) List(ctx context.Context, filter transaction.Filter, page transaction.Page) ([]*transaction.Transaction, error) {
	opts := options.Find().
		SetSort(sortOrder(filter)).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.Limit))

	cursor, err := r.collection().Find(ctx, rangeFilter(filter), opts)
	if err != nil {
		r.logger.Error("Failed to list transactions", "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []transactionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode transactions", "error", err)
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	txs := make([]*transaction.Transaction, 0, len(docs))
	for i := range docs {
		tx, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	return txs, nil
}

// Count counts transactions matching filter
func (r *TransactionRepository) Count(ctx context.Context, filter transaction.Filter) (int64, error) {
	count, err := r.collection().CountDocuments(ctx, rangeFilter(filter))
	if err != nil {
		r.logger.Error("Failed to count transactions", "error", err)
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}

// ForEach walks every matching transaction through a cursor. Errors returned
// by fn stop the walk and are returned unchanged.
func (r *TransactionRepository) ForEach(ctx context.Context, filter transaction.Filter, fn transaction.VisitFunc) error {
	opts := options.Find().SetBatchSize(r.batchSize)
	if filter.SortAscending {
		opts.SetSort(sortOrder(filter))
	}

	cursor, err := r.collection().Find(ctx, rangeFilter(filter), opts)
	if err != nil {
		r.logger.Error("Failed to open transaction cursor", "error", err)
		return fmt.Errorf("failed to open transaction cursor: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc transactionDocument
		if err := cursor.Decode(&doc); err != nil {
			r.logger.Error("Failed to decode transaction", "error", err)
			return fmt.Errorf("failed to decode transaction: %w", err)
		}
		tx, err := doc.toDomain()
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			return err
		}
	}

	if err := cursor.Err(); err != nil {
		r.logger.Error("Transaction cursor failed", "error", err)
		return fmt.Errorf("transaction cursor failed: %w", err)
	}

	return nil
}

package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bookkeeping-ledger/internal/domain/activity"
)

// ActivityCollectionName is the name of the activity log collection in MongoDB
const ActivityCollectionName = "activity_logs"

type activityDocument struct {
	ID            string    `bson:"_id"`
	UserID        string    `bson:"user_id"`
	Action        string    `bson:"action"`
	Details       string    `bson:"details"`
	IPAddress     string    `bson:"ip_address,omitempty"`
	CorrelationID string    `bson:"correlation_id,omitempty"`
	Timestamp     time.Time `bson:"timestamp"`
	RecordedAt    time.Time `bson:"recorded_at"`
}

func newActivityDocument(l *activity.Log) *activityDocument {
	return &activityDocument{
		ID:            l.ID.String(),
		UserID:        l.UserID.String(),
		Action:        string(l.Action),
		Details:       l.Details,
		IPAddress:     l.IPAddress,
		CorrelationID: l.CorrelationID,
		Timestamp:     l.OccurredAt,
		RecordedAt:    l.RecordedAt,
	}
}

func (d *activityDocument) toDomain() (*activity.Log, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid activity id %q: %w", d.ID, err)
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q on activity %s: %w", d.UserID, d.ID, err)
	}

	return &activity.Log{
		ID:            id,
		UserID:        userID,
		Action:        activity.Action(d.Action),
		Details:       d.Details,
		IPAddress:     d.IPAddress,
		CorrelationID: d.CorrelationID,
		OccurredAt:    d.Timestamp.UTC(),
		RecordedAt:    d.RecordedAt.UTC(),
	}, nil
}

// ActivityRepository implements the activity.Repository interface for MongoDB
type ActivityRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewActivityRepository creates a new MongoDB activity log repository
func NewActivityRepository(logger *slog.Logger, db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{
		db:     db,
		logger: logger,
	}
}

var _ activity.Repository = (*ActivityRepository)(nil)

func (r *ActivityRepository) collection() *mongo.Collection {
	return r.db.Collection(ActivityCollectionName)
}

// EnsureIndexes creates the timestamp index used by the newest-first listing
func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create activity indexes: %w", err)
	}
	return nil
}

// Create stores a log. The event id is the document id, so a redelivered
// event yields ErrDuplicateLog.
func (r *ActivityRepository) Create(ctx context.Context, l *activity.Log) error {
	if _, err := r.collection().InsertOne(ctx, newActivityDocument(l)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return activity.ErrDuplicateLog{ID: l.ID}
		}
		r.logger.Error("Failed to record activity",
			"activity_id", l.ID.String(),
			"action", string(l.Action),
			"error", err)
		return fmt.Errorf("failed to record activity: %w", err)
	}

	return nil
}

// List returns logs newest first
func (r *ActivityRepository) List(ctx context.Context, limit, offset int) ([]*activity.Log, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		r.logger.Error("Failed to list activity logs", "error", err)
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []activityDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode activity logs", "error", err)
		return nil, fmt.Errorf("failed to decode activity logs: %w", err)
	}

	logs := make([]*activity.Log, 0, len(docs))
	for i := range docs {
		l, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}

	return logs, nil
}

// Count counts all activity logs
func (r *ActivityRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection().CountDocuments(ctx, bson.M{})
	if err != nil {
		r.logger.Error("Failed to count activity logs", "error", err)
		return 0, fmt.Errorf("failed to count activity logs: %w", err)
	}

	return count, nil
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookkeeping-ledger/internal/domain/activity"
	"github.com/bookkeeping-ledger/internal/domain/transaction"
	"github.com/bookkeeping-ledger/internal/domain/user"
)

const backupPageSize = 500

// SnapshotUploader stores a serialized snapshot and returns where it went
type SnapshotUploader interface {
	Upload(ctx context.Context, name string, body []byte) (string, error)
}

// BackupMetadata describes one snapshot
type BackupMetadata struct {
	CreatedAt        time.Time `json:"created_at"`
	CreatedBy        string    `json:"created_by"`
	UserCount        int       `json:"user_count"`
	TransactionCount int       `json:"transaction_count"`
	ActivityLogCount int       `json:"activity_log_count"`
	Location         string    `json:"location,omitempty"`
}

// Snapshot is a full copy of users, transactions and activity logs. Users
// carry no credentials.
type Snapshot struct {
	Metadata     BackupMetadata             `json:"backup_metadata"`
	Users        []*user.User               `json:"users"`
	Transactions []*transaction.Transaction `json:"transactions"`
	ActivityLogs []*activity.Log            `json:"activity_logs"`
}

// BackupServiceImpl implements the BackupService interface
type BackupServiceImpl struct {
	userRepo user.Repository
	txRepo   transaction.Repository
	logRepo  activity.Repository
	uploader SnapshotUploader // nil keeps snapshots in the response only
	activity ActivityService
	logger   *slog.Logger
	now      func() time.Time
}

func NewBackupService(logger *slog.Logger, userRepo user.Repository, txRepo transaction.Repository, logRepo activity.Repository, uploader SnapshotUploader, activitySvc ActivityService) BackupService {
	return &BackupServiceImpl{
		userRepo: userRepo,
		txRepo:   txRepo,
		logRepo:  logRepo,
		uploader: uploader,
		activity: activitySvc,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *BackupServiceImpl) Backup(ctx context.Context, actor Actor) (*Snapshot, error) {
	snap := &Snapshot{
		Users:        []*user.User{},
		Transactions: []*transaction.Transaction{},
		ActivityLogs: []*activity.Log{},
	}

	for offset := 0; ; offset += backupPageSize {
		page, err := s.userRepo.List(ctx, backupPageSize, offset)
		if err != nil {
			return nil, storeError("read users", err)
		}
		snap.Users = append(snap.Users, page...)
		if len(page) < backupPageSize {
			break
		}
	}

	err := s.txRepo.ForEach(ctx, transaction.Filter{SortAscending: true}, func(tx *transaction.Transaction) error {
		snap.Transactions = append(snap.Transactions, tx)
		return nil
	})
	if err != nil {
		return nil, storeError("read transactions", err)
	}

	for offset := 0; ; offset += backupPageSize {
		page, err := s.logRepo.List(ctx, backupPageSize, offset)
		if err != nil {
			return nil, storeError("read activity logs", err)
		}
		snap.ActivityLogs = append(snap.ActivityLogs, page...)
		if len(page) < backupPageSize {
			break
		}
	}

	createdAt := s.now()
	snap.Metadata = BackupMetadata{
		CreatedAt:        createdAt,
		CreatedBy:        actor.Username,
		UserCount:        len(snap.Users),
		TransactionCount: len(snap.Transactions),
		ActivityLogCount: len(snap.ActivityLogs),
	}

	if s.uploader != nil {
		body, err := json.Marshal(snap)
		if err != nil {
			return nil, fmt.Errorf("encode snapshot: %w", err)
		}
		name := fmt.Sprintf("backup_%s.json", createdAt.Format("20060102_150405"))
		location, err := s.uploader.Upload(ctx, name, body)
		if err != nil {
			return nil, storeError("upload snapshot", err)
		}
		snap.Metadata.Location = location
	}

	s.logger.Info("Backup created",
		"users", snap.Metadata.UserCount,
		"transactions", snap.Metadata.TransactionCount,
		"activity_logs", snap.Metadata.ActivityLogCount,
		"location", snap.Metadata.Location,
	)
	s.activity.Record(ctx, actor, activity.ActionBackupCreated,
		fmt.Sprintf("backup with %d transactions", snap.Metadata.TransactionCount))
	return snap, nil
}

package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bookkeeping-ledger/internal/domain/activity"
	"github.com/bookkeeping-ledger/internal/domain/transaction"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Transactions"

var exportHeader = []string{"id", "kind", "amount", "category", "description", "occurred_at", "created_by"}

// ParseExportFormat returns ErrUnsupportedFormat for anything but json, csv or xlsx
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(s); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type of the format
func (f ExportFormat) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// exportRecord is the flat row written by every format
type exportRecord struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	OccurredAt  string  `json:"occurred_at"`
	CreatedBy   string  `json:"created_by"`
}

func newExportRecord(tx *transaction.Transaction) exportRecord {
	return exportRecord{
		ID:          tx.ID.String(),
		Kind:        string(tx.Kind),
		Amount:      tx.Amount.InexactFloat64(),
		Category:    tx.Category,
		Description: tx.Description,
		OccurredAt:  tx.OccurredAt.Format(time.RFC3339),
		CreatedBy:   tx.CreatedBy.String(),
	}
}

func (r exportRecord) row() []string {
	return []string{r.ID, r.Kind, fmt.Sprintf("%.2f", r.Amount), r.Category, r.Description, r.OccurredAt, r.CreatedBy}
}

// ExportServiceImpl implements the ExportService interface
type ExportServiceImpl struct {
	txRepo   transaction.Repository
	activity ActivityService
	logger   *slog.Logger
}

func NewExportService(logger *slog.Logger, txRepo transaction.Repository, activitySvc ActivityService) ExportService {
	return &ExportServiceImpl{txRepo: txRepo, activity: activitySvc, logger: logger}
}

// Export streams transactions oldest first into w
func (s *ExportServiceImpl) Export(ctx context.Context, actor Actor, format ExportFormat, w io.Writer) error {
	var (
		count int
		err   error
	)
	switch format {
	case FormatJSON:
		count, err = s.exportJSON(ctx, w)
	case FormatCSV:
		count, err = s.exportCSV(ctx, w)
	case FormatXLSX:
		count, err = s.exportXLSX(ctx, w)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		s.logger.Error("Export failed", "format", format, "written", count, "error", err)
		return err
	}

	s.logger.Info("Transactions exported", "format", format, "count", count, "user_id", actor.UserID)
	s.activity.Record(ctx, actor, activity.ActionDataExported, fmt.Sprintf("exported %d transactions as %s", count, format))
	return nil
}

func (s *ExportServiceImpl) each(ctx context.Context, fn func(exportRecord) error) (int, error) {
	count := 0
	var writeErr error
	err := s.txRepo.ForEach(ctx, transaction.Filter{SortAscending: true}, func(tx *transaction.Transaction) error {
		if err := fn(newExportRecord(tx)); err != nil {
			writeErr = err
			return err
		}
		count++
		return nil
	})
	if writeErr != nil {
		return count, fmt.Errorf("write export: %w", writeErr)
	}
	if err != nil {
		return count, storeError("read transactions", err)
	}
	return count, nil
}

func (s *ExportServiceImpl) exportJSON(ctx context.Context, w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	if err := bw.WriteByte('['); err != nil {
		return 0, fmt.Errorf("write export: %w", err)
	}

	first := true
	count, err := s.each(ctx, func(r exportRecord) error {
		body, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if !first {
			if err := bw.WriteByte(','); err != nil {
				return err
			}
		}
		first = false
		_, err = bw.Write(body)
		return err
	})
	if err != nil {
		return count, err
	}

	if err := bw.WriteByte(']'); err != nil {
		return count, fmt.Errorf("write export: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return count, fmt.Errorf("write export: %w", err)
	}
	return count, nil
}

func (s *ExportServiceImpl) exportCSV(ctx context.Context, w io.Writer) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, fmt.Errorf("write export: %w", err)
	}

	count, err := s.each(ctx, func(r exportRecord) error {
		return cw.Write(r.row())
	})
	if err != nil {
		return count, err
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return count, fmt.Errorf("write export: %w", err)
	}
	return count, nil
}

func (s *ExportServiceImpl) exportXLSX(ctx context.Context, w io.Writer) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return 0, fmt.Errorf("prepare workbook: %w", err)
	}
	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return 0, fmt.Errorf("prepare workbook: %w", err)
	}

	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return 0, fmt.Errorf("write export: %w", err)
	}

	rowNum := 1
	count, err := s.each(ctx, func(r exportRecord) error {
		rowNum++
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		return sw.SetRow(cell, []interface{}{r.ID, r.Kind, r.Amount, r.Category, r.Description, r.OccurredAt, r.CreatedBy})
	})
	if err != nil {
		return count, err
	}

	if err := sw.Flush(); err != nil {
		return count, fmt.Errorf("write export: %w", err)
	}
	if err := f.Write(w); err != nil {
		return count, fmt.Errorf("write export: %w", err)
	}
	return count, nil
}

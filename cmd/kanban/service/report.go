package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/floorhand/kanban/common/logger"
	"github.com/floorhand/kanban/common/models"
	"github.com/floorhand/kanban/common/normalize"
)

// ReportLedger is the ledger surface the report needs
type ReportLedger interface {
	ListByFilter(ctx context.Context, model, lotNo string, from, to time.Time) ([]*models.DeliveryRecord, error)
}

// ReportService serves the filtered delivery report. Read-only; timestamps
// stay UTC and any display offset belongs to the client.
type ReportService struct {
	ledger ReportLedger
	log    *logger.Logger
}

// NewReportService creates a new report service
func NewReportService(ledger ReportLedger, log *logger.Logger) *ReportService {
	return &ReportService{ledger: ledger, log: log}
}

// ReportFilter narrows the delivery report. Zero times disable their bound.
type ReportFilter struct {
	Model string
	LotNo string
	From  time.Time
	To    time.Time
}

// ListDeliveries returns delivery records matching the filter, newest first
func (s *ReportService) ListDeliveries(ctx context.Context, filter ReportFilter) ([]*models.DeliveryRecord, error) {
	recs, err := s.ledger.ListByFilter(ctx,
		strings.TrimSpace(filter.Model),
		normalize.Lot(filter.LotNo),
		filter.From,
		filter.To,
	)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	return recs, nil
}

// WriteCSV renders delivery records as a CSV export
func (s *ReportService) WriteCSV(w io.Writer, recs []*models.DeliveryRecord) error {
	cw := csv.NewWriter(w)

	header := []string{"kanban_id", "lot_no", "model", "wire_no",
		"process_from", "process_to", "scanned_by", "created_at", "last_scanned_at"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range recs {
		row := []string{
			rec.KanbanID,
			rec.LotNo,
			rec.Model,
			rec.WireNo,
			rec.ProcessFrom,
			rec.ProcessTo,
			rec.ScannedBy,
			rec.CreatedAt.UTC().Format(time.RFC3339),
			rec.LastScannedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/floorhand/kanban/common/logger"
	"github.com/floorhand/kanban/common/models"
	"github.com/floorhand/kanban/common/normalize"
)

// ErrInvalidRow marks a rejected upload row; the whole upload fails so a
// broken export never half-loads.
var ErrInvalidRow = errors.New("invalid catalog row")

// CatalogWriter is the catalog surface the bulk loader needs
type CatalogWriter interface {
	BulkUpsert(ctx context.Context, cards []*models.KanbanCard) error
}

// CatalogService handles bulk loading of the master catalog. All identifier
// cleanup happens here, before rows reach storage, so every later equality
// comparison works on canonical values.
type CatalogService struct {
	repo CatalogWriter
	log  *logger.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo CatalogWriter, log *logger.Logger) *CatalogService {
	return &CatalogService{repo: repo, log: log}
}

// CatalogRow is one uploaded master row. Length values arrive as exact
// decimals; spreadsheet float artifacts in identifiers are cleaned during
// load.
type CatalogRow struct {
	KanbanID      string          `json:"kanban_id"`
	LotNo         string          `json:"lot_no"`
	Model         string          `json:"model"`
	WireNo        string          `json:"wire_no,omitempty"`
	HarnessPartNo string          `json:"harness_part_no,omitempty"`
	HarnessCode   string          `json:"harness_code,omitempty"`
	CableName     string          `json:"cable_name,omitempty"`
	LengthMM      decimal.Decimal `json:"length_mm,omitempty"`
	JointA        string          `json:"joint_a,omitempty"`
	JointB        string          `json:"joint_b,omitempty"`
	ProcessFrom   string          `json:"process_from,omitempty"`
	ProcessTo     string          `json:"process_to,omitempty"`
	Active        *bool           `json:"active,omitempty"`
}

// BulkReplace normalizes and upserts uploaded rows, keyed on (kanban, lot).
// Duplicate keys within one upload collapse to the last row. Rows missing a
// kanban identifier or lot are a data fault in the upload, rejected whole so
// a broken export never half-loads.
func (s *CatalogService) BulkReplace(ctx context.Context, rows []CatalogRow) (int, error) {
	unique := make(map[models.CardKey]int, len(rows))
	cards := make([]*models.KanbanCard, 0, len(rows))

	for i, row := range rows {
		card := &models.KanbanCard{
			KanbanID:      normalize.Kanban(row.KanbanID),
			LotNo:         normalize.Lot(row.LotNo),
			Model:         strings.TrimSpace(row.Model),
			WireNo:        strings.TrimSpace(row.WireNo),
			HarnessPartNo: strings.TrimSpace(row.HarnessPartNo),
			HarnessCode:   normalize.JoinKey(row.HarnessCode),
			CableName:     strings.TrimSpace(row.CableName),
			LengthMM:      row.LengthMM,
			JointA:        normalize.JoinKey(row.JointA),
			JointB:        normalize.JoinKey(row.JointB),
			ProcessFrom:   strings.TrimSpace(row.ProcessFrom),
			ProcessTo:     strings.TrimSpace(row.ProcessTo),
			Active:        true,
		}
		if row.Active != nil {
			card.Active = *row.Active
		}

		if card.KanbanID == "" {
			return 0, fmt.Errorf("%w: row %d: kanban_id is required", ErrInvalidRow, i)
		}
		if card.LotNo == "" {
			return 0, fmt.Errorf("%w: row %d: lot_no is required", ErrInvalidRow, i)
		}

		if at, ok := unique[card.Key()]; ok {
			cards[at] = card
			continue
		}
		unique[card.Key()] = len(cards)
		cards = append(cards, card)
	}

	if err := s.repo.BulkUpsert(ctx, cards); err != nil {
		return 0, fmt.Errorf("bulk replace catalog: %w", err)
	}

	s.log.Info("catalog bulk load complete", "rows", len(rows), "cards", len(cards))
	return len(cards), nil
}

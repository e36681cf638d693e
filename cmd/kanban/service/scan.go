package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/floorhand/kanban/common/logger"
	"github.com/floorhand/kanban/common/models"
	"github.com/floorhand/kanban/common/normalize"
	"github.com/floorhand/kanban/common/repository"
)

// ScanCatalog is the catalog surface the scan engine needs
type ScanCatalog interface {
	GetByKanbanLot(ctx context.Context, kanbanID, lotNo string) (*models.KanbanCard, error)
	GetByKanban(ctx context.Context, kanbanID string) ([]*models.KanbanCard, error)
}

// ScanLedger is the ledger surface the scan engine needs
type ScanLedger interface {
	ExistsAny(ctx context.Context, keys []models.CardKey) (map[models.CardKey]struct{}, error)
	UpsertBatch(ctx context.Context, recs []*models.DeliveryRecord) (int, error)
}

// ScanService is the scan confirmation engine. Stateless between scans:
// each Confirm call runs lookup → joint resolution → duplicate check →
// ledger write and returns a tagged outcome. Business outcomes (not found,
// already delivered) are values; only infrastructure faults are errors.
type ScanService struct {
	catalog  ScanCatalog
	ledger   ScanLedger
	resolver *JointResolver
	log      *logger.Logger
	now      func() time.Time
}

// ScanServiceOpts contains options for creating a ScanService
type ScanServiceOpts struct {
	Catalog  ScanCatalog
	Ledger   ScanLedger
	Resolver *JointResolver
	Logger   *logger.Logger
	Now      func() time.Time
}

// NewScanService creates a new scan service
func NewScanService(opts *ScanServiceOpts) *ScanService {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &ScanService{
		catalog:  opts.Catalog,
		ledger:   opts.Ledger,
		resolver: opts.Resolver,
		log:      opts.Logger,
		now:      now,
	}
}

// ScanRequest is one scan event from an operator station. Payload is the
// raw QR content, "PARTNO|LOTNO" or a bare kanban identifier.
type ScanRequest struct {
	Payload string `json:"payload"`
	Station string `json:"station,omitempty"`
}

// Confirm processes one scan event
func (s *ScanService) Confirm(ctx context.Context, req *ScanRequest) (*models.ScanOutcome, error) {
	outcome := &models.ScanOutcome{ScanID: uuid.New()}
	log := s.log.WithScanID(outcome.ScanID.String())

	kanbanID, lotNo := splitPayload(req.Payload)
	if kanbanID == "" {
		outcome.Kind = models.ScanEmpty
		return outcome, nil
	}

	card, kind, err := s.lookup(ctx, kanbanID, lotNo)
	if err != nil {
		return nil, err
	}
	if kind != "" {
		outcome.Kind = kind
		log.Info("scan rejected", "kind", kind, "kanban_id", kanbanID, "lot_no", lotNo)
		return outcome, nil
	}

	outcome.Model = card.Model
	outcome.LotNo = card.LotNo

	group, err := s.resolver.Resolve(ctx, card)
	if err != nil {
		return nil, err
	}
	outcome.GroupSize = len(group)

	keys := make([]models.CardKey, len(group))
	for i, member := range group {
		keys[i] = member.Key()
	}

	existing, err := s.ledger.ExistsAny(ctx, keys)
	if err != nil {
		return nil, err
	}

	scannedAt := s.now()
	var toDeliver []*models.DeliveryRecord
	for _, member := range group {
		if _, delivered := existing[member.Key()]; delivered {
			continue
		}
		toDeliver = append(toDeliver, &models.DeliveryRecord{
			KanbanID:      member.KanbanID,
			LotNo:         member.LotNo,
			Model:         member.Model,
			WireNo:        member.WireNo,
			ProcessFrom:   member.ProcessFrom,
			ProcessTo:     member.ProcessTo,
			ScannedBy:     req.Station,
			CreatedAt:     scannedAt,
			LastScannedAt: scannedAt,
		})
	}

	if len(toDeliver) == 0 {
		// Touch the scanned card's timestamp so repeat scans stay visible,
		// then report the duplicate.
		if _, err := s.ledger.UpsertBatch(ctx, []*models.DeliveryRecord{{
			KanbanID:      card.KanbanID,
			LotNo:         card.LotNo,
			Model:         card.Model,
			WireNo:        card.WireNo,
			ProcessFrom:   card.ProcessFrom,
			ProcessTo:     card.ProcessTo,
			ScannedBy:     req.Station,
			CreatedAt:     scannedAt,
			LastScannedAt: scannedAt,
		}}); err != nil {
			return nil, err
		}
		outcome.Kind = models.ScanAlreadyDelivered
		log.Info("scan duplicate",
			"kanban_id", card.KanbanID,
			"lot_no", card.LotNo,
			"group_size", outcome.GroupSize,
		)
		return outcome, nil
	}

	inserted, err := s.ledger.UpsertBatch(ctx, toDeliver)
	if err != nil {
		return nil, err
	}
	if inserted == 0 {
		// A concurrent station beat us to every remaining card between the
		// existence check and the write. The upsert collapsed into
		// timestamp touches, so the group is complete either way.
		outcome.Kind = models.ScanAlreadyDelivered
		log.Info("scan lost duplicate race",
			"kanban_id", card.KanbanID,
			"lot_no", card.LotNo,
		)
		return outcome, nil
	}

	outcome.Kind = models.ScanDelivered
	outcome.Count = inserted
	log.Info("scan delivered",
		"kanban_id", card.KanbanID,
		"lot_no", card.LotNo,
		"count", inserted,
		"group_size", outcome.GroupSize,
		"station", req.Station,
	)
	return outcome, nil
}

// lookup finds the active catalog entry for a scan. A lot-less scan is
// resolved through the identifier alone, but only when it names exactly one
// lot. The returned kind is non-empty for terminal business outcomes.
func (s *ScanService) lookup(ctx context.Context, kanbanID, lotNo string) (*models.KanbanCard, models.ScanOutcomeKind, error) {
	if lotNo != "" {
		card, err := s.catalog.GetByKanbanLot(ctx, kanbanID, lotNo)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.ScanNotFound, nil
		}
		if err != nil {
			return nil, "", fmt.Errorf("lookup kanban: %w", err)
		}
		return card, "", nil
	}

	cards, err := s.catalog.GetByKanban(ctx, kanbanID)
	if err != nil {
		return nil, "", fmt.Errorf("lookup kanban: %w", err)
	}
	switch len(cards) {
	case 0:
		return nil, models.ScanNotFound, nil
	case 1:
		return cards[0], "", nil
	default:
		return nil, models.ScanAmbiguous, nil
	}
}

// splitPayload parses "PARTNO|LOTNO" QR payloads. A payload without the
// separator is a bare kanban identifier.
func splitPayload(payload string) (kanbanID, lotNo string) {
	part, lot, found := strings.Cut(payload, "|")
	kanbanID = normalize.Kanban(part)
	if found {
		lotNo = normalize.Lot(lot)
	}
	return kanbanID, lotNo
}

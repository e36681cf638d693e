package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/floorhand/kanban/common/db"
	"github.com/floorhand/kanban/common/models"
)

const catalogColumns = `kanban_id, lot_no, model, wire_no, harness_part_no, harness_code,
	cable_name, length_mm, joint_a, joint_b, process_from, process_to, active, updated_at`

// CatalogRepository handles database operations for the master catalog
type CatalogRepository struct {
	db *db.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(database *db.DB) *CatalogRepository {
	return &CatalogRepository{db: database}
}

// GetByKanbanLot retrieves the active card with the given composite key.
// Returns ErrNotFound when no active row matches.
func (r *CatalogRepository) GetByKanbanLot(ctx context.Context, kanbanID, lotNo string) (*models.KanbanCard, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM kanban_master
		WHERE kanban_id = $1 AND lot_no = $2 AND active
	`, catalogColumns)

	card, err := scanCard(r.db.QueryRow(ctx, query, kanbanID, lotNo))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	return card, nil
}

// GetByKanban retrieves all active cards with the given kanban identifier,
// across lots. Used for lot-less scans; more than one row means the scan is
// ambiguous.
func (r *CatalogRepository) GetByKanban(ctx context.Context, kanbanID string) ([]*models.KanbanCard, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM kanban_master
		WHERE kanban_id = $1 AND active
	`, catalogColumns)

	return r.queryCards(ctx, query, kanbanID)
}

// ListByLotModel retrieves all active cards in a (model, lot) pair
func (r *CatalogRepository) ListByLotModel(ctx context.Context, model, lotNo string) ([]*models.KanbanCard, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM kanban_master
		WHERE model = $1 AND lot_no = $2 AND active
	`, catalogColumns)

	return r.queryCards(ctx, query, model, lotNo)
}

// ListByJointKey retrieves active cards in a lot whose joint-A key matches
// jointA or whose joint-B key matches jointB. Matching is arm-to-arm only:
// a joint-A value never matches another card's joint-B. An empty key
// disables its arm.
func (r *CatalogRepository) ListByJointKey(ctx context.Context, lotNo, jointA, jointB string) ([]*models.KanbanCard, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM kanban_master
		WHERE lot_no = $1 AND active
		  AND ((joint_a <> '' AND joint_a = $2) OR (joint_b <> '' AND joint_b = $3))
	`, catalogColumns)

	return r.queryCards(ctx, query, lotNo, jointA, jointB)
}

// ListByHarnessCode retrieves active cards sharing a harness code within a lot
func (r *CatalogRepository) ListByHarnessCode(ctx context.Context, lotNo, harnessCode string) ([]*models.KanbanCard, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM kanban_master
		WHERE lot_no = $1 AND harness_code = $2 AND active
	`, catalogColumns)

	return r.queryCards(ctx, query, lotNo, harnessCode)
}

// ListByFilter retrieves active cards, optionally narrowed by model and/or
// lot. Empty filter fields match everything.
func (r *CatalogRepository) ListByFilter(ctx context.Context, model, lotNo string) ([]*models.KanbanCard, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM kanban_master
		WHERE active
		  AND ($1 = '' OR model = $1)
		  AND ($2 = '' OR lot_no = $2)
	`, catalogColumns)

	return r.queryCards(ctx, query, model, lotNo)
}

// BulkUpsert inserts or overwrites catalog rows, keyed on (kanban_id,
// lot_no). This is the write side of the bulk upload; the scan path only
// reads.
func (r *CatalogRepository) BulkUpsert(ctx context.Context, cards []*models.KanbanCard) error {
	if len(cards) == 0 {
		return nil
	}

	query := `
		INSERT INTO kanban_master (kanban_id, lot_no, model, wire_no, harness_part_no,
			harness_code, cable_name, length_mm, joint_a, joint_b, process_from,
			process_to, active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())
		ON CONFLICT (kanban_id, lot_no) DO UPDATE SET
			model = EXCLUDED.model,
			wire_no = EXCLUDED.wire_no,
			harness_part_no = EXCLUDED.harness_part_no,
			harness_code = EXCLUDED.harness_code,
			cable_name = EXCLUDED.cable_name,
			length_mm = EXCLUDED.length_mm,
			joint_a = EXCLUDED.joint_a,
			joint_b = EXCLUDED.joint_b,
			process_from = EXCLUDED.process_from,
			process_to = EXCLUDED.process_to,
			active = EXCLUDED.active,
			updated_at = now()
	`

	batch := &pgx.Batch{}
	for _, card := range cards {
		batch.Queue(query,
			card.KanbanID,
			card.LotNo,
			card.Model,
			card.WireNo,
			card.HarnessPartNo,
			card.HarnessCode,
			card.CableName,
			card.LengthMM,
			card.JointA,
			card.JointB,
			card.ProcessFrom,
			card.ProcessTo,
			card.Active,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range cards {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert catalog row: %w", err)
		}
	}

	return nil
}

func (r *CatalogRepository) queryCards(ctx context.Context, query string, args ...any) ([]*models.KanbanCard, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var cards []*models.KanbanCard
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog rows: %w", err)
	}

	return cards, nil
}

func scanCard(row pgx.Row) (*models.KanbanCard, error) {
	card := &models.KanbanCard{}
	err := row.Scan(
		&card.KanbanID,
		&card.LotNo,
		&card.Model,
		&card.WireNo,
		&card.HarnessPartNo,
		&card.HarnessCode,
		&card.CableName,
		&card.LengthMM,
		&card.JointA,
		&card.JointB,
		&card.ProcessFrom,
		&card.ProcessTo,
		&card.Active,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return card, nil
}

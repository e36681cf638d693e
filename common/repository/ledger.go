package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/floorhand/kanban/common/db"
	"github.com/floorhand/kanban/common/models"
)

// LedgerRepository handles database operations for the delivery ledger.
// A row exists iff the card has been delivered; repeat writes refresh
// last_scanned_at and leave created_at alone.
type LedgerRepository struct {
	db *db.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(database *db.DB) *LedgerRepository {
	return &LedgerRepository{db: database}
}

// Exists reports whether a delivery record exists for the card
func (r *LedgerRepository) Exists(ctx context.Context, kanbanID, lotNo string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM delivery_confirm WHERE kanban_id = $1 AND lot_no = $2
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, kanbanID, lotNo).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check delivery existence: %w", err)
	}

	return exists, nil
}

// ExistsAny returns the subset of keys that already have delivery records,
// in a single round trip. Joint-group duplicate detection depends on this
// being batched.
func (r *LedgerRepository) ExistsAny(ctx context.Context, keys []models.CardKey) (map[models.CardKey]struct{}, error) {
	existing := make(map[models.CardKey]struct{})
	if len(keys) == 0 {
		return existing, nil
	}

	kanbanIDs := make([]string, len(keys))
	lotNos := make([]string, len(keys))
	for i, key := range keys {
		kanbanIDs[i] = key.KanbanID
		lotNos[i] = key.LotNo
	}

	query := `
		SELECT kanban_id, lot_no
		FROM delivery_confirm
		WHERE (kanban_id, lot_no) IN (SELECT * FROM unnest($1::text[], $2::text[]))
	`

	rows, err := r.db.Query(ctx, query, kanbanIDs, lotNos)
	if err != nil {
		return nil, fmt.Errorf("failed to check delivery existence batch: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key models.CardKey
		if err := rows.Scan(&key.KanbanID, &key.LotNo); err != nil {
			return nil, fmt.Errorf("failed to scan delivery key: %w", err)
		}
		existing[key] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating delivery keys: %w", err)
	}

	return existing, nil
}

// upsertQuery makes the write itself decide insert-vs-touch: xmax is zero
// only on a freshly inserted row, so the returned flag is true exactly when
// this call created the record. That makes "first scan wins" atomic at the
// database and concurrent duplicate scans lose cleanly.
const upsertQuery = `
	INSERT INTO delivery_confirm (kanban_id, lot_no, model, wire_no,
		process_from, process_to, scanned_by, created_at, last_scanned_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	ON CONFLICT (kanban_id, lot_no) DO UPDATE SET
		last_scanned_at = EXCLUDED.last_scanned_at
	RETURNING (xmax = 0)
`

// Upsert inserts or touches a single delivery record. Returns true when the
// record was created by this call.
func (r *LedgerRepository) Upsert(ctx context.Context, rec *models.DeliveryRecord) (bool, error) {
	var inserted bool
	err := r.db.QueryRow(ctx, upsertQuery,
		rec.KanbanID,
		rec.LotNo,
		rec.Model,
		rec.WireNo,
		rec.ProcessFrom,
		rec.ProcessTo,
		rec.ScannedBy,
		rec.LastScannedAt,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert delivery: %w", err)
	}

	return inserted, nil
}

// UpsertBatch inserts or touches delivery records and returns how many were
// newly created. Not transactional: each row is individually atomic, and a
// retry of the same scan is safe because rows already written collapse into
// timestamp touches.
func (r *LedgerRepository) UpsertBatch(ctx context.Context, recs []*models.DeliveryRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, rec := range recs {
		batch.Queue(upsertQuery,
			rec.KanbanID,
			rec.LotNo,
			rec.Model,
			rec.WireNo,
			rec.ProcessFrom,
			rec.ProcessTo,
			rec.ScannedBy,
			rec.LastScannedAt,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range recs {
		var fresh bool
		if err := results.QueryRow().Scan(&fresh); err != nil {
			return inserted, fmt.Errorf("failed to upsert delivery batch: %w", err)
		}
		if fresh {
			inserted++
		}
	}

	return inserted, nil
}

// ListByFilter retrieves delivery records for the report screen, newest
// first. Empty model/lot match everything; zero times disable their bound.
func (r *LedgerRepository) ListByFilter(ctx context.Context, model, lotNo string, from, to time.Time) ([]*models.DeliveryRecord, error) {
	query := `
		SELECT kanban_id, lot_no, model, wire_no, process_from, process_to,
			scanned_by, created_at, last_scanned_at
		FROM delivery_confirm
		WHERE ($1 = '' OR model = $1)
		  AND ($2 = '' OR lot_no = $2)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at < $4)
		ORDER BY created_at DESC
	`

	var fromArg, toArg any
	if !from.IsZero() {
		fromArg = from
	}
	if !to.IsZero() {
		toArg = to
	}

	rows, err := r.db.Query(ctx, query, model, lotNo, fromArg, toArg)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}
	defer rows.Close()

	var recs []*models.DeliveryRecord
	for rows.Next() {
		rec := &models.DeliveryRecord{}
		err := rows.Scan(
			&rec.KanbanID,
			&rec.LotNo,
			&rec.Model,
			&rec.WireNo,
			&rec.ProcessFrom,
			&rec.ProcessTo,
			&rec.ScannedBy,
			&rec.CreatedAt,
			&rec.LastScannedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deliveries: %w", err)
	}

	return recs, nil
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/floorhand/kanban/common/logger"
	"github.com/floorhand/kanban/common/models"
	"github.com/floorhand/kanban/common/repository"
)

func testLogger() *logger.Logger {
	return logger.New("error", "json")
}

// fakeCatalog is an in-memory master catalog mirroring the repository's
// matching semantics (active filter, arm-to-arm joint matching).
type fakeCatalog struct {
	cards []*models.KanbanCard
	err   error
	calls int
}

func (f *fakeCatalog) active() []*models.KanbanCard {
	var out []*models.KanbanCard
	for _, c := range f.cards {
		if c.Active {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeCatalog) GetByKanbanLot(ctx context.Context, kanbanID, lotNo string) (*models.KanbanCard, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.active() {
		if c.KanbanID == kanbanID && c.LotNo == lotNo {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCatalog) GetByKanban(ctx context.Context, kanbanID string) ([]*models.KanbanCard, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.KanbanCard
	for _, c := range f.active() {
		if c.KanbanID == kanbanID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ListByLotModel(ctx context.Context, model, lotNo string) ([]*models.KanbanCard, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.KanbanCard
	for _, c := range f.active() {
		if c.Model == model && c.LotNo == lotNo {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ListByJointKey(ctx context.Context, lotNo, jointA, jointB string) ([]*models.KanbanCard, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.KanbanCard
	for _, c := range f.active() {
		if c.LotNo != lotNo {
			continue
		}
		if (jointA != "" && c.JointA == jointA) || (jointB != "" && c.JointB == jointB) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ListByHarnessCode(ctx context.Context, lotNo, harnessCode string) ([]*models.KanbanCard, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.KanbanCard
	for _, c := range f.active() {
		if c.LotNo == lotNo && c.HarnessCode == harnessCode {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ListByFilter(ctx context.Context, model, lotNo string) ([]*models.KanbanCard, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.KanbanCard
	for _, c := range f.active() {
		if (model == "" || c.Model == model) && (lotNo == "" || c.LotNo == lotNo) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCatalog) BulkUpsert(ctx context.Context, cards []*models.KanbanCard) error {
	if f.err != nil {
		return f.err
	}
	f.cards = append(f.cards, cards...)
	return nil
}

// fakeLedger is an in-memory delivery ledger with the repository's
// insert-or-touch semantics.
type fakeLedger struct {
	records map[models.CardKey]*models.DeliveryRecord
	err     error
	// loseRace makes every upsert behave as if a concurrent station
	// inserted the row first: the write touches instead of creating.
	loseRace bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: make(map[models.CardKey]*models.DeliveryRecord)}
}

func (f *fakeLedger) Exists(ctx context.Context, kanbanID, lotNo string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.records[models.CardKey{KanbanID: kanbanID, LotNo: lotNo}]
	return ok, nil
}

func (f *fakeLedger) ExistsAny(ctx context.Context, keys []models.CardKey) (map[models.CardKey]struct{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	existing := make(map[models.CardKey]struct{})
	for _, key := range keys {
		if _, ok := f.records[key]; ok {
			existing[key] = struct{}{}
		}
	}
	return existing, nil
}

func (f *fakeLedger) UpsertBatch(ctx context.Context, recs []*models.DeliveryRecord) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	inserted := 0
	for _, rec := range recs {
		if prev, ok := f.records[rec.Key()]; ok || f.loseRace {
			if prev == nil {
				prev = rec
				f.records[rec.Key()] = prev
			}
			prev.LastScannedAt = rec.LastScannedAt
			continue
		}
		clone := *rec
		f.records[rec.Key()] = &clone
		inserted++
	}
	return inserted, nil
}

func (f *fakeLedger) ListByFilter(ctx context.Context, model, lotNo string, from, to time.Time) ([]*models.DeliveryRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.DeliveryRecord
	for _, rec := range f.records {
		if (model == "" || rec.Model == model) && (lotNo == "" || rec.LotNo == lotNo) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// fakeCache is an in-memory SummaryCache
type fakeCache struct {
	data map[string]string
	sets int
	hits int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, ok := f.data[key]
	if ok {
		f.hits++
	}
	return val, ok, nil
}

func (f *fakeCache) SetWithExpiry(ctx context.Context, key, value string, expiry time.Duration) error {
	f.sets++
	f.data[key] = value
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

var errStorage = errors.New("storage unavailable")

func card(kanbanID, model, lotNo string) *models.KanbanCard {
	return &models.KanbanCard{
		KanbanID: kanbanID,
		Model:    model,
		LotNo:    lotNo,
		Active:   true,
	}
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorhand/kanban/common/config"
	"github.com/floorhand/kanban/common/models"
)

func newScanService(catalog *fakeCatalog, ledger *fakeLedger, strategy config.JointStrategy, now func() time.Time) *ScanService {
	log := testLogger()
	return NewScanService(&ScanServiceOpts{
		Catalog:  catalog,
		Ledger:   ledger,
		Resolver: NewJointResolver(catalog, strategy, log),
		Logger:   log,
		Now:      now,
	})
}

func TestConfirmSoloThenDuplicate(t *testing.T) {
	catalog := &fakeCatalog{cards: []*models.KanbanCard{card("K1", "M", "L1")}}
	ledger := newFakeLedger()

	t0 := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	clock := t0
	svc := newScanService(catalog, ledger, config.JointByField, func() time.Time { return clock })

	outcome, err := svc.Confirm(context.Background(), &ScanRequest{Payload: "K1|L1", Station: "line-3"})
	require.NoError(t, err)
	assert.Equal(t, models.ScanDelivered, outcome.Kind)
	assert.Equal(t, 1, outcome.Count)
	assert.Equal(t, 1, outcome.GroupSize)
	assert.Equal(t, "M", outcome.Model)
	assert.Equal(t, "L1", outcome.LotNo)

	rec := ledger.records[models.CardKey{KanbanID: "K1", LotNo: "L1"}]
	require.NotNil(t, rec)
	assert.Equal(t, "line-3", rec.ScannedBy)
	assert.Equal(t, t0, rec.CreatedAt)

	// repeat scan: idempotent touch, first-created timestamp unchanged
	clock = t0.Add(5 * time.Minute)
	outcome, err = svc.Confirm(context.Background(), &ScanRequest{Payload: "K1|L1"})
	require.NoError(t, err)
	assert.Equal(t, models.ScanAlreadyDelivered, outcome.Kind)
	assert.Equal(t, 1, outcome.GroupSize)

	rec = ledger.records[models.CardKey{KanbanID: "K1", LotNo: "L1"}]
	assert.Equal(t, t0, rec.CreatedAt)
	assert.Equal(t, t0.Add(5*time.Minute), rec.LastScannedAt)
}

func TestConfirmJointGroup(t *testing.T) {
	k1 := card("K1", "M", "L100")
	k1.JointA = "J1"
	k2 := card("K2", "M", "L100")
	k2.JointA = "J1"
	k3 := card("K3", "M", "L100")
	k3.JointA = "J1"

	catalog := &fakeCatalog{cards: []*models.KanbanCard{k1, k2, k3}}
	ledger := newFakeLedger()
	svc := newScanService(catalog, ledger, config.JointByField, nil)

	outcome, err := svc.Confirm(context.Background(), &ScanRequest{Payload: "K1|L100"})
	require.NoError(t, err)
	assert.Equal(t, models.ScanDelivered, outcome.Kind)
	assert.Equal(t, 3, outcome.Count)
	assert.Equal(t, 3, outcome.GroupSize)
	assert.Len(t, ledger.records, 3)

	// any other member of a complete group reports the duplicate
	outcome, err = svc.Confirm(context.Background(), &ScanRequest{Payload: "K2|L100"})
	require.NoError(t, err)
	assert.Equal(t, models.ScanAlreadyDelivered, outcome.Kind)
	assert.Equal(t, 3, outcome.GroupSize)
}

func TestConfirmPartialGroupConverges(t *testing.T) {
	var cards []*models.KanbanCard
	for _, id := range []string{"K1", "K2", "K3", "K4", "K5"} {
		c := card(id, "M", "L1")
		c.JointA = "J1"
		cards = append(cards, c)
	}

	catalog := &fakeCatalog{cards: cards}
	ledger := newFakeLedger()
	// two members already delivered by an earlier partial flow
	now := time.Now().UTC()
	_, err := ledger.UpsertBatch(context.Background(), []*models.DeliveryRecord{
		{KanbanID: "K1", LotNo: "L1", Model: "M", CreatedAt: now, LastScannedAt: now},
		{KanbanID: "K2", LotNo: "L1", Model: "M", CreatedAt: now, LastScannedAt: now},
	})
	require.NoError(t, err)

	svc := newScanService(catalog, ledger, config.JointByField, nil)

	outcome, err := svc.Confirm(context.Background(), &ScanRequest{Payload: "K3|L1"})
	require.NoError(t, err)
	assert.Equal(t, models.ScanDelivered, outcome.Kind)
	assert.Equal(t, 3, outcome.Count)
	assert.Equal(t, 5, outcome.GroupSize)
	assert.Len(t, ledger.records, 5)
}

func TestConfirmNotFound(t *testing.T) {
	catalog := &fakeCatalog{cards: []*models.KanbanCard{card("K1", "M", "L1")}}
	svc := newScanService(catalog, newFakeLedger(), config.JointByField, nil)

	outcome, err := svc.Confirm(context.Background(), &ScanRequest{Payload: "K99|L1"})
	require.NoError(t, err)
	assert.Equal(t, models.ScanNotFound, outcome.Kind)
}

func TestConfirmInactiveCardNotFound(t *testing.T) {
	inactive := card("K1", "M", "L1")
	inactive.Active = false

	catalog := &fakeCatalog{cards: []*models.KanbanCard{inactive}}
	svc := newScanService(catalog, newFakeLedger(), config.JointByField, nil)

	outcome, err := svc.Confirm(context.Background(), &ScanRequest{Payload: "K1|L1"})
	require.NoError(t, err)
	assert.Equal(t, models.ScanNotFound, outcome.Kind)
}

func TestConfirmEmptyPayloadIsNoOp(t *testing.T) {
	catalog := &fakeCatalog{}
	ledger := newFakeLedger()
	svc := newScanService(catalog, ledger, config.JointByField, nil)

	for _, payload := range []string{"", "   ", "|"} {
		outcome, err := svc.Confirm(context.Background(), &ScanRequest{Payload: payload})
		require.NoError(t, err)
		assert.Equal(t, models.ScanEmpty, outcome.Kind, "payload %q", payload)
	}
	assert.Empty(t, ledger.records)
}

func TestConfirmNormalizesPayload(t *testing.T) {
	catalog := &fakeCatalog{cards: []*models.KanbanCard{card("K1", "M", "251205")}}
	ledger := newFakeLedger()
	svc := newScanService(catalog, ledger, config.JointByField, nil)

	// spreadsheet float artifact and stray whitespace on the wire
	outcome, err := svc.Confirm(context.Background(), &ScanRequest{Payload: " k1 |251205.0"})
	require.NoError(t, err)
	assert.Equal(t, models.ScanDelivered, outcome.Kind)
	assert.Contains(t, ledger.records, models.CardKey{KanbanID: "K1", LotNo: "251205"})
}

func TestConfirmBareKanban(t *testing.T) {
	catalog := &fakeCatalog{cards: []*models.KanbanCard{card("K1", "M", "L1")}}
	svc := newScanService(catalog, newFakeLedger(), config.JointByField, nil)

	outcome, err := svc.Confirm(context.Background(), &ScanRequest{Payload: "K1"})
	require.NoError(t, err)
	assert.Equal(t, models.ScanDelivered, outcome.Kind)
}

func TestConfirmBareKanbanAmbiguousAcrossLots(t *testing.T) {
	catalog := &fakeCatalog{cards: []*models.KanbanCard{
		card("K1", "M", "L1"),
		card("K1", "M", "L2"),
	}}
	svc := newScanService(catalog, newFakeLedger(), config.JointByField, nil)

	outcome, err := svc.Confirm(context.Background(), &ScanRequest{Payload: "K1"})
	require.NoError(t, err)
	assert.Equal(t, models.ScanAmbiguous, outcome.Kind)
}

// A solo scan must never touch any other card's status.
func TestConfirmSoloDoesNotAffectNeighbors(t *testing.T) {
	catalog := &fakeCatalog{cards: []*models.KanbanCard{
		card("K1", "M", "L1"),
		card("K2", "M", "L1"),
	}}
	ledger := newFakeLedger()
	svc := newScanService(catalog, ledger, config.JointByField, nil)

	_, err := svc.Confirm(context.Background(), &ScanRequest{Payload: "K1|L1"})
	require.NoError(t, err)
	assert.Len(t, ledger.records, 1)
	assert.NotContains(t, ledger.records, models.CardKey{KanbanID: "K2", LotNo: "L1"})
}

// Two stations racing on the same card: the loser's writes collapse into
// touches and it sees AlreadyDelivered, never an error.
func TestConfirmDuplicateRaceLoser(t *testing.T) {
	catalog := &fakeCatalog{cards: []*models.KanbanCard{card("K1", "M", "L1")}}
	ledger := newFakeLedger()
	ledger.loseRace = true
	svc := newScanService(catalog, ledger, config.JointByField, nil)

	outcome, err := svc.Confirm(context.Background(), &ScanRequest{Payload: "K1|L1"})
	require.NoError(t, err)
	assert.Equal(t, models.ScanAlreadyDelivered, outcome.Kind)
}

func TestConfirmStorageErrorIsNotBusinessOutcome(t *testing.T) {
	catalog := &fakeCatalog{err: errStorage}
	svc := newScanService(catalog, newFakeLedger(), config.JointByField, nil)

	outcome, err := svc.Confirm(context.Background(), &ScanRequest{Payload: "K1|L1"})
	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, errStorage)
}

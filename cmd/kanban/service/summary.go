package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/floorhand/kanban/common/logger"
	"github.com/floorhand/kanban/common/models"
	"github.com/floorhand/kanban/common/normalize"
)

// SummaryCatalog is the catalog surface the aggregator needs
type SummaryCatalog interface {
	ListByFilter(ctx context.Context, model, lotNo string) ([]*models.KanbanCard, error)
}

// SummaryLedger is the ledger surface the aggregator needs
type SummaryLedger interface {
	ExistsAny(ctx context.Context, keys []models.CardKey) (map[models.CardKey]struct{}, error)
}

// SummaryCache is the cache surface the aggregator needs; satisfied by the
// redis client wrapper. A nil cache disables caching.
type SummaryCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetWithExpiry(ctx context.Context, key, value string, expiry time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// SummaryService computes total/sent/remaining counts per (model, lot) by
// joining catalog and ledger. Sent is counted strictly as the delivered
// subset of the catalog total, so remaining is never negative.
type SummaryService struct {
	catalog SummaryCatalog
	ledger  SummaryLedger
	cache   SummaryCache
	ttl     time.Duration
	log     *logger.Logger
}

// SummaryServiceOpts contains options for creating a SummaryService
type SummaryServiceOpts struct {
	Catalog SummaryCatalog
	Ledger  SummaryLedger
	Cache   SummaryCache
	TTL     time.Duration
	Logger  *logger.Logger
}

// NewSummaryService creates a new summary service
func NewSummaryService(opts *SummaryServiceOpts) *SummaryService {
	return &SummaryService{
		catalog: opts.Catalog,
		ledger:  opts.Ledger,
		cache:   opts.Cache,
		ttl:     opts.TTL,
		log:     opts.Logger,
	}
}

// Summarize returns one status row per (model, lot) matching the filter,
// sorted by model then lot.
func (s *SummaryService) Summarize(ctx context.Context, filter models.SummaryFilter) ([]models.StatusRow, error) {
	model := strings.TrimSpace(filter.Model)
	lotNo := normalize.Lot(filter.LotNo)

	cacheKey := summaryCacheKey(model, lotNo)
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, cacheKey); err == nil && ok {
			var rows []models.StatusRow
			if err := json.Unmarshal([]byte(cached), &rows); err == nil {
				return rows, nil
			}
			s.log.Warn("discarding unreadable summary cache entry", "key", cacheKey)
		}
	}

	cards, err := s.catalog.ListByFilter(ctx, model, lotNo)
	if err != nil {
		return nil, fmt.Errorf("summarize catalog: %w", err)
	}

	// Upstream uploads repeat rows; a card counts once per composite key.
	unique := make(map[models.CardKey]*models.KanbanCard, len(cards))
	keys := make([]models.CardKey, 0, len(cards))
	for _, card := range cards {
		if _, ok := unique[card.Key()]; ok {
			continue
		}
		unique[card.Key()] = card
		keys = append(keys, card.Key())
	}

	delivered, err := s.ledger.ExistsAny(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("summarize ledger: %w", err)
	}

	type groupKey struct{ model, lot string }
	groups := make(map[groupKey]*models.StatusRow)
	for key, card := range unique {
		gk := groupKey{model: card.Model, lot: card.LotNo}
		row, ok := groups[gk]
		if !ok {
			row = &models.StatusRow{Model: card.Model, LotNo: card.LotNo}
			groups[gk] = row
		}
		row.Total++
		if _, sent := delivered[key]; sent {
			row.Sent++
		}
	}

	rows := make([]models.StatusRow, 0, len(groups))
	for _, row := range groups {
		row.Remaining = row.Total - row.Sent
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Model != rows[j].Model {
			return rows[i].Model < rows[j].Model
		}
		return rows[i].LotNo < rows[j].LotNo
	})

	if s.cache != nil {
		if payload, err := json.Marshal(rows); err == nil {
			if err := s.cache.SetWithExpiry(ctx, cacheKey, string(payload), s.ttl); err != nil {
				s.log.Warn("summary cache write failed", "key", cacheKey, "error", err)
			}
		}
	}

	return rows, nil
}

// Invalidate drops cached summaries that could include the given (model,
// lot). Called after a delivery so supervisors see fresh counts.
func (s *SummaryService) Invalidate(ctx context.Context, model, lotNo string) {
	if s.cache == nil {
		return
	}
	keys := []string{
		summaryCacheKey("", ""),
		summaryCacheKey(model, ""),
		summaryCacheKey("", lotNo),
		summaryCacheKey(model, lotNo),
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn("summary cache invalidation failed", "error", err)
	}
}

func summaryCacheKey(model, lotNo string) string {
	return fmt.Sprintf("summary:%s:%s", model, lotNo)
}

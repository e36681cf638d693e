package service

import (
	"context"
	"fmt"

	"github.com/floorhand/kanban/common/config"
	"github.com/floorhand/kanban/common/logger"
	"github.com/floorhand/kanban/common/models"
)

// JointCatalog is the catalog surface the resolver needs
type JointCatalog interface {
	ListByLotModel(ctx context.Context, model, lotNo string) ([]*models.KanbanCard, error)
	ListByJointKey(ctx context.Context, lotNo, jointA, jointB string) ([]*models.KanbanCard, error)
	ListByHarnessCode(ctx context.Context, lotNo, harnessCode string) ([]*models.KanbanCard, error)
}

// JointResolver computes the set of sibling cards that must be delivered
// together with a scanned card. The strategy is fixed per deployment.
type JointResolver struct {
	catalog  JointCatalog
	strategy config.JointStrategy
	log      *logger.Logger
}

// NewJointResolver creates a new joint resolver
func NewJointResolver(catalog JointCatalog, strategy config.JointStrategy, log *logger.Logger) *JointResolver {
	return &JointResolver{
		catalog:  catalog,
		strategy: strategy,
		log:      log,
	}
}

// Resolve returns the scanned card's full joint group, the card itself
// included. Cards with no joining field under the active strategy resolve
// solo. Callers must not assume order.
func (r *JointResolver) Resolve(ctx context.Context, card *models.KanbanCard) ([]*models.KanbanCard, error) {
	var (
		siblings []*models.KanbanCard
		err      error
	)

	switch r.strategy {
	case config.JointByLotModel:
		if card.Model == "" || card.LotNo == "" {
			return []*models.KanbanCard{card}, nil
		}
		siblings, err = r.catalog.ListByLotModel(ctx, card.Model, card.LotNo)

	case config.JointByField:
		if !card.HasJointField() {
			return []*models.KanbanCard{card}, nil
		}
		siblings, err = r.catalog.ListByJointKey(ctx, card.LotNo, card.JointA, card.JointB)

	case config.JointByHarnessCode:
		if card.HarnessCode == "" {
			return []*models.KanbanCard{card}, nil
		}
		siblings, err = r.catalog.ListByHarnessCode(ctx, card.LotNo, card.HarnessCode)

	default:
		return nil, fmt.Errorf("unknown joint strategy: %q", r.strategy)
	}

	if err != nil {
		return nil, fmt.Errorf("resolve joint siblings: %w", err)
	}

	// A card may satisfy more than one matching path; dedupe on the
	// composite key. A consistent catalog always returns the scanned card
	// among its own siblings; if it doesn't, degrade to a solo scan rather
	// than fail the line.
	group := make([]*models.KanbanCard, 0, len(siblings)+1)
	seen := make(map[models.CardKey]struct{}, len(siblings)+1)
	for _, sibling := range siblings {
		if _, ok := seen[sibling.Key()]; ok {
			continue
		}
		seen[sibling.Key()] = struct{}{}
		group = append(group, sibling)
	}
	if _, ok := seen[card.Key()]; !ok {
		if len(siblings) > 0 {
			r.log.Warn("scanned card missing from its own joint group",
				"kanban_id", card.KanbanID,
				"lot_no", card.LotNo,
				"strategy", r.strategy,
			)
		}
		group = append(group, card)
	}

	return group, nil
}

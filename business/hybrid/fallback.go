package hybrid

import (
	"context"
	"errors"
	"fmt"

	"hybridRecommender/domain"
	"hybridRecommender/pkg/logger"
)

// Coordinator serves every top-level recommendation call. When the requested
// strategy cannot produce a result it falls back to popularity and records
// why. It never returns an error.
type Coordinator struct {
	store  *SnapshotStore
	ranker *Ranker
	cfg    Config
}

func NewCoordinator(store *SnapshotStore, ranker *Ranker, cfg Config) *Coordinator {
	return &Coordinator{
		store:  store,
		ranker: ranker,
		cfg:    cfg.withDefaults(),
	}
}

// Personalized ranks for the user, falling back to popularity on any
// ranking error or an empty ranked result.
func (c *Coordinator) Personalized(ctx context.Context, userID string, topN int) domain.Outcome {
	snap := c.store.Load()
	if snap == nil {
		return c.served(ctx, domain.StrategyPersonalized, domain.StrategyPopular, []domain.ProductInfo{}, domain.ErrCatalogNotReady)
	}

	items, err := c.ranker.RankForUser(ctx, snap, userID, topN)
	if err == nil && len(items) > 0 {
		return c.served(ctx, domain.StrategyPersonalized, domain.StrategyPersonalized, items, nil)
	}
	if err == nil {
		err = fmt.Errorf("user %q: empty ranking: %w", userID, domain.ErrNoCandidates)
	}

	return c.served(ctx, domain.StrategyPersonalized, domain.StrategyPopular, Popular(snap, topN, c.cfg.PopularityHeadFactor), err)
}

// Similar returns products sharing the target's category. Only an unknown
// target falls back to popularity; an empty match list is a valid result.
func (c *Coordinator) Similar(ctx context.Context, productID string, topN int) domain.Outcome {
	snap := c.store.Load()
	if snap == nil {
		return c.served(ctx, domain.StrategySimilar, domain.StrategyPopular, []domain.ProductInfo{}, domain.ErrCatalogNotReady)
	}

	items, err := snap.Catalog.Similar(productID, topN)
	if err != nil {
		return c.served(ctx, domain.StrategySimilar, domain.StrategyPopular, Popular(snap, topN, c.cfg.PopularityHeadFactor), err)
	}

	return c.served(ctx, domain.StrategySimilar, domain.StrategySimilar, items, nil)
}

func (c *Coordinator) Popular(ctx context.Context, topN int) domain.Outcome {
	items := Popular(c.store.Load(), topN, c.cfg.PopularityHeadFactor)
	return c.served(ctx, domain.StrategyPopular, domain.StrategyPopular, items, nil)
}

func (c *Coordinator) served(
	ctx context.Context,
	requested, strategy domain.Strategy,
	items []domain.ProductInfo,
	reason error,
) domain.Outcome {

	StrategyServedTotal.WithLabelValues(string(strategy), ReasonLabel(reason)).Inc()

	if reason != nil {
		logger.Info("recommend_fallback",
			"trace_id", TraceIDFromContext(ctx),
			"requested", requested,
			"served", strategy,
			"items", len(items),
			"reason", reason.Error(),
		)
	}

	return domain.Outcome{
		Requested:      requested,
		Strategy:       strategy,
		Items:          items,
		FallbackReason: reason,
	}
}

// ReasonLabel maps a fallback reason to a low-cardinality metric label.
func ReasonLabel(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, domain.ErrUnknownUser):
		return "unknown_user"
	case errors.Is(err, domain.ErrUnknownProduct):
		return "unknown_product"
	case errors.Is(err, domain.ErrNoCandidates):
		return "no_candidates"
	case errors.Is(err, domain.ErrCatalogNotReady):
		return "catalog_not_ready"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "context"
	default:
		return "error"
	}
}

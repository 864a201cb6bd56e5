package recommendation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hybridRecommender/business/hybrid"
	"hybridRecommender/business/interaction"
	"hybridRecommender/domain"
	"hybridRecommender/pkg/logger"

	"gorm.io/datatypes"
)

// ---- Repository interfaces ----

type InteractionRepository interface {
	FindAllEvents(ctx context.Context) ([]domain.InteractionEvent, error)
}

type RecommendationLogRepository interface {
	SaveLog(ctx context.Context, log domain.RecommendationLog) error
}

type RecommendationCache interface {
	GetOutcome(ctx context.Context, key string) (domain.CachedOutcome, bool, error)
	SetOutcome(ctx context.Context, key string, outcome domain.CachedOutcome, ttl time.Duration) error
}

// Purger drops state derived from a previous snapshot, e.g. memoized
// predictions keyed by dense indices.
type Purger interface {
	Purge()
}

type Config struct {
	Hybrid      hybrid.Config
	SearchLimit int
	CacheTTL    time.Duration
}

// ReloadStats describes the snapshot produced by a reload.
type ReloadStats struct {
	Version      string        `json:"version"`
	Events       int           `json:"events"`
	Dropped      int           `json:"dropped"`
	Interactions int           `json:"interactions"`
	Users        int           `json:"users"`
	Products     int           `json:"products"`
	WithBrand    int           `json:"with_brand"`
	WithPrice    int           `json:"with_price"`
	Took         time.Duration `json:"took_ns"`
}

// ---- Usecase / Service ----

type Service struct {
	interactionRepo InteractionRepository
	logRepo         RecommendationLogRepository
	cache           RecommendationCache
	purgers         []Purger

	store       *hybrid.SnapshotStore
	ranker      *hybrid.Ranker
	coordinator *hybrid.Coordinator
	cfg         Config

	reloadMu sync.Mutex
}

// NewRecommendationService wires the service. logRepo, cache and purgers are
// optional.
func NewRecommendationService(
	interactionRepo InteractionRepository,
	logRepo RecommendationLogRepository,
	cache RecommendationCache,
	ranker *hybrid.Ranker,
	cfg Config,
	purgers ...Purger,
) *Service {
	store := hybrid.NewSnapshotStore()
	return &Service{
		interactionRepo: interactionRepo,
		logRepo:         logRepo,
		cache:           cache,
		purgers:         purgers,
		store:           store,
		ranker:          ranker,
		coordinator:     hybrid.NewCoordinator(store, ranker, cfg.Hybrid),
		cfg:             cfg,
	}
}

// Reload reads every interaction, builds a new snapshot and swaps it in.
// Readers keep the old snapshot until the swap; a failed reload leaves it
// in place.
func (s *Service) Reload(ctx context.Context) (ReloadStats, error) {
	if err := ctx.Err(); err != nil {
		return ReloadStats{}, fmt.Errorf("context error: %w", err)
	}

	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()

	events, err := s.interactionRepo.FindAllEvents(ctx)
	if err != nil {
		logger.Error("failed to load interactions", err)
		return ReloadStats{}, fmt.Errorf("load interactions: %w", err)
	}

	records, dropped := interaction.FromEvents(events)

	snap, err := hybrid.BuildSnapshot(records, s.cfg.SearchLimit)
	if err != nil {
		logger.Error("failed to build snapshot", err)
		return ReloadStats{}, err
	}

	s.store.Swap(snap)
	for _, p := range s.purgers {
		p.Purge()
	}

	catalogStats := snap.Catalog.Stats()
	stats := ReloadStats{
		Version:      snap.Version,
		Events:       len(events),
		Dropped:      dropped,
		Interactions: snap.Interactions,
		Users:        snap.Users.Len(),
		Products:     catalogStats.Products,
		WithBrand:    catalogStats.WithBrand,
		WithPrice:    catalogStats.WithPrice,
		Took:         time.Since(start),
	}

	logger.Info("catalog_reloaded",
		"trace_id", hybrid.TraceIDFromContext(ctx),
		"version", stats.Version,
		"events", stats.Events,
		"dropped", stats.Dropped,
		"interactions", stats.Interactions,
		"users", stats.Users,
		"products", stats.Products,
		"with_brand", stats.WithBrand,
		"with_price", stats.WithPrice,
		"took", stats.Took.String(),
	)

	return stats, nil
}

// Snapshot returns the snapshot currently served, or nil before the first
// successful reload.
func (s *Service) Snapshot() *hybrid.Snapshot {
	return s.store.Load()
}

// RecommendForUser serves personalized recommendations, falling back to
// popularity. Only a cancelled context is returned as an error.
func (s *Service) RecommendForUser(ctx context.Context, userID string, topN int) (domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.Outcome{}, fmt.Errorf("context error: %w", err)
	}
	topN = s.cfg.Hybrid.ClampTopN(topN)
	userID = domain.KeyOf(userID)

	var key string
	if snap := s.store.Load(); snap != nil {
		key = fmt.Sprintf("reco:%s:user:%s:n:%d", snap.Version, userID, topN)
		if out, ok := s.cached(ctx, key); ok {
			s.audit(ctx, userID, topN, out, true)
			return out, nil
		}
	}

	out := s.coordinator.Personalized(ctx, userID, topN)

	if key != "" {
		s.remember(ctx, key, out)
	}
	s.audit(ctx, userID, topN, out, false)

	return out, nil
}

// DebugRecommendForUser exposes the component scores behind a personalized
// ranking. Unlike RecommendForUser it does not fall back.
func (s *Service) DebugRecommendForUser(ctx context.Context, userID string, topN int) (domain.DebugRanking, error) {
	if err := ctx.Err(); err != nil {
		return domain.DebugRanking{}, fmt.Errorf("context error: %w", err)
	}

	snap := s.store.Load()
	if snap == nil {
		return domain.DebugRanking{}, domain.ErrCatalogNotReady
	}

	return s.ranker.DebugRankForUser(ctx, snap, userID, s.cfg.Hybrid.ClampTopN(topN))
}

func (s *Service) Similar(ctx context.Context, productID string, topN int) (domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.Outcome{}, fmt.Errorf("context error: %w", err)
	}
	topN = s.cfg.Hybrid.ClampTopN(topN)
	productID = domain.KeyOf(productID)

	out := s.coordinator.Similar(ctx, productID, topN)
	s.audit(ctx, productID, topN, out, false)

	return out, nil
}

func (s *Service) Popular(ctx context.Context, topN int) (domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.Outcome{}, fmt.Errorf("context error: %w", err)
	}

	return s.coordinator.Popular(ctx, s.cfg.Hybrid.ClampTopN(topN)), nil
}

func (s *Service) Search(ctx context.Context, term string) ([]domain.ProductInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	snap := s.store.Load()
	if snap == nil {
		return nil, domain.ErrCatalogNotReady
	}

	return snap.Catalog.Search(term), nil
}

// ProductInfo never reports an unknown product; it resolves to the
// unknown-product sentinel instead.
func (s *Service) ProductInfo(ctx context.Context, productID string) (domain.ProductInfo, error) {
	if err := ctx.Err(); err != nil {
		return domain.ProductInfo{}, fmt.Errorf("context error: %w", err)
	}

	snap := s.store.Load()
	if snap == nil {
		return domain.ProductInfo{}, domain.ErrCatalogNotReady
	}

	return snap.Catalog.GetOrDefault(productID), nil
}

// ---- best-effort side effects ----

func (s *Service) cached(ctx context.Context, key string) (domain.Outcome, bool) {
	if s.cache == nil {
		return domain.Outcome{}, false
	}

	c, ok, err := s.cache.GetOutcome(ctx, key)
	if err != nil {
		logger.Warn("recommendation cache read failed", "key", key, err)
		return domain.Outcome{}, false
	}
	if !ok {
		return domain.Outcome{}, false
	}

	out := domain.Outcome{
		Requested: c.Requested,
		Strategy:  c.Strategy,
		Items:     c.Items,
	}
	if c.Reason != "" {
		out.FallbackReason = errors.New(c.Reason)
	}
	if out.Items == nil {
		out.Items = []domain.ProductInfo{}
	}
	return out, true
}

func (s *Service) remember(ctx context.Context, key string, out domain.Outcome) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return
	}

	err := s.cache.SetOutcome(ctx, key, domain.CachedOutcome{
		Requested: out.Requested,
		Strategy:  out.Strategy,
		Items:     out.Items,
		Reason:    out.Reason(),
	}, s.cfg.CacheTTL)
	if err != nil {
		logger.Warn("recommendation cache write failed", "key", key, err)
	}
}

func (s *Service) audit(ctx context.Context, subject string, topN int, out domain.Outcome, cacheHit bool) {
	if s.logRepo == nil {
		return
	}

	version := ""
	if snap := s.store.Load(); snap != nil {
		version = snap.Version
	}

	err := s.logRepo.SaveLog(ctx, domain.RecommendationLog{
		Subject:   subject,
		Requested: string(out.Requested),
		Strategy:  string(out.Strategy),
		Reason:    out.Reason(),
		ItemCount: len(out.Items),
		Context: datatypes.JSONMap{
			"trace_id":  hybrid.TraceIDFromContext(ctx),
			"top_n":     topN,
			"snapshot":  version,
			"cache_hit": cacheHit,
		},
	})
	if err != nil {
		logger.Warn("failed to save recommendation log", "subject", subject, err)
	}
}

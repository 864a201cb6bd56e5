package hybrid

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"hybridRecommender/domain"
	"hybridRecommender/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const (
	predictorCollaborative = "collaborative"
	predictorNeural        = "neural"
)

// CollaborativePredictor estimates a rating from the latent-factor model.
type CollaborativePredictor interface {
	Predict(ctx context.Context, user, item int) (float64, error)
}

// NeuralPredictor estimates ratings for a batch of (user, item) pairs, one
// score per pair in input order.
type NeuralPredictor interface {
	PredictBatch(ctx context.Context, pairs []domain.PredictionPair) ([]float64, error)
}

// Ranker scores sampled candidates for a user and returns the best ones.
// It never falls back to another strategy; that is the Coordinator's job.
type Ranker struct {
	collaborative CollaborativePredictor
	neural        NeuralPredictor
	sampler       *Sampler
	cfg           Config
}

func NewRanker(
	collaborative CollaborativePredictor,
	neural NeuralPredictor,
	sampler *Sampler,
	cfg Config,
) *Ranker {
	cfg = cfg.withDefaults()
	if sampler == nil {
		sampler = NewSampler(cfg.Seed)
	}
	return &Ranker{
		collaborative: collaborative,
		neural:        neural,
		sampler:       sampler,
		cfg:           cfg,
	}
}

// candidateOutcome is either a scored candidate or the reason it was skipped.
type candidateOutcome struct {
	scored domain.ScoredCandidate
	err    error
}

// RankForUser returns at most topN products ordered by descending blended
// score. An unknown user fails with domain.ErrUnknownUser. A user with no
// unseen items gets an empty result.
func (r *Ranker) RankForUser(
	ctx context.Context,
	snap *Snapshot,
	userID string,
	topN int,
) ([]domain.ProductInfo, error) {

	run, err := r.rank(ctx, snap, userID)
	if err != nil {
		return nil, err
	}
	if run.Sampled > 0 && len(run.Scored) == 0 {
		return nil, fmt.Errorf("user %q: %w", userID, domain.ErrNoCandidates)
	}

	ranked := run.Scored
	if topN <= 0 {
		return []domain.ProductInfo{}, nil
	}
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	out := make([]domain.ProductInfo, 0, len(ranked))
	for _, c := range ranked {
		info := snap.Catalog.GetOrDefault(c.ProductID)
		info.Score = c.BlendedScore
		out = append(out, info)
	}

	return out, nil
}

// DebugRankForUser exposes every scored and skipped candidate, ranked but
// not truncated.
func (r *Ranker) DebugRankForUser(
	ctx context.Context,
	snap *Snapshot,
	userID string,
	topN int,
) (domain.DebugRanking, error) {

	run, err := r.rank(ctx, snap, userID)
	if err != nil {
		return domain.DebugRanking{}, err
	}
	run.TopN = topN
	return run, nil
}

func (r *Ranker) rank(ctx context.Context, snap *Snapshot, userID string) (domain.DebugRanking, error) {
	if err := ctx.Err(); err != nil {
		return domain.DebugRanking{}, fmt.Errorf("context error: %w", err)
	}
	if snap == nil {
		return domain.DebugRanking{}, domain.ErrCatalogNotReady
	}

	userID = domain.KeyOf(userID)
	user, err := snap.Users.Encode(userID)
	if err != nil {
		return domain.DebugRanking{}, fmt.Errorf("%w: %w", domain.ErrUnknownUser, err)
	}

	seen := snap.Index.ItemsSeenBy(user)
	candidates := r.sampler.Sample(seen, snap.Index.UniverseSize(), r.cfg.SampleSize)

	logger.Debug("hybrid_rank",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", userID,
		"user_index", user,
		"seen", len(seen),
		"sampled", len(candidates),
		"snapshot", snap.Version,
	)

	outcomes, err := r.scoreCandidates(ctx, snap, user, candidates)
	if err != nil {
		return domain.DebugRanking{}, err
	}

	run := domain.DebugRanking{
		UserID:     userID,
		UserIndex:  user,
		SeenCount:  len(seen),
		Sampled:    len(candidates),
		Scored:     make([]domain.ScoredCandidate, 0, len(outcomes)),
		Skipped:    []domain.SkippedCandidate{},
		SnapshotID: snap.Version,
	}

	for i, o := range outcomes {
		if o.err != nil {
			CandidatesSkippedTotal.WithLabelValues("scoring_failure").Inc()
			logger.Warn("hybrid_candidate_skipped",
				"trace_id", TraceIDFromContext(ctx),
				"user_id", userID,
				"item_index", candidates[i],
				o.err,
			)
			run.Skipped = append(run.Skipped, domain.SkippedCandidate{
				ItemIndex: candidates[i],
				Reason:    o.err.Error(),
			})
			continue
		}
		run.Scored = append(run.Scored, o.scored)
	}

	// stable: ties keep sampling order
	slices.SortStableFunc(run.Scored, func(a, b domain.ScoredCandidate) int {
		return cmp.Compare(b.BlendedScore, a.BlendedScore)
	})

	return run, nil
}

// scoreCandidates scores every candidate in parallel. Each result lands at
// its candidate's position, so output order does not depend on scheduling.
func (r *Ranker) scoreCandidates(
	ctx context.Context,
	snap *Snapshot,
	user int,
	candidates []int,
) ([]candidateOutcome, error) {

	outcomes := make([]candidateOutcome, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.MaxParallel)

	for i, item := range candidates {
		g.Go(func() error {
			outcomes[i] = r.scoreCandidate(gctx, snap, user, item)
			return nil
		})
	}

	// candidate failures are carried in outcomes, never returned
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	return outcomes, nil
}

func (r *Ranker) scoreCandidate(ctx context.Context, snap *Snapshot, user, item int) candidateOutcome {
	productID, err := snap.Items.Decode(item)
	if err != nil {
		return candidateOutcome{err: fmt.Errorf("%w: %w", domain.ErrCandidateScoring, err)}
	}

	collab := r.predictCollaborative(ctx, user, item)
	neural := r.predictNeural(ctx, user, item)

	return candidateOutcome{scored: domain.ScoredCandidate{
		ItemIndex:          item,
		ProductID:          productID,
		CollaborativeScore: valueOr(collab, r.cfg.NeutralScore),
		CollaborativeOK:    collab.Available,
		NeuralScore:        valueOr(neural, r.cfg.NeutralScore),
		NeuralOK:           neural.Available,
		BlendedScore:       r.cfg.Blend(collab, neural),
	}}
}

func (r *Ranker) predictCollaborative(ctx context.Context, user, item int) Prediction {
	if r.collaborative == nil {
		return r.unavailable(ctx, predictorCollaborative, domain.ErrPredictionUnavailable)
	}

	cctx, cancel := context.WithTimeout(ctx, r.cfg.PredictionTimeout)
	defer cancel()

	v, err := r.collaborative.Predict(cctx, user, item)
	if err != nil {
		return r.unavailable(ctx, predictorCollaborative, err)
	}
	return Predicted(v)
}

func (r *Ranker) predictNeural(ctx context.Context, user, item int) Prediction {
	if r.neural == nil {
		return r.unavailable(ctx, predictorNeural, domain.ErrPredictionUnavailable)
	}

	cctx, cancel := context.WithTimeout(ctx, r.cfg.PredictionTimeout)
	defer cancel()

	scores, err := r.neural.PredictBatch(cctx, []domain.PredictionPair{{UserIndex: user, ItemIndex: item}})
	if err != nil {
		return r.unavailable(ctx, predictorNeural, err)
	}
	if len(scores) != 1 {
		return r.unavailable(ctx, predictorNeural,
			fmt.Errorf("%w: got %d scores for 1 pair", domain.ErrPredictionUnavailable, len(scores)))
	}
	return Predicted(scores[0])
}

func (r *Ranker) unavailable(ctx context.Context, predictor string, err error) Prediction {
	PredictionUnavailableTotal.WithLabelValues(predictor).Inc()
	logger.Debug("hybrid_prediction_unavailable",
		"trace_id", TraceIDFromContext(ctx),
		"predictor", predictor,
		err,
	)
	return Unavailable()
}

func valueOr(p Prediction, neutral float64) float64 {
	if p.Available {
		return p.Value
	}
	return neutral
}

package hybrid

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hybridRecommender/business/catalog"
	"hybridRecommender/business/interaction"
	"hybridRecommender/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func pricePtr(p float64) *float64 { return &p }

func rec(user, item string, rating float64, brand *string, price *float64) domain.Interaction {
	return domain.Interaction{
		UserID: user,
		ItemID: item,
		Rating: rating,
		Metadata: domain.ProductMetadataFragment{
			ItemID:   item,
			Category: strPtr("electronics.smartphone"),
			Brand:    brand,
			Price:    price,
		},
	}
}

// five items, "1" is the most popular and "2" and "5" carry no brand or price
func fixtureRecords() []domain.Interaction {
	return []domain.Interaction{
		rec("u1", "1", 1, strPtr("apple"), pricePtr(999)),
		rec("u1", "2", 3, nil, nil),
		rec("u2", "1", 5, nil, nil),
		rec("u2", "3", 1, strPtr("samsung"), nil),
		rec("u3", "1", 1, nil, nil),
		rec("u3", "4", 3, nil, pricePtr(50)),
		rec("u3", "5", 1, nil, nil),
	}
}

func fixtureSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := BuildSnapshot(fixtureRecords(), 0)
	require.NoError(t, err)
	return snap
}

// item-indexed scores: item i predicts i+1
type indexCollab struct {
	calls atomic.Int64
}

func (p *indexCollab) Predict(_ context.Context, _, item int) (float64, error) {
	p.calls.Add(1)
	return float64(item + 1), nil
}

type indexNeural struct{}

func (indexNeural) PredictBatch(_ context.Context, pairs []domain.PredictionPair) ([]float64, error) {
	out := make([]float64, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, float64(p.ItemIndex+1))
	}
	return out, nil
}

type failingCollab struct{}

func (failingCollab) Predict(context.Context, int, int) (float64, error) {
	return 0, domain.ErrPredictionUnavailable
}

type failingNeural struct{}

func (failingNeural) PredictBatch(context.Context, []domain.PredictionPair) ([]float64, error) {
	return nil, errors.New("model server down")
}

// blocks until the per-call deadline fires
type slowCollab struct{}

func (slowCollab) Predict(ctx context.Context, _, _ int) (float64, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func newStore(snap *Snapshot) *SnapshotStore {
	s := NewSnapshotStore()
	s.Swap(snap)
	return s
}

// ---- blender ----

func TestBlend_Linear(t *testing.T) {
	for _, tc := range []struct{ c, n float64 }{{1, 5}, {5, 1}, {3.3, 4.1}, {2, 2}} {
		assert.InDelta(t, 0.4*tc.c+0.6*tc.n, Blend(Predicted(tc.c), Predicted(tc.n)), 1e-12)
	}
}

func TestBlend_NeutralSubstitution(t *testing.T) {
	assert.InDelta(t, 0.4*3.0+0.6*4.0, Blend(Unavailable(), Predicted(4)), 1e-12)
	assert.InDelta(t, 0.4*2.0+0.6*3.0, Blend(Predicted(2), Unavailable()), 1e-12)
	assert.InDelta(t, 3.0, Blend(Unavailable(), Unavailable()), 1e-12)
}

func TestPredicted_NonFiniteIsUnavailable(t *testing.T) {
	assert.False(t, Predicted(nan()).Available)
	assert.True(t, Predicted(0).Available)
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}

// ---- sampler ----

func TestSampler_ExcludesSeenAndSizesToEligible(t *testing.T) {
	s := NewSampler(42)
	seen := map[int]struct{}{0: {}, 3: {}, 7: {}, 99: {}} // 99 lies outside the universe

	cases := []struct {
		universe, size, want int
	}{
		{universe: 10, size: 5, want: 5},
		{universe: 10, size: 100, want: 7},
		{universe: 3, size: 100, want: 2},
		{universe: 0, size: 100, want: 0},
		{universe: 10, size: 0, want: 0},
	}

	for _, tc := range cases {
		got := s.Sample(seen, tc.universe, tc.size)
		require.Len(t, got, tc.want)

		distinct := make(map[int]struct{}, len(got))
		for _, item := range got {
			assert.NotContains(t, seen, item)
			assert.GreaterOrEqual(t, item, 0)
			assert.Less(t, item, tc.universe)
			distinct[item] = struct{}{}
		}
		assert.Len(t, distinct, len(got))
	}
}

func TestSampler_SeedIsReproducible(t *testing.T) {
	a := NewSampler(7).Sample(nil, 1000, 20)
	b := NewSampler(7).Sample(nil, 1000, 20)

	assert.Equal(t, a, b)
}

func TestSampler_ConcurrentCallers(t *testing.T) {
	s := NewSampler(1)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Len(t, s.Sample(nil, 200, 50), 50)
		}()
	}
	wg.Wait()
}

// ---- snapshot ----

func TestBuildSnapshot_DedupesAndVersions(t *testing.T) {
	records := append(fixtureRecords(), rec("u1", "1", 5, nil, nil))

	snap, err := BuildSnapshot(records, 0)
	require.NoError(t, err)

	assert.Equal(t, 7, snap.Interactions)
	assert.Equal(t, 3, snap.Users.Len())
	assert.Equal(t, 5, snap.Items.Len())
	assert.Equal(t, 5, snap.Catalog.Len())
	assert.Equal(t, fixtureSnapshot(t).Version, snap.Version)

	other, err := BuildSnapshot(fixtureRecords()[:3], 0)
	require.NoError(t, err)
	assert.NotEqual(t, snap.Version, other.Version)
}

func TestSnapshotStore_Swap(t *testing.T) {
	store := NewSnapshotStore()
	assert.Nil(t, store.Load())

	first := fixtureSnapshot(t)
	assert.Nil(t, store.Swap(first))

	second := fixtureSnapshot(t)
	assert.Same(t, first, store.Swap(second))
	assert.Same(t, second, store.Load())
}

// ---- ranking ----

func TestRankForUser_OrdersByBlendedScore(t *testing.T) {
	snap := fixtureSnapshot(t)
	collab := &indexCollab{}
	r := NewRanker(collab, indexNeural{}, NewSampler(3), DefaultConfig())

	got, err := r.RankForUser(context.Background(), snap, "u1", 2)
	require.NoError(t, err)

	// u1 saw "1" and "2"; "5" and "4" score highest among the rest
	require.Len(t, got, 2)
	assert.Equal(t, "5", got[0].ProductID)
	assert.Equal(t, "4", got[1].ProductID)
	assert.InDelta(t, 5.0, got[0].Score, 1e-12)
	assert.InDelta(t, 4.0, got[1].Score, 1e-12)
	assert.Equal(t, int64(3), collab.calls.Load())
}

func TestRankForUser_LengthAndMonotoneScores(t *testing.T) {
	snap := fixtureSnapshot(t)
	r := NewRanker(&indexCollab{}, indexNeural{}, NewSampler(9), DefaultConfig())

	for _, topN := range []int{1, 2, 10} {
		got, err := r.RankForUser(context.Background(), snap, "u2", topN)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(got), topN)

		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
		}
	}
}

func TestRankForUser_UnknownUser(t *testing.T) {
	r := NewRanker(&indexCollab{}, indexNeural{}, NewSampler(1), DefaultConfig())

	_, err := r.RankForUser(context.Background(), fixtureSnapshot(t), "ghost", 5)

	assert.True(t, errors.Is(err, domain.ErrUnknownUser))
	assert.True(t, errors.Is(err, domain.ErrUnknownIdentifier))
}

func TestRankForUser_FailedPredictorsUseNeutralScore(t *testing.T) {
	collabBefore := testutil.ToFloat64(PredictionUnavailableTotal.WithLabelValues(predictorCollaborative))
	neuralBefore := testutil.ToFloat64(PredictionUnavailableTotal.WithLabelValues(predictorNeural))

	r := NewRanker(failingCollab{}, indexNeural{}, NewSampler(1), DefaultConfig())
	got, err := r.RankForUser(context.Background(), fixtureSnapshot(t), "u1", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 0.4*3.0+0.6*5.0, got[0].Score, 1e-12)

	r = NewRanker(failingCollab{}, failingNeural{}, NewSampler(1), DefaultConfig())
	got, err = r.RankForUser(context.Background(), fixtureSnapshot(t), "u1", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, item := range got {
		assert.InDelta(t, 3.0, item.Score, 1e-12)
	}

	assert.Equal(t, collabBefore+6, testutil.ToFloat64(PredictionUnavailableTotal.WithLabelValues(predictorCollaborative)))
	assert.Equal(t, neuralBefore+3, testutil.ToFloat64(PredictionUnavailableTotal.WithLabelValues(predictorNeural)))
}

func TestRankForUser_TimeoutIsUnavailable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PredictionTimeout = 5 * time.Millisecond
	r := NewRanker(slowCollab{}, indexNeural{}, NewSampler(1), cfg)

	got, err := r.RankForUser(context.Background(), fixtureSnapshot(t), "u1", 1)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "5", got[0].ProductID)
	assert.InDelta(t, 0.4*3.0+0.6*5.0, got[0].Score, 1e-12)
}

func TestRankForUser_TiesKeepSamplingOrder(t *testing.T) {
	snap := fixtureSnapshot(t)
	cfg := DefaultConfig()
	cfg.MaxParallel = 4

	u, err := snap.Users.Encode("u1")
	require.NoError(t, err)
	order := NewSampler(11).Sample(snap.Index.ItemsSeenBy(u), snap.Index.UniverseSize(), cfg.SampleSize)

	r := NewRanker(failingCollab{}, failingNeural{}, NewSampler(11), cfg)
	got, err := r.RankForUser(context.Background(), snap, "u1", 10)
	require.NoError(t, err)

	require.Len(t, got, len(order))
	for i, item := range order {
		id, err := snap.Items.Decode(item)
		require.NoError(t, err)
		assert.Equal(t, id, got[i].ProductID)
	}
}

func TestDebugRankForUser_SkipsUndecodableCandidates(t *testing.T) {
	records := fixtureRecords()
	users := interaction.NewEncoder([]string{"u1", "u2", "u3"})
	allItems := interaction.NewEncoder([]string{"1", "2", "3", "4", "5"})
	index, err := interaction.NewIndex(records, users, allItems)
	require.NoError(t, err)

	// the item encoder lags the index: indices 3 and 4 cannot be decoded
	snap := &Snapshot{
		Catalog: catalog.Build(interaction.Fragments(records)),
		Users:   users,
		Items:   interaction.NewEncoder([]string{"1", "2", "3"}),
		Index:   index,
		Version: "test",
	}

	skippedBefore := testutil.ToFloat64(CandidatesSkippedTotal.WithLabelValues("scoring_failure"))
	r := NewRanker(&indexCollab{}, indexNeural{}, NewSampler(5), DefaultConfig())

	run, err := r.DebugRankForUser(context.Background(), snap, "u1", 10)
	require.NoError(t, err)

	assert.Equal(t, 3, run.Sampled)
	assert.Equal(t, 2, run.SeenCount)
	require.Len(t, run.Scored, 1)
	assert.Equal(t, "3", run.Scored[0].ProductID)
	assert.True(t, run.Scored[0].CollaborativeOK)
	assert.True(t, run.Scored[0].NeuralOK)
	require.Len(t, run.Skipped, 2)
	for _, s := range run.Skipped {
		assert.Contains(t, s.Reason, domain.ErrCandidateScoring.Error())
	}
	assert.Equal(t, skippedBefore+2, testutil.ToFloat64(CandidatesSkippedTotal.WithLabelValues("scoring_failure")))

	items, err := r.RankForUser(context.Background(), snap, "u1", 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "samsung Smartphone", items[0].ProductName)
}

func TestRankForUser_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRanker(&indexCollab{}, indexNeural{}, NewSampler(1), DefaultConfig())
	_, err := r.RankForUser(ctx, fixtureSnapshot(t), "u1", 5)

	assert.True(t, errors.Is(err, context.Canceled))
}

// ---- popularity ----

func TestPopular_FiltersIncompleteAndDedupes(t *testing.T) {
	got := Popular(fixtureSnapshot(t), 3, 3)

	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ProductID)
	}
	assert.Equal(t, []string{"1", "3", "4"}, ids)
	assert.Equal(t, 3.0, got[0].Score)
}

func TestPopular_ScansOnlyTheHead(t *testing.T) {
	snap, err := BuildSnapshot([]domain.Interaction{
		rec("u1", "x", 1, nil, nil),
		rec("u2", "x", 1, nil, nil),
		rec("u3", "y", 1, strPtr("acme"), nil),
	}, 0)
	require.NoError(t, err)

	// "y" qualifies but lies past the single-item head
	assert.Empty(t, Popular(snap, 1, 1))
	assert.Len(t, Popular(snap, 1, 2), 1)
}

func TestPopular_NoSnapshot(t *testing.T) {
	assert.Empty(t, Popular(nil, 5, 3))
}

// ---- coordinator ----

func TestCoordinator_UnknownUserFallsBackToPopular(t *testing.T) {
	before := testutil.ToFloat64(StrategyServedTotal.WithLabelValues("popular", "unknown_user"))
	snap := fixtureSnapshot(t)
	c := NewCoordinator(newStore(snap), NewRanker(&indexCollab{}, indexNeural{}, NewSampler(1), DefaultConfig()), DefaultConfig())

	out := c.Personalized(context.Background(), "ghost", 2)

	assert.Equal(t, domain.StrategyPersonalized, out.Requested)
	assert.Equal(t, domain.StrategyPopular, out.Strategy)
	assert.True(t, errors.Is(out.FallbackReason, domain.ErrUnknownUser))
	assert.Equal(t, Popular(snap, 2, 3), out.Items)
	assert.NotEmpty(t, out.Items)
	assert.Equal(t, before+1, testutil.ToFloat64(StrategyServedTotal.WithLabelValues("popular", "unknown_user")))
}

func TestCoordinator_PersonalizedServesRanking(t *testing.T) {
	c := NewCoordinator(newStore(fixtureSnapshot(t)), NewRanker(&indexCollab{}, indexNeural{}, NewSampler(1), DefaultConfig()), DefaultConfig())

	out := c.Personalized(context.Background(), "u1", 2)

	assert.Equal(t, domain.StrategyPersonalized, out.Strategy)
	assert.NoError(t, out.FallbackReason)
	assert.Len(t, out.Items, 2)
}

func TestCoordinator_EmptyRankingFallsBack(t *testing.T) {
	snap, err := BuildSnapshot([]domain.Interaction{
		rec("u1", "1", 1, strPtr("acme"), nil),
		rec("u1", "2", 1, nil, pricePtr(10)),
	}, 0)
	require.NoError(t, err)
	c := NewCoordinator(newStore(snap), NewRanker(&indexCollab{}, indexNeural{}, NewSampler(1), DefaultConfig()), DefaultConfig())

	out := c.Personalized(context.Background(), "u1", 5)

	assert.Equal(t, domain.StrategyPopular, out.Strategy)
	assert.True(t, errors.Is(out.FallbackReason, domain.ErrNoCandidates))
	assert.Len(t, out.Items, 2)
}

func TestCoordinator_Similar(t *testing.T) {
	snap := fixtureSnapshot(t)
	c := NewCoordinator(newStore(snap), NewRanker(nil, nil, nil, DefaultConfig()), DefaultConfig())

	out := c.Similar(context.Background(), "1", 2)
	assert.Equal(t, domain.StrategySimilar, out.Strategy)
	assert.NoError(t, out.FallbackReason)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "3", out.Items[0].ProductID)

	out = c.Similar(context.Background(), "404", 2)
	assert.Equal(t, domain.StrategyPopular, out.Strategy)
	assert.True(t, errors.Is(out.FallbackReason, domain.ErrUnknownProduct))
	assert.NotEmpty(t, out.Items)
}

func TestCoordinator_SimilarEmptyIsNotAFallback(t *testing.T) {
	snap, err := BuildSnapshot([]domain.Interaction{
		{UserID: "u1", ItemID: "1", Rating: 1, Metadata: domain.ProductMetadataFragment{Category: strPtr("audio.headphone")}},
		{UserID: "u1", ItemID: "2", Rating: 1, Metadata: domain.ProductMetadataFragment{Category: strPtr("video.tv"), Brand: strPtr("lg")}},
	}, 0)
	require.NoError(t, err)
	c := NewCoordinator(newStore(snap), NewRanker(nil, nil, nil, DefaultConfig()), DefaultConfig())

	out := c.Similar(context.Background(), "1", 5)

	assert.Equal(t, domain.StrategySimilar, out.Strategy)
	assert.NoError(t, out.FallbackReason)
	assert.Empty(t, out.Items)
}

func TestCoordinator_NoSnapshot(t *testing.T) {
	c := NewCoordinator(NewSnapshotStore(), NewRanker(nil, nil, nil, DefaultConfig()), DefaultConfig())

	out := c.Personalized(context.Background(), "u1", 5)

	assert.Equal(t, domain.StrategyPopular, out.Strategy)
	assert.True(t, errors.Is(out.FallbackReason, domain.ErrCatalogNotReady))
	assert.NotNil(t, out.Items)
	assert.Empty(t, c.Popular(context.Background(), 5).Items)
}

func TestReasonLabel(t *testing.T) {
	assert.Equal(t, "none", ReasonLabel(nil))
	assert.Equal(t, "unknown_user", ReasonLabel(errors.Join(errors.New("x"), domain.ErrUnknownUser)))
	assert.Equal(t, "context", ReasonLabel(context.DeadlineExceeded))
	assert.Equal(t, "error", ReasonLabel(errors.New("boom")))
}

func TestConfig_ClampTopN(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 10, cfg.ClampTopN(0))
	assert.Equal(t, 5, cfg.ClampTopN(5))
	assert.Equal(t, 100, cfg.ClampTopN(1000))
}

package predictor

import (
	"context"
	"fmt"

	"hybridRecommender/business/hybrid"
	"hybridRecommender/domain"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedNeural memoizes successful neural predictions per (user, item)
// index pair. Dense indices change meaning when the snapshot is rebuilt, so
// Purge must be called on every reload.
type CachedNeural struct {
	next  hybrid.NeuralPredictor
	cache *lru.Cache[domain.PredictionPair, float64]
}

func NewCachedNeural(next hybrid.NeuralPredictor, size int) (*CachedNeural, error) {
	cache, err := lru.New[domain.PredictionPair, float64](size)
	if err != nil {
		return nil, fmt.Errorf("prediction cache: %w", err)
	}
	return &CachedNeural{next: next, cache: cache}, nil
}

// PredictBatch serves hits from the cache and sends only misses upstream.
func (c *CachedNeural) PredictBatch(ctx context.Context, pairs []domain.PredictionPair) ([]float64, error) {
	out := make([]float64, len(pairs))
	misses := make([]domain.PredictionPair, 0, len(pairs))
	missAt := make([]int, 0, len(pairs))

	for i, p := range pairs {
		if v, ok := c.cache.Get(p); ok {
			out[i] = v
			continue
		}
		misses = append(misses, p)
		missAt = append(missAt, i)
	}

	if len(misses) == 0 {
		PredictionCacheTotal.WithLabelValues("hit").Add(float64(len(pairs)))
		return out, nil
	}
	PredictionCacheTotal.WithLabelValues("hit").Add(float64(len(pairs) - len(misses)))
	PredictionCacheTotal.WithLabelValues("miss").Add(float64(len(misses)))

	scores, err := c.next.PredictBatch(ctx, misses)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(misses) {
		return nil, fmt.Errorf("%w: %d scores for %d pairs", domain.ErrPredictionUnavailable, len(scores), len(misses))
	}

	for j, v := range scores {
		out[missAt[j]] = v
		c.cache.Add(misses[j], v)
	}

	return out, nil
}

func (c *CachedNeural) Purge() {
	c.cache.Purge()
}

func (c *CachedNeural) Len() int {
	return c.cache.Len()
}

var _ hybrid.NeuralPredictor = (*CachedNeural)(nil)
var _ hybrid.NeuralPredictor = (*RemoteNeural)(nil)
var _ hybrid.CollaborativePredictor = (*LatentFactor)(nil)

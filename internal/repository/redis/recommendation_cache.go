package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hybridRecommender/domain"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

type RecommendationCache struct {
	client *redis.Client
}

func NewRecommendationCache(client *redis.Client) *RecommendationCache {
	return &RecommendationCache{
		client: client,
	}
}

// GetOutcome returns ok=false on a miss.
func (r *RecommendationCache) GetOutcome(ctx context.Context, key string) (domain.CachedOutcome, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.CachedOutcome{}, false, nil
		}
		return domain.CachedOutcome{}, false, fmt.Errorf("failed to get outcome from Redis: %w", err)
	}

	var out domain.CachedOutcome
	if err := json.Unmarshal(val, &out); err != nil {
		// a stale encoding is treated as a miss and overwritten on the next write
		_ = r.client.Del(ctx, key).Err()
		return domain.CachedOutcome{}, false, fmt.Errorf("failed to unmarshal cached outcome: %w", err)
	}

	return out, true, nil
}

func (r *RecommendationCache) SetOutcome(ctx context.Context, key string, outcome domain.CachedOutcome, ttl time.Duration) error {
	raw, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}

	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store outcome in Redis: %w", err)
	}

	return nil
}

// TTL reports the remaining lifetime of a cached outcome.
func (r *RecommendationCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read TTL: %w", err)
	}
	return ttl, nil
}

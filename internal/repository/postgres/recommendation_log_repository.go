package postgres

import (
	"context"
	"fmt"

	"hybridRecommender/domain"

	"gorm.io/gorm"
)

type RecommendationLogRepository struct {
	DB *gorm.DB
}

func NewRecommendationLogRepository(db *gorm.DB) *RecommendationLogRepository {
	return &RecommendationLogRepository{DB: db}
}

func (r *RecommendationLogRepository) SaveLog(ctx context.Context, log domain.RecommendationLog) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(&log).Error; err != nil {
		return fmt.Errorf("failed to save recommendation log: %w", err)
	}

	return nil
}

// ListRecent returns the newest logs, optionally filtered by subject.
func (r *RecommendationLogRepository) ListRecent(ctx context.Context, subject string, limit int) ([]domain.RecommendationLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	q := r.DB.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if subject != "" {
		q = q.Where("subject = ?", subject)
	}

	var logs []domain.RecommendationLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to list recommendation logs: %w", err)
	}

	return logs, nil
}

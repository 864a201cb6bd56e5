package postgres

import (
	"context"
	"fmt"

	"hybridRecommender/domain"

	"gorm.io/gorm"
)

const interactionBatchSize = 5000

type InteractionRepository struct {
	DB *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{
		DB: db,
	}
}

// FindAllEvents reads the whole interaction table in insertion order, which
// decides first-wins deduplication and popularity tie-breaks.
func (r *InteractionRepository) FindAllEvents(ctx context.Context) ([]domain.InteractionEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var (
		events []domain.InteractionEvent
		batch  []domain.InteractionEvent
	)

	err := r.DB.WithContext(ctx).
		Order("id ASC").
		FindInBatches(&batch, interactionBatchSize, func(tx *gorm.DB, _ int) error {
			events = append(events, batch...)
			return nil
		}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find interactions: %w", err)
	}

	return events, nil
}

func (r *InteractionRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	var n int64
	if err := r.DB.WithContext(ctx).Model(&domain.InteractionEvent{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count interactions: %w", err)
	}

	return n, nil
}

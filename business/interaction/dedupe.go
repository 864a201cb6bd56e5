package interaction

import (
	"strings"

	"hybridRecommender/domain"
)

type pairKey struct {
	user, item string
}

// Dedupe keeps the first record of every (user, item) pair.
func Dedupe(records []domain.Interaction) []domain.Interaction {
	seen := make(map[pairKey]struct{}, len(records))
	out := make([]domain.Interaction, 0, len(records))

	for _, r := range records {
		k := pairKey{r.UserID, r.ItemID}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}

	return out
}

// FromEvents converts raw interaction rows into rated interactions. Rows with
// an empty user or product id, or with an event type outside the rating
// scale, are dropped. The second return value is the number of dropped rows.
func FromEvents(events []domain.InteractionEvent) ([]domain.Interaction, int) {
	out := make([]domain.Interaction, 0, len(events))
	dropped := 0

	for _, ev := range events {
		userID := domain.KeyOf(ev.UserID)
		itemID := domain.KeyOf(ev.ProductID)
		if userID == "" || itemID == "" || strings.TrimSpace(ev.EventType) == "" {
			dropped++
			continue
		}

		rating, ok := domain.RatingForEvent(ev.EventType)
		if !ok {
			dropped++
			continue
		}

		out = append(out, domain.Interaction{
			UserID: userID,
			ItemID: itemID,
			Rating: rating,
			Metadata: domain.ProductMetadataFragment{
				ItemID:   itemID,
				Category: ev.CategoryCode,
				Brand:    ev.Brand,
				Price:    ev.Price,
			},
		})
	}

	return out, dropped
}

// Fragments returns one metadata fragment per interaction, in record order.
func Fragments(records []domain.Interaction) []domain.ProductMetadataFragment {
	out := make([]domain.ProductMetadataFragment, 0, len(records))
	for _, r := range records {
		f := r.Metadata
		f.ItemID = r.ItemID
		out = append(out, f)
	}
	return out
}

package interaction

import (
	"fmt"
	"slices"

	"hybridRecommender/domain"
)

// ItemCount is the number of interactions recorded for one product.
type ItemCount struct {
	ProductID string
	Count     int
}

// Index answers which items a user has seen and how popular each item is.
// It is immutable once built.
type Index struct {
	seen     map[int]map[int]struct{}
	counts   []ItemCount
	universe int
}

// NewIndex builds the index from deduplicated interactions. Every user and
// item must be known to the encoders.
func NewIndex(records []domain.Interaction, users, items *Encoder) (*Index, error) {
	seen := make(map[int]map[int]struct{}, users.Len())
	countByID := make(map[string]int, items.Len())
	order := make([]string, 0, items.Len())

	for _, r := range records {
		u, err := users.Encode(r.UserID)
		if err != nil {
			return nil, fmt.Errorf("index user: %w", err)
		}
		i, err := items.Encode(r.ItemID)
		if err != nil {
			return nil, fmt.Errorf("index item: %w", err)
		}

		set, ok := seen[u]
		if !ok {
			set = make(map[int]struct{})
			seen[u] = set
		}
		set[i] = struct{}{}

		if _, ok := countByID[r.ItemID]; !ok {
			order = append(order, r.ItemID)
		}
		countByID[r.ItemID]++
	}

	counts := make([]ItemCount, 0, len(order))
	for _, id := range order {
		counts = append(counts, ItemCount{ProductID: id, Count: countByID[id]})
	}
	// stable: equal counts keep first-seen order
	slices.SortStableFunc(counts, func(a, b ItemCount) int {
		return b.Count - a.Count
	})

	return &Index{seen: seen, counts: counts, universe: items.Len()}, nil
}

// ItemsSeenBy returns the dense item indices the user interacted with. The
// returned set must not be modified.
func (x *Index) ItemsSeenBy(user int) map[int]struct{} {
	if set, ok := x.seen[user]; ok {
		return set
	}
	return map[int]struct{}{}
}

// CountByItem returns interaction counts ordered by count descending.
func (x *Index) CountByItem() []ItemCount {
	return x.counts
}

func (x *Index) UniverseSize() int {
	return x.universe
}

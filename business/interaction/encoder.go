package interaction

import (
	"fmt"
	"slices"

	"hybridRecommender/domain"
)

// Encoder is a bijective mapping between original identifiers and dense
// integer indices in [0, Len()).
type Encoder struct {
	classes []string
	index   map[string]int
}

// NewEncoder assigns dense indices to the distinct ids in sorted order.
func NewEncoder(ids []string) *Encoder {
	seen := make(map[string]struct{}, len(ids))
	classes := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		classes = append(classes, id)
	}

	slices.SortFunc(classes, domain.CompareIDs)

	index := make(map[string]int, len(classes))
	for i, id := range classes {
		index[id] = i
	}

	return &Encoder{classes: classes, index: index}
}

func (e *Encoder) Len() int {
	return len(e.classes)
}

func (e *Encoder) Encode(id string) (int, error) {
	i, ok := e.index[id]
	if !ok {
		return 0, fmt.Errorf("encode %q: %w", id, domain.ErrUnknownIdentifier)
	}
	return i, nil
}

func (e *Encoder) Decode(i int) (string, error) {
	if i < 0 || i >= len(e.classes) {
		return "", fmt.Errorf("decode %d: %w", i, domain.ErrUnknownIdentifier)
	}
	return e.classes[i], nil
}

func (e *Encoder) Contains(id string) bool {
	_, ok := e.index[id]
	return ok
}

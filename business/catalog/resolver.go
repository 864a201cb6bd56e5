// Package catalog resolves product identifiers into canonical, human-readable
// product descriptions built from noisy per-interaction metadata.
package catalog

import (
	"fmt"
	"slices"
	"strings"

	"hybridRecommender/domain"
)

const DefaultSearchLimit = 10

// Resolver is an immutable lookup table of canonical product records. It is
// safe for concurrent reads. A data refresh builds a new Resolver.
type Resolver struct {
	records     []domain.CanonicalProductRecord // ascending product id
	byID        map[string]int
	searchLimit int
}

// Stats summarizes metadata completeness of a built catalog.
type Stats struct {
	Products   int
	WithBrand  int
	WithPrice  int
	Incomplete int
}

// Build selects one canonical record per product id: the fragment with the
// best (has brand, has price) pair, first fragment winning ties.
func Build(fragments []domain.ProductMetadataFragment) *Resolver {
	best := make(map[string]domain.CanonicalProductRecord, len(fragments)/2+1)

	for _, f := range fragments {
		key := domain.KeyOf(f.ItemID)
		if key == "" {
			continue
		}

		candidate := domain.CanonicalProductRecord{
			ProductID: key,
			Category:  normalizeCategory(f.Category),
			Brand:     normalizeBrand(f.Brand),
			Price:     normalizePrice(f.Price),
		}

		current, ok := best[key]
		if !ok || completeness(candidate) > completeness(current) {
			best[key] = candidate
		}
	}

	records := make([]domain.CanonicalProductRecord, 0, len(best))
	for _, r := range best {
		records = append(records, r)
	}
	slices.SortFunc(records, func(a, b domain.CanonicalProductRecord) int {
		return domain.CompareIDs(a.ProductID, b.ProductID)
	})

	byID := make(map[string]int, len(records))
	for i, r := range records {
		byID[r.ProductID] = i
	}

	return &Resolver{records: records, byID: byID, searchLimit: DefaultSearchLimit}
}

// WithSearchLimit returns a copy of the resolver sharing its records.
func (r *Resolver) WithSearchLimit(limit int) *Resolver {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	cp := *r
	cp.searchLimit = limit
	return &cp
}

// completeness orders (has brand, has price) lexicographically.
func completeness(r domain.CanonicalProductRecord) int {
	score := 0
	if r.HasBrand() {
		score += 2
	}
	if r.HasPrice() {
		score++
	}
	return score
}

func (r *Resolver) Len() int {
	return len(r.records)
}

func (r *Resolver) Stats() Stats {
	s := Stats{Products: len(r.records)}
	for _, rec := range r.records {
		if rec.HasBrand() {
			s.WithBrand++
		}
		if rec.HasPrice() {
			s.WithPrice++
		}
		if !rec.HasBrand() && !rec.HasPrice() {
			s.Incomplete++
		}
	}
	return s
}

// Lookup accepts the id as a string or any integer type.
func (r *Resolver) Lookup(id any) (domain.CanonicalProductRecord, bool) {
	i, ok := r.byID[domain.KeyOf(id)]
	if !ok {
		return domain.CanonicalProductRecord{}, false
	}
	return r.records[i], true
}

// Info describes a canonical record.
func Info(rec domain.CanonicalProductRecord) domain.ProductInfo {
	return domain.ProductInfo{
		ProductID:   rec.ProductID,
		ProductName: GenerateName(rec),
		Category:    rec.Category,
		Brand:       rec.Brand,
		Price:       rec.Price,
	}
}

// GetOrDefault never fails: unknown ids resolve to the unknown-product sentinel.
func (r *Resolver) GetOrDefault(id any) domain.ProductInfo {
	rec, ok := r.Lookup(id)
	if !ok {
		return domain.UnknownProduct(domain.KeyOf(id))
	}
	return Info(rec)
}

// Search matches term case-insensitively against category, brand and
// generated name. Results come in catalog order, not by relevance, and are
// capped at the search limit.
func (r *Resolver) Search(term string) []domain.ProductInfo {
	needle := strings.ToLower(strings.TrimSpace(term))
	out := make([]domain.ProductInfo, 0, r.searchLimit)

	for _, rec := range r.records {
		info := Info(rec)
		if strings.Contains(strings.ToLower(rec.Category), needle) ||
			strings.Contains(strings.ToLower(rec.Brand), needle) ||
			strings.Contains(strings.ToLower(info.ProductName), needle) {
			out = append(out, info)
			if len(out) >= r.searchLimit {
				break
			}
		}
	}

	return out
}

// Similar returns products whose category contains the target's category,
// most complete metadata first. Records are unique per id by construction.
func (r *Resolver) Similar(id any, topN int) ([]domain.ProductInfo, error) {
	target, ok := r.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("similar to %q: %w", domain.KeyOf(id), domain.ErrUnknownProduct)
	}
	if topN <= 0 {
		return []domain.ProductInfo{}, nil
	}

	type ranked struct {
		info     domain.ProductInfo
		priority int
	}

	matches := make([]ranked, 0)
	for _, rec := range r.records {
		if rec.ProductID == target.ProductID {
			continue
		}
		if target.Category == "" || !strings.Contains(rec.Category, target.Category) {
			continue
		}
		matches = append(matches, ranked{info: Info(rec), priority: completeness(rec)})
	}

	slices.SortStableFunc(matches, func(a, b ranked) int {
		return b.priority - a.priority
	})

	if len(matches) > topN {
		matches = matches[:topN]
	}

	out := make([]domain.ProductInfo, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.info)
	}
	return out, nil
}

package hybrid

import (
	"hybridRecommender/business/catalog"
	"hybridRecommender/domain"
)

// Popular ranks products by raw interaction count. Only the headFactor*topN
// most frequent items are scanned; products with neither brand nor price are
// skipped, so the result may be shorter than topN.
func Popular(snap *Snapshot, topN, headFactor int) []domain.ProductInfo {
	if snap == nil || topN <= 0 {
		return []domain.ProductInfo{}
	}
	if headFactor <= 0 {
		headFactor = defaultPopularityHeadFactor
	}

	counts := snap.Index.CountByItem()
	head := headFactor * topN
	if head > len(counts) {
		head = len(counts)
	}

	out := make([]domain.ProductInfo, 0, topN)
	seen := make(map[string]struct{}, head)

	for _, c := range counts[:head] {
		if _, ok := seen[c.ProductID]; ok {
			continue
		}
		seen[c.ProductID] = struct{}{}

		rec, ok := snap.Catalog.Lookup(c.ProductID)
		if !ok || (!rec.HasBrand() && !rec.HasPrice()) {
			continue
		}

		info := catalog.Info(rec)
		info.Score = float64(c.Count)
		out = append(out, info)

		if len(out) >= topN {
			break
		}
	}

	return out
}

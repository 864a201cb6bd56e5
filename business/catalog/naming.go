package catalog

import (
	"math"
	"strings"

	"hybridRecommender/domain"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nanLike = map[string]struct{}{
	"nan":  {},
	"none": {},
	"null": {},
	"<na>": {},
}

func isMissing(s *string) bool {
	if s == nil {
		return true
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return true
	}
	_, ok := nanLike[strings.ToLower(v)]
	return ok
}

func normalizeBrand(s *string) string {
	if isMissing(s) {
		return domain.GenericBrand
	}
	return strings.TrimSpace(*s)
}

func normalizeCategory(s *string) string {
	if isMissing(s) {
		return domain.DefaultCategory
	}
	return strings.TrimSpace(*s)
}

func normalizePrice(p *float64) float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) || *p < 0 {
		return 0.0
	}
	return *p
}

// GenerateName derives a readable product name: the most specific category
// segment, prefixed by the brand when one is known.
func GenerateName(r domain.CanonicalProductRecord) string {
	name := productType(r.Category)
	if r.HasBrand() {
		return r.Brand + " " + name
	}
	return name
}

func productType(category string) string {
	if isMissing(&category) {
		return domain.DefaultTypeName
	}

	parts := strings.Split(category, ".")
	if len(parts) < 2 {
		return domain.DefaultTypeName
	}

	last := strings.TrimSpace(strings.ReplaceAll(parts[len(parts)-1], "_", " "))
	if last == "" {
		return domain.DefaultTypeName
	}

	// Caser is stateful, one per call
	return cases.Title(language.Und).String(last)
}

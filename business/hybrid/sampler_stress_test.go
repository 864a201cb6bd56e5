//go:build !integration

package hybrid

import (
	"math"
	"testing"
)

// scenario params
const (
	stressUniverse = 50
	stressSeen     = 10
	stressSample   = 10
	stressRounds   = 20000
)

func TestSampler_UniformOverEligibleItems(t *testing.T) {
	s := NewSampler(2024)

	seen := make(map[int]struct{}, stressSeen)
	for i := 0; i < stressSeen; i++ {
		seen[i*5] = struct{}{}
	}

	hits := make(map[int]int, stressUniverse)
	for round := 0; round < stressRounds; round++ {
		for _, item := range s.Sample(seen, stressUniverse, stressSample) {
			hits[item]++
		}
	}

	eligible := stressUniverse - stressSeen
	expected := float64(stressRounds*stressSample) / float64(eligible)

	if len(hits) != eligible {
		t.Fatalf("expected %d distinct items, got %d", eligible, len(hits))
	}

	worst := 0.0
	for item, n := range hits {
		if _, ok := seen[item]; ok {
			t.Fatalf("seen item %d was sampled", item)
		}
		dev := math.Abs(float64(n)-expected) / expected
		worst = math.Max(worst, dev)
	}

	t.Logf("[SAMPLER] rounds=%d eligible=%d expected=%.0f worst_dev=%.3f", stressRounds, eligible, expected, worst)

	if worst > 0.1 {
		t.Fatalf("sampling is not uniform: worst relative deviation %.3f", worst)
	}
}

package hybrid

import (
	"math/rand"
	"sync"
	"time"
)

// Sampler draws candidate items uniformly without replacement. It is safe
// for concurrent use.
type Sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampler seeds the random source; seed 0 seeds from the clock.
func NewSampler(seed int64) *Sampler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Sampler{rng: rand.New(rand.NewSource(seed))}
}

// Sample returns min(sampleSize, |eligible|) distinct indices drawn from
// [0, universeSize) minus seen, in the order they were drawn.
func (s *Sampler) Sample(seen map[int]struct{}, universeSize, sampleSize int) []int {
	if universeSize <= 0 || sampleSize <= 0 {
		return []int{}
	}

	eligible := make([]int, 0, universeSize)
	for i := 0; i < universeSize; i++ {
		if _, ok := seen[i]; ok {
			continue
		}
		eligible = append(eligible, i)
	}

	k := sampleSize
	if k > len(eligible) {
		k = len(eligible)
	}

	s.mu.Lock()
	// partial Fisher-Yates over the first k slots
	for i := 0; i < k; i++ {
		j := i + s.rng.Intn(len(eligible)-i)
		eligible[i], eligible[j] = eligible[j], eligible[i]
	}
	s.mu.Unlock()

	return eligible[:k]
}

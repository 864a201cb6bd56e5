// Package predictor holds the rating predictors used by the hybrid ranker:
// an in-process latent-factor model and a client for a remote neural model.
// Neither trains anything; both evaluate models produced elsewhere.
package predictor

import (
	"context"
	"fmt"
	"os"

	"hybridRecommender/domain"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/floats"
)

const (
	defaultMinRating = 1.0
	defaultMaxRating = 5.0
)

// FactorArtifact is a trained biased matrix factorization, indexed by the
// same dense user and item indices as the interaction encoders.
type FactorArtifact struct {
	GlobalMean  float64     `json:"global_mean"`
	UserBias    []float64   `json:"user_bias"`
	ItemBias    []float64   `json:"item_bias"`
	UserFactors [][]float64 `json:"user_factors"`
	ItemFactors [][]float64 `json:"item_factors"`
	MinRating   float64     `json:"min_rating,omitempty"`
	MaxRating   float64     `json:"max_rating,omitempty"`
}

// LatentFactor predicts mu + bu + bi + pu.qi clipped to the rating scale.
// Terms for a user or item the model never saw are left out.
type LatentFactor struct {
	a       FactorArtifact
	factors int
}

func LoadLatentFactor(path string) (*LatentFactor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read factor artifact: %w", err)
	}

	var a FactorArtifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode factor artifact: %w", err)
	}

	return NewLatentFactor(a)
}

func NewLatentFactor(a FactorArtifact) (*LatentFactor, error) {
	if len(a.UserBias) != len(a.UserFactors) {
		return nil, fmt.Errorf("factor artifact: %d user biases for %d user factors", len(a.UserBias), len(a.UserFactors))
	}
	if len(a.ItemBias) != len(a.ItemFactors) {
		return nil, fmt.Errorf("factor artifact: %d item biases for %d item factors", len(a.ItemBias), len(a.ItemFactors))
	}

	k := -1
	for _, rows := range [][][]float64{a.UserFactors, a.ItemFactors} {
		for i, row := range rows {
			if k == -1 {
				k = len(row)
			}
			if len(row) != k {
				return nil, fmt.Errorf("factor artifact: row %d has %d factors, want %d", i, len(row), k)
			}
		}
	}
	if k < 0 {
		k = 0
	}

	if a.MinRating == 0 && a.MaxRating == 0 {
		a.MinRating, a.MaxRating = defaultMinRating, defaultMaxRating
	}
	if a.MinRating > a.MaxRating {
		return nil, fmt.Errorf("factor artifact: rating range [%v, %v]", a.MinRating, a.MaxRating)
	}

	return &LatentFactor{a: a, factors: k}, nil
}

func (m *LatentFactor) Predict(ctx context.Context, user, item int) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrPredictionUnavailable, err)
	}

	knownUser := user >= 0 && user < len(m.a.UserBias)
	knownItem := item >= 0 && item < len(m.a.ItemBias)

	est := m.a.GlobalMean
	if knownUser {
		est += m.a.UserBias[user]
	}
	if knownItem {
		est += m.a.ItemBias[item]
	}
	if knownUser && knownItem && m.factors > 0 {
		est += floats.Dot(m.a.UserFactors[user], m.a.ItemFactors[item])
	}

	return clip(est, m.a.MinRating, m.a.MaxRating), nil
}

func (m *LatentFactor) Users() int { return len(m.a.UserBias) }

func (m *LatentFactor) Items() int { return len(m.a.ItemBias) }

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

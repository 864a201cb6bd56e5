package hybrid

import "math"

// Prediction is one predictor's output for a candidate. Available is false
// when the predictor failed, timed out or returned a non-finite value.
type Prediction struct {
	Value     float64
	Available bool
}

func Predicted(v float64) Prediction {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Prediction{}
	}
	return Prediction{Value: v, Available: true}
}

func Unavailable() Prediction {
	return Prediction{}
}

// Blend combines both predictions with the configured weights. A missing
// term is replaced by the neutral score; Blend never fails.
func (c Config) Blend(collaborative, neural Prediction) float64 {
	c = c.withDefaults()

	cv := c.NeutralScore
	if collaborative.Available {
		cv = collaborative.Value
	}
	nv := c.NeutralScore
	if neural.Available {
		nv = neural.Value
	}

	return c.CollaborativeWeight*cv + c.NeuralWeight*nv
}

// Blend uses the default 0.4/0.6 weights and a neutral score of 3.0.
func Blend(collaborative, neural Prediction) float64 {
	return DefaultConfig().Blend(collaborative, neural)
}

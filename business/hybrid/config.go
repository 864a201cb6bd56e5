package hybrid

import "time"

type Config struct {
	// blend weights, applied to scores on the 1-5 implicit rating scale
	CollaborativeWeight float64
	NeuralWeight        float64

	// substituted for a prediction that is unavailable
	NeutralScore float64

	// candidates scored per personalized request
	SampleSize int

	DefaultTopN int
	MaxTopN     int

	// popularity scans only the PopularityHeadFactor*topN most frequent items
	PopularityHeadFactor int

	PredictionTimeout time.Duration
	MaxParallel       int

	// sampler seed, 0 means seeded from the clock
	Seed int64
}

const (
	defaultCollaborativeWeight  = 0.4
	defaultNeuralWeight         = 0.6
	defaultNeutralScore         = 3.0
	defaultSampleSize           = 100
	defaultTopN                 = 10
	defaultMaxTopN              = 100
	defaultPopularityHeadFactor = 3
	defaultPredictionTimeout    = 250 * time.Millisecond
	defaultMaxParallel          = 8
)

func DefaultConfig() Config {
	return Config{
		CollaborativeWeight: defaultCollaborativeWeight,
		NeuralWeight:        defaultNeuralWeight,
		NeutralScore:        defaultNeutralScore,

		SampleSize:  defaultSampleSize,
		DefaultTopN: defaultTopN,
		MaxTopN:     defaultMaxTopN,

		PopularityHeadFactor: defaultPopularityHeadFactor,

		PredictionTimeout: defaultPredictionTimeout,
		MaxParallel:       defaultMaxParallel,
	}
}

// withDefaults fills zero values so a partially populated Config stays usable.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CollaborativeWeight == 0 && c.NeuralWeight == 0 {
		c.CollaborativeWeight = d.CollaborativeWeight
		c.NeuralWeight = d.NeuralWeight
	}
	if c.NeutralScore == 0 {
		c.NeutralScore = d.NeutralScore
	}
	if c.SampleSize <= 0 {
		c.SampleSize = d.SampleSize
	}
	if c.DefaultTopN <= 0 {
		c.DefaultTopN = d.DefaultTopN
	}
	if c.MaxTopN <= 0 {
		c.MaxTopN = d.MaxTopN
	}
	if c.PopularityHeadFactor <= 0 {
		c.PopularityHeadFactor = d.PopularityHeadFactor
	}
	if c.PredictionTimeout <= 0 {
		c.PredictionTimeout = d.PredictionTimeout
	}
	if c.MaxParallel <= 0 {
		c.MaxParallel = d.MaxParallel
	}
	return c
}

// ClampTopN maps a requested result size into [1, MaxTopN]; non-positive
// requests get DefaultTopN.
func (c Config) ClampTopN(n int) int {
	c = c.withDefaults()
	if n <= 0 {
		return c.DefaultTopN
	}
	if n > c.MaxTopN {
		return c.MaxTopN
	}
	return n
}

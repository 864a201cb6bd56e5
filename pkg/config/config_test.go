package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "postgres")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.4, cfg.Recommender.CollaborativeWeight)
	assert.Equal(t, 0.6, cfg.Recommender.NeuralWeight)
	assert.Equal(t, 3.0, cfg.Recommender.NeutralScore)
	assert.Equal(t, 100, cfg.Recommender.SampleSize)
	assert.Equal(t, 3, cfg.Recommender.PopularityHeadFactor)
	assert.Equal(t, 250*time.Millisecond, cfg.Recommender.PredictionTimeout)
	assert.Equal(t, 0, cfg.Redis.RedisDB)
	assert.Equal(t, "ncf", cfg.Model.NeuralModelName)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("RECO_SAMPLE_SIZE", "250")
	t.Setenv("RECO_PREDICTION_TIMEOUT", "1s")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.Recommender.SampleSize)
	assert.Equal(t, time.Second, cfg.Recommender.PredictionTimeout)
	assert.False(t, cfg.Redis.Enabled)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": "", "DB_PASSWORD": "x"}, "missing jwt secret"},
		{"missing db password", map[string]string{"JWT_SECRET": "x", "DB_PASSWORD": ""}, "missing database password"},
		{"bad int", map[string]string{"JWT_SECRET": "x", "DB_PASSWORD": "x", "RECO_SAMPLE_SIZE": "many"}, "RECO_SAMPLE_SIZE"},
		{"bad duration", map[string]string{"JWT_SECRET": "x", "DB_PASSWORD": "x", "RECO_CACHE_TTL": "5"}, "RECO_CACHE_TTL"},
		{"zero sample", map[string]string{"JWT_SECRET": "x", "DB_PASSWORD": "x", "RECO_SAMPLE_SIZE": "0"}, "sample size"},
		{"top n bounds", map[string]string{"JWT_SECRET": "x", "DB_PASSWORD": "x", "RECO_MAX_TOP_N": "5"}, "top n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := Load()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

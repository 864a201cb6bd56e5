package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Redis       RedisConfig
	Recommender RecommenderConfig
	Model       ModelConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	Enabled       bool
}

type RecommenderConfig struct {
	CollaborativeWeight  float64
	NeuralWeight         float64
	NeutralScore         float64
	SampleSize           int
	DefaultTopN          int
	MaxTopN              int
	PopularityHeadFactor int
	SearchLimit          int
	PredictionTimeout    time.Duration
	MaxParallel          int
	Seed                 int64
	CacheTTL             time.Duration
	ReloadOnStart        bool
}

type ModelConfig struct {
	FactorsPath         string
	NeuralBaseURL       string
	NeuralModelName     string
	NeuralHTTPTimeout   time.Duration
	BreakerFailures     int
	BreakerTimeout      time.Duration
	PredictionCacheSize int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	p := &parser{}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Hybrid Recommender API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "hybrid_recommender"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       p.int("REDIS_DB", 0),
			Enabled:       p.bool("REDIS_ENABLED", true),
		},
		Recommender: RecommenderConfig{
			CollaborativeWeight:  p.float("RECO_COLLABORATIVE_WEIGHT", 0.4),
			NeuralWeight:         p.float("RECO_NEURAL_WEIGHT", 0.6),
			NeutralScore:         p.float("RECO_NEUTRAL_SCORE", 3.0),
			SampleSize:           p.int("RECO_SAMPLE_SIZE", 100),
			DefaultTopN:          p.int("RECO_DEFAULT_TOP_N", 10),
			MaxTopN:              p.int("RECO_MAX_TOP_N", 100),
			PopularityHeadFactor: p.int("RECO_POPULARITY_HEAD_FACTOR", 3),
			SearchLimit:          p.int("RECO_SEARCH_LIMIT", 10),
			PredictionTimeout:    p.duration("RECO_PREDICTION_TIMEOUT", 250*time.Millisecond),
			MaxParallel:          p.int("RECO_MAX_PARALLEL", 8),
			Seed:                 int64(p.int("RECO_SEED", 0)),
			CacheTTL:             p.duration("RECO_CACHE_TTL", 5*time.Minute),
			ReloadOnStart:        p.bool("RECO_RELOAD_ON_START", true),
		},
		Model: ModelConfig{
			FactorsPath:         getEnv("MODEL_FACTORS_PATH", ""),
			NeuralBaseURL:       getEnv("MODEL_NEURAL_URL", ""),
			NeuralModelName:     getEnv("MODEL_NEURAL_NAME", "ncf"),
			NeuralHTTPTimeout:   p.duration("MODEL_NEURAL_HTTP_TIMEOUT", 2*time.Second),
			BreakerFailures:     p.int("MODEL_BREAKER_FAILURES", 5),
			BreakerTimeout:      p.duration("MODEL_BREAKER_TIMEOUT", 30*time.Second),
			PredictionCacheSize: p.int("MODEL_PREDICTION_CACHE_SIZE", 50000),
		},
	}

	if p.err != nil {
		return nil, p.err
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if cfg.Recommender.CollaborativeWeight < 0 || cfg.Recommender.NeuralWeight < 0 {
		return nil, errors.New("blend weights must not be negative")
	}

	if cfg.Recommender.SampleSize <= 0 {
		return nil, errors.New("sample size must be positive")
	}

	if cfg.Recommender.DefaultTopN <= 0 || cfg.Recommender.MaxTopN < cfg.Recommender.DefaultTopN {
		return nil, errors.New("invalid top n bounds")
	}

	if cfg.Model.BreakerFailures <= 0 {
		return nil, errors.New("breaker failures must be positive")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

// parser keeps the first conversion error so Load reports one message.
type parser struct {
	err error
}

func (p *parser) fail(key, val string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
}

func (p *parser) int(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		p.fail(key, val, err)
		return defaultVal
	}
	return n
}

func (p *parser) float(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		p.fail(key, val, err)
		return defaultVal
	}
	return f
}

func (p *parser) bool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		p.fail(key, val, err)
		return defaultVal
	}
	return b
}

func (p *parser) duration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		p.fail(key, val, err)
		return defaultVal
	}
	return d
}

package predictor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hybridRecommender/domain"
	"hybridRecommender/pkg/logger"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

type RemoteNeuralConfig struct {
	BaseURL   string
	ModelName string

	// consecutive failures before the breaker opens
	BreakerFailures uint32
	// how long the breaker stays open before probing again
	BreakerTimeout time.Duration
}

const (
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second
	maxErrorBody           = 512
)

// RemoteNeural calls a model server speaking the TensorFlow Serving REST
// predict API: POST {base}/v1/models/{name}:predict.
type RemoteNeural struct {
	url    string
	client *http.Client
	cb     *gobreaker.CircuitBreaker[[]float64]
}

type predictRequest struct {
	Instances []domain.PredictionPair `json:"instances"`
}

type predictResponse struct {
	Predictions []score `json:"predictions"`
	Error       string  `json:"error,omitempty"`
}

// score accepts both 2.5 and [2.5]; single-output models return the latter.
type score float64

func (s *score) UnmarshalJSON(b []byte) error {
	var v float64
	if err := json.Unmarshal(b, &v); err == nil {
		*s = score(v)
		return nil
	}

	var arr []float64
	if err := json.Unmarshal(b, &arr); err != nil {
		return fmt.Errorf("prediction: %w", err)
	}
	if len(arr) != 1 {
		return fmt.Errorf("prediction: want 1 output, got %d", len(arr))
	}
	*s = score(arr[0])
	return nil
}

func NewRemoteNeural(cfg RemoteNeuralConfig, client *http.Client) *RemoteNeural {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = defaultBreakerFailures
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = defaultBreakerTimeout
	}

	name := "neural-" + cfg.ModelName
	threshold := cfg.BreakerFailures

	cb := gobreaker.NewCircuitBreaker[[]float64](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// a caller giving up is not the model server's fault
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("predictor_breaker_state", "breaker", name, "from", from.String(), "to", to.String())
			BreakerState.WithLabelValues(name).Set(float64(to))
		},
	})
	BreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))

	return &RemoteNeural{
		url:    strings.TrimRight(cfg.BaseURL, "/") + "/v1/models/" + cfg.ModelName + ":predict",
		client: client,
		cb:     cb,
	}
}

// PredictBatch returns one score per pair, in input order. Every failure,
// including an open breaker, wraps domain.ErrPredictionUnavailable.
func (r *RemoteNeural) PredictBatch(ctx context.Context, pairs []domain.PredictionPair) ([]float64, error) {
	if len(pairs) == 0 {
		return []float64{}, nil
	}

	scores, err := r.cb.Execute(func() ([]float64, error) {
		return r.predict(ctx, pairs)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPredictionUnavailable, err)
	}

	return scores, nil
}

func (r *RemoteNeural) State() gobreaker.State {
	return r.cb.State()
}

func (r *RemoteNeural) predict(ctx context.Context, pairs []domain.PredictionPair) ([]float64, error) {
	body, err := json.Marshal(predictRequest{Instances: pairs})
	if err != nil {
		return nil, fmt.Errorf("encode predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predict request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("predict: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode predict response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("predict: %s", out.Error)
	}
	if len(out.Predictions) != len(pairs) {
		return nil, fmt.Errorf("predict: %d predictions for %d instances", len(out.Predictions), len(pairs))
	}

	scores := make([]float64, len(out.Predictions))
	for i, s := range out.Predictions {
		scores[i] = float64(s)
	}
	return scores, nil
}

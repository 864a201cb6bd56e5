package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Strategy string

const (
	StrategyPersonalized Strategy = "personalized"
	StrategySimilar      Strategy = "similar"
	StrategyPopular      Strategy = "popular"
)

// Outcome is the result of a top-level recommendation call. FallbackReason is
// set when the requested strategy could not serve and Strategy names the one
// that did.
type Outcome struct {
	Requested      Strategy      `json:"requested"`
	Strategy       Strategy      `json:"strategy"`
	Items          []ProductInfo `json:"items"`
	FallbackReason error         `json:"-"`
}

// Reason renders the fallback reason for diagnostic output.
func (o Outcome) Reason() string {
	if o.FallbackReason == nil {
		return ""
	}
	return o.FallbackReason.Error()
}

// ScoredCandidate is one sampled item with its component scores.
type ScoredCandidate struct {
	ItemIndex          int     `json:"item_index"`
	ProductID          string  `json:"product_id"`
	CollaborativeScore float64 `json:"collaborative_score"` // substituted when unavailable
	CollaborativeOK    bool    `json:"collaborative_ok"`
	NeuralScore        float64 `json:"neural_score"`
	NeuralOK           bool    `json:"neural_ok"`
	BlendedScore       float64 `json:"blended_score"`
}

// SkippedCandidate is a sampled item that could not be scored at all.
type SkippedCandidate struct {
	ItemIndex int    `json:"item_index"`
	Reason    string `json:"reason"`
}

// DebugRanking exposes every scored and skipped candidate of one ranking run.
type DebugRanking struct {
	UserID     string             `json:"user_id"`
	UserIndex  int                `json:"user_index"`
	SeenCount  int                `json:"seen_count"`
	Sampled    int                `json:"sampled"`
	Scored     []ScoredCandidate  `json:"scored"`
	Skipped    []SkippedCandidate `json:"skipped"`
	TopN       int                `json:"top_n"`
	SnapshotID string             `json:"snapshot_version"`
}

// RecommendationLog is the audit row written for every served recommendation.
type RecommendationLog struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Subject   string            `gorm:"column:subject;not null" json:"subject"` // user or product id
	Requested string            `gorm:"column:requested;not null" json:"requested"`
	Strategy  string            `gorm:"column:strategy;not null" json:"strategy"`
	Reason    string            `gorm:"column:reason" json:"reason"`
	ItemCount int               `gorm:"column:item_count" json:"item_count"`
	Context   datatypes.JSONMap `gorm:"column:context;type:jsonb" json:"context"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (RecommendationLog) TableName() string {
	return "recommendation_logs"
}

// PredictionPair addresses one (user, item) cell of the rating matrix by
// dense index.
type PredictionPair struct {
	UserIndex int `json:"user_id"`
	ItemIndex int `json:"product_id"`
}

// CachedOutcome is the serialized form of an Outcome; the fallback reason is
// kept as text only.
type CachedOutcome struct {
	Requested Strategy      `json:"requested"`
	Strategy  Strategy      `json:"strategy"`
	Items     []ProductInfo `json:"items"`
	Reason    string        `json:"reason,omitempty"`
}

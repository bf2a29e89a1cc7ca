package models

import (
	"encoding/json"
	"math"
)

// ScoreResult is the outcome of scoring one profile. The tier is always
// derived from the probability; there is no way to set it independently.
type ScoreResult struct {
	probability float64
	tier        Tier
}

// NewScoreResult classifies p. It panics when p is outside [0, 1], see ClassifyTier.
func NewScoreResult(p float64) ScoreResult {
	return ScoreResult{probability: p, tier: ClassifyTier(p)}
}

func (r ScoreResult) Probability() float64 { return r.probability }
func (r ScoreResult) Tier() Tier           { return r.tier }

// Percentage is the probability in percent, rounded to two decimals.
func (r ScoreResult) Percentage() float64 {
	return math.Round(r.probability*10000) / 100
}

// MarshalJSON renders {"probability": p, "tier": "..."}.
func (r ScoreResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Probability float64 `json:"probability"`
		Tier        Tier    `json:"tier"`
	}{r.probability, r.tier})
}

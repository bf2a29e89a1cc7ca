package models

import (
	"fmt"
	"math"
)

// Tier is the lead priority derived from a purchase probability.
type Tier string

const (
	TierHigh   Tier = "HIGH"
	TierMedium Tier = "MEDIUM"
	TierLow    Tier = "LOW"
)

// Fixed tier thresholds. Both boundaries belong to MEDIUM.
const (
	HighTierThreshold = 0.70
	LowTierThreshold  = 0.35
)

// ClassifyTier maps a probability to its tier:
// p > 0.70 is HIGH, 0.35 <= p <= 0.70 is MEDIUM, p < 0.35 is LOW.
// It panics when p is NaN or outside [0, 1]; the scoring engine never returns such values.
func ClassifyTier(p float64) Tier {
	if math.IsNaN(p) || p < 0 || p > 1 {
		panic(fmt.Sprintf("models: probability %v outside [0, 1]", p))
	}
	switch {
	case p > HighTierThreshold:
		return TierHigh
	case p >= LowTierThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// Label returns the status line shown next to a score.
func (t Tier) Label() string {
	switch t {
	case TierHigh:
		return "High-Priority Lead"
	case TierMedium:
		return "Medium-Priority Lead"
	case TierLow:
		return "Low-Priority Lead"
	default:
		return "Unknown"
	}
}

package service

import (
	"fmt"
	"math"

	"github.com/turtacn/tips/internal/domain/models"
	"github.com/turtacn/tips/pkg/errors"
)

// ScoringEngine invokes a compiled model on a feature vector.
// ScoringEngine 在特征向量上调用已编译的模型。
type ScoringEngine struct {
	model Model
}

// NewScoringEngine wraps model.
func NewScoringEngine(model Model) *ScoringEngine {
	return &ScoringEngine{model: model}
}

// Score returns the positive-class probability. A dimension mismatch, a
// non-finite input or a probability outside [0, 1] is a scoring_error; there
// is no fallback value.
func (e *ScoringEngine) Score(v models.FeatureVector) (float64, error) {
	if v.Len() != e.model.NFeatures() {
		return 0, errors.ErrScoring(fmt.Sprintf("feature vector has %d values, model expects %d", v.Len(), e.model.NFeatures()))
	}
	x := v.Values()
	for i, f := range x {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, errors.ErrScoring(fmt.Sprintf("feature %d is not finite", i))
		}
	}

	p := e.model.PredictProba(x)
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, errors.ErrScoring("model produced a non-finite probability")
	}
	if p < 0 || p > 1 {
		return 0, errors.ErrScoring(fmt.Sprintf("model produced probability %v outside [0, 1]", p))
	}
	return p, nil
}

// Model returns the wrapped model.
func (e *ScoringEngine) Model() Model { return e.model }

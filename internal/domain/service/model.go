package service

import (
	"fmt"
	"math"

	"github.com/turtacn/tips/internal/domain/models"
	"github.com/turtacn/tips/pkg/constants"
	"github.com/turtacn/tips/pkg/errors"
)

// NewModel compiles a model artifact. Structural problems (bad tree links,
// out-of-range features, non-finite parameters) are artifact_load_errors.
func NewModel(spec models.ModelSpec) (Model, error) {
	fail := func(format string, args ...any) error {
		return errors.ErrArtifactLoad(constants.ArtifactModel, fmt.Sprintf(format, args...))
	}

	if spec.FormatVersion != constants.ArtifactFormatVersion {
		return nil, fail("unsupported format_version %d", spec.FormatVersion)
	}
	if spec.NFeatures <= 0 {
		return nil, fail("n_features must be positive, got %d", spec.NFeatures)
	}
	if spec.FeatureNames != nil && len(spec.FeatureNames) != spec.NFeatures {
		return nil, fail("feature_names lists %d names for %d features", len(spec.FeatureNames), spec.NFeatures)
	}

	base := modelBase{kind: spec.Kind, nFeatures: spec.NFeatures}
	if spec.FeatureNames != nil {
		base.featureNames = append([]string(nil), spec.FeatureNames...)
	}

	switch spec.Kind {
	case models.ModelGradientBoosting:
		if !finite(spec.LearningRate) || spec.LearningRate <= 0 || !finite(spec.InitScore) {
			return nil, fail("invalid learning_rate or init_score")
		}
		if len(spec.Trees) == 0 {
			return nil, fail("gradient_boosting model has no trees")
		}
		m := &gradientBoosting{modelBase: base, learningRate: spec.LearningRate, initScore: spec.InitScore}
		for i, tree := range spec.Trees {
			if err := checkTree(tree, spec.NFeatures); err != nil {
				return nil, fail("tree %d: %v", i, err)
			}
			m.trees = append(m.trees, append([]models.NodeSpec(nil), tree.Nodes...))
		}
		return m, nil

	case models.ModelLogisticRegression:
		if len(spec.Coefficients) != spec.NFeatures {
			return nil, fail("%d coefficients for %d features", len(spec.Coefficients), spec.NFeatures)
		}
		if !finite(spec.Intercept) {
			return nil, fail("intercept is not finite")
		}
		for i, w := range spec.Coefficients {
			if !finite(w) {
				return nil, fail("coefficient %d is not finite", i)
			}
		}
		return &logisticRegression{
			modelBase:    base,
			coefficients: append([]float64(nil), spec.Coefficients...),
			intercept:    spec.Intercept,
		}, nil

	default:
		return nil, fail("unknown model kind %q", spec.Kind)
	}
}

// checkTree rejects trees that could loop or index out of range.
// Children always point forward, so evaluation terminates.
func checkTree(tree models.TreeSpec, nFeatures int) error {
	if len(tree.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range tree.Nodes {
		if n.Leaf {
			if !finite(n.Value) {
				return fmt.Errorf("node %d: leaf value is not finite", i)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= nFeatures {
			return fmt.Errorf("node %d: feature %d out of range", i, n.Feature)
		}
		if !finite(n.Threshold) {
			return fmt.Errorf("node %d: threshold is not finite", i)
		}
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(tree.Nodes) {
				return fmt.Errorf("node %d: child %d out of order", i, child)
			}
		}
	}
	return nil
}

type modelBase struct {
	kind         string
	nFeatures    int
	featureNames []string
}

func (m modelBase) Kind() string   { return m.kind }
func (m modelBase) NFeatures() int { return m.nFeatures }

func (m modelBase) FeatureNames() []string {
	if m.featureNames == nil {
		return nil
	}
	return append([]string(nil), m.featureNames...)
}

type gradientBoosting struct {
	modelBase
	learningRate float64
	initScore    float64
	trees        [][]models.NodeSpec
}

func (m *gradientBoosting) PredictProba(x []float64) float64 {
	raw := 0.0
	for _, nodes := range m.trees {
		i := 0
		for !nodes[i].Leaf {
			if x[nodes[i].Feature] <= nodes[i].Threshold {
				i = nodes[i].Left
			} else {
				i = nodes[i].Right
			}
		}
		raw += nodes[i].Value
	}
	return sigmoid(m.initScore + m.learningRate*raw)
}

type logisticRegression struct {
	modelBase
	coefficients []float64
	intercept    float64
}

func (m *logisticRegression) PredictProba(x []float64) float64 {
	z := m.intercept
	for i, w := range m.coefficients {
		z += w * x[i]
	}
	return sigmoid(z)
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

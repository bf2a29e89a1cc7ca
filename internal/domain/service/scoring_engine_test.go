package service_test

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/tips/internal/domain/models"
	"github.com/turtacn/tips/internal/domain/service"
	"github.com/turtacn/tips/internal/domain/service/mocks"
	"github.com/turtacn/tips/pkg/errors"
)

func TestNewModel_GradientBoosting(t *testing.T) {
	m, err := service.NewModel(fixtureModel())
	require.NoError(t, err)
	assert.Equal(t, models.ModelGradientBoosting, m.Kind())
	assert.Equal(t, 9, m.NFeatures())
	assert.Equal(t, fixtureFeatureNames, m.FeatureNames())

	x := make([]float64, 9)
	// all splits go left: -0.6 - 0.3 - 0.2
	assert.InDelta(t, 1/(1+math.Exp(0.2+0.5*1.1)), m.PredictProba(x), 1e-12)
}

func TestNewModel_LogisticRegression(t *testing.T) {
	m, err := service.NewModel(models.ModelSpec{
		FormatVersion: 1,
		Kind:          models.ModelLogisticRegression,
		NFeatures:     2,
		Coefficients:  []float64{1, -2},
		Intercept:     0.5,
	})
	require.NoError(t, err)
	assert.Nil(t, m.FeatureNames())
	assert.InDelta(t, 0.5, m.PredictProba([]float64{1.5, 1}), 1e-12)
}

func TestNewModel_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *models.ModelSpec)
	}{
		{"unknown kind", func(s *models.ModelSpec) { s.Kind = "random_forest" }},
		{"no features", func(s *models.ModelSpec) { s.NFeatures = 0 }},
		{"names length", func(s *models.ModelSpec) { s.FeatureNames = s.FeatureNames[:3] }},
		{"no trees", func(s *models.ModelSpec) { s.Trees = nil }},
		{"zero learning rate", func(s *models.ModelSpec) { s.LearningRate = 0 }},
		{"backward child", func(s *models.ModelSpec) { s.Trees[0].Nodes[1].Left = 0 }},
		{"child out of range", func(s *models.ModelSpec) { s.Trees[2].Nodes[0].Right = 9 }},
		{"feature out of range", func(s *models.ModelSpec) { s.Trees[1].Nodes[0].Feature = 9 }},
		{"nan leaf", func(s *models.ModelSpec) { s.Trees[2].Nodes[1].Value = math.NaN() }},
		{"empty tree", func(s *models.ModelSpec) { s.Trees[1].Nodes = nil }},
		{"format version", func(s *models.ModelSpec) { s.FormatVersion = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := fixtureModel()
			tt.mutate(&spec)
			_, err := service.NewModel(spec)
			require.Error(t, err)
			assert.True(t, errors.IsArtifactLoadError(err))
		})
	}

	_, err := service.NewModel(models.ModelSpec{
		FormatVersion: 1, Kind: models.ModelLogisticRegression, NFeatures: 2, Coefficients: []float64{1},
	})
	assert.True(t, errors.IsArtifactLoadError(err))
}

func TestScoringEngine_Score(t *testing.T) {
	m, err := service.NewModel(fixtureModel())
	require.NoError(t, err)
	engine := service.NewScoringEngine(m)

	p, err := engine.Score(models.NewFeatureVector(make([]float64, 9)))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)
}

func TestScoringEngine_DimensionMismatch(t *testing.T) {
	m, err := service.NewModel(fixtureModel())
	require.NoError(t, err)

	_, err = service.NewScoringEngine(m).Score(models.NewFeatureVector(make([]float64, 8)))
	require.Error(t, err)
	assert.True(t, errors.IsScoringError(err))
}

func TestScoringEngine_NonFiniteInput(t *testing.T) {
	m, err := service.NewModel(fixtureModel())
	require.NoError(t, err)

	x := make([]float64, 9)
	x[3] = math.Inf(-1)
	_, err = service.NewScoringEngine(m).Score(models.NewFeatureVector(x))
	assert.True(t, errors.IsScoringError(err))
}

func TestScoringEngine_InvalidModelOutput(t *testing.T) {
	for _, out := range []float64{math.NaN(), math.Inf(1), 1.2, -0.1} {
		model := new(mocks.MockModel)
		model.On("NFeatures").Return(2)
		model.On("PredictProba", mock.Anything).Return(out)

		_, err := service.NewScoringEngine(model).Score(models.NewFeatureVector([]float64{1, 2}))
		require.Error(t, err, "output %v", out)
		assert.True(t, errors.IsScoringError(err))
		model.AssertExpectations(t)
	}
}

func TestBuildArtifacts_EndToEnd(t *testing.T) {
	a, err := service.BuildArtifacts(fixtureTransform(), fixtureModel(), models.ArtifactMetadata{Source: "test"})
	require.NoError(t, err)
	assert.Equal(t, "2024.06.1", a.Metadata.TransformVersion)
	assert.Equal(t, "gbm-2024.06.1", a.Metadata.ModelVersion)
	assert.Equal(t, models.ModelGradientBoosting, a.Metadata.ModelKind)
	assert.Equal(t, fixtureFeatureNames, a.Metadata.FeatureNames)
	assert.Equal(t, "Gradient Boosting Classifier", a.Metadata.Info.Algorithm)

	tests := []struct {
		name   string
		mutate func(f *models.ProfileFields)
		p      float64
		tier   models.Tier
	}{
		{"example profile", func(f *models.ProfileFields) {}, 0.3543437, models.TierMedium},
		{"seasoned traveller", func(f *models.ProfileFields) {
			f.FrequentFlyer, f.TravelledAbroad = true, true
		}, 0.8099984, models.TierHigh},
		{"no degree", func(f *models.ProfileFields) { f.HigherEducation = false }, 0.3208213, models.TierLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := exampleFields()
			tt.mutate(&f)
			r, err := a.Score(mustProfile(f))
			require.NoError(t, err)
			assert.InDelta(t, tt.p, r.Probability(), 1e-6)
			assert.Equal(t, tt.tier, r.Tier())
		})
	}
}

func TestBuildArtifacts_ZeroProfileIsNotScored(t *testing.T) {
	a, err := service.BuildArtifacts(fixtureTransform(), fixtureModel(), models.ArtifactMetadata{})
	require.NoError(t, err)

	r, err := a.Score(models.CustomerProfile{})
	require.Error(t, err)
	assert.True(t, errors.IsScoringError(err))
	assert.Equal(t, models.ScoreResult{}, r)
}

func TestBuildArtifacts_Deterministic(t *testing.T) {
	a, err := service.BuildArtifacts(fixtureTransform(), fixtureModel(), models.ArtifactMetadata{})
	require.NoError(t, err)
	p := mustProfile(exampleFields())

	first, err := a.Score(p)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := a.Score(p)
			assert.NoError(t, err)
			assert.Equal(t, math.Float64bits(first.Probability()), math.Float64bits(r.Probability()))
		}()
	}
	wg.Wait()
}

func TestBuildArtifacts_CrossCheck(t *testing.T) {
	model := fixtureModel()
	model.NFeatures = 8
	model.FeatureNames = model.FeatureNames[:8]
	_, err := service.BuildArtifacts(fixtureTransform(), model, models.ArtifactMetadata{})
	assert.True(t, errors.IsArtifactLoadError(err))

	model = fixtureModel()
	model.FeatureNames[4], model.FeatureNames[5] = model.FeatureNames[5], model.FeatureNames[4]
	_, err = service.BuildArtifacts(fixtureTransform(), model, models.ArtifactMetadata{})
	assert.True(t, errors.IsArtifactLoadError(err))

	model = fixtureModel()
	model.FeatureNames = nil
	_, err = service.BuildArtifacts(fixtureTransform(), model, models.ArtifactMetadata{})
	assert.NoError(t, err)
}

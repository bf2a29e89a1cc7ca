package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/turtacn/tips/internal/domain/models"
	"github.com/turtacn/tips/internal/domain/service"
)

type MockModel struct {
	mock.Mock
}

func (m *MockModel) Kind() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockModel) NFeatures() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockModel) FeatureNames() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

func (m *MockModel) PredictProba(x []float64) float64 {
	args := m.Called(x)
	return args.Get(0).(float64)
}

type MockArtifactProvider struct {
	mock.Mock
}

func (m *MockArtifactProvider) Load(ctx context.Context) (*service.ModelArtifacts, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ModelArtifacts), args.Error(1)
}

func (m *MockArtifactProvider) Current() *service.ModelArtifacts {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*service.ModelArtifacts)
}

func (m *MockArtifactProvider) Reload(ctx context.Context) (*service.ModelArtifacts, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ModelArtifacts), args.Error(1)
}

type MockScoreCache struct {
	mock.Mock
}

func (m *MockScoreCache) Get(key string) (models.ScoreResult, bool) {
	args := m.Called(key)
	return args.Get(0).(models.ScoreResult), args.Bool(1)
}

func (m *MockScoreCache) Set(key string, result models.ScoreResult) {
	m.Called(key, result)
}

func (m *MockScoreCache) Flush() {
	m.Called()
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordScore(result, tier string, duration time.Duration) {
	m.Called(result, tier, duration)
}

func (m *MockMetrics) ObserveProbability(p float64) {
	m.Called(p)
}

func (m *MockMetrics) RecordArtifactLoad(source string, success bool, duration time.Duration) {
	m.Called(source, success, duration)
}

func (m *MockMetrics) RecordCacheAccess(cacheType string, hit bool) {
	m.Called(cacheType, hit)
}

package service

import (
	"context"

	"github.com/turtacn/tips/internal/domain/models"
)

// Model is a compiled predictive model.
// Model 是已编译的预测模型。
//
//go:generate mockery --name Model --output mocks --outpkg mocks
type Model interface {
	// Kind returns the artifact model kind, e.g. "gradient_boosting".
	Kind() string

	// NFeatures is the input width the model was trained on.
	NFeatures() int

	// FeatureNames returns the training feature names, or nil when the artifact omits them.
	FeatureNames() []string

	// PredictProba returns the positive-class probability for x.
	// len(x) must equal NFeatures; the scoring engine checks this first.
	// PredictProba 返回正类（将购买）的概率。
	PredictProba(x []float64) float64
}

// ArtifactProvider is the single indirection point to the loaded artifacts.
// ArtifactProvider 是访问已加载工件的唯一入口。
//
//go:generate mockery --name ArtifactProvider --output mocks --outpkg mocks
type ArtifactProvider interface {
	// Load returns the process-wide artifacts, loading them on first use.
	// Load 返回进程级共享的工件，首次调用时加载。
	Load(ctx context.Context) (*ModelArtifacts, error)

	// Current returns the live artifacts without loading; nil before the first successful load.
	Current() *ModelArtifacts

	// Reload builds a fresh instance and swaps it in on success.
	// Reload 构建新实例并在成功时原子替换。
	Reload(ctx context.Context) (*ModelArtifacts, error)
}

// ScoreCache memoizes score results per profile and artifact fingerprint.
// ScoreCache 按画像与工件指纹缓存评分结果。
//
//go:generate mockery --name ScoreCache --output mocks --outpkg mocks
type ScoreCache interface {
	Get(key string) (models.ScoreResult, bool)
	Set(key string, result models.ScoreResult)
	Flush()
}

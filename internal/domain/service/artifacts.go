package service

import (
	"fmt"

	"github.com/turtacn/tips/internal/domain/models"
	"github.com/turtacn/tips/pkg/constants"
	"github.com/turtacn/tips/pkg/errors"
)

// ModelArtifacts is the compiled artifact pair. It is never mutated after
// BuildArtifacts returns and is shared by concurrent readers without locks.
// ModelArtifacts 是已编译的工件对，构建后只读，可被并发读取者无锁共享。
type ModelArtifacts struct {
	Transformer *FeatureTransformer
	Engine      *ScoringEngine
	Metadata    models.ArtifactMetadata
}

// BuildArtifacts compiles both artifacts and cross-checks them: the model's
// input width must equal the transformer's output width, and declared model
// feature names must equal the transformer's names position by position.
// meta carries the checksums and source; versions and feature names are filled in here.
func BuildArtifacts(transform models.TransformSpec, model models.ModelSpec, meta models.ArtifactMetadata) (*ModelArtifacts, error) {
	transformer, err := NewFeatureTransformer(transform)
	if err != nil {
		return nil, err
	}
	m, err := NewModel(model)
	if err != nil {
		return nil, err
	}

	if m.NFeatures() != transformer.Width() {
		return nil, errors.ErrArtifactLoad(constants.ArtifactModel,
			fmt.Sprintf("model expects %d features, transform produces %d", m.NFeatures(), transformer.Width()))
	}
	if names := m.FeatureNames(); names != nil {
		for i, name := range transformer.FeatureNames() {
			if names[i] != name {
				return nil, errors.ErrArtifactLoad(constants.ArtifactModel,
					fmt.Sprintf("feature %d is %q in the model and %q in the transform", i, names[i], name))
			}
		}
	}

	meta.TransformVersion = transformer.Version()
	meta.ModelVersion = model.Version
	meta.ModelKind = m.Kind()
	meta.FeatureNames = transformer.FeatureNames()
	meta.Info = model.Info

	return &ModelArtifacts{
		Transformer: transformer,
		Engine:      NewScoringEngine(m),
		Metadata:    meta,
	}, nil
}

// Score runs transform, model and tier classification for one profile.
func (a *ModelArtifacts) Score(p models.CustomerProfile) (models.ScoreResult, error) {
	v, err := a.Transformer.Transform(p)
	if err != nil {
		return models.ScoreResult{}, err
	}
	prob, err := a.Engine.Score(v)
	if err != nil {
		return models.ScoreResult{}, err
	}
	return models.NewScoreResult(prob), nil
}

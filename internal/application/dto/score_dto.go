// Package dto holds the request and response shapes of the scoring API.
package dto

import (
	"time"

	"github.com/turtacn/tips/internal/domain/models"
	"github.com/turtacn/tips/internal/domain/service"
)

// ScoreResponse 评分结果响应
type ScoreResponse struct {
	Probability      float64     `json:"probability"`
	Percentage       float64     `json:"percentage"`
	Tier             models.Tier `json:"tier"`
	Label            string      `json:"label"`
	ModelVersion     string      `json:"model_version"`
	TransformVersion string      `json:"transform_version"`
	Cached           bool        `json:"cached,omitempty"`
}

// NewScoreResponse builds the response for a result scored with meta.
func NewScoreResponse(r models.ScoreResult, meta models.ArtifactMetadata, cached bool) *ScoreResponse {
	return &ScoreResponse{
		Probability:      r.Probability(),
		Percentage:       r.Percentage(),
		Tier:             r.Tier(),
		Label:            r.Tier().Label(),
		ModelVersion:     meta.ModelVersion,
		TransformVersion: meta.TransformVersion,
		Cached:           cached,
	}
}

// MethodologyDTO describes how the model was built.
type MethodologyDTO struct {
	Algorithm string  `json:"algorithm,omitempty"`
	Accuracy  float64 `json:"accuracy,omitempty"`
	TrainedAt string  `json:"trained_at,omitempty"`
}

// ArtifactInfoResponse 工件信息响应
type ArtifactInfoResponse struct {
	TransformVersion string         `json:"transform_version"`
	ModelVersion     string         `json:"model_version"`
	ModelKind        string         `json:"model_kind"`
	TransformSHA256  string         `json:"transform_sha256"`
	ModelSHA256      string         `json:"model_sha256"`
	Source           string         `json:"source"`
	FeatureNames     []string       `json:"feature_names"`
	Methodology      MethodologyDTO `json:"methodology"`
	LoadedAt         time.Time      `json:"loaded_at"`
}

// NewArtifactInfoResponse maps loaded artifacts to their public description.
func NewArtifactInfoResponse(a *service.ModelArtifacts) *ArtifactInfoResponse {
	m := a.Metadata
	return &ArtifactInfoResponse{
		TransformVersion: m.TransformVersion,
		ModelVersion:     m.ModelVersion,
		ModelKind:        m.ModelKind,
		TransformSHA256:  m.TransformSHA256,
		ModelSHA256:      m.ModelSHA256,
		Source:           m.Source,
		FeatureNames:     append([]string(nil), m.FeatureNames...),
		Methodology: MethodologyDTO{
			Algorithm: m.Info.Algorithm,
			Accuracy:  m.Info.Accuracy,
			TrainedAt: m.Info.TrainedAt,
		},
		LoadedAt: m.LoadedAt,
	}
}

package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/tips/internal/domain/models"
	"github.com/turtacn/tips/internal/domain/service"
)

func TestNewArtifactInfoResponse_DoesNotShareFeatureNames(t *testing.T) {
	a := &service.ModelArtifacts{Metadata: models.ArtifactMetadata{
		ModelVersion: "gbm-2024.06.1",
		FeatureNames: []string{"Age", "AnnualIncome"},
		Info:         models.ModelInfo{Algorithm: "Gradient Boosting Classifier", Accuracy: 0.8417},
	}}

	resp := NewArtifactInfoResponse(a)
	assert.Equal(t, []string{"Age", "AnnualIncome"}, resp.FeatureNames)
	assert.Equal(t, 0.8417, resp.Methodology.Accuracy)

	resp.FeatureNames[0] = "tampered"
	assert.Equal(t, "Age", a.Metadata.FeatureNames[0])
}

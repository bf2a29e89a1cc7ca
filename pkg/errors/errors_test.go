package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/tips/pkg/constants"
	"github.com/turtacn/tips/pkg/errors"
)

func TestTaxonomy_CodesAndStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    errors.CoreError
		code   constants.ErrorCode
		status int
	}{
		{"validation", errors.ErrValidation("age", "must be at least 18"), constants.ErrCodeValidation, http.StatusUnprocessableEntity},
		{"unknown category", errors.ErrUnknownCategory("employmentSector", "FREELANCE"), constants.ErrCodeUnknownCategory, http.StatusUnprocessableEntity},
		{"artifact load", errors.ErrArtifactLoad(constants.ArtifactModel, "file missing"), constants.ErrCodeArtifactLoad, http.StatusServiceUnavailable},
		{"scoring", errors.ErrScoring("probability is NaN"), constants.ErrCodeScoring, http.StatusInternalServerError},
		{"invalid request", errors.ErrInvalidRequest("body is not JSON"), constants.ErrCodeInvalidRequest, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code())
			assert.Equal(t, tt.status, tt.err.HTTPStatus())
			assert.NotEmpty(t, tt.err.Description())
		})
	}
}

func TestIsValidationError_CoversUnknownCategory(t *testing.T) {
	assert.True(t, errors.IsValidationError(errors.ErrValidation("age", "is required")))
	assert.True(t, errors.IsValidationError(errors.ErrUnknownCategory("employmentSector", "x")))
	assert.True(t, errors.IsUnknownCategory(errors.ErrUnknownCategory("employmentSector", "x")))
	assert.False(t, errors.IsUnknownCategory(errors.ErrValidation("age", "is required")))
	assert.False(t, errors.IsValidationError(errors.ErrScoring("boom")))
	assert.False(t, errors.IsValidationError(stderrors.New("plain")))
}

func TestFieldOf(t *testing.T) {
	assert.Equal(t, "age", errors.FieldOf(errors.ErrValidation("age", "must be at most 100")))
	assert.Equal(t, "employmentSector", errors.FieldOf(errors.ErrUnknownCategory("employmentSector", "x")))
	assert.Equal(t, "", errors.FieldOf(errors.ErrScoring("boom")))
	assert.Equal(t, "", errors.FieldOf(stderrors.New("plain")))
}

func TestAsCoreError_ThroughWrapping(t *testing.T) {
	inner := errors.ErrArtifactLoad(constants.ArtifactTransform, "schema mismatch")
	wrapped := fmt.Errorf("startup: %w", inner)

	coreErr, ok := errors.AsCoreError(wrapped)
	require.True(t, ok)
	assert.Equal(t, constants.ErrCodeArtifactLoad, coreErr.Code())
	assert.True(t, errors.IsArtifactLoadError(wrapped))
}

func TestWithCause_Unwraps(t *testing.T) {
	cause := stderrors.New("open preprocessor.json: no such file")
	err := errors.ErrArtifactLoad(constants.ArtifactTransform, "fetch failed").WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "no such file")
}

func TestToErrorResponse_HidesInternalDetails(t *testing.T) {
	resp := errors.ToErrorResponse(errors.ErrScoring("model produced NaN"))
	assert.Equal(t, "scoring_error", resp.Error)
	assert.Empty(t, resp.Message)
	assert.Nil(t, resp.Metadata)

	resp = errors.ToErrorResponse(errors.ErrValidation("age", "must be at least 18"))
	assert.Equal(t, "validation_error", resp.Error)
	assert.Equal(t, "age must be at least 18", resp.Message)
	assert.Equal(t, "age", resp.Metadata["field"])
}

func TestToGenericErrorResponse_PlainError(t *testing.T) {
	status, resp := errors.ToGenericErrorResponse(stderrors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", resp.Error)
}

func TestShouldLogError(t *testing.T) {
	assert.False(t, errors.ShouldLogError(errors.ErrValidation("age", "is required")))
	assert.True(t, errors.ShouldLogError(errors.ErrScoring("boom")))
	assert.True(t, errors.ShouldLogError(stderrors.New("plain")))
}

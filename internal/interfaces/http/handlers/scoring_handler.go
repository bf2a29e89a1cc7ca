// Package handlers provides the HTTP handlers for the scoring service.
package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/tips/internal/application/dto"
	"github.com/turtacn/tips/internal/application/service"
	"github.com/turtacn/tips/pkg/errors"
	"github.com/turtacn/tips/pkg/logger"
)

// maxProfileBodyBytes bounds the request body of a scoring call.
const maxProfileBodyBytes = 64 << 10

// ScoringHandler handles HTTP requests for scoring and artifact inspection.
type ScoringHandler struct {
	scoring service.ScoringAppService
	logger  logger.Logger
}

// NewScoringHandler creates a new ScoringHandler.
func NewScoringHandler(scoring service.ScoringAppService, log logger.Logger) *ScoringHandler {
	return &ScoringHandler{
		scoring: scoring,
		logger:  log.WithComponent("scoring-handler"),
	}
}

// Score godoc
// @Summary      Score a customer profile
// @Description  Validates the profile and returns its purchase probability and lead tier.
// @Tags         scoring
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Success      200  {object}  dto.ScoreResponse
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      422  {object}  errors.ErrorResponse
// @Failure      503  {object}  errors.ErrorResponse
// @Router       /api/v1/score [post]
func (h *ScoringHandler) Score(c *gin.Context) {
	raw, err := readProfile(c)
	if err != nil {
		dto.SendError(c, err)
		return
	}

	resp, err := h.scoring.ScoreProfile(c.Request.Context(), raw)
	if err != nil {
		h.logFailure(c, "Scoring request failed", err)
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, resp)
}

// GetArtifacts describes the artifacts in service.
// 返回当前工件的版本、校验和与特征名称。
func (h *ScoringHandler) GetArtifacts(c *gin.Context) {
	info, err := h.scoring.ArtifactInfo(c.Request.Context())
	if err != nil {
		h.logFailure(c, "Artifact info unavailable", err)
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, info)
}

// ReloadArtifacts triggers an explicit hot reload.
func (h *ScoringHandler) ReloadArtifacts(c *gin.Context) {
	info, err := h.scoring.ReloadArtifacts(c.Request.Context())
	if err != nil {
		h.logFailure(c, "Artifact reload failed", err)
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, info)
}

func (h *ScoringHandler) logFailure(c *gin.Context, msg string, err error) {
	if errors.ShouldLogError(err) {
		h.logger.Error(c.Request.Context(), msg, err, logger.String("path", c.FullPath()))
	}
}

// readProfile decodes the raw profile from a JSON object or a url-encoded form.
// JSON numbers stay json.Number so integral checks see the literal.
func readProfile(c *gin.Context) (map[string]any, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxProfileBodyBytes)

	if strings.HasPrefix(c.ContentType(), "application/x-www-form-urlencoded") {
		return readForm(c)
	}

	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, errors.ErrInvalidRequest("request body is empty")
		}
		return nil, errors.ErrInvalidRequest("request body must be a JSON object").WithCause(err)
	}
	if raw == nil {
		return nil, errors.ErrInvalidRequest("request body must be a JSON object")
	}
	if dec.More() {
		return nil, errors.ErrInvalidRequest("request body has trailing data")
	}
	return raw, nil
}

func readForm(c *gin.Context) (map[string]any, error) {
	if err := c.Request.ParseForm(); err != nil {
		return nil, errors.ErrInvalidRequest("malformed form body").WithCause(err)
	}
	raw := make(map[string]any, len(c.Request.PostForm))
	for key, values := range c.Request.PostForm {
		if len(values) != 1 {
			return nil, errors.ErrInvalidRequest(fmt.Sprintf("form field %s must have exactly one value", key))
		}
		raw[key] = values[0]
	}
	return raw, nil
}

//Personal.AI order the ending

// Package service provides application-level services that orchestrate the scoring pipeline
package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/turtacn/tips/internal/application/dto"
	domainService "github.com/turtacn/tips/internal/domain/service"
	"github.com/turtacn/tips/pkg/constants"
	"github.com/turtacn/tips/pkg/errors"
	"github.com/turtacn/tips/pkg/logger"
)

const scoreCacheName = "score"

// ScoringAppService defines the interface for the scoring application service
type ScoringAppService interface {
	// ScoreProfile validates a raw profile and returns its probability and tier
	ScoreProfile(ctx context.Context, raw map[string]any) (*dto.ScoreResponse, error)

	// ArtifactInfo describes the artifacts in service, loading them if needed
	ArtifactInfo(ctx context.Context) (*dto.ArtifactInfoResponse, error)

	// ReloadArtifacts swaps in freshly loaded artifacts
	ReloadArtifacts(ctx context.Context) (*dto.ArtifactInfoResponse, error)

	// Ready reports whether artifacts are loaded
	Ready() bool
}

// scoringAppServiceImpl is the concrete implementation of ScoringAppService
type scoringAppServiceImpl struct {
	validator *domainService.ProfileValidator
	artifacts domainService.ArtifactProvider
	cache     domainService.ScoreCache
	metrics   domainService.Metrics
	logger    logger.Logger
}

// NewScoringAppService creates a new instance of ScoringAppService.
// cache and metrics may be nil.
func NewScoringAppService(
	artifacts domainService.ArtifactProvider,
	cache domainService.ScoreCache,
	metrics domainService.Metrics,
	log logger.Logger,
) ScoringAppService {
	if metrics == nil {
		metrics = domainService.NopMetrics{}
	}
	return &scoringAppServiceImpl{
		validator: domainService.NewProfileValidator(),
		artifacts: artifacts,
		cache:     cache,
		metrics:   metrics,
		logger:    log.WithComponent("scoring"),
	}
}

// ScoreProfile implements the scoring operation.
// 校验 -> 特征转换 -> 模型评分 -> 分级
func (s *scoringAppServiceImpl) ScoreProfile(ctx context.Context, raw map[string]any) (resp *dto.ScoreResponse, err error) {
	start := time.Now()
	ctx, span := otel.Tracer(constants.ServiceName).Start(ctx, "ScoringAppService.ScoreProfile")
	defer func() {
		result, tier := "success", ""
		if err != nil {
			result = errorCode(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, result)
		} else {
			tier = string(resp.Tier)
			span.SetAttributes(
				attribute.String("score.tier", tier),
				attribute.Bool("score.cached", resp.Cached),
			)
		}
		s.metrics.RecordScore(result, tier, time.Since(start))
		span.End()
	}()

	// 1. Validate the raw profile
	profile, err := s.validator.Validate(raw)
	if err != nil {
		s.logger.Debug(ctx, "Profile rejected",
			logger.String("field", errors.FieldOf(err)),
			logger.String("code", errorCode(err)),
		)
		return nil, err
	}

	// 2. Resolve the artifacts in service
	artifacts, err := s.artifacts.Load(ctx)
	if err != nil {
		s.logger.Error(ctx, "Artifacts unavailable", err)
		return nil, err
	}
	meta := artifacts.Metadata

	// 3. Serve from cache when possible
	var key string
	if s.cache != nil {
		key = meta.CacheKey(profile)
		if cached, ok := s.cache.Get(key); ok {
			s.metrics.RecordCacheAccess(scoreCacheName, true)
			return dto.NewScoreResponse(cached, meta, true), nil
		}
		s.metrics.RecordCacheAccess(scoreCacheName, false)
	}

	// 4. Transform, score and classify
	result, err := artifacts.Score(profile)
	if err != nil {
		s.logger.Error(ctx, "Scoring failed", err,
			logger.ModelVersion(meta.ModelVersion),
			logger.TransformVersion(meta.TransformVersion),
		)
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(key, result)
	}
	s.metrics.ObserveProbability(result.Probability())
	s.logger.Debug(ctx, "Profile scored",
		logger.Float64("probability", result.Probability()),
		logger.String("tier", string(result.Tier())),
		logger.ModelVersion(meta.ModelVersion),
	)
	return dto.NewScoreResponse(result, meta, false), nil
}

// ArtifactInfo implements the artifact description query.
func (s *scoringAppServiceImpl) ArtifactInfo(ctx context.Context) (*dto.ArtifactInfoResponse, error) {
	artifacts, err := s.artifacts.Load(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewArtifactInfoResponse(artifacts), nil
}

// ReloadArtifacts implements the explicit hot reload.
func (s *scoringAppServiceImpl) ReloadArtifacts(ctx context.Context) (*dto.ArtifactInfoResponse, error) {
	previous := s.artifacts.Current()
	artifacts, err := s.artifacts.Reload(ctx)
	if err != nil {
		s.logger.Error(ctx, "Artifact reload failed", err)
		return nil, err
	}
	if s.cache != nil && (previous == nil || previous.Metadata.Fingerprint() != artifacts.Metadata.Fingerprint()) {
		s.cache.Flush()
	}
	s.logger.Info(ctx, "Artifacts reloaded on request",
		logger.ModelVersion(artifacts.Metadata.ModelVersion),
		logger.TransformVersion(artifacts.Metadata.TransformVersion),
	)
	return dto.NewArtifactInfoResponse(artifacts), nil
}

// Ready reports whether artifacts are in service.
func (s *scoringAppServiceImpl) Ready() bool {
	return s.artifacts.Current() != nil
}

func errorCode(err error) string {
	if coreErr, ok := errors.AsCoreError(err); ok {
		return string(coreErr.Code())
	}
	return string(constants.ErrCodeInternal)
}

package artifacts

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/tips/internal/config"
	"github.com/turtacn/tips/internal/domain/models"
	"github.com/turtacn/tips/internal/domain/service"
	"github.com/turtacn/tips/pkg/constants"
	"github.com/turtacn/tips/pkg/errors"
	"github.com/turtacn/tips/pkg/logger"
)

var _ service.ArtifactProvider = (*Loader)(nil)

// Options names the two artifacts and their optional pinned checksums.
type Options struct {
	TransformName   string
	ModelName       string
	TransformSHA256 string
	ModelSHA256     string
}

// OptionsFromConfig maps the artifacts config section.
func OptionsFromConfig(cfg config.ArtifactsConfig) Options {
	return Options{
		TransformName:   cfg.TransformName,
		ModelName:       cfg.ModelName,
		TransformSHA256: cfg.TransformSHA256,
		ModelSHA256:     cfg.ModelSHA256,
	}
}

// Loader loads the artifact pair at most once and serves it to any number of
// concurrent readers. Reload swaps in a fresh pair atomically.
// Loader 至多加载一次工件对，并向任意数量的并发读取者提供服务。
type Loader struct {
	source  Source
	opts    Options
	metrics service.Metrics
	logger  logger.Logger

	current atomic.Pointer[service.ModelArtifacts]
	loads   atomic.Int64

	mu      sync.Mutex
	loadErr error
}

// NewLoader creates a Loader. metrics may be nil.
func NewLoader(source Source, opts Options, metrics service.Metrics, log logger.Logger) *Loader {
	if metrics == nil {
		metrics = service.NopMetrics{}
	}
	return &Loader{
		source:  source,
		opts:    opts,
		metrics: metrics,
		logger:  log.WithComponent("artifact-loader"),
	}
}

// Load returns the shared artifacts, loading them on first use. Concurrent
// first callers wait for a single underlying load. A failed first load is
// remembered and returned to later callers; only Reload tries again.
func (l *Loader) Load(ctx context.Context) (*service.ModelArtifacts, error) {
	if a := l.current.Load(); a != nil {
		return a, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if a := l.current.Load(); a != nil {
		return a, nil
	}
	if l.loadErr != nil {
		return nil, l.loadErr
	}

	a, err := l.build(ctx)
	if err != nil {
		// A caller giving up is not a property of the artifacts.
		if ctx.Err() == nil {
			l.loadErr = err
		}
		return nil, err
	}
	l.current.Store(a)
	return a, nil
}

// Current returns the live artifacts, or nil before the first successful load.
func (l *Loader) Current() *service.ModelArtifacts {
	return l.current.Load()
}

// Reload builds a fresh pair and swaps it in. On failure the current pair
// stays in service and the error is returned.
func (l *Loader) Reload(ctx context.Context) (*service.ModelArtifacts, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, err := l.build(ctx)
	if err != nil {
		l.logger.Warn(ctx, "Artifact reload failed, keeping current artifacts",
			logger.String("error", err.Error()),
			logger.Bool("has_current", l.current.Load() != nil),
		)
		return nil, err
	}

	prev := l.current.Swap(a)
	l.loadErr = nil
	fields := []logger.Field{logger.Fingerprint(a.Metadata.Fingerprint())}
	if prev != nil {
		fields = append(fields, logger.String("previous_fingerprint", prev.Metadata.Fingerprint()))
	}
	l.logger.Info(ctx, "Artifacts reloaded", fields...)
	return a, nil
}

// Loads is the number of underlying load operations performed so far.
func (l *Loader) Loads() int64 {
	return l.loads.Load()
}

// Options returns the artifact names and pins.
func (l *Loader) Options() Options { return l.opts }

func (l *Loader) build(ctx context.Context) (a *service.ModelArtifacts, err error) {
	l.loads.Add(1)
	start := time.Now()

	ctx, span := otel.Tracer(constants.ServiceName).Start(ctx, "artifacts.load")
	span.SetAttributes(
		attribute.String("artifacts.source", l.source.Describe()),
		attribute.String("artifacts.transform", l.opts.TransformName),
		attribute.String("artifacts.model", l.opts.ModelName),
	)
	defer func() {
		l.metrics.RecordArtifactLoad(l.source.Describe(), err == nil, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var transformBlob, modelBlob []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := l.fetch(gctx, constants.ArtifactTransform, l.opts.TransformName)
		transformBlob = b
		return err
	})
	g.Go(func() error {
		b, err := l.fetch(gctx, constants.ArtifactModel, l.opts.ModelName)
		modelBlob = b
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	transformSum, err := verifyChecksum(constants.ArtifactTransform, transformBlob, l.opts.TransformSHA256)
	if err != nil {
		return nil, err
	}
	modelSum, err := verifyChecksum(constants.ArtifactModel, modelBlob, l.opts.ModelSHA256)
	if err != nil {
		return nil, err
	}

	transform, err := DecodeTransform(transformBlob)
	if err != nil {
		return nil, err
	}
	model, err := DecodeModel(modelBlob)
	if err != nil {
		return nil, err
	}

	a, err = service.BuildArtifacts(transform, model, models.ArtifactMetadata{
		TransformSHA256: transformSum,
		ModelSHA256:     modelSum,
		Source:          l.source.Describe(),
		LoadedAt:        time.Now().UTC(),
	})
	if err != nil {
		l.logger.Error(ctx, "Artifacts failed integrity check", err,
			logger.Source(l.source.Describe()),
		)
		return nil, err
	}

	l.logger.Info(ctx, "Artifacts loaded",
		logger.Source(a.Metadata.Source),
		logger.TransformVersion(a.Metadata.TransformVersion),
		logger.ModelVersion(a.Metadata.ModelVersion),
		logger.String("model_kind", a.Metadata.ModelKind),
		logger.Int("features", len(a.Metadata.FeatureNames)),
		logger.Duration("duration", time.Since(start)),
	)
	return a, nil
}

func (l *Loader) fetch(ctx context.Context, kind constants.ArtifactKind, name string) ([]byte, error) {
	b, err := l.source.Fetch(ctx, name)
	if err == nil {
		return b, nil
	}
	reason := "fetch failed"
	if stderrors.Is(err, ErrNotFound) {
		reason = "not found"
	}
	return nil, errors.ErrArtifactLoad(kind, reason).
		WithMetadata("name", name).
		WithCause(err)
}

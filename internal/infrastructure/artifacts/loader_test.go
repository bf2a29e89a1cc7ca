package artifacts_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/tips/internal/domain/models"
	"github.com/turtacn/tips/internal/domain/service"
	"github.com/turtacn/tips/internal/domain/service/mocks"
	"github.com/turtacn/tips/internal/infrastructure/artifacts"
	"github.com/turtacn/tips/pkg/errors"
	"github.com/turtacn/tips/pkg/logger"
)

const (
	transformName = "preprocessor.json"
	modelName     = "insurance_model.json"
)

func testdata(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return b
}

func defaultOptions() artifacts.Options {
	return artifacts.Options{TransformName: transformName, ModelName: modelName}
}

// countingSource serves blobs from memory and counts fetches.
type countingSource struct {
	blobs   map[string][]byte
	delay   time.Duration
	fetches atomic.Int64
}

func (s *countingSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	s.fetches.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	b, ok := s.blobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", artifacts.ErrNotFound, name)
	}
	return b, nil
}

func (s *countingSource) Describe() string { return "memory" }

func newCountingSource(t *testing.T) *countingSource {
	return &countingSource{blobs: map[string][]byte{
		transformName: testdata(t, transformName),
		modelName:     testdata(t, modelName),
	}}
}

func exampleProfile(t *testing.T) models.CustomerProfile {
	p, err := models.NewCustomerProfile(models.ProfileFields{
		Age:              28,
		AnnualIncome:     800000,
		FamilyMembers:    4,
		EmploymentSector: models.EmploymentPrivateOrSelfEmployed,
		HigherEducation:  true,
	})
	require.NoError(t, err)
	return p
}

func TestLoader_LoadFromFiles(t *testing.T) {
	loader := artifacts.NewLoader(artifacts.NewFileSource("testdata"), defaultOptions(), nil, logger.NewNoopLogger())
	assert.Nil(t, loader.Current())

	a, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, a, loader.Current())
	assert.Equal(t, "2024.06.1", a.Metadata.TransformVersion)
	assert.Equal(t, "gbm-2024.06.1", a.Metadata.ModelVersion)
	assert.Equal(t, "file:testdata", a.Metadata.Source)
	assert.Equal(t, artifacts.Checksum(testdata(t, transformName)), a.Metadata.TransformSHA256)
	assert.Equal(t, 0.8417, a.Metadata.Info.Accuracy)

	r, err := a.Score(exampleProfile(t))
	require.NoError(t, err)
	assert.InDelta(t, 0.3543437, r.Probability(), 1e-6)
	assert.Equal(t, models.TierMedium, r.Tier())
}

func TestLoader_ConcurrentFirstLoad(t *testing.T) {
	src := newCountingSource(t)
	src.delay = 20 * time.Millisecond
	loader := artifacts.NewLoader(src, defaultOptions(), nil, logger.NewNoopLogger())

	const callers = 50
	results := make([]*service.ModelArtifacts, callers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			a, err := loader.Load(context.Background())
			assert.NoError(t, err)
			results[i] = a
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int64(1), loader.Loads())
	assert.Equal(t, int64(2), src.fetches.Load())
	for _, a := range results {
		assert.Same(t, results[0], a)
	}
}

func TestLoader_SchemaMismatch(t *testing.T) {
	src := newCountingSource(t)
	src.blobs[transformName] = testdata(t, "preprocessor_seven_columns.json")
	loader := artifacts.NewLoader(src, defaultOptions(), nil, logger.NewNoopLogger())

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsArtifactLoadError(err))
	assert.Nil(t, loader.Current())
}

func TestLoader_FailedLoadIsMemoized(t *testing.T) {
	src := newCountingSource(t)
	delete(src.blobs, modelName)
	loader := artifacts.NewLoader(src, defaultOptions(), nil, logger.NewNoopLogger())

	_, err1 := loader.Load(context.Background())
	_, err2 := loader.Load(context.Background())
	require.Error(t, err1)
	assert.Same(t, err1, err2)
	assert.Equal(t, int64(1), loader.Loads())
	assert.True(t, errors.IsArtifactLoadError(err1))

	src.blobs[modelName] = testdata(t, modelName)
	a, err := loader.Reload(context.Background())
	require.NoError(t, err)
	b, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestLoader_CancelledLoadIsNotMemoized(t *testing.T) {
	loader := artifacts.NewLoader(artifacts.NewFileSource("testdata"), defaultOptions(), nil, logger.NewNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := loader.Load(ctx)
	require.Error(t, err)

	_, err = loader.Load(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(2), loader.Loads())
}

func TestLoader_ReloadKeepsCurrentOnFailure(t *testing.T) {
	src := newCountingSource(t)
	loader := artifacts.NewLoader(src, defaultOptions(), nil, logger.NewNoopLogger())

	first, err := loader.Load(context.Background())
	require.NoError(t, err)

	src.blobs[modelName] = []byte(`{"format_version": 1, "kind": "gradient_boosting"`)
	_, err = loader.Reload(context.Background())
	require.Error(t, err)
	assert.Same(t, first, loader.Current())

	src.blobs[modelName] = testdata(t, modelName)
	second, err := loader.Reload(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Same(t, second, loader.Current())
	assert.Equal(t, int64(3), loader.Loads())
}

func TestLoader_ChecksumPinning(t *testing.T) {
	opts := defaultOptions()
	opts.TransformSHA256 = artifacts.Checksum(testdata(t, transformName))
	opts.ModelSHA256 = artifacts.Checksum([]byte("something else"))

	loader := artifacts.NewLoader(newCountingSource(t), opts, nil, logger.NewNoopLogger())
	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsArtifactLoadError(err))

	opts.ModelSHA256 = artifacts.Checksum(testdata(t, modelName))
	loader = artifacts.NewLoader(newCountingSource(t), opts, nil, logger.NewNoopLogger())
	_, err = loader.Load(context.Background())
	assert.NoError(t, err)
}

func TestLoader_RejectsUnknownFields(t *testing.T) {
	src := newCountingSource(t)
	src.blobs[transformName] = []byte(`{"format_version": 1, "version": "x", "columns": [], "pipeline": "sklearn"}`)
	loader := artifacts.NewLoader(src, defaultOptions(), nil, logger.NewNoopLogger())

	_, err := loader.Load(context.Background())
	assert.True(t, errors.IsArtifactLoadError(err))
}

func TestLoader_RecordsMetrics(t *testing.T) {
	m := new(mocks.MockMetrics)
	m.On("RecordArtifactLoad", "memory", true, mock.AnythingOfType("time.Duration")).Once()

	loader := artifacts.NewLoader(newCountingSource(t), defaultOptions(), m, logger.NewNoopLogger())
	_, err := loader.Load(context.Background())
	require.NoError(t, err)
	m.AssertExpectations(t)
}

type RedisSourceSuite struct {
	suite.Suite
	server *miniredis.Miniredis
	client *goredis.Client
}

func (s *RedisSourceSuite) SetupTest() {
	s.server = miniredis.RunT(s.T())
	s.client = goredis.NewClient(&goredis.Options{Addr: s.server.Addr()})
}

func (s *RedisSourceSuite) TearDownTest() {
	_ = s.client.Close()
}

func (s *RedisSourceSuite) TestLoad() {
	s.Require().NoError(s.server.Set("tips:artifacts:"+transformName, string(testdata(s.T(), transformName))))
	s.Require().NoError(s.server.Set("tips:artifacts:"+modelName, string(testdata(s.T(), modelName))))

	src := artifacts.NewRedisSource(s.client, "tips:artifacts:")
	loader := artifacts.NewLoader(src, defaultOptions(), nil, logger.NewNoopLogger())

	a, err := loader.Load(context.Background())
	s.Require().NoError(err)
	s.Equal("redis:tips:artifacts:", a.Metadata.Source)
	s.Equal(artifacts.Checksum(testdata(s.T(), modelName)), a.Metadata.ModelSHA256)
}

func (s *RedisSourceSuite) TestMissingKey() {
	src := artifacts.NewRedisSource(s.client, "tips:artifacts:")

	_, err := src.Fetch(context.Background(), modelName)
	s.ErrorIs(err, artifacts.ErrNotFound)

	loader := artifacts.NewLoader(src, defaultOptions(), nil, logger.NewNoopLogger())
	_, err = loader.Load(context.Background())
	s.True(errors.IsArtifactLoadError(err))
}

func (s *RedisSourceSuite) TestServerDown() {
	dead := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer dead.Close()
	src := artifacts.NewRedisSource(dead, "tips:artifacts:")

	_, err := src.Fetch(context.Background(), modelName)
	s.Error(err)
	s.NotErrorIs(err, artifacts.ErrNotFound)
}

func TestRedisSourceSuite(t *testing.T) {
	suite.Run(t, new(RedisSourceSuite))
}

func TestFileSource_Missing(t *testing.T) {
	_, err := artifacts.NewFileSource(t.TempDir()).Fetch(context.Background(), modelName)
	assert.ErrorIs(t, err, artifacts.ErrNotFound)
}

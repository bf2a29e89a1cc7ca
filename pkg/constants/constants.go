// Package constants defines system-wide constants for the travel insurance propensity scoring service.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Service Identity
// ================================================================================

const (
	// ServiceName is used for tracing, metrics namespaces and log context
	ServiceName = "tips-scoring-service"

	// MetricsNamespace is the default Prometheus namespace
	MetricsNamespace = "tips"

	// APIVersion is the current public API version prefix
	APIVersion = "v1"
)

// ================================================================================
// Profile Field Names
// ================================================================================

// Wire names of the eight profile fields accepted by the scoring operation.
const (
	FieldAge               = "age"
	FieldAnnualIncome      = "annualIncome"
	FieldFamilyMembers     = "familyMembers"
	FieldEmploymentSector  = "employmentSector"
	FieldHigherEducation   = "higherEducation"
	FieldChronicConditions = "chronicConditions"
	FieldFrequentFlyer     = "frequentFlyer"
	FieldTravelledAbroad   = "travelledAbroad"
)

// ProfileFields lists every profile field in canonical order.
// Validation reports violations in this order.
var ProfileFields = []string{
	FieldAge,
	FieldAnnualIncome,
	FieldFamilyMembers,
	FieldEmploymentSector,
	FieldHigherEducation,
	FieldChronicConditions,
	FieldFrequentFlyer,
	FieldTravelledAbroad,
}

// ================================================================================
// Profile Domain Bounds
// ================================================================================

const (
	MinAge = 18
	MaxAge = 100

	MinAnnualIncome = 100000
	MaxAnnualIncome = 2500000

	MinFamilyMembers = 1
	MaxFamilyMembers = 10
)

// Literal representations accepted for boolean-like profile fields.
const (
	LiteralYes = "Yes"
	LiteralNo  = "No"
)

// ================================================================================
// Artifact Constants
// ================================================================================

// ArtifactKind names the two artifacts consumed at serving time
type ArtifactKind string

const (
	// ArtifactTransform is the fitted feature-transform state
	ArtifactTransform ArtifactKind = "transform"

	// ArtifactModel is the fitted predictive model
	ArtifactModel ArtifactKind = "model"
)

// ArtifactSourceType selects where artifact blobs are read from
type ArtifactSourceType string

const (
	// ArtifactSourceFile reads artifacts from a local directory
	ArtifactSourceFile ArtifactSourceType = "file"

	// ArtifactSourceRedis reads artifacts from Redis string keys
	ArtifactSourceRedis ArtifactSourceType = "redis"
)

const (
	// ArtifactFormatVersion is the only artifact document format understood
	ArtifactFormatVersion = 1

	// DefaultTransformFile is the default file name of the transform artifact
	DefaultTransformFile = "preprocessor.json"

	// DefaultModelFile is the default file name of the model artifact
	DefaultModelFile = "insurance_model.json"

	// DefaultArtifactDir is the default directory holding both artifacts
	DefaultArtifactDir = "./artifacts"

	// DefaultRedisKeyPrefix is prepended to artifact names for the Redis source
	DefaultRedisKeyPrefix = "tips:artifacts:"

	// DefaultWatchDebounce delays reloads triggered by file events
	DefaultWatchDebounce = 500 * time.Millisecond
)

// ================================================================================
// Cache Constants
// ================================================================================

const (
	// DefaultScoreCacheTTL is the default lifetime of an in-process score cache entry
	DefaultScoreCacheTTL = 10 * time.Minute

	// DefaultScoreCacheCleanup is the default purge interval for expired entries
	DefaultScoreCacheCleanup = 15 * time.Minute
)

// ================================================================================
// Error Code Constants
// ================================================================================

// ErrorCode identifies the kind of failure returned to callers
type ErrorCode string

const (
	// ErrCodeValidation indicates one or more profile fields failed validation
	ErrCodeValidation ErrorCode = "validation_error"

	// ErrCodeUnknownCategory indicates an unrecognized enum literal
	ErrCodeUnknownCategory ErrorCode = "unknown_category"

	// ErrCodeArtifactLoad indicates artifacts are missing, corrupt or schema-incompatible
	ErrCodeArtifactLoad ErrorCode = "artifact_load_error"

	// ErrCodeScoring indicates the model invocation failed or produced an invalid result
	ErrCodeScoring ErrorCode = "scoring_error"

	// ErrCodeInvalidRequest indicates a malformed request body
	ErrCodeInvalidRequest ErrorCode = "invalid_request"

	// ErrCodeInternal indicates an unexpected server condition
	ErrCodeInternal ErrorCode = "internal_error"
)

// ================================================================================
// Log Level Constants
// ================================================================================

// LogLevel represents the severity level of log messages
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelFatal LogLevel = "fatal"
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey represents keys used in context.Context
type ContextKey string

const (
	// ContextKeyRequestID is the key for request ID in context
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyTraceID is the key for distributed trace ID in context
	ContextKeyTraceID ContextKey = "trace_id"

	// ContextKeyLogger is the key for a request-scoped logger in context
	ContextKeyLogger ContextKey = "logger"
)

// ================================================================================
// HTTP Headers
// ================================================================================

const (
	HeaderRequestID   = "X-Request-ID"
	HeaderIfNoneMatch = "If-None-Match"
	HeaderETag        = "ETag"
)

//Personal.AI order the ending

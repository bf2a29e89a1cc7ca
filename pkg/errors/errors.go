// Package errors defines custom error types and error handling utilities for the scoring service.
// This package provides structured error types that map the scoring error taxonomy to HTTP status codes.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/turtacn/tips/pkg/constants"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// CoreError represents a structured error with additional metadata
type CoreError interface {
	error

	// Code returns the error kind
	Code() constants.ErrorCode

	// HTTPStatus returns the HTTP status code
	HTTPStatus() int

	// Description returns a human-readable description
	Description() string

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause adds a cause error to the error chain
	WithCause(cause error) CoreError

	// WithMetadata adds additional context metadata
	WithMetadata(key string, value interface{}) CoreError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// ================================================================================
// Base Error Implementation
// ================================================================================

// baseError is the internal implementation of CoreError
type baseError struct {
	code        constants.ErrorCode
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

// Error implements the error interface
func (e *baseError) Error() string {
	msg := e.message
	if msg == "" {
		msg = e.description
	}
	if e.cause != nil {
		return msg + ": " + e.cause.Error()
	}
	return msg
}

// Code returns the error kind
func (e *baseError) Code() constants.ErrorCode {
	return e.code
}

// HTTPStatus returns the HTTP status code
func (e *baseError) HTTPStatus() int {
	return e.httpStatus
}

// Description returns the error description
func (e *baseError) Description() string {
	return e.description
}

// Unwrap returns the underlying cause error
func (e *baseError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause error to the error chain
func (e *baseError) WithCause(cause error) CoreError {
	e.cause = cause
	return e
}

// WithMetadata adds additional context metadata
func (e *baseError) WithMetadata(key string, value interface{}) CoreError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

// Metadata returns all metadata
func (e *baseError) Metadata() map[string]interface{} {
	return e.metadata
}

// ================================================================================
// Error Constructor
// ================================================================================

// NewError creates a new CoreError with the specified parameters
func NewError(code constants.ErrorCode, httpStatus int, description string, message string) CoreError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Scoring Error Taxonomy
// ================================================================================

// ErrValidation creates a validation_error for a single offending field
func ErrValidation(field, reason string) CoreError {
	return NewError(
		constants.ErrCodeValidation,
		http.StatusUnprocessableEntity,
		"One or more profile fields failed validation.",
		fmt.Sprintf("%s %s", field, reason),
	).WithMetadata("field", field).
		WithMetadata("reason", reason)
}

// ErrUnknownCategory creates an unknown_category error for an unrecognized enum literal
func ErrUnknownCategory(field string, value interface{}) CoreError {
	return NewError(
		constants.ErrCodeUnknownCategory,
		http.StatusUnprocessableEntity,
		"A categorical profile field has an unrecognized value.",
		fmt.Sprintf("%s has unknown category %q", field, fmt.Sprint(value)),
	).WithMetadata("field", field).
		WithMetadata("value", fmt.Sprint(value))
}

// ErrArtifactLoad creates an artifact_load_error. The process must not serve scoring requests after it.
func ErrArtifactLoad(artifact constants.ArtifactKind, reason string) CoreError {
	return NewError(
		constants.ErrCodeArtifactLoad,
		http.StatusServiceUnavailable,
		"Model artifacts are missing, corrupt or incompatible.",
		fmt.Sprintf("%s artifact: %s", artifact, reason),
	).WithMetadata("artifact", string(artifact))
}

// ErrScoring creates a scoring_error. Callers see only the generic description.
func ErrScoring(reason string) CoreError {
	return NewError(
		constants.ErrCodeScoring,
		http.StatusInternalServerError,
		"The scoring model failed to produce a valid probability.",
		fmt.Sprintf("scoring failed: %s", reason),
	)
}

// ErrInvalidRequest creates an invalid_request error for malformed request bodies
func ErrInvalidRequest(message string) CoreError {
	return NewError(
		constants.ErrCodeInvalidRequest,
		http.StatusBadRequest,
		"The request body is malformed.",
		message,
	)
}

// ErrInternal creates an internal_error
func ErrInternal(message string) CoreError {
	return NewError(
		constants.ErrCodeInternal,
		http.StatusInternalServerError,
		"The service encountered an unexpected condition.",
		message,
	)
}

// ================================================================================
// Error Validation Utilities
// ================================================================================

// AsCoreError finds the first CoreError in err's chain
func AsCoreError(err error) (CoreError, bool) {
	var coreErr CoreError
	if stderrors.As(err, &coreErr) {
		return coreErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code
func HasCode(err error, code constants.ErrorCode) bool {
	if coreErr, ok := AsCoreError(err); ok {
		return coreErr.Code() == code
	}
	return false
}

// IsValidationError reports whether err is a validation failure, including unknown categories
func IsValidationError(err error) bool {
	return HasCode(err, constants.ErrCodeValidation) || HasCode(err, constants.ErrCodeUnknownCategory)
}

// IsUnknownCategory reports whether err is an unknown_category error
func IsUnknownCategory(err error) bool {
	return HasCode(err, constants.ErrCodeUnknownCategory)
}

// IsArtifactLoadError reports whether err is an artifact_load_error
func IsArtifactLoadError(err error) bool {
	return HasCode(err, constants.ErrCodeArtifactLoad)
}

// IsScoringError reports whether err is a scoring_error
func IsScoringError(err error) bool {
	return HasCode(err, constants.ErrCodeScoring)
}

// FieldOf returns the offending field of a validation error, or "" for other errors
func FieldOf(err error) string {
	coreErr, ok := AsCoreError(err)
	if !ok {
		return ""
	}
	field, _ := coreErr.Metadata()["field"].(string)
	return field
}

// ================================================================================
// Error Response Builder
// ================================================================================

// ErrorResponse represents the JSON structure for error responses
type ErrorResponse struct {
	Error            string                 `json:"error"`
	ErrorDescription string                 `json:"error_description"`
	Message          string                 `json:"message,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// ToErrorResponse converts a CoreError to an ErrorResponse.
// Internal failures keep their details out of the response.
func ToErrorResponse(err CoreError) *ErrorResponse {
	resp := &ErrorResponse{
		Error:            string(err.Code()),
		ErrorDescription: err.Description(),
	}
	if err.HTTPStatus() < http.StatusInternalServerError {
		resp.Message = err.Error()
		if len(err.Metadata()) > 0 {
			resp.Metadata = err.Metadata()
		}
	}
	return resp
}

// ToGenericErrorResponse converts any error to an ErrorResponse
func ToGenericErrorResponse(err error) (int, *ErrorResponse) {
	if coreErr, ok := AsCoreError(err); ok {
		return coreErr.HTTPStatus(), ToErrorResponse(coreErr)
	}

	// Fallback to generic server error
	return http.StatusInternalServerError, &ErrorResponse{
		Error:            string(constants.ErrCodeInternal),
		ErrorDescription: "An unexpected error occurred",
	}
}

// ShouldLogError determines if an error should be logged based on severity
func ShouldLogError(err error) bool {
	if coreErr, ok := AsCoreError(err); ok {
		return coreErr.HTTPStatus() >= http.StatusInternalServerError
	}
	return true
}

//Personal.AI order the ending

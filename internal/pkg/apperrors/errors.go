package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("resource not found")

	ErrInvalidArgument = errors.New("invalid argument")

	ErrValidation = errors.New("validation failed")

	ErrUnknownCategory = errors.New("unknown category")

	ErrSchemaMismatch = errors.New("feature schema mismatch")

	ErrArtifactLoad = errors.New("artifact load failed")

	ErrConnectivity = errors.New("prediction service unreachable")

	ErrDatabase = errors.New("database error")

	ErrInternalServer = errors.New("internal server error")

	ErrUnauthorized = errors.New("unauthorized")
)

type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

func NewValidationError(field, message string) error {

	return fmt.Errorf("%w: %w", ErrValidation, &ValidationError{Field: field, Message: message})
}

// CategoryError reports a categorical value outside a trained vocabulary.
type CategoryError struct {
	Field string
	Value string
	Known []string
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("unknown %s value %q, expected one of %v", e.Field, e.Value, e.Known)
}

func (e *CategoryError) Unwrap() error {
	return ErrUnknownCategory
}

func NewCategoryError(field, value string, known []string) error {
	return &CategoryError{Field: field, Value: value, Known: append([]string(nil), known...)}
}

// ArtifactLoadError is fatal: the service must not start without every artifact.
type ArtifactLoadError struct {
	Artifact string
	Path     string
	Cause    error
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("failed to load %s artifact from %s: %v", e.Artifact, e.Path, e.Cause)
}

func (e *ArtifactLoadError) Unwrap() []error {
	return []error{ErrArtifactLoad, e.Cause}
}

func NewArtifactLoadError(artifact, path string, cause error) error {
	return &ArtifactLoadError{Artifact: artifact, Path: path, Cause: cause}
}

type ConnectivityError struct {
	URL   string
	Cause error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("cannot reach prediction service at %s: %v", e.URL, e.Cause)
}

func (e *ConnectivityError) Unwrap() []error {
	return []error{ErrConnectivity, e.Cause}
}

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func WrapDatabaseError(cause error, message string) error {
	return &AppError{
		Code:    "DB_ERROR",
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrDatabase, cause),
	}
}

func WrapSchemaMismatch(message string) error {
	return &AppError{
		Code:    "SCHEMA_MISMATCH",
		Message: message,
		Cause:   ErrSchemaMismatch,
	}
}

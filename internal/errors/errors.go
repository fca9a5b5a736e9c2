package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the error taxonomy. Typed errors below match them via errors.Is.
var (
	// ErrConfig is returned for an unknown analyzer, stemmer, stop-word set or similarity selection
	ErrConfig = errors.New("invalid configuration")

	// ErrQuerySyntax is returned when a free-text boolean expression cannot be parsed
	ErrQuerySyntax = errors.New("query syntax error")

	// ErrIndexBuild is returned when an index could not be materialized
	ErrIndexBuild = errors.New("index build failed")

	// ErrPresetNotFound is returned when a named preset has no built index
	ErrPresetNotFound = errors.New("preset not found")

	// ErrInvalidInput is returned when request validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrJobNotFound is returned when a background job ID is unknown
	ErrJobNotFound = errors.New("job not found")
)

// ConfigError represents an invalid configuration selection
type ConfigError struct {
	Setting string
	Value   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("unknown %s '%s'", e.Setting, e.Value)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// NewConfigError creates a new ConfigError
func NewConfigError(setting, value string) *ConfigError {
	return &ConfigError{Setting: setting, Value: value}
}

// QuerySyntaxError represents a malformed free-text query with the byte offset of the problem
type QuerySyntaxError struct {
	Query    string
	Position int
	Message  string
}

func (e *QuerySyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d in query %q: %s", e.Position, e.Query, e.Message)
}

func (e *QuerySyntaxError) Is(target error) bool {
	return target == ErrQuerySyntax
}

// NewQuerySyntaxError creates a new QuerySyntaxError
func NewQuerySyntaxError(query string, position int, message string) *QuerySyntaxError {
	return &QuerySyntaxError{Query: query, Position: position, Message: message}
}

// IndexBuildError represents a failure while materializing an index.
// DocumentID is empty when the failure is not tied to a single document.
type IndexBuildError struct {
	DocumentID string
	Reason     string
	Err        error
}

func (e *IndexBuildError) Error() string {
	msg := "index build failed"
	if e.DocumentID != "" {
		msg = fmt.Sprintf("index build failed at document '%s'", e.DocumentID)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", msg, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", msg, e.Reason)
}

func (e *IndexBuildError) Is(target error) bool {
	return target == ErrIndexBuild
}

func (e *IndexBuildError) Unwrap() error {
	return e.Err
}

// NewIndexBuildError creates a new IndexBuildError
func NewIndexBuildError(documentID, reason string, err error) *IndexBuildError {
	return &IndexBuildError{DocumentID: documentID, Reason: reason, Err: err}
}

// PresetNotFoundError represents a lookup of a preset that was not built
type PresetNotFoundError struct {
	Name string
}

func (e *PresetNotFoundError) Error() string {
	return fmt.Sprintf("preset named '%s' not found", e.Name)
}

func (e *PresetNotFoundError) Is(target error) bool {
	return target == ErrPresetNotFound
}

// NewPresetNotFoundError creates a new PresetNotFoundError
func NewPresetNotFoundError(name string) *PresetNotFoundError {
	return &PresetNotFoundError{Name: name}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// JobNotFoundError represents a lookup of an unknown background job
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

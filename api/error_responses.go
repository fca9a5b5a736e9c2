package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	internalErrors "github.com/gcbaptista/searchlab/internal/errors"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodePresetNotFound   ErrorCode = "PRESET_NOT_FOUND"
	ErrorCodeJobNotFound      ErrorCode = "JOB_NOT_FOUND"
	ErrorCodeInvalidConfig    ErrorCode = "INVALID_CONFIGURATION"
	ErrorCodeInvalidJSON      ErrorCode = "INVALID_JSON"
	ErrorCodeInvalidQuery     ErrorCode = "INVALID_QUERY"
	ErrorCodeRateLimited      ErrorCode = "RATE_LIMITED"
	ErrorCodeNotSupported     ErrorCode = "NOT_SUPPORTED"

	// Server Error Codes (5xx)
	ErrorCodeInternalError      ErrorCode = "INTERNAL_ERROR"
	ErrorCodeIndexingFailed     ErrorCode = "INDEXING_FAILED"
	ErrorCodeSearchFailed       ErrorCode = "SEARCH_FAILED"
	ErrorCodeJobExecutionFailed ErrorCode = "JOB_EXECUTION_FAILED"
)

// ErrorDetail provides additional context for an error
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIError represents a standardized API error response
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   []ErrorDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIErrorResponse creates a standardized error response
func APIErrorResponse(code ErrorCode, message string, details ...ErrorDetail) *APIError {
	return &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	errorResponse := APIErrorResponse(code, message, details...)

	if requestID, exists := c.Get(requestIDKey); exists {
		if id, ok := requestID.(string); ok {
			errorResponse.RequestID = id
		}
	}

	c.JSON(statusCode, errorResponse)
}

// SendStructuredValidationError sends a validation error with one detail per invalid field
func SendStructuredValidationError(c *gin.Context, result *ValidationResult) {
	details := make([]ErrorDetail, len(result.Errors))
	for i, err := range result.Errors {
		details[i] = ErrorDetail{
			Field:   err.Field,
			Message: err.Message,
			Code:    "VALIDATION_ERROR",
		}
	}

	SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "Request validation failed", details...)
}

// SendPresetNotFoundError sends a standardized preset not found error
func SendPresetNotFoundError(c *gin.Context, name string) {
	SendError(c, http.StatusNotFound, ErrorCodePresetNotFound,
		"Preset '"+name+"' not found")
}

// SendJobNotFoundError sends a standardized job not found error
func SendJobNotFoundError(c *gin.Context, jobID string) {
	SendError(c, http.StatusNotFound, ErrorCodeJobNotFound,
		"Job '"+jobID+"' not found")
}

// SendInvalidJSONError sends a standardized invalid JSON error
func SendInvalidJSONError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON,
		"Invalid JSON in request body: "+err.Error())
}

// SendInternalError sends a standardized internal server error
func SendInternalError(c *gin.Context, operation string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
		"Internal error during "+operation+": "+err.Error())
}

// SendNotSupportedError reports an operation the preset manager does not implement
func SendNotSupportedError(c *gin.Context, operation string) {
	SendError(c, http.StatusNotImplemented, ErrorCodeNotSupported,
		operation+" is not supported by this server")
}

// SendJobExecutionError sends a standardized job execution error
func SendJobExecutionError(c *gin.Context, operation string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeJobExecutionFailed,
		"Failed to start "+operation+" job: "+err.Error())
}

// SendServiceError maps an error from the engine or a search to a status code and error code.
func SendServiceError(c *gin.Context, operation string, err error) {
	var syntaxErr *internalErrors.QuerySyntaxError
	var presetErr *internalErrors.PresetNotFoundError
	var jobErr *internalErrors.JobNotFoundError

	switch {
	case errors.As(err, &presetErr):
		SendPresetNotFoundError(c, presetErr.Name)
	case errors.As(err, &jobErr):
		SendJobNotFoundError(c, jobErr.JobID)
	case errors.As(err, &syntaxErr):
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, err.Error(), ErrorDetail{
			Field:   "query",
			Message: syntaxErr.Message,
			Code:    "QUERY_SYNTAX",
		})
	case errors.Is(err, internalErrors.ErrConfig):
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidConfig, err.Error())
	case errors.Is(err, internalErrors.ErrInvalidInput):
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
	case errors.Is(err, internalErrors.ErrIndexBuild):
		SendError(c, http.StatusInternalServerError, ErrorCodeIndexingFailed, err.Error())
	default:
		SendError(c, http.StatusInternalServerError, ErrorCodeSearchFailed,
			operation+" failed: "+err.Error())
	}
}

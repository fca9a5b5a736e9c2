// Package api provides validation utilities for API request handling.
package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gcbaptista/searchlab/services"
)

// MaxSearchLimit caps the limit a client may ask for.
const MaxSearchLimit = 1000

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidatePresetName validates a preset name path parameter
func ValidatePresetName(name string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if name == "" {
		result.AddError("name", "Preset name is required")
		return result
	}

	if strings.TrimSpace(name) != name {
		result.AddError("name", "Preset name cannot have leading or trailing whitespace")
	}

	return result
}

// ValidateJobID validates a job ID path parameter
func ValidateJobID(jobID string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if _, err := uuid.Parse(jobID); err != nil {
		result.AddError("jobId", "Job ID must be a UUID")
	}

	return result
}

// ValidateSearchRequest checks the enumerated options and the limit of a search.
// Field prefix is prepended to every reported field, e.g. "queries[0].".
func ValidateSearchRequest(req services.SearchRequest, prefix string) *ValidationResult {
	result := &ValidationResult{Valid: true}
	validateSearchRequest(result, req, prefix)
	return result
}

func validateSearchRequest(result *ValidationResult, req services.SearchRequest, prefix string) {
	if req.Similarity != "" {
		if err := req.Similarity.Validate(); err != nil {
			result.AddError(prefix+"similarity", err.Error())
		}
	}
	if req.SortMode != "" {
		if err := req.SortMode.Validate(); err != nil {
			result.AddError(prefix+"sort_mode", err.Error())
		}
	}
	if req.Limit < 0 {
		result.AddError(prefix+"limit", "Limit must not be negative")
	} else if req.Limit > MaxSearchLimit {
		result.AddError(prefix+"limit", fmt.Sprintf("Limit must not exceed %d", MaxSearchLimit))
	}
	for field := range req.Fields {
		if strings.TrimSpace(field) == "" {
			result.AddError(prefix+"fields", "Field names cannot be empty")
			break
		}
	}
}

// ValidateMultiSearchRequest requires at least one query, unique non-empty names and valid sub-requests.
func ValidateMultiSearchRequest(req services.MultiSearchRequest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len(req.Queries) == 0 {
		result.AddError("queries", "At least one query is required")
		return result
	}

	seen := make(map[string]bool, len(req.Queries))
	for i, q := range req.Queries {
		prefix := fmt.Sprintf("queries[%d].", i)
		if q.Name == "" {
			result.AddError(prefix+"name", "All queries must have a non-empty name")
		} else if seen[q.Name] {
			result.AddError(prefix+"name", "Query names must be unique: '"+q.Name+"' appears multiple times")
		}
		seen[q.Name] = true
		validateSearchRequest(result, q.SearchRequest, prefix)
	}

	return result
}

// SendValidationError sends a standardized validation error response
func SendValidationError(c *gin.Context, result *ValidationResult) {
	SendStructuredValidationError(c, result)
}

// ValidateJSONBinding validates JSON binding and returns a standardized error
func ValidateJSONBinding(c *gin.Context, target interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if err := c.ShouldBindJSON(target); err != nil {
		result.AddError("request_body", "Invalid request body: "+err.Error())
	}

	return result
}

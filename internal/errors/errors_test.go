package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("stemmer", "lancaster")

	expectedMsg := "unknown stemmer 'lancaster'"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrConfig) {
		t.Error("Expected error to match ErrConfig sentinel")
	}
	if errors.Is(err, ErrQuerySyntax) {
		t.Error("Error should not match ErrQuerySyntax")
	}
}

func TestQuerySyntaxError(t *testing.T) {
	err := NewQuerySyntaxError("gesture AND", 11, "expected term")

	expectedMsg := `syntax error at position 11 in query "gesture AND": expected term`
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrQuerySyntax) {
		t.Error("Expected error to match ErrQuerySyntax sentinel")
	}
}

func TestIndexBuildError(t *testing.T) {
	err := NewIndexBuildError("", "no documents", nil)
	if err.Error() != "index build failed: no documents" {
		t.Errorf("Unexpected message '%s'", err.Error())
	}

	err2 := NewIndexBuildError("doc-7", "duplicate document ID", nil)
	expectedMsg2 := "index build failed at document 'doc-7': duplicate document ID"
	if err2.Error() != expectedMsg2 {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg2, err2.Error())
	}

	err3 := NewIndexBuildError("doc-8", "reading field", io.ErrUnexpectedEOF)
	if !errors.Is(err3, ErrIndexBuild) {
		t.Error("Expected error to match ErrIndexBuild sentinel")
	}
	if !errors.Is(err3, io.ErrUnexpectedEOF) {
		t.Error("Expected error to unwrap to the cause")
	}
}

func TestPresetNotFoundError(t *testing.T) {
	err := NewPresetNotFoundError("vsm-porter-stop")

	expectedMsg := "preset named 'vsm-porter-stop' not found"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}
	if !errors.Is(err, ErrPresetNotFound) {
		t.Error("Expected error to match ErrPresetNotFound sentinel")
	}
}

func TestJobNotFoundError(t *testing.T) {
	err := NewJobNotFoundError("abc")

	if err.Error() != "job with ID 'abc' not found" {
		t.Errorf("Unexpected message '%s'", err.Error())
	}
	if !errors.Is(err, ErrJobNotFound) {
		t.Error("Expected error to match ErrJobNotFound sentinel")
	}
	if errors.Is(err, ErrPresetNotFound) {
		t.Error("Error should not match ErrPresetNotFound")
	}
}

func TestValidationError(t *testing.T) {
	// Test with field
	err := NewValidationError("limit", "must not be negative")

	expectedMsg := "validation error for field 'limit': must not be negative"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	// Test without field
	err2 := NewValidationError("", "must not be negative")

	expectedMsg2 := "validation error: must not be negative"
	if err2.Error() != expectedMsg2 {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg2, err2.Error())
	}

	if !errors.Is(err, ErrInvalidInput) || !errors.Is(err2, ErrInvalidInput) {
		t.Error("Expected error to match ErrInvalidInput sentinel")
	}
}

func TestErrorChaining(t *testing.T) {
	originalErr := NewConfigError("similarity", "lm-dirichlet")
	wrappedErr := fmt.Errorf("loading preset: %w", originalErr)

	if !errors.Is(wrappedErr, ErrConfig) {
		t.Error("Expected wrapped error to still match ErrConfig sentinel")
	}

	var cfgErr *ConfigError
	if !errors.As(wrappedErr, &cfgErr) {
		t.Fatal("Expected to be able to unwrap to ConfigError")
	}
	if cfgErr.Value != "lm-dirichlet" {
		t.Errorf("Expected value 'lm-dirichlet', got '%s'", cfgErr.Value)
	}
}

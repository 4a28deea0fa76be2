// Package errors defines custom error types for better error handling and debugging.
// PipelineError classifies failures so callers can tell a fallback trigger from a
// fatal structural absence, and a recoverable operation failure from one that ends
// the session.
package errors

import (
	stderrors "errors"
	"fmt"
)

// PipelineError represents errors raised while fetching, parsing, enriching or
// persisting movie data.
type PipelineError struct {
	Type    string
	Message string
	Cause   error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Error type constants
const (
	ErrorTypeConfigurationInvalid = "CONFIGURATION_INVALID"
	ErrorTypeAPIKeyMissing        = "API_KEY_MISSING"
	ErrorTypeTransport            = "TRANSPORT_FAILURE"
	ErrorTypeStructureMissing     = "STRUCTURE_MISSING"
	ErrorTypeLayoutMismatch       = "LAYOUT_MISMATCH"
	ErrorTypeEnrichmentFailed     = "ENRICHMENT_FAILED"
	ErrorTypePersistenceFailed    = "PERSISTENCE_FAILED"
	ErrorTypeInvalidInput         = "INVALID_INPUT"
)

// NewPipelineError creates a new PipelineError
func NewPipelineError(errorType, message string, cause error) *PipelineError {
	return &PipelineError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigurationError creates a configuration-related error
func NewConfigurationError(message string, cause error) *PipelineError {
	return NewPipelineError(ErrorTypeConfigurationInvalid, message, cause)
}

// NewAPIKeyMissingError creates an API key missing error
func NewAPIKeyMissingError(service string) *PipelineError {
	return NewPipelineError(ErrorTypeAPIKeyMissing, fmt.Sprintf("API key missing for %s", service), nil)
}

// NewTransportError creates a network or HTTP status error
func NewTransportError(url string, cause error) *PipelineError {
	return NewPipelineError(ErrorTypeTransport, fmt.Sprintf("request to %s failed", url), cause)
}

// NewStructureError reports an expected element or attribute that is absent
func NewStructureError(message string, cause error) *PipelineError {
	return NewPipelineError(ErrorTypeStructureMissing, message, cause)
}

// NewLayoutMismatchError reports that a detail page does not fit a metadata layout
func NewLayoutMismatchError(layout, message string) *PipelineError {
	return NewPipelineError(ErrorTypeLayoutMismatch, fmt.Sprintf("%s layout: %s", layout, message), nil)
}

// NewEnrichmentError creates an enrichment API error
func NewEnrichmentError(message string, cause error) *PipelineError {
	return NewPipelineError(ErrorTypeEnrichmentFailed, message, cause)
}

// NewPersistenceError creates a database write error
func NewPersistenceError(message string, cause error) *PipelineError {
	return NewPipelineError(ErrorTypePersistenceFailed, message, cause)
}

// NewInvalidInputError creates a user input error
func NewInvalidInputError(input string) *PipelineError {
	return NewPipelineError(ErrorTypeInvalidInput, fmt.Sprintf("invalid input: %q", input), nil)
}

// IsType reports whether err, or any error it wraps, is a PipelineError of errorType.
func IsType(err error, errorType string) bool {
	var pe *PipelineError
	for err != nil {
		if !stderrors.As(err, &pe) {
			return false
		}
		if pe.Type == errorType {
			return true
		}
		err = pe.Cause
	}
	return false
}

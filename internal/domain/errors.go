package domain

import "fmt"

// PedigreeCycleError is the single fatal/structural error tier of the engine:
// an individual listed as its own ancestor. It carries the offending sample id
// so the caller can point at the invalid pedigree record. Every other anomaly
// (dangling parent ids, malformed calls, incomplete trios) degrades to
// diagnostics and the batch always finishes.
type PedigreeCycleError struct {
	SampleID string
}

// Error implements the error interface.
func (e *PedigreeCycleError) Error() string {
	return fmt.Sprintf("pedigree cycle detected involving sample %q", e.SampleID)
}

// ValidationError represents input validation errors on upstream records.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
)

// Ingestion errors. Only ErrInvalidDocument, ErrDuplicateReceipt and
// ErrPersistence ever reach API callers; the "unavailable" errors are
// absorbed by the component that produced them and only logged.
var (
	ErrInvalidDocument         = errors.New("invalid document")
	ErrDuplicateReceipt        = errors.New("receipt already processed")
	ErrPersistence             = errors.New("persistence error")
	ErrAdjudicationUnavailable = errors.New("adjudication unavailable")
	ErrGeocodingUnavailable    = errors.New("geocoding unavailable")
)

// PersistenceError wraps an infrastructure failure that aborted an ingestion.
// errors.Is matches both ErrPersistence and the underlying cause.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

// NewPersistenceError wraps err unless it is nil.
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// InvalidDocumentError describes why a document could not be parsed.
type InvalidDocumentError struct {
	Reason string
}

func (e *InvalidDocumentError) Error() string {
	return "invalid document: " + e.Reason
}

func (e *InvalidDocumentError) Unwrap() error { return ErrInvalidDocument }

// NewInvalidDocumentError builds an InvalidDocumentError with a formatted reason.
func NewInvalidDocumentError(format string, args ...any) *InvalidDocumentError {
	return &InvalidDocumentError{Reason: fmt.Sprintf(format, args...)}
}

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

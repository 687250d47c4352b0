package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound covers both "does not exist" and "not visible to the
	// caller"; the two are indistinguishable on purpose.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the entity is visible but not editable by the
	// caller.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict signals a patch that no longer applies to the stored
	// text. The client must resynchronize and retry.
	ErrConflict = errors.New("conflict")

	// ErrAlreadyDone signals a redundant action, e.g. joining a group
	// the user is already a member of.
	ErrAlreadyDone = errors.New("already done")
)

// FieldError is one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries a structured list of input problems.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}

	return "validation: " + strings.Join(parts, "; ")
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

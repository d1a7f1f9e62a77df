package inventory

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a medicine id does not exist.
	ErrNotFound = errors.New("medicine not found")
	// ErrInvalid wraps every ValidationError.
	ErrInvalid = errors.New("invalid medicine")
	// ErrConfirmation is returned for unknown, expired or already used delete tokens.
	ErrConfirmation = errors.New("delete confirmation not found or expired")
	// ErrNoEdit is returned when an editor has no open draft.
	ErrNoEdit = errors.New("no edit in progress")
)

// FieldError names one offending field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError enumerates every field that failed validation. Nothing is
// written when it is returned.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return "invalid medicine: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// IsValidation reports whether err carries field validation failures.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

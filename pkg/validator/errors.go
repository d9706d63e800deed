package validator

import (
	"errors"
	"strings"
)

// FieldError describes one failed rule.
type FieldError struct {
	Field   string // client-facing field key
	Tag     string // rule that failed
	Message string // user-facing message
}

// ValidationErrors is a collection of field failures.
type ValidationErrors []FieldError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, e := range ve {
		msgs = append(msgs, e.Field+": "+e.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether field has at least one error.
func (ve ValidationErrors) Has(field string) bool {
	return ve.Get(field) != ""
}

// Get returns the first message for field or "".
func (ve ValidationErrors) Get(field string) string {
	for _, e := range ve {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// Map groups messages by field.
func (ve ValidationErrors) Map() map[string][]string {
	m := make(map[string][]string, len(ve))
	for _, e := range ve {
		m[e.Field] = append(m[e.Field], e.Message)
	}
	return m
}

// Add appends an error and returns the collection.
func (ve ValidationErrors) Add(field, message string) ValidationErrors {
	return append(ve, FieldError{Field: field, Message: message})
}

// IsValidationError reports whether err carries field errors.
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// ExtractValidationErrors returns the field errors inside err, or nil.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrInvalidCredentials is returned when email and password do not match an active user.
	ErrInvalidCredentials = errors.New("Unable to authenticate with provided credentials")
	// ErrInvalidToken covers malformed, expired and unknown-user tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// ValidationError reports one or more rejected input fields.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
